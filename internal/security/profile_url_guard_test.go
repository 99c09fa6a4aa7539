package security

import (
	"testing"
	"time"
)

func TestCheck_AllowedURLs(t *testing.T) {
	guard := NewProfileURLGuard()

	urls := []string{
		"https://k.kakaocdn.net/dn/profile.jpg",
		"https://lh3.googleusercontent.com/a/photo.png",
		"http://images.example.com/me.png",
	}
	for _, u := range urls {
		if err := guard.Check(u); err != nil {
			t.Errorf("Check(%q) = %v, want nil", u, err)
		}
	}
}

func TestCheck_BlockedURLs(t *testing.T) {
	guard := NewProfileURLGuard()

	tests := []struct {
		name string
		url  string
	}{
		{"빈 URL", ""},
		{"file 스킴", "file:///etc/passwd"},
		{"javascript 스킴", "javascript:alert(1)"},
		{"루프백 IP", "http://127.0.0.1/img.png"},
		{"사설 IP 10.x", "http://10.0.0.5/img.png"},
		{"사설 IP 192.168.x", "https://192.168.1.1/img.png"},
		{"메타데이터 IP", "http://169.254.169.254/latest/meta-data"},
		{"localhost", "http://localhost/img.png"},
		{"IPv6 루프백", "http://[::1]/img.png"},
		{"호스트 없음", "https:///img.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := guard.Check(tt.url); err == nil {
				t.Errorf("Check(%q) = nil, want error", tt.url)
			}
		})
	}
}

func TestNewSafeClient(t *testing.T) {
	guard := NewProfileURLGuard()

	client := guard.NewSafeClient(5 * time.Second)
	if client == nil {
		t.Fatal("NewSafeClient returned nil")
	}
}

var _ ProfileURLGuardService = (*profileURLGuard)(nil)
