package security

import (
	"strings"
	"testing"
)

// TestSanitize_StripsAllTags 는 모든 HTML 태그가 제거되는지 검증한다.
func TestSanitize_StripsAllTags(t *testing.T) {
	sanitizer := NewContentSanitizer()

	tests := []struct {
		name       string
		input      string
		want       string
		wantAbsent []string
	}{
		{
			name:  "순수 텍스트는 그대로 유지",
			input: "오늘은 바다를 보러 갔다.",
			want:  "오늘은 바다를 보러 갔다.",
		},
		{
			name:       "script 태그 제거",
			input:      `좋은 하루<script>alert('xss')</script>였다`,
			wantAbsent: []string{"<script", "alert"},
		},
		{
			name:       "p 태그도 제거 (일기는 순수 텍스트)",
			input:      "<p>문단 하나</p>",
			want:       "문단 하나",
			wantAbsent: []string{"<p>", "</p>"},
		},
		{
			name:       "img onerror 제거",
			input:      `제목<img src=x onerror=alert(1)>끝`,
			wantAbsent: []string{"<img", "onerror"},
		},
		{
			name:       "iframe 제거",
			input:      `일기<iframe src="https://evil.com"></iframe>본문`,
			wantAbsent: []string{"<iframe", "evil.com"},
		},
		{
			name:  "빈 입력은 빈 출력",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizer.Sanitize(tt.input)
			if tt.want != "" || len(tt.wantAbsent) == 0 {
				if got != tt.want {
					t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
				}
			}
			for _, absent := range tt.wantAbsent {
				if strings.Contains(got, absent) {
					t.Errorf("Sanitize(%q) = %q, should not contain %q", tt.input, got, absent)
				}
			}
		})
	}
}

// TestSanitize_Idempotent 는 같은 입력에 같은 출력이 나오는지 검증한다.
func TestSanitize_Idempotent(t *testing.T) {
	sanitizer := NewContentSanitizer()

	input := `<b>강조</b> 텍스트 <script>x</script>`
	first := sanitizer.Sanitize(input)
	second := sanitizer.Sanitize(first)

	if first != second {
		t.Errorf("sanitize is not idempotent: first=%q second=%q", first, second)
	}
}

var _ ContentSanitizerService = (*contentSanitizer)(nil)
