package storage

import "testing"

func TestObjectURL(t *testing.T) {
	tests := []struct {
		name    string
		store   *S3Store
		key     string
		want    string
	}{
		{
			name:  "커스텀 BaseURL 사용",
			store: &S3Store{bucket: "maum-images", region: "ap-northeast-2", baseURL: "https://images.maum.app"},
			key:   "diaries/d-1/a.png",
			want:  "https://images.maum.app/diaries/d-1/a.png",
		},
		{
			name:  "BaseURL 미지정 시 S3 표준 URL",
			store: &S3Store{bucket: "maum-images", region: "ap-northeast-2"},
			key:   "diaries/d-1/a.png",
			want:  "https://maum-images.s3.ap-northeast-2.amazonaws.com/diaries/d-1/a.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.store.objectURL(tt.key); got != tt.want {
				t.Errorf("objectURL(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}
