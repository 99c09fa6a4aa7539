// Package model 은 도메인 모델을 정의한다.
package model

import "time"

// Provider 는 OAuth 로그인 제공자를 나타낸다.
type Provider string

const (
	// ProviderKakao 는 카카오 로그인.
	ProviderKakao Provider = "kakao"
	// ProviderGoogle 은 구글 로그인.
	ProviderGoogle Provider = "google"
)

// ParseProvider 는 문자열을 Provider 로 변환한다.
// 지원하지 않는 값이면 false 를 반환한다.
func ParseProvider(s string) (Provider, bool) {
	switch Provider(s) {
	case ProviderKakao, ProviderGoogle:
		return Provider(s), true
	default:
		return "", false
	}
}

// User 는 서비스 이용자를 나타낸다.
// 외부 OAuth 제공자의 계정과 1:1 로 대응하며 (provider, provider_user_id) 가 유일하다.
type User struct {
	ID              string
	Provider        Provider
	ProviderUserID  string
	Email           string
	Nickname        string
	ProfileImageURL string
	CreatedAt       time.Time
	UpdatedAt       *time.Time
	LastLoginAt     *time.Time
}

// Session 은 사용자의 로그인 세션을 나타낸다.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
