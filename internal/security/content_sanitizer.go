// Package security 는 애플리케이션 보안 기능을 제공한다.
//
// ContentSanitizer 는 일기 제목과 본문에서 HTML 을 제거해
// XSS 공격으로부터 사용자를 보호한다. 일기는 순수 텍스트이므로
// bluemonday 의 StrictPolicy 로 모든 태그를 제거한다.
package security

import (
	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService 는 일기 텍스트 정리 기능의 인터페이스.
// 일기 저장 전과 프로필 닉네임 저장 전에 사용된다.
type ContentSanitizerService interface {
	// Sanitize 는 입력에서 모든 HTML 태그를 제거한 텍스트를 반환한다.
	// 빈 문자열 입력에는 빈 문자열을 반환한다.
	// 같은 입력에는 항상 같은 출력을 반환한다 (멱등).
	Sanitize(raw string) string
}

// contentSanitizer 는 ContentSanitizerService 의 구현.
// bluemonday 정책을 보관하며 스레드 세이프하게 동작한다.
type contentSanitizer struct {
	policy *bluemonday.Policy
}

// NewContentSanitizer 는 ContentSanitizerService 를 생성한다.
// StrictPolicy 는 어떤 태그도 허용하지 않고 전부 제거한다.
// script, iframe, style 태그와 on* 이벤트 속성도 당연히 제거된다.
func NewContentSanitizer() *contentSanitizer {
	return &contentSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize 는 입력에서 모든 HTML 태그를 제거한 텍스트를 반환한다.
func (s *contentSanitizer) Sanitize(raw string) string {
	return s.policy.Sanitize(raw)
}
