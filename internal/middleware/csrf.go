package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
)

const (
	// csrfCookieName 은 CSRF 토큰을 담는 쿠키 이름.
	// 프런트엔드가 JavaScript 로 읽을 수 있도록 HttpOnly 가 아니다.
	csrfCookieName = "csrf_token"

	// csrfHeaderName 은 요청 헤더에서 CSRF 토큰을 읽을 때의 헤더 이름.
	csrfHeaderName = "X-CSRF-Token"
)

// CSRFConfig 는 CSRF 미들웨어 설정.
type CSRFConfig struct {
	CookieSecure bool
	CookieDomain string
}

// NewCSRFMiddleware 는 CSRF 토큰 생성/검증 미들웨어를 반환한다.
// 안전한 메서드 (GET, HEAD, OPTIONS) 는 토큰 검증을 건너뛰고 토큰 쿠키를 심는다.
// 상태 변경 메서드 (POST, PUT, PATCH, DELETE) 는 토큰 검증을 필수로 한다.
func NewCSRFMiddleware(config CSRFConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSafeMethod(r.Method) {
				ensureCSRFCookie(w, r, config)
				next.ServeHTTP(w, r)
				return
			}

			cookieToken, err := r.Cookie(csrfCookieName)
			if err != nil || cookieToken.Value == "" {
				slog.Warn("CSRF validation failed: missing cookie token",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				writeEnvelope(w, http.StatusForbidden, "잘못된 요청입니다.")
				return
			}

			headerToken := r.Header.Get(csrfHeaderName)
			if headerToken == "" {
				slog.Warn("CSRF validation failed: missing header token",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				writeEnvelope(w, http.StatusForbidden, "잘못된 요청입니다.")
				return
			}

			if cookieToken.Value != headerToken {
				slog.Warn("CSRF validation failed: token mismatch",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				writeEnvelope(w, http.StatusForbidden, "잘못된 요청입니다.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// NewCSRFTokenHandler 는 CSRF 토큰 발급 엔드포인트의 핸들러를 반환한다.
// GET /api/csrf-token
// 기존 토큰 쿠키가 있으면 그대로 돌려주고, 없으면 새로 만든다.
func NewCSRFTokenHandler(config CSRFConfig) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string

		cookie, err := r.Cookie(csrfCookieName)
		if err == nil && cookie.Value != "" {
			token = cookie.Value
		} else {
			token, err = generateCSRFToken()
			if err != nil {
				slog.Error("failed to generate CSRF token", slog.String("error", err.Error()))
				writeEnvelope(w, http.StatusInternalServerError, "서버 내부 오류가 발생했습니다.")
				return
			}

			setCSRFCookie(w, token, config)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"token": token,
		})
	})
}

// isSafeMethod 는 HTTP 메서드가 읽기 전용인지 판정한다.
func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}

// ensureCSRFCookie 는 토큰 쿠키가 없으면 심는다.
func ensureCSRFCookie(w http.ResponseWriter, r *http.Request, config CSRFConfig) {
	_, err := r.Cookie(csrfCookieName)
	if err == nil {
		return
	}

	token, err := generateCSRFToken()
	if err != nil {
		slog.Error("failed to generate CSRF token", slog.String("error", err.Error()))
		return
	}

	setCSRFCookie(w, token, config)
}

func setCSRFCookie(w http.ResponseWriter, token string, config CSRFConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		Domain:   config.CookieDomain,
		MaxAge:   86400, // 24시간
		HttpOnly: false, // 프런트엔드에서 읽을 수 있어야 한다
		Secure:   config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// generateCSRFToken 은 암호학적으로 안전한 CSRF 토큰을 생성한다.
func generateCSRFToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
