package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kjhk3082/maum/internal/model"
)

const (
	sessionCookieName = "session_id"
	oauthStateCookie  = "oauth_state"
)

// AuthServiceInterface 는 인증 핸들러가 필요로 하는 서비스 인터페이스.
type AuthServiceInterface interface {
	GetLoginURL(provider model.Provider, state string) (string, error)
	HandleCallback(ctx context.Context, provider model.Provider, code string) (*model.Session, *model.User, error)
	Logout(ctx context.Context, sessionID string) error
	GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error)
}

// AuthHandlerConfig 는 인증 핸들러 설정.
type AuthHandlerConfig struct {
	BaseURL       string
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // 세션 쿠키 유효 기간 (초)
}

// AuthHandler 는 OAuth 인증 관련 HTTP 핸들러.
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
}

// NewAuthHandler 는 AuthHandler 를 생성한다.
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
	}
}

// userResponse 는 사용자 정보 응답.
type userResponse struct {
	ID              string `json:"id"`
	Provider        string `json:"provider"`
	Email           string `json:"email"`
	Nickname        string `json:"nickname"`
	ProfileImageURL string `json:"profileImageUrl"`
}

// Login 은 OAuth 로그인 플로우를 시작한다.
// GET /auth/{provider}/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	provider, ok := model.ParseProvider(chi.URLParam(r, "provider"))
	if !ok {
		writeError(w, http.StatusBadRequest, "지원하지 않는 로그인 방식입니다.", nil)
		return
	}

	state, err := generateState()
	if err != nil {
		slog.Error("OAuth state 생성 실패", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "서버 내부 오류가 발생했습니다.", nil)
		return
	}

	loginURL, err := h.service.GetLoginURL(provider, state)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	// state 를 쿠키에 보관해 콜백에서 대조한다 (CSRF 대책).
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10분
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, loginURL, http.StatusTemporaryRedirect)
}

// Callback 은 OAuth 콜백을 처리한다.
// GET /auth/{provider}/callback?code=xxx&state=yyy
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	provider, ok := model.ParseProvider(chi.URLParam(r, "provider"))
	if !ok {
		writeError(w, http.StatusBadRequest, "지원하지 않는 로그인 방식입니다.", nil)
		return
	}

	// state 대조 (CSRF 대책)
	state := r.URL.Query().Get("state")
	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != state {
		slog.Warn("OAuth state 불일치", slog.String("provider", string(provider)))
		writeError(w, http.StatusBadRequest, "잘못된 요청입니다.", nil)
		return
	}

	// state 쿠키 제거
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "인가 코드가 없습니다.", nil)
		return
	}

	session, u, err := h.service.HandleCallback(r.Context(), provider, code)
	if err != nil {
		slog.Error("OAuth 콜백 처리 실패",
			slog.String("provider", string(provider)),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "로그인에 실패했습니다.", nil)
		return
	}

	// 세션 쿠키 설정 (HttpOnly)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    session.ID,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	slog.Info("로그인 완료",
		slog.String("provider", string(provider)),
		slog.String("user_id", u.ID),
	)

	// 프런트엔드로 리다이렉트
	http.Redirect(w, r, h.config.BaseURL, http.StatusTemporaryRedirect)
}

// Logout 은 세션을 파기한다.
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err == nil && cookie.Value != "" {
		// 세션 삭제에 실패해도 쿠키는 지운다.
		if logoutErr := h.service.Logout(r.Context(), cookie.Value); logoutErr != nil {
			slog.Error("로그아웃 실패", slog.String("error", logoutErr.Error()))
		}
	}

	h.clearSessionCookie(w)
	writeSuccess(w, http.StatusOK, "로그아웃되었습니다.", nil)
}

// Me 는 현재 로그인한 사용자 정보를 반환한다.
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		writeError(w, http.StatusUnauthorized, "로그인이 필요합니다.", nil)
		return
	}

	u, err := h.service.GetCurrentUser(r.Context(), cookie.Value)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "사용자 정보를 조회했습니다.", toUserResponse(u))
}

// clearSessionCookie 는 세션 쿠키를 만료시킨다.
func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// toUserResponse 는 model.User 를 API 응답으로 변환한다.
func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:              u.ID,
		Provider:        string(u.Provider),
		Email:           u.Email,
		Nickname:        u.Nickname,
		ProfileImageURL: u.ProfileImageURL,
	}
}

// generateState 는 CSRF 대책용 무작위 state 값을 생성한다.
func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
