package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"unicode/utf8"

	"github.com/kjhk3082/maum/internal/middleware"
	"github.com/kjhk3082/maum/internal/model"
	"github.com/kjhk3082/maum/internal/user"
)

// maxNicknameRunes 는 닉네임 길이 상한.
const maxNicknameRunes = 20

// UserServiceInterface 는 사용자 핸들러가 필요로 하는 서비스 인터페이스.
type UserServiceInterface interface {
	Get(ctx context.Context, userID string) (*model.User, error)
	UpdateProfile(ctx context.Context, userID string, update user.ProfileUpdate) (*model.User, error)
	Withdraw(ctx context.Context, userID string) error
}

// UserHandler 는 사용자 관련 HTTP 핸들러.
type UserHandler struct {
	service UserServiceInterface
	config  AuthHandlerConfig
}

// NewUserHandler 는 UserHandler 를 생성한다.
// 탈퇴 시 세션 쿠키를 지워야 해서 쿠키 설정을 함께 받는다.
func NewUserHandler(service UserServiceInterface, config AuthHandlerConfig) *UserHandler {
	return &UserHandler{
		service: service,
		config:  config,
	}
}

// updateProfileRequest 는 프로필 수정 요청 바디.
type updateProfileRequest struct {
	Nickname        string `json:"nickname"`
	ProfileImageURL string `json:"profileImageUrl"`
}

// Me 는 로그인한 사용자의 프로필을 반환한다.
// GET /api/users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "로그인이 필요합니다.", nil)
		return
	}

	u, err := h.service.Get(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "사용자 정보를 조회했습니다.", toUserResponse(u))
}

// UpdateProfile 은 닉네임과 프로필 이미지를 수정한다.
// PUT /api/users/me
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "로그인이 필요합니다.", nil)
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "요청 본문을 해석할 수 없습니다.", nil)
		return
	}

	fields := map[string]string{}
	if req.Nickname == "" {
		fields["nickname"] = "닉네임을 입력해 주세요."
	} else if utf8.RuneCountInString(req.Nickname) > maxNicknameRunes {
		fields["nickname"] = "닉네임은 20자 이하여야 합니다."
	}
	if len(fields) > 0 {
		writeError(w, http.StatusBadRequest, "입력값이 올바르지 않습니다.", fields)
		return
	}

	u, err := h.service.UpdateProfile(r.Context(), userID, user.ProfileUpdate{
		Nickname:        req.Nickname,
		ProfileImageURL: req.ProfileImageURL,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "프로필이 수정되었습니다.", toUserResponse(u))
}

// Withdraw 는 회원 탈퇴를 처리한다. 일기와 이미지, 세션이 함께 삭제된다.
// DELETE /api/users/me
func (h *UserHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "로그인이 필요합니다.", nil)
		return
	}

	if err := h.service.Withdraw(r.Context(), userID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	// 탈퇴 후 세션 쿠키를 만료시킨다.
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

	writeSuccess(w, http.StatusOK, "회원 탈퇴가 완료되었습니다.", nil)
}
