package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kjhk3082/maum/internal/model"
	"github.com/kjhk3082/maum/internal/user"
)

// mockUserService 는 UserServiceInterface 의 모의 구현.
type mockUserService struct {
	getFunc           func(ctx context.Context, userID string) (*model.User, error)
	updateProfileFunc func(ctx context.Context, userID string, update user.ProfileUpdate) (*model.User, error)
	withdrawFunc      func(ctx context.Context, userID string) error
}

func (m *mockUserService) Get(ctx context.Context, userID string) (*model.User, error) {
	return m.getFunc(ctx, userID)
}

func (m *mockUserService) UpdateProfile(ctx context.Context, userID string, update user.ProfileUpdate) (*model.User, error) {
	return m.updateProfileFunc(ctx, userID, update)
}

func (m *mockUserService) Withdraw(ctx context.Context, userID string) error {
	return m.withdrawFunc(ctx, userID)
}

func newUserRouter(svc UserServiceInterface) chi.Router {
	r := chi.NewRouter()
	h := NewUserHandler(svc, AuthHandlerConfig{SessionMaxAge: 86400})
	r.Get("/api/users/me", h.Me)
	r.Put("/api/users/me", h.UpdateProfile)
	r.Delete("/api/users/me", h.Withdraw)
	return r
}

func TestUserHandler_Me(t *testing.T) {
	svc := &mockUserService{
		getFunc: func(_ context.Context, userID string) (*model.User, error) {
			if userID != "u-1" {
				t.Errorf("userID = %s, want u-1", userID)
			}
			return &model.User{
				ID:       "u-1",
				Provider: model.ProviderKakao,
				Nickname: "일기장주인",
			}, nil
		},
	}
	r := newUserRouter(svc)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/api/users/me", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	resp := decodeEnvelope(t, rec)
	data, _ := resp.Data.(map[string]any)
	if data["nickname"] != "일기장주인" {
		t.Errorf("nickname = %v", data["nickname"])
	}
	if data["provider"] != "kakao" {
		t.Errorf("provider = %v", data["provider"])
	}
}

func TestUserHandler_Me_NotFound(t *testing.T) {
	svc := &mockUserService{
		getFunc: func(_ context.Context, _ string) (*model.User, error) {
			return nil, model.NewUserNotFoundError()
		},
	}
	r := newUserRouter(svc)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/api/users/me", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestUserHandler_UpdateProfile(t *testing.T) {
	svc := &mockUserService{
		updateProfileFunc: func(_ context.Context, _ string, update user.ProfileUpdate) (*model.User, error) {
			return &model.User{
				ID:              "u-1",
				Provider:        model.ProviderKakao,
				Nickname:        update.Nickname,
				ProfileImageURL: update.ProfileImageURL,
			}, nil
		},
	}
	r := newUserRouter(svc)

	body := bytes.NewBufferString(`{"nickname":"새닉네임","profileImageUrl":"https://cdn.example.com/p.png"}`)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, authedRequest(t, http.MethodPut, "/api/users/me", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	resp := decodeEnvelope(t, rec)
	data, _ := resp.Data.(map[string]any)
	if data["nickname"] != "새닉네임" {
		t.Errorf("nickname = %v, want 새닉네임", data["nickname"])
	}
}

func TestUserHandler_UpdateProfile_EmptyNickname(t *testing.T) {
	svc := &mockUserService{
		updateProfileFunc: func(_ context.Context, _ string, _ user.ProfileUpdate) (*model.User, error) {
			t.Fatal("검증 실패 시 서비스가 호출되면 안 된다")
			return nil, nil
		},
	}
	r := newUserRouter(svc)

	body := bytes.NewBufferString(`{"nickname":"","profileImageUrl":""}`)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, authedRequest(t, http.MethodPut, "/api/users/me", body))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestUserHandler_UpdateProfile_UnsafeURL(t *testing.T) {
	svc := &mockUserService{
		updateProfileFunc: func(_ context.Context, _ string, _ user.ProfileUpdate) (*model.User, error) {
			return nil, model.NewValidationError()
		},
	}
	r := newUserRouter(svc)

	body := bytes.NewBufferString(`{"nickname":"닉네임","profileImageUrl":"http://169.254.169.254/meta"}`)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, authedRequest(t, http.MethodPut, "/api/users/me", body))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestUserHandler_Withdraw(t *testing.T) {
	var withdrawn string
	svc := &mockUserService{
		withdrawFunc: func(_ context.Context, userID string) error {
			withdrawn = userID
			return nil
		},
	}
	r := newUserRouter(svc)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, authedRequest(t, http.MethodDelete, "/api/users/me", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if withdrawn != "u-1" {
		t.Errorf("탈퇴 사용자 = %s, want u-1", withdrawn)
	}

	// 탈퇴 후 세션 쿠키가 만료되어야 한다
	cleared := findCookie(rec, sessionCookieName)
	if cleared == nil || cleared.MaxAge != -1 {
		t.Error("세션 쿠키가 만료되지 않았다")
	}
}
