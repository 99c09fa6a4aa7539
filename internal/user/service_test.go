package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kjhk3082/maum/internal/clock"
	"github.com/kjhk3082/maum/internal/model"
)

// --- 모크 ---

type mockUserRepo struct {
	findByIDFn             func(ctx context.Context, id string) (*model.User, error)
	findByProviderUserIDFn func(ctx context.Context, provider model.Provider, providerUserID string) (*model.User, error)
	createFn               func(ctx context.Context, u *model.User) error
	updateProfileFn        func(ctx context.Context, u *model.User) error
	deleteByIDFn           func(ctx context.Context, id string) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByProviderUserID(ctx context.Context, provider model.Provider, providerUserID string) (*model.User, error) {
	if m.findByProviderUserIDFn != nil {
		return m.findByProviderUserIDFn(ctx, provider, providerUserID)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, u *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, u)
	}
	return nil
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, u *model.User) error {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, u)
	}
	return nil
}

func (m *mockUserRepo) DeleteByID(ctx context.Context, id string) error {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id)
	}
	return nil
}

type mockSessionRepo struct {
	deleteByUserIDFn func(ctx context.Context, userID string) error
}

func (m *mockSessionRepo) Create(ctx context.Context, session *model.Session) error { return nil }
func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	return nil, nil
}
func (m *mockSessionRepo) DeleteByID(ctx context.Context, id string) error { return nil }
func (m *mockSessionRepo) DeleteByUserID(ctx context.Context, userID string) error {
	if m.deleteByUserIDFn != nil {
		return m.deleteByUserIDFn(ctx, userID)
	}
	return nil
}

type mockImageRepo struct {
	listByUserIDFn func(ctx context.Context, userID string) ([]*model.DiaryImage, error)
}

func (m *mockImageRepo) Create(ctx context.Context, img *model.DiaryImage) error { return nil }
func (m *mockImageRepo) FindByID(ctx context.Context, id string) (*model.DiaryImage, error) {
	return nil, nil
}
func (m *mockImageRepo) ListByDiaryID(ctx context.Context, diaryID string) ([]*model.DiaryImage, error) {
	return nil, nil
}
func (m *mockImageRepo) ListByUserID(ctx context.Context, userID string) ([]*model.DiaryImage, error) {
	if m.listByUserIDFn != nil {
		return m.listByUserIDFn(ctx, userID)
	}
	return nil, nil
}
func (m *mockImageRepo) Delete(ctx context.Context, id string) error { return nil }

type mockObjectDeleter struct {
	deleteFn func(ctx context.Context, key string) error
}

func (m *mockObjectDeleter) Delete(ctx context.Context, key string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, key)
	}
	return nil
}

type mockURLChecker struct {
	checkFn func(rawURL string) error
}

func (m *mockURLChecker) Check(rawURL string) error {
	if m.checkFn != nil {
		return m.checkFn(rawURL)
	}
	return nil
}

var testNow = time.Date(2025, 5, 10, 19, 0, 0, 0, time.UTC)

func newTestService(userRepo *mockUserRepo, sessionRepo *mockSessionRepo, imageRepo *mockImageRepo, objects *mockObjectDeleter, checker *mockURLChecker) *Service {
	return NewService(userRepo, sessionRepo, imageRepo, objects, checker, clock.Fixed{T: testNow})
}

// --- 테스트 ---

func TestResolve_NewUser(t *testing.T) {
	var created *model.User
	userRepo := &mockUserRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			created = u
			return nil
		},
	}
	svc := newTestService(userRepo, &mockSessionRepo{}, &mockImageRepo{}, &mockObjectDeleter{}, &mockURLChecker{})

	u, err := svc.Resolve(context.Background(), Profile{
		Provider:        model.ProviderKakao,
		ProviderUserID:  "kakao-12345",
		Email:           "test@example.com",
		Nickname:        "마음이",
		ProfileImageURL: "https://k.kakaocdn.net/img.png",
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	if created == nil {
		t.Fatal("new user was not persisted")
	}
	if u.ID == "" {
		t.Error("user ID should be generated")
	}
	if u.Provider != model.ProviderKakao {
		t.Errorf("Provider = %q, want kakao", u.Provider)
	}
	if u.LastLoginAt == nil || !u.LastLoginAt.Equal(testNow) {
		t.Error("LastLoginAt should be set to current time")
	}
}

func TestResolve_ExistingUserRefreshesProfile(t *testing.T) {
	existing := &model.User{
		ID:             "u-1",
		Provider:       model.ProviderGoogle,
		ProviderUserID: "google-99",
		Nickname:       "옛 닉네임",
		CreatedAt:      testNow.Add(-72 * time.Hour),
	}
	var updated *model.User
	userRepo := &mockUserRepo{
		findByProviderUserIDFn: func(ctx context.Context, provider model.Provider, providerUserID string) (*model.User, error) {
			return existing, nil
		},
		updateProfileFn: func(ctx context.Context, u *model.User) error {
			updated = u
			return nil
		},
	}
	svc := newTestService(userRepo, &mockSessionRepo{}, &mockImageRepo{}, &mockObjectDeleter{}, &mockURLChecker{})

	u, err := svc.Resolve(context.Background(), Profile{
		Provider:       model.ProviderGoogle,
		ProviderUserID: "google-99",
		Nickname:       "새 닉네임",
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	if updated == nil {
		t.Fatal("existing user profile was not updated")
	}
	if u.ID != "u-1" {
		t.Errorf("ID = %q, want u-1 (no new user)", u.ID)
	}
	if u.Nickname != "새 닉네임" {
		t.Errorf("Nickname = %q, want 새 닉네임", u.Nickname)
	}
	if u.LastLoginAt == nil || !u.LastLoginAt.Equal(testNow) {
		t.Error("LastLoginAt should be refreshed on login")
	}
}

func TestResolve_UnsafeProfileURLDropped(t *testing.T) {
	var created *model.User
	userRepo := &mockUserRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			created = u
			return nil
		},
	}
	checker := &mockURLChecker{
		checkFn: func(rawURL string) error {
			return errors.New("internal address not allowed")
		},
	}
	svc := newTestService(userRepo, &mockSessionRepo{}, &mockImageRepo{}, &mockObjectDeleter{}, checker)

	_, err := svc.Resolve(context.Background(), Profile{
		Provider:        model.ProviderKakao,
		ProviderUserID:  "kakao-1",
		ProfileImageURL: "http://169.254.169.254/latest/meta-data",
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	if created.ProfileImageURL != "" {
		t.Errorf("unsafe profile URL should be dropped, got %q", created.ProfileImageURL)
	}
}

func TestUpdateProfile_UnsafeURLRejected(t *testing.T) {
	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Nickname: "기존"}, nil
		},
	}
	checker := &mockURLChecker{
		checkFn: func(rawURL string) error {
			return errors.New("blocked")
		},
	}
	svc := newTestService(userRepo, &mockSessionRepo{}, &mockImageRepo{}, &mockObjectDeleter{}, checker)

	_, err := svc.UpdateProfile(context.Background(), "u-1", ProfileUpdate{
		Nickname:        "새닉",
		ProfileImageURL: "http://10.0.0.1/x.png",
	})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidationFailed {
		t.Errorf("expected VALIDATION_FAILED, got %v", err)
	}
}

func TestWithdraw_DeletesAllRelatedData(t *testing.T) {
	userDeleteCalled := false
	sessionDeleteCalled := false
	var deletedKeys []string

	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Email: "test@example.com"}, nil
		},
		deleteByIDFn: func(ctx context.Context, id string) error {
			userDeleteCalled = true
			return nil
		},
	}
	sessionRepo := &mockSessionRepo{
		deleteByUserIDFn: func(ctx context.Context, userID string) error {
			sessionDeleteCalled = true
			return nil
		},
	}
	imageRepo := &mockImageRepo{
		listByUserIDFn: func(ctx context.Context, userID string) ([]*model.DiaryImage, error) {
			return []*model.DiaryImage{
				{ID: "i-1", FileName: "diaries/d-1/a.png"},
			}, nil
		},
	}
	objects := &mockObjectDeleter{
		deleteFn: func(ctx context.Context, key string) error {
			deletedKeys = append(deletedKeys, key)
			return nil
		},
	}
	svc := newTestService(userRepo, sessionRepo, imageRepo, objects, &mockURLChecker{})

	if err := svc.Withdraw(context.Background(), "u-1"); err != nil {
		t.Fatalf("Withdraw returned error: %v", err)
	}

	if !userDeleteCalled {
		t.Error("user row should be deleted")
	}
	if !sessionDeleteCalled {
		t.Error("sessions should be deleted")
	}
	if len(deletedKeys) != 1 || deletedKeys[0] != "diaries/d-1/a.png" {
		t.Errorf("storage objects not cleaned up: %v", deletedKeys)
	}
}

func TestWithdraw_UserNotFound(t *testing.T) {
	svc := newTestService(&mockUserRepo{}, &mockSessionRepo{}, &mockImageRepo{}, &mockObjectDeleter{}, &mockURLChecker{})

	err := svc.Withdraw(context.Background(), "missing")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUserNotFound {
		t.Errorf("expected USER_NOT_FOUND, got %v", err)
	}
}

// 오브젝트 삭제 실패가 탈퇴를 막지 않는지 확인한다.
func TestWithdraw_StorageFailureDoesNotBlock(t *testing.T) {
	userDeleteCalled := false
	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id}, nil
		},
		deleteByIDFn: func(ctx context.Context, id string) error {
			userDeleteCalled = true
			return nil
		},
	}
	imageRepo := &mockImageRepo{
		listByUserIDFn: func(ctx context.Context, userID string) ([]*model.DiaryImage, error) {
			return []*model.DiaryImage{{ID: "i-1", FileName: "diaries/d-1/a.png"}}, nil
		},
	}
	objects := &mockObjectDeleter{
		deleteFn: func(ctx context.Context, key string) error {
			return errors.New("storage unavailable")
		},
	}
	svc := newTestService(userRepo, &mockSessionRepo{}, imageRepo, objects, &mockURLChecker{})

	if err := svc.Withdraw(context.Background(), "u-1"); err != nil {
		t.Fatalf("Withdraw should tolerate storage failures, got: %v", err)
	}
	if !userDeleteCalled {
		t.Error("user should still be deleted")
	}
}
