// Package user 는 사용자 관리 도메인 로직을 제공한다.
package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/kjhk3082/maum/internal/clock"
	"github.com/kjhk3082/maum/internal/model"
	"github.com/kjhk3082/maum/internal/repository"
)

// ObjectDeleter 는 탈퇴 시 스토리지 오브젝트를 정리하는 인터페이스.
type ObjectDeleter interface {
	Delete(ctx context.Context, key string) error
}

// ProfileURLChecker 는 외부 프로필 이미지 URL 의 안전성을 검사한다.
type ProfileURLChecker interface {
	Check(rawURL string) error
}

// Profile 은 OAuth 제공자에서 받아온 사용자 프로필.
type Profile struct {
	Provider        model.Provider
	ProviderUserID  string
	Email           string
	Nickname        string
	ProfileImageURL string
}

// ProfileUpdate 는 사용자가 직접 수정할 수 있는 프로필 항목.
type ProfileUpdate struct {
	Nickname        string
	ProfileImageURL string
}

// Service 는 사용자 관리 서비스 계층.
// 소셜 로그인 사용자 등록과 탈퇴 처리를 담당한다.
type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	imageRepo   repository.DiaryImageRepository
	objects     ObjectDeleter
	urlChecker  ProfileURLChecker
	clock       clock.Clock
}

// NewService 는 Service 를 생성한다.
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	imageRepo repository.DiaryImageRepository,
	objects ObjectDeleter,
	urlChecker ProfileURLChecker,
	clk clock.Clock,
) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		imageRepo:   imageRepo,
		objects:     objects,
		urlChecker:  urlChecker,
		clock:       clk,
	}
}

// Resolve 는 OAuth 프로필로 사용자를 찾거나 새로 등록한다.
// 기존 사용자는 프로필과 마지막 로그인 시각을 갱신한다.
func (s *Service) Resolve(ctx context.Context, profile Profile) (*model.User, error) {
	if err := s.checkProfileURL(profile.ProfileImageURL); err != nil {
		// 안전하지 않은 URL 은 저장하지 않고 빈 값으로 대체한다
		slog.Warn("프로필 이미지 URL 검증 실패",
			slog.String("provider", string(profile.Provider)),
			slog.String("error", err.Error()),
		)
		profile.ProfileImageURL = ""
	}

	now := s.clock.Now()

	existing, err := s.userRepo.FindByProviderUserID(ctx, profile.Provider, profile.ProviderUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if existing != nil {
		existing.Email = profile.Email
		existing.Nickname = profile.Nickname
		existing.ProfileImageURL = profile.ProfileImageURL
		existing.UpdatedAt = &now
		existing.LastLoginAt = &now
		if err := s.userRepo.UpdateProfile(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to update user profile: %w", err)
		}
		return existing, nil
	}

	u := &model.User{
		ID:              uuid.New().String(),
		Provider:        profile.Provider,
		ProviderUserID:  profile.ProviderUserID,
		Email:           profile.Email,
		Nickname:        profile.Nickname,
		ProfileImageURL: profile.ProfileImageURL,
		CreatedAt:       now,
		LastLoginAt:     &now,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("신규 사용자 등록됨",
		slog.String("user_id", u.ID),
		slog.String("provider", string(u.Provider)),
	)

	return u, nil
}

// Get 은 사용자를 조회한다. 없으면 USER_NOT_FOUND 를 반환한다.
func (s *Service) Get(ctx context.Context, userID string) (*model.User, error) {
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if u == nil {
		return nil, model.NewUserNotFoundError()
	}
	return u, nil
}

// UpdateProfile 은 닉네임과 프로필 이미지 URL 을 수정한다.
func (s *Service) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*model.User, error) {
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if u == nil {
		return nil, model.NewUserNotFoundError()
	}

	if update.ProfileImageURL != "" {
		if err := s.checkProfileURL(update.ProfileImageURL); err != nil {
			return nil, model.NewValidationError()
		}
	}

	now := s.clock.Now()
	u.Nickname = update.Nickname
	u.ProfileImageURL = update.ProfileImageURL
	u.UpdatedAt = &now

	if err := s.userRepo.UpdateProfile(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to update user profile: %w", err)
	}

	return u, nil
}

// Withdraw 는 탈퇴 처리를 실행한다.
// 삭제 순서: 스토리지 오브젝트(베스트 에포트) → 세션 → 사용자 (+ CASCADE: diaries, diary_images)
func (s *Service) Withdraw(ctx context.Context, userID string) error {
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if u == nil {
		return model.NewUserNotFoundError()
	}

	slog.Info("탈퇴 처리 시작",
		slog.String("user_id", userID),
	)

	// 1. 첨부 이미지의 스토리지 오브젝트 정리.
	// DB 행은 CASCADE 로 지워지므로 오브젝트 키를 먼저 확보한다.
	if s.imageRepo != nil && s.objects != nil {
		images, err := s.imageRepo.ListByUserID(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to list diary images: %w", err)
		}
		for _, img := range images {
			if err := s.objects.Delete(ctx, img.FileName); err != nil {
				slog.Warn("스토리지 오브젝트 삭제 실패",
					slog.String("key", img.FileName),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	// 2. 세션 삭제
	if s.sessionRepo != nil {
		if err := s.sessionRepo.DeleteByUserID(ctx, userID); err != nil {
			return fmt.Errorf("failed to delete sessions: %w", err)
		}
	}

	// 3. 사용자 삭제 (diaries, diary_images 는 CASCADE 삭제)
	if err := s.userRepo.DeleteByID(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	slog.Info("탈퇴 처리 완료",
		slog.String("user_id", userID),
	)

	return nil
}

func (s *Service) checkProfileURL(rawURL string) error {
	if rawURL == "" || s.urlChecker == nil {
		return nil
	}
	return s.urlChecker.Check(rawURL)
}
