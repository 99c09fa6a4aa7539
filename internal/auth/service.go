// Package auth 는 OAuth 인증 플로우와 세션 관리를 제공한다.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/kjhk3082/maum/internal/clock"
	"github.com/kjhk3082/maum/internal/model"
	"github.com/kjhk3082/maum/internal/repository"
	"github.com/kjhk3082/maum/internal/user"
)

// OAuthUserInfo 는 OAuth 제공자에서 받아온 사용자 정보.
type OAuthUserInfo struct {
	Provider        model.Provider
	ProviderUserID  string
	Email           string
	Nickname        string
	ProfileImageURL string
}

// OAuthProvider 는 OAuth 인증 제공자 인터페이스.
// 카카오와 구글 두 구현이 있다.
type OAuthProvider interface {
	// GetLoginURL 은 OAuth 인증 URL 을 생성한다.
	GetLoginURL(state string) string
	// ExchangeCode 는 인가 코드를 토큰으로 교환하고 사용자 정보를 가져온다.
	ExchangeCode(ctx context.Context, code string) (*OAuthUserInfo, error)
}

// UserResolver 는 OAuth 프로필로 사용자를 찾거나 등록한다.
type UserResolver interface {
	Resolve(ctx context.Context, profile user.Profile) (*model.User, error)
	Get(ctx context.Context, userID string) (*model.User, error)
}

// ServiceConfig 는 인증 서비스 설정.
type ServiceConfig struct {
	SessionMaxAge int // 세션 유효 기간 (초)
}

// Service 는 인증 비즈니스 로직을 제공한다.
type Service struct {
	providers   map[model.Provider]OAuthProvider
	users       UserResolver
	sessionRepo repository.SessionRepository
	clock       clock.Clock
	config      ServiceConfig
}

// NewService 는 Service 를 생성한다.
func NewService(
	providers map[model.Provider]OAuthProvider,
	users UserResolver,
	sessionRepo repository.SessionRepository,
	clk clock.Clock,
	config ServiceConfig,
) *Service {
	return &Service{
		providers:   providers,
		users:       users,
		sessionRepo: sessionRepo,
		clock:       clk,
		config:      config,
	}
}

// GetLoginURL 은 지정 제공자의 OAuth 인증 URL 을 생성한다.
func (s *Service) GetLoginURL(provider model.Provider, state string) (string, error) {
	p, ok := s.providers[provider]
	if !ok {
		return "", fmt.Errorf("unsupported oauth provider: %s", provider)
	}
	return p.GetLoginURL(state), nil
}

// HandleCallback 은 OAuth 콜백을 처리하고 세션을 발급한다.
// 미등록 사용자는 자동으로 등록된다.
func (s *Service) HandleCallback(ctx context.Context, provider model.Provider, code string) (*model.Session, *model.User, error) {
	p, ok := s.providers[provider]
	if !ok {
		return nil, nil, fmt.Errorf("unsupported oauth provider: %s", provider)
	}

	info, err := p.ExchangeCode(ctx, code)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	u, err := s.users.Resolve(ctx, user.Profile{
		Provider:        info.Provider,
		ProviderUserID:  info.ProviderUserID,
		Email:           info.Email,
		Nickname:        info.Nickname,
		ProfileImageURL: info.ProfileImageURL,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	session, err := s.createSession(ctx, u.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("로그인 완료",
		slog.String("user_id", u.ID),
		slog.String("provider", string(provider)),
	)

	return session, u, nil
}

// Logout 은 세션을 파기한다.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("로그아웃 완료", slog.String("session_id", sessionID))
	return nil
}

// GetCurrentUser 는 세션에서 현재 사용자를 얻는다.
// 세션이 없거나 만료되었으면 UNAUTHORIZED 를 반환한다.
func (s *Service) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if sessionID == "" {
		return nil, model.NewUnauthorizedError()
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, model.NewUnauthorizedError()
	}

	u, err := s.users.Get(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// createSession 은 세션을 만들어 영속화한다.
func (s *Service) createSession(ctx context.Context, userID string) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	now := s.clock.Now()
	session := &model.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: now.Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: now,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// generateSessionID 는 암호학적으로 안전한 세션 ID 를 생성한다.
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
