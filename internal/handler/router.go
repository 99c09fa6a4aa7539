package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kjhk3082/maum/internal/middleware"
)

// RouterDeps 는 NewRouter 에 필요한 의존성을 모은 구조체.
type RouterDeps struct {
	// 미들웨어 의존
	Logger            *slog.Logger
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig
	MetricsRecorder   middleware.RequestRecorder

	// 관측
	MetricsHandler http.Handler

	// 인증
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 일기
	DiaryService DiaryServiceInterface

	// 사용자
	UserService UserServiceInterface

	// 헬스체크
	DB Pinger
}

// NewRouter 는 전체 API 엔드포인트의 라우팅과 미들웨어 체인을 구성한 chi.Router 를 반환한다.
//
// 미들웨어 스택 실행 순서:
//
//	CORS → SecurityHeaders → Recovery → Logging → (Session → CSRF → RateLimit)
//
// 인증 라우트 (/auth/*) 와 헬스체크, 메트릭은 세션 체인 밖에 둔다.
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 전 라우트 공통 미들웨어
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.MetricsRecorder))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	diaryHandler := NewDiaryHandler(deps.DiaryService)
	userHandler := NewUserHandler(deps.UserService, deps.AuthConfig)
	healthHandler := NewHealthHandler(deps.DB)

	// --- 인증 불필요 라우트 ---

	r.Route("/auth", func(r chi.Router) {
		r.Get("/{provider}/login", authHandler.Login)
		r.Get("/{provider}/callback", authHandler.Callback)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	r.Get("/health", healthHandler.Check)

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// 프런트엔드가 첫 요청 전에 CSRF 토큰을 받아가는 엔드포인트
	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	// --- 인증 필요 라우트 ---
	// 미들웨어 스택: Session → CSRF → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		writeLimit := deps.RateLimiter.DiaryWriteMiddleware()

		// 일기 관리
		r.Route("/api/diaries", func(r chi.Router) {
			r.With(writeLimit).Post("/", diaryHandler.Create)
			r.Get("/", diaryHandler.List)

			r.Get("/search", diaryHandler.Search)
			r.Get("/emotion/{emotion}", diaryHandler.ListByEmotion)
			r.Get("/range", diaryHandler.ListByDateRange)
			r.Get("/stats/emotions", diaryHandler.EmotionStats)
			r.Get("/writable-time", diaryHandler.WritableTime)
			r.Get("/exists/{date}", diaryHandler.Exists)

			r.Route("/{date}", func(r chi.Router) {
				r.Get("/", diaryHandler.Get)
				r.With(writeLimit).Put("/", diaryHandler.Update)
				r.With(writeLimit).Delete("/", diaryHandler.Delete)

				r.With(writeLimit).Post("/images", diaryHandler.AttachImage)
				r.With(writeLimit).Delete("/images/{imageID}", diaryHandler.RemoveImage)
			})
		})

		// 사용자 관리
		r.Route("/api/users", func(r chi.Router) {
			r.Get("/me", userHandler.Me)
			r.Put("/me", userHandler.UpdateProfile)
			r.Delete("/me", userHandler.Withdraw)
		})
	})

	return r
}
