// Package app 은 애플리케이션의 초기화와 기동을 담당한다.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/kjhk3082/maum/internal/auth"
	"github.com/kjhk3082/maum/internal/clock"
	"github.com/kjhk3082/maum/internal/config"
	"github.com/kjhk3082/maum/internal/database"
	"github.com/kjhk3082/maum/internal/diary"
	"github.com/kjhk3082/maum/internal/handler"
	"github.com/kjhk3082/maum/internal/logger"
	"github.com/kjhk3082/maum/internal/metrics"
	"github.com/kjhk3082/maum/internal/middleware"
	"github.com/kjhk3082/maum/internal/model"
	"github.com/kjhk3082/maum/internal/repository"
	"github.com/kjhk3082/maum/internal/security"
	"github.com/kjhk3082/maum/internal/storage"
	"github.com/kjhk3082/maum/internal/user"
	"github.com/kjhk3082/maum/internal/worker/cleanup"
)

// Init 은 애플리케이션 초기화를 수행한다.
// .env 파일이 있으면 읽고, JSON 구조화 로그를 설정한 뒤 환경 변수에서
// Config 를 로드한다. writer 가 지정되면 로그 출력처로 사용한다.
func Init(w io.Writer) (*config.Config, error) {
	// .env 는 개발 편의용. 없으면 조용히 넘어간다.
	_ = godotenv.Load()

	// 설정 로드 전부터 로그를 쓸 수 있게 로거를 먼저 초기화한다.
	logger.SetupDefault(w)

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run 은 애플리케이션의 메인 엔트리포인트.
// 커맨드라인 인수에서 서브커맨드를 해석해 대응하는 모드로 기동한다.
// args 에는 os.Args[1:] 를 넘긴다.
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck 는 경량 서브커맨드라 풀 초기화를 생략한다
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("애플리케이션 기동",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe 는 API 서버 모드로 기동한다.
// DB 연결을 열고 전체 의존 관계를 와이어링한 뒤 HTTP 서버를 시작한다.
// SIGINT 또는 SIGTERM 수신 시 그레이스풀 셧다운을 수행한다.
func runServe(cfg *config.Config) error {
	// 1. DB 연결
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("데이터베이스 연결 완료")

	// 2. 리포지토리 초기화
	userRepo := repository.NewPostgresUserRepo(db)
	sessionRepo := repository.NewPostgresSessionRepo(db)
	diaryRepo := repository.NewPostgresDiaryRepo(db)
	imageRepo := repository.NewPostgresDiaryImageRepo(db)

	// 3. 보안 컴포넌트 초기화
	sanitizer := security.NewContentSanitizer()
	urlGuard := security.NewProfileURLGuard()

	// 4. 이미지 스토리지 초기화
	imageStore, err := storage.NewS3Store(context.Background(), storage.Config{
		Bucket:    cfg.StorageBucket,
		Region:    cfg.StorageRegion,
		Endpoint:  cfg.StorageEndpoint,
		AccessKey: cfg.StorageAccessKey,
		SecretKey: cfg.StorageSecretKey,
		BaseURL:   cfg.StorageBaseURL,
	})
	if err != nil {
		return fmt.Errorf("failed to init image storage: %w", err)
	}

	// 5. 메트릭 초기화
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 6. 도메인 서비스 초기화
	systemClock := clock.System{}

	userService := user.NewService(userRepo, sessionRepo, imageRepo, imageStore, urlGuard, systemClock)

	providers := map[model.Provider]auth.OAuthProvider{
		model.ProviderKakao: auth.NewKakaoOAuthProvider(auth.KakaoOAuthConfig{
			ClientID:     cfg.KakaoClientID,
			ClientSecret: cfg.KakaoClientSecret,
			RedirectURL:  cfg.KakaoRedirectURL,
		}),
		model.ProviderGoogle: auth.NewGoogleOAuthProvider(auth.GoogleOAuthConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
		}),
	}
	authService := auth.NewService(
		providers, userService, sessionRepo, systemClock,
		auth.ServiceConfig{SessionMaxAge: cfg.SessionMaxAge},
	)

	diaryService := diary.NewService(
		diaryRepo, imageRepo, userRepo,
		imageStore, sanitizer, systemClock, collector,
	)

	// 7. 레이트 리미터 구성 (설정값은 분당 요청 수)
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	rateLimiterCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
	rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	rateLimiterCfg.DiaryWriteRate = rate.Limit(float64(cfg.RateLimitDiaryWrite) / 60.0)
	rateLimiterCfg.DiaryWriteBurst = cfg.RateLimitDiaryWrite
	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	// 8. 라우터 구성
	deps := &handler.RouterDeps{
		Logger:            slog.Default(),
		SessionFinder:     sessionRepo,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		CSRFConfig: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		MetricsRecorder: collector,
		MetricsHandler:  metrics.Handler(registry),

		AuthService: authService,
		AuthConfig: handler.AuthHandlerConfig{
			BaseURL:       cfg.BaseURL,
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},

		DiaryService: diaryService,
		UserService:  userService,

		DB: db,
	}

	router := handler.NewRouter(deps)

	// 9. 만료 세션 클린업 잡을 백그라운드에서 일 단위로 실행
	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	defer cancelCleanup()
	cleanupJob := cleanup.NewSessionCleanupJob(db, slog.Default())
	go cleanupJob.Start(cleanupCtx, 24*time.Hour)

	// 10. HTTP 서버 기동
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 그레이스풀 셧다운을 위한 시그널 핸들링
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API 서버 기동",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("서버 리슨 에러", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("API 서버 종료 중...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API 서버가 정상 종료되었습니다")
	return nil
}

// runMigrate 는 데이터베이스 마이그레이션을 실행한다.
// 미적용 마이그레이션을 순서대로 모두 적용한다.
func runMigrate(cfg *config.Config) error {
	slog.Info("데이터베이스 마이그레이션 실행",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("데이터베이스 마이그레이션 완료")
	return nil
}

// runHealthcheck 는 헬스체크를 실행한다.
// distroless 환경에서의 Docker 헬스체크용 서브커맨드.
// /health 엔드포인트에 HTTP 요청을 보내 결과를 반환한다.
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL 은 데이터베이스 URL 의 인증 정보를 마스킹한다.
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
