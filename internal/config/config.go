package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config 는 애플리케이션 전체 설정을 담는다.
// 기동 시 환경 변수에서 한 번 읽어 불변으로 취급한다.
type Config struct {
	// Database
	DatabaseURL string

	// OAuth (카카오)
	KakaoClientID     string
	KakaoClientSecret string
	KakaoRedirectURL  string

	// OAuth (구글)
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	// Session
	SessionMaxAge int

	// Storage (첨부 이미지)
	StorageBucket    string
	StorageRegion    string
	StorageEndpoint  string
	StorageAccessKey string
	StorageSecretKey string
	StorageBaseURL   string

	// Rate Limit (분당 허용 요청 수)
	RateLimitGeneral    int
	RateLimitDiaryWrite int

	// Server
	ServerPort string
	BaseURL    string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string
}

// Load 는 환경 변수에서 Config 를 읽는다.
// 필수 환경 변수가 비어 있으면 에러를 반환한다.
func Load() (*Config, error) {
	cfg := &Config{}

	// 필수 항목
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.KakaoClientID = os.Getenv("KAKAO_CLIENT_ID")
	if cfg.KakaoClientID == "" {
		missing = append(missing, "KAKAO_CLIENT_ID")
	}

	cfg.KakaoRedirectURL = os.Getenv("KAKAO_REDIRECT_URL")
	if cfg.KakaoRedirectURL == "" {
		missing = append(missing, "KAKAO_REDIRECT_URL")
	}

	cfg.GoogleClientID = os.Getenv("GOOGLE_CLIENT_ID")
	if cfg.GoogleClientID == "" {
		missing = append(missing, "GOOGLE_CLIENT_ID")
	}

	cfg.GoogleClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	if cfg.GoogleClientSecret == "" {
		missing = append(missing, "GOOGLE_CLIENT_SECRET")
	}

	cfg.GoogleRedirectURL = os.Getenv("GOOGLE_REDIRECT_URL")
	if cfg.GoogleRedirectURL == "" {
		missing = append(missing, "GOOGLE_REDIRECT_URL")
	}

	cfg.StorageBucket = os.Getenv("STORAGE_BUCKET")
	if cfg.StorageBucket == "" {
		missing = append(missing, "STORAGE_BUCKET")
	}

	cfg.StorageAccessKey = os.Getenv("STORAGE_ACCESS_KEY")
	if cfg.StorageAccessKey == "" {
		missing = append(missing, "STORAGE_ACCESS_KEY")
	}

	cfg.StorageSecretKey = os.Getenv("STORAGE_SECRET_KEY")
	if cfg.StorageSecretKey == "" {
		missing = append(missing, "STORAGE_SECRET_KEY")
	}

	cfg.BaseURL = os.Getenv("BASE_URL")
	if cfg.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// 선택 항목 (기본값 있음)
	// 카카오는 client secret 이 선택 사항이다
	cfg.KakaoClientSecret = getEnvString("KAKAO_CLIENT_SECRET", "")
	cfg.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", 86400)
	cfg.StorageRegion = getEnvString("STORAGE_REGION", "ap-northeast-2")
	cfg.StorageEndpoint = getEnvString("STORAGE_ENDPOINT", "")
	cfg.StorageBaseURL = getEnvString("STORAGE_BASE_URL", "")
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitDiaryWrite = getEnvInt("RATE_LIMIT_DIARY_WRITE", 10)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

// SessionTTL 은 세션 유효 기간을 time.Duration 으로 반환한다.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionMaxAge) * time.Second
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}
