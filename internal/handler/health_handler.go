package handler

import (
	"context"
	"net/http"
	"time"
)

// Pinger 는 헬스체크에서 DB 연결을 확인하기 위한 인터페이스.
// *sql.DB 가 그대로 만족한다.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler 는 생존 확인용 HTTP 핸들러.
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler 는 HealthHandler 를 생성한다.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check 는 서버와 DB 의 상태를 반환한다.
// GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		writeError(w, http.StatusServiceUnavailable, "데이터베이스에 연결할 수 없습니다.", nil)
		return
	}

	writeSuccess(w, http.StatusOK, "정상", map[string]string{"status": "ok"})
}
