// Package cleanup 은 만료 세션의 자동 삭제 잡을 제공한다.
// 유효 기간이 지난 sessions 행을 일 단위 배치로 삭제한다.
package cleanup

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Executor 는 SQL 의 ExecContext 를 추상화하는 인터페이스.
// *sql.DB 와 *sql.Tx 둘 다 받을 수 있다.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// SessionCleanupJob 은 만료 세션의 자동 삭제 잡.
// 일 단위 배치로 설계되어 있고 삭제 처리는 멱등하다.
type SessionCleanupJob struct {
	db     Executor
	logger *slog.Logger
}

// NewSessionCleanupJob 은 SessionCleanupJob 을 생성한다.
func NewSessionCleanupJob(db Executor, logger *slog.Logger) *SessionCleanupJob {
	return &SessionCleanupJob{
		db:     db,
		logger: logger,
	}
}

// Run 은 만료된 세션을 삭제한다.
// expires_at 이 현재 시각보다 과거인 행을 DELETE 한다.
// 멱등: 삭제 대상이 없어도 에러가 되지 않는다.
func (j *SessionCleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	result, err := j.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < now()`)
	if err != nil {
		j.logger.Error("세션 클린업 잡 실행에 실패했습니다",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("세션 클린업 실행에 실패: %w", err)
	}

	deletedCount, err := result.RowsAffected()
	if err != nil {
		j.logger.Error("삭제 건수 조회에 실패했습니다",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("삭제 건수 조회에 실패: %w", err)
	}

	duration := time.Since(start)
	j.logger.Info("세션 클린업 잡이 완료되었습니다",
		slog.Int64("deleted_count", deletedCount),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}

// Start 는 클린업 잡을 주기 실행한다. 기동 직후 1회 실행한 뒤
// interval 간격으로 반복한다. 컨텍스트 취소로 멈춘다.
func (j *SessionCleanupJob) Start(ctx context.Context, interval time.Duration) {
	if err := j.Run(ctx); err != nil {
		j.logger.Error("세션 클린업 잡 실패", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Error("세션 클린업 잡 실패", slog.String("error", err.Error()))
			}
		}
	}
}
