package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/kjhk3082/maum/internal/model"
)

// uniqueViolation 은 PostgreSQL 의 unique_violation 에러 코드.
const uniqueViolation = "23505"

// PostgresDiaryRepo 는 PostgreSQL 을 사용한 일기 리포지토리.
type PostgresDiaryRepo struct {
	db *sql.DB
}

// NewPostgresDiaryRepo 는 PostgresDiaryRepo 를 생성한다.
func NewPostgresDiaryRepo(db *sql.DB) *PostgresDiaryRepo {
	return &PostgresDiaryRepo{db: db}
}

const diaryColumns = `id, user_id, title, content, emotion, diary_date, created_at, updated_at`

// FindByUserAndDate 는 (사용자, 날짜) 의 일기를 조회한다. 없으면 nil 을 반환한다.
func (r *PostgresDiaryRepo) FindByUserAndDate(ctx context.Context, userID string, date time.Time) (*model.Diary, error) {
	diary := &model.Diary{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+diaryColumns+` FROM diaries WHERE user_id = $1 AND diary_date = $2`,
		userID, dateOnly(date),
	).Scan(
		&diary.ID, &diary.UserID, &diary.Title, &diary.Content,
		&diary.Emotion, &diary.DiaryDate, &diary.CreatedAt, &diary.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find diary: %w", err)
	}

	return diary, nil
}

// ExistsByUserAndDate 는 (사용자, 날짜) 에 일기가 있는지 확인한다.
func (r *PostgresDiaryRepo) ExistsByUserAndDate(ctx context.Context, userID string, date time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM diaries WHERE user_id = $1 AND diary_date = $2)`,
		userID, dateOnly(date),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check diary existence: %w", err)
	}
	return exists, nil
}

// Create 는 일기를 생성한다.
// (user_id, diary_date) 유니크 제약 위반은 model.NewDiaryExistsError() 로 변환한다.
func (r *PostgresDiaryRepo) Create(ctx context.Context, diary *model.Diary) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO diaries (id, user_id, title, content, emotion, diary_date, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		diary.ID, diary.UserID, diary.Title, diary.Content,
		string(diary.Emotion), dateOnly(diary.DiaryDate), diary.CreatedAt, diary.UpdatedAt,
	)
	if err != nil {
		return mapDiaryInsertError(err)
	}
	return nil
}

// mapDiaryInsertError 는 INSERT 실패를 도메인 에러로 변환한다.
// 동시 생성 경합은 (user_id, diary_date) 유니크 제약이 닫는다.
func mapDiaryInsertError(err error) error {
	if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == uniqueViolation {
		return model.NewDiaryExistsError()
	}
	return fmt.Errorf("failed to insert diary: %w", err)
}

// Update 는 title, content, emotion, updated_at 을 덮어쓴다.
func (r *PostgresDiaryRepo) Update(ctx context.Context, diary *model.Diary) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE diaries SET title = $2, content = $3, emotion = $4, updated_at = $5 WHERE id = $1`,
		diary.ID, diary.Title, diary.Content, string(diary.Emotion), diary.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update diary: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("diary not found: %s", diary.ID)
	}
	return nil
}

// Delete 는 일기와 첨부 이미지 행을 같은 트랜잭션에서 삭제한다.
func (r *PostgresDiaryRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// 첨부 이미지를 명시적으로 먼저 삭제
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM diary_images WHERE diary_id = $1`, id,
	); err != nil {
		return fmt.Errorf("failed to delete diary images: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM diaries WHERE id = $1`, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete diary: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("diary not found: %s", id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListByUser 는 사용자의 모든 일기를 diary_date 내림차순으로 반환한다.
func (r *PostgresDiaryRepo) ListByUser(ctx context.Context, userID string) ([]*model.Diary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+diaryColumns+` FROM diaries WHERE user_id = $1 ORDER BY diary_date DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list diaries: %w", err)
	}
	defer rows.Close()

	return scanDiaries(rows)
}

// SearchByKeyword 는 제목 또는 본문에 키워드가 포함된 일기를 대소문자 구분 없이 검색한다.
// 빈 키워드는 ILIKE '%%' 로 모든 일기에 매치된다.
func (r *PostgresDiaryRepo) SearchByKeyword(ctx context.Context, userID, keyword string) ([]*model.Diary, error) {
	pattern := "%" + escapeLike(keyword) + "%"
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+diaryColumns+` FROM diaries
		 WHERE user_id = $1 AND (title ILIKE $2 OR content ILIKE $2)
		 ORDER BY diary_date DESC`,
		userID, pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search diaries: %w", err)
	}
	defer rows.Close()

	return scanDiaries(rows)
}

// ListByUserAndEmotion 은 지정 감정의 일기를 반환한다.
func (r *PostgresDiaryRepo) ListByUserAndEmotion(ctx context.Context, userID string, emotion model.Emotion) ([]*model.Diary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+diaryColumns+` FROM diaries WHERE user_id = $1 AND emotion = $2`,
		userID, string(emotion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list diaries by emotion: %w", err)
	}
	defer rows.Close()

	return scanDiaries(rows)
}

// ListByUserAndDateRange 는 [start, end] 구간의 일기를 diary_date 내림차순으로 반환한다.
func (r *PostgresDiaryRepo) ListByUserAndDateRange(ctx context.Context, userID string, start, end time.Time) ([]*model.Diary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+diaryColumns+` FROM diaries
		 WHERE user_id = $1 AND diary_date BETWEEN $2 AND $3
		 ORDER BY diary_date DESC`,
		userID, dateOnly(start), dateOnly(end),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list diaries by date range: %w", err)
	}
	defer rows.Close()

	return scanDiaries(rows)
}

// CountByEmotion 은 사용자의 감정별 일기 개수를 반환한다.
// 일기가 없는 감정은 결과에 포함되지 않는다.
func (r *PostgresDiaryRepo) CountByEmotion(ctx context.Context, userID string) (map[model.Emotion]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT emotion, COUNT(*) FROM diaries WHERE user_id = $1 GROUP BY emotion`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count diaries by emotion: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.Emotion]int)
	for rows.Next() {
		var emotion string
		var count int
		if err := rows.Scan(&emotion, &count); err != nil {
			return nil, fmt.Errorf("failed to scan emotion count: %w", err)
		}
		counts[model.Emotion(emotion)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate emotion counts: %w", err)
	}
	return counts, nil
}

// scanDiaries 는 여러 행을 model.Diary 슬라이스로 스캔한다.
func scanDiaries(rows *sql.Rows) ([]*model.Diary, error) {
	var diaries []*model.Diary
	for rows.Next() {
		diary := &model.Diary{}
		if err := rows.Scan(
			&diary.ID, &diary.UserID, &diary.Title, &diary.Content,
			&diary.Emotion, &diary.DiaryDate, &diary.CreatedAt, &diary.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan diary: %w", err)
		}
		diaries = append(diaries, diary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate diaries: %w", err)
	}
	return diaries, nil
}

// dateOnly 는 DATE 컬럼 바인딩용으로 날짜 문자열을 만든다.
func dateOnly(t time.Time) string {
	return t.Format("2006-01-02")
}

// likeEscaper 는 LIKE 패턴 메타문자를 이스케이프한다.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// compile-time interface check
var _ DiaryRepository = (*PostgresDiaryRepo)(nil)
