package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kjhk3082/maum/internal/model"
)

// PostgresDiaryImageRepo 는 PostgreSQL 을 사용한 일기 첨부 이미지 리포지토리.
type PostgresDiaryImageRepo struct {
	db *sql.DB
}

// NewPostgresDiaryImageRepo 는 PostgresDiaryImageRepo 를 생성한다.
func NewPostgresDiaryImageRepo(db *sql.DB) *PostgresDiaryImageRepo {
	return &PostgresDiaryImageRepo{db: db}
}

const diaryImageColumns = `id, diary_id, file_name, file_url, original_file_name, file_size, content_type, text_position, created_at`

// Create 는 첨부 이미지를 기록한다.
func (r *PostgresDiaryImageRepo) Create(ctx context.Context, image *model.DiaryImage) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO diary_images (id, diary_id, file_name, file_url, original_file_name, file_size, content_type, text_position, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		image.ID, image.DiaryID, image.FileName, image.FileURL,
		image.OriginalFileName, image.FileSize, image.ContentType,
		image.TextPosition, image.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert diary image: %w", err)
	}
	return nil
}

// FindByID 는 지정 ID 의 이미지를 조회한다. 없으면 nil 을 반환한다.
func (r *PostgresDiaryImageRepo) FindByID(ctx context.Context, id string) (*model.DiaryImage, error) {
	image := &model.DiaryImage{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+diaryImageColumns+` FROM diary_images WHERE id = $1`,
		id,
	).Scan(
		&image.ID, &image.DiaryID, &image.FileName, &image.FileURL,
		&image.OriginalFileName, &image.FileSize, &image.ContentType,
		&image.TextPosition, &image.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find diary image: %w", err)
	}

	return image, nil
}

// ListByDiaryID 는 일기의 첨부 이미지를 text_position 오름차순으로 반환한다.
func (r *PostgresDiaryImageRepo) ListByDiaryID(ctx context.Context, diaryID string) ([]*model.DiaryImage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+diaryImageColumns+` FROM diary_images WHERE diary_id = $1 ORDER BY text_position ASC, created_at ASC`,
		diaryID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list diary images: %w", err)
	}
	defer rows.Close()

	return scanDiaryImages(rows)
}

// ListByUserID 는 사용자의 모든 첨부 이미지를 반환한다.
func (r *PostgresDiaryImageRepo) ListByUserID(ctx context.Context, userID string) ([]*model.DiaryImage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT i.id, i.diary_id, i.file_name, i.file_url, i.original_file_name, i.file_size, i.content_type, i.text_position, i.created_at
		 FROM diary_images i
		 JOIN diaries d ON d.id = i.diary_id
		 WHERE d.user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list diary images by user: %w", err)
	}
	defer rows.Close()

	return scanDiaryImages(rows)
}

// Delete 는 지정 ID 의 이미지 행을 삭제한다.
func (r *PostgresDiaryImageRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM diary_images WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete diary image: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("diary image not found: %s", id)
	}
	return nil
}

// scanDiaryImages 는 여러 행을 model.DiaryImage 슬라이스로 스캔한다.
func scanDiaryImages(rows *sql.Rows) ([]*model.DiaryImage, error) {
	var images []*model.DiaryImage
	for rows.Next() {
		image := &model.DiaryImage{}
		if err := rows.Scan(
			&image.ID, &image.DiaryID, &image.FileName, &image.FileURL,
			&image.OriginalFileName, &image.FileSize, &image.ContentType,
			&image.TextPosition, &image.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan diary image: %w", err)
		}
		images = append(images, image)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate diary images: %w", err)
	}
	return images, nil
}

// compile-time interface check
var _ DiaryImageRepository = (*PostgresDiaryImageRepo)(nil)
