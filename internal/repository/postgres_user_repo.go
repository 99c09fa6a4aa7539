package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kjhk3082/maum/internal/model"
)

// PostgresUserRepo 는 PostgreSQL 을 사용한 사용자 리포지토리.
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo 는 PostgresUserRepo 를 생성한다.
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

const userColumns = `id, provider, provider_user_id, email, nickname, profile_image_url, created_at, updated_at, last_login_at`

// scanUser 는 단일 행을 model.User 로 스캔한다.
func scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(
		&user.ID, &user.Provider, &user.ProviderUserID,
		&user.Email, &user.Nickname, &user.ProfileImageURL,
		&user.CreatedAt, &user.UpdatedAt, &user.LastLoginAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// FindByID 는 지정 ID 의 사용자를 조회한다. 없으면 nil 을 반환한다.
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	)
	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

// FindByProviderUserID 는 (provider, provider_user_id) 로 사용자를 조회한다.
// 없으면 nil 을 반환한다.
func (r *PostgresUserRepo) FindByProviderUserID(ctx context.Context, provider model.Provider, providerUserID string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE provider = $1 AND provider_user_id = $2`,
		string(provider), providerUserID,
	)
	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by provider user ID: %w", err)
	}
	return user, nil
}

// Create 는 사용자를 생성한다.
func (r *PostgresUserRepo) Create(ctx context.Context, user *model.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, provider, provider_user_id, email, nickname, profile_image_url, created_at, updated_at, last_login_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		user.ID, string(user.Provider), user.ProviderUserID,
		user.Email, user.Nickname, user.ProfileImageURL,
		user.CreatedAt, user.UpdatedAt, user.LastLoginAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// UpdateProfile 은 email, nickname, profile_image_url, updated_at, last_login_at 을 갱신한다.
func (r *PostgresUserRepo) UpdateProfile(ctx context.Context, user *model.User) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET email = $2, nickname = $3, profile_image_url = $4, updated_at = $5, last_login_at = $6
		 WHERE id = $1`,
		user.ID, user.Email, user.Nickname, user.ProfileImageURL,
		user.UpdatedAt, user.LastLoginAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update user profile: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user not found: %s", user.ID)
	}
	return nil
}

// DeleteByID 는 지정 ID 의 사용자를 삭제한다.
// diaries, diary_images, sessions 는 CASCADE 로 함께 삭제된다.
func (r *PostgresUserRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM users WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user not found: %s", id)
	}
	return nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
