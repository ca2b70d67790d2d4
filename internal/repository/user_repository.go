package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"velodrive/internal/domain"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
        INSERT INTO users (username, email, password, total_storage_in_bytes, available_storage_in_bytes)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.Username,
		user.Email,
		user.Password,
		user.TotalStorageInBytes,
		user.AvailableStorageInBytes,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", translateUnique(err))
	}

	return nil
}

// GetByIdentifier ищет пользователя по username или email:
// при логине и при выдаче грантов допускаются оба идентификатора.
func (r *UserRepository) GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	var user domain.User
	query := `SELECT * FROM users WHERE username = $1 OR email = $1`

	err := r.db.GetContext(ctx, &user, query, identifier)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

func (r *UserRepository) GetSummary(ctx context.Context, ownerID string) (*domain.UserSummary, error) {
	var summary domain.UserSummary
	query := `
        SELECT username, email, available_storage_in_bytes, total_storage_in_bytes
        FROM users WHERE id = $1`

	err := r.db.GetContext(ctx, &summary, query, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user summary: %w", err)
	}

	return &summary, nil
}
