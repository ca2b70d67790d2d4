package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"velodrive/internal/domain"
)

type ShareRepository struct {
	db *sqlx.DB
}

func NewShareRepository(db *sqlx.DB) *ShareRepository {
	return &ShareRepository{db: db}
}

// CreateWithPermissions вставляет share и его permissions одной транзакцией.
// Повторный грант той же паре (получатель, объект) упирается в уникальное
// ограничение и превращается в ErrConflict, а не в тихое обновление.
func (r *ShareRepository) CreateWithPermissions(ctx context.Context, share *domain.Share, perms domain.Permissions) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
        INSERT INTO shares (owner_id, shared_with, file_id, folder_id)
        VALUES ($1, $2, $3, $4)
        RETURNING id, shared_at`

	err = tx.QueryRowContext(ctx, query,
		share.OwnerID,
		share.SharedWith,
		share.FileID,
		share.FolderID,
	).Scan(&share.ID, &share.SharedAt)
	if err != nil {
		return fmt.Errorf("failed to create share: %w", translateUnique(err))
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO permissions (share_id, "read", "write", "delete") VALUES ($1, $2, $3, $4)`,
		share.ID, perms.Read, perms.Write, perms.Delete)
	if err != nil {
		return fmt.Errorf("failed to create permissions: %w", err)
	}

	return tx.Commit()
}

// SharedWithMe собирает файловые и папочные гранты получателя одним
// запросом. Наружу попадают только элементы корневого уровня: содержимое
// расшаренной папки отдельно не разворачивается.
func (r *ShareRepository) SharedWithMe(ctx context.Context, userID string) ([]domain.SharedEntry, error) {
	entries := []domain.SharedEntry{}
	query := `
        SELECT 'file' AS kind, f.id, f.name, f.size_in_bytes, f.type, u.email AS owner_email,
               p."read", p."write", p."delete", s.shared_at
        FROM shares s
        JOIN permissions p ON p.share_id = s.id
        JOIN files f ON f.id = s.file_id
        JOIN users u ON u.id = f.owner_id
        WHERE s.shared_with = $1 AND f.parent_folder_id IS NULL
        UNION ALL
        SELECT 'folder' AS kind, fo.id, fo.name, NULL::BIGINT AS size_in_bytes, NULL::VARCHAR AS type, u.email AS owner_email,
               p."read", p."write", p."delete", s.shared_at
        FROM shares s
        JOIN permissions p ON p.share_id = s.id
        JOIN folders fo ON fo.id = s.folder_id
        JOIN users u ON u.id = fo.owner_id
        WHERE s.shared_with = $1 AND fo.parent_folder_id IS NULL
        ORDER BY shared_at DESC`

	err := r.db.SelectContext(ctx, &entries, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shared entries: %w", err)
	}

	return entries, nil
}
