package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"velodrive/internal/domain"
)

type FolderRepository struct {
	db *sqlx.DB
}

func NewFolderRepository(db *sqlx.DB) *FolderRepository {
	return &FolderRepository{db: db}
}

func (r *FolderRepository) Create(ctx context.Context, folder *domain.Folder) error {
	query := `
        INSERT INTO folders (name, parent_folder_id, owner_id)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, last_interaction`

	err := r.db.QueryRowContext(ctx, query,
		folder.Name,
		folder.ParentFolderID,
		folder.OwnerID,
	).Scan(&folder.ID, &folder.CreatedAt, &folder.LastInteraction)
	if err != nil {
		return fmt.Errorf("failed to create folder: %w", translateUnique(err))
	}

	return nil
}

// GetOwned возвращает папку только если она принадлежит владельцу.
// Единственная точка истины для проверки существования и владения.
func (r *FolderRepository) GetOwned(ctx context.Context, ownerID string, folderID uuid.UUID) (*domain.Folder, error) {
	var folder domain.Folder
	query := `SELECT * FROM folders WHERE owner_id = $1 AND id = $2`

	err := r.db.GetContext(ctx, &folder, query, ownerID, folderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get folder: %w", err)
	}

	return &folder, nil
}

func (r *FolderRepository) NameTakenAtLocation(ctx context.Context, ownerID, name string, parentFolderID *uuid.UUID) (bool, error) {
	var taken bool
	var err error

	if parentFolderID != nil {
		query := `SELECT EXISTS(
            SELECT 1 FROM folders WHERE owner_id = $1 AND parent_folder_id = $2 AND name = $3)`
		err = r.db.GetContext(ctx, &taken, query, ownerID, *parentFolderID, name)
	} else {
		query := `SELECT EXISTS(
            SELECT 1 FROM folders WHERE owner_id = $1 AND parent_folder_id IS NULL AND name = $2)`
		err = r.db.GetContext(ctx, &taken, query, ownerID, name)
	}
	if err != nil {
		return false, fmt.Errorf("failed to check folder name: %w", err)
	}

	return taken, nil
}

// Rename обновляет имя и родителя одним запросом: перенос папки и есть
// переименование с другим parent_folder_id.
func (r *FolderRepository) Rename(ctx context.Context, ownerID string, folderID uuid.UUID, newParentID *uuid.UUID, newName string) error {
	query := `
        UPDATE folders
        SET name = $1, parent_folder_id = $2, last_interaction = CURRENT_TIMESTAMP
        WHERE owner_id = $3 AND id = $4`

	result, err := r.db.ExecContext(ctx, query, newName, newParentID, ownerID, folderID)
	if err != nil {
		return fmt.Errorf("failed to rename folder: %w", translateUnique(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// ListEntries отдает файлы и папки одной локации единым списком,
// отсортированным по общему ключу, файлы и папки честно перемешаны.
func (r *FolderRepository) ListEntries(ctx context.Context, ownerID string, location *uuid.UUID, sortBy domain.SortField, order domain.SortOrder) ([]domain.NamespaceEntry, error) {
	if !sortBy.Valid() || !order.Valid() {
		return nil, fmt.Errorf("%w: invalid sort parameters", domain.ErrBadRequest)
	}

	entries := []domain.NamespaceEntry{}
	var err error

	// sortBy и order прошли белый список, конкатенация безопасна
	if location != nil {
		query := fmt.Sprintf(`
            SELECT 'file' AS kind, id, name, size_in_bytes, type, parent_folder_id, created_at, last_interaction
            FROM files WHERE owner_id = $1 AND parent_folder_id = $2
            UNION ALL
            SELECT 'folder' AS kind, id, name, NULL::BIGINT AS size_in_bytes, NULL::VARCHAR AS type, parent_folder_id, created_at, last_interaction
            FROM folders WHERE owner_id = $1 AND parent_folder_id = $2
            ORDER BY %s %s`, sortBy, order)
		err = r.db.SelectContext(ctx, &entries, query, ownerID, *location)
	} else {
		query := fmt.Sprintf(`
            SELECT 'file' AS kind, id, name, size_in_bytes, type, parent_folder_id, created_at, last_interaction
            FROM files WHERE owner_id = $1 AND parent_folder_id IS NULL
            UNION ALL
            SELECT 'folder' AS kind, id, name, NULL::BIGINT AS size_in_bytes, NULL::VARCHAR AS type, parent_folder_id, created_at, last_interaction
            FROM folders WHERE owner_id = $1 AND parent_folder_id IS NULL
            ORDER BY %s %s`, sortBy, order)
		err = r.db.SelectContext(ctx, &entries, query, ownerID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	return entries, nil
}
