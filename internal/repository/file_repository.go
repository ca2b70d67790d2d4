package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"velodrive/internal/domain"
)

type FileRepository struct {
	db *sqlx.DB
}

func NewFileRepository(db *sqlx.DB) *FileRepository {
	return &FileRepository{db: db}
}

// CreateWithReservation вставляет запись файла и списывает место владельца
// одной транзакцией. Сравнение побайтовое: при requested > available отказ
// без каких-либо изменений.
func (r *FileRepository) CreateWithReservation(ctx context.Context, file *domain.File) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	available, err := lockAvailableSpace(ctx, tx, file.OwnerID)
	if err != nil {
		return err
	}
	if file.SizeInBytes > available {
		return domain.ErrInsufficientSpace
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE users SET available_storage_in_bytes = available_storage_in_bytes - $1 WHERE id = $2`,
		file.SizeInBytes, file.OwnerID)
	if err != nil {
		return fmt.Errorf("failed to reserve space: %w", err)
	}

	query := `
        INSERT INTO files (name, size_in_bytes, type, owner_id, parent_folder_id)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, last_interaction`

	err = tx.QueryRowContext(ctx, query,
		file.Name,
		file.SizeInBytes,
		file.Type,
		file.OwnerID,
		file.ParentFolderID,
	).Scan(&file.ID, &file.CreatedAt, &file.LastInteraction)
	if err != nil {
		return fmt.Errorf("failed to insert file: %w", translateUnique(err))
	}

	return tx.Commit()
}

// ReserveReplacement готовит перезапись существующего файла: при росте
// размера проверяется и списывается только положительная дельта, при
// уменьшении освободившееся место возвращается владельцу.
func (r *FileRepository) ReserveReplacement(ctx context.Context, ownerID string, fileID uuid.UUID, newSize int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var oldSize int64
	err = tx.GetContext(ctx, &oldSize,
		`SELECT size_in_bytes FROM files WHERE owner_id = $1 AND id = $2 FOR UPDATE`,
		ownerID, fileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to get file size: %w", err)
	}

	delta := newSize - oldSize
	switch {
	case delta > 0:
		available, err := lockAvailableSpace(ctx, tx, ownerID)
		if err != nil {
			return err
		}
		if delta > available {
			return domain.ErrInsufficientSpace
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE users SET available_storage_in_bytes = available_storage_in_bytes - $1 WHERE id = $2`,
			delta, ownerID)
		if err != nil {
			return fmt.Errorf("failed to reserve space: %w", err)
		}
	case delta < 0:
		_, err = tx.ExecContext(ctx,
			`UPDATE users
             SET available_storage_in_bytes = LEAST(total_storage_in_bytes, available_storage_in_bytes + $1)
             WHERE id = $2`,
			-delta, ownerID)
		if err != nil {
			return fmt.Errorf("failed to release space: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE files SET size_in_bytes = $1, last_interaction = CURRENT_TIMESTAMP WHERE id = $2`,
		newSize, fileID)
	if err != nil {
		return fmt.Errorf("failed to update file size: %w", err)
	}

	return tx.Commit()
}

func lockAvailableSpace(ctx context.Context, tx *sqlx.Tx, ownerID string) (int64, error) {
	var available int64
	err := tx.GetContext(ctx, &available,
		`SELECT available_storage_in_bytes FROM users WHERE id = $1 FOR UPDATE`, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("failed to get available space: %w", err)
	}
	return available, nil
}

func (r *FileRepository) GetOwned(ctx context.Context, ownerID string, fileID uuid.UUID) (*domain.File, error) {
	var file domain.File
	query := `SELECT * FROM files WHERE owner_id = $1 AND id = $2`

	err := r.db.GetContext(ctx, &file, query, ownerID, fileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}

	return &file, nil
}

func (r *FileRepository) GetByLocationName(ctx context.Context, ownerID string, parentFolderID *uuid.UUID, name string) (*domain.File, error) {
	var file domain.File
	var err error

	if parentFolderID != nil {
		query := `SELECT * FROM files WHERE owner_id = $1 AND parent_folder_id = $2 AND name = $3`
		err = r.db.GetContext(ctx, &file, query, ownerID, *parentFolderID, name)
	} else {
		query := `SELECT * FROM files WHERE owner_id = $1 AND parent_folder_id IS NULL AND name = $2`
		err = r.db.GetContext(ctx, &file, query, ownerID, name)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}

	return &file, nil
}

func (r *FileRepository) NameTakenAtLocation(ctx context.Context, ownerID, name string, parentFolderID *uuid.UUID) (bool, error) {
	var taken bool
	var err error

	if parentFolderID != nil {
		query := `SELECT EXISTS(
            SELECT 1 FROM files WHERE owner_id = $1 AND parent_folder_id = $2 AND name = $3)`
		err = r.db.GetContext(ctx, &taken, query, ownerID, *parentFolderID, name)
	} else {
		query := `SELECT EXISTS(
            SELECT 1 FROM files WHERE owner_id = $1 AND parent_folder_id IS NULL AND name = $2)`
		err = r.db.GetContext(ctx, &taken, query, ownerID, name)
	}
	if err != nil {
		return false, fmt.Errorf("failed to check file name: %w", err)
	}

	return taken, nil
}

// Rename меняет только отображаемое имя: ключ объекта в хранилище это его ID,
// перенос содержимого при переименовании не нужен.
func (r *FileRepository) Rename(ctx context.Context, ownerID string, fileID uuid.UUID, newName string) error {
	query := `
        UPDATE files SET name = $1, last_interaction = CURRENT_TIMESTAMP
        WHERE owner_id = $2 AND id = $3`

	result, err := r.db.ExecContext(ctx, query, newName, ownerID, fileID)
	if err != nil {
		return fmt.Errorf("failed to rename file: %w", translateUnique(err))
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

func (r *FileRepository) ConfirmUpload(ctx context.Context, fileID uuid.UUID) error {
	query := `
        UPDATE files SET confirmed_upload = TRUE, last_interaction = CURRENT_TIMESTAMP
        WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, fileID)
	if err != nil {
		return fmt.Errorf("failed to confirm upload: %w", err)
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

// ListAbandoned возвращает неподтвержденные записи старше cutoff:
// кандидатов на фоновую зачистку.
func (r *FileRepository) ListAbandoned(ctx context.Context, cutoff time.Time) ([]domain.File, error) {
	var files []domain.File
	query := `SELECT * FROM files WHERE NOT confirmed_upload AND created_at < $1`

	err := r.db.SelectContext(ctx, &files, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list abandoned uploads: %w", err)
	}

	return files, nil
}

// DeleteWithRefund удаляет запись и возвращает владельцу
// зарезервированное под нее место одной транзакцией.
func (r *FileRepository) DeleteWithRefund(ctx context.Context, fileID uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var ownerID string
	var size int64
	err = tx.QueryRowContext(ctx,
		`DELETE FROM files WHERE id = $1 RETURNING owner_id, size_in_bytes`,
		fileID).Scan(&ownerID, &size)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE users
         SET available_storage_in_bytes = LEAST(total_storage_in_bytes, available_storage_in_bytes + $1)
         WHERE id = $2`,
		size, ownerID)
	if err != nil {
		return fmt.Errorf("failed to refund space: %w", err)
	}

	return tx.Commit()
}
