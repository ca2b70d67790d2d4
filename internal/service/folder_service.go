package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"velodrive/internal/domain"
)

// FolderService отвечает за дерево папок: существование, владение,
// уникальность имени в пределах локации, переименование и листинг.
type FolderService struct {
	folderRepo FolderStore
	userRepo   UserStore
}

func NewFolderService(folderRepo FolderStore, userRepo UserStore) *FolderService {
	return &FolderService{
		folderRepo: folderRepo,
		userRepo:   userRepo,
	}
}

// VerifyOwnership отвечает на единственный вопрос:
// существует ли папка и принадлежит ли она владельцу.
func (s *FolderService) VerifyOwnership(ctx context.Context, ownerID string, folderID uuid.UUID) (string, error) {
	folder, err := s.folderRepo.GetOwned(ctx, ownerID, folderID)
	if err != nil {
		return "", err
	}
	return folder.Name, nil
}

// VerifyParentIfProvided проверяет родителя до любых других проверок,
// чтобы некорректный запрос получал стабильную ошибку.
func (s *FolderService) VerifyParentIfProvided(ctx context.Context, ownerID string, parentFolderID *uuid.UUID) error {
	if parentFolderID == nil {
		return nil
	}
	if _, err := s.VerifyOwnership(ctx, ownerID, *parentFolderID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: parent folder not found", domain.ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *FolderService) RegisterFolder(ctx context.Context, name string, parentFolderID *uuid.UUID, ownerID string) (string, error) {
	if err := s.VerifyParentIfProvided(ctx, ownerID, parentFolderID); err != nil {
		return "", err
	}

	taken, err := s.folderRepo.NameTakenAtLocation(ctx, ownerID, name, parentFolderID)
	if err != nil {
		return "", err
	}
	if taken {
		return "", fmt.Errorf("%w: folder %q already exists in this location", domain.ErrConflict, name)
	}

	folder := &domain.Folder{
		Name:           name,
		OwnerID:        ownerID,
		ParentFolderID: parentFolderID,
	}
	// Уникальный индекс остается последним рубежом против гонки двух вставок
	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return "", err
	}

	return folder.Name, nil
}

// RenameFolder также переносит папку, если новый родитель отличается от
// текущего: коллизия имени проверяется в новой локации.
func (s *FolderService) RenameFolder(ctx context.Context, ownerID string, folderID uuid.UUID, newParentID *uuid.UUID, newName string) error {
	if _, err := s.VerifyOwnership(ctx, ownerID, folderID); err != nil {
		return err
	}
	if err := s.VerifyParentIfProvided(ctx, ownerID, newParentID); err != nil {
		return err
	}

	taken, err := s.folderRepo.NameTakenAtLocation(ctx, ownerID, newName, newParentID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: folder %q already exists in this location", domain.ErrConflict, newName)
	}

	return s.folderRepo.Rename(ctx, ownerID, folderID, newParentID, newName)
}

// RetrieveContent отдает файлы и папки локации единым сортированным
// списком. Для корня добавляется сводка по владельцу и квоте.
func (s *FolderService) RetrieveContent(ctx context.Context, ownerID string, sortBy domain.SortField, order domain.SortOrder, location *uuid.UUID) (*domain.Listing, error) {
	if !sortBy.Valid() || !order.Valid() {
		return nil, fmt.Errorf("%w: invalid sort parameters", domain.ErrBadRequest)
	}

	if location != nil {
		if _, err := s.VerifyOwnership(ctx, ownerID, *location); err != nil {
			return nil, err
		}
		entries, err := s.folderRepo.ListEntries(ctx, ownerID, location, sortBy, order)
		if err != nil {
			return nil, err
		}
		return &domain.Listing{Entries: entries}, nil
	}

	summary, err := s.userRepo.GetSummary(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	entries, err := s.folderRepo.ListEntries(ctx, ownerID, nil, sortBy, order)
	if err != nil {
		return nil, err
	}

	return &domain.Listing{User: summary, Entries: entries}, nil
}
