package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"velodrive/internal/domain"
)

// ShareService выдает гранты на файлы и папки другим пользователям.
// Владение не передается: грант лишь прикрепляет права второму принципалу.
type ShareService struct {
	shareRepo  ShareStore
	fileRepo   FileStore
	folderRepo FolderStore
	userRepo   UserStore
}

func NewShareService(shareRepo ShareStore, fileRepo FileStore, folderRepo FolderStore, userRepo UserStore) *ShareService {
	return &ShareService{
		shareRepo:  shareRepo,
		fileRepo:   fileRepo,
		folderRepo: folderRepo,
		userRepo:   userRepo,
	}
}

func (s *ShareService) ShareFile(ctx context.Context, ownerID, granteeIdentifier string, fileID uuid.UUID, perms domain.Permissions) error {
	if _, err := s.fileRepo.GetOwned(ctx, ownerID, fileID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: file not found", domain.ErrNotFound)
		}
		return err
	}

	granteeID, err := s.resolveGrantee(ctx, ownerID, granteeIdentifier, perms)
	if err != nil {
		return err
	}

	share := &domain.Share{
		OwnerID:    ownerID,
		SharedWith: granteeID,
		FileID:     &fileID,
	}
	return s.createShare(ctx, share, perms)
}

func (s *ShareService) ShareFolder(ctx context.Context, ownerID, granteeIdentifier string, folderID uuid.UUID, perms domain.Permissions) error {
	if _, err := s.folderRepo.GetOwned(ctx, ownerID, folderID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: folder not found", domain.ErrNotFound)
		}
		return err
	}

	granteeID, err := s.resolveGrantee(ctx, ownerID, granteeIdentifier, perms)
	if err != nil {
		return err
	}

	share := &domain.Share{
		OwnerID:    ownerID,
		SharedWith: granteeID,
		FolderID:   &folderID,
	}
	return s.createShare(ctx, share, perms)
}

func (s *ShareService) resolveGrantee(ctx context.Context, ownerID, identifier string, perms domain.Permissions) (string, error) {
	// Грант без единого права бессмыслен, отклоняем до записи
	if !perms.Any() {
		return "", fmt.Errorf("%w: at least one permission is required", domain.ErrBadRequest)
	}

	grantee, err := s.userRepo.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("%w: user %q not found", domain.ErrNotFound, identifier)
		}
		return "", err
	}

	granteeID := grantee.ID.String()
	if granteeID == ownerID {
		return "", fmt.Errorf("%w: cannot share with yourself", domain.ErrBadRequest)
	}

	return granteeID, nil
}

func (s *ShareService) createShare(ctx context.Context, share *domain.Share, perms domain.Permissions) error {
	// Повторный грант той же паре дает конфликт, не обновление
	if err := s.shareRepo.CreateWithPermissions(ctx, share, perms); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return fmt.Errorf("%w: already shared", domain.ErrConflict)
		}
		return err
	}
	return nil
}

// SharedWithMe возвращает гранты получателя: только элементы корневого
// уровня, каждый с правами и почтой владельца.
func (s *ShareService) SharedWithMe(ctx context.Context, userID string) ([]domain.SharedEntry, error) {
	return s.shareRepo.SharedWithMe(ctx, userID)
}
