package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"velodrive/internal/domain"
)

// Интерфейсы хранилищ, которые принимают сервисы. Реализации живут
// в internal/repository; хэндл БД создается в main и передается туда явно.

type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	GetSummary(ctx context.Context, ownerID string) (*domain.UserSummary, error)
}

type FolderStore interface {
	Create(ctx context.Context, folder *domain.Folder) error
	GetOwned(ctx context.Context, ownerID string, folderID uuid.UUID) (*domain.Folder, error)
	NameTakenAtLocation(ctx context.Context, ownerID, name string, parentFolderID *uuid.UUID) (bool, error)
	Rename(ctx context.Context, ownerID string, folderID uuid.UUID, newParentID *uuid.UUID, newName string) error
	ListEntries(ctx context.Context, ownerID string, location *uuid.UUID, sortBy domain.SortField, order domain.SortOrder) ([]domain.NamespaceEntry, error)
}

type FileStore interface {
	CreateWithReservation(ctx context.Context, file *domain.File) error
	ReserveReplacement(ctx context.Context, ownerID string, fileID uuid.UUID, newSize int64) error
	GetOwned(ctx context.Context, ownerID string, fileID uuid.UUID) (*domain.File, error)
	GetByLocationName(ctx context.Context, ownerID string, parentFolderID *uuid.UUID, name string) (*domain.File, error)
	NameTakenAtLocation(ctx context.Context, ownerID, name string, parentFolderID *uuid.UUID) (bool, error)
	Rename(ctx context.Context, ownerID string, fileID uuid.UUID, newName string) error
	ConfirmUpload(ctx context.Context, fileID uuid.UUID) error
	ListAbandoned(ctx context.Context, cutoff time.Time) ([]domain.File, error)
	DeleteWithRefund(ctx context.Context, fileID uuid.UUID) error
}

type ShareStore interface {
	CreateWithPermissions(ctx context.Context, share *domain.Share, perms domain.Permissions) error
	SharedWithMe(ctx context.Context, userID string) ([]domain.SharedEntry, error)
}
