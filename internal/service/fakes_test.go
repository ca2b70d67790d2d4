package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"velodrive/internal/domain"
	"velodrive/internal/service/s3"
)

// memStore дает общую in-memory реализацию всех хранилищ для тестов.
// Повторяет контракт репозиториев: те же ошибки, та же дисциплина квоты.
// Файловые операции ходят под мьютексом: их дергает фоновая зачистка.
type memStore struct {
	mu      sync.Mutex
	users   map[string]*domain.User
	folders map[uuid.UUID]*domain.Folder
	files   map[uuid.UUID]*domain.File
	shares  []*domain.Share
	perms   map[uuid.UUID]domain.Permissions
}

func (m *memStore) hasFile(id uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[id]
	return ok
}

func (m *memStore) availableOf(ownerID string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[ownerID].AvailableStorageInBytes
}

func newMemStore() *memStore {
	return &memStore{
		users:   make(map[string]*domain.User),
		folders: make(map[uuid.UUID]*domain.Folder),
		files:   make(map[uuid.UUID]*domain.File),
		perms:   make(map[uuid.UUID]domain.Permissions),
	}
}

func (m *memStore) addUser(username, email string, total, available int64) string {
	u := &domain.User{
		ID:                      uuid.New(),
		Username:                username,
		Email:                   email,
		TotalStorageInBytes:     total,
		AvailableStorageInBytes: available,
		CreatedAt:               time.Now(),
	}
	m.users[u.ID.String()] = u
	return u.ID.String()
}

func sameLocation(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// UserStore

func (m *memStore) Create(ctx context.Context, user *domain.User) error {
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return domain.ErrConflict
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	m.users[user.ID.String()] = user
	return nil
}

func (m *memStore) GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Username == identifier || u.Email == identifier {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memStore) GetSummary(ctx context.Context, ownerID string) (*domain.UserSummary, error) {
	u, ok := m.users[ownerID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.UserSummary{
		Username:                u.Username,
		Email:                   u.Email,
		AvailableStorageInBytes: u.AvailableStorageInBytes,
		TotalStorageInBytes:     u.TotalStorageInBytes,
	}, nil
}

// FolderStore

type folderStore struct{ *memStore }

func (m *memStore) asFolderStore() *folderStore { return &folderStore{m} }

func (f *folderStore) Create(ctx context.Context, folder *domain.Folder) error {
	taken, _ := f.NameTakenAtLocation(ctx, folder.OwnerID, folder.Name, folder.ParentFolderID)
	if taken {
		return domain.ErrConflict
	}
	folder.ID = uuid.New()
	folder.CreatedAt = time.Now()
	folder.LastInteraction = folder.CreatedAt
	f.folders[folder.ID] = folder
	return nil
}

func (f *folderStore) GetOwned(ctx context.Context, ownerID string, folderID uuid.UUID) (*domain.Folder, error) {
	folder, ok := f.folders[folderID]
	if !ok || folder.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	return folder, nil
}

func (f *folderStore) NameTakenAtLocation(ctx context.Context, ownerID, name string, parentFolderID *uuid.UUID) (bool, error) {
	for _, folder := range f.folders {
		if folder.OwnerID == ownerID && folder.Name == name && sameLocation(folder.ParentFolderID, parentFolderID) {
			return true, nil
		}
	}
	return false, nil
}

func (f *folderStore) Rename(ctx context.Context, ownerID string, folderID uuid.UUID, newParentID *uuid.UUID, newName string) error {
	folder, ok := f.folders[folderID]
	if !ok || folder.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	folder.Name = newName
	folder.ParentFolderID = newParentID
	folder.LastInteraction = time.Now()
	return nil
}

func (f *folderStore) ListEntries(ctx context.Context, ownerID string, location *uuid.UUID, sortBy domain.SortField, order domain.SortOrder) ([]domain.NamespaceEntry, error) {
	var entries []domain.NamespaceEntry
	for _, folder := range f.folders {
		if folder.OwnerID == ownerID && sameLocation(folder.ParentFolderID, location) {
			entries = append(entries, domain.NamespaceEntry{
				Kind:            domain.EntryKindFolder,
				ID:              folder.ID,
				Name:            folder.Name,
				ParentFolderID:  folder.ParentFolderID,
				CreatedAt:       folder.CreatedAt,
				LastInteraction: folder.LastInteraction,
			})
		}
	}
	for _, file := range f.files {
		if file.OwnerID == ownerID && sameLocation(file.ParentFolderID, location) {
			size := file.SizeInBytes
			typ := file.Type
			entries = append(entries, domain.NamespaceEntry{
				Kind:            domain.EntryKindFile,
				ID:              file.ID,
				Name:            file.Name,
				SizeInBytes:     &size,
				Type:            &typ,
				ParentFolderID:  file.ParentFolderID,
				CreatedAt:       file.CreatedAt,
				LastInteraction: file.LastInteraction,
			})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		var less bool
		switch sortBy {
		case domain.SortByName:
			less = entries[i].Name < entries[j].Name
		case domain.SortByCreatedAt:
			less = entries[i].CreatedAt.Before(entries[j].CreatedAt)
		default:
			less = entries[i].LastInteraction.Before(entries[j].LastInteraction)
		}
		if order == domain.OrderDesc {
			return !less
		}
		return less
	})
	return entries, nil
}

// FileStore

type fileStore struct{ *memStore }

func (m *memStore) asFileStore() *fileStore { return &fileStore{m} }

// fileAtLocation ищет файл без захвата мьютекса, вызывающий держит его сам
func (m *memStore) fileAtLocation(ownerID string, parentFolderID *uuid.UUID, name string) *domain.File {
	for _, file := range m.files {
		if file.OwnerID == ownerID && file.Name == name && sameLocation(file.ParentFolderID, parentFolderID) {
			return file
		}
	}
	return nil
}

func (f *fileStore) CreateWithReservation(ctx context.Context, file *domain.File) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[file.OwnerID]
	if !ok {
		return domain.ErrNotFound
	}
	if file.SizeInBytes > u.AvailableStorageInBytes {
		return domain.ErrInsufficientSpace
	}
	if f.fileAtLocation(file.OwnerID, file.ParentFolderID, file.Name) != nil {
		return domain.ErrConflict
	}
	u.AvailableStorageInBytes -= file.SizeInBytes
	file.ID = uuid.New()
	file.CreatedAt = time.Now()
	file.LastInteraction = file.CreatedAt
	f.files[file.ID] = file
	return nil
}

func (f *fileStore) ReserveReplacement(ctx context.Context, ownerID string, fileID uuid.UUID, newSize int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	file, ok := f.files[fileID]
	if !ok || file.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	u := f.users[ownerID]
	delta := newSize - file.SizeInBytes
	if delta > 0 {
		if delta > u.AvailableStorageInBytes {
			return domain.ErrInsufficientSpace
		}
		u.AvailableStorageInBytes -= delta
	} else if delta < 0 {
		u.AvailableStorageInBytes = min64(u.TotalStorageInBytes, u.AvailableStorageInBytes-delta)
	}
	file.SizeInBytes = newSize
	file.LastInteraction = time.Now()
	return nil
}

func (f *fileStore) GetOwned(ctx context.Context, ownerID string, fileID uuid.UUID) (*domain.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	file, ok := f.files[fileID]
	if !ok || file.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	return file, nil
}

func (f *fileStore) GetByLocationName(ctx context.Context, ownerID string, parentFolderID *uuid.UUID, name string) (*domain.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if file := f.fileAtLocation(ownerID, parentFolderID, name); file != nil {
		return file, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fileStore) NameTakenAtLocation(ctx context.Context, ownerID, name string, parentFolderID *uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.fileAtLocation(ownerID, parentFolderID, name) != nil, nil
}

func (f *fileStore) Rename(ctx context.Context, ownerID string, fileID uuid.UUID, newName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	file, ok := f.files[fileID]
	if !ok || file.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	file.Name = newName
	file.LastInteraction = time.Now()
	return nil
}

func (f *fileStore) ConfirmUpload(ctx context.Context, fileID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	file, ok := f.files[fileID]
	if !ok {
		return domain.ErrNotFound
	}
	file.ConfirmedUpload = true
	return nil
}

func (f *fileStore) ListAbandoned(ctx context.Context, cutoff time.Time) ([]domain.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []domain.File
	for _, file := range f.files {
		if !file.ConfirmedUpload && file.CreatedAt.Before(cutoff) {
			out = append(out, *file)
		}
	}
	return out, nil
}

func (f *fileStore) DeleteWithRefund(ctx context.Context, fileID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	file, ok := f.files[fileID]
	if !ok {
		return domain.ErrNotFound
	}
	u := f.users[file.OwnerID]
	u.AvailableStorageInBytes = min64(u.TotalStorageInBytes, u.AvailableStorageInBytes+file.SizeInBytes)
	delete(f.files, fileID)
	return nil
}

// ShareStore

type shareStore struct{ *memStore }

func (m *memStore) asShareStore() *shareStore { return &shareStore{m} }

func (s *shareStore) CreateWithPermissions(ctx context.Context, share *domain.Share, perms domain.Permissions) error {
	for _, existing := range s.shares {
		if existing.SharedWith != share.SharedWith {
			continue
		}
		if share.FileID != nil && existing.FileID != nil && *existing.FileID == *share.FileID {
			return domain.ErrConflict
		}
		if share.FolderID != nil && existing.FolderID != nil && *existing.FolderID == *share.FolderID {
			return domain.ErrConflict
		}
	}
	share.ID = uuid.New()
	share.SharedAt = time.Now()
	s.shares = append(s.shares, share)
	s.perms[share.ID] = perms
	return nil
}

func (s *shareStore) SharedWithMe(ctx context.Context, userID string) ([]domain.SharedEntry, error) {
	var out []domain.SharedEntry
	for _, share := range s.shares {
		if share.SharedWith != userID {
			continue
		}
		owner := s.users[share.OwnerID]
		entry := domain.SharedEntry{
			OwnerEmail:  owner.Email,
			Permissions: s.perms[share.ID],
			SharedAt:    share.SharedAt,
		}
		if share.FileID != nil {
			file, ok := s.files[*share.FileID]
			if !ok || file.ParentFolderID != nil {
				continue
			}
			size := file.SizeInBytes
			typ := file.Type
			entry.Kind = domain.EntryKindFile
			entry.ID = file.ID
			entry.Name = file.Name
			entry.SizeInBytes = &size
			entry.Type = &typ
		} else {
			folder, ok := s.folders[*share.FolderID]
			if !ok || folder.ParentFolderID != nil {
				continue
			}
			entry.Kind = domain.EntryKindFolder
			entry.ID = folder.ID
			entry.Name = folder.Name
		}
		out = append(out, entry)
	}
	return out, nil
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// fakeStorage отвечает заранее известными ручками вместо похода в S3

type fakeStorage struct {
	deleted []string
	failAll bool
}

var errStorageDown = domain.ErrUnavailable

func (s *fakeStorage) IssueUploadHandle(ctx context.Context, ownerID string, size int64, key string, location *string) (*s3.PresignedPost, error) {
	if s.failAll {
		return nil, errStorageDown
	}
	return &s3.PresignedPost{
		URL:    "https://storage.test/bucket",
		Fields: map[string]string{"key": key},
	}, nil
}

func (s *fakeStorage) IssueDownloadHandle(ctx context.Context, ownerID, key, displayName string, location *string) (string, error) {
	if s.failAll {
		return "", errStorageDown
	}
	return "https://storage.test/bucket/" + key + "?filename=" + displayName, nil
}

func (s *fakeStorage) IssuePhotoUploadHandle(ctx context.Context, ownerID string, size int64) (*s3.PresignedPost, error) {
	return &s3.PresignedPost{URL: "https://storage.test/bucket", Fields: map[string]string{}}, nil
}

func (s *fakeStorage) IssuePhotoDownloadHandle(ctx context.Context, ownerID string) (string, error) {
	return "https://storage.test/bucket/photo", nil
}

func (s *fakeStorage) DeleteObject(ctx context.Context, ownerID, key string, location *string) error {
	s.deleted = append(s.deleted, key)
	return nil
}
