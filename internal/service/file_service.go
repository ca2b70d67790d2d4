package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"velodrive/internal/domain"
	"velodrive/internal/service/s3"
)

// Верхняя граница попыток подбора уникального имени при стратегии Keep
const maxNameGenerationAttempts = 10

// FileService реализует реестр файлов и разрешение конфликтов загрузки.
// Байты идут в объектное хранилище напрямую по presigned URL, здесь
// живут только метаданные и резервирование квоты.
type FileService struct {
	fileRepo FileStore
	folders  *FolderService
	storage  s3.Storage
}

func NewFileService(fileRepo FileStore, folders *FolderService, storage s3.Storage) *FileService {
	return &FileService{
		fileRepo: fileRepo,
		folders:  folders,
		storage:  storage,
	}
}

// RequestUpload ведет трехходовую процедуру разрешения конфликта имени,
// управляемую клиентской стратегией: без стратегии отказ, Replace
// перезаписывает по тому же ключу, Keep автопереименовывает.
func (s *FileService) RequestUpload(ctx context.Context, ownerID string, req domain.UploadRequest) (*domain.UploadHandle, error) {
	switch req.Conflict {
	case domain.ConflictNone:
		return s.uploadNew(ctx, ownerID, req)
	case domain.ConflictReplace:
		return s.replaceExisting(ctx, ownerID, req)
	case domain.ConflictKeep:
		return s.keepBoth(ctx, ownerID, req)
	default:
		return nil, fmt.Errorf("%w: unknown conflict strategy %q", domain.ErrBadRequest, req.Conflict)
	}
}

func (s *FileService) uploadNew(ctx context.Context, ownerID string, req domain.UploadRequest) (*domain.UploadHandle, error) {
	ext, err := ExtractExtension(req.Name)
	if err != nil {
		return nil, err
	}

	if err := s.folders.VerifyParentIfProvided(ctx, ownerID, req.ParentFolderID); err != nil {
		return nil, err
	}

	file := &domain.File{
		OwnerID:        ownerID,
		Name:           req.Name,
		ParentFolderID: req.ParentFolderID,
		SizeInBytes:    req.SizeInBytes,
		Type:           ext,
	}
	if err := s.fileRepo.CreateWithReservation(ctx, file); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("%w: file %q already exists, resubmit with a conflict strategy", domain.ErrConflict, req.Name)
		}
		return nil, err
	}

	return s.issueHandle(ctx, ownerID, file)
}

// replaceExisting переиспользует неизменяемый ID существующего файла как
// ключ объекта: перезапись ложится поверх старых байт. Квота проверяется
// и списывается только на положительную дельту размера.
func (s *FileService) replaceExisting(ctx context.Context, ownerID string, req domain.UploadRequest) (*domain.UploadHandle, error) {
	if err := s.folders.VerifyParentIfProvided(ctx, ownerID, req.ParentFolderID); err != nil {
		return nil, err
	}

	existing, err := s.fileRepo.GetByLocationName(ctx, ownerID, req.ParentFolderID, req.Name)
	if err != nil {
		return nil, err
	}

	if err := s.fileRepo.ReserveReplacement(ctx, ownerID, existing.ID, req.SizeInBytes); err != nil {
		return nil, err
	}

	existing.SizeInBytes = req.SizeInBytes
	return s.issueHandle(ctx, ownerID, existing)
}

func (s *FileService) keepBoth(ctx context.Context, ownerID string, req domain.UploadRequest) (*domain.UploadHandle, error) {
	ext, err := ExtractExtension(req.Name)
	if err != nil {
		return nil, err
	}

	if err := s.folders.VerifyParentIfProvided(ctx, ownerID, req.ParentFolderID); err != nil {
		return nil, err
	}

	newName := GenerateUniqueFilename(req.Name)
	attempts := 0
	for {
		taken, err := s.fileRepo.NameTakenAtLocation(ctx, ownerID, newName, req.ParentFolderID)
		if err != nil {
			return nil, err
		}
		if !taken {
			break
		}
		attempts++
		if attempts >= maxNameGenerationAttempts {
			return nil, domain.ErrUnavailable
		}
		newName = GenerateUniqueFilename(newName)
	}

	file := &domain.File{
		OwnerID:        ownerID,
		Name:           newName,
		ParentFolderID: req.ParentFolderID,
		SizeInBytes:    req.SizeInBytes,
		Type:           ext,
	}
	if err := s.fileRepo.CreateWithReservation(ctx, file); err != nil {
		return nil, err
	}

	return s.issueHandle(ctx, ownerID, file)
}

// issueHandle выдает presigned URL под уже записанные метаданные.
// При сбое выдачи запись не откатывается: строка с confirmed_upload=false
// инертна, ее приберет фоновая зачистка.
func (s *FileService) issueHandle(ctx context.Context, ownerID string, file *domain.File) (*domain.UploadHandle, error) {
	post, err := s.storage.IssueUploadHandle(ctx, ownerID, file.SizeInBytes, file.ID.String(), locationString(file.ParentFolderID))
	if err != nil {
		return nil, fmt.Errorf("failed to issue upload handle: %w", err)
	}

	return &domain.UploadHandle{
		FileID: file.ID,
		Name:   file.Name,
		URL:    post.URL,
		Fields: post.Fields,
	}, nil
}

// RenameFile принимает только базовое имя. Расширением управляет система:
// оно восстанавливается из сохраненного имени, ключ объекта не меняется.
func (s *FileService) RenameFile(ctx context.Context, ownerID string, fileID uuid.UUID, baseName string) (string, error) {
	if hasDotSuffix(baseName) {
		return "", fmt.Errorf("%w: do not include the file extension, it is preserved automatically", domain.ErrBadRequest)
	}

	file, err := s.fileRepo.GetOwned(ctx, ownerID, fileID)
	if err != nil {
		return "", err
	}

	ext, err := ExtractExtension(file.Name)
	if err != nil {
		return "", fmt.Errorf("stored file name has no extension: %w", err)
	}
	adjusted := baseName + "." + ext

	taken, err := s.fileRepo.NameTakenAtLocation(ctx, ownerID, adjusted, file.ParentFolderID)
	if err != nil {
		return "", err
	}
	if taken {
		return "", fmt.Errorf("%w: file %q already exists in this location", domain.ErrConflict, adjusted)
	}

	if err := s.fileRepo.Rename(ctx, ownerID, fileID, adjusted); err != nil {
		return "", err
	}

	return adjusted, nil
}

// DownloadURL выдает presigned GET с отображаемым именем в
// Content-Disposition: ключ объекта непрозрачный, а имя человеческое.
func (s *FileService) DownloadURL(ctx context.Context, ownerID string, fileID uuid.UUID) (string, error) {
	file, err := s.fileRepo.GetOwned(ctx, ownerID, fileID)
	if err != nil {
		return "", err
	}

	return s.storage.IssueDownloadHandle(ctx, ownerID, file.ID.String(), file.Name, locationString(file.ParentFolderID))
}

// ConfirmUpload вызывается адаптером колбэка хранилища, когда байты
// действительно приехали в бакет.
func (s *FileService) ConfirmUpload(ctx context.Context, fileID uuid.UUID) error {
	return s.fileRepo.ConfirmUpload(ctx, fileID)
}

// CleanupAbandonedUploads выполняет внеполосную зачистку: удаляет неподтвержденные
// записи старше olderThan, возвращая владельцам зарезервированное место.
func (s *FileService) CleanupAbandonedUploads(ctx context.Context, olderThan time.Duration) (int, error) {
	files, err := s.fileRepo.ListAbandoned(ctx, time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, f := range files {
		// Объект мог так и не приехать, отсутствие не ошибка
		if err := s.storage.DeleteObject(ctx, f.OwnerID, f.ID.String(), locationString(f.ParentFolderID)); err != nil {
			log.Printf("[FileService] failed to delete abandoned object %s: %v", f.ID, err)
		}
		if err := s.fileRepo.DeleteWithRefund(ctx, f.ID); err != nil {
			log.Printf("[FileService] failed to delete abandoned record %s: %v", f.ID, err)
			continue
		}
		removed++
	}

	return removed, nil
}

// RunCleanupLoop периодически запускает зачистку, пока ctx не отменен
func (s *FileService) RunCleanupLoop(ctx context.Context, interval, olderThan time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed, err := s.CleanupAbandonedUploads(ctx, olderThan)
			if err != nil {
				log.Printf("[FileService] abandoned upload cleanup failed: %v", err)
				continue
			}
			if removed > 0 {
				log.Printf("[FileService] removed %d abandoned uploads", removed)
			}
		case <-ctx.Done():
			return
		}
	}
}

func locationString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
