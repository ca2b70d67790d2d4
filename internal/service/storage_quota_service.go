package service

import (
	"context"
	"fmt"

	"velodrive/internal/domain"
)

// StorageQuotaService отдает сводку по квоте владельца. Само списание
// и возврат места происходят в транзакциях репозитория файлов; ledger
// не имеет отдельного состояния, он живет в строке пользователя.
type StorageQuotaService struct {
	userRepo UserStore
}

func NewStorageQuotaService(userRepo UserStore) *StorageQuotaService {
	return &StorageQuotaService{userRepo: userRepo}
}

func (s *StorageQuotaService) GetQuotaInfo(ctx context.Context, ownerID string) (*domain.QuotaInfo, error) {
	summary, err := s.userRepo.GetSummary(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quota: %w", err)
	}

	used := summary.TotalStorageInBytes - summary.AvailableStorageInBytes
	var usagePercent float64
	if summary.TotalStorageInBytes > 0 {
		usagePercent = float64(used) / float64(summary.TotalStorageInBytes) * 100
	}

	return &domain.QuotaInfo{
		TotalSpace:     summary.TotalStorageInBytes,
		UsedSpace:      used,
		AvailableSpace: summary.AvailableStorageInBytes,
		UsagePercent:   usagePercent,
	}, nil
}
