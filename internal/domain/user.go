package domain

import (
	"time"

	"github.com/google/uuid"
)

const DefaultStorageLimitBytes = 5368709120 // 5GB

type User struct {
	ID                      uuid.UUID `json:"id" db:"id"`
	Username                string    `json:"username" db:"username"`
	Email                   string    `json:"email" db:"email"`
	Password                string    `json:"-" db:"password"`
	TotalStorageInBytes     int64     `json:"total_storage_in_bytes" db:"total_storage_in_bytes"`
	AvailableStorageInBytes int64     `json:"available_storage_in_bytes" db:"available_storage_in_bytes"`
	CreatedAt               time.Time `json:"created_at" db:"created_at"`
}

// UserSummary возвращается вместе с содержимым корневой папки
type UserSummary struct {
	Username                string `json:"username" db:"username"`
	Email                   string `json:"email" db:"email"`
	AvailableStorageInBytes int64  `json:"available_storage_in_bytes" db:"available_storage_in_bytes"`
	TotalStorageInBytes     int64  `json:"total_storage_in_bytes" db:"total_storage_in_bytes"`
}

type QuotaInfo struct {
	TotalSpace     int64   `json:"total_space"`
	UsedSpace      int64   `json:"used_space"`
	AvailableSpace int64   `json:"available_space"`
	UsagePercent   float64 `json:"usage_percent"`
}
