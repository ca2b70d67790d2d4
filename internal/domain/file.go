package domain

import (
	"time"

	"github.com/google/uuid"
)

// ConflictStrategy выбирается клиентом при коллизии имени во время загрузки
type ConflictStrategy string

const (
	ConflictNone    ConflictStrategy = ""
	ConflictReplace ConflictStrategy = "Replace"
	ConflictKeep    ConflictStrategy = "Keep"
)

// File хранит метаданные файла. Ключом объекта в хранилище служит ID,
// он неизменяемый; Name хранит отображаемое имя, которое можно менять.
type File struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	OwnerID         string     `json:"owner_id" db:"owner_id"`
	Name            string     `json:"name" db:"name"`
	ParentFolderID  *uuid.UUID `json:"parent_folder_id,omitempty" db:"parent_folder_id"`
	SizeInBytes     int64      `json:"size_in_bytes" db:"size_in_bytes"`
	Type            string     `json:"type" db:"type"`
	ConfirmedUpload bool       `json:"confirmed_upload" db:"confirmed_upload"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	LastInteraction time.Time  `json:"last_interaction" db:"last_interaction"`
}

type UploadRequest struct {
	Name           string
	SizeInBytes    int64
	ParentFolderID *uuid.UUID
	Conflict       ConflictStrategy
}

// UploadHandle содержит результат выдачи presigned URL на загрузку
type UploadHandle struct {
	FileID uuid.UUID         `json:"file_id"`
	Name   string            `json:"name"`
	URL    string            `json:"url"`
	Fields map[string]string `json:"fields"`
}
