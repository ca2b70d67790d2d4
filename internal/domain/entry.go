package domain

import (
	"time"

	"github.com/google/uuid"
)

type EntryKind string

const (
	EntryKindFile   EntryKind = "file"
	EntryKindFolder EntryKind = "folder"
)

// Поля сортировки и порядок для листинга. Значения попадают в ORDER BY
// только через белый список в репозитории.
type SortField string

const (
	SortByName            SortField = "name"
	SortByCreatedAt       SortField = "created_at"
	SortByLastInteraction SortField = "last_interaction"
)

type SortOrder string

const (
	OrderAsc  SortOrder = "ASC"
	OrderDesc SortOrder = "DESC"
)

func (f SortField) Valid() bool {
	switch f {
	case SortByName, SortByCreatedAt, SortByLastInteraction:
		return true
	}
	return false
}

func (o SortOrder) Valid() bool {
	return o == OrderAsc || o == OrderDesc
}

// NamespaceEntry представляет элемент листинга: файл или папка, различаются по Kind.
// Size и Type заполнены только у файлов.
type NamespaceEntry struct {
	Kind            EntryKind  `json:"kind" db:"kind"`
	ID              uuid.UUID  `json:"id" db:"id"`
	Name            string     `json:"name" db:"name"`
	SizeInBytes     *int64     `json:"size_in_bytes,omitempty" db:"size_in_bytes"`
	Type            *string    `json:"type,omitempty" db:"type"`
	ParentFolderID  *uuid.UUID `json:"parent_folder_id,omitempty" db:"parent_folder_id"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	LastInteraction time.Time  `json:"last_interaction" db:"last_interaction"`
}

// Listing описывает содержимое одной локации. User заполняется только для корня.
type Listing struct {
	User    *UserSummary     `json:"user,omitempty"`
	Entries []NamespaceEntry `json:"files_and_folders"`
}
