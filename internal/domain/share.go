package domain

import (
	"time"

	"github.com/google/uuid"
)

// Share описывает грант доступа. Заполнено ровно одно из FileID/FolderID,
// это закреплено CHECK-ограничением в схеме.
type Share struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	OwnerID    string     `json:"owner_id" db:"owner_id"`
	SharedWith string     `json:"shared_with" db:"shared_with"`
	FileID     *uuid.UUID `json:"file_id,omitempty" db:"file_id"`
	FolderID   *uuid.UUID `json:"folder_id,omitempty" db:"folder_id"`
	SharedAt   time.Time  `json:"shared_at" db:"shared_at"`
}

type Permissions struct {
	Read   bool `json:"read" db:"read"`
	Write  bool `json:"write" db:"write"`
	Delete bool `json:"delete" db:"delete"`
}

// Any сообщает, дает ли набор хоть одно право. Грант без прав бессмыслен
// и отклоняется до записи.
func (p Permissions) Any() bool {
	return p.Read || p.Write || p.Delete
}

// SharedEntry представляет строку выдачи "shared with me"
type SharedEntry struct {
	Kind        EntryKind `json:"kind" db:"kind"`
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	SizeInBytes *int64    `json:"size_in_bytes,omitempty" db:"size_in_bytes"`
	Type        *string   `json:"type,omitempty" db:"type"`
	OwnerEmail  string    `json:"owner_email" db:"owner_email"`
	Permissions
	SharedAt time.Time `json:"shared_at" db:"shared_at"`
}
