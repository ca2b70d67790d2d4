package domain

import (
	"time"

	"github.com/google/uuid"
)

type Folder struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	OwnerID         string     `json:"owner_id" db:"owner_id"`
	Name            string     `json:"name" db:"name"`
	ParentFolderID  *uuid.UUID `json:"parent_folder_id,omitempty" db:"parent_folder_id"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	LastInteraction time.Time  `json:"last_interaction" db:"last_interaction"`
}
