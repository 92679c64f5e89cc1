package models

import (
	"time"

	"github.com/google/uuid"
)

// Archive is a durable export artifact produced by the backup subsystem.
// Rows are append-only except for status transitions.
type Archive struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Programme   string     `json:"programme" db:"programme_code"`
	Type        string     `json:"type" db:"type"`
	Status      string     `json:"status" db:"status"`
	Path        *string    `json:"path" db:"path"`
	Size        int64      `json:"size" db:"size"`
	Error       *string    `json:"error,omitempty" db:"error"`
	Operator    string     `json:"operator" db:"operator"`
	ExpiresAt   *time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	CompletedAt *time.Time `json:"completed_at" db:"completed_at"`
}

const (
	ArchiveTypeFull  = "full"
	ArchiveTypeData  = "data"
	ArchiveTypeFiles = "files"

	ArchiveStatusInProgress = "in_progress"
	ArchiveStatusDone       = "done"
	ArchiveStatusFailed     = "failed"
)
