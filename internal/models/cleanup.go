package models

import (
	"time"

	"github.com/google/uuid"
)

// CleanupRule declares a table and a SQL row-matching condition to purge
// periodically. Authored by admins; the table name is validated against the
// known table set before execution.
type CleanupRule struct {
	ID        uuid.UUID `json:"id" db:"id"`
	TableName string    `json:"table_name" db:"table_name"`
	Condition string    `json:"condition" db:"condition"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CleanupLog records one execution of a cleanup rule.
type CleanupLog struct {
	ID          uuid.UUID `json:"id" db:"id"`
	RuleID      uuid.UUID `json:"rule_id" db:"rule_id"`
	RowsDeleted int64     `json:"rows_deleted" db:"rows_deleted"`
	DurationMs  int64     `json:"duration_ms" db:"duration_ms"`
	Success     bool      `json:"success" db:"success"`
	Error       *string   `json:"error,omitempty" db:"error"`
	ExecutedAt  time.Time `json:"executed_at" db:"executed_at"`
}
