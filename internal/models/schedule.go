package models

import "time"

// Weekly schedule statuses.
const (
	StatusScheduled = "SCHEDULED"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

// Job log levels.
const (
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// WeeklySchedule tracks one calendar week the scheduler has targeted.
// One row per distinct week_start, upserted on every generation attempt.
type WeeklySchedule struct {
	WeekStart    time.Time `db:"week_start" json:"week_start"`
	Status       string    `db:"status" json:"status"`
	PaperID      *string   `db:"paper_id" json:"paper_id,omitempty"`
	ErrorMessage *string   `db:"error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// JobLog is one append-only scheduler audit entry. Data holds an optional
// JSON-serialized payload.
type JobLog struct {
	ID        int64     `db:"id" json:"id"`
	Level     string    `db:"level" json:"level"`
	Message   string    `db:"message" json:"message"`
	Data      *string   `db:"data" json:"data,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
