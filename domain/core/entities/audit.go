package entities

import "time"

// DeleteMode is whether a destructive operation was a hard delete or a
// soft delete (forget).
type DeleteMode string

const (
	DeleteModeHard DeleteMode = "hard"
	DeleteModeSoft DeleteMode = "soft"
)

// AuditRecord is an append-only entry written for every delete/forget.
// Written before the destructive operation and never rolled back on
// failure, so an orphan audit is preferred to a silent deletion.
type AuditRecord struct {
	ID            string
	ContextID     string
	Actor         string
	ActorType     string // "human" | "agent"
	Reason        string
	Timestamp     time.Time
	Mode          DeleteMode
	RetentionDays *int
}
