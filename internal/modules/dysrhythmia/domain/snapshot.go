package domain

import "time"

// Snapshot is the persisted form of an in-flight consultation. The decision
// tree carries no countdowns, so resume needs no timestamp shifting; SavedAt
// is kept for parity with the arrest snapshot and for display.
type Snapshot struct {
	SchemaVersion int       `json:"schema_version"`
	SavedAt       time.Time `json:"saved_at"`
	Session       Session   `json:"session"`
}
