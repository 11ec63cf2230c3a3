package domain

import "time"

// Snapshot is the persisted form of an in-flight episode. SavedAt is the
// wall-clock moment of the save; on resume the gap between SavedAt and now
// is added to every countdown reference so timers continue where they were.
type Snapshot struct {
	SchemaVersion int       `json:"schema_version"`
	SavedAt       time.Time `json:"saved_at"`
	Session       Session   `json:"session"`
}

// EpisodeRecord is one row of the finished-episode index.
type EpisodeRecord struct {
	ID               string
	PathwayMode      PathwayMode
	Outcome          Outcome
	FinalRhythm      Rhythm
	StartedAt        time.Time
	EndedAt          time.Time
	DurationMin      int
	ShockCount       int
	EpinephrineCount int
	CPRFraction      float64
}
