package out

import (
	"context"

	"codeclock/internal/modules/arrest/domain"
)

// SnapshotStore holds the single in-flight episode.
type SnapshotStore interface {
	Save(ctx context.Context, snapshot domain.Snapshot) error
	Load(ctx context.Context) (domain.Snapshot, error)
	Clear(ctx context.Context) error
}

// EpisodeArchive writes a finished episode as a debrief note and returns
// its path.
type EpisodeArchive interface {
	Archive(ctx context.Context, session domain.Session) (string, error)
}

// EpisodeProjector mirrors a finished episode into the queryable index.
type EpisodeProjector interface {
	Project(ctx context.Context, session domain.Session) error
	History(ctx context.Context, limit int) ([]domain.EpisodeRecord, error)
}
