package out

import (
	"context"

	"codeclock/internal/modules/dysrhythmia/domain"
)

// SnapshotStore holds the single in-flight consultation.
type SnapshotStore interface {
	Save(ctx context.Context, snapshot domain.Snapshot) error
	Load(ctx context.Context) (domain.Snapshot, error)
	Clear(ctx context.Context) error
}
