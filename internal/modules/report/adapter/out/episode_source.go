package out

import (
	"context"
	"encoding/json"
	"fmt"

	arrestout "codeclock/internal/modules/arrest/port/out"
	reportout "codeclock/internal/modules/report/port/out"
)

// SnapshotEpisodeSource serves the active episode to exporters straight from
// the snapshot store, so reports reflect the latest persisted transition.
type SnapshotEpisodeSource struct {
	store arrestout.SnapshotStore
}

func NewSnapshotEpisodeSource(store arrestout.SnapshotStore) reportout.EpisodeSource {
	return &SnapshotEpisodeSource{store: store}
}

func (s *SnapshotEpisodeSource) ActiveEpisodeJSON(ctx context.Context) (string, error) {
	snapshot, err := s.store.Load(ctx)
	if err != nil {
		return "", err
	}
	payload, err := json.MarshalIndent(snapshot.Session, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode episode: %w", err)
	}
	return string(payload), nil
}
