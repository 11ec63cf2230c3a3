package out

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"codeclock/internal/modules/arrest/domain"
	arrestout "codeclock/internal/modules/arrest/port/out"
	apperrors "codeclock/internal/platform/errors"
)

type FileSnapshotStore struct {
	path string
}

func NewFileSnapshotStore(dataPath string) arrestout.SnapshotStore {
	return &FileSnapshotStore{path: filepath.Join(dataPath, ".codeclock", "active-episode.json")}
}

func (s *FileSnapshotStore) Save(_ context.Context, snapshot domain.Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	payload, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	// Write-then-rename so a crash mid-save never corrupts the only copy.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

func (s *FileSnapshotStore) Load(_ context.Context) (domain.Snapshot, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Snapshot{}, apperrors.ErrNoActiveEpisode
		}
		return domain.Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	snapshot := domain.Snapshot{}
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if snapshot.Session.ID == "" {
		return domain.Snapshot{}, apperrors.ErrNoActiveEpisode
	}
	if snapshot.SchemaVersion > domain.SchemaVersion {
		return domain.Snapshot{}, fmt.Errorf("snapshot schema %d is newer than this build supports", snapshot.SchemaVersion)
	}
	return snapshot, nil
}

func (s *FileSnapshotStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("clear snapshot: %w", err)
	}
	return nil
}
