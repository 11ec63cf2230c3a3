package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeclock/internal/modules/arrest/domain"
	arrestout "codeclock/internal/modules/arrest/port/out"
	"codeclock/internal/platform/markdown"
	"codeclock/internal/platform/slug"
)

// VaultEpisodeStore writes finished episodes as dated debrief notes with
// YAML frontmatter, one file per episode.
type VaultEpisodeStore struct {
	dataPath string
}

func NewVaultEpisodeStore(dataPath string) arrestout.EpisodeArchive {
	return &VaultEpisodeStore{dataPath: dataPath}
}

func (s *VaultEpisodeStore) Archive(_ context.Context, sess domain.Session) (string, error) {
	if sess.StartTime == nil || sess.EndTime == nil {
		return "", fmt.Errorf("episode %s has no start or end time", sess.ID)
	}
	date := *sess.StartTime
	dir := filepath.Join(s.dataPath, "episodes", date.Format("2006"), date.Format("01"), date.Format("02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create episode dir: %w", err)
	}
	name := fmt.Sprintf("%s-%s.md", date.Format("150405"), slug.Make(string(sess.PathwayMode)+" "+string(sess.Outcome)))
	path := filepath.Join(dir, name)

	duration := sess.EndTime.Sub(*sess.StartTime)
	meta := map[string]any{
		"schema_version":    domain.SchemaVersion,
		"id":                sess.ID,
		"pathway_mode":      string(sess.PathwayMode),
		"outcome":           string(sess.Outcome),
		"final_rhythm":      string(sess.CurrentRhythm),
		"started_at":        sess.StartTime.Format("2006-01-02T15:04:05Z07:00"),
		"ended_at":          sess.EndTime.Format("2006-01-02T15:04:05Z07:00"),
		"duration_minutes":  int(duration.Minutes()),
		"shock_count":       sess.ShockCount,
		"epinephrine_count": sess.EpinephrineCount,
		"amiodarone_count":  sess.AmiodaroneCount,
		"lidocaine_count":   sess.LidocaineCount,
		"airway":            string(sess.AirwayStatus),
	}
	if sess.PatientWeightKg != nil {
		meta["patient_weight_kg"] = *sess.PatientWeightKg
	}

	rendered, err := markdown.RenderFrontmatter(meta, s.body(sess, duration))
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write episode note: %w", err)
	}
	return path, nil
}

func (s *VaultEpisodeStore) body(sess domain.Session, duration time.Duration) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Code debrief %s\n\n", sess.StartTime.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "- Pathway: %s\n", sess.PathwayMode)
	fmt.Fprintf(&b, "- Outcome: %s\n", sess.Outcome)
	fmt.Fprintf(&b, "- Duration: %d min\n", int(duration.Minutes()))
	fmt.Fprintf(&b, "- Shocks: %d, Epinephrine: %d, Amiodarone: %d\n\n", sess.ShockCount, sess.EpinephrineCount, sess.AmiodaroneCount)

	b.WriteString("## Interventions\n\n")
	for _, iv := range sess.Interventions {
		elapsed := iv.Timestamp.Sub(*sess.StartTime)
		fmt.Fprintf(&b, "- [%02d:%02d] %s: %s\n", int(elapsed.Minutes()), int(elapsed.Seconds())%60, iv.Kind.Label(), iv.Details)
	}
	return b.String()
}
