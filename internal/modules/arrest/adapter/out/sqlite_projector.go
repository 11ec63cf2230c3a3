package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"codeclock/internal/modules/arrest/domain"
	arrestout "codeclock/internal/modules/arrest/port/out"

	_ "modernc.org/sqlite"
)

// SQLiteEpisodeProjector keeps a queryable mirror of finished episodes. The
// markdown notes stay the source of truth; the index can be rebuilt from
// them at any time.
type SQLiteEpisodeProjector struct {
	db *sql.DB
}

func NewSQLiteEpisodeProjector(dbPath string) (*SQLiteEpisodeProjector, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	projector := &SQLiteEpisodeProjector{db: db}
	if err := projector.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return projector, nil
}

var _ arrestout.EpisodeProjector = (*SQLiteEpisodeProjector)(nil)

func (s *SQLiteEpisodeProjector) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS episodes (
  id TEXT PRIMARY KEY,
  pathway_mode TEXT NOT NULL,
  outcome TEXT NOT NULL,
  final_rhythm TEXT,
  started_at TEXT NOT NULL,
  ended_at TEXT NOT NULL,
  duration_min INTEGER NOT NULL,
  shock_count INTEGER NOT NULL,
  epinephrine_count INTEGER NOT NULL,
  amiodarone_count INTEGER NOT NULL,
  lidocaine_count INTEGER NOT NULL,
  patient_weight_kg REAL,
  cpr_fraction REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS interventions (
  id TEXT PRIMARY KEY,
  episode_id TEXT NOT NULL REFERENCES episodes(id),
  at TEXT NOT NULL,
  kind TEXT NOT NULL,
  details TEXT,
  value REAL,
  unit TEXT
);
CREATE INDEX IF NOT EXISTS idx_interventions_episode ON interventions(episode_id);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create episode tables: %w", err)
	}
	return nil
}

func (s *SQLiteEpisodeProjector) Project(ctx context.Context, sess domain.Session) error {
	if sess.StartTime == nil || sess.EndTime == nil {
		return fmt.Errorf("episode %s has no start or end time", sess.ID)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin projection: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	duration := sess.EndTime.Sub(*sess.StartTime)
	cprFraction := 0.0
	if duration > 0 {
		cprFraction = float64(sess.CPRAccumulatedMS) / float64(duration.Milliseconds())
		if cprFraction > 1 {
			cprFraction = 1
		}
	}

	const upsert = `
INSERT INTO episodes (id, pathway_mode, outcome, final_rhythm, started_at, ended_at, duration_min, shock_count, epinephrine_count, amiodarone_count, lidocaine_count, patient_weight_kg, cpr_fraction)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  pathway_mode=excluded.pathway_mode,
  outcome=excluded.outcome,
  final_rhythm=excluded.final_rhythm,
  started_at=excluded.started_at,
  ended_at=excluded.ended_at,
  duration_min=excluded.duration_min,
  shock_count=excluded.shock_count,
  epinephrine_count=excluded.epinephrine_count,
  amiodarone_count=excluded.amiodarone_count,
  lidocaine_count=excluded.lidocaine_count,
  patient_weight_kg=excluded.patient_weight_kg,
  cpr_fraction=excluded.cpr_fraction;
`
	_, err = tx.ExecContext(ctx, upsert,
		sess.ID,
		string(sess.PathwayMode),
		string(sess.Outcome),
		string(sess.CurrentRhythm),
		sess.StartTime.Format("2006-01-02T15:04:05Z07:00"),
		sess.EndTime.Format("2006-01-02T15:04:05Z07:00"),
		int(duration.Minutes()),
		sess.ShockCount,
		sess.EpinephrineCount,
		sess.AmiodaroneCount,
		sess.LidocaineCount,
		sess.PatientWeightKg,
		cprFraction,
	)
	if err != nil {
		return fmt.Errorf("upsert episode: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM interventions WHERE episode_id = ?`, sess.ID); err != nil {
		return fmt.Errorf("clear interventions: %w", err)
	}
	const insert = `INSERT INTO interventions (id, episode_id, at, kind, details, value, unit) VALUES (?, ?, ?, ?, ?, ?, ?)`
	for _, iv := range sess.Interventions {
		_, err := tx.ExecContext(ctx, insert,
			iv.ID,
			sess.ID,
			iv.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			string(iv.Kind),
			iv.Details,
			iv.Value,
			iv.Unit,
		)
		if err != nil {
			return fmt.Errorf("insert intervention: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit projection: %w", err)
	}
	return nil
}

// History returns finished episodes, newest first. A limit of zero or less
// means all of them.
func (s *SQLiteEpisodeProjector) History(ctx context.Context, limit int) ([]domain.EpisodeRecord, error) {
	const query = `
SELECT id, pathway_mode, outcome, final_rhythm, started_at, ended_at, duration_min, shock_count, epinephrine_count, cpr_fraction
FROM episodes ORDER BY started_at DESC`
	q := query
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query episodes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []domain.EpisodeRecord
	for rows.Next() {
		var rec domain.EpisodeRecord
		var startedAt, endedAt string
		err := rows.Scan(&rec.ID, &rec.PathwayMode, &rec.Outcome, &rec.FinalRhythm,
			&startedAt, &endedAt, &rec.DurationMin, &rec.ShockCount,
			&rec.EpinephrineCount, &rec.CPRFraction)
		if err != nil {
			return nil, fmt.Errorf("scan episode: %w", err)
		}
		if rec.StartedAt, err = time.Parse(time.RFC3339, startedAt); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if rec.EndedAt, err = time.Parse(time.RFC3339, endedAt); err != nil {
			return nil, fmt.Errorf("parse ended_at: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *SQLiteEpisodeProjector) Close() error {
	return s.db.Close()
}
