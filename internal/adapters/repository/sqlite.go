package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mgreen/swinglab/internal/domain/model"
	"github.com/mgreen/swinglab/internal/domain/types"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS detections (
	video        TEXT PRIMARY KEY,
	fps          REAL NOT NULL,
	total_frames INTEGER NOT NULL,
	filter_log   TEXT NOT NULL,
	problems     TEXT NOT NULL,
	analyzed_at  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS swings (
	video           TEXT NOT NULL REFERENCES detections(video) ON DELETE CASCADE,
	num             INTEGER NOT NULL,
	backswing_frame INTEGER NOT NULL,
	contact_frame   INTEGER NOT NULL,
	xy_value        REAL NOT NULL,
	PRIMARY KEY (video, num)
);
CREATE INDEX IF NOT EXISTS idx_detections_analyzed_at ON detections(analyzed_at DESC);
`

// SQLiteStore persists detections in a SQLite database via the pure-Go
// driver, so builds stay CGO-free.
type SQLiteStore struct {
	db          *sql.DB
	busyTimeout time.Duration
}

// NewSQLiteStore opens (creating if needed) the database at path and
// prepares the schema. Use ":memory:" for an ephemeral store.
func NewSQLiteStore(path string, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{busyTimeout: 5 * time.Second}
	for _, opt := range opts {
		opt(s)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// The driver serializes writes; a single connection avoids SQLITE_BUSY
	// churn under concurrent workers.
	db.SetMaxOpenConns(1)
	pragmas := fmt.Sprintf(
		"PRAGMA journal_mode=WAL; PRAGMA foreign_keys=ON; PRAGMA busy_timeout=%d;",
		s.busyTimeout.Milliseconds(),
	)
	if _, err := db.Exec(pragmas); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite pragmas: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	s.db = db
	return s, nil
}

// SaveDetection inserts or replaces the record for d.Video along with its
// swings, in one transaction.
func (s *SQLiteStore) SaveDetection(ctx context.Context, d *model.Detection) error {
	flog, err := json.Marshal(d.FilterLog)
	if err != nil {
		return fmt.Errorf("encode filter log: %w", err)
	}
	probs, err := json.Marshal(d.Problems)
	if err != nil {
		return fmt.Errorf("encode problems: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO detections (video, fps, total_frames, filter_log, problems, analyzed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(video) DO UPDATE SET
			fps = excluded.fps,
			total_frames = excluded.total_frames,
			filter_log = excluded.filter_log,
			problems = excluded.problems,
			analyzed_at = excluded.analyzed_at`,
		d.Video, d.FPS, d.TotalFrames, string(flog), string(probs),
		d.AnalyzedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save detection %s: %w", d.Video, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM swings WHERE video = ?`, d.Video); err != nil {
		return fmt.Errorf("clear swings %s: %w", d.Video, err)
	}
	for _, sw := range d.Swings {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO swings (video, num, backswing_frame, contact_frame, xy_value)
			VALUES (?, ?, ?, ?, ?)`,
			d.Video, sw.Num, sw.BackswingFrame, sw.ContactFrame, sw.XYValue)
		if err != nil {
			return fmt.Errorf("save swing %s/%d: %w", d.Video, sw.Num, err)
		}
	}
	return tx.Commit()
}

// Detection returns the stored record for a video.
func (s *SQLiteStore) Detection(ctx context.Context, video string) (*model.Detection, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT video, fps, total_frames, filter_log, problems, analyzed_at
		FROM detections WHERE video = ?`, video)
	d, err := scanDetection(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load detection %s: %w", video, err)
	}
	if err := s.loadSwings(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// List returns up to limit detections, most recent first.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]*model.Detection, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT video, fps, total_frames, filter_log, problems, analyzed_at
		FROM detections ORDER BY analyzed_at DESC, video LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list detections: %w", err)
	}
	defer rows.Close()

	var out []*model.Detection
	for rows.Next() {
		d, err := scanDetection(rows)
		if err != nil {
			return nil, fmt.Errorf("list detections: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list detections: %w", err)
	}
	for _, d := range out {
		if err := s.loadSwings(ctx, d); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Summary aggregates stored detections.
func (s *SQLiteStore) Summary(ctx context.Context) (types.Summary, error) {
	var sum types.Summary
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM detections),
			(SELECT COUNT(*) FROM swings),
			(SELECT COUNT(*) FROM swings WHERE contact_frame >= 0),
			(SELECT COUNT(*) FROM detections WHERE problems NOT IN ('[]', 'null'))`).
		Scan(&sum.Videos, &sum.Swings, &sum.Contacts, &sum.Problems)
	if err != nil {
		return types.Summary{}, fmt.Errorf("summary: %w", err)
	}
	return sum, nil
}

// Count returns the number of stored detections.
func (s *SQLiteStore) Count(ctx context.Context) int {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM detections`).Scan(&n); err != nil {
		return 0
	}
	return n
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDetection(r rowScanner) (*model.Detection, error) {
	var d model.Detection
	var flog, probs, at string
	if err := r.Scan(&d.Video, &d.FPS, &d.TotalFrames, &flog, &probs, &at); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(flog), &d.FilterLog); err != nil {
		return nil, fmt.Errorf("decode filter log: %w", err)
	}
	if err := json.Unmarshal([]byte(probs), &d.Problems); err != nil {
		return nil, fmt.Errorf("decode problems: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, at)
	if err != nil {
		return nil, fmt.Errorf("decode analyzed_at: %w", err)
	}
	d.AnalyzedAt = t
	return &d, nil
}

func (s *SQLiteStore) loadSwings(ctx context.Context, d *model.Detection) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT num, backswing_frame, contact_frame, xy_value
		FROM swings WHERE video = ? ORDER BY num`, d.Video)
	if err != nil {
		return fmt.Errorf("load swings %s: %w", d.Video, err)
	}
	defer rows.Close()
	for rows.Next() {
		var sw model.Swing
		if err := rows.Scan(&sw.Num, &sw.BackswingFrame, &sw.ContactFrame, &sw.XYValue); err != nil {
			return fmt.Errorf("load swings %s: %w", d.Video, err)
		}
		d.Swings = append(d.Swings, sw)
	}
	return rows.Err()
}
