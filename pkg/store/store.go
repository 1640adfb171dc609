// Package store keeps a history of batch reports in a SQLite database.
//
// Each saved [pipeline.Report] becomes one row: its stats are stored as
// columns for listing, the full report as a JSON payload. The database is a
// single file and uses the pure Go modernc.org/sqlite driver, so no cgo
// toolchain is needed.
//
//	st, err := store.Open(ctx, path)
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
//
//	if err := st.Save(ctx, report, "house.toml"); err != nil {
//	    return err
//	}
//	runs, err := st.Runs(ctx, 10)
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/matzehuels/rfit/pkg/errors"
	"github.com/matzehuels/rfit/pkg/pipeline"
)

// fileName is the database file inside the data directory.
const fileName = "history.db"

const schema = `CREATE TABLE IF NOT EXISTS runs (
	run_id     TEXT PRIMARY KEY,
	version    TEXT NOT NULL,
	source     TEXT NOT NULL,
	started_at INTEGER NOT NULL,
	saved_at   INTEGER NOT NULL,
	surfaces   INTEGER NOT NULL,
	fallbacks  INTEGER NOT NULL,
	cache_hits INTEGER NOT NULL,
	elapsed_ms INTEGER NOT NULL,
	payload    BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_started_at ON runs (started_at DESC);`

// Run summarizes one saved report.
type Run struct {
	RunID     string         `json:"run_id" yaml:"run_id"`
	Version   string         `json:"version" yaml:"version"`
	Source    string         `json:"source" yaml:"source"`
	StartedAt time.Time      `json:"started_at" yaml:"started_at"`
	SavedAt   time.Time      `json:"saved_at" yaml:"saved_at"`
	Stats     pipeline.Stats `json:"stats" yaml:"stats"`
}

// Store is a SQLite-backed report history. It is safe for concurrent use.
type Store struct {
	db   *sql.DB
	path string
}

// DefaultPath returns the history database under the XDG data directory
// (~/.local/share/<app>/history.db).
func DefaultPath(app string) (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, app, fileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", app, fileName), nil
}

// Open opens or creates the database at path and ensures the schema exists.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite allows one writer; a single connection serializes writes
	// instead of failing them with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create runs table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database file.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save records report. Saving a run ID again replaces the earlier row.
func (s *Store) Save(ctx context.Context, report *pipeline.Report, source string) error {
	if report == nil || report.RunID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "report has no run id")
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT OR REPLACE INTO runs
		(run_id, version, source, started_at, saved_at, surfaces, fallbacks, cache_hits, elapsed_ms, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.RunID, report.Version, source,
		report.StartedAt.UnixNano(), time.Now().UnixNano(),
		report.Stats.Surfaces, report.Stats.Fallbacks, report.Stats.CacheHits, report.Stats.ElapsedMS,
		payload)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", report.RunID, err)
	}
	return nil
}

// Runs lists saved runs, newest first. A limit of zero or less lists all.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT run_id, version, source, started_at, saved_at, surfaces, fallbacks, cache_hits, elapsed_ms
		FROM runs ORDER BY started_at DESC, saved_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var (
			r                Run
			started, savedAt int64
		)
		if err := rows.Scan(&r.RunID, &r.Version, &r.Source, &started, &savedAt,
			&r.Stats.Surfaces, &r.Stats.Fallbacks, &r.Stats.CacheHits, &r.Stats.ElapsedMS); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartedAt = time.Unix(0, started).UTC()
		r.SavedAt = time.Unix(0, savedAt).UTC()
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Report loads a saved report. id may be a full run ID or a unique prefix
// of one, as printed by the history listing.
func (s *Store) Report(ctx context.Context, id string) (*pipeline.Report, error) {
	runID, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	var payload []byte
	err = s.db.QueryRowContext(ctx, `SELECT payload FROM runs WHERE run_id = ?`, runID).Scan(&payload)
	if err != nil {
		return nil, fmt.Errorf("select run %s: %w", runID, err)
	}
	var report pipeline.Report
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", runID, err)
	}
	return &report, nil
}

// Delete removes a saved run. id follows the same rules as in [Store.Report].
func (s *Store) Delete(ctx context.Context, id string) (string, error) {
	runID, err := s.lookup(ctx, id)
	if err != nil {
		return "", err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE run_id = ?`, runID); err != nil {
		return "", fmt.Errorf("delete run %s: %w", runID, err)
	}
	return runID, nil
}

// Prune keeps the newest keep runs and deletes the rest.
// It returns the number of runs deleted.
func (s *Store) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "keep must be >= 0, got %d", keep)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE run_id NOT IN
		(SELECT run_id FROM runs ORDER BY started_at DESC, saved_at DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// lookup resolves a run ID or unique prefix to a full run ID.
func (s *Store) lookup(ctx context.Context, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.New(errors.ErrCodeInvalidInput, "run id is required")
	}
	// LIKE treats % and _ as wildcards; run IDs never contain them.
	if strings.ContainsAny(id, "%_") {
		return "", errors.New(errors.ErrCodeInvalidInput, "run id %q contains invalid characters", id)
	}
	rows, err := s.db.QueryContext(ctx, `SELECT run_id FROM runs WHERE run_id LIKE ? LIMIT 2`, id+"%")
	if err != nil {
		return "", fmt.Errorf("select run %s: %w", id, err)
	}
	defer func() { _ = rows.Close() }()

	var matches []string
	for rows.Next() {
		var runID string
		if err := rows.Scan(&runID); err != nil {
			return "", fmt.Errorf("scan run: %w", err)
		}
		if runID == id {
			return runID, nil
		}
		matches = append(matches, runID)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	switch len(matches) {
	case 0:
		return "", errors.New(errors.ErrCodeNotFound, "no saved run %q", id)
	case 1:
		return matches[0], nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "run id %q is ambiguous", id)
}
