package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"democap/internal/config"
)

// ErrNotFound is returned when a recording id is not catalogued.
var ErrNotFound = errors.New("recording not found")

// Store persists recording outcomes in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open initializes or connects to the catalog database.
func Open(cfg *config.Config) (*Store, error) {
	return OpenPath(cfg.CatalogPath())
}

// OpenPath opens the catalog at an explicit location.
func OpenPath(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure catalog directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Begin inserts a recording in the recording state. An empty ID is replaced
// with a new UUID; the stored row is returned.
func (s *Store) Begin(ctx context.Context, rec Recording) (*Recording, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Kind == "" {
		rec.Kind = KindLive
	}
	if rec.StartedAt.IsZero() {
		rec.StartedAt = time.Now()
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO recordings (
            id, kind, output_path, display, region, status, size_bytes, started_at
        ) VALUES (?, ?, ?, ?, ?, ?, 0, ?)`,
		rec.ID,
		string(rec.Kind),
		rec.OutputPath,
		nullableString(rec.Display),
		nullableString(rec.Region),
		string(StatusRecording),
		formatTime(rec.StartedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert recording: %w", err)
	}
	return s.Get(ctx, rec.ID)
}

// Finish records how a recording ended.
func (s *Store) Finish(ctx context.Context, id string, outcome Outcome) error {
	if outcome.Status == "" || outcome.Status == StatusRecording {
		return fmt.Errorf("finish recording %s: invalid terminal status %q", id, outcome.Status)
	}
	res, err := s.execWithRetry(ctx,
		`UPDATE recordings
            SET status = ?, size_bytes = ?, ended_at = ?, error_message = ?
          WHERE id = ?`,
		string(outcome.Status),
		outcome.SizeBytes,
		formatTime(time.Now()),
		nullableString(outcome.ErrorMessage),
		id,
	)
	if err != nil {
		return fmt.Errorf("finish recording %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish recording %s: %w", id, ErrNotFound)
	}
	return nil
}

const selectColumns = `id, kind, output_path, display, region, status, size_bytes, started_at, ended_at, error_message`

// Get fetches one recording.
func (s *Store) Get(ctx context.Context, id string) (*Recording, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM recordings WHERE id = ?`, id)
	rec, err := scanRecording(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get recording %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get recording %s: %w", id, err)
	}
	return rec, nil
}

// List returns the most recent recordings first, optionally filtered by status.
// A limit <= 0 returns every row.
func (s *Store) List(ctx context.Context, limit int, statuses ...Status) ([]*Recording, error) {
	query := `SELECT ` + selectColumns + ` FROM recordings`
	args := make([]any, 0, len(statuses)+1)
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, string(status))
		}
		query += ` WHERE status IN (` + strings.Join(placeholders, ",") + `)`
	}
	query += ` ORDER BY started_at DESC, id`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recordings: %w", err)
	}
	defer rows.Close()

	var out []*Recording
	for rows.Next() {
		rec, err := scanRecording(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recording: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Stats returns a count of recordings grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM recordings GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("recording stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecording(row rowScanner) (*Recording, error) {
	var (
		rec                Recording
		kind, status       string
		display, region    sql.NullString
		startedAt, endedAt sql.NullString
		errorMessage       sql.NullString
	)
	if err := row.Scan(
		&rec.ID, &kind, &rec.OutputPath, &display, &region, &status,
		&rec.SizeBytes, &startedAt, &endedAt, &errorMessage,
	); err != nil {
		return nil, err
	}
	rec.Kind = Kind(kind)
	rec.Status = Status(status)
	rec.Display = display.String
	rec.Region = region.String
	rec.StartedAt = parseTime(startedAt)
	rec.EndedAt = parseTime(endedAt)
	rec.ErrorMessage = errorMessage.String
	return &rec, nil
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}
