package usage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Timestamps are stored as fixed-width UTC strings so range queries can
// compare them lexicographically.
const timeLayout = "2006-01-02 15:04:05.000"

// Store is a sqlite ledger of upstream calls. The serve command seeds
// the rate limiter's day window from it on startup, and the usage
// command reports from it.
type Store struct {
	db *sql.DB
}

type Call struct {
	ID        string
	Tool      string
	Model     string
	CreatedAt time.Time
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open usage database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping usage database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS calls (
		id TEXT PRIMARY KEY,
		tool TEXT NOT NULL,
		model TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_calls_created_at ON calls(created_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to init usage schema: %w", err)
	}
	return nil
}

// Record appends one call to the ledger.
func (s *Store) Record(tool, model string) error {
	_, err := s.db.Exec(
		"INSERT INTO calls (id, tool, model, created_at) VALUES (?, ?, ?, ?)",
		uuid.New().String(), tool, model, time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to record call: %w", err)
	}
	return nil
}

// CountSince returns the number of calls recorded at or after t.
func (s *Store) CountSince(t time.Time) (int, error) {
	var n int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM calls WHERE created_at >= ?", t.UTC().Format(timeLayout),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count calls: %w", err)
	}
	return n, nil
}

// Recent returns the newest calls, most recent first.
func (s *Store) Recent(limit int) ([]Call, error) {
	rows, err := s.db.Query(
		"SELECT id, tool, model, created_at FROM calls ORDER BY created_at DESC LIMIT ?", limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list calls: %w", err)
	}
	defer rows.Close()

	var calls []Call
	for rows.Next() {
		var c Call
		var createdAt string
		if err := rows.Scan(&c.ID, &c.Tool, &c.Model, &createdAt); err != nil {
			return nil, err
		}
		t, err := time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("bad timestamp in ledger: %w", err)
		}
		c.CreatedAt = t.UTC()
		calls = append(calls, c)
	}
	return calls, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
