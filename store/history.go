// Package store records generated QR codes in a local SQLite database.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Kind describes what a recorded payload encodes.
type Kind string

const (
	KindText Kind = "text"
	KindUPI  Kind = "upi"
)

// Record is one generated QR code.
type Record struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Payload   string    `json:"payload"`
	Path      string    `json:"path"`
	Format    string    `json:"format"`
	Level     string    `json:"level"`
	CreatedAt time.Time `json:"created_at"`
}

// HistoryStore manages SQLite storage for generated QR codes.
type HistoryStore struct {
	db *sql.DB
}

const createHistoryTable = `
CREATE TABLE IF NOT EXISTS history (
    id TEXT PRIMARY KEY,
    kind TEXT NOT NULL,
    payload TEXT NOT NULL,
    path TEXT NOT NULL,
    format TEXT NOT NULL,
    level TEXT NOT NULL,
    created_at INTEGER NOT NULL
);
`

const createIndexes = `
CREATE INDEX IF NOT EXISTS idx_history_created_at ON history(created_at);
`

// Open opens (or creates) the SQLite database at dbPath, initialises the
// schema, and returns a ready-to-use HistoryStore.
func Open(dbPath string) (*HistoryStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	for _, stmt := range []string{createHistoryTable, createIndexes} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec schema statement: %w", err)
		}
	}

	return &HistoryStore{db: db}, nil
}

// Save inserts rec, filling in ID and CreatedAt when they are empty.
func (s *HistoryStore) Save(rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	const query = `
		INSERT INTO history (id, kind, payload, path, format, level, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.Exec(query,
		rec.ID,
		string(rec.Kind),
		rec.Payload,
		rec.Path,
		rec.Format,
		rec.Level,
		rec.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("save record: %w", err)
	}
	return nil
}

// List returns up to limit records, newest first.
func (s *HistoryStore) List(limit int) ([]Record, error) {
	const query = `
		SELECT id, kind, payload, path, format, level, created_at
		FROM history
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		var r Record
		var kind string
		var created int64
		if err := rows.Scan(&r.ID, &kind, &r.Payload, &r.Path, &r.Format, &r.Level, &created); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		r.Kind = Kind(kind)
		r.CreatedAt = time.Unix(0, created)
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}
	return recs, nil
}

// Close closes the underlying database connection.
func (s *HistoryStore) Close() error {
	return s.db.Close()
}
