// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps an optional SQLite ledger of conversion attempts so
// a user can later see which dump produced which save file.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/sram-convert/pkg/types"
)

const (
	dbFile            = "history.db"
	defaultMaxResults = 20
)

// Store manages the history SQLite database.
type Store struct {
	db         *sql.DB
	path       string
	maxResults int
}

// Entry is one recorded conversion attempt.
type Entry struct {
	ID          int64                  `json:"id" yaml:"id"`
	Input       string                 `json:"input" yaml:"input"`
	Output      string                 `json:"output,omitempty" yaml:"output,omitempty"`
	InputSize   int                    `json:"input_size" yaml:"input_size"`
	SizeCheck   types.SizeCheck        `json:"size_check" yaml:"size_check"`
	Game        string                 `json:"game,omitempty" yaml:"game,omitempty"`
	FillRatio   float64                `json:"fill_ratio" yaml:"fill_ratio"`
	Status      types.ConversionStatus `json:"status" yaml:"status"`
	Error       string                 `json:"error,omitempty" yaml:"error,omitempty"`
	ConvertedAt time.Time              `json:"converted_at" yaml:"converted_at"`
}

// Filter narrows List and export queries. Zero values match everything.
type Filter struct {
	// Game matches entries whose game label contains this text.
	Game string

	Status types.ConversionStatus

	// Limit caps the number of rows; zero uses the store default.
	Limit int
}

// DefaultDBPath returns ~/.config/sram-convert/history.db, or history.db in
// the working directory when the home directory is unknown.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return dbFile
	}
	return filepath.Join(home, ".config", "sram-convert", dbFile)
}

// Open opens or creates the history database at cfg.DBPath and creates the
// schema if needed.
func Open(cfg types.HistoryConfig) (*Store, error) {
	path := cfg.DBPath
	if path == "" {
		path = DefaultDBPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{db: db, path: path, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS conversions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			input TEXT NOT NULL,
			output TEXT,
			input_size INTEGER NOT NULL,
			size_check TEXT,
			game TEXT,
			fill_ratio REAL,
			status TEXT NOT NULL,
			error TEXT,
			converted_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_game ON conversions(game)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_status ON conversions(status)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores one conversion result.
func (s *Store) Record(ctx context.Context, r types.ConversionResult) error {
	at := r.ConvertedAt
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversions (input, output, input_size, size_check, game, fill_ratio, status, error, converted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Input, r.Output, r.InputSize, string(r.SizeCheck), r.Game, r.FillRatio,
		string(r.Status), r.Error, at.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording conversion of %s: %w", r.Input, err)
	}
	return nil
}

// List returns entries matching f, newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]Entry, error) {
	var (
		where []string
		args  []any
	)
	if f.Game != "" {
		where = append(where, "game LIKE ?")
		args = append(args, "%"+f.Game+"%")
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}

	limit := f.Limit
	if limit <= 0 {
		limit = s.maxResults
	}

	query := `SELECT id, input, output, input_size, size_check, game, fill_ratio, status, error, converted_at
		FROM conversions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                               Entry
			output, sizeCheck, game, errMsg sql.NullString
			fill                            sql.NullFloat64
			status, at                      string
		)
		if err := rows.Scan(&e.ID, &e.Input, &output, &e.InputSize, &sizeCheck, &game, &fill, &status, &errMsg, &at); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		e.Output = output.String
		e.SizeCheck = types.SizeCheck(sizeCheck.String)
		e.Game = game.String
		e.FillRatio = fill.Float64
		e.Status = types.ConversionStatus(status)
		e.Error = errMsg.String
		if t, err := time.Parse(time.RFC3339Nano, at); err == nil {
			e.ConvertedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
