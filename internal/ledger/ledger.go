// Package ledger persists saved tool results for the Security Toolbox. It
// wraps a SQLite database holding a capacity-bounded, append-only history:
// new entries are kept newest-first and the oldest entries are evicted once
// the capacity is exceeded. Entries are immutable; only deletion is supported.
package ledger

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"sectoolbox/internal/models"
)

// ErrNotFound is returned when a result ID does not exist in the ledger.
var ErrNotFound = errors.New("result not found")

// maxInputLength is the persisted-input cap. Truncation is lossy and one-way.
const maxInputLength = 200

// Store is the SQLite-backed results ledger.
type Store struct {
	*sql.DB
	Path     string // Exported for integration tests
	capacity int
	logger   *zerolog.Logger
	sync.Mutex
}

// Open opens (or creates) the ledger database at path with the given entry
// capacity. A corrupt database file is logged, discarded, and replaced with
// an empty ledger rather than blocking startup.
func Open(path string, capacity int) (*Store, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("invalid ledger capacity: %d", capacity)
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory: %w", err)
	}

	logger := log.With().Str("component", "ledger").Logger()

	db, err := open(path)
	if err != nil {
		// Unreadable persisted state is treated as empty state, not a
		// startup failure.
		logger.Warn().Err(err).Str("path", path).
			Msg("Persisted ledger is corrupt, starting with an empty ledger")

		for _, stale := range []string{path, path + "-wal", path + "-shm"} {
			if removeErr := os.Remove(stale); removeErr != nil && !os.IsNotExist(removeErr) {
				logger.Warn().Err(removeErr).Str("file", stale).Msg("Failed to remove stale ledger file")
			}
		}

		db, err = open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to recreate ledger database: %w", err)
		}
	}

	return &Store{
		DB:       db,
		Path:     path,
		capacity: capacity,
		logger:   &logger,
	}, nil
}

// open opens the database file and initializes pragmas and schema.
func open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports only one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=10000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	schema := `
	CREATE TABLE IF NOT EXISTS tool_results (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		tool_name TEXT NOT NULL,
		input TEXT NOT NULL,
		result TEXT NOT NULL,
		metadata TEXT NOT NULL DEFAULT '{}',
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tool_results_id ON tool_results(id);
	CREATE INDEX IF NOT EXISTS idx_tool_results_created ON tool_results(created_at);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize ledger schema: %w", err)
	}

	return db, nil
}

// Save records a tool invocation and evicts the oldest entries beyond the
// capacity. The input is truncated to 200 characters before storage; the
// full original input is not recoverable from the saved entry.
func (s *Store) Save(toolName, input, result string, metadata map[string]string) (*models.ToolResult, error) {
	s.Lock()
	defer s.Unlock()

	if toolName == "" {
		return nil, errors.New("tool name is required")
	}

	if metadata == nil {
		metadata = map[string]string{}
	}

	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}

	entry := &models.ToolResult{
		ID:        uuid.New().String(),
		ToolName:  toolName,
		Input:     truncate(input, maxInputLength),
		Result:    result,
		Metadata:  metadata,
		Timestamp: time.Now().UTC(),
	}
	entry.Date = entry.Timestamp.Format("2006-01-02")
	entry.Time = entry.Timestamp.Format("15:04:05")

	tx, err := s.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if tx != nil {
			tx.Rollback()
		}
	}()

	_, err = tx.Exec(
		`INSERT INTO tool_results (id, tool_name, input, result, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.ToolName, entry.Input, entry.Result, string(metadataJSON),
		entry.Timestamp.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert result: %w", err)
	}

	// Evict everything older than the newest <capacity> entries.
	_, err = tx.Exec(
		`DELETE FROM tool_results
		 WHERE seq NOT IN (SELECT seq FROM tool_results ORDER BY seq DESC LIMIT ?)`,
		s.capacity,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to trim ledger: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	// Set tx to nil to prevent rollback in deferred function
	tx = nil

	s.logger.Debug().
		Str("id", entry.ID).
		Str("tool", entry.ToolName).
		Msg("Result saved")

	return entry, nil
}

// List returns up to limit entries, newest first. A non-positive limit
// returns up to the ledger capacity.
func (s *Store) List(limit int) ([]*models.ToolResult, error) {
	if limit <= 0 || limit > s.capacity {
		limit = s.capacity
	}

	rows, err := s.Query(
		`SELECT id, tool_name, input, result, metadata, created_at
		 FROM tool_results
		 ORDER BY seq DESC
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var results []*models.ToolResult
	for rows.Next() {
		entry, err := s.scanRow(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating result rows: %w", err)
	}

	return results, nil
}

// Get retrieves a single entry by ID.
func (s *Store) Get(id string) (*models.ToolResult, error) {
	row := s.QueryRow(
		`SELECT id, tool_name, input, result, metadata, created_at
		 FROM tool_results WHERE id = ?`, id,
	)

	entry, err := s.scanRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return entry, nil
}

// Delete removes exactly one entry by ID.
func (s *Store) Delete(id string) error {
	s.Lock()
	defer s.Unlock()

	res, err := s.Exec(`DELETE FROM tool_results WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete result: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	s.logger.Debug().Str("id", id).Msg("Result deleted")
	return nil
}

// Clear removes every entry from the ledger.
func (s *Store) Clear() error {
	s.Lock()
	defer s.Unlock()

	if _, err := s.Exec(`DELETE FROM tool_results`); err != nil {
		return fmt.Errorf("failed to clear ledger: %w", err)
	}

	s.logger.Info().Msg("Ledger cleared")
	return nil
}

// Count returns the number of entries currently held.
func (s *Store) Count() (int, error) {
	var count int
	if err := s.QueryRow(`SELECT COUNT(*) FROM tool_results`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count results: %w", err)
	}
	return count, nil
}

// Capacity returns the maximum number of entries the ledger retains.
func (s *Store) Capacity() int {
	return s.capacity
}

// Export writes the full current ledger to w as a pretty-printed JSON array,
// newest first. The ledger itself is not modified.
func (s *Store) Export(w io.Writer) error {
	results, err := s.List(0)
	if err != nil {
		return err
	}

	if results == nil {
		results = []*models.ToolResult{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(results); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}

	return nil
}

// ExportFilename returns the download filename for an export taken now.
func (s *Store) ExportFilename() string {
	return fmt.Sprintf("sectoolbox-results-%s.json", time.Now().Format("2006-01-02"))
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanRow decodes one tool_results row. Unparseable stored metadata is
// logged and replaced with an empty map instead of failing the read.
func (s *Store) scanRow(row rowScanner) (*models.ToolResult, error) {
	var entry models.ToolResult
	var metadataJSON, createdAt string

	err := row.Scan(
		&entry.ID,
		&entry.ToolName,
		&entry.Input,
		&entry.Result,
		&metadataJSON,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan result row: %w", err)
	}

	entry.Metadata = map[string]string{}
	if err := json.Unmarshal([]byte(metadataJSON), &entry.Metadata); err != nil {
		s.logger.Warn().Err(err).Str("id", entry.ID).Msg("Discarding unparseable result metadata")
		entry.Metadata = map[string]string{}
	}

	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		s.logger.Warn().Err(err).Str("id", entry.ID).Str("timestamp", createdAt).
			Msg("Failed to parse result timestamp")
	}
	entry.Timestamp = ts
	entry.Date = ts.Format("2006-01-02")
	entry.Time = ts.Format("15:04:05")

	return &entry, nil
}

// truncate shortens s to at most max runes.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
