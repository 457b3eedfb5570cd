// Package transcript records the spoken-phrase logs of reading sessions
// ("golden transcripts") in a SQLite database so later runs can be verified
// against them.
package transcript

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"vsr/internal/logging"
)

// ErrNotFound is returned when no run matches a lookup.
var ErrNotFound = errors.New("transcript not found")

// Run is one recorded reading of a document.
type Run struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Source    string    `json:"source"`
	Phrases   []string  `json:"phrases"`
	ItemTexts []string  `json:"item_texts"`
	CreatedAt time.Time `json:"created_at"`
}

// Store manages the transcript database.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// NewStore creates or opens a transcript store at dbPath.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps :memory: databases coherent.
	db.SetMaxOpenConns(1)

	store := &Store{db: db, dbPath: dbPath}
	if err := store.initSchema(); err != nil {
		db.Close()
		logging.StoreError("schema init failed for %s: %v", dbPath, err)
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	logging.Store("opened transcript store at %s", dbPath)
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) initSchema() error {
	schema := `
	PRAGMA busy_timeout = 5000;

	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		source TEXT NOT NULL,
		phrases_json TEXT NOT NULL,
		item_texts_json TEXT,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_name ON runs(name);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save stores run, assigning an ID and timestamp when unset.
func (s *Store) Save(ctx context.Context, run *Run) error {
	if strings.TrimSpace(run.Name) == "" {
		return fmt.Errorf("failed to save run: empty name")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	phrasesJSON, err := json.Marshal(nonNil(run.Phrases))
	if err != nil {
		return fmt.Errorf("failed to encode phrases: %w", err)
	}
	itemsJSON, err := json.Marshal(nonNil(run.ItemTexts))
	if err != nil {
		return fmt.Errorf("failed to encode item texts: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, name, source, phrases_json, item_texts_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			source = excluded.source,
			phrases_json = excluded.phrases_json,
			item_texts_json = excluded.item_texts_json
	`, run.ID, run.Name, run.Source, string(phrasesJSON), string(itemsJSON), run.CreatedAt.UnixNano())
	if err != nil {
		logging.StoreError("save run %s failed: %v", run.Name, err)
		return fmt.Errorf("failed to save run: %w", err)
	}
	logging.StoreDebug("saved run %s (%s, %d phrases)", run.ID, run.Name, len(run.Phrases))
	return nil
}

// Get returns the run with id.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, source, phrases_json, item_texts_json, created_at
		FROM runs WHERE id = ?
	`, id)
	return scanRun(row)
}

// Latest returns the most recent run recorded under name.
func (s *Store) Latest(ctx context.Context, name string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, source, phrases_json, item_texts_json, created_at
		FROM runs WHERE name = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1
	`, name)
	return scanRun(row)
}

// List returns runs newest first. An empty name lists every run; a limit of
// zero or less means no limit.
func (s *Store) List(ctx context.Context, name string, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, source, phrases_json, item_texts_json, created_at
		FROM runs
		WHERE ? = '' OR name = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, name, name, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Delete removes the run with id.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		logging.StoreError("delete run %s failed: %v", id, err)
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		run         Run
		phrasesJSON string
		itemsJSON   sql.NullString
		created     int64
	)
	err := row.Scan(&run.ID, &run.Name, &run.Source, &phrasesJSON, &itemsJSON, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read run: %w", err)
	}
	if err := json.Unmarshal([]byte(phrasesJSON), &run.Phrases); err != nil {
		return nil, fmt.Errorf("failed to decode phrases: %w", err)
	}
	if itemsJSON.Valid && itemsJSON.String != "" {
		if err := json.Unmarshal([]byte(itemsJSON.String), &run.ItemTexts); err != nil {
			return nil, fmt.Errorf("failed to decode item texts: %w", err)
		}
	}
	run.CreatedAt = time.Unix(0, created).UTC()
	return &run, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
