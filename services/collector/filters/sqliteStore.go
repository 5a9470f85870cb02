package filters

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/birdlab-tech/building-analytics/services/collector/common"
	_ "github.com/mattn/go-sqlite3"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("filters")

// ErrFilterSetNotFound is returned when querying a filter set name that was never saved
var ErrFilterSetNotFound = errors.New("filter set not found")

// sqliteStore persists named filter sets so dashboard users can save and recall
// their blocker/target configurations across restarts
type sqliteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates the database file and schema if needed. The sets stored here are
// presets served to the dashboard; the stages gating the running pipeline come from the
// TOML configuration only, saving a set does not reconfigure the collector.
func NewSQLiteStore(dbPath string) (*sqliteStore, error) {
	err := prepareDirectories(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create the filter sets DB directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = createSchema(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &sqliteStore{
		db: db,
	}, nil
}

func prepareDirectories(dbPath string) error {
	return os.MkdirAll(filepath.Dir(dbPath), os.ModePerm)
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS filter_sets (
		name       TEXT    NOT NULL PRIMARY KEY,
		payload    TEXT    NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Save upserts a filter set under its name
func (s *sqliteStore) Save(ctx context.Context, set common.FilterSet) error {
	if len(set.Name) == 0 {
		return errors.New("empty filter set name")
	}

	set.UpdatedAt = time.Now().Unix()
	payload, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("failed to marshal filter set: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO filter_sets (name, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			payload=excluded.payload,
			updated_at=excluded.updated_at
	`, set.Name, string(payload), set.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert filter set: %w", err)
	}

	log.Debug("saved filter set", "name", set.Name)

	return nil
}

// Get returns one filter set by name
func (s *sqliteStore) Get(ctx context.Context, name string) (*common.FilterSet, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, "SELECT payload FROM filter_sets WHERE name = ?", name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFilterSetNotFound
	}
	if err != nil {
		return nil, err
	}

	var set common.FilterSet
	err = json.Unmarshal([]byte(payload), &set)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal filter set '%s': %w", name, err)
	}

	return &set, nil
}

// List returns every saved filter set, ordered by name
func (s *sqliteStore) List(ctx context.Context) ([]common.FilterSet, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT payload FROM filter_sets ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	sets := make([]common.FilterSet, 0)
	for rows.Next() {
		var payload string
		err = rows.Scan(&payload)
		if err != nil {
			return nil, err
		}

		var set common.FilterSet
		err = json.Unmarshal([]byte(payload), &set)
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}

	return sets, rows.Err()
}

// Delete removes a filter set by name
func (s *sqliteStore) Delete(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM filter_sets WHERE name = ?", name)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrFilterSetNotFound
	}

	return nil
}

// Close shuts down the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// IsInterfaceNil returns true if the value under the interface is nil
func (s *sqliteStore) IsInterfaceNil() bool {
	return s == nil
}
