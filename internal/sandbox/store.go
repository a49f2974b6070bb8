// ABOUTME: SQLite store for the sandbox API: generic JSON records plus request logs.
// ABOUTME: Handles database initialization, migrations, and record CRUD.

package sandbox

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Migration version constants
const (
	MigrationV1 = 1 // records table keyed by resource + id
	MigrationV2 = 2 // request_logs table for the logging middleware
)

// CurrentSchemaVersion is the target version for the database schema
const CurrentSchemaVersion = MigrationV2

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// migrate runs all pending migrations
func (s *Store) migrate() error {
	if err := s.createMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	currentVersion, err := s.getCurrentMigrationVersion()
	if err != nil {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}

	if currentVersion < MigrationV1 {
		if err := s.migrateV1(); err != nil {
			return fmt.Errorf("migration v1 failed: %w", err)
		}
	}
	if currentVersion < MigrationV2 {
		if err := s.migrateV2(); err != nil {
			return fmt.Errorf("migration v2 failed: %w", err)
		}
	}
	return nil
}

func (s *Store) createMigrationsTable() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			description TEXT
		)
	`)
	return err
}

func (s *Store) getCurrentMigrationVersion() (int, error) {
	var version int
	err := s.db.QueryRow(`
		SELECT COALESCE(MAX(version), 0) FROM schema_migrations
	`).Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

func (s *Store) recordMigration(version int, description string) error {
	_, err := s.db.Exec(`
		INSERT INTO schema_migrations (version, description)
		VALUES (?, ?)
	`, version, description)
	return err
}

func (s *Store) migrateV1() error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		resource TEXT NOT NULL,
		id TEXT NOT NULL,
		data TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (resource, id)
	);

	CREATE INDEX IF NOT EXISTS idx_records_resource ON records(resource);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	if err := s.recordMigration(MigrationV1, "Create records table"); err != nil {
		return err
	}
	log.Printf("Applied migration v%d: Create records table", MigrationV1)
	return nil
}

func (s *Store) migrateV2() error {
	schema := `
	CREATE TABLE IF NOT EXISTS request_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		request_id TEXT DEFAULT '',
		method TEXT NOT NULL,
		path TEXT NOT NULL,
		status_code INTEGER,
		duration_ms INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_request_logs_timestamp ON request_logs(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_request_logs_path ON request_logs(path);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	if err := s.recordMigration(MigrationV2, "Create request_logs table"); err != nil {
		return err
	}
	log.Printf("Applied migration v%d: Create request_logs table", MigrationV2)
	return nil
}

// Insert stores a new record, assigning a fresh id unless the data already
// carries one. Returns the stored record including its id.
func (s *Store) Insert(resource string, data map[string]any) (map[string]any, error) {
	record := make(map[string]any, len(data)+1)
	for k, v := range data {
		record[k] = v
	}
	id, ok := record["id"].(string)
	if !ok || id == "" {
		id = uuid.NewString()
		record["id"] = id
	}
	record["createdAt"] = time.Now().UTC().Format(time.RFC3339)

	encoded, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO records (resource, id, data) VALUES (?, ?, ?)
	`, resource, id, string(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to insert record: %w", err)
	}
	return record, nil
}

// Get returns one record by id, or ErrNotFound.
func (s *Store) Get(resource, id string) (map[string]any, error) {
	var data string
	err := s.db.QueryRow(`
		SELECT data FROM records WHERE resource = ? AND id = ?
	`, resource, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query record: %w", err)
	}
	return decodeRecord(data)
}

// List returns records for a resource in insertion order, applying
// field-equality filters against the decoded JSON, then offset and limit.
// A limit of 0 means no limit.
func (s *Store) List(resource string, limit, offset int, filters map[string]string) ([]map[string]any, error) {
	rows, err := s.db.Query(`
		SELECT data FROM records WHERE resource = ? ORDER BY created_at, id
	`, resource)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	matched := []map[string]any{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		record, err := decodeRecord(data)
		if err != nil {
			return nil, err
		}
		if matchesFilters(record, filters) {
			matched = append(matched, record)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if offset >= len(matched) {
		return []map[string]any{}, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

// Update merges a partial body into an existing record.
func (s *Store) Update(resource, id string, partial map[string]any) (map[string]any, error) {
	record, err := s.Get(resource, id)
	if err != nil {
		return nil, err
	}
	for k, v := range partial {
		if k == "id" {
			continue // identity is immutable
		}
		record[k] = v
	}
	record["updatedAt"] = time.Now().UTC().Format(time.RFC3339)

	encoded, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	_, err = s.db.Exec(`
		UPDATE records SET data = ?, updated_at = CURRENT_TIMESTAMP
		WHERE resource = ? AND id = ?
	`, string(encoded), resource, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update record: %w", err)
	}
	return record, nil
}

// Delete removes a record, reporting ErrNotFound for an unknown id.
func (s *Store) Delete(resource, id string) error {
	result, err := s.db.Exec(`
		DELETE FROM records WHERE resource = ? AND id = ?
	`, resource, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of records stored for a resource.
func (s *Store) Count(resource string) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM records WHERE resource = ?
	`, resource).Scan(&count)
	return count, err
}

// Wipe removes every record. Request logs are kept.
func (s *Store) Wipe() error {
	_, err := s.db.Exec(`DELETE FROM records`)
	return err
}

// LogRequest appends one entry to the request log.
func (s *Store) LogRequest(requestID, method, path string, statusCode, durationMs int) error {
	_, err := s.db.Exec(`
		INSERT INTO request_logs (request_id, method, path, status_code, duration_ms)
		VALUES (?, ?, ?, ?, ?)
	`, requestID, method, path, statusCode, durationMs)
	return err
}

func decodeRecord(data string) (map[string]any, error) {
	var record map[string]any
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return record, nil
}

// matchesFilters applies field-equality filters using the string form of
// each value, mirroring how the CLI sends --filter pairs.
func matchesFilters(record map[string]any, filters map[string]string) bool {
	for key, want := range filters {
		value, ok := record[key]
		if !ok {
			return false
		}
		if fmt.Sprintf("%v", value) != want {
			return false
		}
	}
	return true
}
