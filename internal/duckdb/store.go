// Package duckdb archives enrichment runs in a DuckDB database so that
// results from earlier runs can be listed and searched.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection for the run archive.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create archive directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database path, empty for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		run_id VARCHAR PRIMARY KEY,
		started_at TIMESTAMP,
		input_path VARCHAR,
		input_size BIGINT,
		input_mtime TIMESTAMP,
		organism VARCHAR,
		sources VARCHAR,
		fdr_threshold DOUBLE,
		include_iea BOOLEAN,
		n_genes BIGINT,
		n_terms BIGINT,
		service_version VARCHAR,
		client_version VARCHAR
	)`); err != nil {
		return err
	}

	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS run_terms (
		run_id VARCHAR,
		rank BIGINT,
		source VARCHAR,
		term_id VARCHAR,
		term_name VARCHAR,
		p_value DOUBLE,
		adjusted_p_value DOUBLE,
		intersection_size BIGINT,
		term_size BIGINT,
		genes VARCHAR,
		PRIMARY KEY (run_id, rank)
	)`)
	return err
}
