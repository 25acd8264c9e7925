package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-ora/internal/ora"
)

// Run is one archived enrichment run.
type Run struct {
	ID             string
	StartedAt      time.Time
	Input          FileFingerprint
	Organism       string
	Sources        []ora.Source
	FDRThreshold   float64
	IncludeIEA     bool
	NGenes         int
	NTerms         int
	ServiceVersion string
	ClientVersion  string
}

// ArchivedTerm is a term hit from a previous run.
type ArchivedTerm struct {
	RunID     string
	StartedAt time.Time
	Organism  string
	Rank      int
	Term      ora.Term
}

// WriteRun stores a run and its retained terms. terms must be in rank
// order; rank 1 is the most significant.
func (s *Store) WriteRun(ctx context.Context, run Run, terms []ora.Term) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, `INSERT INTO runs VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC(), run.Input.Path, run.Input.Size, run.Input.ModTime.UTC(),
		run.Organism, strings.Join(ora.SourceCodes(run.Sources), ","), run.FDRThreshold,
		run.IncludeIEA, int64(run.NGenes), int64(len(terms)), run.ServiceVersion, run.ClientVersion,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if len(terms) == 0 {
		return nil
	}

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "run_terms")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for i, t := range terms {
		if err := appender.AppendRow(
			run.ID, int64(i+1), string(t.Source), t.ID, t.Name,
			t.PValue, t.AdjustedPValue,
			int64(t.IntersectionSize), int64(t.TermSize),
			strings.Join(t.Genes, ","),
		); err != nil {
			return fmt.Errorf("append term: %w", err)
		}
	}

	return appender.Flush()
}

// ListRuns returns the most recent runs first. limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT
		run_id, started_at, input_path, input_size, input_mtime,
		organism, sources, fdr_threshold, include_iea,
		n_genes, n_terms, service_version, client_version
		FROM runs
		ORDER BY started_at DESC, run_id`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var sources string
		if err := rows.Scan(
			&r.ID, &r.StartedAt, &r.Input.Path, &r.Input.Size, &r.Input.ModTime,
			&r.Organism, &sources, &r.FDRThreshold, &r.IncludeIEA,
			&r.NGenes, &r.NTerms, &r.ServiceVersion, &r.ClientVersion,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Sources = splitSources(sources)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// RunTerms returns the archived terms of one run in rank order.
func (s *Store) RunTerms(ctx context.Context, runID string) ([]ArchivedTerm, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		r.run_id, r.started_at, r.organism, t.rank,
		t.source, t.term_id, t.term_name, t.p_value, t.adjusted_p_value,
		t.intersection_size, t.term_size, t.genes
		FROM run_terms t JOIN runs r ON r.run_id = t.run_id
		WHERE t.run_id = ?
		ORDER BY t.rank`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run terms: %w", err)
	}
	defer rows.Close()

	return scanArchivedTerms(rows)
}

// SearchTerm returns every archived hit of a term ID, newest run first.
func (s *Store) SearchTerm(ctx context.Context, termID string) ([]ArchivedTerm, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		r.run_id, r.started_at, r.organism, t.rank,
		t.source, t.term_id, t.term_name, t.p_value, t.adjusted_p_value,
		t.intersection_size, t.term_size, t.genes
		FROM run_terms t JOIN runs r ON r.run_id = t.run_id
		WHERE t.term_id = ?
		ORDER BY r.started_at DESC, r.run_id`, termID)
	if err != nil {
		return nil, fmt.Errorf("query term: %w", err)
	}
	defer rows.Close()

	return scanArchivedTerms(rows)
}

// scanArchivedTerms scans joined run/term rows.
func scanArchivedTerms(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]ArchivedTerm, error) {
	var results []ArchivedTerm
	for rows.Next() {
		var a ArchivedTerm
		var source, genes string
		if err := rows.Scan(
			&a.RunID, &a.StartedAt, &a.Organism, &a.Rank,
			&source, &a.Term.ID, &a.Term.Name, &a.Term.PValue, &a.Term.AdjustedPValue,
			&a.Term.IntersectionSize, &a.Term.TermSize, &genes,
		); err != nil {
			return nil, fmt.Errorf("scan archived term: %w", err)
		}
		a.Term.Source = ora.Source(source)
		if genes != "" {
			a.Term.Genes = strings.Split(genes, ",")
		}
		results = append(results, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate archived terms: %w", err)
	}
	return results, nil
}

func splitSources(s string) []ora.Source {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]ora.Source, len(parts))
	for i, p := range parts {
		out[i] = ora.Source(p)
	}
	return out
}
