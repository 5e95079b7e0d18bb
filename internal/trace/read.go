package trace

import (
	"context"
	"fmt"
)

// Run is one recorded pipeline invocation.
type Run struct {
	ID              string `json:"run_id"`
	ModuleName      string `json:"module_name"`
	HashBefore      string `json:"hash_before"`
	HashAfter       string `json:"hash_after,omitempty"`
	Status          string `json:"status"`
	RewritesApplied int    `json:"rewrites_applied"`
}

// Changed reports whether the run mutated the module.
func (r Run) Changed() bool {
	return r.HashAfter != "" && r.HashAfter != r.HashBefore
}

// Rewrite is one recorded rewrite event.
type Rewrite struct {
	RunID   string `json:"run_id"`
	Seq     int64  `json:"seq"`
	Pattern string `json:"pattern"`
	Op      string `json:"op"`
	Action  string `json:"action"`
	Detail  string `json:"detail,omitempty"`
}

// ListRuns returns all runs. UUIDv7 run IDs sort chronologically, so
// ordering by run_id is creation order; the COLLATE BINARY keeps text
// ordering deterministic across SQLite versions.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, module_name, hash_before, COALESCE(hash_after, ''), status, rewrites_applied
		FROM runs
		ORDER BY run_id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.ModuleName, &r.HashBefore, &r.HashAfter, &r.Status, &r.RewritesApplied); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun returns one run by ID.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	var r Run
	err := s.db.QueryRowContext(ctx, `
		SELECT run_id, module_name, hash_before, COALESCE(hash_after, ''), status, rewrites_applied
		FROM runs
		WHERE run_id = ?
	`, runID).Scan(&r.ID, &r.ModuleName, &r.HashBefore, &r.HashAfter, &r.Status, &r.RewritesApplied)
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", runID, err)
	}
	return &r, nil
}

// RewritesForRun returns the run's rewrite events in application
// order (ORDER BY seq).
func (s *Store) RewritesForRun(ctx context.Context, runID string) ([]Rewrite, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, pattern, op, action, detail
		FROM rewrites
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query rewrites: %w", err)
	}
	defer rows.Close()

	rewrites := []Rewrite{}
	for rows.Next() {
		var rw Rewrite
		if err := rows.Scan(&rw.RunID, &rw.Seq, &rw.Pattern, &rw.Op, &rw.Action, &rw.Detail); err != nil {
			return nil, fmt.Errorf("scan rewrite: %w", err)
		}
		rewrites = append(rewrites, rw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rewrites: %w", err)
	}
	return rewrites, nil
}
