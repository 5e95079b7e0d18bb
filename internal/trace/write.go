package trace

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/strataml/strata/internal/rewrite"
)

// NewRunID generates a run identifier. UUIDv7 sorts by creation time,
// so run listings come out in chronological order without a separate
// timestamp column.
func NewRunID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// BeginRun inserts a run record in the "running" state.
func (s *Store) BeginRun(ctx context.Context, runID, moduleName, hashBefore string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, module_name, hash_before)
		VALUES (?, ?, ?)
	`, runID, moduleName, hashBefore)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// RecordRewrite appends one rewrite event to the run. Events carry
// the driver's seq number; (run_id, seq) is the primary key, so a
// duplicate write of the same event is rejected rather than silently
// reordered.
func (s *Store) RecordRewrite(ctx context.Context, runID string, ev rewrite.Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rewrites (run_id, seq, pattern, op, action, detail)
		VALUES (?, ?, ?, ?, ?, ?)
	`, runID, ev.Seq, ev.Pattern, string(ev.Op), ev.Action, ev.Detail)
	if err != nil {
		return fmt.Errorf("record rewrite: %w", err)
	}
	return nil
}

// FinishRun marks the run complete, recording the post-run fingerprint
// and total rewrites applied. Status is "ok" or "failed".
func (s *Store) FinishRun(ctx context.Context, runID, hashAfter, status string, applied int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET hash_after = ?, status = ?, rewrites_applied = ?
		WHERE run_id = ?
	`, hashAfter, status, applied, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run: unknown run %s", runID)
	}
	return nil
}
