package trace

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strataml/strata/internal/ir"
	"github.com/strataml/strata/internal/rewrite"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "trace.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreRunRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	runID := NewRunID()
	require.NoError(t, s.BeginRun(ctx, runID, "gemm", "hash-before"))

	got, err := s.GetRun(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, "gemm", got.ModuleName)
	assert.Equal(t, "hash-before", got.HashBefore)
	assert.Equal(t, "running", got.Status)
	assert.False(t, got.Changed())

	require.NoError(t, s.FinishRun(ctx, runID, "hash-after", "ok", 2))

	got, err = s.GetRun(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, "hash-after", got.HashAfter)
	assert.Equal(t, "ok", got.Status)
	assert.Equal(t, 2, got.RewritesApplied)
	assert.True(t, got.Changed())
}

func TestStoreFinishUnknownRun(t *testing.T) {
	s := openTestStore(t)

	err := s.FinishRun(context.Background(), "no-such-run", "h", "ok", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown run")
}

func TestStoreRewriteEvents(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	runID := NewRunID()
	require.NoError(t, s.BeginRun(ctx, runID, "gemm", "h"))

	events := []rewrite.Event{
		{Seq: 1, Pattern: "lower-tile-parallel", Op: ir.TileParallel, Action: "replaced"},
		{Seq: 2, Pattern: "lower-tile-reduce", Op: ir.TileReduce, Action: "replaced", Detail: "add"},
	}
	for _, ev := range events {
		require.NoError(t, s.RecordRewrite(ctx, runID, ev))
	}

	got, err := s.RewritesForRun(ctx, runID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].Seq)
	assert.Equal(t, "lower-tile-parallel", got[0].Pattern)
	assert.Equal(t, string(ir.TileParallel), got[0].Op)
	assert.Equal(t, "add", got[1].Detail)
}

func TestStoreDuplicateSeqRejected(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	runID := NewRunID()
	require.NoError(t, s.BeginRun(ctx, runID, "gemm", "h"))

	ev := rewrite.Event{Seq: 1, Pattern: "p", Op: ir.TileReduce, Action: "replaced"}
	require.NoError(t, s.RecordRewrite(ctx, runID, ev))
	assert.Error(t, s.RecordRewrite(ctx, runID, ev))
}

func TestStoreRewriteNeedsRun(t *testing.T) {
	s := openTestStore(t)

	// The foreign key rejects events for runs that were never begun.
	err := s.RecordRewrite(context.Background(), "orphan",
		rewrite.Event{Seq: 1, Pattern: "p", Op: ir.TileReduce, Action: "replaced"})
	assert.Error(t, err)
}

func TestStoreListRunsInCreationOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		id := NewRunID()
		ids = append(ids, id)
		require.NoError(t, s.BeginRun(ctx, id, "m", "h"))
	}

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	for i, r := range runs {
		assert.Equal(t, ids[i], r.ID)
	}
}

func TestStoreListRunsEmpty(t *testing.T) {
	s := openTestStore(t)

	runs, err := s.ListRuns(context.Background())
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStoreOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.db")
	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.BeginRun(context.Background(), NewRunID(), "m", "h"))
	require.NoError(t, s1.Close())

	// Reopening applies the schema again without clobbering data.
	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()
	runs, err := s2.ListRuns(context.Background())
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestNewRunIDsSortChronologically(t *testing.T) {
	a := NewRunID()
	b := NewRunID()
	assert.NotEqual(t, a, b)
	assert.LessOrEqual(t, a, b)
}
