package lower

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strataml/strata/internal/ir"
	"github.com/strataml/strata/internal/rewrite"
	"github.com/strataml/strata/internal/testutil"
)

func TestLowerEndToEnd(t *testing.T) {
	m := testutil.LoopNestModule(ir.F32, [][3]int64{{0, 10, 1}, {0, 5, 2}})

	result, err := Lower(m)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Applied)

	// The tile dialect is gone; the affine replacement is in place.
	assert.Zero(t, testutil.CountOps(m, ir.TileParallel))
	assert.Zero(t, testutil.CountOps(m, ir.TileReduce))
	assert.Zero(t, testutil.CountOps(m, ir.TileYield))
	assert.Equal(t, 2, testutil.CountOps(m, ir.AffineFor))
	assert.Equal(t, 1, testutil.CountOps(m, ir.AffineLoad))
	assert.Equal(t, 1, testutil.CountOps(m, ir.ArithAddF))
	assert.Equal(t, 1, testutil.CountOps(m, ir.AffineStore))

	// The lowered module still validates.
	assert.Empty(t, ir.ValidateModule(m))
}

func TestLowerIsIdempotent(t *testing.T) {
	m := testutil.LoopNestModule(ir.I32, [][3]int64{{0, 8, 1}})

	_, err := Lower(m)
	require.NoError(t, err)
	before, err := ir.Fingerprint(m)
	require.NoError(t, err)

	result, err := Lower(m)
	require.NoError(t, err)
	assert.Zero(t, result.Applied)

	after, err := ir.Fingerprint(m)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestLowerZeroDim(t *testing.T) {
	m := testutil.EmptyParallelModule()

	result, err := Lower(m)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Applied)
	assert.Zero(t, testutil.CountOps(m, ir.AffineFor))
	assert.Equal(t, 1, testutil.CountOps(m, ir.AffineStore))
	assert.Empty(t, ir.ValidateModule(m))
}

func TestLowerTracesInProgramOrder(t *testing.T) {
	m := testutil.LoopNestModule(ir.F32, [][3]int64{{0, 10, 1}})

	var events []rewrite.Event
	_, err := Lower(m, rewrite.WithTracer(func(ev rewrite.Event) {
		events = append(events, ev)
	}))
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, int64(1), events[0].Seq)
	assert.Equal(t, "lower-tile-parallel", events[0].Pattern)
	assert.Equal(t, ir.TileParallel, events[0].Op)
	assert.Equal(t, int64(2), events[1].Seq)
	assert.Equal(t, "lower-tile-reduce", events[1].Pattern)
	assert.Equal(t, ir.TileReduce, events[1].Op)
}

func TestLowerPatternErrorPropagates(t *testing.T) {
	m := testutil.ReduceModule(ir.AggKind(42), ir.F32)

	_, err := Lower(m)
	require.Error(t, err)
	var perr *rewrite.PassError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, rewrite.ErrCodePatternFailed, perr.Code)
	assert.True(t, rewrite.IsInternal(perr.Unwrap()))
}

func TestLowerPrintedForm(t *testing.T) {
	m := testutil.LoopNestModule(ir.F32, [][3]int64{{0, 10, 1}, {0, 5, 2}})

	_, err := Lower(m)
	require.NoError(t, err)

	want := `module @loopnest {
  func @main(%B: memref<10x5xf32>) {
    %c = arith.constant 1.000000e+00 : f32
    affine.for %i = 0 to 10 step 1 {
      affine.for %j = 0 to 5 step 2 {
        %0 = affine.load %B[%i, %j] : memref<10x5xf32>
        %1 = arith.addf %0, %c : f32
        affine.store %1, %B[%i, %j] : memref<10x5xf32>
      }
    }
  }
}
`
	assert.Equal(t, want, ir.Print(m))
}

func TestTargetClassifiesDialects(t *testing.T) {
	target := Target()
	m := testutil.LoopNestModule(ir.F32, [][3]int64{{0, 4, 1}})

	par := testutil.FindOp(m, ir.TileParallel)
	red := testutil.FindOp(m, ir.TileReduce)
	assert.True(t, target.IsIllegal(par))
	assert.True(t, target.IsIllegal(red))

	require.NoError(t, ParallelLowering{}.Rewrite(par, ir.NewBuilder()))
	loop := testutil.FindOp(m, ir.AffineFor)
	assert.False(t, target.IsIllegal(loop))
}
