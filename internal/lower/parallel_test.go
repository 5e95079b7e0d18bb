package lower

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strataml/strata/internal/ir"
	"github.com/strataml/strata/internal/testutil"
)

func TestParallelLoweringNestsLoops(t *testing.T) {
	m := testutil.LoopNestModule(ir.F32, [][3]int64{{0, 10, 1}, {0, 5, 2}, {2, 8, 3}})
	par := ir.AsParallel(testutil.FindOp(m, ir.TileParallel))
	lowerBefore := par.LowerMap()
	upperBefore := par.UpperMap()
	stepsBefore := append([]int64(nil), par.Steps()...)

	require.NoError(t, ParallelLowering{}.Rewrite(par.Operation, ir.NewBuilder()))

	// One affine.for per dimension, nested outermost-first.
	require.Equal(t, 3, testutil.CountOps(m, ir.AffineFor))
	assert.Zero(t, testutil.CountOps(m, ir.TileParallel))

	loop := ir.AsFor(testutil.FindOp(m, ir.AffineFor))
	for i := 0; i < 3; i++ {
		assert.True(t, loop.LowerMap().Equal(lowerBefore.SubMap(i)), "dim %d lower", i)
		assert.True(t, loop.UpperMap().Equal(upperBefore.SubMap(i)), "dim %d upper", i)
		assert.Equal(t, stepsBefore[i], loop.Step(), "dim %d step", i)
		if i < 2 {
			// Descend: the next dimension's loop is the first op of
			// this body.
			inner := loop.Body().Front()
			require.NotNil(t, inner)
			require.Equal(t, ir.AffineFor, inner.Name())
			loop = ir.AsFor(inner)
		}
	}
}

func TestParallelLoweringMovesBodyIntoInnermost(t *testing.T) {
	m := testutil.LoopNestModule(ir.F32, [][3]int64{{0, 10, 1}, {0, 5, 2}})
	par := ir.AsParallel(testutil.FindOp(m, ir.TileParallel))
	red := testutil.FindOp(m, ir.TileReduce)
	body := par.Body()
	args := append([]*ir.Value(nil), body.Args()...)

	require.NoError(t, ParallelLowering{}.Rewrite(par.Operation, ir.NewBuilder()))

	outer := ir.AsFor(testutil.FindOp(m, ir.AffineFor))
	inner := ir.AsFor(outer.Body().Front())

	// Same operation object, now owned by the innermost body, ahead
	// of the yield.
	assert.Same(t, inner.Body(), red.Block())
	assert.Same(t, red, inner.Body().Front())
	assert.Same(t, inner.Body().Terminator(), red.Next())

	// The original block arguments are fully replaced.
	for i, arg := range args {
		assert.Zero(t, arg.NumUses(), "dim %d arg still used", i)
	}

	// The reduce now indexes with the induction variables, dim 0 from
	// the outer loop.
	idxs := ir.AsReduce(red).Indices()
	require.Len(t, idxs, 2)
	assert.Same(t, outer.InductionVar(), idxs[0])
	assert.Same(t, inner.InductionVar(), idxs[1])
}

func TestParallelLoweringZeroDimInlines(t *testing.T) {
	m := testutil.EmptyParallelModule()
	par := testutil.FindOp(m, ir.TileParallel)
	st := testutil.FindOp(m, ir.AffineStore)
	entry := m.Funcs[0].Entry()

	require.NoError(t, ParallelLowering{}.Rewrite(par, ir.NewBuilder()))

	// No loops; the body lands where the parallel stood, after the
	// preceding constant.
	assert.Zero(t, testutil.CountOps(m, ir.AffineFor))
	assert.Zero(t, testutil.CountOps(m, ir.TileParallel))
	assert.Same(t, entry, st.Block())
	require.NotNil(t, st.Prev())
	assert.Equal(t, ir.ArithConstant, st.Prev().Name())
	assert.Nil(t, st.Next())
}

func TestParallelLoweringPreservesBodyOrder(t *testing.T) {
	m := ir.NewModule("order")
	fn := m.AddFunc("main", []ir.FuncParam{
		{Name: "B", Type: ir.MemRefType{Elem: ir.F32, Shape: []int64{8}}},
	})
	b := ir.NewBuilder()
	b.SetInsertionPointToEnd(fn.Entry())

	par := b.CreateParallel(ir.ConstantMap(0), ir.ConstantMap(8), []int64{1}, nil)
	body := par.Body()
	b.SetInsertionPoint(body, body.Terminator())
	c1 := b.CreateConstant(ir.F32, &ir.ConstAttrs{FloatVal: 1})
	c2 := b.CreateConstant(ir.F32, &ir.ConstAttrs{FloatVal: 2})
	sum := b.CreateBinary(ir.ArithAddF, c1.Result(0), c2.Result(0))
	st := b.CreateStore(sum.Result(0), fn.Param("B"), ir.IdentityMap(1), []*ir.Value{body.Arg(0)})

	require.NoError(t, ParallelLowering{}.Rewrite(par.Operation, ir.NewBuilder()))

	loop := ir.AsFor(testutil.FindOp(m, ir.AffineFor))
	want := []*ir.Operation{c1, c2, sum, st.Operation}
	got := loop.Body().Front()
	for _, w := range want {
		require.NotNil(t, got)
		assert.Same(t, w, got)
		got = got.Next()
	}
	assert.Equal(t, ir.AffineYield, got.Name())
}

func TestParallelLoweringKeepsBoundOperands(t *testing.T) {
	// A symbolic upper bound: tile.parallel (%i) = (0) to (s0) step (1)
	// with the bound operand forwarded to the affine.for.
	m := ir.NewModule("symbolic")
	fn := m.AddFunc("main", []ir.FuncParam{
		{Name: "B", Type: ir.MemRefType{Elem: ir.F32, Shape: []int64{8}}},
		{Name: "n", Type: ir.Index},
	})
	b := ir.NewBuilder()
	b.SetInsertionPointToEnd(fn.Entry())

	lower := ir.AffineMap{NumSymbols: 1, Results: []ir.AffineExpr{ir.ConstExpr{Value: 0}}}
	upper := ir.AffineMap{NumSymbols: 1, Results: []ir.AffineExpr{ir.SymbolExpr{Index: 0}}}
	par := b.CreateParallel(lower, upper, []int64{1}, []*ir.Value{fn.Param("n")})
	body := par.Body()
	b.SetInsertionPoint(body, body.Terminator())
	c := b.CreateConstant(ir.F32, &ir.ConstAttrs{FloatVal: 1})
	b.CreateStore(c.Result(0), fn.Param("B"), ir.IdentityMap(1), []*ir.Value{body.Arg(0)})

	require.NoError(t, ParallelLowering{}.Rewrite(par.Operation, ir.NewBuilder()))

	loop := ir.AsFor(testutil.FindOp(m, ir.AffineFor))
	require.Equal(t, 1, loop.NumOperands())
	assert.Same(t, fn.Param("n"), loop.Operand(0))
	assert.True(t, loop.UpperMap().Equal(upper))
}
