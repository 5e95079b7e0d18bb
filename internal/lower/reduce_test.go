package lower

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strataml/strata/internal/ir"
	"github.com/strataml/strata/internal/rewrite"
	"github.com/strataml/strata/internal/testutil"
)

// lowerOneReduce applies ReduceLowering to the module's single
// tile.reduce and returns the resulting load and store.
func lowerOneReduce(t *testing.T, m *ir.Module) (ir.LoadOp, ir.StoreOp) {
	t.Helper()
	red := testutil.FindOp(m, ir.TileReduce)
	require.NotNil(t, red)
	require.NoError(t, ReduceLowering{}.Rewrite(red, ir.NewBuilder()))
	require.True(t, red.Erased())
	require.Zero(t, testutil.CountOps(m, ir.TileReduce))

	ld := testutil.FindOp(m, ir.AffineLoad)
	st := testutil.FindOp(m, ir.AffineStore)
	require.NotNil(t, ld)
	require.NotNil(t, st)
	return ir.AsLoad(ld), ir.AsStore(st)
}

func TestReduceLoweringComputeOps(t *testing.T) {
	tests := []struct {
		name string
		agg  ir.AggKind
		elem ir.ScalarType
		want []ir.OpName
	}{
		{name: "add float", agg: ir.AggAdd, elem: ir.F32, want: []ir.OpName{ir.ArithAddF}},
		{name: "add int", agg: ir.AggAdd, elem: ir.I32, want: []ir.OpName{ir.ArithAddI}},
		{name: "mul float", agg: ir.AggMul, elem: ir.F64, want: []ir.OpName{ir.ArithMulF}},
		{name: "mul int", agg: ir.AggMul, elem: ir.I64, want: []ir.OpName{ir.ArithMulI}},
		{name: "max float", agg: ir.AggMax, elem: ir.F32, want: []ir.OpName{ir.ArithCmpF, ir.ArithSelect}},
		{name: "max int", agg: ir.AggMax, elem: ir.I32, want: []ir.OpName{ir.ArithCmpI, ir.ArithSelect}},
		{name: "min float", agg: ir.AggMin, elem: ir.F32, want: []ir.OpName{ir.ArithCmpF, ir.ArithSelect}},
		{name: "min int", agg: ir.AggMin, elem: ir.I32, want: []ir.OpName{ir.ArithCmpI, ir.ArithSelect}},
		{name: "assign", agg: ir.AggAssign, elem: ir.F32, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testutil.ReduceModule(tt.agg, tt.elem)
			ld, st := lowerOneReduce(t, m)

			// Load, compute, store in program order between the
			// surrounding ops.
			got := ld.Next()
			for _, w := range tt.want {
				require.NotNil(t, got)
				assert.Equal(t, w, got.Name())
				got = got.Next()
			}
			assert.Same(t, st.Operation, got)
		})
	}
}

func TestReduceLoweringSameAddress(t *testing.T) {
	// A reduce with a real index operand, inside an affine.for.
	m := ir.NewModule("addr")
	fn := m.AddFunc("main", []ir.FuncParam{
		{Name: "B", Type: ir.MemRefType{Elem: ir.F32, Shape: []int64{8}}},
	})
	b := ir.NewBuilder()
	b.SetInsertionPointToEnd(fn.Entry())
	c := b.CreateConstant(ir.F32, &ir.ConstAttrs{FloatVal: 1}).Result(0)
	loop := b.CreateFor(ir.ConstantMap(0), ir.ConstantMap(8), 1, nil)
	b.SetInsertionPoint(loop.Body(), loop.Body().Terminator())
	b.CreateReduce(ir.AggAdd, c, fn.Param("B"), ir.IdentityMap(1), []*ir.Value{loop.InductionVar()})

	red := ir.AsReduce(testutil.FindOp(m, ir.TileReduce))
	buffer := red.Buffer()
	indexMap := red.Map()
	idxs := append([]*ir.Value(nil), red.Indices()...)

	ld, st := lowerOneReduce(t, m)

	// Load and store hit the reduce's exact address descriptor.
	assert.Same(t, buffer, ld.Buffer())
	assert.Same(t, buffer, st.Buffer())
	assert.True(t, indexMap.Equal(ld.Map()))
	assert.True(t, indexMap.Equal(st.Map()))
	assert.Equal(t, idxs, ld.Indices())
	assert.Equal(t, idxs, st.Indices())
}

func TestReduceLoweringAddOperandOrder(t *testing.T) {
	m := testutil.ReduceModule(ir.AggAdd, ir.F32)
	red := ir.AsReduce(testutil.FindOp(m, ir.TileReduce))
	val := red.Val()

	ld, st := lowerOneReduce(t, m)

	add := ld.Next()
	require.Equal(t, ir.ArithAddF, add.Name())
	assert.Same(t, ld.Loaded(), add.Operand(0))
	assert.Same(t, val, add.Operand(1))
	assert.Same(t, add.Result(0), st.Stored())
}

func TestReduceLoweringMaxSelectsValOverLoaded(t *testing.T) {
	m := testutil.ReduceModule(ir.AggMax, ir.I32)
	red := ir.AsReduce(testutil.FindOp(m, ir.TileReduce))
	val := red.Val()

	ld, st := lowerOneReduce(t, m)

	cmp := ld.Next()
	require.Equal(t, ir.ArithCmpI, cmp.Name())
	assert.Equal(t, ir.CmpISGT, cmp.Attrs().(*ir.CmpIAttrs).Pred)
	assert.Same(t, val, cmp.Operand(0))
	assert.Same(t, ld.Loaded(), cmp.Operand(1))

	sel := cmp.Next()
	require.Equal(t, ir.ArithSelect, sel.Name())
	assert.Same(t, cmp.Result(0), sel.Operand(0))
	assert.Same(t, val, sel.Operand(1))
	assert.Same(t, ld.Loaded(), sel.Operand(2))
	assert.Same(t, sel.Result(0), st.Stored())
}

func TestReduceLoweringMinPredicates(t *testing.T) {
	m := testutil.ReduceModule(ir.AggMin, ir.F64)
	ld, _ := lowerOneReduce(t, m)
	cmp := ld.Next()
	require.Equal(t, ir.ArithCmpF, cmp.Name())
	assert.Equal(t, ir.CmpFOLT, cmp.Attrs().(*ir.CmpFAttrs).Pred)

	m = testutil.ReduceModule(ir.AggMin, ir.I64)
	ld, _ = lowerOneReduce(t, m)
	cmp = ld.Next()
	require.Equal(t, ir.ArithCmpI, cmp.Name())
	assert.Equal(t, ir.CmpISLT, cmp.Attrs().(*ir.CmpIAttrs).Pred)
}

func TestReduceLoweringAssignKeepsLoad(t *testing.T) {
	m := testutil.ReduceModule(ir.AggAssign, ir.F32)
	red := ir.AsReduce(testutil.FindOp(m, ir.TileReduce))
	val := red.Val()

	ld, st := lowerOneReduce(t, m)

	// The load is still emitted, its value simply goes unused.
	assert.Same(t, st.Operation, ld.Next())
	assert.Zero(t, ld.Loaded().NumUses())
	assert.Same(t, val, st.Stored())
}

func TestReduceLoweringUnknownKindIsInternal(t *testing.T) {
	m := testutil.ReduceModule(ir.AggKind(42), ir.F32)
	red := testutil.FindOp(m, ir.TileReduce)

	err := ReduceLowering{}.Rewrite(red, ir.NewBuilder())
	require.Error(t, err)
	assert.True(t, rewrite.IsInternal(err))
	assert.Contains(t, err.Error(), "unsupported aggregation kind 42")
}
