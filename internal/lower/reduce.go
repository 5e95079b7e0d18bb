package lower

import (
	"github.com/strataml/strata/internal/ir"
	"github.com/strataml/strata/internal/rewrite"
)

// ReduceLowering rewrites one tile.reduce into an explicit
// load/compute/store sequence at the same (buffer, index map, index
// operands) address descriptor. The compute depends on the aggregation
// kind and the loaded element kind:
//
//	assign  the stored value is the input (the load still happens)
//	add     arith.addf / arith.addi
//	mul     arith.mulf / arith.muli
//	max     cmpf ogt / cmpi sgt, then select
//	min     cmpf olt / cmpi slt, then select
//
// Integer comparisons are signed only; unsigned max/min is not
// defined for this IR and cannot reach here (ScalarKind has no
// unsigned variant).
type ReduceLowering struct{}

// Name implements rewrite.Pattern.
func (ReduceLowering) Name() string { return "lower-tile-reduce" }

// Match implements rewrite.Pattern.
func (ReduceLowering) Match(op *ir.Operation) bool {
	return op.Name() == ir.TileReduce
}

// Rewrite implements rewrite.Pattern.
func (ReduceLowering) Rewrite(op *ir.Operation, b *ir.Builder) error {
	red := ir.AsReduce(op)

	b.SetInsertionPoint(op.Block(), op)
	loaded := b.CreateLoad(red.Buffer(), red.Map(), red.Indices()).Loaded()
	result, err := reduceValue(b, red, loaded)
	if err != nil {
		return err
	}
	b.CreateStore(result, red.Buffer(), red.Map(), red.Indices())
	b.Erase(op)
	return nil
}

// reduceValue emits the aggregation compute and returns the value to
// store. The element kind comes from the loaded value's type.
func reduceValue(b *ir.Builder, red ir.ReduceOp, loaded *ir.Value) (*ir.Value, error) {
	val := red.Val()
	isFloat := loaded.Type().(ir.ScalarType).IsFloat()

	switch red.Agg() {
	case ir.AggAssign:
		return val, nil

	case ir.AggAdd:
		if isFloat {
			return b.CreateBinary(ir.ArithAddF, loaded, val).Result(0), nil
		}
		return b.CreateBinary(ir.ArithAddI, loaded, val).Result(0), nil

	case ir.AggMul:
		if isFloat {
			return b.CreateBinary(ir.ArithMulF, loaded, val).Result(0), nil
		}
		return b.CreateBinary(ir.ArithMulI, loaded, val).Result(0), nil

	case ir.AggMax:
		var cmp *ir.Operation
		if isFloat {
			cmp = b.CreateCmpF(ir.CmpFOGT, val, loaded)
		} else {
			cmp = b.CreateCmpI(ir.CmpISGT, val, loaded)
		}
		return b.CreateSelect(cmp.Result(0), val, loaded).Result(0), nil

	case ir.AggMin:
		var cmp *ir.Operation
		if isFloat {
			cmp = b.CreateCmpF(ir.CmpFOLT, val, loaded)
		} else {
			cmp = b.CreateCmpI(ir.CmpISLT, val, loaded)
		}
		return b.CreateSelect(cmp.Result(0), val, loaded).Result(0), nil

	default:
		// The switch above is exhaustive over AggKind; reaching this
		// means an upstream stage constructed an unknown kind.
		return nil, rewrite.NewInternalError(ir.TileReduce,
			"unsupported aggregation kind %d", red.Agg())
	}
}
