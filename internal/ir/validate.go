package ir

import (
	"fmt"
)

// ValidationError describes one structural violation found in a module.
type ValidationError struct {
	Func    string
	Op      OpName
	Message string
}

func (e *ValidationError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("func %s: %s: %s", e.Func, e.Op, e.Message)
	}
	return fmt.Sprintf("func %s: %s", e.Func, e.Message)
}

// ValidateModule checks the structural invariants the lowering passes
// rely on and do not re-check themselves: dimension-count agreement on
// tile.parallel, operand arity and index-map agreement on memory ops,
// terminator placement. Returns all violations found.
func ValidateModule(m *Module) []error {
	var errs []error
	for _, fn := range m.Funcs {
		v := &validator{fn: fn.Name}
		for _, blk := range fn.Body().blocks {
			v.block(blk)
		}
		errs = append(errs, v.errs...)
	}
	return errs
}

type validator struct {
	fn   string
	errs []error
}

func (v *validator) errorf(op OpName, format string, args ...any) {
	v.errs = append(v.errs, &ValidationError{Func: v.fn, Op: op, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) block(b *Block) {
	for op := b.Front(); op != nil; op = op.Next() {
		v.op(op)
		if op.Name().IsTerminator() && op.Next() != nil {
			v.errorf(op.Name(), "terminator is not the last operation in its block")
		}
		for i := 0; i < op.NumRegions(); i++ {
			for _, nested := range op.Region(i).blocks {
				v.block(nested)
			}
		}
	}
}

func (v *validator) op(op *Operation) {
	switch op.Name() {
	case TileParallel:
		v.parallel(AsParallel(op))
	case AffineFor:
		v.forOp(AsFor(op))
	case TileReduce:
		v.reduce(AsReduce(op))
	case AffineLoad:
		ld := AsLoad(op)
		v.accessTriple(op.Name(), ld.Buffer(), ld.Map(), ld.Indices())
	case AffineStore:
		st := AsStore(op)
		v.accessTriple(op.Name(), st.Buffer(), st.Map(), st.Indices())
	}
}

// parallel enforces the dimensionality invariant:
// D == |lower results| == |upper results| == |steps| == |block args|.
func (v *validator) parallel(par ParallelOp) {
	d := len(par.Steps())
	if par.LowerMap().NumResults() != d {
		v.errorf(TileParallel, "lower bound map has %d results, want %d", par.LowerMap().NumResults(), d)
	}
	if par.UpperMap().NumResults() != d {
		v.errorf(TileParallel, "upper bound map has %d results, want %d", par.UpperMap().NumResults(), d)
	}
	if par.NumRegions() != 1 || par.Region(0).NumBlocks() != 1 {
		v.errorf(TileParallel, "must own exactly one region with one block")
		return
	}
	body := par.Body()
	if body.NumArgs() != d {
		v.errorf(TileParallel, "body has %d block arguments, want %d", body.NumArgs(), d)
	}
	if body.Terminator() == nil || body.Terminator().Name() != TileYield {
		v.errorf(TileParallel, "body must be terminated by %s", TileYield)
	}
	v.boundOperands(TileParallel, par.LowerMap(), par.NumOperands())
	v.boundOperands(TileParallel, par.UpperMap(), par.NumOperands())
}

func (v *validator) forOp(loop ForOp) {
	if loop.LowerMap().NumResults() != 1 || loop.UpperMap().NumResults() != 1 {
		v.errorf(AffineFor, "bound maps must have exactly one result")
	}
	if loop.NumRegions() != 1 || loop.Region(0).NumBlocks() != 1 {
		v.errorf(AffineFor, "must own exactly one region with one block")
		return
	}
	body := loop.Body()
	if body.NumArgs() != 1 {
		v.errorf(AffineFor, "body has %d block arguments, want 1", body.NumArgs())
	}
	if body.Terminator() == nil || body.Terminator().Name() != AffineYield {
		v.errorf(AffineFor, "body must be terminated by %s", AffineYield)
	}
	v.boundOperands(AffineFor, loop.LowerMap(), loop.NumOperands())
	v.boundOperands(AffineFor, loop.UpperMap(), loop.NumOperands())
}

// boundOperands checks a bound map's operand signature against the
// loop's shared operand list.
func (v *validator) boundOperands(name OpName, m AffineMap, numOperands int) {
	if m.NumDims+m.NumSymbols != numOperands {
		v.errorf(name, "bound map wants %d operands, op has %d", m.NumDims+m.NumSymbols, numOperands)
	}
}

func (v *validator) reduce(red ReduceOp) {
	if red.NumOperands() < 2 {
		v.errorf(TileReduce, "needs a value and a buffer operand")
		return
	}
	if red.Agg() > AggMin {
		v.errorf(TileReduce, "unknown aggregation kind %d", red.Agg())
	}
	v.accessTriple(TileReduce, red.Buffer(), red.Map(), red.Indices())
	buf, ok := red.Buffer().Type().(MemRefType)
	if !ok {
		return
	}
	val, ok := red.Val().Type().(ScalarType)
	if !ok || val != buf.Elem {
		v.errorf(TileReduce, "value type %s does not match element type %s", red.Val().Type(), buf.Elem)
	}
}

// accessTriple checks a (buffer, index map, index operands) address
// descriptor: buffer must be a memref, map results must cover the
// buffer rank, and the map's operand signature must match the index
// operand count.
func (v *validator) accessTriple(name OpName, buffer *Value, m AffineMap, idxs []*Value) {
	buf, ok := buffer.Type().(MemRefType)
	if !ok {
		v.errorf(name, "destination is not a memref (got %s)", buffer.Type())
		return
	}
	if m.NumResults() != len(buf.Shape) {
		v.errorf(name, "index map has %d results, buffer rank is %d", m.NumResults(), len(buf.Shape))
	}
	if m.NumDims+m.NumSymbols != len(idxs) {
		v.errorf(name, "index map wants %d operands, got %d", m.NumDims+m.NumSymbols, len(idxs))
	}
}
