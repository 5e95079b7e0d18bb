package ir

import (
	"fmt"
	"strings"
)

// OpName is a dialect-qualified operation name, e.g. "tile.parallel".
type OpName string

// Operation names, grouped by dialect.
const (
	// tile: high-level constructs eliminated by the lowering pipeline.
	TileParallel OpName = "tile.parallel"
	TileReduce   OpName = "tile.reduce"
	TileYield    OpName = "tile.yield"

	// affine: explicit loops and memory accesses.
	AffineFor   OpName = "affine.for"
	AffineLoad  OpName = "affine.load"
	AffineStore OpName = "affine.store"
	AffineYield OpName = "affine.yield"

	// arith: scalar arithmetic.
	ArithConstant OpName = "arith.constant"
	ArithAddF     OpName = "arith.addf"
	ArithAddI     OpName = "arith.addi"
	ArithMulF     OpName = "arith.mulf"
	ArithMulI     OpName = "arith.muli"
	ArithCmpF     OpName = "arith.cmpf"
	ArithCmpI     OpName = "arith.cmpi"
	ArithSelect   OpName = "arith.select"
)

// Dialect returns the dialect prefix of the name.
func (n OpName) Dialect() string {
	if i := strings.IndexByte(string(n), '.'); i >= 0 {
		return string(n)[:i]
	}
	return string(n)
}

// IsTerminator reports whether the op kind terminates a block.
func (n OpName) IsTerminator() bool {
	return n == TileYield || n == AffineYield
}

// AggKind is the accumulation semantics of a tile.reduce.
//
// The set is closed: assign, add, mul, max, min. Max and min are
// defined only for float (ordered comparison) and signed integer
// elements; unsigned semantics are intentionally unsupported.
type AggKind uint8

const (
	AggAssign AggKind = iota
	AggAdd
	AggMul
	AggMax
	AggMin
)

// String returns the kind's source spelling.
func (k AggKind) String() string {
	switch k {
	case AggAssign:
		return "assign"
	case AggAdd:
		return "add"
	case AggMul:
		return "mul"
	case AggMax:
		return "max"
	case AggMin:
		return "min"
	default:
		return fmt.Sprintf("AggKind(%d)", uint8(k))
	}
}

// ParseAggKind parses an aggregation kind's source spelling.
func ParseAggKind(s string) (AggKind, error) {
	switch s {
	case "assign":
		return AggAssign, nil
	case "add":
		return AggAdd, nil
	case "mul":
		return AggMul, nil
	case "max":
		return AggMax, nil
	case "min":
		return AggMin, nil
	default:
		return 0, fmt.Errorf("unknown aggregation kind %q", s)
	}
}

// CmpFPred is a float comparison predicate (ordered comparisons only).
type CmpFPred uint8

const (
	CmpFOGT CmpFPred = iota // ordered greater-than
	CmpFOLT                 // ordered less-than
)

func (p CmpFPred) String() string {
	switch p {
	case CmpFOGT:
		return "ogt"
	case CmpFOLT:
		return "olt"
	default:
		return fmt.Sprintf("CmpFPred(%d)", uint8(p))
	}
}

// CmpIPred is an integer comparison predicate (signed only).
type CmpIPred uint8

const (
	CmpISGT CmpIPred = iota // signed greater-than
	CmpISLT                 // signed less-than
)

func (p CmpIPred) String() string {
	switch p {
	case CmpISGT:
		return "sgt"
	case CmpISLT:
		return "slt"
	default:
		return fmt.Sprintf("CmpIPred(%d)", uint8(p))
	}
}

// Attributes is the sealed set of per-operation attribute payloads.
// Each op kind that carries static data has exactly one attribute type.
type Attributes interface {
	attributes()
}

// ParallelAttrs carries a tile.parallel's per-dimension bound maps and
// steps. Lower and Upper share the op's operand list and must have the
// same number of results as there are Steps and body block arguments.
type ParallelAttrs struct {
	Lower AffineMap
	Upper AffineMap
	Steps []int64
}

func (*ParallelAttrs) attributes() {}

// ForAttrs carries an affine.for's single-result bound maps and step.
// Both maps share the op's operand list.
type ForAttrs struct {
	Lower AffineMap
	Upper AffineMap
	Step  int64
}

func (*ForAttrs) attributes() {}

// ReduceAttrs carries a tile.reduce's aggregation kind and index map.
type ReduceAttrs struct {
	Agg AggKind
	Map AffineMap
}

func (*ReduceAttrs) attributes() {}

// AccessAttrs carries an affine.load/affine.store index map.
type AccessAttrs struct {
	Map AffineMap
}

func (*AccessAttrs) attributes() {}

// CmpFAttrs carries an arith.cmpf predicate.
type CmpFAttrs struct {
	Pred CmpFPred
}

func (*CmpFAttrs) attributes() {}

// CmpIAttrs carries an arith.cmpi predicate.
type CmpIAttrs struct {
	Pred CmpIPred
}

func (*CmpIAttrs) attributes() {}

// ConstAttrs carries an arith.constant's literal. Exactly one of the
// two fields is meaningful, selected by the result type's kind.
type ConstAttrs struct {
	FloatVal float64
	IntVal   int64
}

func (*ConstAttrs) attributes() {}

// Operation is a node of the IR graph: a named op with ordered operand
// slots, result values, typed attributes, and nested regions. It lives
// on its block's intrusive operation list.
type Operation struct {
	name     OpName
	operands []*Operand
	results  []*Value
	attrs    Attributes
	regions  []*Region

	block      *Block
	prev, next *Operation
	erased     bool
}

func newOperation(name OpName, operands []*Value, resultTypes []Type, attrs Attributes) *Operation {
	op := &Operation{name: name, attrs: attrs}
	op.operands = make([]*Operand, len(operands))
	for i, v := range operands {
		slot := &Operand{owner: op, index: i, value: v}
		v.uses[slot] = struct{}{}
		op.operands[i] = slot
	}
	op.results = make([]*Value, len(resultTypes))
	for i, t := range resultTypes {
		r := newValue(t)
		r.def = op
		r.index = i
		op.results[i] = r
	}
	return op
}

// Name returns the operation's dialect-qualified name.
func (op *Operation) Name() OpName { return op.name }

// Attrs returns the operation's attribute payload (may be nil).
func (op *Operation) Attrs() Attributes { return op.attrs }

// Block returns the owning block (nil when unlinked).
func (op *Operation) Block() *Block { return op.block }

// Prev returns the previous operation in the owning block.
func (op *Operation) Prev() *Operation { return op.prev }

// Next returns the next operation in the owning block.
func (op *Operation) Next() *Operation { return op.next }

// Erased reports whether the operation has been erased.
func (op *Operation) Erased() bool { return op.erased }

// NumOperands returns the number of operand slots.
func (op *Operation) NumOperands() int { return len(op.operands) }

// Operand returns operand value i.
func (op *Operation) Operand(i int) *Value { return op.operands[i].value }

// Operands returns the operand values in slot order.
func (op *Operation) Operands() []*Value {
	vals := make([]*Value, len(op.operands))
	for i, slot := range op.operands {
		vals[i] = slot.value
	}
	return vals
}

// NumResults returns the number of result values.
func (op *Operation) NumResults() int { return len(op.results) }

// Result returns result value i.
func (op *Operation) Result(i int) *Value { return op.results[i] }

// NumRegions returns the number of nested regions.
func (op *Operation) NumRegions() int { return len(op.regions) }

// Region returns nested region i.
func (op *Operation) Region(i int) *Region { return op.regions[i] }

// addRegion appends an empty region owned by op.
func (op *Operation) addRegion() *Region {
	r := &Region{owner: op}
	op.regions = append(op.regions, r)
	return r
}
