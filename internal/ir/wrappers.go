package ir

// Typed views over generic operations. A wrapper assumes its operation
// has the matching name; callers check Name() (or a pattern's Match)
// before wrapping.

// ParallelOp is a typed view of a tile.parallel operation.
type ParallelOp struct {
	*Operation
}

// AsParallel wraps op as a ParallelOp.
func AsParallel(op *Operation) ParallelOp { return ParallelOp{op} }

func (p ParallelOp) attrs() *ParallelAttrs { return p.Attrs().(*ParallelAttrs) }

// NumDims returns the loop's dimensionality D.
func (p ParallelOp) NumDims() int { return len(p.attrs().Steps) }

// LowerMap returns the multi-result lower bound map.
func (p ParallelOp) LowerMap() AffineMap { return p.attrs().Lower }

// UpperMap returns the multi-result upper bound map.
func (p ParallelOp) UpperMap() AffineMap { return p.attrs().Upper }

// Steps returns the per-dimension steps.
func (p ParallelOp) Steps() []int64 { return p.attrs().Steps }

// Body returns the single body block.
func (p ParallelOp) Body() *Block { return p.Region(0).Front() }

// ForOp is a typed view of an affine.for operation.
type ForOp struct {
	*Operation
}

// AsFor wraps op as a ForOp.
func AsFor(op *Operation) ForOp { return ForOp{op} }

func (f ForOp) attrs() *ForAttrs { return f.Attrs().(*ForAttrs) }

// LowerMap returns the single-result lower bound map.
func (f ForOp) LowerMap() AffineMap { return f.attrs().Lower }

// UpperMap returns the single-result upper bound map.
func (f ForOp) UpperMap() AffineMap { return f.attrs().Upper }

// Step returns the loop step.
func (f ForOp) Step() int64 { return f.attrs().Step }

// Body returns the single body block.
func (f ForOp) Body() *Block { return f.Region(0).Front() }

// InductionVar returns the body's induction-variable argument.
func (f ForOp) InductionVar() *Value { return f.Body().Arg(0) }

// ReduceOp is a typed view of a tile.reduce operation.
// Operand layout: val, buffer, index operands.
type ReduceOp struct {
	*Operation
}

// AsReduce wraps op as a ReduceOp.
func AsReduce(op *Operation) ReduceOp { return ReduceOp{op} }

func (r ReduceOp) attrs() *ReduceAttrs { return r.Attrs().(*ReduceAttrs) }

// Agg returns the aggregation kind.
func (r ReduceOp) Agg() AggKind { return r.attrs().Agg }

// Map returns the destination index map.
func (r ReduceOp) Map() AffineMap { return r.attrs().Map }

// Val returns the value being accumulated.
func (r ReduceOp) Val() *Value { return r.Operand(0) }

// Buffer returns the destination buffer.
func (r ReduceOp) Buffer() *Value { return r.Operand(1) }

// Indices returns the index operands.
func (r ReduceOp) Indices() []*Value { return r.Operands()[2:] }

// LoadOp is a typed view of an affine.load operation.
// Operand layout: buffer, index operands.
type LoadOp struct {
	*Operation
}

// AsLoad wraps op as a LoadOp.
func AsLoad(op *Operation) LoadOp { return LoadOp{op} }

// Map returns the index map.
func (l LoadOp) Map() AffineMap { return l.Attrs().(*AccessAttrs).Map }

// Buffer returns the buffer being read.
func (l LoadOp) Buffer() *Value { return l.Operand(0) }

// Indices returns the index operands.
func (l LoadOp) Indices() []*Value { return l.Operands()[1:] }

// Loaded returns the loaded value.
func (l LoadOp) Loaded() *Value { return l.Result(0) }

// StoreOp is a typed view of an affine.store operation.
// Operand layout: value, buffer, index operands.
type StoreOp struct {
	*Operation
}

// AsStore wraps op as a StoreOp.
func AsStore(op *Operation) StoreOp { return StoreOp{op} }

// Map returns the index map.
func (s StoreOp) Map() AffineMap { return s.Attrs().(*AccessAttrs).Map }

// Stored returns the value being written.
func (s StoreOp) Stored() *Value { return s.Operand(0) }

// Buffer returns the buffer being written.
func (s StoreOp) Buffer() *Value { return s.Operand(1) }

// Indices returns the index operands.
func (s StoreOp) Indices() []*Value { return s.Operands()[2:] }
