package ir

// Builder creates operations at an insertion point: a block plus the
// operation to insert before (nil means append at the block's end).
// All graph mutation used by the lowering passes goes through a
// Builder: create, splice, replace-all-uses, erase.
type Builder struct {
	block  *Block
	before *Operation
}

// NewBuilder returns a builder with no insertion point set.
func NewBuilder() *Builder { return &Builder{} }

// SetInsertionPoint places the builder immediately before op inside
// block. A nil op appends at the block's end.
func (b *Builder) SetInsertionPoint(block *Block, op *Operation) {
	b.block = block
	b.before = op
}

// SetInsertionPointToStart places the builder at the beginning of block.
func (b *Builder) SetInsertionPointToStart(block *Block) {
	b.block = block
	b.before = block.first
}

// SetInsertionPointToEnd places the builder at the end of block.
func (b *Builder) SetInsertionPointToEnd(block *Block) {
	b.block = block
	b.before = nil
}

// InsertionBlock returns the block the builder inserts into.
func (b *Builder) InsertionBlock() *Block { return b.block }

// insert links op at the current insertion point.
func (b *Builder) insert(op *Operation) {
	b.block.insertBefore(op, b.before)
}

// CreateParallel creates a tile.parallel with one body block carrying
// one index block argument per dimension and a tile.yield terminator.
// Lower and Upper interpret the shared operand list; their result
// counts and len(steps) define the dimensionality.
func (b *Builder) CreateParallel(lower, upper AffineMap, steps []int64, operands []*Value) ParallelOp {
	op := newOperation(TileParallel, operands, nil, &ParallelAttrs{Lower: lower, Upper: upper, Steps: steps})
	body := op.addRegion().AddBlock()
	for range steps {
		body.AddArg(Index)
	}
	body.insertBefore(newOperation(TileYield, nil, nil, nil), nil)
	b.insert(op)
	return ParallelOp{op}
}

// CreateFor creates an affine.for with a single-result lower and upper
// bound map over the shared operand list. The body block carries the
// induction-variable argument and an affine.yield terminator.
func (b *Builder) CreateFor(lower, upper AffineMap, step int64, operands []*Value) ForOp {
	op := newOperation(AffineFor, operands, nil, &ForAttrs{Lower: lower, Upper: upper, Step: step})
	body := op.addRegion().AddBlock()
	body.AddArg(Index)
	body.insertBefore(newOperation(AffineYield, nil, nil, nil), nil)
	b.insert(op)
	return ForOp{op}
}

// CreateReduce creates a tile.reduce accumulating val into
// buffer[indexMap(idxs)] with the given aggregation kind.
func (b *Builder) CreateReduce(agg AggKind, val, buffer *Value, indexMap AffineMap, idxs []*Value) ReduceOp {
	operands := append([]*Value{val, buffer}, idxs...)
	op := newOperation(TileReduce, operands, nil, &ReduceAttrs{Agg: agg, Map: indexMap})
	b.insert(op)
	return ReduceOp{op}
}

// CreateLoad creates an affine.load from buffer[indexMap(idxs)]. The
// result type is the buffer's element type.
func (b *Builder) CreateLoad(buffer *Value, indexMap AffineMap, idxs []*Value) LoadOp {
	elem := buffer.Type().(MemRefType).Elem
	operands := append([]*Value{buffer}, idxs...)
	op := newOperation(AffineLoad, operands, []Type{elem}, &AccessAttrs{Map: indexMap})
	b.insert(op)
	return LoadOp{op}
}

// CreateStore creates an affine.store of val to buffer[indexMap(idxs)].
func (b *Builder) CreateStore(val, buffer *Value, indexMap AffineMap, idxs []*Value) StoreOp {
	operands := append([]*Value{val, buffer}, idxs...)
	op := newOperation(AffineStore, operands, nil, &AccessAttrs{Map: indexMap})
	b.insert(op)
	return StoreOp{op}
}

// CreateConstant creates an arith.constant of the given scalar type.
func (b *Builder) CreateConstant(typ ScalarType, attrs *ConstAttrs) *Operation {
	op := newOperation(ArithConstant, nil, []Type{typ}, attrs)
	b.insert(op)
	return op
}

// CreateBinary creates a two-operand arith op (addf/addi/mulf/muli)
// whose result has the left operand's type.
func (b *Builder) CreateBinary(name OpName, lhs, rhs *Value) *Operation {
	op := newOperation(name, []*Value{lhs, rhs}, []Type{lhs.Type()}, nil)
	b.insert(op)
	return op
}

// CreateCmpF creates an ordered float comparison producing an i1.
func (b *Builder) CreateCmpF(pred CmpFPred, lhs, rhs *Value) *Operation {
	op := newOperation(ArithCmpF, []*Value{lhs, rhs}, []Type{I1}, &CmpFAttrs{Pred: pred})
	b.insert(op)
	return op
}

// CreateCmpI creates a signed integer comparison producing an i1.
func (b *Builder) CreateCmpI(pred CmpIPred, lhs, rhs *Value) *Operation {
	op := newOperation(ArithCmpI, []*Value{lhs, rhs}, []Type{I1}, &CmpIAttrs{Pred: pred})
	b.insert(op)
	return op
}

// CreateSelect creates an arith.select picking trueVal when cond is
// set, falseVal otherwise.
func (b *Builder) CreateSelect(cond, trueVal, falseVal *Value) *Operation {
	op := newOperation(ArithSelect, []*Value{cond, trueVal, falseVal}, []Type{trueVal.Type()}, nil)
	b.insert(op)
	return op
}

// Erase removes op from its block, drops every operand use held by op
// and by operations nested in its regions, and marks them all erased.
// Results must have no remaining uses; replace them first.
func (b *Builder) Erase(op *Operation) {
	if op.block != nil {
		op.block.remove(op)
	}
	eraseTree(op)
}

func eraseTree(op *Operation) {
	for _, slot := range op.operands {
		slot.drop()
	}
	for _, region := range op.regions {
		for _, blk := range region.blocks {
			for nested := blk.first; nested != nil; nested = nested.next {
				eraseTree(nested)
			}
		}
	}
	op.erased = true
}
