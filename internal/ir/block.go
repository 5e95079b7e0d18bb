package ir

// Region is a list of blocks owned by an operation (or by a Func for
// the function body, in which case owner is nil).
type Region struct {
	owner  *Operation
	blocks []*Block
}

// Owner returns the owning operation (nil for a function body region).
func (r *Region) Owner() *Operation { return r.owner }

// NumBlocks returns the number of blocks in the region.
func (r *Region) NumBlocks() int { return len(r.blocks) }

// Front returns the region's first block, or nil if empty.
func (r *Region) Front() *Block {
	if len(r.blocks) == 0 {
		return nil
	}
	return r.blocks[0]
}

// AddBlock appends a fresh empty block to the region.
func (r *Region) AddBlock() *Block {
	b := &Block{parent: r}
	r.blocks = append(r.blocks, b)
	return b
}

// Block owns an intrusive doubly-linked list of operations plus its
// block arguments.
type Block struct {
	parent *Region
	args   []*Value
	first  *Operation
	last   *Operation
}

// Parent returns the owning region.
func (b *Block) Parent() *Region { return b.parent }

// NumArgs returns the number of block arguments.
func (b *Block) NumArgs() int { return len(b.args) }

// Arg returns block argument i.
func (b *Block) Arg(i int) *Value { return b.args[i] }

// Args returns the block arguments in order.
func (b *Block) Args() []*Value { return b.args }

// AddArg appends a block argument of the given type and returns it.
func (b *Block) AddArg(typ Type) *Value {
	v := newValue(typ)
	v.owner = b
	v.index = len(b.args)
	b.args = append(b.args, v)
	return v
}

// Front returns the block's first operation, or nil if empty.
func (b *Block) Front() *Operation { return b.first }

// Back returns the block's last operation, or nil if empty.
func (b *Block) Back() *Operation { return b.last }

// Empty reports whether the block has no operations.
func (b *Block) Empty() bool { return b.first == nil }

// Terminator returns the block's terminator, or nil when the trailing
// operation is not a terminator kind (or the block is empty).
func (b *Block) Terminator() *Operation {
	if b.last != nil && b.last.name.IsTerminator() {
		return b.last
	}
	return nil
}

// Len counts the operations in the block.
func (b *Block) Len() int {
	n := 0
	for op := b.first; op != nil; op = op.next {
		n++
	}
	return n
}

// insertBefore links op into b immediately before ref. A nil ref
// appends at the end.
func (b *Block) insertBefore(op *Operation, ref *Operation) {
	op.block = b
	if ref == nil {
		op.prev = b.last
		op.next = nil
		if b.last != nil {
			b.last.next = op
		} else {
			b.first = op
		}
		b.last = op
		return
	}
	op.prev = ref.prev
	op.next = ref
	if ref.prev != nil {
		ref.prev.next = op
	} else {
		b.first = op
	}
	ref.prev = op
}

// remove unlinks op from b without touching its uses.
func (b *Block) remove(op *Operation) {
	if op.prev != nil {
		op.prev.next = op.next
	} else {
		b.first = op.next
	}
	if op.next != nil {
		op.next.prev = op.prev
	} else {
		b.last = op.prev
	}
	op.prev = nil
	op.next = nil
	op.block = nil
}

// MoveRangeBefore splices the inclusive operation range [first, last]
// out of src and into dst immediately before ref (nil ref appends).
// Relative order within the range is preserved; ownership transfers
// without copying. first and last must belong to src, with last
// reachable from first; a nil first is a no-op (empty range).
func MoveRangeBefore(dst *Block, ref *Operation, src *Block, first, last *Operation) {
	if first == nil {
		return
	}
	// Unlink [first, last] from src.
	if first.prev != nil {
		first.prev.next = last.next
	} else {
		src.first = last.next
	}
	if last.next != nil {
		last.next.prev = first.prev
	} else {
		src.last = first.prev
	}
	first.prev = nil
	last.next = nil

	// Relink into dst before ref.
	for op := first; op != nil; op = op.next {
		op.block = dst
	}
	if ref == nil {
		first.prev = dst.last
		if dst.last != nil {
			dst.last.next = first
		} else {
			dst.first = first
		}
		dst.last = last
		return
	}
	first.prev = ref.prev
	last.next = ref
	if ref.prev != nil {
		ref.prev.next = first
	} else {
		dst.first = first
	}
	ref.prev = last
}

// Walk visits every operation in the block in order, descending into
// nested regions pre-order. Visiting continues while fn returns true.
func (b *Block) Walk(fn func(*Operation) bool) bool {
	for op := b.first; op != nil; op = op.next {
		if !fn(op) {
			return false
		}
		for _, region := range op.regions {
			for _, blk := range region.blocks {
				if !blk.Walk(fn) {
					return false
				}
			}
		}
	}
	return true
}
