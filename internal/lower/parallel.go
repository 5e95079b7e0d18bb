package lower

import (
	"github.com/strataml/strata/internal/ir"
)

// ParallelLowering rewrites one tile.parallel of dimensionality D into
// D nested affine.for loops, created in dimension order so the outer
// loop is dimension 0. The original body moves into the innermost loop
// by range splice, preserving relative order; each original block
// argument is then replaced by the matching induction variable. For
// D = 0 no loops are created and the body is inlined where the
// tile.parallel stood.
type ParallelLowering struct{}

// Name implements rewrite.Pattern.
func (ParallelLowering) Name() string { return "lower-tile-parallel" }

// Match implements rewrite.Pattern.
func (ParallelLowering) Match(op *ir.Operation) bool {
	return op.Name() == ir.TileParallel
}

// Rewrite implements rewrite.Pattern.
func (ParallelLowering) Rewrite(op *ir.Operation, b *ir.Builder) error {
	par := ir.AsParallel(op)

	// Build the loop nest, capturing induction variables in
	// dimension order. Each iteration descends the insertion point
	// into the loop just created, so loop i+1 nests inside loop i.
	b.SetInsertionPoint(op.Block(), op)
	d := par.NumDims()
	ivs := make([]*ir.Value, 0, d)
	for i := 0; i < d; i++ {
		loop := b.CreateFor(
			par.LowerMap().SubMap(i),
			par.UpperMap().SubMap(i),
			par.Steps()[i],
			par.Operands(),
		)
		b.SetInsertionPointToStart(loop.Body())
		ivs = append(ivs, loop.InductionVar())
	}

	// Move the original body (minus its terminator) to the innermost
	// loop. With no dimensions there is no loop; the body lands where
	// the tile.parallel itself stands.
	body := par.Body()
	dst := b.InsertionBlock()
	var before *ir.Operation
	if d > 0 {
		before = dst.Terminator()
	} else {
		before = op
	}
	term := body.Terminator()
	var last *ir.Operation
	if term != nil {
		last = term.Prev()
	} else {
		last = body.Back()
	}
	if last != nil {
		ir.MoveRangeBefore(dst, before, body, body.Front(), last)
	}

	// Replace uses of the original block arguments with the
	// induction variables, dimension 0 first. The printer hint moves
	// with the variable.
	for i, arg := range body.Args() {
		if ivs[i].Name() == "" {
			ivs[i].SetName(arg.Name())
		}
		arg.ReplaceAllUses(ivs[i])
	}

	b.Erase(op)
	return nil
}
