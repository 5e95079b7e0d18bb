package lower

import (
	"github.com/strataml/strata/internal/ir"
	"github.com/strataml/strata/internal/rewrite"
)

// Patterns returns the tile-to-affine pattern set.
func Patterns() []rewrite.Pattern {
	return []rewrite.Pattern{
		ParallelLowering{},
		ReduceLowering{},
	}
}

// Target returns the conversion target: affine and arith are legal
// output, the tile dialect must be gone.
func Target() *rewrite.Target {
	return rewrite.NewTarget().
		AddLegalDialect("affine", "arith").
		AddIllegalDialect("tile")
}

// Lower runs the tile-to-affine conversion over m in place. The
// pipeline is constructed explicitly here; there is no process-wide
// pass registry. Options (tracing, quotas) pass through to the driver.
//
// On success no tile operation remains in m. On failure the module
// contents are unspecified and must be discarded.
func Lower(m *ir.Module, opts ...rewrite.Option) (*rewrite.Result, error) {
	return rewrite.ApplyPartial(m, Target(), Patterns(), opts...)
}
