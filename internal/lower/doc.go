// Package lower converts the tile dialect to the affine and arith
// dialects.
//
// Two patterns do the work:
//
//   - ParallelLowering turns one D-dimensional tile.parallel into D
//     nested affine.for loops (or inlines the body in place for D = 0),
//     splicing the original body and substituting induction variables
//     for the original block arguments.
//
//   - ReduceLowering turns one tile.reduce into an affine.load, an
//     aggregation-specific compute, and an affine.store at the same
//     address descriptor.
//
// The patterns are independent and order-insensitive; Lower wires them
// into the rewrite driver with the tile dialect declared illegal.
//
// The lowered loops are sequential by construction. The emitted
// load/compute/store around a reduction is not an atomic primitive: if
// a later stage runs the loops concurrently, serializing the
// accumulation is that stage's responsibility.
package lower
