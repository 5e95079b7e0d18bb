// Package ir defines the strata intermediate representation.
//
// The IR is a small tensor/loop dialect family modeled after MLIR's
// region-based operation graph:
//
//   - A Module holds Funcs; a Func owns one body region.
//   - A Region holds Blocks; a Block owns a doubly-linked list of
//     Operations plus its block arguments.
//   - An Operation has a dialect-qualified name, ordered operand slots,
//     result values, typed attributes, and nested regions.
//   - A Value is single-assignment and tracks its consuming operand
//     slots explicitly, so replace-all-uses is O(uses).
//
// Three dialects exist:
//
//	tile    high-level parallel loops and atomic reductions
//	        (tile.parallel, tile.reduce, tile.yield)
//	affine  explicit sequential loops and memory accesses
//	        (affine.for, affine.load, affine.store, affine.yield)
//	arith   scalar arithmetic (arith.addf/addi/mulf/muli,
//	        arith.cmpf/cmpi, arith.select, arith.constant)
//
// The tile dialect is produced by the frontend and must be fully
// eliminated by the lowering pipeline (package lower); affine and arith
// persist into later stages.
//
// CRITICAL PATTERNS:
//
// Single-Writer Mutation:
// The IR is mutated in place by a single goroutine. There is no
// locking; passes run to completion or fail synchronously.
//
// Splice, Not Copy:
// Moving operations between blocks is a range splice on the intrusive
// operation list. Relative order is always preserved and ownership
// transfers without allocation.
//
// Erase Discipline:
// Erasing an operation drops its operand uses (including those of
// nested operations) and marks it erased. Holding a reference to an
// erased operation is safe; using it as an insertion point is not.
package ir
