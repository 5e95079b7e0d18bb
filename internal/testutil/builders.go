// Package testutil provides IR construction helpers shared by tests.
package testutil

import (
	"github.com/strataml/strata/internal/ir"
)

// ReduceModule builds a module whose main func holds one tile.reduce
// of the given aggregation kind into a rank-1 buffer at constant index
// 0, accumulating a constant of the buffer's element type.
func ReduceModule(agg ir.AggKind, elem ir.ScalarType) *ir.Module {
	m := ir.NewModule("reduce")
	fn := m.AddFunc("main", []ir.FuncParam{
		{Name: "B", Type: ir.MemRefType{Elem: elem, Shape: []int64{8}}},
	})
	b := ir.NewBuilder()
	b.SetInsertionPointToEnd(fn.Entry())

	var cst *ir.Operation
	if elem.IsFloat() {
		cst = b.CreateConstant(elem, &ir.ConstAttrs{FloatVal: 2})
	} else {
		cst = b.CreateConstant(elem, &ir.ConstAttrs{IntVal: 2})
	}
	cst.Result(0).SetName("c")

	b.CreateReduce(agg, cst.Result(0), fn.Param("B"), ir.ConstantMap(0), nil)
	return m
}

// LoopNestModule builds a module whose main func holds one
// D-dimensional tile.parallel over the given [lo, hi, step) ranges,
// with a body that reduce-adds a constant into B at the induction
// variables. B's element type is elem and its rank is D.
func LoopNestModule(elem ir.ScalarType, ranges [][3]int64) *ir.Module {
	d := len(ranges)
	shape := make([]int64, d)
	lo := make([]int64, d)
	hi := make([]int64, d)
	steps := make([]int64, d)
	for i, r := range ranges {
		lo[i], hi[i], steps[i] = r[0], r[1], r[2]
		shape[i] = r[1]
	}

	m := ir.NewModule("loopnest")
	fn := m.AddFunc("main", []ir.FuncParam{
		{Name: "B", Type: ir.MemRefType{Elem: elem, Shape: shape}},
	})
	b := ir.NewBuilder()
	b.SetInsertionPointToEnd(fn.Entry())

	var cst *ir.Operation
	if elem.IsFloat() {
		cst = b.CreateConstant(elem, &ir.ConstAttrs{FloatVal: 1})
	} else {
		cst = b.CreateConstant(elem, &ir.ConstAttrs{IntVal: 1})
	}
	cst.Result(0).SetName("c")

	par := b.CreateParallel(ir.ConstantMap(lo...), ir.ConstantMap(hi...), steps, nil)
	body := par.Body()
	ivNames := []string{"i", "j", "k", "l"}
	for i, arg := range body.Args() {
		if i < len(ivNames) {
			arg.SetName(ivNames[i])
		}
	}

	b.SetInsertionPoint(body, body.Terminator())
	b.CreateReduce(ir.AggAdd, cst.Result(0), fn.Param("B"), ir.IdentityMap(d), body.Args())
	return m
}

// EmptyParallelModule builds a module with a zero-dimensional
// tile.parallel whose body stores a constant to B[0].
func EmptyParallelModule() *ir.Module {
	m := ir.NewModule("zerodim")
	fn := m.AddFunc("main", []ir.FuncParam{
		{Name: "B", Type: ir.MemRefType{Elem: ir.F32, Shape: []int64{4}}},
	})
	b := ir.NewBuilder()
	b.SetInsertionPointToEnd(fn.Entry())

	cst := b.CreateConstant(ir.F32, &ir.ConstAttrs{FloatVal: 7})
	cst.Result(0).SetName("c")

	par := b.CreateParallel(ir.ConstantMap(), ir.ConstantMap(), nil, nil)
	body := par.Body()
	b.SetInsertionPoint(body, body.Terminator())
	b.CreateStore(cst.Result(0), fn.Param("B"), ir.ConstantMap(0), nil)
	return m
}

// CountOps walks m and counts operations with the given name.
func CountOps(m *ir.Module, name ir.OpName) int {
	n := 0
	m.Walk(func(op *ir.Operation) bool {
		if op.Name() == name {
			n++
		}
		return true
	})
	return n
}

// FindOp returns the first operation with the given name, or nil.
func FindOp(m *ir.Module, name ir.OpName) *ir.Operation {
	var found *ir.Operation
	m.Walk(func(op *ir.Operation) bool {
		if op.Name() == name {
			found = op
			return false
		}
		return true
	})
	return found
}
