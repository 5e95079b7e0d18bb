// Package compiler parses CUE program descriptions into strata IR.
//
// A program is a CUE struct naming its buffers and a list of body
// operations; tile.parallel bodies nest recursively. The frontend is
// the stage that validates structure (dimension counts, known
// aggregation kinds, resolvable names) — the lowering patterns assume
// legally-formed input and do not re-check it.
package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/strataml/strata/internal/ir"
)

// CompileProgram parses a CUE value into an IR module. The value
// should be the program struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(src)
//	m, err := compiler.CompileProgram(v.LookupPath(cue.ParsePath("program")))
//
// The program's buffers become parameters of a single "main" function
// whose body holds the program operations.
func CompileProgram(v cue.Value) (*ir.Module, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	nameVal := v.LookupPath(cue.ParsePath("name"))
	if !nameVal.Exists() {
		return nil, &CompileError{Field: "name", Message: "name is required", Pos: v.Pos()}
	}
	name, err := nameVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}

	params, err := parseBuffers(v)
	if err != nil {
		return nil, err
	}

	m := ir.NewModule(name)
	fn := m.AddFunc("main", params)

	c := &programCompiler{b: ir.NewBuilder()}
	vars := make(map[string]*ir.Value, len(params))
	for _, p := range params {
		vars[p.Name] = fn.Param(p.Name)
	}

	bodyVal := v.LookupPath(cue.ParsePath("body"))
	if !bodyVal.Exists() {
		return nil, &CompileError{Field: "body", Message: "body is required", Pos: v.Pos()}
	}
	if err := c.compileOps(bodyVal, fn.Entry(), vars); err != nil {
		return nil, err
	}

	if errs := ir.ValidateModule(m); len(errs) > 0 {
		return nil, errs[0]
	}
	return m, nil
}

// parseBuffers reads the buffers list into function parameters.
func parseBuffers(v cue.Value) ([]ir.FuncParam, error) {
	buffersVal := v.LookupPath(cue.ParsePath("buffers"))
	if !buffersVal.Exists() {
		return nil, nil
	}
	iter, err := buffersVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var params []ir.FuncParam
	for iter.Next() {
		bv := iter.Value()
		name, err := requiredString(bv, "name")
		if err != nil {
			return nil, err
		}
		elemStr, err := requiredString(bv, "elem")
		if err != nil {
			return nil, err
		}
		elem, err := ir.ParseScalarType(elemStr)
		if err != nil {
			return nil, &CompileError{Field: "elem", Message: err.Error(), Pos: bv.Pos()}
		}
		shape, err := int64List(bv.LookupPath(cue.ParsePath("shape")))
		if err != nil {
			return nil, &CompileError{Field: "shape", Message: err.Error(), Pos: bv.Pos()}
		}
		params = append(params, ir.FuncParam{
			Name: name,
			Type: ir.MemRefType{Elem: elem, Shape: shape},
		})
	}
	return params, nil
}

type programCompiler struct {
	b *ir.Builder
}

// at places the builder at the logical end of block: before its
// terminator if it has one, at the very end otherwise.
func (c *programCompiler) at(block *ir.Block) {
	if t := block.Terminator(); t != nil {
		c.b.SetInsertionPoint(block, t)
	} else {
		c.b.SetInsertionPointToEnd(block)
	}
}

// compileOps compiles a CUE op list into block. vars maps visible
// names (buffers, induction variables, computed values) to IR values.
func (c *programCompiler) compileOps(list cue.Value, block *ir.Block, vars map[string]*ir.Value) error {
	iter, err := list.List()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		if err := c.compileOp(iter.Value(), block, vars); err != nil {
			return err
		}
	}
	return nil
}

// compileOp compiles one op struct: a single-field struct whose field
// name selects the op form.
func (c *programCompiler) compileOp(v cue.Value, block *ir.Block, vars map[string]*ir.Value) error {
	fields, err := v.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	if !fields.Next() {
		return &CompileError{Field: "op", Message: "empty operation struct", Pos: v.Pos()}
	}
	form := fields.Selector().String()
	body := fields.Value()
	if fields.Next() {
		return &CompileError{Field: "op", Message: "operation struct must have exactly one field", Pos: v.Pos()}
	}

	c.at(block)
	switch form {
	case "constant":
		return c.compileConstant(body, vars)
	case "parallel":
		return c.compileParallel(body, block, vars)
	case "reduce":
		return c.compileReduce(body, vars)
	case "load":
		return c.compileLoad(body, vars)
	case "store":
		return c.compileStore(body, vars)
	case "add", "mul":
		return c.compileBinary(form, body, vars)
	default:
		return &CompileError{Field: form, Message: "unknown operation form", Pos: v.Pos()}
	}
}

func (c *programCompiler) compileConstant(v cue.Value, vars map[string]*ir.Value) error {
	name, err := requiredString(v, "name")
	if err != nil {
		return err
	}
	typStr, err := requiredString(v, "type")
	if err != nil {
		return err
	}
	typ, err := ir.ParseScalarType(typStr)
	if err != nil {
		return &CompileError{Field: "type", Message: err.Error(), Pos: v.Pos()}
	}
	valueVal := v.LookupPath(cue.ParsePath("value"))
	if !valueVal.Exists() {
		return &CompileError{Field: "value", Message: "value is required", Pos: v.Pos()}
	}

	attrs := &ir.ConstAttrs{}
	if typ.IsFloat() {
		f, err := valueVal.Float64()
		if err != nil {
			return formatCUEError(err)
		}
		attrs.FloatVal = f
	} else {
		i, err := valueVal.Int64()
		if err != nil {
			return formatCUEError(err)
		}
		attrs.IntVal = i
	}
	op := c.b.CreateConstant(typ, attrs)
	op.Result(0).SetName(name)
	vars[name] = op.Result(0)
	return nil
}

func (c *programCompiler) compileParallel(v cue.Value, block *ir.Block, vars map[string]*ir.Value) error {
	ivs, err := stringList(v.LookupPath(cue.ParsePath("ivs")))
	if err != nil {
		return &CompileError{Field: "ivs", Message: err.Error(), Pos: v.Pos()}
	}
	rangesVal := v.LookupPath(cue.ParsePath("ranges"))
	if !rangesVal.Exists() {
		return &CompileError{Field: "ranges", Message: "ranges is required", Pos: v.Pos()}
	}
	iter, err := rangesVal.List()
	if err != nil {
		return formatCUEError(err)
	}
	var lo, hi, steps []int64
	for iter.Next() {
		r, err := int64List(iter.Value())
		if err != nil {
			return &CompileError{Field: "ranges", Message: err.Error(), Pos: v.Pos()}
		}
		if len(r) != 3 {
			return &CompileError{Field: "ranges", Message: "range must be [lower, upper, step]", Pos: v.Pos()}
		}
		if r[2] <= 0 {
			return &CompileError{Field: "ranges", Message: "step must be positive", Pos: v.Pos()}
		}
		lo = append(lo, r[0])
		hi = append(hi, r[1])
		steps = append(steps, r[2])
	}
	if len(ivs) != len(steps) {
		return &CompileError{
			Field:   "parallel",
			Message: fmt.Sprintf("%d induction variables for %d ranges", len(ivs), len(steps)),
			Pos:     v.Pos(),
		}
	}

	par := c.b.CreateParallel(ir.ConstantMap(lo...), ir.ConstantMap(hi...), steps, nil)
	parBody := par.Body()

	// Induction variables shadow outer names inside the body.
	inner := make(map[string]*ir.Value, len(vars)+len(ivs))
	for k, val := range vars {
		inner[k] = val
	}
	for i, name := range ivs {
		arg := parBody.Arg(i)
		arg.SetName(name)
		inner[name] = arg
	}

	bodyVal := v.LookupPath(cue.ParsePath("body"))
	if !bodyVal.Exists() {
		return &CompileError{Field: "body", Message: "parallel body is required", Pos: v.Pos()}
	}
	return c.compileOps(bodyVal, parBody, inner)
}

func (c *programCompiler) compileReduce(v cue.Value, vars map[string]*ir.Value) error {
	aggStr, err := requiredString(v, "agg")
	if err != nil {
		return err
	}
	agg, err := ir.ParseAggKind(aggStr)
	if err != nil {
		return &CompileError{Field: "agg", Message: err.Error(), Pos: v.Pos()}
	}
	buffer, err := c.lookup(v, "buffer", vars)
	if err != nil {
		return err
	}
	idxMap, idxs, err := c.indexOperands(v, vars)
	if err != nil {
		return err
	}
	val, err := c.lookup(v, "val", vars)
	if err != nil {
		return err
	}
	c.b.CreateReduce(agg, val, buffer, idxMap, idxs)
	return nil
}

func (c *programCompiler) compileLoad(v cue.Value, vars map[string]*ir.Value) error {
	name, err := requiredString(v, "name")
	if err != nil {
		return err
	}
	buffer, err := c.lookup(v, "buffer", vars)
	if err != nil {
		return err
	}
	idxMap, idxs, err := c.indexOperands(v, vars)
	if err != nil {
		return err
	}
	ld := c.b.CreateLoad(buffer, idxMap, idxs)
	ld.Loaded().SetName(name)
	vars[name] = ld.Loaded()
	return nil
}

func (c *programCompiler) compileStore(v cue.Value, vars map[string]*ir.Value) error {
	val, err := c.lookup(v, "val", vars)
	if err != nil {
		return err
	}
	buffer, err := c.lookup(v, "buffer", vars)
	if err != nil {
		return err
	}
	idxMap, idxs, err := c.indexOperands(v, vars)
	if err != nil {
		return err
	}
	c.b.CreateStore(val, buffer, idxMap, idxs)
	return nil
}

func (c *programCompiler) compileBinary(form string, v cue.Value, vars map[string]*ir.Value) error {
	name, err := requiredString(v, "name")
	if err != nil {
		return err
	}
	lhs, err := c.lookup(v, "lhs", vars)
	if err != nil {
		return err
	}
	rhs, err := c.lookup(v, "rhs", vars)
	if err != nil {
		return err
	}
	scalar, ok := lhs.Type().(ir.ScalarType)
	if !ok {
		return &CompileError{Field: "lhs", Message: "operand is not a scalar", Pos: v.Pos()}
	}

	var opName ir.OpName
	switch {
	case form == "add" && scalar.IsFloat():
		opName = ir.ArithAddF
	case form == "add":
		opName = ir.ArithAddI
	case scalar.IsFloat():
		opName = ir.ArithMulF
	default:
		opName = ir.ArithMulI
	}
	op := c.b.CreateBinary(opName, lhs, rhs)
	op.Result(0).SetName(name)
	vars[name] = op.Result(0)
	return nil
}

// indexOperands reads the idxs list into an index map plus operands.
// String entries reference values in scope (becoming map dimensions);
// integer entries become constant map results.
func (c *programCompiler) indexOperands(v cue.Value, vars map[string]*ir.Value) (ir.AffineMap, []*ir.Value, error) {
	idxsVal := v.LookupPath(cue.ParsePath("idxs"))
	if !idxsVal.Exists() {
		return ir.AffineMap{}, nil, &CompileError{Field: "idxs", Message: "idxs is required", Pos: v.Pos()}
	}
	iter, err := idxsVal.List()
	if err != nil {
		return ir.AffineMap{}, nil, formatCUEError(err)
	}

	var results []ir.AffineExpr
	var operands []*ir.Value
	for iter.Next() {
		iv := iter.Value()
		switch iv.Kind() {
		case cue.StringKind:
			name, err := iv.String()
			if err != nil {
				return ir.AffineMap{}, nil, formatCUEError(err)
			}
			val, ok := vars[name]
			if !ok {
				return ir.AffineMap{}, nil, &CompileError{
					Field: "idxs", Message: fmt.Sprintf("unknown value %q", name), Pos: iv.Pos(),
				}
			}
			results = append(results, ir.DimExpr{Index: len(operands)})
			operands = append(operands, val)
		case cue.IntKind:
			n, err := iv.Int64()
			if err != nil {
				return ir.AffineMap{}, nil, formatCUEError(err)
			}
			results = append(results, ir.ConstExpr{Value: n})
		default:
			return ir.AffineMap{}, nil, &CompileError{
				Field: "idxs", Message: "index must be a name or an integer", Pos: iv.Pos(),
			}
		}
	}
	return ir.AffineMap{NumDims: len(operands), Results: results}, operands, nil
}

// lookup resolves a required name field against the visible scope.
func (c *programCompiler) lookup(v cue.Value, field string, vars map[string]*ir.Value) (*ir.Value, error) {
	name, err := requiredString(v, field)
	if err != nil {
		return nil, err
	}
	val, ok := vars[name]
	if !ok {
		return nil, &CompileError{
			Field: field, Message: fmt.Sprintf("unknown value %q", name), Pos: v.Pos(),
		}
	}
	return val, nil
}

func requiredString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", &CompileError{Field: field, Message: field + " is required", Pos: v.Pos()}
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func stringList(v cue.Value) ([]string, error) {
	if !v.Exists() {
		return nil, fmt.Errorf("list is required")
	}
	iter, err := v.List()
	if err != nil {
		return nil, err
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func int64List(v cue.Value) ([]int64, error) {
	if !v.Exists() {
		return nil, fmt.Errorf("list is required")
	}
	iter, err := v.List()
	if err != nil {
		return nil, err
	}
	var out []int64
	for iter.Next() {
		n, err := iter.Value().Int64()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
