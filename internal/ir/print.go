package ir

import (
	"fmt"
	"strings"
)

// Print renders the module as deterministic text. The same module
// structure always prints identically, so printed output is usable for
// golden-file comparison and for failure diagnostics.
func Print(m *Module) string {
	p := &printer{names: make(map[*Value]string), taken: make(map[string]bool)}
	p.printModule(m)
	return p.sb.String()
}

// PrintOp renders a single operation (without trailing newline
// trimming; nested regions are included).
func PrintOp(op *Operation) string {
	p := &printer{names: make(map[*Value]string), taken: make(map[string]bool)}
	p.printOp(op, 0)
	return strings.TrimRight(p.sb.String(), "\n")
}

type printer struct {
	sb    strings.Builder
	names map[*Value]string
	taken map[string]bool
	next  int
}

// name returns the printer name for v, assigning one on first use.
// Name hints win when unique; anonymous values get %0, %1, ...
func (p *printer) name(v *Value) string {
	if n, ok := p.names[v]; ok {
		return n
	}
	var n string
	if hint := v.Name(); hint != "" && !p.taken["%"+hint] {
		n = "%" + hint
	} else {
		n = fmt.Sprintf("%%%d", p.next)
		p.next++
	}
	p.names[v] = n
	p.taken[n] = true
	return n
}

func (p *printer) indent(depth int) {
	for i := 0; i < depth; i++ {
		p.sb.WriteString("  ")
	}
}

func (p *printer) printModule(m *Module) {
	fmt.Fprintf(&p.sb, "module @%s {\n", m.Name)
	for _, fn := range m.Funcs {
		p.printFunc(fn, 1)
	}
	p.sb.WriteString("}\n")
}

func (p *printer) printFunc(fn *Func, depth int) {
	p.indent(depth)
	fmt.Fprintf(&p.sb, "func @%s(", fn.Name)
	entry := fn.Entry()
	for i, arg := range entry.Args() {
		if i > 0 {
			p.sb.WriteString(", ")
		}
		fmt.Fprintf(&p.sb, "%s: %s", p.name(arg), arg.Type().String())
	}
	p.sb.WriteString(") {\n")
	p.printBlockBody(entry, depth+1)
	p.indent(depth)
	p.sb.WriteString("}\n")
}

func (p *printer) printBlockBody(b *Block, depth int) {
	for op := b.Front(); op != nil; op = op.Next() {
		// Operandless terminators are implied by the structure.
		if op.Name().IsTerminator() && op.NumOperands() == 0 {
			continue
		}
		p.printOp(op, depth)
	}
}

func (p *printer) printOp(op *Operation, depth int) {
	p.indent(depth)
	switch op.Name() {
	case TileParallel:
		p.printParallel(AsParallel(op), depth)
	case AffineFor:
		p.printFor(AsFor(op), depth)
	case TileReduce:
		red := AsReduce(op)
		fmt.Fprintf(&p.sb, "tile.reduce %s %s, %s : %s\n",
			red.Agg(), p.name(red.Val()), p.access(red.Buffer(), red.Map(), red.Indices()),
			red.Buffer().Type().String())
	case AffineLoad:
		ld := AsLoad(op)
		fmt.Fprintf(&p.sb, "%s = affine.load %s : %s\n",
			p.name(ld.Loaded()), p.access(ld.Buffer(), ld.Map(), ld.Indices()),
			ld.Buffer().Type().String())
	case AffineStore:
		st := AsStore(op)
		fmt.Fprintf(&p.sb, "affine.store %s, %s : %s\n",
			p.name(st.Stored()), p.access(st.Buffer(), st.Map(), st.Indices()),
			st.Buffer().Type().String())
	case ArithConstant:
		attrs := op.Attrs().(*ConstAttrs)
		typ := op.Result(0).Type().(ScalarType)
		if typ.IsFloat() {
			fmt.Fprintf(&p.sb, "%s = arith.constant %e : %s\n", p.name(op.Result(0)), attrs.FloatVal, typ)
		} else {
			fmt.Fprintf(&p.sb, "%s = arith.constant %d : %s\n", p.name(op.Result(0)), attrs.IntVal, typ)
		}
	case ArithAddF, ArithAddI, ArithMulF, ArithMulI:
		fmt.Fprintf(&p.sb, "%s = %s %s, %s : %s\n",
			p.name(op.Result(0)), op.Name(), p.name(op.Operand(0)), p.name(op.Operand(1)),
			op.Result(0).Type().String())
	case ArithCmpF:
		fmt.Fprintf(&p.sb, "%s = arith.cmpf %s, %s, %s : %s\n",
			p.name(op.Result(0)), op.Attrs().(*CmpFAttrs).Pred, p.name(op.Operand(0)), p.name(op.Operand(1)),
			op.Operand(0).Type().String())
	case ArithCmpI:
		fmt.Fprintf(&p.sb, "%s = arith.cmpi %s, %s, %s : %s\n",
			p.name(op.Result(0)), op.Attrs().(*CmpIAttrs).Pred, p.name(op.Operand(0)), p.name(op.Operand(1)),
			op.Operand(0).Type().String())
	case ArithSelect:
		fmt.Fprintf(&p.sb, "%s = arith.select %s, %s, %s : %s\n",
			p.name(op.Result(0)), p.name(op.Operand(0)), p.name(op.Operand(1)), p.name(op.Operand(2)),
			op.Result(0).Type().String())
	case TileYield, AffineYield:
		fmt.Fprintf(&p.sb, "%s\n", op.Name())
	default:
		p.printGeneric(op)
	}
}

// printGeneric renders an op the printer has no dedicated form for.
func (p *printer) printGeneric(op *Operation) {
	if op.NumResults() > 0 {
		for i := 0; i < op.NumResults(); i++ {
			if i > 0 {
				p.sb.WriteString(", ")
			}
			p.sb.WriteString(p.name(op.Result(i)))
		}
		p.sb.WriteString(" = ")
	}
	p.sb.WriteString(string(op.Name()))
	for i := 0; i < op.NumOperands(); i++ {
		if i == 0 {
			p.sb.WriteString(" ")
		} else {
			p.sb.WriteString(", ")
		}
		p.sb.WriteString(p.name(op.Operand(i)))
	}
	p.sb.WriteString("\n")
}

func (p *printer) printParallel(par ParallelOp, depth int) {
	body := par.Body()
	p.sb.WriteString("tile.parallel (")
	for i, arg := range body.Args() {
		if i > 0 {
			p.sb.WriteString(", ")
		}
		p.sb.WriteString(p.name(arg))
	}
	p.sb.WriteString(") = (")
	p.printBoundTuple(par.LowerMap(), par.Operands())
	p.sb.WriteString(") to (")
	p.printBoundTuple(par.UpperMap(), par.Operands())
	p.sb.WriteString(") step (")
	for i, s := range par.Steps() {
		if i > 0 {
			p.sb.WriteString(", ")
		}
		fmt.Fprintf(&p.sb, "%d", s)
	}
	p.sb.WriteString(") {\n")
	p.printBlockBody(body, depth+1)
	p.indent(depth)
	p.sb.WriteString("}\n")
}

func (p *printer) printFor(loop ForOp, depth int) {
	fmt.Fprintf(&p.sb, "affine.for %s = ", p.name(loop.InductionVar()))
	p.printBound(loop.LowerMap().Results[0], loop.LowerMap(), loop.Operands())
	p.sb.WriteString(" to ")
	p.printBound(loop.UpperMap().Results[0], loop.UpperMap(), loop.Operands())
	fmt.Fprintf(&p.sb, " step %d {\n", loop.Step())
	p.printBlockBody(loop.Body(), depth+1)
	p.indent(depth)
	p.sb.WriteString("}\n")
}

func (p *printer) printBoundTuple(m AffineMap, operands []*Value) {
	for i, r := range m.Results {
		if i > 0 {
			p.sb.WriteString(", ")
		}
		p.printBound(r, m, operands)
	}
}

// printBound renders a single bound result: bare integer for constant
// results, otherwise the expression with operand names substituted.
func (p *printer) printBound(expr AffineExpr, m AffineMap, operands []*Value) {
	if c, ok := expr.(ConstExpr); ok {
		fmt.Fprintf(&p.sb, "%d", c.Value)
		return
	}
	p.sb.WriteString(p.exprString(expr, m, operands))
}

// access renders "%buf[idx, idx]" with index-map results applied to
// the index operands.
func (p *printer) access(buffer *Value, m AffineMap, idxs []*Value) string {
	var sb strings.Builder
	sb.WriteString(p.name(buffer))
	sb.WriteString("[")
	for i, r := range m.Results {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.exprString(r, m, idxs))
	}
	sb.WriteString("]")
	return sb.String()
}

// exprString renders an affine expression with dN/sN replaced by the
// printer names of the corresponding operands.
func (p *printer) exprString(e AffineExpr, m AffineMap, operands []*Value) string {
	switch ex := e.(type) {
	case DimExpr:
		if ex.Index < len(operands) {
			return p.name(operands[ex.Index])
		}
		return ex.String()
	case SymbolExpr:
		i := m.NumDims + ex.Index
		if i < len(operands) {
			return p.name(operands[i])
		}
		return ex.String()
	case ConstExpr:
		return ex.String()
	case AddExpr:
		return fmt.Sprintf("(%s + %s)", p.exprString(ex.LHS, m, operands), p.exprString(ex.RHS, m, operands))
	case MulExpr:
		return fmt.Sprintf("(%s * %d)", p.exprString(ex.LHS, m, operands), ex.RHS.Value)
	default:
		return "?"
	}
}
