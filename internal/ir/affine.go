package ir

import (
	"fmt"
	"strings"
)

// AffineExpr is the sealed set of affine expression nodes. An
// expression evaluates over a map's dimension and symbol operands.
type AffineExpr interface {
	affineExpr()
	String() string
}

// DimExpr references dimension operand i of the enclosing map.
type DimExpr struct {
	Index int
}

func (DimExpr) affineExpr() {}

func (e DimExpr) String() string { return fmt.Sprintf("d%d", e.Index) }

// SymbolExpr references symbol operand i of the enclosing map.
type SymbolExpr struct {
	Index int
}

func (SymbolExpr) affineExpr() {}

func (e SymbolExpr) String() string { return fmt.Sprintf("s%d", e.Index) }

// ConstExpr is an integer constant.
type ConstExpr struct {
	Value int64
}

func (ConstExpr) affineExpr() {}

func (e ConstExpr) String() string { return fmt.Sprintf("%d", e.Value) }

// AddExpr is the sum of two affine expressions.
type AddExpr struct {
	LHS, RHS AffineExpr
}

func (AddExpr) affineExpr() {}

func (e AddExpr) String() string {
	return fmt.Sprintf("(%s + %s)", e.LHS.String(), e.RHS.String())
}

// MulExpr is the product of an affine expression and a constant (the
// affine restriction: at least one factor must be constant).
type MulExpr struct {
	LHS AffineExpr
	RHS ConstExpr
}

func (MulExpr) affineExpr() {}

func (e MulExpr) String() string {
	return fmt.Sprintf("(%s * %s)", e.LHS.String(), e.RHS.String())
}

// AffineMap is a multi-result affine function over dimension and
// symbol operands. Loop bound maps and memory index maps are both
// AffineMaps; a bound map's results pair one-to-one with a parallel
// loop's dimensions.
type AffineMap struct {
	NumDims    int
	NumSymbols int
	Results    []AffineExpr
}

// NumResults returns the number of result expressions.
func (m AffineMap) NumResults() int { return len(m.Results) }

// SubMap restricts the map to result i, keeping the operand signature.
// The lowering uses this to peel one dimension's bound off a
// multi-dimensional bound map.
func (m AffineMap) SubMap(i int) AffineMap {
	return AffineMap{
		NumDims:    m.NumDims,
		NumSymbols: m.NumSymbols,
		Results:    []AffineExpr{m.Results[i]},
	}
}

// ConstantMap builds a zero-operand map with the given constant results.
func ConstantMap(values ...int64) AffineMap {
	results := make([]AffineExpr, len(values))
	for i, v := range values {
		results[i] = ConstExpr{Value: v}
	}
	return AffineMap{Results: results}
}

// IdentityMap builds the n-dimensional identity map (d0, ..., dn-1).
// Memory index maps produced by the frontend are identity maps over
// the induction variable operands.
func IdentityMap(n int) AffineMap {
	results := make([]AffineExpr, n)
	for i := range results {
		results[i] = DimExpr{Index: i}
	}
	return AffineMap{NumDims: n, Results: results}
}

// IsConstant reports whether every result is a bare constant.
func (m AffineMap) IsConstant() bool {
	for _, r := range m.Results {
		if _, ok := r.(ConstExpr); !ok {
			return false
		}
	}
	return true
}

// ConstantResult returns result i's constant value. It is only valid
// on constant results; callers check IsConstant first.
func (m AffineMap) ConstantResult(i int) int64 {
	return m.Results[i].(ConstExpr).Value
}

// String renders the map, e.g. "(d0, d1) -> (d0, (d1 * 2))".
func (m AffineMap) String() string {
	var sb strings.Builder
	sb.WriteString("(")
	for i := 0; i < m.NumDims; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "d%d", i)
	}
	sb.WriteString(")")
	if m.NumSymbols > 0 {
		sb.WriteString("[")
		for i := 0; i < m.NumSymbols; i++ {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "s%d", i)
		}
		sb.WriteString("]")
	}
	sb.WriteString(" -> (")
	for i, r := range m.Results {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(r.String())
	}
	sb.WriteString(")")
	return sb.String()
}

// Equal reports structural equality of two maps.
func (m AffineMap) Equal(other AffineMap) bool {
	if m.NumDims != other.NumDims || m.NumSymbols != other.NumSymbols || len(m.Results) != len(other.Results) {
		return false
	}
	for i := range m.Results {
		if !exprEqual(m.Results[i], other.Results[i]) {
			return false
		}
	}
	return true
}

func exprEqual(a, b AffineExpr) bool {
	switch ae := a.(type) {
	case DimExpr:
		be, ok := b.(DimExpr)
		return ok && ae.Index == be.Index
	case SymbolExpr:
		be, ok := b.(SymbolExpr)
		return ok && ae.Index == be.Index
	case ConstExpr:
		be, ok := b.(ConstExpr)
		return ok && ae.Value == be.Value
	case AddExpr:
		be, ok := b.(AddExpr)
		return ok && exprEqual(ae.LHS, be.LHS) && exprEqual(ae.RHS, be.RHS)
	case MulExpr:
		be, ok := b.(MulExpr)
		return ok && exprEqual(ae.LHS, be.LHS) && ae.RHS == be.RHS
	default:
		return false
	}
}
