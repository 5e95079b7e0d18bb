package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstantMap(t *testing.T) {
	m := ConstantMap(0, 10, 3)

	assert.Equal(t, 3, m.NumResults())
	assert.Equal(t, 0, m.NumDims)
	assert.True(t, m.IsConstant())
	assert.Equal(t, int64(10), m.ConstantResult(1))
}

func TestIdentityMap(t *testing.T) {
	m := IdentityMap(2)

	require.Equal(t, 2, m.NumResults())
	assert.Equal(t, 2, m.NumDims)
	assert.Equal(t, DimExpr{Index: 0}, m.Results[0])
	assert.Equal(t, DimExpr{Index: 1}, m.Results[1])
	assert.False(t, m.IsConstant())
}

func TestSubMapKeepsOperandSignature(t *testing.T) {
	m := AffineMap{
		NumDims:    1,
		NumSymbols: 1,
		Results: []AffineExpr{
			ConstExpr{Value: 0},
			AddExpr{LHS: DimExpr{Index: 0}, RHS: SymbolExpr{Index: 0}},
		},
	}

	sub := m.SubMap(1)

	require.Equal(t, 1, sub.NumResults())
	assert.Equal(t, 1, sub.NumDims)
	assert.Equal(t, 1, sub.NumSymbols)
	assert.Equal(t, m.Results[1], sub.Results[0])
}

func TestMapEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b AffineMap
		want bool
	}{
		{
			name: "identical constants",
			a:    ConstantMap(0, 5),
			b:    ConstantMap(0, 5),
			want: true,
		},
		{
			name: "differing constants",
			a:    ConstantMap(0, 5),
			b:    ConstantMap(0, 6),
			want: false,
		},
		{
			name: "differing result counts",
			a:    ConstantMap(0),
			b:    ConstantMap(0, 0),
			want: false,
		},
		{
			name: "identity maps",
			a:    IdentityMap(2),
			b:    IdentityMap(2),
			want: true,
		},
		{
			name: "dim vs symbol",
			a:    AffineMap{NumDims: 1, Results: []AffineExpr{DimExpr{Index: 0}}},
			b:    AffineMap{NumDims: 1, Results: []AffineExpr{SymbolExpr{Index: 0}}},
			want: false,
		},
		{
			name: "nested expressions",
			a: AffineMap{NumDims: 1, Results: []AffineExpr{
				MulExpr{LHS: DimExpr{Index: 0}, RHS: ConstExpr{Value: 2}},
			}},
			b: AffineMap{NumDims: 1, Results: []AffineExpr{
				MulExpr{LHS: DimExpr{Index: 0}, RHS: ConstExpr{Value: 2}},
			}},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
		})
	}
}

func TestMapString(t *testing.T) {
	m := AffineMap{
		NumDims:    2,
		NumSymbols: 1,
		Results: []AffineExpr{
			DimExpr{Index: 0},
			AddExpr{LHS: MulExpr{LHS: DimExpr{Index: 1}, RHS: ConstExpr{Value: 2}}, RHS: SymbolExpr{Index: 0}},
		},
	}

	assert.Equal(t, "(d0, d1)[s0] -> (d0, ((d1 * 2) + s0))", m.String())
}
