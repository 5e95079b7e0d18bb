package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScalarTypeString(t *testing.T) {
	assert.Equal(t, "f32", F32.String())
	assert.Equal(t, "f64", F64.String())
	assert.Equal(t, "i32", I32.String())
	assert.Equal(t, "i1", I1.String())
}

func TestParseScalarType(t *testing.T) {
	tests := []struct {
		in      string
		want    ScalarType
		wantErr bool
	}{
		{in: "f32", want: F32},
		{in: "f64", want: F64},
		{in: "i32", want: I32},
		{in: "i64", want: I64},
		{in: "i16", want: ScalarType{Kind: KindSInt, Width: 16}},
		{in: "u32", wantErr: true},
		{in: "f", wantErr: true},
		{in: "", wantErr: true},
		{in: "i128", wantErr: true},
		{in: "ix", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseScalarType(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseScalarTypeRoundTrip(t *testing.T) {
	for _, typ := range []ScalarType{F32, F64, I32, I64} {
		got, err := ParseScalarType(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, got)
	}
}

func TestMemRefTypeString(t *testing.T) {
	assert.Equal(t, "memref<10x5xf32>", MemRefType{Elem: F32, Shape: []int64{10, 5}}.String())
	assert.Equal(t, "memref<8xi64>", MemRefType{Elem: I64, Shape: []int64{8}}.String())
}
