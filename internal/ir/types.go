package ir

import (
	"fmt"
	"strings"
)

// ScalarKind classifies scalar element types.
//
// Only signed integers and floats exist. Unsigned integers are
// deliberately absent: the reduction lowering defines max/min only for
// signed and float comparisons, and admitting unsigned elements would
// silently produce wrong comparisons. See AggKind.
type ScalarKind uint8

const (
	// KindFloat is an IEEE floating point element.
	KindFloat ScalarKind = iota
	// KindSInt is a signed integer element.
	KindSInt
)

// String returns the kind's short name.
func (k ScalarKind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindSInt:
		return "sint"
	default:
		return fmt.Sprintf("ScalarKind(%d)", uint8(k))
	}
}

// Type is the sealed set of value types.
type Type interface {
	irType()
	String() string
}

// ScalarType is a scalar value type (loop indices, loaded elements,
// arithmetic results).
type ScalarType struct {
	Kind  ScalarKind
	Width uint8 // in bits
}

func (ScalarType) irType() {}

// String renders the type in the printer's syntax, e.g. "f32" or "i64".
func (t ScalarType) String() string {
	switch t.Kind {
	case KindFloat:
		return fmt.Sprintf("f%d", t.Width)
	case KindSInt:
		return fmt.Sprintf("i%d", t.Width)
	default:
		return fmt.Sprintf("?%d", t.Width)
	}
}

// IsFloat reports whether the element kind is floating point.
func (t ScalarType) IsFloat() bool { return t.Kind == KindFloat }

// Common scalar types.
var (
	F32   = ScalarType{Kind: KindFloat, Width: 32}
	F64   = ScalarType{Kind: KindFloat, Width: 64}
	I32   = ScalarType{Kind: KindSInt, Width: 32}
	I64   = ScalarType{Kind: KindSInt, Width: 64}
	I1    = ScalarType{Kind: KindSInt, Width: 1} // comparison results
	Index = ScalarType{Kind: KindSInt, Width: 64} // induction variables
)

// ParseScalarType parses the printer syntax ("f32", "i64", ...).
func ParseScalarType(s string) (ScalarType, error) {
	if len(s) < 2 {
		return ScalarType{}, fmt.Errorf("invalid scalar type %q", s)
	}
	var kind ScalarKind
	switch s[0] {
	case 'f':
		kind = KindFloat
	case 'i':
		kind = KindSInt
	default:
		return ScalarType{}, fmt.Errorf("invalid scalar type %q: unknown kind %q", s, s[0])
	}
	var width int
	if _, err := fmt.Sscanf(s[1:], "%d", &width); err != nil || width <= 0 || width > 64 {
		return ScalarType{}, fmt.Errorf("invalid scalar type %q: bad width", s)
	}
	return ScalarType{Kind: kind, Width: uint8(width)}, nil
}

// MemRefType is the type of a buffer value: an element type plus a
// static shape. Layout and allocation are decided elsewhere; the IR
// only carries enough to address elements.
type MemRefType struct {
	Elem  ScalarType
	Shape []int64
}

func (MemRefType) irType() {}

// String renders the type, e.g. "memref<10x5xf32>".
func (t MemRefType) String() string {
	var sb strings.Builder
	sb.WriteString("memref<")
	for _, d := range t.Shape {
		fmt.Fprintf(&sb, "%dx", d)
	}
	sb.WriteString(t.Elem.String())
	sb.WriteString(">")
	return sb.String()
}
