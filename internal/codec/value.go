// internal/codec/value.go
package codec

import (
	"math"
	"strconv"
)

// Value is a decoded register value: the type tag plus the raw bit pattern,
// zero-extended into 64 bits. Interpretation happens in the accessors so a
// value can round-trip through Encode without loss.
type Value struct {
	Type Type
	Bits uint64
}

// UintValue builds a value for an unsigned type, masking to its width.
func UintValue(t Type, u uint64) Value {
	return Value{Type: t, Bits: u & widthMask(t)}
}

// IntValue builds a value for a signed type from its two's-complement form.
func IntValue(t Type, i int64) Value {
	return Value{Type: t, Bits: uint64(i) & widthMask(t)}
}

func Float32Value(f float32) Value {
	return Value{Type: F32, Bits: uint64(math.Float32bits(f))}
}

func Float64Value(f float64) Value {
	return Value{Type: F64, Bits: math.Float64bits(f)}
}

func BoolValue(b bool) Value {
	v := Value{Type: Bool}
	if b {
		v.Bits = 1
	}
	return v
}

// Uint64 returns the value as an unsigned integer.
func (v Value) Uint64() uint64 { return v.Bits }

// Int64 returns the value sign-extended from its declared width.
func (v Value) Int64() int64 {
	shift := 64 - uint(v.Type.ByteWidth())*8
	return int64(v.Bits<<shift) >> shift
}

// Bool reports whether the raw pattern is nonzero.
func (v Value) Bool() bool { return v.Bits != 0 }

// Float64 converts the value to a float64 for scaling and display.
func (v Value) Float64() float64 {
	switch v.Type {
	case S16, S32, S64:
		return float64(v.Int64())
	case F32:
		return float64(math.Float32frombits(uint32(v.Bits)))
	case F64:
		return math.Float64frombits(v.Bits)
	case Bool:
		if v.Bits != 0 {
			return 1
		}
		return 0
	default:
		return float64(v.Bits)
	}
}

func (v Value) String() string {
	switch v.Type {
	case S16, S32, S64:
		return strconv.FormatInt(v.Int64(), 10)
	case F32:
		return strconv.FormatFloat(v.Float64(), 'g', -1, 32)
	case F64:
		return strconv.FormatFloat(v.Float64(), 'g', -1, 64)
	case Bool:
		return strconv.FormatBool(v.Bool())
	default:
		return strconv.FormatUint(v.Bits, 10)
	}
}

func widthMask(t Type) uint64 {
	switch t.ByteWidth() {
	case 2:
		return 0xFFFF
	case 4:
		return 0xFFFFFFFF
	default:
		return math.MaxUint64
	}
}
