// internal/codec/codec.go
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

// Type is the numeric interpretation of one or more 16-bit registers.
type Type int

const (
	U16 Type = iota + 1
	S16
	U32
	S32
	F32
	U64
	S64
	F64
	Bool
)

var typeNames = map[Type]string{
	U16:  "u16",
	S16:  "s16",
	U32:  "u32",
	S32:  "s32",
	F32:  "f32",
	U64:  "u64",
	S64:  "s64",
	F64:  "f64",
	Bool: "bool",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// WordCount returns the number of 16-bit registers the type occupies,
// or 0 for an unknown tag.
func (t Type) WordCount() int {
	switch t {
	case U16, S16, Bool:
		return 1
	case U32, S32, F32:
		return 2
	case U64, S64, F64:
		return 4
	default:
		return 0
	}
}

// ByteWidth returns the width of the decoded value in bytes.
func (t Type) ByteWidth() int { return t.WordCount() * 2 }

// ParseType parses the dtype vocabulary used by the CLI and config
// ("u16", "s16", ..., "f64", "bool").
func ParseType(s string) (Type, error) {
	for t, name := range typeNames {
		if name == strings.ToLower(s) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("codec: unknown type %q", s)
}

// ByteOrder selects the byte packing within each 16-bit word.
type ByteOrder int

// WordOrder selects which word of a multi-register value is most
// significant. The two axes are independent.
type WordOrder int

const (
	BigByte ByteOrder = iota + 1
	LittleByte
)

const (
	BigWord WordOrder = iota + 1
	LittleWord
)

func (o ByteOrder) String() string {
	if o == LittleByte {
		return "little"
	}
	return "big"
}

func (o WordOrder) String() string {
	if o == LittleWord {
		return "little"
	}
	return "big"
}

func ParseByteOrder(s string) (ByteOrder, error) {
	switch strings.ToLower(s) {
	case "big":
		return BigByte, nil
	case "little":
		return LittleByte, nil
	default:
		return 0, fmt.Errorf("codec: unknown byte order %q", s)
	}
}

func ParseWordOrder(s string) (WordOrder, error) {
	switch strings.ToLower(s) {
	case "big":
		return BigWord, nil
	case "little":
		return LittleWord, nil
	default:
		return 0, fmt.Errorf("codec: unknown word order %q", s)
	}
}

var (
	// ErrInsufficientData reports fewer registers than the type requires.
	ErrInsufficientData = errors.New("codec: insufficient data")
	// ErrUnsupportedType reports an unrecognized type tag.
	ErrUnsupportedType = errors.New("codec: unsupported type")
)

// Decode reassembles raw registers into a typed value.
//
// Words are reversed first when the word order is little, then each word is
// packed to two bytes per the byte order, and the first ByteWidth bytes of
// the resulting buffer are read most-significant-first as the target type.
// Extra trailing registers are ignored.
func Decode(words []uint16, t Type, bo ByteOrder, wo WordOrder) (Value, error) {
	n := t.WordCount()
	if n == 0 {
		return Value{}, fmt.Errorf("%w: tag %d", ErrUnsupportedType, int(t))
	}
	if len(words) < n {
		return Value{}, fmt.Errorf("%w: %s needs %d registers, got %d",
			ErrInsufficientData, t, n, len(words))
	}

	buf := packWords(words[:n], bo, wo)

	var bits uint64
	for _, b := range buf {
		bits = bits<<8 | uint64(b)
	}
	if t == Bool {
		if words[0] != 0 {
			bits = 1
		} else {
			bits = 0
		}
	}
	return Value{Type: t, Bits: bits}, nil
}

// Encode splits a typed value back into raw registers. It is the exact
// structural inverse of Decode for the same byte and word order.
func Encode(v Value, bo ByteOrder, wo WordOrder) ([]uint16, error) {
	n := v.Type.WordCount()
	if n == 0 {
		return nil, fmt.Errorf("%w: tag %d", ErrUnsupportedType, int(v.Type))
	}

	buf := make([]byte, 2*n)
	bits := v.Bits
	for i := len(buf) - 1; i >= 0; i-- {
		buf[i] = byte(bits)
		bits >>= 8
	}

	words := make([]uint16, n)
	for i := 0; i < n; i++ {
		if bo == LittleByte {
			words[i] = binary.LittleEndian.Uint16(buf[2*i:])
		} else {
			words[i] = binary.BigEndian.Uint16(buf[2*i:])
		}
	}
	if wo == LittleWord {
		reverse(words)
	}
	return words, nil
}

// Combine32 composes two explicitly-ordered registers into a 32-bit value,
// high word first. It is a convenience over the general big/big U32 decode,
// not a separate code path.
func Combine32(high, low uint16) uint32 {
	v, err := Decode([]uint16{high, low}, U32, BigByte, BigWord)
	if err != nil {
		// Unreachable: the input is always two registers.
		panic(err)
	}
	return uint32(v.Bits)
}

// HexString renders registers as four uppercase hex digits each, the
// form inverter model and serial number registers are published in.
func HexString(words []uint16) string {
	var sb strings.Builder
	for _, w := range words {
		fmt.Fprintf(&sb, "%04X", w)
	}
	return sb.String()
}

func packWords(words []uint16, bo ByteOrder, wo WordOrder) []byte {
	ordered := words
	if wo == LittleWord {
		ordered = make([]uint16, len(words))
		copy(ordered, words)
		reverse(ordered)
	}
	buf := make([]byte, 2*len(ordered))
	for i, w := range ordered {
		if bo == LittleByte {
			binary.LittleEndian.PutUint16(buf[2*i:], w)
		} else {
			binary.BigEndian.PutUint16(buf[2*i:], w)
		}
	}
	return buf
}

func reverse(words []uint16) {
	for i, j := 0, len(words)-1; i < j; i, j = i+1, j-1 {
		words[i], words[j] = words[j], words[i]
	}
}
