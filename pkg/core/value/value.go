package value

import (
	"math"
	"strconv"
	"strings"
	"unsafe"
)

// Type represents the tag in the Value tagged union.
type Type uint8

const (
	TypeUnset Type = iota // slot never assigned; reading it is a NameError
	TypeNone
	TypeBool
	TypeInt
	TypeFloat
	TypeString
	TypeRange
	TypeIterator
)

var typeNames = [...]string{
	TypeUnset:    "unset",
	TypeNone:     "NoneType",
	TypeBool:     "bool",
	TypeInt:      "int",
	TypeFloat:    "float",
	TypeString:   "str",
	TypeRange:    "range",
	TypeIterator: "iterator",
}

// String returns the Python type name.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

// Value is a tagged union.
// Ints and bools live in Data, floats as their IEEE bits, strings as a packed
// arena offset/length. Ranges and iterators carry their state in Opaque.
type Value struct {
	Type   Type
	Data   uint64
	Opaque any
}

// None is the Python None singleton.
var None = Value{Type: TypeNone}

func FromInt(i int64) Value { return Value{Type: TypeInt, Data: uint64(i)} }

func FromFloat(f float64) Value { return Value{Type: TypeFloat, Data: math.Float64bits(f)} }

func FromBool(b bool) Value {
	if b {
		return Value{Type: TypeBool, Data: 1}
	}
	return Value{Type: TypeBool}
}

// PackString encodes offset and length into the Data register.
func PackString(offset, length uint32) uint64 {
	return (uint64(offset) << 32) | uint64(length)
}

// UnpackString retrieves a string view from the arena.
func UnpackString(data uint64, arena []byte) string {
	offset := uint32(data >> 32)
	length := uint32(data)

	if uint64(offset)+uint64(length) > uint64(len(arena)) {
		panic("value: memory access violation")
	}

	if length == 0 {
		return ""
	}

	return unsafe.String(&arena[offset], length)
}

// Int returns the value as int64. Bools count as 0 and 1.
func (v Value) Int() int64 {
	return int64(v.Data)
}

// Float returns the value as float64.
func (v Value) Float() float64 {
	if v.Type == TypeFloat {
		return math.Float64frombits(v.Data)
	}
	return float64(int64(v.Data))
}

// IsNumber reports whether v takes part in arithmetic (bool, int, float).
func (v Value) IsNumber() bool {
	return v.Type == TypeBool || v.Type == TypeInt || v.Type == TypeFloat
}

// Truthy applies Python truth testing.
func (v Value) Truthy() bool {
	switch v.Type {
	case TypeNone, TypeUnset:
		return false
	case TypeFloat:
		return v.Float() != 0
	case TypeString:
		return uint32(v.Data) != 0
	case TypeRange:
		return v.Opaque.(*Range).Len() > 0
	case TypeIterator:
		return true
	default:
		return v.Data != 0
	}
}

// Format returns what Python's str() would produce.
func (v Value) Format(arena []byte) string {
	switch v.Type {
	case TypeString:
		return UnpackString(v.Data, arena)
	case TypeInt:
		return strconv.FormatInt(int64(v.Data), 10)
	case TypeFloat:
		return FormatFloat(math.Float64frombits(v.Data))
	case TypeBool:
		if v.Data != 0 {
			return "True"
		}
		return "False"
	case TypeNone:
		return "None"
	case TypeRange:
		return v.Opaque.(*Range).String()
	case TypeIterator:
		return "<iterator>"
	default:
		return "<unset>"
	}
}

// FormatFloat mirrors Python's float repr: shortest round-trip digits,
// always a decimal point, exponent form outside [1e-4, 1e16).
func FormatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}

	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}
	return s
}
