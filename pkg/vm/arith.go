package vm

import (
	"cmp"
	"math"
	"strings"

	"github.com/agenthands/quanta/pkg/core/value"
)

var opSymbols = map[uint8]string{
	OP_ADD:       "+",
	OP_SUB:       "-",
	OP_MUL:       "*",
	OP_DIV:       "/",
	OP_FLOOR_DIV: "//",
	OP_MOD:       "%",
	OP_POW:       "**",
	OP_BIT_AND:   "&",
	OP_BIT_OR:    "|",
	OP_BIT_XOR:   "^",
	OP_LSHIFT:    "<<",
	OP_RSHIFT:    ">>",
	OP_NEG:       "-",
	OP_POS:       "+",
	OP_INVERT:    "~",
	OP_LT:        "<",
	OP_GT:        ">",
	OP_LTE:       "<=",
	OP_GTE:       ">=",
}

func operandError(op uint8, a, b value.Value) error {
	return Errorf("unsupported operand type(s) for %s: '%s' and '%s'", opSymbols[op], a.Type, b.Type)
}

func isIntegral(v value.Value) bool {
	return v.Type == value.TypeInt || v.Type == value.TypeBool
}

// binary applies a two-operand arithmetic or bitwise opcode.
func (m *Machine) binary(op uint8, a, b value.Value) (value.Value, error) {
	if a.Type == value.TypeString || b.Type == value.TypeString {
		return m.stringBinary(op, a, b)
	}
	if !a.IsNumber() || !b.IsNumber() {
		return value.Value{}, operandError(op, a, b)
	}

	if isIntegral(a) && isIntegral(b) {
		return intBinary(op, a.Int(), b.Int())
	}

	switch op {
	case OP_BIT_AND, OP_BIT_OR, OP_BIT_XOR, OP_LSHIFT, OP_RSHIFT:
		return value.Value{}, operandError(op, a, b)
	}
	return floatBinary(op, a.Float(), b.Float())
}

func intBinary(op uint8, x, y int64) (value.Value, error) {
	switch op {
	case OP_ADD:
		return value.FromInt(x + y), nil
	case OP_SUB:
		return value.FromInt(x - y), nil
	case OP_MUL:
		return value.FromInt(x * y), nil
	case OP_DIV:
		if y == 0 {
			return value.Value{}, ErrDivisionByZero
		}
		return value.FromFloat(float64(x) / float64(y)), nil
	case OP_FLOOR_DIV:
		if y == 0 {
			return value.Value{}, ErrDivisionByZero
		}
		q := x / y
		if (x%y != 0) && ((x < 0) != (y < 0)) {
			q--
		}
		return value.FromInt(q), nil
	case OP_MOD:
		if y == 0 {
			return value.Value{}, ErrDivisionByZero
		}
		r := x % y
		if r != 0 && ((r < 0) != (y < 0)) {
			r += y
		}
		return value.FromInt(r), nil
	case OP_POW:
		if y < 0 {
			if x == 0 {
				return value.Value{}, ErrDivisionByZero
			}
			return value.FromFloat(math.Pow(float64(x), float64(y))), nil
		}
		res := int64(1)
		for base := x; y > 0; y >>= 1 {
			if y&1 == 1 {
				res *= base
			}
			base *= base
		}
		return value.FromInt(res), nil
	case OP_BIT_AND:
		return value.FromInt(x & y), nil
	case OP_BIT_OR:
		return value.FromInt(x | y), nil
	case OP_BIT_XOR:
		return value.FromInt(x ^ y), nil
	case OP_LSHIFT, OP_RSHIFT:
		if y < 0 {
			return value.Value{}, &ValueError{Msg: "negative shift count"}
		}
		if y > 63 {
			y = 63
		}
		if op == OP_LSHIFT {
			return value.FromInt(x << uint(y)), nil
		}
		return value.FromInt(x >> uint(y)), nil
	}
	return value.Value{}, ErrUnknownOpcode
}

func floatBinary(op uint8, x, y float64) (value.Value, error) {
	switch op {
	case OP_ADD:
		return value.FromFloat(x + y), nil
	case OP_SUB:
		return value.FromFloat(x - y), nil
	case OP_MUL:
		return value.FromFloat(x * y), nil
	case OP_DIV:
		if y == 0 {
			return value.Value{}, ErrDivisionByZero
		}
		return value.FromFloat(x / y), nil
	case OP_FLOOR_DIV:
		if y == 0 {
			return value.Value{}, ErrDivisionByZero
		}
		return value.FromFloat(math.Floor(x / y)), nil
	case OP_MOD:
		if y == 0 {
			return value.Value{}, ErrDivisionByZero
		}
		r := math.Mod(x, y)
		if r != 0 && ((r < 0) != (y < 0)) {
			r += y
		}
		return value.FromFloat(r), nil
	case OP_POW:
		if x == 0 && y < 0 {
			return value.Value{}, ErrDivisionByZero
		}
		return value.FromFloat(math.Pow(x, y)), nil
	}
	return value.Value{}, ErrUnknownOpcode
}

// stringBinary handles concatenation and repetition.
func (m *Machine) stringBinary(op uint8, a, b value.Value) (value.Value, error) {
	switch {
	case op == OP_ADD && a.Type == value.TypeString && b.Type == value.TypeString:
		return m.NewString(m.String(a) + m.String(b)), nil
	case op == OP_MUL && a.Type == value.TypeString && isIntegral(b):
		return m.repeat(m.String(a), b.Int())
	case op == OP_MUL && isIntegral(a) && b.Type == value.TypeString:
		return m.repeat(m.String(b), a.Int())
	}
	return value.Value{}, operandError(op, a, b)
}

func (m *Machine) repeat(s string, n int64) (value.Value, error) {
	if n <= 0 || s == "" {
		return m.NewString(""), nil
	}
	if n > int64(MaxArenaSize/len(s)) {
		return value.Value{}, ErrMemoryLimit
	}
	return m.NewString(strings.Repeat(s, int(n))), nil
}

// unary applies NEG, POS, NOT or INVERT.
func unary(op uint8, a value.Value) (value.Value, error) {
	if op == OP_NOT {
		return value.FromBool(!a.Truthy()), nil
	}

	switch {
	case op == OP_INVERT && isIntegral(a):
		return value.FromInt(^a.Int()), nil
	case op == OP_NEG && isIntegral(a):
		return value.FromInt(-a.Int()), nil
	case op == OP_NEG && a.Type == value.TypeFloat:
		return value.FromFloat(-a.Float()), nil
	case op == OP_POS && isIntegral(a):
		return value.FromInt(a.Int()), nil
	case op == OP_POS && a.Type == value.TypeFloat:
		return a, nil
	}
	return value.Value{}, Errorf("bad operand type for unary %s: '%s'", opSymbols[op], a.Type)
}

// Equal reports Python == between two values.
func (m *Machine) Equal(a, b value.Value) bool {
	switch {
	case a.IsNumber() && b.IsNumber():
		if a.Type == value.TypeFloat || b.Type == value.TypeFloat {
			return a.Float() == b.Float()
		}
		return a.Int() == b.Int()
	case a.Type != b.Type:
		return false
	case a.Type == value.TypeString:
		return m.String(a) == m.String(b)
	case a.Type == value.TypeNone:
		return true
	case a.Type == value.TypeRange:
		ra, rb := a.Opaque.(*value.Range), b.Opaque.(*value.Range)
		return *ra == *rb
	}
	return a.Opaque == b.Opaque
}

// compare applies an ordering opcode.
func (m *Machine) compare(op uint8, a, b value.Value) (value.Value, error) {
	var c int
	switch {
	case a.IsNumber() && b.IsNumber():
		if a.Type == value.TypeFloat || b.Type == value.TypeFloat {
			x, y := a.Float(), b.Float()
			if math.IsNaN(x) || math.IsNaN(y) {
				return value.FromBool(false), nil
			}
			c = cmp.Compare(x, y)
		} else {
			c = cmp.Compare(a.Int(), b.Int())
		}
	case a.Type == value.TypeString && b.Type == value.TypeString:
		c = strings.Compare(m.String(a), m.String(b))
	default:
		return value.Value{}, Errorf("'%s' not supported between instances of '%s' and '%s'", opSymbols[op], a.Type, b.Type)
	}

	switch op {
	case OP_LT:
		return value.FromBool(c < 0), nil
	case OP_GT:
		return value.FromBool(c > 0), nil
	case OP_LTE:
		return value.FromBool(c <= 0), nil
	default:
		return value.FromBool(c >= 0), nil
	}
}
