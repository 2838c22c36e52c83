package stdlib

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/agenthands/quanta/pkg/core/value"
	"github.com/agenthands/quanta/pkg/vm"
)

var ErrStopIteration = errors.New("stdlib: StopIteration")

// Builtin binds a Python builtin name to its host function.
// Every builtin is called as ( arg1 ... argN N -- result ).
type Builtin struct {
	Name string
	Fn   vm.HostFunction
}

// Builtins is the syscall table. A builtin's syscall number is its index.
var Builtins = []Builtin{
	{"print", Print},
	{"int", Int},
	{"str", Str},
	{"float", Float},
	{"bool", Bool},
	{"range", Range},
	{"len", Len},
	{"abs", Abs},
	{"iter", Iter},
	{"has_next", HasNext},
	{"next", Next},
}

// Lookup returns the syscall number for a builtin name.
func Lookup(name string) (uint32, bool) {
	for i, b := range Builtins {
		if b.Name == name {
			return uint32(i), true
		}
	}
	return 0, false
}

// Registry returns the host functions in syscall order, ready for
// vm.Machine.HostRegistry.
func Registry() []vm.HostFunction {
	reg := make([]vm.HostFunction, len(Builtins))
	for i, b := range Builtins {
		reg[i] = b.Fn
	}
	return reg
}

// popArgs pops the argument count and then the arguments, in call order.
func popArgs(m *vm.Machine, name string, lo, hi int) ([]value.Value, error) {
	n := int(m.Pop().Int())
	if n < 0 || n > m.SP {
		return nil, vm.ErrStackUnderflow
	}
	args := make([]value.Value, n)
	for i := n - 1; i >= 0; i-- {
		args[i] = m.Pop()
	}
	if n < lo || (hi >= 0 && n > hi) {
		switch {
		case lo == hi:
			return nil, vm.Errorf("%s() takes exactly %d argument(s) (%d given)", name, lo, n)
		case hi < 0:
			return nil, vm.Errorf("%s() takes at least %d argument(s) (%d given)", name, lo, n)
		default:
			return nil, vm.Errorf("%s() takes from %d to %d arguments (%d given)", name, lo, hi, n)
		}
	}
	return args, nil
}

// Print: ( args... n -- None )
func Print(m *vm.Machine) error {
	args, err := popArgs(m, "print", 0, -1)
	if err != nil {
		return err
	}
	ss := make([]string, len(args))
	for i, a := range args {
		ss[i] = m.Format(a)
	}
	if _, err := fmt.Fprintln(m.Output(), strings.Join(ss, " ")); err != nil {
		return fmt.Errorf("stdlib: print: %w", err)
	}
	m.Push(value.None)
	return nil
}

func Int(m *vm.Machine) error {
	args, err := popArgs(m, "int", 0, 1)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		m.Push(value.FromInt(0))
		return nil
	}

	v := args[0]
	switch v.Type {
	case value.TypeInt, value.TypeBool:
		m.Push(value.FromInt(v.Int()))
	case value.TypeFloat:
		f := v.Float()
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return &vm.ValueError{Msg: "cannot convert float " + value.FormatFloat(f) + " to integer"}
		}
		m.Push(value.FromInt(int64(f)))
	case value.TypeString:
		s := m.String(v)
		i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return &vm.ValueError{Msg: fmt.Sprintf("invalid literal for int() with base 10: '%s'", s)}
		}
		m.Push(value.FromInt(i))
	default:
		return vm.Errorf("int() argument must be a string or a number, not '%s'", v.Type)
	}
	return nil
}

func Str(m *vm.Machine) error {
	args, err := popArgs(m, "str", 0, 1)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		m.PushString("")
		return nil
	}
	if args[0].Type == value.TypeString {
		m.Push(args[0])
		return nil
	}
	m.PushString(m.Format(args[0]))
	return nil
}

func Float(m *vm.Machine) error {
	args, err := popArgs(m, "float", 0, 1)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		m.Push(value.FromFloat(0))
		return nil
	}

	v := args[0]
	switch {
	case v.IsNumber():
		m.Push(value.FromFloat(v.Float()))
	case v.Type == value.TypeString:
		s := m.String(v)
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return &vm.ValueError{Msg: fmt.Sprintf("could not convert string to float: '%s'", s)}
		}
		m.Push(value.FromFloat(f))
	default:
		return vm.Errorf("float() argument must be a string or a number, not '%s'", v.Type)
	}
	return nil
}

func Bool(m *vm.Machine) error {
	args, err := popArgs(m, "bool", 0, 1)
	if err != nil {
		return err
	}
	m.Push(value.FromBool(len(args) == 1 && args[0].Truthy()))
	return nil
}

// Range: ( [start] stop [step] n -- range )
func Range(m *vm.Machine) error {
	args, err := popArgs(m, "range", 1, 3)
	if err != nil {
		return err
	}
	for _, a := range args {
		if a.Type != value.TypeInt && a.Type != value.TypeBool {
			return vm.Errorf("'%s' object cannot be interpreted as an integer", a.Type)
		}
	}

	r := &value.Range{Step: 1}
	switch len(args) {
	case 1:
		r.Stop = args[0].Int()
	case 2:
		r.Start, r.Stop = args[0].Int(), args[1].Int()
	case 3:
		r.Start, r.Stop, r.Step = args[0].Int(), args[1].Int(), args[2].Int()
		if r.Step == 0 {
			return &vm.ValueError{Msg: "range() arg 3 must not be zero"}
		}
	}
	m.Push(value.Value{Type: value.TypeRange, Opaque: r})
	return nil
}

func Len(m *vm.Machine) error {
	args, err := popArgs(m, "len", 1, 1)
	if err != nil {
		return err
	}
	switch v := args[0]; v.Type {
	case value.TypeString:
		m.Push(value.FromInt(int64(utf8.RuneCountInString(m.String(v)))))
	case value.TypeRange:
		m.Push(value.FromInt(v.Opaque.(*value.Range).Len()))
	default:
		return vm.Errorf("object of type '%s' has no len()", v.Type)
	}
	return nil
}

func Abs(m *vm.Machine) error {
	args, err := popArgs(m, "abs", 1, 1)
	if err != nil {
		return err
	}
	switch v := args[0]; v.Type {
	case value.TypeInt, value.TypeBool:
		i := v.Int()
		if i < 0 {
			i = -i
		}
		m.Push(value.FromInt(i))
	case value.TypeFloat:
		m.Push(value.FromFloat(math.Abs(v.Float())))
	default:
		return vm.Errorf("bad operand type for abs(): '%s'", v.Type)
	}
	return nil
}

// Iter: ( iterable 1 -- iterator )
func Iter(m *vm.Machine) error {
	args, err := popArgs(m, "iter", 1, 1)
	if err != nil {
		return err
	}
	switch v := args[0]; v.Type {
	case value.TypeRange:
		m.Push(value.Value{Type: value.TypeIterator, Opaque: value.NewRangeIterator(v.Opaque.(*value.Range))})
	case value.TypeString:
		m.Push(value.Value{Type: value.TypeIterator, Opaque: value.NewStringIterator(m.String(v))})
	case value.TypeIterator:
		m.Push(v)
	default:
		return vm.Errorf("'%s' object is not iterable", v.Type)
	}
	return nil
}

func iterator(v value.Value) (*value.Iterator, error) {
	if v.Type != value.TypeIterator {
		return nil, vm.Errorf("'%s' object is not an iterator", v.Type)
	}
	return v.Opaque.(*value.Iterator), nil
}

// HasNext: ( iterator 1 -- bool )
func HasNext(m *vm.Machine) error {
	args, err := popArgs(m, "has_next", 1, 1)
	if err != nil {
		return err
	}
	it, err := iterator(args[0])
	if err != nil {
		return err
	}
	m.Push(value.FromBool(it.HasNext()))
	return nil
}

// Next: ( iterator 1 -- item )
func Next(m *vm.Machine) error {
	args, err := popArgs(m, "next", 1, 1)
	if err != nil {
		return err
	}
	it, err := iterator(args[0])
	if err != nil {
		return err
	}
	v, s, ok := it.Next()
	if !ok {
		return ErrStopIteration
	}
	if v.Type == value.TypeString {
		m.PushString(s)
		return nil
	}
	m.Push(v)
	return nil
}
