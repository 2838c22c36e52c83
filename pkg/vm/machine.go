package vm

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/agenthands/quanta/pkg/core/value"
)

// HostFunction is a Go function registered to the VM.
// It receives its arguments on the stack and must leave exactly one result.
type HostFunction func(m *Machine) error

const (
	StackDepth = 128

	// MaxArenaSize caps the string arena, which only grows during a run.
	MaxArenaSize = 16 << 20
)

// Machine is a single program's execution sandbox.
// The operand stack is a fixed-size array so the footprint is predictable.
type Machine struct {
	Stack [StackDepth]value.Value
	SP    int // Stack Pointer

	IP   int      // Instruction Pointer
	Code []uint32 // Bytecode instructions

	Constants []value.Value // Constant pool

	// Arena for string data. Strings created at run time are appended.
	Arena []byte

	Locals     []value.Value
	LocalNames []string

	HostRegistry []HostFunction

	// Stdout receives print output. Nil means os.Stdout.
	Stdout io.Writer
}

// Load installs bc into the machine and resets execution state.
// The bytecode itself is never mutated, so one Bytecode may back many machines.
func (m *Machine) Load(bc *Bytecode) {
	m.Reset()
	m.Code = bc.Instructions
	m.Constants = bc.Constants
	m.Arena = append(m.Arena[:0:0], bc.Arena...)
	m.LocalNames = bc.LocalNames
	m.Locals = make([]value.Value, len(bc.LocalNames))
}

// Reset clears the machine state for reuse.
func (m *Machine) Reset() {
	m.SP = 0
	m.IP = 0

	// Zero out the stack so nothing leaks between runs
	for i := range m.Stack {
		m.Stack[i] = value.Value{}
	}
	for i := range m.Locals {
		m.Locals[i] = value.Value{}
	}
}

// RegisterHostFunction adds a host-side Go function to the VM's registry.
func (m *Machine) RegisterHostFunction(fn HostFunction) uint32 {
	m.HostRegistry = append(m.HostRegistry, fn)
	return uint32(len(m.HostRegistry) - 1)
}

// Output returns the writer print should use.
func (m *Machine) Output() io.Writer {
	if m.Stdout == nil {
		return os.Stdout
	}
	return m.Stdout
}

// Push adds a value to the stack. Panics on overflow.
func (m *Machine) Push(v value.Value) {
	if m.SP >= StackDepth {
		panic(ErrStackOverflow)
	}
	m.Stack[m.SP] = v
	m.SP++
}

// Pop removes and returns the top value from the stack. Panics on underflow.
func (m *Machine) Pop() value.Value {
	if m.SP <= 0 {
		panic(ErrStackUnderflow)
	}
	m.SP--
	return m.Stack[m.SP]
}

// Peek returns the value depth slots below the top without removing it.
func (m *Machine) Peek(depth int) value.Value {
	if depth < 0 || m.SP-1-depth < 0 {
		panic(ErrStackUnderflow)
	}
	return m.Stack[m.SP-1-depth]
}

// NewString places s in the arena and returns a string value for it.
// Panics with ErrMemoryLimit when the arena would exceed MaxArenaSize.
func (m *Machine) NewString(s string) value.Value {
	if len(m.Arena)+len(s) > MaxArenaSize {
		panic(ErrMemoryLimit)
	}
	offset := uint32(len(m.Arena))
	m.Arena = append(m.Arena, s...)
	return value.Value{Type: value.TypeString, Data: value.PackString(offset, uint32(len(s)))}
}

// PushString is NewString followed by Push.
func (m *Machine) PushString(s string) {
	m.Push(m.NewString(s))
}

// String returns the Go string held by a string value.
func (m *Machine) String(v value.Value) string {
	return value.UnpackString(v.Data, m.Arena)
}

// Format renders v the way Python's str() does.
func (m *Machine) Format(v value.Value) string {
	return v.Format(m.Arena)
}

// Run executes instructions until HALT, error, or gas exhaustion.
// After ErrGasExhausted the machine can be resumed with another call to Run.
func (m *Machine) Run(gasLimit int) (err error) {
	// Safety net: convert internal stack and arena panics to errors
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok && (errors.Is(e, ErrStackOverflow) || errors.Is(e, ErrStackUnderflow) || errors.Is(e, ErrMemoryLimit)) {
				err = e
				return
			}

			// Go runtime errors (index out of range) mean malformed bytecode
			if re, ok := r.(runtime.Error); ok {
				err = fmt.Errorf("%w at ip %d: %v", ErrBadInstruction, m.IP, re)
				return
			}

			panic(r)
		}
	}()

	code := m.Code

	for i := 0; i < gasLimit; i++ {
		op, arg := Decode(code[m.IP])

		switch op {
		case OP_HALT:
			return nil

		case OP_NOOP:
			m.IP++

		case OP_PUSH_C:
			m.Push(m.Constants[arg])
			m.IP++

		case OP_PUSH_L:
			v := m.Locals[arg]
			if v.Type == value.TypeUnset {
				return &NameError{Name: m.localName(arg)}
			}
			m.Push(v)
			m.IP++

		case OP_POP_L:
			m.Locals[arg] = m.Pop()
			m.IP++

		case OP_DROP:
			m.Pop()
			m.IP++

		case OP_DUP:
			m.Push(m.Peek(int(arg)))
			m.IP++

		case OP_ADD, OP_SUB, OP_MUL, OP_DIV, OP_FLOOR_DIV, OP_MOD, OP_POW,
			OP_BIT_AND, OP_BIT_OR, OP_BIT_XOR, OP_LSHIFT, OP_RSHIFT:
			b := m.Pop()
			a := m.Pop()
			res, err := m.binary(op, a, b)
			if err != nil {
				return err
			}
			m.Push(res)
			m.IP++

		case OP_NEG, OP_POS, OP_NOT, OP_INVERT:
			res, err := unary(op, m.Pop())
			if err != nil {
				return err
			}
			m.Push(res)
			m.IP++

		case OP_EQ, OP_NE:
			b := m.Pop()
			a := m.Pop()
			eq := m.Equal(a, b)
			m.Push(value.FromBool(eq == (op == OP_EQ)))
			m.IP++

		case OP_LT, OP_GT, OP_LTE, OP_GTE:
			b := m.Pop()
			a := m.Pop()
			res, err := m.compare(op, a, b)
			if err != nil {
				return err
			}
			m.Push(res)
			m.IP++

		case OP_JMP:
			m.IP = int(arg)

		case OP_JMP_FALSE:
			if m.Pop().Truthy() {
				m.IP++
			} else {
				m.IP = int(arg)
			}

		case OP_JMP_IF_FALSE_OR_POP:
			if m.Peek(0).Truthy() {
				m.Pop()
				m.IP++
			} else {
				m.IP = int(arg)
			}

		case OP_JMP_IF_TRUE_OR_POP:
			if m.Peek(0).Truthy() {
				m.IP = int(arg)
			} else {
				m.Pop()
				m.IP++
			}

		case OP_SYSCALL:
			if int(arg) >= len(m.HostRegistry) {
				return fmt.Errorf("%w: %d", ErrUnknownSyscall, arg)
			}
			if err := m.HostRegistry[arg](m); err != nil {
				return err
			}
			m.IP++

		default:
			return fmt.Errorf("%w: 0x%02x at ip %d", ErrUnknownOpcode, op, m.IP)
		}
	}

	return ErrGasExhausted
}

func (m *Machine) localName(slot uint32) string {
	if int(slot) < len(m.LocalNames) {
		return m.LocalNames[slot]
	}
	return fmt.Sprintf("<local %d>", slot)
}
