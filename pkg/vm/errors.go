package vm

import (
	"errors"
	"fmt"
)

var (
	ErrStackOverflow  = errors.New("vm: stack overflow")
	ErrStackUnderflow = errors.New("vm: stack underflow")
	ErrGasExhausted   = errors.New("vm: gas exhausted")
	ErrDivisionByZero = errors.New("vm: division by zero")
	ErrUnknownOpcode  = errors.New("vm: unknown opcode")
	ErrBadInstruction = errors.New("vm: bad instruction")
	ErrUnknownSyscall = errors.New("vm: unknown syscall")
	ErrMemoryLimit    = errors.New("vm: memory limit exceeded")
)

// NameError is raised when a variable is read before it is assigned.
type NameError struct {
	Name string
}

func (e *NameError) Error() string {
	return fmt.Sprintf("vm: NameError: name '%s' is not defined", e.Name)
}

// TypeError is raised when an operation gets operands of the wrong type.
type TypeError struct {
	Msg string
}

func (e *TypeError) Error() string {
	return "vm: TypeError: " + e.Msg
}

// ValueError is raised when an operand has the right type but a bad value.
type ValueError struct {
	Msg string
}

func (e *ValueError) Error() string {
	return "vm: ValueError: " + e.Msg
}

// Errorf builds a TypeError, for use by host functions.
func Errorf(format string, args ...any) error {
	return &TypeError{Msg: fmt.Sprintf(format, args...)}
}
