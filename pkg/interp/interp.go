// Package interp runs generated Python text on the embedded VM.
package interp

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/agenthands/quanta/pkg/compiler/python"
	"github.com/agenthands/quanta/pkg/stdlib"
	"github.com/agenthands/quanta/pkg/vm"
)

// ErrSyntax is returned, wrapped, when the text is not valid Python.
var ErrSyntax = python.ErrSyntax

const (
	DefaultGas = 1_000_000

	// sliceGas is how many instructions run between context checks.
	sliceGas = 10_000
)

type Option func(*Interpreter)

// WithGas caps the total number of VM instructions a run may execute.
func WithGas(gas int) Option {
	return func(in *Interpreter) { in.gas = gas }
}

// WithStdout sends print output to w instead of os.Stdout.
func WithStdout(w io.Writer) Option {
	return func(in *Interpreter) { in.stdout = w }
}

// Interpreter is safe for concurrent use; every run gets its own machine.
type Interpreter struct {
	gas    int
	stdout io.Writer
}

func New(opts ...Option) *Interpreter {
	in := &Interpreter{gas: DefaultGas, stdout: os.Stdout}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Check reports whether src parses as Python, without running it.
func (in *Interpreter) Check(src string) error {
	_, err := python.Parse(src)
	return err
}

// Run compiles src and executes it.
func (in *Interpreter) Run(ctx context.Context, src string) error {
	bc, err := python.Compile(src)
	if err != nil {
		return err
	}
	return in.Exec(ctx, bc)
}

// Exec executes precompiled bytecode. The VM runs in gas slices and ctx is
// checked between them.
func (in *Interpreter) Exec(ctx context.Context, bc *vm.Bytecode) error {
	m := vm.GetMachine()
	defer vm.PutMachine(m)

	m.Stdout = in.stdout
	m.HostRegistry = stdlib.Registry()
	m.Load(bc)

	remaining := in.gas
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		slice := min(sliceGas, remaining)
		err := m.Run(slice)
		if !errors.Is(err, vm.ErrGasExhausted) {
			return err
		}

		remaining -= slice
		if remaining <= 0 {
			return vm.ErrGasExhausted
		}
	}
}
