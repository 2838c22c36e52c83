package interp_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/agenthands/quanta/pkg/compiler"
	"github.com/agenthands/quanta/pkg/compiler/emitter"
	"github.com/agenthands/quanta/pkg/interp"
	"github.com/agenthands/quanta/pkg/vm"
)

func runQuanta(t *testing.T, src string, opts ...interp.Option) (string, error) {
	t.Helper()
	target, err := compiler.Compile(src)
	if err != nil {
		t.Fatalf("Compile(%q) failed: %v", src, err)
	}
	var out bytes.Buffer
	err = interp.New(append(opts, interp.WithStdout(&out))...).Run(context.Background(), target)
	return out.String(), err
}

func TestRunGeneratedPrograms(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"Repeat Runs Three Times", `repeat 3 write "hi" end`, "hi\nhi\nhi\n"},
		{"Declaration Default", "let x write x", "None\n"},
		{"Counter", "let i = 0 repeat 4 let i = i + 1 end write i", "4\n"},
		{"Elif Chain", "let x = 2 if x > 2 write 1 elif x > 1 write 2 else write 3 end", "2\n"},
		{"Empty Blocks", "if 1 end repeat 2 end write 0", "0\n"},
		{"Bitwise Operators", "write 6 & 3 write 6 | 3", "2\n7\n"},
		{"Nested Repeat", "repeat 2 repeat 2 write 1 end end", "1\n1\n1\n1\n"},
		{"String Concatenation", `let name = "Ada" write "hi " + name`, "hi Ada\n"},
		{"Big Number Canonical", "write 007", "7\n"},
		{"Computed Count", "let n = 3 repeat n - 1 write n end", "3\n3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := runQuanta(t, tt.src)
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("output mismatch.\nExpected:\n%q\nGot:\n%q", tt.want, got)
			}
		})
	}
}

func TestGeneratedTextIsWellFormed(t *testing.T) {
	sources := []string{
		"",
		"let x",
		"write 1",
		"if 1 write 1 elif 2 write 2 elif 3 write 3 else write 4 end",
		"repeat 3 if 1 repeat 2 let y = 1 end else end end",
		`let s = "a b" write s`,
	}
	in := interp.New()

	for _, src := range sources {
		for _, opts := range [][]emitter.Option{nil, {emitter.WithEndMarkers()}, {emitter.WithIndent("\t")}} {
			target, err := compiler.Compile(src, opts...)
			if err != nil {
				t.Fatalf("Compile(%q) failed: %v", src, err)
			}
			if err := in.Check(target); err != nil {
				t.Errorf("generated text for %q does not parse: %v\n%s", src, err, target)
			}
		}
	}
}

func TestAssignmentInConditionIsRejected(t *testing.T) {
	target, err := compiler.Compile("let x = 1 if x = 1 write x end")
	if err != nil {
		t.Fatalf("the compiler itself should accept this: %v", err)
	}
	if !strings.Contains(target, "if x = 1:") {
		t.Fatalf("expected the expression to pass through, got:\n%s", target)
	}

	err = interp.New().Run(context.Background(), target)
	if !errors.Is(err, interp.ErrSyntax) {
		t.Errorf("expected ErrSyntax, got %v", err)
	}
}

func TestRuntimeErrorsSurface(t *testing.T) {
	_, err := runQuanta(t, "write y")
	var ne *vm.NameError
	if !errors.As(err, &ne) {
		t.Errorf("expected NameError, got %v", err)
	}

	_, err = runQuanta(t, `repeat "3" write 1 end`)
	if err != nil {
		t.Errorf("int(\"3\") should be accepted as a count, got %v", err)
	}
}

func TestGasLimit(t *testing.T) {
	_, err := runQuanta(t, "repeat 1000000 let x = 1 end", interp.WithGas(50_000))
	if !errors.Is(err, vm.ErrGasExhausted) {
		t.Errorf("expected ErrGasExhausted, got %v", err)
	}
}

func TestContextCancellation(t *testing.T) {
	target, err := compiler.Compile("repeat 100000000 let x = 1 end")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = interp.New(interp.WithGas(1 << 40)).Run(ctx, target)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestConcurrentRuns(t *testing.T) {
	var wg sync.WaitGroup
	errs := make(chan error, 8)

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			target, err := compiler.Compile(fmt.Sprintf("repeat %d write %d end", n+1, n))
			if err != nil {
				errs <- err
				return
			}
			var out bytes.Buffer
			if err := interp.New(interp.WithStdout(&out)).Run(context.Background(), target); err != nil {
				errs <- err
				return
			}
			if lines := strings.Count(out.String(), "\n"); lines != n+1 {
				errs <- fmt.Errorf("run %d printed %d lines", n, lines)
			}
		}(i)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
