package emitter_test

import (
	"errors"
	"testing"

	"github.com/agenthands/quanta/pkg/compiler/ast"
	"github.com/agenthands/quanta/pkg/compiler/emitter"
)

func TestEmit(t *testing.T) {
	tests := []struct {
		name string
		prog *ast.Program
		want string
	}{
		{
			name: "Empty Program",
			prog: &ast.Program{},
			want: "",
		},
		{
			name: "Declaration Default",
			prog: &ast.Program{Body: []ast.Statement{&ast.Declaration{Name: "x"}}},
			want: "x = None",
		},
		{
			name: "Declaration And Print",
			prog: &ast.Program{Body: []ast.Statement{
				&ast.Declaration{Name: "x", Value: ast.Expr("5 * 2")},
				&ast.Print{Expression: "x"},
			}},
			want: "x = 5 * 2\nprint(x)",
		},
		{
			name: "Repeat",
			prog: &ast.Program{Body: []ast.Statement{
				&ast.Repeat{Count: "3", Body: []ast.Statement{&ast.Print{Expression: "1"}}},
			}},
			want: "for _ in range(int(3)):\n    print(1)",
		},
		{
			name: "If Elif Else Chain Stays Flat",
			prog: &ast.Program{Body: []ast.Statement{
				&ast.If{
					Test:       "a",
					Consequent: []ast.Statement{&ast.Print{Expression: "1"}},
					Alternate: &ast.If{
						Test:       "b",
						Consequent: []ast.Statement{&ast.Print{Expression: "2"}},
						Alternate:  &ast.Block{Body: []ast.Statement{&ast.Print{Expression: "3"}}},
					},
				},
			}},
			want: "if a:\n    print(1)\nelif b:\n    print(2)\nelse:\n    print(3)",
		},
		{
			name: "Nested Indentation",
			prog: &ast.Program{Body: []ast.Statement{
				&ast.Repeat{Count: "2", Body: []ast.Statement{
					&ast.If{
						Test:       "x > 1",
						Consequent: []ast.Statement{&ast.Print{Expression: `"big"`}},
						Alternate: &ast.If{
							Test:       "x > 0",
							Consequent: []ast.Statement{&ast.Print{Expression: `"small"`}},
						},
					},
					&ast.Declaration{Name: "x", Value: ast.Expr("x + 1")},
				}},
			}},
			want: "for _ in range(int(2)):\n" +
				"    if x > 1:\n" +
				"        print(\"big\")\n" +
				"    elif x > 0:\n" +
				"        print(\"small\")\n" +
				"    x = x + 1",
		},
		{
			name: "Empty Suites Become Pass",
			prog: &ast.Program{Body: []ast.Statement{
				&ast.If{Test: "x", Alternate: &ast.Block{}},
				&ast.Repeat{Count: "2"},
			}},
			want: "if x:\n    pass\nelse:\n    pass\nfor _ in range(int(2)):\n    pass",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := emitter.NewEmitter().Emit(tt.prog)
			if err != nil {
				t.Fatalf("Emit failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Generated code is not correct.\nExpected:\n%s\nGot:\n%s", tt.want, got)
			}
		})
	}
}

func TestEmitOptions(t *testing.T) {
	prog := &ast.Program{Body: []ast.Statement{
		&ast.If{
			Test:       "a",
			Consequent: []ast.Statement{&ast.Print{Expression: "1"}},
			Alternate:  &ast.Block{Body: []ast.Statement{&ast.Print{Expression: "2"}}},
		},
	}}

	t.Run("Indent", func(t *testing.T) {
		got, err := emitter.NewEmitter(emitter.WithIndent("\t")).Emit(prog)
		if err != nil {
			t.Fatal(err)
		}
		want := "if a:\n\tprint(1)\nelse:\n\tprint(2)"
		if got != want {
			t.Errorf("Expected:\n%s\nGot:\n%s", want, got)
		}
	})

	t.Run("EndMarkers", func(t *testing.T) {
		got, err := emitter.NewEmitter(emitter.WithEndMarkers()).Emit(prog)
		if err != nil {
			t.Fatal(err)
		}
		want := "if a:\n    print(1)\n# end\nelse:\n    print(2)\n# end"
		if got != want {
			t.Errorf("Expected:\n%s\nGot:\n%s", want, got)
		}
	})
}

// foreign satisfies ast.Statement by embedding, standing in for a statement
// kind the emitter does not know.
type foreign struct {
	ast.Statement
}

func TestEmitUnrecognizedNode(t *testing.T) {
	prog := &ast.Program{Body: []ast.Statement{
		&ast.Print{Expression: "1"},
		foreign{},
	}}

	out, err := emitter.NewEmitter().Emit(prog)

	var une *emitter.UnrecognizedNodeError
	if !errors.As(err, &une) {
		t.Fatalf("expected UnrecognizedNodeError, got %v", err)
	}
	if out != "" {
		t.Errorf("expected no partial output, got %q", out)
	}
}
