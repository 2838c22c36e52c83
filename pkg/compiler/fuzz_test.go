package compiler_test

import (
	"testing"

	"github.com/agenthands/quanta/pkg/compiler"
)

// FuzzCompile checks that the pipeline is total and deterministic on
// arbitrary input.
func FuzzCompile(f *testing.F) {
	for _, seed := range []string{
		"let x = 5",
		"write \"hi\"",
		"if x > 1 write 1 elif x < 0 write 2 else write 3 end",
		"repeat 3 write 1 end",
		"let x = 5 @",
		"write \"open",
		"end end",
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, src string) {
		first, err1 := compiler.Compile(src)
		second, err2 := compiler.Compile(src)
		if (err1 == nil) != (err2 == nil) || first != second {
			t.Fatalf("compile of %q is not deterministic", src)
		}
	})
}
