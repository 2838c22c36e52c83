package vm_test

import (
	"testing"

	"github.com/agenthands/quanta/pkg/core/value"
	"github.com/agenthands/quanta/pkg/vm"
)

// counterLoop is the lowering of `i = 0; while i < 1000: i = i + 1`.
func counterLoop() *vm.Bytecode {
	return &vm.Bytecode{
		Instructions: []uint32{
			vm.Encode(vm.OP_PUSH_C, 0),
			vm.Encode(vm.OP_POP_L, 0),
			vm.Encode(vm.OP_PUSH_L, 0),
			vm.Encode(vm.OP_PUSH_C, 1),
			vm.Encode(vm.OP_LT, 0),
			vm.Encode(vm.OP_JMP_FALSE, 11),
			vm.Encode(vm.OP_PUSH_L, 0),
			vm.Encode(vm.OP_PUSH_C, 2),
			vm.Encode(vm.OP_ADD, 0),
			vm.Encode(vm.OP_POP_L, 0),
			vm.Encode(vm.OP_JMP, 2),
			vm.Encode(vm.OP_HALT, 0),
		},
		Constants:  []value.Value{value.FromInt(0), value.FromInt(1000), value.FromInt(1)},
		LocalNames: []string{"i"},
	}
}

func BenchmarkVMLoop(b *testing.B) {
	bc := counterLoop()
	m := &vm.Machine{}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Load(bc)
		if err := m.Run(10000); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkStringEquality(b *testing.B) {
	bc := &vm.Bytecode{
		Instructions: []uint32{
			vm.Encode(vm.OP_PUSH_C, 0),
			vm.Encode(vm.OP_PUSH_C, 1),
			vm.Encode(vm.OP_EQ, 0),
			vm.Encode(vm.OP_HALT, 0),
		},
		Constants: []value.Value{
			{Type: value.TypeString, Data: value.PackString(0, 5)},
			{Type: value.TypeString, Data: value.PackString(5, 5)},
		},
		Arena: []byte("hellohello"),
	}
	m := &vm.Machine{}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Load(bc)
		if err := m.Run(100); err != nil {
			b.Fatal(err)
		}
	}
}

func TestLoopDoesNotAllocate(t *testing.T) {
	bc := counterLoop()
	m := &vm.Machine{}
	m.Load(bc)

	allocs := testing.AllocsPerRun(10, func() {
		m.Reset()
		if err := m.Run(10000); err != nil {
			t.Fatal(err)
		}
	})
	if allocs != 0 {
		t.Errorf("expected 0 allocations per run, got %v", allocs)
	}
}
