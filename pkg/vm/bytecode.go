package vm

import (
	"fmt"
	"strings"

	"github.com/agenthands/quanta/pkg/core/value"
)

// Bytecode represents the compiled output of a program.
type Bytecode struct {
	Instructions []uint32
	Constants    []value.Value
	Arena        []byte
	LocalNames   []string // slot index -> variable name
}

// Disassemble renders one instruction per line, for debugging.
func (bc *Bytecode) Disassemble() string {
	var sb strings.Builder
	for ip, instr := range bc.Instructions {
		op, arg := Decode(instr)
		name := OpName(op)
		if name == "" {
			name = fmt.Sprintf("OP(0x%02x)", op)
		}
		fmt.Fprintf(&sb, "%04d %-20s %d", ip, name, arg)
		switch op {
		case OP_PUSH_C:
			if int(arg) < len(bc.Constants) {
				fmt.Fprintf(&sb, " ; %s", bc.Constants[arg].Format(bc.Arena))
			}
		case OP_PUSH_L, OP_POP_L:
			if int(arg) < len(bc.LocalNames) {
				fmt.Fprintf(&sb, " ; %s", bc.LocalNames[arg])
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
