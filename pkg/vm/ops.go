package vm

// Instructions are 32 bits: the opcode in the top byte, a 24-bit argument below.
const (
	OP_HALT   uint8 = 0x00
	OP_NOOP   uint8 = 0x01
	OP_PUSH_C uint8 = 0x02
	OP_PUSH_L uint8 = 0x03
	OP_POP_L  uint8 = 0x04
	OP_DROP   uint8 = 0x05
	OP_DUP    uint8 = 0x06 // arg: depth below the top to copy from

	OP_ADD       uint8 = 0x10
	OP_SUB       uint8 = 0x11
	OP_MUL       uint8 = 0x12
	OP_DIV       uint8 = 0x13
	OP_FLOOR_DIV uint8 = 0x14
	OP_MOD       uint8 = 0x15
	OP_POW       uint8 = 0x16
	OP_BIT_AND   uint8 = 0x17
	OP_BIT_OR    uint8 = 0x18
	OP_BIT_XOR   uint8 = 0x19
	OP_LSHIFT    uint8 = 0x1A
	OP_RSHIFT    uint8 = 0x1B

	OP_NEG    uint8 = 0x20
	OP_POS    uint8 = 0x21
	OP_NOT    uint8 = 0x22
	OP_INVERT uint8 = 0x23

	OP_EQ  uint8 = 0x30
	OP_NE  uint8 = 0x31
	OP_LT  uint8 = 0x32
	OP_GT  uint8 = 0x33
	OP_LTE uint8 = 0x34
	OP_GTE uint8 = 0x35

	OP_JMP                 uint8 = 0x40
	OP_JMP_FALSE           uint8 = 0x41
	OP_JMP_IF_FALSE_OR_POP uint8 = 0x42
	OP_JMP_IF_TRUE_OR_POP  uint8 = 0x43

	OP_SYSCALL uint8 = 0x50
)

// MaxArg is the largest argument an instruction can carry.
const MaxArg = 0x00FFFFFF

// Encode packs an opcode and its argument into one instruction.
func Encode(op uint8, arg uint32) uint32 {
	return (uint32(op) << 24) | (arg & MaxArg)
}

// Decode splits an instruction into opcode and argument.
func Decode(instr uint32) (op uint8, arg uint32) {
	return uint8(instr >> 24), instr & MaxArg
}

var opNames = map[uint8]string{
	OP_HALT:                "HALT",
	OP_NOOP:                "NOOP",
	OP_PUSH_C:              "PUSH_C",
	OP_PUSH_L:              "PUSH_L",
	OP_POP_L:               "POP_L",
	OP_DROP:                "DROP",
	OP_DUP:                 "DUP",
	OP_ADD:                 "ADD",
	OP_SUB:                 "SUB",
	OP_MUL:                 "MUL",
	OP_DIV:                 "DIV",
	OP_FLOOR_DIV:           "FLOOR_DIV",
	OP_MOD:                 "MOD",
	OP_POW:                 "POW",
	OP_BIT_AND:             "BIT_AND",
	OP_BIT_OR:              "BIT_OR",
	OP_BIT_XOR:             "BIT_XOR",
	OP_LSHIFT:              "LSHIFT",
	OP_RSHIFT:              "RSHIFT",
	OP_NEG:                 "NEG",
	OP_POS:                 "POS",
	OP_NOT:                 "NOT",
	OP_INVERT:              "INVERT",
	OP_EQ:                  "EQ",
	OP_NE:                  "NE",
	OP_LT:                  "LT",
	OP_GT:                  "GT",
	OP_LTE:                 "LTE",
	OP_GTE:                 "GTE",
	OP_JMP:                 "JMP",
	OP_JMP_FALSE:           "JMP_FALSE",
	OP_JMP_IF_FALSE_OR_POP: "JMP_IF_FALSE_OR_POP",
	OP_JMP_IF_TRUE_OR_POP:  "JMP_IF_TRUE_OR_POP",
	OP_SYSCALL:             "SYSCALL",
}

// OpName returns the mnemonic for op, or "" if op is unknown.
func OpName(op uint8) string {
	return opNames[op]
}
