package python

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-python/gpython/ast"
	"github.com/go-python/gpython/parser"
	"github.com/go-python/gpython/py"

	"github.com/agenthands/quanta/pkg/core/value"
	"github.com/agenthands/quanta/pkg/stdlib"
	"github.com/agenthands/quanta/pkg/vm"
)

// ErrSyntax wraps every error gpython's parser reports.
var ErrSyntax = errors.New("python: syntax error")

// UnsupportedError reports valid Python outside the subset the VM runs.
type UnsupportedError struct {
	Construct string
	Line      int
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("python: unsupported %s at line %d", e.Construct, e.Line)
}

func unsupported(node ast.Ast, construct string) error {
	if construct == "" {
		construct = strings.TrimPrefix(fmt.Sprintf("%T", node), "*ast.")
	}
	return &UnsupportedError{Construct: construct, Line: node.GetLineno()}
}

type loopContext struct {
	startIP    uint32
	breakJumps []int
	// for-loops keep their iterator on the stack; break must drop it
	dropOnBreak bool
}

type Compiler struct {
	instructions  []uint32
	constants     []value.Value
	locals        map[string]int
	localNames    []string
	arena         []byte
	stringOffsets map[string]uint32
	loops         []*loopContext

	// hosts are extra callable names, numbered after stdlib.Builtins.
	hosts []string
}

// NewCompiler returns a compiler that accepts calls to the stdlib builtins
// and to the named host functions. Host function i gets syscall number
// len(stdlib.Builtins)+i, so a machine running the output needs
// append(stdlib.Registry(), fns...) as its HostRegistry.
func NewCompiler(hosts ...string) *Compiler {
	return &Compiler{hosts: hosts}
}

// lookup resolves a callable name to its syscall number.
func (c *Compiler) lookup(name string) (uint32, bool) {
	if idx, ok := stdlib.Lookup(name); ok {
		return idx, true
	}
	for i, h := range c.hosts {
		if h == name {
			return uint32(len(stdlib.Builtins) + i), true
		}
	}
	return 0, false
}

// Parse runs gpython's parser over src in exec mode.
func Parse(src string) (*ast.Module, error) {
	mod, err := parser.Parse(strings.NewReader(src), "<string>", py.ExecMode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}

	module, ok := mod.(*ast.Module)
	if !ok {
		return nil, fmt.Errorf("%w: expected *ast.Module, got %T", ErrSyntax, mod)
	}
	return module, nil
}

// Compile is a convenience for NewCompiler().Compile(src).
func Compile(src string) (*vm.Bytecode, error) {
	return NewCompiler().Compile(src)
}

// Compile parses src and lowers it to bytecode. The compiler can be reused;
// each call starts from a clean state and the result shares nothing with it.
func (c *Compiler) Compile(src string) (*vm.Bytecode, error) {
	c.instructions = nil
	c.constants = nil
	c.locals = make(map[string]int)
	c.localNames = nil
	c.loops = c.loops[:0]
	c.arena = nil
	c.stringOffsets = make(map[string]uint32)

	module, err := Parse(src)
	if err != nil {
		return nil, err
	}

	if err := c.emitBody(module.Body); err != nil {
		return nil, err
	}
	c.emitOp(vm.OP_HALT, 0)

	if len(c.instructions) > vm.MaxArg || len(c.constants) > vm.MaxArg {
		return nil, fmt.Errorf("python: program too large (%d instructions)", len(c.instructions))
	}

	return &vm.Bytecode{
		Instructions: c.instructions,
		Constants:    c.constants,
		Arena:        c.arena,
		LocalNames:   c.localNames,
	}, nil
}

func (c *Compiler) emitOp(op uint8, arg uint32) {
	c.instructions = append(c.instructions, vm.Encode(op, arg))
}

// emitJump emits a jump with a placeholder target and returns its index.
func (c *Compiler) emitJump(op uint8) int {
	c.emitOp(op, 0)
	return len(c.instructions) - 1
}

// patch points the jump at idx to the next instruction to be emitted.
func (c *Compiler) patch(idx int) {
	op, _ := vm.Decode(c.instructions[idx])
	c.instructions[idx] = vm.Encode(op, uint32(len(c.instructions)))
}

func (c *Compiler) addConstant(v value.Value) uint32 {
	for i, existing := range c.constants {
		if existing.Type == v.Type && existing.Data == v.Data {
			return uint32(i)
		}
	}
	c.constants = append(c.constants, v)
	return uint32(len(c.constants) - 1)
}

func (c *Compiler) pushConstant(v value.Value) {
	c.emitOp(vm.OP_PUSH_C, c.addConstant(v))
}

func (c *Compiler) packNewString(s string) uint64 {
	if offset, ok := c.stringOffsets[s]; ok {
		return value.PackString(offset, uint32(len(s)))
	}
	offset := uint32(len(c.arena))
	c.arena = append(c.arena, s...)
	c.stringOffsets[s] = offset
	return value.PackString(offset, uint32(len(s)))
}

func (c *Compiler) getLocalIndex(name string) uint32 {
	if idx, ok := c.locals[name]; ok {
		return uint32(idx)
	}
	idx := len(c.localNames)
	c.locals[name] = idx
	c.localNames = append(c.localNames, name)
	return uint32(idx)
}

// emitSyscall emits a builtin call whose arguments are already on the stack.
func (c *Compiler) emitSyscall(name string, argc int) {
	idx, ok := c.lookup(name)
	if !ok {
		panic("python: no syscall for " + name)
	}
	c.pushConstant(value.FromInt(int64(argc)))
	c.emitOp(vm.OP_SYSCALL, idx)
}

func (c *Compiler) emitBody(body []ast.Stmt) error {
	for _, stmt := range body {
		if err := c.emitStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) storeName(target ast.Expr) error {
	name, ok := target.(*ast.Name)
	if !ok {
		return unsupported(target, "assignment target "+strings.TrimPrefix(fmt.Sprintf("%T", target), "*ast."))
	}
	c.emitOp(vm.OP_POP_L, c.getLocalIndex(string(name.Id)))
	return nil
}

func (c *Compiler) emitStmt(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.Assign:
		if err := c.emitExpr(s.Value); err != nil {
			return err
		}
		// a = b = v stores the same value into every target
		for i, target := range s.Targets {
			if i < len(s.Targets)-1 {
				c.emitOp(vm.OP_DUP, 0)
			}
			if err := c.storeName(target); err != nil {
				return err
			}
		}

	case *ast.AugAssign:
		name, ok := s.Target.(*ast.Name)
		if !ok {
			return unsupported(s, "augmented assignment target")
		}
		op, ok := binOps[s.Op]
		if !ok {
			return unsupported(s, fmt.Sprintf("operator %v", s.Op))
		}
		idx := c.getLocalIndex(string(name.Id))
		c.emitOp(vm.OP_PUSH_L, idx)
		if err := c.emitExpr(s.Value); err != nil {
			return err
		}
		c.emitOp(op, 0)
		c.emitOp(vm.OP_POP_L, idx)

	case *ast.ExprStmt:
		if err := c.emitExpr(s.Value); err != nil {
			return err
		}
		c.emitOp(vm.OP_DROP, 0)

	case *ast.If:
		if err := c.emitExpr(s.Test); err != nil {
			return err
		}
		jumpFalse := c.emitJump(vm.OP_JMP_FALSE)
		if err := c.emitBody(s.Body); err != nil {
			return err
		}
		if len(s.Orelse) > 0 {
			jumpEnd := c.emitJump(vm.OP_JMP)
			c.patch(jumpFalse)
			if err := c.emitBody(s.Orelse); err != nil {
				return err
			}
			c.patch(jumpEnd)
		} else {
			c.patch(jumpFalse)
		}

	case *ast.While:
		ctx := &loopContext{startIP: uint32(len(c.instructions))}
		if err := c.emitExpr(s.Test); err != nil {
			return err
		}
		jumpFalse := c.emitJump(vm.OP_JMP_FALSE)
		c.loops = append(c.loops, ctx)
		if err := c.emitBody(s.Body); err != nil {
			return err
		}
		c.loops = c.loops[:len(c.loops)-1]
		c.emitOp(vm.OP_JMP, ctx.startIP)
		c.patch(jumpFalse)
		if err := c.emitBody(s.Orelse); err != nil {
			return err
		}
		for _, idx := range ctx.breakJumps {
			c.patch(idx)
		}

	case *ast.For:
		// ( iterator ) stays on the stack for the whole loop
		if err := c.emitExpr(s.Iter); err != nil {
			return err
		}
		c.emitSyscall("iter", 1)
		ctx := &loopContext{startIP: uint32(len(c.instructions)), dropOnBreak: true}
		c.emitOp(vm.OP_DUP, 0)
		c.emitSyscall("has_next", 1)
		jumpEnd := c.emitJump(vm.OP_JMP_FALSE)
		c.emitOp(vm.OP_DUP, 0)
		c.emitSyscall("next", 1)
		if err := c.storeName(s.Target); err != nil {
			return err
		}
		c.loops = append(c.loops, ctx)
		if err := c.emitBody(s.Body); err != nil {
			return err
		}
		c.loops = c.loops[:len(c.loops)-1]
		c.emitOp(vm.OP_JMP, ctx.startIP)
		c.patch(jumpEnd)
		c.emitOp(vm.OP_DROP, 0)
		if err := c.emitBody(s.Orelse); err != nil {
			return err
		}
		for _, idx := range ctx.breakJumps {
			c.patch(idx)
		}

	case *ast.Break:
		if len(c.loops) == 0 {
			return fmt.Errorf("%w: 'break' outside loop at line %d", ErrSyntax, s.GetLineno())
		}
		ctx := c.loops[len(c.loops)-1]
		if ctx.dropOnBreak {
			c.emitOp(vm.OP_DROP, 0)
		}
		ctx.breakJumps = append(ctx.breakJumps, c.emitJump(vm.OP_JMP))

	case *ast.Continue:
		if len(c.loops) == 0 {
			return fmt.Errorf("%w: 'continue' not properly in loop at line %d", ErrSyntax, s.GetLineno())
		}
		c.emitOp(vm.OP_JMP, c.loops[len(c.loops)-1].startIP)

	case *ast.Pass:

	default:
		return unsupported(stmt, "")
	}
	return nil
}

var binOps = map[ast.OperatorNumber]uint8{
	ast.Add:      vm.OP_ADD,
	ast.Sub:      vm.OP_SUB,
	ast.Mult:     vm.OP_MUL,
	ast.Div:      vm.OP_DIV,
	ast.FloorDiv: vm.OP_FLOOR_DIV,
	ast.Modulo:   vm.OP_MOD,
	ast.Pow:      vm.OP_POW,
	ast.BitAnd:   vm.OP_BIT_AND,
	ast.BitOr:    vm.OP_BIT_OR,
	ast.BitXor:   vm.OP_BIT_XOR,
	ast.LShift:   vm.OP_LSHIFT,
	ast.RShift:   vm.OP_RSHIFT,
}

var unaryOps = map[ast.UnaryOpNumber]uint8{
	ast.Invert: vm.OP_INVERT,
	ast.Not:    vm.OP_NOT,
	ast.UAdd:   vm.OP_POS,
	ast.USub:   vm.OP_NEG,
}

var cmpOps = map[ast.CmpOp]uint8{
	ast.Eq:    vm.OP_EQ,
	ast.NotEq: vm.OP_NE,
	ast.Lt:    vm.OP_LT,
	ast.LtE:   vm.OP_LTE,
	ast.Gt:    vm.OP_GT,
	ast.GtE:   vm.OP_GTE,
	ast.Is:    vm.OP_EQ, // no object identity; values compare by ==
	ast.IsNot: vm.OP_NE,
}

func (c *Compiler) emitExpr(expr ast.Expr) error {
	switch e := expr.(type) {
	case *ast.Num:
		switch n := e.N.(type) {
		case py.Int:
			c.pushConstant(value.FromInt(int64(n)))
		case py.Float:
			c.pushConstant(value.FromFloat(float64(n)))
		case *py.BigInt:
			return unsupported(e, "integer literal beyond 64 bits")
		default:
			return unsupported(e, fmt.Sprintf("numeric literal %T", e.N))
		}

	case *ast.Str:
		c.pushConstant(value.Value{Type: value.TypeString, Data: c.packNewString(string(e.S))})

	case *ast.NameConstant:
		switch e.Value {
		case py.True:
			c.pushConstant(value.FromBool(true))
		case py.False:
			c.pushConstant(value.FromBool(false))
		default:
			c.pushConstant(value.None)
		}

	case *ast.Name:
		c.emitOp(vm.OP_PUSH_L, c.getLocalIndex(string(e.Id)))

	case *ast.BinOp:
		op, ok := binOps[e.Op]
		if !ok {
			return unsupported(e, fmt.Sprintf("operator %v", e.Op))
		}
		if err := c.emitExpr(e.Left); err != nil {
			return err
		}
		if err := c.emitExpr(e.Right); err != nil {
			return err
		}
		c.emitOp(op, 0)

	case *ast.UnaryOp:
		op, ok := unaryOps[e.Op]
		if !ok {
			return unsupported(e, "unary operator")
		}
		if err := c.emitExpr(e.Operand); err != nil {
			return err
		}
		c.emitOp(op, 0)

	case *ast.BoolOp:
		jump := vm.OP_JMP_IF_TRUE_OR_POP
		if e.Op == ast.And {
			jump = vm.OP_JMP_IF_FALSE_OR_POP
		}
		var ends []int
		for i, v := range e.Values {
			if err := c.emitExpr(v); err != nil {
				return err
			}
			if i < len(e.Values)-1 {
				ends = append(ends, c.emitJump(jump))
			}
		}
		for _, idx := range ends {
			c.patch(idx)
		}

	case *ast.Compare:
		if len(e.Ops) != 1 {
			return unsupported(e, "chained comparison")
		}
		op, ok := cmpOps[e.Ops[0]]
		if !ok {
			return unsupported(e, fmt.Sprintf("comparison %v", e.Ops[0]))
		}
		if err := c.emitExpr(e.Left); err != nil {
			return err
		}
		if err := c.emitExpr(e.Comparators[0]); err != nil {
			return err
		}
		c.emitOp(op, 0)

	case *ast.IfExp:
		if err := c.emitExpr(e.Test); err != nil {
			return err
		}
		jumpFalse := c.emitJump(vm.OP_JMP_FALSE)
		if err := c.emitExpr(e.Body); err != nil {
			return err
		}
		jumpEnd := c.emitJump(vm.OP_JMP)
		c.patch(jumpFalse)
		if err := c.emitExpr(e.Orelse); err != nil {
			return err
		}
		c.patch(jumpEnd)

	case *ast.Call:
		fn, ok := e.Func.(*ast.Name)
		if !ok {
			return unsupported(e, "call of "+strings.TrimPrefix(fmt.Sprintf("%T", e.Func), "*ast."))
		}
		name := string(fn.Id)
		if _, ok := c.lookup(name); !ok {
			return unsupported(e, "call to '"+name+"'")
		}
		if len(e.Keywords) > 0 || e.Starargs != nil || e.Kwargs != nil {
			return unsupported(e, "keyword or star arguments")
		}
		for _, arg := range e.Args {
			if err := c.emitExpr(arg); err != nil {
				return err
			}
		}
		c.emitSyscall(name, len(e.Args))

	default:
		return unsupported(expr, "")
	}
	return nil
}
