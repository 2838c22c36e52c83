package emitter

import (
	"fmt"
	"strings"

	"github.com/agenthands/quanta/pkg/compiler/ast"
)

// NoneLiteral is emitted for a declaration without an initializer.
const NoneLiteral = "None"

// DefaultIndent is one indentation level of generated Python.
const DefaultIndent = "    "

// UnrecognizedNodeError is returned when the tree holds a node kind the
// emitter has no case for.
type UnrecognizedNodeError struct {
	Node ast.Node
}

func (e *UnrecognizedNodeError) Error() string {
	return fmt.Sprintf("emitter: unrecognized node type %T", e.Node)
}

// Option configures an Emitter.
type Option func(*Emitter)

// WithIndent sets the indentation unit.
func WithIndent(unit string) Option {
	return func(e *Emitter) { e.indentUnit = unit }
}

// WithEndMarkers appends a "# end" comment after every closed block.
func WithEndMarkers() Option {
	return func(e *Emitter) { e.endMarkers = true }
}

// Emitter renders a Quanta tree as Python source.
// It keeps no state between Emit calls.
type Emitter struct {
	indentUnit string
	endMarkers bool
}

func NewEmitter(opts ...Option) *Emitter {
	e := &Emitter{indentUnit: DefaultIndent}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Emit renders prog. Lines are joined with "\n" and there is no trailing
// newline; an empty program yields "".
func (e *Emitter) Emit(prog *ast.Program) (string, error) {
	lines, err := e.emitBody(nil, prog.Body, 0)
	if err != nil {
		return "", err
	}
	return strings.Join(lines, "\n"), nil
}

func (e *Emitter) indent(depth int) string {
	return strings.Repeat(e.indentUnit, depth)
}

func (e *Emitter) emitBody(lines []string, body []ast.Statement, depth int) ([]string, error) {
	for _, stmt := range body {
		var err error
		lines, err = e.emitNode(lines, stmt, depth)
		if err != nil {
			return nil, err
		}
	}
	return lines, nil
}

// emitSuite renders a block that follows a colon. Python forbids an empty
// suite, so an empty body becomes "pass".
func (e *Emitter) emitSuite(lines []string, body []ast.Statement, depth int) ([]string, error) {
	if len(body) == 0 {
		lines = append(lines, e.indent(depth+1)+"pass")
	} else {
		var err error
		if lines, err = e.emitBody(lines, body, depth+1); err != nil {
			return nil, err
		}
	}
	if e.endMarkers {
		lines = append(lines, e.indent(depth)+"# end")
	}
	return lines, nil
}

func (e *Emitter) emitNode(lines []string, node ast.Node, depth int) ([]string, error) {
	ind := e.indent(depth)

	switch n := node.(type) {
	case *ast.Program:
		return e.emitBody(lines, n.Body, depth)

	case *ast.Block:
		return e.emitBody(lines, n.Body, depth)

	case *ast.Declaration:
		value := NoneLiteral
		if n.Value != nil {
			value = string(*n.Value)
		}
		return append(lines, fmt.Sprintf("%s%s = %s", ind, n.Name, value)), nil

	case *ast.Print:
		return append(lines, fmt.Sprintf("%sprint(%s)", ind, n.Expression)), nil

	case *ast.If:
		return e.emitIf(lines, n, depth, "if")

	case *ast.Repeat:
		lines = append(lines, fmt.Sprintf("%sfor _ in range(int(%s)):", ind, n.Count))
		return e.emitSuite(lines, n.Body, depth)

	default:
		return nil, &UnrecognizedNodeError{Node: node}
	}
}

// emitIf renders an if/elif chain. Chained arms stay at the same depth.
func (e *Emitter) emitIf(lines []string, n *ast.If, depth int, keyword string) ([]string, error) {
	ind := e.indent(depth)

	lines = append(lines, fmt.Sprintf("%s%s %s:", ind, keyword, n.Test))
	lines, err := e.emitSuite(lines, n.Consequent, depth)
	if err != nil {
		return nil, err
	}

	switch alt := n.Alternate.(type) {
	case nil:
		return lines, nil
	case *ast.If:
		return e.emitIf(lines, alt, depth, "elif")
	case *ast.Block:
		lines = append(lines, ind+"else:")
		return e.emitSuite(lines, alt.Body, depth)
	default:
		return nil, &UnrecognizedNodeError{Node: alt}
	}
}
