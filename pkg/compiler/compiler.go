// Package compiler drives the Quanta pipeline: tokenize, parse, emit.
//
// Errors from each stage are returned unchanged so callers can match them
// with errors.As against *lexer.InvalidCharacterError,
// *lexer.UnterminatedStringError, *parser.ParseError and
// *emitter.UnrecognizedNodeError.
package compiler

import (
	"github.com/agenthands/quanta/pkg/compiler/ast"
	"github.com/agenthands/quanta/pkg/compiler/emitter"
	"github.com/agenthands/quanta/pkg/compiler/lexer"
	"github.com/agenthands/quanta/pkg/compiler/parser"
)

// Unit holds the artefacts of every stage of one compilation.
type Unit struct {
	Tokens  []lexer.Token
	Program *ast.Program
	Target  string
}

// Compile translates Quanta source into Python source.
func Compile(src string, opts ...emitter.Option) (string, error) {
	u, err := CompileUnit(src, opts...)
	if err != nil {
		return "", err
	}
	return u.Target, nil
}

// CompileUnit is Compile, keeping the intermediate tokens and tree.
func CompileUnit(src string, opts ...emitter.Option) (*Unit, error) {
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}

	prog, err := parser.Parse(tokens)
	if err != nil {
		return nil, err
	}

	target, err := emitter.NewEmitter(opts...).Emit(prog)
	if err != nil {
		return nil, err
	}

	return &Unit{Tokens: tokens, Program: prog, Target: target}, nil
}
