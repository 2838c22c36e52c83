package parser

import (
	"fmt"
	"strings"

	"github.com/agenthands/quanta/pkg/compiler/ast"
	"github.com/agenthands/quanta/pkg/compiler/lexer"
)

// ErrorKind distinguishes the two ways a parse can fail.
type ErrorKind uint8

const (
	// UnexpectedEndOfInput: the parser needed a token but the input ran out.
	UnexpectedEndOfInput ErrorKind = iota + 1
	// ExpectedToken: a token was present but not the one the grammar requires.
	ExpectedToken
)

func (k ErrorKind) String() string {
	switch k {
	case UnexpectedEndOfInput:
		return "UnexpectedEndOfInput"
	case ExpectedToken:
		return "ExpectedToken"
	}
	return fmt.Sprintf("ErrorKind(%d)", uint8(k))
}

// ParseError is returned for any malformed token sequence.
type ParseError struct {
	Kind ErrorKind
	Want string       // what the grammar required
	Got  *lexer.Token // nil at end of input
	Pos  int          // token index
}

func (e *ParseError) Error() string {
	if e.Got == nil {
		return fmt.Sprintf("parser: %s: expected %s", e.Kind, e.Want)
	}
	return fmt.Sprintf("parser: %s: expected %s at token %d, got %s", e.Kind, e.Want, e.Pos, e.Got)
}

// Parser is a recursive-descent parser over an immutable token slice.
// The only mutable state is the cursor.
type Parser struct {
	tokens []lexer.Token
	pos    int
}

func NewParser(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse is a convenience for NewParser(tokens).Parse().
func Parse(tokens []lexer.Token) (*ast.Program, error) {
	return NewParser(tokens).Parse()
}

// Parse consumes the whole token slice and returns the program.
// A single trailing 'end' may close the program; nothing may follow it.
func (p *Parser) Parse() (*ast.Program, error) {
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	if tok, ok := p.peek(); ok {
		if !tok.Is(lexer.KindKeyword, lexer.End) {
			return nil, p.expected("statement")
		}
		p.pos++
		if _, ok := p.peek(); ok {
			return nil, p.expected("end of input after closing 'end'")
		}
	}

	return &ast.Program{Body: body}, nil
}

func (p *Parser) peek() (lexer.Token, bool) {
	if p.pos >= len(p.tokens) {
		return lexer.Token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *Parser) atKeyword(word string) bool {
	tok, ok := p.peek()
	return ok && tok.Is(lexer.KindKeyword, word)
}

// expected builds the error for the token under the cursor.
func (p *Parser) expected(want string) *ParseError {
	tok, ok := p.peek()
	if !ok {
		return &ParseError{Kind: UnexpectedEndOfInput, Want: want, Pos: p.pos}
	}
	return &ParseError{Kind: ExpectedToken, Want: want, Got: &tok, Pos: p.pos}
}

func (p *Parser) expectKeyword(word string) error {
	if !p.atKeyword(word) {
		return p.expected("'" + word + "'")
	}
	p.pos++
	return nil
}

// parseBlock collects statements until it sights 'end', 'elif', 'else' or
// the end of input. The terminator is left for the caller.
func (p *Parser) parseBlock() ([]ast.Statement, error) {
	var stmts []ast.Statement
	for {
		tok, ok := p.peek()
		if !ok {
			return stmts, nil
		}
		if tok.Kind == lexer.KindKeyword && (tok.Text == lexer.End || tok.Text == lexer.Elif || tok.Text == lexer.Else) {
			return stmts, nil
		}

		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	tok, _ := p.peek()
	if tok.Kind != lexer.KindKeyword {
		return nil, p.expected("statement")
	}

	switch tok.Text {
	case lexer.Let:
		return p.parseDeclaration()
	case lexer.Write:
		return p.parsePrint()
	case lexer.If:
		return p.parseIf()
	case lexer.Repeat:
		return p.parseRepeat()
	default:
		return nil, p.expected("statement")
	}
}

func (p *Parser) parseDeclaration() (ast.Statement, error) {
	p.pos++ // skip let

	name, ok := p.peek()
	if !ok || name.Kind != lexer.KindIdentifier {
		return nil, p.expected("identifier after 'let'")
	}
	p.pos++

	decl := &ast.Declaration{Name: name.Text}

	if tok, ok := p.peek(); ok && tok.Is(lexer.KindOperator, "=") {
		p.pos++
		value, err := p.parseExpression("expression after '='")
		if err != nil {
			return nil, err
		}
		decl.Value = &value
	}

	return decl, nil
}

func (p *Parser) parsePrint() (ast.Statement, error) {
	p.pos++ // skip write

	expr, err := p.parseExpression("expression after 'write'")
	if err != nil {
		return nil, err
	}
	return &ast.Print{Expression: expr}, nil
}

// parseIf parses the whole chain and then the single 'end' that closes it.
func (p *Parser) parseIf() (ast.Statement, error) {
	p.pos++ // skip if

	node, err := p.parseIfChain("expression after 'if'")
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword(lexer.End); err != nil {
		return nil, err
	}
	return node, nil
}

// parseIfChain parses a test, its consequent and any elif/else arms.
// It does not consume the closing 'end'.
func (p *Parser) parseIfChain(want string) (*ast.If, error) {
	test, err := p.parseExpression(want)
	if err != nil {
		return nil, err
	}

	consequent, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	node := &ast.If{Test: test, Consequent: consequent}

	switch {
	case p.atKeyword(lexer.Elif):
		p.pos++
		alt, err := p.parseIfChain("expression after 'elif'")
		if err != nil {
			return nil, err
		}
		node.Alternate = alt
	case p.atKeyword(lexer.Else):
		p.pos++
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		node.Alternate = &ast.Block{Body: body}
	}

	return node, nil
}

func (p *Parser) parseRepeat() (ast.Statement, error) {
	p.pos++ // skip repeat

	count, err := p.parseExpression("expression after 'repeat'")
	if err != nil {
		return nil, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword(lexer.End); err != nil {
		return nil, err
	}

	return &ast.Repeat{Count: count, Body: body}, nil
}

// parseExpression gathers every token up to the next keyword. It has no
// notion of precedence or grouping. An empty run is an error.
func (p *Parser) parseExpression(want string) (ast.Expression, error) {
	var parts []string
	for {
		tok, ok := p.peek()
		if !ok || tok.Kind == lexer.KindKeyword {
			break
		}
		parts = append(parts, tok.Literal())
		p.pos++
	}

	if len(parts) == 0 {
		return "", p.expected(want)
	}
	return ast.Expression(strings.Join(parts, " ")), nil
}
