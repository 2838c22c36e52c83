package lexer

import (
	"fmt"
	"math/big"
)

// Kind represents the type of token identified by the scanner.
type Kind uint8

const (
	KindKeyword Kind = iota + 1
	KindIdentifier
	KindNumber
	KindString
	KindOperator
)

var kindNames = [...]string{
	KindKeyword:    "KEYWORD",
	KindIdentifier: "IDENTIFIER",
	KindNumber:     "NUMBER",
	KindString:     "STRING",
	KindOperator:   "OPERATOR",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Keywords of the source language. Matching is exact and case-sensitive.
const (
	Let    = "let"
	Write  = "write"
	If     = "if"
	Elif   = "elif"
	Else   = "else"
	End    = "end"
	Repeat = "repeat"
)

var keywords = map[string]struct{}{
	Let: {}, Write: {}, If: {}, Elif: {}, Else: {}, End: {}, Repeat: {},
}

// IsKeyword reports whether word is reserved.
func IsKeyword(word string) bool {
	_, ok := keywords[word]
	return ok
}

// Operators lists every single-rune operator the scanner accepts.
const Operators = "+-*/=<>&|"

// Token is a classified lexical unit. Tokens carry no position.
//
// Text is the literal for keywords, identifiers, operators and strings (without
// quotes). For numbers Int holds the parsed value and Text its canonical
// base-10 rendering.
type Token struct {
	Kind Kind
	Text string
	Int  *big.Int
}

// Is reports whether t has the given kind and text.
func (t Token) Is(kind Kind, text string) bool {
	return t.Kind == kind && t.Text == text
}

// Literal renders the token the way it appears inside an expression.
func (t Token) Literal() string {
	if t.Kind == KindString {
		return `"` + t.Text + `"`
	}
	return t.Text
}

func (t Token) String() string {
	return fmt.Sprintf("%s %s", t.Kind, t.Literal())
}
