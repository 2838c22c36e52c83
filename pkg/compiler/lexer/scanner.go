package lexer

import (
	"fmt"
	"math/big"
	"strings"
	"unicode"
)

// InvalidCharacterError reports a rune outside the source alphabet.
type InvalidCharacterError struct {
	Char   rune
	Offset int
}

func (e *InvalidCharacterError) Error() string {
	return fmt.Sprintf("lexer: invalid character %q at position %d", e.Char, e.Offset)
}

// UnterminatedStringError reports a string literal that is never closed.
// Offset points at the opening quote.
type UnterminatedStringError struct {
	Offset int
}

func (e *UnterminatedStringError) Error() string {
	return fmt.Sprintf("lexer: unterminated string starting at position %d", e.Offset)
}

// Scanner performs lexical analysis on Quanta source.
// Offsets are counted in runes.
type Scanner struct {
	source []rune
	cursor int
}

// NewScanner creates a new scanner for the given source.
func NewScanner(source string) *Scanner {
	return &Scanner{source: []rune(source)}
}

// Reset re-initializes the scanner with new source.
func (s *Scanner) Reset(source string) {
	s.source = []rune(source)
	s.cursor = 0
}

// Next returns the next token. ok is false once the input is exhausted.
func (s *Scanner) Next() (tok Token, ok bool, err error) {
	s.skipWhitespace()

	if s.cursor >= len(s.source) {
		return Token{}, false, nil
	}

	ch := s.source[s.cursor]

	switch {
	case unicode.IsLetter(ch):
		return s.scanWord(), true, nil
	case isDigit(ch):
		return s.scanNumber(), true, nil
	case ch == '"':
		tok, err := s.scanString()
		if err != nil {
			return Token{}, false, err
		}
		return tok, true, nil
	case strings.ContainsRune(Operators, ch):
		s.cursor++
		return Token{Kind: KindOperator, Text: string(ch)}, true, nil
	}

	return Token{}, false, &InvalidCharacterError{Char: ch, Offset: s.cursor}
}

// Tokenize scans the whole source. No tokens are returned on failure.
func Tokenize(source string) ([]Token, error) {
	s := NewScanner(source)
	var tokens []Token
	for {
		tok, ok, err := s.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}

func (s *Scanner) skipWhitespace() {
	for s.cursor < len(s.source) && unicode.IsSpace(s.source[s.cursor]) {
		s.cursor++
	}
}

func (s *Scanner) scanWord() Token {
	start := s.cursor
	for s.cursor < len(s.source) && (unicode.IsLetter(s.source[s.cursor]) || unicode.IsDigit(s.source[s.cursor])) {
		s.cursor++
	}

	word := string(s.source[start:s.cursor])
	if IsKeyword(word) {
		return Token{Kind: KindKeyword, Text: word}
	}
	return Token{Kind: KindIdentifier, Text: word}
}

func (s *Scanner) scanNumber() Token {
	start := s.cursor
	for s.cursor < len(s.source) && isDigit(s.source[s.cursor]) {
		s.cursor++
	}

	// ASCII digits only, so SetString cannot fail.
	n, _ := new(big.Int).SetString(string(s.source[start:s.cursor]), 10)
	return Token{Kind: KindNumber, Text: n.String(), Int: n}
}

func (s *Scanner) scanString() (Token, error) {
	start := s.cursor
	s.cursor++ // Skip opening '"'
	for s.cursor < len(s.source) && s.source[s.cursor] != '"' {
		s.cursor++
	}

	if s.cursor >= len(s.source) {
		return Token{}, &UnterminatedStringError{Offset: start}
	}

	text := string(s.source[start+1 : s.cursor])
	s.cursor++ // Skip closing '"'
	return Token{Kind: KindString, Text: text}, nil
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}
