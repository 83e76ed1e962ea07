// Package css implements the CSS selector grammar used by querySelectorAll,
// matches and closest. Tokenization follows CSS Syntax Module Level 3, limited
// to the productions that can appear inside a selector.
// Reference: https://www.w3.org/TR/css-syntax-3/
package css

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// TokenType represents the type of a selector token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIdent
	TokenFunction
	TokenHash
	TokenString
	TokenBadString
	TokenDelim
	TokenNumber
	TokenDimension
	TokenWhitespace
	TokenColon
	TokenComma
	TokenOpenSquare  // [
	TokenCloseSquare // ]
	TokenOpenParen   // (
	TokenCloseParen  // )
)

// HashType indicates whether a hash token is an ID or unrestricted.
type HashType int

const (
	HashUnrestricted HashType = iota
	HashID
)

// Token is a single selector token.
type Token struct {
	Type     TokenType
	Value    string
	Unit     string // dimension tokens ("2n" is a number with unit "n")
	HashType HashType
	Delim    rune
}

func (t Token) String() string {
	switch t.Type {
	case TokenEOF:
		return "<EOF>"
	case TokenIdent:
		return fmt.Sprintf("<IDENT %q>", t.Value)
	case TokenFunction:
		return fmt.Sprintf("<FUNCTION %q>", t.Value)
	case TokenHash:
		if t.HashType == HashID {
			return fmt.Sprintf("<HASH id %q>", t.Value)
		}
		return fmt.Sprintf("<HASH %q>", t.Value)
	case TokenString:
		return fmt.Sprintf("<STRING %q>", t.Value)
	case TokenBadString:
		return "<BAD-STRING>"
	case TokenDelim:
		return fmt.Sprintf("<DELIM %q>", string(t.Delim))
	case TokenNumber:
		return fmt.Sprintf("<NUMBER %s>", t.Value)
	case TokenDimension:
		return fmt.Sprintf("<DIMENSION %s%s>", t.Value, t.Unit)
	case TokenWhitespace:
		return "<WHITESPACE>"
	case TokenColon:
		return "<COLON>"
	case TokenComma:
		return "<COMMA>"
	case TokenOpenSquare:
		return "<[>"
	case TokenCloseSquare:
		return "<]>"
	case TokenOpenParen:
		return "<(>"
	case TokenCloseParen:
		return "<)>"
	default:
		return fmt.Sprintf("<UNKNOWN %d>", t.Type)
	}
}

// Tokenizer splits a selector string into tokens.
type Tokenizer struct {
	input []rune
	pos   int
}

// NewTokenizer creates a tokenizer over input.
func NewTokenizer(input string) *Tokenizer {
	// CR, FF and CRLF normalize to LF; NUL becomes U+FFFD.
	input = strings.ReplaceAll(input, "\r\n", "\n")
	input = strings.NewReplacer("\r", "\n", "\f", "\n", "\x00", "\uFFFD").Replace(input)
	return &Tokenizer{input: []rune(input)}
}

const eof = rune(-1)

func (t *Tokenizer) peekN(n int) rune {
	if t.pos+n >= len(t.input) {
		return eof
	}
	return t.input[t.pos+n]
}

func (t *Tokenizer) peek() rune {
	return t.peekN(0)
}

func (t *Tokenizer) consume() rune {
	r := t.peek()
	if r != eof {
		t.pos++
	}
	return r
}

func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isNameStartCodePoint(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_' || r >= 0x80
}

func isNameCodePoint(r rune) bool {
	return isNameStartCodePoint(r) || isDigit(r) || r == '-'
}

func (t *Tokenizer) validEscapeAt(offset int) bool {
	return t.peekN(offset) == '\\' && t.peekN(offset+1) != '\n' && t.peekN(offset+1) != eof
}

func (t *Tokenizer) startsIdentifierAt(offset int) bool {
	r := t.peekN(offset)
	switch {
	case r == '-':
		next := t.peekN(offset + 1)
		return isNameStartCodePoint(next) || next == '-' || t.validEscapeAt(offset+1)
	case isNameStartCodePoint(r):
		return true
	case r == '\\':
		return t.validEscapeAt(offset)
	}
	return false
}

func (t *Tokenizer) startsNumber() bool {
	r := t.peek()
	if r == '+' || r == '-' {
		r = t.peekN(1)
		if isDigit(r) {
			return true
		}
		return r == '.' && isDigit(t.peekN(2))
	}
	if r == '.' {
		return isDigit(t.peekN(1))
	}
	return isDigit(r)
}

// consumeEscape assumes the backslash was already consumed.
func (t *Tokenizer) consumeEscape() rune {
	r := t.consume()
	if r == eof {
		return utf8.RuneError
	}
	if !isHexDigit(r) {
		return r
	}
	hex := []rune{r}
	for len(hex) < 6 && isHexDigit(t.peek()) {
		hex = append(hex, t.consume())
	}
	if isWhitespace(t.peek()) {
		t.consume()
	}
	v, err := strconv.ParseUint(string(hex), 16, 32)
	if err != nil || v == 0 || v > utf8.MaxRune || (v >= 0xD800 && v <= 0xDFFF) {
		return utf8.RuneError
	}
	return rune(v)
}

func (t *Tokenizer) consumeName() string {
	var b strings.Builder
	for {
		r := t.peek()
		switch {
		case isNameCodePoint(r):
			b.WriteRune(t.consume())
		case t.validEscapeAt(0):
			t.consume()
			b.WriteRune(t.consumeEscape())
		default:
			return b.String()
		}
	}
}

func (t *Tokenizer) consumeNumeric() Token {
	var b strings.Builder
	if r := t.peek(); r == '+' || r == '-' {
		b.WriteRune(t.consume())
	}
	for isDigit(t.peek()) {
		b.WriteRune(t.consume())
	}
	if t.peek() == '.' && isDigit(t.peekN(1)) {
		b.WriteRune(t.consume())
		for isDigit(t.peek()) {
			b.WriteRune(t.consume())
		}
	}
	if t.startsIdentifierAt(0) {
		return Token{Type: TokenDimension, Value: b.String(), Unit: t.consumeName()}
	}
	return Token{Type: TokenNumber, Value: b.String()}
}

func (t *Tokenizer) consumeString(end rune) Token {
	var b strings.Builder
	for {
		r := t.consume()
		switch {
		case r == end || r == eof:
			return Token{Type: TokenString, Value: b.String()}
		case r == '\n':
			t.pos--
			return Token{Type: TokenBadString}
		case r == '\\':
			switch t.peek() {
			case eof:
			case '\n':
				t.consume()
			default:
				b.WriteRune(t.consumeEscape())
			}
		default:
			b.WriteRune(r)
		}
	}
}

func (t *Tokenizer) consumeIdentLike() Token {
	name := t.consumeName()
	if t.peek() == '(' {
		t.consume()
		return Token{Type: TokenFunction, Value: name}
	}
	return Token{Type: TokenIdent, Value: name}
}

func (t *Tokenizer) skipComment() bool {
	if t.peek() != '/' || t.peekN(1) != '*' {
		return false
	}
	t.pos += 2
	for t.peek() != eof {
		if t.peek() == '*' && t.peekN(1) == '/' {
			t.pos += 2
			return true
		}
		t.pos++
	}
	return true
}

// NextToken returns the next token, or TokenEOF at the end of input.
func (t *Tokenizer) NextToken() Token {
	for t.skipComment() {
	}

	r := t.peek()
	switch {
	case r == eof:
		return Token{Type: TokenEOF}
	case isWhitespace(r):
		for isWhitespace(t.peek()) {
			t.consume()
		}
		return Token{Type: TokenWhitespace}
	case r == '"' || r == '\'':
		t.consume()
		return t.consumeString(r)
	case r == '#':
		t.consume()
		if isNameCodePoint(t.peek()) || t.validEscapeAt(0) {
			tok := Token{Type: TokenHash, HashType: HashUnrestricted}
			if t.startsIdentifierAt(0) {
				tok.HashType = HashID
			}
			tok.Value = t.consumeName()
			return tok
		}
		return Token{Type: TokenDelim, Delim: '#'}
	case r == '(':
		t.consume()
		return Token{Type: TokenOpenParen}
	case r == ')':
		t.consume()
		return Token{Type: TokenCloseParen}
	case r == '[':
		t.consume()
		return Token{Type: TokenOpenSquare}
	case r == ']':
		t.consume()
		return Token{Type: TokenCloseSquare}
	case r == ',':
		t.consume()
		return Token{Type: TokenComma}
	case r == ':':
		t.consume()
		return Token{Type: TokenColon}
	case r == '+' || r == '.':
		if t.startsNumber() {
			return t.consumeNumeric()
		}
	case r == '-':
		if t.startsNumber() {
			return t.consumeNumeric()
		}
		if t.startsIdentifierAt(0) {
			return t.consumeIdentLike()
		}
	case isDigit(r):
		return t.consumeNumeric()
	case r == '\\':
		if t.validEscapeAt(0) {
			return t.consumeIdentLike()
		}
	case isNameStartCodePoint(r):
		return t.consumeIdentLike()
	}
	t.consume()
	return Token{Type: TokenDelim, Delim: r}
}

// TokenizeAll returns every token up to, but not including, EOF.
func (t *Tokenizer) TokenizeAll() []Token {
	var tokens []Token
	for {
		tok := t.NextToken()
		if tok.Type == TokenEOF {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}
