package css

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSelector is returned (wrapped) for selectors that do not parse.
var ErrInvalidSelector = errors.New("invalid selector")

// Selector is a parsed selector list.
type Selector struct {
	// A selector is a list of complex selectors separated by commas
	Complex []*ComplexSelector
}

// ComplexSelector is a chain of compound selectors separated by combinators.
type ComplexSelector struct {
	Compounds []*CompoundSelector
	// Relative is set for the arguments of :has(). It joins the anchor
	// element to the first compound: "> li" is CombinatorChild, a bare
	// "li" is CombinatorDescendant.
	Relative Combinator
}

// CompoundSelector is a sequence of simple selectors.
type CompoundSelector struct {
	Type          string // "" when absent, "*" for universal
	IDs           []string
	Classes       []string
	Attributes    []*AttributeMatcher
	PseudoClasses []*PseudoClass
	PseudoElement string
	Combinator    Combinator // combinator following this compound
}

// Combinator joins two compound selectors.
type Combinator int

const (
	CombinatorNone       Combinator = iota
	CombinatorDescendant            // (whitespace)
	CombinatorChild                 // >
	CombinatorNextSibling           // +
	CombinatorSubsequentSibling     // ~
)

// AttributeMatcher represents an attribute selector.
type AttributeMatcher struct {
	Name            string
	Operator        AttributeOperator
	Value           string
	CaseInsensitive bool
}

// AttributeOperator represents the operator in an attribute selector.
type AttributeOperator int

const (
	AttrExists    AttributeOperator = iota // [attr]
	AttrEquals                             // [attr=value]
	AttrIncludes                           // [attr~=value]
	AttrDashMatch                          // [attr|=value]
	AttrPrefix                             // [attr^=value]
	AttrSuffix                             // [attr$=value]
	AttrSubstring                          // [attr*=value]
)

// PseudoClass represents a pseudo-class, functional or not.
type PseudoClass struct {
	Name     string
	Argument string    // :nth-child(2n+1), :lang(en)
	Selector *Selector // :not(), :is(), :where(), :has()
}

// Parse parses a selector list. Any leftover or malformed input is an error
// wrapping ErrInvalidSelector.
func Parse(input string) (*Selector, error) {
	p := &parser{tokens: NewTokenizer(input).TokenizeAll()}
	sel, err := p.parseSelectorList()
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidSelector, input, err)
	}
	return sel, nil
}

// MustParse is like Parse but panics on error.
func MustParse(input string) *Selector {
	sel, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return sel
}

type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *parser) peek(offset int) Token {
	pos := p.pos + offset
	if pos >= len(p.tokens) || pos < 0 {
		return Token{Type: TokenEOF}
	}
	return p.tokens[pos]
}

func (p *parser) consume() Token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *parser) isDelim(r rune) bool {
	tok := p.current()
	return tok.Type == TokenDelim && tok.Delim == r
}

func (p *parser) skipWhitespace() bool {
	skipped := false
	for p.current().Type == TokenWhitespace {
		p.consume()
		skipped = true
	}
	return skipped
}

func (p *parser) parseSelectorList() (*Selector, error) {
	sel := &Selector{}
	p.skipWhitespace()
	for {
		complex, err := p.parseComplexSelector(false)
		if err != nil {
			return nil, err
		}
		sel.Complex = append(sel.Complex, complex)

		p.skipWhitespace()
		switch p.current().Type {
		case TokenComma:
			p.consume()
			p.skipWhitespace()
		case TokenEOF:
			return sel, nil
		default:
			return nil, fmt.Errorf("unexpected %s", p.current())
		}
	}
}

func (p *parser) parseComplexSelector(relative bool) (*ComplexSelector, error) {
	complex := &ComplexSelector{}
	if relative {
		complex.Relative = CombinatorDescendant
		if c, ok := p.combinator(); ok {
			complex.Relative = c
			p.consume()
			p.skipWhitespace()
		}
	}
	for {
		compound, err := p.parseCompoundSelector()
		if err != nil {
			return nil, err
		}
		if compound == nil {
			if len(complex.Compounds) == 0 {
				return nil, fmt.Errorf("expected selector, got %s", p.current())
			}
			// a dangling combinator ("a >") has nothing to its right
			last := complex.Compounds[len(complex.Compounds)-1]
			if last.Combinator != CombinatorDescendant {
				return nil, fmt.Errorf("expected selector after combinator, got %s", p.current())
			}
			last.Combinator = CombinatorNone
			return complex, nil
		}
		complex.Compounds = append(complex.Compounds, compound)

		hadWhitespace := p.skipWhitespace()
		tok := p.current()
		c, isCombinator := p.combinator()
		switch {
		case isCombinator:
			compound.Combinator = c
		case tok.Type == TokenEOF || tok.Type == TokenComma || tok.Type == TokenCloseParen:
			return complex, nil
		case hadWhitespace:
			compound.Combinator = CombinatorDescendant
			continue
		default:
			return nil, fmt.Errorf("unexpected %s", tok)
		}
		p.consume()
		p.skipWhitespace()
	}
}

// combinator reports whether the current token is >, + or ~.
func (p *parser) combinator() (Combinator, bool) {
	switch {
	case p.isDelim('>'):
		return CombinatorChild, true
	case p.isDelim('+'):
		return CombinatorNextSibling, true
	case p.isDelim('~'):
		return CombinatorSubsequentSibling, true
	}
	return CombinatorNone, false
}

// parseCompoundSelector returns nil, nil when no simple selector starts here.
func (p *parser) parseCompoundSelector() (*CompoundSelector, error) {
	compound := &CompoundSelector{}
	hasContent := false

	switch tok := p.current(); {
	case tok.Type == TokenIdent:
		compound.Type = strings.ToLower(p.consume().Value)
		hasContent = true
	case p.isDelim('*'):
		p.consume()
		compound.Type = "*"
		hasContent = true
	}

	for {
		tok := p.current()
		switch {
		case tok.Type == TokenHash:
			if tok.HashType != HashID {
				return nil, fmt.Errorf("invalid id selector #%s", tok.Value)
			}
			p.consume()
			compound.IDs = append(compound.IDs, tok.Value)

		case p.isDelim('.'):
			p.consume()
			if p.current().Type != TokenIdent {
				return nil, fmt.Errorf("expected class name, got %s", p.current())
			}
			compound.Classes = append(compound.Classes, p.consume().Value)

		case tok.Type == TokenOpenSquare:
			attr, err := p.parseAttributeSelector()
			if err != nil {
				return nil, err
			}
			compound.Attributes = append(compound.Attributes, attr)

		case tok.Type == TokenColon:
			p.consume()
			if p.current().Type == TokenColon {
				p.consume()
				if p.current().Type != TokenIdent {
					return nil, fmt.Errorf("expected pseudo-element name, got %s", p.current())
				}
				compound.PseudoElement = strings.ToLower(p.consume().Value)
			} else {
				pc, err := p.parsePseudoClass()
				if err != nil {
					return nil, err
				}
				compound.PseudoClasses = append(compound.PseudoClasses, pc)
			}

		default:
			if !hasContent {
				return nil, nil
			}
			return compound, nil
		}
		hasContent = true
	}
}

func (p *parser) parseAttributeSelector() (*AttributeMatcher, error) {
	p.consume() // [
	p.skipWhitespace()

	if p.current().Type != TokenIdent {
		return nil, fmt.Errorf("expected attribute name, got %s", p.current())
	}
	attr := &AttributeMatcher{Name: strings.ToLower(p.consume().Value)}
	p.skipWhitespace()

	if p.current().Type == TokenCloseSquare {
		p.consume()
		attr.Operator = AttrExists
		return attr, nil
	}

	tok := p.current()
	if tok.Type != TokenDelim {
		return nil, fmt.Errorf("expected attribute operator, got %s", tok)
	}
	p.consume()
	switch tok.Delim {
	case '=':
		attr.Operator = AttrEquals
	case '~', '|', '^', '$', '*':
		if !p.isDelim('=') {
			return nil, fmt.Errorf("expected '=' after %q", tok.Delim)
		}
		p.consume()
		attr.Operator = map[rune]AttributeOperator{
			'~': AttrIncludes,
			'|': AttrDashMatch,
			'^': AttrPrefix,
			'$': AttrSuffix,
			'*': AttrSubstring,
		}[tok.Delim]
	default:
		return nil, fmt.Errorf("unknown attribute operator %q", tok.Delim)
	}
	p.skipWhitespace()

	switch tok := p.current(); tok.Type {
	case TokenString, TokenIdent:
		attr.Value = p.consume().Value
	case TokenNumber:
		attr.Value = p.consume().Value
	default:
		return nil, fmt.Errorf("expected attribute value, got %s", tok)
	}
	p.skipWhitespace()

	if tok := p.current(); tok.Type == TokenIdent {
		switch tok.Value {
		case "i", "I":
			attr.CaseInsensitive = true
		case "s", "S":
		default:
			return nil, fmt.Errorf("unknown attribute flag %q", tok.Value)
		}
		p.consume()
		p.skipWhitespace()
	}

	if p.current().Type != TokenCloseSquare {
		return nil, fmt.Errorf("unterminated attribute selector")
	}
	p.consume()
	return attr, nil
}

func (p *parser) parsePseudoClass() (*PseudoClass, error) {
	tok := p.current()
	switch tok.Type {
	case TokenIdent:
		p.consume()
		return &PseudoClass{Name: strings.ToLower(tok.Value)}, nil
	case TokenFunction:
		p.consume()
	default:
		return nil, fmt.Errorf("expected pseudo-class name, got %s", tok)
	}

	pc := &PseudoClass{Name: strings.ToLower(tok.Value)}
	switch pc.Name {
	case "not", "is", "where", "has", "matches", "any":
		p.skipWhitespace()
		sub, err := p.parseSelectorListUntilParen(pc.Name == "has")
		if err != nil {
			return nil, err
		}
		pc.Selector = sub
		return pc, nil
	}

	var arg strings.Builder
	for depth := 1; ; {
		tok := p.consume()
		switch tok.Type {
		case TokenEOF:
			return nil, fmt.Errorf("unterminated :%s(", pc.Name)
		case TokenOpenParen, TokenFunction:
			depth++
		case TokenCloseParen:
			depth--
			if depth == 0 {
				pc.Argument = strings.TrimSpace(arg.String())
				return pc, nil
			}
		}
		switch tok.Type {
		case TokenWhitespace:
			arg.WriteString(" ")
		case TokenDelim:
			arg.WriteRune(tok.Delim)
		case TokenDimension:
			arg.WriteString(tok.Value + tok.Unit)
		case TokenFunction:
			arg.WriteString(tok.Value + "(")
		case TokenOpenParen:
			arg.WriteString("(")
		case TokenCloseParen:
			arg.WriteString(")")
		default:
			arg.WriteString(tok.Value)
		}
	}
}

func (p *parser) parseSelectorListUntilParen(relative bool) (*Selector, error) {
	sel := &Selector{}
	for {
		complex, err := p.parseComplexSelector(relative)
		if err != nil {
			return nil, err
		}
		sel.Complex = append(sel.Complex, complex)
		p.skipWhitespace()
		switch p.current().Type {
		case TokenComma:
			p.consume()
			p.skipWhitespace()
		case TokenCloseParen:
			p.consume()
			return sel, nil
		default:
			return nil, fmt.Errorf("unexpected %s in selector argument", p.current())
		}
	}
}
