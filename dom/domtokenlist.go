package dom

import (
	"fmt"
	"slices"
	"strings"
)

// validateToken checks a token for add, remove and toggle: empty tokens are a
// SyntaxError, tokens with ASCII whitespace an InvalidCharacterError.
func validateToken(token string) error {
	if token == "" {
		return ErrSyntax("The token provided must not be empty.")
	}
	if strings.ContainsAny(token, " \t\n\r\f") {
		return ErrInvalidCharacter(fmt.Sprintf("The token provided ('%s') contains HTML space characters, which are not valid in tokens.", token))
	}
	return nil
}

// DOMTokenList is the ordered set of space-separated tokens held in an
// attribute. It is used for Element.classList.
type DOMTokenList struct {
	element  *Element
	attrName string
}

func newDOMTokenList(element *Element, attrName string) *DOMTokenList {
	return &DOMTokenList{element: element, attrName: attrName}
}

// tokens returns the current list of tokens (deduplicated, preserving order).
func (dtl *DOMTokenList) tokens() []string {
	var result []string
	for _, token := range strings.Fields(dtl.element.GetAttribute(dtl.attrName)) {
		if !slices.Contains(result, token) {
			result = append(result, token)
		}
	}
	return result
}

// setTokens writes tokens back. The attribute is not created for an empty
// set when it did not exist before.
func (dtl *DOMTokenList) setTokens(tokens []string) {
	if len(tokens) == 0 && !dtl.element.HasAttribute(dtl.attrName) {
		return
	}
	dtl.element.SetAttribute(dtl.attrName, strings.Join(tokens, " "))
}

// Length returns the number of tokens.
func (dtl *DOMTokenList) Length() int {
	return len(dtl.tokens())
}

// Item returns the token at the given index, or "" if out of bounds.
func (dtl *DOMTokenList) Item(index int) string {
	tokens := dtl.tokens()
	if index < 0 || index >= len(tokens) {
		return ""
	}
	return tokens[index]
}

// Contains returns true if the given token is in the list. Invalid tokens
// are never contained.
func (dtl *DOMTokenList) Contains(token string) bool {
	return validateToken(token) == nil && slices.Contains(dtl.tokens(), token)
}

// Add adds tokens that are not already present. Nothing is changed if any
// token is invalid.
func (dtl *DOMTokenList) Add(tokens ...string) error {
	for _, t := range tokens {
		if err := validateToken(t); err != nil {
			return err
		}
	}
	current := dtl.tokens()
	for _, t := range tokens {
		if !slices.Contains(current, t) {
			current = append(current, t)
		}
	}
	dtl.setTokens(current)
	return nil
}

// Remove removes tokens. Nothing is changed if any token is invalid.
func (dtl *DOMTokenList) Remove(tokens ...string) error {
	for _, t := range tokens {
		if err := validateToken(t); err != nil {
			return err
		}
	}
	current := slices.DeleteFunc(dtl.tokens(), func(t string) bool {
		return slices.Contains(tokens, t)
	})
	dtl.setTokens(current)
	return nil
}

// Toggle removes token if present, adds it otherwise. With force, the token
// is only added (true) or only removed (false). Returns whether the token is
// present afterwards.
func (dtl *DOMTokenList) Toggle(token string, force ...bool) (bool, error) {
	if err := validateToken(token); err != nil {
		return false, err
	}
	has := slices.Contains(dtl.tokens(), token)
	want := !has
	if len(force) > 0 {
		want = force[0]
	}
	switch {
	case want && !has:
		return true, dtl.Add(token)
	case !want && has:
		return false, dtl.Remove(token)
	}
	return want, nil
}

// Value returns the raw attribute value.
func (dtl *DOMTokenList) Value() string {
	return dtl.element.GetAttribute(dtl.attrName)
}

// String returns the raw attribute value.
func (dtl *DOMTokenList) String() string {
	return dtl.Value()
}
