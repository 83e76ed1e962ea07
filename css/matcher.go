package css

import (
	"strconv"
	"strings"
)

// Element is the view of a DOM element the matcher needs. Implementations
// must return a nil interface (not a typed nil) when a relative is missing.
type Element interface {
	LocalName() string
	ID() string
	HasClass(name string) bool
	Attr(name string) (string, bool)
	ParentElement() Element
	PreviousElementSibling() Element
	NextElementSibling() Element
	FirstElementChild() Element
	// IsRoot reports whether the element is the document element.
	IsRoot() bool
	HasChildNodes() bool
}

// Match tests if any selector in the list matches el.
func (s *Selector) Match(el Element) bool {
	return s.MatchScoped(el, nil)
}

// MatchScoped is Match with :scope bound to scope. A nil scope makes :scope
// behave as :root.
func (s *Selector) MatchScoped(el Element, scope Element) bool {
	for _, cs := range s.Complex {
		if cs.match(el, scope) {
			return true
		}
	}
	return false
}

func (cs *ComplexSelector) match(el Element, scope Element) bool {
	if len(cs.Compounds) == 0 {
		return false
	}
	return cs.matchFrom(len(cs.Compounds)-1, el, scope, nil)
}

// matchFrom matches compound i against el, then walks right to left through
// the combinators. Descendant and subsequent-sibling combinators backtrack so
// "a b c" finds every candidate ancestor chain. A non-nil leftmost must also
// accept the element matched by the first compound.
func (cs *ComplexSelector) matchFrom(i int, el Element, scope Element, leftmost func(Element) bool) bool {
	if !cs.Compounds[i].match(el, scope) {
		return false
	}
	if i == 0 {
		return leftmost == nil || leftmost(el)
	}

	switch cs.Compounds[i-1].Combinator {
	case CombinatorDescendant:
		for anc := el.ParentElement(); anc != nil; anc = anc.ParentElement() {
			if cs.matchFrom(i-1, anc, scope, leftmost) {
				return true
			}
		}
	case CombinatorChild:
		if parent := el.ParentElement(); parent != nil {
			return cs.matchFrom(i-1, parent, scope, leftmost)
		}
	case CombinatorNextSibling:
		if prev := el.PreviousElementSibling(); prev != nil {
			return cs.matchFrom(i-1, prev, scope, leftmost)
		}
	case CombinatorSubsequentSibling:
		for prev := el.PreviousElementSibling(); prev != nil; prev = prev.PreviousElementSibling() {
			if cs.matchFrom(i-1, prev, scope, leftmost) {
				return true
			}
		}
	}
	return false
}

// matchRelative reports whether el matches cs read relative to anchor, as
// inside :has().
func (cs *ComplexSelector) matchRelative(el, anchor, scope Element) bool {
	if len(cs.Compounds) == 0 {
		return false
	}
	return cs.matchFrom(len(cs.Compounds)-1, el, scope, func(first Element) bool {
		return related(cs.Relative, anchor, first)
	})
}

// related reports whether c joins anchor to el.
func related(c Combinator, anchor, el Element) bool {
	switch c {
	case CombinatorChild:
		return el.ParentElement() == anchor
	case CombinatorNextSibling:
		return el.PreviousElementSibling() == anchor
	case CombinatorSubsequentSibling:
		for prev := el.PreviousElementSibling(); prev != nil; prev = prev.PreviousElementSibling() {
			if prev == anchor {
				return true
			}
		}
	default:
		for anc := el.ParentElement(); anc != nil; anc = anc.ParentElement() {
			if anc == anchor {
				return true
			}
		}
	}
	return false
}

func (c *CompoundSelector) match(el Element, scope Element) bool {
	if c.PseudoElement != "" {
		// pseudo-elements never match a real element
		return false
	}
	if c.Type != "" && c.Type != "*" && !strings.EqualFold(el.LocalName(), c.Type) {
		return false
	}
	for _, id := range c.IDs {
		if el.ID() != id {
			return false
		}
	}
	for _, class := range c.Classes {
		if !el.HasClass(class) {
			return false
		}
	}
	for _, attr := range c.Attributes {
		if !attr.match(el) {
			return false
		}
	}
	for _, pc := range c.PseudoClasses {
		if !pc.match(el, scope) {
			return false
		}
	}
	return true
}

func (attr *AttributeMatcher) match(el Element) bool {
	attrValue, ok := el.Attr(attr.Name)
	if !ok {
		return false
	}
	if attr.Operator == AttrExists {
		return true
	}

	matchValue := attr.Value
	if attr.CaseInsensitive {
		attrValue = strings.ToLower(attrValue)
		matchValue = strings.ToLower(matchValue)
	}

	switch attr.Operator {
	case AttrEquals:
		return attrValue == matchValue
	case AttrIncludes:
		for _, word := range strings.Fields(attrValue) {
			if word == matchValue {
				return true
			}
		}
		return false
	case AttrDashMatch:
		return attrValue == matchValue || strings.HasPrefix(attrValue, matchValue+"-")
	case AttrPrefix:
		return matchValue != "" && strings.HasPrefix(attrValue, matchValue)
	case AttrSuffix:
		return matchValue != "" && strings.HasSuffix(attrValue, matchValue)
	case AttrSubstring:
		return matchValue != "" && strings.Contains(attrValue, matchValue)
	}
	return false
}

func (pc *PseudoClass) match(el Element, scope Element) bool {
	switch pc.Name {
	case "root":
		return el.IsRoot()
	case "scope":
		if scope == nil {
			return el.IsRoot()
		}
		return el == scope
	case "empty":
		return !el.HasChildNodes()
	case "first-child":
		return el.PreviousElementSibling() == nil
	case "last-child":
		return el.NextElementSibling() == nil
	case "only-child":
		return el.PreviousElementSibling() == nil && el.NextElementSibling() == nil
	case "first-of-type":
		return position(el, false, true) == 1
	case "last-of-type":
		return position(el, true, true) == 1
	case "only-of-type":
		return position(el, false, true) == 1 && position(el, true, true) == 1
	case "nth-child":
		return matchNth(pc.Argument, position(el, false, false))
	case "nth-last-child":
		return matchNth(pc.Argument, position(el, true, false))
	case "nth-of-type":
		return matchNth(pc.Argument, position(el, false, true))
	case "nth-last-of-type":
		return matchNth(pc.Argument, position(el, true, true))
	case "not":
		return pc.Selector != nil && !pc.Selector.MatchScoped(el, scope)
	case "is", "where", "matches", "any":
		return pc.Selector != nil && pc.Selector.MatchScoped(el, scope)
	case "has":
		return pc.Selector != nil && hasRelative(el, pc.Selector, scope)
	case "enabled":
		return isFormControl(el) && !hasAttr(el, "disabled")
	case "disabled":
		return isFormControl(el) && hasAttr(el, "disabled")
	case "checked":
		switch strings.ToLower(el.LocalName()) {
		case "input":
			t, _ := el.Attr("type")
			t = strings.ToLower(t)
			return (t == "checkbox" || t == "radio") && hasAttr(el, "checked")
		case "option":
			return hasAttr(el, "selected")
		}
		return false
	case "required":
		return hasAttr(el, "required")
	case "optional":
		return isFormControl(el) && !hasAttr(el, "required")
	case "link", "any-link":
		name := strings.ToLower(el.LocalName())
		return (name == "a" || name == "area") && hasAttr(el, "href")
	case "lang":
		lang := strings.ToLower(pc.Argument)
		for cur := el; cur != nil; cur = cur.ParentElement() {
			if v, ok := cur.Attr("lang"); ok {
				v = strings.ToLower(v)
				return v == lang || strings.HasPrefix(v, lang+"-")
			}
		}
		return false
	default:
		// dynamic states (:hover, :focus, :visited...) and unknown names
		return false
	}
}

func hasAttr(el Element, name string) bool {
	_, ok := el.Attr(name)
	return ok
}

func isFormControl(el Element) bool {
	switch strings.ToLower(el.LocalName()) {
	case "button", "input", "select", "textarea", "option", "fieldset":
		return true
	}
	return false
}

// position returns el's 1-based index among its element siblings, counted
// from the end when fromLast is set and restricted to el's type when ofType is.
func position(el Element, fromLast, ofType bool) int {
	pos := 1
	next := Element.PreviousElementSibling
	if fromLast {
		next = Element.NextElementSibling
	}
	for sib := next(el); sib != nil; sib = next(sib) {
		if !ofType || strings.EqualFold(sib.LocalName(), el.LocalName()) {
			pos++
		}
	}
	return pos
}

func matchNth(arg string, pos int) bool {
	a, b, ok := ParseAnPlusB(arg)
	if !ok {
		return false
	}
	if a == 0 {
		return pos == b
	}
	// pos = a*n + b for some n >= 0
	diff := pos - b
	if a > 0 {
		return diff >= 0 && diff%a == 0
	}
	return diff <= 0 && diff%a == 0
}

// ParseAnPlusB parses the argument of :nth-child and friends ("odd", "even",
// "3", "n", "-n+2", "2n-1").
func ParseAnPlusB(s string) (a, b int, ok bool) {
	s = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "")
	switch s {
	case "odd":
		return 2, 1, true
	case "even":
		return 2, 0, true
	case "":
		return 0, 0, false
	}

	if n, err := strconv.Atoi(s); err == nil {
		return 0, n, true
	}

	nIdx := strings.IndexByte(s, 'n')
	if nIdx == -1 {
		return 0, 0, false
	}

	switch aStr := s[:nIdx]; aStr {
	case "", "+":
		a = 1
	case "-":
		a = -1
	default:
		v, err := strconv.Atoi(aStr)
		if err != nil {
			return 0, 0, false
		}
		a = v
	}

	if bStr := s[nIdx+1:]; bStr != "" {
		if bStr[0] != '+' && bStr[0] != '-' {
			return 0, 0, false
		}
		v, err := strconv.Atoi(bStr)
		if err != nil {
			return 0, 0, false
		}
		b = v
	}
	return a, b, true
}

// hasRelative reports whether an element after anchor in tree order, among
// its descendants or its following siblings and their subtrees, matches one
// of the relative selectors in sel.
func hasRelative(anchor Element, sel *Selector, scope Element) bool {
	var search func(e Element) bool
	search = func(e Element) bool {
		for _, cs := range sel.Complex {
			if cs.matchRelative(e, anchor, scope) {
				return true
			}
		}
		for child := e.FirstElementChild(); child != nil; child = child.NextElementSibling() {
			if search(child) {
				return true
			}
		}
		return false
	}
	for child := anchor.FirstElementChild(); child != nil; child = child.NextElementSibling() {
		if search(child) {
			return true
		}
	}
	for next := anchor.NextElementSibling(); next != nil; next = next.NextElementSibling() {
		if search(next) {
			return true
		}
	}
	return false
}
