package css

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// testElement is a minimal element tree for exercising the matcher without a
// full DOM.
type testElement struct {
	name     string
	attrs    map[string]string
	parent   *testElement
	children []*testElement
	text     bool
}

func el(name string, attrs map[string]string, children ...*testElement) *testElement {
	e := &testElement{name: name, attrs: attrs}
	for _, c := range children {
		c.parent = e
		e.children = append(e.children, c)
	}
	return e
}

func (e *testElement) LocalName() string { return e.name }
func (e *testElement) ID() string { return e.attrs["id"] }

func (e *testElement) HasClass(name string) bool {
	for _, c := range strings.Fields(e.attrs["class"]) {
		if c == name {
			return true
		}
	}
	return false
}

func (e *testElement) Attr(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

func (e *testElement) ParentElement() Element {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

func (e *testElement) sibling(delta int) Element {
	if e.parent == nil {
		return nil
	}
	for i, c := range e.parent.children {
		if c == e {
			j := i + delta
			if j >= 0 && j < len(e.parent.children) {
				return e.parent.children[j]
			}
			return nil
		}
	}
	return nil
}

func (e *testElement) PreviousElementSibling() Element { return e.sibling(-1) }
func (e *testElement) NextElementSibling() Element { return e.sibling(1) }

func (e *testElement) FirstElementChild() Element {
	if len(e.children) == 0 {
		return nil
	}
	return e.children[0]
}

func (e *testElement) IsRoot() bool { return e.parent == nil }
func (e *testElement) HasChildNodes() bool { return len(e.children) > 0 || e.text }

// walk returns e and its descendants in document order.
func (e *testElement) walk() []*testElement {
	out := []*testElement{e}
	for _, c := range e.children {
		out = append(out, c.walk()...)
	}
	return out
}

func selectIDs(t *testing.T, root *testElement, selector string) []string {
	t.Helper()
	sel, err := Parse(selector)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", selector, err)
	}
	var ids []string
	for _, e := range root.walk() {
		if sel.Match(e) {
			ids = append(ids, e.attrs["id"])
		}
	}
	return ids
}

func testTree() *testElement {
	return el("html", map[string]string{"id": "root"},
		el("body", map[string]string{"id": "body"},
			el("ul", map[string]string{"id": "list", "class": "items"},
				el("li", map[string]string{"id": "a", "class": "item first", "data-k": "x"}),
				el("li", map[string]string{"id": "b", "class": "item", "lang": "en-US"}),
				el("li", map[string]string{"id": "c", "class": "item last", "data-k": "xyz"}),
			),
			el("p", map[string]string{"id": "p1"}),
			el("input", map[string]string{"id": "in", "type": "checkbox", "checked": "", "disabled": ""}),
		),
	)
}

func TestParseValid(t *testing.T) {
	tests := []string{
		"div", ".class", "#id", "*", "div.class#id", "div.a.b",
		"div p", "div > p", "div + p", "div ~ p", "ul li a",
		"h1, h2 ,h3", "[href]", "[href=\"x\"]", "[lang|=en]", "[a^=b i]",
		"li:nth-child(2n+1)", "li:not(.first, .last)", "p::before", "  li  ",
		":is(ul) > li", "div:has(p)", "ul:has(> li)", "li:has(+ li, ~ p)",
		"div:has( >  p.x)",
	}
	for _, input := range tests {
		if _, err := Parse(input); err != nil {
			t.Errorf("Parse(%q) error = %v", input, err)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []string{
		"", "   ", "div >", "> div", "..a", "#1abc", "div,", "[",
		"[href", "[=x]", "[a~b]", "li:nth-child(2", "a!b", "div)", "::",
		"li:not(> a)", "ul:has(>)", "ul:has(> > li)",
	}
	for _, input := range tests {
		_, err := Parse(input)
		if err == nil {
			t.Errorf("Parse(%q) expected error, got nil", input)
			continue
		}
		if !errors.Is(err, ErrInvalidSelector) {
			t.Errorf("Parse(%q) error %v does not wrap ErrInvalidSelector", input, err)
		}
	}
}

func TestParseStructure(t *testing.T) {
	sel := MustParse("ul.items > li#a[data-k=\"x\"]:first-child, p")
	if len(sel.Complex) != 2 {
		t.Fatalf("Expected 2 complex selectors, got %d", len(sel.Complex))
	}

	got := sel.Complex[0].Compounds
	want := []*CompoundSelector{
		{Type: "ul", Classes: []string{"items"}, Combinator: CombinatorChild},
		{
			Type:          "li",
			IDs:           []string{"a"},
			Attributes:    []*AttributeMatcher{{Name: "data-k", Operator: AttrEquals, Value: "x"}},
			PseudoClasses: []*PseudoClass{{Name: "first-child"}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("compound mismatch (-want +got):\n%s", diff)
	}
}

func TestMatch(t *testing.T) {
	root := testTree()
	tests := []struct {
		selector string
		want     []string
	}{
		{"li", []string{"a", "b", "c"}},
		{"LI", []string{"a", "b", "c"}},
		{"#b", []string{"b"}},
		{".item.last", []string{"c"}},
		{"ul > li", []string{"a", "b", "c"}},
		{"body li", []string{"a", "b", "c"}},
		{"html > li", nil},
		{"li + li", []string{"b", "c"}},
		{"#a ~ li", []string{"b", "c"}},
		{"ul ~ p", []string{"p1"}},
		{"[data-k]", []string{"a", "c"}},
		{"[data-k=x]", []string{"a"}},
		{"[data-k^=x]", []string{"a", "c"}},
		{"[data-k$=z]", []string{"c"}},
		{"[data-k*=y]", []string{"c"}},
		{"[class~=first]", []string{"a"}},
		{"[lang|=en]", []string{"b"}},
		{"[DATA-K=X i]", []string{"a"}},
		{":root", []string{"root"}},
		{"li:first-child", []string{"a"}},
		{"li:last-child", []string{"c"}},
		{"li:nth-child(2)", []string{"b"}},
		{"li:nth-child(odd)", []string{"a", "c"}},
		{"li:nth-last-child(1)", []string{"c"}},
		{"li:not(.first)", []string{"b", "c"}},
		{"li:is(.first, .last)", []string{"a", "c"}},
		{"ul:has(.last)", []string{"list"}},
		{"ul:has(> li.last)", []string{"list"}},
		{"body:has(> li)", nil},
		{"body:has(> ul > li#b)", []string{"body"}},
		{"body:has(li + li.last)", []string{"body"}},
		{"li:has(+ li.last)", []string{"b"}},
		{"li:has(~ .last)", []string{"a", "b"}},
		{"ul:has(+ p:empty)", []string{"list"}},
		{"ul:has(~ input, > p)", []string{"list"}},
		{"p:empty", []string{"p1"}},
		{"input:checked:disabled", []string{"in"}},
		{"input:enabled", nil},
		{":lang(en)", []string{"b"}},
		{"li::before", nil},
		{"li, p", []string{"a", "b", "c", "p1"}},
		{"li:hover", nil},
	}
	for _, tt := range tests {
		got := selectIDs(t, root, tt.selector)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("selector %q mismatch (-want +got):\n%s", tt.selector, diff)
		}
	}
}

func TestMatchDescendantBacktracks(t *testing.T) {
	// "div.x span" must find the outer div.x even though the nearest div
	// ancestor lacks the class.
	root := el("div", map[string]string{"id": "outer", "class": "x"},
		el("div", map[string]string{"id": "inner"},
			el("span", map[string]string{"id": "s"}),
		),
	)
	got := selectIDs(t, root, "div.x span")
	if diff := cmp.Diff([]string{"s"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	got = selectIDs(t, root, "div.x > div > span")
	if diff := cmp.Diff([]string{"s"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRelative(t *testing.T) {
	sel := MustParse("ul:has(> li, p)")
	has := sel.Complex[0].Compounds[0].PseudoClasses[0].Selector
	var got []Combinator
	for _, cs := range has.Complex {
		got = append(got, cs.Relative)
	}
	want := []Combinator{CombinatorChild, CombinatorDescendant}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("relative combinators mismatch (-want +got):\n%s", diff)
	}
	if r := sel.Complex[0].Relative; r != CombinatorNone {
		t.Errorf("Expected top-level selector to be absolute, got %v", r)
	}
}

func TestMatchScope(t *testing.T) {
	root := testTree()
	list := root.children[0].children[0]
	sel := MustParse(":scope > li")
	var ids []string
	for _, e := range root.walk() {
		if sel.MatchScoped(e, list) {
			ids = append(ids, e.attrs["id"])
		}
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, ids); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestParseAnPlusB(t *testing.T) {
	tests := []struct {
		input string
		a, b  int
		ok    bool
	}{
		{"odd", 2, 1, true},
		{"even", 2, 0, true},
		{"3", 0, 3, true},
		{"n", 1, 0, true},
		{"-n+3", -1, 3, true},
		{"2n-1", 2, -1, true},
		{" 2n + 1 ", 2, 1, true},
		{"", 0, 0, false},
		{"x", 0, 0, false},
		{"2n1", 0, 0, false},
	}
	for _, tt := range tests {
		a, b, ok := ParseAnPlusB(tt.input)
		if a != tt.a || b != tt.b || ok != tt.ok {
			t.Errorf("ParseAnPlusB(%q) = (%d, %d, %v), expected (%d, %d, %v)", tt.input, a, b, ok, tt.a, tt.b, tt.ok)
		}
	}
}
