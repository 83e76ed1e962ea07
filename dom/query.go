package dom

import (
	"github.com/chrisuehlinger/seht/css"
)

// cssElement adapts *Element to css.Element.
type cssElement struct {
	el *Element
}

// asCSSElement converts e, mapping nil to a nil interface.
func asCSSElement(e *Element) css.Element {
	if e == nil {
		return nil
	}
	return cssElement{el: e}
}

func (c cssElement) LocalName() string         { return c.el.LocalName() }
func (c cssElement) ID() string                { return c.el.Id() }
func (c cssElement) HasClass(name string) bool { return c.el.ClassList().Contains(name) }

func (c cssElement) Attr(name string) (string, bool) {
	return c.el.LookupAttribute(name)
}

func (c cssElement) ParentElement() css.Element {
	return asCSSElement(c.el.AsNode().ParentElement())
}

func (c cssElement) PreviousElementSibling() css.Element {
	return asCSSElement(c.el.PreviousElementSibling())
}

func (c cssElement) NextElementSibling() css.Element {
	return asCSSElement(c.el.NextElementSibling())
}

func (c cssElement) FirstElementChild() css.Element {
	return asCSSElement(c.el.FirstElementChild())
}

func (c cssElement) IsRoot() bool {
	parent := c.el.parentNode
	return parent != nil && parent.nodeType == DocumentNode
}

func (c cssElement) HasChildNodes() bool {
	for child := c.el.firstChild; child != nil; child = child.nextSibling {
		if child.nodeType == ElementNode || child.nodeType == TextNode {
			return true
		}
	}
	return false
}

// parseSelector wraps selector syntax errors as DOM SyntaxErrors.
func parseSelector(selector string) (*css.Selector, error) {
	sel, err := css.Parse(selector)
	if err != nil {
		return nil, &DOMError{Name: "SyntaxError", Message: err.Error()}
	}
	return sel, nil
}

// QuerySelector returns the first matching descendant, or nil.
func (n *Node) QuerySelector(selector string) *Element {
	list := n.QuerySelectorAll(selector)
	if list.Length() == 0 {
		return nil
	}
	return (*Element)(list.Item(0))
}

// QuerySelectorAll returns all matching descendants. Invalid selectors yield
// an empty list.
func (n *Node) QuerySelectorAll(selector string) *NodeList {
	list, err := n.QuerySelectorAllWithError(selector)
	if err != nil {
		return NewStaticNodeList(nil)
	}
	return list
}

// QuerySelectorAllWithError returns a static list of all element descendants
// of n matching selector, in document order. :scope refers to n when n is an
// element.
func (n *Node) QuerySelectorAllWithError(selector string) (*NodeList, error) {
	sel, err := parseSelector(selector)
	if err != nil {
		return nil, err
	}
	var scope css.Element
	if n.nodeType == ElementNode {
		scope = asCSSElement((*Element)(n))
	}

	var results []*Node
	var walk func(node *Node)
	walk = func(node *Node) {
		for child := node.firstChild; child != nil; child = child.nextSibling {
			if child.nodeType != ElementNode {
				continue
			}
			if sel.MatchScoped(asCSSElement((*Element)(child)), scope) {
				results = append(results, child)
			}
			walk(child)
		}
	}
	walk(n)
	return &NodeList{nodes: results}, nil
}
