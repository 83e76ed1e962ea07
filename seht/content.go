package seht

import (
	"github.com/chrisuehlinger/seht/dom"
)

// Markup is content for Before, After, Append and Prepend: an HTML string
// or a collection. A collection is inserted as a copy of its markup, so the
// inserted nodes are new and carry none of the original listeners.
type Markup interface {
	markup() string
}

// HTML is literal markup.
type HTML string

func (h HTML) markup() string { return string(h) }

func (c *Collection) markup() string {
	if c == nil {
		return ""
	}
	return c.String()
}

func (c *Collection) elements() []*dom.Element {
	out := make([]*dom.Element, 0, len(c.nodes))
	for _, n := range c.nodes {
		if n.NodeType() == dom.ElementNode {
			out = append(out, (*dom.Element)(n))
		}
	}
	return out
}

// first returns the first node as an element, or nil.
func (c *Collection) first() *dom.Element {
	if len(c.nodes) == 0 || c.nodes[0].NodeType() != dom.ElementNode {
		return nil
	}
	return (*dom.Element)(c.nodes[0])
}

// HTML returns the inner HTML of the first node, or "" when it is not an
// element or the collection is empty.
func (c *Collection) HTML() string {
	if el := c.first(); el != nil {
		return el.InnerHTML()
	}
	return ""
}

// SetHTML replaces the children of every element with markup.
func (c *Collection) SetHTML(markup string) *Collection {
	for _, el := range c.elements() {
		if err := el.SetInnerHTML(markup); err != nil {
			c.fail(err)
		}
	}
	return c
}

// Text returns the text content of the first node.
func (c *Collection) Text() string {
	if len(c.nodes) == 0 {
		return ""
	}
	return c.nodes[0].TextContent()
}

// SetText replaces the children of every node with a single text node.
func (c *Collection) SetText(text string) *Collection {
	for _, n := range c.nodes {
		n.SetTextContent(text)
	}
	return c
}

// Value returns the form value of the first node.
func (c *Collection) Value() string {
	if el := c.first(); el != nil {
		return el.Value()
	}
	return ""
}

// SetValue sets the form value of every element.
func (c *Collection) SetValue(value string) *Collection {
	for _, el := range c.elements() {
		el.SetValue(value)
	}
	return c
}

// Before inserts m before every element.
func (c *Collection) Before(m Markup) *Collection {
	return c.insertAdjacent("beforebegin", m)
}

// After inserts m after every element.
func (c *Collection) After(m Markup) *Collection {
	return c.insertAdjacent("afterend", m)
}

// Append inserts m as the last children of every element.
func (c *Collection) Append(m Markup) *Collection {
	return c.insertAdjacent("beforeend", m)
}

// Prepend inserts m as the first children of every element.
func (c *Collection) Prepend(m Markup) *Collection {
	return c.insertAdjacent("afterbegin", m)
}

func (c *Collection) insertAdjacent(position string, m Markup) *Collection {
	if m == nil {
		return c
	}
	markup := m.markup()
	for _, el := range c.elements() {
		if err := el.InsertAdjacentHTML(position, markup); err != nil {
			c.fail(err)
		}
	}
	return c
}

// AppendTo appends a copy of c to every node selected by sel and returns
// the target collection.
func (c *Collection) AppendTo(sel Selector, ctx ...Selector) *Collection {
	return c.s.Find(sel, ctx...).Append(c)
}

// PrependTo prepends a copy of c to every node selected by sel and returns
// the target collection.
func (c *Collection) PrependTo(sel Selector, ctx ...Selector) *Collection {
	return c.s.Find(sel, ctx...).Prepend(c)
}
