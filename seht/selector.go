package seht

import (
	"fmt"

	"github.com/chrisuehlinger/seht/dom"
)

// Selector describes what to find or wrap. It is a closed set: nil, Query,
// Nodes, *Collection, and the values returned by Node, Element, List and
// Window. The same type is used for contexts.
type Selector interface {
	selector()
}

// Query is a CSS selector, a "#id" lookup or an HTML fragment such as
// "<li>new</li>".
type Query string

// Nodes is an ordered sequence of nodes, used as-is.
type Nodes []*dom.Node

type nodeSelector struct {
	node *dom.Node
}

type listSelector struct {
	list *dom.NodeList
}

// invalidSelector holds a value From could not convert. It resolves to
// nothing and, as a context, to the document.
type invalidSelector struct {
	value any
}

func (Query) selector()           {}
func (Nodes) selector()           {}
func (nodeSelector) selector()    {}
func (listSelector) selector()    {}
func (invalidSelector) selector() {}
func (*Collection) selector()     {}

// Node selects a single node.
func Node(n *dom.Node) Selector {
	return nodeSelector{node: n}
}

// Element selects a single element.
func Element(e *dom.Element) Selector {
	if e == nil {
		return nodeSelector{}
	}
	return nodeSelector{node: e.AsNode()}
}

// List selects the nodes of a NodeList, read at resolution time.
func List(nl *dom.NodeList) Selector {
	return listSelector{list: nl}
}

// Window selects the window. As a context it stands for its document.
func Window(w *dom.Window) Selector {
	if w == nil {
		return nodeSelector{}
	}
	return nodeSelector{node: w.AsNode()}
}

// From converts a dynamic value into a Selector. Strings become queries;
// nodes, elements, documents, fragments and the window select themselves;
// slices of those become Nodes. Anything else yields a selector that matches
// nothing.
func From(v any) Selector {
	switch v := v.(type) {
	case nil:
		return nil
	case Selector:
		return v
	case string:
		return Query(v)
	case *dom.Node:
		return Node(v)
	case *dom.Element:
		return Element(v)
	case *dom.Document:
		if v == nil {
			return nodeSelector{}
		}
		return Node(v.AsNode())
	case *dom.DocumentFragment:
		if v == nil {
			return nodeSelector{}
		}
		return Node(v.AsNode())
	case *dom.Window:
		return Window(v)
	case *dom.NodeList:
		return List(v)
	case []*dom.Node:
		return Nodes(v)
	case []*dom.Element:
		nodes := make(Nodes, 0, len(v))
		for _, e := range v {
			if e != nil {
				nodes = append(nodes, e.AsNode())
			}
		}
		return nodes
	case []any:
		nodes := make(Nodes, 0, len(v))
		for _, item := range v {
			switch sel := From(item).(type) {
			case nodeSelector:
				nodes = append(nodes, sel.node)
			case Nodes:
				nodes = append(nodes, sel...)
			case *Collection:
				if sel != nil {
					nodes = append(nodes, sel.nodes...)
				}
			}
		}
		return nodes
	}
	return invalidSelector{value: v}
}

func describe(sel Selector) string {
	switch v := sel.(type) {
	case invalidSelector:
		return fmt.Sprintf("%T", v.value)
	default:
		return fmt.Sprintf("%T", v)
	}
}
