package dom

import "iter"

// NodeList is an ordered collection of nodes. ChildNodes returns a live list
// that reflects later tree changes; query results are static snapshots.
type NodeList struct {
	parent *Node   // live lists
	nodes  []*Node // static lists
}

func newLiveNodeList(parent *Node) *NodeList {
	return &NodeList{parent: parent}
}

// NewStaticNodeList creates a static NodeList holding a copy of nodes.
func NewStaticNodeList(nodes []*Node) *NodeList {
	return &NodeList{nodes: append([]*Node(nil), nodes...)}
}

// All iterates over index/node pairs.
func (nl *NodeList) All() iter.Seq2[int, *Node] {
	return func(yield func(int, *Node) bool) {
		if nl.parent == nil {
			for i, n := range nl.nodes {
				if !yield(i, n) {
					return
				}
			}
			return
		}
		i := 0
		for c := nl.parent.firstChild; c != nil; c = c.nextSibling {
			if !yield(i, c) {
				return
			}
			i++
		}
	}
}

// Length returns the number of nodes in the collection.
func (nl *NodeList) Length() int {
	if nl.parent == nil {
		return len(nl.nodes)
	}
	count := 0
	for range nl.All() {
		count++
	}
	return count
}

// Item returns the node at the given index, or nil if the index is out of bounds.
func (nl *NodeList) Item(index int) *Node {
	if index < 0 {
		return nil
	}
	for i, n := range nl.All() {
		if i == index {
			return n
		}
	}
	return nil
}

// ToSlice returns the current nodes as a new slice.
func (nl *NodeList) ToSlice() []*Node {
	out := make([]*Node, 0, nl.Length())
	for _, n := range nl.All() {
		out = append(out, n)
	}
	return out
}
