package seht

import (
	"strings"

	"go.uber.org/multierr"

	"github.com/chrisuehlinger/seht/dom"
)

// Collection is an ordered set of nodes. Its membership never changes;
// operations that select other nodes return a new collection, and mutating
// operations return the receiver for chaining.
type Collection struct {
	s     *Seht
	nodes []*dom.Node
	err   error
}

// Len returns the number of nodes held.
func (c *Collection) Len() int {
	return len(c.nodes)
}

// Get returns the node at index i, or nil when i is out of range.
func (c *Collection) Get(i int) *dom.Node {
	if i < 0 || i >= len(c.nodes) {
		return nil
	}
	return c.nodes[i]
}

// ToArray returns a copy of the held nodes.
func (c *Collection) ToArray() []*dom.Node {
	return append([]*dom.Node(nil), c.nodes...)
}

// Err returns the errors raised by the host DOM during chained mutations,
// combined. Fail-open input (unknown selectors, empty names) never produces
// an error.
func (c *Collection) Err() error {
	return c.err
}

func (c *Collection) fail(err error) {
	c.err = multierr.Append(c.err, err)
}

// Each calls fn for every node in order.
func (c *Collection) Each(fn func(n *dom.Node, i int, all []*dom.Node)) *Collection {
	all := c.ToArray()
	for i, n := range all {
		fn(n, i, all)
	}
	return c
}

// Filter returns the nodes for which keep reports true.
func (c *Collection) Filter(keep func(n *dom.Node, i int, all []*dom.Node) bool) *Collection {
	all := c.ToArray()
	var out []*dom.Node
	for i, n := range all {
		if keep(n, i, all) {
			out = append(out, n)
		}
	}
	return c.s.wrap(out)
}

// Map returns the nodes produced by fn. Nil results are dropped and repeats
// collapse to their first occurrence.
func (c *Collection) Map(fn func(n *dom.Node, i int, all []*dom.Node) *dom.Node) *Collection {
	all := c.ToArray()
	out := make([]*dom.Node, 0, len(all))
	for i, n := range all {
		out = append(out, fn(n, i, all))
	}
	return c.s.wrap(out)
}

// FlatMap is Map for functions returning several nodes per input.
func (c *Collection) FlatMap(fn func(n *dom.Node, i int, all []*dom.Node) []*dom.Node) *Collection {
	all := c.ToArray()
	var out []*dom.Node
	for i, n := range all {
		out = append(out, fn(n, i, all)...)
	}
	return c.s.wrap(out)
}

// Eq returns a collection holding only the node at index i, or an empty
// collection when i is out of range.
func (c *Collection) Eq(i int) *Collection {
	if n := c.Get(i); n != nil {
		return c.s.wrap([]*dom.Node{n})
	}
	return c.s.wrap(nil)
}

func (c *Collection) First() *Collection {
	return c.Eq(0)
}

func (c *Collection) Last() *Collection {
	return c.Eq(len(c.nodes) - 1)
}

// Parent returns the parents of the held nodes, each parent once. Nodes
// without a parent contribute nothing.
func (c *Collection) Parent() *Collection {
	return c.Map(func(n *dom.Node, _ int, _ []*dom.Node) *dom.Node {
		return n.ParentNode()
	})
}

// Remove detaches every node from its parent and returns the former
// parents, each once. Detached nodes are skipped.
func (c *Collection) Remove() *Collection {
	parents := make([]*dom.Node, 0, len(c.nodes))
	for _, n := range c.nodes {
		parent := n.ParentNode()
		if parent == nil {
			continue
		}
		if _, err := parent.RemoveChildWithError(n); err != nil {
			c.fail(err)
			continue
		}
		parents = append(parents, parent)
	}
	return c.s.wrap(parents)
}

// Empty removes all children of every node.
func (c *Collection) Empty() *Collection {
	for _, n := range c.nodes {
		for child := n.FirstChild(); child != nil; child = n.FirstChild() {
			n.RemoveChild(child)
		}
	}
	return c
}

// String concatenates the markup of every node, with no separator.
func (c *Collection) String() string {
	var sb strings.Builder
	for _, n := range c.nodes {
		sb.WriteString(dom.Serialize(n))
	}
	return sb.String()
}
