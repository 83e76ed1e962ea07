package seht

import (
	"regexp"

	"go.uber.org/zap"

	"github.com/chrisuehlinger/seht/dom"
)

var (
	idPattern   = regexp.MustCompile(`^#[\w-]+$`)
	htmlPattern = regexp.MustCompile(`^\s*<([^\s>]+)`)
)

// resolve turns sel into a flat node sequence. It never fails: malformed
// input resolves to nothing.
func (s *Seht) resolve(sel Selector, ctx Selector) []*dom.Node {
	switch v := sel.(type) {
	case nil:
		return nil
	case Query:
		if v == "" {
			return nil
		}
		return s.query(string(v), ctx)
	case nodeSelector:
		if v.node == nil {
			return nil
		}
		return []*dom.Node{v.node}
	case Nodes:
		return v
	case listSelector:
		if v.list == nil {
			return nil
		}
		return v.list.ToSlice()
	case *Collection:
		if v == nil {
			return nil
		}
		return v.nodes
	}
	s.logger.Debug("unsupported selector", zap.String("type", describe(sel)))
	return nil
}

// query runs q against every root of ctx and concatenates the results in
// root order.
func (s *Seht) query(q string, ctx Selector) []*dom.Node {
	roots := s.contextRoots(ctx)
	if len(roots) == 1 {
		return s.queryRoot(q, roots[0])
	}
	var out []*dom.Node
	for _, root := range roots {
		out = append(out, s.queryRoot(q, root)...)
	}
	return out
}

// contextRoots resolves a context into the roots a query searches. The
// window and unusable contexts stand for the document.
func (s *Seht) contextRoots(ctx Selector) []*dom.Node {
	doc := s.doc.AsNode()
	switch v := ctx.(type) {
	case nil:
		return []*dom.Node{doc}
	case Query:
		if v == "" {
			return []*dom.Node{doc}
		}
		return s.windowToDocument(Unique(s.query(string(v), nil)))
	case nodeSelector:
		if v.node == nil {
			return []*dom.Node{doc}
		}
		return s.windowToDocument([]*dom.Node{v.node})
	case Nodes, listSelector, *Collection:
		return s.windowToDocument(Unique(s.resolve(ctx, nil)))
	}
	s.logger.Debug("unsupported context, using document", zap.String("type", describe(ctx)))
	return []*dom.Node{doc}
}

func (s *Seht) windowToDocument(nodes []*dom.Node) []*dom.Node {
	replaced := false
	for i, n := range nodes {
		if n.NodeType() == dom.WindowNode {
			if !replaced {
				nodes = append([]*dom.Node(nil), nodes...)
				replaced = true
			}
			nodes[i] = s.doc.AsNode()
		}
	}
	if replaced {
		return Unique(nodes)
	}
	return nodes
}

// queryRoot runs q against a single root: an id lookup when the root is a
// document or fragment, fragment construction for markup, and a selector
// query otherwise.
func (s *Seht) queryRoot(q string, root *dom.Node) []*dom.Node {
	if idPattern.MatchString(q) {
		var el *dom.Element
		switch root.NodeType() {
		case dom.DocumentNode:
			el = (*dom.Document)(root).GetElementById(q[1:])
		case dom.DocumentFragmentNode:
			el = (*dom.DocumentFragment)(root).GetElementById(q[1:])
		default:
			return s.selectAll(q, root)
		}
		if el == nil {
			return nil
		}
		return []*dom.Node{el.AsNode()}
	}
	if htmlPattern.MatchString(q) {
		return s.htmlify(q)
	}
	return s.selectAll(q, root)
}

func (s *Seht) selectAll(q string, root *dom.Node) []*dom.Node {
	list, err := root.QuerySelectorAllWithError(q)
	if err != nil {
		s.logger.Debug("invalid selector", zap.String("query", q), zap.Error(err))
		return nil
	}
	return list.ToSlice()
}

// htmlify parses markup in a throwaway document and returns its top-level
// elements. Text at the top level is dropped.
func (s *Seht) htmlify(markup string) []*dom.Node {
	scratch := s.doc.Implementation().CreateHTMLDocument(nil)
	body := scratch.Body()
	if err := body.SetInnerHTML(markup); err != nil {
		s.logger.Debug("unparseable markup", zap.String("markup", markup), zap.Error(err))
		return nil
	}
	children := body.Children()
	nodes := make([]*dom.Node, len(children))
	for i, child := range children {
		nodes[i] = child.AsNode()
	}
	return nodes
}

// Unique returns nodes without nils and repeated entries, keeping the first
// occurrence of each node.
func Unique(nodes []*dom.Node) []*dom.Node {
	if len(nodes) <= 1 {
		if len(nodes) == 1 && nodes[0] != nil {
			return []*dom.Node{nodes[0]}
		}
		return nil
	}
	seen := make(map[*dom.Node]struct{}, len(nodes))
	out := make([]*dom.Node, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
