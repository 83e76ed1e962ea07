package dom

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseHTML parses an HTML string into a new Document. The document starts
// in the "loading" ready state; call FinishLoading once scripts have run.
func ParseHTML(content string) (*Document, error) {
	return ParseHTMLReader(strings.NewReader(content))
}

// ParseHTMLReader is ParseHTML reading from r.
func ParseHTMLReader(r io.Reader) (*Document, error) {
	netDoc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	doc := NewDocument()
	doc.documentData.readyState = ReadyStateLoading
	convertHTMLTree(netDoc, doc.AsNode(), doc)
	return doc, nil
}

// convertHTMLTree appends converted copies of src's children to parent.
func convertHTMLTree(src *html.Node, parent *Node, doc *Document) {
	for c := src.FirstChild; c != nil; c = c.NextSibling {
		if node := convertHTMLNode(c, doc); node != nil {
			parent.insertBeforeInternal(node, nil)
		}
	}
}

// convertHTMLNode converts an html.Node and its subtree, or returns nil for
// node types the DOM does not model.
func convertHTMLNode(n *html.Node, doc *Document) *Node {
	var node *Node

	switch n.Type {
	case html.TextNode:
		node = doc.CreateTextNode(n.Data)
	case html.ElementNode:
		namespace := HTMLNamespace
		switch n.Namespace {
		case "svg":
			namespace = "http://www.w3.org/2000/svg"
		case "math":
			namespace = "http://www.w3.org/1998/Math/MathML"
		}
		el := doc.createElement(n.Data, namespace)
		for _, attr := range n.Attr {
			name := attr.Key
			if attr.Namespace != "" {
				name = attr.Namespace + ":" + attr.Key
			}
			if el.findAttribute(name) < 0 {
				el.elementData.attrs = append(el.elementData.attrs, attribute{name: name, value: attr.Val})
			}
		}
		node = el.AsNode()
	case html.CommentNode:
		node = doc.CreateComment(n.Data)
	case html.DoctypeNode:
		node = newNode(DocumentTypeNode, n.Data, doc)
	default:
		return nil
	}

	convertHTMLTree(n, node, doc)
	return node
}

// parseHTMLFragment parses markup as the children of context. A nil context
// parses as if inside <body>.
func parseHTMLFragment(markup string, context *Element) ([]*Node, error) {
	tagName := "body"
	var doc *Document
	if context != nil {
		tagName = context.LocalName()
		doc = context.ownerDoc
	}
	contextNode := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Lookup([]byte(tagName)),
		Data:     tagName,
	}

	nodes, err := html.ParseFragment(strings.NewReader(markup), contextNode)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		doc = NewDocument()
	}

	result := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if node := convertHTMLNode(n, doc); node != nil {
			result = append(result, node)
		}
	}
	return result, nil
}
