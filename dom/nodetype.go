// Package dom is a small in-memory HTML DOM: nodes, elements, documents and a
// window, with class lists, HTML parsing and serialization, selector queries
// and capture/bubble event dispatch.
// https://dom.spec.whatwg.org/
package dom

// NodeType represents the type of a Node as defined by the DOM Standard.
type NodeType uint16

const (
	// WindowNode marks the window. It is an event target only and never
	// appears in a tree.
	WindowNode NodeType = 0
	// ElementNode represents an Element node.
	ElementNode NodeType = 1
	// TextNode represents a Text node.
	TextNode NodeType = 3
	// CommentNode represents a Comment node.
	CommentNode NodeType = 8
	// DocumentNode represents a Document node.
	DocumentNode NodeType = 9
	// DocumentTypeNode represents a DocumentType node.
	DocumentTypeNode NodeType = 10
	// DocumentFragmentNode represents a DocumentFragment node.
	DocumentFragmentNode NodeType = 11
)

// String returns the string representation of the NodeType.
func (nt NodeType) String() string {
	switch nt {
	case WindowNode:
		return "WINDOW"
	case ElementNode:
		return "ELEMENT_NODE"
	case TextNode:
		return "TEXT_NODE"
	case CommentNode:
		return "COMMENT_NODE"
	case DocumentNode:
		return "DOCUMENT_NODE"
	case DocumentTypeNode:
		return "DOCUMENT_TYPE_NODE"
	case DocumentFragmentNode:
		return "DOCUMENT_FRAGMENT_NODE"
	default:
		return "UNKNOWN_NODE"
	}
}
