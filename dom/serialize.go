package dom

import (
	"strings"
)

// https://html.spec.whatwg.org/multipage/parsing.html#escapingString
var (
	textEscaper = strings.NewReplacer("&", "&amp;", "\u00a0", "&nbsp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "\u00a0", "&nbsp;", "\"", "&quot;")
)

// Serialize returns the markup of n: the outer HTML of an element, the
// children of a document or fragment, escaped text for a text node. The
// window serializes to "".
func Serialize(n *Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	serializeNode(n, &sb)
	return sb.String()
}

// serializeNode writes the HTML serialization of n to sb.
func serializeNode(n *Node, sb *strings.Builder) {
	switch n.nodeType {
	case TextNode:
		if parent := n.ParentElement(); parent != nil && isRawTextElement(parent.LocalName()) {
			sb.WriteString(n.nodeValue)
			return
		}
		sb.WriteString(textEscaper.Replace(n.nodeValue))
	case CommentNode:
		sb.WriteString("<!--")
		sb.WriteString(n.nodeValue)
		sb.WriteString("-->")
	case DocumentTypeNode:
		sb.WriteString("<!DOCTYPE ")
		sb.WriteString(n.nodeName)
		sb.WriteString(">")
	case ElementNode:
		el := (*Element)(n)
		tagName := el.LocalName()
		sb.WriteString("<")
		sb.WriteString(tagName)
		for _, attr := range el.elementData.attrs {
			sb.WriteString(" ")
			sb.WriteString(attr.name)
			sb.WriteString("=\"")
			sb.WriteString(attrEscaper.Replace(attr.value))
			sb.WriteString("\"")
		}
		sb.WriteString(">")
		if isVoidElement(tagName) {
			return
		}
		for child := n.firstChild; child != nil; child = child.nextSibling {
			serializeNode(child, sb)
		}
		sb.WriteString("</")
		sb.WriteString(tagName)
		sb.WriteString(">")
	case DocumentNode, DocumentFragmentNode:
		for child := n.firstChild; child != nil; child = child.nextSibling {
			serializeNode(child, sb)
		}
	}
}

// isVoidElement returns true if the element is a void element.
func isVoidElement(tagName string) bool {
	switch tagName {
	case "area", "base", "br", "col", "embed", "hr", "img", "input",
		"link", "meta", "param", "source", "track", "wbr":
		return true
	}
	return false
}

func isRawTextElement(tagName string) bool {
	switch tagName {
	case "style", "script", "xmp", "iframe", "noembed", "noframes", "plaintext":
		return true
	}
	return false
}
