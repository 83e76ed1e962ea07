package dom

import (
	"strings"
)

// Node represents a node in the DOM tree. Element, Document, DocumentFragment
// and Window are defined over Node and convert with AsNode.
type Node struct {
	nodeType  NodeType
	nodeName  string
	nodeValue string // Text and Comment data
	ownerDoc  *Document

	parentNode  *Node
	firstChild  *Node
	lastChild   *Node
	prevSibling *Node
	nextSibling *Node

	// Type-specific data (only one will be non-nil based on nodeType)
	elementData  *elementData
	documentData *documentData

	listeners map[string][]*registeredListener
}

// newNode creates a new node with the given type and name.
func newNode(nodeType NodeType, nodeName string, ownerDoc *Document) *Node {
	return &Node{
		nodeType: nodeType,
		nodeName: nodeName,
		ownerDoc: ownerDoc,
	}
}

// NodeType returns the type of the node.
func (n *Node) NodeType() NodeType {
	return n.nodeType
}

// NodeName returns the name of the node: the upper-case tag name for
// elements, "#text", "#comment", "#document", "#document-fragment", the
// doctype name, or "#window".
func (n *Node) NodeName() string {
	return n.nodeName
}

// NodeValue returns the data of text and comment nodes, "" otherwise.
func (n *Node) NodeValue() string {
	return n.nodeValue
}

// SetNodeValue sets the data of text and comment nodes. It is a no-op for
// other node types.
func (n *Node) SetNodeValue(value string) {
	if n.nodeType == TextNode || n.nodeType == CommentNode {
		n.nodeValue = value
	}
}

// OwnerDocument returns the Document that owns this node.
// For Document nodes, this returns nil.
func (n *Node) OwnerDocument() *Document {
	if n.nodeType == DocumentNode {
		return nil
	}
	return n.ownerDoc
}

// document returns the owning document, or the node itself for documents.
func (n *Node) document() *Document {
	if n.nodeType == DocumentNode {
		return (*Document)(n)
	}
	return n.ownerDoc
}

// ParentNode returns the parent of this node.
func (n *Node) ParentNode() *Node {
	return n.parentNode
}

// ParentElement returns the parent Element, or nil if the parent is not an element.
func (n *Node) ParentElement() *Element {
	if n.parentNode != nil && n.parentNode.nodeType == ElementNode {
		return (*Element)(n.parentNode)
	}
	return nil
}

// ChildNodes returns a live NodeList of child nodes.
func (n *Node) ChildNodes() *NodeList {
	return newLiveNodeList(n)
}

// FirstChild returns the first child node, or nil if there are no children.
func (n *Node) FirstChild() *Node {
	return n.firstChild
}

// LastChild returns the last child node, or nil if there are no children.
func (n *Node) LastChild() *Node {
	return n.lastChild
}

// PreviousSibling returns the previous sibling node, or nil if this is the first child.
func (n *Node) PreviousSibling() *Node {
	return n.prevSibling
}

// NextSibling returns the next sibling node, or nil if this is the last child.
func (n *Node) NextSibling() *Node {
	return n.nextSibling
}

// HasChildNodes returns true if this node has any child nodes.
func (n *Node) HasChildNodes() bool {
	return n.firstChild != nil
}

// GetRootNode returns the topmost ancestor of the node.
func (n *Node) GetRootNode() *Node {
	root := n
	for root.parentNode != nil {
		root = root.parentNode
	}
	return root
}

// IsConnected returns true if the node's root is a document.
func (n *Node) IsConnected() bool {
	return n.GetRootNode().nodeType == DocumentNode
}

// Contains returns true if other is this node or one of its descendants.
func (n *Node) Contains(other *Node) bool {
	for cur := other; cur != nil; cur = cur.parentNode {
		if cur == n {
			return true
		}
	}
	return false
}

// TextContent returns the text content of the node and its descendants.
// Documents and doctypes have no text content.
func (n *Node) TextContent() string {
	switch n.nodeType {
	case DocumentNode, DocumentTypeNode, WindowNode:
		return ""
	case TextNode, CommentNode:
		return n.nodeValue
	default:
		var sb strings.Builder
		n.collectTextContent(&sb)
		return sb.String()
	}
}

func (n *Node) collectTextContent(sb *strings.Builder) {
	for child := n.firstChild; child != nil; child = child.nextSibling {
		switch child.nodeType {
		case TextNode:
			sb.WriteString(child.nodeValue)
		case ElementNode:
			child.collectTextContent(sb)
		}
	}
}

// SetTextContent replaces all children of an element or fragment with a
// single text node (none for ""). For text and comment nodes it sets the data.
func (n *Node) SetTextContent(value string) {
	switch n.nodeType {
	case DocumentNode, DocumentTypeNode, WindowNode:
		return
	case TextNode, CommentNode:
		n.nodeValue = value
	default:
		n.removeAllChildren()
		if value != "" {
			n.insertBeforeInternal(n.document().CreateTextNode(value), nil)
		}
	}
}

func (n *Node) removeAllChildren() {
	for n.firstChild != nil {
		n.removeChildInternal(n.firstChild)
	}
}

// AppendChild adds a node to the end of the list of children of this node.
// For error-returning version, use AppendChildWithError.
func (n *Node) AppendChild(child *Node) *Node {
	result, _ := n.AppendChildWithError(child)
	return result
}

// AppendChildWithError adds a node to the end of the list of children of this node.
// Returns an error if the operation violates DOM hierarchy constraints.
func (n *Node) AppendChildWithError(child *Node) (*Node, error) {
	return n.InsertBeforeWithError(child, nil)
}

// InsertBefore inserts a node before a reference child node.
// If refChild is nil, the node is appended to the end.
// For error-returning version, use InsertBeforeWithError.
func (n *Node) InsertBefore(newChild, refChild *Node) *Node {
	result, _ := n.InsertBeforeWithError(newChild, refChild)
	return result
}

// InsertBeforeWithError inserts a node before a reference child node.
// If refChild is nil, the node is appended to the end.
// Returns an error if the operation violates DOM hierarchy constraints.
func (n *Node) InsertBeforeWithError(newChild, refChild *Node) (*Node, error) {
	if err := n.validatePreInsertion(newChild, refChild); err != nil {
		return nil, err
	}
	return n.insertBefore(newChild, refChild), nil
}

// validatePreInsertion implements the pre-insertion validation steps.
// https://dom.spec.whatwg.org/#concept-node-pre-insert
func (n *Node) validatePreInsertion(node, child *Node) error {
	if node == nil {
		return ErrHierarchyRequest("The node to be inserted is null.")
	}
	if !n.canHaveChildren() {
		return ErrHierarchyRequest("The operation would yield an incorrect node tree.")
	}
	if n.isInclusiveAncestor(node) {
		return ErrHierarchyRequest("The new child element contains the parent.")
	}
	if child != nil && child.parentNode != n {
		return ErrNotFound("The node before which the new node is to be inserted is not a child of this node.")
	}

	switch node.nodeType {
	case ElementNode, TextNode, CommentNode, DocumentFragmentNode, DocumentTypeNode:
	default:
		return ErrHierarchyRequest("The operation would yield an incorrect node tree.")
	}
	if node.nodeType == TextNode && n.nodeType == DocumentNode {
		return ErrHierarchyRequest("Cannot insert Text node as a direct child of Document.")
	}
	if node.nodeType == DocumentTypeNode && n.nodeType != DocumentNode {
		return ErrHierarchyRequest("DocumentType nodes can only be children of Document.")
	}

	if n.nodeType == DocumentNode {
		elements := 0
		if node.nodeType == ElementNode {
			elements = 1
		} else if node.nodeType == DocumentFragmentNode {
			for c := node.firstChild; c != nil; c = c.nextSibling {
				switch c.nodeType {
				case ElementNode:
					elements++
				case TextNode:
					return ErrHierarchyRequest("Cannot insert Text node as a direct child of Document.")
				}
			}
		}
		if elements > 1 || (elements == 1 && n.hasElementChild()) {
			return ErrHierarchyRequest("Document can have only one element child.")
		}
	}
	return nil
}

// canHaveChildren returns true if this node can have child nodes.
func (n *Node) canHaveChildren() bool {
	switch n.nodeType {
	case DocumentNode, DocumentFragmentNode, ElementNode:
		return true
	default:
		return false
	}
}

// isInclusiveAncestor returns true if node is this node or an ancestor of this node.
func (n *Node) isInclusiveAncestor(node *Node) bool {
	for current := n; current != nil; current = current.parentNode {
		if current == node {
			return true
		}
	}
	return false
}

func (n *Node) hasElementChild() bool {
	for c := n.firstChild; c != nil; c = c.nextSibling {
		if c.nodeType == ElementNode {
			return true
		}
	}
	return false
}

func (n *Node) insertBefore(newChild, refChild *Node) *Node {
	// A fragment inserts its children, in order, and is left empty.
	if newChild.nodeType == DocumentFragmentNode {
		var children []*Node
		for child := newChild.firstChild; child != nil; child = child.nextSibling {
			children = append(children, child)
		}
		for _, child := range children {
			newChild.removeChildInternal(child)
			n.insertBeforeInternal(child, refChild)
		}
		return newChild
	}

	if newChild == refChild {
		return newChild
	}
	if newChild.parentNode != nil {
		newChild.parentNode.removeChildInternal(newChild)
	}
	n.insertBeforeInternal(newChild, refChild)
	return newChild
}

// insertBeforeInternal links newChild before refChild (or at the end) without
// validation. newChild must be detached.
func (n *Node) insertBeforeInternal(newChild, refChild *Node) {
	newChild.parentNode = n
	if doc := n.document(); doc != nil && newChild.ownerDoc != doc {
		adoptNode(newChild, doc)
	}

	if refChild == nil {
		newChild.prevSibling = n.lastChild
		newChild.nextSibling = nil
		if n.lastChild != nil {
			n.lastChild.nextSibling = newChild
		} else {
			n.firstChild = newChild
		}
		n.lastChild = newChild
		return
	}

	newChild.prevSibling = refChild.prevSibling
	newChild.nextSibling = refChild
	if refChild.prevSibling != nil {
		refChild.prevSibling.nextSibling = newChild
	} else {
		n.firstChild = newChild
	}
	refChild.prevSibling = newChild
}

// adoptNode recursively sets the ownerDocument for a node and its descendants.
func adoptNode(node *Node, doc *Document) {
	node.ownerDoc = doc
	for child := node.firstChild; child != nil; child = child.nextSibling {
		adoptNode(child, doc)
	}
}

// RemoveChild removes a child node from this node.
// For error-returning version, use RemoveChildWithError.
func (n *Node) RemoveChild(child *Node) *Node {
	result, _ := n.RemoveChildWithError(child)
	return result
}

// RemoveChildWithError removes a child node from this node.
// Returns an error if the child is not a child of this node.
func (n *Node) RemoveChildWithError(child *Node) (*Node, error) {
	if child == nil {
		return nil, ErrNotFound("The node to be removed is null.")
	}
	if child.parentNode != n {
		return nil, ErrNotFound("The node to be removed is not a child of this node.")
	}
	n.removeChildInternal(child)
	return child, nil
}

// removeChildInternal unlinks child, which must be a child of n.
func (n *Node) removeChildInternal(child *Node) {
	if child.prevSibling != nil {
		child.prevSibling.nextSibling = child.nextSibling
	} else {
		n.firstChild = child.nextSibling
	}
	if child.nextSibling != nil {
		child.nextSibling.prevSibling = child.prevSibling
	} else {
		n.lastChild = child.prevSibling
	}
	child.parentNode = nil
	child.prevSibling = nil
	child.nextSibling = nil
}

// Remove detaches the node from its parent. It is a no-op for detached nodes.
func (n *Node) Remove() {
	if n.parentNode != nil {
		n.parentNode.removeChildInternal(n)
	}
}

// CloneNode returns a copy of the node, including descendants when deep is
// set. Event listeners are not copied.
func (n *Node) CloneNode(deep bool) *Node {
	clone := &Node{
		nodeType:  n.nodeType,
		nodeName:  n.nodeName,
		nodeValue: n.nodeValue,
		ownerDoc:  n.ownerDoc,
	}
	switch n.nodeType {
	case ElementNode:
		ed := *n.elementData
		ed.attrs = append([]attribute(nil), n.elementData.attrs...)
		ed.classList = nil
		if n.elementData.value != nil {
			v := *n.elementData.value
			ed.value = &v
		}
		clone.elementData = &ed
	case DocumentNode:
		dd := *n.documentData
		dd.window = nil
		dd.implementation = nil
		clone.documentData = &dd
		clone.ownerDoc = (*Document)(clone)
	case WindowNode:
		return nil
	}
	if deep {
		for child := n.firstChild; child != nil; child = child.nextSibling {
			clone.insertBeforeInternal(child.CloneNode(true), nil)
		}
	}
	return clone
}
