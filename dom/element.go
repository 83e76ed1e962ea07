package dom

import (
	"strings"
)

// Element represents an element in the DOM tree.
type Element Node

// HTMLNamespace is the namespace of every element created from HTML.
const HTMLNamespace = "http://www.w3.org/1999/xhtml"

// attribute is a single name/value pair. Order of insertion is preserved.
type attribute struct {
	name  string
	value string
}

// elementData holds data specific to Element nodes.
type elementData struct {
	localName    string
	tagName      string
	namespaceURI string
	attrs        []attribute
	classList    *DOMTokenList

	// value is the "dirty" value of a form control, or a plain value
	// property on elements without form semantics. nil until set.
	value *string
}

// AsNode returns the underlying Node.
func (e *Element) AsNode() *Node {
	return (*Node)(e)
}

// TagName returns the tag name in uppercase (for HTML elements).
func (e *Element) TagName() string {
	return e.elementData.tagName
}

// LocalName returns the local name of the element (lowercase for HTML).
func (e *Element) LocalName() string {
	return e.elementData.localName
}

// NamespaceURI returns the namespace URI of the element.
func (e *Element) NamespaceURI() string {
	return e.elementData.namespaceURI
}

// Id returns the id attribute value.
func (e *Element) Id() string {
	return e.GetAttribute("id")
}

// SetId sets the id attribute value.
func (e *Element) SetId(id string) {
	e.SetAttribute("id", id)
}

// ClassName returns the class attribute value.
func (e *Element) ClassName() string {
	return e.GetAttribute("class")
}

// SetClassName sets the class attribute value.
func (e *Element) SetClassName(className string) {
	e.SetAttribute("class", className)
}

// ClassList returns a DOMTokenList for the class attribute.
func (e *Element) ClassList() *DOMTokenList {
	if e.elementData.classList == nil {
		e.elementData.classList = newDOMTokenList(e, "class")
	}
	return e.elementData.classList
}

func (e *Element) normalizeName(name string) string {
	if e.elementData.namespaceURI == HTMLNamespace {
		return strings.ToLower(name)
	}
	return name
}

func (e *Element) findAttribute(name string) int {
	name = e.normalizeName(name)
	for i, a := range e.elementData.attrs {
		if a.name == name {
			return i
		}
	}
	return -1
}

// GetAttribute returns the value of the attribute with the given name, or ""
// when absent. For HTML elements the name is matched case-insensitively.
func (e *Element) GetAttribute(name string) string {
	v, _ := e.LookupAttribute(name)
	return v
}

// LookupAttribute returns the attribute value and whether it is present.
func (e *Element) LookupAttribute(name string) (string, bool) {
	if i := e.findAttribute(name); i >= 0 {
		return e.elementData.attrs[i].value, true
	}
	return "", false
}

// HasAttribute returns true if the attribute is present.
func (e *Element) HasAttribute(name string) bool {
	return e.findAttribute(name) >= 0
}

// AttributeNames returns attribute names in insertion order.
func (e *Element) AttributeNames() []string {
	names := make([]string, len(e.elementData.attrs))
	for i, a := range e.elementData.attrs {
		names[i] = a.name
	}
	return names
}

// SetAttribute sets the value of the attribute with the given name.
// For error-returning version, use SetAttributeWithError.
func (e *Element) SetAttribute(name, value string) {
	_ = e.SetAttributeWithError(name, value)
}

// SetAttributeWithError sets the value of the attribute with the given name.
// Returns an InvalidCharacterError if the name is invalid.
func (e *Element) SetAttributeWithError(name, value string) error {
	if !IsValidAttributeLocalName(name) {
		return ErrInvalidCharacter("The string contains invalid characters.")
	}
	if i := e.findAttribute(name); i >= 0 {
		e.elementData.attrs[i].value = value
		return nil
	}
	e.elementData.attrs = append(e.elementData.attrs, attribute{name: e.normalizeName(name), value: value})
	return nil
}

// IsValidAttributeLocalName checks if a string is a valid attribute local name.
// A string is valid if its length is at least 1 and it does not contain
// ASCII whitespace, NULL, "/", "=" or ">".
func IsValidAttributeLocalName(name string) bool {
	if name == "" {
		return false
	}
	return !strings.ContainsAny(name, " \t\n\f\r\x00/=>")
}

// RemoveAttribute removes the attribute with the given name, if present.
func (e *Element) RemoveAttribute(name string) {
	if i := e.findAttribute(name); i >= 0 {
		e.elementData.attrs = append(e.elementData.attrs[:i], e.elementData.attrs[i+1:]...)
	}
}

// ToggleAttribute toggles a boolean attribute. With force, the attribute is
// added (true) or removed (false). Returns whether the attribute is present.
func (e *Element) ToggleAttribute(name string, force ...bool) bool {
	has := e.HasAttribute(name)
	want := !has
	if len(force) > 0 {
		want = force[0]
	}
	switch {
	case want && !has:
		e.SetAttribute(name, "")
	case !want && has:
		e.RemoveAttribute(name)
	}
	return want
}

// Children returns the element children in tree order.
func (e *Element) Children() []*Element {
	return elementChildren(e.AsNode())
}

func elementChildren(n *Node) []*Element {
	var out []*Element
	for c := n.firstChild; c != nil; c = c.nextSibling {
		if c.nodeType == ElementNode {
			out = append(out, (*Element)(c))
		}
	}
	return out
}

// ChildElementCount returns the number of element children.
func (e *Element) ChildElementCount() int {
	return len(e.Children())
}

// FirstElementChild returns the first element child, or nil.
func (e *Element) FirstElementChild() *Element {
	for c := e.firstChild; c != nil; c = c.nextSibling {
		if c.nodeType == ElementNode {
			return (*Element)(c)
		}
	}
	return nil
}

// LastElementChild returns the last element child, or nil.
func (e *Element) LastElementChild() *Element {
	for c := e.lastChild; c != nil; c = c.prevSibling {
		if c.nodeType == ElementNode {
			return (*Element)(c)
		}
	}
	return nil
}

// PreviousElementSibling returns the previous element sibling, or nil.
func (e *Element) PreviousElementSibling() *Element {
	for s := e.prevSibling; s != nil; s = s.prevSibling {
		if s.nodeType == ElementNode {
			return (*Element)(s)
		}
	}
	return nil
}

// NextElementSibling returns the next element sibling, or nil.
func (e *Element) NextElementSibling() *Element {
	for s := e.nextSibling; s != nil; s = s.nextSibling {
		if s.nodeType == ElementNode {
			return (*Element)(s)
		}
	}
	return nil
}

// QuerySelector returns the first matching descendant, or nil.
func (e *Element) QuerySelector(selector string) *Element {
	return e.AsNode().QuerySelector(selector)
}

// QuerySelectorAll returns all matching descendants. Invalid selectors yield
// an empty list; use QuerySelectorAllWithError to see the SyntaxError.
func (e *Element) QuerySelectorAll(selector string) *NodeList {
	return e.AsNode().QuerySelectorAll(selector)
}

// QuerySelectorAllWithError returns all matching descendants in document order.
func (e *Element) QuerySelectorAllWithError(selector string) (*NodeList, error) {
	return e.AsNode().QuerySelectorAllWithError(selector)
}

// Matches reports whether the element matches selector. Invalid selectors
// never match.
func (e *Element) Matches(selector string) bool {
	ok, _ := e.MatchesWithError(selector)
	return ok
}

// MatchesWithError reports whether the element matches selector.
func (e *Element) MatchesWithError(selector string) (bool, error) {
	sel, err := parseSelector(selector)
	if err != nil {
		return false, err
	}
	return sel.MatchScoped(asCSSElement(e), asCSSElement(e)), nil
}

// Closest returns the nearest inclusive ancestor matching selector, or nil.
func (e *Element) Closest(selector string) *Element {
	sel, err := parseSelector(selector)
	if err != nil {
		return nil
	}
	scope := asCSSElement(e)
	for cur := e; cur != nil; cur = cur.AsNode().ParentElement() {
		if sel.MatchScoped(asCSSElement(cur), scope) {
			return cur
		}
	}
	return nil
}

// InnerHTML returns the serialized children of the element.
func (e *Element) InnerHTML() string {
	var sb strings.Builder
	for child := e.firstChild; child != nil; child = child.nextSibling {
		serializeNode(child, &sb)
	}
	return sb.String()
}

// SetInnerHTML replaces the children of the element with the parsed markup.
func (e *Element) SetInnerHTML(markup string) error {
	nodes, err := parseHTMLFragment(markup, e)
	if err != nil {
		return err
	}
	e.AsNode().removeAllChildren()
	for _, node := range nodes {
		e.AsNode().insertBeforeInternal(node, nil)
	}
	return nil
}

// OuterHTML returns the HTML of the element including the element itself.
func (e *Element) OuterHTML() string {
	var sb strings.Builder
	serializeNode(e.AsNode(), &sb)
	return sb.String()
}

// TextContent returns the text content of the element.
func (e *Element) TextContent() string {
	return e.AsNode().TextContent()
}

// SetTextContent sets the text content of the element.
func (e *Element) SetTextContent(text string) {
	e.AsNode().SetTextContent(text)
}

// InsertAdjacentHTML parses markup and inserts the resulting nodes at
// position: "beforebegin", "afterbegin", "beforeend" or "afterend".
// beforebegin and afterend require a parent element; without one a
// NoModificationAllowedError is returned.
func (e *Element) InsertAdjacentHTML(position, markup string) error {
	var context *Element
	switch strings.ToLower(position) {
	case "beforebegin", "afterend":
		parent := e.parentNode
		if parent == nil || parent.nodeType == DocumentNode {
			return ErrNoModificationAllowed("The element has no parent.")
		}
		context = (*Element)(parent)
		if parent.nodeType != ElementNode {
			// fragment parent: parse as if in <body>
			context = nil
		}
	case "afterbegin", "beforeend":
		context = e
	default:
		return e.invalidPosition(position)
	}

	nodes, err := parseHTMLFragment(markup, context)
	if err != nil {
		return err
	}
	frag := e.ownerDoc.CreateDocumentFragment().AsNode()
	for _, node := range nodes {
		frag.insertBeforeInternal(node, nil)
	}
	return e.insertAdjacentNode(position, frag)
}

// InsertAdjacentElement inserts an element at the specified position relative to this element.
// Position can be: "beforebegin", "afterbegin", "beforeend", "afterend".
// Returns nil without error when beforebegin/afterend has no parent.
func (e *Element) InsertAdjacentElement(position string, element *Element) (*Element, error) {
	if element == nil {
		return nil, nil
	}
	if (strings.EqualFold(position, "beforebegin") || strings.EqualFold(position, "afterend")) && e.parentNode == nil {
		return nil, nil
	}
	if err := e.insertAdjacentNode(position, element.AsNode()); err != nil {
		return nil, err
	}
	return element, nil
}

// InsertAdjacentText inserts a text node at the specified position relative to this element.
func (e *Element) InsertAdjacentText(position string, data string) error {
	return e.insertAdjacentNode(position, e.ownerDoc.CreateTextNode(data))
}

func (e *Element) invalidPosition(position string) error {
	return ErrSyntax("The value provided ('" + position + "') is not one of 'beforebegin', 'afterbegin', 'beforeend', or 'afterend'.")
}

// insertAdjacentNode is the internal implementation for insertAdjacent* methods.
func (e *Element) insertAdjacentNode(position string, node *Node) error {
	switch strings.ToLower(position) {
	case "beforebegin":
		parent := e.parentNode
		if parent == nil {
			return nil
		}
		_, err := parent.InsertBeforeWithError(node, e.AsNode())
		return err

	case "afterbegin":
		_, err := e.AsNode().InsertBeforeWithError(node, e.firstChild)
		return err

	case "beforeend":
		_, err := e.AsNode().AppendChildWithError(node)
		return err

	case "afterend":
		parent := e.parentNode
		if parent == nil {
			return nil
		}
		_, err := parent.InsertBeforeWithError(node, e.nextSibling)
		return err

	default:
		return e.invalidPosition(position)
	}
}

// Remove detaches the element from its parent.
func (e *Element) Remove() {
	e.AsNode().Remove()
}

// CloneNode clones this element.
func (e *Element) CloneNode(deep bool) *Element {
	return (*Element)(e.AsNode().CloneNode(deep))
}
