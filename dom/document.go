package dom

import (
	"strings"
)

// Document represents the entire HTML document.
type Document Node

// ReadyState is the loading state of a document.
type ReadyState string

const (
	ReadyStateLoading     ReadyState = "loading"
	ReadyStateInteractive ReadyState = "interactive"
	ReadyStateComplete    ReadyState = "complete"
)

// documentData holds data specific to Document nodes.
type documentData struct {
	url            string
	readyState     ReadyState
	window         *Window
	implementation *DOMImplementation
	onListenerErr  func(*ListenerError)
}

// NewDocument creates a new empty HTML Document. The document is considered
// fully loaded.
func NewDocument() *Document {
	node := newNode(DocumentNode, "#document", nil)
	node.documentData = &documentData{readyState: ReadyStateComplete}
	doc := (*Document)(node)
	node.ownerDoc = doc
	return doc
}

// NewHTMLDocument creates a loaded document with the usual
// doctype/html/head/body skeleton.
func NewHTMLDocument() *Document {
	return NewDocument().Implementation().CreateHTMLDocument(nil)
}

// AsNode returns the underlying Node.
func (d *Document) AsNode() *Node {
	return (*Node)(d)
}

// URL returns the document's URL. Defaults to "about:blank".
func (d *Document) URL() string {
	if d.documentData.url == "" {
		return "about:blank"
	}
	return d.documentData.url
}

// SetURL sets the document's URL.
func (d *Document) SetURL(url string) {
	d.documentData.url = url
}

// Doctype returns the DocumentType node, or nil if there is none.
func (d *Document) Doctype() *Node {
	for child := d.firstChild; child != nil; child = child.nextSibling {
		if child.nodeType == DocumentTypeNode {
			return child
		}
	}
	return nil
}

// DocumentElement returns the root element of the document.
func (d *Document) DocumentElement() *Element {
	for child := d.firstChild; child != nil; child = child.nextSibling {
		if child.nodeType == ElementNode {
			return (*Element)(child)
		}
	}
	return nil
}

func (d *Document) rootChild(name string) *Element {
	docEl := d.DocumentElement()
	if docEl == nil {
		return nil
	}
	for child := docEl.firstChild; child != nil; child = child.nextSibling {
		if child.nodeType == ElementNode && (*Element)(child).LocalName() == name {
			return (*Element)(child)
		}
	}
	return nil
}

// Head returns the <head> element.
func (d *Document) Head() *Element {
	return d.rootChild("head")
}

// Body returns the <body> element.
func (d *Document) Body() *Element {
	return d.rootChild("body")
}

// Title returns the text of the first <title> element, whitespace collapsed.
func (d *Document) Title() string {
	title := d.QuerySelector("title")
	if title == nil {
		return ""
	}
	return strings.Join(strings.Fields(title.TextContent()), " ")
}

// CreateElement creates an HTML element with the given tag name.
// For error-returning version, use CreateElementWithError.
func (d *Document) CreateElement(tagName string) *Element {
	el, err := d.CreateElementWithError(tagName)
	if err != nil {
		return nil
	}
	return el
}

// CreateElementWithError creates an HTML element with the given tag name.
// Returns an InvalidCharacterError for names that are not valid.
func (d *Document) CreateElementWithError(tagName string) (*Element, error) {
	if tagName == "" || !IsValidAttributeLocalName(tagName) {
		return nil, ErrInvalidCharacter("The tag name provided ('" + tagName + "') is not a valid name.")
	}
	return d.createElement(strings.ToLower(tagName), HTMLNamespace), nil
}

func (d *Document) createElement(localName, namespace string) *Element {
	tagName := localName
	if namespace == HTMLNamespace {
		tagName = strings.ToUpper(localName)
	}
	node := newNode(ElementNode, tagName, d)
	node.elementData = &elementData{
		localName:    localName,
		tagName:      tagName,
		namespaceURI: namespace,
	}
	return (*Element)(node)
}

// CreateTextNode creates a new Text node.
func (d *Document) CreateTextNode(data string) *Node {
	n := newNode(TextNode, "#text", d)
	n.nodeValue = data
	return n
}

// CreateComment creates a new Comment node.
func (d *Document) CreateComment(data string) *Node {
	n := newNode(CommentNode, "#comment", d)
	n.nodeValue = data
	return n
}

// CreateDocumentFragment creates an empty DocumentFragment owned by the document.
func (d *Document) CreateDocumentFragment() *DocumentFragment {
	return (*DocumentFragment)(newNode(DocumentFragmentNode, "#document-fragment", d))
}

// GetElementById returns the first element in tree order with the given id.
// Returns nil if id is empty.
func (d *Document) GetElementById(id string) *Element {
	return findElementByID(d.AsNode(), id)
}

func findElementByID(node *Node, id string) *Element {
	if id == "" {
		return nil
	}
	for child := node.firstChild; child != nil; child = child.nextSibling {
		if child.nodeType != ElementNode {
			continue
		}
		el := (*Element)(child)
		if el.Id() == id {
			return el
		}
		if result := findElementByID(child, id); result != nil {
			return result
		}
	}
	return nil
}

// QuerySelector returns the first matching element, or nil.
func (d *Document) QuerySelector(selector string) *Element {
	return d.AsNode().QuerySelector(selector)
}

// QuerySelectorAll returns all matching elements in document order.
func (d *Document) QuerySelectorAll(selector string) *NodeList {
	return d.AsNode().QuerySelectorAll(selector)
}

// QuerySelectorAllWithError is QuerySelectorAll reporting invalid selectors.
func (d *Document) QuerySelectorAllWithError(selector string) (*NodeList, error) {
	return d.AsNode().QuerySelectorAllWithError(selector)
}

// Children returns the element children of the document.
func (d *Document) Children() []*Element {
	return elementChildren(d.AsNode())
}

// DefaultView returns the document's window, creating it on first use.
func (d *Document) DefaultView() *Window {
	if d.documentData.window == nil {
		d.documentData.window = newWindow(d)
	}
	return d.documentData.window
}

// ReadyState returns the document's loading state.
func (d *Document) ReadyState() ReadyState {
	return d.documentData.readyState
}

// FinishLoading completes parsing: the document moves to "interactive"
// (firing readystatechange and DOMContentLoaded), then to "complete" (firing
// readystatechange and the window's load event). It is a no-op once the
// document is complete.
func (d *Document) FinishLoading() {
	if d.documentData.readyState == ReadyStateComplete {
		return
	}
	if d.documentData.readyState == ReadyStateLoading {
		d.setReadyState(ReadyStateInteractive)
		d.AsNode().DispatchEvent(NewEvent("DOMContentLoaded", EventInit{Bubbles: true}))
	}
	d.setReadyState(ReadyStateComplete)
	d.DefaultView().AsNode().DispatchEvent(NewEvent("load", EventInit{}))
}

func (d *Document) setReadyState(state ReadyState) {
	d.documentData.readyState = state
	d.AsNode().DispatchEvent(NewEvent("readystatechange", EventInit{}))
}

// SetListenerErrorHandler installs fn to receive listener panics recovered
// during dispatch on any node of this document. A nil fn discards them.
func (d *Document) SetListenerErrorHandler(fn func(*ListenerError)) {
	d.documentData.onListenerErr = fn
}

// HasListenerErrorHandler reports whether a handler is installed.
func (d *Document) HasListenerErrorHandler() bool {
	return d.documentData.onListenerErr != nil
}

// Serialize returns the markup of the whole document.
func (d *Document) Serialize() string {
	var sb strings.Builder
	serializeNode(d.AsNode(), &sb)
	return sb.String()
}

// DOMImplementation provides methods for creating DOM objects.
type DOMImplementation struct {
	document *Document
}

// Implementation returns the DOMImplementation for this document.
func (d *Document) Implementation() *DOMImplementation {
	if d.documentData.implementation == nil {
		d.documentData.implementation = &DOMImplementation{document: d}
	}
	return d.documentData.implementation
}

// CreateHTMLDocument creates a new, loaded HTML document with the given title.
// If title is nil, no title element is created.
func (impl *DOMImplementation) CreateHTMLDocument(title *string) *Document {
	doc := NewDocument()

	doctype := newNode(DocumentTypeNode, "html", doc)
	doc.AsNode().insertBeforeInternal(doctype, nil)

	html := doc.createElement("html", HTMLNamespace)
	doc.AsNode().insertBeforeInternal(html.AsNode(), nil)

	head := doc.createElement("head", HTMLNamespace)
	html.AsNode().insertBeforeInternal(head.AsNode(), nil)

	if title != nil {
		titleEl := doc.createElement("title", HTMLNamespace)
		titleEl.SetTextContent(*title)
		head.AsNode().insertBeforeInternal(titleEl.AsNode(), nil)
	}

	body := doc.createElement("body", HTMLNamespace)
	html.AsNode().insertBeforeInternal(body.AsNode(), nil)

	return doc
}
