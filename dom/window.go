package dom

// Window is the global object of a document. It is an event target at the
// top of every propagation path and cannot be inserted into a tree.
type Window Node

func newWindow(doc *Document) *Window {
	return (*Window)(newNode(WindowNode, "#window", doc))
}

// AsNode returns the underlying Node.
func (w *Window) AsNode() *Node {
	return (*Node)(w)
}

// Document returns the window's document.
func (w *Window) Document() *Document {
	return w.ownerDoc
}
