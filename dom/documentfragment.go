package dom

// DocumentFragment represents a minimal document object that has no parent.
type DocumentFragment Node

// AsNode returns the underlying Node.
func (df *DocumentFragment) AsNode() *Node {
	return (*Node)(df)
}

// Children returns the element children of the fragment.
func (df *DocumentFragment) Children() []*Element {
	return elementChildren(df.AsNode())
}

// GetElementById returns the first element in the fragment with the given id.
func (df *DocumentFragment) GetElementById(id string) *Element {
	return findElementByID(df.AsNode(), id)
}

// QuerySelectorAll returns all matching elements in the fragment.
func (df *DocumentFragment) QuerySelectorAll(selector string) *NodeList {
	return df.AsNode().QuerySelectorAll(selector)
}

// Append appends nodes to the fragment, moving them from their current parent.
func (df *DocumentFragment) Append(nodes ...*Node) error {
	for _, n := range nodes {
		if _, err := df.AsNode().AppendChildWithError(n); err != nil {
			return err
		}
	}
	return nil
}
