package dom

// Value returns the element's current value.
//
//   - input: the dirty value if set, else the value attribute
//     ("on" for checkboxes and radios without one)
//   - textarea: the dirty value if set, else the text content
//   - select: the value of the first selected option, else of the first option
//   - option: the value attribute, else the text content
//   - button, data, li (and anything else with a value attribute): the attribute
//
// Elements without form semantics return whatever SetValue last stored.
func (e *Element) Value() string {
	if v := e.elementData.value; v != nil {
		return *v
	}
	switch e.LocalName() {
	case "input":
		if v, ok := e.LookupAttribute("value"); ok {
			return v
		}
		switch e.GetAttribute("type") {
		case "checkbox", "radio":
			return "on"
		}
		return ""
	case "textarea":
		return e.TextContent()
	case "select":
		var first *Element
		for _, opt := range e.options() {
			if first == nil {
				first = opt
			}
			if opt.HasAttribute("selected") {
				return opt.Value()
			}
		}
		if first != nil {
			return first.Value()
		}
		return ""
	case "option":
		if v, ok := e.LookupAttribute("value"); ok {
			return v
		}
		return e.TextContent()
	case "button", "data", "li", "meter", "progress", "param":
		return e.GetAttribute("value")
	}
	return ""
}

// SetValue sets the element's current value. Setting a select's value
// selects the first option with that value (or none). Setting an option or
// button value writes the value attribute.
func (e *Element) SetValue(value string) {
	switch e.LocalName() {
	case "select":
		matched := false
		for _, opt := range e.options() {
			if !matched && opt.Value() == value {
				opt.SetAttribute("selected", "")
				matched = true
				continue
			}
			opt.RemoveAttribute("selected")
		}
		return
	case "option", "button", "data", "li", "meter", "progress", "param":
		e.SetAttribute("value", value)
		return
	}
	e.elementData.value = &value
}

// options returns the option descendants of a select, in tree order.
func (e *Element) options() []*Element {
	var out []*Element
	var walk func(n *Node)
	walk = func(n *Node) {
		for c := n.firstChild; c != nil; c = c.nextSibling {
			if c.nodeType != ElementNode {
				continue
			}
			el := (*Element)(c)
			if el.LocalName() == "option" {
				out = append(out, el)
				continue
			}
			walk(c)
		}
	}
	walk(e.AsNode())
	return out
}
