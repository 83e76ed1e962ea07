package seht

import (
	"strings"
)

// Classes edits the class lists of a collection's elements.
type Classes struct {
	c *Collection
}

// Classes returns the class operations for c.
func (c *Collection) Classes() Classes {
	return Classes{c: c}
}

// validClassNames drops names the class list would reject.
func validClassNames(names []string) []string {
	valid := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" || strings.ContainsAny(name, " \t\n\r\f") {
			continue
		}
		valid = append(valid, name)
	}
	return valid
}

// Add adds names to every element. Empty names and names containing
// whitespace are ignored.
func (cl Classes) Add(names ...string) *Collection {
	valid := validClassNames(names)
	if len(valid) == 0 {
		return cl.c
	}
	for _, el := range cl.c.elements() {
		if err := el.ClassList().Add(valid...); err != nil {
			cl.c.fail(err)
		}
	}
	return cl.c
}

// Remove removes names from every element.
func (cl Classes) Remove(names ...string) *Collection {
	valid := validClassNames(names)
	if len(valid) == 0 {
		return cl.c
	}
	for _, el := range cl.c.elements() {
		if err := el.ClassList().Remove(valid...); err != nil {
			cl.c.fail(err)
		}
	}
	return cl.c
}

// Toggle toggles each name on every element.
func (cl Classes) Toggle(names ...string) *Collection {
	valid := validClassNames(names)
	for _, el := range cl.c.elements() {
		list := el.ClassList()
		for _, name := range valid {
			if _, err := list.Toggle(name); err != nil {
				cl.c.fail(err)
			}
		}
	}
	return cl.c
}

// Has reports whether the first node is an element with class name.
func (cl Classes) Has(name string) bool {
	el := cl.c.first()
	return el != nil && el.ClassList().Contains(name)
}
