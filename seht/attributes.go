package seht

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// Attributes reads and writes attributes of a collection's elements.
type Attributes struct {
	c *Collection
}

// Attributes returns the attribute operations for c.
func (c *Collection) Attributes() Attributes {
	return Attributes{c: c}
}

// Get returns the named attribute of the first node. ok is false when the
// collection is empty, the first node is not an element or the attribute is
// absent.
func (a Attributes) Get(name string) (value string, ok bool) {
	el := a.c.first()
	if el == nil {
		return "", false
	}
	return el.LookupAttribute(name)
}

// Set writes every entry of attrs to every element, in name order. A nil
// value removes the attribute; other values are stringified.
func (a Attributes) Set(attrs map[string]any) *Collection {
	a.c.setAttributes(attrs, func(name string, v any) (string, error) {
		return stringify(v), nil
	})
	return a.c
}

// stringify renders v the way String(v) would for scalars, falling back to
// fmt for anything cast does not know.
func stringify(v any) string {
	if s, err := cast.ToStringE(v); err == nil {
		return s
	}
	return fmt.Sprint(v)
}

// setAttributes applies attrs to every element. encode turns a non-nil value
// into the attribute string; an encode error skips that attribute.
func (c *Collection) setAttributes(attrs map[string]any, encode func(name string, v any) (string, error)) {
	for _, name := range slices.Sorted(maps.Keys(attrs)) {
		if name == "" {
			continue
		}
		v := attrs[name]
		if v == nil {
			for _, el := range c.elements() {
				el.RemoveAttribute(name)
			}
			continue
		}
		value, err := encode(name, v)
		if err != nil {
			c.fail(err)
			continue
		}
		for _, el := range c.elements() {
			if err := el.SetAttributeWithError(name, value); err != nil {
				c.s.logger.Debug("attribute rejected", zap.String("name", name), zap.Error(err))
				c.fail(err)
				break
			}
		}
	}
}
