package seht

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

const dataPrefix = "data-"

// ErrDataDecode is returned when a data attribute does not hold valid JSON.
var ErrDataDecode = errors.New("data attribute is not valid JSON")

// Data reads and writes JSON-encoded data attributes. Names are given with
// or without the "data-" prefix.
type Data struct {
	c *Collection
}

// Data returns the data attribute operations for c.
func (c *Collection) Data() Data {
	return Data{c: c}
}

// dataAttributeName prefixes name with "data-" unless it already carries
// the prefix, in any case.
func dataAttributeName(name string) string {
	if len(name) >= len(dataPrefix) && strings.EqualFold(name[:len(dataPrefix)], dataPrefix) {
		name = name[len(dataPrefix):]
	}
	if name == "" {
		return ""
	}
	return dataPrefix + name
}

// Raw returns the named data attribute of the first node without decoding
// it.
func (d Data) Raw(name string) (string, bool) {
	attr := dataAttributeName(name)
	if attr == "" {
		return "", false
	}
	return d.c.Attributes().Get(attr)
}

// Get decodes the named data attribute of the first node. A missing
// attribute yields (nil, nil); invalid JSON yields an error wrapping
// ErrDataDecode.
func (d Data) Get(name string) (any, error) {
	var v any
	if err := d.GetInto(name, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// GetInto decodes the named data attribute of the first node into dst. dst
// is left untouched when the attribute is missing.
func (d Data) GetInto(name string, dst any) error {
	raw, ok := d.Raw(name)
	if !ok {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return errors.Wrapf(ErrDataDecode, "%s=%q: %v", dataAttributeName(name), raw, err)
	}
	return nil
}

// Set JSON-encodes every entry of values into data attributes on every
// element. A nil value removes the attribute; a json.RawMessage is stored
// compacted, in its own key order. Values that cannot be encoded
// are skipped and reported through Err.
func (d Data) Set(values map[string]any) *Collection {
	attrs := make(map[string]any, len(values))
	for name, v := range values {
		if attr := dataAttributeName(name); attr != "" {
			attrs[attr] = v
		}
	}
	d.c.setAttributes(attrs, func(name string, v any) (string, error) {
		b, err := json.Marshal(v)
		if err != nil {
			return "", errors.Wrapf(err, "encode %s", name)
		}
		return string(b), nil
	})
	return d.c
}
