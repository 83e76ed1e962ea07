package jsbind

import (
	"encoding/json"
	"strconv"

	"github.com/dop251/goja"

	"github.com/chrisuehlinger/seht/dom"
	"github.com/chrisuehlinger/seht/seht"
)

// collectionOf returns the Go collection behind a wrapped collection, or nil.
func collectionOf(obj *goja.Object) *seht.Collection {
	v := obj.Get("_goCollection")
	if v == nil {
		return nil
	}
	c, _ := v.Export().(*seht.Collection)
	return c
}

// present reports whether an optional argument was passed.
func present(v goja.Value) bool {
	return v != nil && !goja.IsUndefined(v)
}

// wrapCollection builds the JS view of c: an array-like object of wrapped
// nodes with the chainable collection methods. Chainable methods return the
// same object.
func (b *binder) wrapCollection(c *seht.Collection) *goja.Object {
	obj := b.vm.NewObject()
	hidden(obj, "_goCollection", c, b.vm)

	obj.Set("length", c.Len())
	for i, n := range c.ToArray() {
		obj.Set(strconv.Itoa(i), b.wrapNode(n))
	}

	b.bindTraversal(obj, c)
	b.bindContent(obj, c)
	b.bindClasses(obj, c)
	b.bindAttributes(obj, c)
	b.bindEvents(obj, c)
	return obj
}

// nodeCallback adapts a JS callback to the collection iteration signature.
// The callback sees (node, index, array) with the node as this.
func (b *binder) nodeCallback(fn goja.Callable) func(*dom.Node, int, []*dom.Node) goja.Value {
	return func(n *dom.Node, i int, all []*dom.Node) goja.Value {
		node := b.wrapNode(n)
		return b.call(fn, node, node, b.vm.ToValue(i), b.nodeArray(all))
	}
}

func (b *binder) bindTraversal(obj *goja.Object, c *seht.Collection) {
	obj.Set("get", func(call goja.FunctionCall) goja.Value {
		if !present(call.Argument(0)) {
			return b.nodeArray(c.ToArray())
		}
		return b.wrapNode(c.Get(int(call.Argument(0).ToInteger())))
	})
	obj.Set("eq", func(call goja.FunctionCall) goja.Value {
		return b.wrapCollection(c.Eq(int(call.Argument(0).ToInteger())))
	})
	obj.Set("first", func(goja.FunctionCall) goja.Value {
		return b.wrapCollection(c.First())
	})
	obj.Set("last", func(goja.FunctionCall) goja.Value {
		return b.wrapCollection(c.Last())
	})
	obj.Set("parent", func(goja.FunctionCall) goja.Value {
		return b.wrapCollection(c.Parent())
	})
	obj.Set("toArray", func(goja.FunctionCall) goja.Value {
		return b.nodeArray(c.ToArray())
	})
	obj.Set("toString", func(goja.FunctionCall) goja.Value {
		return b.vm.ToValue(c.String())
	})

	obj.Set("each", func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			return obj
		}
		cb := b.nodeCallback(fn)
		c.Each(func(n *dom.Node, i int, all []*dom.Node) {
			cb(n, i, all)
		})
		return obj
	})
	obj.Set("filter", func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			return obj
		}
		cb := b.nodeCallback(fn)
		return b.wrapCollection(c.Filter(func(n *dom.Node, i int, all []*dom.Node) bool {
			return cb(n, i, all).ToBoolean()
		}))
	})
	obj.Set("map", func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			return obj
		}
		cb := b.nodeCallback(fn)
		return b.wrapCollection(c.FlatMap(func(n *dom.Node, i int, all []*dom.Node) []*dom.Node {
			return b.nodesOf(cb(n, i, all))
		}))
	})

	obj.Set("remove", func(goja.FunctionCall) goja.Value {
		var parents *seht.Collection
		b.mutate(c, func() { parents = c.Remove() })
		return b.wrapCollection(parents)
	})
	obj.Set("empty", func(goja.FunctionCall) goja.Value {
		c.Empty()
		return obj
	})
}

// nodesOf flattens a callback result into nodes: a wrapped node, a wrapped
// collection or an array of wrapped nodes. Anything else yields nothing.
func (b *binder) nodesOf(v goja.Value) []*dom.Node {
	switch sel := b.selector(v).(type) {
	case *seht.Collection:
		return sel.ToArray()
	case seht.Nodes:
		return sel
	case nil:
		return nil
	default:
		if obj, ok := v.(*goja.Object); ok {
			if n := nodeOf(obj); n != nil {
				return []*dom.Node{n}
			}
		}
		return nil
	}
}

// markup converts an insertion argument: wrapped collections are copied by
// their serialization, anything else is stringified as HTML.
func (b *binder) markup(v goja.Value) seht.Markup {
	if !present(v) || goja.IsNull(v) {
		return nil
	}
	if obj, ok := v.(*goja.Object); ok {
		if c := collectionOf(obj); c != nil {
			return c
		}
		if n := nodeOf(obj); n != nil {
			return b.s.Wrap(n)
		}
	}
	return seht.HTML(v.String())
}

func (b *binder) bindContent(obj *goja.Object, c *seht.Collection) {
	accessor := func(name string, get func() string, set func(string) *seht.Collection) {
		obj.Set(name, func(call goja.FunctionCall) goja.Value {
			if !present(call.Argument(0)) {
				return b.vm.ToValue(get())
			}
			b.mutate(c, func() { set(call.Argument(0).String()) })
			return obj
		})
	}
	accessor("html", c.HTML, c.SetHTML)
	accessor("text", c.Text, c.SetText)
	accessor("value", c.Value, c.SetValue)

	insert := func(name string, fn func(seht.Markup) *seht.Collection) {
		obj.Set(name, func(call goja.FunctionCall) goja.Value {
			m := b.markup(call.Argument(0))
			b.mutate(c, func() { fn(m) })
			return obj
		})
	}
	insert("before", c.Before)
	insert("after", c.After)
	insert("append", c.Append)
	insert("prepend", c.Prepend)

	insertTo := func(name string, fn func(target *seht.Collection)) {
		obj.Set(name, func(call goja.FunctionCall) goja.Value {
			var ctx []seht.Selector
			if len(call.Arguments) > 1 {
				ctx = append(ctx, b.selector(call.Argument(1)))
			}
			target := b.s.Find(b.selector(call.Argument(0)), ctx...)
			b.mutate(target, func() { fn(target) })
			return b.wrapCollection(target)
		})
	}
	insertTo("appendTo", func(target *seht.Collection) { target.Append(c) })
	insertTo("prependTo", func(target *seht.Collection) { target.Prepend(c) })
}

// classNames collects string arguments, ignoring everything else.
func classNames(args []goja.Value) []string {
	var names []string
	for _, arg := range args {
		if s, ok := arg.Export().(string); ok {
			names = append(names, s)
		}
	}
	return names
}

func (b *binder) bindClasses(obj *goja.Object, c *seht.Collection) {
	classes := b.vm.NewObject()
	classes.Set("add", func(call goja.FunctionCall) goja.Value {
		c.Classes().Add(classNames(call.Arguments)...)
		return obj
	})
	classes.Set("remove", func(call goja.FunctionCall) goja.Value {
		c.Classes().Remove(classNames(call.Arguments)...)
		return obj
	})
	classes.Set("toggle", func(call goja.FunctionCall) goja.Value {
		c.Classes().Toggle(classNames(call.Arguments)...)
		return obj
	})
	classes.Set("has", func(call goja.FunctionCall) goja.Value {
		return b.vm.ToValue(c.Classes().Has(call.Argument(0).String()))
	})
	obj.Set("classes", classes)

	obj.Set("addClass", classes.Get("add"))
	obj.Set("removeClass", classes.Get("remove"))
	obj.Set("toggleClass", classes.Get("toggle"))
	obj.Set("hasClass", classes.Get("has"))
}

// attributeValue converts a JS value for an attribute. null and undefined
// become nil so the attribute is removed; other values are stringified the
// way a script would.
func attributeValue(v goja.Value) any {
	if !present(v) || goja.IsNull(v) {
		return nil
	}
	return v.String()
}

// dataValue encodes a JS value with the runtime's JSON.stringify, so the
// stored text keeps the script's property order. null, undefined and values
// JSON cannot represent yield nil, which removes the attribute.
func (b *binder) dataValue(v goja.Value) any {
	if !present(v) || goja.IsNull(v) {
		return nil
	}
	encoded := b.call(b.jsonStringify, goja.Undefined(), v)
	if !present(encoded) {
		return nil
	}
	return json.RawMessage(encoded.String())
}

// objectValues converts the own properties of a JS object with convert.
func objectValues(v goja.Value, convert func(goja.Value) any) map[string]any {
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil
	}
	out := make(map[string]any)
	for _, key := range obj.Keys() {
		out[key] = convert(obj.Get(key))
	}
	return out
}

func (b *binder) bindAttributes(obj *goja.Object, c *seht.Collection) {
	getAttr := func(name string) goja.Value {
		v, ok := c.Attributes().Get(name)
		if !ok {
			return goja.Null()
		}
		return b.vm.ToValue(v)
	}
	setAttrs := func(values map[string]any) {
		b.mutate(c, func() { c.Attributes().Set(values) })
	}

	attributes := b.vm.NewObject()
	attributes.Set("get", func(call goja.FunctionCall) goja.Value {
		return getAttr(call.Argument(0).String())
	})
	attributes.Set("set", func(call goja.FunctionCall) goja.Value {
		setAttrs(objectValues(call.Argument(0), attributeValue))
		return obj
	})
	obj.Set("attributes", attributes)

	obj.Set("attr", func(call goja.FunctionCall) goja.Value {
		name := call.Argument(0).String()
		if len(call.Arguments) < 2 {
			return getAttr(name)
		}
		setAttrs(map[string]any{name: attributeValue(call.Argument(1))})
		return obj
	})

	// Values are decoded by the runtime's JSON.parse into plain JS values.
	// The Go decoder only supplies the error for malformed attributes.
	getData := func(name string) goja.Value {
		raw, ok := c.Data().Raw(name)
		if !ok {
			return goja.Null()
		}
		v, err := b.jsonParse(goja.Undefined(), b.vm.ToValue(raw))
		if err != nil {
			if _, decodeErr := c.Data().Get(name); decodeErr != nil {
				err = decodeErr
			}
			b.throw(err)
		}
		return v
	}
	setData := func(values map[string]any) {
		b.mutate(c, func() { c.Data().Set(values) })
	}

	// data is callable as data(name) or data(name, value), and also carries
	// get and set.
	data := b.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		name := call.Argument(0).String()
		if len(call.Arguments) < 2 {
			return getData(name)
		}
		setData(map[string]any{name: b.dataValue(call.Argument(1))})
		return obj
	}).(*goja.Object)
	data.Set("get", func(call goja.FunctionCall) goja.Value {
		return getData(call.Argument(0).String())
	})
	data.Set("set", func(call goja.FunctionCall) goja.Value {
		setData(objectValues(call.Argument(0), b.dataValue))
		return obj
	})
	obj.Set("data", data)
}

// dispatches reads a dispatch argument: a name, a {name, data} object, or
// an array of either. Objects become custom events; anything else is
// ignored.
func (b *binder) dispatches(v goja.Value) []seht.Dispatch {
	obj, ok := v.(*goja.Object)
	if !ok {
		if !present(v) {
			return nil
		}
		if name, ok := v.Export().(string); ok {
			return seht.Named(name)
		}
		return nil
	}
	if n, ok := arrayLength(obj); ok {
		var out []seht.Dispatch
		for i := range n {
			out = append(out, b.dispatches(obj.Get(strconv.Itoa(i)))...)
		}
		return out
	}
	name := obj.Get("name")
	if !present(name) {
		return nil
	}
	var detail any
	if d := obj.Get("data"); present(d) && !goja.IsNull(d) {
		detail = d
	}
	return []seht.Dispatch{seht.Custom(name.String(), detail)}
}

// handlers reads {type: fn} or {type: {listener, options}} into handlers.
func (b *binder) handlers(v goja.Value) map[string]seht.Handler {
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil
	}
	out := make(map[string]seht.Handler)
	for _, key := range obj.Keys() {
		entry := obj.Get(key)
		if l := b.listener(entry); l != nil {
			out[key] = seht.Handler{Listener: l}
			continue
		}
		h, ok := entry.(*goja.Object)
		if !ok {
			continue
		}
		if l := b.listener(h.Get("listener")); l != nil {
			out[key] = seht.Handler{Listener: l, Options: listenerOptions(h.Get("options"))}
		}
	}
	return out
}

func (b *binder) bindEvents(obj *goja.Object, c *seht.Collection) {
	events := b.vm.NewObject()
	events.Set("add", func(call goja.FunctionCall) goja.Value {
		c.Events().Add(b.handlers(call.Argument(0)))
		return obj
	})
	events.Set("remove", func(call goja.FunctionCall) goja.Value {
		c.Events().Remove(b.handlers(call.Argument(0)))
		return obj
	})
	events.Set("dispatch", func(call goja.FunctionCall) goja.Value {
		var all []seht.Dispatch
		for _, arg := range call.Arguments {
			all = append(all, b.dispatches(arg)...)
		}
		c.Events().Dispatch(all...)
		return obj
	})
	obj.Set("events", events)

	obj.Set("on", func(call goja.FunctionCall) goja.Value {
		if l := b.listener(call.Argument(1)); l != nil {
			c.On(call.Argument(0).String(), l, listenerOptions(call.Argument(2)))
		}
		return obj
	})
	obj.Set("off", func(call goja.FunctionCall) goja.Value {
		if l := b.listener(call.Argument(1)); l != nil {
			c.Off(call.Argument(0).String(), l, listenerOptions(call.Argument(2)))
		}
		return obj
	})
	obj.Set("trigger", func(call goja.FunctionCall) goja.Value {
		names := make([]string, 0, len(call.Arguments))
		for _, arg := range call.Arguments {
			if name, ok := arg.Export().(string); ok {
				names = append(names, name)
			}
		}
		c.Trigger(names...)
		return obj
	})
}
