package jsbind

import (
	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/chrisuehlinger/seht/dom"
)

// hidden defines a non-enumerable, read-only property holding a Go value.
func hidden(obj *goja.Object, name string, v any, vm *goja.Runtime) {
	obj.DefineDataProperty(name, vm.ToValue(v), goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_FALSE)
}

// nodeOf returns the Go node behind a wrapped node, or nil.
func nodeOf(obj *goja.Object) *dom.Node {
	v := obj.Get("_goNode")
	if v == nil {
		return nil
	}
	n, _ := v.Export().(*dom.Node)
	return n
}

func (b *binder) accessor(obj *goja.Object, name string, get func() goja.Value, set func(goja.Value)) {
	getter := b.vm.ToValue(func(goja.FunctionCall) goja.Value {
		return get()
	})
	var setter goja.Value
	if set != nil {
		setter = b.vm.ToValue(func(call goja.FunctionCall) goja.Value {
			set(call.Argument(0))
			return goja.Undefined()
		})
	}
	obj.DefineAccessorProperty(name, getter, setter, goja.FLAG_FALSE, goja.FLAG_TRUE)
}

// wrapNode returns the JS object for n. The same node always maps to the
// same object so identity comparisons in scripts behave.
func (b *binder) wrapNode(n *dom.Node) goja.Value {
	if n == nil {
		return goja.Null()
	}
	if obj, ok := b.nodes[n]; ok {
		return obj
	}

	obj := b.vm.NewObject()
	b.nodes[n] = obj
	hidden(obj, "_goNode", n, b.vm)

	// The window is not a node to scripts: nodeType stays undefined.
	if n.NodeType() != dom.WindowNode {
		obj.Set("nodeType", int(n.NodeType()))
	}
	obj.Set("nodeName", n.NodeName())
	b.accessor(obj, "parentNode", func() goja.Value {
		return b.wrapNode(n.ParentNode())
	}, nil)
	b.accessor(obj, "textContent", func() goja.Value {
		return b.vm.ToValue(n.TextContent())
	}, func(v goja.Value) {
		n.SetTextContent(v.String())
	})

	b.bindEventTarget(obj, n)

	switch n.NodeType() {
	case dom.ElementNode:
		b.bindElement(obj, (*dom.Element)(n))
	case dom.DocumentNode:
		b.bindDocument(obj, (*dom.Document)(n))
	}
	return obj
}

func (b *binder) bindElement(obj *goja.Object, el *dom.Element) {
	obj.Set("tagName", el.TagName())
	b.accessor(obj, "id", func() goja.Value {
		return b.vm.ToValue(el.Id())
	}, func(v goja.Value) {
		el.SetId(v.String())
	})
	b.accessor(obj, "className", func() goja.Value {
		return b.vm.ToValue(el.ClassName())
	}, func(v goja.Value) {
		el.SetClassName(v.String())
	})
	b.accessor(obj, "innerHTML", func() goja.Value {
		return b.vm.ToValue(el.InnerHTML())
	}, func(v goja.Value) {
		if err := el.SetInnerHTML(v.String()); err != nil {
			b.throw(err)
		}
	})
	b.accessor(obj, "outerHTML", func() goja.Value {
		return b.vm.ToValue(el.OuterHTML())
	}, nil)
	b.accessor(obj, "value", func() goja.Value {
		return b.vm.ToValue(el.Value())
	}, func(v goja.Value) {
		el.SetValue(v.String())
	})

	obj.Set("getAttribute", func(call goja.FunctionCall) goja.Value {
		v, ok := el.LookupAttribute(call.Argument(0).String())
		if !ok {
			return goja.Null()
		}
		return b.vm.ToValue(v)
	})
	obj.Set("setAttribute", func(call goja.FunctionCall) goja.Value {
		if err := el.SetAttributeWithError(call.Argument(0).String(), call.Argument(1).String()); err != nil {
			b.throw(err)
		}
		return goja.Undefined()
	})
	obj.Set("removeAttribute", func(call goja.FunctionCall) goja.Value {
		el.RemoveAttribute(call.Argument(0).String())
		return goja.Undefined()
	})
	b.bindQueries(obj, el.AsNode())
}

func (b *binder) bindDocument(obj *goja.Object, doc *dom.Document) {
	b.accessor(obj, "readyState", func() goja.Value {
		return b.vm.ToValue(string(doc.ReadyState()))
	}, nil)
	b.accessor(obj, "body", func() goja.Value {
		if body := doc.Body(); body != nil {
			return b.wrapNode(body.AsNode())
		}
		return goja.Null()
	}, nil)
	obj.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		if el := doc.GetElementById(call.Argument(0).String()); el != nil {
			return b.wrapNode(el.AsNode())
		}
		return goja.Null()
	})
	b.bindQueries(obj, doc.AsNode())
}

func (b *binder) bindQueries(obj *goja.Object, n *dom.Node) {
	obj.Set("querySelector", func(call goja.FunctionCall) goja.Value {
		list, err := n.QuerySelectorAllWithError(call.Argument(0).String())
		if err != nil {
			b.throw(err)
		}
		return b.wrapNode(list.Item(0))
	})
	obj.Set("querySelectorAll", func(call goja.FunctionCall) goja.Value {
		list, err := n.QuerySelectorAllWithError(call.Argument(0).String())
		if err != nil {
			b.throw(err)
		}
		return b.nodeArray(list.ToSlice())
	})
}

func (b *binder) bindEventTarget(obj *goja.Object, n *dom.Node) {
	obj.Set("addEventListener", func(call goja.FunctionCall) goja.Value {
		if l := b.listener(call.Argument(1)); l != nil {
			n.AddEventListener(call.Argument(0).String(), l, listenerOptions(call.Argument(2)))
		}
		return goja.Undefined()
	})
	obj.Set("removeEventListener", func(call goja.FunctionCall) goja.Value {
		if l := b.listener(call.Argument(1)); l != nil {
			n.RemoveEventListener(call.Argument(0).String(), l, listenerOptions(call.Argument(2)))
		}
		return goja.Undefined()
	})
}

func (b *binder) nodeArray(nodes []*dom.Node) *goja.Object {
	items := make([]any, len(nodes))
	for i, n := range nodes {
		items[i] = b.wrapNode(n)
	}
	return b.vm.NewArray(items...)
}

// jsListener adapts a JS function to dom.EventListener. One adapter exists
// per function object, so removing a function finds what adding it
// registered.
type jsListener struct {
	b  *binder
	fn goja.Callable
}

// HandleEvent calls the function with the current target as this. A thrown
// exception is logged and does not reach the dispatcher.
func (l *jsListener) HandleEvent(e *dom.Event) {
	if _, err := l.fn(l.b.wrapNode(e.CurrentTarget()), l.b.wrapEvent(e)); err != nil {
		l.b.logger.Warn("event listener threw",
			zap.String("type", e.Type()),
			zap.Error(err))
	}
}

// listener returns the adapter for a JS function, or nil when v is not one.
func (b *binder) listener(v goja.Value) dom.EventListener {
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil
	}
	fn, ok := goja.AssertFunction(obj)
	if !ok {
		return nil
	}
	if l, ok := b.listeners[obj]; ok {
		return l
	}
	l := &jsListener{b: b, fn: fn}
	b.listeners[obj] = l
	return l
}

// listenerOptions reads either a boolean capture flag or an options object.
func listenerOptions(v goja.Value) dom.ListenerOptions {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return dom.ListenerOptions{}
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return dom.ListenerOptions{Capture: v.ToBoolean()}
	}
	flag := func(name string) bool {
		f := obj.Get(name)
		return f != nil && f.ToBoolean()
	}
	return dom.ListenerOptions{
		Capture: flag("capture"),
		Once:    flag("once"),
		Passive: flag("passive"),
	}
}

// wrapEvent exposes e to a listener. Custom event details that came from
// a script are handed back unchanged.
func (b *binder) wrapEvent(e *dom.Event) *goja.Object {
	obj := b.vm.NewObject()
	obj.Set("type", e.Type())
	obj.Set("bubbles", e.Bubbles())
	obj.Set("cancelable", e.Cancelable())
	b.accessor(obj, "target", func() goja.Value { return b.wrapNode(e.Target()) }, nil)
	b.accessor(obj, "currentTarget", func() goja.Value { return b.wrapNode(e.CurrentTarget()) }, nil)
	b.accessor(obj, "eventPhase", func() goja.Value { return b.vm.ToValue(int(e.EventPhase())) }, nil)
	b.accessor(obj, "defaultPrevented", func() goja.Value { return b.vm.ToValue(e.DefaultPrevented()) }, nil)

	detail := goja.Null()
	if e.IsCustom() {
		if v, ok := e.Detail().(goja.Value); ok {
			detail = v
		} else if e.Detail() != nil {
			detail = b.vm.ToValue(e.Detail())
		}
	}
	obj.Set("detail", detail)

	obj.Set("preventDefault", func(goja.FunctionCall) goja.Value {
		e.PreventDefault()
		return goja.Undefined()
	})
	obj.Set("stopPropagation", func(goja.FunctionCall) goja.Value {
		e.StopPropagation()
		return goja.Undefined()
	})
	obj.Set("stopImmediatePropagation", func(goja.FunctionCall) goja.Value {
		e.StopImmediatePropagation()
		return goja.Undefined()
	})
	return obj
}
