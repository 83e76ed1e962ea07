package jsbind

import (
	"errors"
	"strconv"

	"github.com/dop251/goja"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/chrisuehlinger/seht/dom"
	"github.com/chrisuehlinger/seht/seht"
)

// ErrAlreadyInstalled is returned by Install when the runtime already has
// seht defined.
var ErrAlreadyInstalled = errors.New("jsbind: seht is already installed in this runtime")

// binder maps Go nodes and collections to JS objects for one runtime.
type binder struct {
	rt        *Runtime
	vm        *goja.Runtime
	s         *seht.Seht
	logger    *zap.Logger
	nodes     map[*dom.Node]*goja.Object
	listeners map[*goja.Object]*jsListener

	// The runtime's own JSON functions, captured at install time. Data
	// values go through them so objects keep their property order.
	jsonParse     goja.Callable
	jsonStringify goja.Callable
}

// Install defines the global seht function in rt, along with document and
// window. $ is defined as an alias only when nothing else already owns it.
// Installing twice into the same runtime returns ErrAlreadyInstalled and
// leaves the runtime untouched.
func Install(rt *Runtime, s *seht.Seht) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.binder != nil {
		return ErrAlreadyInstalled
	}

	b := &binder{
		rt:        rt,
		vm:        rt.vm,
		s:         s,
		logger:    rt.logger,
		nodes:     make(map[*dom.Node]*goja.Object),
		listeners: make(map[*goja.Object]*jsListener),
	}
	if err := b.captureJSON(); err != nil {
		return err
	}

	fn := b.sehtFunction()
	global := rt.vm.GlobalObject()
	if err := global.Set("seht", fn); err != nil {
		return err
	}
	if v := global.Get("$"); v == nil || goja.IsUndefined(v) {
		global.Set("$", fn)
	} else {
		b.logger.Debug("$ already defined, leaving it alone")
	}

	doc := s.Document()
	global.Set("document", b.wrapNode(doc.AsNode()))
	global.Set("window", b.wrapNode(doc.DefaultView().AsNode()))

	rt.binder = b
	return nil
}

func (b *binder) captureJSON() error {
	jsonObj, ok := b.vm.GlobalObject().Get("JSON").(*goja.Object)
	if !ok {
		return errors.New("jsbind: runtime has no JSON object")
	}
	parse, ok := goja.AssertFunction(jsonObj.Get("parse"))
	if !ok {
		return errors.New("jsbind: JSON.parse is not a function")
	}
	stringify, ok := goja.AssertFunction(jsonObj.Get("stringify"))
	if !ok {
		return errors.New("jsbind: JSON.stringify is not a function")
	}
	b.jsonParse, b.jsonStringify = parse, stringify
	return nil
}

// sehtFunction builds seht(selector, context) and its static helpers.
func (b *binder) sehtFunction() *goja.Object {
	fn := b.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		sel := b.selector(call.Argument(0))
		if len(call.Arguments) > 1 {
			return b.wrapCollection(b.s.Find(sel, b.selector(call.Argument(1))))
		}
		return b.wrapCollection(b.s.Find(sel))
	}).(*goja.Object)

	fn.Set("ready", func(call goja.FunctionCall) goja.Value {
		cb, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			return goja.Undefined()
		}
		cancel := b.s.Ready(func() {
			if _, err := cb(goja.Undefined()); err != nil {
				b.logger.Warn("ready callback threw", zap.Error(err))
			}
		})
		return b.vm.ToValue(func(goja.FunctionCall) goja.Value {
			cancel()
			return goja.Undefined()
		})
	})

	fn.Set("each", func(call goja.FunctionCall) goja.Value {
		obj := call.Argument(0)
		cb, ok := goja.AssertFunction(call.Argument(1))
		if !ok {
			return obj
		}
		b.forEach(obj, func(key, value goja.Value) {
			b.call(cb, value, value, key, obj)
		})
		return obj
	})

	fn.Set("map", func(call goja.FunctionCall) goja.Value {
		obj := call.Argument(0)
		cb, ok := goja.AssertFunction(call.Argument(1))
		if !ok {
			return b.vm.NewArray()
		}
		var out []any
		b.forEach(obj, func(key, value goja.Value) {
			out = append(out, b.call(cb, value, value, key, obj))
		})
		return b.vm.NewArray(out...)
	})

	fn.Set("toArray", func(call goja.FunctionCall) goja.Value {
		var out []any
		b.forEach(call.Argument(0), func(_, value goja.Value) {
			out = append(out, value)
		})
		return b.vm.NewArray(out...)
	})

	fn.Set("unique", func(call goja.FunctionCall) goja.Value {
		var out []goja.Value
		b.forEach(call.Argument(0), func(_, value goja.Value) {
			for _, seen := range out {
				if seen.StrictEquals(value) {
					return
				}
			}
			out = append(out, value)
		})
		items := make([]any, len(out))
		for i, v := range out {
			items[i] = v
		}
		return b.vm.NewArray(items...)
	})

	return fn
}

// forEach visits the indexed entries of an array-like value, or the own keys
// of any other object. Primitives are not visited.
func (b *binder) forEach(v goja.Value, fn func(key, value goja.Value)) {
	obj, ok := v.(*goja.Object)
	if !ok {
		return
	}
	if n, ok := arrayLength(obj); ok {
		for i := range n {
			fn(b.vm.ToValue(i), obj.Get(strconv.Itoa(i)))
		}
		return
	}
	for _, key := range obj.Keys() {
		fn(b.vm.ToValue(key), obj.Get(key))
	}
}

// arrayLength reports the length of an array-like object. Functions are
// never array-like even though they carry a length.
func arrayLength(obj *goja.Object) (int, bool) {
	if _, isFunc := goja.AssertFunction(obj); isFunc {
		return 0, false
	}
	length := obj.Get("length")
	if length == nil || goja.IsUndefined(length) || goja.IsNull(length) {
		return 0, false
	}
	n := length.ToInteger()
	if n < 0 {
		return 0, false
	}
	return int(n), true
}

// selector converts a JS value into a seht selector. Wrapped collections,
// wrapped nodes and arrays of those map to their Go values; strings become
// queries, also inside arrays, where they are resolved against the document. Anything else is handed to seht.From, which rejects what
// it does not know.
func (b *binder) selector(v goja.Value) seht.Selector {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		if s, ok := v.Export().(string); ok {
			return seht.Query(s)
		}
		return seht.From(v.Export())
	}
	if c := collectionOf(obj); c != nil {
		return c
	}
	if n := nodeOf(obj); n != nil {
		return seht.Node(n)
	}
	if length, ok := arrayLength(obj); ok {
		nodes := make(seht.Nodes, 0, length)
		for i := range length {
			entry := obj.Get(strconv.Itoa(i))
			item, ok := entry.(*goja.Object)
			if !ok {
				if q, ok := entry.Export().(string); ok {
					nodes = append(nodes, b.s.Find(seht.Query(q)).ToArray()...)
				}
				continue
			}
			if c := collectionOf(item); c != nil {
				nodes = append(nodes, c.ToArray()...)
			} else if n := nodeOf(item); n != nil {
				nodes = append(nodes, n)
			}
		}
		return nodes
	}
	return seht.From(obj.Export())
}

// call invokes fn and rethrows anything it throws into the calling script.
func (b *binder) call(fn goja.Callable, this goja.Value, args ...goja.Value) goja.Value {
	v, err := fn(this, args...)
	if err != nil {
		b.throw(err)
	}
	return v
}

// throw raises err as a JS exception. DOM errors keep their name.
func (b *binder) throw(err error) {
	var ex *goja.Exception
	if errors.As(err, &ex) {
		panic(ex.Value())
	}
	exc := b.vm.NewGoError(err)
	var domErr *dom.DOMError
	if errors.As(err, &domErr) {
		exc.Set("name", domErr.Name)
	}
	panic(exc)
}

// mutate runs fn against c and throws the first error fn added to c.
func (b *binder) mutate(c *seht.Collection, fn func()) {
	before := len(multierr.Errors(c.Err()))
	fn()
	if errs := multierr.Errors(c.Err()); len(errs) > before {
		b.throw(errs[before])
	}
}
