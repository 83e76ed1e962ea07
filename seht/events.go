package seht

import (
	"maps"
	"slices"

	"github.com/chrisuehlinger/seht/dom"
)

// Handler is a listener and the options it is registered with. Remove
// needs the same Capture flag that Add used.
type Handler struct {
	Listener dom.EventListener
	Options  dom.ListenerOptions
}

// Dispatch describes one event to fire. A plain dispatch fires a
// non-bubbling Event named Name; a custom one fires a CustomEvent carrying
// Data as its detail.
type Dispatch struct {
	Name   string
	Data   any
	Custom bool
}

// Named returns plain dispatches for names.
func Named(names ...string) []Dispatch {
	out := make([]Dispatch, len(names))
	for i, name := range names {
		out[i] = Dispatch{Name: name}
	}
	return out
}

// Custom returns a custom dispatch carrying data.
func Custom(name string, data any) Dispatch {
	return Dispatch{Name: name, Data: data, Custom: true}
}

func (d Dispatch) event() *dom.Event {
	if d.Custom {
		return dom.NewCustomEvent(d.Name, dom.CustomEventInit{Detail: d.Data})
	}
	return dom.NewEvent(d.Name, dom.EventInit{})
}

// Events registers, removes and dispatches events on a collection's nodes.
type Events struct {
	c *Collection
}

// Events returns the event operations for c.
func (c *Collection) Events() Events {
	return Events{c: c}
}

// Add registers every handler on every node. Entries with an empty name or
// a nil listener are skipped.
func (ev Events) Add(handlers map[string]Handler) *Collection {
	for _, name := range slices.Sorted(maps.Keys(handlers)) {
		h := handlers[name]
		ev.c.On(name, h.Listener, h.Options)
	}
	return ev.c
}

// Remove unregisters every handler from every node.
func (ev Events) Remove(handlers map[string]Handler) *Collection {
	for _, name := range slices.Sorted(maps.Keys(handlers)) {
		h := handlers[name]
		ev.c.Off(name, h.Listener, h.Options)
	}
	return ev.c
}

// Dispatch fires each event on every node, events in order, nodes in order.
// A fresh event is created per node. Dispatches without a name are skipped.
func (ev Events) Dispatch(events ...Dispatch) *Collection {
	for _, d := range events {
		if d.Name == "" {
			continue
		}
		for _, n := range ev.c.nodes {
			n.DispatchEvent(d.event())
		}
	}
	return ev.c
}

// On registers listener for eventType on every node.
func (c *Collection) On(eventType string, listener dom.EventListener, opts ...dom.ListenerOptions) *Collection {
	if eventType == "" || listener == nil {
		return c
	}
	for _, n := range c.nodes {
		n.AddEventListener(eventType, listener, opts...)
	}
	return c
}

// Off removes listener for eventType from every node.
func (c *Collection) Off(eventType string, listener dom.EventListener, opts ...dom.ListenerOptions) *Collection {
	if eventType == "" || listener == nil {
		return c
	}
	for _, n := range c.nodes {
		n.RemoveEventListener(eventType, listener, opts...)
	}
	return c
}

// Trigger fires a bubbling, cancelable event for each name on every node.
func (c *Collection) Trigger(names ...string) *Collection {
	for _, n := range c.nodes {
		for _, name := range names {
			if name == "" {
				continue
			}
			n.DispatchEvent(dom.NewEvent(name, dom.EventInit{Bubbles: true, Cancelable: true}))
		}
	}
	return c
}
