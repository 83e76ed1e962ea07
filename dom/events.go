package dom

import (
	"fmt"
	"reflect"
	"slices"
)

// EventPhase represents the phase of event dispatch.
type EventPhase uint16

const (
	EventPhaseNone      EventPhase = 0
	EventPhaseCapturing EventPhase = 1
	EventPhaseAtTarget  EventPhase = 2
	EventPhaseBubbling  EventPhase = 3
)

// EventInit configures NewEvent.
type EventInit struct {
	Bubbles    bool
	Cancelable bool
}

// CustomEventInit configures NewCustomEvent.
type CustomEventInit struct {
	EventInit
	Detail any
}

// Event is a DOM event. Events are created with NewEvent or NewCustomEvent
// and may be dispatched once at a time.
type Event struct {
	typ        string
	bubbles    bool
	cancelable bool
	custom     bool
	detail     any

	target        *Node
	currentTarget *Node
	phase         EventPhase

	stopPropagation  bool
	stopImmediate    bool
	defaultPrevented bool
	inPassive        bool
	dispatching      bool
}

// NewEvent creates a plain Event.
func NewEvent(eventType string, init EventInit) *Event {
	return &Event{typ: eventType, bubbles: init.Bubbles, cancelable: init.Cancelable}
}

// NewCustomEvent creates a CustomEvent carrying detail.
func NewCustomEvent(eventType string, init CustomEventInit) *Event {
	e := NewEvent(eventType, init.EventInit)
	e.custom = true
	e.detail = init.Detail
	return e
}

func (e *Event) Type() string { return e.typ }
func (e *Event) Bubbles() bool { return e.bubbles }
func (e *Event) Cancelable() bool { return e.cancelable }
func (e *Event) Target() *Node { return e.target }
func (e *Event) CurrentTarget() *Node { return e.currentTarget }
func (e *Event) EventPhase() EventPhase { return e.phase }
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }
func (e *Event) IsCustom() bool { return e.custom }
func (e *Event) Detail() any { return e.detail }
func (e *Event) PropagationStopped() bool { return e.stopPropagation }

// PreventDefault cancels the event if it is cancelable and the running
// listener is not passive.
func (e *Event) PreventDefault() {
	if e.cancelable && !e.inPassive {
		e.defaultPrevented = true
	}
}

// StopPropagation prevents the event from reaching further nodes.
func (e *Event) StopPropagation() {
	e.stopPropagation = true
}

// StopImmediatePropagation also skips the remaining listeners on the current node.
func (e *Event) StopImmediatePropagation() {
	e.stopPropagation = true
	e.stopImmediate = true
}

func (e *Event) String() string {
	kind := "Event"
	if e.custom {
		kind = "CustomEvent"
	}
	return fmt.Sprintf("%s(%q)", kind, e.typ)
}

// EventListener receives dispatched events. Listeners are identified by
// value equality, so implementations should be pointers (see NewListener).
type EventListener interface {
	HandleEvent(e *Event)
}

// ListenerFunc adapts a function to EventListener. Each NewListener call
// yields a distinct listener identity.
type ListenerFunc struct {
	fn func(*Event)
}

// NewListener wraps fn as an EventListener.
func NewListener(fn func(*Event)) *ListenerFunc {
	return &ListenerFunc{fn: fn}
}

// HandleEvent calls the wrapped function.
func (l *ListenerFunc) HandleEvent(e *Event) {
	l.fn(e)
}

// ListenerOptions are the addEventListener options.
type ListenerOptions struct {
	Capture bool
	Once    bool
	Passive bool
}

type registeredListener struct {
	listener EventListener
	opts     ListenerOptions
	removed  bool
}

func sameListener(a, b EventListener) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || ta == nil || !ta.Comparable() {
		return false
	}
	return a == b
}

func firstOption(opts []ListenerOptions) ListenerOptions {
	if len(opts) > 0 {
		return opts[0]
	}
	return ListenerOptions{}
}

// AddEventListener registers listener for eventType. Registering the same
// listener with the same capture flag twice has no effect.
func (n *Node) AddEventListener(eventType string, listener EventListener, opts ...ListenerOptions) {
	if listener == nil {
		return
	}
	o := firstOption(opts)
	for _, r := range n.listeners[eventType] {
		if sameListener(r.listener, listener) && r.opts.Capture == o.Capture {
			return
		}
	}
	if n.listeners == nil {
		n.listeners = make(map[string][]*registeredListener)
	}
	n.listeners[eventType] = append(n.listeners[eventType], &registeredListener{listener: listener, opts: o})
}

// RemoveEventListener unregisters the listener matching eventType, listener
// and the capture flag. Other options are ignored.
func (n *Node) RemoveEventListener(eventType string, listener EventListener, opts ...ListenerOptions) {
	capture := firstOption(opts).Capture
	for _, r := range n.listeners[eventType] {
		if sameListener(r.listener, listener) && r.opts.Capture == capture {
			n.removeListener(eventType, r)
			return
		}
	}
}

func (n *Node) removeListener(eventType string, r *registeredListener) {
	r.removed = true
	n.listeners[eventType] = slices.DeleteFunc(n.listeners[eventType], func(x *registeredListener) bool {
		return x == r
	})
	if len(n.listeners[eventType]) == 0 {
		delete(n.listeners, eventType)
	}
}

// HasEventListeners returns true if there are any listeners for the event type.
func (n *Node) HasEventListeners(eventType string) bool {
	return len(n.listeners[eventType]) > 0
}

// eventPath returns the propagation path from the target up: ancestors,
// then the document's window when the tree is rooted at a document.
func (n *Node) eventPath() []*Node {
	path := []*Node{n}
	if n.nodeType == WindowNode {
		return path
	}
	cur := n
	for cur.parentNode != nil {
		cur = cur.parentNode
		path = append(path, cur)
	}
	if cur.nodeType == DocumentNode {
		if w := cur.documentData.window; w != nil {
			path = append(path, w.AsNode())
		}
	}
	return path
}

// DispatchEvent dispatches e with n as the target: capture listeners from
// the top of the path down, listeners on n, then (for bubbling events)
// bubble listeners back up. Returns false if a listener called
// PreventDefault on a cancelable event. An event that is already being
// dispatched is rejected.
//
// A listener that panics does not abort dispatch. The panic is recovered and
// passed to the document's listener error handler as a *ListenerError.
func (n *Node) DispatchEvent(e *Event) bool {
	if e == nil || e.dispatching {
		return false
	}
	e.dispatching = true
	e.target = n
	e.stopPropagation, e.stopImmediate = false, false

	path := n.eventPath()
	for i := len(path) - 1; i > 0 && !e.stopPropagation; i-- {
		path[i].invokeListeners(e, EventPhaseCapturing, true)
	}
	if !e.stopPropagation {
		n.invokeListeners(e, EventPhaseAtTarget, true)
		if !e.stopImmediate {
			n.invokeListeners(e, EventPhaseAtTarget, false)
		}
	}
	if e.bubbles {
		for i := 1; i < len(path) && !e.stopPropagation; i++ {
			path[i].invokeListeners(e, EventPhaseBubbling, false)
		}
	}

	e.phase = EventPhaseNone
	e.currentTarget = nil
	e.dispatching = false
	return !e.defaultPrevented
}

func (n *Node) invokeListeners(e *Event, phase EventPhase, capture bool) {
	listeners := slices.Clone(n.listeners[e.typ])
	if len(listeners) == 0 {
		return
	}
	e.phase = phase
	e.currentTarget = n
	for _, r := range listeners {
		if r.removed || r.opts.Capture != capture {
			continue
		}
		if r.opts.Once {
			n.removeListener(e.typ, r)
		}
		e.inPassive = r.opts.Passive
		n.callListener(r.listener, e)
		e.inPassive = false
		if e.stopImmediate {
			return
		}
	}
}

func (n *Node) callListener(listener EventListener, e *Event) {
	defer func() {
		if v := recover(); v != nil {
			n.reportListenerError(&ListenerError{Type: e.typ, CurrentTarget: n, Value: v})
		}
	}()
	listener.HandleEvent(e)
}

func (n *Node) reportListenerError(err *ListenerError) {
	doc := n.document()
	if doc == nil || doc.documentData.onListenerErr == nil {
		return
	}
	doc.documentData.onListenerErr(err)
}
