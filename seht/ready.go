package seht

import (
	"fmt"
	"strings"

	"github.com/chrisuehlinger/seht/dom"
)

// ReadyPolicy decides what Ready does when the document has already left
// the "loading" state.
type ReadyPolicy int

const (
	// ReadyRunIfLoaded runs the callback immediately, from Ready.
	ReadyRunIfLoaded ReadyPolicy = iota
	// ReadyDeferOnly only registers; a callback registered after
	// DOMContentLoaded never runs.
	ReadyDeferOnly
)

func (p ReadyPolicy) String() string {
	switch p {
	case ReadyRunIfLoaded:
		return "run-if-loaded"
	case ReadyDeferOnly:
		return "defer-only"
	}
	return fmt.Sprintf("ReadyPolicy(%d)", int(p))
}

// ParseReadyPolicy parses "run-if-loaded" or "defer-only".
func ParseReadyPolicy(s string) (ReadyPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "run-if-loaded":
		return ReadyRunIfLoaded, nil
	case "defer-only":
		return ReadyDeferOnly, nil
	}
	return 0, fmt.Errorf("unknown ready policy %q", s)
}

// Ready arranges for fn to run once when the document fires
// DOMContentLoaded. Under ReadyRunIfLoaded a document that is no longer
// loading runs fn before Ready returns. The returned cancel function
// unregisters fn if it has not run yet.
func (s *Seht) Ready(fn func()) (cancel func()) {
	if fn == nil {
		return func() {}
	}
	if s.policy == ReadyRunIfLoaded && s.doc.ReadyState() != dom.ReadyStateLoading {
		fn()
		return func() {}
	}
	listener := dom.NewListener(func(*dom.Event) { fn() })
	target := s.doc.AsNode()
	target.AddEventListener("DOMContentLoaded", listener, dom.ListenerOptions{Once: true})
	return func() {
		target.RemoveEventListener("DOMContentLoaded", listener)
	}
}
