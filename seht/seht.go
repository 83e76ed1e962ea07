// Package seht wraps sets of DOM nodes in chainable collections: selection
// and normalization of heterogeneous selectors, classes, attributes, data
// attributes, content, insertion, removal and events.
//
// A Seht is bound to one document. Every operation reads and mutates that
// live tree directly; nothing is cached between calls.
package seht

import (
	"go.uber.org/zap"

	"github.com/chrisuehlinger/seht/dom"
)

// Seht resolves selectors against a document.
type Seht struct {
	doc    *dom.Document
	logger *zap.Logger
	policy ReadyPolicy
}

// Option configures a Seht.
type Option func(*Seht)

// WithLogger sets the logger. Bad input that is silently ignored is logged
// at debug level; listener failures at warn level.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Seht) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithReadyPolicy sets how Ready behaves once the document is already loaded.
func WithReadyPolicy(p ReadyPolicy) Option {
	return func(s *Seht) {
		s.policy = p
	}
}

// New returns a Seht bound to doc. When the document has no listener error
// handler, one that logs recovered listener panics is installed.
func New(doc *dom.Document, opts ...Option) *Seht {
	s := &Seht{
		doc:    doc,
		logger: zap.NewNop(),
		policy: ReadyRunIfLoaded,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("seht")

	if !doc.HasListenerErrorHandler() {
		doc.SetListenerErrorHandler(func(err *dom.ListenerError) {
			s.logger.Warn("event listener failed",
				zap.String("type", err.Type),
				zap.String("target", err.CurrentTarget.NodeName()),
				zap.Any("value", err.Value))
		})
	}
	return s
}

// Document returns the document selectors are resolved against.
func (s *Seht) Document() *dom.Document {
	return s.doc
}

// Logger returns the logger used by s.
func (s *Seht) Logger() *zap.Logger {
	return s.logger
}

// Find resolves sel, scoped by an optional context, into a collection.
// Passing a collection without a context returns it unchanged.
func (s *Seht) Find(sel Selector, ctx ...Selector) *Collection {
	var context Selector
	if len(ctx) > 0 {
		context = ctx[0]
	}
	if c, ok := sel.(*Collection); ok && c != nil && context == nil {
		return c
	}
	return s.wrap(s.resolve(sel, context))
}

// Query is Find for a string selector.
func (s *Seht) Query(q string, ctx ...Selector) *Collection {
	return s.Find(Query(q), ctx...)
}

// Wrap returns a collection over nodes, dropping nils and duplicates.
func (s *Seht) Wrap(nodes ...*dom.Node) *Collection {
	return s.wrap(nodes)
}

func (s *Seht) wrap(nodes []*dom.Node) *Collection {
	return &Collection{s: s, nodes: Unique(nodes)}
}
