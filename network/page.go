package network

import (
	"bytes"
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/chrisuehlinger/seht/dom"
)

// Page is a parsed document and the URL it was loaded from.
type Page struct {
	Document *dom.Document
	URL      string
}

// LoadPage loads and parses an HTML document. The document is left in the
// loading state so ready callbacks registered by scripts are deferred until
// the caller finishes loading it.
func (l *Loader) LoadPage(ctx context.Context, urlStr string) (*Page, error) {
	res, err := l.Load(ctx, urlStr)
	if err != nil {
		return nil, err
	}
	doc, err := dom.ParseHTMLReader(bytes.NewReader(res.Content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", res.URL, err)
	}
	doc.SetURL(res.URL)
	return &Page{Document: doc, URL: res.URL}, nil
}

// Script is one page script ready to run.
type Script struct {
	// Name identifies the script in error messages: its URL, or the page
	// URL with the script's position for inline scripts.
	Name   string
	Source string
	Inline bool
	Defer  bool
}

// Scripts collects the page's classic scripts in execution order: inline
// and blocking external scripts in document order, then deferred external
// scripts. Non-JavaScript types are skipped. External scripts that fail to
// load are left out and their errors combined in the returned error.
func (l *Loader) Scripts(ctx context.Context, page *Page) ([]Script, error) {
	var blocking, deferred []Script
	var errs error

	for i, n := range page.Document.AsNode().QuerySelectorAll("script").All() {
		el := (*dom.Element)(n)
		if !IsJavaScriptType(el.GetAttribute("type")) {
			l.logger.Debug("skipping script", zap.String("type", el.GetAttribute("type")))
			continue
		}

		src, hasSrc := el.LookupAttribute("src")
		if !hasSrc {
			blocking = append(blocking, Script{
				Name:   fmt.Sprintf("%s#script%d", page.URL, i),
				Source: el.TextContent(),
				Inline: true,
			})
			continue
		}

		ref, err := ResolveURL(page.URL, src)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		res, err := l.Load(ctx, ref)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("script %s: %w", ref, err))
			continue
		}

		s := Script{Name: ref, Source: res.String(), Defer: el.HasAttribute("defer")}
		if s.Defer {
			deferred = append(deferred, s)
		} else {
			blocking = append(blocking, s)
		}
	}
	return append(blocking, deferred...), errs
}
