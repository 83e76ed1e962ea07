package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/chrisuehlinger/seht/dom"
	"github.com/chrisuehlinger/seht/seht"
)

type queryOptions struct {
	context string
	attr    string
	data    string
	text    bool
	html    bool
	count   bool
}

func newQueryCmd(a *app) *cobra.Command {
	var opts queryOptions
	cmd := &cobra.Command{
		Use:   "query <source> <selector>",
		Short: "Print the elements matching a selector",
		Long: `Resolves a selector against the document and prints one line per match.
By default each match is printed as markup.

Examples:
  seht query page.html "ul > li"
  seht query page.html li --context "#menu" --text
  seht query https://example.com a --attr href`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runQuery(cmd, args[0], args[1], opts)
		},
	}
	cmd.Flags().StringVar(&opts.context, "context", "", "Selector the query is scoped to")
	cmd.Flags().StringVar(&opts.attr, "attr", "", "Print this attribute of each match")
	cmd.Flags().StringVar(&opts.data, "data", "", "Print this data attribute of each match, decoded as JSON")
	cmd.Flags().BoolVar(&opts.text, "text", false, "Print the text content of each match")
	cmd.Flags().BoolVar(&opts.html, "html", false, "Print the inner HTML of each match")
	cmd.Flags().BoolVar(&opts.count, "count", false, "Print only the number of matches")
	cmd.MarkFlagsMutuallyExclusive("attr", "data", "text", "html", "count")
	return cmd
}

func (a *app) runQuery(cmd *cobra.Command, source, selector string, opts queryOptions) error {
	l, err := a.loader()
	if err != nil {
		return err
	}
	page, err := a.openPage(cmd.Context(), l, source)
	if err != nil {
		return err
	}

	s := a.newSeht(page)
	var ctx []seht.Selector
	if opts.context != "" {
		ctx = append(ctx, seht.Query(opts.context))
	}
	c := s.Query(selector, ctx...)

	out := cmd.OutOrStdout()
	if opts.count {
		_, err := fmt.Fprintln(out, c.Len())
		return err
	}
	for _, n := range c.ToArray() {
		if err := a.printMatch(out, s.Wrap(n), opts); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) printMatch(out io.Writer, match *seht.Collection, opts queryOptions) error {
	var line string
	switch {
	case opts.attr != "":
		v, ok := match.Attributes().Get(opts.attr)
		if !ok {
			return nil
		}
		line = v
	case opts.data != "":
		v, err := match.Data().Get(opts.data)
		if err != nil {
			return err
		}
		encoded, err := json.Marshal(v)
		if err != nil {
			return err
		}
		line = string(encoded)
	case opts.text:
		line = match.Text()
	case opts.html:
		if match.Get(0).NodeType() != dom.ElementNode {
			return nil
		}
		line = match.HTML()
	default:
		line = match.String()
	}
	_, err := fmt.Fprintln(out, line)
	return err
}
