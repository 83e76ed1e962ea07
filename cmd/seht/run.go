package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chrisuehlinger/seht/jsbind"
	"github.com/chrisuehlinger/seht/seht"
)

type runOptions struct {
	pageScripts bool
	readyPolicy string
	eval        []string
	output      string
}

func newRunCmd(a *app) *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run <source> [script.js ...]",
		Short: "Run JavaScript against a document and print the result",
		Long: `Loads the document, installs seht and $, and runs scripts while the
document is still loading: the page's own scripts (with --page-scripts), then
each script file, then each --eval snippet. The document then finishes
loading, which fires ready callbacks, and the serialized document is printed.

Examples:
  seht run page.html add-nav.js
  seht run page.html -e '$("li").classes.add("item")'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("page-scripts") {
				opts.pageScripts = a.cfg.PageScripts
			}
			if opts.readyPolicy == "" {
				opts.readyPolicy = a.cfg.ReadyPolicy
			}
			return a.runScripts(cmd, args[0], args[1:], opts)
		},
	}
	cmd.Flags().BoolVar(&opts.pageScripts, "page-scripts", false, "Run the page's inline and external scripts first")
	cmd.Flags().StringVar(&opts.readyPolicy, "ready-policy", "", "run-if-loaded or defer-only (default from config)")
	cmd.Flags().StringArrayVarP(&opts.eval, "eval", "e", nil, "JavaScript to run after the script files")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "-", "Where to write the document, - for stdout")
	return cmd
}

func (a *app) runScripts(cmd *cobra.Command, source string, files []string, opts runOptions) error {
	policy, err := seht.ParseReadyPolicy(opts.readyPolicy)
	if err != nil {
		return err
	}

	l, err := a.loader()
	if err != nil {
		return err
	}
	page, err := a.openPage(cmd.Context(), l, source)
	if err != nil {
		return err
	}

	s := a.newSeht(page, seht.WithReadyPolicy(policy))
	rt := jsbind.NewRuntime(jsbind.WithLogger(a.logger))
	if err := jsbind.Install(rt, s); err != nil {
		return err
	}

	if opts.pageScripts {
		scripts, err := l.Scripts(cmd.Context(), page)
		if err != nil {
			a.logger.Warn("some page scripts could not be loaded", zap.Error(err))
		}
		for _, script := range scripts {
			if err := rt.ExecuteScript(script.Source, script.Name); err != nil {
				a.logger.Warn("page script failed", zap.String("script", script.Name), zap.Error(err))
			}
		}
	}

	for _, file := range files {
		code, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read script: %w", err)
		}
		if err := rt.ExecuteScript(string(code), file); err != nil {
			return fmt.Errorf("script %s: %w", file, err)
		}
	}
	for i, code := range opts.eval {
		if err := rt.ExecuteScript(code, fmt.Sprintf("eval#%d", i)); err != nil {
			return fmt.Errorf("eval #%d: %w", i, err)
		}
	}

	page.Document.FinishLoading()
	return writeOutput(cmd.OutOrStdout(), opts.output, page.Document.Serialize())
}

func writeOutput(stdout io.Writer, path, content string) error {
	if path == "" || path == "-" {
		_, err := fmt.Fprintln(stdout, content)
		return err
	}
	if err := os.WriteFile(path, []byte(content+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
