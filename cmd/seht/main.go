// Command seht queries and scripts HTML documents with the seht library.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/chrisuehlinger/seht/config"
	"github.com/chrisuehlinger/seht/network"
	"github.com/chrisuehlinger/seht/seht"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

// app holds state shared by the subcommands of one invocation.
type app struct {
	configFile string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "seht",
		Short: "Query and script HTML documents",
		Long: `seht loads an HTML document from a file, a data: URL or over http(s),
and lets you select elements from it or run JavaScript against it with the
seht ($) API installed.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, used, err := config.Load(config.LoadOptions{ConfigFile: a.configFile})
			if err != nil {
				return err
			}
			a.cfg = cfg

			if a.logger == nil {
				zc := zap.NewProductionConfig()
				if a.verbose || cfg.Log.Verbose {
					zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
				}
				logger, err := zc.Build()
				if err != nil {
					return fmt.Errorf("failed to initialize logger: %w", err)
				}
				a.logger = logger
			}
			if used != "" {
				a.logger.Debug("loaded config", zap.String("file", used))
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "Config file (default: ./seht.yaml or the user config dir)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newQueryCmd(a))
	root.AddCommand(newRunCmd(a))
	root.AddCommand(newVersionCmd())
	return root
}

// loader builds a loader from the HTTP and cache settings.
func (a *app) loader() (*network.Loader, error) {
	client, err := network.NewClient(
		network.WithTimeout(a.cfg.HTTP.Timeout),
		network.WithUserAgent(a.cfg.HTTP.UserAgent),
		network.WithClientLogger(a.logger),
	)
	if err != nil {
		return nil, err
	}
	return network.NewLoader(client,
		network.WithCache(network.NewCache(a.cfg.Cache.Size)),
		network.WithLoaderLogger(a.logger),
	), nil
}

// openPage loads source, which may be a path or a URL.
func (a *app) openPage(ctx context.Context, l *network.Loader, source string) (*network.Page, error) {
	u, err := network.SourceURL(source)
	if err != nil {
		return nil, err
	}
	page, err := l.LoadPage(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", source, err)
	}
	return page, nil
}

func (a *app) newSeht(page *network.Page, opts ...seht.Option) *seht.Seht {
	return seht.New(page.Document, append([]seht.Option{seht.WithLogger(a.logger)}, opts...)...)
}

func main() {
	if err := newRootCmd(&app{}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
