// Package cli provides the scopectl command-line interface.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	scopebridge "github.com/opengovern/scope-bridge"
	"github.com/opengovern/scope-bridge/adapters"
	"github.com/opengovern/scope-bridge/api"
	"github.com/opengovern/scope-bridge/internal/cli/commands"
	"github.com/opengovern/scope-bridge/internal/cli/config"
	"github.com/opengovern/scope-bridge/internal/cli/output"
	"github.com/opengovern/scope-bridge/internal/logger"
	"github.com/opengovern/scope-bridge/stores"
	"github.com/opengovern/scope-bridge/utils"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

// RootOption customizes the root command, mostly for tests.
type RootOption func(*rootOptions)

type rootOptions struct {
	transport scopebridge.Transport
	notifier  *LogrusNotifier
}

// WithTransport replaces the HTTP adapter.
func WithTransport(t scopebridge.Transport) RootOption {
	return func(o *rootOptions) { o.transport = t }
}

func withNotifier(n *LogrusNotifier) RootOption {
	return func(o *rootOptions) { o.notifier = n }
}

// NewRootCmd creates and returns the root command.
func NewRootCmd(opts ...RootOption) *cobra.Command {
	o := &rootOptions{}
	for _, opt := range opts {
		opt(o)
	}

	if o.notifier == nil {
		o.notifier = NewLogrusNotifier(logger.SlogBackedLogrus())
	}

	var cfgFile string

	rootCmd := &cobra.Command{
		Use:     "scopectl",
		Short:   "scopectl - data query console client",
		Long:    `scopectl manages datasources and saved queries, runs and exports queries, and inspects the execution history of a query console backend.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch cmd.Name() {
			case "help", "completion", "__complete", "version":
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			_, err = logger.InitLogger(cmd.ErrOrStderr(), cfg.LogFile, cfg.LogLevel, cfg.Verbose, cfg.Debug)
			if err != nil {
				return err
			}

			mode, err := output.ParseMode(cfg.Output)
			if err != nil {
				return err
			}

			app, err := newApp(cfg, o)
			if err != nil {
				return err
			}

			app.Renderer = output.NewRenderer(cmd.OutOrStdout(), mode)
			cmd.SetContext(commands.WithApp(cmd.Context(), app))

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./scopectl.yaml)")
	flags.String("base-url", "", "Base URL of the console API")
	flags.String("token", "", "Session token, overrides the stored session")
	flags.StringP("output", "o", "", "Output format (table|json|yaml)")
	flags.BoolP("verbose", "v", false, "Verbose output")
	flags.Bool("debug", false, "Debug output")
	flags.String("log-file", "", "Also write logs to this file")
	flags.String("log-level", "", "Log level (debug|info|warn|error)")
	flags.String("timeout", "", "Request timeout, e.g. 10s or 10000")
	flags.String("throttle-interval", "", "Window in which repeated throttled calls are collapsed")
	flags.Bool("show-errors", true, "Report failed calls")
	flags.IntSlice("ignore-errors", nil, "Error codes that are never reported")
	flags.String("session-file", "", "Where the session token is stored")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewDatasourceCommand())
	rootCmd.AddCommand(commands.NewQueryCommand())
	rootCmd.AddCommand(commands.NewHistoryCommand())
	rootCmd.AddCommand(commands.NewSQLCommand())
	rootCmd.AddCommand(commands.NewDashboardCommand())
	rootCmd.AddCommand(commands.NewLoginCommand())
	rootCmd.AddCommand(commands.NewLogoutCommand())

	return rootCmd
}

func newApp(cfg *config.Config, o *rootOptions) (*commands.App, error) {
	transport := o.transport
	if transport == nil {
		transport = adapters.NewHTTPAdapter("")
	}

	bridge, err := scopebridge.NewBridge(transport,
		scopebridge.WithBaseURL(cfg.BaseURL),
		scopebridge.WithTimeout(cfg.TimeoutDuration()),
		scopebridge.WithThrottleInterval(cfg.ThrottleDuration()),
		scopebridge.WithErrorHandler(scopebridge.ErrorHandlerConfig{
			ShowErrorMessage: scopebridge.Bool(cfg.ShowErrors),
			IgnoreErrors:     cfg.IgnoreErrors,
		}),
		scopebridge.WithNotifier(o.notifier),
		scopebridge.WithLogger(slog.Default()),
	)
	if err != nil {
		return nil, err
	}

	client := api.NewClient(bridge)
	tokens := utils.NewSessionTokenSource()
	session := stores.NewSessionStore(client, tokens)

	if cfg.SessionFile != "" {
		tok, err := utils.LoadSessionToken(cfg.SessionFile)
		if err != nil {
			slog.Warn("Ignoring unreadable session file", "path", cfg.SessionFile, logger.Err(err))
		} else if tok != nil {
			session.Restore(tok)
		}
	}

	if cfg.Token != "" {
		tokens.Set(cfg.Token)
	}

	app := &commands.App{
		Config:  cfg,
		Client:  client,
		Session: session,
	}

	app.SaveSession = func() error {
		if cfg.SessionFile == "" {
			return nil
		}

		return utils.SaveSessionToken(cfg.SessionFile, tokens.Current())
	}

	return app, nil
}

// Execute runs the root command. Failed calls already reported by the notifier are not
// printed a second time.
func Execute() error {
	notifier := NewLogrusNotifier(logger.SlogBackedLogrus())
	rootCmd := NewRootCmd(withNotifier(notifier))
	defer func() { _ = logger.Close() }()

	err := rootCmd.Execute()
	if err != nil {
		var cerr *scopebridge.ClassifiedError
		if !errors.As(err, &cerr) || notifier.Count() == 0 {
			_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}

		return err
	}

	return nil
}
