// Package cmd contains the CLI commands for wtc.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/wtc/internal/credentials"
	"github.com/good-yellow-bee/wtc/internal/pipeline"
	"github.com/good-yellow-bee/wtc/internal/watch"
	"github.com/good-yellow-bee/wtc/pkg/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wtc",
		Short: "wtc - show the latest Icinga notifications",
		Long: `wtc shows the most recent notifications of one or more Icinga Web
instances, newest first, filtered by contact name.

Every flag can also be set in a YAML config file (default ~/.config/wtc.yml)
using the long flag name as key. Flags given on the command line win.

Examples:
  # Notifications of the last day from two instances
  wtc -i https://icinga-a.example.com/icingaweb2 -i https://icinga-b.example.com/icingaweb2

  # Only notifications sent to the on-call contact, refreshed every minute
  wtc -i https://icinga.example.com --filter oncall --watch --watch-interval 60

  # Last two hours as JSON
  wtc -i https://icinga.example.com -l "-2 hours" -o json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRoot,
	}

	// Global flags
	cmd.PersistentFlags().BoolP(config.FlagVerbose, "v", false, "verbose output")
	cmd.PersistentFlags().StringP(config.FlagOutput, "o", config.OutputText, "output format (text, json)")

	flags := cmd.Flags()
	flags.StringP(config.FlagConfig, "c", "", "config file (default ~/.config/wtc.yml)")
	flags.StringArrayP(config.FlagInstance, "i", nil, "one or more icinga instances to monitor (repeatable)")
	flags.StringP(config.FlagLookback, "l", config.DefaultLookback, "how long to look back for notifications")
	flags.Int(config.FlagLimit, config.DefaultLimit, "number of the last entries to display")
	flags.String(config.FlagFilter, config.DefaultFilter, "regex filter for notification contact name")
	flags.StringP(config.FlagUser, "u", config.CurrentUser(), "login user for icinga")
	flags.StringP(config.FlagPassword, "p", "", "login password for icinga (prompted if unset)")
	flags.Bool(config.FlagDisableURLs, false, "do not print links to the web interface")
	flags.BoolP(config.FlagWatch, "w", false, "run the output in an infinite loop, refreshing automatically")
	flags.Int(config.FlagWatchInterval, config.DefaultWatchInterval, "interval for updates in watch mode in seconds")
	flags.Duration(config.FlagTimeout, config.DefaultTimeout, "timeout for each instance request (0 disables)")

	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		PrintError(rootCmd.ErrOrStderr(), err.Error())
	}
	return err
}

// PrintError prints an error message to w.
func PrintError(w io.Writer, msg string) {
	fmt.Fprintln(w, "Error:", msg)
}

func newLogger(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: verbose,
		Prefix:          "wtc",
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// configFile returns the config path and whether the user named it.
func configFile(cmd *cobra.Command) (string, bool) {
	path, _ := cmd.Flags().GetString(config.FlagConfig)
	if path != "" {
		return path, true
	}
	return config.DefaultPath(), false
}

func passwordSource(opts *config.Options) credentials.Source {
	if opts.PasswordSet {
		return credentials.Static(opts.Password)
	}
	return credentials.Chain{credentials.Env{}, credentials.NewPrompt()}
}

func runRoot(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	path, explicit := configFile(cmd)
	load := func() (*config.Options, error) {
		return config.Load(path, explicit, cmd.Flags())
	}

	opts, err := load()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)
	logger.Debug("configuration loaded",
		"instances", len(opts.Instances),
		"lookback", opts.Lookback,
		"limit", opts.Limit,
		"filter", opts.Filter,
		"watch", opts.Watch)

	password, err := passwordSource(opts).Password(ctx, opts.User)
	if err != nil {
		return exitError(ctx, fmt.Errorf("password for %s: %w", opts.User, err))
	}

	p := pipeline.New(out, pipeline.IcingaFetcher(password, logger))

	if !opts.Watch {
		_, err := p.Run(ctx, opts)
		return exitError(ctx, err)
	}

	var current atomic.Pointer[config.Options]
	current.Store(opts)

	loop := watch.NewLoop(watch.NewKeyWaiter(os.Stdin, out), watch.NewTermScreen(out), logger)

	if _, err := os.Stat(path); err == nil {
		go func() {
			err := config.Watch(ctx, path, load, func(o *config.Options) {
				current.Store(o)
				loop.Wake()
			}, logger)
			if err != nil {
				logger.Warn("config reload disabled", "path", path, "error", err)
			}
		}()
	}

	err = loop.Run(ctx,
		func() time.Duration { return current.Load().WaitTimeout() },
		func(ctx context.Context) error {
			_, err := p.Run(ctx, current.Load())
			return err
		})
	return exitError(ctx, err)
}

// exitError drops errors caused by the user cancelling the run.
func exitError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil && errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
