// Package commands implements the CLI commands for tsload.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.trai.ch/tsload/internal/adapters/detector"  //nolint:depguard // output mode selection
	"go.trai.ch/tsload/internal/adapters/telemetry" //nolint:depguard // --trace span output
	"go.trai.ch/tsload/internal/app"
	"go.trai.ch/tsload/internal/build"
	"go.trai.ch/tsload/internal/core/domain"
	"go.trai.ch/tsload/internal/core/ports"
)

// skipConfigure marks commands that run without loading the configuration.
const skipConfigure = "tsload/skip-configure"

// CLI represents the command line interface for tsload.
type CLI struct {
	app     Application
	logger  ports.Logger
	rootCmd *cobra.Command

	settings  app.Settings
	logFormat string
	json      bool
	trace     bool
	shutdown  func(context.Context) error
}

// Application represents the application logic interface.
type Application interface {
	Configure(cwd string, s app.Settings) (*domain.Config, error)
	Compile(ctx context.Context, files []string, opts app.CompileOptions) error
	Cat(ctx context.Context, name string, w io.Writer) error
	Watch(ctx context.Context, files []string, opts app.WatchOptions) error
	CleanCache(ctx context.Context) error
	Backends(ctx context.Context) ([]domain.BackendStatus, error)
}

// modeSwitcher is implemented by loggers that can change their output format.
type modeSwitcher interface {
	SetJSON(enable bool)
}

// New creates a new CLI instance with the given app.
func New(a Application, log ports.Logger) *CLI {
	rootCmd := &cobra.Command{
		Use:           "tsload",
		Short:         "Compile TypeScript sources as they are loaded",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		logger:  log,
		rootCmd: rootCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.settings.ConfigPath, "config", "", "Path to the configuration file")
	flags.StringVar(&c.settings.CacheMode, "cache", "", "Cache mode: none, memory or disk")
	flags.StringVar(&c.settings.CacheDir, "cache-dir", "", "Directory of the disk cache")
	flags.BoolVar(&c.settings.DisableNative, "no-native", false, "Never use the embedded V8 backend")
	flags.BoolVar(&c.settings.DisableProcess, "no-process", false, "Never use the external interpreter backend")
	flags.BoolVar(&c.settings.Share, "share", false, "Share one compiler per backend across the process")
	flags.StringVar(&c.settings.Interpreter, "interpreter", "", "Interpreter run by the process backend")
	flags.StringVar(&c.logFormat, "log-format", "auto", "Log format: auto, pretty or json")
	flags.BoolVar(&c.json, "json", false, "Write logs as JSON (same as --log-format=json)")
	flags.BoolVar(&c.trace, "trace", false, "Write a line per finished span to stderr")

	rootCmd.PersistentPreRunE = c.setup

	rootCmd.AddCommand(c.newCompileCmd())
	rootCmd.AddCommand(c.newCatCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newCacheCmd())
	rootCmd.AddCommand(c.newBackendsCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// setup selects the log format, installs tracing and loads the configuration.
func (c *CLI) setup(cmd *cobra.Command, _ []string) error {
	format := c.logFormat
	if c.json {
		format = "json"
	}
	mode := detector.ResolveMode(detector.DetectEnvironment(), format)
	if s, ok := c.logger.(modeSwitcher); ok {
		s.SetJSON(mode == detector.ModeJSON)
	}

	if c.trace && c.shutdown == nil {
		c.shutdown = telemetry.Setup(cmd.ErrOrStderr())
	}

	if cmd.Annotations[skipConfigure] != "" {
		return nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	_, err = c.app.Configure(cwd, c.settings)
	return err
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	err := c.rootCmd.Execute()
	if c.shutdown != nil {
		err = errors.Join(err, c.shutdown(context.WithoutCancel(ctx)))
		c.shutdown = nil
	}
	return err
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
