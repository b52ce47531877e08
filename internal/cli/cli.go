// Package cli maps gitlet subcommands onto the repository engine.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/systemshift/gitlet/internal/config"
	"github.com/systemshift/gitlet/internal/logging"
	"github.com/systemshift/gitlet/internal/repo"
)

// Exit codes.
const (
	ExitOK        = 0
	ExitUserError = 1
	ExitInternal  = 2
)

// App carries the state shared by every subcommand.
type App struct {
	// Dir is the repository root. Defaults to the working directory.
	Dir string
	Out io.Writer
	Err io.Writer
	// Clock stamps commits. Defaults to time.Now.
	Clock func() time.Time

	configFile string
	logLevel   string
	logFormat  string
	cfg        *config.Config
}

func addGlobalFlags(fs *pflag.FlagSet, app *App) {
	fs.StringVarP(&app.Dir, "dir", "C", app.Dir, "run as if started in `path`")
	fs.StringVar(&app.configFile, "config", "", "config file (default $HOME/"+config.ConfigFileName+")")
	fs.StringVar(&app.logLevel, "log-level", "", "log level: trace, debug, info, warn, error or none")
	fs.StringVar(&app.logFormat, "log-format", "", "log format: text or json")
}

// setup loads configuration and applies logging settings. Flags win over
// the config file and environment.
func (a *App) setup() error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	logging.SetOutput(a.Err)
	logging.SetOutputFormat(cfg.Log.Format)
	if err := logging.SetLevel(cfg.Log.Level); err != nil {
		return err
	}
	a.cfg = cfg
	if a.Dir == "" {
		a.Dir, err = os.Getwd()
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *App) options() repo.Options {
	opts := repo.Options{Clock: a.Clock}
	if a.cfg != nil {
		opts.DefaultBranch = a.cfg.Init.DefaultBranch
	}
	return opts
}

func (a *App) open() (*repo.Repository, error) {
	return repo.Open(a.Dir, a.options())
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.Out, args...)
}

// NewRootCommand builds the gitlet command tree.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "gitlet",
		Short:         "A miniature content-addressed version-control system",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
			}
			return nil
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return ErrNoCommand
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", ErrIncorrectOperands, err)
	})
	addGlobalFlags(root.PersistentFlags(), app)

	for _, c := range commands(app) {
		root.AddCommand(c)
	}
	return root
}

// Execute runs the command line args and returns the process exit code.
// User errors print their message to stdout; anything else is reported on
// stderr.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	app := &App{Out: stdout, Err: stderr}
	root := NewRootCommand(app)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}
	if msg, ok := Message(err); ok {
		logging.Default().WithError(err).Debug("user error")
		fmt.Fprintln(stdout, msg)
		return ExitUserError
	}
	fmt.Fprintf(stderr, "gitlet: %v\n", err)
	return ExitInternal
}
