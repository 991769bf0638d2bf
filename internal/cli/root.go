package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/idilsaglam/tadasync/internal/config"
	"github.com/idilsaglam/tadasync/internal/ui"
	"github.com/spf13/cobra"
)

// Options are the root flags (apply to every subcommand).
type Options struct {
	ConfigPath string
	Endpoint   string
	Theme      string
	LogLevel   string
	LogFormat  string
}

func (o Options) apply(cfg *config.Config) {
	if o.Endpoint != "" {
		cfg.Backend.Endpoint = o.Endpoint
	}
	if o.Theme != "" {
		cfg.UI.Theme = o.Theme
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		cfg.Log.Format = o.LogFormat
	}
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string) int {
	return run(ctx, args, os.Stdin, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	a := &app{in: bufio.NewReader(in), out: out, errOut: errOut}
	defer a.close()

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	if err != nil && !isSilent(err) {
		ui.Fail(errOut, err.Error())
	}
	return exitCode(err)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "todo",
		Short: "A todo list synced with a GraphQL backend",
		Long: `todo keeps a todo list on a managed GraphQL backend.

Sign in once with "todo auth login", then add, list and remove items.
Every change is followed by a full refresh from the backend.`,
		Example: `  todo auth login
  todo add "Buy milk" -d "2%"
  todo ls
  todo rm 2`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				_ = cmd.Help()
				return usageError{fmt.Errorf("unknown subcommand: %s", args[0])}
			}
			_ = cmd.Help()
			return silentUsage
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.opts.ConfigPath, "config", "", "config file (default "+config.DefaultPath()+")")
	f.StringVar(&a.opts.Endpoint, "endpoint", "", "GraphQL endpoint, or memory:// for a local in-process backend")
	f.StringVar(&a.opts.Theme, "theme", "", "color theme: classic, neon or mono")
	f.StringVar(&a.opts.LogLevel, "log-level", "", "log level: debug, info, warn or error")
	f.StringVar(&a.opts.LogFormat, "log-format", "", "log format: text or json")

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	root.AddCommand(newListCmd(a), newAddCmd(a), newRemoveCmd(a), newAuthCmd(a))
	return root
}

// silentUsage ends with exit code 2 after help was already printed.
var silentUsage = usageError{fmt.Errorf("no subcommand")}

func isSilent(err error) bool {
	ue, ok := err.(usageError)
	return ok && ue == silentUsage
}

// usageArgs marks argument validation failures as usage errors.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return usageError{fmt.Errorf("%w\nusage: %s", err, cmd.UseLine())}
		}
		return nil
	}
}
