package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/msto63/devcmd/internal/report"
	"github.com/msto63/devcmd/pkg/core/version"
)

// ExitError carries the exit status of a finished invocation. Anything it
// needed to say has already been printed.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// options holds the parsed command line.
type options struct {
	cfgFile     string
	verbose     bool
	logFormat   string
	showVersion bool
	list        bool
	quiet       bool
	skips       []string
	parallel    bool
	keepGoing   bool
	exitStyle   exitStyleValue
	gracePeriod float64
	color       colorValue
}

// NewRootCommand builds the devcmd command writing to the given streams.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   version.Name + " [flags] [task|cmd...] [-- extra-args...]",
		Short: "Runs the commands and tasks of a development workflow",
		Long: `devcmd runs the commands and tasks configured in dev-cmd.toml,
dev-cmd.yaml or the [tool.dev-cmd] table of pyproject.toml.

Without arguments the default task or command runs. Arguments after --
are passed to the one selected command that accepts extra arguments.

Tasks alternate between serial and parallel execution by nesting depth:
a task's steps run in order, a list inside it runs concurrently, a list
inside that runs in order again, and so on.`,
		Args:              cobra.ArbitraryArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		ValidArgsFunction: completeNames(opts),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	flags := rootCmd.Flags()
	flags.StringVar(&opts.cfgFile, "config", "", "config file (default: discovered upward from the working directory)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log debug diagnostics to stderr")
	flags.StringVar(&opts.logFormat, "log-format", "text", "format of diagnostics on stderr: text or json")
	flags.BoolVarP(&opts.showVersion, "version", "V", false, "print the version and exit")
	flags.BoolVarP(&opts.list, "list", "l", false, "list the available commands and tasks and exit")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "do not print lifecycle messages; exit with the failing command's code")
	flags.StringArrayVarP(&opts.skips, "skip", "s", nil, "skip the named command or task wherever it appears (repeatable)")
	flags.BoolVarP(&opts.parallel, "parallel", "p", false, "run the requested top-level tasks concurrently")
	flags.BoolVarP(&opts.keepGoing, "keep-going", "k", false, "keep going after failures (same as --exit-style end)")
	flags.VarP(&opts.exitStyle, "exit-style", "X", "what a failure does to the rest: after-step, immediate or end")
	flags.Float64Var(&opts.gracePeriod, "grace-period", 0, "seconds to wait after a termination request before killing")
	flags.Var(&opts.color, "color", "when to color output: auto, always or never")

	rootCmd.MarkFlagsMutuallyExclusive("keep-going", "exit-style")
	_ = rootCmd.RegisterFlagCompletionFunc("exit-style", completeExitStyle)
	_ = rootCmd.RegisterFlagCompletionFunc("color", completeColor)
	_ = rootCmd.RegisterFlagCompletionFunc("log-format", cobra.FixedCompletions([]string{"text", "json"}, cobra.ShellCompDirectiveNoFileComp))
	_ = rootCmd.MarkFlagFilename("config", "toml", "yaml", "yml")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w\nRun '%s --help' for usage", err, version.Name)
	})
	return rootCmd
}

// Execute runs devcmd with the process arguments and returns its exit code.
func Execute() int {
	return exitCode(NewRootCommand(os.Stdout, os.Stderr).Execute(), os.Stderr)
}

// exitCode maps the result of the root command to a process exit code.
// Errors other than an *ExitError come from the command line itself.
func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	fmt.Fprintf(stderr, "%s: %v\n", version.Name, err)
	return 2
}

// console builds the lifecycle console for the parsed options.
func (o *options) console(stderr io.Writer) *report.Console {
	return report.NewConsole(report.Options{
		Out:   stderr,
		Color: o.color.mode.Enabled(stderr),
		Quiet: o.quiet,
	})
}
