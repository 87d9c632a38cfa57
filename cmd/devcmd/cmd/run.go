package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	dcerror "github.com/msto63/devcmd/foundation/core/error"
	dclog "github.com/msto63/devcmd/foundation/core/log"
	"github.com/msto63/devcmd/internal/engine"
	"github.com/msto63/devcmd/internal/model"
	"github.com/msto63/devcmd/internal/parser"
	"github.com/msto63/devcmd/internal/planner"
	"github.com/msto63/devcmd/internal/report"
	"github.com/msto63/devcmd/pkg/core/config"
	"github.com/msto63/devcmd/pkg/core/logging"
	"github.com/msto63/devcmd/pkg/core/version"
)

func run(cmd *cobra.Command, opts *options, args []string) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	if opts.showVersion {
		banner := version.String()
		if opts.verbose {
			banner = version.Detailed()
		}
		fmt.Fprintln(stdout, banner)
		return nil
	}

	names, extra := args, []string(nil)
	if dash := cmd.ArgsLenAtDash(); dash >= 0 {
		names, extra = args[:dash], args[dash:]
	}

	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	logger := logging.Wrap(logging.NewLogger(logging.LoggerConfig{
		Name:          version.Name,
		Level:         level,
		Format:        opts.logFormat,
		Output:        stderr,
		CorrelationID: uuid.NewString(),
	}))
	console := opts.console(stderr)

	cfg, err := loadConfig(opts.cfgFile, logger)
	if err != nil {
		return finish(console, logger, err)
	}
	if opts.list {
		return console.List(stdout, listing(cfg)...)
	}

	start := time.Now()
	err = invoke(cmd, opts, cfg, names, extra, console, logger)
	if errors.Is(err, errUsage) {
		return finish(console, logger, err)
	}
	console.Summary(err == nil, time.Since(start))
	return finish(console, logger, err)
}

// errUsage marks a failure before anything ran; no summary is printed.
var errUsage = errors.New("invalid invocation")

type usageError struct{ err error }

func (e *usageError) Error() string      { return e.err.Error() }
func (e *usageError) Unwrap() []error    { return []error{e.err, errUsage} }
func (e *usageError) Code() dcerror.Code { return dcerror.GetCode(e.err) }

func invoke(cmd *cobra.Command, opts *options, cfg *model.Configuration, names, extra []string, console *report.Console, logger *logging.Logger) error {
	req := planner.Request{
		Names:     names,
		Skips:     opts.skips,
		ExtraArgs: extra,
		Parallel:  opts.parallel,
		ExitStyle: opts.exitStyle.style,
	}
	if opts.keepGoing {
		end := model.End
		req.ExitStyle = &end
	}
	if cmd.Flags().Changed("grace-period") {
		req.GracePeriod = &opts.gracePeriod
	}

	plan, err := planner.New(cfg, planner.Options{Logger: logger}).Plan(req)
	if err != nil {
		return &usageError{err: err}
	}
	if opts.parallel && len(plan.Targets) == 1 {
		console.Warn(fmt.Sprintf(
			"A parallel run of top-level tasks was requested but only one was requested, %s; so proceeding with a normal run.",
			planner.Describe(plan.Targets[0])))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return engine.New(engine.Options{
		Reporter: console,
		Logger:   logger,
		Stdout:   cmd.OutOrStdout(),
		Stderr:   cmd.ErrOrStderr(),
	}).Run(ctx, plan)
}

func loadConfig(explicit string, logger *logging.Logger) (*model.Configuration, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, &usageError{err: err}
	}
	path, err := config.Locate(explicit, cwd)
	if err != nil {
		return nil, &usageError{err: err}
	}
	src, err := config.Load(path)
	if err != nil {
		return nil, &usageError{err: err}
	}
	cfg, err := parser.Parse(src)
	if err != nil {
		return nil, &usageError{err: err}
	}
	logger.Debug("loaded configuration", "path", src.Path, "commands", len(cfg.Commands), "tasks", len(cfg.Tasks))
	return cfg, nil
}

// finish reports err and turns it into an *ExitError. Quiet runs exit with
// the failing command's own code.
func finish(console *report.Console, logger *logging.Logger, err error) error {
	if err == nil {
		return nil
	}
	code := dcerror.GetCode(err)
	logger.LogError(dclog.LevelDebug, err)

	switch code.Category() {
	case dcerror.CategoryRequest:
		console.ArgumentError(err)
	case dcerror.CategoryExecution:
		var execErr *engine.ExecutionError
		switch {
		case errors.As(err, &execErr):
			console.ExecutionFailed(execErr.StepName, execErr.Message)
			if console.Quiet() && execErr.ExitCode != 0 {
				return &ExitError{Code: execErr.ExitCode}
			}
		case code == dcerror.CodeLaunchFailed:
			console.LaunchError(err)
		default:
			console.Cancelled()
		}
	default:
		console.ConfigError(err)
	}
	return &ExitError{Code: 1}
}

// listing groups the visible commands and tasks for --list.
func listing(cfg *model.Configuration) []report.Section {
	commands := report.Section{Title: "Commands"}
	for _, c := range cfg.Commands {
		if c.Hidden {
			continue
		}
		commands.Entries = append(commands.Entries, report.Entry{
			Name:        c.Name,
			Description: c.Description,
			Default:     cfg.Default == model.Member(c),
		})
	}
	tasks := report.Section{Title: "Tasks"}
	for _, t := range cfg.Tasks {
		if t.Hidden {
			continue
		}
		tasks.Entries = append(tasks.Entries, report.Entry{
			Name:        t.Name,
			Description: t.Description,
			Default:     cfg.Default == model.Member(t),
		})
	}
	return []report.Section{commands, tasks}
}

// completeNames offers the visible command and task names of the discovered
// configuration.
func completeNames(opts *options) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg, err := loadConfig(opts.cfgFile, logging.Nop())
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		var names []string
		for _, s := range listing(cfg) {
			for _, e := range s.Entries {
				names = append(names, e.Name)
			}
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	}
}
