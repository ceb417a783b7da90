package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/toyz/paranoia/internal/cli"
	"github.com/toyz/paranoia/internal/config"
	"github.com/toyz/paranoia/internal/cop/paranoia"
	"github.com/toyz/paranoia/internal/report"
	"github.com/toyz/paranoia/internal/utils"
)

type options struct {
	configPath       string
	autocorrect      bool
	diff             bool
	format           string
	jobs             int
	superclasses     []string
	indentationWidth int
	maxFileSize      int
	watch            bool
	verbose          bool
	quiet            bool
	debug            bool
	noColor          bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit status
func run(args []string, stdout, stderr io.Writer) int {
	opts := &options{}
	status := cli.ExitClean

	root := newRootCommand(opts, stdout, stderr, &status)
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		cli.NewDiagnosticReporter(opts.verbose, opts.diagnostics(stdout, stderr, utils.DiagnosticWarn)).ReportError(err)
		return cli.ExitError
	}
	return status
}

func newRootCommand(opts *options, stdout, stderr io.Writer, status *int) *cobra.Command {
	root := &cobra.Command{
		Use:   "paranoia [flags] [paths...]",
		Short: "Check that soft-deletable models call acts_as_paranoid",
		Long: `paranoia inspects Ruby model classes whose schema annotation documents a
soft-delete column and reports those that do not call acts_as_paranoid.

Paths may be files or directories; directories are searched recursively and
the ./... form is accepted. With no paths the current directory is inspected.

Exit status is 0 when no offenses remain, 1 when offenses remain and 2 when
configuration or files could not be processed.`,
		Example: `  paranoia app/models
  paranoia -a ./...
  paranoia --diff --superclass LegacyRecord app/models/legacy
  paranoia --format json > offenses.json
  paranoia --watch app/models`,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := inspect(cmd.Context(), opts, args, stdout, stderr)
			*status = code
			return err
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "configuration file (default: .paranoia.yml or .rubocop.yml in the working directory)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output and detailed error reporting")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "only show errors and the report")
	flags.BoolVar(&opts.debug, "debug", false, "show debug output")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	local := root.Flags()
	local.BoolVarP(&opts.autocorrect, "autocorrect", "a", false, "insert the missing acts_as_paranoid calls")
	local.BoolVar(&opts.diff, "diff", false, "print corrections as unified diffs instead of writing files")
	local.StringVarP(&opts.format, "format", "f", "simple", fmt.Sprintf("output format (%s)", strings.Join(report.Names, ", ")))
	local.IntVarP(&opts.jobs, "jobs", "j", 0, "files inspected in parallel (default: GOMAXPROCS)")
	local.StringArrayVar(&opts.superclasses, "superclass", nil, "additional superclass to watch; repeatable")
	local.IntVar(&opts.indentationWidth, "indentation-width", 0, "override Layout/IndentationWidth")
	local.IntVar(&opts.maxFileSize, "max-file-size", 0, "skip files larger than this many bytes (default 10MiB)")
	local.BoolVarP(&opts.watch, "watch", "w", false, "re-inspect files as they change")

	root.MarkFlagsMutuallyExclusive("quiet", "verbose")
	root.MarkFlagsMutuallyExclusive("watch", "diff")

	root.AddCommand(newShowConfigCommand(opts, stdout, stderr))
	return root
}

func newShowConfigCommand(opts *options, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "show-config [dir]",
		Short: "Print the resolved cop configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return showConfig(opts, dir, stdout, stderr)
		},
	}
}

func inspect(ctx context.Context, opts *options, paths []string, stdout, stderr io.Writer) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	diagnostics := opts.diagnostics(stdout, stderr, utils.DiagnosticWarn)

	runner, err := cli.NewRunner(cli.Config{
		Paths:            paths,
		ConfigPath:       opts.configPath,
		Autocorrect:      opts.autocorrect || opts.diff,
		Diff:             opts.diff,
		Format:           opts.format,
		Jobs:             opts.jobs,
		Superclasses:     opts.superclasses,
		IndentationWidth: opts.indentationWidth,
		MaxFileSize:      opts.maxFileSize,
		Watch:            opts.watch,
		Verbose:          opts.verbose || opts.debug,
		Colors:           opts.colors(stdout),
		Stdout:           stdout,
	}, diagnostics)
	if err != nil {
		return cli.ExitError, err
	}

	if opts.watch {
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		status := cli.ExitClean
		err := runner.Watch(ctx, func(result *cli.Result) {
			status = result.ExitCode()
		})
		if err != nil {
			return cli.ExitError, err
		}
		return status, nil
	}

	result, err := runner.Run(ctx)
	if err != nil {
		return cli.ExitError, err
	}
	return result.ExitCode(), nil
}

func showConfig(opts *options, dir string, stdout, stderr io.Writer) error {
	diagnostics := opts.diagnostics(stdout, stderr, utils.DiagnosticInfo)

	settings, err := config.Resolve(dir, opts.configPath)
	if err != nil {
		return err
	}

	diagnostics.Section(paranoia.CopName)
	diagnostics.Summary("Configuration", map[string]interface{}{
		"Source":           settings.Source(),
		"Enabled":          settings.Paranoia.IsEnabled(),
		"IndentationWidth": settings.IndentationWidth,
		"Exclude":          len(settings.Exclude),
	})

	c, err := paranoia.New(settings.Paranoia, settings.IndentationWidth)
	if err != nil {
		return err
	}

	diagnostics.Subsection("Superclasses")
	diagnostics.Indent()
	defer diagnostics.Unindent()
	for _, rule := range c.Rules().Rules() {
		diagnostics.List("%s  column: %s  statement: %s",
			diagnostics.Paint(rule.ClassName, color.Bold), rule.Column, paranoia.Statement(rule.ArgumentsString))
	}
	return nil
}

// diagnostics builds the diagnostic system selected by the verbosity flags,
// starting from level. Messages go to stderr so stdout carries only the report.
func (o *options) diagnostics(stdout, stderr io.Writer, level utils.DiagnosticLevel) *utils.DiagnosticSystem {
	var d *utils.DiagnosticSystem
	switch {
	case o.quiet:
		d = utils.NewQuietDiagnostics()
	case o.debug:
		d = utils.NewDiagnosticSystem(utils.DiagnosticDebug)
	case o.verbose:
		d = utils.NewVerboseDiagnostics()
	default:
		d = utils.NewDiagnosticSystem(level)
	}
	d.SetOutput(stdout, stderr)
	d.SetColors(o.colors(stderr))
	d.SetShowTime(false)
	return d
}

func (o *options) colors(out io.Writer) bool {
	if o.noColor {
		return false
	}
	f, ok := out.(*os.File)
	return ok && utils.ShouldUseColors(f)
}
