package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/toyz/paranoia/internal/config"
	"github.com/toyz/paranoia/internal/cop"
	"github.com/toyz/paranoia/internal/cop/paranoia"
	"github.com/toyz/paranoia/internal/corrector"
	"github.com/toyz/paranoia/internal/errors"
	"github.com/toyz/paranoia/internal/report"
	"github.com/toyz/paranoia/internal/rubyast"
	"github.com/toyz/paranoia/internal/utils"
)

// Exit statuses
const (
	ExitClean    = 0
	ExitOffenses = 1
	ExitError    = 2
)

// MaxCorrectionIterations bounds the inspect/correct loop for one file
const MaxCorrectionIterations = 200

// Result is the outcome of one run over all target files
type Result struct {
	Files  []report.FileResult
	Errors []error

	// Diffs holds unified diffs by path when running with Diff
	Diffs map[string]string
}

// ExitCode maps the result to the process exit status
func (r *Result) ExitCode() int {
	if len(r.Errors) > 0 {
		return ExitError
	}
	for _, f := range r.Files {
		for _, o := range f.Offenses {
			if !o.Corrected {
				return ExitOffenses
			}
		}
	}
	return ExitClean
}

// Runner inspects Ruby files with the configured cops
type Runner struct {
	cfg          Config
	settings     *config.Config
	diagnostics  *utils.DiagnosticSystem
	reporter     *DiagnosticReporter
	parser       *rubyast.Parser
	commissioner *cop.Commissioner
	scanner      *DirectoryScanner
	formatter    report.Formatter
	cache        *utils.Cache[string, report.FileResult]
	stdout       io.Writer
}

// NewRunner loads configuration and builds the cop set. Configuration
// problems are returned here, before any file is read.
func NewRunner(cfg Config, diagnostics *utils.DiagnosticSystem) (*Runner, error) {
	if diagnostics == nil {
		diagnostics = utils.NewSilentDiagnostics()
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = "."
	}

	settings, err := config.Resolve(cfg.WorkDir, cfg.ConfigPath)
	if err != nil {
		return nil, err
	}
	settings.Apply(config.Overrides{
		Superclasses:     cfg.Superclasses,
		IndentationWidth: cfg.IndentationWidth,
	})
	diagnostics.Verbose("Using configuration from %s", settings.Source())

	registry, err := BuildRegistry(settings)
	if err != nil {
		return nil, err
	}
	diagnostics.Verbose("Enabled cops: %s", strings.Join(registry.Names(), ", "))

	formatter, err := report.New(cfg.Format, report.Options{Colors: cfg.Colors})
	if err != nil {
		return nil, errors.Wrap(errors.ConfigurationErrorCode, "invalid --format", err)
	}

	stdout := cfg.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	return &Runner{
		cfg:          cfg,
		settings:     settings,
		diagnostics:  diagnostics,
		reporter:     NewDiagnosticReporter(cfg.Verbose, diagnostics),
		parser:       rubyast.NewParser(rubyast.WithMaxFileSize(cfg.maxFileSize())),
		commissioner: cop.NewCommissioner(registry),
		scanner:      NewDirectoryScanner(cfg.WorkDir, settings.Exclude),
		formatter:    formatter,
		cache:        utils.NewCache[string, report.FileResult](),
		stdout:       stdout,
	}, nil
}

// BuildRegistry registers the enabled cops described by settings
func BuildRegistry(settings *config.Config) (*cop.Registry, error) {
	registry := cop.NewRegistry()
	if !settings.Paranoia.IsEnabled() {
		return registry, nil
	}

	severity, err := cop.ParseSeverity(settings.Paranoia.Severity)
	if err != nil {
		return nil, errors.WrapConfigurationError(paranoia.CopName, "read Severity of", err)
	}

	c, err := paranoia.New(settings.Paranoia, settings.IndentationWidth)
	if err != nil {
		return nil, err
	}
	if err := registry.Register(c, severity); err != nil {
		return nil, errors.WrapConfigurationError(paranoia.CopName, "register", err)
	}
	return registry, nil
}

// Settings returns the effective configuration
func (r *Runner) Settings() *config.Config {
	return r.settings
}

// Run inspects every target once, prints the report and returns the result
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	files, err := r.scanner.ScanFiles(r.cfg.paths())
	if err != nil {
		return nil, err
	}
	r.diagnostics.Verbose("Inspecting %d files", len(files))

	result := r.Inspect(ctx, files)
	if err := ctx.Err(); err != nil {
		return result, err
	}

	if err := r.Print(result); err != nil {
		return result, err
	}
	return result, nil
}

// Print writes diffs and the formatted report to stdout and reports errors
func (r *Runner) Print(result *Result) error {
	for _, f := range result.Files {
		if diff, ok := result.Diffs[f.Path]; ok {
			if _, err := io.WriteString(r.stdout, diff); err != nil {
				return err
			}
		}
	}

	for _, err := range result.Errors {
		r.reporter.ReportError(err)
	}
	if len(result.Errors) > 0 {
		r.reporter.ReportWarning("%d files could not be inspected completely (%s)", len(result.Errors), summarize(result.Errors))
	}

	if err := r.formatter.Format(r.stdout, result.Files); err != nil {
		return err
	}
	if summary := report.Summarize(result.Files); summary.Corrected > 0 {
		r.diagnostics.Success("%s corrected", report.Pluralize(summary.Corrected, "offense"))
	}
	return nil
}

// Inspect processes files in parallel, bounded by the configured job count.
// Per-file failures are collected in the result; only cancellation stops
// the run early.
func (r *Runner) Inspect(ctx context.Context, files []string) *Result {
	results := make([]report.FileResult, len(files))
	fileErrs := make([]error, len(files))
	diffs := make([]string, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.jobs())

	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fr, diff, err := r.processFile(gctx, path)
			results[i] = fr
			diffs[i] = diff
			fileErrs[i] = err
			return nil
		})
	}
	_ = g.Wait()

	out := &Result{Diffs: make(map[string]string)}
	for i := range files {
		if fileErrs[i] != nil {
			out.Errors = append(out.Errors, fileErrs[i])
		}
		if results[i].Path == "" {
			continue
		}
		out.Files = append(out.Files, results[i])
		if diffs[i] != "" {
			out.Diffs[results[i].Path] = diffs[i]
		}
	}
	return out
}

// processFile inspects one file, running the autocorrect loop when
// requested. It returns the file result, a diff in Diff mode and any error
// attributed to the file.
func (r *Runner) processFile(ctx context.Context, path string) (report.FileResult, string, error) {
	if !r.cfg.Diff {
		if cached, ok := r.cache.GetWithFileValidation(path, path); ok {
			r.diagnostics.Debug("%s: unchanged, reusing previous result", path)
			return cached, "", nil
		}
	}

	original, mode, err := utils.ReadSource(path, int64(r.cfg.maxFileSize()))
	if err != nil {
		return report.FileResult{}, "", err
	}

	source, offenses, err := r.investigate(ctx, path, original)
	result := report.FileResult{Path: path, Source: source, Offenses: offenses}
	if err != nil {
		return result, "", err
	}

	if string(source) == string(original) {
		r.remember(path, result)
		return result, "", nil
	}

	if r.cfg.Diff {
		diff, err := corrector.Diff(path, original, source)
		return result, diff, err
	}

	if err := utils.WriteSource(path, source, mode); err != nil {
		return result, "", err
	}
	r.diagnostics.Verbose("%s: corrected", path)
	r.remember(path, result)
	return result, "", nil
}

// remember caches what a re-run of an unchanged file would report
func (r *Runner) remember(path string, result report.FileResult) {
	if !r.cfg.Watch {
		return
	}
	pending := result
	pending.Offenses = nil
	for _, o := range result.Offenses {
		if !o.Corrected {
			pending.Offenses = append(pending.Offenses, o)
		}
	}
	if err := r.cache.SetWithFileInfo(path, pending, path); err != nil {
		r.diagnostics.Debug("%s: not cached: %v", path, err)
	}
}

// investigate runs the cops over source, applying corrections until none
// apply. It returns the final source with the corrected offenses of every
// pass followed by the offenses left in the final source.
func (r *Runner) investigate(ctx context.Context, path string, source []byte) ([]byte, []cop.Offense, error) {
	var corrected []cop.Offense

	for iteration := 0; ; iteration++ {
		if iteration >= MaxCorrectionIterations {
			return source, corrected, errors.CorrectionError(path,
				fmt.Sprintf("infinite loop detected: corrections did not settle after %d passes", MaxCorrectionIterations))
		}

		unit, err := r.parser.Parse(ctx, path, source)
		if err != nil {
			return source, corrected, errors.WrapParseError(path, err)
		}
		autocorrect := r.cfg.Autocorrect && !unit.HasSyntaxErrors
		if r.cfg.Autocorrect && unit.HasSyntaxErrors && iteration == 0 {
			r.diagnostics.Warn("%s: syntax errors found, skipping autocorrect", path)
		}

		rep := r.commissioner.Investigate(unit, autocorrect)
		unit.Close()

		for _, derr := range rep.DirectiveErrors {
			r.diagnostics.Debug("%s: ignoring directive: %v", path, derr)
		}
		if len(rep.Errors) > 0 {
			var errs *errors.MultipleErrors
			for _, e := range rep.Errors {
				if lintErr, ok := e.(errors.LintError); ok {
					errors.AddToMultiple(&errs, lintErr)
				}
			}
			return source, append(corrected, rep.Offenses...), errs.ErrOrNil()
		}

		if !autocorrect {
			return source, append(corrected, rep.Offenses...), nil
		}

		next, fixed, remaining := applyCorrections(source, rep.Offenses)
		if len(fixed) == 0 {
			return source, append(corrected, remaining...), nil
		}
		corrected = append(corrected, fixed...)
		source = next
	}
}

// applyCorrections applies the corrections of offenses to source. An offense
// counts as corrected only when every one of its edits was applied.
func applyCorrections(source []byte, offenses []cop.Offense) ([]byte, []cop.Offense, []cop.Offense) {
	var edits []cop.Edit
	for _, o := range offenses {
		edits = append(edits, o.Correction...)
	}
	if len(edits) == 0 {
		return source, nil, offenses
	}

	applied := corrector.Apply(source, edits)
	skipped := make(map[cop.Edit]bool, len(applied.Skipped))
	for _, e := range applied.Skipped {
		skipped[e] = true
	}

	var fixed, remaining []cop.Offense
	for _, o := range offenses {
		ok := len(o.Correction) > 0
		for _, e := range o.Correction {
			if skipped[e] {
				ok = false
			}
		}
		if ok {
			o.Corrected = true
			fixed = append(fixed, o)
		} else {
			remaining = append(remaining, o)
		}
	}
	if !applied.Changed() {
		return source, nil, offenses
	}
	return applied.Source, fixed, remaining
}
