package cli

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/toyz/paranoia/internal/errors"
	"github.com/toyz/paranoia/internal/utils"
)

// DiagnosticReporter provides user-friendly error reporting
type DiagnosticReporter struct {
	verbose     bool
	diagnostics *utils.DiagnosticSystem
}

// NewDiagnosticReporter creates a new diagnostic reporter
func NewDiagnosticReporter(verbose bool, diagnostics *utils.DiagnosticSystem) *DiagnosticReporter {
	return &DiagnosticReporter{
		verbose:     verbose,
		diagnostics: diagnostics,
	}
}

// ReportError reports err with its location, context and suggestions when it
// carries them. A MultipleErrors is reported entry by entry.
func (r *DiagnosticReporter) ReportError(err error) {
	var multi *errors.MultipleErrors
	if stderrors.As(err, &multi) {
		for _, e := range multi.Errors {
			r.ReportError(e)
		}
		return
	}

	var base *errors.BaseError
	if !stderrors.As(err, &base) {
		r.diagnostics.Error("%v", err)
		return
	}

	r.diagnostics.Error("%s", base.Error())

	r.diagnostics.Indent()
	defer r.diagnostics.Unindent()

	if r.verbose {
		r.printContext(base.Context())
	}

	for _, suggestion := range base.Suggestions() {
		r.diagnostics.Error("%s %s", r.diagnostics.Paint("hint:", color.FgCyan), suggestion)
	}

	if r.verbose && base.Unwrap() != nil {
		r.printChain(base.Unwrap())
	}
}

// printContext prints context information in a readable format
func (r *DiagnosticReporter) printContext(context map[string]interface{}) {
	keys := make([]string, 0, len(context))
	for key := range context {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		r.diagnostics.Error("%s: %v", formatContextKey(key), context[key])
	}
}

// printChain prints the wrapped causes, outermost first
func (r *DiagnosticReporter) printChain(cause error) {
	level := 1
	for cause != nil {
		r.diagnostics.Error("cause %d: %s", level, cause.Error())
		cause = stderrors.Unwrap(cause)
		level++
	}
}

// formatContextKey converts snake_case keys to Title Case
func formatContextKey(key string) string {
	parts := strings.Split(key, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}

// ReportWarning reports a non-fatal problem
func (r *DiagnosticReporter) ReportWarning(format string, args ...interface{}) {
	r.diagnostics.Warn(format, args...)
}

// summarize renders a one-line count of errors by code for the final summary
func summarize(errs []error) string {
	counts := make(map[string]int)
	for _, err := range errs {
		counts[errors.CodeOf(err).String()]++
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%d %s", counts[name], name))
	}
	return strings.Join(parts, ", ")
}
