package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/toyz/paranoia/internal/cop"
	"github.com/toyz/paranoia/internal/utils"
)

// ClangFormatter prints each offense with its source line and a caret
// underline, like a compiler diagnostic
type ClangFormatter struct {
	colors bool
}

// Format implements Formatter
func (f *ClangFormatter) Format(w io.Writer, results []FileResult) error {
	var b strings.Builder

	for _, result := range sorted(results) {
		lines := strings.Split(string(result.Source), "\n")
		for _, o := range result.Offenses {
			fmt.Fprintf(&b, "%s:%d:%d: %s: %s%s: %s\n",
				utils.Colorize(f.colors, result.Path, color.FgCyan),
				o.Line(), o.Column(),
				utils.Colorize(f.colors, o.Severity.Code(), severityColor(o.Severity)),
				marker(o), o.CopName, o.Message)

			if o.Line() < 1 || o.Line() > len(lines) {
				continue
			}
			line := strings.TrimSuffix(lines[o.Line()-1], "\r")
			b.WriteString(line)
			b.WriteString("\n")
			b.WriteString(caret(line, o))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(SummaryLine(Summarize(results)))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// caret underlines the part of the first offense line the offense covers
func caret(line string, o cop.Offense) string {
	start := o.Start.Column
	if start > len(line) {
		start = len(line)
	}

	end := len(line)
	if o.End.Line == o.Start.Line && o.End.Column < end {
		end = o.End.Column
	}

	width := end - start
	if width < 1 {
		width = 1
	}
	return strings.Repeat(" ", start) + strings.Repeat("^", width)
}
