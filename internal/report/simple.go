package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/toyz/paranoia/internal/cop"
	"github.com/toyz/paranoia/internal/utils"
)

// SimpleFormatter prints offenses grouped by file:
//
//	== app/models/user.rb ==
//	C:  3:  1: [Correctable] ParanoiaSupport/CallActsAsParanoid: call `acts_as_paranoid`.
type SimpleFormatter struct {
	colors bool
}

// Format implements Formatter
func (f *SimpleFormatter) Format(w io.Writer, results []FileResult) error {
	var b strings.Builder

	for _, result := range sorted(results) {
		if len(result.Offenses) == 0 {
			continue
		}
		b.WriteString(utils.Colorize(f.colors, "== "+result.Path+" ==", color.FgCyan))
		b.WriteString("\n")
		for _, o := range result.Offenses {
			fmt.Fprintf(&b, "%s:%3d:%3d: %s%s: %s\n",
				f.severity(o.Severity), o.Line(), o.Column(),
				f.marker(o), o.CopName, o.Message)
		}
		b.WriteString("\n")
	}

	b.WriteString(SummaryLine(Summarize(results)))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func (f *SimpleFormatter) severity(s cop.Severity) string {
	return utils.Colorize(f.colors, s.Code(), severityColor(s))
}

func (f *SimpleFormatter) marker(o cop.Offense) string {
	m := marker(o)
	if m == "" {
		return m
	}
	attr := color.FgYellow
	if o.Corrected {
		attr = color.FgGreen
	}
	return utils.Colorize(f.colors, m, attr)
}

func severityColor(s cop.Severity) color.Attribute {
	switch s {
	case cop.SeverityError:
		return color.FgRed
	case cop.SeverityWarning:
		return color.FgMagenta
	default:
		return color.FgYellow
	}
}
