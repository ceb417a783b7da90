// Package report renders inspection results.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/toyz/paranoia/internal/cop"
)

// FileResult is the outcome for one inspected file
type FileResult struct {
	Path     string
	Source   []byte
	Offenses []cop.Offense
}

// Summary totals a run
type Summary struct {
	InspectedFiles int
	TargetFiles    int
	Offenses       int
	Corrected      int
	Correctable    int
}

// Summarize totals results
func Summarize(results []FileResult) Summary {
	s := Summary{InspectedFiles: len(results), TargetFiles: len(results)}
	for _, r := range results {
		for _, o := range r.Offenses {
			s.Offenses++
			switch {
			case o.Corrected:
				s.Corrected++
			case o.Correctable:
				s.Correctable++
			}
		}
	}
	return s
}

// Formatter writes a report for a whole run
type Formatter interface {
	Format(w io.Writer, results []FileResult) error
}

// Options are shared by the formatters
type Options struct {
	Colors bool
}

// Names lists the available formatters
var Names = []string{"simple", "clang", "json"}

// New returns the formatter registered under name
func New(name string, opts Options) (Formatter, error) {
	switch strings.ToLower(name) {
	case "", "simple", "s":
		return &SimpleFormatter{colors: opts.Colors}, nil
	case "clang", "c":
		return &ClangFormatter{colors: opts.Colors}, nil
	case "json", "j":
		return &JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q (available: %s)", name, strings.Join(Names, ", "))
	}
}

// sorted returns results ordered by path with offenses ordered by position
func sorted(results []FileResult) []FileResult {
	out := make([]FileResult, len(results))
	copy(out, results)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Path < out[j].Path
	})
	for i := range out {
		offenses := make([]cop.Offense, len(out[i].Offenses))
		copy(offenses, out[i].Offenses)
		sort.SliceStable(offenses, func(a, b int) bool {
			if offenses[a].Start.Line != offenses[b].Start.Line {
				return offenses[a].Start.Line < offenses[b].Start.Line
			}
			return offenses[a].Start.Column < offenses[b].Start.Column
		})
		out[i].Offenses = offenses
	}
	return out
}

// Pluralize formats a count with its noun, adding an s unless n is 1
func Pluralize(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// SummaryLine renders `3 files inspected, 1 offense detected, 1 offense corrected`
func SummaryLine(s Summary) string {
	var b strings.Builder
	b.WriteString(Pluralize(s.InspectedFiles, "file"))
	b.WriteString(" inspected, ")

	if s.Offenses == 0 {
		b.WriteString("no offenses detected")
	} else {
		b.WriteString(Pluralize(s.Offenses, "offense"))
		b.WriteString(" detected")
	}

	if s.Corrected > 0 {
		b.WriteString(", ")
		b.WriteString(Pluralize(s.Corrected, "offense"))
		b.WriteString(" corrected")
	}
	if s.Correctable > 0 {
		b.WriteString(", ")
		b.WriteString(Pluralize(s.Correctable, "offense"))
		b.WriteString(" autocorrectable")
	}
	return b.String()
}

func marker(o cop.Offense) string {
	switch {
	case o.Corrected:
		return "[Corrected] "
	case o.Correctable:
		return "[Correctable] "
	default:
		return ""
	}
}
