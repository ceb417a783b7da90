package directives

import (
	"math"
	"strings"

	"github.com/toyz/paranoia/internal/errors"
	"github.com/toyz/paranoia/internal/rubyast"
)

type lineRange struct {
	from, to int
}

func (r lineRange) contains(line int) bool {
	return line >= r.from && line <= r.to
}

// Set records which lines of a file each cop is disabled on
type Set struct {
	ranges map[string][]lineRange
}

// Build scans the comments of a unit for directives. A directive alone on its
// line opens a range that runs to the matching enable (or the end of the
// file); a directive trailing code disables only its own line. Malformed
// directives are returned as errors and otherwise ignored.
func (p *Parser) Build(unit *rubyast.SourceUnit) (*Set, []error) {
	set := &Set{ranges: make(map[string][]lineRange)}
	open := make(map[string]int)
	var problems []error

	for _, comment := range unit.Comments {
		directive, err := p.Parse(comment.Text)
		if err != nil {
			if lintErr, ok := err.(*errors.BaseError); ok {
				lintErr.WithLocation(errors.SourceLocation{File: unit.Path, Line: comment.Line})
			}
			problems = append(problems, err)
			continue
		}
		if directive == nil {
			continue
		}

		if trailing(unit, comment) {
			if directive.Disables() {
				for _, cop := range directive.Cops {
					set.add(cop, lineRange{from: comment.Line, to: comment.Line})
				}
			}
			continue
		}

		for _, cop := range directive.Cops {
			switch {
			case directive.Disables():
				if _, isOpen := open[cop]; !isOpen {
					open[cop] = comment.Line
				}
			case cop == AllCops:
				for name, from := range open {
					set.add(name, lineRange{from: from, to: comment.Line})
					delete(open, name)
				}
			default:
				if from, isOpen := open[cop]; isOpen {
					set.add(cop, lineRange{from: from, to: comment.Line})
					delete(open, cop)
				}
			}
		}
	}

	for cop, from := range open {
		set.add(cop, lineRange{from: from, to: math.MaxInt})
	}

	return set, problems
}

func (s *Set) add(cop string, r lineRange) {
	s.ranges[cop] = append(s.ranges[cop], r)
}

// Disabled reports whether cop is switched off on the 1-based line. A cop is
// matched by its full name, its department or `all`.
func (s *Set) Disabled(cop string, line int) bool {
	if s == nil {
		return false
	}

	keys := []string{cop, AllCops}
	if dept, _, ok := strings.Cut(cop, "/"); ok {
		keys = append(keys, dept)
	}

	for _, key := range keys {
		for _, r := range s.ranges[key] {
			if r.contains(line) {
				return true
			}
		}
	}
	return false
}

// Empty reports whether the file has no disabled ranges at all
func (s *Set) Empty() bool {
	return s == nil || len(s.ranges) == 0
}

// trailing reports whether code precedes the comment on its line
func trailing(unit *rubyast.SourceUnit, comment rubyast.Comment) bool {
	lineStart := unit.LineStart(comment.Line)
	if comment.Range.Begin <= lineStart {
		return false
	}
	return strings.TrimSpace(unit.Text(rubyast.Range{Begin: lineStart, End: comment.Range.Begin})) != ""
}
