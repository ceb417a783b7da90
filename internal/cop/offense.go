// Package cop is the host side of a cop: the visitor interface rules
// implement, the per-file context they report into and the commissioner that
// drives them over a source unit.
package cop

import (
	"fmt"
	"strings"

	"github.com/toyz/paranoia/internal/rubyast"
)

// Severity of an offense, ordered from least to most severe
type Severity int

const (
	SeverityConvention Severity = iota
	SeverityWarning
	SeverityError
)

// String returns the RuboCop name of the severity
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "convention"
	}
}

// Code returns the one-letter code used by text formatters
func (s Severity) Code() string {
	switch s {
	case SeverityWarning:
		return "W"
	case SeverityError:
		return "E"
	default:
		return "C"
	}
}

// ParseSeverity parses a configured Severity value. Empty means convention.
func ParseSeverity(value string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "convention", "refactor", "info":
		return SeverityConvention, nil
	case "warning":
		return SeverityWarning, nil
	case "error", "fatal":
		return SeverityError, nil
	default:
		return SeverityConvention, fmt.Errorf("unknown severity %q", value)
	}
}

// Edit replaces the bytes in Range with Replacement
type Edit struct {
	Range       rubyast.Range
	Replacement string
}

// Offense is a reported violation
type Offense struct {
	CopName  string
	Message  string
	Severity Severity

	// Range is the byte range of the offending construct
	Range rubyast.Range
	Start rubyast.Position
	End   rubyast.Position

	// Correction holds the proposed edits; nil when the offense is not correctable
	// or autocorrect was not requested
	Correction []Edit

	// Correctable reports whether the cop can fix the offense
	Correctable bool

	// Corrected is set by the runner once the correction has been applied
	Corrected bool
}

// Line returns the 1-based line the offense starts on
func (o Offense) Line() int {
	return o.Start.Line
}

// Column returns the 1-based column the offense starts on
func (o Offense) Column() int {
	return o.Start.Column + 1
}
