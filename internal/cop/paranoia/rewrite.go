package paranoia

import (
	"strings"

	"github.com/toyz/paranoia/internal/cop"
	"github.com/toyz/paranoia/internal/rubyast"
)

// Statement builds the inserted call, with the arguments string appended
// only when it is non-empty
func Statement(argumentsString string) string {
	if argumentsString == "" {
		return MethodName
	}
	return MethodName + " " + argumentsString
}

// Correction inserts the mixin call as the first statement of the class body.
//
// The edit replaces the whole header line, measured from the true start of the
// line rather than the node's column, with the line itself followed by the
// indented statement. Indentation is the header's own leading whitespace plus
// one indentation unit. Single-line classes (`class Foo < Bar; end`) have no
// body line to insert into and are left uncorrected.
func Correction(unit *rubyast.SourceUnit, class *rubyast.ClassDecl, indentationWidth int, argumentsString string) []cop.Edit {
	line := class.KeywordLine
	if class.EndLine() <= line {
		return nil
	}

	source := unit.SourceLine(line)
	newline := "\n"
	if strings.HasSuffix(source, "\r") {
		source = strings.TrimSuffix(source, "\r")
		newline = "\r\n"
	}

	indent := leadingWhitespace(source)
	if indentationWidth <= 0 {
		indentationWidth = DefaultIndentationWidth
	}
	methodIndent := strings.Repeat(" ", indentationWidth+len(indent))

	start := unit.LineStart(line)
	return []cop.Edit{{
		Range:       rubyast.Range{Begin: start, End: start + len(source)},
		Replacement: source + newline + methodIndent + Statement(argumentsString),
	}}
}

func leadingWhitespace(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t\f\v"))]
}
