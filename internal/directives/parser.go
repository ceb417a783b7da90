// Package directives understands the comment directives that switch cops off
// and on inside a Ruby file, e.g. `# rubocop:disable ParanoiaSupport/CallActsAsParanoid`.
package directives

import (
	"regexp"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/toyz/paranoia/internal/errors"
)

// Mode is the action a directive performs
type Mode string

const (
	ModeDisable Mode = "disable"
	ModeEnable  Mode = "enable"
	ModeTodo    Mode = "todo"
)

// AllCops is the cop list entry that matches every cop
const AllCops = "all"

// Directive is a parsed `# rubocop:<mode> Cop, Other/Cop` comment
type Directive struct {
	Hash   string   `parser:"@Hash"`
	Tool   string   `parser:"@('rubocop' | 'paranoia')"`
	Mode   Mode     `parser:"':' @('disable' | 'enable' | 'todo')"`
	Cops   []string `parser:"@CopName (',' @CopName)*"`
	Reason string   `parser:"@Reason?"`
}

// Disables reports whether the directive turns cops off
func (d *Directive) Disables() bool {
	return d.Mode == ModeDisable || d.Mode == ModeTodo
}

// Parser parses directive comments
type Parser struct {
	parser *participle.Parser[Directive]
}

// candidate matches comments that mean to be a directive, well-formed or not
var candidate = regexp.MustCompile(`^#\s*(rubocop|paranoia)\s*:`)

// NewParser creates a directive parser
func NewParser() *Parser {
	lex := lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Hash", Pattern: `#`},
		{Name: "Reason", Pattern: `--[^\n]*`},
		{Name: "CopName", Pattern: `[A-Za-z][A-Za-z0-9_]*(/[A-Za-z][A-Za-z0-9_]*)?`},
		{Name: "Punct", Pattern: `[:,]`},
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
	})

	return &Parser{
		parser: participle.MustBuild[Directive](
			participle.Lexer(lex),
			participle.Elide("Whitespace"),
			participle.UseLookahead(2),
		),
	}
}

// IsCandidate reports whether a comment looks like a directive
func IsCandidate(text string) bool {
	return candidate.MatchString(strings.TrimSpace(text))
}

// Parse parses a single comment. Comments that are not directives return
// (nil, nil); malformed directives return a syntax error.
func (p *Parser) Parse(text string) (*Directive, error) {
	text = strings.TrimSpace(text)
	if !IsCandidate(text) {
		return nil, nil
	}

	directive, err := p.parser.ParseString("", text)
	if err != nil {
		return nil, errors.Wrap(errors.SyntaxErrorCode, "malformed directive comment", err).
			WithContext("comment", text).
			WithSuggestion("use `# rubocop:disable Department/CopName` or `# rubocop:enable all`")
	}

	directive.Reason = strings.TrimSpace(strings.TrimPrefix(directive.Reason, "--"))
	return directive, nil
}
