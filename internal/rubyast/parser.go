// Package rubyast turns Ruby source files into SourceUnits: the class
// declarations and comment trivia a cop inspects, backed by a tree-sitter tree.
package rubyast

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/ruby"

	"github.com/toyz/paranoia/internal/errors"
)

const (
	nodeClass   = "class"
	nodeComment = "comment"

	// DefaultMaxFileSize is the largest source a Parser accepts unless configured
	DefaultMaxFileSize = 10 * 1024 * 1024
)

// Parser builds SourceUnits from Ruby source.
//
// A Parser is safe for concurrent use: every Parse call creates its own
// tree-sitter parser, since those are not goroutine safe.
type Parser struct {
	options ParserOptions
}

// ParserOptions configures Parser behavior
type ParserOptions struct {
	// MaxFileSize is the largest source accepted, in bytes. Default: 10MB
	MaxFileSize int
}

// ParserOption is a functional option for configuring Parser
type ParserOption func(*ParserOptions)

// WithMaxFileSize sets the maximum file size for parsing
func WithMaxFileSize(size int) ParserOption {
	return func(o *ParserOptions) {
		o.MaxFileSize = size
	}
}

// NewParser creates a new Ruby parser
func NewParser(opts ...ParserOption) *Parser {
	options := ParserOptions{MaxFileSize: DefaultMaxFileSize}
	for _, opt := range opts {
		opt(&options)
	}
	return &Parser{options: options}
}

// Parse parses source and collects its class declarations and comments.
// Syntax errors do not fail the parse; they set SourceUnit.HasSyntaxErrors and
// the recognizable parts of the tree are still returned. Callers must Close
// the unit when done with it.
func (p *Parser) Parse(ctx context.Context, path string, source []byte) (*SourceUnit, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WrapParseError(path, err)
	}
	if p.options.MaxFileSize > 0 && len(source) > p.options.MaxFileSize {
		return nil, errors.WrapParseError(path,
			fmt.Errorf("file is %d bytes, limit is %d", len(source), p.options.MaxFileSize))
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(ruby.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, errors.WrapParseError(path, err)
	}

	unit := newSourceUnit(path, source)
	unit.tree = tree

	root := unit.Root()
	unit.HasSyntaxErrors = tree.RootNode().HasError()
	unit.collect(root)

	return unit, nil
}

// ParseString is a convenience wrapper used mostly by tests
func (p *Parser) ParseString(ctx context.Context, path, source string) (*SourceUnit, error) {
	return p.Parse(ctx, path, []byte(source))
}

// collect gathers classes and comments in one pre-order pass
func (u *SourceUnit) collect(root Node) {
	root.Walk(func(n Node) bool {
		switch n.Kind() {
		case nodeComment:
			u.Comments = append(u.Comments, Comment{
				Text:  n.Text(),
				Range: n.Range(),
				Line:  n.Start().Line,
			})
			return false
		case nodeClass:
			u.Classes = append(u.Classes, newClassDecl(n))
		}
		return true
	})
}

func newClassDecl(n Node) *ClassDecl {
	decl := &ClassDecl{
		Node:        n,
		KeywordLine: n.Start().Line,
	}

	name := n.Field("name")
	if constName, ok := ConstName(name); ok {
		decl.Name = constName
	} else {
		decl.Name = name.Text()
	}

	// (superclass "<" expression)
	if sc := n.Field("superclass"); !sc.IsNull() {
		if children := sc.NamedChildren(); len(children) > 0 {
			decl.Superclass = children[0]
		}
	}

	return decl
}
