// Package paranoia implements ParanoiaSupport/CallActsAsParanoid.
//
// Run `annotate` first so models carry schema comments. A model whose schema
// annotation lists the soft-delete column must call acts_as_paranoid:
//
//	# bad
//	# Table name: foo
//	#  deleted_at :datetime
//	class Foo < ApplicationRecord
//	end
//
//	# good
//	# Table name: foo
//	#  deleted_at :datetime
//	class Foo < ApplicationRecord
//	  acts_as_paranoid
//	end
package paranoia

import (
	"github.com/toyz/paranoia/internal/cop"
	"github.com/toyz/paranoia/internal/rubyast"
)

const (
	CopName    = "ParanoiaSupport/CallActsAsParanoid"
	Message    = "call `acts_as_paranoid`."
	MethodName = "acts_as_paranoid"

	// DefaultIndentationWidth applies when Layout/IndentationWidth is not configured
	DefaultIndentationWidth = 2
)

// CallActsAsParanoid is the cop. It holds only immutable configuration and
// is safe to share between goroutines.
type CallActsAsParanoid struct {
	rules            *Resolved
	indentationWidth int
}

// New resolves cfg and builds the cop. A malformed rule list is a
// configuration error.
func New(cfg Config, indentationWidth int) (*CallActsAsParanoid, error) {
	rules, err := cfg.Resolve()
	if err != nil {
		return nil, err
	}
	if indentationWidth <= 0 {
		indentationWidth = DefaultIndentationWidth
	}
	return &CallActsAsParanoid{
		rules:            rules,
		indentationWidth: indentationWidth,
	}, nil
}

// Name implements cop.ClassVisitor
func (c *CallActsAsParanoid) Name() string {
	return CopName
}

// Rules exposes the resolved rule table
func (c *CallActsAsParanoid) Rules() *Resolved {
	return c.rules
}

// OnClass implements cop.ClassVisitor
func (c *CallActsAsParanoid) OnClass(ctx *cop.Context, class *rubyast.ClassDecl) {
	rule, ok := c.rules.Match(class)
	if !ok {
		return
	}
	if !rule.Annotated(ctx.Unit.Comments) {
		return
	}
	if HasImplicitCall(class.Node, MethodName) {
		return
	}

	ctx.AddOffense(class.Range(), Message, func() []cop.Edit {
		return Correction(ctx.Unit, class, c.indentationWidth, rule.ArgumentsString)
	})
}
