package cop

import (
	"github.com/toyz/paranoia/internal/directives"
	"github.com/toyz/paranoia/internal/rubyast"
)

// ClassVisitor is implemented by cops interested in class declarations. The
// commissioner calls OnClass once per class in the unit, nested classes
// included.
type ClassVisitor interface {
	Name() string
	OnClass(ctx *Context, class *rubyast.ClassDecl)
}

// Context is the per-file sink a cop reports offenses into
type Context struct {
	Unit        *rubyast.SourceUnit
	Autocorrect bool

	copName    string
	severity   Severity
	directives *directives.Set
	offenses   []Offense
}

// NewContext creates a context for one file
func NewContext(unit *rubyast.SourceUnit, disabled *directives.Set, autocorrect bool) *Context {
	return &Context{
		Unit:        unit,
		Autocorrect: autocorrect,
		directives:  disabled,
	}
}

// forCop points the context at the cop about to run
func (c *Context) forCop(name string, severity Severity) {
	c.copName = name
	c.severity = severity
}

// AddOffense records an offense at r. correct builds the fix; it is only
// invoked when autocorrect was requested, and may return nil when the
// offense cannot be fixed safely. Offenses on lines disabled by directives
// are dropped.
func (c *Context) AddOffense(r rubyast.Range, message string, correct func() []Edit) {
	start := c.Unit.Position(r.Begin)
	if c.directives.Disabled(c.copName, start.Line) {
		return
	}

	offense := Offense{
		CopName:     c.copName,
		Message:     message,
		Severity:    c.severity,
		Range:       r,
		Start:       start,
		End:         c.Unit.Position(r.End),
		Correctable: correct != nil,
	}

	if c.Autocorrect && correct != nil {
		offense.Correction = correct()
		offense.Correctable = offense.Correction != nil
	}

	c.offenses = append(c.offenses, offense)
}

// Offenses returns the offenses recorded so far
func (c *Context) Offenses() []Offense {
	return c.offenses
}
