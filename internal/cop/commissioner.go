package cop

import (
	"fmt"
	"sort"

	"github.com/toyz/paranoia/internal/directives"
	"github.com/toyz/paranoia/internal/errors"
	"github.com/toyz/paranoia/internal/rubyast"
)

// Commissioner drives the registered cops over a source unit
type Commissioner struct {
	registry   *Registry
	directives *directives.Parser
}

// Report is the outcome of inspecting one unit
type Report struct {
	Offenses []Offense

	// Errors holds cop failures; the offenses of the other cops are still valid
	Errors []error

	// DirectiveErrors holds malformed directive comments
	DirectiveErrors []error
}

// NewCommissioner creates a commissioner over the cops in registry
func NewCommissioner(registry *Registry) *Commissioner {
	return &Commissioner{
		registry:   registry,
		directives: directives.NewParser(),
	}
}

// Investigate runs every cop over every class in the unit. A cop that panics
// is reported as an inspection error attributed to the file and skipped for
// the rest of the unit.
func (c *Commissioner) Investigate(unit *rubyast.SourceUnit, autocorrect bool) *Report {
	disabled, problems := c.directives.Build(unit)
	ctx := NewContext(unit, disabled, autocorrect)
	report := &Report{DirectiveErrors: problems}

	visitors, severity := c.registry.snapshot()
	for _, visitor := range visitors {
		ctx.forCop(visitor.Name(), severity[visitor.Name()])
		if err := visit(ctx, visitor, unit); err != nil {
			report.Errors = append(report.Errors, err)
		}
	}

	report.Offenses = ctx.Offenses()
	sort.SliceStable(report.Offenses, func(i, j int) bool {
		return report.Offenses[i].Range.Begin < report.Offenses[j].Range.Begin
	})
	return report
}

func visit(ctx *Context, visitor ClassVisitor, unit *rubyast.SourceUnit) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.WrapInspectionError(unit.Path, visitor.Name(), fmt.Errorf("%v", r))
		}
	}()

	for _, class := range unit.Classes {
		visitor.OnClass(ctx, class)
	}
	return nil
}
