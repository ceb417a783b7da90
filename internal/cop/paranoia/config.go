package paranoia

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/toyz/paranoia/internal/errors"
	"github.com/toyz/paranoia/internal/utils"
)

// DefaultColumn is the soft-delete column checked when a rule names none
const DefaultColumn = "deleted_at"

// SuperclassRule is one entry of the Superclass list. In YAML it is either a
// bare class name or a mapping:
//
//	Superclass:
//	  - ApplicationRecord
//	  - ClassName: LegacyRecord
//	    Column: suspended_at
//	    MethodArgumentsString: "column: :suspended_at"
type SuperclassRule struct {
	ClassName             string
	Column                string
	MethodArgumentsString string

	// Detailed is false for the bare-string form
	Detailed bool
}

// Bare creates a rule from a class name alone
func Bare(className string) SuperclassRule {
	return SuperclassRule{ClassName: className}
}

// Detailed creates a rule with its own column and arguments string
func Detailed(className, column, methodArguments string) SuperclassRule {
	return SuperclassRule{
		ClassName:             className,
		Column:                column,
		MethodArgumentsString: methodArguments,
		Detailed:              true,
	}
}

type detailedRule struct {
	ClassName             string `yaml:"ClassName"`
	Class                 string `yaml:"Class"`
	Column                string `yaml:"Column"`
	MethodArgumentsString string `yaml:"MethodArgumentsString"`
}

// UnmarshalYAML decodes the bare or the mapping form
func (r *SuperclassRule) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.ShortTag() != "!!str" {
			return errors.ConfigurationError(CopName,
				fmt.Sprintf("line %d: Superclass entry %q is not a class name", node.Line, node.Value))
		}
		*r = Bare(node.Value)
		return nil

	case yaml.MappingNode:
		var raw detailedRule
		if err := node.Decode(&raw); err != nil {
			return errors.WrapConfigurationError(CopName, "decode", err).
				WithLocation(errors.SourceLocation{Line: node.Line})
		}
		name := raw.ClassName
		if name == "" {
			name = raw.Class
		}
		*r = Detailed(name, raw.Column, raw.MethodArgumentsString)
		return nil

	default:
		return errors.ConfigurationError(CopName,
			fmt.Sprintf("line %d: Superclass entry must be a class name or a mapping with ClassName", node.Line))
	}
}

// SuperclassRules is the Superclass list. A single scalar is accepted as a
// one-element list.
type SuperclassRules []SuperclassRule

// UnmarshalYAML decodes a sequence of rules or a single rule
func (rs *SuperclassRules) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		var single SuperclassRule
		if err := single.UnmarshalYAML(node); err != nil {
			return err
		}
		*rs = SuperclassRules{single}
		return nil
	}

	rules := make(SuperclassRules, 0, len(node.Content))
	for _, item := range node.Content {
		var rule SuperclassRule
		if err := rule.UnmarshalYAML(item); err != nil {
			return err
		}
		rules = append(rules, rule)
	}
	*rs = rules
	return nil
}

// Config is the configuration block of the cop
type Config struct {
	Enabled               *bool           `yaml:"Enabled"`
	Severity              string          `yaml:"Severity"`
	Superclass            SuperclassRules `yaml:"Superclass"`
	MethodArgumentsString string          `yaml:"MethodArgumentsString"`
}

// DefaultConfig is used when no configuration names the cop
func DefaultConfig() Config {
	return Config{
		Superclass: SuperclassRules{Bare("ApplicationRecord")},
	}
}

// IsEnabled reports whether the cop should run; it is enabled unless switched off
func (c Config) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// Rule is the effective configuration for one superclass
type Rule struct {
	ClassName       string
	Column          string
	ArgumentsString string

	annotation *regexp.Regexp
}

var (
	validClassName = utils.NewValidatorChain(
		utils.NotEmpty("ClassName"),
		utils.IsRubyConstant("ClassName"),
	)
	validArguments = utils.NewValidatorChain(
		utils.SingleLine("MethodArgumentsString"),
	)
)

// Resolved is the normalized, immutable lookup built from a Config
type Resolved struct {
	rules map[string]*Rule
}

// Resolve validates the rule list and normalizes it into a lookup keyed by
// class name. For each class the first rule providing a Column wins, falling
// back to DefaultColumn; likewise the first rule providing a
// MethodArgumentsString wins, falling back to the top-level one.
func (c Config) Resolve() (*Resolved, error) {
	if err := validArguments.Validate(c.MethodArgumentsString); err != nil {
		return nil, errors.ConfigurationError(CopName, err.Error())
	}

	resolved := &Resolved{rules: make(map[string]*Rule)}

	for i, entry := range c.Superclass {
		if entry.ClassName == "" {
			return nil, errors.ConfigurationError(CopName,
				fmt.Sprintf("Superclass[%d] must be a class name or a mapping with a ClassName", i)).
				WithSuggestions(
					"write `- ApplicationRecord` for a bare superclass",
					"write `- ClassName: ApplicationRecord` to set Column or MethodArgumentsString",
				)
		}
		if err := validClassName.Validate(entry.ClassName); err != nil {
			return nil, errors.ConfigurationError(CopName, fmt.Sprintf("Superclass[%d]: %v", i, err))
		}
		if err := validArguments.Validate(entry.MethodArgumentsString); err != nil {
			return nil, errors.ConfigurationError(CopName, fmt.Sprintf("Superclass[%d]: %v", i, err))
		}

		// superclasses are matched without the top-level prefix
		name := strings.TrimPrefix(entry.ClassName, "::")
		rule, seen := resolved.rules[name]
		if !seen {
			rule = &Rule{ClassName: name}
			resolved.rules[name] = rule
		}
		if !entry.Detailed {
			continue
		}
		if rule.Column == "" && entry.Column != "" {
			rule.Column = entry.Column
		}
		if rule.ArgumentsString == "" && entry.MethodArgumentsString != "" {
			rule.ArgumentsString = entry.MethodArgumentsString
		}
	}

	for _, rule := range resolved.rules {
		if rule.Column == "" {
			rule.Column = DefaultColumn
		}
		if rule.ArgumentsString == "" {
			rule.ArgumentsString = c.MethodArgumentsString
		}
		rule.annotation = annotationPattern(rule.Column)
	}

	return resolved, nil
}

// Lookup returns the rule for a superclass name
func (r *Resolved) Lookup(className string) (Rule, bool) {
	rule, ok := r.rules[className]
	if !ok {
		return Rule{}, false
	}
	return *rule, true
}

// Rules returns every resolved rule sorted by class name
func (r *Resolved) Rules() []Rule {
	rules := make([]Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		rules = append(rules, *rule)
	}
	sort.Slice(rules, func(i, j int) bool {
		return rules[i].ClassName < rules[j].ClassName
	})
	return rules
}
