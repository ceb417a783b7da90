package paranoia

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/paranoia/internal/cop"
	"github.com/toyz/paranoia/internal/corrector"
	"github.com/toyz/paranoia/internal/rubyast"
)

type harness struct {
	t            *testing.T
	commissioner *cop.Commissioner
}

func newHarness(t *testing.T, cfg Config, indentationWidth int) *harness {
	t.Helper()

	c, err := New(cfg, indentationWidth)
	require.NoError(t, err)

	registry := cop.NewRegistry()
	require.NoError(t, registry.Register(c, cop.SeverityConvention))

	return &harness{t: t, commissioner: cop.NewCommissioner(registry)}
}

func (h *harness) inspect(source string, autocorrect bool) *cop.Report {
	h.t.Helper()

	unit, err := rubyast.NewParser().ParseString(context.Background(), "app/models/foo.rb", source)
	require.NoError(h.t, err)
	h.t.Cleanup(unit.Close)

	report := h.commissioner.Investigate(unit, autocorrect)
	require.Empty(h.t, report.Errors)
	return report
}

func (h *harness) offenses(source string) []cop.Offense {
	h.t.Helper()
	return h.inspect(source, false).Offenses
}

func (h *harness) correct(source string) string {
	h.t.Helper()

	var edits []cop.Edit
	for _, offense := range h.inspect(source, true).Offenses {
		edits = append(edits, offense.Correction...)
	}
	return string(corrector.Apply([]byte(source), edits).Source)
}

func TestCallActsAsParanoid_ReportsAndCorrects(t *testing.T) {
	h := newHarness(t, DefaultConfig(), 0)
	source := "#  deleted_at :datetime\nclass Foo < ApplicationRecord\nend\n"

	offenses := h.offenses(source)
	require.Len(t, offenses, 1)

	offense := offenses[0]
	assert.Equal(t, CopName, offense.CopName)
	assert.Equal(t, "call `acts_as_paranoid`.", offense.Message)
	assert.Equal(t, 2, offense.Line())
	assert.Equal(t, 1, offense.Column())
	assert.Equal(t, "class Foo < ApplicationRecord\nend", source[offense.Range.Begin:offense.Range.End])
	assert.True(t, offense.Correctable)
	assert.Nil(t, offense.Correction)

	assert.Equal(t,
		"#  deleted_at :datetime\nclass Foo < ApplicationRecord\n  acts_as_paranoid\nend\n",
		h.correct(source))
}

func TestCallActsAsParanoid_NoOffense(t *testing.T) {
	h := newHarness(t, DefaultConfig(), 2)

	tests := []struct {
		name   string
		source string
	}{
		{
			name:   "already calls acts_as_paranoid",
			source: "#  deleted_at :datetime\nclass Foo < ApplicationRecord\n  acts_as_paranoid\nend\n",
		},
		{
			name:   "call with arguments",
			source: "#  deleted_at :datetime\nclass Foo < ApplicationRecord\n  acts_as_paranoid column: :deleted_at\nend\n",
		},
		{
			name:   "call with parentheses",
			source: "#  deleted_at :datetime\nclass Foo < ApplicationRecord\n  acts_as_paranoid()\nend\n",
		},
		{
			name: "call nested in a conditional",
			source: `#  deleted_at :datetime
class Foo < ApplicationRecord
  if paranoid?
    acts_as_paranoid
  end
end
`,
		},
		{
			name: "call nested in a block",
			source: `#  deleted_at :datetime
class Foo < ApplicationRecord
  included do
    acts_as_paranoid column: :deleted_at
  end
end
`,
		},
		{
			name:   "superclass not watched",
			source: "#  deleted_at :datetime\nclass Foo < Bar\nend\n",
		},
		{
			name:   "no annotation",
			source: "class Foo < ApplicationRecord\nend\n",
		},
		{
			name:   "annotation for another column",
			source: "#  archived_at :datetime\nclass Foo < ApplicationRecord\nend\n",
		},
		{
			name:   "annotation with another type",
			source: "#  deleted_at :boolean\nclass Foo < ApplicationRecord\nend\n",
		},
		{
			name:   "annotation without whitespace after marker",
			source: "#deleted_at :datetime\nclass Foo < ApplicationRecord\nend\n",
		},
		{
			name:   "no superclass",
			source: "#  deleted_at :datetime\nclass Foo\nend\n",
		},
		{
			name:   "dynamic superclass",
			source: "#  deleted_at :datetime\nclass Foo < Struct.new(:a)\nend\n",
		},
		{
			name:   "superclass from method call",
			source: "#  deleted_at :datetime\nclass Foo < base_class\nend\n",
		},
		{
			name:   "qualified superclass not watched",
			source: "#  deleted_at :datetime\nclass Foo < Legacy::ApplicationRecord\nend\n",
		},
		{
			name:   "disabled by directive",
			source: "#  deleted_at :datetime\nclass Foo < ApplicationRecord # rubocop:disable ParanoiaSupport/CallActsAsParanoid\nend\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, h.offenses(tt.source))
		})
	}
}

func TestCallActsAsParanoid_ExplicitReceiverDoesNotCount(t *testing.T) {
	h := newHarness(t, DefaultConfig(), 2)

	tests := []string{
		"#  deleted_at :datetime\nclass Foo < ApplicationRecord\n  self.acts_as_paranoid\nend\n",
		"#  deleted_at :datetime\nclass Foo < ApplicationRecord\n  Paranoia.acts_as_paranoid\nend\n",
		"#  deleted_at :datetime\nclass Foo < ApplicationRecord\n  def acts_as_paranoid\n  end\nend\n",
		"#  deleted_at :datetime\nclass Foo < ApplicationRecord\n  acts_as_paranoid = true\nend\n",
	}

	for _, source := range tests {
		assert.Len(t, h.offenses(source), 1, source)
	}
}

func TestCallActsAsParanoid_MethodArgumentsString(t *testing.T) {
	source := "#  deleted_at :datetime\nclass Foo < ApplicationRecord\nend\n"

	tests := []struct {
		name     string
		cfg      Config
		expected string
	}{
		{
			name: "top-level default",
			cfg: Config{
				Superclass:            SuperclassRules{Bare("ApplicationRecord")},
				MethodArgumentsString: "without_default: true",
			},
			expected: "#  deleted_at :datetime\nclass Foo < ApplicationRecord\n  acts_as_paranoid without_default: true\nend\n",
		},
		{
			name: "rule-level arguments",
			cfg: Config{
				Superclass: SuperclassRules{
					Detailed("ApplicationRecord", "", "column: :deleted_at, sentinel_value: DateTime.new(0)"),
				},
				MethodArgumentsString: "ignored: true",
			},
			expected: "#  deleted_at :datetime\nclass Foo < ApplicationRecord\n  acts_as_paranoid column: :deleted_at, sentinel_value: DateTime.new(0)\nend\n",
		},
		{
			name:     "no arguments",
			cfg:      DefaultConfig(),
			expected: "#  deleted_at :datetime\nclass Foo < ApplicationRecord\n  acts_as_paranoid\nend\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.cfg, 2)
			assert.Equal(t, tt.expected, h.correct(source))
		})
	}
}

func TestCallActsAsParanoid_CustomColumn(t *testing.T) {
	cfg := Config{
		Superclass: SuperclassRules{
			Bare("ApplicationRecord"),
			Detailed("LegacyRecord", "supended_at", "column: :supended_at"),
		},
	}
	h := newHarness(t, cfg, 2)

	source := `# == Schema Information
#
# Table name: users
#
#  id          :bigint           not null, primary key
#  supended_at :datetime
#
class User < LegacyRecord
end
`
	expected := `# == Schema Information
#
# Table name: users
#
#  id          :bigint           not null, primary key
#  supended_at :datetime
#
class User < LegacyRecord
  acts_as_paranoid column: :supended_at
end
`
	require.Len(t, h.offenses(source), 1)
	assert.Equal(t, expected, h.correct(source))

	// deleted_at is not annotated, so the ApplicationRecord rule does not fire
	assert.Empty(t, h.offenses("#  supended_at :datetime\nclass Post < ApplicationRecord\nend\n"))
}

func TestCallActsAsParanoid_ColumnIsMatchedLiterally(t *testing.T) {
	cfg := Config{Superclass: SuperclassRules{Detailed("ApplicationRecord", "deleted.at", "")}}
	h := newHarness(t, cfg, 2)

	assert.Empty(t, h.offenses("#  deletedXat :datetime\nclass Foo < ApplicationRecord\nend\n"))
	assert.Len(t, h.offenses("#  deleted.at :datetime\nclass Foo < ApplicationRecord\nend\n"), 1)
}

func TestCallActsAsParanoid_NestedClassIndentation(t *testing.T) {
	h := newHarness(t, DefaultConfig(), 2)

	source := `#  deleted_at :datetime
module Admin
  class User < ApplicationRecord
    has_many :posts
  end
end
`
	expected := `#  deleted_at :datetime
module Admin
  class User < ApplicationRecord
    acts_as_paranoid
    has_many :posts
  end
end
`
	offenses := h.offenses(source)
	require.Len(t, offenses, 1)
	assert.Equal(t, 3, offenses[0].Line())
	assert.Equal(t, 3, offenses[0].Column())

	assert.Equal(t, expected, h.correct(source))
}

func TestCallActsAsParanoid_IndentationWidth(t *testing.T) {
	h := newHarness(t, DefaultConfig(), 4)

	source := "#  deleted_at :datetime\nclass Foo < ApplicationRecord\nend\n"
	assert.Equal(t,
		"#  deleted_at :datetime\nclass Foo < ApplicationRecord\n    acts_as_paranoid\nend\n",
		h.correct(source))
}

func TestCallActsAsParanoid_Idempotent(t *testing.T) {
	h := newHarness(t, DefaultConfig(), 2)

	sources := []string{
		"#  deleted_at :datetime\nclass Foo < ApplicationRecord\nend\n",
		"#  deleted_at :datetime\nmodule A\n  class Foo < ApplicationRecord\n    belongs_to :bar\n  end\nend\n",
		"#  deleted_at :datetime\r\nclass Foo < ApplicationRecord\r\nend\r\n",
	}

	for _, source := range sources {
		corrected := h.correct(source)
		assert.NotEqual(t, source, corrected)
		assert.Empty(t, h.offenses(corrected), corrected)
		assert.Equal(t, corrected, h.correct(corrected))
	}
}

func TestCallActsAsParanoid_CRLF(t *testing.T) {
	h := newHarness(t, DefaultConfig(), 2)

	assert.Equal(t,
		"#  deleted_at :datetime\r\nclass Foo < ApplicationRecord\r\n  acts_as_paranoid\r\nend\r\n",
		h.correct("#  deleted_at :datetime\r\nclass Foo < ApplicationRecord\r\nend\r\n"))
}

func TestCallActsAsParanoid_SingleLineClassIsNotCorrected(t *testing.T) {
	h := newHarness(t, DefaultConfig(), 2)
	source := "#  deleted_at :datetime\nclass Foo < ApplicationRecord; end\n"

	report := h.inspect(source, true)
	require.Len(t, report.Offenses, 1)
	assert.False(t, report.Offenses[0].Correctable)
	assert.Equal(t, source, h.correct(source))
}

func TestCallActsAsParanoid_MultipleClasses(t *testing.T) {
	cfg := Config{Superclass: SuperclassRules{Bare("ApplicationRecord"), Bare("Legacy::Base")}}
	h := newHarness(t, cfg, 2)

	source := `#  deleted_at :datetime
class Foo < ApplicationRecord
end

class Bar < Legacy::Base
end

class Baz < Other
end
`
	offenses := h.offenses(source)
	require.Len(t, offenses, 2)
	assert.Equal(t, 2, offenses[0].Line())
	assert.Equal(t, 5, offenses[1].Line())

	corrected := h.correct(source)
	assert.Contains(t, corrected, "class Foo < ApplicationRecord\n  acts_as_paranoid\nend")
	assert.Contains(t, corrected, "class Bar < Legacy::Base\n  acts_as_paranoid\nend")
	assert.Contains(t, corrected, "class Baz < Other\nend")
}

func TestCallActsAsParanoid_FileGlobalAnnotation(t *testing.T) {
	h := newHarness(t, DefaultConfig(), 2)

	source := `class Foo < ApplicationRecord
end

# Table name: bars
#  deleted_at :datetime
class Bar < ApplicationRecord
  acts_as_paranoid
end
`
	offenses := h.offenses(source)
	require.Len(t, offenses, 1)
	assert.Equal(t, 1, offenses[0].Line())
}

func TestCallActsAsParanoid_Name(t *testing.T) {
	c, err := New(DefaultConfig(), 0)
	require.NoError(t, err)

	assert.Equal(t, "ParanoiaSupport/CallActsAsParanoid", c.Name())
	assert.Len(t, c.Rules().Rules(), 1)
}

func TestStatement(t *testing.T) {
	assert.Equal(t, "acts_as_paranoid", Statement(""))
	assert.Equal(t, "acts_as_paranoid column: :x", Statement("column: :x"))
}
