package directives

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/paranoia/internal/errors"
	"github.com/toyz/paranoia/internal/rubyast"
)

const copName = "ParanoiaSupport/CallActsAsParanoid"

func TestParser_Parse(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name   string
		input  string
		mode   Mode
		cops   []string
		reason string
	}{
		{
			name:  "disable single cop",
			input: "# rubocop:disable ParanoiaSupport/CallActsAsParanoid",
			mode:  ModeDisable,
			cops:  []string{copName},
		},
		{
			name:  "enable multiple cops",
			input: "# rubocop:enable Style/Foo, ParanoiaSupport/CallActsAsParanoid",
			mode:  ModeEnable,
			cops:  []string{"Style/Foo", copName},
		},
		{
			name:  "todo department",
			input: "#rubocop:todo ParanoiaSupport",
			mode:  ModeTodo,
			cops:  []string{"ParanoiaSupport"},
		},
		{
			name:  "all with paranoia prefix",
			input: "# paranoia:disable all",
			mode:  ModeDisable,
			cops:  []string{AllCops},
		},
		{
			name:   "reason after dashes",
			input:  "# rubocop:disable all -- legacy table",
			mode:   ModeDisable,
			cops:   []string{AllCops},
			reason: "legacy table",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			directive, err := parser.Parse(tt.input)
			require.NoError(t, err)
			require.NotNil(t, directive)
			assert.Equal(t, tt.mode, directive.Mode)
			assert.Equal(t, tt.cops, directive.Cops)
			assert.Equal(t, tt.reason, directive.Reason)
		})
	}
}

func TestParser_NotADirective(t *testing.T) {
	parser := NewParser()

	for _, input := range []string{
		"#  deleted_at :datetime",
		"# frozen_string_literal: true",
		"# Table name: users",
	} {
		directive, err := parser.Parse(input)
		assert.NoError(t, err, input)
		assert.Nil(t, directive, input)
	}
}

func TestParser_MalformedDirective(t *testing.T) {
	directive, err := NewParser().Parse("# rubocop:disable")
	require.Error(t, err)
	assert.Nil(t, directive)
	assert.Equal(t, errors.SyntaxErrorCode, errors.CodeOf(err))

	_, err = NewParser().Parse("# rubocop:silence Foo/Bar")
	require.Error(t, err)
}

func build(t *testing.T, source string) (*Set, []error) {
	t.Helper()
	unit, err := rubyast.NewParser().ParseString(context.Background(), "test.rb", source)
	require.NoError(t, err)
	t.Cleanup(unit.Close)
	return NewParser().Build(unit)
}

func TestSet_RangeDirective(t *testing.T) {
	source := `# rubocop:disable ParanoiaSupport/CallActsAsParanoid
class Foo < ApplicationRecord
end
# rubocop:enable ParanoiaSupport/CallActsAsParanoid
class Bar < ApplicationRecord
end
`
	set, problems := build(t, source)
	require.Empty(t, problems)

	assert.True(t, set.Disabled(copName, 2))
	assert.True(t, set.Disabled(copName, 4))
	assert.False(t, set.Disabled(copName, 5))
	assert.False(t, set.Disabled("Style/Other", 2))
}

func TestSet_UnclosedRangeRunsToEndOfFile(t *testing.T) {
	set, _ := build(t, "x = 1\n# rubocop:disable ParanoiaSupport\nclass Foo < Bar\nend\n")

	assert.False(t, set.Disabled(copName, 1))
	assert.True(t, set.Disabled(copName, 3))
	assert.True(t, set.Disabled(copName, 1000))
}

func TestSet_TrailingDirectiveDisablesOneLine(t *testing.T) {
	source := "class Foo < ApplicationRecord # rubocop:disable all\nend\nclass Bar < ApplicationRecord\nend\n"
	set, _ := build(t, source)

	assert.True(t, set.Disabled(copName, 1))
	assert.False(t, set.Disabled(copName, 2))
	assert.False(t, set.Disabled(copName, 3))
}

func TestSet_EnableAllClosesEverything(t *testing.T) {
	source := "# rubocop:disable ParanoiaSupport/CallActsAsParanoid, Style/Foo\nx = 1\n# rubocop:enable all\ny = 2\n"
	set, _ := build(t, source)

	assert.True(t, set.Disabled(copName, 2))
	assert.True(t, set.Disabled("Style/Foo", 2))
	assert.False(t, set.Disabled(copName, 4))
	assert.False(t, set.Disabled("Style/Foo", 4))
}

func TestSet_ReportsMalformedDirectives(t *testing.T) {
	set, problems := build(t, "x = 1\n# rubocop:disable\n")

	require.Len(t, problems, 1)
	var lintErr errors.LintError
	require.ErrorAs(t, problems[0], &lintErr)
	assert.Equal(t, 2, lintErr.Location().Line)
	assert.True(t, set.Empty())
}

func TestSet_NilIsPermissive(t *testing.T) {
	var set *Set
	assert.False(t, set.Disabled(copName, 1))
	assert.True(t, set.Empty())
}
