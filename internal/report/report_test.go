package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/paranoia/internal/cop"
	"github.com/toyz/paranoia/internal/rubyast"
)

const source = "#  deleted_at :datetime\nclass Foo < ApplicationRecord\nend\n"

func offense(corrected, correctable bool) cop.Offense {
	return cop.Offense{
		CopName:     "ParanoiaSupport/CallActsAsParanoid",
		Message:     "call `acts_as_paranoid`.",
		Severity:    cop.SeverityConvention,
		Range:       rubyast.Range{Begin: 24, End: 57},
		Start:       rubyast.Position{Line: 2, Column: 0},
		End:         rubyast.Position{Line: 3, Column: 3},
		Correctable: correctable,
		Corrected:   corrected,
	}
}

func results() []FileResult {
	return []FileResult{
		{Path: "app/models/zeta.rb", Source: []byte("class Zeta\nend\n")},
		{Path: "app/models/foo.rb", Source: []byte(source), Offenses: []cop.Offense{offense(false, true)}},
	}
}

func TestSimpleFormatter(t *testing.T) {
	f, err := New("simple", Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, results()))

	expected := "== app/models/foo.rb ==\n" +
		"C:  2:  1: [Correctable] ParanoiaSupport/CallActsAsParanoid: call `acts_as_paranoid`.\n" +
		"\n" +
		"2 files inspected, 1 offense detected, 1 offense autocorrectable\n"
	assert.Equal(t, expected, buf.String())
}

func TestSimpleFormatter_Corrected(t *testing.T) {
	f, err := New("", Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, []FileResult{
		{Path: "foo.rb", Offenses: []cop.Offense{offense(true, true)}},
	}))

	assert.Contains(t, buf.String(), "C:  2:  1: [Corrected] ParanoiaSupport/CallActsAsParanoid")
	assert.Contains(t, buf.String(), "1 file inspected, 1 offense detected, 1 offense corrected\n")
}

func TestSimpleFormatter_Colors(t *testing.T) {
	f, err := New("simple", Options{Colors: true})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, results()))

	assert.Contains(t, buf.String(), "\x1b[")
}

func TestClangFormatter(t *testing.T) {
	f, err := New("clang", Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, results()))

	expected := "app/models/foo.rb:2:1: C: [Correctable] ParanoiaSupport/CallActsAsParanoid: call `acts_as_paranoid`.\n" +
		"class Foo < ApplicationRecord\n" +
		strings.Repeat("^", len("class Foo < ApplicationRecord")) + "\n" +
		"\n" +
		"2 files inspected, 1 offense detected, 1 offense autocorrectable\n"
	assert.Equal(t, expected, buf.String())
}

func TestJSONFormatter(t *testing.T) {
	f, err := New("json", Options{Colors: true})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, results()))

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	summary := doc["summary"].(map[string]interface{})
	assert.EqualValues(t, 1, summary["offense_count"])
	assert.EqualValues(t, 2, summary["inspected_file_count"])

	files := doc["files"].([]interface{})
	require.Len(t, files, 2)

	first := files[0].(map[string]interface{})
	assert.Equal(t, "app/models/foo.rb", first["path"])

	offenses := first["offenses"].([]interface{})
	require.Len(t, offenses, 1)
	o := offenses[0].(map[string]interface{})
	assert.Equal(t, "convention", o["severity"])
	assert.Equal(t, "ParanoiaSupport/CallActsAsParanoid", o["cop_name"])
	assert.Equal(t, true, o["correctable"])
	assert.Equal(t, false, o["corrected"])

	location := o["location"].(map[string]interface{})
	assert.EqualValues(t, 2, location["start_line"])
	assert.EqualValues(t, 1, location["start_column"])
	assert.EqualValues(t, 3, location["last_line"])
	assert.EqualValues(t, 3, location["last_column"])
	assert.EqualValues(t, 33, location["length"])

	second := files[1].(map[string]interface{})
	assert.Empty(t, second["offenses"])
}

func TestNew_Unknown(t *testing.T) {
	_, err := New("xml", Options{})
	assert.Error(t, err)
}

func TestSummaryLine(t *testing.T) {
	assert.Equal(t, "0 files inspected, no offenses detected", SummaryLine(Summary{}))
	assert.Equal(t, "1 file inspected, 2 offenses detected, 2 offenses corrected",
		SummaryLine(Summary{InspectedFiles: 1, Offenses: 2, Corrected: 2}))
}
