// Package corrector applies cop edits to source text and renders the result
// as a unified diff.
package corrector

import (
	"sort"

	"github.com/toyz/paranoia/internal/cop"
)

// Result describes one application of edits
type Result struct {
	Source []byte

	// Applied counts the edits that were written
	Applied int

	// Skipped holds edits that were out of bounds or overlapped an earlier one
	Skipped []cop.Edit
}

// Changed reports whether any edit was applied
func (r Result) Changed() bool {
	return r.Applied > 0
}

// Apply rewrites source with edits. Edits are applied in order of their start
// offset; an edit overlapping one already accepted is skipped and left for
// the next autocorrect pass. The input slice is not modified.
func Apply(source []byte, edits []cop.Edit) Result {
	ordered := make([]cop.Edit, len(edits))
	copy(ordered, edits)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Range.Begin < ordered[j].Range.Begin
	})

	result := Result{}
	out := make([]byte, 0, len(source)+64)
	cursor := 0

	for _, edit := range ordered {
		r := edit.Range
		if r.Begin < 0 || r.End > len(source) || r.Begin > r.End {
			result.Skipped = append(result.Skipped, edit)
			continue
		}
		if r.Begin < cursor {
			result.Skipped = append(result.Skipped, edit)
			continue
		}

		out = append(out, source[cursor:r.Begin]...)
		out = append(out, edit.Replacement...)
		cursor = r.End
		result.Applied++
	}

	out = append(out, source[cursor:]...)
	result.Source = out
	return result
}
