package corrector

import (
	"strings"

	godiff "github.com/sourcegraph/go-diff/diff"

	"github.com/toyz/paranoia/internal/errors"
)

// ContextLines is the number of unchanged lines printed around each change
const ContextLines = 3

type opKind byte

const (
	opEqual  opKind = ' '
	opDelete opKind = '-'
	opInsert opKind = '+'
)

type lineOp struct {
	kind opKind
	text string
	// 1-based line numbers in the original and new text; 0 when absent
	orig, new int
}

// Diff renders a unified diff of before and after for path. Identical inputs
// produce an empty string.
func Diff(path string, before, after []byte) (string, error) {
	if string(before) == string(after) {
		return "", nil
	}

	ops := diffLines(splitLines(string(before)), splitLines(string(after)))
	fileDiff := &godiff.FileDiff{
		OrigName: "a/" + path,
		NewName:  "b/" + path,
		Hunks:    buildHunks(ops, ContextLines),
	}

	out, err := godiff.PrintFileDiff(fileDiff)
	if err != nil {
		return "", errors.Wrapf(errors.CorrectionErrorCode, err, "failed to render diff for %s", path)
	}
	return string(out), nil
}

// splitLines splits text into lines keeping their terminators
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// diffLines computes a line edit script from the longest common subsequence
func diffLines(a, b []string) []lineOp {
	n, m := len(a), len(b)
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else if lcs[i+1][j] >= lcs[i][j+1] {
				lcs[i][j] = lcs[i+1][j]
			} else {
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	ops := make([]lineOp, 0, n+m)
	i, j := 0, 0
	for i < n || j < m {
		switch {
		case i < n && j < m && a[i] == b[j]:
			ops = append(ops, lineOp{kind: opEqual, text: a[i], orig: i + 1, new: j + 1})
			i++
			j++
		case j < m && (i == n || lcs[i][j+1] > lcs[i+1][j]):
			ops = append(ops, lineOp{kind: opInsert, text: b[j], new: j + 1})
			j++
		default:
			ops = append(ops, lineOp{kind: opDelete, text: a[i], orig: i + 1})
			i++
		}
	}
	return ops
}

// buildHunks groups changed lines with their surrounding context. Changes
// closer than twice the context share a hunk.
func buildHunks(ops []lineOp, context int) []*godiff.Hunk {
	var hunks []*godiff.Hunk

	i := 0
	for i < len(ops) {
		for i < len(ops) && ops[i].kind == opEqual {
			i++
		}
		if i == len(ops) {
			break
		}

		start := i - context
		if start < 0 {
			start = 0
		}

		end := i
		for end < len(ops) {
			if ops[end].kind != opEqual {
				end++
				continue
			}
			run := end
			for run < len(ops) && ops[run].kind == opEqual {
				run++
			}
			if run == len(ops) || run-end > 2*context {
				end += min(context, run-end)
				break
			}
			end = run
		}

		hunks = append(hunks, newHunk(ops[start:end]))
		i = end
	}
	return hunks
}

func newHunk(ops []lineOp) *godiff.Hunk {
	hunk := &godiff.Hunk{}
	var body strings.Builder

	for _, op := range ops {
		switch op.kind {
		case opEqual:
			hunk.OrigLines++
			hunk.NewLines++
		case opDelete:
			hunk.OrigLines++
		case opInsert:
			hunk.NewLines++
		}
		if hunk.OrigStartLine == 0 && op.orig > 0 {
			hunk.OrigStartLine = int32(op.orig)
		}
		if hunk.NewStartLine == 0 && op.new > 0 {
			hunk.NewStartLine = int32(op.new)
		}

		body.WriteByte(byte(op.kind))
		body.WriteString(op.text)
		if !strings.HasSuffix(op.text, "\n") {
			body.WriteString("\n\\ No newline at end of file\n")
		}
	}

	hunk.Body = []byte(body.String())
	return hunk
}
