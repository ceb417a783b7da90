package rubyast

import (
	"sort"

	sitter "github.com/smacker/go-tree-sitter"
)

// Comment is a comment trivia record. Comments are not attached to nodes;
// consumers scan them file-wide.
type Comment struct {
	Text  string
	Range Range
	Line  int
}

// ClassDecl is a `class Name < Superclass ... end` declaration
type ClassDecl struct {
	// Node spans the whole construct, from the class keyword through the matching end
	Node Node

	// Name is the declared constant path, or the raw name text when it is not constant
	Name string

	// Superclass is the expression after `<`; the null node when there is none
	Superclass Node

	// KeywordLine is the 1-based line holding the class keyword
	KeywordLine int
}

// HasSuperclass reports whether the declaration names a superclass
func (c *ClassDecl) HasSuperclass() bool {
	return !c.Superclass.IsNull()
}

// Range returns the byte range of the whole declaration
func (c *ClassDecl) Range() Range {
	return c.Node.Range()
}

// EndLine returns the 1-based line holding the closing keyword
func (c *ClassDecl) EndLine() int {
	end := c.Node.End()
	if end.Column == 0 && end.Line > c.KeywordLine {
		return end.Line - 1
	}
	return end.Line
}

// SourceUnit is the parsed representation of one Ruby file. It is built fresh
// per file and is read-only for consumers.
type SourceUnit struct {
	Path            string
	Source          []byte
	Classes         []*ClassDecl
	Comments        []Comment
	HasSyntaxErrors bool

	lineStarts []int
	tree       *sitter.Tree
}

func newSourceUnit(path string, source []byte) *SourceUnit {
	starts := []int{0}
	for i, b := range source {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &SourceUnit{
		Path:       path,
		Source:     source,
		lineStarts: starts,
	}
}

// Root returns the program node
func (u *SourceUnit) Root() Node {
	if u.tree == nil {
		return Node{}
	}
	return wrap(u.tree.RootNode(), u)
}

// LineStart returns the byte offset at which the 1-based line begins
func (u *SourceUnit) LineStart(line int) int {
	if line < 1 {
		return 0
	}
	if line > len(u.lineStarts) {
		return len(u.Source)
	}
	return u.lineStarts[line-1]
}

// SourceLine returns the text of the 1-based line without its newline
func (u *SourceUnit) SourceLine(line int) string {
	if line < 1 || line > len(u.lineStarts) {
		return ""
	}
	start := u.lineStarts[line-1]
	end := len(u.Source)
	if line < len(u.lineStarts) {
		end = u.lineStarts[line] - 1
	}
	return string(u.Source[start:end])
}

// Position converts a byte offset into a line/column pair
func (u *SourceUnit) Position(offset int) Position {
	idx := sort.Search(len(u.lineStarts), func(i int) bool {
		return u.lineStarts[i] > offset
	}) - 1
	if idx < 0 {
		idx = 0
	}
	return Position{Line: idx + 1, Column: offset - u.lineStarts[idx]}
}

// Text returns the source text covered by r
func (u *SourceUnit) Text(r Range) string {
	if r.Begin < 0 || r.End > len(u.Source) || r.Begin > r.End {
		return ""
	}
	return string(u.Source[r.Begin:r.End])
}

// Close releases the syntax tree. Nodes must not be used afterwards.
func (u *SourceUnit) Close() {
	if u.tree != nil {
		u.tree.Close()
		u.tree = nil
	}
}
