package rubyast

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Range is a half-open byte range [Begin, End) into a source buffer
type Range struct {
	Begin int
	End   int
}

// Len returns the number of bytes covered by the range
func (r Range) Len() int {
	return r.End - r.Begin
}

// Position is a line/column pair. Line is 1-based, Column is a 0-based byte offset.
type Position struct {
	Line   int
	Column int
}

// Node is a read-only view of a syntax tree node bound to its source unit.
// The zero Node is the null node.
type Node struct {
	raw  *sitter.Node
	unit *SourceUnit
}

func wrap(raw *sitter.Node, unit *SourceUnit) Node {
	if raw == nil || raw.IsNull() {
		return Node{}
	}
	return Node{raw: raw, unit: unit}
}

// IsNull reports whether the node is absent
func (n Node) IsNull() bool {
	return n.raw == nil
}

// Kind returns the grammar type of the node, e.g. "class" or "call"
func (n Node) Kind() string {
	if n.IsNull() {
		return ""
	}
	return n.raw.Type()
}

// Text returns the source text covered by the node
func (n Node) Text() string {
	if n.IsNull() {
		return ""
	}
	return n.raw.Content(n.unit.Source)
}

// Range returns the byte range of the node
func (n Node) Range() Range {
	if n.IsNull() {
		return Range{}
	}
	return Range{Begin: int(n.raw.StartByte()), End: int(n.raw.EndByte())}
}

// Start returns the position of the first byte of the node
func (n Node) Start() Position {
	if n.IsNull() {
		return Position{}
	}
	p := n.raw.StartPoint()
	return Position{Line: int(p.Row) + 1, Column: int(p.Column)}
}

// End returns the position just past the last byte of the node
func (n Node) End() Position {
	if n.IsNull() {
		return Position{}
	}
	p := n.raw.EndPoint()
	return Position{Line: int(p.Row) + 1, Column: int(p.Column)}
}

// Parent returns the enclosing node, or the null node at the root
func (n Node) Parent() Node {
	if n.IsNull() {
		return Node{}
	}
	return wrap(n.raw.Parent(), n.unit)
}

// Field returns the child stored under a grammar field name
func (n Node) Field(name string) Node {
	if n.IsNull() {
		return Node{}
	}
	return wrap(n.raw.ChildByFieldName(name), n.unit)
}

// NamedChildren returns the named children in source order
func (n Node) NamedChildren() []Node {
	if n.IsNull() {
		return nil
	}
	count := int(n.raw.NamedChildCount())
	children := make([]Node, 0, count)
	for i := 0; i < count; i++ {
		if child := wrap(n.raw.NamedChild(i), n.unit); !child.IsNull() {
			children = append(children, child)
		}
	}
	return children
}

// Equal reports whether both values refer to the same node
func (n Node) Equal(other Node) bool {
	if n.IsNull() || other.IsNull() {
		return n.IsNull() == other.IsNull()
	}
	return n.Kind() == other.Kind() && n.Range() == other.Range()
}

// Walk visits n and its named descendants in pre-order. Returning false from
// fn skips the children of the visited node.
func (n Node) Walk(fn func(Node) bool) {
	if n.IsNull() {
		return
	}
	if !fn(n) {
		return
	}
	for _, child := range n.NamedChildren() {
		child.Walk(fn)
	}
}

// Find returns the first node in pre-order, n included, satisfying pred
func (n Node) Find(pred func(Node) bool) (Node, bool) {
	var found Node
	n.Walk(func(candidate Node) bool {
		if !found.IsNull() {
			return false
		}
		if pred(candidate) {
			found = candidate
			return false
		}
		return true
	})
	return found, !found.IsNull()
}

// ConstName returns the constant path written by n ("Foo", "Foo::Bar").
// The boolean is false when n is not a static constant reference.
func ConstName(n Node) (string, bool) {
	switch n.Kind() {
	case "constant":
		return n.Text(), true
	case "scope_resolution":
		name := n.Field("name")
		if name.Kind() != "constant" {
			return "", false
		}
		scope := n.Field("scope")
		if scope.IsNull() {
			// ::Foo
			return name.Text(), true
		}
		prefix, ok := ConstName(scope)
		if !ok {
			return "", false
		}
		return prefix + "::" + name.Text(), true
	default:
		return "", false
	}
}
