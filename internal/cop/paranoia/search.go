package paranoia

import (
	"strings"

	"github.com/toyz/paranoia/internal/rubyast"
)

// HasImplicitCall reports whether method is called without an explicit
// receiver anywhere inside node, however deeply nested.
func HasImplicitCall(node rubyast.Node, method string) bool {
	_, found := node.Find(func(n rubyast.Node) bool {
		return isImplicitCall(n, method)
	})
	return found
}

func isImplicitCall(n rubyast.Node, method string) bool {
	switch n.Kind() {
	case "call", "method_call":
		// acts_as_paranoid(...), acts_as_paranoid column: :x, acts_as_paranoid do ... end
		return n.Field("receiver").IsNull() && n.Field("method").Text() == method
	case "identifier":
		// a bare `acts_as_paranoid` statement parses as an identifier
		return n.Text() == method && isBareReference(n)
	default:
		return false
	}
}

// isBareReference rules out identifiers that name something rather than
// invoke it: method names of calls and definitions, assignment targets and
// parameters.
func isBareReference(n rubyast.Node) bool {
	parent := n.Parent()
	kind := parent.Kind()

	switch {
	case kind == "call" || kind == "method_call":
		return !parent.Field("method").Equal(n)
	case kind == "method" || kind == "singleton_method":
		return !parent.Field("name").Equal(n)
	case kind == "assignment" || kind == "operator_assignment":
		return !parent.Field("left").Equal(n)
	case kind == "alias" || kind == "undef":
		return false
	case strings.HasSuffix(kind, "parameters") || strings.HasSuffix(kind, "_parameter"):
		return false
	default:
		return true
	}
}
