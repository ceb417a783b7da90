package paranoia

import (
	"github.com/toyz/paranoia/internal/rubyast"
)

// Match reports whether the class inherits, by literal constant name, from a
// watched superclass and returns that superclass's rule. Classes without a
// superclass and dynamic superclass expressions never match.
func (r *Resolved) Match(class *rubyast.ClassDecl) (Rule, bool) {
	if !class.HasSuperclass() {
		return Rule{}, false
	}

	name, ok := rubyast.ConstName(class.Superclass)
	if !ok {
		return Rule{}, false
	}

	return r.Lookup(name)
}
