package paranoia

import (
	"regexp"

	"github.com/toyz/paranoia/internal/rubyast"
)

// annotationPattern matches a schema annotation line such as
// `#  deleted_at   :datetime`. The column is quoted so it is matched literally.
func annotationPattern(column string) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^#\s+` + regexp.QuoteMeta(column) + `\s+:datetime`)
}

// Annotated reports whether any comment in the file annotates the rule's
// column as a datetime. The scan is file-wide, not limited to the comments
// around the class being checked.
func (r Rule) Annotated(comments []rubyast.Comment) bool {
	pattern := r.annotation
	if pattern == nil {
		pattern = annotationPattern(r.Column)
	}

	for _, comment := range comments {
		if pattern.MatchString(comment.Text) {
			return true
		}
	}
	return false
}
