package minitpl

import (
	"strings"

	"github.com/minihttp/minitpl/pkg/minitpl/model"
)

// Resolve evaluates a dot-separated path against the current data node.
//
// Each segment first names a member of the current node (case-insensitive,
// exact case preferred). The first segment may instead name a loop variable
// bound in scope. Anything that does not resolve yields Null; an empty path
// yields the current node itself.
func Resolve(current model.Value, scope *model.Scope, path string) model.Value {
	path = strings.TrimSpace(path)
	if path == "" {
		return current
	}

	for i, segment := range strings.Split(path, ".") {
		segment = strings.TrimSpace(segment)
		if v, ok := current.Member(segment); ok {
			current = v
			continue
		}
		if i == 0 {
			if v, ok := scope.Lookup(segment); ok {
				current = v
				continue
			}
		}
		return model.Null()
	}
	return current
}

// Truthy reports whether a value selects the then-branch of a conditional.
//
// Booleans are themselves and Null is false. Strings are false when blank
// or when they spell "false" in any case; "true" in any case is true, and
// other non-blank text is true as well. Lists are true when non-empty.
// Every other value, numbers included, is true.
func Truthy(v model.Value) bool {
	switch v.Kind() {
	case model.KindBool:
		b, _ := v.AsBool()
		return b
	case model.KindNull:
		return false
	case model.KindString:
		s, _ := v.AsString()
		s = strings.TrimSpace(s)
		if strings.EqualFold(s, "false") {
			return false
		}
		return s != ""
	case model.KindList:
		return v.Len() > 0
	default:
		return true
	}
}
