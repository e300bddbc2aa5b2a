package schema

import (
	"errors"
	"fmt"
)

// Contract violations. The store panics with errors wrapping these when a
// generator hands it a fragment it cannot name; they signal a generator bug,
// not a runtime condition.
var (
	ErrMissingID           = errors.New("schema: logical identifier must be set")
	ErrUnresolvedRecursion = errors.New("schema: recursive reference has no enclosing schema")
)

func describe(s *Schema) string {
	if s.Type != "" {
		return fmt.Sprintf("%s schema of type %q", s.Kind(), s.Type)
	}
	return s.Kind().String() + " schema"
}
