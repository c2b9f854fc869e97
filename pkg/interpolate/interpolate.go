// Package interpolate renders {{dotted.path}} placeholders against a trigger
// payload. Resolution is fail-soft: a token whose path does not exist in the
// payload is left verbatim in the output so a broken template is visibly
// broken instead of silently blank.
package interpolate

import (
	"fmt"
	"regexp"

	"github.com/ninjagenz/automata/pkg/models"
)

var tokenPattern = regexp.MustCompile(`\{\{([A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)*)\}\}`)

// Render substitutes every resolvable {{path}} token in template with the
// value found in payload. A path that resolves to nil becomes the empty
// string, distinguishing "present but empty" from "not present". The payload
// is never mutated and Render never fails: malformed token syntax simply does
// not match and passes through untouched.
func Render(template string, payload models.TriggerPayload) string {
	return tokenPattern.ReplaceAllStringFunc(template, func(token string) string {
		path := token[2 : len(token)-2]

		value, ok := payload.Lookup(path)
		if !ok {
			return token
		}

		if value == nil {
			return ""
		}

		return stringify(value)
	})
}

func stringify(value any) string {
	if s, ok := value.(string); ok {
		return s
	}

	// JSON-decoded numbers arrive as float64; print integral values without
	// the trailing ".0" a naive %v would not produce but %g for large values
	// would mangle.
	if f, ok := value.(float64); ok && f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}

	return fmt.Sprintf("%v", value)
}
