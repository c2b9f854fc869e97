package models

import "strings"

// TriggerPayload is the event context passed through the whole pipeline. It is
// an open map: the well-known keys are task, user and workspace, but rules may
// reference arbitrary nested fields. The engine treats it as immutable for the
// duration of one trigger invocation.
type TriggerPayload map[string]any

// WorkspaceID returns the tenant id at workspace.id, or "" when absent.
func (p TriggerPayload) WorkspaceID() string {
	v, ok := p.Lookup("workspace.id")
	if !ok {
		return ""
	}

	id, _ := v.(string)

	return id
}

// Lookup walks a dot-separated path through the payload. The second return is
// false when any segment is missing or a non-map value is reached before the
// final segment. A present key holding nil returns (nil, true).
func (p TriggerPayload) Lookup(path string) (any, bool) {
	if path == "" {
		return nil, false
	}

	var current any = map[string]any(p)

	for _, segment := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		current, ok = node[segment]
		if !ok {
			return nil, false
		}
	}

	return current, true
}

// Clone returns a deep copy of the payload so concurrent or sequential rule
// chains never observe each other's view of the event.
func (p TriggerPayload) Clone() TriggerPayload {
	if p == nil {
		return nil
	}

	return TriggerPayload(cloneMap(p))
}

func cloneMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))

	for k, v := range in {
		switch typed := v.(type) {
		case map[string]any:
			out[k] = cloneMap(typed)
		case []any:
			cloned := make([]any, len(typed))
			for i, item := range typed {
				if m, ok := item.(map[string]any); ok {
					cloned[i] = cloneMap(m)
				} else {
					cloned[i] = item
				}
			}

			out[k] = cloned
		default:
			out[k] = v
		}
	}

	return out
}
