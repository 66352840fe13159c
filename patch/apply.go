package patch

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

// ApplyRFC6902 applies ops to the JSON form of current and decodes the result
// into a new T. current is not modified.
func ApplyRFC6902[T any](current T, ops []Operation) (T, error) {
	var zero T
	if len(ops) == 0 {
		return current, nil
	}

	doc, err := json.Marshal(current)
	if err != nil {
		return zero, fmt.Errorf("marshal document: %w", err)
	}
	raw, err := json.Marshal(ops)
	if err != nil {
		return zero, fmt.Errorf("marshal operations: %w", err)
	}
	p, err := jsonpatch.DecodePatch(raw)
	if err != nil {
		return zero, fmt.Errorf("decode patch: %w", err)
	}
	patched, err := p.Apply(doc)
	if err != nil {
		return zero, fmt.Errorf("apply patch: %w", err)
	}

	var result T
	if err := json.Unmarshal(patched, &result); err != nil {
		return zero, fmt.Errorf("decode patched document: %w", err)
	}
	return result, nil
}

func escapeToken(token string) string {
	return strings.NewReplacer("~", "~0", "/", "~1").Replace(token)
}

func unescapeToken(token string) string {
	return strings.NewReplacer("~1", "/", "~0", "~").Replace(token)
}
