package patch

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"

	"github.com/tbxark/convoform/record"
)

// Normalize maps tool arguments onto the stored payload: the base keys are
// copied, each cast is read from its tool-argument name (falling back to its
// declared name) and stored under the declared name, and a missing
// conversation_context becomes record.NotApplicable. Keys that match no cast
// are dropped.
func Normalize(f *record.Field, args map[string]any) record.Payload {
	out := make(record.Payload, len(args))
	for _, key := range []string{record.KeyValue, record.KeyContext, record.KeyQuote} {
		if v, ok := args[key]; ok {
			out[key] = v
		}
	}
	f.EachCast(func(name string, c *record.Cast) {
		if v, ok := args[c.ArgName(name)]; ok {
			out[name] = v
			return
		}
		if v, ok := args[name]; ok {
			out[name] = v
		}
	})
	if _, ok := out[record.KeyContext]; !ok {
		out[record.KeyContext] = record.NotApplicable
	}
	return out
}

// Validate checks a normalized payload against the field's casts. value,
// conversation_context and quote must all be strings.
func Validate(f *record.Field, p record.Payload) error {
	for _, key := range []string{record.KeyValue, record.KeyContext, record.KeyQuote} {
		if _, ok := p[key].(string); !ok {
			return fmt.Errorf("%w: %s must be a string", ErrInvalidPayload, key)
		}
	}
	var err error
	f.EachCast(func(name string, c *record.Cast) {
		if err != nil {
			return
		}
		v, ok := p[name]
		if !ok {
			if !c.Optional {
				err = fmt.Errorf("%w: missing %s", ErrInvalidPayload, c.ArgName(name))
			}
			return
		}
		if cerr := checkCast(c, v); cerr != nil {
			err = fmt.Errorf("%w: %s: %v", ErrInvalidPayload, c.ArgName(name), cerr)
		}
	})
	return err
}

func checkCast(c *record.Cast, v any) error {
	if v == nil {
		if c.Nullable || c.Optional {
			return nil
		}
		return fmt.Errorf("must not be null")
	}
	switch c.Type {
	case record.TypeInteger:
		if !isWhole(v) {
			return fmt.Errorf("want integer, got %v", v)
		}
	case record.TypeFloat:
		if !isNumber(v) {
			return fmt.Errorf("want number, got %v", v)
		}
	case record.TypeString:
		if _, ok := v.(string); !ok {
			return fmt.Errorf("want string, got %T", v)
		}
	case record.TypeBoolean:
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("want boolean, got %T", v)
		}
	case record.TypeList, record.TypeSet:
		items, err := stringItems(v)
		if err != nil {
			return err
		}
		if c.Type == record.TypeSet && hasDuplicates(items) {
			return fmt.Errorf("set contains duplicates")
		}
	case record.TypeMapping:
		m, ok := v.(map[string]any)
		if !ok {
			return fmt.Errorf("want object, got %T", v)
		}
		for k, item := range m {
			if _, ok := item.(string); !ok {
				return fmt.Errorf("entry %q: want string, got %T", k, item)
			}
		}
	case record.TypeChoice:
		return checkChoice(c, v)
	default:
		return fmt.Errorf("%w: %q", record.ErrUnsupportedType, c.Type)
	}
	return nil
}

func checkChoice(c *record.Cast, v any) error {
	if !c.Multi {
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("want one of %q, got %T", c.Choices, v)
		}
		if !slices.Contains(c.Choices, s) {
			return fmt.Errorf("%q is not one of %q", s, c.Choices)
		}
		return nil
	}
	items, err := stringItems(v)
	if err != nil {
		return err
	}
	for _, s := range items {
		if !slices.Contains(c.Choices, s) {
			return fmt.Errorf("%q is not one of %q", s, c.Choices)
		}
	}
	return nil
}

func stringItems(v any) ([]string, error) {
	switch items := v.(type) {
	case []string:
		return items, nil
	case []any:
		out := make([]string, 0, len(items))
		for i, item := range items {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("item %d: want string, got %T", i, item)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("want array, got %T", v)
}

func hasDuplicates(items []string) bool {
	seen := make(map[string]struct{}, len(items))
	for _, s := range items {
		if _, ok := seen[s]; ok {
			return true
		}
		seen[s] = struct{}{}
	}
	return false
}

func isNumber(v any) bool {
	switch v.(type) {
	case float64, float32, int, int64, json.Number:
		return true
	}
	return false
}

func isWhole(v any) bool {
	switch n := v.(type) {
	case int, int64:
		return true
	case float64:
		return n == math.Trunc(n) && !math.IsInf(n, 0)
	case json.Number:
		_, err := n.Int64()
		return err == nil
	}
	return false
}
