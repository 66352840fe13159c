package record

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
)

// View is the read side of a collected field. It stands for the base value
// wherever a string is expected and exposes each cast result by name.
type View struct {
	base    string
	payload Payload
}

// NewView builds a view over a copy of payload.
func NewView(base string, payload Payload) View {
	return View{base: base, payload: maps.Clone(payload)}
}

func (v View) String() string {
	return v.base
}

func (v View) Equal(s string) bool {
	return v.base == s
}

func (v View) Context() string {
	s, _ := v.payload[KeyContext].(string)
	return s
}

func (v View) Quote() string {
	s, _ := v.payload[KeyQuote].(string)
	return s
}

// Payload returns a copy of the underlying payload.
func (v View) Payload() Payload {
	return maps.Clone(v.payload)
}

// Transform returns the raw result stored for a cast. The result is nil when a
// nullable choice selected nothing.
func (v View) Transform(name string) (any, error) {
	switch name {
	case KeyValue, KeyContext, KeyQuote:
		return nil, fmt.Errorf("%w: %q", ErrNoSuchTransform, name)
	}
	val, ok := v.payload[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoSuchTransform, name)
	}
	return val, nil
}

func (v View) Int(name string) (int64, error) {
	raw, err := v.Transform(name)
	if err != nil {
		return 0, err
	}
	switch n := raw.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		if n == math.Trunc(n) {
			return int64(n), nil
		}
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
	}
	return 0, typeErr(name, "integer", raw)
}

func (v View) Float(name string) (float64, error) {
	raw, err := v.Transform(name)
	if err != nil {
		return 0, err
	}
	switch n := raw.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f, nil
		}
	}
	return 0, typeErr(name, "float", raw)
}

func (v View) Bool(name string) (bool, error) {
	raw, err := v.Transform(name)
	if err != nil {
		return false, err
	}
	b, ok := raw.(bool)
	if !ok {
		return false, typeErr(name, "boolean", raw)
	}
	return b, nil
}

// Text returns a string result. A null choice yields "".
func (v View) Text(name string) (string, error) {
	raw, err := v.Transform(name)
	if err != nil {
		return "", err
	}
	switch s := raw.(type) {
	case nil:
		return "", nil
	case string:
		return s, nil
	}
	return "", typeErr(name, "string", raw)
}

// Strings returns a list, set or multi-choice result.
func (v View) Strings(name string) ([]string, error) {
	raw, err := v.Transform(name)
	if err != nil {
		return nil, err
	}
	switch items := raw.(type) {
	case nil:
		return nil, nil
	case []string:
		return append([]string(nil), items...), nil
	case []any:
		out := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				return nil, typeErr(name, "list of strings", raw)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, typeErr(name, "list of strings", raw)
}

// Mapping returns a mapping result.
func (v View) Mapping(name string) (map[string]string, error) {
	raw, err := v.Transform(name)
	if err != nil {
		return nil, err
	}
	switch m := raw.(type) {
	case map[string]string:
		return maps.Clone(m), nil
	case map[string]any:
		out := make(map[string]string, len(m))
		for k, item := range m {
			s, ok := item.(string)
			if !ok {
				return nil, typeErr(name, "mapping of strings", raw)
			}
			out[k] = s
		}
		return out, nil
	}
	return nil, typeErr(name, "mapping of strings", raw)
}

func typeErr(name, want string, got any) error {
	return fmt.Errorf("%w: %q is %T, want %s", ErrTransformType, name, got, want)
}
