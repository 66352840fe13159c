package record

import (
	"fmt"
	"slices"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type Type string

const (
	TypeInteger Type = "integer"
	TypeFloat   Type = "float"
	TypeString  Type = "string"
	TypeBoolean Type = "boolean"
	TypeList    Type = "list"
	TypeSet     Type = "set"
	TypeMapping Type = "mapping"
	TypeChoice  Type = "choice"
)

var supportedTypes = []Type{
	TypeInteger, TypeFloat, TypeString, TypeBoolean,
	TypeList, TypeSet, TypeMapping, TypeChoice,
}

// Supported reports whether t is one of the known primitive types.
func (t Type) Supported() bool {
	return slices.Contains(supportedTypes, t)
}

// Payload keys present on every committed value.
const (
	KeyValue   = "value"
	KeyContext = "conversation_context"
	KeyQuote   = "quote"
)

// NotApplicable marks a conversation_context that has nothing to report.
const NotApplicable = "N/A"

// Payload is the structured object a commit stores on a field: the base value,
// its conversation context, a verbatim quote, and one entry per cast.
type Payload map[string]any

// Value returns the base value, or "" when it is missing or not a string.
func (p Payload) Value() string {
	s, _ := p[KeyValue].(string)
	return s
}

type Validation struct {
	Must         []string `json:"must,omitempty"`
	Reject       []string `json:"reject,omitempty"`
	Hint         []string `json:"hint,omitempty"`
	Confidential bool     `json:"confidential"`
	Conclude     bool     `json:"conclude"`
}

// Normalize applies conclude => confidential.
func (v *Validation) Normalize() {
	if v.Conclude {
		v.Confidential = true
	}
}

type Cast struct {
	Type     Type     `json:"type"`
	Prompt   string   `json:"prompt,omitempty"`
	Choices  []string `json:"choices,omitempty"`
	Nullable bool     `json:"nullable,omitempty"`
	Multi    bool     `json:"multi,omitempty"`
	Optional bool     `json:"optional,omitempty"`
	// Canonical is the tool-argument name the cast is requested under, when it
	// differs from the declared cast name.
	Canonical string `json:"canonical,omitempty"`
}

// ArgName returns the tool-argument key for a cast declared as name.
func (c *Cast) ArgName(name string) string {
	if c.Canonical != "" {
		return c.Canonical
	}
	return name
}

func (c *Cast) validate() error {
	if !c.Type.Supported() {
		return fmt.Errorf("%w: %q", ErrUnsupportedType, c.Type)
	}
	if c.Type == TypeChoice && len(c.Choices) == 0 {
		return ErrNoChoices
	}
	return nil
}

// collides reports whether two casts would share a stored name or a tool
// argument name.
func collides(name string, c *Cast, otherName string, other *Cast) bool {
	arg, otherArg := c.ArgName(name), other.ArgName(otherName)
	return name == otherName || name == otherArg || arg == otherName || arg == otherArg
}

// CastName composes a cast name from a base and an optional sub-qualifier.
func CastName(base, sub string) string {
	if sub == "" {
		return base
	}
	return base + "_" + sub
}

type Field struct {
	Name        string                               `json:"name"`
	Description string                               `json:"description"`
	Validation  Validation                           `json:"validation"`
	Casts       *orderedmap.OrderedMap[string, *Cast] `json:"casts"`
	Value       Payload                              `json:"value"`
}

func newField(name, description string) *Field {
	return &Field{
		Name:        name,
		Description: description,
		Casts:       orderedmap.New[string, *Cast](),
	}
}

// AddCast registers c under CastName(base, sub). A name or argument name
// already used by another cast of f fails with ErrDuplicateCast.
func (f *Field) AddCast(base, sub string, c Cast) error {
	name := CastName(base, sub)
	if base == "" {
		return fmt.Errorf("field %q: cast: %w", f.Name, ErrEmptyName)
	}
	if err := c.validate(); err != nil {
		return fmt.Errorf("field %q cast %q: %w", f.Name, name, err)
	}
	if f.Casts == nil {
		f.Casts = orderedmap.New[string, *Cast]()
	}
	for pair := f.Casts.Oldest(); pair != nil; pair = pair.Next() {
		if collides(name, &c, pair.Key, pair.Value) {
			return fmt.Errorf("field %q: %w: %q", f.Name, ErrDuplicateCast, name)
		}
	}
	c.Choices = slices.Clone(c.Choices)
	f.Casts.Set(name, &c)
	return nil
}

// EachCast calls fn for every cast in declaration order.
func (f *Field) EachCast(fn func(name string, c *Cast)) {
	if f.Casts == nil {
		return
	}
	for pair := f.Casts.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// CastByArg resolves a tool-argument key to the declared cast name.
func (f *Field) CastByArg(arg string) (string, *Cast, bool) {
	if f.Casts == nil {
		return "", nil, false
	}
	if c, ok := f.Casts.Get(arg); ok {
		return arg, c, true
	}
	for pair := f.Casts.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.ArgName(pair.Key) == arg {
			return pair.Key, pair.Value, true
		}
	}
	return "", nil, false
}

func (f *Field) Collected() bool {
	return f.Value != nil
}

// Required reports whether the field is asked about directly.
func (f *Field) Required() bool {
	return !f.Validation.Confidential && !f.Validation.Conclude
}
