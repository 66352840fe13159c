// Package record holds the declarative description of a record collected through
// conversation: its roles, fields, per-field casts and the values committed so far.
package record

import (
	"fmt"

	"github.com/bytedance/sonic"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const (
	RoleInitiator  = "initiator"
	RoleRespondent = "respondent"
)

type Record struct {
	TypeName    string                                `json:"type_name"`
	Description string                                `json:"description"`
	Initiator   *Role                                 `json:"initiator"`
	Respondent  *Role                                 `json:"respondent"`
	Fields      *orderedmap.OrderedMap[string, *Field] `json:"fields"`
}

type Role struct {
	TypeLabel      string                                        `json:"type_label,omitempty"`
	Traits         []string                                      `json:"traits,omitempty"`
	PossibleTraits *orderedmap.OrderedMap[string, *PossibleTrait] `json:"possible_traits,omitempty"`
}

type PossibleTrait struct {
	Active             bool   `json:"active"`
	TriggerDescription string `json:"trigger_description"`
}

// New returns an empty record with both roles allocated.
func New(typeName, description string) *Record {
	return &Record{
		TypeName:    typeName,
		Description: description,
		Initiator:   newRole(),
		Respondent:  newRole(),
		Fields:      orderedmap.New[string, *Field](),
	}
}

func newRole() *Role {
	return &Role{PossibleTraits: orderedmap.New[string, *PossibleTrait]()}
}

// Role returns the role registered under key, RoleInitiator or RoleRespondent.
func (r *Record) Role(key string) (*Role, error) {
	switch key {
	case RoleInitiator:
		return r.Initiator, nil
	case RoleRespondent:
		return r.Respondent, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, key)
	}
}

// Field looks up a field by name.
func (r *Record) Field(name string) (*Field, bool) {
	if r == nil || r.Fields == nil {
		return nil, false
	}
	return r.Fields.Get(name)
}

// AddField appends f, rejecting empty and duplicate names.
func (r *Record) AddField(f *Field) error {
	if f == nil || f.Name == "" {
		return ErrEmptyName
	}
	if r.Fields == nil {
		r.Fields = orderedmap.New[string, *Field]()
	}
	if _, exists := r.Fields.Get(f.Name); exists {
		return fmt.Errorf("%w: %q", ErrDuplicateField, f.Name)
	}
	f.Validation.Normalize()
	r.Fields.Set(f.Name, f)
	return nil
}

// EachField calls fn for every field in declaration order.
func (r *Record) EachField(fn func(f *Field)) {
	if r == nil || r.Fields == nil {
		return
	}
	for pair := r.Fields.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Value)
	}
}

// AllCollected reports whether every field holds a value. A record without
// fields is complete.
func (r *Record) AllCollected() bool {
	return len(r.Missing()) == 0
}

// RequiredCollected reports whether every field that is neither confidential
// nor conclude holds a value.
func (r *Record) RequiredCollected() bool {
	return len(r.MissingRequired()) == 0
}

// Missing returns the names of fields without a value.
func (r *Record) Missing() []string {
	var out []string
	r.EachField(func(f *Field) {
		if !f.Collected() {
			out = append(out, f.Name)
		}
	})
	return out
}

// MissingRequired returns the names of user-facing fields without a value.
func (r *Record) MissingRequired() []string {
	var out []string
	r.EachField(func(f *Field) {
		if f.Required() && !f.Collected() {
			out = append(out, f.Name)
		}
	})
	return out
}

// ActivateTrait flips a declared possible trait of the given role to active.
// It reports whether the trait changed state.
func (r *Record) ActivateTrait(roleKey, name string) (bool, error) {
	role, err := r.Role(roleKey)
	if err != nil {
		return false, err
	}
	if role == nil || role.PossibleTraits == nil {
		return false, fmt.Errorf("%w: %s.%s", ErrUnknownTrait, roleKey, name)
	}
	trait, ok := role.PossibleTraits.Get(name)
	if !ok {
		return false, fmt.Errorf("%w: %s.%s", ErrUnknownTrait, roleKey, name)
	}
	if trait.Active {
		return false, nil
	}
	trait.Active = true
	return true, nil
}

// ActiveTraits returns the role's traits followed by its active possible traits,
// each in declaration order.
func (role *Role) ActiveTraits() []string {
	if role == nil {
		return nil
	}
	out := append([]string(nil), role.Traits...)
	if role.PossibleTraits == nil {
		return out
	}
	for pair := role.PossibleTraits.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.Active {
			out = append(out, pair.Key)
		}
	}
	return out
}

// View returns the read view of a collected field. Only the declared casts of
// the field are reachable through it.
func (r *Record) View(name string) (View, error) {
	f, ok := r.Field(name)
	if !ok {
		return View{}, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	if !f.Collected() {
		return View{}, fmt.Errorf("%w: %q", ErrNotCollected, name)
	}
	payload := make(Payload, len(f.Value))
	for _, key := range []string{KeyValue, KeyContext, KeyQuote} {
		if v, ok := f.Value[key]; ok {
			payload[key] = v
		}
	}
	f.EachCast(func(castName string, _ *Cast) {
		if v, ok := f.Value[castName]; ok {
			payload[castName] = v
		}
	})
	return NewView(f.Value.Value(), payload), nil
}

// Clone returns a deep copy that shares no mutable state with r.
func (r *Record) Clone() (*Record, error) {
	data, err := sonic.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	var out Record
	if err := sonic.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	out.ensureMaps()
	return &out, nil
}

func (r *Record) ensureMaps() {
	if r.Initiator == nil {
		r.Initiator = newRole()
	}
	if r.Respondent == nil {
		r.Respondent = newRole()
	}
	for _, role := range []*Role{r.Initiator, r.Respondent} {
		if role.PossibleTraits == nil {
			role.PossibleTraits = orderedmap.New[string, *PossibleTrait]()
		}
	}
	if r.Fields == nil {
		r.Fields = orderedmap.New[string, *Field]()
	}
	r.EachField(func(f *Field) {
		if f.Casts == nil {
			f.Casts = orderedmap.New[string, *Cast]()
		}
	})
}
