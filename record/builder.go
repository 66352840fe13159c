package record

import (
	"fmt"
	"slices"
)

// Cast base names understood by FieldBuilder.
const (
	CastInt         = "as_int"
	CastFloat       = "as_float"
	CastStr         = "as_str"
	CastBool        = "as_bool"
	CastList        = "as_list"
	CastSet         = "as_set"
	CastDict        = "as_dict"
	CastOne         = "as_one"
	CastOptionalOne = "as_optional_one"
	CastMultiple    = "as_multiple"
)

// Tool-argument names for choice casts, one per cardinality.
const (
	ArgExactlyOne = "choose_exactly_one"
	ArgAtMostOne  = "choose_at_most_one"
	ArgAnyOf      = "choose_any_of"
)

// Builder accumulates a record description. Every method returns a new
// Builder; the receiver is never modified, so partial builders can be shared
// and extended independently. The first error is kept and returned by Build.
type Builder struct {
	typeName    string
	description string
	initiator   roleSpec
	respondent  roleSpec
	fields      []FieldBuilder
	err         error
}

type roleSpec struct {
	label    string
	traits   []string
	possible []possibleSpec
}

type possibleSpec struct {
	name    string
	trigger string
}

func NewBuilder(typeName, description string) Builder {
	return Builder{typeName: typeName, description: description}
}

func (b Builder) Initiator(label string, traits ...string) Builder {
	return b.setRole(RoleInitiator, label, traits)
}

func (b Builder) Respondent(label string, traits ...string) Builder {
	return b.setRole(RoleRespondent, label, traits)
}

func (b Builder) setRole(key, label string, traits []string) Builder {
	return b.withRole(key, func(rs roleSpec) (roleSpec, error) {
		if label != "" && rs.label != "" && rs.label != label {
			return rs, fmt.Errorf("%w: %s is %q, not %q", ErrRoleConflict, key, rs.label, label)
		}
		if label != "" {
			rs.label = label
		}
		rs.traits = append(slices.Clip(rs.traits), traits...)
		return rs, nil
	})
}

// Trait appends an always-true trait to a role.
func (b Builder) Trait(roleKey, trait string) Builder {
	return b.withRole(roleKey, func(rs roleSpec) (roleSpec, error) {
		rs.traits = append(slices.Clip(rs.traits), trait)
		return rs, nil
	})
}

// PossibleTrait declares an inactive trait that may be activated during the
// conversation when trigger is observed.
func (b Builder) PossibleTrait(roleKey, name, trigger string) Builder {
	return b.withRole(roleKey, func(rs roleSpec) (roleSpec, error) {
		if name == "" {
			return rs, fmt.Errorf("possible trait: %w", ErrEmptyName)
		}
		rs.possible = append(slices.Clip(rs.possible), possibleSpec{name: name, trigger: trigger})
		return rs, nil
	})
}

func (b Builder) withRole(key string, fn func(roleSpec) (roleSpec, error)) Builder {
	if b.err != nil {
		return b
	}
	var (
		rs  roleSpec
		err error
	)
	switch key {
	case RoleInitiator:
		rs, err = fn(b.initiator)
		b.initiator = rs
	case RoleRespondent:
		rs, err = fn(b.respondent)
		b.respondent = rs
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownRole, key)
	}
	b.err = err
	return b
}

func (b Builder) Field(f FieldBuilder) Builder {
	if b.err != nil {
		return b
	}
	b.fields = append(slices.Clip(b.fields), f)
	return b
}

// Build returns a fresh record, or the first error met while building.
func (b Builder) Build() (*Record, error) {
	if b.err != nil {
		return nil, b.err
	}
	rec := New(b.typeName, b.description)
	for _, pair := range []struct {
		spec roleSpec
		role *Role
	}{{b.initiator, rec.Initiator}, {b.respondent, rec.Respondent}} {
		pair.role.TypeLabel = pair.spec.label
		pair.role.Traits = slices.Clone(pair.spec.traits)
		for _, p := range pair.spec.possible {
			pair.role.PossibleTraits.Set(p.name, &PossibleTrait{TriggerDescription: p.trigger})
		}
	}
	for _, fb := range b.fields {
		f, err := fb.Build()
		if err != nil {
			return nil, err
		}
		if err := rec.AddField(f); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// FieldBuilder accumulates one field. Like Builder it is a value type.
type FieldBuilder struct {
	name        string
	description string
	validation  Validation
	casts       []castSpec
	err         error
}

type castSpec struct {
	base string
	sub  string
	cast Cast
}

func NewField(name, description string) FieldBuilder {
	fb := FieldBuilder{name: name, description: description}
	if name == "" {
		fb.err = fmt.Errorf("field: %w", ErrEmptyName)
	}
	return fb
}

func (fb FieldBuilder) Must(rules ...string) FieldBuilder {
	fb.validation.Must = append(slices.Clip(fb.validation.Must), rules...)
	return fb
}

func (fb FieldBuilder) Reject(rules ...string) FieldBuilder {
	fb.validation.Reject = append(slices.Clip(fb.validation.Reject), rules...)
	return fb
}

// Hint stores guidance that is kept on the field but never sent to the model.
func (fb FieldBuilder) Hint(hints ...string) FieldBuilder {
	fb.validation.Hint = append(slices.Clip(fb.validation.Hint), hints...)
	return fb
}

func (fb FieldBuilder) Confidential() FieldBuilder {
	fb.validation.Confidential = true
	return fb
}

// Conclude marks the field for evaluation once the rest of the record is
// complete. It implies Confidential.
func (fb FieldBuilder) Conclude() FieldBuilder {
	fb.validation.Conclude = true
	fb.validation.Confidential = true
	return fb
}

// Cast registers a cast under CastName(base, sub).
func (fb FieldBuilder) Cast(base, sub string, c Cast) FieldBuilder {
	if fb.err != nil {
		return fb
	}
	name := CastName(base, sub)
	for _, existing := range fb.casts {
		if collides(name, &c, CastName(existing.base, existing.sub), &existing.cast) {
			fb.err = fmt.Errorf("field %q: %w: %q", fb.name, ErrDuplicateCast, name)
			return fb
		}
	}
	if err := c.validate(); err != nil {
		fb.err = fmt.Errorf("field %q cast %q: %w", fb.name, name, err)
		return fb
	}
	c.Choices = slices.Clone(c.Choices)
	fb.casts = append(slices.Clip(fb.casts), castSpec{base: base, sub: sub, cast: c})
	return fb
}

func (fb FieldBuilder) AsInt(prompt string) FieldBuilder {
	return fb.Cast(CastInt, "", Cast{Type: TypeInteger, Prompt: prompt})
}

func (fb FieldBuilder) AsFloat(prompt string) FieldBuilder {
	return fb.Cast(CastFloat, "", Cast{Type: TypeFloat, Prompt: prompt})
}

func (fb FieldBuilder) AsStr(prompt string) FieldBuilder {
	return fb.Cast(CastStr, "", Cast{Type: TypeString, Prompt: prompt})
}

func (fb FieldBuilder) AsBool(sub, prompt string) FieldBuilder {
	return fb.Cast(CastBool, sub, Cast{Type: TypeBoolean, Prompt: prompt})
}

func (fb FieldBuilder) AsList(prompt string) FieldBuilder {
	return fb.Cast(CastList, "", Cast{Type: TypeList, Prompt: prompt})
}

func (fb FieldBuilder) AsSet(prompt string) FieldBuilder {
	return fb.Cast(CastSet, "", Cast{Type: TypeSet, Prompt: prompt})
}

func (fb FieldBuilder) AsDict(prompt string) FieldBuilder {
	return fb.Cast(CastDict, "", Cast{Type: TypeMapping, Prompt: prompt})
}

// AsOne asks for exactly one of choices.
func (fb FieldBuilder) AsOne(sub, prompt string, choices ...string) FieldBuilder {
	return fb.Cast(CastOne, sub, Cast{
		Type:      TypeChoice,
		Prompt:    prompt,
		Choices:   choices,
		Canonical: CastName(ArgExactlyOne, sub),
	})
}

// AsOptionalOne asks for at most one of choices; null means none applies.
func (fb FieldBuilder) AsOptionalOne(sub, prompt string, choices ...string) FieldBuilder {
	return fb.Cast(CastOptionalOne, sub, Cast{
		Type:      TypeChoice,
		Prompt:    prompt,
		Choices:   choices,
		Nullable:  true,
		Canonical: CastName(ArgAtMostOne, sub),
	})
}

// AsMultiple asks for any subset of choices.
func (fb FieldBuilder) AsMultiple(sub, prompt string, choices ...string) FieldBuilder {
	return fb.Cast(CastMultiple, sub, Cast{
		Type:      TypeChoice,
		Prompt:    prompt,
		Choices:   choices,
		Multi:     true,
		Canonical: CastName(ArgAnyOf, sub),
	})
}

func (fb FieldBuilder) Build() (*Field, error) {
	if fb.err != nil {
		return nil, fb.err
	}
	f := newField(fb.name, fb.description)
	f.Validation = Validation{
		Must:         slices.Clone(fb.validation.Must),
		Reject:       slices.Clone(fb.validation.Reject),
		Hint:         slices.Clone(fb.validation.Hint),
		Confidential: fb.validation.Confidential,
		Conclude:     fb.validation.Conclude,
	}
	f.Validation.Normalize()
	for _, cs := range fb.casts {
		if err := f.AddCast(cs.base, cs.sub, cs.cast); err != nil {
			return nil, err
		}
	}
	return f, nil
}
