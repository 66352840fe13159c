package record

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dinnerBuilder() Builder {
	return NewBuilder("DinnerOrder", "Collect a dinner order from a guest.").
		Initiator("waiter", "polite", "brief").
		Respondent("guest").
		PossibleTrait(RoleRespondent, "allergic", "the guest mentions a food allergy").
		Field(NewField("starter", "The starter the guest picks.").
			AsOne("", "Pick the starter.", "Garden salad", "Tomato soup", "Bruschetta")).
		Field(NewField("dessert", "The dessert the guest picks.").
			AsOne("", "Pick the dessert.", "Fruit sorbet", "Cheesecake", "Tiramisu"))
}

func TestAllCollectedWithoutFields(t *testing.T) {
	rec, err := NewBuilder("Empty", "nothing to collect").Build()
	require.NoError(t, err)
	assert.True(t, rec.AllCollected())
	assert.True(t, rec.RequiredCollected())
	assert.Empty(t, rec.Missing())
}

func TestAllCollected(t *testing.T) {
	rec, err := dinnerBuilder().Build()
	require.NoError(t, err)
	assert.False(t, rec.AllCollected())
	assert.Equal(t, []string{"starter", "dessert"}, rec.Missing())

	starter, _ := rec.Field("starter")
	starter.Value = Payload{KeyValue: "Garden salad"}
	assert.False(t, rec.AllCollected())

	dessert, _ := rec.Field("dessert")
	dessert.Value = Payload{KeyValue: "Fruit sorbet"}
	assert.True(t, rec.AllCollected())
}

func TestRequiredCollectedIgnoresConfidential(t *testing.T) {
	rec, err := NewBuilder("Visit", "").
		Field(NewField("name", "Guest name")).
		Field(NewField("mood", "How the guest feels").Confidential()).
		Field(NewField("summary", "Overall summary").Conclude()).
		Build()
	require.NoError(t, err)

	name, _ := rec.Field("name")
	name.Value = Payload{KeyValue: "Ada"}

	assert.True(t, rec.RequiredCollected())
	assert.False(t, rec.AllCollected())
	assert.Empty(t, rec.MissingRequired())
	assert.Equal(t, []string{"mood", "summary"}, rec.Missing())
}

func TestConcludeImpliesConfidential(t *testing.T) {
	rec, err := NewBuilder("Visit", "").
		Field(NewField("summary", "").Conclude()).
		Build()
	require.NoError(t, err)
	f, _ := rec.Field("summary")
	assert.True(t, f.Validation.Conclude)
	assert.True(t, f.Validation.Confidential)

	direct := &Field{Name: "late", Validation: Validation{Conclude: true}}
	require.NoError(t, rec.AddField(direct))
	assert.True(t, direct.Validation.Confidential)
}

func TestCloneIsolation(t *testing.T) {
	template, err := dinnerBuilder().Build()
	require.NoError(t, err)

	a, err := template.Clone()
	require.NoError(t, err)
	b, err := template.Clone()
	require.NoError(t, err)

	fa, _ := a.Field("starter")
	fa.Value = Payload{KeyValue: "Bruschetta"}
	_, err = a.ActivateTrait(RoleRespondent, "allergic")
	require.NoError(t, err)

	fb, _ := b.Field("starter")
	assert.Nil(t, fb.Value)
	ft, _ := template.Field("starter")
	assert.Nil(t, ft.Value)

	trait, _ := b.Respondent.PossibleTraits.Get("allergic")
	assert.False(t, trait.Active)
}

func TestClonePreservesOrder(t *testing.T) {
	template, err := dinnerBuilder().Build()
	require.NoError(t, err)
	clone, err := template.Clone()
	require.NoError(t, err)

	var names []string
	clone.EachField(func(f *Field) { names = append(names, f.Name) })
	assert.Equal(t, []string{"starter", "dessert"}, names)

	starter, _ := clone.Field("starter")
	c, ok := starter.Casts.Get("as_one")
	require.True(t, ok)
	if diff := cmp.Diff([]string{"Garden salad", "Tomato soup", "Bruschetta"}, c.Choices); diff != "" {
		t.Fatalf("choices mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "choose_exactly_one", c.ArgName("as_one"))
}

func TestCastNameComposition(t *testing.T) {
	f := newField("number", "A number")
	require.NoError(t, f.AddCast(CastBool, "even", Cast{Type: TypeBoolean}))
	_, ok := f.Casts.Get("as_bool_even")
	assert.True(t, ok)

	err := f.AddCast(CastBool, "even", Cast{Type: TypeBoolean})
	assert.ErrorIs(t, err, ErrDuplicateCast)
	assert.Equal(t, 1, f.Casts.Len())

	require.NoError(t, f.AddCast(CastOne, "", Cast{Type: TypeChoice, Choices: []string{"a"}, Canonical: "choose_exactly_one"}))
	err = f.AddCast("choose_exactly_one", "", Cast{Type: TypeString})
	assert.ErrorIs(t, err, ErrDuplicateCast)
	assert.Equal(t, 2, f.Casts.Len())
}

func TestBuilderErrors(t *testing.T) {
	tests := []struct {
		name    string
		builder Builder
		want    error
	}{
		{
			name: "duplicate cast",
			builder: NewBuilder("R", "").Field(NewField("n", "").
				AsBool("even", "").AsBool("even", "")),
			want: ErrDuplicateCast,
		},
		{
			name: "cast named like another's argument",
			builder: NewBuilder("R", "").Field(NewField("n", "").
				Cast("choose_exactly_one", "", Cast{Type: TypeChoice, Choices: []string{"a"}}).
				AsOne("", "", "a")),
			want: ErrDuplicateCast,
		},
		{
			name:    "unsupported type",
			builder: NewBuilder("R", "").Field(NewField("n", "").Cast("as_date", "", Cast{Type: "date"})),
			want:    ErrUnsupportedType,
		},
		{
			name:    "choice without choices",
			builder: NewBuilder("R", "").Field(NewField("n", "").AsOne("", "")),
			want:    ErrNoChoices,
		},
		{
			name:    "role conflict",
			builder: NewBuilder("R", "").Initiator("waiter").Initiator("chef"),
			want:    ErrRoleConflict,
		},
		{
			name:    "unknown role",
			builder: NewBuilder("R", "").Trait("narrator", "calm"),
			want:    ErrUnknownRole,
		},
		{
			name:    "duplicate field",
			builder: NewBuilder("R", "").Field(NewField("n", "")).Field(NewField("n", "")),
			want:    ErrDuplicateField,
		},
		{
			name:    "empty field name",
			builder: NewBuilder("R", "").Field(NewField("", "")),
			want:    ErrEmptyName,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := tt.builder.Build()
			assert.Nil(t, rec)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBuilderDoesNotShareState(t *testing.T) {
	base := NewBuilder("R", "").Initiator("waiter", "polite")
	left, err := base.Trait(RoleInitiator, "formal").Field(NewField("a", "")).Build()
	require.NoError(t, err)
	right, err := base.Trait(RoleInitiator, "casual").Field(NewField("b", "")).Build()
	require.NoError(t, err)

	assert.Equal(t, []string{"polite", "formal"}, left.Initiator.Traits)
	assert.Equal(t, []string{"polite", "casual"}, right.Initiator.Traits)
	assert.Equal(t, []string{"a"}, left.Missing())
	assert.Equal(t, []string{"b"}, right.Missing())

	again, err := base.Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"polite"}, again.Initiator.Traits)
	assert.Equal(t, 0, again.Fields.Len())
}

func TestActivateTrait(t *testing.T) {
	rec, err := dinnerBuilder().Build()
	require.NoError(t, err)
	assert.Empty(t, rec.Respondent.ActiveTraits())

	changed, err := rec.ActivateTrait(RoleRespondent, "allergic")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"allergic"}, rec.Respondent.ActiveTraits())

	changed, err = rec.ActivateTrait(RoleRespondent, "allergic")
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = rec.ActivateTrait(RoleRespondent, "vegan")
	assert.ErrorIs(t, err, ErrUnknownTrait)
	_, err = rec.ActivateTrait("narrator", "allergic")
	assert.ErrorIs(t, err, ErrUnknownRole)
}
