package indent

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbxark/convoform/internal/modeltest"
	"github.com/tbxark/convoform/record"
)

func guestRecord(t *testing.T) *record.Record {
	t.Helper()
	rec, err := record.NewBuilder("Dinner", "").
		Initiator("waiter").
		Respondent("guest").
		PossibleTrait(record.RoleRespondent, "allergic", "the guest mentions a food allergy").
		PossibleTrait(record.RoleRespondent, "rushed", "the guest says they are short on time").
		PossibleTrait(record.RoleInitiator, "apologetic", "the kitchen is out of a dish").
		Build()
	require.NoError(t, err)
	return rec
}

func TestCandidates(t *testing.T) {
	rec := guestRecord(t)
	_, err := rec.ActivateTrait(record.RoleRespondent, "rushed")
	require.NoError(t, err)

	var keys []string
	for _, c := range Candidates(rec) {
		keys = append(keys, c.Key())
	}
	assert.Equal(t, []string{"initiator.apologetic", "respondent.allergic"}, keys)
}

func TestKeywordDetector(t *testing.T) {
	d := NewKeywordDetector(map[string][]string{
		"allergic": {"allergy", "allergic"},
		"rushed":   {"in a hurry"},
	})
	out, err := d.DetectTraits(context.Background(), &Request{
		Record: guestRecord(t),
		Messages: []*schema.Message{
			schema.AssistantMessage("What would you like?", nil),
			schema.UserMessage("I have a nut ALLERGY, and I'm in a hurry."),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []Activation{
		{Role: record.RoleRespondent, Trait: "allergic"},
		{Role: record.RoleRespondent, Trait: "rushed"},
	}, out)
}

func TestToolBasedDetector(t *testing.T) {
	m := modeltest.New(modeltest.Calling("", modeltest.ToolCall("1", "detect_traits",
		`{"activated":["respondent.allergic","respondent.vegan"]}`)))
	d, err := NewToolBasedDetector(m)
	require.NoError(t, err)

	out, err := d.DetectTraits(context.Background(), &Request{
		Record:   guestRecord(t),
		Messages: []*schema.Message{schema.UserMessage("no peanuts please, I react badly")},
	})
	require.NoError(t, err)
	assert.Equal(t, []Activation{{Role: record.RoleRespondent, Trait: "allergic"}}, out)

	calls := m.Calls()
	require.Len(t, calls, 1)
	prompt := calls[0].Messages[1].Content
	assert.Contains(t, prompt, "- respondent.allergic: the guest mentions a food allergy")
	assert.Contains(t, prompt, "user: no peanuts please, I react badly")
}

func TestToolBasedDetectorEnumListsInactiveTraits(t *testing.T) {
	rec := guestRecord(t)
	_, err := rec.ActivateTrait(record.RoleRespondent, "rushed")
	require.NoError(t, err)
	m := modeltest.New(modeltest.Calling("", modeltest.ToolCall("1", "detect_traits", `{"activated":[]}`)))
	d, err := NewToolBasedDetector(m)
	require.NoError(t, err)

	_, err = d.DetectTraits(context.Background(), &Request{Record: rec})
	require.NoError(t, err)

	calls := m.Calls()
	require.Len(t, calls, 1)
	require.Len(t, calls[0].Tools, 1)
	js, err := calls[0].Tools[0].ParamsOneOf.ToJSONSchema()
	require.NoError(t, err)
	activated, ok := js.Properties.Get("activated")
	require.True(t, ok)
	assert.Equal(t, []any{"initiator.apologetic", "respondent.allergic"}, activated.Items.Enum)
	assert.Equal(t, []string{"activated"}, js.Required)
}

func TestToolBasedDetectorSkipsWithoutCandidates(t *testing.T) {
	rec, err := record.NewBuilder("Plain", "").Build()
	require.NoError(t, err)
	m := modeltest.New()
	d, err := NewToolBasedDetector(m)
	require.NoError(t, err)

	out, err := d.DetectTraits(context.Background(), &Request{Record: rec})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Empty(t, m.Calls())
}

type failing struct{}

func (failing) DetectTraits(context.Context, *Request) ([]Activation, error) {
	return nil, errors.New("offline")
}

func TestFailbackDetector(t *testing.T) {
	d := NewFailbackDetector(failing{}, NewKeywordDetector(map[string][]string{"allergic": {"allergy"}}))
	out, err := d.DetectTraits(context.Background(), &Request{
		Record:   guestRecord(t),
		Messages: []*schema.Message{schema.UserMessage("allergy to shellfish")},
	})
	require.NoError(t, err)
	assert.Len(t, out, 1)

	_, err = NewFailbackDetector(failing{}).DetectTraits(context.Background(), &Request{Record: guestRecord(t)})
	assert.ErrorContains(t, err, "offline")
}
