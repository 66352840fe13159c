package testcases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbxark/convoform"
	"github.com/tbxark/convoform/agent"
	"github.com/tbxark/convoform/record"
)

func numberRecord() convoform.Builder {
	return convoform.NewBuilder("Number", "Ask the user for a whole number.").
		Initiator("curious assistant").
		Respondent("user").
		Field(convoform.NewField("number", "A whole number the user likes").
			AsInt("the number").
			AsBool("even", "true when the number is even"))
}

// TestCollectsInOneTurn gives every value in a single reply.
func TestCollectsInOneTurn(t *testing.T) {
	t.Parallel()
	cm := InitChatModel(t)
	ctx := context.Background()
	o, err := convoform.New(numberRecord(), cm)
	require.NoError(t, err)

	thread := agent.NewThreadID()
	msg, err := o.Advance(ctx, thread, nil)
	require.NoError(t, err)
	t.Logf("assistant: %v", msg)

	answer := "My favourite number is 12."
	_, err = o.Advance(ctx, thread, &answer)
	require.NoError(t, err)

	rec, err := o.Record(ctx, thread)
	require.NoError(t, err)
	require.True(t, rec.AllCollected(), "missing: %v", rec.Missing())
	v, err := rec.View("number")
	require.NoError(t, err)
	n, err := v.Int(record.CastInt)
	require.NoError(t, err)
	assert.EqualValues(t, 12, n)
	even, err := v.Bool("as_bool_even")
	require.NoError(t, err)
	assert.True(t, even)
}

// TestCollectsChoiceAcrossTurns answers over two turns and reads a choice cast.
func TestCollectsChoiceAcrossTurns(t *testing.T) {
	t.Parallel()
	cm := InitChatModel(t)
	ctx := context.Background()
	b := convoform.NewBuilder("Drink", "Take a drink order.").
		Field(convoform.NewField("name", "The customer's first name")).
		Field(convoform.NewField("drink", "The drink ordered").
			AsOne("", "the drink", "Coffee", "Tea", "Water"))
	o, err := convoform.New(b, cm)
	require.NoError(t, err)

	thread := agent.NewThreadID()
	for _, reply := range []string{"Hi, I'm Lin.", "A cup of tea please."} {
		r := reply
		_, err = o.Advance(ctx, thread, &r)
		require.NoError(t, err)
	}
	rec, err := o.Record(ctx, thread)
	require.NoError(t, err)
	require.True(t, rec.AllCollected(), "missing: %v", rec.Missing())
	v, err := rec.View("drink")
	require.NoError(t, err)
	drink, err := v.Text(record.CastOne)
	require.NoError(t, err)
	assert.Equal(t, "Tea", drink)
}
