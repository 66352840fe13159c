package convoform

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbxark/convoform/internal/modeltest"
	"github.com/tbxark/convoform/record"
)

func TestNew(t *testing.T) {
	b := NewBuilder("Number", "Ask for a number.").
		Field(NewField("number", "").AsInt("the number").AsBool("even", "is it even"))
	m := modeltest.New(
		modeltest.Say("Pick a number."),
		modeltest.Calling("Thanks!", modeltest.ToolCall("c1", "number",
			`{"value":"12","conversation_context":"N/A","quote":"twelve","as_int":12,"as_bool_even":true}`)),
	)
	o, err := New(b, m)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = o.Advance(ctx, "t1", nil)
	require.NoError(t, err)
	answer := "twelve"
	msg, err := o.Advance(ctx, "t1", &answer)
	require.NoError(t, err)
	assert.Equal(t, "Thanks!", msg.Content)

	rec, err := o.Record(ctx, "t1")
	require.NoError(t, err)
	v, err := rec.View("number")
	require.NoError(t, err)
	even, err := v.Bool("as_bool_even")
	require.NoError(t, err)
	assert.True(t, even)
}

func TestNewBuildError(t *testing.T) {
	b := NewBuilder("Broken", "").Field(NewField("", ""))
	_, err := New(b, modeltest.New())
	require.ErrorIs(t, err, record.ErrEmptyName)
}
