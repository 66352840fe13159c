package agent

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbxark/convoform/internal/modeltest"
)

func drain(iter *adk.AsyncIterator[*adk.AgentEvent]) []*adk.AgentEvent {
	var out []*adk.AgentEvent
	for {
		event, ok := iter.Next()
		if !ok {
			return out
		}
		out = append(out, event)
	}
}

func TestAgentRun(t *testing.T) {
	m := modeltest.New(modeltest.Say("Hi, who is this for?"), modeltest.Say("Noted."))
	o, err := New(reservation(t), m)
	require.NoError(t, err)
	a := NewAgent("Booker", "books tables", o)
	assert.Equal(t, "Booker", a.Name(context.Background()))

	ctx := WithThreadID(context.Background(), "t1")
	events := drain(a.Run(ctx, &adk.AgentInput{}))
	require.Len(t, events, 1)
	require.NoError(t, events[0].Err)
	msg, err := events[0].Output.MessageOutput.GetMessage()
	require.NoError(t, err)
	assert.Equal(t, "Hi, who is this for?", msg.Content)

	events = drain(a.Run(ctx, &adk.AgentInput{Messages: []adk.Message{
		schema.AssistantMessage("Hi, who is this for?", nil),
		schema.UserMessage("Ada"),
	}}))
	require.Len(t, events, 1)
	require.NoError(t, events[0].Err)

	calls := m.Calls()
	require.Len(t, calls, 2)
	last := calls[1].Messages[len(calls[1].Messages)-1]
	assert.Equal(t, "Ada", last.Content)
}

func TestAgentRunWithoutThread(t *testing.T) {
	o, err := New(reservation(t), modeltest.New())
	require.NoError(t, err)
	events := drain(NewAgent("Booker", "", o).Run(context.Background(), &adk.AgentInput{}))
	require.Len(t, events, 1)
	assert.ErrorIs(t, events[0].Err, ErrNoThread)
}

func TestAgentWithRunner(t *testing.T) {
	m := modeltest.New(modeltest.Say("Hello from the host."))
	o, err := New(reservation(t), m)
	require.NoError(t, err)
	ctx := WithThreadID(context.Background(), "t1")
	runner := adk.NewRunner(ctx, adk.RunnerConfig{Agent: NewAgent("Booker", "", o)})

	events := drain(runner.Run(ctx, []adk.Message{schema.UserMessage("hello")}))
	require.NotEmpty(t, events)
	require.NoError(t, events[0].Err)
	msg, err := events[0].Output.MessageOutput.GetMessage()
	require.NoError(t, err)
	assert.Equal(t, "Hello from the host.", msg.Content)
}
