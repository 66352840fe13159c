package agent

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"
)

var _ adk.Agent = (*Agent)(nil)

// Agent exposes an Orchestrator as an adk.Agent. The thread is taken from the
// run context, see WithThreadID, and the last user message of the input is the
// human turn.
type Agent struct {
	name         string
	description  string
	orchestrator *Orchestrator
}

func NewAgent(name, description string, o *Orchestrator) *Agent {
	return &Agent{
		name:         name,
		description:  description,
		orchestrator: o,
	}
}

func (a *Agent) Name(ctx context.Context) string {
	return a.name
}

func (a *Agent) Description(ctx context.Context) string {
	return a.description
}

func (a *Agent) Run(ctx context.Context, input *adk.AgentInput, options ...adk.AgentRunOption) *adk.AsyncIterator[*adk.AgentEvent] {
	iter, gen := adk.NewAsyncIteratorPair[*adk.AgentEvent]()
	go func() {
		defer func() {
			e := recover()
			if e != nil {
				gen.Send(&adk.AgentEvent{
					Err: fmt.Errorf("recover from panic: %v", e),
				})
			}
			gen.Close()
		}()
		threadID, ok := ThreadIDFromContext(ctx)
		if !ok {
			gen.Send(&adk.AgentEvent{Err: ErrNoThread})
			return
		}
		resp, err := a.orchestrator.Advance(ctx, threadID, humanTurn(input))
		if err != nil {
			gen.Send(&adk.AgentEvent{
				Err: fmt.Errorf("advance thread %s: %w", threadID, err),
			})
			return
		}
		if resp == nil {
			return
		}
		gen.Send(&adk.AgentEvent{
			AgentName: a.name,
			Output: &adk.AgentOutput{
				MessageOutput: &adk.MessageVariant{
					IsStreaming: false,
					Message:     resp,
					Role:        schema.Assistant,
				},
			},
		})
	}()
	return iter
}

func humanTurn(input *adk.AgentInput) *string {
	if input == nil {
		return nil
	}
	for i := len(input.Messages) - 1; i >= 0; i-- {
		if m := input.Messages[i]; m != nil && m.Role == schema.User {
			return &m.Content
		}
	}
	return nil
}
