// Package convoform fills in structured records through a conversation with a
// language model. Describe the record with NewBuilder, then drive threads with
// the Orchestrator returned by New.
package convoform

import (
	"fmt"

	"github.com/cloudwego/eino/components/model"

	"github.com/tbxark/convoform/agent"
	"github.com/tbxark/convoform/record"
)

type (
	Record       = record.Record
	Builder      = record.Builder
	FieldBuilder = record.FieldBuilder
	Payload      = record.Payload
	View         = record.View
	Orchestrator = agent.Orchestrator
	Option       = agent.Option
	State        = agent.State
)

func NewBuilder(typeName, description string) Builder {
	return record.NewBuilder(typeName, description)
}

func NewField(name, description string) FieldBuilder {
	return record.NewField(name, description)
}

// New builds the record described by b and returns an orchestrator for it.
func New(b Builder, chatModel model.ToolCallingChatModel, opts ...Option) (*Orchestrator, error) {
	rec, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("build record: %w", err)
	}
	return agent.New(rec, chatModel, opts...)
}

// NewAgent is New wrapped as an adk agent.
func NewAgent(name, description string, b Builder, chatModel model.ToolCallingChatModel, opts ...Option) (*agent.Agent, error) {
	o, err := New(b, chatModel, opts...)
	if err != nil {
		return nil, err
	}
	return agent.NewAgent(name, description, o), nil
}
