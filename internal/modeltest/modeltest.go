// Package modeltest provides a scripted chat model for tests.
package modeltest

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

var ErrExhausted = errors.New("modeltest: no scripted reply left")

var _ model.ToolCallingChatModel = (*Model)(nil)

// Call is one recorded Generate or Stream invocation.
type Call struct {
	Messages []*schema.Message
	Tools    []*schema.ToolInfo
	Options  *model.Options
}

type reply struct {
	msg *schema.Message
	err error
}

type script struct {
	mu      sync.Mutex
	replies []reply
	calls   []Call
}

// Model answers each call with the next scripted reply. Models returned by
// WithTools share the script of their parent.
type Model struct {
	script *script
	tools  []*schema.ToolInfo
}

func New(replies ...*schema.Message) *Model {
	m := &Model{script: &script{}}
	m.Push(replies...)
	return m
}

func (m *Model) Push(replies ...*schema.Message) *Model {
	m.script.mu.Lock()
	defer m.script.mu.Unlock()
	for _, r := range replies {
		m.script.replies = append(m.script.replies, reply{msg: r})
	}
	return m
}

// Fail scripts an error reply.
func (m *Model) Fail(err error) *Model {
	m.script.mu.Lock()
	defer m.script.mu.Unlock()
	m.script.replies = append(m.script.replies, reply{err: err})
	return m
}

func (m *Model) Calls() []Call {
	m.script.mu.Lock()
	defer m.script.mu.Unlock()
	return slices.Clone(m.script.calls)
}

// Remaining is the number of scripted replies not yet consumed.
func (m *Model) Remaining() int {
	m.script.mu.Lock()
	defer m.script.mu.Unlock()
	return len(m.script.replies)
}

func (m *Model) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	options := model.GetCommonOptions(&model.Options{Tools: m.tools}, opts...)
	m.script.mu.Lock()
	defer m.script.mu.Unlock()
	m.script.calls = append(m.script.calls, Call{
		Messages: slices.Clone(input),
		Tools:    options.Tools,
		Options:  options,
	})
	if len(m.script.replies) == 0 {
		return nil, ErrExhausted
	}
	next := m.script.replies[0]
	m.script.replies = m.script.replies[1:]
	return next.msg, next.err
}

func (m *Model) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (m *Model) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return &Model{script: m.script, tools: tools}, nil
}

// ToolCall builds a function call as a model would return it.
func ToolCall(id, name, arguments string) schema.ToolCall {
	return schema.ToolCall{
		ID:       id,
		Type:     "function",
		Function: schema.FunctionCall{Name: name, Arguments: arguments},
	}
}

// Calling is an assistant message carrying tool calls.
func Calling(content string, calls ...schema.ToolCall) *schema.Message {
	return schema.AssistantMessage(content, calls)
}

// Say is a plain assistant reply.
func Say(content string) *schema.Message {
	return schema.AssistantMessage(content, nil)
}
