package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbxark/convoform/dialogue"
	"github.com/tbxark/convoform/indent"
	"github.com/tbxark/convoform/patch"
	"github.com/tbxark/convoform/record"
	"github.com/tbxark/convoform/toolschema"
	"github.com/tbxark/convoform/types"
)

var ErrStepBudget = errors.New("model step budget exhausted")

// commitErrorKey marks tool results that carry a commit error.
const commitErrorKey = "commit_error"

// Orchestrator drives conversation threads that fill in copies of one record
// template. Thread state lives in the configured store, so any number of
// orchestrators sharing a store can serve the same threads.
type Orchestrator struct {
	template  *record.Record
	chatModel model.ToolCallingChatModel
	toolModel model.ToolCallingChatModel
	tools     []*schema.ToolInfo
	store     Store[*State]
	opts      options
}

func New(template *record.Record, chatModel model.ToolCallingChatModel, opts ...Option) (*Orchestrator, error) {
	if template == nil {
		return nil, fmt.Errorf("orchestrator: template cannot be nil")
	}
	if chatModel == nil {
		return nil, fmt.Errorf("orchestrator: chat model cannot be nil")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.cache == nil {
		o.cache = NewMemoryCache[*State](StateCodec{})
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer("convoform.agent")
	}

	tpl, err := template.Clone()
	if err != nil {
		return nil, fmt.Errorf("orchestrator: clone template: %w", err)
	}
	if err := patch.Prefill(tpl, o.initial); err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	tools, err := toolschema.ForRecord(tpl)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: synthesize tools: %w", err)
	}
	toolModel := chatModel
	if len(tools) > 0 {
		toolModel, err = chatModel.WithTools(tools)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: bind tools: %w", err)
		}
	}
	return &Orchestrator{
		template:  tpl,
		chatModel: chatModel,
		toolModel: toolModel,
		tools:     tools,
		store:     NewStore(o.cache, o.namespace),
		opts:      o,
	}, nil
}

// Tools returns the commit tools bound to the model.
func (o *Orchestrator) Tools() []*schema.ToolInfo {
	return o.tools
}

// Advance moves thread threadID forward until it needs the human again or
// completes. humanInput may be nil on the first call, letting the model speak
// first. The returned message is what to show the human; nil means the
// conversation has ended with nothing more to say.
func (o *Orchestrator) Advance(ctx context.Context, threadID string, humanInput *string) (msg *schema.Message, err error) {
	if threadID == "" {
		return nil, ErrNoThread
	}
	start := time.Now()
	ctx = callbacks.EnsureRunInfo(ctx, "Orchestrator", "Agent")
	ctx = callbacks.OnStart(ctx, map[string]any{
		"thread": threadID,
		"input":  humanInput,
	})
	ctx, span := o.opts.tracer.Start(ctx, "convoform.advance",
		trace.WithAttributes(attribute.String("thread", threadID)))
	defer func() {
		if r := recover(); r != nil {
			callbacks.OnError(ctx, fmt.Errorf("panic in Orchestrator.Advance: %v", r))
			span.End()
			panic(r)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			callbacks.OnError(ctx, err)
		} else {
			callbacks.OnEnd(ctx, map[string]any{"thread": threadID, "message": msg})
		}
		span.End()
		o.opts.metrics.ObserveAdvance(time.Since(start))
	}()

	return o.advance(WithThreadID(ctx, threadID), humanInput)
}

func (o *Orchestrator) advance(ctx context.Context, humanInput *string) (*schema.Message, error) {
	st, err := o.load(ctx)
	if err != nil {
		return nil, err
	}

	switch st.Status {
	case types.StatusTerminal:
		return nil, nil
	case types.StatusAwaitHuman:
		if humanInput == nil {
			return st.Pending(), nil
		}
		if err := o.acceptHuman(ctx, st, *humanInput); err != nil {
			return nil, err
		}
	case types.StatusStart:
		sys, err := dialogue.SystemMessage(ctx, st.Record, o.opts.promptOpts...)
		if err != nil {
			return nil, err
		}
		st.append(sys)
		if humanInput != nil && *humanInput != "" {
			if err := o.acceptHuman(ctx, st, *humanInput); err != nil {
				return nil, err
			}
		}
	default:
		if humanInput != nil {
			slog.Debug("Ignoring input while resuming", "status", st.Status)
		}
	}

	st.Status = o.nextAfterInput(st)
	if err := o.save(ctx, st); err != nil {
		return nil, err
	}
	return o.run(ctx, st)
}

// nextAfterInput resumes threads that were interrupted mid-loop where they
// left off.
func (o *Orchestrator) nextAfterInput(st *State) types.Status {
	if st.Status == types.StatusToolDispatch {
		return types.StatusToolDispatch
	}
	return types.StatusModelTurn
}

func (o *Orchestrator) acceptHuman(ctx context.Context, st *State, input string) error {
	user := schema.UserMessage(input)
	if o.opts.detector != nil {
		history := append(append([]*schema.Message{}, st.Messages...), user)
		acts, err := o.opts.detector.DetectTraits(ctx, &indent.Request{Record: st.Record, Messages: history})
		if err != nil {
			return fmt.Errorf("detect traits: %w", err)
		}
		for _, act := range acts {
			changed, err := st.Record.ActivateTrait(act.Role, act.Trait)
			if err != nil {
				slog.Debug("Skipping trait activation", "trait", act.Key(), "error", err)
				continue
			}
			if changed {
				st.append(schema.SystemMessage(dialogue.TraitNotice(st.Record, act.Role, act.Trait)))
			}
		}
	}
	st.append(user)
	return nil
}

func (o *Orchestrator) run(ctx context.Context, st *State) (*schema.Message, error) {
	steps := 0
	for {
		switch st.Status {
		case types.StatusModelTurn:
			if o.opts.maxSteps > 0 && steps >= o.opts.maxSteps {
				return nil, fmt.Errorf("%w after %d calls", ErrStepBudget, steps)
			}
			steps++
			resp, err := o.modelTurn(ctx, st)
			if err != nil {
				return nil, err
			}
			st.append(resp)
			if len(resp.ToolCalls) > 0 {
				st.Status = types.StatusToolDispatch
				if err := o.save(ctx, st); err != nil {
					return nil, err
				}
				continue
			}
			if st.Record.AllCollected() {
				o.finish(st)
			} else {
				st.Status = types.StatusAwaitHuman
			}
			if err := o.save(ctx, st); err != nil {
				return nil, err
			}
			return resp, nil

		case types.StatusToolDispatch:
			o.dispatch(ctx, st)
			if st.Record.AllCollected() {
				o.finish(st)
				if err := o.save(ctx, st); err != nil {
					return nil, err
				}
				if call := lastAssistant(st.Messages); call != nil && call.Content != "" {
					return schema.AssistantMessage(call.Content, nil), nil
				}
				return nil, nil
			}
			st.Status = types.StatusModelTurn
			if err := o.save(ctx, st); err != nil {
				return nil, err
			}

		default:
			return nil, fmt.Errorf("orchestrator: unexpected status %q", st.Status)
		}
	}
}

func (o *Orchestrator) modelTurn(ctx context.Context, st *State) (*schema.Message, error) {
	enabled := toolsEnabled(st.Messages)
	chatModel := o.chatModel
	if enabled {
		chatModel = o.toolModel
	}
	o.opts.metrics.ObserveModelTurn(enabled)
	thread, _ := ThreadIDFromContext(ctx)
	slog.Debug("Model turn", "thread", thread, "tools", enabled, "history", len(st.Messages))

	resp, err := chatModel.Generate(ctx, st.Messages)
	if err != nil {
		return nil, fmt.Errorf("model turn: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("model turn: empty response")
	}
	return resp, nil
}

// dispatch commits the calls of the last assistant message in model order.
// Results already appended after that message belong to its leading calls, so
// a resumed dispatch picks up where it stopped. Call IDs are not used for this
// since providers reuse them across turns. Commit failures become tool results
// the model can react to.
func (o *Orchestrator) dispatch(ctx context.Context, st *State) {
	idx := lastAssistantIndex(st.Messages)
	if idx < 0 {
		return
	}
	call := st.Messages[idx]
	done := 0
	for _, m := range st.Messages[idx+1:] {
		if m.Role == schema.Tool {
			done++
		}
	}
	for _, tc := range call.ToolCalls[min(done, len(call.ToolCalls)):] {
		field := tc.Function.Name
		err := patch.Commit(st.Record, field, tc.Function.Arguments)
		o.opts.metrics.ObserveCommit(err)

		var result *schema.Message
		if err != nil {
			thread, _ := ThreadIDFromContext(ctx)
			slog.Debug("Commit failed", "thread", thread, "field", field, "error", err)
			result = schema.ToolMessage("error: "+err.Error(), tc.ID)
			result.Extra = map[string]any{commitErrorKey: true}
		} else {
			result = schema.ToolMessage(fmt.Sprintf("Recorded %s.", field), tc.ID)
		}
		result.ToolName = field
		st.append(result)
	}
}

func (o *Orchestrator) finish(st *State) {
	st.Status = types.StatusTerminal
	o.opts.metrics.ObserveCompleted()
}

// toolsEnabled is false right after the system prompt and right after a run
// of tool results that all succeeded.
func toolsEnabled(history []*schema.Message) bool {
	if len(history) == 0 {
		return true
	}
	last := history[len(history)-1]
	switch last.Role {
	case schema.System:
		return false
	case schema.Tool:
		for i := len(history) - 1; i >= 0 && history[i].Role == schema.Tool; i-- {
			if failed(history[i]) {
				return true
			}
		}
		return false
	default:
		return true
	}
}

func failed(m *schema.Message) bool {
	v, ok := m.Extra[commitErrorKey].(bool)
	return ok && v
}

func lastAssistant(history []*schema.Message) *schema.Message {
	if i := lastAssistantIndex(history); i >= 0 {
		return history[i]
	}
	return nil
}

func lastAssistantIndex(history []*schema.Message) int {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == schema.Assistant {
			return i
		}
	}
	return -1
}

func (o *Orchestrator) load(ctx context.Context) (*State, error) {
	st, ok, err := o.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	if ok {
		return st, nil
	}
	rec, err := o.template.Clone()
	if err != nil {
		return nil, fmt.Errorf("seed thread: %w", err)
	}
	return &State{Version: CheckpointVersion, Status: types.StatusStart, Record: rec}, nil
}

func (o *Orchestrator) save(ctx context.Context, st *State) error {
	if o.opts.trimmer != nil {
		st.Messages = o.opts.trimmer.Trim(st.Messages)
	}
	st.UpdatedAt = time.Now()
	if err := o.store.Save(ctx, st); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// State returns the checkpoint of a thread, or false when the thread has not
// been started.
func (o *Orchestrator) State(ctx context.Context, threadID string) (*State, bool, error) {
	if threadID == "" {
		return nil, false, ErrNoThread
	}
	return o.store.Load(WithThreadID(ctx, threadID))
}

// Record returns the thread's current record. Unstarted threads get a fresh
// copy of the template.
func (o *Orchestrator) Record(ctx context.Context, threadID string) (*record.Record, error) {
	st, ok, err := o.State(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return o.template.Clone()
	}
	return st.Record, nil
}

// Reset drops a thread's checkpoint. The next Advance starts it over.
func (o *Orchestrator) Reset(ctx context.Context, threadID string) error {
	if threadID == "" {
		return ErrNoThread
	}
	return o.store.Delete(WithThreadID(ctx, threadID))
}
