package agent

import (
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/schema"

	"github.com/tbxark/convoform/record"
	"github.com/tbxark/convoform/types"
)

// CheckpointVersion is written into every checkpoint.
const CheckpointVersion = "1.0"

var ErrCheckpointVersion = errors.New("unsupported checkpoint version")

// State is the durable checkpoint of one conversation thread.
type State struct {
	Version   string            `json:"version"`
	Status    types.Status      `json:"status"`
	Record    *record.Record    `json:"record"`
	Messages  []*schema.Message `json:"messages"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Pending returns the assistant message the thread is waiting on, if any.
func (s *State) Pending() *schema.Message {
	if s.Status != types.StatusAwaitHuman && s.Status != types.StatusTerminal {
		return nil
	}
	if len(s.Messages) == 0 {
		return nil
	}
	last := s.Messages[len(s.Messages)-1]
	if last.Role != schema.Assistant || len(last.ToolCalls) > 0 {
		return nil
	}
	return last
}

func (s *State) append(msgs ...*schema.Message) {
	for _, m := range msgs {
		if m != nil {
			s.Messages = append(s.Messages, m)
		}
	}
}

func MarshalCheckpoint(s *State) ([]byte, error) {
	data, err := sonic.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal checkpoint: %w", err)
	}
	return data, nil
}

func UnmarshalCheckpoint(data []byte) (*State, error) {
	var s State
	if err := sonic.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal checkpoint: %w", err)
	}
	if s.Version != CheckpointVersion {
		return nil, fmt.Errorf("%w: %q", ErrCheckpointVersion, s.Version)
	}
	if s.Record == nil {
		return nil, fmt.Errorf("unmarshal checkpoint: missing record")
	}
	return &s, nil
}

// StateCodec encodes checkpoints with MarshalCheckpoint.
type StateCodec struct{}

func (StateCodec) Encode(s *State) ([]byte, error) {
	return MarshalCheckpoint(s)
}

func (StateCodec) Decode(data []byte) (*State, error) {
	return UnmarshalCheckpoint(data)
}

var _ Codec[*State] = StateCodec{}
