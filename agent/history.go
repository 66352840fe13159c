package agent

import (
	"github.com/cloudwego/eino/schema"
)

// Trimmer is the retention policy applied to a thread's history before it is
// checkpointed.
type Trimmer interface {
	Trim(history []*schema.Message) []*schema.Message
}

// KeepSystemLastNTrimmer keeps all system messages and the last N others.
// A window that starts inside a run of tool results is widened back to the
// assistant message that made the calls, so results are never orphaned. When
// N <= 0 history is kept whole.
type KeepSystemLastNTrimmer struct {
	N int
}

func (t KeepSystemLastNTrimmer) Trim(history []*schema.Message) []*schema.Message {
	if t.N <= 0 {
		return history
	}
	var others []int
	for i, m := range history {
		if m != nil && m.Role != schema.System {
			others = append(others, i)
		}
	}
	if len(others) <= t.N {
		return history
	}
	first := others[len(others)-t.N]
	if history[first].Role == schema.Tool {
		for i := first - 1; i >= 0; i-- {
			m := history[i]
			if m == nil || m.Role == schema.System || m.Role == schema.Tool {
				continue
			}
			if m.Role == schema.Assistant && len(m.ToolCalls) > 0 {
				first = i
			}
			break
		}
	}
	for first < len(history) && history[first] != nil && history[first].Role == schema.Tool {
		first++
	}

	out := make([]*schema.Message, 0, t.N+2)
	for i, m := range history {
		if m == nil {
			continue
		}
		if m.Role == schema.System || i >= first {
			out = append(out, m)
		}
	}
	return out
}
