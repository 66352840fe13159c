package types

import "github.com/tbxark/convoform/record"

// Status is the position of a conversation thread in its state machine.
type Status string

const (
	StatusStart        Status = "start"
	StatusModelTurn    Status = "model_turn"
	StatusToolDispatch Status = "tool_dispatch"
	StatusAwaitHuman   Status = "await_human"
	StatusTerminal     Status = "terminal"
)

// Suspended reports whether the thread is waiting on the caller.
func (s Status) Suspended() bool {
	return s == StatusAwaitHuman || s == StatusTerminal
}

type FieldInfo struct {
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Value        string   `json:"value,omitempty"`
	Collected    bool     `json:"collected"`
	Confidential bool     `json:"confidential,omitempty"`
	Conclude     bool     `json:"conclude,omitempty"`
	Casts        []string `json:"casts,omitempty"`
}

// Fields summarizes every field of rec in declaration order.
func Fields(rec *record.Record) []FieldInfo {
	var out []FieldInfo
	rec.EachField(func(f *record.Field) {
		info := FieldInfo{
			Name:         f.Name,
			Description:  f.Description,
			Collected:    f.Collected(),
			Confidential: f.Validation.Confidential,
			Conclude:     f.Validation.Conclude,
		}
		if f.Collected() {
			info.Value = f.Value.Value()
		}
		f.EachCast(func(name string, _ *record.Cast) {
			info.Casts = append(info.Casts, name)
		})
		out = append(out, info)
	})
	return out
}
