// Package indent detects, from the conversation so far, which declared
// possible traits of a role have become true.
package indent

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"github.com/tbxark/convoform/record"
)

type Request struct {
	Record   *record.Record
	Messages []*schema.Message
}

// Activation names one possible trait to switch on.
type Activation struct {
	Role  string `json:"role"`
	Trait string `json:"trait"`
}

// Key is the "role.trait" form used in prompts and tool arguments.
func (a Activation) Key() string {
	return a.Role + "." + a.Trait
}

type Detector interface {
	DetectTraits(ctx context.Context, req *Request) ([]Activation, error)
}

// Candidate is an inactive possible trait.
type Candidate struct {
	Activation
	Trigger string
}

// Candidates lists the inactive possible traits of both roles, initiator first.
func Candidates(rec *record.Record) []Candidate {
	var out []Candidate
	for _, key := range []string{record.RoleInitiator, record.RoleRespondent} {
		role, _ := rec.Role(key)
		if role == nil || role.PossibleTraits == nil {
			continue
		}
		for pair := role.PossibleTraits.Oldest(); pair != nil; pair = pair.Next() {
			if pair.Value.Active {
				continue
			}
			out = append(out, Candidate{
				Activation: Activation{Role: key, Trait: pair.Key},
				Trigger:    pair.Value.TriggerDescription,
			})
		}
	}
	return out
}

func lastUserMessage(msgs []*schema.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i] != nil && msgs[i].Role == schema.User {
			return msgs[i].Content
		}
	}
	return ""
}
