package dialogue

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/tbxark/convoform/record"
)

// DefaultSystemPromptTemplate renders a record into the conversation's system
// prompt. It is a Go text/template evaluated against the variables described
// in Variables.
const DefaultSystemPromptTemplate = `{{.description}}

# Roles
You act as {{.initiator.Label}}.
{{- range .initiator.Traits}}
- {{.}}
{{- end}}

You are talking with {{.respondent.Label}}.
{{- range .respondent.Traits}}
- {{.}}
{{- end}}

# Information to collect
{{- range .fields}}

## {{.Name}}
{{.Description}}
{{- range .Must}}
- Must: {{.}}
{{- end}}
{{- range .Reject}}
- Reject: {{.}}
{{- end}}
{{- range .Casts}}
- {{.}}
{{- end}}
{{- if .Conclude}}
- Never ask about this. Judge it silently once everything else has been collected.
{{- else if .Confidential}}
- Never ask about this directly. Infer it from what the respondent says.
{{- end}}
{{- end}}

# Recording answers
Each item above has a tool with the same name. Call it as soon as the respondent has
given a value that satisfies its rules. Fill value with a short answer,
conversation_context with how it came up (or {{.not_applicable}}), quote with the
respondent's own words, and every other argument as its description asks.
If a tool reports an error, fix the arguments and call it again.
Ask about one item at a time and keep the conversation natural.
Reply in {{.lang}}.
`

const defaultLang = "English"

type options struct {
	lang     string
	template string
}

type Option func(*options)

// WithLang sets the reply language named in the prompt.
func WithLang(lang string) Option {
	return func(o *options) {
		o.lang = lang
	}
}

// WithTemplate replaces DefaultSystemPromptTemplate.
func WithTemplate(tpl string) Option {
	return func(o *options) {
		o.template = tpl
	}
}

func newOptions(opts ...Option) options {
	o := options{lang: defaultLang, template: DefaultSystemPromptTemplate}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.lang == "" {
		o.lang = defaultLang
	}
	if o.template == "" {
		o.template = DefaultSystemPromptTemplate
	}
	return o
}

// SystemMessage renders rec into the system message that opens a conversation.
func SystemMessage(ctx context.Context, rec *record.Record, opts ...Option) (*schema.Message, error) {
	o := newOptions(opts...)
	tpl := prompt.FromMessages(schema.GoTemplate, schema.SystemMessage(o.template))
	msgs, err := tpl.Format(ctx, Variables(rec, o.lang))
	if err != nil {
		return nil, fmt.Errorf("format system prompt: %w", err)
	}
	if len(msgs) != 1 {
		return nil, fmt.Errorf("format system prompt: expected 1 message, got %d", len(msgs))
	}
	return msgs[0], nil
}

// SystemPrompt is SystemMessage's content.
func SystemPrompt(ctx context.Context, rec *record.Record, opts ...Option) (string, error) {
	msg, err := SystemMessage(ctx, rec, opts...)
	if err != nil {
		return "", err
	}
	return msg.Content, nil
}

// TraitNotice is the system note appended when a possible trait turns active
// during the conversation.
func TraitNotice(rec *record.Record, roleKey, trait string) string {
	label := roleKey
	if role, err := rec.Role(roleKey); err == nil && role.TypeLabel != "" {
		label = role.TypeLabel
	}
	return fmt.Sprintf("Update: the %s now also has this trait: %s. Take it into account from here on.", label, trait)
}
