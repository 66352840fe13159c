package indent

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/eino-contrib/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/tbxark/convoform/structured"
)

const (
	detectTraitsToolName        = "detect_traits"
	detectTraitsToolDescription = "Report which of the listed traits the conversation now clearly shows."
)

// DefaultDetectTraitsSystemPromptTemplate may contain a single "%s"
// placeholder for the tool name.
const DefaultDetectTraitsSystemPromptTemplate = `You watch a conversation and decide whether any of the listed traits has become true.

Only report a trait when the latest messages give clear evidence for its trigger. When in doubt, leave it out.
Use the keys exactly as listed.

Call the '%s' tool with the result.
`

type detectTraitsOutput struct {
	Activated []string `json:"activated"`
}

type detectorOptions struct {
	systemPromptTemplate string
	window               int
}

type DetectorOption func(*detectorOptions)

func WithDetectSystemPromptTemplate(tpl string) DetectorOption {
	return func(o *detectorOptions) {
		o.systemPromptTemplate = tpl
	}
}

// WithWindow sets how many of the latest non-system messages are shown.
func WithWindow(n int) DetectorOption {
	return func(o *detectorOptions) {
		o.window = n
	}
}

// ToolBasedDetector asks a model, through a forced tool call, which
// candidates apply. The tool is rebuilt per request so its enum lists only the
// traits that are still inactive.
type ToolBasedDetector struct {
	chatModel model.BaseChatModel
	prompt    structured.PromptBuilder[*Request]
}

func NewToolBasedDetector(chatModel model.BaseChatModel, opts ...DetectorOption) (*ToolBasedDetector, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("chat model is required")
	}
	options := detectorOptions{
		systemPromptTemplate: DefaultDetectTraitsSystemPromptTemplate,
		window:               6,
	}
	for _, opt := range opts {
		opt(&options)
	}
	systemPrompt := options.systemPromptTemplate
	if strings.Contains(systemPrompt, "%s") {
		systemPrompt = fmt.Sprintf(systemPrompt, detectTraitsToolName)
	}
	return &ToolBasedDetector{
		chatModel: chatModel,
		prompt:    buildDetectPrompt(systemPrompt, options.window),
	}, nil
}

func (d *ToolBasedDetector) DetectTraits(ctx context.Context, req *Request) ([]Activation, error) {
	candidates := Candidates(req.Record)
	if len(candidates) == 0 {
		return nil, nil
	}
	chain := structured.NewChainWithTool[*Request, detectTraitsOutput](d.chatModel, d.prompt, detectTraitsTool(candidates))
	result, err := chain.Invoke(ctx, req)
	if err != nil {
		return nil, err
	}
	var out []Activation
	for _, c := range candidates {
		if slices.Contains(result.Activated, c.Key()) {
			out = append(out, c.Activation)
		}
	}
	return out, nil
}

// detectTraitsTool restricts "activated" to the keys of candidates.
func detectTraitsTool(candidates []Candidate) *schema.ToolInfo {
	keys := make([]any, 0, len(candidates))
	for _, c := range candidates {
		keys = append(keys, c.Key())
	}
	props := orderedmap.New[string, *jsonschema.Schema]()
	props.Set("activated", &jsonschema.Schema{
		Type:        "array",
		Description: "Keys of the traits that now apply",
		Items:       &jsonschema.Schema{Type: "string", Enum: keys},
		UniqueItems: true,
	})
	return &schema.ToolInfo{
		Name: detectTraitsToolName,
		Desc: detectTraitsToolDescription,
		ParamsOneOf: schema.NewParamsOneOfByJSONSchema(&jsonschema.Schema{
			Type:       "object",
			Properties: props,
			Required:   []string{"activated"},
		}),
	}
}

func buildDetectPrompt(systemPrompt string, window int) structured.PromptBuilder[*Request] {
	return func(ctx context.Context, req *Request) ([]*schema.Message, error) {
		var sb strings.Builder
		sb.WriteString("# Traits\n")
		for _, c := range Candidates(req.Record) {
			fmt.Fprintf(&sb, "- %s: %s\n", c.Key(), c.Trigger)
		}
		sb.WriteString("\n# Latest messages\n")
		var convo []*schema.Message
		for _, m := range req.Messages {
			if m != nil && (m.Role == schema.User || (m.Role == schema.Assistant && m.Content != "")) {
				convo = append(convo, m)
			}
		}
		if window > 0 && len(convo) > window {
			convo = convo[len(convo)-window:]
		}
		for _, m := range convo {
			fmt.Fprintf(&sb, "%s: %s\n", m.Role, m.Content)
		}
		return []*schema.Message{
			schema.SystemMessage(systemPrompt),
			schema.UserMessage(strings.TrimRight(sb.String(), "\n")),
		}, nil
	}
}
