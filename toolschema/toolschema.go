// Package toolschema derives one commit tool per record field. The tool's
// arguments carry the field value, its context, a quote, and one entry per cast.
package toolschema

import (
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/eino-contrib/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/tbxark/convoform/record"
)

const (
	valueDescription   = "The value as a short natural-language answer."
	contextDescription = "How the value came up in the conversation, or " + record.NotApplicable + " when there is nothing to add."
	quoteDescription   = "A verbatim excerpt of what the respondent said that supports the value."
)

// ForRecord returns the commit tools of every field, in field order.
func ForRecord(rec *record.Record) ([]*schema.ToolInfo, error) {
	var (
		tools []*schema.ToolInfo
		err   error
	)
	rec.EachField(func(f *record.Field) {
		if err != nil {
			return
		}
		var info *schema.ToolInfo
		info, err = ForField(f)
		tools = append(tools, info)
	})
	if err != nil {
		return nil, err
	}
	return tools, nil
}

// ForField returns the commit tool for f. The tool is named after the field.
func ForField(f *record.Field) (*schema.ToolInfo, error) {
	js, err := JSONSchema(f)
	if err != nil {
		return nil, err
	}
	return &schema.ToolInfo{
		Name:        f.Name,
		Desc:        Description(f),
		ParamsOneOf: schema.NewParamsOneOfByJSONSchema(js),
	}, nil
}

// Description is the tool description for f.
func Description(f *record.Field) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Record the value of %q once the respondent has provided it.", f.Name)
	if f.Description != "" {
		sb.WriteString(" ")
		sb.WriteString(f.Description)
	}
	return sb.String()
}

// JSONSchema returns the argument schema of the commit tool for f.
func JSONSchema(f *record.Field) (*jsonschema.Schema, error) {
	props := orderedmap.New[string, *jsonschema.Schema]()
	props.Set(record.KeyValue, &jsonschema.Schema{Type: "string", Description: valueDescription})
	props.Set(record.KeyContext, &jsonschema.Schema{Type: "string", Description: contextDescription})
	props.Set(record.KeyQuote, &jsonschema.Schema{Type: "string", Description: quoteDescription})
	required := []string{record.KeyValue, record.KeyContext, record.KeyQuote}

	var err error
	f.EachCast(func(name string, c *record.Cast) {
		if err != nil {
			return
		}
		var s *jsonschema.Schema
		s, err = castSchema(c)
		if err != nil {
			err = fmt.Errorf("field %q cast %q: %w", f.Name, name, err)
			return
		}
		arg := c.ArgName(name)
		props.Set(arg, s)
		if !c.Optional {
			required = append(required, arg)
		}
	})
	if err != nil {
		return nil, err
	}
	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}, nil
}

func castSchema(c *record.Cast) (*jsonschema.Schema, error) {
	var s *jsonschema.Schema
	switch c.Type {
	case record.TypeInteger:
		s = &jsonschema.Schema{Type: "integer"}
	case record.TypeFloat:
		s = &jsonschema.Schema{Type: "number"}
	case record.TypeString:
		s = &jsonschema.Schema{Type: "string"}
	case record.TypeBoolean:
		s = &jsonschema.Schema{Type: "boolean"}
	case record.TypeList:
		s = &jsonschema.Schema{Type: "array", Items: &jsonschema.Schema{Type: "string"}}
	case record.TypeSet:
		s = &jsonschema.Schema{Type: "array", Items: &jsonschema.Schema{Type: "string"}, UniqueItems: true}
	case record.TypeMapping:
		s = &jsonschema.Schema{Type: "object", AdditionalProperties: &jsonschema.Schema{Type: "string"}}
	case record.TypeChoice:
		return choiceSchema(c), nil
	default:
		return nil, fmt.Errorf("%w: %q", record.ErrUnsupportedType, c.Type)
	}
	s.Description = c.Prompt
	return s, nil
}

func choiceSchema(c *record.Cast) *jsonschema.Schema {
	enum := make([]any, 0, len(c.Choices))
	for _, choice := range c.Choices {
		enum = append(enum, choice)
	}
	s := &jsonschema.Schema{Type: "string", Enum: enum}
	if c.Multi {
		s = &jsonschema.Schema{Type: "array", Items: s, UniqueItems: true}
	}
	if c.Nullable {
		s = &jsonschema.Schema{AnyOf: []*jsonschema.Schema{s, {Type: "null"}}}
	}
	s.Description = c.Prompt
	return s
}
