package dialogue

import (
	"fmt"
	"slices"

	"github.com/tbxark/convoform/record"
)

// Variables returns the template variables for rec:
//
//	description     record description
//	initiator       {Label, Traits}
//	respondent      {Label, Traits}
//	fields          []{Name, Description, Must, Reject, Casts, Confidential, Conclude}
//	not_applicable  marker for an empty conversation_context
//	lang            reply language
//
// Hints are not exposed.
func Variables(rec *record.Record, lang string) map[string]any {
	var fields []promptField
	rec.EachField(func(f *record.Field) {
		fields = append(fields, formatField(f))
	})
	return map[string]any{
		"description":    rec.Description,
		"initiator":      formatRole(rec.Initiator, "the initiator"),
		"respondent":     formatRole(rec.Respondent, "the respondent"),
		"fields":         fields,
		"not_applicable": record.NotApplicable,
		"lang":           lang,
	}
}

func formatRole(role *record.Role, fallback string) promptRole {
	out := promptRole{Label: fallback}
	if role == nil {
		return out
	}
	if role.TypeLabel != "" {
		out.Label = "a " + role.TypeLabel
	}
	out.Traits = role.ActiveTraits()
	return out
}

func formatField(f *record.Field) promptField {
	out := promptField{
		Name:         f.Name,
		Description:  f.Description,
		Must:         slices.Clone(f.Validation.Must),
		Reject:       slices.Clone(f.Validation.Reject),
		Confidential: f.Validation.Confidential,
		Conclude:     f.Validation.Conclude,
	}
	f.EachCast(func(name string, c *record.Cast) {
		out.Casts = append(out.Casts, formatCast(name, c))
	})
	return out
}

func formatCast(name string, c *record.Cast) string {
	arg := c.ArgName(name)
	line := fmt.Sprintf("%s (%s)", arg, c.Type)
	if c.Type == record.TypeChoice {
		switch {
		case c.Multi:
			line = fmt.Sprintf("%s: any of %q", arg, c.Choices)
		case c.Nullable:
			line = fmt.Sprintf("%s: at most one of %q, or null", arg, c.Choices)
		default:
			line = fmt.Sprintf("%s: exactly one of %q", arg, c.Choices)
		}
	}
	if c.Prompt != "" {
		line += ": " + c.Prompt
	}
	return line
}
