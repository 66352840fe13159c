package types

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"

	"github.com/tbxark/convoform/record"
)

// FormatRecord renders the current field values of rec as a markdown table,
// one row per field followed by one row per collected cast result.
func FormatRecord(rec *record.Record) string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "# %s\n", rec.TypeName)
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header("Field", "Value", "Flags")
	rec.EachField(func(f *record.Field) {
		_ = table.Append(f.Name, displayValue(f), flags(f))
		if !f.Collected() {
			return
		}
		f.EachCast(func(name string, _ *record.Cast) {
			if v, ok := f.Value[name]; ok {
				_ = table.Append("  ."+name, fmt.Sprint(v), "")
			}
		})
	})
	_ = table.Render()
	return buf.String()
}

func displayValue(f *record.Field) string {
	if !f.Collected() {
		return "-"
	}
	return f.Value.Value()
}

func flags(f *record.Field) string {
	var out []string
	switch {
	case f.Validation.Conclude:
		out = append(out, "conclude")
	case f.Validation.Confidential:
		out = append(out, "confidential")
	}
	if !f.Collected() {
		out = append(out, "missing")
	}
	return strings.Join(out, ", ")
}
