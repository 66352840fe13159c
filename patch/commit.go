// Package patch stores model-produced field payloads on a record.
package patch

import (
	"fmt"
	"log/slog"

	"github.com/bytedance/sonic"

	"github.com/tbxark/convoform/record"
)

// ValuePath is the JSON pointer of a field's value slot.
func ValuePath(field string) string {
	return "/fields/" + escapeToken(field) + "/value"
}

// Commit decodes the arguments of a commit tool call and stores them on the
// named field.
func Commit(rec *record.Record, field, arguments string) error {
	var payload map[string]any
	if err := sonic.UnmarshalString(arguments, &payload); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedArguments, err)
	}
	if payload == nil {
		return fmt.Errorf("%w: expected a JSON object", ErrMalformedArguments)
	}
	return CommitPayload(rec, field, payload)
}

// CommitPayload normalizes payload and replaces the field's value with it.
// The previous value, if any, is overwritten as a whole. On error rec is left
// untouched.
func CommitPayload(rec *record.Record, field string, payload map[string]any) error {
	f, ok := rec.Field(field)
	if !ok {
		return fmt.Errorf("%w: %q", record.ErrUnknownField, field)
	}
	normalized := Normalize(f, payload)
	if err := Validate(f, normalized); err != nil {
		return fmt.Errorf("field %q: %w", field, err)
	}
	ops := []Operation{{Op: OperationReplace, Path: ValuePath(field), Value: normalized}}
	return write(rec, ops)
}

func write(rec *record.Record, ops []Operation) error {
	if err := ValidatePatchOperations(ops, []string{valuePattern}); err != nil {
		return err
	}
	for _, op := range ops {
		if _, ok := rec.Field(fieldFromPath(op.Path)); !ok {
			return fmt.Errorf("%w: %q", record.ErrUnknownField, fieldFromPath(op.Path))
		}
	}
	updated, err := ApplyRFC6902(rec, ops)
	if err != nil {
		return err
	}
	for _, op := range ops {
		name := fieldFromPath(op.Path)
		target, _ := rec.Field(name)
		source, ok := updated.Field(name)
		if !ok {
			return fmt.Errorf("%w: %q", record.ErrUnknownField, name)
		}
		target.Value = source.Value
		slog.Debug("Committed field", "field", name, "value", target.Value.Value())
	}
	return nil
}

func fieldFromPath(path string) string {
	const prefix, suffix = "/fields/", "/value"
	return unescapeToken(path[len(prefix) : len(path)-len(suffix)])
}
