package patch

import (
	"fmt"
	"maps"
	"slices"

	"github.com/tbxark/convoform/record"
)

// Prefill stores values that are known before the conversation starts. Each
// entry is checked like a model commit, and nothing is written unless all of
// them pass.
func Prefill(rec *record.Record, initial map[string]record.Payload) error {
	if len(initial) == 0 {
		return nil
	}
	for _, name := range slices.Sorted(maps.Keys(initial)) {
		if _, ok := rec.Field(name); !ok {
			return fmt.Errorf("prefill: %w: %q", record.ErrUnknownField, name)
		}
	}
	var (
		ops []Operation
		err error
	)
	rec.EachField(func(f *record.Field) {
		payload, ok := initial[f.Name]
		if !ok || err != nil {
			return
		}
		normalized := Normalize(f, payload)
		if verr := Validate(f, normalized); verr != nil {
			err = fmt.Errorf("prefill field %q: %w", f.Name, verr)
			return
		}
		ops = append(ops, Operation{Op: OperationReplace, Path: ValuePath(f.Name), Value: normalized})
	})
	if err != nil {
		return err
	}
	return write(rec, ops)
}
