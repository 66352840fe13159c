package agent

import (
	"context"

	"github.com/google/uuid"
)

type threadIDContext struct{}

// WithThreadID sets the conversation thread used for checkpoint routing.
func WithThreadID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, threadIDContext{}, id)
}

// ThreadIDFromContext gets the conversation thread from the context.
func ThreadIDFromContext(ctx context.Context) (string, bool) {
	value := ctx.Value(threadIDContext{})
	if value == nil {
		return "", false
	}
	id, ok := value.(string)
	return id, ok && id != ""
}

// NewThreadID returns a random thread identifier.
func NewThreadID() string {
	return uuid.NewString()
}
