package agent

import (
	"context"
	"errors"
)

var ErrNoThread = errors.New("no thread id in context")

const DefaultNamespace = "convoform:thread"

// Store routes checkpoints of the thread found in the context to a
// namespaced cache key.
type Store[S any] struct {
	core      Cache[S]
	namespace string
}

func NewStore[S any](core Cache[S], namespace string) Store[S] {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return Store[S]{core: core, namespace: namespace}
}

// Key is the cache key of a thread.
func (s Store[S]) Key(threadID string) string {
	return s.namespace + ":" + threadID
}

func (s Store[S]) key(ctx context.Context) (string, error) {
	id, ok := ThreadIDFromContext(ctx)
	if !ok {
		return "", ErrNoThread
	}
	return s.Key(id), nil
}

func (s Store[S]) Save(ctx context.Context, val S) error {
	key, err := s.key(ctx)
	if err != nil {
		return err
	}
	return s.core.Set(ctx, key, val)
}

func (s Store[S]) Load(ctx context.Context) (S, bool, error) {
	key, err := s.key(ctx)
	if err != nil {
		var zero S
		return zero, false, err
	}
	return s.core.Get(ctx, key)
}

func (s Store[S]) Delete(ctx context.Context) error {
	key, err := s.key(ctx)
	if err != nil {
		return err
	}
	return s.core.Del(ctx, key)
}

func (s Store[S]) Exists(ctx context.Context) (bool, error) {
	key, err := s.key(ctx)
	if err != nil {
		return false, err
	}
	return s.core.Exists(ctx, key)
}
