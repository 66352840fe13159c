package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const DefaultCheckpointTTL = 24 * time.Hour

// RedisCache stores encoded values in Redis with a TTL. A zero TTL keeps
// values until they are deleted.
type RedisCache[S any] struct {
	client redis.UniversalClient
	codec  Codec[S]
	ttl    time.Duration
	tracer trace.Tracer
}

func NewRedisCache[S any](client redis.UniversalClient, codec Codec[S], ttl time.Duration, tracer trace.Tracer) *RedisCache[S] {
	if client == nil {
		panic("agent: redis client cannot be nil")
	}
	if codec == nil {
		codec = SonicCodec[S]{}
	}
	if tracer == nil {
		tracer = otel.Tracer("convoform.agent.redis")
	}
	return &RedisCache[S]{client: client, codec: codec, ttl: ttl, tracer: tracer}
}

func (c *RedisCache[S]) Set(ctx context.Context, key string, val S) error {
	ctx, span := c.tracer.Start(ctx, "checkpoint.save", trace.WithAttributes(attribute.String("key", key)))
	defer span.End()

	data, err := c.codec.Encode(val)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("redis cache: encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("redis cache: set %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache[S]) Get(ctx context.Context, key string) (S, bool, error) {
	ctx, span := c.tracer.Start(ctx, "checkpoint.load", trace.WithAttributes(attribute.String("key", key)))
	defer span.End()

	var zero S
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, false, nil
	}
	if err != nil {
		span.RecordError(err)
		return zero, false, fmt.Errorf("redis cache: get %s: %w", key, err)
	}
	val, err := c.codec.Decode(data)
	if err != nil {
		span.RecordError(err)
		return zero, false, fmt.Errorf("redis cache: decode %s: %w", key, err)
	}
	return val, true, nil
}

func (c *RedisCache[S]) Del(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis cache: del %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache[S]) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis cache: exists %s: %w", key, err)
	}
	return n > 0, nil
}
