package agent

import (
	"go.opentelemetry.io/otel/trace"

	"github.com/tbxark/convoform/dialogue"
	"github.com/tbxark/convoform/indent"
	"github.com/tbxark/convoform/record"
)

type Option func(*options)

type options struct {
	cache      Cache[*State]
	namespace  string
	trimmer    Trimmer
	metrics    *Metrics
	tracer     trace.Tracer
	promptOpts []dialogue.Option
	detector   indent.Detector
	maxSteps   int
	initial    map[string]record.Payload
}

// WithStore sets where checkpoints are kept. The default is an in-process
// MemoryCache.
func WithStore(cache Cache[*State]) Option {
	return func(o *options) {
		o.cache = cache
	}
}

// WithNamespace prefixes every checkpoint key.
func WithNamespace(namespace string) Option {
	return func(o *options) {
		o.namespace = namespace
	}
}

// WithRetention trims history before each checkpoint.
func WithRetention(t Trimmer) Option {
	return func(o *options) {
		o.trimmer = t
	}
}

func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(o *options) {
		o.tracer = t
	}
}

// WithPromptOptions configures the opening system prompt.
func WithPromptOptions(opts ...dialogue.Option) Option {
	return func(o *options) {
		o.promptOpts = append(o.promptOpts, opts...)
	}
}

// WithTraitDetector runs d on every human turn to activate possible traits.
func WithTraitDetector(d indent.Detector) Option {
	return func(o *options) {
		o.detector = d
	}
}

// WithMaxSteps bounds the model calls a single Advance may make. Without it
// Advance keeps looping until the model answers in text.
func WithMaxSteps(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxSteps = n
		}
	}
}

// WithInitialValues prefills fields of every new thread.
func WithInitialValues(initial map[string]record.Payload) Option {
	return func(o *options) {
		o.initial = initial
	}
}
