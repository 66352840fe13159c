package indent

import (
	"context"
	"fmt"
	"strings"
)

// KeywordDetector activates a trait when the latest user message contains
// one of its keywords. Keywords are keyed by trait name and matched without
// regard to case.
type KeywordDetector struct {
	Keywords map[string][]string
}

func NewKeywordDetector(keywords map[string][]string) *KeywordDetector {
	return &KeywordDetector{Keywords: keywords}
}

func (d *KeywordDetector) DetectTraits(ctx context.Context, req *Request) ([]Activation, error) {
	text := strings.ToLower(lastUserMessage(req.Messages))
	if text == "" {
		return nil, nil
	}
	var out []Activation
	for _, c := range Candidates(req.Record) {
		for _, kw := range d.Keywords[c.Trait] {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" && strings.Contains(text, kw) {
				out = append(out, c.Activation)
				break
			}
		}
	}
	return out, nil
}

// FailbackDetector returns the result of the first detector that succeeds.
type FailbackDetector struct {
	detectors []Detector
}

func NewFailbackDetector(detectors ...Detector) *FailbackDetector {
	return &FailbackDetector{detectors: detectors}
}

func (d *FailbackDetector) DetectTraits(ctx context.Context, req *Request) ([]Activation, error) {
	var lastErr error
	for _, detector := range d.detectors {
		out, err := detector.DetectTraits(ctx, req)
		if err == nil {
			return out, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		return nil, nil
	}
	return nil, fmt.Errorf("all trait detectors failed: %w", lastErr)
}
