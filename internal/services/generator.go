package services

import "context"

// GenerateRequest describes one prompt submitted to a generative model.
type GenerateRequest struct {
	Model           string
	Prompt          string
	Temperature     float32
	MaxOutputTokens int32
}

// Generator produces free-form text for a prompt against a named model.
// Implementations must not retry internally; callers decide how failures
// are absorbed.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// GeneratorFunc adapts an ordinary function to the Generator interface.
type GeneratorFunc func(ctx context.Context, req GenerateRequest) (string, error)

// Generate calls f(ctx, req).
func (f GeneratorFunc) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	return f(ctx, req)
}
