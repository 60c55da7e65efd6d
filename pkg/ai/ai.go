package ai

import (
	"context"
)

const (
	// DefaultTemperature keeps generation close to deterministic.
	DefaultTemperature = 0.3
	// DefaultMaxTokens bounds the size of a single completion.
	DefaultMaxTokens = 12000
)

// GenerateOptions holds configuration for AI generation requests.
type GenerateOptions struct {
	Model         string   // Model identifier to use for generation
	SystemPrompts []string // System prompts prepended to the request
	Temperature   float64  // Sampling temperature (0.0-2.0)
	MaxTokens     int      // Upper bound on completion tokens
}

// GenerateOption is a functional option for configuring AI generation requests.
type GenerateOption func(*GenerateOptions)

// WithModel returns a GenerateOption that sets the model to use for generation.
func WithModel(model string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Model = model
	}
}

// WithSystemPrompts returns a GenerateOption that sets the system prompts
// to prepend to the generation request.
func WithSystemPrompts(prompts ...string) GenerateOption {
	return func(o *GenerateOptions) {
		o.SystemPrompts = prompts
	}
}

// WithTemperature returns a GenerateOption that sets the sampling temperature.
// Higher values (e.g., 1.0) produce more random outputs, while lower values
// (e.g., 0.2) make outputs more focused and deterministic.
func WithTemperature(temp float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = temp
	}
}

// WithMaxTokens returns a GenerateOption that caps the completion length.
func WithMaxTokens(tokens int) GenerateOption {
	return func(o *GenerateOptions) {
		o.MaxTokens = tokens
	}
}

// NewGenerateOptions applies opts on top of the package defaults and the
// given model.
func NewGenerateOptions(model string, opts ...GenerateOption) GenerateOptions {
	options := GenerateOptions{
		Model:       model,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	}
	for _, o := range opts {
		o(&options)
	}
	return options
}

// Generator issues a single completion request to an external text
// generation service.
//
// Implementations make exactly one outbound call per invocation: no retries,
// no batching. Cancellation and deadlines come from ctx. Failures are
// reported with the sentinel errors of this package so callers can map them
// without knowing the backend:
//   - ErrUpstreamTimeout     → ctx deadline expired while waiting
//   - *UpstreamError         → the service answered with a non-success status
//   - ErrUpstreamUnreachable → transport failure
//   - ErrEmptyCompletion     → the service answered without content
type Generator interface {
	GenerateCompletion(
		ctx context.Context,
		prompt string,
		opts ...GenerateOption,
	) (string, error)

	// Name identifies the backend and model in logs.
	Name() string
}
