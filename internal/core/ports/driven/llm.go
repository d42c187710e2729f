// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// LLMService provides language model operations for document summarisation.
// It is the opaque summarisation capability: given text and a length budget it
// returns a shorter text, and it may fail or time out at any call.
// This is an optional service - when nil, analysis degrades to entities and compliance only.
//
// Implementations may include:
//   - OpenAI (GPT-4o family)
//   - Anthropic (Claude)
//   - Ollama (local models)
type LLMService interface {
	// Summarise creates a summary of content within the given length budget.
	// Implementations must honour ctx cancellation.
	Summarise(ctx context.Context, content string, opts SummariseOptions) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	// This is used when configuring a provider to verify connectivity.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// SummariseOptions configures a summarisation call.
// Lengths are expressed in words.
type SummariseOptions struct {
	// MaxLength is the upper bound of the summary length.
	MaxLength int

	// MinLength is the lower bound of the summary length.
	MinLength int

	// Instruction is an optional prefix steering tone or focus
	// (e.g. formal refinement, per-section summaries).
	Instruction string
}
