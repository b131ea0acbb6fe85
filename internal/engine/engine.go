package engine

import "context"

// Engine abstracts a hosted text-generation backend. Consumers such as the
// inference orchestrator and the affinity matcher use this interface instead
// of depending on a concrete client, so tests can substitute a mock and a
// different provider can be wired in without touching callers.
type Engine interface {
	// Generate sends one prompt to the given model and returns the raw
	// response text. An empty response is an error, not a value.
	Generate(ctx context.Context, model string, prompt Prompt) (string, error)

	// Embed returns the embedding vector for the given text using the
	// specified embedding model.
	Embed(ctx context.Context, model, text string) ([]float32, error)
}

// Prompt is one structured request to a generative model: an optional system
// role, the user content, and a sampling temperature.
type Prompt struct {
	System      string
	User        string
	Temperature float32
}
