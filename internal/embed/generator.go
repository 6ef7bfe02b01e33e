// Package embed is the Stage 7 embedding extension point: an optional
// post-ingestion pass that attaches a vector to a chunk or symbol's text so a
// downstream semantic-search layer can do nearest-neighbour lookups the
// windowed query layer doesn't cover on its own. Nothing in the ingestion
// pipeline calls this package, whatever embedding.backend is set to: it is a
// narrow, swappable interface rather than a wired pipeline stage.
//
// Grounded on internal/embedding/engine.go's EmbeddingEngine interface
// (Embed/EmbedBatch/Dimensions/Name) from the theRebelliousNerd-codenerd
// example repo, since coderisk itself has no embedding-specific client —
// only chat-completion clients (internal/agent/llm_client.go,
// internal/llm/gemini_client.go) that this package's two backends adapt to
// embedding calls instead.
package embed

import (
	"context"
	"fmt"
)

// Generator produces fixed-length vectors for arbitrary text, generalized
// from a chat-completion client to an embedding-vector client.
type Generator interface {
	// Embed returns the embedding vector for a single piece of text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input text, in the same order.
	// Backends that impose a per-request item cap chunk internally and
	// concatenate the results, so callers never need to think about it.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions reports the length of vectors this Generator produces.
	Dimensions() int

	// Name identifies the backend and model, e.g. "openai:text-embedding-3-small".
	Name() string
}

// New builds a Generator from an embedding backend name ("openai" or
// "gemini"), an API key, and an optional model override (empty string picks
// the backend's default model).
func New(backend, apiKey, model string) (Generator, error) {
	switch backend {
	case "", "openai":
		return NewOpenAIGenerator(apiKey, model)
	case "gemini":
		return NewGeminiGenerator(apiKey, model)
	default:
		return nil, fmt.Errorf("unsupported embedding backend %q (use \"openai\" or \"gemini\")", backend)
	}
}
