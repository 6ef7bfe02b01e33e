package embed

import (
	"context"
	"fmt"
	"os"

	"github.com/openai/openai-go/v3"
)

const defaultOpenAIModel = "text-embedding-3-small"

// openAIDimensions is the output width of OpenAI's embedding models.
// text-embedding-3-small produces 1536 dimensions; text-embedding-3-large
// produces 3072. Only the small model is supported as a default today.
var openAIDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// OpenAIGenerator wraps the OpenAI SDK's embeddings endpoint, mirroring how
// internal/agent/llm_client.go wraps its chat-completions endpoint.
type OpenAIGenerator struct {
	client openai.Client
	model  string
	dims   int
}

// NewOpenAIGenerator creates an embedding generator backed by OpenAI. model
// defaults to text-embedding-3-small when empty.
func NewOpenAIGenerator(apiKey, model string) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai embedding api key is required")
	}
	if model == "" {
		model = defaultOpenAIModel
	}

	os.Setenv("OPENAI_API_KEY", apiKey)

	dims, ok := openAIDimensions[model]
	if !ok {
		dims = 1536
	}

	return &OpenAIGenerator{
		client: openai.NewClient(),
		model:  model,
		dims:   dims,
	}, nil
}

func (g *OpenAIGenerator) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := g.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("openai embed: no embeddings returned")
	}
	return vectors[0], nil
}

// EmbedBatch calls OpenAI's embeddings endpoint once per up-to-2048-item
// chunk (the API's documented batch ceiling) and concatenates the results.
func (g *OpenAIGenerator) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	const maxBatch = 2048
	all := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxBatch {
		end := start + maxBatch
		if end > len(texts) {
			end = len(texts)
		}
		chunk, err := g.embedChunk(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("openai embed batch [%d:%d]: %w", start, end, err)
		}
		all = append(all, chunk...)
	}
	return all, nil
}

func (g *OpenAIGenerator) embedChunk(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := g.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model: g.model,
	})
	if err != nil {
		return nil, fmt.Errorf("openai API error: %w", err)
	}

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vec := make([]float32, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float32(v)
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func (g *OpenAIGenerator) Dimensions() int { return g.dims }

func (g *OpenAIGenerator) Name() string { return fmt.Sprintf("openai:%s", g.model) }
