package embed

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const (
	defaultGeminiModel    = "gemini-embedding-001"
	geminiMaxBatch        = 100 // the API rejects batches larger than this
	geminiOutputDimension = 3072
)

// GeminiGenerator wraps Google's GenAI embeddings API, grounded directly on
// internal/embedding/genai.go's GenAIEngine (the theRebelliousNerd-codenerd
// example repo's embedding-specific client, as opposed to this project's own
// internal/llm.GeminiClient, which only does chat completion).
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates an embedding generator backed by Gemini. model
// defaults to gemini-embedding-001 when empty.
func NewGeminiGenerator(apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini embedding api key is required")
	}
	if model == "" {
		model = defaultGeminiModel
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiGenerator{client: client, model: model}, nil
}

func (g *GeminiGenerator) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := g.embedChunk(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("gemini embed: no embeddings returned")
	}
	return vectors[0], nil
}

// EmbedBatch chunks the input into groups of at most geminiMaxBatch items
// (the API's documented per-request ceiling) and concatenates the results.
func (g *GeminiGenerator) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	all := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += geminiMaxBatch {
		end := start + geminiMaxBatch
		if end > len(texts) {
			end = len(texts)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		chunk, err := g.embedChunk(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("gemini embed batch [%d:%d]: %w", start, end, err)
		}
		all = append(all, chunk...)
	}
	return all, nil
}

func (g *GeminiGenerator) embedChunk(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}

	dims := int32(geminiOutputDimension)
	result, err := g.client.Models.EmbedContent(ctx, g.model, contents, &genai.EmbedContentConfig{
		OutputDimensionality: &dims,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini API error: %w", err)
	}

	vectors := make([][]float32, len(result.Embeddings))
	for i, e := range result.Embeddings {
		vectors[i] = e.Values
	}
	return vectors, nil
}

func (g *GeminiGenerator) Dimensions() int { return geminiOutputDimension }

func (g *GeminiGenerator) Name() string { return fmt.Sprintf("gemini:%s", g.model) }
