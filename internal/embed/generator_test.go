package embed

import "testing"

func TestNew_UnsupportedBackend(t *testing.T) {
	_, err := New("bedrock", "key", "")
	if err == nil {
		t.Fatal("expected an error for an unsupported backend, got nil")
	}
}

func TestNew_MissingAPIKey(t *testing.T) {
	for _, backend := range []string{"", "openai", "gemini"} {
		if _, err := New(backend, "", ""); err == nil {
			t.Errorf("backend %q: expected an error for an empty api key, got nil", backend)
		}
	}
}

func TestOpenAIGenerator_DefaultsModelAndDimensions(t *testing.T) {
	g, err := NewOpenAIGenerator("test-key", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.model != defaultOpenAIModel {
		t.Errorf("expected default model %q, got %q", defaultOpenAIModel, g.model)
	}
	if g.Dimensions() != 1536 {
		t.Errorf("expected 1536 dimensions for %s, got %d", defaultOpenAIModel, g.Dimensions())
	}
	if g.Name() != "openai:text-embedding-3-small" {
		t.Errorf("unexpected name: %s", g.Name())
	}
}

func TestOpenAIGenerator_UnknownModelFallsBackTo1536(t *testing.T) {
	g, err := NewOpenAIGenerator("test-key", "some-future-model")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Dimensions() != 1536 {
		t.Errorf("expected fallback dimensions of 1536, got %d", g.Dimensions())
	}
}

func TestGeminiGenerator_Name(t *testing.T) {
	g, err := NewGeminiGenerator("test-key", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Name() != "gemini:gemini-embedding-001" {
		t.Errorf("unexpected name: %s", g.Name())
	}
	if g.Dimensions() != geminiOutputDimension {
		t.Errorf("expected %d dimensions, got %d", geminiOutputDimension, g.Dimensions())
	}
}
