package vector

import (
	"context"
	"errors"

	"squire/internal/llm"
)

// OllamaEmbedder embeds text through the Ollama embeddings endpoint.
type OllamaEmbedder struct {
	Client *llm.Client
	Model  string
}

// Embed returns the embedding vector for text.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.Client == nil {
		return nil, errors.New("vector: embedder has no client")
	}
	return e.Client.Embed(ctx, e.Model, text)
}
