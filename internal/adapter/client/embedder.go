package client

import (
	"context"

	"google.golang.org/genai"
)

// GeminiEmbedder embeds retrieval queries with the same model family the
// dataset was indexed with.
type GeminiEmbedder struct {
	client *genai.Client
	model  string // e.g. "text-embedding-004"
}

func NewGeminiEmbedder(c *genai.Client, model string) *GeminiEmbedder {
	return &GeminiEmbedder{client: c, model: model}
}

func (e *GeminiEmbedder) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	res, err := e.client.Models.EmbedContent(ctx, e.model, genai.Text(text), nil)
	if err != nil {
		return nil, err
	}
	return res.Embeddings[0].Values, nil
}
