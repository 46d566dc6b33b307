package client

import (
	"context"

	"google.golang.org/genai"
)

// GeminiProvider is the hosted-cloud backend. One shared *genai.Client is
// injected at startup; each provider binds a model name.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

func NewGeminiProvider(c *genai.Client, model string) *GeminiProvider {
	return &GeminiProvider{client: c, model: model}
}

func (g *GeminiProvider) Model() string { return g.model }

func (g *GeminiProvider) Complete(ctx context.Context, prompt string) (string, error) {
	// JSON mode and low temperature keep the reply close to the schema
	// the prompt dictates.
	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0.3),
		ResponseMIMEType: "application/json",
	}
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", err
	}
	return result.Text(), nil
}
