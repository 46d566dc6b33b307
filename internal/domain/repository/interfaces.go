package repository

import (
	"context"

	"mpasi-planner/internal/domain/entity"
)

// VectorStore is the nearest-neighbor boundary over the indexed nutrition
// dataset. Search is read-only; Upsert is exercised only by the indexer.
type VectorStore interface {
	Search(ctx context.Context, vector []float32, limit uint64, category string) ([]entity.Document, error)
	Upsert(ctx context.Context, doc entity.Document, vector []float32) error
}

// Embedder turns query text into the vector space of the indexed chunks.
type Embedder interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// CompletionProvider is the uniform surface of one generation backend.
// Configuration (endpoint, credentials, model) is supplied at construction,
// not per call.
type CompletionProvider interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Model() string
}

// RequestLimiter enforces the per-client daily menu request budget.
type RequestLimiter interface {
	Allow(ctx context.Context, clientID string) (bool, error)
	Increment(ctx context.Context, clientID string) error
}
