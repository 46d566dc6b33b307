package usecase

import (
	"context"
	"fmt"
	"log"

	"mpasi-planner/internal/domain/entity"
	"mpasi-planner/internal/domain/repository"
)

// Default result budgets per retrieval step. Ingredients runs wider than
// rules to cover category diversity in the TKPI data.
const (
	DefaultRulesLimit       = 15
	DefaultIngredientsLimit = 20
)

// Retriever dispatches one query against the vector store and labels the
// resulting bundle. It never mixes results between the two steps: the
// bundle label doubles as the store-side category filter.
type Retriever struct {
	store    repository.VectorStore
	embedder repository.Embedder
}

func NewRetriever(store repository.VectorStore, embedder repository.Embedder) *Retriever {
	return &Retriever{store: store, embedder: embedder}
}

// Retrieve embeds the query and searches the store. Zero hits is not a
// failure; the caller receives an empty, still-labeled bundle.
func (r *Retriever) Retrieve(ctx context.Context, query, label string, limit uint64) (entity.ContextBundle, error) {
	bundle := entity.ContextBundle{Label: label, Query: query, Limit: limit}

	vector, err := r.embedder.CreateEmbedding(ctx, query)
	if err != nil {
		return bundle, fmt.Errorf("embedding %s query failed: %w", label, err)
	}

	docs, err := r.store.Search(ctx, vector, limit, label)
	if err != nil {
		return bundle, fmt.Errorf("vector search for %s failed: %w", label, err)
	}
	if len(docs) == 0 {
		log.Printf("[RETRIEVER] no %s documents matched, proceeding with empty bundle", label)
	}

	bundle.Documents = docs
	return bundle, nil
}
