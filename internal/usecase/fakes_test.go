package usecase

import (
	"context"
	"fmt"
	"sync/atomic"

	"mpasi-planner/internal/domain/entity"
)

type fakeStore struct {
	docs map[string][]entity.Document // keyed by category
	err  error
}

func (f *fakeStore) Search(ctx context.Context, vector []float32, limit uint64, category string) ([]entity.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	docs := f.docs[category]
	if uint64(len(docs)) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

func (f *fakeStore) Upsert(ctx context.Context, doc entity.Document, vector []float32) error {
	return nil
}

type fakeEmbedder struct {
	err   error
	calls atomic.Int32
}

func (f *fakeEmbedder) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

type fakeLimiter struct {
	allowed     bool
	err         error
	incremented chan string
}

func newFakeLimiter(allowed bool) *fakeLimiter {
	return &fakeLimiter{allowed: allowed, incremented: make(chan string, 1)}
}

func (f *fakeLimiter) Allow(ctx context.Context, clientID string) (bool, error) {
	return f.allowed, f.err
}

func (f *fakeLimiter) Increment(ctx context.Context, clientID string) error {
	select {
	case f.incremented <- clientID:
	default:
	}
	return nil
}

// fakeProvider returns a canned reply, a canned error, or blocks until the
// context expires when waitForCtx is set.
type fakeProvider struct {
	reply      string
	err        error
	model      string
	waitForCtx bool
	calls      atomic.Int32
}

func (f *fakeProvider) Model() string { return f.model }

func (f *fakeProvider) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls.Add(1)
	if f.waitForCtx {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func categoryDocs(category string, n int) []entity.Document {
	docs := make([]entity.Document, n)
	for i := range docs {
		docs[i] = entity.Document{
			ID:       fmt.Sprintf("%s-%d", category, i),
			Content:  fmt.Sprintf("%s document %d", category, i),
			Category: category,
		}
	}
	return docs
}
