package usecase

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"mpasi-planner/internal/domain/repository"
)

// ResilientProvider layers retry policy on top of a completion provider.
// The dispatcher itself never retries; when a deployment wants retries or
// a cheaper fallback model, it wraps the provider with this before
// registering it.
type ResilientProvider struct {
	primary    repository.CompletionProvider
	fallback   repository.CompletionProvider // optional cheaper model, tried once
	maxRetries int
	baseDelay  time.Duration
	timeout    time.Duration // cap per generation so one slow call cannot hang a worker
}

func NewResilientProvider(primary, fallback repository.CompletionProvider) *ResilientProvider {
	return &ResilientProvider{
		primary:    primary,
		fallback:   fallback,
		maxRetries: 2,
		baseDelay:  500 * time.Millisecond,
		timeout:    60 * time.Second,
	}
}

func (r *ResilientProvider) Model() string { return r.primary.Model() }

func (r *ResilientProvider) Complete(ctx context.Context, prompt string) (string, error) {
	resCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	raw, err := r.completeWithRetry(resCtx, r.primary, prompt)
	if err == nil {
		return raw, nil
	}
	if r.fallback == nil {
		return "", err
	}

	log.Printf("[RELIABILITY] primary %s exhausted, switching to fallback %s: %v",
		r.primary.Model(), r.fallback.Model(), err)

	raw, fbErr := r.fallback.Complete(resCtx, prompt)
	if fbErr != nil {
		return "", fmt.Errorf("both primary and fallback failed: %w", fbErr)
	}
	return raw, nil
}

func (r *ResilientProvider) completeWithRetry(ctx context.Context, p repository.CompletionProvider, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		raw, err := p.Complete(ctx, prompt)
		if err == nil {
			return raw, nil
		}
		lastErr = err

		if !isRetryable(err) || attempt == r.maxRetries {
			break
		}

		select {
		case <-time.After(backoff(r.baseDelay, attempt)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", lastErr
}

// Rate limits (429) and server errors (5xx/overload) are worth retrying.
func isRetryable(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "500") ||
		strings.Contains(msg, "503") ||
		strings.Contains(msg, "overloaded") ||
		strings.Contains(msg, "unavailable")
}

func backoff(base time.Duration, attempt int) time.Duration {
	d := float64(base) * float64(int(1)<<attempt)
	jitter := rand.Float64() * 0.2 * d
	return time.Duration(d + jitter)
}
