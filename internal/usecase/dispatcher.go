package usecase

import (
	"context"
	"fmt"
	"strings"

	"mpasi-planner/internal/domain/entity"
	"mpasi-planner/internal/domain/repository"
)

// Dispatcher routes an assembled prompt to one of a closed set of backends.
// Providers are registered once at startup and reused concurrently; the
// backend is an explicit field on the request, so concurrent requests may
// target different backends safely. The dispatcher itself never retries:
// retry policy, when wanted, is layered around a provider by the caller.
type Dispatcher struct {
	providers map[entity.Backend]repository.CompletionProvider
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{providers: make(map[entity.Backend]repository.CompletionProvider)}
}

func (d *Dispatcher) Register(backend entity.Backend, p repository.CompletionProvider) {
	d.providers[backend] = p
}

// Backends lists the registered backend ids.
func (d *Dispatcher) Backends() []entity.Backend {
	out := make([]entity.Backend, 0, len(d.providers))
	for b := range d.providers {
		out = append(out, b)
	}
	return out
}

// ModelFor reports the model a backend was configured with.
func (d *Dispatcher) ModelFor(backend entity.Backend) string {
	if p, ok := d.providers[backend]; ok {
		return p.Model()
	}
	return ""
}

// Generate sends the prompt to the selected backend. Every failure —
// transport, auth, timeout, or a blank reply — surfaces as a single
// *entity.GenerationError carrying the backend identity.
func (d *Dispatcher) Generate(ctx context.Context, prompt entity.Prompt, backend entity.Backend) (string, error) {
	p, ok := d.providers[backend]
	if !ok {
		return "", fmt.Errorf("%w: %q", entity.ErrUnknownBackend, backend)
	}

	raw, err := p.Complete(ctx, prompt.Text)
	if err != nil {
		return "", &entity.GenerationError{Backend: backend, Model: p.Model(), Err: err}
	}
	if strings.TrimSpace(raw) == "" {
		return "", &entity.GenerationError{Backend: backend, Model: p.Model(), Err: entity.ErrEmptyCompletion}
	}
	return raw, nil
}
