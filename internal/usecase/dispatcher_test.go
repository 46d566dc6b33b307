package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"mpasi-planner/internal/domain/entity"
)

func TestDispatcher_UnknownBackend(t *testing.T) {
	d := NewDispatcher()

	_, err := d.Generate(context.Background(), entity.Prompt{Text: "p"}, entity.BackendGemini)
	require.ErrorIs(t, err, entity.ErrUnknownBackend)
}

func TestDispatcher_RoutesBySelectedBackend(t *testing.T) {
	d := NewDispatcher()
	gemini := &fakeProvider{reply: "from gemini", model: "gemini-2.5-flash"}
	local := &fakeProvider{reply: "from local", model: "mistral-7b"}
	d.Register(entity.BackendGemini, gemini)
	d.Register(entity.BackendLMStudio, local)

	raw, err := d.Generate(context.Background(), entity.Prompt{Text: "p"}, entity.BackendLMStudio)
	require.NoError(t, err)
	require.Equal(t, "from local", raw)
	require.EqualValues(t, 0, gemini.calls.Load())
}

func TestDispatcher_WrapsProviderErrorWithBackendIdentity(t *testing.T) {
	d := NewDispatcher()
	cause := errors.New("connection refused")
	d.Register(entity.BackendLMStudio, &fakeProvider{err: cause, model: "mistral-7b"})

	_, err := d.Generate(context.Background(), entity.Prompt{Text: "p"}, entity.BackendLMStudio)

	var genErr *entity.GenerationError
	require.ErrorAs(t, err, &genErr)
	require.Equal(t, entity.BackendLMStudio, genErr.Backend)
	require.Equal(t, "mistral-7b", genErr.Model)
	require.ErrorIs(t, err, cause)
}

func TestDispatcher_BlankCompletionIsGenerationError(t *testing.T) {
	d := NewDispatcher()
	d.Register(entity.BackendGemini, &fakeProvider{reply: "  \n ", model: "gemini-2.5-flash"})

	_, err := d.Generate(context.Background(), entity.Prompt{Text: "p"}, entity.BackendGemini)

	var genErr *entity.GenerationError
	require.ErrorAs(t, err, &genErr)
	require.ErrorIs(t, err, entity.ErrEmptyCompletion)
}

func TestDispatcher_NeverRetries(t *testing.T) {
	d := NewDispatcher()
	p := &fakeProvider{err: errors.New("429 rate limited"), model: "gemini-2.5-flash"}
	d.Register(entity.BackendGemini, p)

	_, err := d.Generate(context.Background(), entity.Prompt{Text: "p"}, entity.BackendGemini)
	require.Error(t, err)
	require.EqualValues(t, 1, p.calls.Load())
}
