package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLMStudioComplete(t *testing.T) {
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": `{"breakfast": {}}`}},
			},
		})
	}))
	defer srv.Close()

	p := NewLMStudioProvider(srv.URL, "", "mistral-7b")
	raw, err := p.Complete(context.Background(), "make a plan")
	require.NoError(t, err)
	require.Equal(t, `{"breakfast": {}}`, raw)

	require.Equal(t, "mistral-7b", gotReq.Model)
	require.Len(t, gotReq.Messages, 1)
	require.Equal(t, "user", gotReq.Messages[0].Role)
	require.Equal(t, "make a plan", gotReq.Messages[0].Content)
	require.InDelta(t, 0.3, gotReq.Temperature, 0.001)
	require.False(t, gotReq.Stream)
}

func TestLMStudioComplete_SendsBearerWhenConfigured(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"content": "ok"}}},
		})
	}))
	defer srv.Close()

	p := NewLMStudioProvider(srv.URL, "secret", "mistral-7b")
	_, err := p.Complete(context.Background(), "x")
	require.NoError(t, err)
}

func TestLMStudioComplete_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "model not loaded"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewLMStudioProvider(srv.URL, "", "mistral-7b")
	_, err := p.Complete(context.Background(), "x")
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 500")
}

func TestLMStudioComplete_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	p := NewLMStudioProvider(srv.URL, "", "mistral-7b")
	_, err := p.Complete(context.Background(), "x")
	require.Error(t, err)
	require.Contains(t, err.Error(), "no choices")
}

func TestLMStudioListModels_FiltersEmbeddingModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/models", r.URL.Path)
		_, _ = w.Write([]byte(`{"data": [
			{"id": "mistral-7b-instruct"},
			{"id": "nomic-embed-text-v1.5"},
			{"id": "llama-3.2-3b"},
			{"id": "bert-tokenizer"}
		]}`))
	}))
	defer srv.Close()

	p := NewLMStudioProvider(srv.URL, "", "")
	models, err := p.ListModels(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"mistral-7b-instruct", "llama-3.2-3b"}, models)
}

func TestLMStudioComplete_RespectsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewLMStudioProvider(srv.URL, "", "mistral-7b")
	_, err := p.Complete(ctx, "x")
	require.ErrorIs(t, err, context.Canceled)
}
