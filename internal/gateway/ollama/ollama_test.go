package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/neuropost/internal/gateway"
)

func TestOllamaGenerateJSON(t *testing.T) {
	var got generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&got)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]any{
			"model":    got.Model,
			"response": `{"topics":["T1","T2"]}`,
			"done":     true,
		}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", "llama3.1")

	raw, err := client.GenerateJSON(context.Background(), gateway.JSONRequest{
		Prompt:      "suggest",
		Schema:      gateway.TopicsSchema,
		Temperature: 0.8,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"topics":["T1","T2"]}`, raw)

	assert.Equal(t, "llama3.1", got.Model)
	assert.Equal(t, "suggest", got.Prompt)
	assert.False(t, got.Stream)
	require.NotNil(t, got.Format)
	assert.Equal(t, gateway.TypeObject, got.Format.Type)
	assert.InDelta(t, 0.8, got.Options.Temperature, 0.001)
}

func TestOllamaGenerateJSONEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"  "}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "llama3.1").GenerateJSON(context.Background(), gateway.JSONRequest{Prompt: "p"})
	assert.ErrorIs(t, err, gateway.ErrEmptyResult)
}

func TestOllamaGenerateJSONStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "missing").GenerateJSON(context.Background(), gateway.JSONRequest{Prompt: "p"})
	assert.ErrorContains(t, err, "404")
}

func TestOllamaGenerateJSONNetworkError(t *testing.T) {
	_, err := NewClient("http://localhost:99999", "llama3.1").GenerateJSON(context.Background(), gateway.JSONRequest{Prompt: "p"})
	assert.Error(t, err)
}
