package llmprovider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIProvider_GenerateReturnsText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"gpt-4o","choices":[{"message":{"role":"assistant","content":"hello from gpt"}}],"usage":{"prompt_tokens":8,"completion_tokens":4,"total_tokens":12}}`))
	}))
	t.Cleanup(srv.Close)

	p := NewOpenAIProvider("k", srv.Client(), srv.URL)
	res, err := p.Generate(context.Background(), Request{
		Model:        "gpt-4o",
		SystemPrompt: "be terse",
		Messages:     []ChatMessage{{Role: "user", Content: "hi"}},
		MaxTokens:    100,
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "hello from gpt", res.Content)
	assert.Equal(t, 12, res.TotalTokens)
}

func TestOpenAIProvider_GenerateSurfacesAPIErrorAsFailureResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	t.Cleanup(srv.Close)

	p := NewOpenAIProvider("k", srv.Client(), srv.URL)
	res, err := p.Generate(context.Background(), Request{
		Model:    "gpt-4o",
		Messages: []ChatMessage{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
}
