package llmprovider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnthropicProvider_GenerateReturnsText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		w.Header().Set("Content-Type", "application/json")
		resp := sdk.Message{
			ID:    "msg_1",
			Type:  constant.Message("message"),
			Role:  constant.Assistant("assistant"),
			Model: sdk.ModelClaude3_7SonnetLatest,
			Content: []sdk.ContentBlockUnion{
				{Type: "text", Text: "hello from claude"},
			},
			Usage: sdk.Usage{InputTokens: 10, OutputTokens: 5},
		}
		b, _ := json.Marshal(resp)
		_, _ = w.Write(b)
	}))
	t.Cleanup(srv.Close)

	p := NewAnthropicProvider("k", srv.Client(), srv.URL)
	res, err := p.Generate(context.Background(), Request{
		Model:        "claude-3-7-sonnet-latest",
		SystemPrompt: "be terse",
		Messages:     []ChatMessage{{Role: "user", Content: "hi"}},
		MaxTokens:    100,
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "hello from claude", res.Content)
	assert.Equal(t, 15, res.TotalTokens)
}

func TestAnthropicProvider_GenerateSurfacesAPIErrorAsFailureResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"boom"}}`))
	}))
	t.Cleanup(srv.Close)

	p := NewAnthropicProvider("k", srv.Client(), srv.URL)
	res, err := p.Generate(context.Background(), Request{
		Model:    "claude-3-7-sonnet-latest",
		Messages: []ChatMessage{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
}
