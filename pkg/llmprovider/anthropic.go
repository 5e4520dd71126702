package llmprovider

import (
	"context"
	"net/http"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider issues a single non-streaming Messages.New call per
// Generate, grounded on the Client.Chat shape in
// _examples/intelligencedev-manifold/internal/llm/anthropic/client.go,
// stripped of the streaming, tool-use, and extended-thinking paths that
// this orchestrator's persona roster does not need.
type AnthropicProvider struct {
	sdk anthropic.Client
}

// NewAnthropicProvider builds a provider against apiKey. httpClient may be
// nil to use http.DefaultClient. baseURL overrides the SDK's default
// endpoint; pass "" in production.
func NewAnthropicProvider(apiKey string, httpClient *http.Client, baseURL string) *AnthropicProvider {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(apiKey)),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimSuffix(baseURL, "/")))
	}
	return &AnthropicProvider{sdk: anthropic.NewClient(opts...)}
}

func (p *AnthropicProvider) Generate(ctx context.Context, req Request) (Result, error) {
	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	messages := make([]anthropic.MessageParam, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch strings.ToLower(m.Role) {
		case "assistant":
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		Messages:  messages,
		MaxTokens: maxTokens,
	}
	if strings.TrimSpace(req.SystemPrompt) != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	start := time.Now()
	resp, err := p.sdk.Messages.New(ctx, params)
	dur := time.Since(start)
	if err != nil {
		return Result{Success: false, Error: err.Error(), Model: req.Model, DurationMs: dur.Milliseconds()}, nil
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(tb.Text)
		}
	}

	totalTokens := int(resp.Usage.InputTokens + resp.Usage.OutputTokens)
	return Result{
		Success:     true,
		Content:     sb.String(),
		Model:       string(resp.Model),
		TotalTokens: totalTokens,
		DurationMs:  dur.Milliseconds(),
	}, nil
}
