package llmprovider

import (
	"context"
	"net/http"
	"strings"
	"time"

	sdk "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// OpenAIProvider issues a single non-streaming Chat.Completions.New call per
// Generate, grounded on the Client.Chat shape in
// _examples/intelligencedev-manifold/internal/llm/openai/client.go, stripped
// of the streaming, Gemini-compatibility, and self-hosted-tokenizer paths.
type OpenAIProvider struct {
	sdk sdk.Client
}

// NewOpenAIProvider builds a provider against apiKey. httpClient may be nil
// to use http.DefaultClient. baseURL overrides the SDK's default endpoint;
// pass "" in production.
func NewOpenAIProvider(apiKey string, httpClient *http.Client, baseURL string) *OpenAIProvider {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIProvider{sdk: sdk.NewClient(opts...)}
}

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (Result, error) {
	messages := make([]sdk.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if strings.TrimSpace(req.SystemPrompt) != "" {
		messages = append(messages, sdk.SystemMessage(req.SystemPrompt))
	}
	for _, m := range req.Messages {
		switch strings.ToLower(m.Role) {
		case "assistant":
			messages = append(messages, sdk.AssistantMessage(m.Content))
		case "system":
			messages = append(messages, sdk.SystemMessage(m.Content))
		default:
			messages = append(messages, sdk.UserMessage(m.Content))
		}
	}

	params := sdk.ChatCompletionNewParams{
		Model:    sdk.ChatModel(req.Model),
		Messages: messages,
	}
	if req.Temperature > 0 {
		params.Temperature = sdk.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = sdk.Int(int64(req.MaxTokens))
	}

	start := time.Now()
	comp, err := p.sdk.Chat.Completions.New(ctx, params)
	dur := time.Since(start)
	if err != nil {
		return Result{Success: false, Error: err.Error(), Model: req.Model, DurationMs: dur.Milliseconds()}, nil
	}

	var content string
	if len(comp.Choices) > 0 {
		content = comp.Choices[0].Message.Content
	}

	return Result{
		Success:     true,
		Content:     content,
		Model:       string(comp.Model),
		TotalTokens: int(comp.Usage.TotalTokens),
		DurationMs:  dur.Milliseconds(),
	}, nil
}
