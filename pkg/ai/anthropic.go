package ai

import (
	"context"
	"fmt"
	"net/http"
)

const anthropicEndpoint = "https://api.anthropic.com/v1/messages"

// AnthropicProvider speaks the messages endpoint. Anthropic takes the
// system prompt as a top-level field, not a message.
type AnthropicProvider struct {
	Model      string
	APIKey     string
	baseURL    string
	httpClient *http.Client
}

var _ Completer = (*AnthropicProvider)(nil)

func NewAnthropicProvider(model, apiKey string) *AnthropicProvider {
	return NewAnthropicProviderWithClient(model, apiKey, "", nil)
}

// NewAnthropicProviderWithClient overrides the endpoint and client, for tests.
func NewAnthropicProviderWithClient(model, apiKey, baseURL string, client *http.Client) *AnthropicProvider {
	if model == "" {
		model = "claude-3-5-sonnet-20240620"
	}
	if baseURL == "" {
		baseURL = anthropicEndpoint
	}
	return &AnthropicProvider{
		Model:      model,
		APIKey:     apiKey,
		baseURL:    baseURL,
		httpClient: client,
	}
}

func (p *AnthropicProvider) ID() string {
	return "anthropic:" + p.Model
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
	MaxTokens int                `json:"max_tokens"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func (p *AnthropicProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if p.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key not provided (set ANTHROPIC_API_KEY)")
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	payload := anthropicRequest{
		Model:     p.Model,
		System:    req.System,
		Messages:  []anthropicMessage{{Role: "user", Content: req.Prompt}},
		MaxTokens: maxTokens,
	}
	headers := map[string]string{
		"x-api-key":         p.APIKey,
		"anthropic-version": "2023-06-01",
	}

	var reply anthropicResponse
	if err := postJSON(ctx, p.httpClient, "Anthropic API", p.baseURL, headers, payload, &reply); err != nil {
		return nil, err
	}

	if len(reply.Content) == 0 {
		return nil, fmt.Errorf("Anthropic API returned no content")
	}

	return &CompletionResponse{
		Text:  reply.Content[0].Text,
		Model: p.Model,
		Usage: TokenUsage{
			InputTokens:  reply.Usage.InputTokens,
			OutputTokens: reply.Usage.OutputTokens,
		},
	}, nil
}
