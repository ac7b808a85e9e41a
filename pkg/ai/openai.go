package ai

import (
	"context"
	"fmt"
	"net/http"
)

const openAIEndpoint = "https://api.openai.com/v1/chat/completions"

// OpenAIProvider speaks the chat-completions endpoint. The system prompt
// becomes the leading system message.
type OpenAIProvider struct {
	Model      string
	APIKey     string
	baseURL    string
	httpClient *http.Client
}

var _ Completer = (*OpenAIProvider)(nil)

func NewOpenAIProvider(model, apiKey string) *OpenAIProvider {
	return NewOpenAIProviderWithClient(model, apiKey, "", nil)
}

// NewOpenAIProviderWithClient overrides the endpoint and client, for tests.
func NewOpenAIProviderWithClient(model, apiKey, baseURL string, client *http.Client) *OpenAIProvider {
	if model == "" {
		model = "gpt-4o"
	}
	if baseURL == "" {
		baseURL = openAIEndpoint
	}
	return &OpenAIProvider{
		Model:      model,
		APIKey:     apiKey,
		baseURL:    baseURL,
		httpClient: client,
	}
}

func (p *OpenAIProvider) ID() string {
	return "openai:" + p.Model
}

type openAIRequest struct {
	Model    string          `json:"model"`
	Messages []openAIMessage `json:"messages"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if p.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key not provided (set OPENAI_API_KEY)")
	}

	var messages []openAIMessage
	if req.System != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, openAIMessage{Role: "user", Content: req.Prompt})

	var reply openAIResponse
	headers := map[string]string{"Authorization": "Bearer " + p.APIKey}
	if err := postJSON(ctx, p.httpClient, "OpenAI API", p.baseURL, headers, openAIRequest{Model: p.Model, Messages: messages}, &reply); err != nil {
		return nil, err
	}

	if len(reply.Choices) == 0 {
		return nil, fmt.Errorf("OpenAI API returned no choices")
	}

	return &CompletionResponse{
		Text:  reply.Choices[0].Message.Content,
		Model: p.Model,
		Usage: TokenUsage{
			InputTokens:  reply.Usage.PromptTokens,
			OutputTokens: reply.Usage.CompletionTokens,
		},
	}, nil
}
