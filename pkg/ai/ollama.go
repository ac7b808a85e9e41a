package ai

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
)

const ollamaEndpoint = "http://localhost:11434/api/generate"

// OllamaProvider speaks the local daemon's generate endpoint. No API key;
// the model name is validated because it becomes part of the request.
type OllamaProvider struct {
	Model      string
	baseURL    string
	httpClient *http.Client
}

var _ Completer = (*OllamaProvider)(nil)

func NewOllamaProvider(model string) *OllamaProvider {
	return NewOllamaProviderWithClient(model, "", nil)
}

// NewOllamaProviderWithClient overrides the endpoint and client, for tests.
func NewOllamaProviderWithClient(model, baseURL string, client *http.Client) *OllamaProvider {
	if model == "" {
		model = "llama3"
	}
	if baseURL == "" {
		baseURL = ollamaEndpoint
	}
	return &OllamaProvider{
		Model:      model,
		baseURL:    baseURL,
		httpClient: client,
	}
}

func (p *OllamaProvider) ID() string {
	return "ollama:" + p.Model
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

var safeModelName = regexp.MustCompile(`^[a-zA-Z0-9:._-]+$`)

func (p *OllamaProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if !safeModelName.MatchString(p.Model) {
		return nil, fmt.Errorf("invalid model name: %s", p.Model)
	}

	payload := ollamaRequest{
		Model:  p.Model,
		Prompt: req.Prompt,
		System: req.System,
		Stream: false,
	}

	var reply ollamaResponse
	if err := postJSON(ctx, p.httpClient, "Ollama API", p.baseURL, nil, payload, &reply); err != nil {
		return nil, err
	}

	return &CompletionResponse{
		Text:  reply.Response,
		Model: p.Model,
	}, nil
}
