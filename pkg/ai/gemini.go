package ai

import (
	"context"
	"fmt"
	"net/http"
)

// GeminiProvider speaks the generateContent endpoint. The API key rides in
// the query string, so the request URL must stay out of error messages;
// postJSON guarantees that.
type GeminiProvider struct {
	Model      string
	APIKey     string
	baseURL    string
	httpClient *http.Client
}

var _ Completer = (*GeminiProvider)(nil)

func NewGeminiProvider(model, apiKey string) *GeminiProvider {
	return NewGeminiProviderWithClient(model, apiKey, "", nil)
}

// NewGeminiProviderWithClient overrides the endpoint and client, for tests.
func NewGeminiProviderWithClient(model, apiKey, baseURL string, client *http.Client) *GeminiProvider {
	if model == "" {
		model = "gemini-1.5-pro"
	}
	return &GeminiProvider{
		Model:      model,
		APIKey:     apiKey,
		baseURL:    baseURL,
		httpClient: client,
	}
}

func (p *GeminiProvider) ID() string {
	return "gemini:" + p.Model
}

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

func (p *GeminiProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if p.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key not provided (set GEMINI_API_KEY)")
	}

	payload := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: req.Prompt}}}},
	}
	if req.System != "" {
		payload.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}

	url := p.baseURL
	if url == "" {
		url = fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s", p.Model, p.APIKey)
	}

	var reply geminiResponse
	if err := postJSON(ctx, p.httpClient, "Gemini API", url, nil, payload, &reply); err != nil {
		return nil, err
	}

	if len(reply.Candidates) == 0 || len(reply.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("Gemini API returned no candidates")
	}

	return &CompletionResponse{
		Text:  reply.Candidates[0].Content.Parts[0].Text,
		Model: p.Model,
		Usage: TokenUsage{
			InputTokens:  reply.UsageMetadata.PromptTokenCount,
			OutputTokens: reply.UsageMetadata.CandidatesTokenCount,
		},
	}, nil
}
