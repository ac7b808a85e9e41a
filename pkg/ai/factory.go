package ai

import (
	"fmt"
	"os"

	"github.com/felixgeelhaar/porter/pkg/domain/generate"
)

// NewProviderGenerator builds a generator for the named provider. API keys
// come from the conventional environment variables; this factory is the
// only place the ai package touches the process environment.
func NewProviderGenerator(providerName, modelName string) (generate.Generator, error) {
	completer, err := newCompleter(providerName, modelName)
	if err != nil {
		return nil, err
	}
	return NewResilientGenerator(NewGenerator(completer)), nil
}

func newCompleter(providerName, modelName string) (Completer, error) {
	switch providerName {
	case "ollama", "":
		return NewOllamaProvider(modelName), nil
	case "openai":
		return NewOpenAIProvider(modelName, os.Getenv("OPENAI_API_KEY")), nil
	case "anthropic":
		return NewAnthropicProvider(modelName, os.Getenv("ANTHROPIC_API_KEY")), nil
	case "gemini":
		return NewGeminiProvider(modelName, os.Getenv("GEMINI_API_KEY")), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", providerName)
	}
}
