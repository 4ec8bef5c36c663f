package factory

import (
	"fmt"

	"troubleshoot-agent-be/pkg/llm"
	"troubleshoot-agent-be/pkg/llm/huggingface"
	"troubleshoot-agent-be/pkg/llm/ollama"
	"troubleshoot-agent-be/pkg/llm/openai"
)

// NewLLMProvider selects the chat backend from configuration.
func NewLLMProvider(provider, model, ollamaBaseURL, openaiAPIKey, huggingfaceAPIKey string) (llm.LLMProvider, error) {
	switch provider {
	case "ollama", "":
		return ollama.NewOllamaProvider(ollamaBaseURL, model), nil
	case "openai":
		if openaiAPIKey == "" {
			return nil, fmt.Errorf("openai provider requires OPENAI_API_KEY")
		}
		return openai.NewOpenAIProvider(openaiAPIKey, model), nil
	case "huggingface":
		return huggingface.NewHuggingFaceProvider(huggingfaceAPIKey, "", model), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", provider)
	}
}
