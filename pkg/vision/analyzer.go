package vision

import (
	"context"
	"fmt"

	"troubleshoot-agent-be/pkg/llm"
)

const analysisPrompt = `The user attached a screenshot or photo of their iPhone along with this message:

"%s"

Describe what the image shows that is relevant to their problem: error messages, settings screens, battery statistics, visible damage. Keep it to a few sentences and do not speculate beyond what is visible.`

// Analyzer describes a user-supplied image so the chat pipeline can fold
// the observation into its reasoning.
type Analyzer struct {
	provider llm.LLMProvider
}

func NewAnalyzer(provider llm.LLMProvider) *Analyzer {
	return &Analyzer{provider: provider}
}

// Describe sends the base64-encoded image to a multimodal model and returns
// a textual description grounded in the user's question.
func (a *Analyzer) Describe(ctx context.Context, imageBase64, userMessage string) (string, error) {
	if imageBase64 == "" {
		return "", nil
	}

	prompt := fmt.Sprintf(analysisPrompt, userMessage)
	description, err := a.provider.Generate(ctx, prompt, llm.WithImages([]string{imageBase64}))
	if err != nil {
		return "", fmt.Errorf("image analysis failed: %w", err)
	}
	return description, nil
}
