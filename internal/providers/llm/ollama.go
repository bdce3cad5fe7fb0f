package llm

import "time"

// Ollama exposes an OpenAI-compatible endpoint since 0.1.24.
type Ollama struct {
	*OpenAICompatible
}

func NewOllama(baseURL, apiKey string, timeout time.Duration) *Ollama {
	return &Ollama{
		OpenAICompatible: NewOpenAICompatible(OpenAICompatibleConfig{
			BaseURL:    baseURL,
			APIKey:     apiKey,
			Timeout:    timeout,
			AuthHeader: "Authorization",
			AuthPrefix: "Bearer ",
		}),
	}
}
