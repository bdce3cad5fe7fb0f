package llm

import "time"

// Groq serves the knowledge-base models the original deployment runs on.
type Groq struct {
	*OpenAICompatible
}

func NewGroq(apiKey string, timeout time.Duration) *Groq {
	return &Groq{
		OpenAICompatible: NewOpenAICompatible(OpenAICompatibleConfig{
			BaseURL:    "https://api.groq.com/openai",
			APIKey:     apiKey,
			Timeout:    timeout,
			AuthHeader: "Authorization",
			AuthPrefix: "Bearer ",
		}),
	}
}
