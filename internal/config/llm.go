package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/qdoctor/agent/pkg/log"
)

type LLMConfig struct {
	Provider string `env:"LLM_PROVIDER" envDefault:"groq"`

	GroqAPIKey          string `env:"GROQ_API_KEY"`
	OpenAIAPIKey        string `env:"OPENAI_API_KEY"`
	OllamaBaseURL       string `env:"OLLAMA_BASE_URL" envDefault:"http://localhost:11434"`
	OllamaAPIKey        string `env:"OLLAMA_API_KEY"`
	CustomOpenAIBaseURL string `env:"CUSTOM_OPENAI_BASE_URL"`
	CustomOpenAIAPIKey  string `env:"CUSTOM_OPENAI_API_KEY"`

	// Model profiles the gateway routes between.
	PreciseModel string `env:"LLM_PRECISE_MODEL" envDefault:"llama-3.3-70b-versatile"`
	FastModel    string `env:"LLM_FAST_MODEL" envDefault:"llama-3.1-8b-instant"`

	Timeout       time.Duration `env:"LLM_TIMEOUT" envDefault:"30s"`
	MaxConcurrent int           `env:"LLM_MAX_CONCURRENT" envDefault:"4"`
}

func NewLLMConfig(ctx context.Context) *LLMConfig {
	c := &LLMConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse LLM config")
	}
	return c
}
