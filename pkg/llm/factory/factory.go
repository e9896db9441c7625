package factory

import (
	"fmt"
	"time"

	"ai-jobassist-be/internal/pkg/logger"
	"ai-jobassist-be/pkg/llm"
	"ai-jobassist-be/pkg/llm/ollama"
	"ai-jobassist-be/pkg/llm/openai"
)

type Config struct {
	Provider       string
	BaseURL        string
	APIKey         string
	DefaultModel   string
	Timeout        time.Duration
	BreakerMaxFail int
	BreakerTimeout time.Duration
}

// NewLLMProvider builds the configured backend behind a circuit breaker.
func NewLLMProvider(cfg Config, log logger.ILogger) (llm.LLMProvider, error) {
	var base llm.LLMProvider
	switch cfg.Provider {
	case "openai", "":
		base = openai.NewProvider(cfg.BaseURL, cfg.APIKey, cfg.DefaultModel, cfg.Timeout)
	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		base = ollama.NewOllamaProvider(baseURL, cfg.DefaultModel, cfg.Timeout)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}

	maxFail := cfg.BreakerMaxFail
	if maxFail < 0 {
		maxFail = 0
	}
	return llm.NewBreakerProvider(base, llm.BreakerSettings{
		Name:        "llm-" + cfg.Provider,
		MaxFailures: uint32(maxFail),
		OpenTimeout: cfg.BreakerTimeout,
	}, log), nil
}
