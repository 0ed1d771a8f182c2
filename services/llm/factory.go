package llm

import (
	"fmt"
	"log/slog"
	"os"
)

// NewFromEnv builds an LLMClient from the LLM_BACKEND environment variable.
// Supported backends: "ollama" (default), "openai".
func NewFromEnv() (LLMClient, error) {
	backend := os.Getenv("LLM_BACKEND")
	if backend == "" {
		backend = "ollama"
	}
	slog.Info("Selecting LLM backend", "backend", backend)
	switch backend {
	case "ollama":
		return NewOllamaClient()
	case "openai":
		return NewOpenAIClient()
	default:
		return nil, fmt.Errorf("unknown LLM_BACKEND %q (want ollama or openai)", backend)
	}
}
