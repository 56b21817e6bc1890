package llm

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

type GenerationParams struct {
	Temperature *float32 `json:"temperature"`
	TopK        *int     `json:"top_k"`
	TopP        *float32 `json:"top_p"`
	MaxTokens   *int     `json:"max_tokens"`
	Stop        []string `json:"stop"`
	// JSONMode asks the backend to constrain output to a single JSON object.
	// Backends without a native JSON mode rely on prompt instructions, so
	// callers should still run the output through StripJSONFences.
	JSONMode bool `json:"json_mode"`
}

// Client defines the standard interface for any LLM backend.
type Client interface {
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)
}

// StripJSONFences removes the markdown code fences some models wrap around
// JSON output even when asked for raw JSON.
func StripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// apiKeyFromEnv resolves an API key from the named environment variable,
// falling back to the container secret mount used in deployed environments.
func apiKeyFromEnv(envVar, secretName string) (string, error) {
	if key := os.Getenv(envVar); key != "" {
		return key, nil
	}
	secretPath := filepath.Join("/run/secrets", secretName)
	raw, err := os.ReadFile(secretPath)
	if err != nil {
		return "", fmt.Errorf("%s not set and no secret at %s", envVar, secretPath)
	}
	slog.Info("API key loaded from secret mount", "path", secretPath)
	return strings.TrimSpace(string(raw)), nil
}
