package llm

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/genai"
)

var geminiTracer = otel.Tracer("webinsight.llm.gemini")

type GeminiClient struct {
	client *genai.Client
	model  string
}

const defaultGeminiModel = "gemini-2.5-flash"

func NewGeminiClient(ctx context.Context) (*GeminiClient, error) {
	apiKey, err := apiKeyFromEnv("GEMINI_API_KEY", "gemini_api_key")
	if err != nil {
		return nil, err
	}
	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = defaultGeminiModel
		slog.Warn("GEMINI_MODEL not set", "default", model)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	slog.Info("Gemini backend ready", "model", model)
	return &GeminiClient{client: client, model: model}, nil
}

// Generate implements the Client interface.
func (g *GeminiClient) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	ctx, span := geminiTracer.Start(ctx, "GeminiClient.Generate")
	defer span.End()
	span.SetAttributes(attribute.String("llm.model", g.model))
	slog.Debug("Generating text via Gemini", "model", g.model)

	config := &genai.GenerateContentConfig{}
	if params.JSONMode {
		config.ResponseMIMEType = "application/json"
	}
	if params.Temperature != nil {
		config.Temperature = params.Temperature
	}
	if params.TopP != nil {
		config.TopP = params.TopP
	}
	if params.TopK != nil {
		topK := float32(*params.TopK)
		config.TopK = &topK
	}
	if params.MaxTokens != nil {
		config.MaxOutputTokens = int32(*params.MaxTokens)
	}
	if len(params.Stop) > 0 {
		config.StopSequences = params.Stop
	}

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.Error("Gemini API call failed", "error", err)
		return "", fmt.Errorf("Gemini API call failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		slog.Warn("Gemini returned no candidates or empty content")
		return "", fmt.Errorf("Gemini returned no content")
	}
	return text, nil
}
