package llm

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var openaiTracer = otel.Tracer("webinsight.llm.openai")

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIClient generates completions through the OpenAI chat API.
type OpenAIClient struct {
	client *openai.Client
	model  string
	system string
}

func NewOpenAIClient() (*OpenAIClient, error) {
	apiKey, err := apiKeyFromEnv("OPENAI_API_KEY", "openai_api_key")
	if err != nil {
		return nil, err
	}
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = defaultOpenAIModel
		slog.Warn("OPENAI_MODEL not set", "default", model)
	}
	system := os.Getenv("SYSTEM_ROLE_PROMPT_PERSONA")
	if system == "" {
		system = "You are a helpful assistant."
	}

	slog.Info("OpenAI backend ready", "model", model)
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  model,
		system: system,
	}, nil
}

// Generate implements the Client interface.
func (o *OpenAIClient) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	ctx, span := openaiTracer.Start(ctx, "OpenAIClient.Generate")
	defer span.End()
	span.SetAttributes(attribute.String("llm.model", o.model))

	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: o.system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	applyOpenAIParams(&req, params)

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.Error("OpenAI completion failed", "error", err)
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}

	span.SetAttributes(attribute.String("llm.finish_reason", string(resp.Choices[0].FinishReason)))
	return resp.Choices[0].Message.Content, nil
}

func applyOpenAIParams(req *openai.ChatCompletionRequest, params GenerationParams) {
	if params.JSONMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	if params.Temperature != nil {
		req.Temperature = *params.Temperature
	}
	if params.TopP != nil {
		req.TopP = *params.TopP
	}
	if params.MaxTokens != nil {
		req.MaxCompletionTokens = *params.MaxTokens
	}
	if len(params.Stop) > 0 {
		req.Stop = params.Stop
	}
}
