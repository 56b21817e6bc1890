// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"log"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"google.golang.org/grpc/credentials/insecure"

	// --- OpenTelemetry imports ---
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"

	"github.com/AleutianAI/AleutianWebInsight/pkg/extensions"
	"github.com/AleutianAI/AleutianWebInsight/services/agent/datatypes"
	"github.com/AleutianAI/AleutianWebInsight/services/agent/index"
	"github.com/AleutianAI/AleutianWebInsight/services/agent/observability"
	"github.com/AleutianAI/AleutianWebInsight/services/agent/routes"
	"github.com/AleutianAI/AleutianWebInsight/services/agent/services"
	"github.com/AleutianAI/AleutianWebInsight/services/crawler"
	"github.com/AleutianAI/AleutianWebInsight/services/embedding"
	"github.com/AleutianAI/AleutianWebInsight/services/llm"
)

func initTracer() (func(context.Context), error) {
	ctx := context.Background()

	otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otelEndpoint == "" {
		otelEndpoint = "webinsight-otel-collector:4317"
	}
	conn, err := grpc.NewClient(otelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("webinsight-agent")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.
		TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

// newLLMClient picks the generation backend from LLM_BACKEND_TYPE.
func newLLMClient(ctx context.Context) (llm.Client, error) {
	llmBackendType := os.Getenv("LLM_BACKEND_TYPE")
	switch llmBackendType {
	case "gemini":
		slog.Info("Using Gemini LLM backend")
		return llm.NewGeminiClient(ctx)
	case "openai":
		slog.Info("Using OpenAI LLM backend")
		return llm.NewOpenAIClient()
	case "ollama":
		slog.Info("Using Ollama LLM backend")
		return llm.NewOllamaClient()
	default:
		slog.Warn("LLM_BACKEND_TYPE not set or invalid, defaulting to gemini")
		return llm.NewGeminiClient(ctx)
	}
}

func main() {
	port := os.Getenv("AGENT_PORT")
	if port == "" {
		port = "12310"
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// --- Init the tracer ---
	cleanup, err := initTracer()
	if err != nil {
		log.Fatalf("failed to setup the OTLP tracer: %v", err)
	}
	defer cleanup(context.Background())

	observability.InitMetrics()

	weaviateURL := os.Getenv("WEAVIATE_SERVICE_URL")
	// Sanitize: Trim quotes and whitespace just in case the container runtime
	// passes them literally
	weaviateURL = strings.Trim(weaviateURL, "\"' ")

	parsedURL, err := url.Parse(weaviateURL)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		log.Fatalf("WEAVIATE_SERVICE_URL is missing or invalid: %q", weaviateURL)
	}
	clientConf := weaviate.Config{
		Host:   parsedURL.Host,
		Scheme: parsedURL.Scheme,
	}
	weaviateClient, err := weaviate.NewClient(clientConf)
	if err != nil {
		log.Fatalf("Failed to create Weaviate client: %v", err)
	}
	ctx := context.Background()
	if err := datatypes.EnsureWeaviateSchema(ctx, weaviateClient); err != nil {
		log.Fatalf("Failed to ensure Weaviate schema: %v", err)
	}

	embedder, err := embedding.NewGenAIProvider(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize embedding provider: %v", err)
	}

	log.Println("Configuring the LLM Client")
	llmClient, err := newLLMClient(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize LLM client: %v", err)
	}

	crawlerConfig, err := crawler.LoadConfig(os.Getenv("CRAWLER_CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load crawler config: %v", err)
	}
	siteCrawler := crawler.New(crawlerConfig)

	indexer := index.NewIndexer(weaviateClient, embedder)
	analysisService := services.NewAnalysisService(siteCrawler, indexer, llmClient)
	chatService := services.NewChatService(weaviateClient, siteCrawler, indexer, llmClient)

	authProvider, err := extensions.ProviderFromEnv()
	if err != nil {
		log.Fatalf("Failed to configure auth provider: %v", err)
	}

	router := gin.Default()
	router.Use(otelgin.Middleware("webinsight-agent"))

	routes.SetupRoutes(router, weaviateClient, indexer, analysisService, chatService, authProvider)

	log.Println("Starting the agent server on port ", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
