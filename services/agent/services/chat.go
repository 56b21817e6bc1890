// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/AleutianWebInsight/services/agent/datatypes"
	"github.com/AleutianAI/AleutianWebInsight/services/agent/index"
	"github.com/AleutianAI/AleutianWebInsight/services/crawler"
	"github.com/AleutianAI/AleutianWebInsight/services/llm"
)

var chatTracer = otel.Tracer("webinsight.agent.services")

// =============================================================================
// ChatService
// =============================================================================

// ChatService answers follow-up questions about an analyzed site using
// retrieval-augmented generation. It orchestrates the flow between:
//   - Indexer: Retrieves the chunks nearest the question
//   - Crawler: Indexes the site on the fly if it was never analyzed
//   - LLM client: Generates the grounded answer
//   - Weaviate: Stores and retrieves thread history
//
// The service is stateless and safe for concurrent use.
type ChatService struct {
	weaviateClient *weaviate.Client
	crawler        *crawler.Crawler
	indexer        *index.Indexer
	llmClient      llm.Client
}

// NewChatService creates a ChatService with the provided dependencies.
func NewChatService(client *weaviate.Client, c *crawler.Crawler, ix *index.Indexer,
	llmClient llm.Client) *ChatService {
	return &ChatService{
		weaviateClient: client,
		crawler:        c,
		indexer:        ix,
		llmClient:      llmClient,
	}
}

// chatLLMReply is the JSON shape the chat prompt asks the model to produce.
type chatLLMReply struct {
	AgentResponse  string   `json:"agent_response"`
	ContextSources []string `json:"context_sources"`
}

// Process handles one chat turn end-to-end.
//
// The processing flow is:
//  1. Ensure request defaults and validate
//  2. Derive the site key; if the site is not indexed, crawl and index it
//  3. Generate or continue the thread ID
//  4. Retrieve the nearest chunks and the recent thread history
//  5. Build the grounded prompt and call the LLM in JSON mode
//  6. Persist the turn asynchronously and build the response
//
// A brand-new thread additionally gets an asynchronous LLM-generated
// summary for the thread listing.
func (s *ChatService) Process(ctx context.Context, req *datatypes.ChatRequest) (*datatypes.ChatResponse, error) {
	ctx, span := chatTracer.Start(ctx, "ChatService.Process")
	defer span.End()
	started := time.Now()

	req.EnsureDefaults()
	span.SetAttributes(attribute.String("request.id", req.RequestID))

	if err := req.Validate(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	site, err := index.SiteKey(req.URL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid URL")
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	span.SetAttributes(attribute.String("site", site))

	threadID := req.ThreadID
	isFirstTurn := false
	if threadID == "" {
		threadID = uuid.New().String()
		isFirstTurn = true
		span.SetAttributes(attribute.String("thread_id_new", threadID))
		slog.Info("No ThreadId provided, creating a new one", "threadId", threadID)
	}
	span.SetAttributes(attribute.String("thread.id", threadID))

	slog.Info("Processing chat request",
		"requestId", req.RequestID,
		"threadId", threadID,
		"site", site,
	)

	// Step 2: Make sure the site is indexed; index on the fly if not.
	if err := s.ensureSiteIndexed(ctx, site, req.URL); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "site indexing failed")
		return nil, err
	}

	// Step 4: Retrieval
	chunks, err := s.indexer.Search(ctx, site, req.Query, index.DefaultSearchLimit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "retrieval failed")
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}
	span.SetAttributes(attribute.Int("retrieval.chunks", len(chunks)))

	var history []datatypes.ConversationResult
	if !isFirstTurn {
		history, err = FetchThreadHistory(ctx, s.weaviateClient, threadID, 50)
		if err != nil {
			// Degraded but answerable; the turn just loses its history.
			slog.Error("Failed to fetch thread history, answering without it",
				"threadId", threadID, "error", err)
		}
	}

	// Step 5: Generation
	prompt := BuildChatPrompt(chunks, history, req.Query)
	params := llm.GenerationParams{JSONMode: true}
	raw, err := s.llmClient.Generate(ctx, prompt, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		return nil, &GenerationError{Stage: "generate", Err: err}
	}

	answer, sources := parseChatReply(raw, chunks)

	// Step 6: Persist the turn without blocking the response.
	convo := datatypes.Conversation{
		ThreadID: threadID,
		Site:     site,
		Question: req.Query,
		Answer:   answer,
	}
	go func() {
		// Detached from the request context: the save must outlive it.
		if err := convo.Save(context.Background(), s.weaviateClient); err != nil {
			slog.Error("Failed to save conversation async", "threadId", threadID, "error", err)
		}
	}()

	if isFirstTurn {
		slog.Info("First turn of a new thread, triggering summarization.", "threadId", threadID)
		go s.SummarizeAndSaveThread(threadID, site, req.Query, answer)
	}

	resp := datatypes.NewChatResponse(req.RequestID, req.URL, req.Query, threadID, answer, sources)
	resp.ProcessingTimeMs = time.Since(started).Milliseconds()
	span.SetAttributes(attribute.Int("response.sources_count", len(resp.ContextSources)))
	return resp, nil
}

// ensureSiteIndexed crawls and indexes the site if nothing is stored for it
// yet. Chat against a never-analyzed site therefore works, just slower on
// the first turn.
func (s *ChatService) ensureSiteIndexed(ctx context.Context, site, rawURL string) error {
	ctx, span := chatTracer.Start(ctx, "ChatService.ensureSiteIndexed")
	defer span.End()

	exists, err := s.indexer.HasSite(ctx, site)
	if err != nil {
		return fmt.Errorf("failed to check site index: %w", err)
	}
	if exists {
		return nil
	}

	slog.Info("Site not indexed yet, crawling before chat", "site", site)
	startURL := strings.TrimSpace(rawURL)
	if !strings.Contains(startURL, "://") {
		startURL = "https://" + startURL
	}

	pages, err := s.crawler.Crawl(ctx, startURL)
	if err != nil {
		return &CrawlError{URL: startURL, Err: err}
	}
	if _, err := s.indexer.IndexPages(ctx, site, pages); err != nil {
		return fmt.Errorf("failed to index site content: %w", err)
	}
	return nil
}

// parseChatReply extracts the answer and sources from the model's JSON
// reply. When the model ignores the JSON instruction the raw text becomes
// the answer and the retrieved chunk URLs become the sources.
func parseChatReply(raw string, chunks []datatypes.SiteChunkResult) (string, []string) {
	var reply chatLLMReply
	cleaned := llm.StripJSONFences(raw)
	if err := json.Unmarshal([]byte(cleaned), &reply); err == nil && reply.AgentResponse != "" {
		return reply.AgentResponse, dedupeSources(reply.ContextSources)
	}

	slog.Warn("Chat LLM reply was not valid JSON, falling back to raw text")
	var sources []string
	for _, chunk := range chunks {
		sources = append(sources, chunk.URL)
	}
	return strings.TrimSpace(raw), dedupeSources(sources)
}

// dedupeSources removes duplicate URLs while preserving order.
func dedupeSources(sources []string) []string {
	seen := make(map[string]bool, len(sources))
	var out []string
	for _, src := range sources {
		if src == "" || seen[src] {
			continue
		}
		seen[src] = true
		out = append(out, src)
	}
	return out
}

// FetchThreadHistory returns the most recent turns of a thread, at most
// limit of them, in chronological order. The query sorts newest-first so
// the limit trims the oldest turns of a long thread, not the latest ones;
// the window is then reversed back into chronological order.
func FetchThreadHistory(ctx context.Context, client *weaviate.Client, threadID string,
	limit int) ([]datatypes.ConversationResult, error) {

	where := filters.Where().
		WithPath([]string{"thread_id"}).
		WithOperator(filters.Equal).
		WithValueString(threadID)

	fields := []graphql.Field{
		{Name: "thread_id"},
		{Name: "question"},
		{Name: "answer"},
		{Name: "timestamp"},
	}

	newestFirst := graphql.Sort{Path: []string{"timestamp"}, Order: graphql.Desc}

	resp, err := client.GraphQL().Get().
		WithClassName("Conversation").
		WithWhere(where).
		WithFields(fields...).
		WithSort(newestFirst).
		WithLimit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query thread history: %w", err)
	}

	parsed, err := datatypes.ParseGraphQLResponse[datatypes.ConversationQueryResponse](resp)
	if err != nil {
		return nil, fmt.Errorf("failed to parse thread history response: %w", err)
	}
	return chronological(parsed.Get.Conversation), nil
}

// chronological reorders a newest-first window of turns into oldest-first.
func chronological(turns []datatypes.ConversationResult) []datatypes.ConversationResult {
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns
}
