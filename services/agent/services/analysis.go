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

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/AleutianWebInsight/services/agent/datatypes"
	"github.com/AleutianAI/AleutianWebInsight/services/agent/index"
	"github.com/AleutianAI/AleutianWebInsight/services/crawler"
	"github.com/AleutianAI/AleutianWebInsight/services/llm"
)

var analysisTracer = otel.Tracer("webinsight.agent.services")

// =============================================================================
// AnalysisService
// =============================================================================

// AnalysisService handles the full analysis flow for a website. It
// orchestrates the flow between:
//   - Crawler: Fetches the site and reduces pages to clean text
//   - Indexer: Chunks, embeds, and stores the content for later chat
//   - LLM client: Extracts the structured business report
//
// The service is stateless; all state lives in the request or in Weaviate,
// so it is safe for concurrent use.
//
// Usage:
//
//	service := NewAnalysisService(siteCrawler, indexer, llmClient)
//	resp, err := service.Analyze(ctx, &req)
type AnalysisService struct {
	crawler   *crawler.Crawler
	indexer   *index.Indexer
	llmClient llm.Client
}

// NewAnalysisService creates an AnalysisService with the provided
// dependencies. All three must be non-nil.
func NewAnalysisService(c *crawler.Crawler, ix *index.Indexer, llmClient llm.Client) *AnalysisService {
	return &AnalysisService{
		crawler:   c,
		indexer:   ix,
		llmClient: llmClient,
	}
}

// Analyze runs one analysis end-to-end.
//
// The processing flow is:
//  1. Ensure request defaults and validate
//  2. Derive the site key and crawl the site
//  3. Index the crawled content for follow-up chat
//  4. Build the extraction prompt and call the LLM in JSON mode
//  5. Parse the structured report and build the response
//
// Errors are categorized so the handler can map them to HTTP status codes:
//   - *CrawlError: The site could not be fetched (upstream failure)
//   - *GenerationError: The LLM call or its JSON output failed
//   - Plain errors: Validation or internal failures
func (s *AnalysisService) Analyze(ctx context.Context, req *datatypes.AnalyzeRequest) (*datatypes.AnalyzeResponse, error) {
	ctx, span := analysisTracer.Start(ctx, "AnalysisService.Analyze")
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

	startURL := strings.TrimSpace(req.URL)
	if !strings.Contains(startURL, "://") {
		startURL = "https://" + startURL
	}

	slog.Info("Processing analysis request",
		"requestId", req.RequestID,
		"site", site,
		"questions", len(req.Questions),
	)

	// Step 2: Crawl
	pages, err := s.crawler.Crawl(ctx, startURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "crawl failed")
		return nil, &CrawlError{URL: startURL, Err: err}
	}

	// Step 3: Index for follow-up chat. An indexing failure degrades chat but
	// should not sink the analysis the caller asked for.
	chunksIndexed, err := s.indexer.IndexPages(ctx, site, pages)
	if err != nil {
		span.RecordError(err)
		slog.Error("Failed to index site content, chat will be unavailable until re-analysis",
			"site", site, "error", err)
	}

	// Step 4: Extract the structured report
	report, err := s.extractReport(ctx, pages, req.Questions)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "extraction failed")
		return nil, err
	}

	// Step 5: Build the response
	resp := datatypes.NewAnalyzeResponse(req.RequestID, req.URL, site, *report)
	resp.PagesCrawled = len(pages)
	resp.ChunksIndexed = chunksIndexed
	resp.ProcessingTimeMs = time.Since(started).Milliseconds()

	span.SetAttributes(
		attribute.Int("response.pages_crawled", resp.PagesCrawled),
		attribute.Int("response.chunks_indexed", resp.ChunksIndexed),
	)
	return resp, nil
}

// extractReport aggregates the crawled text and asks the LLM for the
// structured business report.
func (s *AnalysisService) extractReport(ctx context.Context, pages []crawler.Page,
	questions []string) (*datatypes.AnalysisReport, error) {

	ctx, span := analysisTracer.Start(ctx, "AnalysisService.extractReport")
	defer span.End()

	var sb strings.Builder
	for _, page := range pages {
		if sb.Len() >= MaxPromptContentChars {
			break
		}
		if page.Title != "" {
			sb.WriteString(page.Title)
			sb.WriteString("\n")
		}
		sb.WriteString(page.Content)
		sb.WriteString("\n\n")
	}
	if strings.TrimSpace(sb.String()) == "" {
		return nil, &GenerationError{Stage: "extract", Err: fmt.Errorf("no text content extracted from site")}
	}

	prompt := BuildAnalysisPrompt(sb.String(), questions)

	temp := float32(0.2)
	params := llm.GenerationParams{
		Temperature: &temp,
		JSONMode:    true,
	}
	raw, err := s.llmClient.Generate(ctx, prompt, params)
	if err != nil {
		return nil, &GenerationError{Stage: "generate", Err: err}
	}

	var report datatypes.AnalysisReport
	if err := json.Unmarshal([]byte(llm.StripJSONFences(raw)), &report); err != nil {
		slog.Error("LLM returned unparseable analysis JSON", "error", err)
		return nil, &GenerationError{Stage: "parse", Err: err}
	}

	// Every asked question must appear in the answers, even when the model
	// dropped it.
	if len(questions) > 0 {
		answered := make(map[string]bool, len(report.ExtractedAnswers))
		for _, ans := range report.ExtractedAnswers {
			answered[ans.Question] = true
		}
		for _, q := range questions {
			if !answered[q] {
				report.ExtractedAnswers = append(report.ExtractedAnswers,
					datatypes.ExtractedAnswer{Question: q, Answer: "Not found in website content."})
			}
		}
	}
	if report.CompanyInfo.CoreProductsServices == nil {
		report.CompanyInfo.CoreProductsServices = []string{}
	}
	if report.CompanyInfo.ContactInfo.SocialMedia == nil {
		report.CompanyInfo.ContactInfo.SocialMedia = []string{}
	}
	if report.ExtractedAnswers == nil {
		report.ExtractedAnswers = []datatypes.ExtractedAnswer{}
	}

	span.SetAttributes(attribute.Int("report.answers", len(report.ExtractedAnswers)))
	return &report, nil
}

// =============================================================================
// Error Types
// =============================================================================

// CrawlError wraps failures to fetch the target website. Handlers map this
// to 502 Bad Gateway since the fault lies with the upstream site.
type CrawlError struct {
	URL string
	Err error
}

// Error implements the error interface for CrawlError.
func (e *CrawlError) Error() string {
	return fmt.Sprintf("failed to crawl %s: %v", e.URL, e.Err)
}

// Unwrap exposes the underlying error for errors.Is/As.
func (e *CrawlError) Unwrap() error { return e.Err }

// IsCrawlError checks if an error is a CrawlError.
func IsCrawlError(err error) bool {
	_, ok := err.(*CrawlError)
	return ok
}

// GenerationError wraps LLM failures, including unparseable structured
// output. Handlers map this to 500 Internal Server Error since the fault
// lies with our generation pipeline, not the target site.
type GenerationError struct {
	Stage string
	Err   error
}

// Error implements the error interface for GenerationError.
func (e *GenerationError) Error() string {
	return fmt.Sprintf("LLM %s failed: %v", e.Stage, e.Err)
}

// Unwrap exposes the underlying error for errors.Is/As.
func (e *GenerationError) Unwrap() error { return e.Err }

// IsGenerationError checks if an error is a GenerationError.
func IsGenerationError(err error) bool {
	_, ok := err.(*GenerationError)
	return ok
}
