// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes provides the data structures for the agent service.
//
// This file contains request and response types for the website analysis
// endpoint. For follow-up chat types, see chat.go.
package datatypes

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// =============================================================================
// Constants for Request Limits
// =============================================================================

const (
	// MaxQuestionBytes is the maximum size of a single user question.
	MaxQuestionBytes = 4 * 1024 // 4KB

	// MaxQuestionsPerRequest caps how many ad-hoc questions one analysis
	// request may carry.
	MaxQuestionsPerRequest = 10
)

// =============================================================================
// Shared Validator Instance
// =============================================================================

// agentValidate is the validator instance for agent datatypes.
// Initialized in init() with custom validators.
var agentValidate *validator.Validate

func init() {
	agentValidate = validator.New()
	_ = agentValidate.RegisterValidation("maxbytes", validateMaxBytes)
}

// validateMaxBytes validates that a string field does not exceed
// MaxQuestionBytes. Checks byte length, not rune count, so oversized
// payloads are rejected regardless of encoding.
func validateMaxBytes(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= MaxQuestionBytes
}

// generateUUID returns a new UUID v4 string for request/response IDs.
func generateUUID() string {
	return uuid.New().String()
}

// =============================================================================
// Analysis Request Types
// =============================================================================

// AnalyzeRequest represents a website analysis request body.
//
// # Description
//
// AnalyzeRequest names the site to crawl and optionally a list of specific
// questions the caller wants answered from the site content. This is used
// for the POST /v1/analyze endpoint. Every request carries a unique ID and
// timestamp for audit trails.
//
// # Fields
//
//   - RequestID: Optional on input; generated by EnsureDefaults if empty.
//   - Timestamp: Optional on input; Unix milliseconds, generated if zero.
//   - URL: Required. The site to analyze. Scheme may be omitted; the
//     handler prepends https:// before crawling.
//   - Questions: Optional. Up to 10 questions, each at most 4KB, answered
//     strictly from the crawled content.
//
// # Examples
//
//	req := AnalyzeRequest{
//	    URL:       "https://example.com",
//	    Questions: []string{"What does this company sell?"},
//	}
//	req.EnsureDefaults()
//	if err := req.Validate(); err != nil { ... }
type AnalyzeRequest struct {
	RequestID string   `json:"request_id" validate:"omitempty,uuid4"`
	Timestamp int64    `json:"timestamp" validate:"gte=0"`
	URL       string   `json:"url" validate:"required"`
	Questions []string `json:"questions" validate:"omitempty,max=10,dive,maxbytes"`
}

// Validate validates the AnalyzeRequest fields using the shared validator.
func (r *AnalyzeRequest) Validate() error {
	return agentValidate.Struct(r)
}

// EnsureDefaults populates RequestID and Timestamp if the client omitted
// them, so every request is traceable.
func (r *AnalyzeRequest) EnsureDefaults() {
	if r.RequestID == "" {
		r.RequestID = generateUUID()
	}
	if r.Timestamp == 0 {
		r.Timestamp = time.Now().UnixMilli()
	}
}

// =============================================================================
// Analysis Report Types
// =============================================================================

// ContactInfo holds contact details found on the site. Fields the model
// could not find are empty strings, never omitted keys.
type ContactInfo struct {
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	SocialMedia []string `json:"social_media"`
}

// CompanyInfo is the structured business profile extracted from the site.
type CompanyInfo struct {
	Industry                 string      `json:"industry"`
	CompanySize              string      `json:"company_size"`
	Location                 string      `json:"location"`
	CoreProductsServices     []string    `json:"core_products_services"`
	UniqueSellingProposition string      `json:"unique_selling_proposition"`
	TargetAudience           string      `json:"target_audience"`
	OverallSentiment         string      `json:"overall_sentiment"`
	ContactInfo              ContactInfo `json:"contact_info"`
}

// ExtractedAnswer pairs one user question, verbatim, with the answer the
// model produced from the site content. Questions the content cannot answer
// carry an explicit "not found" style answer rather than being dropped.
type ExtractedAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// AnalysisReport is the full structured output of one analysis run.
type AnalysisReport struct {
	CompanyInfo      CompanyInfo       `json:"company_info"`
	ExtractedAnswers []ExtractedAnswer `json:"extracted_answers"`
}

// =============================================================================
// Analysis Response Types
// =============================================================================

// AnalyzeResponse represents the response from an analysis request. The
// report fields sit at the top level next to the crawl metadata, so clients
// read company_info and extracted_answers directly off the body.
type AnalyzeResponse struct {
	ResponseID        string            `json:"response_id"`
	RequestID         string            `json:"request_id"`
	URL               string            `json:"url"`
	AnalysisTimestamp string            `json:"analysis_timestamp"`
	Site              string            `json:"site"`
	PagesCrawled      int               `json:"pages_crawled"`
	ChunksIndexed     int               `json:"chunks_indexed"`
	CompanyInfo       CompanyInfo       `json:"company_info"`
	ExtractedAnswers  []ExtractedAnswer `json:"extracted_answers"`
	ProcessingTimeMs  int64             `json:"processing_time_ms,omitempty"`
}

// NewAnalyzeResponse creates an AnalyzeResponse with a generated ID and an
// RFC 3339 analysis timestamp, echoing the request ID for correlation.
func NewAnalyzeResponse(requestID, url, site string, report AnalysisReport) *AnalyzeResponse {
	answers := report.ExtractedAnswers
	if answers == nil {
		answers = []ExtractedAnswer{}
	}
	return &AnalyzeResponse{
		ResponseID:        generateUUID(),
		RequestID:         requestID,
		URL:               url,
		AnalysisTimestamp: time.Now().UTC().Format(time.RFC3339),
		Site:              site,
		CompanyInfo:       report.CompanyInfo,
		ExtractedAnswers:  answers,
	}
}
