// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

import "time"

// =============================================================================
// Chat Request Types
// =============================================================================

// ChatRequest represents a follow-up question about a previously analyzed
// site.
//
// # Description
//
// ChatRequest is the body for POST /v1/chat. The URL names the site whose
// indexed content grounds the answer; if the site has not been analyzed yet
// the handler indexes it on the fly. ThreadID groups turns into a
// conversation. An empty ThreadID starts a new thread; the generated ID is
// echoed back in the response so the client can continue the thread.
//
// # Fields
//
//   - RequestID: Optional on input; generated by EnsureDefaults if empty.
//   - Timestamp: Optional on input; Unix milliseconds, generated if zero.
//   - URL: Required. The site the question is about.
//   - Query: Required. The user's question, at most 4KB.
//   - ThreadID: Optional. Continues an existing conversation thread.
type ChatRequest struct {
	RequestID string `json:"request_id" validate:"omitempty,uuid4"`
	Timestamp int64  `json:"timestamp" validate:"gte=0"`
	URL       string `json:"url" validate:"required"`
	Query     string `json:"query" validate:"required,maxbytes"`
	ThreadID  string `json:"thread_id" validate:"omitempty,uuid4"`
}

// Validate validates the ChatRequest fields using the shared validator.
func (r *ChatRequest) Validate() error {
	return agentValidate.Struct(r)
}

// EnsureDefaults populates RequestID and Timestamp if the client omitted
// them.
func (r *ChatRequest) EnsureDefaults() {
	if r.RequestID == "" {
		r.RequestID = generateUUID()
	}
	if r.Timestamp == 0 {
		r.Timestamp = time.Now().UnixMilli()
	}
}

// =============================================================================
// Chat Response Types
// =============================================================================

// ChatResponse is the answer to one chat turn.
//
// ContextSources lists the page URLs whose chunks grounded the answer, in
// retrieval order with duplicates removed.
type ChatResponse struct {
	ResponseID       string   `json:"response_id"`
	RequestID        string   `json:"request_id"`
	Timestamp        int64    `json:"timestamp"`
	URL              string   `json:"url"`
	UserQuery        string   `json:"user_query"`
	ThreadID         string   `json:"thread_id"`
	AgentResponse    string   `json:"agent_response"`
	ContextSources   []string `json:"context_sources"`
	ProcessingTimeMs int64    `json:"processing_time_ms,omitempty"`
}

// NewChatResponse creates a ChatResponse with a generated ID and timestamp.
// The url and query are echoed back so the body is self-describing.
func NewChatResponse(requestID, url, query, threadID, answer string, sources []string) *ChatResponse {
	if sources == nil {
		sources = []string{}
	}
	return &ChatResponse{
		ResponseID:     generateUUID(),
		RequestID:      requestID,
		Timestamp:      time.Now().UnixMilli(),
		URL:            url,
		UserQuery:      query,
		ThreadID:       threadID,
		AgentResponse:  answer,
		ContextSources: sources,
	}
}
