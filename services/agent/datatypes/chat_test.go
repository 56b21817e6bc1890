// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// Tests for chat request/response datatypes

package datatypes

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// =============================================================================
// ChatRequest.Validate() Tests
// =============================================================================

func TestChatRequest_Validate(t *testing.T) {
	tests := []struct {
		name        string
		request     ChatRequest
		expectError bool
	}{
		{
			name:        "valid request passes",
			request:     ChatRequest{URL: "example.com", Query: "What do they sell?"},
			expectError: false,
		},
		{
			name:        "missing url fails",
			request:     ChatRequest{Query: "What do they sell?"},
			expectError: true,
		},
		{
			name:        "missing query fails",
			request:     ChatRequest{URL: "example.com"},
			expectError: true,
		},
		{
			name: "oversized query fails",
			request: ChatRequest{
				URL:   "example.com",
				Query: strings.Repeat("x", MaxQuestionBytes+1),
			},
			expectError: true,
		},
		{
			name: "malformed thread id fails",
			request: ChatRequest{
				URL:      "example.com",
				Query:    "Who are they?",
				ThreadID: "not-a-uuid",
			},
			expectError: true,
		},
		{
			name: "valid thread id passes",
			request: ChatRequest{
				URL:      "example.com",
				Query:    "Who are they?",
				ThreadID: uuid.New().String(),
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// =============================================================================
// ChatRequest.EnsureDefaults() Tests
// =============================================================================

func TestChatRequest_EnsureDefaults_PopulatesEmptyFields(t *testing.T) {
	req := ChatRequest{URL: "example.com", Query: "hello"}
	req.EnsureDefaults()

	assert.NotEmpty(t, req.RequestID)
	assert.NotZero(t, req.Timestamp)
	// ThreadID is deliberately left empty; the chat service decides
	// whether to start a new thread.
	assert.Empty(t, req.ThreadID)
}

func TestChatRequest_EnsureDefaults_PreservesExistingValues(t *testing.T) {
	existingID := uuid.New().String()
	req := ChatRequest{RequestID: existingID, Timestamp: 99, URL: "example.com", Query: "hi"}
	req.EnsureDefaults()

	assert.Equal(t, existingID, req.RequestID)
	assert.Equal(t, int64(99), req.Timestamp)
}

// =============================================================================
// NewChatResponse Tests
// =============================================================================

func TestNewChatResponse_SetsAllFields(t *testing.T) {
	sources := []string{"https://example.com/about"}
	resp := NewChatResponse("req-1", "example.com", "What do they sell?", "thread-1",
		"They sell widgets.", sources)

	assert.NotEmpty(t, resp.ResponseID)
	assert.Equal(t, "req-1", resp.RequestID)
	assert.Equal(t, "example.com", resp.URL)
	assert.Equal(t, "What do they sell?", resp.UserQuery)
	assert.Equal(t, "thread-1", resp.ThreadID)
	assert.Equal(t, "They sell widgets.", resp.AgentResponse)
	assert.Equal(t, sources, resp.ContextSources)
	assert.NotZero(t, resp.Timestamp)
}

func TestNewChatResponse_HandlesNilSources(t *testing.T) {
	resp := NewChatResponse("req-1", "example.com", "q", "thread-1", "answer", nil)

	// Nil sources become an empty slice so JSON serializes to [] not null.
	assert.NotNil(t, resp.ContextSources)
	assert.Empty(t, resp.ContextSources)
}

func TestChatResponse_JSONEchoesURLAndQuery(t *testing.T) {
	resp := NewChatResponse("req-1", "example.com", "What do they sell?", "thread-1",
		"Widgets.", nil)

	data, err := json.Marshal(resp)
	assert.NoError(t, err)
	assert.Contains(t, string(data), `"url":"example.com"`)
	assert.Contains(t, string(data), `"user_query":"What do they sell?"`)
}
