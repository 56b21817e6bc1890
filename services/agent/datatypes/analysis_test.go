// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// Tests for analysis request/response datatypes

package datatypes

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// AnalyzeRequest.Validate() Tests
// =============================================================================

func TestAnalyzeRequest_Validate_URLRequired(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		expectError bool
	}{
		{
			name:        "empty url returns error",
			url:         "",
			expectError: true,
		},
		{
			name:        "full url passes",
			url:         "https://example.com",
			expectError: false,
		},
		{
			name:        "scheme-less url passes",
			url:         "example.com",
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := AnalyzeRequest{URL: tt.url}
			req.EnsureDefaults()
			err := req.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAnalyzeRequest_Validate_QuestionLimits(t *testing.T) {
	t.Run("ten questions pass", func(t *testing.T) {
		req := AnalyzeRequest{URL: "example.com", Questions: make([]string, 10)}
		for i := range req.Questions {
			req.Questions[i] = "What do they sell?"
		}
		req.EnsureDefaults()
		assert.NoError(t, req.Validate())
	})

	t.Run("eleven questions fail", func(t *testing.T) {
		req := AnalyzeRequest{URL: "example.com", Questions: make([]string, 11)}
		for i := range req.Questions {
			req.Questions[i] = "What do they sell?"
		}
		req.EnsureDefaults()
		assert.Error(t, req.Validate())
	})

	t.Run("oversized question fails", func(t *testing.T) {
		req := AnalyzeRequest{
			URL:       "example.com",
			Questions: []string{strings.Repeat("a", MaxQuestionBytes+1)},
		}
		req.EnsureDefaults()
		assert.Error(t, req.Validate())
	})

	t.Run("question at exactly the byte limit passes", func(t *testing.T) {
		req := AnalyzeRequest{
			URL:       "example.com",
			Questions: []string{strings.Repeat("a", MaxQuestionBytes)},
		}
		req.EnsureDefaults()
		assert.NoError(t, req.Validate())
	})
}

func TestAnalyzeRequest_Validate_RequestID(t *testing.T) {
	t.Run("invalid request id fails", func(t *testing.T) {
		req := AnalyzeRequest{RequestID: "not-a-uuid", URL: "example.com"}
		assert.Error(t, req.Validate())
	})

	t.Run("valid uuid passes", func(t *testing.T) {
		req := AnalyzeRequest{RequestID: uuid.New().String(), URL: "example.com"}
		assert.NoError(t, req.Validate())
	})
}

// =============================================================================
// AnalyzeRequest.EnsureDefaults() Tests
// =============================================================================

func TestAnalyzeRequest_EnsureDefaults_PopulatesEmptyFields(t *testing.T) {
	req := AnalyzeRequest{URL: "example.com"}
	req.EnsureDefaults()

	assert.NotEmpty(t, req.RequestID)
	assert.NotZero(t, req.Timestamp)

	_, err := uuid.Parse(req.RequestID)
	assert.NoError(t, err, "generated RequestID should be a valid UUID")
}

func TestAnalyzeRequest_EnsureDefaults_PreservesExistingValues(t *testing.T) {
	existingID := uuid.New().String()
	req := AnalyzeRequest{RequestID: existingID, Timestamp: 12345, URL: "example.com"}
	req.EnsureDefaults()

	assert.Equal(t, existingID, req.RequestID)
	assert.Equal(t, int64(12345), req.Timestamp)
}

func TestAnalyzeRequest_EnsureDefaults_Idempotent(t *testing.T) {
	req := AnalyzeRequest{URL: "example.com"}
	req.EnsureDefaults()
	id, ts := req.RequestID, req.Timestamp

	req.EnsureDefaults()
	assert.Equal(t, id, req.RequestID)
	assert.Equal(t, ts, req.Timestamp)
}

// =============================================================================
// NewAnalyzeResponse Tests
// =============================================================================

func TestNewAnalyzeResponse_SetsAllFields(t *testing.T) {
	report := AnalysisReport{
		CompanyInfo: CompanyInfo{Industry: "Software"},
		ExtractedAnswers: []ExtractedAnswer{
			{Question: "Do they have a blog?", Answer: "Yes"},
		},
	}

	resp := NewAnalyzeResponse("req-1", "https://example.com", "example.com", report)
	require.NotNil(t, resp)

	assert.NotEmpty(t, resp.ResponseID)
	assert.Equal(t, "req-1", resp.RequestID)
	assert.Equal(t, "https://example.com", resp.URL)
	assert.Equal(t, "example.com", resp.Site)
	assert.Equal(t, "Software", resp.CompanyInfo.Industry)
	require.Len(t, resp.ExtractedAnswers, 1)
	assert.Equal(t, "Do they have a blog?", resp.ExtractedAnswers[0].Question)
	assert.Equal(t, "Yes", resp.ExtractedAnswers[0].Answer)

	_, err := time.Parse(time.RFC3339, resp.AnalysisTimestamp)
	assert.NoError(t, err, "analysis_timestamp should be RFC 3339")
}

func TestNewAnalyzeResponse_GeneratesUniqueIds(t *testing.T) {
	a := NewAnalyzeResponse("req-1", "https://example.com", "example.com", AnalysisReport{})
	b := NewAnalyzeResponse("req-1", "https://example.com", "example.com", AnalysisReport{})
	assert.NotEqual(t, a.ResponseID, b.ResponseID)
}

func TestAnalyzeResponse_JSONShape(t *testing.T) {
	report := AnalysisReport{
		CompanyInfo: CompanyInfo{Industry: "Retail"},
		ExtractedAnswers: []ExtractedAnswer{
			{Question: "Do they ship abroad?", Answer: "Not found in website content."},
		},
	}

	data, err := json.Marshal(NewAnalyzeResponse("req-1", "https://example.com", "example.com", report))
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))

	// The report fields sit at the top level, not under a nested key.
	assert.Contains(t, body, "url")
	assert.Contains(t, body, "analysis_timestamp")
	assert.Contains(t, body, "company_info")
	assert.Contains(t, body, "extracted_answers")
	assert.NotContains(t, body, "report")

	answers, ok := body["extracted_answers"].([]any)
	require.True(t, ok, "extracted_answers should be a JSON array")
	require.Len(t, answers, 1)
	first, ok := answers[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Do they ship abroad?", first["question"])
}

func TestAnalyzeResponse_NilAnswersSerializeAsEmptyList(t *testing.T) {
	resp := NewAnalyzeResponse("req-1", "https://example.com", "example.com", AnalysisReport{})

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"extracted_answers":[]`)
}
