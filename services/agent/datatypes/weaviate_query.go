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

import (
	"encoding/json"
	"fmt"

	"github.com/weaviate/weaviate/entities/models"
)

// =============================================================================
// Generic GraphQL Response Parser
// =============================================================================

// ParseGraphQLResponse parses a Weaviate GraphQL response into the target type.
//
// # Description
//
// This generic function encapsulates the marshal/unmarshal pattern required to
// convert Weaviate's dynamic response (map[string]models.JSONObject) into a
// strongly-typed Go struct. The target type T must have json tags matching
// the expected response shape.
//
// # Type Parameters
//
//   - T: The target struct type with json tags matching the response shape.
//
// # Inputs
//
//   - resp: The GraphQL response from Weaviate client's Do() method.
//
// # Outputs
//
//   - *T: Pointer to the parsed struct.
//   - error: Non-nil if response is nil or parsing fails.
//
// # Example
//
//	type ThreadQueryResponse struct {
//	    Get struct {
//	        Thread []struct {
//	            ThreadID string `json:"thread_id"`
//	        } `json:"Thread"`
//	    } `json:"Get"`
//	}
//
//	resp, err := client.GraphQL().Get().WithClassName("Thread").Do(ctx)
//	if err != nil { ... }
//
//	parsed, err := ParseGraphQLResponse[ThreadQueryResponse](resp)
//	if err != nil { ... }
//
// # Limitations
//
//   - Requires the target type to exactly match the expected response structure.
//   - Type mismatches will result in zero values, not errors.
func ParseGraphQLResponse[T any](resp *models.GraphQLResponse) (*T, error) {
	if resp == nil {
		return nil, fmt.Errorf("nil GraphQL response")
	}

	respBytes, err := json.Marshal(resp.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal GraphQL response data: %w", err)
	}

	var result T
	if err := json.Unmarshal(respBytes, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal into target type: %w", err)
	}

	return &result, nil
}

// =============================================================================
// Common Weaviate Response Types
// =============================================================================

// ThreadQueryResponse represents the response from querying the Thread class.
type ThreadQueryResponse struct {
	Get struct {
		Thread []ThreadResult `json:"Thread"`
	} `json:"Get"`
}

// ThreadResult represents a single thread from a query.
type ThreadResult struct {
	ThreadID   string `json:"thread_id"`
	Site       string `json:"site"`
	Summary    string `json:"summary"`
	Timestamp  int64  `json:"timestamp"`
	Additional struct {
		ID string `json:"id"`
	} `json:"_additional"`
}

// ConversationQueryResponse represents the response from querying the
// Conversation class.
type ConversationQueryResponse struct {
	Get struct {
		Conversation []ConversationResult `json:"Conversation"`
	} `json:"Get"`
}

// ConversationResult represents a single conversation turn from a query.
type ConversationResult struct {
	ThreadID  string `json:"thread_id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Timestamp int64  `json:"timestamp"`
}

// SiteChunkQueryResponse represents the response from querying the SiteChunk
// class.
type SiteChunkQueryResponse struct {
	Get struct {
		SiteChunk []SiteChunkResult `json:"SiteChunk"`
	} `json:"Get"`
}

// SiteChunkResult represents a single site chunk from a query.
type SiteChunkResult struct {
	Content    string `json:"content"`
	URL        string `json:"url"`
	Site       string `json:"site"`
	ChunkIndex *int   `json:"chunk_index"`
	IngestedAt int64  `json:"ingested_at"`
	Additional struct {
		ID        string   `json:"id"`
		Distance  *float32 `json:"distance"`
		Certainty *float32 `json:"certainty"`
	} `json:"_additional"`
}

// =============================================================================
// Property Structs and ToMap Methods
// =============================================================================

// ThreadProperties represents the properties for creating a Thread object.
type ThreadProperties struct {
	ThreadID  string `json:"thread_id"`
	Site      string `json:"site"`
	Summary   string `json:"summary"`
	Timestamp int64  `json:"timestamp"`
}

// ToMap converts ThreadProperties to the map format required by Weaviate's
// WithProperties() method.
func (p *ThreadProperties) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"thread_id": p.ThreadID,
		"site":      p.Site,
		"summary":   p.Summary,
		"timestamp": p.Timestamp,
	}
}

// ConversationProperties represents the properties for creating a
// Conversation object.
type ConversationProperties struct {
	ThreadID  string `json:"thread_id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Timestamp int64  `json:"timestamp"`
}

// ToMap converts ConversationProperties to the map format required by
// Weaviate's WithProperties() method.
func (p *ConversationProperties) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"thread_id": p.ThreadID,
		"question":  p.Question,
		"answer":    p.Answer,
		"timestamp": p.Timestamp,
	}
}

// SiteChunkProperties represents the properties for creating a SiteChunk
// object.
type SiteChunkProperties struct {
	Content    string `json:"content"`
	URL        string `json:"url"`
	Site       string `json:"site"`
	ChunkIndex int    `json:"chunk_index"`
	IngestedAt int64  `json:"ingested_at"`
}

// ToMap converts SiteChunkProperties to the map format required by Weaviate.
func (p *SiteChunkProperties) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"content":     p.Content,
		"url":         p.URL,
		"site":        p.Site,
		"chunk_index": p.ChunkIndex,
		"ingested_at": p.IngestedAt,
	}
}

// BeaconRef represents a Weaviate cross-reference beacon.
type BeaconRef struct {
	Beacon string `json:"beacon"`
}

// WithBeacon adds an inThread beacon reference to the properties map.
//
// The "localhost" in the beacon URI is part of Weaviate's standard
// cross-reference format and is NOT an actual host.
// See: https://weaviate.io/developers/weaviate/manage-data/cross-references
func WithBeacon(props map[string]interface{}, threadUUID string) {
	// Reference properties in Weaviate must be arrays of beacon objects
	beacon := BeaconRef{
		Beacon: fmt.Sprintf("weaviate://localhost/Thread/%s", threadUUID),
	}
	props["inThread"] = []BeaconRef{beacon}
}
