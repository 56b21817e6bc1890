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
	"context"
	"fmt"
	"log/slog"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate/entities/models"
)

// All classes use Vectorizer "none": SiteChunk vectors come from the
// embedding provider at ingest time, and Conversation/Thread are never
// vector-searched.

// filterableText builds a text property used in where-filters. Tokenization
// "field" keeps keys like URLs and thread ids as single tokens.
func filterableText(name, description string) *models.Property {
	filterable := true
	return &models.Property{
		Name:            name,
		DataType:        []string{"text"},
		Description:     description,
		IndexFilterable: &filterable,
		Tokenization:    "field",
	}
}

// bodyText builds a word-tokenized text property for free-form content.
func bodyText(name, description string) *models.Property {
	return &models.Property{
		Name:         name,
		DataType:     []string{"text"},
		Description:  description,
		Tokenization: "word",
	}
}

// filterableNumber builds a filterable numeric property, used for
// timestamps and ordering fields.
func filterableNumber(name, dataType, description string) *models.Property {
	filterable := true
	return &models.Property{
		Name:            name,
		DataType:        []string{dataType},
		Description:     description,
		IndexFilterable: &filterable,
	}
}

func GetSiteChunkSchema() *models.Class {
	return &models.Class{
		Class:               "SiteChunk",
		Description:         "A chunk of text content extracted from a crawled website page.",
		Vectorizer:          "none",
		InvertedIndexConfig: &models.InvertedIndexConfig{IndexTimestamps: true, IndexNullState: true},
		Properties: []*models.Property{
			bodyText("content", "The chunk text content."),
			filterableText("url", "The page URL this chunk was extracted from."),
			filterableText("site", "Normalized site key (lowercase host, no www, no port)."),
			filterableNumber("chunk_index", "int", "Position of the chunk within its source page (0-indexed)."),
			filterableNumber("ingested_at", "number", "Unix ms timestamp of when the chunk was ingested."),
		},
	}
}

func GetConversationSchema() *models.Class {
	filterable := true
	return &models.Class{
		Class:               "Conversation",
		Description:         "One question/answer turn within a chat thread.",
		Vectorizer:          "none",
		InvertedIndexConfig: &models.InvertedIndexConfig{IndexTimestamps: true, IndexNullState: true},
		Properties: []*models.Property{
			filterableText("thread_id", "The unique ID for the conversation thread."),
			bodyText("question", "The user's question for this turn."),
			bodyText("answer", "The generated answer for this turn."),
			filterableNumber("timestamp", "number", "Unix ms timestamp of the turn."),
			{
				Name:            "inThread",
				DataType:        []string{"Thread"},
				Description:     "Cross-reference to the parent Thread object.",
				IndexFilterable: &filterable,
			},
		},
	}
}

func GetThreadSchema() *models.Class {
	return &models.Class{
		Class:               "Thread",
		Description:         "Metadata for one chat thread about a site, including its summary.",
		Vectorizer:          "none",
		InvertedIndexConfig: &models.InvertedIndexConfig{IndexTimestamps: true},
		Properties: []*models.Property{
			filterableText("thread_id", "The unique ID for the conversation thread."),
			filterableText("site", "Normalized site key this thread is about."),
			bodyText("summary", "A short generated title for the thread."),
			filterableNumber("timestamp", "number", "Unix ms timestamp of when the thread began."),
		},
	}
}

// EnsureWeaviateSchema creates any of the agent's classes that do not
// exist yet. Thread goes first so the Conversation cross-reference has a
// target class to point at.
func EnsureWeaviateSchema(ctx context.Context, client *weaviate.Client) error {
	classes := []*models.Class{
		GetThreadSchema(),
		GetSiteChunkSchema(),
		GetConversationSchema(),
	}

	for _, class := range classes {
		// The getter errors when the class is missing.
		if _, err := client.Schema().ClassGetter().WithClassName(class.Class).Do(ctx); err == nil {
			slog.Debug("Schema class present", "class", class.Class)
			continue
		}
		if err := client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
			return fmt.Errorf("create class %s: %w", class.Class, err)
		}
		slog.Info("Created schema class", "class", class.Class)
	}
	return nil
}
