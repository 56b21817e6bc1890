// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package index maintains the per-site vector index in Weaviate.
//
// Each analyzed site gets its chunks stored under a normalized site key so
// retrieval for one site never surfaces content from another. Chunk IDs are
// deterministic, derived from the page URL and chunk position, which makes
// re-analysis an idempotent upsert instead of a duplicate insert.
package index

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/tmc/langchaingo/textsplitter"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate/entities/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/AleutianWebInsight/services/agent/datatypes"
	"github.com/AleutianAI/AleutianWebInsight/services/crawler"
	"github.com/AleutianAI/AleutianWebInsight/services/embedding"
)

var tracer = otel.Tracer("webinsight.agent.index")

var (
	CHUNK_SIZE        = 1000
	CHUNK_OVERLAP     = int(float64(CHUNK_SIZE) * 0.10) // Chunk_overlap is 10% of the CHUNK_SIZE
	defaultSeparators = []string{"\n\n", "\n", " ", ""}
)

// SiteKey normalizes a URL into the key that scopes all index operations:
// the lowercase host with any port and leading "www." removed. A URL
// without a scheme is treated as an https URL so "example.com" works.
func SiteKey(rawURL string) (string, error) {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return "", fmt.Errorf("empty URL")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("cannot derive site key from %q: %w", rawURL, err)
	}
	host := strings.ToLower(u.Host)
	if h, _, ok := strings.Cut(host, ":"); ok {
		host = h
	}
	return strings.TrimPrefix(host, "www."), nil
}

// Indexer writes and deletes site content in the vector store.
type Indexer struct {
	client   *weaviate.Client
	embedder embedding.Provider
	splitter textsplitter.TextSplitter
}

// NewIndexer creates an Indexer backed by the given Weaviate client and
// embedding provider.
func NewIndexer(client *weaviate.Client, embedder embedding.Provider) *Indexer {
	return &Indexer{
		client:   client,
		embedder: embedder,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(CHUNK_SIZE),
			textsplitter.WithChunkOverlap(CHUNK_OVERLAP),
			textsplitter.WithSeparators(defaultSeparators),
		),
	}
}

// chunkID builds a deterministic Weaviate UUID for one chunk from its page
// URL and position. Re-ingesting the same page overwrites instead of
// duplicating.
func chunkID(pageURL string, chunkIndex int) strfmt.UUID {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s#%d", pageURL, chunkIndex)))
	id, _ := uuid.FromBytes(hash[:16])
	return strfmt.UUID(id.String())
}

// IndexPages chunks, embeds, and upserts the crawled pages under the given
// site key. It returns the number of chunks successfully stored.
func (ix *Indexer) IndexPages(ctx context.Context, site string, pages []crawler.Page) (int, error) {
	ctx, span := tracer.Start(ctx, "Indexer.IndexPages")
	defer span.End()
	span.SetAttributes(
		attribute.String("index.site", site),
		attribute.Int("index.pages", len(pages)),
	)

	type pendingChunk struct {
		text       string
		url        string
		chunkIndex int
	}
	var pending []pendingChunk

	for _, page := range pages {
		if strings.TrimSpace(page.Content) == "" {
			slog.Warn("Skipping page with no extractable text", "url", page.URL)
			continue
		}
		chunks, err := ix.splitter.SplitText(page.Content)
		if err != nil {
			slog.Error("Failed to split page text", "url", page.URL, "error", err)
			continue
		}
		for i, chunk := range chunks {
			pending = append(pending, pendingChunk{text: chunk, url: page.URL, chunkIndex: i})
		}
	}

	if len(pending) == 0 {
		slog.Warn("No chunks produced for site", "site", site)
		return 0, nil
	}
	slog.Info("Split site content into chunks", "site", site, "chunk_count", len(pending))

	texts := make([]string, len(pending))
	for i, p := range pending {
		texts[i] = p.text
	}
	vectors, err := ix.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("failed to embed site chunks: %w", err)
	}
	if len(vectors) != len(pending) {
		return 0, fmt.Errorf("embedding provider returned mismatched vector count")
	}

	// --- Batch Weaviate Import in one request ---
	batcher := ix.client.Batch().ObjectsBatcher()
	objects := make([]*models.Object, len(pending))
	now := time.Now().UnixMilli()

	for i, p := range pending {
		props := datatypes.SiteChunkProperties{
			Content:    p.text,
			URL:        p.url,
			Site:       site,
			ChunkIndex: p.chunkIndex,
			IngestedAt: now,
		}
		objects[i] = &models.Object{
			Class:      "SiteChunk",
			ID:         chunkID(p.url, p.chunkIndex),
			Vector:     vectors[i],
			Properties: props.ToMap(),
		}
	}

	batcher.WithObjects(objects...)

	resp, err := batcher.Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to save objects to Weaviate: %w", err)
	}

	chunksCreated := 0
	hasErrors := false
	for _, item := range resp {
		if item.Result != nil && item.Result.Status != nil && *item.Result.Status == "SUCCESS" {
			chunksCreated++
			continue
		}
		hasErrors = true
		if item.Result != nil && item.Result.Errors != nil && len(item.Result.Errors.Error) > 0 {
			for _, errItem := range item.Result.Errors.Error {
				slog.Warn("Error in Weaviate batch item", "site", site, "error", errItem.Message)
			}
		} else {
			slog.Warn("Failed Weaviate batch item, no error provided", "site", site)
		}
	}

	if hasErrors {
		slog.Warn("Errors encountered during Weaviate batch import", "site", site, "successful_chunks", chunksCreated)
	}
	span.SetAttributes(attribute.Int("index.chunks_created", chunksCreated))
	slog.Info("Successfully indexed site content", "site", site, "chunks_processed", chunksCreated)
	return chunksCreated, nil
}

// HasSite reports whether at least one chunk is indexed for the site.
func (ix *Indexer) HasSite(ctx context.Context, site string) (bool, error) {
	chunks, err := queryChunksBySite(ctx, ix.client, site, 1)
	if err != nil {
		return false, err
	}
	return len(chunks) > 0, nil
}

// DeleteSite removes every indexed chunk for the site. It returns the number
// of objects Weaviate matched for deletion.
func (ix *Indexer) DeleteSite(ctx context.Context, site string) (int64, error) {
	ctx, span := tracer.Start(ctx, "Indexer.DeleteSite")
	defer span.End()
	span.SetAttributes(attribute.String("index.site", site))

	where := filters.Where().
		WithPath([]string{"site"}).
		WithOperator(filters.Equal).
		WithValueString(site)

	resp, err := ix.client.Batch().ObjectsBatchDeleter().
		WithClassName("SiteChunk").
		WithOutput("minimal").
		WithWhere(where).
		Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete site chunks from Weaviate: %w", err)
	}

	var matched int64
	if resp != nil && resp.Results != nil {
		matched = resp.Results.Matches
	}
	slog.Info("Deleted indexed site content", "site", site, "matched", matched)
	return matched, nil
}

// ListSites returns the distinct site keys currently present in the index.
func (ix *Indexer) ListSites(ctx context.Context) ([]string, error) {
	agg, err := ix.client.GraphQL().Aggregate().
		WithClassName("SiteChunk").
		WithGroupBy("site").
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sites from Weaviate: %w", err)
	}

	var sites []string
	if agg.Data["Aggregate"] != nil {
		aggMap, ok := agg.Data["Aggregate"].(map[string]interface{})
		if ok && aggMap["SiteChunk"] != nil {
			groups, ok := aggMap["SiteChunk"].([]interface{})
			if ok {
				for _, groupItem := range groups {
					groupMap, ok := groupItem.(map[string]interface{})
					if ok && groupMap["groupedBy"] != nil {
						groupedByMap, ok := groupMap["groupedBy"].(map[string]interface{})
						if ok && groupedByMap["value"] != nil {
							if siteName, ok := groupedByMap["value"].(string); ok {
								sites = append(sites, siteName)
							}
						}
					}
				}
			}
		}
	}
	return sites, nil
}
