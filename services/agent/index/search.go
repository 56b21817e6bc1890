// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package index

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/AleutianWebInsight/services/agent/datatypes"
)

// DefaultSearchLimit is how many chunks a retrieval pulls when the caller
// passes limit <= 0.
const DefaultSearchLimit = 5

// Search embeds the query and returns the nearest chunks for the site,
// closest first. The site filter is applied server-side so chunks from other
// sites can never leak into the result.
func (ix *Indexer) Search(ctx context.Context, site, query string, limit int) ([]datatypes.SiteChunkResult, error) {
	ctx, span := tracer.Start(ctx, "Indexer.Search")
	defer span.End()
	span.SetAttributes(
		attribute.String("index.site", site),
		attribute.Int("index.limit", limit),
	)

	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	vector, err := ix.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	chunks, err := nearChunksBySite(ctx, ix.client, site, vector, limit)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("index.results", len(chunks)))
	slog.Info("Vector search complete", "site", site, "results", len(chunks))
	return chunks, nil
}

func nearChunksBySite(ctx context.Context, client *weaviate.Client, site string,
	vector []float32, limit int) ([]datatypes.SiteChunkResult, error) {

	where := filters.Where().
		WithPath([]string{"site"}).
		WithOperator(filters.Equal).
		WithValueString(site)

	nearVector := client.GraphQL().NearVectorArgBuilder().WithVector(vector)

	fields := []graphql.Field{
		{Name: "content"},
		{Name: "url"},
		{Name: "site"},
		{Name: "chunk_index"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "id"}, {Name: "distance"}}},
	}

	resp, err := client.GraphQL().Get().
		WithClassName("SiteChunk").
		WithNearVector(nearVector).
		WithWhere(where).
		WithFields(fields...).
		WithLimit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query Weaviate for site chunks: %w", err)
	}

	parsed, err := datatypes.ParseGraphQLResponse[datatypes.SiteChunkQueryResponse](resp)
	if err != nil {
		return nil, fmt.Errorf("failed to parse site chunk query response: %w", err)
	}
	return parsed.Get.SiteChunk, nil
}

// queryChunksBySite fetches chunks for a site without vector search, used
// for existence checks.
func queryChunksBySite(ctx context.Context, client *weaviate.Client, site string,
	limit int) ([]datatypes.SiteChunkResult, error) {

	where := filters.Where().
		WithPath([]string{"site"}).
		WithOperator(filters.Equal).
		WithValueString(site)

	fields := []graphql.Field{
		{Name: "url"},
		{Name: "site"},
	}

	resp, err := client.GraphQL().Get().
		WithClassName("SiteChunk").
		WithWhere(where).
		WithFields(fields...).
		WithLimit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query Weaviate for site chunks: %w", err)
	}

	parsed, err := datatypes.ParseGraphQLResponse[datatypes.SiteChunkQueryResponse](resp)
	if err != nil {
		return nil, fmt.Errorf("failed to parse site chunk query response: %w", err)
	}
	return parsed.Get.SiteChunk, nil
}
