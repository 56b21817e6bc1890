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
	"strings"
	"time"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"go.opentelemetry.io/otel"
)

var convTracer = otel.Tracer("webinsight.agent.datatypes")

// placeholderSummary marks a thread whose title has not been generated yet.
// The async summary pass replaces it after the first turn.
const placeholderSummary = "(Summary pending...)"

// lookupThreadUUID returns the Weaviate object UUID for the thread with the
// given thread_id, or "" when no such thread exists.
func lookupThreadUUID(ctx context.Context, client *weaviate.Client, threadID string) (string, error) {
	resp, err := client.GraphQL().Get().
		WithClassName("Thread").
		WithWhere(filters.Where().
			WithPath([]string{"thread_id"}).
			WithOperator(filters.Equal).
			WithValueString(threadID)).
		WithFields(graphql.Field{
			Name:   "_additional",
			Fields: []graphql.Field{{Name: "id"}},
		}).
		WithLimit(1).
		Do(ctx)
	if err != nil {
		return "", fmt.Errorf("query thread %s: %w", threadID, err)
	}

	parsed, err := ParseGraphQLResponse[ThreadQueryResponse](resp)
	if err != nil {
		return "", fmt.Errorf("parse thread query response: %w", err)
	}
	if len(parsed.Get.Thread) == 0 {
		return "", nil
	}
	return parsed.Get.Thread[0].Additional.ID, nil
}

// FindOrCreateThreadUUID resolves the Weaviate UUID of the thread with the
// given thread_id, creating the Thread object when it does not exist yet.
// The site key only matters on creation; an existing thread keeps the site
// it was created with. Concurrent chat turns on a brand-new thread may race
// here, which is why creation goes through this lookup-first path.
func FindOrCreateThreadUUID(ctx context.Context, client *weaviate.Client,
	threadID, site string) (string, error) {

	ctx, span := convTracer.Start(ctx, "FindOrCreateThreadUUID")
	defer span.End()

	uuid, err := lookupThreadUUID(ctx, client, threadID)
	if err != nil {
		return "", err
	}
	if uuid != "" {
		return uuid, nil
	}

	props := ThreadProperties{
		ThreadID:  threadID,
		Site:      site,
		Summary:   placeholderSummary,
		Timestamp: time.Now().UnixMilli(),
	}
	created, err := client.Data().Creator().
		WithClassName("Thread").
		WithProperties(props.ToMap()).
		Do(ctx)
	if err != nil {
		return "", fmt.Errorf("create thread %s: %w", threadID, err)
	}
	if created == nil || created.Object == nil {
		return "", fmt.Errorf("thread %s created but weaviate returned a nil object", threadID)
	}

	slog.Info("Created new thread", "threadId", threadID, "site", site,
		"weaviateUUID", created.Object.ID)
	return created.Object.ID.String(), nil
}

// Conversation is one question/answer turn awaiting persistence.
type Conversation struct {
	ThreadID string `json:"thread_id"`
	Site     string `json:"site"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Save persists the turn and links it to its parent Thread via a beacon.
// Turns with an empty answer are silently dropped so failed generations
// never pollute thread history. If the parent thread cannot be resolved the
// turn is still saved, just without the graph link.
func (c *Conversation) Save(ctx context.Context, client *weaviate.Client) error {
	if strings.TrimSpace(c.Answer) == "" {
		return nil
	}

	threadUUID, err := FindOrCreateThreadUUID(ctx, client, c.ThreadID, c.Site)
	if err != nil {
		slog.Error("Could not resolve parent thread, saving turn without link",
			"threadId", c.ThreadID, "error", err)
	}

	props := ConversationProperties{
		ThreadID:  c.ThreadID,
		Question:  c.Question,
		Answer:    c.Answer,
		Timestamp: time.Now().UnixMilli(),
	}
	properties := props.ToMap()
	if threadUUID != "" {
		WithBeacon(properties, threadUUID)
	}

	if _, err := client.Data().Creator().
		WithClassName("Conversation").
		WithProperties(properties).
		Do(ctx); err != nil {
		return fmt.Errorf("save conversation turn: %w", err)
	}

	slog.Debug("Saved conversation turn", "threadId", c.ThreadID)
	return nil
}
