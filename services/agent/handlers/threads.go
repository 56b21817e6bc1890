// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/AleutianAI/AleutianWebInsight/services/agent/services"
)

// deletedCount reads the successful-deletion count off a batch delete
// response. The response is nil when the delete call itself errored, so
// the count must not be read straight off it.
func deletedCount(resp *models.BatchDeleteResponse) int64 {
	if resp == nil || resp.Results == nil {
		return 0
	}
	return resp.Results.Successful
}

// ListThreads handles GET /v1/threads. Returns every conversation thread
// with its site, summary, and start time.
func ListThreads(client *weaviate.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		slog.Info("Received request to list threads")
		fields := []graphql.Field{
			{Name: "thread_id"},
			{Name: "site"},
			{Name: "summary"},
			{Name: "timestamp"},
		}
		result, err := client.GraphQL().Get().
			WithClassName("Thread").
			WithFields(fields...).
			Do(context.Background())
		if err != nil {
			slog.Error("failed to query Weaviate for threads", "error", err)
			c.JSON(http.StatusInternalServerError,
				gin.H{"error": "failed to query Weaviate for threads"})
			return
		}
		c.JSON(http.StatusOK, result.Data)
	}
}

// GetThreadHistory handles GET /v1/threads/:threadId/history. Turns are
// returned in chronological order.
func GetThreadHistory(client *weaviate.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		threadID := c.Param("threadId")
		slog.Info("Received request for thread history", "threadId", threadID)

		history, err := services.FetchThreadHistory(c.Request.Context(), client, threadID, 200)
		if err != nil {
			slog.Error("failed to fetch thread history", "threadId", threadID, "error", err)
			c.JSON(http.StatusInternalServerError,
				gin.H{"error": "failed to fetch thread history"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"thread_id": threadID,
			"history":   history,
		})
	}
}

// DeleteThread handles DELETE /v1/threads/:threadId. Removes every turn of
// the thread and the thread object itself.
func DeleteThread(client *weaviate.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		threadID := c.Param("threadId")
		slog.Info("Received a request to delete a thread", "threadId", threadID)

		// 1. Delete all Conversation objects for this threadId
		whereFilter := filters.Where().
			WithPath([]string{"thread_id"}).
			WithOperator(filters.Equal).
			WithValueString(threadID)

		response, err := client.Batch().ObjectsBatchDeleter().
			WithClassName("Conversation").
			WithOutput("minimal").
			WithWhere(whereFilter).
			Do(context.Background())
		if err != nil {
			slog.Error("failed to delete conversation objects from the Weaviate DB", "error", err)
		}
		// 2. Delete the main Thread object itself
		_, err = client.Batch().ObjectsBatchDeleter().
			WithClassName("Thread").
			WithOutput("minimal").
			WithWhere(whereFilter).
			Do(context.Background())
		if err != nil {
			slog.Error("failed to delete thread object from the Weaviate DB", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fully delete thread"})
			return
		}

		slog.Info("successfully deleted objects from the Weaviate DB",
			"deletedConversations", deletedCount(response))
		slog.Info("Successfully deleted all data for thread", "threadId", threadID)
		c.JSON(http.StatusOK, gin.H{"status": "success", "deleted_thread_id": threadID})
	}
}
