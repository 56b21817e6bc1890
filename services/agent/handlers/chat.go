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
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/AleutianWebInsight/services/agent/datatypes"
	"github.com/AleutianAI/AleutianWebInsight/services/agent/observability"
	"github.com/AleutianAI/AleutianWebInsight/services/agent/services"
)

// HandleChat handles POST /v1/chat. A site that was never analyzed gets
// indexed on the fly before the question is answered.
func HandleChat(chatService *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := agentTracer.Start(c.Request.Context(), "HandleChat")
		defer span.End()
		started := time.Now()

		var request datatypes.ChatRequest
		if err := c.BindJSON(&request); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Failed to bind chat request JSON", "error", err)
			observability.DefaultMetrics.RecordRequest(observability.EndpointChat, false)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		span.SetAttributes(
			attribute.String("url", request.URL),
			attribute.String("thread_id", request.ThreadID),
		)

		resp, err := chatService.Process(ctx, &request)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			observability.DefaultMetrics.RecordRequest(observability.EndpointChat, false)

			status := statusForServiceError(err)
			switch {
			case services.IsCrawlError(err):
				observability.DefaultMetrics.RecordError(observability.EndpointChat, observability.ErrorCodeCrawl)
				slog.Error("Chat auto-index crawl failed", "url", request.URL, "error", err)
				c.JSON(status, gin.H{"error": "Failed to fetch the website"})
			case services.IsGenerationError(err):
				observability.DefaultMetrics.RecordError(observability.EndpointChat, observability.ErrorCodeLLMError)
				slog.Error("Chat generation failed", "threadId", request.ThreadID, "error", err)
				c.JSON(status, gin.H{"error": "AI response generation failed"})
			case isValidationError(err):
				observability.DefaultMetrics.RecordError(observability.EndpointChat, observability.ErrorCodeValidation)
				c.JSON(status, gin.H{"error": err.Error()})
			default:
				observability.DefaultMetrics.RecordError(observability.EndpointChat, observability.ErrorCodeInternal)
				slog.Error("Chat processing failed", "threadId", request.ThreadID, "error", err)
				c.JSON(status, gin.H{"error": "Internal server error"})
			}
			return
		}

		observability.DefaultMetrics.RecordRequest(observability.EndpointChat, true)
		observability.DefaultMetrics.RecordDuration(observability.EndpointChat, time.Since(started).Seconds())
		c.JSON(http.StatusOK, resp)
	}
}

// isValidationError reports whether a service error came from request
// validation, which the service wraps with a stable prefix.
func isValidationError(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "validation failed")
}

// statusForServiceError maps a service error onto its HTTP status code.
// A crawl failure is an upstream fault and gets 502; a generation failure
// is our pipeline's fault and gets 500 like any other internal error.
func statusForServiceError(err error) int {
	switch {
	case services.IsCrawlError(err):
		return http.StatusBadGateway
	case isValidationError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
