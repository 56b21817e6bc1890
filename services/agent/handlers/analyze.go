// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers contains the Gin HTTP handlers for the agent service.
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/AleutianWebInsight/services/agent/datatypes"
	"github.com/AleutianAI/AleutianWebInsight/services/agent/observability"
	"github.com/AleutianAI/AleutianWebInsight/services/agent/services"
)

var agentTracer = otel.Tracer("webinsight.agent.handlers")

// HandleAnalyze handles POST /v1/analyze. It binds and validates the
// request, runs the analysis service, and maps service errors onto HTTP
// status codes: 400 for bad input, 502 when the target site cannot be
// fetched, 500 when the LLM fails or anything else goes wrong.
func HandleAnalyze(analysisService *services.AnalysisService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := agentTracer.Start(c.Request.Context(), "HandleAnalyze")
		defer span.End()
		started := time.Now()

		var request datatypes.AnalyzeRequest
		if err := c.BindJSON(&request); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Failed to bind analyze request JSON", "error", err)
			observability.DefaultMetrics.RecordRequest(observability.EndpointAnalyze, false)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		span.SetAttributes(attribute.String("url", request.URL))

		resp, err := analysisService.Analyze(ctx, &request)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			observability.DefaultMetrics.RecordRequest(observability.EndpointAnalyze, false)

			status := statusForServiceError(err)
			switch {
			case services.IsCrawlError(err):
				observability.DefaultMetrics.RecordError(observability.EndpointAnalyze, observability.ErrorCodeCrawl)
				slog.Error("Analysis crawl failed", "url", request.URL, "error", err)
				c.JSON(status, gin.H{"error": "Failed to fetch the website"})
			case services.IsGenerationError(err):
				observability.DefaultMetrics.RecordError(observability.EndpointAnalyze, observability.ErrorCodeLLMError)
				slog.Error("Analysis generation failed", "url", request.URL, "error", err)
				c.JSON(status, gin.H{"error": "AI analysis failed"})
			case isValidationError(err):
				observability.DefaultMetrics.RecordError(observability.EndpointAnalyze, observability.ErrorCodeValidation)
				c.JSON(status, gin.H{"error": err.Error()})
			default:
				observability.DefaultMetrics.RecordError(observability.EndpointAnalyze, observability.ErrorCodeInternal)
				slog.Error("Analysis failed", "url", request.URL, "error", err)
				c.JSON(status, gin.H{"error": "Internal server error"})
			}
			return
		}

		observability.DefaultMetrics.RecordRequest(observability.EndpointAnalyze, true)
		observability.DefaultMetrics.RecordDuration(observability.EndpointAnalyze, time.Since(started).Seconds())
		observability.DefaultMetrics.RecordCrawl(resp.PagesCrawled, resp.ChunksIndexed)
		c.JSON(http.StatusOK, resp)
	}
}
