// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"

	"github.com/AleutianAI/AleutianWebInsight/pkg/extensions"
	"github.com/AleutianAI/AleutianWebInsight/services/agent/handlers"
	"github.com/AleutianAI/AleutianWebInsight/services/agent/index"
	"github.com/AleutianAI/AleutianWebInsight/services/agent/middleware"
	"github.com/AleutianAI/AleutianWebInsight/services/agent/services"
)

// Rate limits per client IP, applied before the handlers run. Analysis is
// the expensive path (crawl + LLM) so it gets the tighter budget.
const (
	AnalyzeRequestsPerMinute = 5
	ChatRequestsPerMinute    = 10
)

func SetupRoutes(router *gin.Engine, client *weaviate.Client, indexer *index.Indexer,
	analysisService *services.AnalysisService, chatService *services.ChatService,
	authProvider extensions.AuthProvider) {

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	analyzeLimiter := middleware.NewRateLimiter(AnalyzeRequestsPerMinute)
	chatLimiter := middleware.NewRateLimiter(ChatRequestsPerMinute)

	// API version 1 group
	v1 := router.Group("/v1")
	v1.Use(middleware.AuthMiddleware(authProvider))
	{
		v1.POST("/analyze", analyzeLimiter.Middleware(), handlers.HandleAnalyze(analysisService))
		v1.POST("/chat", chatLimiter.Middleware(), handlers.HandleChat(chatService))

		// Thread administration routes
		threads := v1.Group("/threads")
		{
			threads.GET("", handlers.ListThreads(client))
			threads.GET("/:threadId/history", handlers.GetThreadHistory(client))
			threads.DELETE("/:threadId", handlers.DeleteThread(client))
		}

		// Index administration routes
		v1.GET("/sites", handlers.ListSites(indexer))
		v1.DELETE("/site", handlers.DeleteSite(indexer))
	}
}
