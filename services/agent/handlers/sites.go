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

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianWebInsight/services/agent/index"
)

// ListSites handles GET /v1/sites. Returns the site keys currently held in
// the vector index.
func ListSites(indexer *index.Indexer) gin.HandlerFunc {
	return func(c *gin.Context) {
		slog.Info("Received request to list indexed sites")
		sites, err := indexer.ListSites(c.Request.Context())
		if err != nil {
			slog.Error("Failed to list indexed sites", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query indexed sites"})
			return
		}
		if sites == nil {
			sites = []string{}
		}
		c.JSON(http.StatusOK, gin.H{"sites": sites})
	}
}

// DeleteSite handles DELETE /v1/site?url=. Removes every indexed chunk for
// the site so a re-analysis starts clean.
func DeleteSite(indexer *index.Indexer) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawURL := c.Query("url")
		if rawURL == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "url query parameter is required"})
			return
		}

		site, err := index.SiteKey(rawURL)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid url"})
			return
		}

		slog.Info("Received a request to delete indexed site content", "site", site)
		matched, err := indexer.DeleteSite(c.Request.Context(), site)
		if err != nil {
			slog.Error("Failed to delete site content", "site", site, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete site content"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":         "success",
			"deleted_site":   site,
			"chunks_matched": matched,
		})
	}
}
