// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// Tests for the thread deletion helpers

package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/weaviate/weaviate/entities/models"
)

// The batch delete response is nil when the delete call errored, and its
// Results can be nil on a minimal-output response. Both must read as zero
// deletions instead of panicking.
func TestDeletedCount(t *testing.T) {
	t.Run("nil response", func(t *testing.T) {
		assert.Equal(t, int64(0), deletedCount(nil))
	})

	t.Run("nil results", func(t *testing.T) {
		assert.Equal(t, int64(0), deletedCount(&models.BatchDeleteResponse{}))
	})

	t.Run("successful deletions", func(t *testing.T) {
		resp := &models.BatchDeleteResponse{
			Results: &models.BatchDeleteResponseResults{Successful: 3},
		}
		assert.Equal(t, int64(3), deletedCount(resp))
	})
}
