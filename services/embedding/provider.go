// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package embedding provides text embedding providers for the site index.
//
// Embeddings remain an external collaborator: this package only wraps hosted
// embedding APIs behind a small interface so the index and retrieval code
// never depend on a concrete vendor.
package embedding

import "context"

// Provider computes dense vector representations of text.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use.
type Provider interface {
	// Embed computes the embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch computes embeddings for multiple texts in one call where the
	// backend supports it. The result is index-aligned with the input.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
