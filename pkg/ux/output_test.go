// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// Tests for terminal output styling helpers

package ux

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyValue_RendersLabelAndValue(t *testing.T) {
	out := KeyValue("Industry", "Software")

	assert.Contains(t, out, "Industry:")
	assert.Contains(t, out, "Software")
}

func TestKeyValue_EmptyValueShowsPlaceholder(t *testing.T) {
	assert.Contains(t, KeyValue("Email", ""), "(not found)")
	assert.Contains(t, KeyValue("Email", "   "), "(not found)")
}

func TestStyles_AreConfigured(t *testing.T) {
	assert.True(t, Styles.Title.GetBold())
	assert.True(t, Styles.Bold.GetBold())
}
