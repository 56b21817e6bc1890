// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// Tests for HTML text and link extraction

package crawler

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

// =============================================================================
// ExtractText Tests
// =============================================================================

func TestExtractText_PlainDocument(t *testing.T) {
	html := `<html><head><title>Acme Widgets</title></head>
	<body><p>We build the best widgets in the business.</p></body></html>`

	_, content, err := ExtractText(mustParse(t, "https://example.com"), html)
	require.NoError(t, err)
	assert.Contains(t, content, "best widgets")
}

func TestExtractText_RemovesBoilerplate(t *testing.T) {
	html := `<html><head><title>Acme</title>
	<script>var tracking = true;</script>
	<style>.nav { color: red }</style></head>
	<body>
	<nav>Home | About | Contact</nav>
	<p>Our flagship product ships worldwide.</p>
	<footer>Copyright Acme Inc</footer>
	</body></html>`

	_, content, err := ExtractText(mustParse(t, "https://example.com"), html)
	require.NoError(t, err)

	assert.Contains(t, content, "flagship product")
	assert.NotContains(t, content, "var tracking")
	assert.NotContains(t, content, "color: red")
}

func TestExtractText_CollapsesWhitespace(t *testing.T) {
	html := "<html><body><p>spaced    out\n\n\ttext</p></body></html>"

	_, content, err := ExtractText(mustParse(t, "https://example.com"), html)
	require.NoError(t, err)
	assert.Contains(t, content, "spaced out text")
}

func TestExtractText_EmptyDocument(t *testing.T) {
	_, content, err := ExtractText(mustParse(t, "https://example.com"), "<html><body></body></html>")
	require.NoError(t, err)
	assert.Empty(t, content)
}

// =============================================================================
// ExtractLinks Tests
// =============================================================================

func TestExtractLinks_ResolvesRelative(t *testing.T) {
	html := `<html><body>
	<a href="/about">About</a>
	<a href="pricing">Pricing</a>
	<a href="https://example.com/absolute">Absolute</a>
	</body></html>`

	links := ExtractLinks(mustParse(t, "https://example.com/products/"), html)
	require.Len(t, links, 3)

	assert.Equal(t, "https://example.com/about", links[0].String())
	assert.Equal(t, "https://example.com/products/pricing", links[1].String())
	assert.Equal(t, "https://example.com/absolute", links[2].String())
}

func TestExtractLinks_SkipsNonNavigable(t *testing.T) {
	html := `<html><body>
	<a href="#section">Anchor</a>
	<a href="mailto:hi@example.com">Mail</a>
	<a href="tel:+15550100">Call</a>
	<a href="javascript:void(0)">JS</a>
	<a href="">Empty</a>
	<a href="/real">Real</a>
	</body></html>`

	links := ExtractLinks(mustParse(t, "https://example.com"), html)
	require.Len(t, links, 1)
	assert.Equal(t, "https://example.com/real", links[0].String())
}

func TestExtractLinks_StripsFragments(t *testing.T) {
	html := `<html><body><a href="/page#top">Page</a></body></html>`

	links := ExtractLinks(mustParse(t, "https://example.com"), html)
	require.Len(t, links, 1)
	assert.Equal(t, "https://example.com/page", links[0].String())
	assert.Empty(t, links[0].Fragment)
}

func TestExtractLinks_MalformedDocument(t *testing.T) {
	// goquery parses almost anything; the result should just be empty,
	// never a panic.
	links := ExtractLinks(mustParse(t, "https://example.com"), "<<<not html>>>")
	assert.Empty(t, links)
}
