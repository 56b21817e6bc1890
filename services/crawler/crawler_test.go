// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// Tests for the bounded breadth-first site crawler

package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testConfig returns a config tuned for fast local tests.
func testConfig() Config {
	return Config{
		MaxPages:          10,
		MaxDepth:          2,
		Concurrency:       4,
		RequestsPerSecond: 1000,
		RequestTimeout:    5 * time.Second,
	}
}

// newTestSite serves a map of path -> HTML body.
func newTestSite(pages map[string]string) *httptest.Server {
	mux := http.NewServeMux()
	for path, body := range pages {
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, body)
		})
	}
	return httptest.NewServer(mux)
}

func htmlPage(title, body string) string {
	return fmt.Sprintf("<html><head><title>%s</title></head><body>%s</body></html>", title, body)
}

// =============================================================================
// Crawl Tests
// =============================================================================

func TestCrawl_SinglePage(t *testing.T) {
	server := newTestSite(map[string]string{
		"/": htmlPage("Home", "<p>Welcome to our widget company. We make great widgets.</p>"),
	})
	defer server.Close()

	c := New(testConfig())
	pages, err := c.Crawl(context.Background(), server.URL)
	require.NoError(t, err)
	require.Len(t, pages, 1)

	assert.Equal(t, 0, pages[0].Depth)
	assert.Contains(t, pages[0].Content, "widget")
}

func TestCrawl_FollowsInternalLinks(t *testing.T) {
	server := newTestSite(map[string]string{
		"/": htmlPage("Home",
			`<p>Home page about our products.</p>
			 <a href="/about">About</a> <a href="/pricing">Pricing</a>`),
		"/about":   htmlPage("About", "<p>We were founded in 2020 by two engineers.</p>"),
		"/pricing": htmlPage("Pricing", "<p>Plans start at ten dollars per month.</p>"),
	})
	defer server.Close()

	c := New(testConfig())
	pages, err := c.Crawl(context.Background(), server.URL)
	require.NoError(t, err)
	require.Len(t, pages, 3)

	// Root is always first; linked pages carry depth 1.
	assert.Equal(t, 0, pages[0].Depth)
	assert.Equal(t, 1, pages[1].Depth)
	assert.Equal(t, 1, pages[2].Depth)
}

func TestCrawl_RespectsMaxPages(t *testing.T) {
	var links strings.Builder
	site := map[string]string{}
	for i := 0; i < 20; i++ {
		path := fmt.Sprintf("/page%d", i)
		fmt.Fprintf(&links, `<a href="%s">page %d</a> `, path, i)
		site[path] = htmlPage("Page", "<p>Some page content here.</p>")
	}
	site["/"] = htmlPage("Home", "<p>Index of pages.</p>"+links.String())

	server := newTestSite(site)
	defer server.Close()

	config := testConfig()
	config.MaxPages = 5
	c := New(config)

	pages, err := c.Crawl(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Len(t, pages, 5)
}

func TestCrawl_RespectsMaxDepth(t *testing.T) {
	server := newTestSite(map[string]string{
		"/":   htmlPage("Home", `<p>Root content.</p><a href="/l1">next</a>`),
		"/l1": htmlPage("L1", `<p>Level one content.</p><a href="/l2">next</a>`),
		"/l2": htmlPage("L2", `<p>Level two content.</p><a href="/l3">next</a>`),
		"/l3": htmlPage("L3", "<p>Level three content, should not be reached.</p>"),
	})
	defer server.Close()

	config := testConfig()
	config.MaxDepth = 2
	c := New(config)

	pages, err := c.Crawl(context.Background(), server.URL)
	require.NoError(t, err)
	require.Len(t, pages, 3)
	for _, p := range pages {
		assert.LessOrEqual(t, p.Depth, 2)
	}
}

func TestCrawl_SkipsExternalLinks(t *testing.T) {
	server := newTestSite(map[string]string{
		"/": htmlPage("Home",
			`<p>Home content.</p>
			 <a href="https://other-site.example/">external</a>
			 <a href="/local">local</a>`),
		"/local": htmlPage("Local", "<p>Local page content.</p>"),
	})
	defer server.Close()

	c := New(testConfig())
	pages, err := c.Crawl(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Len(t, pages, 2)
}

func TestCrawl_DoesNotRevisitPages(t *testing.T) {
	server := newTestSite(map[string]string{
		"/": htmlPage("Home",
			`<p>Home content.</p><a href="/a">a</a><a href="/a#section">a again</a>`),
		"/a": htmlPage("A", `<p>Page A content.</p><a href="/">home</a>`),
	})
	defer server.Close()

	c := New(testConfig())
	pages, err := c.Crawl(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Len(t, pages, 2)
}

func TestCrawl_RootFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := New(testConfig())
	_, err := c.Crawl(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch the website")
}

func TestCrawl_InvalidStartURL(t *testing.T) {
	c := New(testConfig())

	_, err := c.Crawl(context.Background(), "not a url")
	assert.Error(t, err)

	_, err = c.Crawl(context.Background(), "ftp://example.com")
	assert.Error(t, err)
}

func TestCrawl_SkipsBrokenChildPages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, htmlPage("Home",
			`<p>Home content.</p><a href="/broken">broken</a><a href="/good">good</a>`))
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/good", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, htmlPage("Good", "<p>Good page content.</p>"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := New(testConfig())
	pages, err := c.Crawl(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Len(t, pages, 2, "broken page is skipped, crawl continues")
}

func TestCrawl_ContextCancellation(t *testing.T) {
	server := newTestSite(map[string]string{
		"/": htmlPage("Home", "<p>Content.</p>"),
	})
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(testConfig())
	_, err := c.Crawl(ctx, server.URL)
	assert.Error(t, err)
}

// =============================================================================
// SameSite Tests
// =============================================================================

func TestSameSite(t *testing.T) {
	parse := func(s string) *url.URL {
		u, err := url.Parse(s)
		require.NoError(t, err)
		return u
	}

	tests := []struct {
		name      string
		root      string
		candidate string
		want      bool
	}{
		{"identical host", "https://example.com", "https://example.com/page", true},
		{"www variant", "https://example.com", "https://www.example.com/page", true},
		{"scheme change", "https://example.com", "http://example.com", true},
		{"port ignored", "https://example.com", "https://example.com:8443/x", true},
		{"different host", "https://example.com", "https://other.com", false},
		{"subdomain is a different site", "https://example.com", "https://blog.example.com", false},
		{"non-http scheme", "https://example.com", "mailto:hi@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SameSite(parse(tt.root), parse(tt.candidate)))
		})
	}
}

// =============================================================================
// canonicalKey Tests
// =============================================================================

func TestCanonicalKey(t *testing.T) {
	parse := func(s string) *url.URL {
		u, err := url.Parse(s)
		require.NoError(t, err)
		return u
	}

	// Trailing slash and fragment do not create distinct keys.
	assert.Equal(t,
		canonicalKey(parse("https://example.com/a")),
		canonicalKey(parse("https://example.com/a/")))
	assert.Equal(t,
		canonicalKey(parse("https://example.com/a")),
		canonicalKey(parse("https://example.com/a#section")))

	// Query strings do.
	assert.NotEqual(t,
		canonicalKey(parse("https://example.com/a")),
		canonicalKey(parse("https://example.com/a?page=2")))
}
