// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package crawler implements a bounded breadth-first crawl of a single site.
//
// The crawl starts at a root URL and follows same-host anchor links level by
// level until it hits the page, depth, or context limits. Each fetched page
// is reduced to clean text via readability extraction with a full-document
// fallback. The crawler never leaves the start host and never fetches more
// than MaxPages pages, regardless of how many links it discovers.
package crawler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("webinsight.crawler")

// userAgent mirrors a desktop browser; some sites return empty shells to
// unknown agents.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// maxBodyBytes caps how much of a response body is read. Pages larger than
// this are truncated, not rejected.
const maxBodyBytes = 4 << 20 // 4 MiB

// Page is one crawled page reduced to clean text.
type Page struct {
	URL     string
	Title   string
	Content string
	Depth   int
}

// Crawler fetches pages within the limits it was constructed with.
//
// # Thread Safety
//
// A Crawler is safe for concurrent use; each Crawl call keeps its own
// frontier and visited set.
type Crawler struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	config     Config
}

// New creates a Crawler with the given config. Invalid config values are
// replaced with defaults (see ValidateConfig).
func New(config Config) *Crawler {
	config = ValidateConfig(config)
	return &Crawler{
		httpClient: &http.Client{
			Timeout: config.RequestTimeout,
			// Redirects are followed up to the default 10 hops.
		},
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1),
		config:  config,
	}
}

// Crawl performs a bounded BFS starting at startURL.
//
// The root page is mandatory: if it cannot be fetched or parsed the crawl
// fails. Failures on deeper pages are logged and skipped so a single broken
// link never sinks an analysis. Results are returned in breadth-first order
// with the root page first.
func (c *Crawler) Crawl(ctx context.Context, startURL string) ([]Page, error) {
	ctx, span := tracer.Start(ctx, "Crawler.Crawl")
	defer span.End()
	span.SetAttributes(
		attribute.String("crawl.start_url", startURL),
		attribute.Int("crawl.max_pages", c.config.MaxPages),
		attribute.Int("crawl.max_depth", c.config.MaxDepth),
	)

	root, err := url.Parse(startURL)
	if err != nil || root.Scheme == "" || root.Host == "" {
		span.SetStatus(codes.Error, "invalid start URL")
		return nil, fmt.Errorf("invalid start URL %q: %w", startURL, err)
	}
	if root.Scheme != "http" && root.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q in start URL", root.Scheme)
	}

	slog.Info("Starting site crawl",
		"url", startURL,
		"maxPages", c.config.MaxPages,
		"maxDepth", c.config.MaxDepth)

	visited := map[string]bool{canonicalKey(root): true}
	var pages []Page

	rootPage, links, err := c.fetchPage(ctx, root, 0)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "root fetch failed")
		return nil, fmt.Errorf("failed to fetch the website: %w", err)
	}
	pages = append(pages, *rootPage)

	frontier := c.admitLinks(root, links, visited)

	for depth := 1; depth <= c.config.MaxDepth && len(frontier) > 0 && len(pages) < c.config.MaxPages; depth++ {
		// Trim the frontier so the level fetch cannot blow the page budget.
		budget := c.config.MaxPages - len(pages)
		if len(frontier) > budget {
			frontier = frontier[:budget]
		}

		levelPages, nextLinks := c.fetchLevel(ctx, frontier, depth)
		pages = append(pages, levelPages...)

		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			return nil, err
		}
		frontier = c.admitLinks(root, nextLinks, visited)
	}

	span.SetAttributes(attribute.Int("crawl.pages_fetched", len(pages)))
	slog.Info("Crawl complete", "url", startURL, "pages", len(pages))
	return pages, nil
}

// fetchLevel fetches one BFS level concurrently. Per-page failures are
// dropped; the returned slices preserve the frontier order.
func (c *Crawler) fetchLevel(ctx context.Context, frontier []*url.URL, depth int) ([]Page, []*url.URL) {
	type levelResult struct {
		page  *Page
		links []*url.URL
	}
	results := make([]levelResult, len(frontier))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.config.Concurrency)
	var mu sync.Mutex

	for i, u := range frontier {
		g.Go(func() error {
			page, links, err := c.fetchPage(gctx, u, depth)
			if err != nil {
				slog.Warn("Skipping page after fetch error", "url", u.String(), "error", err)
				return nil
			}
			mu.Lock()
			results[i] = levelResult{page: page, links: links}
			mu.Unlock()
			return nil
		})
	}
	// Workers never return errors; Wait only propagates context cancellation.
	_ = g.Wait()

	var pages []Page
	var next []*url.URL
	for _, r := range results {
		if r.page == nil {
			continue
		}
		pages = append(pages, *r.page)
		next = append(next, r.links...)
	}
	return pages, next
}

// fetchPage fetches a single URL, extracts its text content, and discovers
// outbound links.
func (c *Crawler) fetchPage(ctx context.Context, u *url.URL, depth int) (*Page, []*url.URL, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "html") {
		return nil, nil, fmt.Errorf("skipping non-HTML content type %q", contentType)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	// The redirect chain may have moved us; attribute content to the final URL.
	finalURL := resp.Request.URL

	title, content, err := ExtractText(finalURL, string(body))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to extract text: %w", err)
	}

	links := ExtractLinks(finalURL, string(body))
	return &Page{
		URL:     finalURL.String(),
		Title:   title,
		Content: content,
		Depth:   depth,
	}, links, nil
}

// admitLinks filters discovered links down to unvisited same-site URLs and
// marks them visited. Order is preserved so the BFS stays deterministic for
// a fixed link order.
func (c *Crawler) admitLinks(root *url.URL, links []*url.URL, visited map[string]bool) []*url.URL {
	var admitted []*url.URL
	for _, link := range links {
		if !SameSite(root, link) {
			continue
		}
		key := canonicalKey(link)
		if visited[key] {
			continue
		}
		visited[key] = true
		admitted = append(admitted, link)
	}
	return admitted
}

// SameSite reports whether candidate belongs to the same site as root.
// The comparison ignores scheme and a leading "www." so that
// https://example.com and http://www.example.com count as one site.
func SameSite(root, candidate *url.URL) bool {
	if candidate.Scheme != "http" && candidate.Scheme != "https" {
		return false
	}
	return normalizeHost(root.Host) == normalizeHost(candidate.Host)
}

func normalizeHost(host string) string {
	host = strings.ToLower(host)
	if h, _, ok := strings.Cut(host, ":"); ok {
		host = h
	}
	return strings.TrimPrefix(host, "www.")
}

// canonicalKey builds the visited-set key for a URL: host plus path plus
// query, fragment dropped.
func canonicalKey(u *url.URL) string {
	key := normalizeHost(u.Host) + strings.TrimSuffix(u.Path, "/")
	if u.RawQuery != "" {
		key += "?" + u.RawQuery
	}
	return key
}
