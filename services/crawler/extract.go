// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package crawler

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// boilerplateSelectors are removed before text extraction on the fallback
// path. Navigation and chrome add noise without adding signal for analysis.
var boilerplateSelectors = []string{"script", "style", "nav", "footer", "header", "noscript", "iframe"}

// ExtractText reduces an HTML document to a title and clean body text.
//
// It first lets go-readability distill the main article. Many marketing
// homepages have no article-like main content, so when readability comes
// back empty the whole document is used instead, minus boilerplate
// elements. Whitespace is collapsed to single spaces either way.
func ExtractText(pageURL *url.URL, html string) (title, content string, err error) {
	parser := readability.NewParser()
	article, rerr := parser.Parse(strings.NewReader(html), pageURL)
	if rerr == nil && strings.TrimSpace(article.TextContent) != "" {
		return normalizeText(article.Title), normalizeText(article.TextContent), nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	title = normalizeText(doc.Find("title").First().Text())
	for _, sel := range boilerplateSelectors {
		doc.Find(sel).Remove()
	}
	content = normalizeText(doc.Find("body").Text())
	if content == "" {
		// Documents without a body element still may carry text.
		content = normalizeText(doc.Text())
	}
	return title, content, nil
}

// ExtractLinks finds all anchor hrefs in the document and resolves them
// against the page URL. Fragments are stripped; unparseable and non-http(s)
// hrefs are dropped. Link discovery runs on the raw document, not the
// distilled one, because navigation menus are exactly where site links live.
func ExtractLinks(pageURL *url.URL, html string) []*url.URL {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var links []*url.URL
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") ||
			strings.HasPrefix(href, "javascript:") {
			return
		}
		resolved, err := pageURL.Parse(href)
		if err != nil {
			return
		}
		resolved.Fragment = ""
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		links = append(links, resolved)
	})
	return links
}

// normalizeText collapses all runs of whitespace to single spaces.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
