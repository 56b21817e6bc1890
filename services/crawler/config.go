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
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the crawl bounds. The zero value is not usable; run it
// through ValidateConfig or start from DefaultConfig.
type Config struct {
	// MaxPages caps the total number of fetched pages, root included.
	MaxPages int `yaml:"max_pages"`
	// MaxDepth caps link-following depth; 0 means root page only.
	MaxDepth int `yaml:"max_depth"`
	// Concurrency bounds in-flight fetches within one BFS level.
	Concurrency int `yaml:"concurrency"`
	// RequestsPerSecond is the politeness rate toward the target site.
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	// RequestTimeout bounds a single page fetch.
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// DefaultConfig returns the stock crawl bounds: 10 pages, depth 2,
// 2 requests per second.
func DefaultConfig() Config {
	return Config{
		MaxPages:          10,
		MaxDepth:          2,
		Concurrency:       4,
		RequestsPerSecond: 2,
		RequestTimeout:    15 * time.Second,
	}
}

// ValidateConfig replaces out-of-range values with defaults, logging a
// warning for each correction.
func ValidateConfig(config Config) Config {
	defaults := DefaultConfig()

	if config.MaxPages < 1 {
		slog.Warn("Invalid MaxPages config, using default",
			"provided", config.MaxPages, "default", defaults.MaxPages)
		config.MaxPages = defaults.MaxPages
	}
	if config.MaxDepth < 0 {
		slog.Warn("Invalid MaxDepth config, using default",
			"provided", config.MaxDepth, "default", defaults.MaxDepth)
		config.MaxDepth = defaults.MaxDepth
	}
	if config.Concurrency < 1 {
		slog.Warn("Invalid Concurrency config, using default",
			"provided", config.Concurrency, "default", defaults.Concurrency)
		config.Concurrency = defaults.Concurrency
	}
	if config.RequestsPerSecond <= 0 {
		slog.Warn("Invalid RequestsPerSecond config, using default",
			"provided", config.RequestsPerSecond, "default", defaults.RequestsPerSecond)
		config.RequestsPerSecond = defaults.RequestsPerSecond
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = defaults.RequestTimeout
	}
	return config
}

// configFile is the on-disk shape of the crawl config. MaxDepth is a
// pointer so an explicit "max_depth: 0" (root page only) is distinguishable
// from the key being absent.
type configFile struct {
	Crawler struct {
		MaxPages              int     `yaml:"max_pages"`
		MaxDepth              *int    `yaml:"max_depth"`
		Concurrency           int     `yaml:"concurrency"`
		RequestsPerSecond     float64 `yaml:"requests_per_second"`
		RequestTimeoutSeconds int     `yaml:"request_timeout_seconds"`
	} `yaml:"crawler"`
}

// LoadConfig builds the crawl config from defaults, an optional YAML file,
// and environment variable overrides, in that order of precedence
// (env wins).
//
// File shape:
//
//	crawler:
//	  max_pages: 10
//	  max_depth: 2
//	  concurrency: 4
//	  requests_per_second: 2
//	  request_timeout_seconds: 15
//
// Env overrides: CRAWLER_MAX_PAGES, CRAWLER_MAX_DEPTH, CRAWLER_CONCURRENCY,
// CRAWLER_REQUESTS_PER_SECOND, CRAWLER_REQUEST_TIMEOUT_SECONDS.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read crawler config %q: %w", path, err)
		}
		var file configFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return Config{}, fmt.Errorf("failed to parse crawler config %q: %w", path, err)
		}
		if file.Crawler.MaxPages != 0 {
			config.MaxPages = file.Crawler.MaxPages
		}
		if file.Crawler.MaxDepth != nil {
			config.MaxDepth = *file.Crawler.MaxDepth
		}
		if file.Crawler.Concurrency != 0 {
			config.Concurrency = file.Crawler.Concurrency
		}
		if file.Crawler.RequestsPerSecond != 0 {
			config.RequestsPerSecond = file.Crawler.RequestsPerSecond
		}
		if file.Crawler.RequestTimeoutSeconds != 0 {
			config.RequestTimeout = time.Duration(file.Crawler.RequestTimeoutSeconds) * time.Second
		}
		slog.Info("Loaded crawler config file", "path", path)
	}

	applyEnvInt := func(name string, dst *int) {
		if v := os.Getenv(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				slog.Warn("Ignoring unparseable crawler env override", "name", name, "value", v)
				return
			}
			*dst = n
		}
	}
	applyEnvInt("CRAWLER_MAX_PAGES", &config.MaxPages)
	applyEnvInt("CRAWLER_MAX_DEPTH", &config.MaxDepth)
	applyEnvInt("CRAWLER_CONCURRENCY", &config.Concurrency)

	if v := os.Getenv("CRAWLER_REQUESTS_PER_SECOND"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.RequestsPerSecond = f
		} else {
			slog.Warn("Ignoring unparseable crawler env override",
				"name", "CRAWLER_REQUESTS_PER_SECOND", "value", v)
		}
	}
	if v := os.Getenv("CRAWLER_REQUEST_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.RequestTimeout = time.Duration(n) * time.Second
		} else {
			slog.Warn("Ignoring unparseable crawler env override",
				"name", "CRAWLER_REQUEST_TIMEOUT_SECONDS", "value", v)
		}
	}

	return ValidateConfig(config), nil
}
