// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// =============================================================================
// Level Tests
// =============================================================================

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
		{Level(-1), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("Level.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLevel_toSlogLevel(t *testing.T) {
	tests := []struct {
		level Level
		want  slog.Level
	}{
		{LevelDebug, slog.LevelDebug},
		{LevelInfo, slog.LevelInfo},
		{LevelWarn, slog.LevelWarn},
		{LevelError, slog.LevelError},
		{Level(99), slog.LevelInfo}, // Unknown defaults to Info
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			if got := tt.level.toSlogLevel(); got != tt.want {
				t.Errorf("Level.toSlogLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

// =============================================================================
// Constructor Tests
// =============================================================================

func TestNew_DefaultService(t *testing.T) {
	logger := New(Config{Level: LevelInfo})
	defer logger.Close()

	if logger.service != "webinsight" {
		t.Errorf("service = %q, want webinsight", logger.service)
	}
	if logger.logFile != nil {
		t.Error("expected no log file without LogDir")
	}
}

func TestNew_WithLogDir(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{Level: LevelInfo, Service: "cli", LogDir: dir})

	logger.Info("hello from test")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	path := filepath.Join(dir, "cli.log")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected log file at %s: %v", path, err)
	}
	if !strings.Contains(string(data), "hello from test") {
		t.Errorf("log file missing message, got: %s", data)
	}
	if !strings.Contains(string(data), `"service":"cli"`) {
		t.Errorf("log file missing service attribute, got: %s", data)
	}
}

func TestNew_WithLogDir_InvalidPath(t *testing.T) {
	// A file where the directory should be: MkdirAll fails, logger degrades
	// to stderr-only instead of failing.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	logger := New(Config{Level: LevelInfo, LogDir: filepath.Join(blocker, "logs")})
	defer logger.Close()

	if logger.logFile != nil {
		t.Error("expected logger to degrade to stderr-only")
	}
	logger.Info("still works")
}

func TestDefault(t *testing.T) {
	logger := Default()
	defer logger.Close()

	if logger.level != LevelInfo {
		t.Errorf("Default() level = %v, want LevelInfo", logger.level)
	}
	if logger.service != "webinsight" {
		t.Errorf("Default() service = %q, want webinsight", logger.service)
	}
}

// =============================================================================
// Logging and Filtering Tests
// =============================================================================

func TestLogger_LevelFiltering(t *testing.T) {
	exporter := NewBufferedExporter()
	logger := New(Config{Level: LevelWarn, Exporter: exporter})
	defer logger.Close()

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	entries := exporter.Entries()
	if len(entries) != 2 {
		t.Fatalf("got %d exported entries, want 2", len(entries))
	}
	if entries[0].Level != "WARN" || entries[1].Level != "ERROR" {
		t.Errorf("unexpected levels: %s, %s", entries[0].Level, entries[1].Level)
	}
}

func TestLogger_ExportedFields(t *testing.T) {
	exporter := NewBufferedExporter()
	logger := New(Config{Level: LevelInfo, Service: "cli", Exporter: exporter})
	defer logger.Close()

	logger.Info("analyze requested", "url", "https://example.com", "pages", 10)

	entries := exporter.Entries()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	entry := entries[0]
	if entry.Service != "cli" {
		t.Errorf("Service = %q, want cli", entry.Service)
	}
	if entry.Message != "analyze requested" {
		t.Errorf("Message = %q", entry.Message)
	}
	if entry.Fields["url"] != "https://example.com" {
		t.Errorf("Fields[url] = %v", entry.Fields["url"])
	}
	if entry.Fields["pages"] != 10 {
		t.Errorf("Fields[pages] = %v", entry.Fields["pages"])
	}
	if entry.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestLogger_With(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{Level: LevelInfo, Service: "cli", LogDir: dir})
	child := logger.With("thread_id", "abc-123")

	child.Info("turn answered")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "cli.log"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"thread_id":"abc-123"`) {
		t.Errorf("child logger did not carry bound attribute, got: %s", data)
	}
}

func TestLogger_ConcurrentUse(t *testing.T) {
	exporter := NewBufferedExporter()
	logger := New(Config{Level: LevelInfo, Exporter: exporter})
	defer logger.Close()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				logger.Info("concurrent", "worker", n, "iter", j)
			}
		}(i)
	}
	wg.Wait()

	if got := len(exporter.Entries()); got != 200 {
		t.Errorf("got %d entries, want 200", got)
	}
}

// =============================================================================
// multiHandler Tests
// =============================================================================

func TestMultiHandler_Enabled(t *testing.T) {
	var bufA, bufB bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&bufA, &slog.HandlerOptions{Level: slog.LevelError}),
		slog.NewTextHandler(&bufB, &slog.HandlerOptions{Level: slog.LevelDebug}),
	}}

	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Enabled should be true when any handler accepts the level")
	}
}

func TestMultiHandler_Handle_RespectsPerHandlerLevel(t *testing.T) {
	var bufA, bufB bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&bufA, &slog.HandlerOptions{Level: slog.LevelError}),
		slog.NewTextHandler(&bufB, &slog.HandlerOptions{Level: slog.LevelDebug}),
	}}
	logger := slog.New(h)

	logger.Info("only for the debug handler")

	if bufA.Len() != 0 {
		t.Errorf("error-level handler received an info record: %s", bufA.String())
	}
	if !strings.Contains(bufB.String(), "only for the debug handler") {
		t.Errorf("debug-level handler missed the record: %s", bufB.String())
	}
}

func TestMultiHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewJSONHandler(&buf, nil),
	}}
	logger := slog.New(h).With("site", "example.com")

	logger.Info("tagged")

	if !strings.Contains(buf.String(), `"site":"example.com"`) {
		t.Errorf("WithAttrs attribute missing: %s", buf.String())
	}
}

// =============================================================================
// Helper Tests
// =============================================================================

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available")
	}

	tests := []struct {
		in   string
		want string
	}{
		{"~/logs", filepath.Join(home, "logs")},
		{"/var/log/webinsight", "/var/log/webinsight"},
		{"relative/logs", "relative/logs"},
	}
	for _, tt := range tests {
		if got := expandPath(tt.in); got != tt.want {
			t.Errorf("expandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestArgsToMap(t *testing.T) {
	tests := []struct {
		name string
		args []any
		want map[string]any
	}{
		{"empty", nil, nil},
		{"pairs", []any{"a", 1, "b", "two"}, map[string]any{"a": 1, "b": "two"}},
		{"trailing key", []any{"a", 1, "orphan"}, map[string]any{"a": 1, "orphan": nil}},
		{"non-string key", []any{42, "x"}, map[string]any{"42": "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := argsToMap(tt.args)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d fields, want %d", len(got), len(tt.want))
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("got[%q] = %v, want %v", k, got[k], v)
				}
			}
		})
	}
}

// =============================================================================
// Exporter Tests
// =============================================================================

func TestBufferedExporter(t *testing.T) {
	exporter := NewBufferedExporter()
	ctx := context.Background()

	entry := LogEntry{Timestamp: time.Now(), Level: "INFO", Service: "cli", Message: "one"}
	if err := exporter.Export(ctx, entry); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if got := exporter.Entries(); len(got) != 1 || got[0].Message != "one" {
		t.Errorf("Entries() = %+v", got)
	}

	if err := exporter.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if got := exporter.Entries(); len(got) != 0 {
		t.Errorf("entries should be dropped after Close, got %d", len(got))
	}
}

func TestWriterExporter(t *testing.T) {
	var buf bytes.Buffer
	exporter := NewWriterExporter(&buf)

	entry := LogEntry{
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Level:     "WARN",
		Service:   "cli",
		Message:   "slow response",
	}
	if err := exporter.Export(context.Background(), entry); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	line := buf.String()
	for _, want := range []string{`"level":"WARN"`, `"service":"cli"`, `"message":"slow response"`} {
		if !strings.Contains(line, want) {
			t.Errorf("output missing %s: %s", want, line)
		}
	}
	if !strings.HasSuffix(line, "\n") {
		t.Error("each entry should be one newline-terminated line")
	}
}

func TestNopExporter(t *testing.T) {
	exporter := &NopExporter{}
	ctx := context.Background()
	if err := exporter.Export(ctx, LogEntry{}); err != nil {
		t.Errorf("Export() error = %v", err)
	}
	if err := exporter.Flush(ctx); err != nil {
		t.Errorf("Flush() error = %v", err)
	}
	if err := exporter.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
