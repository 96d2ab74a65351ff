// Copyright (C) 2026 Relasi4Warna (bimsrama@relasi4warna.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package logging

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"ERROR", LevelError},
		{"garbage", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewWithFileLogging(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(Config{
		Level:   LevelDebug,
		LogDir:  dir,
		Service: "governd",
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info("content evaluated", "content_id", "content-1", "action", "allow")
	logger.Debug("detail line")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("log files = %d, want 1", len(entries))
	}
	if !strings.HasPrefix(entries[0].Name(), "governd_") {
		t.Errorf("log file name = %s, want governd_ prefix", entries[0].Name())
	}

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("log lines = %d, want 2", len(lines))
	}

	var record map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("file output is not JSON: %v", err)
	}
	if record["service"] != "governd" {
		t.Errorf("service attr = %v, want governd", record["service"])
	}
	if record["content_id"] != "content-1" {
		t.Errorf("content_id attr = %v, want content-1", record["content_id"])
	}
}

func TestLevelFiltering(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(Config{
		Level:   LevelWarn,
		LogDir:  dir,
		Service: "governd",
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	logger.Debug("filtered")
	logger.Info("filtered")
	logger.Warn("kept")
	_ = logger.Close()

	entries, _ := os.ReadDir(dir)
	data, _ := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Errorf("log lines = %d, want 1 (warn only)", len(lines))
	}
}

func TestDefaultLoggerNeedsNoClose(t *testing.T) {
	logger := Default()
	logger.Info("stderr only")
	if err := logger.Close(); err != nil {
		t.Errorf("Close on stderr-only logger failed: %v", err)
	}
}

func TestWithAttachesAttributes(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(Config{LogDir: dir, Service: "governd"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	scoped := logger.With("request_id", "req-1")
	scoped.Info("scoped line")
	_ = logger.Close()

	entries, _ := os.ReadDir(dir)
	data, _ := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	var record map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &record); err != nil {
		t.Fatalf("file output is not JSON: %v", err)
	}
	if record["request_id"] != "req-1" {
		t.Errorf("request_id attr = %v, want req-1", record["request_id"])
	}
}

func TestSlogExposure(t *testing.T) {
	logger := Default()
	var s *slog.Logger = logger.Slog()
	if s == nil {
		t.Fatal("Slog returned nil")
	}
}
