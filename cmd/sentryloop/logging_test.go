package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestConfigureSlogJSONIncludesServiceTag(t *testing.T) {
	var buf bytes.Buffer
	configureSlog(slog.LevelInfo, "json", &buf)

	slog.Info("starting up")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not valid JSON: %v (%q)", err, buf.String())
	}
	if entry["service"] != "sentryloop" {
		t.Errorf("service tag = %v, want sentryloop", entry["service"])
	}
	if entry["msg"] != "starting up" {
		t.Errorf("msg = %v, want %q", entry["msg"], "starting up")
	}
}

func TestConfigureSlogTextFormat(t *testing.T) {
	var buf bytes.Buffer
	configureSlog(slog.LevelInfo, "text", &buf)

	slog.Info("ready")

	if !strings.Contains(buf.String(), "ready") {
		t.Errorf("expected text output to contain message, got %q", buf.String())
	}
}

func TestConfigureSlogRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	configureSlog(slog.LevelWarn, "text", &buf)

	slog.Info("should be dropped")
	slog.Warn("should appear")

	out := buf.String()
	if strings.Contains(out, "should be dropped") {
		t.Errorf("expected info-level message to be filtered out, got %q", out)
	}
	if !strings.Contains(out, "should appear") {
		t.Errorf("expected warn-level message, got %q", out)
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for input, want := range cases {
		if got := parseLogLevel(input); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", input, got, want)
		}
	}
}
