package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func TestConfigureSlogJSONCarriesSpanIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := ConfigureSlog(&buf, "info", "json")

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10},
		SpanID:  trace.SpanID{0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10, 0x11},
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	logger.InfoContext(ctx, "run started", slog.String("agent_id", "agent-argocd"))

	var record map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("log line is not JSON: %v\n%s", err, buf.String())
	}
	if record["trace_id"] != sc.TraceID().String() {
		t.Errorf("expected trace_id %s, got %v", sc.TraceID(), record["trace_id"])
	}
	if record["span_id"] != sc.SpanID().String() {
		t.Errorf("expected span_id %s, got %v", sc.SpanID(), record["span_id"])
	}
	if record["agent_id"] != "agent-argocd" {
		t.Errorf("explicit attribute lost: %v", record)
	}
}

func TestConfigureSlogWithoutSpanOmitsIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := ConfigureSlog(&buf, "info", "json")

	logger.InfoContext(context.Background(), "no span here")

	if strings.Contains(buf.String(), "trace_id") {
		t.Errorf("expected no trace_id without a span: %s", buf.String())
	}
}

func TestConfigureSlogLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := ConfigureSlog(&buf, "warn", "text")

	logger.Info("dropped")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("info record should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "kept") {
		t.Errorf("warn record missing: %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for input, want := range cases {
		if got := ParseLevel(input); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}
