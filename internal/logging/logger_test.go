// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"ERROR", zerolog.ErrorLevel},
		{" fatal ", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tc := range cases {
		if got := parseLevel(tc.in); got != tc.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(Config{Level: "debug", Format: "json", Output: &buf})
	l.Info().Str("panel", "funnel").Msg("query executed")

	out := buf.String()
	if !strings.Contains(out, `"panel":"funnel"`) {
		t.Errorf("expected panel field in output, got %q", out)
	}
	if !strings.Contains(out, `"message":"query executed"`) {
		t.Errorf("expected message in output, got %q", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(Config{Level: "warn", Format: "json", Output: &buf})
	l.Debug().Msg("dropped")
	l.Info().Msg("dropped too")
	l.Warn().Msg("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("below-threshold events should be filtered, got %q", out)
	}
	if !strings.Contains(out, "kept") {
		t.Errorf("warn event missing from output %q", out)
	}
}

func TestWithChainsEvents(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})

	With("upstream").Warn().Str("source", "ads").Msg("retrying")
	Info().Msg("direct event")

	out := buf.String()
	if !strings.Contains(out, `"component":"upstream"`) {
		t.Errorf("expected component field, got %q", out)
	}
	if !strings.Contains(out, `"source":"ads"`) {
		t.Errorf("expected chained field, got %q", out)
	}
	if !strings.Contains(out, "direct event") {
		t.Errorf("expected package-level event, got %q", out)
	}
}

func TestRequestIDContext(t *testing.T) {
	ctx := context.Background()
	if got := RequestIDFromContext(ctx); got != "" {
		t.Errorf("empty context should have no request ID, got %q", got)
	}

	id := NewRequestID()
	if id == "" {
		t.Fatal("NewRequestID returned empty string")
	}
	ctx = ContextWithRequestID(ctx, id)
	if got := RequestIDFromContext(ctx); got != id {
		t.Errorf("RequestIDFromContext = %q, want %q", got, id)
	}
}

func TestFromContextFallsBackWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})

	ctx := ContextWithRequestID(context.Background(), "req-123")
	FromContext(ctx).Info().Msg("hello")

	if !strings.Contains(buf.String(), `"request_id":"req-123"`) {
		t.Errorf("fallback logger should carry request ID, got %q", buf.String())
	}
}

func TestContextWithLoggerRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	stored := NewTestLogger(&buf).With().Str("component", "test").Logger()

	ctx := ContextWithLogger(context.Background(), stored)
	FromContext(ctx).Info().Msg("scoped")

	if !strings.Contains(buf.String(), `"component":"test"`) {
		t.Errorf("expected stored logger to be returned, got %q", buf.String())
	}
}

func TestSlogHandlerLevels(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "json", Output: &buf})

	l := NewSlogLogger()
	l.Debug("below threshold")
	l.Info("upstream ready", "source", "ga4")

	out := buf.String()
	if strings.Contains(out, "below threshold") {
		t.Errorf("debug record should be suppressed at info level, got %q", out)
	}
	if !strings.Contains(out, `"source":"ga4"`) {
		t.Errorf("expected slog attrs in zerolog output, got %q", out)
	}
}
