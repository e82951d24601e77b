package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestCtxAddsTraceFields(t *testing.T) {
	var buf bytes.Buffer
	base := InitWithWriter(&buf, "orders-service", "debug")

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	ctx := trace.ContextWithSpanContext(base.WithContext(context.Background()), sc)

	Ctx(ctx).Info().Msg("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "orders-service", line["service"])
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", line["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", line["span_id"])
	assert.Equal(t, "hello", line["message"])
}

func TestCtxFallsBackToDefaultLogger(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "events-service", "warn")

	Ctx(context.Background()).Info().Msg("dropped")
	Ctx(context.Background()).Warn().Msg("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}
