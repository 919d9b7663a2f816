package telemetry

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = provider.Shutdown(context.Background())
	})
	return recorder
}

func TestWithSpan(t *testing.T) {
	recorder := recordSpans(t)

	err := WithSpan(context.Background(), "outer", func(ctx context.Context) error {
		AddEvent(ctx, "checkpoint")
		SetAttributes(ctx, attribute.String("extra", "yes"))
		return WithSpan(ctx, "inner", func(context.Context) error { return nil })
	}, attribute.Int("count", 2))
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	inner, outer := spans[0], spans[1]

	assert.Equal(t, "inner", inner.Name())
	assert.Equal(t, "outer", outer.Name())
	assert.Equal(t, outer.SpanContext().SpanID(), inner.Parent().SpanID())
	assert.Equal(t, codes.Ok, outer.Status().Code)
	assert.Contains(t, outer.Attributes(), attribute.Int("count", 2))
	assert.Contains(t, outer.Attributes(), attribute.String("extra", "yes"))
	require.Len(t, outer.Events(), 1)
	assert.Equal(t, "checkpoint", outer.Events()[0].Name)
}

func TestWithSpan_Error(t *testing.T) {
	recorder := recordSpans(t)
	errBoom := errors.New("boom")

	err := WithSpan(context.Background(), "failing", func(context.Context) error { return errBoom })
	assert.Equal(t, errBoom, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "boom", spans[0].Status().Description)
}

func TestInitTracer_Disabled(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), Config{Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestGetSampler(t *testing.T) {
	assert.Equal(t, "AlwaysOffSampler", getSampler(Config{SamplerType: "never"}).Description())
	assert.Equal(t, "AlwaysOnSampler", getSampler(Config{SamplerType: "always"}).Description())
	assert.Equal(t, "AlwaysOnSampler", getSampler(Config{}).Description())
	assert.Contains(t, getSampler(Config{SamplerType: "ratio", SamplerRatio: 0.5}).Description(), "TraceIDRatioBased{0.5}")
}
