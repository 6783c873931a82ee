package telemetry_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/tsload/internal/adapters/telemetry"
	"go.trai.ch/tsload/internal/core/domain"
	"go.trai.ch/tsload/internal/core/ports"
)

func TestInterfaceSatisfaction(_ *testing.T) {
	var _ ports.Tracer = (*telemetry.OTelTracer)(nil)
	var _ ports.Span = (*telemetry.OTelSpan)(nil)
	var _ ports.Tracer = (*telemetry.NoOpTracer)(nil)
	var _ ports.Span = telemetry.NoOpSpan{}
}

func setupRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return sr
}

func TestOTelTracer_Attributes(t *testing.T) {
	sr := setupRecorder(t)
	tracer := telemetry.NewOTelTracer("test")

	_, span := tracer.Start(context.Background(), "load")
	span.SetAttribute("filename", "test.ts")
	span.SetAttribute("cache_hit", true)
	span.SetAttribute("size", 10)
	span.SetAttribute("backend", domain.BackendEngine)
	span.End()

	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "load", ended[0].Name())
	assert.ElementsMatch(t, []attribute.KeyValue{
		attribute.String("filename", "test.ts"),
		attribute.Bool("cache_hit", true),
		attribute.Int("size", 10),
		attribute.String("backend", "engine"),
	}, ended[0].Attributes())
}

func TestOTelTracer_RecordError(t *testing.T) {
	sr := setupRecorder(t)
	tracer := telemetry.NewOTelTracer("test")

	_, span := tracer.Start(context.Background(), "compile")
	span.RecordError(nil)
	span.RecordError(errors.New("boom"))
	span.End()

	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "boom", ended[0].Status().Description)
}

func TestNoOpTracer(t *testing.T) {
	ctx := context.Background()
	got, span := telemetry.NewNoOpTracer().Start(ctx, "noop")
	assert.Equal(t, ctx, got)

	span.SetAttribute("k", "v")
	span.RecordError(errors.New("ignored"))
	span.End()
}

func TestBridge_WritesTraceLines(t *testing.T) {
	var buf bytes.Buffer
	bridge := telemetry.NewBridge(&buf)
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(bridge))

	_, span := tp.Tracer("test").Start(context.Background(), "load")
	span.SetAttributes(attribute.String("filename", "my file.ts"), attribute.Bool("cache_hit", false))
	span.SetStatus(codes.Error, "could not compile")
	span.End()

	require.NoError(t, tp.Shutdown(context.Background()))

	line := buf.String()
	assert.Regexp(t, `^trace load \S+ cache_hit=false filename="my file.ts" error="could not compile"\n$`, line)
}

func TestSetup(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var buf bytes.Buffer
	shutdown := telemetry.Setup(&buf)

	_, span := telemetry.NewOTelTracer("test").Start(context.Background(), "select compiler")
	span.SetAttribute("backend", "engine")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "trace select compiler ")
	assert.Contains(t, buf.String(), "backend=engine")
}
