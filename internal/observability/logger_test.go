package observability

import (
	"context"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitLoggerHonoursLevel(t *testing.T) {
	oldLogger := Logger
	t.Cleanup(func() { Logger = oldLogger })

	if err := InitLogger(zapcore.WarnLevel); err != nil {
		t.Fatalf("init logger: %v", err)
	}

	if Logger.Core().Enabled(zapcore.InfoLevel) {
		t.Fatal("expected info to be disabled at warn level")
	}
	if !Logger.Core().Enabled(zapcore.ErrorLevel) {
		t.Fatal("expected error to be enabled at warn level")
	}
}

func TestLoggerWithTraceWithoutSpanReturnsBaseLogger(t *testing.T) {
	if got := LoggerWithTrace(context.Background()); got != Logger {
		t.Fatal("expected base logger when ctx has no span")
	}
}

func TestLoggerWithTraceAddsTraceFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	oldLogger := Logger
	Logger = zap.New(core)
	t.Cleanup(func() { Logger = oldLogger })

	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	LoggerWithTrace(ctx).Info("traced")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}

	fields := entries[0].ContextMap()
	if fields["trace_id"] != span.SpanContext().TraceID().String() {
		t.Fatalf("expected trace_id %q, got %#v", span.SpanContext().TraceID().String(), fields["trace_id"])
	}
	if fields["span_id"] != span.SpanContext().SpanID().String() {
		t.Fatalf("expected span_id %q, got %#v", span.SpanContext().SpanID().String(), fields["span_id"])
	}
}

func TestServiceNameOverride(t *testing.T) {
	t.Cleanup(func() { SetServiceName("") })

	t.Setenv("OTEL_SERVICE_NAME", "from-env")
	if got := ServiceName(); got != "from-env" {
		t.Fatalf("expected %q, got %q", "from-env", got)
	}

	SetServiceName("from-config")
	if got := ServiceName(); got != "from-config" {
		t.Fatalf("expected %q, got %q", "from-config", got)
	}
}

func TestDisabledProvidersReturnNoopShutdown(t *testing.T) {
	ctx := context.Background()

	for name, start := range map[string]func(context.Context, bool) (Shutdown, error){
		"tracing": InitTracing,
		"metrics": InitMetrics,
		"logging": InitLogging,
	} {
		shutdown, err := start(ctx, false)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", name, err)
		}
		if err := shutdown(ctx); err != nil {
			t.Fatalf("%s: unexpected shutdown error %v", name, err)
		}
	}
}
