package calculator

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric instruments, initialized once via InitMetrics().
var (
	opsCounter   metric.Int64Counter
	opsHistogram metric.Float64Histogram
	errorCounter metric.Int64Counter
	resultGauge  metric.Float64Gauge

	metricsOnce sync.Once
	metricsErr  error
)

// submissionsTotal is scraped from /metrics. Outcome is "ok", "rejected" or
// the ErrorKind of a recorded failure.
var submissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "calculator_submissions_total",
	Help: "Calculator submissions by outcome",
}, []string{"outcome"})

// InitMetrics registers custom OTel metric instruments for the calculator domain.
// It is safe to call more than once; only the first call creates instruments.
func InitMetrics() error {
	metricsOnce.Do(func() {
		metricsErr = createInstruments()
	})
	return metricsErr
}

func createInstruments() error {
	meter := otel.Meter("calculator")

	var err error

	opsCounter, err = meter.Int64Counter("calculator.operations.total",
		metric.WithDescription("Total number of calculations recorded in a history"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return fmt.Errorf("creating ops counter: %w", err)
	}

	opsHistogram, err = meter.Float64Histogram("calculator.operation.duration",
		metric.WithDescription("Duration of calculator submissions in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1, 5, 10),
	)
	if err != nil {
		return fmt.Errorf("creating ops histogram: %w", err)
	}

	errorCounter, err = meter.Int64Counter("calculator.errors.total",
		metric.WithDescription("Total number of rejected or errored calculations"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	resultGauge, err = meter.Float64Gauge("calculator.last_result",
		metric.WithDescription("The result of the last numeric calculation"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("creating result gauge: %w", err)
	}

	return nil
}

// ErrorCounter exposes the error instrument for HTTP error reporting.
// It returns nil when instruments could not be created.
func ErrorCounter() metric.Int64Counter {
	if InitMetrics() != nil {
		return nil
	}
	return errorCounter
}

func recordRejected(ctx context.Context, reason string) {
	submissionsTotal.WithLabelValues("rejected").Inc()
	if InitMetrics() != nil {
		return
	}
	errorCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "submit"), attribute.String("reason", reason)))
}

func recordOutcome(ctx context.Context, rec Record, elapsedMs float64) {
	label := "ok"
	if rec.Outcome.IsError() {
		label = rec.Outcome.Err().String()
	}
	submissionsTotal.WithLabelValues(label).Inc()

	if InitMetrics() != nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("operation", operationName(rec.Op)))
	opsCounter.Add(ctx, 1, attrs)
	opsHistogram.Record(ctx, elapsedMs, attrs)

	if v, ok := rec.Outcome.Value(); ok {
		resultGauge.Record(ctx, v, attrs)
		return
	}
	errorCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operationName(rec.Op)),
		attribute.String("reason", rec.Outcome.Err().String()),
	))
}

func operationName(token string) string {
	op, _ := ParseOperator(token)
	return op.String()
}
