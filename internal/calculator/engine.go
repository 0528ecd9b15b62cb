package calculator

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go-chi-calculator/internal/observability"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

var decimalPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// Engine validates submissions and appends them to the history it owns.
type Engine struct {
	history *History
}

// NewEngine returns an engine over h. A nil h starts an empty history.
func NewEngine(h *History) *Engine {
	if h == nil {
		h = NewHistory()
	}
	return &Engine{history: h}
}

// History returns the history the engine appends to.
func (e *Engine) History() *History {
	return e.history
}

// Submit validates the raw operands, evaluates the operator token and
// appends the resulting record. Validation failures return a
// *ValidationError and leave the history untouched; division, modulus by zero
// and unknown operators are recorded as error outcomes and return a nil error.
func (e *Engine) Submit(ctx context.Context, xRaw, yRaw, op string) (Record, error) {
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator.submit",
		trace.WithAttributes(
			attribute.String("calculator.operator", op),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	x, y, err := parseOperands(xRaw, yRaw)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, Notice(err))
		recordRejected(ctx, err.Error())

		logger.Warn("calculation rejected",
			zap.String("x", xRaw),
			zap.String("y", yRaw),
			zap.String("operator", op),
			zap.Error(err),
			zap.String("session_id", observability.SessionIDFromContext(ctx)),
			zap.String("request_id", requestID),
		)
		return Record{}, err
	}

	span.SetAttributes(
		attribute.Float64("calculator.operand.x", x),
		attribute.Float64("calculator.operand.y", y),
	)

	start := time.Now()
	outcome := Evaluate(x, y, op)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms

	rec := Record{
		X:       strings.TrimSpace(xRaw),
		Y:       strings.TrimSpace(yRaw),
		Op:      op,
		Outcome: outcome,
	}
	e.history.Append(rec)
	recordOutcome(ctx, rec, elapsed)

	if outcome.IsError() {
		span.AddEvent("computation.failed", trace.WithAttributes(
			attribute.String("reason", outcome.Err().String()),
		))
		span.SetStatus(codes.Error, outcome.Err().Message())

		logger.Info("calculation recorded with error",
			zap.String("expression", rec.Expression()),
			zap.String("reason", outcome.Err().String()),
			zap.Int("history_len", e.history.Len()),
			zap.String("session_id", observability.SessionIDFromContext(ctx)),
			zap.String("request_id", requestID),
		)
		return rec, nil
	}

	result, _ := outcome.Value()
	span.AddEvent("computation.complete", trace.WithAttributes(
		attribute.Float64("result", result),
		attribute.Float64("duration_ms", elapsed),
	))
	span.SetAttributes(attribute.Float64("calculator.result", result))
	span.SetStatus(codes.Ok, "")

	logger.Info("calculation completed",
		zap.String("expression", rec.Expression()),
		zap.Float64("result", result),
		zap.Int("history_len", e.history.Len()),
		zap.String("request_id", requestID),
		zap.Float64("duration_ms", elapsed),
	)

	return rec, nil
}

func parseOperands(xRaw, yRaw string) (float64, float64, error) {
	xs := strings.TrimSpace(xRaw)
	ys := strings.TrimSpace(yRaw)
	if xs == "" || ys == "" {
		return 0, 0, missingInput()
	}

	x, ok := parseDecimal(xs)
	if !ok {
		return 0, 0, notNumeric()
	}
	y, ok := parseDecimal(ys)
	if !ok {
		return 0, 0, notNumeric()
	}
	return x, y, nil
}

// parseDecimal accepts finite decimal literals only.
func parseDecimal(s string) (float64, bool) {
	if !decimalPattern.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}
