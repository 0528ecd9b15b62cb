package main

import (
	"context"
	"fmt"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/config"
	"go-chi-calculator/internal/observability"
)

// initTelemetry initialises logging, tracing, metrics and the OTLP log
// bridge in that order, plus the application-specific metric instruments.
// The returned shutdown flushes every provider that was started.
func initTelemetry(ctx context.Context, cfg *config.Config) (observability.Shutdown, error) {
	level, err := cfg.ZapLevel()
	if err != nil {
		return nil, err
	}
	if err := observability.InitLogger(level); err != nil {
		return nil, err
	}
	observability.SetServiceName(cfg.Service.Name)

	var shutdowns []observability.Shutdown
	shutdown := func(ctx context.Context) error {
		var first error
		for i := len(shutdowns) - 1; i >= 0; i-- {
			if err := shutdowns[i](ctx); err != nil && first == nil {
				first = err
			}
		}
		observability.SyncLogger()
		return first
	}

	steps := []struct {
		name  string
		start func(context.Context, bool) (observability.Shutdown, error)
		on    bool
	}{
		{"tracing", observability.InitTracing, cfg.Telemetry.Tracing},
		{"metrics", observability.InitMetrics, cfg.Telemetry.Metrics},
		{"logging", observability.InitLogging, cfg.Log.OTLP},
	}
	for _, step := range steps {
		fn, err := step.start(ctx, step.on)
		if err != nil {
			_ = shutdown(ctx)
			return nil, fmt.Errorf("init %s: %w", step.name, err)
		}
		shutdowns = append(shutdowns, fn)
	}

	if err := calculator.InitMetrics(); err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	return shutdown, nil
}
