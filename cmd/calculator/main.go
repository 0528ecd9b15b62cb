package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go-chi-calculator/internal/calcweb"
	"go-chi-calculator/internal/config"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/render"
	"go-chi-calculator/internal/server"
	"go-chi-calculator/internal/session"

	"go.uber.org/zap"
)

func main() {

	ctx := context.Background()

	// Environment
	if err := loadDotEnv(); err != nil {
		panic(err)
	}

	// Config
	cfg, err := config.Load(os.Getenv("CALC_CONFIG"))
	if err != nil {
		panic(err)
	}

	// Logger, tracing, metrics
	shutdownTelemetry, err := initTelemetry(ctx, cfg)
	if err != nil {
		panic(err)
	}
	defer shutdownTelemetry(ctx)

	// Sessions
	page, err := render.LoadPage()
	if err != nil {
		observability.Logger.Fatal("loading page template", zap.Error(err))
	}
	renderer, err := render.New(cfg.UI.HomeURL)
	if err != nil {
		observability.Logger.Fatal("loading fragment templates", zap.Error(err))
	}
	store := session.NewStore(page, renderer, cfg.Session.IdleTimeout)

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go store.Run(sweepCtx, cfg.Session.SweepInterval)

	// Router
	router := server.NewRouter(
		calcweb.NewHandler(store, cfg.Session.CookieName),
		server.Options{AllowedOrigins: cfg.CORS.AllowedOrigins},
	)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		observability.Logger.Info("server started",
			zap.String("addr", cfg.Server.Addr),
			zap.String("service", observability.ServiceName()),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			observability.Logger.Fatal("server failed", zap.Error(err))
		}
	}()

	waitForShutdown(srv, cfg)
}

func waitForShutdown(srv *http.Server, cfg *config.Config) {

	stop := make(chan os.Signal, 1)

	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		observability.Logger.Error("server shutdown", zap.Error(err))
	}
}
