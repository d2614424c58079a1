package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"expcalc/internal/cli"
	apphttp "expcalc/internal/http"
	"expcalc/internal/log"
	"expcalc/internal/telemetry"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, os.Stdout)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	tp, err := telemetry.New(ctx, cfg.OTLPEndpoint, cfg.ServiceName)
	if err != nil {
		logger.Error("Failed to initialize OTLP exporter", log.FieldError, err)
		os.Exit(1)
	}

	srv := apphttp.NewServer(apphttp.OptionsFromConfig(cfg, logger, tp.Tracer()))

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting expcalc server",
			"addr", srv.Addr,
			"locale", cfg.Locale,
			"tracing", tp != nil,
			log.FieldOperation, log.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		if terr := tp.Shutdown(shutdownCtx); terr != nil {
			logger.Warn("Telemetry shutdown error", log.FieldError, terr)
		}
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err, "addr", srv.Addr)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
