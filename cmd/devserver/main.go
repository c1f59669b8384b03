package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"mobileauth/internal/devserver"
	"mobileauth/internal/devserver/metrics"
	"mobileauth/internal/platform/config"
	"mobileauth/internal/platform/logger"
)

const shutdownTimeout = 10 * time.Second

// main runs the local verification service the mobile client signs in
// against, plus a Prometheus endpoint on a separate listener.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(os.Stderr, "error", "json").Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	if cfg.IsProduction() {
		log.Error("refusing to run the dev verification server with APP_ENV=production")
		os.Exit(1)
	}

	h := devserver.New(devserver.Config{
		Store: devserver.StoreConfig{
			CodeTTL:           cfg.DevCodeTTL,
			MaxVerifyAttempts: cfg.DevMaxVerifyAttempts,
			MaxSends:          cfg.DevMaxSends,
			SendWindow:        cfg.DevSendWindow,
			HashCost:          bcrypt.DefaultCost,
		},
		SigningKey:  cfg.DevSigningKey,
		TokenTTL:    cfg.DevTokenTTL,
		FixedCode:   cfg.DevFixedCode,
		Environment: cfg.Env,
	},
		devserver.WithLogger(log),
		devserver.WithMetrics(metrics.New(prometheus.DefaultRegisterer)),
	)

	api := &http.Server{
		Addr:              cfg.DevServerAddr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:              cfg.DevMetricsAddr,
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range []*http.Server{api, metricsSrv} {
		g.Go(func() error {
			log.Info("starting http server", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down servers gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return errors.Join(api.Shutdown(shutdownCtx), metricsSrv.Shutdown(shutdownCtx))
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
