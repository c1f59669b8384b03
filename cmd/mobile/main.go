// Package main is a terminal rendition of the mobile app: it signs in with an
// emailed code against the verification service, then exposes the main tabs
// and the assistant chat.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"mobileauth/internal/auth/client"
	"mobileauth/internal/auth/flow"
	authmetrics "mobileauth/internal/auth/metrics"
	"mobileauth/internal/auth/state"
	"mobileauth/internal/platform/config"
	"mobileauth/internal/platform/logger"
	"mobileauth/internal/platform/tracer"
)

func main() {
	baseURL := flag.String("base-url", "", "Verification service base URL. Overrides API_BASE_URL.")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}
	if *baseURL != "" {
		cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(*baseURL), "/")
		if err := cfg.Validate(); err != nil {
			fmt.Fprintln(os.Stderr, "invalid -base-url:", err)
			os.Exit(1)
		}
	}
	log := logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	reg := prometheus.NewRegistry()
	authClient := client.New(client.Config{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.RequestTimeout,
	},
		client.WithLogger(log),
		client.WithMetrics(authmetrics.New(reg)),
		client.WithTracer(tracer.NewOTel()),
	)
	machine := state.New()
	app := newApp(flow.New(authClient, machine, flow.WithLogger(log)), machine, os.Stdout)
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	// A second interrupt kills the process.
	context.AfterFunc(ctx, stop)

	log.Info("mobile client started", "api_base_url", cfg.APIBaseURL)
	err = app.Run(ctx, os.Stdin)
	logMetrics(context.Background(), log, reg)
	if err != nil {
		log.Error("session ended with error", "error", err)
		os.Exit(1)
	}
}
