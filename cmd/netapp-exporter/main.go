package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/janskibh/netapp-exporter/internal/api"
	"github.com/janskibh/netapp-exporter/internal/config"
	"github.com/janskibh/netapp-exporter/internal/logging"
	"github.com/janskibh/netapp-exporter/internal/metrics"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "path", *configPath, "err", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.Log)
	slog.SetDefault(logger)

	slog.Info("netapp-exporter starting",
		"config", *configPath,
		"listen_address", cfg.ListenAddress,
		"metrics_path", cfg.MetricsPath,
		"namespace", cfg.Namespace,
		"allow_query_credentials", cfg.Scrape.AllowQueryCredentials,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sink := metrics.NewSink(cfg.Namespace)
	handler, err := api.New(cfg, sink, logger)
	if err != nil {
		slog.Error("failed to build HTTP handler", "err", err)
		os.Exit(1)
	}

	if *configPath != "" {
		go func() {
			if err := config.Watch(ctx, *configPath, handler.Reload); err != nil {
				slog.Error("config watcher stopped", "err", err)
			}
		}()
	}

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("HTTP server listening", "addr", cfg.ListenAddress)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("netapp-exporter shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 15*time.Second)
	defer stop()
	httpSrv.Shutdown(shutdownCtx) //nolint:errcheck
}
