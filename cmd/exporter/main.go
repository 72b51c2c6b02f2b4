package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/obsidianstack/tgwebhooks-exporter/internal/api"
	"github.com/obsidianstack/tgwebhooks-exporter/internal/collector"
	"github.com/obsidianstack/tgwebhooks-exporter/internal/config"
	"github.com/obsidianstack/tgwebhooks-exporter/internal/registry"
	"github.com/obsidianstack/tgwebhooks-exporter/internal/scraper"
)

func main() {
	configPath := flag.String("config", "", "path to an optional settings file")
	listen := flag.String("listen", "", "listen address, overrides listen_addr")
	flag.Parse()

	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	if *listen != "" {
		cfg.ListenAddr = *listen
	}
	lvl, _ := config.ParseLevel(cfg.LogLevel)
	level.Set(lvl)

	bots, err := registry.FromEnv(cfg.TokensEnv)
	if err != nil {
		slog.Error("invalid or no tokens given, exiting", "env", cfg.TokensEnv, "err", err)
		os.Exit(1)
	}

	slog.Info("tgwebhooks-exporter starting",
		"listen_addr", cfg.ListenAddr,
		"metrics_path", cfg.MetricsPath,
		"bots", bots.Len(),
		"request_timeout", cfg.RequestTimeout,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collector.New(bots, scraper.New(cfg.FetcherOptions()), logger))
	if cfg.RuntimeMetrics {
		promReg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	// Only the log level follows the settings file; bots and listener are fixed at start.
	if *configPath != "" {
		go func() {
			if err := config.Watch(ctx, *configPath, func(updated *config.Config) {
				if l, err := config.ParseLevel(updated.LogLevel); err == nil {
					level.Set(l)
				}
				slog.Info("config hot-reloaded", "log_level", updated.LogLevel)
			}); err != nil {
				slog.Error("config watcher stopped", "err", err)
			}
		}()
	}

	httpSrv := &http.Server{
		Addr: cfg.ListenAddr,
		Handler: api.New(api.Options{
			Gatherer:    promReg,
			MetricsPath: cfg.MetricsPath,
			BotNames:    bots.Names(),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	lis, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		slog.Error("failed to listen", "addr", cfg.ListenAddr, "err", err)
		os.Exit(1)
	}
	go func() {
		slog.Info("HTTP server listening", "addr", lis.Addr().String())
		if err := httpSrv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("tgwebhooks-exporter shutting down")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	httpSrv.Shutdown(shutdownCtx) //nolint:errcheck
}
