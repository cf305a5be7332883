// Package main wires together the scraper service binary.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/realtime-video-scraper/internal/api"
	"github.com/JakeFAU/realtime-video-scraper/internal/clock/system"
	"github.com/JakeFAU/realtime-video-scraper/internal/config"
	"github.com/JakeFAU/realtime-video-scraper/internal/download"
	"github.com/JakeFAU/realtime-video-scraper/internal/id/uuid"
	"github.com/JakeFAU/realtime-video-scraper/internal/logging"
	"github.com/JakeFAU/realtime-video-scraper/internal/metrics"
	"github.com/JakeFAU/realtime-video-scraper/internal/orchestrator"
	"github.com/JakeFAU/realtime-video-scraper/internal/registry"
	"github.com/JakeFAU/realtime-video-scraper/internal/renderer"
	"github.com/JakeFAU/realtime-video-scraper/internal/scraper"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Init()

	jobs := registry.New(uuid.New())
	clock := system.New()
	renderers := renderer.NewFactory(renderer.Config{
		UserAgent:   cfg.Scraper.UserAgent,
		NavTimeout:  cfg.Scraper.NavTimeout(),
		WaitTimeout: cfg.Scraper.WaitTimeout(),
	}, logger.Named("renderer"))

	var cookie *scraper.Cookie
	if cfg.Scraper.CookieName != "" {
		cookie = &scraper.Cookie{Name: cfg.Scraper.CookieName, Value: cfg.Scraper.CookieValue}
	}
	orch := orchestrator.New(renderers, jobs, clock, orchestrator.Config{
		MaxItems: cfg.Scraper.MaxItems,
		Workers:  cfg.Scraper.Workers,
		Cookie:   cookie,
	}, logger.Named("orchestrator"))

	proxy := download.New(nil, logger.Named("download"))
	apiServer := api.NewServer(jobs, orch, proxy, cfg, logger.Named("api"))

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server started", zap.String("addr", cfg.Server.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
