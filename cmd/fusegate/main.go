package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/fusegate/fusegate/internal/infrastructure/config"
	"github.com/fusegate/fusegate/internal/infrastructure/monitoring"
	"github.com/fusegate/fusegate/internal/infrastructure/server"
	"github.com/fusegate/fusegate/internal/logging"
	"github.com/fusegate/fusegate/internal/resilience"
)

func main() {
	port := flag.String("port", "", "admin server port (overrides PORT)")
	dev := flag.Bool("dev", false, "development logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *dev {
		cfg.Logging.Development = true
	}

	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		logger, err = logging.New(logging.Config{Level: cfg.Logging.Level, OutputPaths: []string{"stdout"}})
		if err != nil {
			log.Fatalf("invalid log configuration: %v", err)
		}
	}
	defer logger.Sync()

	metrics := monitoring.New(prometheus.DefaultRegisterer)
	registry := resilience.NewRegistry(monitoring.Instrument(logger, metrics)...)

	logger.Info("fusegate starting",
		zap.String("addr", server.Addr(cfg.Server.Host, cfg.Server.Port)),
		zap.Int("default_failure_threshold", cfg.Breaker.FailureThreshold),
		zap.Duration("default_call_timeout", cfg.Breaker.CallTimeout),
	)

	srv := server.New(registry, logger, prometheus.DefaultGatherer)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Run(server.Addr(cfg.Server.Host, cfg.Server.Port))
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("shutdown error", zap.Error(err))
		}
	case err := <-errChan:
		if err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}
}
