package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopmate/payment-gateway/internal/api"
	"github.com/shopmate/payment-gateway/internal/config"
	"github.com/shopmate/payment-gateway/internal/logger"
	"github.com/shopmate/payment-gateway/internal/metrics"
	"github.com/shopmate/payment-gateway/internal/outcome"
	"github.com/shopmate/payment-gateway/internal/phonepe"
	"github.com/shopmate/payment-gateway/internal/services"
	"github.com/shopmate/payment-gateway/internal/worker"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gw, err := phonepe.New(cfg, nil)
	if err != nil {
		log.Error("gateway config", "err", err)
		os.Exit(1)
	}

	var store outcome.Store
	if cfg.RedisAddr != "" {
		store = outcome.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		log.Info("outcome store", "kind", "redis", "addr", cfg.RedisAddr)
	} else {
		store = outcome.NewMemoryStore()
		log.Info("outcome store", "kind", "memory")
	}

	wp := worker.NewPool(4)
	defer wp.Stop()

	ps := services.NewPaymentService(gw, store, wp)

	metrics.Init()
	r := api.NewRouter(cfg, ps)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "gateway_env", cfg.GatewayEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
