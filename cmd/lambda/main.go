package main

import (
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/shopmate/payment-gateway/internal/config"
	"github.com/shopmate/payment-gateway/internal/lambdafn"
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

	gw, err := phonepe.New(cfg, nil)
	if err != nil {
		log.Error("gateway config", "err", err)
		os.Exit(1)
	}

	// Lambda instances are ephemeral, so the shared view has to live in
	// redis; memory is only a fallback for local invocation.
	var store outcome.Store
	if cfg.RedisAddr != "" {
		store = outcome.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	} else {
		log.Warn("REDIS_ADDR not set; outcome state will not survive the invocation")
		store = outcome.NewMemoryStore()
	}

	wp := worker.NewPool(2)
	defer wp.Stop()

	metrics.Init()
	h := lambdafn.New(services.NewPaymentService(gw, store, wp))

	lambda.Start(h.Handle)
}
