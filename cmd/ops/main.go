package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/carecircle/carecircle-api/internal/config"
	"github.com/carecircle/carecircle-api/internal/logging"
	"github.com/carecircle/carecircle-api/internal/ops"
)

func main() {
	godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg)

	baseURL := flag.String("url", "http://localhost:"+cfg.Port, "API base URL")
	interval := flag.Duration("interval", 5*time.Second, "polling interval")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.WithField("url", *baseURL).Info("watching household")
	ops.NewWatcher(*baseURL, *interval, logger).Run(ctx)
}
