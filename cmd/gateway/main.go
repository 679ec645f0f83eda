package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/carecircle/carecircle-api/internal/config"
	"github.com/carecircle/carecircle-api/internal/gateway"
	"github.com/carecircle/carecircle-api/internal/logging"
)

func main() {
	godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg)

	g, err := gateway.New(cfg.UpstreamURL, logger)
	if err != nil {
		log.Fatalf("Invalid upstream URL: %v", err)
	}

	port := cfg.Port
	if port == "4000" {
		// The gateway fronts the API; never bind the same default port.
		port = "3000"
	}

	logger.WithFields(logrus.Fields{
		"port":     port,
		"upstream": cfg.UpstreamURL,
	}).Info("gateway starting")
	if err := g.Router(cfg.GinMode).Run(":" + port); err != nil {
		log.Fatalf("Failed to start gateway: %v", err)
	}
}
