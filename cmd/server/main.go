package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/carecircle/carecircle-api/internal/clock"
	"github.com/carecircle/carecircle-api/internal/config"
	"github.com/carecircle/carecircle-api/internal/database"
	"github.com/carecircle/carecircle-api/internal/enforcer"
	"github.com/carecircle/carecircle-api/internal/handlers"
	"github.com/carecircle/carecircle-api/internal/logging"
	"github.com/carecircle/carecircle-api/internal/mailer"
	"github.com/carecircle/carecircle-api/internal/models"
	"github.com/carecircle/carecircle-api/internal/plan"
	"github.com/carecircle/carecircle-api/internal/presence"
	"github.com/carecircle/carecircle-api/internal/store"
)

func main() {
	godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	clk := clock.RealClock{}
	tasks := store.NewTaskStore(db, clk)
	users := store.NewUserStore(db)

	var roster []models.User
	for _, entry := range cfg.ParseSeedUsers() {
		role := models.Role(entry.Role)
		if !role.Valid() {
			logger.WithField("user", entry.ID).Warn("skipping seed user with unknown role")
			continue
		}
		roster = append(roster, models.User{ID: entry.ID, Name: entry.Name, Role: role})
	}
	if err := users.Seed(roster); err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}

	tracker := presence.NewTracker(clk, presence.DefaultOnlineWindow)
	mail := mailer.New(cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.AutoEnforce {
		sweeper := enforcer.NewSweeper(tasks, mail, clk,
			time.Duration(cfg.SweepIntervalSec)*time.Second, logger)
		go sweeper.Run(ctx)
	}

	router := handlers.NewRouter(handlers.RouterDeps{
		Tasks:    tasks,
		Users:    users,
		Tracker:  tracker,
		Clock:    clk,
		Plan:     plan.Normalize(cfg.Plan),
		Log:      logger,
		GinMode:  cfg.GinMode,
		UseRecov: true,
	})

	logger.WithField("port", cfg.Port).Info("server starting")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
