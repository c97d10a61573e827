package main

import (
	"context"
	"log"
	"time"

	"marketplace-api/cmd"
	"marketplace-api/internal/data/repository"
	"marketplace-api/internal/wire"
	"marketplace-api/pkg/database"
	"marketplace-api/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Name, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using production logger.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := database.InitDB(ctx, config.Database)
	if err != nil {
		cancel()
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	if config.Database.AutoMigrate {
		if err := database.Migrate(ctx, db.StdDB(), logger); err != nil {
			cancel()
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}
	cancel()

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Wire all dependencies
	app, err := wire.Wiring(repos, config, logger)
	if err != nil {
		logger.Fatal("Failed to wire application", zap.Error(err))
	}
	defer app.Close()

	if err := app.Scheduler.Start(); err != nil {
		logger.Fatal("Failed to start cleanup scheduler", zap.Error(err))
	}

	// Start server, blocks until SIGINT/SIGTERM
	if err := cmd.APIServer(app.Router, config.App.Port, config.App.ShutdownTimeout, logger); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
	}
}
