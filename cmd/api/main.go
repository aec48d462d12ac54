package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/chainpass/chainpass-api/internal/config"
	"github.com/chainpass/chainpass-api/internal/logger"
	"github.com/chainpass/chainpass-api/internal/server"
)

func main() {
	// Load environment variables from .env file if present
	envLoadErr := godotenv.Load()

	logger.InitLogger(os.Getenv("STAGE"))
	defer logger.Sync()

	if envLoadErr != nil {
		// Not fatal: deployed environments configure via real env vars.
		logger.Warn("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	server.InitializeHandlers(cfg)
	defer server.Shutdown()

	router := gin.Default()
	server.InitializeRoutes(router)

	logger.Info("Starting chainpass API server", zap.String("port", cfg.Port), zap.String("stage", cfg.Stage))
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}
