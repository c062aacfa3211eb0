// @title CogniEdu Backend API
// @version 1.0
// @description Backend server for the citizen cognitive literacy platform.

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"log"

	"cogniedu_backend/internal/app"
	"cogniedu_backend/internal/config"
	"cogniedu_backend/pkg/configwatcher"
	"cogniedu_backend/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	go configwatcher.WatchConfig("configs/config.yaml", cfg, func(newCfg interface{}) {
		if c, ok := newCfg.(*config.Config); ok {
			*cfg = *c
			logger.Log.Info("Configuration reloaded")
		}
	})

	application.Run()
}
