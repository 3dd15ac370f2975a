package main

import (
	"context"
	"os"

	"github.com/arnavshah/crew-planner-api/pkg/app"
	"github.com/arnavshah/crew-planner-api/pkg/config"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	config.LoadDotEnv()
	cfg := config.Load()

	if cfg.GinMode == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	r, log, err := app.Build(context.Background(), cfg)
	if err != nil {
		if log != nil {
			log.Fatal("could not start", zap.Error(err))
		}
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("server starting", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("could not run server", zap.Error(err))
	}
}
