package app

import (
	"context"

	"github.com/arnavshah/crew-planner-api/pkg/auth"
	"github.com/arnavshah/crew-planner-api/pkg/config"
	"github.com/arnavshah/crew-planner-api/pkg/database"
	"github.com/arnavshah/crew-planner-api/pkg/handlers"
	"github.com/arnavshah/crew-planner-api/pkg/logger"
	"github.com/arnavshah/crew-planner-api/pkg/provider"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Build wires config, logging, storage, auth and the assignment strategies
// into a ready gin engine. The returned logger is valid even when err is not nil.
func Build(ctx context.Context, cfg *config.Config) (*gin.Engine, *zap.Logger, error) {
	log := logger.Must(cfg.LogLevel, cfg.LogFormat, "crew-planner")

	auth.SetSecrets(cfg.JWTSecret, cfg.APIMasterSecret)
	if cfg.JWTSecret == "" || cfg.APIMasterSecret == "" {
		log.Warn("JWT_SECRET or API_MASTER_SECRET is empty; admin and API routes will reject every request")
	}

	db, err := database.Open(cfg.DatabaseURL, cfg.DataPath)
	if err != nil {
		return nil, log, err
	}
	if err := auth.EnsureAdminExists(db, cfg.AdminUsername, cfg.AdminPassword, log); err != nil {
		log.Warn("could not ensure admin user", zap.Error(err))
	}

	var primary provider.Strategy
	if cfg.GenAIAPIKey != "" {
		g, err := provider.NewGenAIStrategy(ctx, cfg.GenAIAPIKey, cfg.GenAIModel)
		if err != nil {
			log.Warn("GenAI strategy disabled", zap.Error(err))
		} else {
			primary = g
			log.Info("GenAI strategy enabled", zap.Duration("timeout", cfg.ProviderTimeout))
		}
	}

	h := &handlers.Handler{
		DB:       db,
		Assigner: provider.NewAssigner(primary, cfg.ProviderTimeout, log),
		Logger:   log,
	}
	return handlers.NewRouter(h), log, nil
}
