package handler

import (
	"context"
	"net/http"

	"github.com/arnavshah/crew-planner-api/pkg/app"
	"github.com/arnavshah/crew-planner-api/pkg/config"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var (
	r        http.Handler
	startErr error
)

func init() {
	// Local testing with vercel dev
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	gin.SetMode(gin.ReleaseMode)
	r, _, startErr = app.Build(context.Background(), config.Load())
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, req *http.Request) {
	if startErr != nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	r.ServeHTTP(w, req)
}
