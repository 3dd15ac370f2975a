package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arnavshah/crew-planner-api/pkg/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		DataPath:        filepath.Join(t.TempDir(), "app.db"),
		JWTSecret:       "jwt",
		APIMasterSecret: "master",
		AdminUsername:   "admin",
		AdminPassword:   "admin123",
		LogLevel:        "error",
	}

	r, log, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, log)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Crew Planner API")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	// The configured admin is seeded at startup
	w = httptest.NewRecorder()
	login := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(`{"username":"admin","password":"admin123"}`))
	login.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, login)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
