package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATA_PATH", "")
	t.Setenv("PROVIDER_TIMEOUT", "")
	t.Setenv("ADMIN_USERNAME", "")

	cfg := Load()
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "crew_planner.db", cfg.DataPath)
	assert.Equal(t, "admin", cfg.AdminUsername)
	assert.Equal(t, 15*time.Second, cfg.ProviderTimeout)
}

func TestLoad_ProviderTimeout(t *testing.T) {
	t.Setenv("PROVIDER_TIMEOUT", "750ms")
	assert.Equal(t, 750*time.Millisecond, Load().ProviderTimeout)

	t.Setenv("PROVIDER_TIMEOUT", "4")
	assert.Equal(t, 4*time.Second, Load().ProviderTimeout)

	t.Setenv("PROVIDER_TIMEOUT", "soon")
	assert.Equal(t, 15*time.Second, Load().ProviderTimeout)
}
