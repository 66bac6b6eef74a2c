package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	v.Set("AUTH_PASSWORD", "secret")
	v.Set("DATA_DIR", "/var/lib/medstock")

	cfg, err := load(v)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "127.0.0.1:8080", cfg.HTTP.Addr())
	assert.Equal(t, filepath.Join("/var/lib/medstock", "inventory.db"), cfg.Store.Path())
	assert.Equal(t, "admin", cfg.Auth.Username)
	assert.Equal(t, time.Hour, cfg.Auth.IdleTimeout)
	assert.True(t, cfg.Sales.RejectOversell)
	assert.Equal(t, time.Hour, cfg.Expiry.CheckInterval)
}

func TestLoad_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("AUTH_PASSWORD_HASH", "$2a$10$abcdefghijklmnopqrstuv")
	v.Set("DATA_DIR", "/tmp/ms")
	v.Set("HTTP_PORT", "9090")
	v.Set("AUTH_IDLE_TIMEOUT_MINUTES", "15")
	v.Set("SALES_REJECT_OVERSELL", "false")
	v.Set("EXPIRY_CHECK_INTERVAL_MINUTES", "0")
	v.Set("CORS_ORIGINS", "http://a.test, http://b.test,")

	cfg, err := load(v)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 15*time.Minute, cfg.Auth.IdleTimeout)
	assert.False(t, cfg.Sales.RejectOversell)
	assert.Equal(t, time.Duration(0), cfg.Expiry.CheckInterval)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.HTTP.CORSOrigins)
}

func TestLoad_RequiresPassword(t *testing.T) {
	v := viper.New()
	v.Set("DATA_DIR", "/tmp/ms")

	_, err := load(v)
	assert.Error(t, err)
}
