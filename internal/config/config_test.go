package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "postgres", cfg.StoreBackend)
	assert.Equal(t, "SOCIETE X", cfg.StoreName)
	assert.Equal(t, "DH", cfg.Currency)
	assert.Equal(t, 2*time.Hour, cfg.SessionIdleTimeout())
	assert.Equal(t, 10*time.Second, cfg.PrinterTimeoutDuration())
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("CORS_ORIGINS", "http://till.local,http://back-office.local")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "memory", cfg.StoreBackend)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, time.UTC, cfg.Location())
	assert.Equal(t, []string{"http://till.local", "http://back-office.local"}, cfg.CORSOrigins)
}

func TestLocation_InvalidFallsBackToLocal(t *testing.T) {
	cfg := &Config{Timezone: "Nowhere/Atlantis"}
	assert.Equal(t, time.Local, cfg.Location())
}
