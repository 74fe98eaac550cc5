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

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "XOF", cfg.Currency)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTTL)
	assert.Equal(t, 100, cfg.DB.MaxOpenConns)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_NAME", "backoffice")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("ACCESS_TOKEN_TTL", "5m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 5*time.Minute, cfg.Auth.AccessTTL)
	assert.Contains(t, cfg.DB.DSN(), "host=db.internal")
	assert.Contains(t, cfg.DB.DSN(), "dbname=backoffice")
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ADMIN_PHONE", "+22500000000")
	t.Setenv("EMPTY_VALUE", "")

	assert.Equal(t, "+22500000000", GetEnv("ADMIN_PHONE", "x"))
	assert.Equal(t, "fallback", GetEnv("EMPTY_VALUE", "fallback"))
	assert.Equal(t, "fallback", GetEnv("MISSING_VALUE", "fallback"))
}
