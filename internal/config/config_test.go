package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestFromViperRequiresJWTSecret(t *testing.T) {
	v := viper.New()

	_, err := fromViper(v)
	require.Error(t, err)
}

func TestFromViperAppliesFallbacks(t *testing.T) {
	v := viper.New()
	v.Set("jwt.secret", "secret")
	v.Set("app.port", ":9000")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	require.Equal(t, 5*time.Minute, cfg.CacheTTL)
	require.Equal(t, 30*time.Second, cfg.NotificationKeepAlive)
	require.Equal(t, 5, cfg.UploadMaxMB)
	require.Equal(t, 10, cfg.SubmitRateLimit)
	require.Equal(t, ":9000", cfg.HTTPAddress())
	require.Equal(t, 30*time.Minute, cfg.DatabaseConnLifetime)
	require.Equal(t, 500*time.Millisecond, cfg.SlowRequestThreshold)
}

func TestFromViperReadsPoolSettings(t *testing.T) {
	v := viper.New()
	v.Set("jwt.secret", "secret")
	v.Set("database.max_open_conns", 40)
	v.Set("database.max_idle_conns", 8)
	v.Set("database.conn_lifetime", "10m")
	v.Set("http.slow_request", "2s")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	require.Equal(t, 40, cfg.DatabaseMaxOpenConns)
	require.Equal(t, 8, cfg.DatabaseMaxIdleConns)
	require.Equal(t, 10*time.Minute, cfg.DatabaseConnLifetime)
	require.Equal(t, 2*time.Second, cfg.SlowRequestThreshold)

	v.Set("database.conn_lifetime", "forever")
	_, err = fromViper(v)
	require.ErrorContains(t, err, "invalid database connection lifetime")
}

func TestFromViperRejectsInvalidDuration(t *testing.T) {
	v := viper.New()
	v.Set("jwt.secret", "secret")
	v.Set("cache.ttl", "five minutes")

	_, err := fromViper(v)
	require.ErrorContains(t, err, "invalid cache ttl")
}

func TestHTTPAddressAddsColon(t *testing.T) {
	require.Equal(t, ":8080", Config{AppPort: "8080"}.HTTPAddress())
}
