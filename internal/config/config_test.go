package config

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	var cfg Config
	require.NoError(t, env.Parse(&cfg))

	assert.Equal(t, "development", cfg.Environment.Name)
	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Auth.JWTTTL)
	assert.Equal(t, time.Hour, cfg.Loyalty.ExpirySweepInterval)
	assert.Equal(t, "sandbox", cfg.BrainTree.Environment)
	assert.False(t, cfg.BrainTree.Enabled())
}

func TestOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_URL", "postgres://pos@localhost/pos")
	t.Setenv("AUTH_JWT_TTL", "30m")
	t.Setenv("LOYALTY_EXPIRY_SWEEP_INTERVAL", "0s")
	t.Setenv("BRAINTREE_MERCHANT_ID", "m")
	t.Setenv("BRAINTREE_PUBLIC_KEY", "pub")
	t.Setenv("BRAINTREE_PRIVATE_KEY", "priv")

	var cfg Config
	require.NoError(t, env.Parse(&cfg))

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://pos@localhost/pos", cfg.Database.URL)
	assert.Equal(t, 30*time.Minute, cfg.Auth.JWTTTL)
	assert.Equal(t, time.Duration(0), cfg.Loyalty.ExpirySweepInterval)
	assert.True(t, cfg.BrainTree.Enabled())
}
