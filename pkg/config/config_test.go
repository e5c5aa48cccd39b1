package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("operator credentials from environment", func(t *testing.T) {
		t.Setenv("HEDERA_OPERATOR_ID", "0.0.6808286")
		t.Setenv("HEDERA_OPERATOR_PRIVATE_KEY", "302e020100300506032b657004220420deadbeef")
		t.Setenv("PORT", "4000")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "0.0.6808286", cfg.Hedera.OperatorID)
		assert.Equal(t, "testnet", cfg.Hedera.Network)
		assert.Equal(t, 4000, cfg.Server.Port)
		assert.Equal(t, "https://testnet.mirrornode.hedera.com", cfg.Mirror.BaseURL)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, "/metrics", cfg.Monitoring.MetricsPath)
	})

	t.Run("missing operator id", func(t *testing.T) {
		t.Setenv("HEDERA_OPERATOR_ID", "")
		t.Setenv("HEDERA_OPERATOR_PRIVATE_KEY", "key")

		_, err := Load()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "HEDERA_OPERATOR_ID")
	})

	t.Run("network selects mirror host", func(t *testing.T) {
		t.Setenv("HEDERA_OPERATOR_ID", "0.0.2")
		t.Setenv("HEDERA_OPERATOR_PRIVATE_KEY", "key")
		t.Setenv("HEDERA_NETWORK", "mainnet")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "https://mainnet-public.mirrornode.hedera.com", cfg.Mirror.BaseURL)
	})

	t.Run("explicit mirror url wins", func(t *testing.T) {
		t.Setenv("HEDERA_OPERATOR_ID", "0.0.2")
		t.Setenv("HEDERA_OPERATOR_PRIVATE_KEY", "key")
		t.Setenv("MIRROR_NODE_URL", "http://localhost:5551")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:5551", cfg.Mirror.BaseURL)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Port: 3001},
			Hedera: HederaConfig{
				Network:            "testnet",
				OperatorID:         "0.0.2",
				OperatorPrivateKey: "key",
			},
			Mirror:  MirrorConfig{Timeout: 10},
			Tracing: TracingConfig{SamplingRate: 1},
		}
	}

	assert.NoError(t, validate(valid()))

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"missing key", func(c *Config) { c.Hedera.OperatorPrivateKey = "" }},
		{"unknown network", func(c *Config) { c.Hedera.Network = "devnet" }},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
		{"zero mirror timeout", func(c *Config) { c.Mirror.Timeout = 0 }},
		{"sampling above one", func(c *Config) { c.Tracing.SamplingRate = 1.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, validate(cfg))
		})
	}
}

func TestServerAddr(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 3001}
	assert.Equal(t, "127.0.0.1:3001", s.Addr())
}
