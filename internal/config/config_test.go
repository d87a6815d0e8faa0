package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("EASYDICT_PROVIDERS", "youdao,google")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "auto", cfg.DefaultSource)
	assert.Equal(t, "zh-Hans", cfg.DefaultTarget)
	assert.Equal(t, "en", cfg.FallbackSource)
	assert.Equal(t, 6*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, 1500*time.Millisecond, cfg.DetectDeadline)
	assert.InDelta(t, 0.8, cfg.ConfidenceThreshold, 1e-9)
	assert.Equal(t, []string{"youdao", "google"}, cfg.ProviderList())
	assert.Equal(t, []string{"script", "lingua", "whatlang", "baidu", "google"}, cfg.DetectorList())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() Config {
		return Config{
			DefaultTarget:       "zh-Hans",
			FallbackSource:      "en",
			Providers:           "google",
			ProviderTimeout:     time.Second,
			DetectDeadline:      time.Second,
			ConfidenceThreshold: 0.8,
			RatePerSecond:       5,
			RateBurst:           1,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "auto target", mutate: func(c *Config) { c.DefaultTarget = "AUTO" }, wantErr: "cannot be auto"},
		{name: "auto fallback", mutate: func(c *Config) { c.FallbackSource = "auto" }, wantErr: "EASYDICT_FALLBACK_SOURCE"},
		{name: "no providers", mutate: func(c *Config) { c.Providers = " , " }, wantErr: "EASYDICT_PROVIDERS"},
		{name: "zero timeout", mutate: func(c *Config) { c.ProviderTimeout = 0 }, wantErr: "EASYDICT_PROVIDER_TIMEOUT"},
		{name: "threshold above one", mutate: func(c *Config) { c.ConfidenceThreshold = 1.2 }, wantErr: "EASYDICT_CONFIDENCE_THRESHOLD"},
		{name: "zero burst", mutate: func(c *Config) { c.RateBurst = 0 }, wantErr: "EASYDICT_RATE_BURST"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
