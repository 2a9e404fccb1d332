package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir()) // без config.yaml рядом

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 8082, cfg.Port)
	assert.Equal(t, []string{"*"}, cfg.AllowOrigins)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 256, cfg.MaxUploadMB)
	assert.Equal(t, "sqlite", cfg.Store)
	assert.Equal(t, 80, cfg.FuzzyThreshold)
	assert.Equal(t, 4, cfg.BatchWorkers)
	assert.Equal(t, time.Duration(0), cfg.FuzzyBudget)
	assert.Equal(t, 20.0, cfg.RateLimitRPS)
	assert.Equal(t, 40, cfg.RateLimitBurst)
	assert.Equal(t, "127.0.0.1:8082", cfg.Addr())
	assert.Equal(t, int64(256<<20), cfg.MaxUploadBytes())
}

func TestLoadEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9000")
	t.Setenv("ALLOW_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("STORE", "Memory")
	t.Setenv("FUZZY_THRESHOLD", "90")
	t.Setenv("BATCH_WORKERS", "8")
	t.Setenv("FUZZY_BUDGET", "250ms")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowOrigins)
	assert.Equal(t, "memory", cfg.Store)
	assert.Equal(t, 90, cfg.FuzzyThreshold)
	assert.Equal(t, 8, cfg.BatchWorkers)
	assert.Equal(t, 250*time.Millisecond, cfg.FuzzyBudget)
}

func TestLoadInvalid(t *testing.T) {
	cases := map[string][2]string{
		"threshold too high": {"FUZZY_THRESHOLD", "101"},
		"negative threshold": {"FUZZY_THRESHOLD", "-1"},
		"no workers":         {"BATCH_WORKERS", "0"},
		"bad store":          {"STORE", "redis"},
		"bad port":           {"PORT", "70000"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			assert.ErrorContains(t, err, "invalid configuration")
		})
	}
}

func TestSplitOrigins(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitOrigins([]string{"a, b,,", "c"}))
	assert.Empty(t, splitOrigins(nil))
}
