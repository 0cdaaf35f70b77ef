package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadConfig_Defaults(t *testing.T) {
	cfg, err := readConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, backendFile, cfg.StoreBackend)
	assert.Equal(t, "rectangle-config.json", cfg.StoreFile)
	assert.Equal(t, "0644", cfg.StoreFileMode)
	assert.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 80.0, cfg.DefaultWidth)
	assert.Equal(t, 100.0, cfg.DefaultHeight)
	assert.Equal(t, 10*time.Second, cfg.ValidationDelay)
	assert.False(t, cfg.ValidateEndpoint)
	assert.Equal(t, []string{"*"}, cfg.corsOrigins())
	assert.Equal(t, backendMemory, cfg.StatsBackend)
	require.NoError(t, cfg.validate())
}

func TestReadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("STORE_BACKEND", " Memory ")
	t.Setenv("VALIDATION_DELAY", "250ms")
	t.Setenv("VALIDATE_ENDPOINT", "true")
	t.Setenv("DEFAULT_WIDTH", "100")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, https://app.example.com")

	cfg, err := readConfig()
	require.NoError(t, err)

	assert.Equal(t, backendMemory, cfg.StoreBackend)
	assert.Equal(t, 250*time.Millisecond, cfg.ValidationDelay)
	assert.True(t, cfg.ValidateEndpoint)
	assert.Equal(t, 100.0, cfg.DefaultWidth)
	assert.Equal(t, []string{"http://localhost:3000", "https://app.example.com"}, cfg.corsOrigins())
}

func TestConfigValidate(t *testing.T) {
	base, err := readConfig()
	require.NoError(t, err)

	cases := map[string]func(c *config){
		"unknown store":            func(c *config) { c.StoreBackend = "postgres" },
		"unknown stats":            func(c *config) { c.StatsBackend = "kafka" },
		"redis without addr":       func(c *config) { c.StoreBackend = backendRedis },
		"redis stats without addr": func(c *config) { c.StatsBackend = backendRedis },
		"empty file":               func(c *config) { c.StoreFile = " " },
		"negative delay":           func(c *config) { c.ValidationDelay = -time.Second },
		"write timeout too short":  func(c *config) { c.WriteTimeout = 5 * time.Second },
		"zero rps":                 func(c *config) { c.RateRPS = 0 },
		"zero burst":               func(c *config) { c.RateBurst = 0 },
		"negative pending":         func(c *config) { c.PendingMax = -1 },
		"bad log level":            func(c *config) { c.LogLevel = "loud" },
		"bad log format":           func(c *config) { c.LogFormat = "xml" },
		"bad file mode":            func(c *config) { c.StoreFileMode = "rw-r--r--" },
		"file mode too wide":       func(c *config) { c.StoreFileMode = "1777" },
		"zero shutdown timeout":    func(c *config) { c.ShutdownTimeout = 0 },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base
			mutate(&c)
			assert.Error(t, c.validate())
		})
	}

	t.Run("rate disabled ignores rps", func(t *testing.T) {
		c := base
		c.RateEnabled = false
		c.RateRPS = 0
		assert.NoError(t, c.validate())
	})
	t.Run("redis with addr", func(t *testing.T) {
		c := base
		c.StoreBackend = backendRedis
		c.RedisAddr = "localhost:6379"
		assert.NoError(t, c.validate())
	})
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()

	// ausente e implícito: ignora
	require.NoError(t, loadEnvFile(filepath.Join(dir, ".env"), false))
	// ausente e explícito: erro
	require.Error(t, loadEnvFile(filepath.Join(dir, "missing.env"), true))

	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("RECT_TEST_LISTEN=:9999\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("RECT_TEST_LISTEN") })

	require.NoError(t, loadEnvFile(path, true))
	assert.Equal(t, ":9999", os.Getenv("RECT_TEST_LISTEN"))
}

func TestFlagOverrides(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--addr", ":9090", "--delay", "1s"}))

	fo := flagOverrides{listenAddr: ":9090", delay: time.Second}
	cfg := config{ListenAddr: ":8080", StoreBackend: backendFile, ValidationDelay: 10 * time.Second}
	fo.apply(cmd, &cfg)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, time.Second, cfg.ValidationDelay)
	assert.Equal(t, backendFile, cfg.StoreBackend, "flags not passed must not override")
}
