package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "calc_session", cfg.Session.CookieName)
	assert.Equal(t, "/", cfg.UI.HomeURL)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTimeout)
}

func TestLoad_FromFile(t *testing.T) {
	t.Setenv("CALC_TEST_HOME", "https://example.test/home")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  addr: ":9090"
  shutdown_timeout: 10s
log:
  level: debug
  otlp: true
telemetry:
  tracing: false
session:
  idle_timeout: 5m
ui:
  home_url: ${CALC_TEST_HOME}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.True(t, cfg.Log.OTLP)
	assert.False(t, cfg.Telemetry.Tracing)
	assert.True(t, cfg.Telemetry.Metrics, "unset keys keep their defaults")
	assert.Equal(t, 5*time.Minute, cfg.Session.IdleTimeout)
	assert.Equal(t, "https://example.test/home", cfg.UI.HomeURL)

	lvl, err := cfg.ZapLevel()
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, lvl)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":9090\"\n"), 0o644))

	t.Setenv("CALC_ADDR", ":7070")
	t.Setenv("OTEL_SERVICE_NAME", "calc-test")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "calc-test", cfg.Service.Name)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "parse config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "bad level", mutate: func(c *Config) { c.Log.Level = "loud" }, want: "log.level"},
		{name: "empty addr", mutate: func(c *Config) { c.Server.Addr = " " }, want: "server.addr"},
		{name: "zero idle", mutate: func(c *Config) { c.Session.IdleTimeout = 0 }, want: "session.idle_timeout"},
		{name: "zero sweep", mutate: func(c *Config) { c.Session.SweepInterval = -time.Second }, want: "session.sweep_interval"},
		{name: "no cookie", mutate: func(c *Config) { c.Session.CookieName = "" }, want: "session.cookie_name"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tc.want)
		})
	}

	assert.NoError(t, DefaultConfig().Validate())
}
