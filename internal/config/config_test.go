package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FUNGYICHEN/AGG/internal/probe"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"AGG_FORMAT", "AGG_ENV", "NODE_ENV", "AGG_QUIET", "AGG_VERBOSE",
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "AGG_LAUNCH_KEY", "ACCOUNT_PREFIX",
	} {
		t.Setenv(k, "")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NotNil(t, cfg)
	assert.Equal(t, "text", cfg.Format)
	assert.Empty(t, cfg.Env)
	assert.False(t, cfg.Quiet)
	assert.Equal(t, 5, cfg.Report.WidespreadAgents)
	assert.Equal(t, 5, cfg.Report.Itemize)
	assert.True(t, cfg.Report.BrandPrefix)
	assert.Equal(t, 4000, cfg.Report.MaxLength)
	assert.Equal(t, "1s", cfg.Telegram.SendInterval)
	assert.Equal(t, 2, cfg.Probe.Retries)
	assert.Equal(t, "300ms", cfg.Probe.RetryDelay)
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	t.Run("returns defaults when no config file exists", func(t *testing.T) {
		clearEnv(t)
		tmpDir := t.TempDir()
		origDir, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir(tmpDir))
		t.Cleanup(func() {
			require.NoError(t, os.Chdir(origDir))
		})
		t.Setenv("HOME", tmpDir)
		t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

		cfg, err := Load()
		require.NoError(t, err)
		require.NotNil(t, cfg)
		assert.Equal(t, "text", cfg.Format)
	})

	t.Run("loads config from current directory", func(t *testing.T) {
		clearEnv(t)
		tmpDir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".aggreport.yaml"), []byte("format: table\n"), 0644))
		origDir, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir(tmpDir))
		t.Cleanup(func() {
			require.NoError(t, os.Chdir(origDir))
		})

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "table", cfg.Format)
		assert.Equal(t, filepath.Join(tmpDir, ".aggreport.yaml"), ConfigFile())
	})
}

func TestLoadFromFile(t *testing.T) {
	t.Run("loads all sections", func(t *testing.T) {
		clearEnv(t)
		configContent := `
format: ndjson
env: prod
report:
  widespread_agents: 3
  itemize: 10
  brand_prefix: false
  max_length: 1000
telegram:
  chat_id: -100123
  send_interval: 2s
  parse_mode: HTML
launch:
  endpoint: https://op.example.com/login
  account_prefix: QAtest_
  platform: 1
probe:
  retries: 1
  parallel: 2
  suites:
    - brand: Rectangle
      agents: [10171, 11171]
      game_ids: [90001, 90002]
      expected_prefix: https://g.example.com
      check: path
      expected:
        90001: swaggy-caramelo
`
		path := filepath.Join(t.TempDir(), "aggreport.yaml")
		require.NoError(t, os.WriteFile(path, []byte(configContent), 0644))

		cfg, err := LoadFromFile(path)
		require.NoError(t, err)

		assert.Equal(t, "ndjson", cfg.Format)
		assert.Equal(t, "prod", cfg.Env)
		assert.Equal(t, 3, cfg.Report.WidespreadAgents)
		assert.Equal(t, 10, cfg.Report.Itemize)
		assert.False(t, cfg.Report.BrandPrefix)
		assert.Equal(t, 1000, cfg.Report.MaxLength)
		assert.Equal(t, int64(-100123), cfg.Telegram.ChatID)
		assert.Equal(t, "2s", cfg.Telegram.SendInterval)
		assert.Equal(t, "HTML", cfg.Telegram.ParseMode)
		assert.Equal(t, "https://op.example.com/login", cfg.Launch.Endpoint)
		assert.Equal(t, 1, cfg.Launch.Platform)
		// defaults survive for keys the file does not set
		assert.Equal(t, "zh_cn", cfg.Launch.Language)
		assert.Equal(t, 1, cfg.Probe.Retries)

		require.Len(t, cfg.Probe.Suites, 1)
		suite := cfg.Probe.Suites[0]
		assert.Equal(t, "Rectangle", suite.Brand)
		assert.Equal(t, []int{10171, 11171}, suite.Agents)
		assert.Equal(t, []int{90001, 90002}, suite.GameIDs)
		assert.Equal(t, "path", suite.Check)
		assert.Equal(t, "swaggy-caramelo", suite.Expected[90001])
		assert.NoError(t, cfg.Validate())
	})

	t.Run("returns error for non-existent file", func(t *testing.T) {
		_, err := LoadFromFile("/nonexistent/path/config.yaml")
		assert.Error(t, err)
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("invalid: yaml: content:"), 0644))

		_, err := LoadFromFile(path)
		assert.Error(t, err)
	})
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("AGG_FORMAT", "table")
	t.Setenv("NODE_ENV", "PROD")
	t.Setenv("AGG_VERBOSE", "1")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "-42")
	t.Setenv("AGG_LAUNCH_KEY", "secret")

	cfg := Default()
	applyEnvOverrides(cfg)

	assert.Equal(t, "table", cfg.Format)
	assert.Equal(t, "PROD", cfg.Env)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, int64(-42), cfg.Telegram.ChatID)
	assert.Equal(t, "secret", cfg.Launch.Key)

	t.Setenv("AGG_ENV", "stg")
	applyEnvOverrides(cfg)
	assert.Equal(t, "stg", cfg.Env)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"format", func(c *Config) { c.Format = "xml" }},
		{"widespread", func(c *Config) { c.Report.WidespreadAgents = 0 }},
		{"itemize", func(c *Config) { c.Report.Itemize = 0 }},
		{"max length", func(c *Config) { c.Report.MaxLength = 0 }},
		{"interval", func(c *Config) { c.Telegram.SendInterval = "soon" }},
		{"negative delay", func(c *Config) { c.Probe.RetryDelay = "-1s" }},
		{"retries", func(c *Config) { c.Probe.Retries = -1 }},
		{"suite", func(c *Config) { c.Probe.Suites = []probe.Suite{{Brand: "X"}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestParseDuration(t *testing.T) {
	d, err := ParseDuration("")
	require.NoError(t, err)
	assert.Zero(t, d)

	d, err = ParseDuration("1500ms")
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, d)
}

func TestResolveEnv(t *testing.T) {
	tests := []struct {
		name       string
		explicit   string
		path       string
		configured string
		want       string
	}{
		{"explicit wins", "Prod", "reports/(STG)/r.json", "stg", "prod"},
		{"path segment", "", "reports/(PROD)/results.json", "stg", "prod"},
		{"configured", "", "reports/results.json", "UAT", "uat"},
		{"default", "", "results.json", "", "stg"},
		{"empty parens ignored", "", "reports/()/r.json", "", "stg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveEnv(tt.explicit, tt.path, tt.configured))
		})
	}
}
