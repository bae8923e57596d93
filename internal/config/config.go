package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/FUNGYICHEN/AGG/internal/output"
	"github.com/FUNGYICHEN/AGG/internal/probe"
)

// DefaultEnv is used when no flag, input path, config or environment names one
const DefaultEnv = "stg"

// Config holds application configuration
type Config struct {
	// Global settings
	Format  string `mapstructure:"format"`
	Env     string `mapstructure:"env"`
	Quiet   bool   `mapstructure:"quiet"`
	Verbose bool   `mapstructure:"verbose"`

	Report   ReportConfig   `mapstructure:"report"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Launch   LaunchConfig   `mapstructure:"launch"`
	Probe    ProbeConfig    `mapstructure:"probe"`
}

// ReportConfig holds report rendering defaults
type ReportConfig struct {
	WidespreadAgents int  `mapstructure:"widespread_agents"`
	Itemize          int  `mapstructure:"itemize"`
	BrandPrefix      bool `mapstructure:"brand_prefix"`
	MaxLength        int  `mapstructure:"max_length"`

	// Marker overrides; empty keeps the built-in markers
	SuccessMarkers []string `mapstructure:"success_markers"`
	FailureMarkers []string `mapstructure:"failure_markers"`
}

// TelegramConfig holds the notification channel settings
type TelegramConfig struct {
	Token        string `mapstructure:"token"`
	ChatID       int64  `mapstructure:"chat_id"`
	SendInterval string `mapstructure:"send_interval"`
	ParseMode    string `mapstructure:"parse_mode"`
	Timeout      string `mapstructure:"timeout"`
	// Endpoint overrides the Bot API URL format, e.g. for a local Bot API server
	Endpoint string `mapstructure:"endpoint"`
}

// LaunchConfig describes the launch API used by probe
type LaunchConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	DepositEndpoint string `mapstructure:"deposit_endpoint"`
	Key             string `mapstructure:"key"`
	AccountPrefix   string `mapstructure:"account_prefix"`
	IP              string `mapstructure:"ip"`
	AppURL          string `mapstructure:"app_url"`
	ExitURL         string `mapstructure:"exit_url"`
	Language        string `mapstructure:"language"`
	Platform        int    `mapstructure:"platform"`
	Direct          bool   `mapstructure:"direct"`
	Timestamp       string `mapstructure:"timestamp"`
	Timeout         string `mapstructure:"timeout"`
}

// ProbeConfig holds probe defaults and suites
type ProbeConfig struct {
	Retries    int           `mapstructure:"retries"`
	RetryDelay string        `mapstructure:"retry_delay"`
	Interval   string        `mapstructure:"interval"`
	Parallel   int           `mapstructure:"parallel"`
	Suites     []probe.Suite `mapstructure:"suites"`
}

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		Format: "text",
		Report: ReportConfig{
			WidespreadAgents: output.DefaultWidespreadAgentThreshold,
			Itemize:          output.DefaultItemizeThreshold,
			BrandPrefix:      true,
			MaxLength:        output.DefaultMaxChunkLength,
		},
		Telegram: TelegramConfig{
			SendInterval: "1s",
			Timeout:      "30s",
		},
		Launch: LaunchConfig{
			IP:       "100.1.2.3",
			ExitURL:  "https://google.com",
			Language: "zh_cn",
			Direct:   true,
			Timeout:  "30s",
		},
		Probe: ProbeConfig{
			Retries:    2,
			RetryDelay: "300ms",
			Interval:   "300ms",
			Parallel:   4,
		},
	}
}

// Load loads configuration from files and environment
// Config file search order (highest precedence first):
// 1. ./.aggreport.yaml or ./.aggreport.yml
// 2. ~/.aggreport.yaml or ~/.aggreport.yml
// 3. $XDG_CONFIG_HOME/aggreport/config.yaml (or ~/.config/aggreport/config.yaml)
// 4. /etc/aggreport/config.yaml
func Load() (*Config, error) {
	cfg := Default()

	configFile := findConfigFile()
	if configFile != "" {
		v := viper.New()
		v.SetConfigFile(configFile)

		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}

		if err := v.Unmarshal(cfg); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// findConfigFile searches for config file in standard locations
func findConfigFile() string {
	names := []string{".aggreport.yaml", ".aggreport.yml", "aggreport.yaml", "aggreport.yml"}

	home, homeErr := os.UserHomeDir()
	configDir, configDirErr := os.UserConfigDir()

	var searchPaths []string
	if cwd, err := os.Getwd(); err == nil {
		searchPaths = append(searchPaths, cwd)
	}
	if homeErr == nil {
		searchPaths = append(searchPaths, home)
	}
	if configDirErr == nil {
		searchPaths = append(searchPaths, filepath.Join(configDir, "aggreport"))
	}
	searchPaths = append(searchPaths, "/etc/aggreport")

	for _, dir := range searchPaths {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
		// Also check for config.yaml in subdirs
		path := filepath.Join(dir, "config.yaml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("AGG_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("AGG_ENV"); v != "" {
		cfg.Env = v
	} else if v := os.Getenv("NODE_ENV"); v != "" {
		cfg.Env = v
	}
	if v := os.Getenv("AGG_QUIET"); v == "true" || v == "1" {
		cfg.Quiet = true
	}
	if v := os.Getenv("AGG_VERBOSE"); v == "true" || v == "1" {
		cfg.Verbose = true
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.Token = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Telegram.ChatID = id
		}
	}
	if v := os.Getenv("AGG_LAUNCH_KEY"); v != "" {
		cfg.Launch.Key = v
	}
	if v := os.Getenv("ACCOUNT_PREFIX"); v != "" {
		cfg.Launch.AccountPrefix = v
	}
}

// LoadFromFile loads configuration from a specific file
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// ConfigFile returns the path to the config file that would be loaded
func ConfigFile() string {
	return findConfigFile()
}

// Validate reports the first invalid setting
func (c *Config) Validate() error {
	switch c.Format {
	case "text", "ndjson", "table":
	default:
		return fmt.Errorf("format must be text, ndjson or table, got %q", c.Format)
	}
	if c.Report.WidespreadAgents < 1 {
		return fmt.Errorf("report.widespread_agents must be at least 1")
	}
	if c.Report.Itemize < 1 {
		return fmt.Errorf("report.itemize must be at least 1")
	}
	if c.Report.MaxLength < 1 {
		return fmt.Errorf("report.max_length must be at least 1")
	}
	durations := map[string]string{
		"telegram.send_interval": c.Telegram.SendInterval,
		"telegram.timeout":       c.Telegram.Timeout,
		"launch.timeout":         c.Launch.Timeout,
		"probe.retry_delay":      c.Probe.RetryDelay,
		"probe.interval":         c.Probe.Interval,
	}
	for name, value := range durations {
		if _, err := ParseDuration(value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if c.Probe.Retries < 0 {
		return fmt.Errorf("probe.retries must not be negative")
	}
	for i, s := range c.Probe.Suites {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("probe.suites[%d]: %w", i, err)
		}
	}
	return nil
}

// ParseDuration parses a duration setting; empty means zero
func ParseDuration(s string) (time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration %q is negative", s)
	}
	return d, nil
}

// ResolveEnv picks the report environment: an explicit value wins, then an
// "(ENV)" segment in the input path, then the configured env, then "stg".
func ResolveEnv(explicit, inputPath, configured string) string {
	if v := strings.TrimSpace(explicit); v != "" {
		return strings.ToLower(v)
	}
	if v := EnvFromPath(inputPath); v != "" {
		return v
	}
	if v := strings.TrimSpace(configured); v != "" {
		return strings.ToLower(v)
	}
	return DefaultEnv
}

// EnvFromPath returns the lowercased name inside the first "(...)" path
// segment, e.g. "reports/(PROD)/results.json" gives "prod".
func EnvFromPath(path string) string {
	for _, seg := range strings.FieldsFunc(filepath.ToSlash(path), func(r rune) bool { return r == '/' }) {
		if len(seg) > 2 && strings.HasPrefix(seg, "(") && strings.HasSuffix(seg, ")") {
			return strings.ToLower(seg[1 : len(seg)-1])
		}
	}
	return ""
}
