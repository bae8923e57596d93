package cli

import (
	"encoding/json"
	"fmt"

	"github.com/FUNGYICHEN/AGG/internal/config"
)

// ConfigCmd shows or manages configuration
type ConfigCmd struct {
	Show     ConfigShowCmd     `cmd:"" default:"withargs" help:"Show current configuration"`
	Path     ConfigPathCmd     `cmd:"" help:"Show configuration file path"`
	Generate ConfigGenerateCmd `cmd:"" help:"Generate sample configuration file"`
}

// ConfigShowCmd shows current configuration
type ConfigShowCmd struct{}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}

// Run executes the config show command
func (c *ConfigShowCmd) Run(globals *Globals) error {
	cfg := globals.Config
	if cfg == nil {
		cfg = config.Default()
	}

	if globals.Format == "ndjson" {
		telegram := cfg.Telegram
		telegram.Token = redact(telegram.Token)
		launch := cfg.Launch
		launch.Key = redact(launch.Key)

		output := map[string]interface{}{
			"type":     "config",
			"format":   cfg.Format,
			"env":      cfg.Env,
			"quiet":    cfg.Quiet,
			"verbose":  cfg.Verbose,
			"report":   cfg.Report,
			"telegram": telegram,
			"launch":   launch,
			"probe":    cfg.Probe,
		}
		encoder := json.NewEncoder(globals.Stdout)
		return encoder.Encode(output)
	}

	// Text output
	fmt.Fprintln(globals.Stdout, "Current Configuration:")
	fmt.Fprintln(globals.Stdout, "")
	fmt.Fprintf(globals.Stdout, "  format:  %s\n", cfg.Format)
	fmt.Fprintf(globals.Stdout, "  env:     %s\n", config.ResolveEnv("", "", cfg.Env))
	fmt.Fprintf(globals.Stdout, "  quiet:   %v\n", cfg.Quiet)
	fmt.Fprintf(globals.Stdout, "  verbose: %v\n", cfg.Verbose)
	fmt.Fprintln(globals.Stdout, "")
	fmt.Fprintln(globals.Stdout, "Report:")
	fmt.Fprintf(globals.Stdout, "  widespread_agents: %d\n", cfg.Report.WidespreadAgents)
	fmt.Fprintf(globals.Stdout, "  itemize:           %d\n", cfg.Report.Itemize)
	fmt.Fprintf(globals.Stdout, "  brand_prefix:      %v\n", cfg.Report.BrandPrefix)
	fmt.Fprintf(globals.Stdout, "  max_length:        %d\n", cfg.Report.MaxLength)
	fmt.Fprintln(globals.Stdout, "")
	fmt.Fprintln(globals.Stdout, "Telegram:")
	fmt.Fprintf(globals.Stdout, "  token:         %s\n", redact(cfg.Telegram.Token))
	fmt.Fprintf(globals.Stdout, "  chat_id:       %d\n", cfg.Telegram.ChatID)
	fmt.Fprintf(globals.Stdout, "  send_interval: %s\n", cfg.Telegram.SendInterval)
	fmt.Fprintln(globals.Stdout, "")
	fmt.Fprintln(globals.Stdout, "Probe:")
	fmt.Fprintf(globals.Stdout, "  endpoint: %s\n", cfg.Launch.Endpoint)
	fmt.Fprintf(globals.Stdout, "  retries:  %d\n", cfg.Probe.Retries)
	fmt.Fprintf(globals.Stdout, "  parallel: %d\n", cfg.Probe.Parallel)
	for _, s := range cfg.Probe.Suites {
		fmt.Fprintf(globals.Stdout, "  suite %s: %d agents x %d games\n", s.Brand, len(s.Agents), len(s.GameIDs))
	}

	if path := config.ConfigFile(); path != "" {
		fmt.Fprintln(globals.Stdout, "")
		fmt.Fprintf(globals.Stdout, "Loaded from: %s\n", path)
	}

	return nil
}

// ConfigPathCmd shows config file path
type ConfigPathCmd struct{}

// Run executes the config path command
func (c *ConfigPathCmd) Run(globals *Globals) error {
	path := config.ConfigFile()

	if globals.Format == "ndjson" {
		output := map[string]interface{}{
			"type": "config_path",
			"path": path,
		}
		encoder := json.NewEncoder(globals.Stdout)
		return encoder.Encode(output)
	}

	if path == "" {
		fmt.Fprintln(globals.Stdout, "No configuration file found")
		fmt.Fprintln(globals.Stdout, "")
		fmt.Fprintln(globals.Stdout, "Create one at:")
		fmt.Fprintln(globals.Stdout, "  ./.aggreport.yaml")
		fmt.Fprintln(globals.Stdout, "  ~/.aggreport.yaml")
		fmt.Fprintln(globals.Stdout, "  ~/.config/aggreport/config.yaml")
	} else {
		fmt.Fprintf(globals.Stdout, "Config file: %s\n", path)
	}

	return nil
}

// ConfigGenerateCmd generates a sample configuration file
type ConfigGenerateCmd struct{}

// Run executes the config generate command
func (c *ConfigGenerateCmd) Run(globals *Globals) error {
	sampleConfig := `# aggreport configuration file
# Place this file at ./.aggreport.yaml, ~/.aggreport.yaml,
# or ~/.config/aggreport/config.yaml

# Output format: "text" (default), "ndjson" or "table"
format: text

# Environment shown in report headers; "prod" enables (brand) prefixes.
# AGG_ENV or NODE_ENV override this, an "(ENV)" segment in the input path
# overrides both, and --env overrides everything.
# env: stg

# Suppress diagnostics / enable debug output
quiet: false
verbose: false

report:
  # Agents on one game id that turn an error into a single widespread line
  widespread_agents: 5
  # Per-agent lines list game ids below this count, otherwise only the count
  itemize: 5
  # Prefix prod error lines with "(brand) "
  brand_prefix: true
  # Maximum characters per message chunk
  max_length: 4000
  # success_markers: ["測試成功", "测试成功"]
  # failure_markers: ["HTTP錯誤", "HTTP错误"]

telegram:
  # Prefer TELEGRAM_BOT_TOKEN / TELEGRAM_CHAT_ID in CI
  # token: "123456:ABC..."
  # chat_id: -1001234567890
  send_interval: 1s
  timeout: 30s
  # parse_mode: HTML

launch:
  # endpoint: https://op.example.com/login
  # deposit_endpoint: https://op.example.com/doTransferDepositTask
  # key: set AGG_LAUNCH_KEY instead
  # account_prefix: QAtest_
  ip: 100.1.2.3
  exit_url: https://google.com
  language: zh_cn
  platform: 0
  direct: true
  timeout: 30s

probe:
  retries: 2
  retry_delay: 300ms
  interval: 300ms
  parallel: 4
  suites:
    # - brand: Rectangle
    #   agents: [10171, 11171]
    #   game_ids: [90001, 90002]
    #   expected_prefix: https://g.sandbox.rectangle-games.com
    #   check: path
    #   expected:
    #     90001: swaggy-caramelo
`

	if globals.Format == "ndjson" {
		output := map[string]interface{}{
			"type":    "config_sample",
			"content": sampleConfig,
		}
		encoder := json.NewEncoder(globals.Stdout)
		return encoder.Encode(output)
	}

	fmt.Fprint(globals.Stdout, sampleConfig)
	return nil
}
