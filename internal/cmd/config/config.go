// Package config provides CLI commands for managing adaptui configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	appconfig "github.com/Iron-Ham/adaptui/internal/config"
	"github.com/Iron-Ham/adaptui/internal/tui/styles"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify adaptui configuration",
	Long: `View or modify adaptui configuration.

Without arguments, displays the current configuration.
Use subcommands to validate, modify settings or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration for invalid values",
	RunE:  runConfigValidate,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  adaptui config set trigger.run_asynchronous true
  adaptui config set trigger.adaptation_threshold 0.2
  adaptui config set trigger.period 250ms
  adaptui config set coordinator.elements 8

The value is parsed with the type of the key's default, and the resulting
configuration must validate before it is written.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/adaptui/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

// Register adds all config-related commands to the given parent command.
func Register(parent *cobra.Command) {
	parent.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "Current configuration:")
	fmt.Fprintln(w)

	// Show where config is being read from
	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(w, "Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(w, "Config file: (none - using defaults)\n")
	}
	fmt.Fprintln(w)

	writeConfig(w, appconfig.Get())
	return nil
}

// writeConfig prints cfg grouped by section.
func writeConfig(w io.Writer, cfg *appconfig.Config) {
	fmt.Fprintln(w, "trigger:")
	fmt.Fprintf(w, "  run_asynchronous: %v\n", cfg.Trigger.RunAsynchronous)
	fmt.Fprintf(w, "  optimization_threshold: %g\n", cfg.Trigger.OptimizationThreshold)
	fmt.Fprintf(w, "  adaptation_threshold: %g\n", cfg.Trigger.AdaptationThreshold)
	fmt.Fprintf(w, "  optimization_timeout: %s\n", cfg.Trigger.OptimizationTimeout)
	fmt.Fprintf(w, "  settle_delay: %s\n", cfg.Trigger.SettleDelay)
	fmt.Fprintf(w, "  period: %s\n", cfg.Trigger.Period)
	fmt.Fprintf(w, "  frame_interval: %s\n", cfg.Trigger.FrameInterval)

	fmt.Fprintln(w, "coordinator:")
	fmt.Fprintf(w, "  global: %v\n", cfg.Coordinator.Global)
	fmt.Fprintf(w, "  elements: %d\n", cfg.Coordinator.Elements)
	fmt.Fprintf(w, "  objectives: %d\n", cfg.Coordinator.Objectives)
	fmt.Fprintf(w, "  request_file: %s\n", cfg.Coordinator.RequestFile)

	fmt.Fprintln(w, "simulation:")
	fmt.Fprintf(w, "  seed: %d\n", cfg.Simulation.Seed)
	fmt.Fprintf(w, "  extent: %g\n", cfg.Simulation.Extent)
	fmt.Fprintf(w, "  spacing: %g\n", cfg.Simulation.Spacing)
	fmt.Fprintf(w, "  iterations: %d\n", cfg.Simulation.Iterations)
	fmt.Fprintf(w, "  batch: %d\n", cfg.Simulation.Batch)
	fmt.Fprintf(w, "  step_size: %g\n", cfg.Simulation.StepSize)
	fmt.Fprintf(w, "  drift_amplitude: %g\n", cfg.Simulation.DriftAmplitude)
	fmt.Fprintf(w, "  drift_interval: %s\n", cfg.Simulation.DriftInterval)
	fmt.Fprintf(w, "  eval_latency: %s\n", cfg.Simulation.EvalLatency)
	fmt.Fprintf(w, "  animate: %s\n", cfg.Simulation.Animate)

	fmt.Fprintln(w, "logging:")
	fmt.Fprintf(w, "  level: %s\n", cfg.Logging.Level)
	fmt.Fprintf(w, "  dir: %s\n", cfg.Logging.Dir)

	fmt.Fprintln(w, "history:")
	fmt.Fprintf(w, "  enabled: %v\n", cfg.History.Enabled)
	fmt.Fprintf(w, "  path: %s\n", cfg.History.ResolvePath())

	fmt.Fprintln(w, "api:")
	fmt.Fprintf(w, "  enabled: %v\n", cfg.API.Enabled)
	fmt.Fprintf(w, "  listen: %s\n", cfg.API.Listen)

	fmt.Fprintln(w, "tui:")
	fmt.Fprintf(w, "  enabled: %v\n", cfg.TUI.Enabled)
	fmt.Fprintf(w, "  refresh: %s\n", cfg.TUI.Refresh)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	_, err := appconfig.Load()
	if err == nil {
		fmt.Fprintln(w, styles.Secondary.Render("Configuration is valid."))
		return nil
	}

	var verrs appconfig.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	for _, verr := range verrs {
		fmt.Fprintln(w, styles.Error.Render("✗ ")+verr.Error())
	}
	return fmt.Errorf("configuration has %d invalid value(s)", len(verrs))
}

// parseValue converts value to the type of the key's default.
func parseValue(key, value string) (any, error) {
	def, ok := appconfig.DefaultValues()[key]
	if !ok {
		return nil, fmt.Errorf("unknown configuration key: %s\nRun 'adaptui config show' to see valid keys", key)
	}

	switch current := def.(type) {
	case bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		return b, nil
	case int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected integer", key)
		}
		return n, nil
	case uint64:
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected non-negative integer", key)
		}
		return n, nil
	case float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected number", key)
		}
		return f, nil
	case time.Duration:
		d, err := time.ParseDuration(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected duration such as 500ms", key)
		}
		// Stored as text so the file stays readable
		return d.String(), nil
	case string:
		return value, nil
	default:
		return nil, fmt.Errorf("cannot set %s (type %T)", key, current)
	}
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	typedValue, err := parseValue(key, value)
	if err != nil {
		return err
	}

	previous := viper.Get(key)
	viper.Set(key, typedValue)
	if _, err := appconfig.Load(); err != nil {
		viper.Set(key, previous)
		return err
	}

	// Ensure config directory exists
	configDir := appconfig.ConfigDir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configFile = appconfig.ConfigFile()
	}
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Set %s = %v\n", key, typedValue)
	fmt.Fprintf(w, "Config saved to %s\n", configFile)
	return nil
}

// defaultConfigContent is written by 'config init'.
const defaultConfigContent = `# adaptui configuration

# When to optimize and when to apply
trigger:
  # Spread each optimization across frames instead of blocking the tick
  run_asynchronous: false
  # Cost at or below which no optimization is attempted
  optimization_threshold: 0.05
  # Minimum cost improvement before a candidate is applied
  adaptation_threshold: 0.1
  # Maximum duration of one asynchronous attempt
  optimization_timeout: 5s
  # Wait before the first tick, and between ticks
  settle_delay: 500ms
  period: 500ms
  # Frame slot an asynchronous attempt polls at
  frame_interval: 16ms

# The managed UI
coordinator:
  # One trigger for every element (true) or one per element (false)
  global: true
  # Number of generated elements when no request file is given
  elements: 4
  objectives: 1
  # YAML request with initial layouts (optional)
  request_file: ""

# Simulated scene and optimizer
simulation:
  seed: 1
  extent: 2.0
  spacing: 0.5
  iterations: 400
  batch: 20
  step_size: 0.5
  # How far targets wander each drift step (0 disables drift)
  drift_amplitude: 0.3
  drift_interval: 2s
  eval_latency: 0s
  animate: 200ms

logging:
  # debug, info, warn or error
  level: info
  # Directory for adaptui.log (empty logs to stderr)
  dir: ""

history:
  enabled: true
  # bbolt database (empty means history.db in the config directory)
  path: ""

api:
  enabled: false
  listen: 127.0.0.1:8089

tui:
  enabled: true
  refresh: 250ms
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir := appconfig.ConfigDir()
	configFile := appconfig.ConfigFile()

	// Check if config file already exists
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'adaptui config set' to modify values", configFile)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configFile, []byte(defaultConfigContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Created config file at %s\n", configFile)
	fmt.Fprintln(w, "Edit this file to customize adaptui's behavior.")
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	configFile := appconfig.ConfigFile()

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(w, "Active config: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(w, "Default path: %s (not created)\n", configFile)
	}

	fmt.Fprintln(w, "\nSearch paths:")
	fmt.Fprintf(w, "  1. %s\n", filepath.Join(appconfig.ConfigDir(), "config.yaml"))
	fmt.Fprintf(w, "  2. ./config.yaml (current directory)\n")
	fmt.Fprintln(w, "\nEnvironment variables: ADAPTUI_* (e.g., ADAPTUI_TRIGGER_PERIOD)")
	return nil
}
