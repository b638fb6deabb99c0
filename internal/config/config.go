package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Iron-Ham/adaptui/internal/trigger"
	"github.com/spf13/viper"
)

// Config holds all adaptui configuration
type Config struct {
	Trigger     TriggerConfig     `mapstructure:"trigger"`
	Coordinator CoordinatorConfig `mapstructure:"coordinator"`
	Simulation  SimulationConfig  `mapstructure:"simulation"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	History     HistoryConfig     `mapstructure:"history"`
	API         APIConfig         `mapstructure:"api"`
	TUI         TUIConfig         `mapstructure:"tui"`
}

// TriggerConfig controls when layouts are optimized and applied
type TriggerConfig struct {
	// RunAsynchronous spreads each optimization across frames instead of
	// blocking the tick. (default: false)
	RunAsynchronous bool `mapstructure:"run_asynchronous"`

	// OptimizationThreshold is the cost at or below which no optimization
	// is attempted. (default: 0.05)
	OptimizationThreshold float64 `mapstructure:"optimization_threshold"`

	// AdaptationThreshold is the minimum cost improvement a candidate must
	// bring before it is applied. (default: 0.1)
	AdaptationThreshold float64 `mapstructure:"adaptation_threshold"`

	// OptimizationTimeout bounds a single asynchronous attempt. (default: 5s)
	OptimizationTimeout time.Duration `mapstructure:"optimization_timeout"`

	// SettleDelay is waited once before the first tick. (default: 500ms)
	SettleDelay time.Duration `mapstructure:"settle_delay"`

	// Period is waited between ticks. (default: 500ms)
	Period time.Duration `mapstructure:"period"`

	// FrameInterval is how often an asynchronous attempt polls the
	// optimizer. (default: 16ms)
	FrameInterval time.Duration `mapstructure:"frame_interval"`
}

// CoordinatorConfig describes the managed UI
type CoordinatorConfig struct {
	// Global drives every element from one trigger. When false each
	// element gets its own coordinator and trigger. (default: true)
	Global bool `mapstructure:"global"`

	// Elements is the number of generated elements when no request file
	// is given. (default: 4)
	Elements int `mapstructure:"elements"`

	// Objectives is forwarded to the optimizer with every request. (default: 1)
	Objectives int `mapstructure:"objectives"`

	// RequestFile is an optional YAML optimization request providing the
	// initial layouts. Empty means generate a scene.
	RequestFile string `mapstructure:"request_file"`
}

// SimulationConfig controls the simulated scene, cost model and optimizer
type SimulationConfig struct {
	// Seed makes scene generation and search deterministic. (default: 1)
	Seed uint64 `mapstructure:"seed"`

	// Extent is the half-width of the cube targets are drawn from. (default: 2.0)
	Extent float64 `mapstructure:"extent"`

	// Spacing is the minimum comfortable distance between elements. (default: 0.5)
	Spacing float64 `mapstructure:"spacing"`

	// Iterations is the search budget for one full optimization. (default: 400)
	Iterations int `mapstructure:"iterations"`

	// Batch is how many iterations one incremental step runs. (default: 20)
	Batch int `mapstructure:"batch"`

	// StepSize is the standard deviation of each search move. (default: 0.5)
	StepSize float64 `mapstructure:"step_size"`

	// DriftAmplitude is how far targets wander per drift step. Zero
	// disables drift. (default: 0.3)
	DriftAmplitude float64 `mapstructure:"drift_amplitude"`

	// DriftInterval is the time between drift steps. (default: 2s)
	DriftInterval time.Duration `mapstructure:"drift_interval"`

	// EvalLatency is added to every cost evaluation. (default: 0)
	EvalLatency time.Duration `mapstructure:"eval_latency"`

	// Animate is how long applying a layout to one element takes. (default: 200ms)
	Animate time.Duration `mapstructure:"animate"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Level sets the minimum log level: "debug", "info", "warn", "error". (default: "info")
	Level string `mapstructure:"level"`

	// Dir is where adaptui.log is written. Empty means stderr.
	Dir string `mapstructure:"dir"`
}

// HistoryConfig controls the persistent adaptation history
type HistoryConfig struct {
	// Enabled records every applied layout. (default: true)
	Enabled bool `mapstructure:"enabled"`

	// Path is the bbolt database file. Empty means history.db in the
	// config directory.
	Path string `mapstructure:"path"`
}

// APIConfig controls the HTTP status surface
type APIConfig struct {
	// Enabled starts the HTTP server during run. (default: false)
	Enabled bool `mapstructure:"enabled"`

	// Listen is the address the server binds. (default: "127.0.0.1:8089")
	Listen string `mapstructure:"listen"`
}

// TUIConfig controls the terminal dashboard
type TUIConfig struct {
	// Enabled shows the dashboard when stdout is a terminal. (default: true)
	Enabled bool `mapstructure:"enabled"`

	// Refresh is how often trigger statuses are re-read. (default: 250ms)
	Refresh time.Duration `mapstructure:"refresh"`
}

// HistoryFileName is the default history database name inside ConfigDir.
const HistoryFileName = "history.db"

// TriggerConfig converts the trigger section into the scheduler's settings.
func (c *Config) TriggerConfig() trigger.Config {
	return trigger.Config{
		RunAsynchronous:       c.Trigger.RunAsynchronous,
		OptimizationThreshold: c.Trigger.OptimizationThreshold,
		AdaptationThreshold:   c.Trigger.AdaptationThreshold,
		OptimizationTimeout:   c.Trigger.OptimizationTimeout,
		SettleDelay:           c.Trigger.SettleDelay,
		Period:                c.Trigger.Period,
		FrameInterval:         c.Trigger.FrameInterval,
	}
}

// ResolvePath returns the history database path.
// An empty Path resolves into ConfigDir. A leading ~ expands to the home directory.
func (h *HistoryConfig) ResolvePath() string {
	if h.Path == "" {
		return filepath.Join(ConfigDir(), HistoryFileName)
	}

	path := h.Path
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	return path
}

// Default returns a Config with sensible default values
func Default() *Config {
	tc := trigger.DefaultConfig()
	return &Config{
		Trigger: TriggerConfig{
			RunAsynchronous:       tc.RunAsynchronous,
			OptimizationThreshold: tc.OptimizationThreshold,
			AdaptationThreshold:   tc.AdaptationThreshold,
			OptimizationTimeout:   tc.OptimizationTimeout,
			SettleDelay:           tc.SettleDelay,
			Period:                tc.Period,
			FrameInterval:         tc.FrameInterval,
		},
		Coordinator: CoordinatorConfig{
			Global:     true,
			Elements:   4,
			Objectives: 1,
		},
		Simulation: SimulationConfig{
			Seed:           1,
			Extent:         2.0,
			Spacing:        0.5,
			Iterations:     400,
			Batch:          20,
			StepSize:       0.5,
			DriftAmplitude: 0.3,
			DriftInterval:  2 * time.Second,
			Animate:        200 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    "", // Empty means ConfigDir()/history.db
		},
		API: APIConfig{
			Enabled: false,
			Listen:  "127.0.0.1:8089",
		},
		TUI: TUIConfig{
			Enabled: true,
			Refresh: 250 * time.Millisecond,
		},
	}
}

// DefaultValues returns every configuration key with its default value.
func DefaultValues() map[string]any {
	defaults := Default()

	return map[string]any{
		// Trigger defaults
		"trigger.run_asynchronous":       defaults.Trigger.RunAsynchronous,
		"trigger.optimization_threshold": defaults.Trigger.OptimizationThreshold,
		"trigger.adaptation_threshold":   defaults.Trigger.AdaptationThreshold,
		"trigger.optimization_timeout":   defaults.Trigger.OptimizationTimeout,
		"trigger.settle_delay":           defaults.Trigger.SettleDelay,
		"trigger.period":                 defaults.Trigger.Period,
		"trigger.frame_interval":         defaults.Trigger.FrameInterval,

		// Coordinator defaults
		"coordinator.global":       defaults.Coordinator.Global,
		"coordinator.elements":     defaults.Coordinator.Elements,
		"coordinator.objectives":   defaults.Coordinator.Objectives,
		"coordinator.request_file": defaults.Coordinator.RequestFile,

		// Simulation defaults
		"simulation.seed":            defaults.Simulation.Seed,
		"simulation.extent":          defaults.Simulation.Extent,
		"simulation.spacing":         defaults.Simulation.Spacing,
		"simulation.iterations":      defaults.Simulation.Iterations,
		"simulation.batch":           defaults.Simulation.Batch,
		"simulation.step_size":       defaults.Simulation.StepSize,
		"simulation.drift_amplitude": defaults.Simulation.DriftAmplitude,
		"simulation.drift_interval":  defaults.Simulation.DriftInterval,
		"simulation.eval_latency":    defaults.Simulation.EvalLatency,
		"simulation.animate":         defaults.Simulation.Animate,

		// Logging defaults
		"logging.level": defaults.Logging.Level,
		"logging.dir":   defaults.Logging.Dir,

		// History defaults
		"history.enabled": defaults.History.Enabled,
		"history.path":    defaults.History.Path,

		// API defaults
		"api.enabled": defaults.API.Enabled,
		"api.listen":  defaults.API.Listen,

		// TUI defaults
		"tui.enabled": defaults.TUI.Enabled,
		"tui.refresh": defaults.TUI.Refresh,
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	for key, value := range DefaultValues() {
		viper.SetDefault(key, value)
	}
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "adaptui")
	}
	// Fall back to ~/.config/adaptui
	home, err := os.UserHomeDir()
	if err != nil {
		return ".adaptui"
	}
	return filepath.Join(home, ".config", "adaptui")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
