package config

import (
	"fmt"
	"net"
	"slices"
	"strings"

	"github.com/Iron-Ham/adaptui/internal/errors"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "trigger.period")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Is lets callers match any configuration failure with errors.ErrInvalidConfig.
func (e ValidationErrors) Is(target error) bool {
	return target == errors.ErrInvalidConfig
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Upper bounds that keep a misconfigured run from hanging or exhausting memory.
const (
	maxElements   = 256
	maxIterations = 1_000_000
)

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError

	errs = append(errs, c.validateTrigger()...)
	errs = append(errs, c.validateCoordinator()...)
	errs = append(errs, c.validateSimulation()...)
	errs = append(errs, c.validateLogging()...)
	errs = append(errs, c.validateAPI()...)
	errs = append(errs, c.validateTUI()...)

	return errs
}

// validateTrigger validates the TriggerConfig
func (c *Config) validateTrigger() []ValidationError {
	var errs []ValidationError
	t := c.Trigger

	if t.OptimizationThreshold < 0 {
		errs = append(errs, ValidationError{
			Field:   "trigger.optimization_threshold",
			Value:   t.OptimizationThreshold,
			Message: "must be non-negative",
		})
	}

	if t.AdaptationThreshold < 0 {
		errs = append(errs, ValidationError{
			Field:   "trigger.adaptation_threshold",
			Value:   t.AdaptationThreshold,
			Message: "must be non-negative",
		})
	}

	if t.OptimizationTimeout <= 0 {
		errs = append(errs, ValidationError{
			Field:   "trigger.optimization_timeout",
			Value:   t.OptimizationTimeout,
			Message: "must be positive",
		})
	}

	if t.SettleDelay < 0 {
		errs = append(errs, ValidationError{
			Field:   "trigger.settle_delay",
			Value:   t.SettleDelay,
			Message: "must be non-negative",
		})
	}

	if t.Period <= 0 {
		errs = append(errs, ValidationError{
			Field:   "trigger.period",
			Value:   t.Period,
			Message: "must be positive",
		})
	}

	if t.FrameInterval < 0 {
		errs = append(errs, ValidationError{
			Field:   "trigger.frame_interval",
			Value:   t.FrameInterval,
			Message: "must be non-negative",
		})
	}

	return errs
}

// validateCoordinator validates the CoordinatorConfig
func (c *Config) validateCoordinator() []ValidationError {
	var errs []ValidationError

	// The element count is only used when no request file supplies layouts
	if c.Coordinator.RequestFile == "" {
		if c.Coordinator.Elements < 1 || c.Coordinator.Elements > maxElements {
			errs = append(errs, ValidationError{
				Field:   "coordinator.elements",
				Value:   c.Coordinator.Elements,
				Message: fmt.Sprintf("must be between 1 and %d", maxElements),
			})
		}
	}

	if c.Coordinator.Objectives < 1 {
		errs = append(errs, ValidationError{
			Field:   "coordinator.objectives",
			Value:   c.Coordinator.Objectives,
			Message: "must be at least 1",
		})
	}

	return errs
}

// validateSimulation validates the SimulationConfig
func (c *Config) validateSimulation() []ValidationError {
	var errs []ValidationError
	s := c.Simulation

	if s.Extent <= 0 {
		errs = append(errs, ValidationError{
			Field:   "simulation.extent",
			Value:   s.Extent,
			Message: "must be positive",
		})
	}

	if s.Spacing < 0 {
		errs = append(errs, ValidationError{
			Field:   "simulation.spacing",
			Value:   s.Spacing,
			Message: "must be non-negative",
		})
	}

	if s.Iterations < 1 || s.Iterations > maxIterations {
		errs = append(errs, ValidationError{
			Field:   "simulation.iterations",
			Value:   s.Iterations,
			Message: fmt.Sprintf("must be between 1 and %d", maxIterations),
		})
	}

	if s.Batch < 1 {
		errs = append(errs, ValidationError{
			Field:   "simulation.batch",
			Value:   s.Batch,
			Message: "must be at least 1",
		})
	} else if s.Iterations > 0 && s.Batch > s.Iterations {
		errs = append(errs, ValidationError{
			Field:   "simulation.batch",
			Value:   s.Batch,
			Message: fmt.Sprintf("cannot exceed simulation.iterations (%d)", s.Iterations),
		})
	}

	if s.StepSize <= 0 {
		errs = append(errs, ValidationError{
			Field:   "simulation.step_size",
			Value:   s.StepSize,
			Message: "must be positive",
		})
	}

	if s.DriftAmplitude < 0 {
		errs = append(errs, ValidationError{
			Field:   "simulation.drift_amplitude",
			Value:   s.DriftAmplitude,
			Message: "must be non-negative",
		})
	}

	if s.DriftAmplitude > 0 && s.DriftInterval <= 0 {
		errs = append(errs, ValidationError{
			Field:   "simulation.drift_interval",
			Value:   s.DriftInterval,
			Message: "must be positive when drift is enabled",
		})
	}

	if s.EvalLatency < 0 {
		errs = append(errs, ValidationError{
			Field:   "simulation.eval_latency",
			Value:   s.EvalLatency,
			Message: "must be non-negative",
		})
	}

	if s.Animate < 0 {
		errs = append(errs, ValidationError{
			Field:   "simulation.animate",
			Value:   s.Animate,
			Message: "must be non-negative",
		})
	}

	return errs
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errs []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errs
}

// validateAPI validates the APIConfig
func (c *Config) validateAPI() []ValidationError {
	var errs []ValidationError

	if !c.API.Enabled {
		return errs
	}

	if _, _, err := net.SplitHostPort(c.API.Listen); err != nil {
		errs = append(errs, ValidationError{
			Field:   "api.listen",
			Value:   c.API.Listen,
			Message: "must be a host:port address",
		})
	}

	return errs
}

// validateTUI validates the TUIConfig
func (c *Config) validateTUI() []ValidationError {
	var errs []ValidationError

	if c.TUI.Enabled && c.TUI.Refresh <= 0 {
		errs = append(errs, ValidationError{
			Field:   "tui.refresh",
			Value:   c.TUI.Refresh,
			Message: "must be positive",
		})
	}

	return errs
}
