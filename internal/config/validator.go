package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "engine.command")
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

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidLogFormats returns the list of valid log output formats
func ValidLogFormats() []string {
	return []string{"text", "json"}
}

// ValidBackends returns the list of valid engine backends
func ValidBackends() []string {
	return []string{"exec"}
}

// ValidDuplicatePolicies returns the list of valid species.on_duplicate values
func ValidDuplicatePolicies() []string {
	return []string{"overwrite", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateEngine()...)
	errors = append(errors, c.validateArtifacts()...)
	errors = append(errors, c.validateMaps()...)
	errors = append(errors, c.validateSpecies()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

func (c *Config) validateEngine() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidBackends(), c.Engine.Backend) {
		errors = append(errors, ValidationError{
			Field:   "engine.backend",
			Value:   c.Engine.Backend,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidBackends(), ", ")),
		})
	}

	if strings.TrimSpace(c.Engine.Command) == "" {
		errors = append(errors, ValidationError{
			Field:   "engine.command",
			Value:   c.Engine.Command,
			Message: "must not be empty",
		})
	}

	if c.Engine.Timeout < 0 {
		errors = append(errors, ValidationError{
			Field:   "engine.timeout",
			Value:   c.Engine.Timeout,
			Message: "must be non-negative (0 disables the timeout)",
		})
	}

	return errors
}

func (c *Config) validateArtifacts() []ValidationError {
	var errors []ValidationError

	// Names are joined onto directories, so separators would escape them
	for field, value := range map[string]string{
		"artifacts.sample_suffix": c.Artifacts.SampleSuffix,
		"artifacts.extension":     c.Artifacts.Extension,
	} {
		if strings.ContainsAny(value, `/\`) {
			errors = append(errors, ValidationError{
				Field:   field,
				Value:   value,
				Message: "must not contain path separators",
			})
		}
	}

	name := c.Artifacts.DefaultName
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		errors = append(errors, ValidationError{
			Field:   "artifacts.default_name",
			Value:   name,
			Message: "must be a plain file name",
		})
	}

	// Keep map output deterministic when several problems are reported
	slices.SortFunc(errors, func(a, b ValidationError) int { return strings.Compare(a.Field, b.Field) })

	return errors
}

func (c *Config) validateMaps() []ValidationError {
	if c.Maps.Extension == "" || strings.ContainsAny(c.Maps.Extension, `/\`) {
		return []ValidationError{{
			Field:   "maps.extension",
			Value:   c.Maps.Extension,
			Message: "must be a non-empty file extension",
		}}
	}
	return nil
}

func (c *Config) validateSpecies() []ValidationError {
	if !slices.Contains(ValidDuplicatePolicies(), c.Species.OnDuplicate) {
		return []ValidationError{{
			Field:   "species.on_duplicate",
			Value:   c.Species.OnDuplicate,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidDuplicatePolicies(), ", ")),
		}}
	}
	return nil
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	// Validate log level
	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if c.Logging.Format != "" && !slices.Contains(ValidLogFormats(), c.Logging.Format) {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Value:   c.Logging.Format,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogFormats(), ", ")),
		})
	}

	// Max size must be positive
	if c.Logging.MaxSizeMB <= 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be positive",
		})
	}

	// Reasonable upper bound for log file size
	const maxLogSizeMB = 1000 // 1GB
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	// Max backups must be non-negative
	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}
