package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/thruflo/sortviz/internal/logging"
	"github.com/thruflo/sortviz/internal/sorting"
)

// Default values for Config.
const (
	DefaultAlgorithm      = "quicksort"
	DefaultLength         = 50
	DefaultMinValue       = 1
	DefaultMaxValue       = 100
	DefaultStepDelay      = 50 * time.Millisecond
	DefaultMergeDelay     = 50 * time.Millisecond
	DefaultBaseFrequency  = 200.0
	DefaultFrequencyScale = 5.0
	DefaultToneDuration   = 100 * time.Millisecond
	DefaultGain           = 0.1
	DefaultReleaseGain    = 0.001
	DefaultServerHost     = "127.0.0.1"
	DefaultServerPort     = 8375
	DefaultLogLevel       = "info"

	// MaxLength bounds the array length; large inputs are out of scope.
	MaxLength = 1000
)

// Dir is the directory holding config.yaml, relative to the base path.
const Dir = ".sortviz"

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Algorithm: DefaultAlgorithm,
		Array: Array{
			Length:   DefaultLength,
			MinValue: DefaultMinValue,
			MaxValue: DefaultMaxValue,
		},
		Pacing: Pacing{
			StepDelay:  DefaultStepDelay,
			MergeDelay: DefaultMergeDelay,
		},
		Sound: Sound{
			BaseFrequency:  DefaultBaseFrequency,
			FrequencyScale: DefaultFrequencyScale,
			Duration:       DefaultToneDuration,
			Gain:           DefaultGain,
			ReleaseGain:    DefaultReleaseGain,
		},
		Server: Server{
			Host: DefaultServerHost,
			Port: DefaultServerPort,
		},
		Log: Log{
			Level: DefaultLogLevel,
		},
	}
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// Path returns the config file path under basePath.
func Path(basePath string) string {
	return filepath.Join(basePath, Dir, "config.yaml")
}

// LoadConfig reads and parses .sortviz/config.yaml from the given base path.
// If the file doesn't exist, returns default config.
func LoadConfig(basePath string) (*Config, error) {
	cfg, err := LoadConfigFile(Path(basePath))
	if err != nil && errors.Is(err, os.ErrNotExist) {
		d := DefaultConfig()
		return &d, nil
	}
	return cfg, err
}

// LoadConfigFile reads and parses the config file at path, applying defaults
// for any missing fields. A missing file is an error wrapping os.ErrNotExist.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// SaveConfig writes cfg to .sortviz/config.yaml under basePath.
func SaveConfig(basePath string, cfg *Config) error {
	return SaveConfigFile(Path(basePath), cfg)
}

// SaveConfigFile validates cfg and writes it to path, creating parent
// directories as needed.
func SaveConfigFile(path string, cfg *Config) error {
	if err := ValidateConfig(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	// The file may hold a password hash.
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ValidateConfig checks that all config values are valid.
func ValidateConfig(cfg *Config) error {
	if _, err := sorting.Parse(cfg.Algorithm); err != nil {
		return ValidationError{Field: "algorithm", Message: fmt.Sprintf("unknown algorithm %q", cfg.Algorithm)}
	}

	if cfg.Array.Length <= 0 || cfg.Array.Length > MaxLength {
		return ValidationError{Field: "array.length", Message: fmt.Sprintf("must be between 1 and %d", MaxLength)}
	}
	if cfg.Array.MinValue <= 0 {
		return ValidationError{Field: "array.min_value", Message: "must be positive"}
	}
	if cfg.Array.MaxValue < cfg.Array.MinValue {
		return ValidationError{Field: "array.max_value", Message: "must not be less than array.min_value"}
	}

	if cfg.Pacing.StepDelay < 0 {
		return ValidationError{Field: "pacing.step_delay", Message: "must not be negative"}
	}
	if cfg.Pacing.MergeDelay < 0 {
		return ValidationError{Field: "pacing.merge_delay", Message: "must not be negative"}
	}

	if cfg.Sound.BaseFrequency <= 0 {
		return ValidationError{Field: "sound.base_frequency", Message: "must be positive"}
	}
	if cfg.Sound.FrequencyScale < 0 {
		return ValidationError{Field: "sound.frequency_scale", Message: "must not be negative"}
	}
	if cfg.Sound.Duration <= 0 {
		return ValidationError{Field: "sound.duration", Message: "must be positive"}
	}
	if cfg.Sound.Gain <= 0 || cfg.Sound.Gain > 1 {
		return ValidationError{Field: "sound.gain", Message: "must be in (0, 1]"}
	}
	// An exponential ramp cannot reach zero.
	if cfg.Sound.ReleaseGain <= 0 || cfg.Sound.ReleaseGain > cfg.Sound.Gain {
		return ValidationError{Field: "sound.release_gain", Message: "must be in (0, sound.gain]"}
	}

	if cfg.Bogosort.MaxShuffles < 0 {
		return ValidationError{Field: "bogosort.max_shuffles", Message: "must not be negative"}
	}

	if err := ValidateServer(&cfg.Server); err != nil {
		return err
	}

	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		return ValidationError{Field: "log.level", Message: err.Error()}
	}

	return nil
}

// ValidateServer checks that server config values are valid.
func ValidateServer(cfg *Server) error {
	if cfg.Port < 0 || cfg.Port > 65535 {
		return ValidationError{Field: "server.port", Message: "must be between 0 and 65535"}
	}
	return nil
}

// IsValidationError checks if an error is a ValidationError.
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}
