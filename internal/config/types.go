package config

import "time"

// Array controls the shape of generated arrays.
type Array struct {
	Length   int `yaml:"length"`
	MinValue int `yaml:"min_value"`
	MaxValue int `yaml:"max_value"`
}

// Pacing controls how long each visible step stays on screen.
type Pacing struct {
	StepDelay  time.Duration `yaml:"step_delay"`
	MergeDelay time.Duration `yaml:"merge_delay"`
}

// Sound controls tone derivation. Frequency is BaseFrequency +
// last*FrequencyScale.
type Sound struct {
	Muted          bool          `yaml:"muted"`
	BaseFrequency  float64       `yaml:"base_frequency"`
	FrequencyScale float64       `yaml:"frequency_scale"`
	Duration       time.Duration `yaml:"duration"`
	Gain           float64       `yaml:"gain"`
	ReleaseGain    float64       `yaml:"release_gain"`
}

// Bogosort bounds the shuffle loop. Zero means unbounded.
type Bogosort struct {
	MaxShuffles int `yaml:"max_shuffles"`
}

// Server configures `sortviz serve`.
type Server struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	PasswordHash string `yaml:"password_hash,omitempty"`
}

// Log configures the default logger.
type Log struct {
	Level string `yaml:"level"`
}

// Config represents the .sortviz/config.yaml file.
type Config struct {
	Algorithm string   `yaml:"algorithm"`
	Array     Array    `yaml:"array"`
	Pacing    Pacing   `yaml:"pacing"`
	Sound     Sound    `yaml:"sound"`
	Bogosort  Bogosort `yaml:"bogosort"`
	Server    Server   `yaml:"server"`
	Log       Log      `yaml:"log"`
}
