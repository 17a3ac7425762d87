// Package cliconfig layers the segfeed command configuration from
// defaults, a TOML file, SEGFEED_* environment variables and command-line
// flags, in ascending precedence.
package cliconfig

import (
	"fmt"
	"strconv"
	"time"

	"github.com/seglab/segfeed"
)

// Config holds CLI configuration for the segfeed command.
type Config struct {
	ImageDir  string
	TargetDir string

	BatchSize  int
	NumClasses int
	Workers    int
	QueueCap   int
	Prefetch   int

	Shuffle     bool
	Ordered     bool
	EmitPartial bool
	Watch       bool

	MaxWait time.Duration

	TargetWidth   int
	TargetHeight  int
	Interpolation string

	Seed   int64
	Epochs int

	SubsampleFactor   int
	GammaStrength     float64
	TranslationOffset int
	ZoomFactor        float64
	RotationMaxAngle  float64
	SaturationMin     float64
	SaturationMax     float64
	HueMin            float64
	HueMax            float64
	CropSize          int
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	lib := segfeed.DefaultConfig()
	return Config{
		BatchSize:     lib.BatchSize,
		Workers:       lib.Workers,
		QueueCap:      lib.QueueCapacity,
		Prefetch:      lib.Prefetch,
		Shuffle:       lib.Shuffle,
		Interpolation: lib.Interpolation,
		Epochs:        1,
	}
}

// Validate checks the CLI-only fields. Loader fields are validated by the
// library when the loader is created.
func (c *Config) Validate() error {
	if c.Epochs <= 0 {
		return fmt.Errorf("epochs must be positive")
	}
	return nil
}

// LoaderConfig converts the CLI configuration to a loader configuration.
func (c *Config) LoaderConfig() segfeed.Config {
	cfg := segfeed.DefaultConfig()
	cfg.ImageDir = c.ImageDir
	cfg.TargetDir = c.TargetDir
	cfg.BatchSize = c.BatchSize
	cfg.NumClasses = c.NumClasses
	cfg.Workers = c.Workers
	cfg.QueueCapacity = c.QueueCap
	cfg.Prefetch = c.Prefetch
	cfg.Shuffle = c.Shuffle
	cfg.Ordered = c.Ordered
	cfg.EmitPartial = c.EmitPartial
	cfg.WatchDataset = c.Watch
	cfg.MaxWait = c.MaxWait
	cfg.TargetWidth = c.TargetWidth
	cfg.TargetHeight = c.TargetHeight
	cfg.Interpolation = c.Interpolation
	cfg.Seed = c.Seed
	cfg.Augmentation = segfeed.AugmentationConfig{
		SubsampleFactor:   c.SubsampleFactor,
		GammaStrength:     c.GammaStrength,
		TranslationOffset: c.TranslationOffset,
		ZoomFactor:        c.ZoomFactor,
		RotationMaxAngle:  c.RotationMaxAngle,
		SaturationMin:     c.SaturationMin,
		SaturationMax:     c.SaturationMax,
		HueMin:            c.HueMin,
		HueMax:            c.HueMax,
		CropSize:          c.CropSize,
	}
	return cfg
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setFloat sets a float64 value if non-zero and flag not changed.
func (s *configSetter) setFloat(flag string, value float64, dst *float64) {
	if value == 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setInt64FromString parses a string to int64 and sets the destination.
// Used for environment variables that come as strings.
func (s *configSetter) setInt64FromString(flag, value string, dst *int64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = i
	return nil
}

// setFloatFromString parses a string to float64 and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setFloatFromString(flag, value string, dst *float64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if f == 0 {
		return nil
	}
	*dst = f
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
