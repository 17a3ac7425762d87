package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	ImageDir  string `toml:"image_dir"`
	TargetDir string `toml:"target_dir"`

	BatchSize  int `toml:"batch_size"`
	NumClasses int `toml:"num_classes"`
	Workers    int `toml:"workers"`
	QueueCap   int `toml:"queue_capacity"`
	Prefetch   int `toml:"prefetch"`

	Shuffle     *bool `toml:"shuffle"`
	Ordered     *bool `toml:"ordered"`
	EmitPartial *bool `toml:"emit_partial"`
	Watch       *bool `toml:"watch"`

	MaxWait string `toml:"max_wait"`

	TargetWidth   int    `toml:"target_width"`
	TargetHeight  int    `toml:"target_height"`
	Interpolation string `toml:"interpolation"`

	Seed   *int64 `toml:"seed"`
	Epochs int    `toml:"epochs"`

	Augmentation FileAugmentation `toml:"augmentation"`
}

// FileAugmentation mirrors the augmentation settings.
type FileAugmentation struct {
	SubsampleFactor   int     `toml:"subsample_factor"`
	GammaStrength     float64 `toml:"gamma_strength"`
	TranslationOffset int     `toml:"translation_offset"`
	ZoomFactor        float64 `toml:"zoom_factor"`
	RotationMaxAngle  float64 `toml:"rotation_max_angle"`
	SaturationMin     float64 `toml:"saturation_min"`
	SaturationMax     float64 `toml:"saturation_max"`
	HueMin            float64 `toml:"hue_min"`
	HueMax            float64 `toml:"hue_max"`
	CropSize          int     `toml:"crop_size"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.segfeed/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".segfeed", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("image-dir", fc.ImageDir, &cfg.ImageDir)
	s.setString("target-dir", fc.TargetDir, &cfg.TargetDir)
	s.setString("interpolation", fc.Interpolation, &cfg.Interpolation)

	s.setInt("batch-size", fc.BatchSize, &cfg.BatchSize)
	s.setInt("num-classes", fc.NumClasses, &cfg.NumClasses)
	s.setInt("workers", fc.Workers, &cfg.Workers)
	s.setInt("queue-capacity", fc.QueueCap, &cfg.QueueCap)
	s.setInt("prefetch", fc.Prefetch, &cfg.Prefetch)
	s.setInt("target-width", fc.TargetWidth, &cfg.TargetWidth)
	s.setInt("target-height", fc.TargetHeight, &cfg.TargetHeight)
	s.setInt("epochs", fc.Epochs, &cfg.Epochs)

	s.setBool("shuffle", fc.Shuffle, &cfg.Shuffle)
	s.setBool("ordered", fc.Ordered, &cfg.Ordered)
	s.setBool("emit-partial", fc.EmitPartial, &cfg.EmitPartial)
	s.setBool("watch", fc.Watch, &cfg.Watch)

	if err := s.setDuration("max-wait", fc.MaxWait, &cfg.MaxWait); err != nil {
		return err
	}

	if fc.Seed != nil && !changed["seed"] {
		cfg.Seed = *fc.Seed
	}

	a := fc.Augmentation
	s.setInt("subsample", a.SubsampleFactor, &cfg.SubsampleFactor)
	s.setFloat("gamma", a.GammaStrength, &cfg.GammaStrength)
	s.setInt("translation", a.TranslationOffset, &cfg.TranslationOffset)
	s.setFloat("zoom", a.ZoomFactor, &cfg.ZoomFactor)
	s.setFloat("rotation", a.RotationMaxAngle, &cfg.RotationMaxAngle)
	s.setFloat("saturation-min", a.SaturationMin, &cfg.SaturationMin)
	s.setFloat("saturation-max", a.SaturationMax, &cfg.SaturationMax)
	s.setFloat("hue-min", a.HueMin, &cfg.HueMin)
	s.setFloat("hue-max", a.HueMax, &cfg.HueMax)
	s.setInt("crop", a.CropSize, &cfg.CropSize)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
