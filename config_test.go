package segfeed

import (
	"errors"
	"testing"
	"time"
)

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.ImageDir = "/data/images"
	cfg.TargetDir = "/data/targets"
	cfg.NumClasses = 19
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing image dir", func(c *Config) { c.ImageDir = "" }, true},
		{"missing target dir", func(c *Config) { c.TargetDir = "" }, true},
		{"zero batch size", func(c *Config) { c.BatchSize = 0 }, true},
		{"zero classes", func(c *Config) { c.NumClasses = 0 }, true},
		{"too many classes", func(c *Config) { c.NumClasses = 255 }, true},
		{"max classes", func(c *Config) { c.NumClasses = 254 }, false},
		{"zero workers", func(c *Config) { c.Workers = 0 }, true},
		{"zero queue capacity", func(c *Config) { c.QueueCapacity = 0 }, true},
		{"zero prefetch", func(c *Config) { c.Prefetch = 0 }, true},
		{"negative max wait", func(c *Config) { c.MaxWait = -time.Second }, true},
		{"width without height", func(c *Config) { c.TargetWidth = 512 }, true},
		{"width with height", func(c *Config) { c.TargetWidth = 512; c.TargetHeight = 256 }, false},
		{"bad interpolation", func(c *Config) { c.Interpolation = "bicubic" }, true},
		{"short value map", func(c *Config) { c.ValueMap = make([]uint8, 10) }, true},
		{"full value map", func(c *Config) { c.ValueMap = make([]uint8, 256) }, false},
		{"inverted saturation range", func(c *Config) {
			c.Augmentation.SaturationMin = 2
			c.Augmentation.SaturationMax = 1
		}, true},
		{"inverted hue range", func(c *Config) {
			c.Augmentation.HueMin = 10
			c.Augmentation.HueMax = -10
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig wrap", err)
			}
		})
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := validConfig()
	cfg.BatchSize = -1

	if _, err := New(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("New() error = %v, want ErrInvalidConfig", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.BatchSize != 8 || cfg.Workers != 4 || cfg.QueueCapacity != 32 || cfg.Prefetch != 2 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if !cfg.Shuffle {
		t.Error("Shuffle default = false, want true")
	}
	if cfg.EmitPartial || cfg.Ordered {
		t.Error("Ordered/EmitPartial default = true, want false")
	}
}
