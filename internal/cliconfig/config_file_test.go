package cliconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestApplyFileConfig(t *testing.T) {
	trueVal := true
	seed := int64(42)

	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
		wantErr    bool
	}{
		{
			name: "applies all valid config values",
			fileConfig: FileConfig{
				ImageDir:   "/data/images",
				TargetDir:  "/data/targets",
				BatchSize:  16,
				NumClasses: 19,
				MaxWait:    "5m",
				Ordered:    &trueVal,
				Seed:       &seed,
				Augmentation: FileAugmentation{
					GammaStrength: 0.1,
					CropSize:      256,
				},
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				ImageDir:      "/data/images",
				TargetDir:     "/data/targets",
				BatchSize:     16,
				NumClasses:    19,
				MaxWait:       5 * time.Minute,
				Ordered:       true,
				Seed:          42,
				GammaStrength: 0.1,
				CropSize:      256,
			},
			wantErr: false,
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				ImageDir:  "/config/images",
				TargetDir: "/config/targets",
			},
			changed: map[string]bool{"image-dir": true},
			initial: Config{
				ImageDir: "/flag/images",
			},
			expected: Config{
				ImageDir:  "/flag/images", // unchanged because flag was set
				TargetDir: "/config/targets",
			},
			wantErr: false,
		},
		{
			name: "returns error for invalid duration",
			fileConfig: FileConfig{
				MaxWait: "not-a-duration",
			},
			changed: map[string]bool{},
			initial: Config{},
			wantErr: true,
		},
		{
			name:       "empty file config leaves defaults alone",
			fileConfig: FileConfig{},
			changed:    map[string]bool{},
			initial:    DefaultConfig(),
			expected:   DefaultConfig(),
			wantErr:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)

			if (err != nil) != tt.wantErr {
				t.Fatalf("ApplyFileConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if cfg != tt.expected {
				t.Errorf("ApplyFileConfig() = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

func TestLoadFileConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
image_dir = "/data/images"
target_dir = "/data/targets"
num_classes = 19
batch_size = 16
ordered = true
max_wait = "30s"

[augmentation]
gamma_strength = 0.1
crop_size = 256
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}

	if fc.ImageDir != "/data/images" {
		t.Errorf("ImageDir = %v, want /data/images", fc.ImageDir)
	}
	if fc.NumClasses != 19 {
		t.Errorf("NumClasses = %v, want 19", fc.NumClasses)
	}
	if fc.Ordered == nil || !*fc.Ordered {
		t.Error("Ordered = nil/false, want true")
	}
	if fc.MaxWait != "30s" {
		t.Errorf("MaxWait = %v, want 30s", fc.MaxWait)
	}
	if fc.Augmentation.CropSize != 256 {
		t.Errorf("Augmentation.CropSize = %v, want 256", fc.Augmentation.CropSize)
	}
}

func TestLoadFileConfig_Missing(t *testing.T) {
	if _, err := LoadFileConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("LoadFileConfig() on missing file, want error")
	}
}

func TestLoadFileConfig_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("image_dir = ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFileConfig(path); err == nil {
		t.Error("LoadFileConfig() on malformed TOML, want error")
	}
}
