package cliconfig

import (
	"testing"
	"time"
)

func TestApplyEnvConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		changed  map[string]bool
		initial  Config
		expected Config
		wantErr  bool
	}{
		{
			name: "applies all valid env vars",
			envVars: map[string]string{
				"SEGFEED_IMAGE_DIR":   "/env/images",
				"SEGFEED_TARGET_DIR":  "/env/targets",
				"SEGFEED_BATCH_SIZE":  "16",
				"SEGFEED_NUM_CLASSES": "19",
				"SEGFEED_MAX_WAIT":    "10m",
				"SEGFEED_SHUFFLE":     "true",
				"SEGFEED_SEED":        "-7",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				ImageDir:   "/env/images",
				TargetDir:  "/env/targets",
				BatchSize:  16,
				NumClasses: 19,
				MaxWait:    10 * time.Minute,
				Shuffle:    true,
				Seed:       -7,
			},
			wantErr: false,
		},
		{
			name: "respects changed flags",
			envVars: map[string]string{
				"SEGFEED_IMAGE_DIR":  "/env/images",
				"SEGFEED_BATCH_SIZE": "16",
			},
			changed: map[string]bool{"image-dir": true},
			initial: Config{
				ImageDir: "/flag/images",
			},
			expected: Config{
				ImageDir:  "/flag/images",
				BatchSize: 16,
			},
			wantErr: false,
		},
		{
			name: "returns error for invalid duration",
			envVars: map[string]string{
				"SEGFEED_MAX_WAIT": "not-a-duration",
			},
			changed:  map[string]bool{},
			initial:  Config{},
			expected: Config{},
			wantErr:  true,
		},
		{
			name: "returns error for invalid int",
			envVars: map[string]string{
				"SEGFEED_WORKERS": "not-a-number",
			},
			changed:  map[string]bool{},
			initial:  Config{},
			expected: Config{},
			wantErr:  true,
		},
		{
			name: "returns error for invalid seed",
			envVars: map[string]string{
				"SEGFEED_SEED": "not-a-number",
			},
			changed:  map[string]bool{},
			initial:  Config{},
			expected: Config{},
			wantErr:  true,
		},
		{
			name: "ignores non-positive ints",
			envVars: map[string]string{
				"SEGFEED_BATCH_SIZE": "0",
				"SEGFEED_WORKERS":    "-3",
			},
			changed:  map[string]bool{},
			initial:  Config{BatchSize: 8, Workers: 4},
			expected: Config{BatchSize: 8, Workers: 4},
			wantErr:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := tt.initial
			err := ApplyEnvConfig(&cfg, tt.changed)

			if (err != nil) != tt.wantErr {
				t.Fatalf("ApplyEnvConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if cfg != tt.expected {
				t.Errorf("ApplyEnvConfig() = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}
