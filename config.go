package segfeed

import (
	"fmt"
	"time"

	"github.com/seglab/segfeed/internal/decode"
)

// AugmentationConfig toggles the individual augmentation steps. A zero
// value for a step disables it; enabled steps run in the field order
// below, mirroring the order they are listed here.
type AugmentationConfig struct {
	// SubsampleFactor shrinks samples by an integer factor (0 or 1 disables).
	SubsampleFactor int

	// GammaStrength in [0, 0.5] enables random gamma correction.
	GammaStrength float64

	// TranslationOffset in pixels enables random translation.
	TranslationOffset int

	// ZoomFactor enables random zooming in [1-f, 1+f].
	ZoomFactor float64

	// RotationMaxAngle in degrees enables random rotation.
	RotationMaxAngle float64

	// SaturationMin/Max enable random saturation rescaling.
	SaturationMin float64
	SaturationMax float64

	// HueMin/Max in degrees enable random hue shifts.
	HueMin float64
	HueMax float64

	// CropSize enables entropy-weighted square crops of this size.
	CropSize int
}

// enabled reports whether any augmentation step is configured.
func (a AugmentationConfig) enabled() bool {
	return a.SubsampleFactor > 1 ||
		a.GammaStrength > 0 ||
		a.TranslationOffset > 0 ||
		a.ZoomFactor > 0 ||
		a.RotationMaxAngle > 0 ||
		a.SaturationMin != 0 || a.SaturationMax != 0 ||
		a.HueMin != 0 || a.HueMax != 0 ||
		a.CropSize > 0
}

// Config holds the configuration for a Loader.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config struct {
	// ImageDir and TargetDir are the dataset directories. Pairs are
	// matched by file stem.
	ImageDir  string
	TargetDir string

	// BatchSize is the number of samples stacked per batch.
	BatchSize int

	// NumClasses is the width of the one-hot target encoding.
	NumClasses int

	// Workers bounds the decode/transform concurrency. Never scales with
	// the dataset size.
	Workers int

	// QueueCapacity bounds the processed-sample queue.
	QueueCapacity int

	// Prefetch bounds how many assembled batches may wait for the consumer.
	Prefetch int

	// Shuffle draws a fresh seeded permutation every epoch. Ignored when
	// SampleWeights is set.
	Shuffle bool

	// SampleWeights switches to weighted sampling with replacement; one
	// weight per enumerated pair, in enumeration order.
	SampleWeights []float64

	// Ordered restores enumeration order at the cost of a reorder buffer.
	// Default is best-effort ordering across the racing workers.
	Ordered bool

	// EmitPartial emits a short final batch instead of dropping leftover
	// samples at end of epoch. Default drop.
	EmitPartial bool

	// MaxWait bounds how long NextBatch blocks before returning
	// ErrQueueTimeout. Zero means wait indefinitely.
	MaxWait time.Duration

	// WatchDataset rescans the dataset on epoch start after files under
	// the dataset directories change.
	WatchDataset bool

	// TargetWidth/TargetHeight force every decoded sample to a fixed size.
	// Zero keeps the stored size (the dataset must then be uniform).
	TargetWidth  int
	TargetHeight int

	// Interpolation selects the image resize kernel: "bilinear",
	// "nearest" or "catmullrom". Targets always use nearest.
	Interpolation string

	// ValueMap, when set, remaps stored label values through a 256-entry
	// table before training.
	ValueMap []uint8

	// ColorMap, when set, decodes color-coded labels to class ids.
	// Takes precedence over ValueMap.
	ColorMap map[ColorKey]uint8

	// Augmentation toggles the augmentation steps.
	Augmentation AugmentationConfig

	// Seed seeds the first epoch; StartEpoch overrides it per epoch.
	Seed int64
}

// ColorKey is an RGB color used as a ColorMap key.
type ColorKey = decode.RGB

// DefaultConfig returns a Config with default values. ImageDir, TargetDir
// and NumClasses must still be set.
func DefaultConfig() Config {
	return Config{
		BatchSize:     8,
		Workers:       4,
		QueueCapacity: 32,
		Prefetch:      2,
		Shuffle:       true,
		Interpolation: "bilinear",
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.ImageDir == "" {
		return fmt.Errorf("%w: image-dir is required", errInvalidConfig)
	}
	if c.TargetDir == "" {
		return fmt.Errorf("%w: target-dir is required", errInvalidConfig)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive", errInvalidConfig)
	}
	if c.NumClasses <= 0 || c.NumClasses >= 255 {
		return fmt.Errorf("%w: num-classes must be in [1, 254]", errInvalidConfig)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("%w: worker count must be positive", errInvalidConfig)
	}
	if c.QueueCapacity <= 0 {
		return fmt.Errorf("%w: queue capacity must be positive", errInvalidConfig)
	}
	if c.Prefetch <= 0 {
		return fmt.Errorf("%w: prefetch must be positive", errInvalidConfig)
	}
	if c.MaxWait < 0 {
		return fmt.Errorf("%w: max-wait must not be negative", errInvalidConfig)
	}
	if (c.TargetWidth > 0) != (c.TargetHeight > 0) {
		return fmt.Errorf("%w: target width and height must be set together", errInvalidConfig)
	}
	if _, err := decode.ParseInterpolation(c.Interpolation); err != nil {
		return fmt.Errorf("%w: %v", errInvalidConfig, err)
	}
	if c.ValueMap != nil && len(c.ValueMap) != 256 {
		return fmt.Errorf("%w: value map must have exactly 256 entries", errInvalidConfig)
	}
	if a := c.Augmentation; a.SaturationMin > a.SaturationMax || a.HueMin > a.HueMax {
		return fmt.Errorf("%w: augmentation ranges must have min <= max", errInvalidConfig)
	}
	return nil
}
