package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (SEGFEED_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("image-dir", os.Getenv("SEGFEED_IMAGE_DIR"), &cfg.ImageDir)
	s.setString("target-dir", os.Getenv("SEGFEED_TARGET_DIR"), &cfg.TargetDir)
	s.setString("interpolation", os.Getenv("SEGFEED_INTERPOLATION"), &cfg.Interpolation)

	if err := s.setIntFromString("batch-size", os.Getenv("SEGFEED_BATCH_SIZE"), &cfg.BatchSize); err != nil {
		return err
	}
	if err := s.setIntFromString("num-classes", os.Getenv("SEGFEED_NUM_CLASSES"), &cfg.NumClasses); err != nil {
		return err
	}
	if err := s.setIntFromString("workers", os.Getenv("SEGFEED_WORKERS"), &cfg.Workers); err != nil {
		return err
	}
	if err := s.setIntFromString("queue-capacity", os.Getenv("SEGFEED_QUEUE_CAPACITY"), &cfg.QueueCap); err != nil {
		return err
	}
	if err := s.setIntFromString("prefetch", os.Getenv("SEGFEED_PREFETCH"), &cfg.Prefetch); err != nil {
		return err
	}
	if err := s.setIntFromString("target-width", os.Getenv("SEGFEED_TARGET_WIDTH"), &cfg.TargetWidth); err != nil {
		return err
	}
	if err := s.setIntFromString("target-height", os.Getenv("SEGFEED_TARGET_HEIGHT"), &cfg.TargetHeight); err != nil {
		return err
	}
	if err := s.setIntFromString("epochs", os.Getenv("SEGFEED_EPOCHS"), &cfg.Epochs); err != nil {
		return err
	}
	if err := s.setInt64FromString("seed", os.Getenv("SEGFEED_SEED"), &cfg.Seed); err != nil {
		return err
	}

	if err := s.setDuration("max-wait", os.Getenv("SEGFEED_MAX_WAIT"), &cfg.MaxWait); err != nil {
		return err
	}

	s.setBoolFromString("shuffle", os.Getenv("SEGFEED_SHUFFLE"), &cfg.Shuffle)
	s.setBoolFromString("ordered", os.Getenv("SEGFEED_ORDERED"), &cfg.Ordered)
	s.setBoolFromString("emit-partial", os.Getenv("SEGFEED_EMIT_PARTIAL"), &cfg.EmitPartial)
	s.setBoolFromString("watch", os.Getenv("SEGFEED_WATCH"), &cfg.Watch)

	return nil
}
