package segfeed

import (
	"github.com/seglab/segfeed/internal/transform"
	"github.com/seglab/segfeed/pkg/log"
)

// Augmentor mutates a decoded sample in place. Implement it to plug a
// custom augmentation chain into the pipeline.
type Augmentor = transform.Augmentor

// Option configures optional behavior of a Loader.
type Option func(*options)

type options struct {
	logger    log.Logger
	augmentor Augmentor
}

func defaultOptions() options {
	return options{
		logger: log.NewNoopLogger(),
	}
}

// WithLogger routes pipeline logs into the given logger. The default
// discards all logs.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithAugmentor replaces the augmentation chain built from
// Config.Augmentation. The augmentor must be safe for concurrent use; it
// is shared by all workers.
func WithAugmentor(a Augmentor) Option {
	return func(o *options) {
		o.augmentor = a
	}
}
