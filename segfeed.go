// Package segfeed loads and pre-processes semantic segmentation training
// data asynchronously.
//
// A Loader enumerates image/target pairs under a dataset root, decodes and
// augments them on a bounded worker pool ahead of consumption, and hands
// the training loop stacked float32 tensors one batch at a time:
//
//	cfg := segfeed.DefaultConfig()
//	cfg.ImageDir = "/data/leftImg8bit/train"
//	cfg.TargetDir = "/data/gtFine/train"
//	cfg.NumClasses = 19
//
//	loader, err := segfeed.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := loader.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer loader.Stop()
//
//	for epoch := int64(0); epoch < 90; epoch++ {
//	    for {
//	        batch, err := loader.NextBatch(ctx)
//	        if errors.Is(err, segfeed.ErrEpochDone) {
//	            break
//	        }
//	        if err != nil {
//	            log.Fatal(err)
//	        }
//	        step(batch.Images, batch.Targets)
//	    }
//	    if err := loader.StartEpoch(epoch + 1); err != nil {
//	        log.Fatal(err)
//	    }
//	}
package segfeed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/seglab/segfeed/internal/dataset"
	"github.com/seglab/segfeed/internal/decode"
	"github.com/seglab/segfeed/internal/domain"
	"github.com/seglab/segfeed/internal/pipeline"
	"github.com/seglab/segfeed/internal/transform"
	"github.com/seglab/segfeed/pkg/log"
)

// Batch is a group of processed samples stacked for one training step.
type Batch = domain.Batch

// SampleRef identifies one dataset entry.
type SampleRef = domain.SampleRef

// State represents the lifecycle state of a Loader.
type State = pipeline.State

// Lifecycle states.
const (
	StateStopped  = pipeline.StateStopped
	StateStarting = pipeline.StateStarting
	StateRunning  = pipeline.StateRunning
	StateStopping = pipeline.StateStopping
	StateCrashed  = pipeline.StateCrashed
)

// Loader is an asynchronous data loader for semantic segmentation
// training. Use New to create one, Start to scan the dataset and launch
// the first epoch, and NextBatch to pull batches.
type Loader struct {
	config    Config
	opts      options
	logger    log.Logger
	lifecycle *pipeline.Lifecycle

	mu       sync.Mutex // guards refs, iterator, epoch, runCtx
	refs     []domain.SampleRef
	iterator dataset.Iterator
	watcher  *dataset.Watcher
	epoch    *pipeline.Epoch
	runCtx   context.Context
	cancel   context.CancelFunc

	nextMu sync.Mutex // serializes NextBatch across consumers
}

// New creates a Loader with the given configuration.
// The loader is created in StateStopped; call Start to begin loading.
// Returns an error if the configuration is invalid.
func New(cfg Config, opts ...Option) (*Loader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Loader{
		config:    cfg,
		opts:      o,
		logger:    o.logger,
		lifecycle: pipeline.NewLifecycle(o.logger),
	}, nil
}

// Start scans the dataset, launches the first epoch seeded with
// Config.Seed, and transitions to StateRunning. The provided context
// bounds the lifetime of all loading; cancelling it stops the loader.
func (l *Loader) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}
	if err := l.lifecycle.TransitionTo(pipeline.StateStarting, "Start() called"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)

	refs, err := dataset.Scan(l.config.ImageDir, l.config.TargetDir)
	if err != nil {
		cancel()
		_ = l.lifecycle.TransitionTo(pipeline.StateCrashed, "dataset scan failed")
		return err
	}

	iterator, err := l.buildIterator(refs, l.config.Seed)
	if err != nil {
		cancel()
		_ = l.lifecycle.TransitionTo(pipeline.StateCrashed, "iterator setup failed")
		return err
	}

	if l.config.WatchDataset {
		watcher, err := dataset.NewWatcher(
			[]string{l.config.ImageDir, l.config.TargetDir}, l.logger)
		if err != nil {
			cancel()
			_ = l.lifecycle.TransitionTo(pipeline.StateCrashed, "dataset watcher failed")
			return err
		}
		watcher.Start(runCtx)
		l.watcher = watcher
	}

	l.runCtx = runCtx
	l.cancel = cancel
	l.lifecycle.SetCancel(cancel)
	l.refs = refs
	l.iterator = iterator

	l.logger.Info("dataset scanned",
		log.Int("pairs", len(refs)),
		log.Int("batches", len(refs)/l.config.BatchSize))

	if err := l.lifecycle.TransitionTo(pipeline.StateRunning, "dataset ready"); err != nil {
		cancel()
		return err
	}

	l.launchEpochLocked(l.config.Seed)
	return nil
}

// StartEpoch aborts the current epoch, resets the sample source with the
// given seed, and restarts all workers. If dataset watching is enabled and
// files changed, the dataset is rescanned first.
func (l *Loader) StartEpoch(seed int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.lifecycle.State() != pipeline.StateRunning {
		return domain.ErrNotRunning
	}

	l.stopEpochLocked()

	if l.watcher != nil && l.watcher.Dirty() {
		refs, err := dataset.Scan(l.config.ImageDir, l.config.TargetDir)
		if err != nil {
			return err
		}
		iterator, err := l.buildIterator(refs, seed)
		if err != nil {
			return err
		}
		l.refs = refs
		l.iterator = iterator
		l.watcher.ClearDirty()
		l.logger.Info("dataset rescanned", log.Int("pairs", len(refs)))
	} else {
		l.iterator.Reset(seed)
	}

	l.launchEpochLocked(seed)
	return nil
}

// NextBatch blocks until the next batch is ready and returns it.
// It returns ErrEpochDone once the epoch is exhausted or the loader is
// stopped, ErrQueueTimeout when Config.MaxWait expires, or the context
// error on cancellation. Concurrent callers are serialized; each batch is
// handed out exactly once.
func (l *Loader) NextBatch(ctx context.Context) (*Batch, error) {
	l.nextMu.Lock()
	defer l.nextMu.Unlock()

	l.mu.Lock()
	epoch := l.epoch
	l.mu.Unlock()

	if epoch == nil {
		return nil, domain.ErrNotRunning
	}

	var timeout <-chan time.Time
	if l.config.MaxWait > 0 {
		timer := time.NewTimer(l.config.MaxWait)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case batch, ok := <-epoch.Batches:
		if !ok {
			return nil, domain.ErrEpochDone
		}
		return batch, nil
	case <-timeout:
		return nil, domain.ErrQueueTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Stop gracefully shuts down the loader. In-flight work is abandoned, no
// partial batch is published, and any blocked NextBatch caller unblocks.
// Returns ErrShutdownTimeout if workers fail to exit in time.
func (l *Loader) Stop() error {
	l.mu.Lock()

	if !l.lifecycle.CanStop() {
		l.mu.Unlock()
		return domain.ErrNotRunning
	}
	if err := l.lifecycle.TransitionTo(pipeline.StateStopping, "Stop() called"); err != nil {
		l.mu.Unlock()
		return err
	}

	l.stopEpochLocked()
	if l.cancel != nil {
		l.cancel()
	}
	watcher := l.watcher
	l.watcher = nil
	l.mu.Unlock()

	if watcher != nil {
		if err := watcher.Close(); err != nil {
			l.logger.Warn("dataset watcher close failed", log.Err(err))
		}
	}

	err := l.lifecycle.WaitWithTimeout(pipeline.ShutdownTimeout)
	if err != nil {
		_ = l.lifecycle.TransitionTo(pipeline.StateCrashed, "shutdown timeout")
	} else {
		_ = l.lifecycle.TransitionTo(pipeline.StateStopped, "graceful shutdown")
	}
	return err
}

// NumBatches returns the number of batches one epoch yields, assuming no
// samples are dropped: floor(pairs / batch size), plus one short batch
// when EmitPartial is set and the division has a remainder.
func (l *Loader) NumBatches() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := len(l.refs) / l.config.BatchSize
	if l.config.EmitPartial && len(l.refs)%l.config.BatchSize != 0 {
		n++
	}
	return n
}

// NumSamples returns the number of enumerated image/target pairs.
func (l *Loader) NumSamples() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.refs)
}

// State returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (l *Loader) State() State {
	return l.lifecycle.State()
}

// EpochStats returns the event counters of the current epoch, or nil when
// no epoch is running.
func (l *Loader) EpochStats() *pipeline.Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.epoch == nil {
		return nil
	}
	return l.epoch.Stats
}

// launchEpochLocked starts the pipeline for one epoch. Callers hold l.mu.
func (l *Loader) launchEpochLocked(seed int64) {
	augmentor := l.opts.augmentor
	if augmentor == nil && l.config.Augmentation.enabled() {
		augmentor = buildAugmentor(l.config.Augmentation, l.config.NumClasses, seed)
	}

	epoch := pipeline.Start(
		l.runCtx,
		pipeline.Config{
			Workers:       l.config.Workers,
			QueueCapacity: l.config.QueueCapacity,
			Prefetch:      l.config.Prefetch,
			BatchSize:     l.config.BatchSize,
			NumClasses:    l.config.NumClasses,
			EmitPartial:   l.config.EmitPartial,
			Ordered:       l.config.Ordered,
		},
		l.iterator,
		l.buildPairLoader(),
		augmentor,
		l.logger,
	)

	l.lifecycle.AddWorker()
	go func() {
		<-epoch.Done()
		l.lifecycle.WorkerDone()
	}()

	l.epoch = epoch
	l.logger.Debug("epoch started", log.Int64("seed", seed))
}

// stopEpochLocked cancels the running epoch and waits for its goroutines.
// Callers hold l.mu.
func (l *Loader) stopEpochLocked() {
	if l.epoch == nil {
		return
	}
	l.epoch.Cancel()
	<-l.epoch.Done()
	l.epoch = nil
}

// buildIterator creates the iteration strategy for the given references.
func (l *Loader) buildIterator(refs []domain.SampleRef, seed int64) (dataset.Iterator, error) {
	if len(l.config.SampleWeights) > 0 {
		it, err := dataset.NewWeighted(refs, l.config.SampleWeights, seed)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
		}
		return it, nil
	}
	if l.config.Shuffle {
		return dataset.NewShuffled(refs, seed), nil
	}
	return dataset.NewSequential(refs), nil
}

// buildPairLoader wires the decoders from the configuration.
func (l *Loader) buildPairLoader() *decode.PairLoader {
	interp, _ := decode.ParseInterpolation(l.config.Interpolation)

	var target decode.TargetLoader
	switch {
	case l.config.ColorMap != nil:
		target = &decode.ColorMapLoader{
			Map:          l.config.ColorMap,
			TargetWidth:  l.config.TargetWidth,
			TargetHeight: l.config.TargetHeight,
		}
	case l.config.ValueMap != nil:
		loader := &decode.ValueMapLoader{
			TargetWidth:  l.config.TargetWidth,
			TargetHeight: l.config.TargetHeight,
		}
		copy(loader.Map[:], l.config.ValueMap)
		target = loader
	default:
		target = &decode.GrayLoader{
			TargetWidth:  l.config.TargetWidth,
			TargetHeight: l.config.TargetHeight,
		}
	}

	return &decode.PairLoader{
		Image: &decode.RGBLoader{
			TargetWidth:  l.config.TargetWidth,
			TargetHeight: l.config.TargetHeight,
			Interp:       interp,
		},
		Target: target,
	}
}

// buildAugmentor assembles the augmentation chain from the configuration.
// Each step gets a distinct seed derived from the epoch seed so a fixed
// seed reproduces the same stream of draws.
func buildAugmentor(a AugmentationConfig, numClasses int, seed int64) Augmentor {
	chain := transform.NewCombined()

	if a.SubsampleFactor > 1 {
		chain.Add(transform.NewSubsample(a.SubsampleFactor))
	}
	if a.GammaStrength > 0 {
		chain.Add(transform.NewGamma(a.GammaStrength, seed+1))
	}
	if a.TranslationOffset > 0 {
		chain.Add(transform.NewTranslation(a.TranslationOffset, seed+2))
	}
	if a.ZoomFactor > 0 {
		chain.Add(transform.NewZooming(a.ZoomFactor, seed+3))
	}
	if a.RotationMaxAngle > 0 {
		chain.Add(transform.NewRotation(a.RotationMaxAngle, seed+4))
	}
	if a.SaturationMin != 0 || a.SaturationMax != 0 {
		chain.Add(transform.NewSaturation(a.SaturationMin, a.SaturationMax, seed+5))
	}
	if a.HueMin != 0 || a.HueMax != 0 {
		chain.Add(transform.NewHue(a.HueMin, a.HueMax, seed+6))
	}
	if a.CropSize > 0 {
		chain.Add(transform.NewCrop(a.CropSize, numClasses, seed+7))
	}

	return chain
}
