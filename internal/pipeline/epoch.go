package pipeline

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/seglab/segfeed/internal/dataset"
	"github.com/seglab/segfeed/internal/decode"
	"github.com/seglab/segfeed/internal/domain"
	"github.com/seglab/segfeed/internal/transform"
	"github.com/seglab/segfeed/pkg/log"
)

// Config holds the pipeline tuning parameters for one epoch.
type Config struct {
	// Workers is the number of concurrent decode+transform goroutines.
	Workers int

	// QueueCapacity bounds the processed-sample channel between the
	// workers and the assembler.
	QueueCapacity int

	// Prefetch bounds how many assembled batches may wait for the consumer.
	Prefetch int

	// BatchSize is the number of samples stacked per batch.
	BatchSize int

	// NumClasses is the width of the one-hot target encoding.
	NumClasses int

	// EmitPartial emits a short final batch instead of dropping the
	// samples left over at end of epoch.
	EmitPartial bool

	// Ordered restores enumeration order before batch assembly.
	Ordered bool
}

// Stats counts per-epoch pipeline events. All fields are updated
// atomically while the epoch runs.
type Stats struct {
	Loaded          atomic.Uint64
	DecodeErrors    atomic.Uint64
	TransformErrors atomic.Uint64
	Batches         atomic.Uint64
}

// item carries one claimed sample slot from a worker to the assembler.
// sample is nil when the slot was skipped; the reorder buffer needs the
// tombstone to keep sequence numbers gapless.
type item struct {
	seq    uint64
	sample *domain.Sample
}

// Epoch is one running pass over the dataset.
type Epoch struct {
	// Batches yields assembled batches and is closed when the epoch is
	// exhausted or cancelled.
	Batches <-chan *domain.Batch

	// Stats exposes the running event counters.
	Stats *Stats

	cancel context.CancelFunc
	done   chan struct{}
}

// Start launches the workers and the assembler for one epoch. The epoch
// stops when the iterator is exhausted, ctx is cancelled, or Cancel is
// called.
func Start(
	ctx context.Context,
	cfg Config,
	it dataset.Iterator,
	loader *decode.PairLoader,
	augmentor transform.Augmentor,
	logger log.Logger,
) *Epoch {
	epochCtx, cancel := context.WithCancel(ctx)

	samples := make(chan item, cfg.QueueCapacity)
	batches := make(chan *domain.Batch, cfg.Prefetch)
	stats := &Stats{}

	e := &Epoch{
		Batches: batches,
		Stats:   stats,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	g, workerCtx := errgroup.WithContext(epochCtx)
	for i := 0; i < cfg.Workers; i++ {
		g.Go(func() error {
			runWorker(workerCtx, it, loader, augmentor, samples, stats, logger)
			return nil
		})
	}

	go func() {
		_ = g.Wait()
		close(samples)
	}()

	go func() {
		defer close(e.done)
		defer close(batches)
		runAssembler(epochCtx, cfg, samples, batches, stats, logger)
	}()

	return e
}

// Cancel aborts the epoch. Workers abandon in-flight samples at the next
// blocking point; nothing partial is ever published.
func (e *Epoch) Cancel() {
	e.cancel()
}

// Done returns a channel closed once every epoch goroutine has exited.
func (e *Epoch) Done() <-chan struct{} {
	return e.done
}

// runWorker claims references until the iterator is exhausted or the
// context is cancelled. Decode and transform failures are logged, counted
// and pushed as tombstones so ordered assembly never stalls on a gap.
func runWorker(
	ctx context.Context,
	it dataset.Iterator,
	loader *decode.PairLoader,
	augmentor transform.Augmentor,
	out chan<- item,
	stats *Stats,
	logger log.Logger,
) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		ref, seq, ok := it.Next()
		if !ok {
			return
		}

		sample := process(ref, seq, loader, augmentor, stats, logger)

		select {
		case out <- item{seq: seq, sample: sample}:
		case <-ctx.Done():
			return
		}
	}
}

// process decodes and transforms one reference. Returns nil if the sample
// was skipped.
func process(
	ref domain.SampleRef,
	seq uint64,
	loader *decode.PairLoader,
	augmentor transform.Augmentor,
	stats *Stats,
	logger log.Logger,
) *domain.Sample {
	sample, err := loader.Load(ref)
	if err != nil {
		stats.DecodeErrors.Add(1)
		logger.Warn("skipping undecodable sample",
			log.String("image", ref.ImagePath),
			log.Err(err))
		return nil
	}
	sample.Seq = seq

	if augmentor != nil {
		if err := augmentor.Augment(sample); err != nil {
			stats.TransformErrors.Add(1)
			terr := &domain.TransformError{Ref: ref, Err: err}
			logger.Warn("skipping untransformable sample", log.Err(terr))
			return nil
		}
	}

	stats.Loaded.Add(1)
	return sample
}

// runAssembler drains processed samples, restores order when configured,
// and publishes stacked batches.
func runAssembler(
	ctx context.Context,
	cfg Config,
	samples <-chan item,
	batches chan<- *domain.Batch,
	stats *Stats,
	logger log.Logger,
) {
	builder := domain.NewBatchBuilder(cfg.BatchSize, cfg.NumClasses)

	var reorder *reorderBuffer
	if cfg.Ordered {
		reorder = newReorderBuffer()
	}

	publish := func(b *domain.Batch) bool {
		select {
		case batches <- b:
			stats.Batches.Add(1)
			return true
		case <-ctx.Done():
			return false
		}
	}

	add := func(s *domain.Sample) bool {
		if err := builder.Add(s); err != nil {
			stats.TransformErrors.Add(1)
			terr := &domain.TransformError{Ref: s.Ref, Err: err}
			logger.Warn("dropping sample with mismatched dimensions", log.Err(terr))
			return true
		}
		if !builder.Full() {
			return true
		}
		return publish(builder.Build())
	}

	for {
		select {
		case <-ctx.Done():
			return

		case it, ok := <-samples:
			if !ok {
				// Epoch exhausted. Flush whatever order still holds back,
				// then apply the partial-batch policy.
				if reorder != nil {
					for _, s := range reorder.Flush() {
						if !add(s) {
							return
						}
					}
				}
				if cfg.EmitPartial && !builder.Empty() {
					publish(builder.Build())
				} else if !builder.Empty() {
					logger.Debug("dropping partial batch at end of epoch",
						log.Int("samples", builder.Size()))
				}
				return
			}

			if reorder != nil {
				for _, s := range reorder.Push(it) {
					if !add(s) {
						return
					}
				}
			} else if it.sample != nil {
				if !add(it.sample) {
					return
				}
			}
		}
	}
}
