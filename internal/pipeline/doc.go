// Package pipeline runs the concurrent decode/transform/batch machinery
// for one epoch at a time.
//
// An Epoch owns a pool of workers that claim sample references from an
// iterator, decode and transform them, and push the results into a bounded
// channel. An assembler goroutine drains that channel, optionally restores
// enumeration order, stacks batches, and publishes them on a second bounded
// channel that the consumer reads from. Backpressure on both channels is
// the only throttling mechanism.
//
// Per-sample failures are logged, counted and skipped; they never reach
// the consumer. Cancelling the epoch context unblocks every goroutine.
package pipeline
