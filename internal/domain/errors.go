package domain

import (
	"errors"
	"fmt"
	"io"
)

// Domain errors returned by the public API; check with errors.Is.
var (
	// ErrDataset is returned when the dataset root is unreadable or
	// contains no usable image/target pairs. Fatal at initialization.
	ErrDataset = errors.New("segfeed: unreadable or empty dataset")

	// ErrAlreadyRunning is returned when Start() is called on a running loader.
	ErrAlreadyRunning = errors.New("segfeed: already running")

	// ErrNotRunning is returned when an operation requires a running loader.
	ErrNotRunning = errors.New("segfeed: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("segfeed: shutdown timeout")

	// ErrQueueTimeout is returned by NextBatch when Config.MaxWait is set
	// and no batch became ready in time.
	ErrQueueTimeout = errors.New("segfeed: batch wait timed out")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("segfeed: invalid configuration")
)

// ErrEpochDone signals that the current epoch is exhausted. The consumer
// should call StartEpoch to begin the next pass.
var ErrEpochDone = io.EOF

// DecodeError reports a sample that could not be decoded. Per-sample and
// recoverable: the pipeline logs it, skips the sample, and continues.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("segfeed: decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// TransformError reports a sample the transform stage rejected, typically
// because of incompatible dimensions. Per-sample and recoverable.
type TransformError struct {
	Ref SampleRef
	Err error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("segfeed: transform %s: %v", e.Ref.ImagePath, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }
