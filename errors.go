package segfeed

import "github.com/seglab/segfeed/internal/domain"

// Errors returned by the public API; check with errors.Is.
var (
	// ErrDataset reports an unreadable or empty dataset root. Fatal at
	// Start.
	ErrDataset = domain.ErrDataset

	// ErrEpochDone signals that the current epoch is exhausted. Call
	// StartEpoch to begin the next pass.
	ErrEpochDone = domain.ErrEpochDone

	// ErrAlreadyRunning is returned when Start is called on a running loader.
	ErrAlreadyRunning = domain.ErrAlreadyRunning

	// ErrNotRunning is returned when an operation requires a running loader.
	ErrNotRunning = domain.ErrNotRunning

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = domain.ErrShutdownTimeout

	// ErrQueueTimeout is returned by NextBatch when Config.MaxWait expires.
	ErrQueueTimeout = domain.ErrQueueTimeout

	// ErrInvalidConfig wraps all configuration validation failures.
	ErrInvalidConfig = domain.ErrInvalidConfig
)

var errInvalidConfig = domain.ErrInvalidConfig
