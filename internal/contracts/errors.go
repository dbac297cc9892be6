package contracts

import "errors"

// Sentinel errors shared across the pipeline. Callers classify
// failures with errors.Is and decide whether to skip, retry or abort.
var (
	// ErrInsufficientData means the instrument has too little price
	// history to analyze. The instrument is skipped, never retried.
	ErrInsufficientData = errors.New("insufficient price history")

	// ErrDataUnavailable means a market data fetch failed. Transient,
	// eligible for retry.
	ErrDataUnavailable = errors.New("market data unavailable")

	// ErrUniverseUnavailable means every universe source failed.
	// A cycle cannot start without a universe.
	ErrUniverseUnavailable = errors.New("universe unavailable")

	// ErrCollaboratorUnreachable means the universe provider or the
	// store is down at cycle start. Fatal, the cycle aborts before
	// any mutation.
	ErrCollaboratorUnreachable = errors.New("collaborator unreachable")

	// ErrValidation means an input failed a precondition check
	ErrValidation = errors.New("validation failed")

	// ErrPersistence wraps database failures
	ErrPersistence = errors.New("persistence failed")

	// ErrNotFound means the requested row does not exist
	ErrNotFound = errors.New("not found")
)
