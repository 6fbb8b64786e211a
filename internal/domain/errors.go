package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmbeddingUnavailable signals an embedding provider failure. Retryable.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")
	// ErrVectorIndexUnavailable signals a vector index failure. Retryable; ranking fails closed.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")
	// ErrDuplicateResponse signals a second response to an already-responded introduction.
	ErrDuplicateResponse = errors.New("duplicate response")
	// ErrUnauthorized signals a transition attempt by an actor who is neither
	// participant nor system agent.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidOutcome signals outcome validation failure.
	ErrInvalidOutcome = errors.New("invalid outcome")
	// ErrInvalidTransition signals a state-machine transition not allowed from
	// the current status.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrIntroductionNotFound signals a missing introduction record.
	ErrIntroductionNotFound = errors.New("introduction not found")
	// ErrOutcomeNotFound signals a missing outcome record.
	ErrOutcomeNotFound = errors.New("outcome not found")
	// ErrProfileNotFound signals a missing member profile.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrWeightsNotFound signals a missing weights configuration version.
	ErrWeightsNotFound = errors.New("weights not found")
)

// InvalidOutcomeError wraps ErrInvalidOutcome with the concrete validation reason.
type InvalidOutcomeError struct {
	Reason string
}

func (e *InvalidOutcomeError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidOutcome.Error(), e.Reason)
}

func (e *InvalidOutcomeError) Unwrap() error { return ErrInvalidOutcome }

// NewInvalidOutcome creates an outcome validation error.
func NewInvalidOutcome(format string, args ...any) error {
	return &InvalidOutcomeError{Reason: fmt.Sprintf(format, args...)}
}

// Retryable reports whether an error is transient per the error taxonomy:
// only provider and index unavailability are retried, everything else is
// terminal for that call.
func Retryable(err error) bool {
	return errors.Is(err, ErrEmbeddingUnavailable) || errors.Is(err, ErrVectorIndexUnavailable)
}
