package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestRetryable(t *testing.T) {
	if !Retryable(ErrEmbeddingUnavailable) {
		t.Error("embedding unavailability must be retryable")
	}
	if !Retryable(fmt.Errorf("search: %w", ErrVectorIndexUnavailable)) {
		t.Error("wrapped index unavailability must be retryable")
	}
	if Retryable(ErrDuplicateResponse) {
		t.Error("duplicate response is terminal")
	}
	if Retryable(errors.New("random")) {
		t.Error("unknown errors are terminal")
	}
}

func TestInvalidOutcomeError(t *testing.T) {
	err := NewInvalidOutcome("rating must be in [1,5], got %d", 7)
	if !errors.Is(err, ErrInvalidOutcome) {
		t.Fatal("must unwrap to ErrInvalidOutcome")
	}

	var ioe *InvalidOutcomeError
	if !errors.As(err, &ioe) {
		t.Fatal("must be an *InvalidOutcomeError")
	}
	if ioe.Reason != "rating must be in [1,5], got 7" {
		t.Errorf("reason = %q", ioe.Reason)
	}
}
