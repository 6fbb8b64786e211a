package embedding

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ainative-studio/publicfounders/internal/domain"
)

type mockEmbedder struct {
	results []error // one entry per attempt; nil means success
	calls   int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	err := m.results[m.calls]
	m.calls++
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{Embedding: []float32{1}}, nil
}

func newTestRetry(inner *mockEmbedder, attempts int) (*RetryEmbedder, *[]time.Duration) {
	r := NewRetryEmbedder(inner, "openai", attempts, time.Second, zap.NewNop())
	var delays []time.Duration
	r.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	return r, &delays
}

func TestEmbed_FirstAttemptSucceeds(t *testing.T) {
	inner := &mockEmbedder{results: []error{nil}}
	r, delays := newTestRetry(inner, 3)

	result, err := r.Embed(context.Background(), "text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 1 {
		t.Errorf("embedding len = %d, want 1", len(result.Embedding))
	}
	if len(*delays) != 0 {
		t.Error("no backoff expected on first success")
	}
}

func TestEmbed_RetriesTransientWithExponentialBackoff(t *testing.T) {
	inner := &mockEmbedder{results: []error{
		domain.ErrEmbeddingUnavailable,
		domain.ErrEmbeddingUnavailable,
		nil,
	}}
	r, delays := newTestRetry(inner, 3)

	_, err := r.Embed(context.Background(), "text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 3 {
		t.Errorf("calls = %d, want 3", inner.calls)
	}
	want := []time.Duration{time.Second, 2 * time.Second}
	if len(*delays) != len(want) {
		t.Fatalf("delays = %v, want %v", *delays, want)
	}
	for i := range want {
		if (*delays)[i] != want[i] {
			t.Errorf("delay[%d] = %v, want %v", i, (*delays)[i], want[i])
		}
	}
}

func TestEmbed_ExhaustsAttempts(t *testing.T) {
	inner := &mockEmbedder{results: []error{
		domain.ErrEmbeddingUnavailable,
		domain.ErrEmbeddingUnavailable,
		domain.ErrEmbeddingUnavailable,
	}}
	r, _ := newTestRetry(inner, 3)

	_, err := r.Embed(context.Background(), "text")
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable, got %v", err)
	}
	if inner.calls != 3 {
		t.Errorf("calls = %d, want hard maximum 3", inner.calls)
	}
}

func TestEmbed_TerminalErrorNotRetried(t *testing.T) {
	terminal := errors.New("invalid api key")
	inner := &mockEmbedder{results: []error{terminal}}
	r, delays := newTestRetry(inner, 3)

	_, err := r.Embed(context.Background(), "text")
	if !errors.Is(err, terminal) {
		t.Fatalf("expected terminal error, got %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("calls = %d, want 1 for a terminal error", inner.calls)
	}
	if len(*delays) != 0 {
		t.Error("terminal errors must not back off")
	}
}

func TestEmbed_CancelledDuringBackoff(t *testing.T) {
	inner := &mockEmbedder{results: []error{domain.ErrEmbeddingUnavailable}}
	r := NewRetryEmbedder(inner, "openai", 3, time.Second, zap.NewNop())
	r.sleep = func(ctx context.Context, _ time.Duration) error {
		return context.Canceled
	}

	_, err := r.Embed(context.Background(), "text")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("calls = %d, want 1 after cancellation", inner.calls)
	}
}

func TestNewRetryEmbedder_Defaults(t *testing.T) {
	r := NewRetryEmbedder(&mockEmbedder{}, "openai", 0, 0, zap.NewNop())
	if r.maxAttempts != DefaultMaxAttempts {
		t.Errorf("maxAttempts = %d, want %d", r.maxAttempts, DefaultMaxAttempts)
	}
	if r.backoffBase != DefaultBackoffBase {
		t.Errorf("backoffBase = %v, want %v", r.backoffBase, DefaultBackoffBase)
	}
}
