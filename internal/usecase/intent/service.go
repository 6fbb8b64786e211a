package intent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	domint "github.com/ainative-studio/publicfounders/internal/domain/intent"
)

// Input is the text and context an intent vector is derived from.
type Input struct {
	OwnerID  string
	Kind     domint.SourceKind
	Text     string
	GoalType string
	Industry string
	Stage    string
	Urgency  string
}

// Service ingests member artifacts into the vector index. Vectors are
// immutable: an edited artifact gets a fresh vector and the stale one is
// deleted.
type Service struct {
	vectors VectorStore
	embed   Embedder
	now     func() time.Time
}

// New creates an intent ingestion service.
func New(vectors VectorStore, embed Embedder) *Service {
	return &Service{vectors: vectors, embed: embed, now: time.Now}
}

// WithClock overrides the time source. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Ingest embeds the artifact text and stores the resulting vector.
func (s *Service) Ingest(ctx context.Context, in Input) (domint.Vector, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return domint.Vector{}, fmt.Errorf("intent text is required")
	}

	embResult, err := s.embed.Embed(ctx, text)
	if err != nil {
		return domint.Vector{}, fmt.Errorf("embed intent: %w", err)
	}

	v, err := domint.New(uuid.NewString(), in.OwnerID, in.Kind, embResult.Embedding, domint.Metadata{
		GoalType:  in.GoalType,
		Industry:  in.Industry,
		Stage:     in.Stage,
		Urgency:   in.Urgency,
		CreatedAt: s.now(),
	})
	if err != nil {
		return domint.Vector{}, err
	}

	if err := s.vectors.Upsert(ctx, &v); err != nil {
		return domint.Vector{}, err
	}
	return v, nil
}

// Replace ingests the edited artifact and removes the stale vector. The new
// vector lands first so searches never see a gap.
func (s *Service) Replace(ctx context.Context, staleID string, in Input) (domint.Vector, error) {
	v, err := s.Ingest(ctx, in)
	if err != nil {
		return domint.Vector{}, err
	}
	if err := s.vectors.Delete(ctx, staleID); err != nil {
		return domint.Vector{}, fmt.Errorf("delete stale vector: %w", err)
	}
	return v, nil
}

// Delete removes a vector, for artifact deletion or member offboarding.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.vectors.Delete(ctx, id)
}
