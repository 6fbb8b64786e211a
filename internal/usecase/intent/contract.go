package intent

import (
	"context"

	"github.com/ainative-studio/publicfounders/internal/domain"
	domint "github.com/ainative-studio/publicfounders/internal/domain/intent"
)

// VectorStore persists intent vectors.
type VectorStore interface {
	Upsert(ctx context.Context, v *domint.Vector) error
	Delete(ctx context.Context, id string) error
}

// Embedder vectorizes text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
