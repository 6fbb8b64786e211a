package ranker

import (
	"context"

	"github.com/ainative-studio/publicfounders/internal/domain/intent"
	"github.com/ainative-studio/publicfounders/internal/domain/match"
	"github.com/ainative-studio/publicfounders/internal/domain/profile"
	"github.com/ainative-studio/publicfounders/internal/repository/intentvec"
)

// VectorIndex reads intent vectors and runs neighbor searches.
type VectorIndex interface {
	ActiveByOwner(ctx context.Context, ownerID string) ([]intent.Vector, error)
	Search(ctx context.Context, vector []float32, spec intentvec.SearchSpec) ([]intent.Neighbor, error)
}

// ProfileReader fetches member profiles.
type ProfileReader interface {
	Get(ctx context.Context, memberID string) (profile.Profile, error)
}

// Scorer computes the composite score for a pair.
type Scorer interface {
	Score(subject, candidate *profile.Profile, relevance float64, w match.Weights) (match.Score, bool)
	RelevanceFloor() float64
}

// WeightsSource resolves the active scoring weights.
type WeightsSource interface {
	Active(ctx context.Context) (match.Weights, error)
}
