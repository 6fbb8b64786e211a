package lifecycle

import (
	"context"
	"time"

	"github.com/ainative-studio/publicfounders/internal/domain/intro"
	"github.com/ainative-studio/publicfounders/internal/domain/match"
	"github.com/ainative-studio/publicfounders/internal/domain/profile"
)

// IntroductionStore persists introduction records.
type IntroductionStore interface {
	Create(ctx context.Context, i *intro.Introduction) error
	Get(ctx context.Context, id string) (intro.Introduction, error)
	TransitionFrom(ctx context.Context, i *intro.Introduction, fromStatus intro.Status) (bool, error)
	ListByStatusBefore(ctx context.Context, status intro.Status, field string, cutoff time.Time, limit int) ([]intro.Introduction, error)
}

// ProfileReader fetches member profiles for autonomy resolution.
type ProfileReader interface {
	Get(ctx context.Context, memberID string) (profile.Profile, error)
}

// Ranker produces the ranked candidate list for a subject.
type Ranker interface {
	Rank(ctx context.Context, subjectID string) ([]match.Score, error)
}

// Deliverer pushes a sent introduction to its channel. Delivery is an
// external collaborator; failures leave the introduction proposed.
type Deliverer interface {
	Deliver(ctx context.Context, i *intro.Introduction) error
}
