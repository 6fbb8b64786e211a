package outcomes

import (
	"context"

	"github.com/ainative-studio/publicfounders/internal/domain/intro"
	"github.com/ainative-studio/publicfounders/internal/domain/outcome"
)

// OutcomeStore persists outcomes, one per introduction.
type OutcomeStore interface {
	Create(ctx context.Context, o *outcome.Outcome) error
	Update(ctx context.Context, o *outcome.Outcome) error
	Get(ctx context.Context, introductionID string) (outcome.Outcome, error)
}

// IntroductionStore reads and transitions the owning introduction.
type IntroductionStore interface {
	Get(ctx context.Context, id string) (intro.Introduction, error)
	TransitionFrom(ctx context.Context, i *intro.Introduction, fromStatus intro.Status) (bool, error)
}
