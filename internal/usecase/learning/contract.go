package learning

import (
	"context"

	"github.com/ainative-studio/publicfounders/internal/domain/intro"
	"github.com/ainative-studio/publicfounders/internal/domain/match"
	"github.com/ainative-studio/publicfounders/internal/domain/outcome"
)

// IntroductionLister reads completed introductions for a learning pass.
type IntroductionLister interface {
	ListByStatus(ctx context.Context, status intro.Status, limit int) ([]intro.Introduction, error)
}

// OutcomeReader batch-reads outcomes by introduction id.
type OutcomeReader interface {
	GetMulti(ctx context.Context, introductionIDs []string) ([]outcome.Outcome, error)
}

// WeightsStore resolves the active weights and persists proposals.
type WeightsStore interface {
	Active(ctx context.Context) (match.Weights, error)
	SaveProposal(ctx context.Context, p *match.Proposal) error
}
