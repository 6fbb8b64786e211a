package publicfounders

import (
	"context"
	"time"

	domint "github.com/ainative-studio/publicfounders/internal/domain/intent"
	"github.com/ainative-studio/publicfounders/internal/domain/intro"
	"github.com/ainative-studio/publicfounders/internal/domain/outcome"
	"github.com/ainative-studio/publicfounders/internal/repository/weightstore"
	analyticsuc "github.com/ainative-studio/publicfounders/internal/usecase/analytics"
	intentuc "github.com/ainative-studio/publicfounders/internal/usecase/intent"
	learninguc "github.com/ainative-studio/publicfounders/internal/usecase/learning"
	lifecycleuc "github.com/ainative-studio/publicfounders/internal/usecase/lifecycle"
	outcomesuc "github.com/ainative-studio/publicfounders/internal/usecase/outcomes"
)

// IntentInput is the artifact text an intent vector is derived from.
type IntentInput struct {
	OwnerID  string
	Kind     string // founder, goal, ask, post
	Text     string
	GoalType string
	Industry string
	Stage    string
	Urgency  string
}

// IntentService ingests member artifacts into the vector index.
type IntentService struct {
	svc *intentuc.Service
}

// Ingest embeds and stores an intent vector, returning its id.
func (s *IntentService) Ingest(ctx context.Context, in IntentInput) (string, error) {
	kind, err := domint.ParseSourceKind(in.Kind)
	if err != nil {
		return "", err
	}
	v, err := s.svc.Ingest(ctx, intentuc.Input{
		OwnerID:  in.OwnerID,
		Kind:     kind,
		Text:     in.Text,
		GoalType: in.GoalType,
		Industry: in.Industry,
		Stage:    in.Stage,
		Urgency:  in.Urgency,
	})
	if err != nil {
		return "", err
	}
	return v.ID(), nil
}

// Replace ingests a fresh vector and removes the stale one, so a
// re-embedded artifact never leaves a gap in the index.
func (s *IntentService) Replace(ctx context.Context, staleID string, in IntentInput) (string, error) {
	kind, err := domint.ParseSourceKind(in.Kind)
	if err != nil {
		return "", err
	}
	v, err := s.svc.Replace(ctx, staleID, intentuc.Input{
		OwnerID:  in.OwnerID,
		Kind:     kind,
		Text:     in.Text,
		GoalType: in.GoalType,
		Industry: in.Industry,
		Stage:    in.Stage,
		Urgency:  in.Urgency,
	})
	if err != nil {
		return "", err
	}
	return v.ID(), nil
}

// Delete removes an intent vector.
func (s *IntentService) Delete(ctx context.Context, id string) error {
	return s.svc.Delete(ctx, id)
}

// IntroductionService drives the introduction lifecycle.
type IntroductionService struct {
	svc *lifecycleuc.Service
}

// Propose ranks candidates for the member and creates introductions per
// their autonomy policy.
func (s *IntroductionService) Propose(ctx context.Context, memberID string) ([]Introduction, error) {
	intros, err := s.svc.Propose(ctx, memberID)
	if err != nil {
		return nil, err
	}
	out := make([]Introduction, len(intros))
	for i := range intros {
		out[i] = introToPublic(&intros[i])
	}
	return out, nil
}

// Get returns an introduction to one of its participants.
func (s *IntroductionService) Get(ctx context.Context, id, memberID string) (Introduction, error) {
	i, err := s.svc.Get(ctx, id, intro.Actor{MemberID: memberID})
	if err != nil {
		return Introduction{}, err
	}
	return introToPublic(&i), nil
}

// Send delivers a suggested introduction on the member's behalf.
func (s *IntroductionService) Send(ctx context.Context, id, memberID string) (Introduction, error) {
	i, err := s.svc.Send(ctx, id, intro.Actor{MemberID: memberID})
	if err != nil {
		return Introduction{}, err
	}
	return introToPublic(&i), nil
}

// Respond records the member's accept or decline answer.
func (s *IntroductionService) Respond(ctx context.Context, id, memberID, response string) (Introduction, error) {
	r, err := intro.ParseResponse(response)
	if err != nil {
		return Introduction{}, err
	}
	i, err := s.svc.Respond(ctx, id, intro.Actor{MemberID: memberID}, r)
	if err != nil {
		return Introduction{}, err
	}
	return introToPublic(&i), nil
}

// CancelHold clears the approval hold, keeping the introduction a suggestion.
func (s *IntroductionService) CancelHold(ctx context.Context, id, memberID string) (Introduction, error) {
	i, err := s.svc.CancelHold(ctx, id, intro.Actor{MemberID: memberID})
	if err != nil {
		return Introduction{}, err
	}
	return introToPublic(&i), nil
}

// Sweep runs the approval, expiry, and incomplete sweeps once.
func (s *IntroductionService) Sweep(ctx context.Context) error {
	if _, err := s.svc.ApprovalSweep(ctx); err != nil {
		return err
	}
	if _, err := s.svc.ExpireSweep(ctx); err != nil {
		return err
	}
	_, err := s.svc.IncompleteSweep(ctx)
	return err
}

// OutcomeInput is the outcome payload. Rating 0 means no explicit rating.
type OutcomeInput struct {
	Type   string
	Rating int
	Tags   []string
	Notes  string
}

// OutcomeService records and revises introduction outcomes.
type OutcomeService struct {
	svc *outcomesuc.Service
}

// Record stores the outcome for an introduction and completes it.
func (s *OutcomeService) Record(ctx context.Context, introductionID, memberID string, in OutcomeInput) (Outcome, error) {
	o, err := s.svc.Record(ctx, introductionID, intro.Actor{MemberID: memberID}, outcomesuc.Input{
		Type:   outcome.Type(in.Type),
		Rating: in.Rating,
		Tags:   in.Tags,
		Notes:  in.Notes,
	})
	if err != nil {
		return Outcome{}, err
	}
	return outcomeToPublic(&o), nil
}

// Update revises an existing outcome and recomputes its feedback score.
func (s *OutcomeService) Update(ctx context.Context, introductionID, memberID string, in OutcomeInput) (Outcome, error) {
	o, err := s.svc.Update(ctx, introductionID, intro.Actor{MemberID: memberID}, outcomesuc.Input{
		Type:   outcome.Type(in.Type),
		Rating: in.Rating,
		Tags:   in.Tags,
		Notes:  in.Notes,
	})
	if err != nil {
		return Outcome{}, err
	}
	return outcomeToPublic(&o), nil
}

// Get returns the outcome of an introduction.
func (s *OutcomeService) Get(ctx context.Context, introductionID, memberID string) (Outcome, error) {
	o, err := s.svc.Get(ctx, introductionID, intro.Actor{MemberID: memberID})
	if err != nil {
		return Outcome{}, err
	}
	return outcomeToPublic(&o), nil
}

// AnalyticsService computes per-member outcome reports.
type AnalyticsService struct {
	svc *analyticsuc.Service
}

// Report aggregates a member's introductions in the optional [from, to] range.
func (s *AnalyticsService) Report(ctx context.Context, memberID string, from, to time.Time) (analyticsuc.Report, error) {
	return s.svc.Report(ctx, memberID, from, to)
}

// LearningService runs recalibration passes and reads proposals.
type LearningService struct {
	svc     *learninguc.Service
	weights *weightstore.Repo
}

// Recalibrate runs one learning pass and saves the resulting proposal.
func (s *LearningService) Recalibrate(ctx context.Context) (WeightsProposal, error) {
	p, err := s.svc.Run(ctx)
	if err != nil {
		return WeightsProposal{}, err
	}
	return proposalToPublic(&p), nil
}

// LatestProposal returns the most recent saved proposal.
func (s *LearningService) LatestProposal(ctx context.Context) (WeightsProposal, error) {
	p, err := s.weights.LatestProposal(ctx)
	if err != nil {
		return WeightsProposal{}, err
	}
	return proposalToPublic(&p), nil
}
