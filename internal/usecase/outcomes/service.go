package outcomes

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ainative-studio/publicfounders/internal/domain"
	"github.com/ainative-studio/publicfounders/internal/domain/intro"
	"github.com/ainative-studio/publicfounders/internal/domain/outcome"
	"github.com/ainative-studio/publicfounders/internal/metrics"
)

// Input is the caller-supplied outcome payload. Rating 0 means no rating.
type Input struct {
	Type   outcome.Type
	Rating int
	Tags   []string
	Notes  string
}

// Service records and revises introduction outcomes. Recording an outcome is
// what completes an accepted introduction.
type Service struct {
	outcomes OutcomeStore
	intros   IntroductionStore
	feedback *FeedbackScorer
	now      func() time.Time
	logger   *zap.Logger
}

// New creates an outcome service.
func New(outcomes OutcomeStore, intros IntroductionStore, feedback *FeedbackScorer, logger *zap.Logger) *Service {
	return &Service{
		outcomes: outcomes,
		intros:   intros,
		feedback: feedback,
		now:      time.Now,
		logger:   logger,
	}
}

// WithClock overrides the time source. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Record stores the outcome for an introduction and completes it. Only
// participants may record; only accepted, incomplete, or completed
// introductions can carry an outcome; the second record attempt fails.
func (s *Service) Record(ctx context.Context, introductionID string, actor intro.Actor, in Input) (outcome.Outcome, error) {
	i, err := s.authorizedIntro(ctx, introductionID, actor)
	if err != nil {
		return outcome.Outcome{}, err
	}

	switch i.Status() {
	case intro.StatusAccepted, intro.StatusIncomplete, intro.StatusCompleted:
	case intro.StatusDeclined, intro.StatusExpired:
		return outcome.Outcome{}, domain.NewInvalidOutcome("introduction was %s", i.Status())
	default:
		return outcome.Outcome{}, domain.NewInvalidOutcome("introduction is still %s", i.Status())
	}

	now := s.now()
	o, err := outcome.New(introductionID, in.Type, in.Rating, in.Tags, in.Notes, now)
	if err != nil {
		return outcome.Outcome{}, err
	}
	o = o.WithFeedbackScore(s.feedback.Score(&o, i.SentAt(), i.RespondedAt()))

	if err := s.outcomes.Create(ctx, &o); err != nil {
		return outcome.Outcome{}, err
	}
	metrics.OutcomesRecordedTotal.WithLabelValues(string(o.OutcomeType())).Inc()

	if err := s.complete(ctx, &i, now); err != nil {
		// The outcome is stored; completion is reconciled on the next write.
		s.logger.Warn("outcome stored but completion failed",
			zap.String("introduction_id", introductionID), zap.Error(err))
	}
	return o, nil
}

// Update revises an existing outcome. The feedback score is recomputed from
// scratch from the revised fields; the original recording time is kept so the
// derivation stays stable.
func (s *Service) Update(ctx context.Context, introductionID string, actor intro.Actor, in Input) (outcome.Outcome, error) {
	i, err := s.authorizedIntro(ctx, introductionID, actor)
	if err != nil {
		return outcome.Outcome{}, err
	}

	existing, err := s.outcomes.Get(ctx, introductionID)
	if err != nil {
		return outcome.Outcome{}, err
	}

	o, err := outcome.New(introductionID, in.Type, in.Rating, in.Tags, in.Notes, existing.RecordedAt())
	if err != nil {
		return outcome.Outcome{}, err
	}
	o = o.WithFeedbackScore(s.feedback.Score(&o, i.SentAt(), i.RespondedAt()))

	if err := s.outcomes.Update(ctx, &o); err != nil {
		return outcome.Outcome{}, err
	}
	return o, nil
}

// Get returns the outcome of an introduction to one of its participants.
func (s *Service) Get(ctx context.Context, introductionID string, actor intro.Actor) (outcome.Outcome, error) {
	if _, err := s.authorizedIntro(ctx, introductionID, actor); err != nil {
		return outcome.Outcome{}, err
	}
	return s.outcomes.Get(ctx, introductionID)
}

func (s *Service) authorizedIntro(ctx context.Context, introductionID string, actor intro.Actor) (intro.Introduction, error) {
	i, err := s.intros.Get(ctx, introductionID)
	if err != nil {
		return intro.Introduction{}, err
	}
	if !actor.System && actor.MemberID != i.RequesterID() && actor.MemberID != i.TargetID() {
		return intro.Introduction{}, domain.ErrUnauthorized
	}
	return i, nil
}

// complete transitions the introduction to completed. A concurrent sweep
// losing or winning the race is fine either way: a later Record or Update on
// the same introduction never reopens it.
func (s *Service) complete(ctx context.Context, i *intro.Introduction, now time.Time) error {
	from := i.Status()
	if from == intro.StatusCompleted {
		return nil
	}
	if err := i.Complete(now); err != nil {
		return err
	}
	won, err := s.intros.TransitionFrom(ctx, i, from)
	if err != nil {
		return fmt.Errorf("complete introduction %s: %w", i.ID(), err)
	}
	if won {
		metrics.IntroTransitionsTotal.WithLabelValues(string(from), string(intro.StatusCompleted)).Inc()
	}
	return nil
}
