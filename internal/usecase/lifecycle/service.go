package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ainative-studio/publicfounders/internal/domain"
	"github.com/ainative-studio/publicfounders/internal/domain/intro"
	"github.com/ainative-studio/publicfounders/internal/domain/match"
	"github.com/ainative-studio/publicfounders/internal/metrics"
	"github.com/ainative-studio/publicfounders/internal/usecase/autonomy"
)

// DefaultChannel is the delivery channel used for all introductions until
// per-member channel preferences exist.
const DefaultChannel = "in_app"

// sweepLimit bounds how many records a single sweep pass processes.
const sweepLimit = 500

// Service drives introductions through their lifecycle. All writes to a
// record after creation go through a conditional transition, so concurrent
// writers resolve to exactly one winner.
type Service struct {
	intros           IntroductionStore
	profiles         ProfileReader
	ranker           Ranker
	gate             *autonomy.Gate
	deliver          Deliverer
	responseWindow   time.Duration
	completionWindow time.Duration
	now              func() time.Time
	logger           *zap.Logger
}

// New creates a lifecycle service.
func New(
	intros IntroductionStore, profiles ProfileReader, ranker Ranker,
	gate *autonomy.Gate, deliver Deliverer,
	responseWindow, completionWindow time.Duration, logger *zap.Logger,
) *Service {
	return &Service{
		intros:           intros,
		profiles:         profiles,
		ranker:           ranker,
		gate:             gate,
		deliver:          deliver,
		responseWindow:   responseWindow,
		completionWindow: completionWindow,
		now:              time.Now,
		logger:           logger,
	}
}

// WithClock overrides the time source. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Propose ranks candidates for the subject and turns each ranked match into
// an introduction, routed through the subject's autonomy policy: suggested,
// held for the veto window, or delivered immediately.
func (s *Service) Propose(ctx context.Context, subjectID string) ([]intro.Introduction, error) {
	subject, err := s.profiles.Get(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("get subject profile: %w", err)
	}

	scores, err := s.ranker.Rank(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("rank candidates: %w", err)
	}

	now := s.now()
	proposals := make([]intro.Introduction, 0, len(scores))

	for idx := range scores {
		score := &scores[idx]

		i, err := intro.NewProposal(
			uuid.NewString(), subjectID, score.CandidateID(),
			snapshotOf(score), DefaultChannel, now,
		)
		if err != nil {
			return nil, fmt.Errorf("build proposal: %w", err)
		}

		decision := s.gate.Decide(subject.Autonomy, score, now)
		metrics.GateDecisionsTotal.WithLabelValues(string(subject.Autonomy), string(decision.Action)).Inc()

		switch decision.Action {
		case autonomy.ActionHoldForApproval:
			if err := i.Hold(decision.HoldUntil); err != nil {
				return nil, fmt.Errorf("hold proposal: %w", err)
			}
			if err := s.intros.Create(ctx, &i); err != nil {
				return nil, fmt.Errorf("create introduction: %w", err)
			}

		case autonomy.ActionExecute:
			if err := s.intros.Create(ctx, &i); err != nil {
				return nil, fmt.Errorf("create introduction: %w", err)
			}
			if err := s.sendOne(ctx, &i, intro.SystemActor, buildRationale(score)); err != nil {
				// The record stays proposed; the member still sees it as a
				// suggestion they can send manually.
				s.logger.Warn("auto-delivery failed, left as suggestion",
					zap.String("introduction_id", i.ID()), zap.Error(err))
			}

		default: // suggest
			if err := s.intros.Create(ctx, &i); err != nil {
				return nil, fmt.Errorf("create introduction: %w", err)
			}
		}

		metrics.IntroTransitionsTotal.WithLabelValues("", string(intro.StatusProposed)).Inc()
		proposals = append(proposals, i)
	}

	return proposals, nil
}

// Send delivers a proposed introduction on behalf of the acting member. A
// held introduction must have its hold cancelled first.
func (s *Service) Send(ctx context.Context, id string, actor intro.Actor) (intro.Introduction, error) {
	i, err := s.intros.Get(ctx, id)
	if err != nil {
		return intro.Introduction{}, err
	}
	if i.Held() {
		return intro.Introduction{}, fmt.Errorf("introduction is held for approval: %w", domain.ErrInvalidTransition)
	}

	score := i.ScoreAtProposal()
	if err := s.sendOne(ctx, &i, actor, rationaleFromSnapshot(&score)); err != nil {
		return intro.Introduction{}, err
	}
	return i, nil
}

// sendOne delivers and transitions proposed → sent. Delivery happens before
// the transition; a failed conditional write after a successful delivery is
// logged and surfaced as a duplicate.
func (s *Service) sendOne(ctx context.Context, i *intro.Introduction, actor intro.Actor, rationale string) error {
	if err := i.Send(actor, rationale, s.now()); err != nil {
		return err
	}
	if err := s.deliver.Deliver(ctx, i); err != nil {
		return fmt.Errorf("deliver introduction %s: %w", i.ID(), err)
	}

	won, err := s.intros.TransitionFrom(ctx, i, intro.StatusProposed)
	if err != nil {
		return err
	}
	if !won {
		return fmt.Errorf("introduction %s already transitioned: %w", i.ID(), domain.ErrDuplicateResponse)
	}

	metrics.IntroTransitionsTotal.WithLabelValues(string(intro.StatusProposed), string(intro.StatusSent)).Inc()
	return nil
}

// Respond records the accept/decline answer for a sent introduction. Exactly
// one response wins; a concurrent or repeated response gets DuplicateResponse
// and the stored record is untouched.
func (s *Service) Respond(ctx context.Context, id string, actor intro.Actor, r intro.Response) (intro.Introduction, error) {
	i, err := s.intros.Get(ctx, id)
	if err != nil {
		return intro.Introduction{}, err
	}

	if err := i.Respond(actor, r, s.now()); err != nil {
		return intro.Introduction{}, err
	}

	won, err := s.intros.TransitionFrom(ctx, &i, intro.StatusSent)
	if err != nil {
		return intro.Introduction{}, err
	}
	if !won {
		return intro.Introduction{}, fmt.Errorf("introduction %s: %w", id, domain.ErrDuplicateResponse)
	}

	metrics.IntroTransitionsTotal.WithLabelValues(string(intro.StatusSent), string(i.Status())).Inc()
	return i, nil
}

// CancelHold clears the approval hold on a proposed introduction, leaving it
// as a plain suggestion.
func (s *Service) CancelHold(ctx context.Context, id string, actor intro.Actor) (intro.Introduction, error) {
	i, err := s.intros.Get(ctx, id)
	if err != nil {
		return intro.Introduction{}, err
	}

	if err := i.CancelHold(actor); err != nil {
		return intro.Introduction{}, err
	}

	won, err := s.intros.TransitionFrom(ctx, &i, intro.StatusProposed)
	if err != nil {
		return intro.Introduction{}, err
	}
	if !won {
		return intro.Introduction{}, fmt.Errorf("introduction %s: %w", id, domain.ErrInvalidTransition)
	}
	return i, nil
}

// Get returns an introduction to one of its participants.
func (s *Service) Get(ctx context.Context, id string, actor intro.Actor) (intro.Introduction, error) {
	i, err := s.intros.Get(ctx, id)
	if err != nil {
		return intro.Introduction{}, err
	}
	if !actor.System && actor.MemberID != i.RequesterID() && actor.MemberID != i.TargetID() {
		return intro.Introduction{}, domain.ErrUnauthorized
	}
	return i, nil
}

// ExpireSweep expires sent introductions whose response window has elapsed.
// Returns the number of records expired. A record a concurrent responder won
// is skipped silently; the response stands.
func (s *Service) ExpireSweep(ctx context.Context) (int, error) {
	now := s.now()
	cutoff := now.Add(-s.responseWindow)

	intros, err := s.intros.ListByStatusBefore(ctx, intro.StatusSent, "sent_at", cutoff, sweepLimit)
	if err != nil {
		return 0, fmt.Errorf("list expirable introductions: %w", err)
	}

	expired := 0
	for idx := range intros {
		i := &intros[idx]
		if err := i.Expire(s.responseWindow, now); err != nil {
			metrics.SweepProcessedTotal.WithLabelValues("expire", "error").Inc()
			s.logger.Error("expire failed", zap.String("introduction_id", i.ID()), zap.Error(err))
			continue
		}
		won, err := s.intros.TransitionFrom(ctx, i, intro.StatusSent)
		if err != nil {
			metrics.SweepProcessedTotal.WithLabelValues("expire", "error").Inc()
			s.logger.Error("expire transition failed", zap.String("introduction_id", i.ID()), zap.Error(err))
			continue
		}
		if !won {
			metrics.SweepProcessedTotal.WithLabelValues("expire", "race_lost").Inc()
			continue
		}
		metrics.SweepProcessedTotal.WithLabelValues("expire", "ok").Inc()
		metrics.IntroTransitionsTotal.WithLabelValues(string(intro.StatusSent), string(intro.StatusExpired)).Inc()
		expired++
	}
	return expired, nil
}

// IncompleteSweep marks accepted introductions incomplete once the completion
// window elapses without an outcome. Soft-terminal: a late outcome can still
// complete them.
func (s *Service) IncompleteSweep(ctx context.Context) (int, error) {
	now := s.now()
	cutoff := now.Add(-s.completionWindow)

	intros, err := s.intros.ListByStatusBefore(ctx, intro.StatusAccepted, "responded_at", cutoff, sweepLimit)
	if err != nil {
		return 0, fmt.Errorf("list stale accepted introductions: %w", err)
	}

	marked := 0
	for idx := range intros {
		i := &intros[idx]
		if err := i.MarkIncomplete(s.completionWindow, now); err != nil {
			metrics.SweepProcessedTotal.WithLabelValues("incomplete", "error").Inc()
			s.logger.Error("mark incomplete failed", zap.String("introduction_id", i.ID()), zap.Error(err))
			continue
		}
		won, err := s.intros.TransitionFrom(ctx, i, intro.StatusAccepted)
		if err != nil {
			metrics.SweepProcessedTotal.WithLabelValues("incomplete", "error").Inc()
			s.logger.Error("incomplete transition failed", zap.String("introduction_id", i.ID()), zap.Error(err))
			continue
		}
		if !won {
			metrics.SweepProcessedTotal.WithLabelValues("incomplete", "race_lost").Inc()
			continue
		}
		metrics.SweepProcessedTotal.WithLabelValues("incomplete", "ok").Inc()
		metrics.IntroTransitionsTotal.WithLabelValues(string(intro.StatusAccepted), string(intro.StatusIncomplete)).Inc()
		marked++
	}
	return marked, nil
}

// ApprovalSweep promotes held introductions whose veto window has elapsed
// without the member cancelling: they get delivered as if approved.
func (s *Service) ApprovalSweep(ctx context.Context) (int, error) {
	now := s.now()

	// Unheld proposals store a zero hold_until and fall outside the range.
	intros, err := s.intros.ListByStatusBefore(ctx, intro.StatusProposed, "hold_until", now, sweepLimit)
	if err != nil {
		return 0, fmt.Errorf("list held introductions: %w", err)
	}

	sent := 0
	for idx := range intros {
		i := &intros[idx]
		if !i.Held() {
			continue
		}
		score := i.ScoreAtProposal()
		if err := s.sendOne(ctx, i, intro.SystemActor, rationaleFromSnapshot(&score)); err != nil {
			if errors.Is(err, domain.ErrDuplicateResponse) {
				metrics.SweepProcessedTotal.WithLabelValues("approval", "race_lost").Inc()
				continue
			}
			metrics.SweepProcessedTotal.WithLabelValues("approval", "error").Inc()
			s.logger.Error("approval delivery failed", zap.String("introduction_id", i.ID()), zap.Error(err))
			continue
		}
		metrics.SweepProcessedTotal.WithLabelValues("approval", "ok").Inc()
		sent++
	}
	return sent, nil
}

func snapshotOf(s *match.Score) intro.ScoreSnapshot {
	mctx := s.MatchContext()
	return intro.ScoreSnapshot{
		Overall:       s.Overall(),
		Relevance:     s.Relevance(),
		Trust:         s.Trust(),
		Reciprocity:   s.Reciprocity(),
		GoalType:      mctx.GoalType,
		IndustryMatch: mctx.IndustryMatch,
	}
}

// buildRationale renders the member-facing explanation from the match
// context. Attached at send time and immutable afterwards.
func buildRationale(s *match.Score) string {
	var parts []string
	mctx := s.MatchContext()
	if len(mctx.MatchedAskIDs) > 0 {
		parts = append(parts, fmt.Sprintf("%d of your open asks match their goals", len(mctx.MatchedAskIDs)))
	}
	if mctx.IndustryMatch {
		parts = append(parts, "you work in the same industry")
	}
	if len(parts) == 0 {
		parts = append(parts, "your stated goals are closely aligned")
	}
	return fmt.Sprintf("Suggested because %s (match %.0f%%).", strings.Join(parts, " and "), s.Overall()*100)
}

func rationaleFromSnapshot(s *intro.ScoreSnapshot) string {
	if s.IndustryMatch {
		return fmt.Sprintf("Suggested because you work in the same industry (match %.0f%%).", s.Overall*100)
	}
	return fmt.Sprintf("Suggested because your stated goals are closely aligned (match %.0f%%).", s.Overall*100)
}
