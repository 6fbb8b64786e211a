package learning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ainative-studio/publicfounders/internal/domain/intro"
	"github.com/ainative-studio/publicfounders/internal/domain/match"
)

// MinSampleSize is the fewest completed introductions a learning pass will
// draw conclusions from.
const MinSampleSize = 10

// batchLimit bounds how many completed introductions one pass reads.
const batchLimit = 5000

// minOverallFloor and minOverallCeil clamp the proposed threshold so a noisy
// sample cannot propose something absurd.
const (
	minOverallFloor = 0.5
	minOverallCeil  = 0.8
)

// ErrInsufficientSample is returned when too few completed introductions
// exist to propose a recalibration.
var ErrInsufficientSample = errors.New("insufficient completed introductions for recalibration")

// Service is the learning loop: it correlates the score components frozen at
// proposal time with the feedback the introductions eventually earned, and
// emits a candidate recalibration. Strictly advisory; the active weights are
// only ever changed by an operator.
type Service struct {
	intros   IntroductionLister
	outcomes OutcomeReader
	weights  WeightsStore
	now      func() time.Time
	logger   *zap.Logger
}

// New creates a learning service.
func New(intros IntroductionLister, outcomes OutcomeReader, weights WeightsStore, logger *zap.Logger) *Service {
	return &Service{
		intros:   intros,
		outcomes: outcomes,
		weights:  weights,
		now:      time.Now,
		logger:   logger,
	}
}

// WithClock overrides the time source. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// sample is one (introduction, outcome) pair joined for the pass.
type sample struct {
	snapshot intro.ScoreSnapshot
	feedback float64
}

// Run executes one learning pass and persists the resulting proposal for
// operator review. Returns the proposal it saved.
func (s *Service) Run(ctx context.Context) (match.Proposal, error) {
	samples, err := s.collect(ctx)
	if err != nil {
		return match.Proposal{}, err
	}
	if len(samples) < MinSampleSize {
		return match.Proposal{}, fmt.Errorf("%w: have %d, need %d", ErrInsufficientSample, len(samples), MinSampleSize)
	}

	rel := make([]float64, len(samples))
	trust := make([]float64, len(samples))
	recip := make([]float64, len(samples))
	overall := make([]float64, len(samples))
	feedback := make([]float64, len(samples))
	for i, smp := range samples {
		rel[i] = smp.snapshot.Relevance
		trust[i] = smp.snapshot.Trust
		recip[i] = smp.snapshot.Reciprocity
		overall[i] = smp.snapshot.Overall
		feedback[i] = smp.feedback
	}

	corr := match.ComponentCorrelation{
		Relevance:   pearson(rel, feedback),
		Trust:       pearson(trust, feedback),
		Reciprocity: pearson(recip, feedback),
	}
	s.logAggregates(samples, rel, trust, recip, feedback, corr)

	active, err := s.weights.Active(ctx)
	if err != nil {
		return match.Proposal{}, fmt.Errorf("get active weights: %w", err)
	}

	candidate, err := candidateWeights(active, corr)
	if err != nil {
		return match.Proposal{}, fmt.Errorf("derive candidate weights: %w", err)
	}

	proposal := match.Proposal{
		Weights:      candidate,
		MinOverall:   candidateMinOverall(overall, feedback),
		SampleSize:   len(samples),
		Correlations: corr,
		CreatedAt:    s.now(),
	}
	if err := s.weights.SaveProposal(ctx, &proposal); err != nil {
		return match.Proposal{}, fmt.Errorf("save proposal: %w", err)
	}

	s.logger.Info("recalibration proposal saved",
		zap.Int("sample_size", proposal.SampleSize),
		zap.Int("version", candidate.Version()),
		zap.Float64("relevance", candidate.Relevance()),
		zap.Float64("trust", candidate.Trust()),
		zap.Float64("reciprocity", candidate.Reciprocity()),
		zap.Float64("min_overall", proposal.MinOverall),
	)
	return proposal, nil
}

// collect joins completed introductions with their outcomes. Completed
// records without an outcome are data errors; they are skipped, not fatal.
func (s *Service) collect(ctx context.Context) ([]sample, error) {
	completed, err := s.intros.ListByStatus(ctx, intro.StatusCompleted, batchLimit)
	if err != nil {
		return nil, fmt.Errorf("list completed introductions: %w", err)
	}

	ids := make([]string, len(completed))
	byID := make(map[string]*intro.Introduction, len(completed))
	for i := range completed {
		ids[i] = completed[i].ID()
		byID[completed[i].ID()] = &completed[i]
	}

	outs, err := s.outcomes.GetMulti(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load outcomes: %w", err)
	}

	samples := make([]sample, 0, len(outs))
	for i := range outs {
		rec, ok := byID[outs[i].IntroductionID()]
		if !ok {
			continue
		}
		samples = append(samples, sample{
			snapshot: rec.ScoreAtProposal(),
			feedback: outs[i].FeedbackScore(),
		})
	}
	return samples, nil
}

// candidateWeights renormalizes the positive correlations into a weight
// triple. When no component correlates positively the pass proposes the
// active weights unchanged, still bumping the version so the proposal is
// traceable to this run.
func candidateWeights(active match.Weights, corr match.ComponentCorrelation) (match.Weights, error) {
	r := positive(corr.Relevance)
	t := positive(corr.Trust)
	p := positive(corr.Reciprocity)

	sum := r + t + p
	if sum == 0 {
		return match.NewWeights(active.Version()+1, active.Relevance(), active.Trust(), active.Reciprocity())
	}
	// Renormalize so rounding error lands on reciprocity.
	rw, tw := r/sum, t/sum
	return match.NewWeights(active.Version()+1, rw, tw, 1.0-rw-tw)
}

// candidateMinOverall proposes the lowest overall score that still sits in
// the successful cohort: the 25th percentile of overall among samples with
// feedback of 0.6 or better, clamped to a sane band. Without a successful
// cohort the floor stands.
func candidateMinOverall(overall, feedback []float64) float64 {
	successful := make([]float64, 0, len(overall))
	for i := range overall {
		if feedback[i] >= 0.6 {
			successful = append(successful, overall[i])
		}
	}
	if len(successful) == 0 {
		return minOverallFloor
	}

	v := percentile(successful, 0.25)
	if v < minOverallFloor {
		return minOverallFloor
	}
	if v > minOverallCeil {
		return minOverallCeil
	}
	return v
}

// logAggregates emits the bucketed view of the pass: mean feedback per
// component fifth, per goal type, and by industry match. Operators read these
// next to the proposal when deciding on a rollout.
func (s *Service) logAggregates(samples []sample, rel, trust, recip, feedback []float64, corr match.ComponentCorrelation) {
	byGoalType := make(map[string][]float64)
	var industrySum, otherSum float64
	var industryN, otherN int
	for _, smp := range samples {
		if smp.snapshot.GoalType != "" {
			byGoalType[smp.snapshot.GoalType] = append(byGoalType[smp.snapshot.GoalType], smp.feedback)
		}
		if smp.snapshot.IndustryMatch {
			industrySum += smp.feedback
			industryN++
		} else {
			otherSum += smp.feedback
			otherN++
		}
	}

	goalTypeMeans := make(map[string]float64, len(byGoalType))
	for gt, fs := range byGoalType {
		var sum float64
		for _, f := range fs {
			sum += f
		}
		goalTypeMeans[gt] = sum / float64(len(fs))
	}

	s.logger.Info("learning pass aggregates",
		zap.Int("sample_size", len(samples)),
		zap.Float64("corr_relevance", corr.Relevance),
		zap.Float64("corr_trust", corr.Trust),
		zap.Float64("corr_reciprocity", corr.Reciprocity),
		zap.Any("feedback_by_relevance_bucket", bucketMeans(rel, feedback)),
		zap.Any("feedback_by_trust_bucket", bucketMeans(trust, feedback)),
		zap.Any("feedback_by_reciprocity_bucket", bucketMeans(recip, feedback)),
		zap.Any("feedback_by_goal_type", goalTypeMeans),
		zap.Float64("feedback_industry_match", mean(industrySum, industryN)),
		zap.Float64("feedback_no_industry_match", mean(otherSum, otherN)),
	)
}

func positive(v float64) float64 {
	if v > 0 {
		return v
	}
	return 0
}

func mean(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
