package ranker

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ainative-studio/publicfounders/internal/domain/intent"
	"github.com/ainative-studio/publicfounders/internal/domain/match"
	"github.com/ainative-studio/publicfounders/internal/metrics"
	"github.com/ainative-studio/publicfounders/internal/repository/intentvec"
)

// Defaults for ranking bounds.
const (
	DefaultTopK        = 50
	DefaultMinOverall  = 0.6
	DefaultMaxInFlight = 10
)

// Service produces a ranked candidate list for a subject. Rankings are
// computed on demand from the current index state, never cached.
type Service struct {
	vectors     VectorIndex
	profiles    ProfileReader
	scorer      Scorer
	weights     WeightsSource
	topK        int
	minOverall  float64
	maxInFlight int
	logger      *zap.Logger
}

// Options tune ranking bounds. Zero values fall back to defaults.
type Options struct {
	TopK        int
	MinOverall  float64
	MaxInFlight int
}

// New creates a candidate ranker.
func New(vectors VectorIndex, profiles ProfileReader, scorer Scorer, weights WeightsSource, opts Options, logger *zap.Logger) *Service {
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if opts.MinOverall <= 0 {
		opts.MinOverall = DefaultMinOverall
	}
	if opts.MaxInFlight <= 0 {
		opts.MaxInFlight = DefaultMaxInFlight
	}
	return &Service{
		vectors:     vectors,
		profiles:    profiles,
		scorer:      scorer,
		weights:     weights,
		topK:        opts.TopK,
		minOverall:  opts.MinOverall,
		maxInFlight: opts.MaxInFlight,
		logger:      logger,
	}
}

// Rank computes the ranked candidate list for the subject. The result is
// deterministic for a fixed index state: neighbor searches run concurrently
// but merge in stable vector order, and ties break on candidate account age
// then id. A subject with no active vectors ranks an empty list.
func (s *Service) Rank(ctx context.Context, subjectID string) ([]match.Score, error) {
	start := time.Now()
	defer func() {
		metrics.RankingDuration.Observe(time.Since(start).Seconds())
	}()

	subject, err := s.profiles.Get(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("get subject profile: %w", err)
	}

	weights, err := s.weights.Active(ctx)
	if err != nil {
		return nil, fmt.Errorf("get active weights: %w", err)
	}

	subjectVectors, err := s.vectors.ActiveByOwner(ctx, subjectID)
	if err != nil {
		// Fail closed: no stale or partial ranking when the index is down.
		return nil, fmt.Errorf("list subject vectors: %w", err)
	}
	if len(subjectVectors) == 0 {
		return []match.Score{}, nil
	}

	neighborSets := s.searchAll(ctx, subjectID, subjectVectors)
	best := mergeByOwner(neighborSets)
	if len(best) == 0 {
		return []match.Score{}, nil
	}

	scores := make([]match.Score, 0, len(best))
	candidateCreated := make(map[string]time.Time, len(best))

	for _, nb := range best {
		if subject.Excluded(nb.OwnerID) {
			continue
		}

		candidate, err := s.profiles.Get(ctx, nb.OwnerID)
		if err != nil {
			s.logger.Warn("skip candidate, profile unavailable",
				zap.String("candidate_id", nb.OwnerID), zap.Error(err))
			continue
		}
		if candidate.Excluded(subjectID) {
			continue
		}

		score, ok := s.scorer.Score(&subject, &candidate, nb.Similarity, weights)
		if !ok {
			continue
		}
		if score.Overall() < s.minOverall {
			continue
		}

		scores = append(scores, score)
		candidateCreated[candidate.MemberID] = candidate.CreatedAt
	}

	sortScores(scores, candidateCreated)
	if len(scores) > s.topK {
		scores = scores[:s.topK]
	}

	metrics.CandidatesRanked.Observe(float64(len(scores)))
	return scores, nil
}

// searchAll runs one KNN search per subject vector under a bounded worker
// pool. Results keep each vector's slot so the merge order is stable. A
// failed search drops only that vector's neighbors.
func (s *Service) searchAll(ctx context.Context, subjectID string, vectors []intent.Vector) [][]intent.Neighbor {
	sets := make([][]intent.Neighbor, len(vectors))

	var wg sync.WaitGroup
	sem := make(chan struct{}, s.maxInFlight)

	for i := range vectors {
		wg.Add(1)
		sem <- struct{}{}
		go func(slot int, v *intent.Vector) {
			defer wg.Done()
			defer func() { <-sem }()

			neighbors, err := s.vectors.Search(ctx, v.Values(), intentvec.SearchSpec{
				ExcludeOwner:  subjectID,
				MinSimilarity: s.scorer.RelevanceFloor(),
				TopK:          s.topK,
			})
			if err != nil {
				s.logger.Warn("neighbor search failed for vector",
					zap.String("vector_id", v.ID()), zap.Error(err))
				return
			}
			sets[slot] = neighbors
		}(i, &vectors[i])
	}
	wg.Wait()

	return sets
}

// mergeByOwner collapses per-vector neighbor sets to one entry per owning
// member, keeping the highest similarity. Iteration follows vector order, so
// equal similarities resolve to the earliest vector's hit.
func mergeByOwner(sets [][]intent.Neighbor) []intent.Neighbor {
	bestIdx := make(map[string]int)
	merged := make([]intent.Neighbor, 0)

	for _, set := range sets {
		for _, nb := range set {
			if nb.OwnerID == "" {
				continue
			}
			idx, seen := bestIdx[nb.OwnerID]
			if !seen {
				bestIdx[nb.OwnerID] = len(merged)
				merged = append(merged, nb)
				continue
			}
			if nb.Similarity > merged[idx].Similarity {
				merged[idx] = nb
			}
		}
	}
	return merged
}

// sortScores orders by overall desc, then relevance desc, then candidate
// account age (older first), then candidate id.
func sortScores(scores []match.Score, created map[string]time.Time) {
	sort.SliceStable(scores, func(i, j int) bool {
		a, b := &scores[i], &scores[j]
		if a.Overall() != b.Overall() {
			return a.Overall() > b.Overall()
		}
		if a.Relevance() != b.Relevance() {
			return a.Relevance() > b.Relevance()
		}
		ca, cb := created[a.CandidateID()], created[b.CandidateID()]
		if !ca.Equal(cb) {
			return ca.Before(cb)
		}
		return a.CandidateID() < b.CandidateID()
	})
}
