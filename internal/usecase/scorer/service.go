package scorer

import (
	"math"

	"github.com/ainative-studio/publicfounders/internal/domain/match"
	"github.com/ainative-studio/publicfounders/internal/domain/profile"
)

// DefaultRelevanceFloor is the minimum relevance below which a pair is
// excluded before trust and reciprocity are even computed.
const DefaultRelevanceFloor = 0.6

// reciprocityBonusCap limits the combined same-industry/same-location bonus.
const reciprocityBonusCap = 0.1

// Service computes composite match scores. Stateless and safe for concurrent
// use; weights are threaded through every call, never held.
type Service struct {
	relevanceFloor float64
}

// New creates a match scorer. A non-positive floor falls back to the default.
func New(relevanceFloor float64) *Service {
	if relevanceFloor <= 0 {
		relevanceFloor = DefaultRelevanceFloor
	}
	return &Service{relevanceFloor: relevanceFloor}
}

// RelevanceFloor returns the configured minimum relevance.
func (s *Service) RelevanceFloor() float64 { return s.relevanceFloor }

// Score computes the composite score for a pair given a precomputed relevance
// (the candidate's best similarity hit from the vector index). Returns false
// when the pair falls below the relevance floor — the cost short-circuit: no
// trust or reciprocity work happens for irrelevant pairs.
func (s *Service) Score(
	subject, candidate *profile.Profile, relevance float64, w match.Weights,
) (match.Score, bool) {
	relevance = clamp01(relevance)
	if relevance < s.relevanceFloor {
		return match.Score{}, false
	}

	trust := trustScore(candidate)
	reciprocity, mctx := s.reciprocity(subject, candidate)
	mctx.TopSimilarity = relevance

	return match.NewScore(
		subject.MemberID, candidate.MemberID,
		relevance, trust, reciprocity, w, mctx,
	), true
}

// ScorePair computes the composite score from raw intent vectors: relevance is
// the cosine similarity of the two vectors, 0 when either is missing.
func (s *Service) ScorePair(
	subject, candidate *profile.Profile, subjectVec, candidateVec []float32, w match.Weights,
) (match.Score, bool) {
	return s.Score(subject, candidate, Cosine(subjectVec, candidateVec), w)
}

// trustScore derives trust from profile completeness: bio, verified contact,
// and public visibility each contribute a third.
func trustScore(p *profile.Profile) float64 {
	var score float64
	if p.BioPresent {
		score += 1.0 / 3.0
	}
	if p.ContactVerified {
		score += 1.0 / 3.0
	}
	if p.PublicVisible {
		score += 1.0 / 3.0
	}
	return score
}

// reciprocity is the fraction of the subject's open asks whose type intersects
// the candidate's stated goals, plus a same-industry/same-location bonus
// capped at +0.1 combined.
func (s *Service) reciprocity(subject, candidate *profile.Profile) (float64, match.Context) {
	var mctx match.Context

	candidateGoalTypes := make(map[string][]string, len(candidate.Goals))
	for _, g := range candidate.Goals {
		candidateGoalTypes[g.GoalType] = append(candidateGoalTypes[g.GoalType], g.ID)
	}

	matched := 0
	for _, ask := range subject.OpenAsks {
		goalIDs, ok := candidateGoalTypes[ask.AskType]
		if !ok {
			continue
		}
		matched++
		if mctx.GoalType == "" {
			mctx.GoalType = ask.AskType
		}
		mctx.MatchedAskIDs = append(mctx.MatchedAskIDs, ask.ID)
		mctx.MatchedGoalIDs = append(mctx.MatchedGoalIDs, goalIDs...)
	}

	var fraction float64
	if len(subject.OpenAsks) > 0 {
		fraction = float64(matched) / float64(len(subject.OpenAsks))
	}

	var bonus float64
	if subject.Industry != "" && subject.Industry == candidate.Industry {
		bonus += 0.05
		mctx.IndustryMatch = true
	}
	if subject.Location != "" && subject.Location == candidate.Location {
		bonus += 0.05
	}
	if bonus > reciprocityBonusCap {
		bonus = reciprocityBonusCap
	}

	return clamp01(fraction + bonus), mctx
}

// Cosine returns the cosine similarity of two vectors clamped to [0,1].
// Missing or mismatched vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	return clamp01(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
