package match

// Context explains which artifacts produced a match.
type Context struct {
	MatchedGoalIDs []string
	MatchedAskIDs  []string
	GoalType       string
	IndustryMatch  bool
	TopSimilarity  float64
}

// Score is a composite match score for a (subject, candidate) pair. Computed
// on demand; not persisted beyond the proposal it produces.
type Score struct {
	subjectID   string
	candidateID string
	relevance   float64
	trust       float64
	reciprocity float64
	overall     float64
	context     Context
}

// NewScore creates a match score. Components are expected in [0,1]; overall is
// derived via the supplied weights so it stays in [0,1] for any valid triple.
func NewScore(subjectID, candidateID string, relevance, trust, reciprocity float64, w Weights, ctx Context) Score {
	return Score{
		subjectID:   subjectID,
		candidateID: candidateID,
		relevance:   clamp01(relevance),
		trust:       clamp01(trust),
		reciprocity: clamp01(reciprocity),
		overall:     clamp01(w.Combine(clamp01(relevance), clamp01(trust), clamp01(reciprocity))),
		context:     ctx,
	}
}

// SubjectID returns the subject member id.
func (s *Score) SubjectID() string { return s.subjectID }

// CandidateID returns the candidate member id.
func (s *Score) CandidateID() string { return s.candidateID }

// Relevance returns the cosine-similarity component.
func (s *Score) Relevance() float64 { return s.relevance }

// Trust returns the profile-quality component.
func (s *Score) Trust() float64 { return s.trust }

// Reciprocity returns the mutual-benefit component.
func (s *Score) Reciprocity() float64 { return s.reciprocity }

// Overall returns the weighted composite score.
func (s *Score) Overall() float64 { return s.overall }

// MatchContext returns the explanation payload.
func (s *Score) MatchContext() Context { return s.context }

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
