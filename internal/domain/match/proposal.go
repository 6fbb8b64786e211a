package match

import "time"

// ComponentCorrelation holds the estimated correlation of each score component
// with observed feedback.
type ComponentCorrelation struct {
	Relevance   float64
	Trust       float64
	Reciprocity float64
}

// Proposal is a candidate recalibration emitted by the learning loop. It is
// advisory only: rollout requires operator approval, nothing applies it
// automatically.
type Proposal struct {
	Weights      Weights
	MinOverall   float64
	SampleSize   int
	Correlations ComponentCorrelation
	CreatedAt    time.Time
}
