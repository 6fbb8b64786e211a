package match

import (
	"fmt"
	"math"
)

// weightSumTolerance absorbs float rounding when validating that the three
// component weights sum to 1.0.
const weightSumTolerance = 1e-6

// Weights is a versioned scoring configuration. The learning loop produces new
// versions; callers thread the active version through every scoring call, it is
// never a shared mutable value.
type Weights struct {
	version     int
	relevance   float64
	trust       float64
	reciprocity float64
}

// DefaultWeights is the 0.5/0.25/0.25 baseline split (version 0).
func DefaultWeights() Weights {
	return Weights{version: 0, relevance: 0.5, trust: 0.25, reciprocity: 0.25}
}

// NewWeights creates a validated weight triple.
func NewWeights(version int, relevance, trust, reciprocity float64) (Weights, error) {
	for name, w := range map[string]float64{
		"relevance": relevance, "trust": trust, "reciprocity": reciprocity,
	} {
		if w < 0 || w > 1 {
			return Weights{}, fmt.Errorf("weight %s must be in [0,1], got %v", name, w)
		}
	}
	if sum := relevance + trust + reciprocity; math.Abs(sum-1.0) > weightSumTolerance {
		return Weights{}, fmt.Errorf("weights must sum to 1.0, got %v", sum)
	}
	return Weights{version: version, relevance: relevance, trust: trust, reciprocity: reciprocity}, nil
}

// Version returns the configuration version.
func (w *Weights) Version() int { return w.version }

// Relevance returns the relevance weight.
func (w *Weights) Relevance() float64 { return w.relevance }

// Trust returns the trust weight.
func (w *Weights) Trust() float64 { return w.trust }

// Reciprocity returns the reciprocity weight.
func (w *Weights) Reciprocity() float64 { return w.reciprocity }

// Combine folds the three score components into the overall score.
func (w *Weights) Combine(relevance, trust, reciprocity float64) float64 {
	return w.relevance*relevance + w.trust*trust + w.reciprocity*reciprocity
}
