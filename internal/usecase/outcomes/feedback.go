package outcomes

import (
	"strings"
	"time"

	"github.com/ainative-studio/publicfounders/internal/domain/outcome"
)

// Feedback component weights. Explicit signal dominates; context from tags and
// notes only nudges.
const (
	explicitWeight   = 0.6
	behavioralWeight = 0.25
	contextualWeight = 0.15
)

// FeedbackScorer derives the composite feedback score of an outcome. Pure:
// the same outcome and timestamps always produce the same score, so updates
// recompute from scratch instead of patching.
type FeedbackScorer struct {
	responseCap   time.Duration
	completionCap time.Duration
}

// NewFeedbackScorer creates a feedback scorer. The caps bound how much delay
// can hurt the behavioral component; they mirror the lifecycle windows.
func NewFeedbackScorer(responseCap, completionCap time.Duration) *FeedbackScorer {
	if responseCap <= 0 {
		responseCap = 7 * 24 * time.Hour
	}
	if completionCap <= 0 {
		completionCap = 30 * 24 * time.Hour
	}
	return &FeedbackScorer{responseCap: responseCap, completionCap: completionCap}
}

// Score computes feedbackScore = 0.6·explicit + 0.25·behavioral +
// 0.15·contextual, clamped to [0,1].
func (f *FeedbackScorer) Score(o *outcome.Outcome, sentAt, respondedAt time.Time) float64 {
	e := explicitComponent(o)
	b := f.behavioralComponent(sentAt, respondedAt, o.RecordedAt())
	c := contextualComponent(o)
	return clamp01(explicitWeight*e + behavioralWeight*b + contextualWeight*c)
}

// explicitComponent blends the normalized star rating with the outcome type
// weight. Without a rating the type weight stands alone.
func explicitComponent(o *outcome.Outcome) float64 {
	typeWeight := o.OutcomeType().Weight()
	if !o.HasRating() {
		return typeWeight
	}
	normRating := float64(o.Rating()-1) / 4.0
	return 0.5*normRating + 0.5*typeWeight
}

// behavioralComponent rewards fast responses and fast outcomes. A missing
// timestamp zeroes its half rather than guessing.
func (f *FeedbackScorer) behavioralComponent(sentAt, respondedAt, recordedAt time.Time) float64 {
	return 0.5*speed(sentAt, respondedAt, f.responseCap) +
		0.5*speed(respondedAt, recordedAt, f.completionCap)
}

// speed maps the delay between two events to [0,1]: immediate is 1, at or
// past the cap is 0.
func speed(from, to time.Time, cap time.Duration) float64 {
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return 0
	}
	d := to.Sub(from)
	if d >= cap {
		return 0
	}
	return 1 - float64(d)/float64(cap)
}

// sentimentLexicon maps feedback vocabulary to polarity. Matched against
// whole words in tags and notes.
var sentimentLexicon = map[string]int{
	"great": 1, "helpful": 1, "valuable": 1, "productive": 1,
	"promising": 1, "excellent": 1, "useful": 1, "insightful": 1,
	"responsive": 1, "relevant": 1, "follow-up": 1,

	"waste": -1, "irrelevant": -1, "spam": -1, "unhelpful": -1,
	"rude": -1, "mismatch": -1, "poor": -1, "unresponsive": -1,
	"ghosted": -1, "stale": -1,
}

// contextualComponent scores the sentiment balance of tags and notes. No
// sentiment-bearing words means neutral 0.5.
func contextualComponent(o *outcome.Outcome) float64 {
	var pos, neg int
	count := func(text string) {
		for _, w := range tokenize(text) {
			switch sentimentLexicon[w] {
			case 1:
				pos++
			case -1:
				neg++
			}
		}
	}
	for _, tag := range o.Tags() {
		count(tag)
	}
	count(o.Notes())

	if pos+neg == 0 {
		return 0.5
	}
	return 0.5 + 0.5*float64(pos-neg)/float64(pos+neg)
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && r != '-'
	})
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
