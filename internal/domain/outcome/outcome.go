package outcome

import (
	"time"

	"github.com/ainative-studio/publicfounders/internal/domain"
)

// Type classifies what an introduction led to.
type Type string

// Outcome types.
const (
	TypeMeetingScheduled Type = "meeting_scheduled"
	TypeEmailExchanged   Type = "email_exchanged"
	TypeNoResponse       Type = "no_response"
	TypeNotRelevant      Type = "not_relevant"
)

// ParseType validates an outcome type string.
func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case TypeMeetingScheduled, TypeEmailExchanged, TypeNoResponse, TypeNotRelevant:
		return t, nil
	default:
		return "", domain.NewInvalidOutcome("unknown outcome type %q", s)
	}
}

// Weight returns the success weight of the outcome type, used by the explicit
// component of the feedback score.
func (t Type) Weight() float64 {
	switch t {
	case TypeMeetingScheduled:
		return 1.0
	case TypeEmailExchanged:
		return 0.8
	case TypeNoResponse:
		return 0.2
	default:
		return 0.0
	}
}

// Success reports whether the outcome counts toward the success rate.
func (t Type) Success() bool {
	return t == TypeMeetingScheduled || t == TypeEmailExchanged
}

// Tag limits. Oversized tags are rejected before persistence.
const (
	MaxTags      = 10
	MaxTagLength = 64
)

// Outcome is the recorded result of an introduction. Exactly one outcome
// exists per introduction; feedbackScore is always derived via the outcome
// scorer, never set directly, and fully recomputed on every update.
type Outcome struct {
	introductionID string
	outcomeType    Type
	rating         int // 0 = absent, otherwise 1..5
	tags           []string
	notes          string
	feedbackScore  float64
	recordedAt     time.Time
}

// New creates a validated outcome. rating 0 means no explicit rating was given.
func New(introductionID string, t Type, rating int, tags []string, notes string, recordedAt time.Time) (Outcome, error) {
	if introductionID == "" {
		return Outcome{}, domain.NewInvalidOutcome("introduction id is required")
	}
	if _, err := ParseType(string(t)); err != nil {
		return Outcome{}, err
	}
	if rating != 0 && (rating < 1 || rating > 5) {
		return Outcome{}, domain.NewInvalidOutcome("rating must be in [1,5], got %d", rating)
	}
	if len(tags) > MaxTags {
		return Outcome{}, domain.NewInvalidOutcome("at most %d tags allowed, got %d", MaxTags, len(tags))
	}
	for _, tag := range tags {
		if tag == "" || len(tag) > MaxTagLength {
			return Outcome{}, domain.NewInvalidOutcome("tag length must be in [1,%d]", MaxTagLength)
		}
	}
	return Outcome{
		introductionID: introductionID,
		outcomeType:    t,
		rating:         rating,
		tags:           tags,
		notes:          notes,
		recordedAt:     recordedAt,
	}, nil
}

// Reconstruct rebuilds an outcome from storage.
func Reconstruct(introductionID string, t Type, rating int, tags []string, notes string, score float64, recordedAt time.Time) Outcome {
	return Outcome{
		introductionID: introductionID, outcomeType: t, rating: rating,
		tags: tags, notes: notes, feedbackScore: score, recordedAt: recordedAt,
	}
}

// IntroductionID returns the owning introduction id.
func (o *Outcome) IntroductionID() string { return o.introductionID }

// OutcomeType returns the outcome classification.
func (o *Outcome) OutcomeType() Type { return o.outcomeType }

// Rating returns the explicit 1..5 rating, 0 when absent.
func (o *Outcome) Rating() int { return o.rating }

// HasRating reports whether an explicit rating was given.
func (o *Outcome) HasRating() bool { return o.rating != 0 }

// Tags returns the outcome tags.
func (o *Outcome) Tags() []string { return o.tags }

// Notes returns free-form notes.
func (o *Outcome) Notes() string { return o.notes }

// FeedbackScore returns the derived composite feedback score.
func (o *Outcome) FeedbackScore() float64 { return o.feedbackScore }

// RecordedAt returns when the outcome was recorded.
func (o *Outcome) RecordedAt() time.Time { return o.recordedAt }

// WithFeedbackScore returns a copy carrying the derived score. The scorer owns
// the derivation; this only stores its result.
func (o Outcome) WithFeedbackScore(score float64) Outcome {
	o.feedbackScore = score
	return o
}
