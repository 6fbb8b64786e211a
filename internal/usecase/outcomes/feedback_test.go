package outcomes

import (
	"math"
	"testing"
	"time"

	"github.com/ainative-studio/publicfounders/internal/domain/outcome"
)

var (
	sentAt      = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	respondedAt = sentAt.Add(2 * time.Hour)
)

func makeOutcome(t *testing.T, typ outcome.Type, rating int, tags []string, notes string, recordedAt time.Time) outcome.Outcome {
	t.Helper()
	o, err := outcome.New("i1", typ, rating, tags, notes, recordedAt)
	if err != nil {
		t.Fatalf("outcome.New: %v", err)
	}
	return o
}

func TestScore_BestCase(t *testing.T) {
	// 5-star meeting, near-instant response and outcome, positive tag:
	// explicit 1.0, behavioral ~1.0, contextual 1.0.
	f := NewFeedbackScorer(7*24*time.Hour, 30*24*time.Hour)
	o := makeOutcome(t, outcome.TypeMeetingScheduled, 5, []string{"valuable"}, "", respondedAt.Add(time.Hour))

	got := f.Score(&o, sentAt, respondedAt)
	if got < 0.95 {
		t.Errorf("score = %v, want >= 0.95 for the best case", got)
	}
	if got > 1 {
		t.Errorf("score = %v, want <= 1", got)
	}
}

func TestScore_WorstCase(t *testing.T) {
	// not_relevant with 1 star, missing timestamps, negative tag.
	f := NewFeedbackScorer(0, 0)
	o := makeOutcome(t, outcome.TypeNotRelevant, 1, []string{"waste"}, "", respondedAt)

	got := f.Score(&o, time.Time{}, time.Time{})
	if got != 0 {
		t.Errorf("score = %v, want 0 for the worst case", got)
	}
}

func TestExplicitComponent_NoRating(t *testing.T) {
	o := makeOutcome(t, outcome.TypeEmailExchanged, 0, nil, "", respondedAt)
	if got := explicitComponent(&o); got != 0.8 {
		t.Errorf("explicit = %v, want type weight 0.8 when unrated", got)
	}
}

func TestExplicitComponent_BlendsRatingAndType(t *testing.T) {
	// rating 3 normalizes to 0.5; meeting_scheduled weighs 1.0.
	o := makeOutcome(t, outcome.TypeMeetingScheduled, 3, nil, "", respondedAt)
	if got := explicitComponent(&o); math.Abs(got-0.75) > 1e-9 {
		t.Errorf("explicit = %v, want 0.75", got)
	}
}

func TestBehavioralComponent_MissingTimestampsZeroHalves(t *testing.T) {
	f := NewFeedbackScorer(7*24*time.Hour, 30*24*time.Hour)

	// No response timestamp: both halves zero.
	if got := f.behavioralComponent(sentAt, time.Time{}, respondedAt); got != 0 {
		t.Errorf("behavioral = %v, want 0 without respondedAt", got)
	}

	// Response but recorded long after: only the response half counts.
	got := f.behavioralComponent(sentAt, respondedAt, respondedAt.Add(31*24*time.Hour))
	respHalf := 0.5 * (1 - float64(2*time.Hour)/float64(7*24*time.Hour))
	if math.Abs(got-respHalf) > 1e-9 {
		t.Errorf("behavioral = %v, want %v", got, respHalf)
	}
}

func TestSpeed(t *testing.T) {
	cap := 10 * time.Hour
	cases := []struct {
		name     string
		from, to time.Time
		want     float64
	}{
		{"immediate", sentAt, sentAt, 1},
		{"halfway", sentAt, sentAt.Add(5 * time.Hour), 0.5},
		{"at cap", sentAt, sentAt.Add(10 * time.Hour), 0},
		{"past cap", sentAt, sentAt.Add(20 * time.Hour), 0},
		{"zero from", time.Time{}, sentAt, 0},
		{"backwards", sentAt.Add(time.Hour), sentAt, 0},
	}
	for _, c := range cases {
		if got := speed(c.from, c.to, cap); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("%s: speed = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestContextualComponent(t *testing.T) {
	cases := []struct {
		name  string
		tags  []string
		notes string
		want  float64
	}{
		{"no sentiment words", []string{"intro"}, "we talked", 0.5},
		{"all positive", []string{"valuable"}, "great and helpful", 1},
		{"all negative", []string{"waste"}, "totally irrelevant", 0},
		{"mixed", nil, "helpful but ultimately irrelevant", 0.5},
		{"hyphenated", nil, "scheduled a follow-up", 1},
		{"case insensitive", nil, "GREAT conversation", 1},
	}
	for _, c := range cases {
		o := makeOutcome(t, outcome.TypeEmailExchanged, 0, c.tags, c.notes, respondedAt)
		if got := contextualComponent(&o); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("%s: contextual = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestScore_Deterministic(t *testing.T) {
	f := NewFeedbackScorer(7*24*time.Hour, 30*24*time.Hour)
	o := makeOutcome(t, outcome.TypeEmailExchanged, 4, []string{"useful"}, "good chat", respondedAt.Add(time.Hour))

	first := f.Score(&o, sentAt, respondedAt)
	for i := 0; i < 5; i++ {
		if got := f.Score(&o, sentAt, respondedAt); got != first {
			t.Fatalf("score changed between calls: %v vs %v", got, first)
		}
	}
}
