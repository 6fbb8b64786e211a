package scorer

import (
	"math"
	"testing"

	"github.com/ainative-studio/publicfounders/internal/domain/match"
	"github.com/ainative-studio/publicfounders/internal/domain/profile"
)

func fullTrustProfile(id string) *profile.Profile {
	return &profile.Profile{
		MemberID:        id,
		BioPresent:      true,
		ContactVerified: true,
		PublicVisible:   true,
	}
}

func TestScore_BelowFloorShortCircuits(t *testing.T) {
	svc := New(0.6)
	subject := fullTrustProfile("m1")
	candidate := fullTrustProfile("m2")

	_, ok := svc.Score(subject, candidate, 0.59, match.DefaultWeights())
	if ok {
		t.Fatal("relevance below floor must be excluded")
	}
}

func TestScore_AtFloorPasses(t *testing.T) {
	svc := New(0.6)
	s, ok := svc.Score(fullTrustProfile("m1"), fullTrustProfile("m2"), 0.6, match.DefaultWeights())
	if !ok {
		t.Fatal("relevance at floor must pass")
	}
	if s.Relevance() != 0.6 {
		t.Errorf("relevance = %v, want 0.6", s.Relevance())
	}
}

func TestScore_FloorSelectsAmongCandidates(t *testing.T) {
	// Two candidates at relevance 0.90 and 0.95: a permissive floor admits
	// both, a strict one keeps only the stronger match.
	subject := fullTrustProfile("m1")
	candidates := []struct {
		id        string
		relevance float64
	}{
		{"m2", 0.90},
		{"m3", 0.95},
	}
	cases := []struct {
		name     string
		floor    float64
		wantPass []string
	}{
		{"permissive floor", 0.7, []string{"m2", "m3"}},
		{"strict floor", 0.92, []string{"m3"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			svc := New(c.floor)
			var passed []string
			for _, cand := range candidates {
				if _, ok := svc.Score(subject, fullTrustProfile(cand.id), cand.relevance, match.DefaultWeights()); ok {
					passed = append(passed, cand.id)
				}
			}
			if len(passed) != len(c.wantPass) {
				t.Fatalf("passed = %v, want %v", passed, c.wantPass)
			}
			for i := range passed {
				if passed[i] != c.wantPass[i] {
					t.Errorf("passed = %v, want %v", passed, c.wantPass)
				}
			}
		})
	}
}

func TestScore_TrustThirds(t *testing.T) {
	svc := New(0.6)
	subject := fullTrustProfile("m1")

	cases := []struct {
		name      string
		candidate *profile.Profile
		want      float64
	}{
		{"empty", &profile.Profile{MemberID: "m2"}, 0},
		{"bio only", &profile.Profile{MemberID: "m2", BioPresent: true}, 1.0 / 3.0},
		{"bio and contact", &profile.Profile{MemberID: "m2", BioPresent: true, ContactVerified: true}, 2.0 / 3.0},
		{"all three", fullTrustProfile("m2"), 1},
	}
	for _, c := range cases {
		s, ok := svc.Score(subject, c.candidate, 0.9, match.DefaultWeights())
		if !ok {
			t.Fatalf("%s: unexpectedly filtered", c.name)
		}
		if math.Abs(s.Trust()-c.want) > 1e-9 {
			t.Errorf("%s: trust = %v, want %v", c.name, s.Trust(), c.want)
		}
	}
}

func TestScore_ReciprocityMatchedAsks(t *testing.T) {
	svc := New(0.6)
	subject := &profile.Profile{
		MemberID: "m1",
		OpenAsks: []profile.Ask{
			{ID: "a1", AskType: "fundraising"},
			{ID: "a2", AskType: "hiring"},
		},
	}
	candidate := &profile.Profile{
		MemberID: "m2",
		Goals:    []profile.Goal{{ID: "g1", GoalType: "fundraising"}},
	}

	s, ok := svc.Score(subject, candidate, 0.9, match.DefaultWeights())
	if !ok {
		t.Fatal("unexpectedly filtered")
	}
	// One of two asks matched, no bonus.
	if math.Abs(s.Reciprocity()-0.5) > 1e-9 {
		t.Errorf("reciprocity = %v, want 0.5", s.Reciprocity())
	}

	mctx := s.MatchContext()
	if mctx.GoalType != "fundraising" {
		t.Errorf("goal type = %q, want fundraising", mctx.GoalType)
	}
	if len(mctx.MatchedAskIDs) != 1 || mctx.MatchedAskIDs[0] != "a1" {
		t.Errorf("matched asks = %v, want [a1]", mctx.MatchedAskIDs)
	}
	if len(mctx.MatchedGoalIDs) != 1 || mctx.MatchedGoalIDs[0] != "g1" {
		t.Errorf("matched goals = %v, want [g1]", mctx.MatchedGoalIDs)
	}
}

func TestScore_ReciprocityBonusCapped(t *testing.T) {
	svc := New(0.6)
	subject := &profile.Profile{
		MemberID: "m1",
		Industry: "fintech",
		Location: "Berlin",
		OpenAsks: []profile.Ask{{ID: "a1", AskType: "hiring"}},
	}
	candidate := &profile.Profile{
		MemberID: "m2",
		Industry: "fintech",
		Location: "Berlin",
		Goals:    []profile.Goal{{ID: "g1", GoalType: "hiring"}},
	}

	s, ok := svc.Score(subject, candidate, 0.9, match.DefaultWeights())
	if !ok {
		t.Fatal("unexpectedly filtered")
	}
	// Full ask match (1.0) plus capped bonus, clamped to 1.
	if s.Reciprocity() != 1 {
		t.Errorf("reciprocity = %v, want 1", s.Reciprocity())
	}
	if !s.MatchContext().IndustryMatch {
		t.Error("expected industry match flag")
	}
}

func TestScore_ReciprocityBonusOnly(t *testing.T) {
	svc := New(0.6)
	subject := &profile.Profile{MemberID: "m1", Industry: "fintech"}
	candidate := &profile.Profile{MemberID: "m2", Industry: "fintech"}

	s, ok := svc.Score(subject, candidate, 0.9, match.DefaultWeights())
	if !ok {
		t.Fatal("unexpectedly filtered")
	}
	if math.Abs(s.Reciprocity()-0.05) > 1e-9 {
		t.Errorf("reciprocity = %v, want 0.05", s.Reciprocity())
	}
}

func TestScore_EmptyIndustryNoBonus(t *testing.T) {
	svc := New(0.6)
	s, ok := svc.Score(&profile.Profile{MemberID: "m1"}, &profile.Profile{MemberID: "m2"}, 0.9, match.DefaultWeights())
	if !ok {
		t.Fatal("unexpectedly filtered")
	}
	if s.Reciprocity() != 0 {
		t.Errorf("reciprocity = %v, want 0 when both industries empty", s.Reciprocity())
	}
}

func TestScorePair(t *testing.T) {
	svc := New(0.6)
	vec := []float32{0.5, 0.5, 0}

	s, ok := svc.ScorePair(fullTrustProfile("m1"), fullTrustProfile("m2"), vec, vec, match.DefaultWeights())
	if !ok {
		t.Fatal("identical vectors must pass the floor")
	}
	if math.Abs(s.Relevance()-1) > 1e-6 {
		t.Errorf("relevance = %v, want 1", s.Relevance())
	}

	if _, ok := svc.ScorePair(fullTrustProfile("m1"), fullTrustProfile("m2"), vec, nil, match.DefaultWeights()); ok {
		t.Error("missing candidate vector must score 0 and be filtered")
	}
}

func TestCosine(t *testing.T) {
	cases := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite clamped", []float32{1, 0}, []float32{-1, 0}, 0},
		{"empty", nil, []float32{1}, 0},
		{"length mismatch", []float32{1, 0}, []float32{1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
	}
	for _, c := range cases {
		if got := Cosine(c.a, c.b); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("%s: Cosine = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestNew_DefaultFloor(t *testing.T) {
	svc := New(0)
	if svc.RelevanceFloor() != DefaultRelevanceFloor {
		t.Errorf("floor = %v, want %v", svc.RelevanceFloor(), DefaultRelevanceFloor)
	}
}
