package autonomy

import (
	"testing"
	"time"

	"github.com/ainative-studio/publicfounders/internal/domain/match"
	"github.com/ainative-studio/publicfounders/internal/domain/profile"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func scoreWithOverall(t *testing.T, overall float64) match.Score {
	t.Helper()
	// relevance-only weights make overall == the relevance input
	w, err := match.NewWeights(0, 1, 0, 0)
	if err != nil {
		t.Fatalf("NewWeights: %v", err)
	}
	return match.NewScore("m1", "m2", overall, 0, 0, w, match.Context{})
}

func TestDecide_Suggest(t *testing.T) {
	g := New(0.75, 24*time.Hour)
	s := scoreWithOverall(t, 0.99)

	d := g.Decide(profile.ModeSuggest, &s, now)
	if d.Action != ActionSuggest {
		t.Errorf("action = %s, want suggest", d.Action)
	}
	if !d.HoldUntil.IsZero() {
		t.Error("suggest must not carry a hold deadline")
	}
}

func TestDecide_ApproveHoldsForVetoWindow(t *testing.T) {
	g := New(0.75, 24*time.Hour)
	s := scoreWithOverall(t, 0.5)

	d := g.Decide(profile.ModeApprove, &s, now)
	if d.Action != ActionHoldForApproval {
		t.Errorf("action = %s, want hold_for_approval", d.Action)
	}
	if want := now.Add(24 * time.Hour); !d.HoldUntil.Equal(want) {
		t.Errorf("holdUntil = %v, want %v", d.HoldUntil, want)
	}
}

func TestDecide_AutoExecutesAboveFloor(t *testing.T) {
	g := New(0.75, 24*time.Hour)

	s := scoreWithOverall(t, 0.75)
	if d := g.Decide(profile.ModeAuto, &s, now); d.Action != ActionExecute {
		t.Errorf("score at floor: action = %s, want execute", d.Action)
	}

	s = scoreWithOverall(t, 0.9)
	if d := g.Decide(profile.ModeAuto, &s, now); d.Action != ActionExecute {
		t.Errorf("score above floor: action = %s, want execute", d.Action)
	}
}

func TestDecide_AutoDowngradesBelowFloor(t *testing.T) {
	g := New(0.75, 24*time.Hour)
	s := scoreWithOverall(t, 0.74)

	if d := g.Decide(profile.ModeAuto, &s, now); d.Action != ActionSuggest {
		t.Errorf("action = %s, want suggest below the safety floor", d.Action)
	}
}

func TestDecide_UnknownModeNeverActs(t *testing.T) {
	g := New(0.75, 24*time.Hour)
	s := scoreWithOverall(t, 0.99)

	if d := g.Decide(profile.AutonomyMode("experimental"), &s, now); d.Action != ActionSuggest {
		t.Errorf("action = %s, want suggest for unknown mode", d.Action)
	}
}

func TestNew_Defaults(t *testing.T) {
	g := New(0, 0)
	if g.autoFloor != DefaultAutoFloor {
		t.Errorf("autoFloor = %v, want %v", g.autoFloor, DefaultAutoFloor)
	}
	if g.vetoWindow != DefaultVetoWindow {
		t.Errorf("vetoWindow = %v, want %v", g.vetoWindow, DefaultVetoWindow)
	}
}
