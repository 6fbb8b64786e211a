package autonomy

import (
	"time"

	"github.com/ainative-studio/publicfounders/internal/domain/match"
	"github.com/ainative-studio/publicfounders/internal/domain/profile"
)

// Defaults for autonomous execution.
const (
	DefaultAutoFloor  = 0.75
	DefaultVetoWindow = 24 * time.Hour
)

// Action is what the gate tells the lifecycle to do with a ranked match.
type Action string

// Gate actions.
const (
	ActionSuggest         Action = "suggest"
	ActionHoldForApproval Action = "hold_for_approval"
	ActionExecute         Action = "execute"
)

// Decision is the gate's verdict for one match. HoldUntil is set only for
// ActionHoldForApproval.
type Decision struct {
	Action    Action
	HoldUntil time.Time
}

// Gate maps a member's autonomy mode and a match score to an action. Pure
// policy; it holds no state and performs no IO.
type Gate struct {
	autoFloor  float64
	vetoWindow time.Duration
}

// New creates an autonomy gate. Non-positive arguments fall back to defaults.
func New(autoFloor float64, vetoWindow time.Duration) *Gate {
	if autoFloor <= 0 {
		autoFloor = DefaultAutoFloor
	}
	if vetoWindow <= 0 {
		vetoWindow = DefaultVetoWindow
	}
	return &Gate{autoFloor: autoFloor, vetoWindow: vetoWindow}
}

// Decide resolves the action for a single match. The mode is resolved by the
// caller at decision time; an in-flight hold keeps the window it was created
// with even if the member changes modes afterwards.
//
// Auto mode has a safety floor: scores below it downgrade to a suggestion
// instead of executing, regardless of the member's policy.
func (g *Gate) Decide(mode profile.AutonomyMode, score *match.Score, now time.Time) Decision {
	switch mode {
	case profile.ModeApprove:
		return Decision{Action: ActionHoldForApproval, HoldUntil: now.Add(g.vetoWindow)}
	case profile.ModeAuto:
		if score.Overall() >= g.autoFloor {
			return Decision{Action: ActionExecute}
		}
		return Decision{Action: ActionSuggest}
	default:
		// Suggest, plus any unknown mode: never act on the member's behalf.
		return Decision{Action: ActionSuggest}
	}
}
