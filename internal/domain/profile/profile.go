package profile

import (
	"fmt"
	"time"
)

// AutonomyMode is the per-member policy controlling how ranked matches turn
// into introductions. Resolved once per decision call and passed explicitly,
// never read as ambient state.
type AutonomyMode string

// Autonomy modes.
const (
	ModeSuggest AutonomyMode = "suggest"
	ModeApprove AutonomyMode = "approve"
	ModeAuto    AutonomyMode = "auto"
)

// ParseAutonomyMode validates a mode string.
func ParseAutonomyMode(s string) (AutonomyMode, error) {
	switch m := AutonomyMode(s); m {
	case ModeSuggest, ModeApprove, ModeAuto:
		return m, nil
	default:
		return "", fmt.Errorf("unknown autonomy mode %q", s)
	}
}

// Ask is an open request a member published.
type Ask struct {
	ID      string
	AskType string
}

// Goal is a stated goal or offer of a member.
type Goal struct {
	ID       string
	GoalType string
}

// Profile is the engine's read-only view of a member: trust inputs,
// reciprocity inputs, exclusions, and the autonomy policy. Owned by the
// profile service; this engine never writes it.
type Profile struct {
	MemberID        string
	BioPresent      bool
	ContactVerified bool
	PublicVisible   bool
	Industry        string
	Location        string
	Goals           []Goal
	OpenAsks        []Ask
	Connections     []string
	DoNotIntro      []string
	Autonomy        AutonomyMode
	CreatedAt       time.Time
}

// Excluded reports whether the given member may not be introduced to this one:
// self, an existing connection, or anyone on the do-not-intro list.
func (p *Profile) Excluded(memberID string) bool {
	if memberID == p.MemberID {
		return true
	}
	for _, c := range p.Connections {
		if c == memberID {
			return true
		}
	}
	for _, d := range p.DoNotIntro {
		if d == memberID {
			return true
		}
	}
	return false
}
