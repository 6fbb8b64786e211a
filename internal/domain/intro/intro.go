package intro

import (
	"fmt"
	"time"

	"github.com/ainative-studio/publicfounders/internal/domain"
)

// Status is the lifecycle state of an introduction.
type Status string

// Lifecycle states: proposed → sent → {accepted, declined, expired};
// accepted → {completed, incomplete}.
const (
	StatusProposed   Status = "proposed"
	StatusSent       Status = "sent"
	StatusAccepted   Status = "accepted"
	StatusDeclined   Status = "declined"
	StatusExpired    Status = "expired"
	StatusCompleted  Status = "completed"
	StatusIncomplete Status = "incomplete"
)

// ParseStatus validates a status string.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusProposed, StatusSent, StatusAccepted, StatusDeclined,
		StatusExpired, StatusCompleted, StatusIncomplete:
		return st, nil
	default:
		return "", fmt.Errorf("unknown introduction status %q", s)
	}
}

// HardTerminal reports whether no transition may ever leave this status.
// incomplete is soft-terminal: a late outcome still converts it to completed.
func (s Status) HardTerminal() bool {
	return s == StatusDeclined || s == StatusExpired
}

// Response is a recorded reaction of the target to a sent introduction.
type Response string

// Responses.
const (
	ResponseAccepted Response = "accepted"
	ResponseDeclined Response = "declined"
)

// ParseResponse validates a response string.
func ParseResponse(s string) (Response, error) {
	switch r := Response(s); r {
	case ResponseAccepted, ResponseDeclined:
		return r, nil
	default:
		return "", fmt.Errorf("unknown response %q", s)
	}
}

// Actor identifies who is attempting a transition. System actors are sweep and
// delivery agents acting on behalf of the platform.
type Actor struct {
	MemberID string
	System   bool
}

// SystemActor is the platform-internal agent used by sweeps and delivery.
var SystemActor = Actor{System: true}

// ScoreSnapshot freezes the match score components at proposal time. The
// learning loop buckets feedback by these, so they persist with the record
// while the full MatchScore does not.
type ScoreSnapshot struct {
	Overall       float64
	Relevance     float64
	Trust         float64
	Reciprocity   float64
	GoalType      string
	IndustryMatch bool
}

// Introduction tracks a proposed connection between two members from creation
// through delivery to a resolved outcome. Historical transition timestamps are
// append-only: once set they are never rewritten.
type Introduction struct {
	id          string
	requesterID string
	targetID    string
	score       ScoreSnapshot
	rationale   string
	channel     string
	status      Status
	createdAt   time.Time
	sentAt      time.Time
	respondedAt time.Time
	expiredAt   time.Time
	completedAt time.Time
	holdUntil   time.Time
}

// NewProposal creates an introduction in the proposed state.
func NewProposal(id, requesterID, targetID string, score ScoreSnapshot, channel string, now time.Time) (Introduction, error) {
	if id == "" || requesterID == "" || targetID == "" {
		return Introduction{}, fmt.Errorf("introduction id and participants are required")
	}
	if requesterID == targetID {
		return Introduction{}, fmt.Errorf("requester and target must differ")
	}
	return Introduction{
		id:          id,
		requesterID: requesterID,
		targetID:    targetID,
		score:       score,
		channel:     channel,
		status:      StatusProposed,
		createdAt:   now,
	}, nil
}

// Reconstruct rebuilds an introduction from storage.
func Reconstruct(
	id, requesterID, targetID string, score ScoreSnapshot,
	rationale, channel string, status Status,
	createdAt, sentAt, respondedAt, expiredAt, completedAt, holdUntil time.Time,
) Introduction {
	return Introduction{
		id: id, requesterID: requesterID, targetID: targetID,
		score: score, rationale: rationale, channel: channel, status: status,
		createdAt: createdAt, sentAt: sentAt, respondedAt: respondedAt,
		expiredAt: expiredAt, completedAt: completedAt, holdUntil: holdUntil,
	}
}

// ID returns the introduction identifier.
func (i *Introduction) ID() string { return i.id }

// RequesterID returns the member the introduction was proposed for.
func (i *Introduction) RequesterID() string { return i.requesterID }

// TargetID returns the member being introduced.
func (i *Introduction) TargetID() string { return i.targetID }

// OverallScoreAtProposal returns the composite match score frozen at proposal time.
func (i *Introduction) OverallScoreAtProposal() float64 { return i.score.Overall }

// ScoreAtProposal returns the full score snapshot frozen at proposal time.
func (i *Introduction) ScoreAtProposal() ScoreSnapshot { return i.score }

// Rationale returns the delivery rationale; immutable once sent.
func (i *Introduction) Rationale() string { return i.rationale }

// Channel returns the delivery channel.
func (i *Introduction) Channel() string { return i.channel }

// Status returns the current lifecycle state.
func (i *Introduction) Status() Status { return i.status }

// CreatedAt returns the proposal timestamp.
func (i *Introduction) CreatedAt() time.Time { return i.createdAt }

// SentAt returns the delivery timestamp; zero until sent.
func (i *Introduction) SentAt() time.Time { return i.sentAt }

// RespondedAt returns the member response timestamp; zero until responded.
// System-driven expiry never writes it.
func (i *Introduction) RespondedAt() time.Time { return i.respondedAt }

// ExpiredAt returns when the expiry sweep closed the introduction; zero
// unless expired.
func (i *Introduction) ExpiredAt() time.Time { return i.expiredAt }

// CompletedAt returns the completion timestamp; zero until completed.
func (i *Introduction) CompletedAt() time.Time { return i.completedAt }

// HoldUntil returns the end of the approval veto window; zero unless held.
func (i *Introduction) HoldUntil() time.Time { return i.holdUntil }

// Held reports whether the introduction is waiting out an approval veto window.
func (i *Introduction) Held() bool { return i.status == StatusProposed && !i.holdUntil.IsZero() }

// authorized checks the transition guard: participants and system agents only.
func (i *Introduction) authorized(actor Actor) bool {
	return actor.System || actor.MemberID == i.requesterID || actor.MemberID == i.targetID
}

// Hold parks a proposed introduction until the approval veto window elapses.
func (i *Introduction) Hold(until time.Time) error {
	if i.status != StatusProposed {
		return fmt.Errorf("hold from %s: %w", i.status, domain.ErrInvalidTransition)
	}
	i.holdUntil = until
	return nil
}

// CancelHold clears a pending approval hold, keeping the introduction as a
// plain suggestion.
func (i *Introduction) CancelHold(actor Actor) error {
	if !i.authorized(actor) {
		return domain.ErrUnauthorized
	}
	if !i.Held() {
		return fmt.Errorf("cancel hold from %s: %w", i.status, domain.ErrInvalidTransition)
	}
	i.holdUntil = time.Time{}
	return nil
}

// Send moves proposed → sent. The rationale attaches here and becomes immutable.
func (i *Introduction) Send(actor Actor, rationale string, now time.Time) error {
	if !i.authorized(actor) {
		return domain.ErrUnauthorized
	}
	if i.status != StatusProposed {
		return fmt.Errorf("send from %s: %w", i.status, domain.ErrInvalidTransition)
	}
	i.status = StatusSent
	i.rationale = rationale
	i.sentAt = now
	i.holdUntil = time.Time{}
	return nil
}

// Respond moves sent → accepted|declined. Exactly one response is recorded; a
// second attempt fails with ErrDuplicateResponse and the original stands.
func (i *Introduction) Respond(actor Actor, r Response, now time.Time) error {
	if !i.authorized(actor) {
		return domain.ErrUnauthorized
	}
	switch i.status {
	case StatusSent:
	case StatusAccepted, StatusDeclined, StatusCompleted, StatusIncomplete:
		return domain.ErrDuplicateResponse
	default:
		return fmt.Errorf("respond from %s: %w", i.status, domain.ErrInvalidTransition)
	}
	if r == ResponseAccepted {
		i.status = StatusAccepted
	} else {
		i.status = StatusDeclined
	}
	i.respondedAt = now
	return nil
}

// Expire moves sent → expired once the response window has elapsed.
// Idempotent: re-sweeping an already-expired introduction is a no-op.
func (i *Introduction) Expire(window time.Duration, now time.Time) error {
	if i.status == StatusExpired {
		return nil
	}
	if i.status != StatusSent {
		return fmt.Errorf("expire from %s: %w", i.status, domain.ErrInvalidTransition)
	}
	if now.Before(i.sentAt.Add(window)) {
		return fmt.Errorf("response window still open: %w", domain.ErrInvalidTransition)
	}
	i.status = StatusExpired
	i.expiredAt = now
	return nil
}

// Complete moves accepted → completed when an outcome is recorded. A late
// outcome also converts a soft-terminal incomplete introduction.
func (i *Introduction) Complete(now time.Time) error {
	switch i.status {
	case StatusAccepted, StatusIncomplete:
	case StatusCompleted:
		return nil
	default:
		return fmt.Errorf("complete from %s: %w", i.status, domain.ErrInvalidTransition)
	}
	i.status = StatusCompleted
	if i.completedAt.IsZero() {
		i.completedAt = now
	}
	return nil
}

// MarkIncomplete moves accepted → incomplete once the completion window has
// elapsed without an outcome. Idempotent.
func (i *Introduction) MarkIncomplete(window time.Duration, now time.Time) error {
	if i.status == StatusIncomplete {
		return nil
	}
	if i.status != StatusAccepted {
		return fmt.Errorf("mark incomplete from %s: %w", i.status, domain.ErrInvalidTransition)
	}
	if now.Before(i.respondedAt.Add(window)) {
		return fmt.Errorf("completion window still open: %w", domain.ErrInvalidTransition)
	}
	i.status = StatusIncomplete
	return nil
}
