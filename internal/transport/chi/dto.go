package chi

import (
	"time"

	"github.com/ainative-studio/publicfounders/internal/domain/intro"
	"github.com/ainative-studio/publicfounders/internal/domain/match"
	"github.com/ainative-studio/publicfounders/internal/domain/outcome"
)

// ErrorResponse is the wire shape of every error.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes.
const (
	codeBadRequest         = "bad_request"
	codeValidationFailed   = "validation_failed"
	codeUnauthorized       = "unauthorized"
	codeForbidden          = "forbidden"
	codeNotFound           = "not_found"
	codeDuplicateResponse  = "duplicate_response"
	codeInvalidTransition  = "invalid_transition"
	codeInvalidOutcome     = "invalid_outcome"
	codeDependencyDown     = "dependency_unavailable"
	codeInsufficientSample = "insufficient_sample"
	codeInternalError      = "internal_error"
)

// ScoreResponse is the component breakdown frozen at proposal time.
type ScoreResponse struct {
	Overall     float64 `json:"overall"`
	Relevance   float64 `json:"relevance"`
	Trust       float64 `json:"trust"`
	Reciprocity float64 `json:"reciprocity"`
}

// IntroductionResponse is the wire shape of an introduction.
type IntroductionResponse struct {
	ID          string        `json:"id"`
	RequesterID string        `json:"requester_id"`
	TargetID    string        `json:"target_id"`
	Status      string        `json:"status"`
	Score       ScoreResponse `json:"score"`
	Rationale   string        `json:"rationale,omitempty"`
	Channel     string        `json:"channel"`
	CreatedAt   time.Time     `json:"created_at"`
	SentAt      *time.Time    `json:"sent_at,omitempty"`
	RespondedAt *time.Time    `json:"responded_at,omitempty"`
	ExpiredAt   *time.Time    `json:"expired_at,omitempty"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	HoldUntil   *time.Time    `json:"hold_until,omitempty"`
}

func introToResponse(i *intro.Introduction) IntroductionResponse {
	snap := i.ScoreAtProposal()
	return IntroductionResponse{
		ID:          i.ID(),
		RequesterID: i.RequesterID(),
		TargetID:    i.TargetID(),
		Status:      string(i.Status()),
		Score: ScoreResponse{
			Overall:     snap.Overall,
			Relevance:   snap.Relevance,
			Trust:       snap.Trust,
			Reciprocity: snap.Reciprocity,
		},
		Rationale:   i.Rationale(),
		Channel:     i.Channel(),
		CreatedAt:   i.CreatedAt(),
		SentAt:      timePtr(i.SentAt()),
		RespondedAt: timePtr(i.RespondedAt()),
		ExpiredAt:   timePtr(i.ExpiredAt()),
		CompletedAt: timePtr(i.CompletedAt()),
		HoldUntil:   timePtr(i.HoldUntil()),
	}
}

// RespondRequest is the accept/decline payload.
type RespondRequest struct {
	Response string `json:"response"`
}

// OutcomeRequest is the outcome recording payload.
type OutcomeRequest struct {
	Type   string   `json:"type"`
	Rating int      `json:"rating,omitempty"`
	Tags   []string `json:"tags,omitempty"`
	Notes  string   `json:"notes,omitempty"`
}

// OutcomeResponse is the wire shape of an outcome.
type OutcomeResponse struct {
	IntroductionID string    `json:"introduction_id"`
	Type           string    `json:"type"`
	Rating         int       `json:"rating,omitempty"`
	Tags           []string  `json:"tags,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	FeedbackScore  float64   `json:"feedback_score"`
	RecordedAt     time.Time `json:"recorded_at"`
}

func outcomeToResponse(o *outcome.Outcome) OutcomeResponse {
	return OutcomeResponse{
		IntroductionID: o.IntroductionID(),
		Type:           string(o.OutcomeType()),
		Rating:         o.Rating(),
		Tags:           o.Tags(),
		Notes:          o.Notes(),
		FeedbackScore:  o.FeedbackScore(),
		RecordedAt:     o.RecordedAt(),
	}
}

// IntentRequest is the intent ingestion payload.
type IntentRequest struct {
	Kind     string `json:"kind"`
	Text     string `json:"text"`
	GoalType string `json:"goal_type,omitempty"`
	Industry string `json:"industry,omitempty"`
	Stage    string `json:"stage,omitempty"`
	Urgency  string `json:"urgency,omitempty"`
}

// IntentResponse acknowledges an ingested intent vector.
type IntentResponse struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

// WeightsResponse is the wire shape of a weight triple.
type WeightsResponse struct {
	Version     int     `json:"version"`
	Relevance   float64 `json:"relevance"`
	Trust       float64 `json:"trust"`
	Reciprocity float64 `json:"reciprocity"`
}

// ProposalResponse is the wire shape of a recalibration proposal.
type ProposalResponse struct {
	Weights      WeightsResponse `json:"weights"`
	MinOverall   float64         `json:"min_overall"`
	SampleSize   int             `json:"sample_size"`
	Correlations struct {
		Relevance   float64 `json:"relevance"`
		Trust       float64 `json:"trust"`
		Reciprocity float64 `json:"reciprocity"`
	} `json:"correlations"`
	CreatedAt time.Time `json:"created_at"`
}

func proposalToResponse(p *match.Proposal) ProposalResponse {
	var resp ProposalResponse
	resp.Weights = WeightsResponse{
		Version:     p.Weights.Version(),
		Relevance:   p.Weights.Relevance(),
		Trust:       p.Weights.Trust(),
		Reciprocity: p.Weights.Reciprocity(),
	}
	resp.MinOverall = p.MinOverall
	resp.SampleSize = p.SampleSize
	resp.Correlations.Relevance = p.Correlations.Relevance
	resp.Correlations.Trust = p.Correlations.Trust
	resp.Correlations.Reciprocity = p.Correlations.Reciprocity
	resp.CreatedAt = p.CreatedAt
	return resp
}

// HealthResponse is the wire shape of a readiness report.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
