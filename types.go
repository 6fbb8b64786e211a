package publicfounders

import (
	"time"

	"github.com/ainative-studio/publicfounders/internal/domain/intro"
	"github.com/ainative-studio/publicfounders/internal/domain/match"
	"github.com/ainative-studio/publicfounders/internal/domain/outcome"
)

// Score is the component breakdown of a match, frozen at proposal time.
type Score struct {
	Overall     float64
	Relevance   float64
	Trust       float64
	Reciprocity float64
}

// Introduction is the public shape of an introduction record.
type Introduction struct {
	ID          string
	RequesterID string
	TargetID    string
	Status      string
	Score       Score
	Rationale   string
	Channel     string
	CreatedAt   time.Time
	SentAt      time.Time
	RespondedAt time.Time
	ExpiredAt   time.Time
	CompletedAt time.Time
	HoldUntil   time.Time
}

func introToPublic(i *intro.Introduction) Introduction {
	snap := i.ScoreAtProposal()
	return Introduction{
		ID:          i.ID(),
		RequesterID: i.RequesterID(),
		TargetID:    i.TargetID(),
		Status:      string(i.Status()),
		Score: Score{
			Overall:     snap.Overall,
			Relevance:   snap.Relevance,
			Trust:       snap.Trust,
			Reciprocity: snap.Reciprocity,
		},
		Rationale:   i.Rationale(),
		Channel:     i.Channel(),
		CreatedAt:   i.CreatedAt(),
		SentAt:      i.SentAt(),
		RespondedAt: i.RespondedAt(),
		ExpiredAt:   i.ExpiredAt(),
		CompletedAt: i.CompletedAt(),
		HoldUntil:   i.HoldUntil(),
	}
}

// Outcome is the public shape of a recorded outcome.
type Outcome struct {
	IntroductionID string
	Type           string
	Rating         int
	Tags           []string
	Notes          string
	FeedbackScore  float64
	RecordedAt     time.Time
}

func outcomeToPublic(o *outcome.Outcome) Outcome {
	return Outcome{
		IntroductionID: o.IntroductionID(),
		Type:           string(o.OutcomeType()),
		Rating:         o.Rating(),
		Tags:           o.Tags(),
		Notes:          o.Notes(),
		FeedbackScore:  o.FeedbackScore(),
		RecordedAt:     o.RecordedAt(),
	}
}

// WeightsProposal is the public shape of a learning-loop proposal.
type WeightsProposal struct {
	Version     int
	Relevance   float64
	Trust       float64
	Reciprocity float64
	MinOverall  float64
	SampleSize  int
	CreatedAt   time.Time
}

func proposalToPublic(p *match.Proposal) WeightsProposal {
	return WeightsProposal{
		Version:     p.Weights.Version(),
		Relevance:   p.Weights.Relevance(),
		Trust:       p.Weights.Trust(),
		Reciprocity: p.Weights.Reciprocity(),
		MinOverall:  p.MinOverall,
		SampleSize:  p.SampleSize,
		CreatedAt:   p.CreatedAt,
	}
}
