package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ainative-studio/publicfounders/internal/domain/intro"
	"github.com/ainative-studio/publicfounders/internal/domain/outcome"
)

// maxIntroductions bounds a single report's input set.
const maxIntroductions = 1000

// topTagCount limits how many tags a report surfaces.
const topTagCount = 5

// IntroductionLister reads a member's introductions.
type IntroductionLister interface {
	ListByRequester(ctx context.Context, requesterID string, from, to time.Time, limit int) ([]intro.Introduction, error)
}

// OutcomeReader batch-reads outcomes by introduction id.
type OutcomeReader interface {
	GetMulti(ctx context.Context, introductionIDs []string) ([]outcome.Outcome, error)
}

// TagCount is one entry of a report's top-tags list.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Report aggregates a member's introduction outcomes over a period.
type Report struct {
	MemberID        string         `json:"member_id"`
	From            time.Time      `json:"from,omitempty"`
	To              time.Time      `json:"to,omitempty"`
	Introductions   int            `json:"introductions"`
	Sent            int            `json:"sent"`
	Responded       int            `json:"responded"`
	OutcomesByType  map[string]int `json:"outcomes_by_type"`
	SuccessRate     float64        `json:"success_rate"`
	ResponseRate    float64        `json:"response_rate"`
	AverageRating   float64        `json:"average_rating"`
	AverageFeedback float64        `json:"average_feedback"`
	TopTags         []TagCount     `json:"top_tags"`
}

// Service computes per-member outcome analytics on demand.
type Service struct {
	intros   IntroductionLister
	outcomes OutcomeReader
}

// New creates an analytics service.
func New(intros IntroductionLister, outcomes OutcomeReader) *Service {
	return &Service{intros: intros, outcomes: outcomes}
}

// Report aggregates the member's introductions in the optional [from, to]
// range. Rates over an empty denominator are 0, never NaN.
func (s *Service) Report(ctx context.Context, memberID string, from, to time.Time) (Report, error) {
	intros, err := s.intros.ListByRequester(ctx, memberID, from, to, maxIntroductions)
	if err != nil {
		return Report{}, fmt.Errorf("list introductions: %w", err)
	}

	r := Report{
		MemberID:       memberID,
		From:           from,
		To:             to,
		Introductions:  len(intros),
		OutcomesByType: make(map[string]int),
	}

	ids := make([]string, 0, len(intros))
	for idx := range intros {
		i := &intros[idx]
		ids = append(ids, i.ID())
		if !i.SentAt().IsZero() {
			r.Sent++
		}
		switch i.Status() {
		case intro.StatusAccepted, intro.StatusDeclined, intro.StatusCompleted, intro.StatusIncomplete:
			r.Responded++
		}
	}

	outs, err := s.outcomes.GetMulti(ctx, ids)
	if err != nil {
		return Report{}, fmt.Errorf("load outcomes: %w", err)
	}

	var (
		successes   int
		ratingSum   int
		ratingCount int
		feedbackSum float64
		tagCounts   = make(map[string]int)
	)
	for idx := range outs {
		o := &outs[idx]
		r.OutcomesByType[string(o.OutcomeType())]++
		if o.OutcomeType().Success() {
			successes++
		}
		if o.HasRating() {
			ratingSum += o.Rating()
			ratingCount++
		}
		feedbackSum += o.FeedbackScore()
		for _, tag := range o.Tags() {
			tagCounts[tag]++
		}
	}

	if len(outs) > 0 {
		r.SuccessRate = float64(successes) / float64(len(outs))
		r.AverageFeedback = feedbackSum / float64(len(outs))
	}
	if r.Sent > 0 {
		r.ResponseRate = float64(r.Responded) / float64(r.Sent)
	}
	if ratingCount > 0 {
		r.AverageRating = float64(ratingSum) / float64(ratingCount)
	}
	r.TopTags = topTags(tagCounts, topTagCount)

	return r, nil
}

func topTags(counts map[string]int, limit int) []TagCount {
	tags := make([]TagCount, 0, len(counts))
	for tag, count := range counts {
		tags = append(tags, TagCount{Tag: tag, Count: count})
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Count != tags[j].Count {
			return tags[i].Count > tags[j].Count
		}
		return tags[i].Tag < tags[j].Tag
	})
	if len(tags) > limit {
		tags = tags[:limit]
	}
	return tags
}
