package outcomestore

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ainative-studio/publicfounders/internal/domain"
	"github.com/ainative-studio/publicfounders/internal/domain/outcome"
)

const keyPrefix = domain.KeyPrefix + "outcome:"

// store is the consumer interface for outcome records.
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetIfAbsent(ctx context.Context, key string, fields map[string]string) (bool, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
}

// Repo persists outcomes keyed by introduction id, which is what enforces the
// one-outcome-per-introduction constraint at the storage level.
type Repo struct {
	store store
}

// New creates an outcome repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Create stores a new outcome. Returns ErrInvalidOutcome when one already
// exists for the introduction.
func (r *Repo) Create(ctx context.Context, o *outcome.Outcome) error {
	created, err := r.store.HSetIfAbsent(ctx, outcomeKey(o.IntroductionID()), buildHashFields(o))
	if err != nil {
		return fmt.Errorf("create outcome for %s: %w", o.IntroductionID(), err)
	}
	if !created {
		return domain.NewInvalidOutcome("introduction %s already has an outcome", o.IntroductionID())
	}
	return nil
}

// Update overwrites an existing outcome with a fully recomputed record.
func (r *Repo) Update(ctx context.Context, o *outcome.Outcome) error {
	if err := r.store.HSet(ctx, outcomeKey(o.IntroductionID()), buildHashFields(o)); err != nil {
		return fmt.Errorf("update outcome for %s: %w", o.IntroductionID(), err)
	}
	return nil
}

// Get returns the outcome of an introduction.
func (r *Repo) Get(ctx context.Context, introductionID string) (outcome.Outcome, error) {
	m, err := r.store.HGetAll(ctx, outcomeKey(introductionID))
	if err != nil {
		return outcome.Outcome{}, fmt.Errorf("get outcome for %s: %w", introductionID, err)
	}
	if len(m) == 0 {
		return outcome.Outcome{}, domain.ErrOutcomeNotFound
	}
	return parseHashFields(introductionID, m), nil
}

// GetMulti returns the outcomes for the given introduction ids, skipping
// introductions that have none.
func (r *Repo) GetMulti(ctx context.Context, introductionIDs []string) ([]outcome.Outcome, error) {
	if len(introductionIDs) == 0 {
		return nil, nil
	}

	keys := make([]string, len(introductionIDs))
	for i, id := range introductionIDs {
		keys[i] = outcomeKey(id)
	}

	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("get outcomes: %w", err)
	}

	outcomes := make([]outcome.Outcome, 0, len(maps))
	for i, m := range maps {
		if len(m) == 0 {
			continue
		}
		outcomes = append(outcomes, parseHashFields(introductionIDs[i], m))
	}
	return outcomes, nil
}

func outcomeKey(introductionID string) string { return keyPrefix + introductionID }

// buildHashFields flattens an outcome for HSET.
func buildHashFields(o *outcome.Outcome) map[string]string {
	return map[string]string{
		"type":           string(o.OutcomeType()),
		"rating":         strconv.Itoa(o.Rating()),
		"tags":           strings.Join(o.Tags(), "\x1f"),
		"notes":          o.Notes(),
		"feedback_score": strconv.FormatFloat(o.FeedbackScore(), 'f', -1, 64),
		"recorded_at":    strconv.FormatInt(o.RecordedAt().UnixMilli(), 10),
	}
}

// parseHashFields rebuilds an outcome from a hash record.
func parseHashFields(introductionID string, m map[string]string) outcome.Outcome {
	t, _ := outcome.ParseType(m["type"])
	rating, _ := strconv.Atoi(m["rating"])
	score, _ := strconv.ParseFloat(m["feedback_score"], 64)

	var tags []string
	if m["tags"] != "" {
		tags = strings.Split(m["tags"], "\x1f")
	}

	var recordedAt time.Time
	if ms, err := strconv.ParseInt(m["recorded_at"], 10, 64); err == nil && ms != 0 {
		recordedAt = time.UnixMilli(ms).UTC()
	}

	return outcome.Reconstruct(introductionID, t, rating, tags, m["notes"], score, recordedAt)
}
