package weightstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ainative-studio/publicfounders/internal/db"
	"github.com/ainative-studio/publicfounders/internal/domain"
	"github.com/ainative-studio/publicfounders/internal/domain/match"
)

const (
	activeKey         = domain.KeyPrefix + "weights:active"
	latestProposalKey = domain.KeyPrefix + "weights:proposal:latest"
)

// store is the consumer interface for weights configuration.
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Repo persists versioned scoring weights. The active version is applied by
// operators; the learning loop only ever writes proposals.
type Repo struct {
	store store
}

// New creates a weights repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

type weightsDTO struct {
	Version     int     `json:"version"`
	Relevance   float64 `json:"relevance"`
	Trust       float64 `json:"trust"`
	Reciprocity float64 `json:"reciprocity"`
}

type proposalDTO struct {
	Weights     weightsDTO `json:"weights"`
	MinOverall  float64    `json:"min_overall"`
	SampleSize  int        `json:"sample_size"`
	CorrRel     float64    `json:"corr_relevance"`
	CorrTrust   float64    `json:"corr_trust"`
	CorrRecip   float64    `json:"corr_reciprocity"`
	CreatedAtMs int64      `json:"created_at_ms"`
}

// Active returns the active weights, falling back to the default split when
// none has been applied yet.
func (r *Repo) Active(ctx context.Context) (match.Weights, error) {
	data, err := r.store.Get(ctx, activeKey)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return match.DefaultWeights(), nil
		}
		return match.Weights{}, fmt.Errorf("get active weights: %w", err)
	}

	var dto weightsDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return match.Weights{}, fmt.Errorf("parse active weights: %w", err)
	}

	w, err := match.NewWeights(dto.Version, dto.Relevance, dto.Trust, dto.Reciprocity)
	if err != nil {
		return match.Weights{}, fmt.Errorf("invalid stored weights: %w", err)
	}
	return w, nil
}

// SetActive applies a weights version. Operator rollout path only.
func (r *Repo) SetActive(ctx context.Context, w match.Weights) error {
	data, err := json.Marshal(weightsDTO{
		Version:     w.Version(),
		Relevance:   w.Relevance(),
		Trust:       w.Trust(),
		Reciprocity: w.Reciprocity(),
	})
	if err != nil {
		return fmt.Errorf("marshal weights: %w", err)
	}
	if err := r.store.Set(ctx, activeKey, data); err != nil {
		return fmt.Errorf("set active weights: %w", err)
	}
	return nil
}

// SaveProposal stores the latest learning-loop proposal for operator review.
func (r *Repo) SaveProposal(ctx context.Context, p *match.Proposal) error {
	data, err := json.Marshal(proposalDTO{
		Weights: weightsDTO{
			Version:     p.Weights.Version(),
			Relevance:   p.Weights.Relevance(),
			Trust:       p.Weights.Trust(),
			Reciprocity: p.Weights.Reciprocity(),
		},
		MinOverall:  p.MinOverall,
		SampleSize:  p.SampleSize,
		CorrRel:     p.Correlations.Relevance,
		CorrTrust:   p.Correlations.Trust,
		CorrRecip:   p.Correlations.Reciprocity,
		CreatedAtMs: p.CreatedAt.UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("marshal proposal: %w", err)
	}
	if err := r.store.Set(ctx, latestProposalKey, data); err != nil {
		return fmt.Errorf("save proposal: %w", err)
	}
	return nil
}

// LatestProposal returns the most recent proposal.
func (r *Repo) LatestProposal(ctx context.Context) (match.Proposal, error) {
	data, err := r.store.Get(ctx, latestProposalKey)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return match.Proposal{}, domain.ErrWeightsNotFound
		}
		return match.Proposal{}, fmt.Errorf("get latest proposal: %w", err)
	}

	var dto proposalDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return match.Proposal{}, fmt.Errorf("parse proposal: %w", err)
	}

	w, err := match.NewWeights(dto.Weights.Version, dto.Weights.Relevance, dto.Weights.Trust, dto.Weights.Reciprocity)
	if err != nil {
		return match.Proposal{}, fmt.Errorf("invalid stored proposal weights: %w", err)
	}

	return match.Proposal{
		Weights:    w,
		MinOverall: dto.MinOverall,
		SampleSize: dto.SampleSize,
		Correlations: match.ComponentCorrelation{
			Relevance:   dto.CorrRel,
			Trust:       dto.CorrTrust,
			Reciprocity: dto.CorrRecip,
		},
		CreatedAt: time.UnixMilli(dto.CreatedAtMs).UTC(),
	}, nil
}
