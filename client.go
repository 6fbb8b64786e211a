// Package publicfounders is the embedded client for the matching engine:
// platform services link it directly instead of calling the HTTP API.
package publicfounders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ainative-studio/publicfounders/internal/db"
	dbredis "github.com/ainative-studio/publicfounders/internal/db/redis"
	"github.com/ainative-studio/publicfounders/internal/domain"
	"github.com/ainative-studio/publicfounders/internal/repository/intentvec"
	"github.com/ainative-studio/publicfounders/internal/repository/introstore"
	"github.com/ainative-studio/publicfounders/internal/repository/outcomestore"
	"github.com/ainative-studio/publicfounders/internal/repository/profilestore"
	"github.com/ainative-studio/publicfounders/internal/repository/weightstore"
	"github.com/ainative-studio/publicfounders/internal/transport/delivery"
	openaiemb "github.com/ainative-studio/publicfounders/internal/transport/openai"
	analyticsuc "github.com/ainative-studio/publicfounders/internal/usecase/analytics"
	"github.com/ainative-studio/publicfounders/internal/usecase/autonomy"
	intentuc "github.com/ainative-studio/publicfounders/internal/usecase/intent"
	learninguc "github.com/ainative-studio/publicfounders/internal/usecase/learning"
	lifecycleuc "github.com/ainative-studio/publicfounders/internal/usecase/lifecycle"
	outcomesuc "github.com/ainative-studio/publicfounders/internal/usecase/outcomes"
	rankeruc "github.com/ainative-studio/publicfounders/internal/usecase/ranker"
	scoreruc "github.com/ainative-studio/publicfounders/internal/usecase/scorer"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the embedded entry point to the matching engine.
type Client struct {
	store     db.Store
	intents   *intentuc.Service
	lifecycle *lifecycleuc.Service
	outcomes  *outcomesuc.Service
	analytics *analyticsuc.Service
	learning  *learninguc.Service
	weights   *weightstore.Repo
}

// New creates a Client and connects to the store.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("publicfounders: store address required (use WithRedis)")
	}
	if cfg.embedder == nil && cfg.openAIKey == "" {
		return nil, errors.New("publicfounders: embedding provider required (use WithOpenAI or WithEmbedder)")
	}

	store, err := dbredis.NewStore(dbredis.Config{
		Addrs:    cfg.addrs,
		Username: cfg.username,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("publicfounders: create store: %w", err)
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("publicfounders: store not ready: %w", err)
	}

	c, err := wireClient(ctx, store, cfg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func wireClient(ctx context.Context, store db.Store, cfg *clientConfig) (*Client, error) {
	logger := zap.NewNop()

	vectors := intentvec.New(store)
	intros := introstore.New(store)
	outs := outcomestore.New(store)
	profiles := profilestore.New(store)
	weights := weightstore.New(store)

	if err := vectors.EnsureIndex(ctx, cfg.dimensions); err != nil {
		return nil, fmt.Errorf("publicfounders: ensure intent index: %w", err)
	}
	if err := intros.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("publicfounders: ensure introduction index: %w", err)
	}

	var embedder domain.Embedder
	if cfg.embedder != nil {
		embedder = &embedderAdapter{inner: cfg.embedder}
	} else {
		embedder = openaiemb.NewEmbedder(&openaiemb.Config{
			APIKey:     cfg.openAIKey,
			BaseURL:    cfg.openAIBaseURL,
			Model:      cfg.model,
			Dimensions: cfg.dimensions,
			Provider:   "openai",
		})
	}

	matchScorer := scoreruc.New(cfg.relevanceFloor)
	rank := rankeruc.New(vectors, profiles, matchScorer, weights, rankeruc.Options{
		TopK:       cfg.topK,
		MinOverall: cfg.minOverall,
	}, logger)

	gate := autonomy.New(cfg.autoFloor, cfg.vetoWindow)

	responseWindow := cfg.responseWindow
	if responseWindow <= 0 {
		responseWindow = 7 * 24 * time.Hour
	}
	completionWindow := cfg.completionWindow
	if completionWindow <= 0 {
		completionWindow = 30 * 24 * time.Hour
	}

	lifecycle := lifecycleuc.New(
		intros, profiles, rank, gate, delivery.NewLogDeliverer(logger),
		responseWindow, completionWindow, logger,
	)
	feedback := outcomesuc.NewFeedbackScorer(responseWindow, completionWindow)

	return &Client{
		store:     store,
		intents:   intentuc.New(vectors, embedder),
		lifecycle: lifecycle,
		outcomes:  outcomesuc.New(outs, intros, feedback, logger),
		analytics: analyticsuc.New(intros, outs),
		learning:  learninguc.New(intros, outs, weights, logger),
		weights:   weights,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks store connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Intents returns the intent ingestion service.
func (c *Client) Intents() *IntentService {
	return &IntentService{svc: c.intents}
}

// Introductions returns the introduction lifecycle service.
func (c *Client) Introductions() *IntroductionService {
	return &IntroductionService{svc: c.lifecycle}
}

// Outcomes returns the outcome service.
func (c *Client) Outcomes() *OutcomeService {
	return &OutcomeService{svc: c.outcomes}
}

// Analytics returns the analytics service.
func (c *Client) Analytics() *AnalyticsService {
	return &AnalyticsService{svc: c.analytics}
}

// Learning returns the learning-loop service.
func (c *Client) Learning() *LearningService {
	return &LearningService{svc: c.learning, weights: c.weights}
}

// embedderAdapter wraps the public Embedder to satisfy domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}
