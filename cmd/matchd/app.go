package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ainative-studio/publicfounders/internal/config"
	"github.com/ainative-studio/publicfounders/internal/db"
	dbredis "github.com/ainative-studio/publicfounders/internal/db/redis"
	"github.com/ainative-studio/publicfounders/internal/domain"
	logpkg "github.com/ainative-studio/publicfounders/internal/logger"
	"github.com/ainative-studio/publicfounders/internal/metrics"
	"github.com/ainative-studio/publicfounders/internal/repository/embcache"
	"github.com/ainative-studio/publicfounders/internal/repository/intentvec"
	"github.com/ainative-studio/publicfounders/internal/repository/introstore"
	"github.com/ainative-studio/publicfounders/internal/repository/outcomestore"
	"github.com/ainative-studio/publicfounders/internal/repository/profilestore"
	"github.com/ainative-studio/publicfounders/internal/repository/weightstore"
	"github.com/ainative-studio/publicfounders/internal/transport/delivery"
	openaiemb "github.com/ainative-studio/publicfounders/internal/transport/openai"
	"github.com/ainative-studio/publicfounders/internal/usecase/analytics"
	"github.com/ainative-studio/publicfounders/internal/usecase/autonomy"
	embeddinguc "github.com/ainative-studio/publicfounders/internal/usecase/embedding"
	healthuc "github.com/ainative-studio/publicfounders/internal/usecase/health"
	intentuc "github.com/ainative-studio/publicfounders/internal/usecase/intent"
	"github.com/ainative-studio/publicfounders/internal/usecase/learning"
	lifecycleuc "github.com/ainative-studio/publicfounders/internal/usecase/lifecycle"
	"github.com/ainative-studio/publicfounders/internal/usecase/outcomes"
	"github.com/ainative-studio/publicfounders/internal/usecase/ranker"
	"github.com/ainative-studio/publicfounders/internal/usecase/scorer"
)

// app is the composition root shared by the serve, sweep, and recalibrate
// commands.
type app struct {
	cfg    config.Config
	env    string
	logger *zap.Logger
	store  db.Store

	intents   *intentuc.Service
	lifecycle *lifecycleuc.Service
	outcomes  *outcomes.Service
	analytics *analytics.Service
	learning  *learning.Service
	health    *healthuc.Service
	weights   *weightstore.Repo
}

// buildApp loads configuration, connects the store, ensures the indexes, and
// wires every service.
func buildApp(ctx context.Context) (*app, error) {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	store, err := dbredis.NewStore(dbredis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("store not ready: %w", err)
	}

	metrics.RegisterEngineMetrics()

	// Repositories.
	vectors := intentvec.New(store)
	intros := introstore.New(store)
	outs := outcomestore.New(store)
	profiles := profilestore.New(store)
	weights := weightstore.New(store)

	if err := vectors.EnsureIndex(ctx, cfg.Embedding.Dimensions); err != nil {
		store.Close()
		return nil, fmt.Errorf("ensure intent index: %w", err)
	}
	if err := intros.EnsureIndex(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("ensure introduction index: %w", err)
	}

	// Embedder chain: provider, retry, cache.
	provider := openaiemb.NewEmbedder(&openaiemb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   "openai",
		Timeout:    time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
	})
	var embedder domain.Embedder = embeddinguc.NewRetryEmbedder(
		provider, "openai", cfg.Embedding.MaxAttempts,
		time.Duration(cfg.Embedding.BackoffBaseSec)*time.Second, logger,
	)
	if cfg.Embedding.CacheEnabled {
		embedder = embcache.New(embedder, store, logger)
	}

	// Services.
	matchScorer := scorer.New(cfg.Matching.RelevanceFloor)
	rank := ranker.New(vectors, profiles, matchScorer, weights, ranker.Options{
		TopK:        cfg.Matching.TopK,
		MinOverall:  cfg.Matching.MinOverall,
		MaxInFlight: cfg.Matching.MaxInFlight,
	}, logger)

	gate := autonomy.New(cfg.Autonomy.AutoFloor, time.Duration(cfg.Autonomy.VetoWindowHr)*time.Hour)
	responseWindow := time.Duration(cfg.Lifecycle.ResponseWindowDays) * 24 * time.Hour
	completionWindow := time.Duration(cfg.Lifecycle.CompletionWindowDays) * 24 * time.Hour

	lifecycle := lifecycleuc.New(
		intros, profiles, rank, gate, delivery.NewLogDeliverer(logger),
		responseWindow, completionWindow, logger,
	)

	feedback := outcomes.NewFeedbackScorer(responseWindow, completionWindow)

	return &app{
		cfg:       cfg,
		env:       env,
		logger:    logger,
		store:     store,
		intents:   intentuc.New(vectors, embedder),
		lifecycle: lifecycle,
		outcomes:  outcomes.New(outs, intros, feedback, logger),
		analytics: analytics.New(intros, outs),
		learning:  learning.New(intros, outs, weights, logger),
		health:    healthuc.New(store, provider),
		weights:   weights,
	}, nil
}

// close releases the app's resources.
func (a *app) close() {
	a.store.Close()
	_ = a.logger.Sync()
}
