package publicfounders

import (
	"context"
	"time"
)

// Option configures the embedded client.
type Option func(*clientConfig)

// EmbeddingResult is the public shape of an embedding call.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Embedder vectorizes text. Supply a custom one to bypass the built-in
// OpenAI-compatible provider.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

type clientConfig struct {
	addrs    []string
	username string
	password string

	openAIKey     string
	openAIBaseURL string
	model         string
	dimensions    int
	embedder      Embedder

	relevanceFloor   float64
	minOverall       float64
	topK             int
	autoFloor        float64
	vetoWindow       time.Duration
	responseWindow   time.Duration
	completionWindow time.Duration
}

// WithRedis sets the Redis connection.
func WithRedis(addrs []string, username, password string) Option {
	return func(c *clientConfig) {
		c.addrs = addrs
		c.username = username
		c.password = password
	}
}

// WithOpenAI configures the built-in OpenAI-compatible embedding provider.
func WithOpenAI(apiKey, baseURL, model string, dimensions int) Option {
	return func(c *clientConfig) {
		c.openAIKey = apiKey
		c.openAIBaseURL = baseURL
		c.model = model
		c.dimensions = dimensions
	}
}

// WithEmbedder supplies a custom embedding provider.
func WithEmbedder(e Embedder, dimensions int) Option {
	return func(c *clientConfig) {
		c.embedder = e
		c.dimensions = dimensions
	}
}

// WithMatchingThresholds overrides the scoring thresholds. Zero values keep
// the defaults.
func WithMatchingThresholds(relevanceFloor, minOverall float64, topK int) Option {
	return func(c *clientConfig) {
		c.relevanceFloor = relevanceFloor
		c.minOverall = minOverall
		c.topK = topK
	}
}

// WithAutonomy overrides the gate's safety floor and veto window.
func WithAutonomy(autoFloor float64, vetoWindow time.Duration) Option {
	return func(c *clientConfig) {
		c.autoFloor = autoFloor
		c.vetoWindow = vetoWindow
	}
}

// WithLifecycleWindows overrides the response and completion windows.
func WithLifecycleWindows(response, completion time.Duration) Option {
	return func(c *clientConfig) {
		c.responseWindow = response
		c.completionWindow = completion
	}
}
