package db

import (
	"context"
	"time"
)

// Store is the main database facade combining all sub-interfaces. Consumers
// depend on narrow sub-interfaces, the facade exists for wiring.
type Store interface {
	Pinger
	HashStore
	KVStore
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashStore provides hash-based record operations, including the two guarded
// writes the lifecycle depends on: HSetIfFieldEquals is a compare-and-set on a
// single guard field (single-writer transitions — the first responder wins),
// HSetIfAbsent writes a whole record only when the key does not exist yet
// (one outcome per introduction).
type HashStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetIfFieldEquals(ctx context.Context, key, guardField, guardValue string, fields map[string]string) (bool, error)
	HSetIfAbsent(ctx context.Context, key string, fields map[string]string) (bool, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher provides search operations over FT indexes.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Filter       Filter
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single record hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
