package intentvec

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ainative-studio/publicfounders/internal/db"
	"github.com/ainative-studio/publicfounders/internal/domain"
	"github.com/ainative-studio/publicfounders/internal/domain/intent"
)

const (
	keyPrefix = domain.KeyPrefix + "intent:"
	indexName = "pf_intent_idx"
)

// maxVectorsPerOwner bounds the active-vector fetch per subject.
const maxVectorsPerOwner = 100

// store is the consumer interface for the intent vector index.
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
}

// SearchSpec narrows a neighbor search.
type SearchSpec struct {
	ExcludeOwner  string
	Kinds         []intent.SourceKind
	MinSimilarity float64
	TopK          int
}

// Repo is the vector index for intent vectors: hash records with a binary
// vector field under an HNSW cosine FT index.
type Repo struct {
	store store
}

// New creates an intent vector repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// EnsureIndex creates the FT index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context, dimensions int) error {
	exists, err := r.store.IndexExists(ctx, indexName)
	if err != nil {
		return fmt.Errorf("index exists: %w", err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:     indexName,
		Prefixes: []string{keyPrefix},
		Fields: []db.IndexField{
			{Name: "owner", Type: db.IndexFieldTag},
			{Name: "kind", Type: db.IndexFieldTag},
			{Name: "goal_type", Type: db.IndexFieldTag},
			{Name: "industry", Type: db.IndexFieldTag},
			{Name: "created_at", Type: db.IndexFieldNumeric},
			{Name: "vector", Type: db.IndexFieldVector, VectorDim: dimensions},
		},
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// Upsert stores an intent vector.
func (r *Repo) Upsert(ctx context.Context, v *intent.Vector) error {
	if err := r.store.HSet(ctx, vecKey(v.ID()), buildHashFields(v)); err != nil {
		return fmt.Errorf("upsert intent vector %s: %w: %w", v.ID(), domain.ErrVectorIndexUnavailable, err)
	}
	return nil
}

// Delete removes an intent vector.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := r.store.Del(ctx, vecKey(id)); err != nil {
		return fmt.Errorf("delete intent vector %s: %w: %w", id, domain.ErrVectorIndexUnavailable, err)
	}
	return nil
}

// Get returns a stored intent vector.
func (r *Repo) Get(ctx context.Context, id string) (intent.Vector, error) {
	m, err := r.store.HGetAll(ctx, vecKey(id))
	if err != nil {
		return intent.Vector{}, fmt.Errorf("get intent vector %s: %w: %w", id, domain.ErrVectorIndexUnavailable, err)
	}
	if len(m) == 0 {
		return intent.Vector{}, fmt.Errorf("intent vector %s: %w", id, db.ErrKeyNotFound)
	}
	return parseHashFields(id, m), nil
}

// ActiveByOwner returns the subject's active intent vectors.
func (r *Repo) ActiveByOwner(ctx context.Context, ownerID string) ([]intent.Vector, error) {
	query := fmt.Sprintf("@owner:{%s}", db.EscapeTag(ownerID))
	result, err := r.store.SearchList(ctx, indexName, query, 0, maxVectorsPerOwner, nil)
	if err != nil {
		return nil, fmt.Errorf("list intent vectors for %s: %w: %w", ownerID, domain.ErrVectorIndexUnavailable, err)
	}

	vectors := make([]intent.Vector, 0, len(result.Entries))
	for _, entry := range result.Entries {
		vectors = append(vectors, parseHashFields(idFromKey(entry.Key), entry.Fields))
	}
	return vectors, nil
}

// Search runs a KNN query for neighbors of the given vector. Hits below
// spec.MinSimilarity are dropped.
func (r *Repo) Search(ctx context.Context, vector []float32, spec SearchSpec) ([]intent.Neighbor, error) {
	filter := db.Filter{}
	if spec.ExcludeOwner != "" {
		filter.NotTags = append(filter.NotTags, db.TagMatch{Field: "owner", Values: []string{spec.ExcludeOwner}})
	}
	if len(spec.Kinds) > 0 {
		values := make([]string, len(spec.Kinds))
		for i, k := range spec.Kinds {
			values[i] = string(k)
		}
		filter.Tags = append(filter.Tags, db.TagMatch{Field: "kind", Values: values})
	}

	result, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName: indexName,
		Filter:    filter,
		Vector:    vector,
		K:         spec.TopK,
		ReturnFields: []string{
			"owner", "kind", "goal_type", "industry", "created_at", "__vector_score",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("knn search: %w: %w", domain.ErrVectorIndexUnavailable, err)
	}

	neighbors := make([]intent.Neighbor, 0, len(result.Entries))
	for _, entry := range result.Entries {
		if entry.Score < spec.MinSimilarity {
			continue
		}
		kind, _ := intent.ParseSourceKind(entry.Fields["kind"])
		neighbors = append(neighbors, intent.Neighbor{
			VectorID:   idFromKey(entry.Key),
			OwnerID:    entry.Fields["owner"],
			Kind:       kind,
			Similarity: entry.Score,
			Metadata: intent.Metadata{
				GoalType:  entry.Fields["goal_type"],
				Industry:  entry.Fields["industry"],
				CreatedAt: parseUnixMilli(entry.Fields["created_at"]),
			},
		})
	}
	return neighbors, nil
}

func vecKey(id string) string { return keyPrefix + id }

func idFromKey(key string) string {
	if len(key) > len(keyPrefix) {
		return key[len(keyPrefix):]
	}
	return key
}

func parseUnixMilli(s string) time.Time {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil || ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
