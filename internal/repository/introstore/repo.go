package introstore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ainative-studio/publicfounders/internal/db"
	"github.com/ainative-studio/publicfounders/internal/domain"
	"github.com/ainative-studio/publicfounders/internal/domain/intro"
)

const (
	keyPrefix = domain.KeyPrefix + "intro:"
	indexName = "pf_intro_idx"
)

// store is the consumer interface for introduction records.
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetIfFieldEquals(ctx context.Context, key, guardField, guardValue string, fields map[string]string) (bool, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
}

// Repo persists introductions as hash records under an FT index used by the
// lifecycle sweeps.
type Repo struct {
	store store
}

// New creates an introduction repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// EnsureIndex creates the FT index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
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
			{Name: "status", Type: db.IndexFieldTag},
			{Name: "requester", Type: db.IndexFieldTag},
			{Name: "target", Type: db.IndexFieldTag},
			{Name: "created_at", Type: db.IndexFieldNumeric},
			{Name: "sent_at", Type: db.IndexFieldNumeric},
			{Name: "responded_at", Type: db.IndexFieldNumeric},
			{Name: "hold_until", Type: db.IndexFieldNumeric},
		},
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// Create persists a freshly proposed introduction.
func (r *Repo) Create(ctx context.Context, i *intro.Introduction) error {
	if err := r.store.HSet(ctx, introKey(i.ID()), buildHashFields(i)); err != nil {
		return fmt.Errorf("create introduction %s: %w", i.ID(), err)
	}
	return nil
}

// Get returns an introduction by id.
func (r *Repo) Get(ctx context.Context, id string) (intro.Introduction, error) {
	m, err := r.store.HGetAll(ctx, introKey(id))
	if err != nil {
		return intro.Introduction{}, fmt.Errorf("get introduction %s: %w", id, err)
	}
	if len(m) == 0 {
		return intro.Introduction{}, domain.ErrIntroductionNotFound
	}
	return parseHashFields(id, m), nil
}

// TransitionFrom writes the introduction's full record only if the stored
// status still equals fromStatus. Returns false when another writer got there
// first — the caller decides whether that is DuplicateResponse or a silently
// skipped sweep race.
func (r *Repo) TransitionFrom(ctx context.Context, i *intro.Introduction, fromStatus intro.Status) (bool, error) {
	won, err := r.store.HSetIfFieldEquals(
		ctx, introKey(i.ID()), "status", string(fromStatus), buildHashFields(i),
	)
	if err != nil {
		return false, fmt.Errorf("transition introduction %s: %w", i.ID(), err)
	}
	return won, nil
}

// ListByStatusBefore returns up to limit introductions in the given status
// whose timestamp field is at or before the cutoff. Used by the sweeps.
func (r *Repo) ListByStatusBefore(
	ctx context.Context, status intro.Status, field string, cutoff time.Time, limit int,
) ([]intro.Introduction, error) {
	query := fmt.Sprintf("@status:{%s} @%s:[1 %d]",
		db.EscapeTag(string(status)), field, cutoff.UnixMilli())

	result, err := r.store.SearchList(ctx, indexName, query, 0, limit, nil)
	if err != nil {
		return nil, fmt.Errorf("list %s introductions: %w", status, err)
	}

	intros := make([]intro.Introduction, 0, len(result.Entries))
	for _, entry := range result.Entries {
		intros = append(intros, parseHashFields(idFromKey(entry.Key), entry.Fields))
	}
	return intros, nil
}

// ListByStatus returns up to limit introductions in the given status.
func (r *Repo) ListByStatus(ctx context.Context, status intro.Status, limit int) ([]intro.Introduction, error) {
	query := fmt.Sprintf("@status:{%s}", db.EscapeTag(string(status)))

	result, err := r.store.SearchList(ctx, indexName, query, 0, limit, nil)
	if err != nil {
		return nil, fmt.Errorf("list %s introductions: %w", status, err)
	}

	intros := make([]intro.Introduction, 0, len(result.Entries))
	for _, entry := range result.Entries {
		intros = append(intros, parseHashFields(idFromKey(entry.Key), entry.Fields))
	}
	return intros, nil
}

// ListByRequester returns introductions proposed for a member, newest first
// ordering is not guaranteed; callers aggregate, they do not page.
func (r *Repo) ListByRequester(ctx context.Context, requesterID string, from, to time.Time, limit int) ([]intro.Introduction, error) {
	query := fmt.Sprintf("@requester:{%s}", db.EscapeTag(requesterID))
	if !from.IsZero() || !to.IsZero() {
		lo, hi := db.NegInf, db.PosInf
		if !from.IsZero() {
			lo = strconv.FormatInt(from.UnixMilli(), 10)
		}
		if !to.IsZero() {
			hi = strconv.FormatInt(to.UnixMilli(), 10)
		}
		query = fmt.Sprintf("%s @created_at:[%s %s]", query, lo, hi)
	}

	result, err := r.store.SearchList(ctx, indexName, query, 0, limit, nil)
	if err != nil {
		return nil, fmt.Errorf("list introductions for %s: %w", requesterID, err)
	}

	intros := make([]intro.Introduction, 0, len(result.Entries))
	for _, entry := range result.Entries {
		intros = append(intros, parseHashFields(idFromKey(entry.Key), entry.Fields))
	}
	return intros, nil
}

func introKey(id string) string { return keyPrefix + id }

func idFromKey(key string) string {
	if len(key) > len(keyPrefix) {
		return key[len(keyPrefix):]
	}
	return key
}
