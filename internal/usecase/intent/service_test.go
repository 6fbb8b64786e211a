package intent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ainative-studio/publicfounders/internal/domain"
	domint "github.com/ainative-studio/publicfounders/internal/domain/intent"
)

// --- Mocks ---

type mockStore struct {
	upserted  []domint.Vector
	deleted   []string
	upsertErr error
	deleteErr error
}

func (m *mockStore) Upsert(_ context.Context, v *domint.Vector) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserted = append(m.upserted, *v)
	return nil
}

func (m *mockStore) Delete(_ context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	return nil
}

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
	texts  []string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.texts = append(m.texts, text)
	return m.result, m.err
}

// --- Tests ---

var ingestNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestService(store *mockStore, embed *mockEmbedder) *Service {
	return New(store, embed).WithClock(func() time.Time { return ingestNow })
}

func TestIngest(t *testing.T) {
	store := &mockStore{}
	embed := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}}}
	svc := newTestService(store, embed)

	v, err := svc.Ingest(context.Background(), Input{
		OwnerID:  "m1",
		Kind:     domint.SourceGoal,
		Text:     "  raise a seed round  ",
		GoalType: "fundraising",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.OwnerID() != "m1" || v.Kind() != domint.SourceGoal {
		t.Errorf("vector = (%s, %s)", v.OwnerID(), v.Kind())
	}
	if v.Metadata().GoalType != "fundraising" {
		t.Errorf("goal type = %q", v.Metadata().GoalType)
	}
	if !v.Metadata().CreatedAt.Equal(ingestNow) {
		t.Errorf("createdAt = %v, want %v", v.Metadata().CreatedAt, ingestNow)
	}
	if len(embed.texts) != 1 || embed.texts[0] != "raise a seed round" {
		t.Errorf("embedded text = %v, want trimmed", embed.texts)
	}
	if len(store.upserted) != 1 {
		t.Errorf("upserted = %d, want 1", len(store.upserted))
	}
}

func TestIngest_EmptyText(t *testing.T) {
	svc := newTestService(&mockStore{}, &mockEmbedder{})
	if _, err := svc.Ingest(context.Background(), Input{OwnerID: "m1", Kind: domint.SourceGoal, Text: "   "}); err == nil {
		t.Fatal("expected error for blank text")
	}
}

func TestIngest_EmbedderError(t *testing.T) {
	embed := &mockEmbedder{err: domain.ErrEmbeddingUnavailable}
	svc := newTestService(&mockStore{}, embed)

	_, err := svc.Ingest(context.Background(), Input{OwnerID: "m1", Kind: domint.SourceGoal, Text: "hello"})
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable, got %v", err)
	}
}

func TestReplace_NewBeforeDelete(t *testing.T) {
	store := &mockStore{}
	embed := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}}
	svc := newTestService(store, embed)

	v, err := svc.Replace(context.Background(), "stale-id", Input{OwnerID: "m1", Kind: domint.SourceAsk, Text: "updated ask"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.upserted) != 1 {
		t.Fatalf("upserted = %d, want 1", len(store.upserted))
	}
	if len(store.deleted) != 1 || store.deleted[0] != "stale-id" {
		t.Errorf("deleted = %v, want [stale-id]", store.deleted)
	}
	if v.ID() == "stale-id" {
		t.Error("replacement must carry a fresh id")
	}
}

func TestReplace_IngestFailureKeepsStale(t *testing.T) {
	store := &mockStore{}
	embed := &mockEmbedder{err: errors.New("provider down")}
	svc := newTestService(store, embed)

	if _, err := svc.Replace(context.Background(), "stale-id", Input{OwnerID: "m1", Kind: domint.SourceAsk, Text: "x"}); err == nil {
		t.Fatal("expected error")
	}
	if len(store.deleted) != 0 {
		t.Error("stale vector must survive a failed replacement")
	}
}

func TestDelete(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(store, &mockEmbedder{})

	if err := svc.Delete(context.Background(), "v1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "v1" {
		t.Errorf("deleted = %v, want [v1]", store.deleted)
	}
}
