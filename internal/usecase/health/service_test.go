package health

import (
	"context"
	"errors"
	"testing"
)

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

type mockChecker struct {
	err error
}

func (m *mockChecker) HealthCheck(_ context.Context) error { return m.err }

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockPinger{}, &mockChecker{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("status = %s, want ok", r.Status)
	}
	if r.Checks["store"] != CheckOK || r.Checks["embedding"] != CheckOK {
		t.Errorf("checks = %v", r.Checks)
	}
}

func TestCheck_StoreDownIsUnhealthy(t *testing.T) {
	svc := New(&mockPinger{err: errors.New("refused")}, &mockChecker{})
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("status = %s, want error", r.Status)
	}
	if r.Checks["store"] != CheckError {
		t.Errorf("store check = %s, want error", r.Checks["store"])
	}
}

func TestCheck_EmbeddingDownIsDegraded(t *testing.T) {
	svc := New(&mockPinger{}, &mockChecker{err: errors.New("provider down")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("status = %s, want degraded", r.Status)
	}
	if r.Checks["embedding"] != CheckError {
		t.Errorf("embedding check = %s, want error", r.Checks["embedding"])
	}
}

func TestCheck_StoreDownDominatesEmbedding(t *testing.T) {
	svc := New(&mockPinger{err: errors.New("refused")}, &mockChecker{err: errors.New("down")})
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("status = %s, want error to dominate degraded", r.Status)
	}
}

func TestCheck_NilEmbedding(t *testing.T) {
	svc := New(&mockPinger{}, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("status = %s, want ok", r.Status)
	}
	if _, ok := r.Checks["embedding"]; ok {
		t.Error("no embedding check expected without a provider")
	}
}
