package health

import "context"

// Status is the aggregated readiness verdict.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the engine works but without fresh embeddings.
	Degraded Status = "degraded"
	// Unhealthy indicates the store is unreachable.
	Unhealthy Status = "error"
)

// CheckResult is an individual component check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing check.
	CheckError CheckResult = "error"
)

// Report aggregates component checks.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates readiness checks. Everything reads and writes through
// the store, so a store failure is total; a dead embedding provider only
// stops new vectors, existing ones still rank.
type Service struct {
	store     StorePinger
	embedding EmbeddingChecker
}

// New creates a health service. embedding can be nil.
func New(store StorePinger, embedding EmbeddingChecker) *Service {
	return &Service{store: store, embedding: embedding}
}

// Check runs all component checks.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	status := Healthy

	if err := s.store.Ping(ctx); err != nil {
		checks["store"] = CheckError
		status = Unhealthy
	} else {
		checks["store"] = CheckOK
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks["embedding"] = CheckError
			if status == Healthy {
				status = Degraded
			}
		} else {
			checks["embedding"] = CheckOK
		}
	}

	return Report{Status: status, Checks: checks}
}
