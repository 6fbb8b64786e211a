package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ainative-studio/publicfounders/internal/domain"
	domint "github.com/ainative-studio/publicfounders/internal/domain/intent"
	"github.com/ainative-studio/publicfounders/internal/domain/intro"
	"github.com/ainative-studio/publicfounders/internal/domain/match"
	"github.com/ainative-studio/publicfounders/internal/domain/outcome"
	"github.com/ainative-studio/publicfounders/internal/metrics"
	analyticsuc "github.com/ainative-studio/publicfounders/internal/usecase/analytics"
	healthuc "github.com/ainative-studio/publicfounders/internal/usecase/health"
	intentuc "github.com/ainative-studio/publicfounders/internal/usecase/intent"
	"github.com/ainative-studio/publicfounders/internal/usecase/learning"
	lifecycleuc "github.com/ainative-studio/publicfounders/internal/usecase/lifecycle"
	outcomesuc "github.com/ainative-studio/publicfounders/internal/usecase/outcomes"
)

// ProposalReader resolves the latest recalibration proposal.
type ProposalReader interface {
	LatestProposal(ctx context.Context) (match.Proposal, error)
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the HTTP API of the matching engine.
type Server struct {
	lifecycle     *lifecycleuc.Service
	outcomes      *outcomesuc.Service
	analytics     *analyticsuc.Service
	intents       *intentuc.Service
	proposals     ProposalReader
	health        *healthuc.Service
	apiKeys       []string
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	lifecycle *lifecycleuc.Service,
	outcomes *outcomesuc.Service,
	analytics *analyticsuc.Service,
	intents *intentuc.Service,
	proposals ProposalReader,
	health *healthuc.Service,
	apiKeys []string,
	logger *zap.Logger,
) *Server {
	s := &Server{
		lifecycle: lifecycle,
		outcomes:  outcomes,
		analytics: analytics,
		intents:   intents,
		proposals: proposals,
		health:    health,
		apiKeys:   apiKeys,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrUnauthorized, http.StatusForbidden, codeForbidden),
		sentinelHandler(domain.ErrDuplicateResponse, http.StatusConflict, codeDuplicateResponse),
		sentinelHandler(domain.ErrInvalidOutcome, http.StatusUnprocessableEntity, codeInvalidOutcome),
		sentinelHandler(domain.ErrInvalidTransition, http.StatusConflict, codeInvalidTransition),
		sentinelHandler(domain.ErrIntroductionNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrOutcomeNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrProfileNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrWeightsNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrEmbeddingUnavailable, http.StatusServiceUnavailable, codeDependencyDown),
		sentinelHandler(domain.ErrVectorIndexUnavailable, http.StatusServiceUnavailable, codeDependencyDown),
		sentinelHandler(learning.ErrInsufficientSample, http.StatusConflict, codeInsufficientSample),
	}
	return s
}

// Router builds the chi router with middleware and all routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware())
	r.Use(s.requestLogger)
	r.Use(BearerAuthMiddleware(s.apiKeys))

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/members/{memberID}", func(r chi.Router) {
			r.Post("/introductions/propose", s.handlePropose)
			r.Get("/analytics", s.handleAnalytics)
			r.Post("/intents", s.handleIngestIntent)
		})

		r.Route("/introductions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetIntroduction)
			r.Post("/send", s.handleSend)
			r.Post("/response", s.handleRespond)
			r.Delete("/hold", s.handleCancelHold)
			r.Post("/outcome", s.handleRecordOutcome)
			r.Put("/outcome", s.handleUpdateOutcome)
			r.Get("/outcome", s.handleGetOutcome)
		})

		r.Delete("/intents/{id}", s.handleDeleteIntent)
		r.Get("/learning/proposals/latest", s.handleLatestProposal)
	})

	return r
}

// handlePropose handles POST /v1/members/{memberID}/introductions/propose.
func (s *Server) handlePropose(w http.ResponseWriter, r *http.Request) {
	memberID := chi.URLParam(r, "memberID")

	proposals, err := s.lifecycle.Propose(r.Context(), memberID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]IntroductionResponse, len(proposals))
	for i := range proposals {
		items[i] = introToResponse(&proposals[i])
	}
	writeJSON(w, http.StatusCreated, map[string]any{"items": items, "count": len(items)})
}

// handleGetIntroduction handles GET /v1/introductions/{id}.
func (s *Server) handleGetIntroduction(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing member identity")
		return
	}

	i, err := s.lifecycle.Get(r.Context(), chi.URLParam(r, "id"), actor)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, introToResponse(&i))
}

// handleSend handles POST /v1/introductions/{id}/send.
func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing member identity")
		return
	}

	i, err := s.lifecycle.Send(r.Context(), chi.URLParam(r, "id"), actor)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, introToResponse(&i))
}

// handleRespond handles POST /v1/introductions/{id}/response.
func (s *Server) handleRespond(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing member identity")
		return
	}

	var req RespondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}
	resp, err := intro.ParseResponse(req.Response)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	i, err := s.lifecycle.Respond(r.Context(), chi.URLParam(r, "id"), actor, resp)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, introToResponse(&i))
}

// handleCancelHold handles DELETE /v1/introductions/{id}/hold.
func (s *Server) handleCancelHold(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing member identity")
		return
	}

	i, err := s.lifecycle.CancelHold(r.Context(), chi.URLParam(r, "id"), actor)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, introToResponse(&i))
}

// handleRecordOutcome handles POST /v1/introductions/{id}/outcome.
func (s *Server) handleRecordOutcome(w http.ResponseWriter, r *http.Request) {
	s.writeOutcome(w, r, s.outcomes.Record, http.StatusCreated)
}

// handleUpdateOutcome handles PUT /v1/introductions/{id}/outcome.
func (s *Server) handleUpdateOutcome(w http.ResponseWriter, r *http.Request) {
	s.writeOutcome(w, r, s.outcomes.Update, http.StatusOK)
}

func (s *Server) writeOutcome(
	w http.ResponseWriter, r *http.Request,
	op func(context.Context, string, intro.Actor, outcomesuc.Input) (outcome.Outcome, error),
	okStatus int,
) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing member identity")
		return
	}

	var req OutcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}

	o, err := op(r.Context(), chi.URLParam(r, "id"), actor, outcomesuc.Input{
		Type:   outcome.Type(req.Type),
		Rating: req.Rating,
		Tags:   req.Tags,
		Notes:  req.Notes,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, okStatus, outcomeToResponse(&o))
}

// handleGetOutcome handles GET /v1/introductions/{id}/outcome.
func (s *Server) handleGetOutcome(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing member identity")
		return
	}

	o, err := s.outcomes.Get(r.Context(), chi.URLParam(r, "id"), actor)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcomeToResponse(&o))
}

// handleAnalytics handles GET /v1/members/{memberID}/analytics.
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	memberID := chi.URLParam(r, "memberID")

	from, err := parseTimeParam(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}
	to, err := parseTimeParam(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	report, err := s.analytics.Report(r.Context(), memberID, from, to)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleIngestIntent handles POST /v1/members/{memberID}/intents.
func (s *Server) handleIngestIntent(w http.ResponseWriter, r *http.Request) {
	memberID := chi.URLParam(r, "memberID")

	var req IntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}
	kind, err := domint.ParseSourceKind(req.Kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	v, err := s.intents.Ingest(r.Context(), intentuc.Input{
		OwnerID:  memberID,
		Kind:     kind,
		Text:     req.Text,
		GoalType: req.GoalType,
		Industry: req.Industry,
		Stage:    req.Stage,
		Urgency:  req.Urgency,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, IntentResponse{
		ID:        v.ID(),
		OwnerID:   v.OwnerID(),
		Kind:      string(v.Kind()),
		CreatedAt: v.Metadata().CreatedAt,
	})
}

// handleDeleteIntent handles DELETE /v1/intents/{id}.
func (s *Server) handleDeleteIntent(w http.ResponseWriter, r *http.Request) {
	if err := s.intents.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleLatestProposal handles GET /v1/learning/proposals/latest.
func (s *Server) handleLatestProposal(w http.ResponseWriter, r *http.Request) {
	p, err := s.proposals.LatestProposal(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, proposalToResponse(&p))
}

// handleHealth handles GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	writeJSON(w, status, HealthResponse{Status: string(report.Status), Checks: checks})
}

// requestLogger logs each request at debug with method, path, and duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func parseTimeParam(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, errors.New(name + " must be RFC3339")
	}
	return t, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	var ioe *domain.InvalidOutcomeError
	if errors.As(err, &ioe) {
		return ioe.Error()
	}
	sentinels := []error{
		domain.ErrUnauthorized,
		domain.ErrDuplicateResponse,
		domain.ErrInvalidOutcome,
		domain.ErrInvalidTransition,
		domain.ErrIntroductionNotFound,
		domain.ErrOutcomeNotFound,
		domain.ErrProfileNotFound,
		domain.ErrWeightsNotFound,
		domain.ErrEmbeddingUnavailable,
		domain.ErrVectorIndexUnavailable,
		learning.ErrInsufficientSample,
	}
	for _, sentinel := range sentinels {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
