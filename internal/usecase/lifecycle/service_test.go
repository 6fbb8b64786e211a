package lifecycle

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ainative-studio/publicfounders/internal/domain"
	"github.com/ainative-studio/publicfounders/internal/domain/intro"
	"github.com/ainative-studio/publicfounders/internal/domain/match"
	"github.com/ainative-studio/publicfounders/internal/domain/profile"
	"github.com/ainative-studio/publicfounders/internal/usecase/autonomy"
)

// --- Mocks ---

type mockIntroStore struct {
	created       []intro.Introduction
	getResult     intro.Introduction
	getErr        error
	listResult    []intro.Introduction
	listErr       error
	createErr     error
	transitionOK  bool
	transitionErr error
	transitions   []intro.Status
}

func (m *mockIntroStore) Create(_ context.Context, i *intro.Introduction) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, *i)
	return nil
}

func (m *mockIntroStore) Get(_ context.Context, _ string) (intro.Introduction, error) {
	return m.getResult, m.getErr
}

func (m *mockIntroStore) TransitionFrom(_ context.Context, _ *intro.Introduction, from intro.Status) (bool, error) {
	m.transitions = append(m.transitions, from)
	return m.transitionOK, m.transitionErr
}

func (m *mockIntroStore) ListByStatusBefore(_ context.Context, _ intro.Status, _ string, _ time.Time, _ int) ([]intro.Introduction, error) {
	return m.listResult, m.listErr
}

type mockProfileReader struct {
	profiles map[string]profile.Profile
	err      error
}

func (m *mockProfileReader) Get(_ context.Context, memberID string) (profile.Profile, error) {
	if m.err != nil {
		return profile.Profile{}, m.err
	}
	return m.profiles[memberID], nil
}

type mockRanker struct {
	scores []match.Score
	err    error
}

func (m *mockRanker) Rank(_ context.Context, _ string) ([]match.Score, error) {
	return m.scores, m.err
}

type mockDeliverer struct {
	delivered []string
	err       error
}

func (m *mockDeliverer) Deliver(_ context.Context, i *intro.Introduction) error {
	if m.err != nil {
		return m.err
	}
	m.delivered = append(m.delivered, i.ID())
	return nil
}

// --- Helpers ---

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func relevanceOnlyScore(t *testing.T, candidateID string, overall float64) match.Score {
	t.Helper()
	w, err := match.NewWeights(0, 1, 0, 0)
	if err != nil {
		t.Fatalf("NewWeights: %v", err)
	}
	return match.NewScore("subject", candidateID, overall, 0, 0, w, match.Context{})
}

func newTestService(store *mockIntroStore, profiles *mockProfileReader, ranker *mockRanker, deliver *mockDeliverer) *Service {
	gate := autonomy.New(0.75, 24*time.Hour)
	svc := New(store, profiles, ranker, gate, deliver, 7*24*time.Hour, 30*24*time.Hour, zap.NewNop())
	return svc.WithClock(func() time.Time { return now })
}

func subjectWithMode(mode profile.AutonomyMode) *mockProfileReader {
	return &mockProfileReader{profiles: map[string]profile.Profile{
		"subject": {MemberID: "subject", Autonomy: mode},
	}}
}

func makeSent(t *testing.T, id string) intro.Introduction {
	t.Helper()
	i, err := intro.NewProposal(id, "subject", "target", intro.ScoreSnapshot{Overall: 0.8}, DefaultChannel, now.Add(-48*time.Hour))
	if err != nil {
		t.Fatalf("NewProposal: %v", err)
	}
	if err := i.Send(intro.SystemActor, "r", now.Add(-24*time.Hour)); err != nil {
		t.Fatalf("Send: %v", err)
	}
	return i
}

// --- Tests ---

func TestPropose_SuggestMode(t *testing.T) {
	store := &mockIntroStore{transitionOK: true}
	ranker := &mockRanker{scores: []match.Score{relevanceOnlyScore(t, "c1", 0.9)}}
	deliver := &mockDeliverer{}
	svc := newTestService(store, subjectWithMode(profile.ModeSuggest), ranker, deliver)

	intros, err := svc.Propose(context.Background(), "subject")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(intros) != 1 {
		t.Fatalf("expected 1 introduction, got %d", len(intros))
	}
	if intros[0].Status() != intro.StatusProposed {
		t.Errorf("status = %s, want proposed", intros[0].Status())
	}
	if intros[0].Held() {
		t.Error("suggestion must not be held")
	}
	if len(deliver.delivered) != 0 {
		t.Error("suggestion must not be delivered")
	}
}

func TestPropose_ApproveModeHolds(t *testing.T) {
	store := &mockIntroStore{transitionOK: true}
	ranker := &mockRanker{scores: []match.Score{relevanceOnlyScore(t, "c1", 0.9)}}
	svc := newTestService(store, subjectWithMode(profile.ModeApprove), ranker, &mockDeliverer{})

	intros, err := svc.Propose(context.Background(), "subject")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !intros[0].Held() {
		t.Fatal("approve mode must hold the proposal")
	}
	if want := now.Add(24 * time.Hour); !intros[0].HoldUntil().Equal(want) {
		t.Errorf("holdUntil = %v, want %v", intros[0].HoldUntil(), want)
	}
}

func TestPropose_AutoModeDelivers(t *testing.T) {
	store := &mockIntroStore{transitionOK: true}
	ranker := &mockRanker{scores: []match.Score{relevanceOnlyScore(t, "c1", 0.9)}}
	deliver := &mockDeliverer{}
	svc := newTestService(store, subjectWithMode(profile.ModeAuto), ranker, deliver)

	intros, err := svc.Propose(context.Background(), "subject")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if intros[0].Status() != intro.StatusSent {
		t.Errorf("status = %s, want sent", intros[0].Status())
	}
	if len(deliver.delivered) != 1 {
		t.Errorf("delivered = %d, want 1", len(deliver.delivered))
	}
}

func TestPropose_AutoModeBelowFloorSuggests(t *testing.T) {
	store := &mockIntroStore{transitionOK: true}
	ranker := &mockRanker{scores: []match.Score{relevanceOnlyScore(t, "c1", 0.7)}}
	deliver := &mockDeliverer{}
	svc := newTestService(store, subjectWithMode(profile.ModeAuto), ranker, deliver)

	intros, err := svc.Propose(context.Background(), "subject")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if intros[0].Status() != intro.StatusProposed {
		t.Errorf("below the safety floor: status = %s, want proposed", intros[0].Status())
	}
	if len(deliver.delivered) != 0 {
		t.Error("must not deliver below the safety floor")
	}
}

func TestPropose_DeliveryFailureLeavesSuggestion(t *testing.T) {
	store := &mockIntroStore{transitionOK: true}
	ranker := &mockRanker{scores: []match.Score{relevanceOnlyScore(t, "c1", 0.9)}}
	deliver := &mockDeliverer{err: errors.New("channel down")}
	svc := newTestService(store, subjectWithMode(profile.ModeAuto), ranker, deliver)

	intros, err := svc.Propose(context.Background(), "subject")
	if err != nil {
		t.Fatalf("delivery failure must not fail the proposal: %v", err)
	}
	if len(intros) != 1 {
		t.Fatalf("expected 1 introduction, got %d", len(intros))
	}
	if len(store.created) != 1 {
		t.Errorf("record must still be created, got %d", len(store.created))
	}
}

func TestPropose_RankerError(t *testing.T) {
	svc := newTestService(&mockIntroStore{}, subjectWithMode(profile.ModeSuggest),
		&mockRanker{err: errors.New("index down")}, &mockDeliverer{})

	if _, err := svc.Propose(context.Background(), "subject"); err == nil {
		t.Fatal("expected error when ranking fails")
	}
}

func TestSend(t *testing.T) {
	proposal, err := intro.NewProposal("i1", "subject", "target", intro.ScoreSnapshot{Overall: 0.8}, DefaultChannel, now)
	if err != nil {
		t.Fatalf("NewProposal: %v", err)
	}
	store := &mockIntroStore{getResult: proposal, transitionOK: true}
	deliver := &mockDeliverer{}
	svc := newTestService(store, subjectWithMode(profile.ModeSuggest), &mockRanker{}, deliver)

	sent, err := svc.Send(context.Background(), "i1", intro.Actor{MemberID: "subject"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sent.Status() != intro.StatusSent {
		t.Errorf("status = %s, want sent", sent.Status())
	}
	if !strings.Contains(sent.Rationale(), "80%") {
		t.Errorf("rationale = %q, want match percentage", sent.Rationale())
	}
	if len(deliver.delivered) != 1 {
		t.Errorf("delivered = %d, want 1", len(deliver.delivered))
	}
}

func TestSend_HeldRejected(t *testing.T) {
	proposal, err := intro.NewProposal("i1", "subject", "target", intro.ScoreSnapshot{}, DefaultChannel, now)
	if err != nil {
		t.Fatalf("NewProposal: %v", err)
	}
	if err := proposal.Hold(now.Add(24 * time.Hour)); err != nil {
		t.Fatalf("Hold: %v", err)
	}
	store := &mockIntroStore{getResult: proposal, transitionOK: true}
	svc := newTestService(store, subjectWithMode(profile.ModeApprove), &mockRanker{}, &mockDeliverer{})

	_, err = svc.Send(context.Background(), "i1", intro.Actor{MemberID: "subject"})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for held introduction, got %v", err)
	}
}

func TestSend_RaceLost(t *testing.T) {
	proposal, err := intro.NewProposal("i1", "subject", "target", intro.ScoreSnapshot{}, DefaultChannel, now)
	if err != nil {
		t.Fatalf("NewProposal: %v", err)
	}
	store := &mockIntroStore{getResult: proposal, transitionOK: false}
	svc := newTestService(store, subjectWithMode(profile.ModeSuggest), &mockRanker{}, &mockDeliverer{})

	_, err = svc.Send(context.Background(), "i1", intro.Actor{MemberID: "subject"})
	if !errors.Is(err, domain.ErrDuplicateResponse) {
		t.Fatalf("expected ErrDuplicateResponse on lost race, got %v", err)
	}
}

func TestRespond(t *testing.T) {
	store := &mockIntroStore{getResult: makeSent(t, "i1"), transitionOK: true}
	svc := newTestService(store, subjectWithMode(profile.ModeSuggest), &mockRanker{}, &mockDeliverer{})

	i, err := svc.Respond(context.Background(), "i1", intro.Actor{MemberID: "target"}, intro.ResponseAccepted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if i.Status() != intro.StatusAccepted {
		t.Errorf("status = %s, want accepted", i.Status())
	}
	if len(store.transitions) != 1 || store.transitions[0] != intro.StatusSent {
		t.Errorf("transitions = %v, want conditional from sent", store.transitions)
	}
}

func TestRespond_ConcurrentLoserGetsDuplicate(t *testing.T) {
	store := &mockIntroStore{getResult: makeSent(t, "i1"), transitionOK: false}
	svc := newTestService(store, subjectWithMode(profile.ModeSuggest), &mockRanker{}, &mockDeliverer{})

	_, err := svc.Respond(context.Background(), "i1", intro.Actor{MemberID: "target"}, intro.ResponseDeclined)
	if !errors.Is(err, domain.ErrDuplicateResponse) {
		t.Fatalf("expected ErrDuplicateResponse, got %v", err)
	}
}

func TestGet_Authorization(t *testing.T) {
	store := &mockIntroStore{getResult: makeSent(t, "i1")}
	svc := newTestService(store, subjectWithMode(profile.ModeSuggest), &mockRanker{}, &mockDeliverer{})
	ctx := context.Background()

	if _, err := svc.Get(ctx, "i1", intro.Actor{MemberID: "subject"}); err != nil {
		t.Errorf("requester must be authorized: %v", err)
	}
	if _, err := svc.Get(ctx, "i1", intro.Actor{MemberID: "target"}); err != nil {
		t.Errorf("target must be authorized: %v", err)
	}
	if _, err := svc.Get(ctx, "i1", intro.SystemActor); err != nil {
		t.Errorf("system must be authorized: %v", err)
	}
	if _, err := svc.Get(ctx, "i1", intro.Actor{MemberID: "stranger"}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for stranger, got %v", err)
	}
}

func TestCancelHold(t *testing.T) {
	proposal, err := intro.NewProposal("i1", "subject", "target", intro.ScoreSnapshot{}, DefaultChannel, now)
	if err != nil {
		t.Fatalf("NewProposal: %v", err)
	}
	if err := proposal.Hold(now.Add(24 * time.Hour)); err != nil {
		t.Fatalf("Hold: %v", err)
	}
	store := &mockIntroStore{getResult: proposal, transitionOK: true}
	svc := newTestService(store, subjectWithMode(profile.ModeApprove), &mockRanker{}, &mockDeliverer{})

	i, err := svc.CancelHold(context.Background(), "i1", intro.Actor{MemberID: "subject"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if i.Held() {
		t.Error("hold must be cleared")
	}
}

func TestExpireSweep(t *testing.T) {
	stale := makeSent(t, "i1")
	fresh := makeSent(t, "i2")
	store := &mockIntroStore{listResult: []intro.Introduction{stale, fresh}, transitionOK: true}

	svc := newTestService(store, subjectWithMode(profile.ModeSuggest), &mockRanker{}, &mockDeliverer{})
	// Clock far enough ahead that both sent-at times are past the window.
	svc.WithClock(func() time.Time { return now.Add(8 * 24 * time.Hour) })

	n, err := svc.ExpireSweep(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expired = %d, want 2", n)
	}
}

func TestExpireSweep_RaceLostSkipsSilently(t *testing.T) {
	store := &mockIntroStore{listResult: []intro.Introduction{makeSent(t, "i1")}, transitionOK: false}
	svc := newTestService(store, subjectWithMode(profile.ModeSuggest), &mockRanker{}, &mockDeliverer{})
	svc.WithClock(func() time.Time { return now.Add(8 * 24 * time.Hour) })

	n, err := svc.ExpireSweep(context.Background())
	if err != nil {
		t.Fatalf("a lost race must not fail the sweep: %v", err)
	}
	if n != 0 {
		t.Errorf("expired = %d, want 0 when the responder won", n)
	}
}

func TestIncompleteSweep(t *testing.T) {
	i := makeSent(t, "i1")
	if err := i.Respond(intro.Actor{MemberID: "target"}, intro.ResponseAccepted, now.Add(-23*time.Hour)); err != nil {
		t.Fatalf("Respond: %v", err)
	}
	store := &mockIntroStore{listResult: []intro.Introduction{i}, transitionOK: true}
	svc := newTestService(store, subjectWithMode(profile.ModeSuggest), &mockRanker{}, &mockDeliverer{})
	svc.WithClock(func() time.Time { return now.Add(31 * 24 * time.Hour) })

	n, err := svc.IncompleteSweep(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("marked = %d, want 1", n)
	}
}

func TestApprovalSweep_DeliversElapsedHolds(t *testing.T) {
	held, err := intro.NewProposal("i1", "subject", "target", intro.ScoreSnapshot{Overall: 0.8}, DefaultChannel, now.Add(-25*time.Hour))
	if err != nil {
		t.Fatalf("NewProposal: %v", err)
	}
	if err := held.Hold(now.Add(-time.Hour)); err != nil {
		t.Fatalf("Hold: %v", err)
	}

	store := &mockIntroStore{listResult: []intro.Introduction{held}, transitionOK: true}
	deliver := &mockDeliverer{}
	svc := newTestService(store, subjectWithMode(profile.ModeApprove), &mockRanker{}, deliver)

	n, err := svc.ApprovalSweep(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("sent = %d, want 1", n)
	}
	if len(deliver.delivered) != 1 {
		t.Errorf("delivered = %d, want 1", len(deliver.delivered))
	}
}

func TestApprovalSweep_SkipsUnheld(t *testing.T) {
	plain, err := intro.NewProposal("i1", "subject", "target", intro.ScoreSnapshot{}, DefaultChannel, now)
	if err != nil {
		t.Fatalf("NewProposal: %v", err)
	}
	store := &mockIntroStore{listResult: []intro.Introduction{plain}, transitionOK: true}
	deliver := &mockDeliverer{}
	svc := newTestService(store, subjectWithMode(profile.ModeApprove), &mockRanker{}, deliver)

	n, err := svc.ApprovalSweep(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 || len(deliver.delivered) != 0 {
		t.Error("unheld proposals must be skipped")
	}
}

func TestApprovalSweep_RaceLost(t *testing.T) {
	held, err := intro.NewProposal("i1", "subject", "target", intro.ScoreSnapshot{}, DefaultChannel, now.Add(-25*time.Hour))
	if err != nil {
		t.Fatalf("NewProposal: %v", err)
	}
	if err := held.Hold(now.Add(-time.Hour)); err != nil {
		t.Fatalf("Hold: %v", err)
	}
	store := &mockIntroStore{listResult: []intro.Introduction{held}, transitionOK: false}
	svc := newTestService(store, subjectWithMode(profile.ModeApprove), &mockRanker{}, &mockDeliverer{})

	n, err := svc.ApprovalSweep(context.Background())
	if err != nil {
		t.Fatalf("a lost race must not fail the sweep: %v", err)
	}
	if n != 0 {
		t.Errorf("sent = %d, want 0", n)
	}
}

func TestBuildRationale(t *testing.T) {
	w, err := match.NewWeights(0, 1, 0, 0)
	if err != nil {
		t.Fatalf("NewWeights: %v", err)
	}
	s := match.NewScore("m1", "m2", 0.82, 0, 0, w, match.Context{
		MatchedAskIDs: []string{"a1", "a2"},
		IndustryMatch: true,
	})

	r := buildRationale(&s)
	if !strings.Contains(r, "2 of your open asks") {
		t.Errorf("rationale missing ask count: %q", r)
	}
	if !strings.Contains(r, "same industry") {
		t.Errorf("rationale missing industry: %q", r)
	}
	if !strings.Contains(r, "82%") {
		t.Errorf("rationale missing percentage: %q", r)
	}
}
