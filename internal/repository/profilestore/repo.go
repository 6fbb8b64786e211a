package profilestore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ainative-studio/publicfounders/internal/domain"
	"github.com/ainative-studio/publicfounders/internal/domain/profile"
)

const keyPrefix = domain.KeyPrefix + "profile:"

// store is the consumer interface for profile snapshots.
type store interface {
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HSet(ctx context.Context, key string, fields map[string]string) error
}

// Repo reads member profile snapshots the platform's profile service syncs
// into the store. The engine treats profiles as read-only; Put exists for the
// sync path and tests.
type Repo struct {
	store store
}

// New creates a profile repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Get returns a member profile.
func (r *Repo) Get(ctx context.Context, memberID string) (profile.Profile, error) {
	m, err := r.store.HGetAll(ctx, profileKey(memberID))
	if err != nil {
		return profile.Profile{}, fmt.Errorf("get profile %s: %w", memberID, err)
	}
	if len(m) == 0 {
		return profile.Profile{}, domain.ErrProfileNotFound
	}
	return parseHashFields(memberID, m), nil
}

// Put stores a profile snapshot.
func (r *Repo) Put(ctx context.Context, p *profile.Profile) error {
	if err := r.store.HSet(ctx, profileKey(p.MemberID), buildHashFields(p)); err != nil {
		return fmt.Errorf("put profile %s: %w", p.MemberID, err)
	}
	return nil
}

func profileKey(memberID string) string { return keyPrefix + memberID }

func buildHashFields(p *profile.Profile) map[string]string {
	goals, _ := json.Marshal(p.Goals)
	asks, _ := json.Marshal(p.OpenAsks)
	return map[string]string{
		"bio_present":      formatBool(p.BioPresent),
		"contact_verified": formatBool(p.ContactVerified),
		"public_visible":   formatBool(p.PublicVisible),
		"industry":         p.Industry,
		"location":         p.Location,
		"goals":            string(goals),
		"asks":             string(asks),
		"connections":      strings.Join(p.Connections, ","),
		"do_not_intro":     strings.Join(p.DoNotIntro, ","),
		"autonomy":         string(p.Autonomy),
		"created_at":       strconv.FormatInt(p.CreatedAt.UnixMilli(), 10),
	}
}

func parseHashFields(memberID string, m map[string]string) profile.Profile {
	mode, err := profile.ParseAutonomyMode(m["autonomy"])
	if err != nil {
		mode = profile.ModeSuggest // unknown policy never auto-executes
	}

	var goals []profile.Goal
	_ = json.Unmarshal([]byte(m["goals"]), &goals)
	var asks []profile.Ask
	_ = json.Unmarshal([]byte(m["asks"]), &asks)

	var createdAt time.Time
	if ms, err := strconv.ParseInt(m["created_at"], 10, 64); err == nil && ms != 0 {
		createdAt = time.UnixMilli(ms).UTC()
	}

	return profile.Profile{
		MemberID:        memberID,
		BioPresent:      m["bio_present"] == "1",
		ContactVerified: m["contact_verified"] == "1",
		PublicVisible:   m["public_visible"] == "1",
		Industry:        m["industry"],
		Location:        m["location"],
		Goals:           goals,
		OpenAsks:        asks,
		Connections:     splitList(m["connections"]),
		DoNotIntro:      splitList(m["do_not_intro"]),
		Autonomy:        mode,
		CreatedAt:       createdAt,
	}
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
