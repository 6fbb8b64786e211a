package introstore

import (
	"strconv"
	"time"

	"github.com/ainative-studio/publicfounders/internal/domain/intro"
)

// buildHashFields flattens an introduction for HSET. Timestamps are unix
// millis; zero times store as 0 so NUMERIC range queries can skip them.
func buildHashFields(i *intro.Introduction) map[string]string {
	score := i.ScoreAtProposal()
	return map[string]string{
		"requester":      i.RequesterID(),
		"target":         i.TargetID(),
		"overall":        formatFloat(score.Overall),
		"relevance":      formatFloat(score.Relevance),
		"trust":          formatFloat(score.Trust),
		"reciprocity":    formatFloat(score.Reciprocity),
		"goal_type":      score.GoalType,
		"industry_match": formatBool(score.IndustryMatch),
		"rationale":      i.Rationale(),
		"channel":        i.Channel(),
		"status":         string(i.Status()),
		"created_at":     formatMilli(i.CreatedAt()),
		"sent_at":        formatMilli(i.SentAt()),
		"responded_at":   formatMilli(i.RespondedAt()),
		"expired_at":     formatMilli(i.ExpiredAt()),
		"completed_at":   formatMilli(i.CompletedAt()),
		"hold_until":     formatMilli(i.HoldUntil()),
	}
}

// parseHashFields rebuilds an introduction from a hash record.
func parseHashFields(id string, m map[string]string) intro.Introduction {
	status, _ := intro.ParseStatus(m["status"])

	score := intro.ScoreSnapshot{
		Overall:       parseFloat(m["overall"]),
		Relevance:     parseFloat(m["relevance"]),
		Trust:         parseFloat(m["trust"]),
		Reciprocity:   parseFloat(m["reciprocity"]),
		GoalType:      m["goal_type"],
		IndustryMatch: m["industry_match"] == "1",
	}

	return intro.Reconstruct(
		id, m["requester"], m["target"], score,
		m["rationale"], m["channel"], status,
		parseMilli(m["created_at"]),
		parseMilli(m["sent_at"]),
		parseMilli(m["responded_at"]),
		parseMilli(m["expired_at"]),
		parseMilli(m["completed_at"]),
		parseMilli(m["hold_until"]),
	)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func formatMilli(t time.Time) string {
	if t.IsZero() {
		return "0"
	}
	return strconv.FormatInt(t.UnixMilli(), 10)
}

func parseMilli(s string) time.Time {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil || ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
