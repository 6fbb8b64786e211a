package intent

import (
	"fmt"
	"time"
)

// SourceKind identifies which member artifact an intent vector was derived from.
type SourceKind string

// Source kinds.
const (
	SourceFounder SourceKind = "founder"
	SourceGoal    SourceKind = "goal"
	SourceAsk     SourceKind = "ask"
	SourcePost    SourceKind = "post"
)

// ParseSourceKind validates a source kind string.
func ParseSourceKind(s string) (SourceKind, error) {
	switch k := SourceKind(s); k {
	case SourceFounder, SourceGoal, SourceAsk, SourcePost:
		return k, nil
	default:
		return "", fmt.Errorf("unknown source kind %q", s)
	}
}

// Metadata describes the context an intent vector was generated in.
type Metadata struct {
	GoalType  string
	Industry  string
	Stage     string
	Urgency   string
	CreatedAt time.Time
}

// Vector is an immutable embedding of a member's stated goal, ask, profile or
// post text. A source-text change produces a new Vector with a new id; the old
// one is deleted, never mutated.
type Vector struct {
	id       string
	ownerID  string
	kind     SourceKind
	values   []float32
	metadata Metadata
}

// New creates an intent vector.
func New(id, ownerID string, kind SourceKind, values []float32, md Metadata) (Vector, error) {
	if id == "" {
		return Vector{}, fmt.Errorf("intent vector id is required")
	}
	if ownerID == "" {
		return Vector{}, fmt.Errorf("intent vector owner is required")
	}
	if len(values) == 0 {
		return Vector{}, fmt.Errorf("intent vector values are required")
	}
	if _, err := ParseSourceKind(string(kind)); err != nil {
		return Vector{}, err
	}
	return Vector{id: id, ownerID: ownerID, kind: kind, values: values, metadata: md}, nil
}

// Reconstruct rebuilds an intent vector from storage without validation.
func Reconstruct(id, ownerID string, kind SourceKind, values []float32, md Metadata) Vector {
	return Vector{id: id, ownerID: ownerID, kind: kind, values: values, metadata: md}
}

// ID returns the vector identifier.
func (v *Vector) ID() string { return v.id }

// OwnerID returns the owning member id.
func (v *Vector) OwnerID() string { return v.ownerID }

// Kind returns the source kind.
func (v *Vector) Kind() SourceKind { return v.kind }

// Values returns the embedding values.
func (v *Vector) Values() []float32 { return v.values }

// Metadata returns the generation context.
func (v *Vector) Metadata() Metadata { return v.metadata }
