package intent

// Neighbor is a single vector-search hit: another member's intent vector and
// its similarity to the query vector.
type Neighbor struct {
	VectorID   string
	OwnerID    string
	Kind       SourceKind
	Similarity float64
	Metadata   Metadata
}
