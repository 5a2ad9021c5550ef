package domain

// SearchHit is a single scored chunk returned by the hybrid index for one
// plan step. Hits are never mutated after the executor produces them.
type SearchHit struct {
	ID       string
	Score    float64
	Text     string
	ParentID string
	Source   string
	Metadata map[string]string
}

// Identity returns the deduplication key for fusion: the parent document
// id when the chunk carries one, otherwise the chunk id itself (a chunk
// without a parent is its own document).
func (h SearchHit) Identity() string {
	if h.ParentID != "" {
		return h.ParentID
	}
	return h.ID
}

// Candidate is one fused entry: a parent identity with the aggregated
// signal collected from every step that found it.
type Candidate struct {
	ParentID      string
	MaxScore      float64
	HitCount      int
	CombinedScore float64
	// Best is the hit that contributed MaxScore.
	Best SearchHit
}
