package domain

// HistoryEntry records one finished planning round so the next round can
// be steered away from terms that already failed. Entries are values;
// a round's history is append-only and never mutated after the fact.
type HistoryEntry struct {
	Iteration int
	Steps     []PlanStep
	Outcome   string
	HitCount  int
}

// NewHistoryEntry snapshots an executed plan and its outcome. The step
// slice is copied so later plan reuse cannot alias into the history.
func NewHistoryEntry(iteration int, plan Plan, outcome string, hitCount int) HistoryEntry {
	steps := make([]PlanStep, len(plan.Steps))
	copy(steps, plan.Steps)
	return HistoryEntry{
		Iteration: iteration,
		Steps:     steps,
		Outcome:   outcome,
		HitCount:  hitCount,
	}
}
