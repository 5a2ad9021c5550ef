package domain

// PlanStep is a single search instruction inside a Plan.
type PlanStep struct {
	ID         string `json:"step_id"`
	SearchTerm string `json:"search_term"`
	KNNK       int    `json:"knn_k"`
}

// Plan is one planning round's output: the model's reading of the query
// plus the ordered search steps to execute. Immutable once executed.
type Plan struct {
	Intent []string   `json:"intent"`
	Steps  []PlanStep `json:"steps"`
}

// FallbackPlan builds the deterministic single-step plan used whenever the
// model's output cannot be decoded into a usable plan: the original query
// as the only search term.
func FallbackPlan(query string, defaultK int) Plan {
	return Plan{
		Steps: []PlanStep{{ID: "e1", SearchTerm: query, KNNK: defaultK}},
	}
}

// Terms returns the search terms of the plan in step order.
func (p Plan) Terms() []string {
	terms := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		terms[i] = s.SearchTerm
	}
	return terms
}
