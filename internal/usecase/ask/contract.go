package ask

import (
	"context"

	"github.com/oriole-ai/oriole/internal/domain"
)

// Index is the hybrid index query capability: one combined lexical+vector
// query per plan step.
type Index interface {
	HybridSearch(ctx context.Context, term string, vector []float32, k int) ([]domain.SearchHit, error)
}

// Docstore batch-resolves parent document ids.
type Docstore interface {
	GetDocuments(ctx context.Context, ids []string) ([]domain.ParentDocument, error)
}

// Scorer is the cross-encoder scoring capability. Scores are aligned with
// the input texts.
type Scorer interface {
	Score(ctx context.Context, query string, texts []string) ([]float64, error)
}

// Planner turns a query plus prior attempts into a search plan. A planner
// never fails: undecodable model output degrades to the deterministic
// fallback plan.
type Planner interface {
	Plan(ctx context.Context, query string, history []domain.HistoryEntry) domain.Plan
}

// Executor runs every step of a plan against the hybrid index and returns
// per-step hit lists aligned with the steps. A failed step yields an empty
// list, never an error for the whole plan.
type Executor interface {
	Execute(ctx context.Context, steps []domain.PlanStep) [][]domain.SearchHit
}
