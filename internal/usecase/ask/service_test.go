package ask

import (
	"context"
	"errors"
	"testing"

	"github.com/oriole-ai/oriole/internal/domain"
)

func plan(terms ...string) domain.Plan {
	return domain.Plan{Steps: steps(terms...)}
}

func TestAsk_EmptyQueryRejected(t *testing.T) {
	svc := newTestService(&mockPlanner{}, &mockStepExecutor{}, &mockDocstore{}, nil, 6, 5)

	for _, q := range []string{"", "   ", "\n\t"} {
		if _, err := svc.Ask(context.Background(), q, 0); !errors.Is(err, domain.ErrEmptyQuery) {
			t.Errorf("query %q: expected ErrEmptyQuery, got %v", q, err)
		}
	}
}

func TestAsk_FirstSuccessWins(t *testing.T) {
	planner := &mockPlanner{plans: []domain.Plan{plan("alpha")}}
	exec := &mockStepExecutor{results: [][][]domain.SearchHit{
		{{hitP("c1", "doc1", 0.9)}},
	}}
	ds := &mockDocstore{docs: map[string]domain.ParentDocument{"doc1": doc("doc1", "text one")}}
	svc := newTestService(planner, exec, ds, nil, 6, 5)

	ranked, err := svc.Ask(context.Background(), "find alpha", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranked) != 1 || ranked[0].ID != "doc1" {
		t.Fatalf("unexpected result: %+v", ranked)
	}
	if planner.calls != 1 || exec.calls != 1 {
		t.Errorf("non-empty first round must stop iterating: planner=%d exec=%d", planner.calls, exec.calls)
	}
}

func TestAsk_RetriesWithFeedbackThenSucceeds(t *testing.T) {
	planner := &mockPlanner{plans: []domain.Plan{
		plan("heart disease"),
		plan("cardiac disorder"),
	}}
	exec := &mockStepExecutor{results: [][][]domain.SearchHit{
		{{}}, // first plan finds nothing
		{{hitP("c7", "doc7", 0.8)}},
	}}
	ds := &mockDocstore{docs: map[string]domain.ParentDocument{"doc7": doc("doc7", "cardiology report")}}
	svc := newTestService(planner, exec, ds, nil, 6, 5)

	ranked, err := svc.Ask(context.Background(), "heart disease reports", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranked) != 1 || ranked[0].ID != "doc7" {
		t.Fatalf("unexpected result: %+v", ranked)
	}
	if planner.calls != 2 {
		t.Fatalf("expected 2 planning rounds, got %d", planner.calls)
	}

	// the second round must see the first round's failure
	h := planner.histories[1]
	if len(h) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(h))
	}
	if h[0].Iteration != 1 || h[0].Outcome != "0 hits — generate a different plan" {
		t.Errorf("bad history entry: %+v", h[0])
	}
	if len(h[0].Steps) != 1 || h[0].Steps[0].SearchTerm != "heart disease" {
		t.Errorf("history entry does not carry the failed plan: %+v", h[0].Steps)
	}
}

func TestAsk_IterationCapReturnsEmptyNotError(t *testing.T) {
	planner := &mockPlanner{} // always falls back; every round finds nothing
	exec := &mockStepExecutor{}
	svc := newTestService(planner, exec, &mockDocstore{}, nil, 3, 5)

	ranked, err := svc.Ask(context.Background(), "nothing matches this", 0)
	if err != nil {
		t.Fatalf("cap exhaustion must not error: %v", err)
	}
	if len(ranked) != 0 {
		t.Fatalf("expected empty result, got %+v", ranked)
	}
	if planner.calls != 3 {
		t.Fatalf("expected exactly 3 rounds, got %d", planner.calls)
	}
}

func TestAsk_RerankFailureKeepsFusedOrder(t *testing.T) {
	planner := &mockPlanner{plans: []domain.Plan{plan("a", "b")}}
	exec := &mockStepExecutor{results: [][][]domain.SearchHit{{
		{hitP("c1", "doc1", 0.9)},
		{hitP("c2", "doc2", 0.8)},
	}}}
	ds := &mockDocstore{docs: map[string]domain.ParentDocument{
		"doc1": doc("doc1", "one"),
		"doc2": doc("doc2", "two"),
	}}
	sc := &mockScorer{err: errors.New("cross-encoder down")}
	svc := newTestService(planner, exec, ds, sc, 6, 5)

	ranked, err := svc.Ask(context.Background(), "q", 0)
	if err != nil {
		t.Fatalf("rerank failure must not fail the request: %v", err)
	}
	if len(ranked) != 2 || ranked[0].ID != "doc1" || ranked[1].ID != "doc2" {
		t.Fatalf("fused order not preserved: %+v", ranked)
	}
	if ranked[0].Reranked {
		t.Error("results must not claim reranking after failure")
	}
}

func TestAsk_TopKTruncation(t *testing.T) {
	// mocks are scripted for one Ask call, so each case builds its own
	newSvc := func(defaultTopK int) *Service {
		planner := &mockPlanner{plans: []domain.Plan{plan("a")}}
		exec := &mockStepExecutor{results: [][][]domain.SearchHit{{{
			hitP("c1", "d1", 0.9), hitP("c2", "d2", 0.8), hitP("c3", "d3", 0.7),
		}}}}
		ds := &mockDocstore{docs: map[string]domain.ParentDocument{
			"d1": doc("d1", "1"), "d2": doc("d2", "2"), "d3": doc("d3", "3"),
		}}
		return newTestService(planner, exec, ds, nil, 6, defaultTopK)
	}

	ranked, err := newSvc(2).Ask(context.Background(), "q", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("expected default top_k=2 truncation, got %d", len(ranked))
	}

	ranked, err = newSvc(2).Ask(context.Background(), "q", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranked) != 3 {
		t.Fatalf("expected explicit top_k=3, got %d", len(ranked))
	}
}

func TestAsk_NoDuplicateParentsInResults(t *testing.T) {
	planner := &mockPlanner{plans: []domain.Plan{plan("a", "b")}}
	exec := &mockStepExecutor{results: [][][]domain.SearchHit{{
		{hitP("c1", "doc1", 0.9), hitP("c2", "doc2", 0.8)},
		{hitP("c3", "doc1", 0.85)},
	}}}
	ds := &mockDocstore{docs: map[string]domain.ParentDocument{
		"doc1": doc("doc1", "one"),
		"doc2": doc("doc2", "two"),
	}}
	svc := newTestService(planner, exec, ds, nil, 6, 5)

	ranked, err := svc.Ask(context.Background(), "q", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	seen := map[string]bool{}
	for _, d := range ranked {
		if seen[d.ID] {
			t.Fatalf("duplicate parent %s in results", d.ID)
		}
		seen[d.ID] = true
	}
	if len(ranked) != 2 {
		t.Fatalf("expected 2 distinct parents, got %d", len(ranked))
	}
}

func TestAsk_ResolverErrorPropagates(t *testing.T) {
	planner := &mockPlanner{plans: []domain.Plan{plan("a")}}
	exec := &mockStepExecutor{results: [][][]domain.SearchHit{{{hitP("c1", "d1", 0.9)}}}}
	ds := &mockDocstore{err: errors.New("docstore unreachable")}
	svc := newTestService(planner, exec, ds, nil, 6, 5)

	if _, err := svc.Ask(context.Background(), "q", 0); err == nil {
		t.Fatal("expected error from failed resolution")
	}
}

func TestAsk_CancelledContext(t *testing.T) {
	planner := &mockPlanner{plans: []domain.Plan{plan("a")}}
	svc := newTestService(planner, &mockStepExecutor{}, &mockDocstore{}, nil, 6, 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Ask(ctx, "q", 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
