package ask

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/oriole-ai/oriole/internal/domain"
)

func TestRerank_SortsByScoreDescending(t *testing.T) {
	sc := &mockScorer{scores: []float64{0.2, 0.9, 0.5}}
	r := NewReranker(sc, zap.NewNop())

	docs := []domain.ParentDocument{doc("a", "ta"), doc("b", "tb"), doc("c", "tc")}
	ranked := r.Rerank(context.Background(), "q", docs)

	if len(ranked) != 3 {
		t.Fatalf("expected 3 docs, got %d", len(ranked))
	}
	if ranked[0].ID != "b" || ranked[1].ID != "c" || ranked[2].ID != "a" {
		t.Fatalf("wrong order: %s, %s, %s", ranked[0].ID, ranked[1].ID, ranked[2].ID)
	}
	for _, d := range ranked {
		if !d.Reranked {
			t.Errorf("doc %s not marked reranked", d.ID)
		}
	}
}

func TestRerank_BackendFailureKeepsInputOrder(t *testing.T) {
	sc := &mockScorer{err: errors.New("rerank backend down")}
	r := NewReranker(sc, zap.NewNop())

	docs := []domain.ParentDocument{doc("a", "ta"), doc("b", "tb")}
	ranked := r.Rerank(context.Background(), "q", docs)

	if len(ranked) != 2 || ranked[0].ID != "a" || ranked[1].ID != "b" {
		t.Fatalf("soft-fail must keep input order: %+v", ranked)
	}
	for _, d := range ranked {
		if d.Reranked {
			t.Errorf("doc %s must not be marked reranked after failure", d.ID)
		}
	}
}

func TestRerank_MisalignedScoresTreatedAsFailure(t *testing.T) {
	sc := &mockScorer{scores: []float64{0.9}} // backend returned too few
	r := NewReranker(sc, zap.NewNop())

	docs := []domain.ParentDocument{doc("a", "ta"), doc("b", "tb")}
	ranked := r.Rerank(context.Background(), "q", docs)

	if ranked[0].ID != "a" || ranked[0].Reranked {
		t.Fatalf("misaligned scores must soft-fail: %+v", ranked)
	}
}

func TestRerank_FiltersEmptyTextBeforeScoring(t *testing.T) {
	sc := &mockScorer{scores: []float64{0.5, 0.7}}
	r := NewReranker(sc, zap.NewNop())

	docs := []domain.ParentDocument{doc("a", "ta"), doc("empty", ""), doc("b", "tb")}
	ranked := r.Rerank(context.Background(), "q", docs)

	if len(ranked) != 2 {
		t.Fatalf("empty-text doc must be dropped, got %d", len(ranked))
	}
	if len(sc.gotTexts) != 2 {
		t.Errorf("scorer must only see non-empty texts, got %v", sc.gotTexts)
	}
}

func TestRerank_NilScorerPassesThrough(t *testing.T) {
	r := NewReranker(nil, zap.NewNop())

	docs := []domain.ParentDocument{doc("a", "ta"), doc("b", "tb")}
	ranked := r.Rerank(context.Background(), "q", docs)

	if len(ranked) != 2 || ranked[0].ID != "a" || ranked[1].ID != "b" {
		t.Fatalf("pass-through order broken: %+v", ranked)
	}
	if ranked[0].Reranked {
		t.Error("pass-through must not claim reranking")
	}
}

func TestRerank_NoDocsNoCall(t *testing.T) {
	sc := &mockScorer{}
	r := NewReranker(sc, zap.NewNop())

	if got := r.Rerank(context.Background(), "q", nil); len(got) != 0 {
		t.Fatalf("expected empty, got %v", got)
	}
	if sc.called {
		t.Error("scorer must not be called without documents")
	}
}
