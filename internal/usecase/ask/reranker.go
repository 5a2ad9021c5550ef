package ask

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/oriole-ai/oriole/internal/domain"
)

// Reranker re-scores resolved documents against the query with a
// cross-encoder. It never fails a request: a scoring backend error falls
// back to the input order with Reranked=false on every document.
type Reranker struct {
	scorer Scorer // nil disables reranking entirely
	logger *zap.Logger
}

// NewReranker creates a reranker. A nil scorer makes Rerank a pass-through.
func NewReranker(scorer Scorer, logger *zap.Logger) *Reranker {
	return &Reranker{scorer: scorer, logger: logger}
}

// Rerank orders docs by cross-encoder relevance to query. Documents with
// empty text are filtered out before scoring; they cannot be judged.
func (r *Reranker) Rerank(ctx context.Context, query string, docs []domain.ParentDocument) []domain.RankedDocument {
	kept := make([]domain.ParentDocument, 0, len(docs))
	for _, d := range docs {
		if d.Text != "" {
			kept = append(kept, d)
		}
	}

	ranked := make([]domain.RankedDocument, len(kept))
	for i, d := range kept {
		ranked[i] = domain.RankedDocument{ParentDocument: d}
	}
	if r.scorer == nil || len(kept) == 0 {
		return ranked
	}

	texts := make([]string, len(kept))
	for i, d := range kept {
		texts[i] = d.Text
	}

	scores, err := r.scorer.Score(ctx, query, texts)
	if err != nil || len(scores) != len(kept) {
		r.logger.Warn("Rerank failed, keeping fused order",
			zap.Int("documents", len(kept)), zap.Error(err))
		return ranked
	}

	for i := range ranked {
		ranked[i].RerankScore = scores[i]
		ranked[i].Reranked = true
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RerankScore > ranked[j].RerankScore
	})
	return ranked
}
