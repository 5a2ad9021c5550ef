package ask

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/oriole-ai/oriole/internal/domain"
	"github.com/oriole-ai/oriole/internal/metrics"
)

// HybridExecutor runs plan steps against the hybrid index. Embedding is
// memoized per plan so steps sharing a term cost one provider call, then
// the searches run concurrently. Failures stay contained to their step.
type HybridExecutor struct {
	index       Index
	embedder    domain.Embedder
	expander    *Expander // nil when hypothetical-document expansion is off
	minScore    float64
	concurrency int
	logger      *zap.Logger
}

// NewHybridExecutor creates an executor. expander may be nil.
func NewHybridExecutor(index Index, embedder domain.Embedder, expander *Expander, minScore float64, concurrency int, logger *zap.Logger) *HybridExecutor {
	if concurrency < 1 {
		concurrency = 1
	}
	return &HybridExecutor{
		index:       index,
		embedder:    embedder,
		expander:    expander,
		minScore:    minScore,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Execute implements Executor. The returned slice is aligned with steps;
// a step whose embedding or search failed contributes an empty list.
func (e *HybridExecutor) Execute(ctx context.Context, steps []domain.PlanStep) [][]domain.SearchHit {
	results := make([][]domain.SearchHit, len(steps))
	if len(steps) == 0 {
		return results
	}

	// Phase one: embed each distinct term once, sequentially, so the
	// concurrent phase never races on the memo.
	vectors := make(map[string][]float32, len(steps))
	for _, s := range steps {
		if _, seen := vectors[s.SearchTerm]; seen {
			continue
		}
		vec, err := e.embed(ctx, s.SearchTerm)
		if err != nil {
			e.logger.Warn("Term embedding failed, skipping its steps",
				zap.String("step_id", s.ID), zap.Error(err))
			vectors[s.SearchTerm] = nil
			continue
		}
		vectors[s.SearchTerm] = vec
	}

	// Phase two: concurrent searches, each goroutine owning its own
	// result slot so no synchronization is needed on results.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, s := range steps {
		i, s := i, s
		vec := vectors[s.SearchTerm]
		if vec == nil {
			metrics.SearchStepsTotal.WithLabelValues("skipped").Inc()
			continue
		}
		g.Go(func() error {
			hits, err := e.index.HybridSearch(gctx, s.SearchTerm, vec, s.KNNK)
			if err != nil {
				e.logger.Warn("Step search failed",
					zap.String("step_id", s.ID), zap.Error(err))
				metrics.SearchStepsTotal.WithLabelValues("error").Inc()
				return nil
			}
			metrics.SearchStepsTotal.WithLabelValues("success").Inc()
			results[i] = e.filter(hits)
			return nil
		})
	}
	_ = g.Wait() // goroutines swallow their own errors

	return results
}

// embed vectorizes a term, routing it through the hypothetical-document
// expander first when one is configured. Expansion failure is transparent:
// the raw term is embedded instead.
func (e *HybridExecutor) embed(ctx context.Context, term string) ([]float32, error) {
	text := term
	if e.expander != nil {
		text = e.expander.Expand(ctx, term)
	}
	res, err := e.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	return res.Embedding, nil
}

func (e *HybridExecutor) filter(hits []domain.SearchHit) []domain.SearchHit {
	if e.minScore <= 0 {
		return hits
	}
	kept := make([]domain.SearchHit, 0, len(hits))
	for _, h := range hits {
		if h.Score >= e.minScore {
			kept = append(kept, h)
		}
	}
	return kept
}
