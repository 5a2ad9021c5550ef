// Package ask implements the agentic retrieval pipeline: plan, execute,
// fuse, resolve, rerank, with bounded retry when a plan finds nothing.
package ask

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/oriole-ai/oriole/internal/domain"
	"github.com/oriole-ai/oriole/internal/metrics"
)

type state int

const (
	statePlanning state = iota
	stateExecuting
	stateEvaluating
	stateDone
)

// Service is the iterative retrieval controller. All per-query state
// (plans, history, candidates) lives inside a single Ask call; nothing is
// retained between requests.
type Service struct {
	planner       Planner
	executor      Executor
	fuser         *Fuser
	resolver      *Resolver
	reranker      *Reranker
	maxIterations int
	defaultTopK   int
	logger        *zap.Logger
}

// NewService wires the pipeline components into a controller.
func NewService(planner Planner, executor Executor, fuser *Fuser, resolver *Resolver, reranker *Reranker, maxIterations, defaultTopK int, logger *zap.Logger) *Service {
	if maxIterations < 1 {
		maxIterations = 1
	}
	return &Service{
		planner:       planner,
		executor:      executor,
		fuser:         fuser,
		resolver:      resolver,
		reranker:      reranker,
		maxIterations: maxIterations,
		defaultTopK:   defaultTopK,
		logger:        logger,
	}
}

// Ask answers a query with up to topK ranked documents. topK <= 0 uses the
// configured default. An empty result is a valid outcome, not an error:
// errors only surface for invalid input or a failed parent resolution.
func (s *Service) Ask(ctx context.Context, query string, topK int) ([]domain.RankedDocument, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrEmptyQuery
	}
	if topK <= 0 {
		topK = s.defaultTopK
	}

	var (
		history    []domain.HistoryEntry
		candidates []domain.Candidate
		plan       domain.Plan
		perStep    [][]domain.SearchHit
		iteration  int
	)

	for st := statePlanning; st != stateDone; {
		switch st {
		case statePlanning:
			iteration++
			plan = s.planner.Plan(ctx, query, history)
			s.logger.Debug("Plan produced",
				zap.Int("iteration", iteration),
				zap.Strings("terms", plan.Terms()))
			st = stateExecuting

		case stateExecuting:
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			perStep = s.executor.Execute(ctx, plan.Steps)
			candidates = s.fuser.Fuse(perStep)
			metrics.FusionCandidates.Observe(float64(len(candidates)))
			st = stateEvaluating

		case stateEvaluating:
			if len(candidates) > 0 || iteration >= s.maxIterations {
				st = stateDone
				break
			}
			history = append(history, domain.NewHistoryEntry(
				iteration, plan, "0 hits — generate a different plan", 0))
			st = statePlanning
		}
	}
	metrics.AskIterations.Observe(float64(iteration))

	if len(candidates) == 0 {
		s.logger.Info("No matching documents",
			zap.String("query", query), zap.Int("iterations", iteration))
		return []domain.RankedDocument{}, nil
	}

	docs, err := s.resolver.Resolve(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("ask %q: %w", query, err)
	}

	ranked := s.reranker.Rerank(ctx, query, docs)
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked, nil
}
