package ask

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/oriole-ai/oriole/internal/domain"
)

// LLMPlanner decomposes a query into a multi-term search plan via the
// language model. It never returns an error: whatever goes wrong, the
// caller gets the deterministic fallback plan.
type LLMPlanner struct {
	gen          domain.Generator
	defaultK     int
	maxPlanSteps int
	logger       *zap.Logger
}

// NewLLMPlanner creates a planner.
func NewLLMPlanner(gen domain.Generator, defaultK, maxPlanSteps int, logger *zap.Logger) *LLMPlanner {
	return &LLMPlanner{
		gen:          gen,
		defaultK:     defaultK,
		maxPlanSteps: maxPlanSteps,
		logger:       logger,
	}
}

// Plan implements Planner.
func (p *LLMPlanner) Plan(ctx context.Context, query string, history []domain.HistoryEntry) domain.Plan {
	prompt := p.buildPrompt(query, history)

	raw, err := p.gen.Generate(ctx, prompt)
	if err != nil {
		p.logger.Warn("Plan generation failed, using fallback plan", zap.Error(err))
		return domain.FallbackPlan(query, p.defaultK)
	}

	plan, err := DecodePlan(raw)
	if err != nil {
		p.logger.Warn("Plan decode failed, using fallback plan",
			zap.Error(err), zap.String("completion_preview", preview(raw, 200)))
		return domain.FallbackPlan(query, p.defaultK)
	}

	plan = p.sanitize(plan)
	if len(plan.Steps) == 0 {
		p.logger.Warn("Decoded plan has no usable steps, using fallback plan")
		return domain.FallbackPlan(query, p.defaultK)
	}

	return plan
}

// sanitize drops blank terms, defaults non-positive knn_k, synthesizes
// missing step ids and caps the step count.
func (p *LLMPlanner) sanitize(plan domain.Plan) domain.Plan {
	steps := make([]domain.PlanStep, 0, len(plan.Steps))
	for _, s := range plan.Steps {
		s.SearchTerm = strings.TrimSpace(s.SearchTerm)
		if s.SearchTerm == "" {
			continue
		}
		if s.KNNK <= 0 {
			s.KNNK = p.defaultK
		}
		if s.ID == "" {
			s.ID = fmt.Sprintf("e%d", len(steps)+1)
		}
		steps = append(steps, s)
		if len(steps) == p.maxPlanSteps {
			break
		}
	}
	plan.Steps = steps
	return plan
}

const planSchema = `{"intent": ["<short phrases describing what the user wants>"],
 "steps": [{"step_id": "e1", "search_term": "<term>", "knn_k": <positive int>}]}`

// buildPrompt assembles the planning instruction: schema, few-shot
// examples, optional failure history with a novelty requirement, then the
// query itself.
func (p *LLMPlanner) buildPrompt(query string, history []domain.HistoryEntry) string {
	var b strings.Builder

	b.WriteString("You are a search planner for a document retrieval system.\n")
	b.WriteString("Decompose the question into search terms for a hybrid keyword+vector index.\n")
	b.WriteString("Respond with strict JSON only, no prose, matching this schema:\n")
	b.WriteString(planSchema)
	b.WriteString("\n\nExamples:\n")

	// multi-entity extraction
	b.WriteString(`Question: "compare insulin resistance and thyroid disorders"` + "\n")
	b.WriteString(`{"intent": ["compare two conditions"], "steps": [` +
		`{"step_id": "e1", "search_term": "insulin resistance", "knn_k": 10}, ` +
		`{"step_id": "e2", "search_term": "thyroid disorders", "knn_k": 10}]}` + "\n")

	// synonym / related-term expansion
	b.WriteString(`Question: "heart disease reports"` + "\n")
	b.WriteString(`{"intent": ["find cardiology reports"], "steps": [` +
		`{"step_id": "e1", "search_term": "heart disease", "knn_k": 10}, ` +
		`{"step_id": "e2", "search_term": "cardiac disorder", "knn_k": 10}, ` +
		`{"step_id": "e3", "search_term": "cardiovascular disease", "knn_k": 10}]}` + "\n")

	// literal reuse when no decomposition is warranted
	b.WriteString(`Question: "KNN-512 error code"` + "\n")
	b.WriteString(`{"intent": ["look up an error code"], "steps": [` +
		`{"step_id": "e1", "search_term": "KNN-512 error code", "knn_k": 10}]}` + "\n")

	if len(history) > 0 {
		b.WriteString("\nPrevious attempts for this question found nothing useful:\n")
		for _, h := range history {
			terms := make([]string, len(h.Steps))
			for i, s := range h.Steps {
				terms[i] = fmt.Sprintf("%q", s.SearchTerm)
			}
			fmt.Fprintf(&b, "- attempt %d: terms [%s] → %s\n",
				h.Iteration, strings.Join(terms, ", "), h.Outcome)
		}
		b.WriteString("You MUST propose search terms different from every term listed above. ")
		b.WriteString("Try broader wording, synonyms, or related concepts.\n")
	}

	fmt.Fprintf(&b, "\nQuestion: %q\n", query)
	b.WriteString("JSON plan:")

	return b.String()
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
