package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates a provider failure; retrieval still works
	// in reduced form (fallback plans, no reranking).
	Degraded Status = "degraded"
	// Unhealthy indicates the search backend is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	store     StorePinger
	embedding ProviderChecker
	llm       ProviderChecker
}

// New creates a Service. embedding and llm can be nil.
func New(store StorePinger, embedding, llm ProviderChecker) *Service {
	return &Service{store: store, embedding: embedding, llm: llm}
}

// Check runs health checks against all components. The search backend is
// load-bearing: its failure makes the whole service unhealthy, while a
// provider failure only degrades it.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	status := Healthy

	if err := s.store.Ping(ctx); err != nil {
		checks["store"] = CheckError
		status = Unhealthy
	} else {
		checks["store"] = CheckOK
	}

	for name, p := range map[string]ProviderChecker{
		"embedding": s.embedding,
		"llm":       s.llm,
	} {
		if p == nil {
			continue
		}
		if err := p.HealthCheck(ctx); err != nil {
			checks[name] = CheckError
			if status == Healthy {
				status = Degraded
			}
		} else {
			checks[name] = CheckOK
		}
	}

	return Report{Status: status, Checks: checks}
}
