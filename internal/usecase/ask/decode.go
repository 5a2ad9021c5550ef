package ask

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/oriole-ai/oriole/internal/domain"
)

// DecodePlan parses a model completion into a Plan using a two-stage
// structured decode: strict JSON first, then fenced-block extraction.
// Anything else is an error; the planner maps it to the fallback plan.
func DecodePlan(raw string) (domain.Plan, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.Plan{}, fmt.Errorf("empty completion")
	}

	var plan domain.Plan
	if err := json.Unmarshal([]byte(raw), &plan); err == nil {
		return plan, nil
	}

	stripped, ok := stripFence(raw)
	if !ok {
		return domain.Plan{}, fmt.Errorf("completion is not JSON and carries no code fence")
	}
	if err := json.Unmarshal([]byte(stripped), &plan); err != nil {
		return domain.Plan{}, fmt.Errorf("parse fenced completion: %w", err)
	}
	return plan, nil
}

// stripFence removes a surrounding Markdown code fence, tolerating a
// language tag ("```json") and leading prose before the fence.
func stripFence(s string) (string, bool) {
	start := strings.Index(s, "```")
	if start < 0 {
		return "", false
	}
	s = s[start+3:]

	// drop the language tag up to the first newline
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		firstLine := strings.TrimSpace(s[:nl])
		if firstLine == "" || isFenceTag(firstLine) {
			s = s[nl+1:]
		}
	}

	end := strings.LastIndex(s, "```")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(s[:end]), true
}

func isFenceTag(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
