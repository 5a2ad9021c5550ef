package ask

import (
	"math"
	"sort"

	"github.com/oriole-ai/oriole/internal/domain"
)

// Fuser merges per-step hit lists into one deduplicated candidate list.
// The baseline strategy interleaves the lists round-robin so every step
// contributes to the head of the result; the weighted strategy instead
// rewards parents found by multiple independent steps.
type Fuser struct {
	weighted bool
	boost    float64
	epsilon  float64
}

// NewFuser creates a fuser. boost and epsilon only apply to the weighted
// strategy.
func NewFuser(weighted bool, boost, epsilon float64) *Fuser {
	return &Fuser{weighted: weighted, boost: boost, epsilon: epsilon}
}

// Fuse merges the per-step results. Each identity appears exactly once.
// The weighted strategy needs parent grouping, so it only applies when
// every hit carries a parent id; otherwise the baseline interleave runs.
func (f *Fuser) Fuse(perStep [][]domain.SearchHit) []domain.Candidate {
	if f.weighted && allParented(perStep) {
		return f.fuseWeighted(perStep)
	}
	return interleave(perStep)
}

func allParented(perStep [][]domain.SearchHit) bool {
	for _, hits := range perStep {
		for _, h := range hits {
			if h.ParentID == "" {
				return false
			}
		}
	}
	return true
}

// interleave walks the step lists round-robin (first hit of every step,
// then second hit of every step, and so on), keeping the first occurrence
// of each identity. Deterministic for a given input.
func interleave(perStep [][]domain.SearchHit) []domain.Candidate {
	var total, longest int
	for _, hits := range perStep {
		total += len(hits)
		if len(hits) > longest {
			longest = len(hits)
		}
	}

	seen := make(map[string]struct{}, total)
	out := make([]domain.Candidate, 0, total)
	for rank := 0; rank < longest; rank++ {
		for _, hits := range perStep {
			if rank >= len(hits) {
				continue
			}
			h := hits[rank]
			id := h.Identity()
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, domain.Candidate{
				ParentID:      id,
				MaxScore:      h.Score,
				HitCount:      1,
				CombinedScore: h.Score,
				Best:          h,
			})
		}
	}
	return out
}

// fuseWeighted aggregates every hit per identity, then scores each
// candidate as maxScore lifted by the number of steps that found it:
//
//	combined = maxScore * (1 + ln(hitCount) * boost)
//
// A single hit leaves the score untouched (ln 1 = 0). Candidates within
// epsilon of each other are ordered by hit count, so corroboration wins
// near-ties. First-seen order breaks exact remaining ties deterministically.
func (f *Fuser) fuseWeighted(perStep [][]domain.SearchHit) []domain.Candidate {
	byID := make(map[string]*domain.Candidate)
	var order []string

	for _, hits := range perStep {
		counted := make(map[string]struct{}, len(hits))
		for _, h := range hits {
			id := h.Identity()
			c, ok := byID[id]
			if !ok {
				c = &domain.Candidate{ParentID: id, Best: h, MaxScore: h.Score}
				byID[id] = c
				order = append(order, id)
			} else if h.Score > c.MaxScore {
				c.MaxScore = h.Score
				c.Best = h
			}
			// a step counts once per identity however many of its
			// chunks resolved to the same parent
			if _, dup := counted[id]; !dup {
				counted[id] = struct{}{}
				c.HitCount++
			}
		}
	}

	out := make([]domain.Candidate, 0, len(order))
	firstSeen := make(map[string]int, len(order))
	for i, id := range order {
		c := byID[id]
		c.CombinedScore = c.MaxScore * (1 + math.Log(float64(c.HitCount))*f.boost)
		firstSeen[id] = i
		out = append(out, *c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		di := out[i].CombinedScore - out[j].CombinedScore
		if math.Abs(di) <= f.epsilon {
			if out[i].HitCount != out[j].HitCount {
				return out[i].HitCount > out[j].HitCount
			}
			return firstSeen[out[i].ParentID] < firstSeen[out[j].ParentID]
		}
		return di > 0
	})
	return out
}
