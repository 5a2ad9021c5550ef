// Package index adapts the raw search backend into the hybrid index query
// capability consumed by the executor.
package index

import (
	"context"
	"fmt"
	"strings"

	"github.com/oriole-ai/oriole/internal/db"
	"github.com/oriole-ai/oriole/internal/domain"
)

// Reserved index fields written by the indexing service.
const (
	fieldText     = "text"
	fieldParentID = "parent_id"
	fieldSource   = "source"
)

// store is the consumer interface for index queries (ISP).
type store interface {
	HybridSearch(ctx context.Context, q *db.HybridQuery) (*db.SearchResult, error)
}

// Repo implements the hybrid index query capability.
type Repo struct {
	store     store
	indexName string
	keyPrefix string
}

// New creates an index repository. keyPrefix is stripped from hit keys to
// recover chunk ids (the indexing service writes chunks at
// "<prefix>chunk:<id>").
func New(s store, indexName, keyPrefix string) *Repo {
	return &Repo{store: s, indexName: indexName, keyPrefix: keyPrefix + "chunk:"}
}

// HybridSearch issues one combined lexical+vector query and maps raw
// entries to search hits. Score semantics (cosine similarity in [0,1])
// come from the store layer.
func (r *Repo) HybridSearch(ctx context.Context, term string, vector []float32, k int) ([]domain.SearchHit, error) {
	q := &db.HybridQuery{
		IndexName:    r.indexName,
		Term:         term,
		Vector:       vector,
		K:            k,
		ReturnFields: []string{fieldText, fieldParentID, fieldSource, "__vector_score"},
	}

	sr, err := r.store.HybridSearch(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("hybrid search %q: %w: %w", term, err, domain.ErrSearchBackendError)
	}

	hits := make([]domain.SearchHit, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		hit := domain.SearchHit{
			ID:       strings.TrimPrefix(e.Key, r.keyPrefix),
			Score:    e.Score,
			Text:     e.Fields[fieldText],
			ParentID: e.Fields[fieldParentID],
			Source:   e.Fields[fieldSource],
		}

		// Carry any extra fields as metadata without the reserved ones.
		for name, value := range e.Fields {
			switch name {
			case fieldText, fieldParentID, fieldSource:
				continue
			}
			if hit.Metadata == nil {
				hit.Metadata = make(map[string]string)
			}
			hit.Metadata[name] = value
		}

		hits = append(hits, hit)
	}

	return hits, nil
}
