package ask

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/oriole-ai/oriole/internal/domain"
)

// Resolver turns fused candidates into full parent documents with a single
// docstore batch per call. Candidate order is preserved; ids the docstore
// no longer holds are dropped, not errors.
type Resolver struct {
	docstore Docstore
	logger   *zap.Logger
}

// NewResolver creates a resolver.
func NewResolver(docstore Docstore, logger *zap.Logger) *Resolver {
	return &Resolver{docstore: docstore, logger: logger}
}

// Resolve fetches the parent documents for candidates and attaches each
// candidate's combined score to its document.
func (r *Resolver) Resolve(ctx context.Context, candidates []domain.Candidate) ([]domain.ParentDocument, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ParentID
	}

	docs, err := r.docstore.GetDocuments(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve parents: %w", err)
	}

	byID := make(map[string]domain.ParentDocument, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
	}

	out := make([]domain.ParentDocument, 0, len(candidates))
	for _, c := range candidates {
		doc, ok := byID[c.ParentID]
		if !ok {
			r.logger.Debug("Parent document vanished from docstore",
				zap.String("parent_id", c.ParentID))
			continue
		}
		doc.Score = c.CombinedScore
		out = append(out, doc)
	}
	return out, nil
}
