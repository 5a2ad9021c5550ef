// Package docstore resolves parent document ids to full documents stored
// as JSON by the indexing service.
package docstore

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/oriole-ai/oriole/internal/domain"
)

// store is the consumer interface for document resolution (ISP).
type store interface {
	JSONMGet(ctx context.Context, keys ...string) ([][]byte, error)
}

// Repo implements the batch docstore capability.
type Repo struct {
	store     store
	keyPrefix string
	logger    *zap.Logger
}

// New creates a docstore repository. Parent documents live at
// "<prefix>doc:<id>".
func New(s store, keyPrefix string, logger *zap.Logger) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix + "doc:", logger: logger}
}

// storedDoc mirrors the JSON layout written by the indexing service.
type storedDoc struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	FilePath string            `json:"file_path"`
	FileType string            `json:"file_type"`
	Metadata map[string]string `json:"metadata"`
}

// GetDocuments batch-fetches parent documents in one backend call. Ids
// without a stored document are dropped silently; output order follows
// the input ids.
func (r *Repo) GetDocuments(ctx context.Context, ids []string) ([]domain.ParentDocument, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.keyPrefix + id
	}

	raws, err := r.store.JSONMGet(ctx, keys...)
	if err != nil {
		return nil, fmt.Errorf("docstore mget: %w", err)
	}

	docs := make([]domain.ParentDocument, 0, len(ids))
	for i, raw := range raws {
		if len(raw) == 0 {
			continue // vanished parent: smaller result set, not an error
		}

		doc, err := decodeStoredDoc(raw)
		if err != nil {
			r.logger.Warn("Skipping undecodable parent document",
				zap.String("id", ids[i]), zap.Error(err))
			continue
		}
		if doc.ID == "" {
			doc.ID = ids[i]
		}

		docs = append(docs, domain.ParentDocument{
			ID:       doc.ID,
			Text:     doc.Text,
			FilePath: doc.FilePath,
			FileType: doc.FileType,
			Metadata: doc.Metadata,
		})
	}

	return docs, nil
}

// decodeStoredDoc handles the JSONPath "$" reply shape: a one-element
// array wrapping the document.
func decodeStoredDoc(raw []byte) (storedDoc, error) {
	var wrapped []storedDoc
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		if len(wrapped) == 0 {
			return storedDoc{}, fmt.Errorf("empty JSONPath result")
		}
		return wrapped[0], nil
	}

	var doc storedDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return storedDoc{}, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}
