package oriole

import (
	"context"
	"fmt"
)

// Document is one ranked retrieval result.
type Document struct {
	DocID    string
	FilePath string
	FileType string
	Text     string
	Score    float64
	Reranked bool
}

// Ask answers a natural-language query with up to topK ranked documents.
// topK <= 0 uses the configured default. An empty slice means no matching
// documents, not an error.
func (c *Client) Ask(ctx context.Context, query string, topK int) ([]Document, error) {
	ranked, err := c.askSvc.Ask(ctx, query, topK)
	if err != nil {
		return nil, fmt.Errorf("ask: %w", err)
	}

	out := make([]Document, len(ranked))
	for i, d := range ranked {
		score := d.Score
		if d.Reranked {
			score = d.RerankScore
		}
		out[i] = Document{
			DocID:    d.ID,
			FilePath: d.FilePath,
			FileType: d.FileType,
			Text:     d.Text,
			Score:    score,
			Reranked: d.Reranked,
		}
	}
	return out, nil
}
