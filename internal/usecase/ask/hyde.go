package ask

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/oriole-ai/oriole/internal/domain"
)

// Expander rewrites a search term into a short hypothetical passage that
// answers it, so the embedding sits closer to real document chunks than
// the bare question would. Expansion is best-effort: any failure returns
// the original term unchanged.
type Expander struct {
	gen    domain.Generator
	logger *zap.Logger
}

// NewExpander creates a hypothetical-document expander.
func NewExpander(gen domain.Generator, logger *zap.Logger) *Expander {
	return &Expander{gen: gen, logger: logger}
}

// Expand returns the hypothetical passage for term, or term itself when
// generation fails or produces nothing usable.
func (e *Expander) Expand(ctx context.Context, term string) string {
	prompt := fmt.Sprintf(
		"Write one short paragraph (2-3 sentences) that would appear in a document answering this search query. "+
			"Plain prose only, no preamble, no formatting.\n\nQuery: %q\nPassage:", term)

	out, err := e.gen.Generate(ctx, prompt)
	if err != nil {
		e.logger.Debug("Hypothetical passage generation failed, embedding raw term",
			zap.String("term", term), zap.Error(err))
		return term
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return term
	}
	return out
}
