package domain

import "context"

// Generator is the text generation contract shared by the planner and the
// hypothetical-document expander, independent of the concrete provider.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
