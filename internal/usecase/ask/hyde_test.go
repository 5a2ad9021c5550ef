package ask

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

func TestExpand_ReturnsPassage(t *testing.T) {
	gen := &mockGenerator{completions: []string{"  Wind turbines convert kinetic energy into electricity.  "}}
	e := NewExpander(gen, zap.NewNop())

	got := e.Expand(context.Background(), "how do wind turbines work")
	if got != "Wind turbines convert kinetic energy into electricity." {
		t.Fatalf("unexpected expansion: %q", got)
	}
}

func TestExpand_FailureReturnsInputUnchanged(t *testing.T) {
	gen := &mockGenerator{err: errors.New("llm down")}
	e := NewExpander(gen, zap.NewNop())

	if got := e.Expand(context.Background(), "original term"); got != "original term" {
		t.Fatalf("expected transparent fallback, got %q", got)
	}
}

func TestExpand_BlankCompletionReturnsInputUnchanged(t *testing.T) {
	gen := &mockGenerator{completions: []string{"   \n  "}}
	e := NewExpander(gen, zap.NewNop())

	if got := e.Expand(context.Background(), "term"); got != "term" {
		t.Fatalf("expected fallback on blank completion, got %q", got)
	}
}
