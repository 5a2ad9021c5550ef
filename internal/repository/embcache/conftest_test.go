package embcache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/oriole-ai/oriole/internal/domain"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	getFn       func(ctx context.Context, key string) ([]byte, error)
	setFn       func(ctx context.Context, key string, value []byte) error
	setWithTTLs int
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, nil
}

func (m *mockStore) Set(ctx context.Context, key string, value []byte) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value)
	}
	return nil
}

func (m *mockStore) SetWithTTL(ctx context.Context, key string, value []byte, _ time.Duration) error {
	m.setWithTTLs++
	if m.setFn != nil {
		return m.setFn(ctx, key, value)
	}
	return nil
}

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
	calls  int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	return m.result, m.err
}

func newTestCachedEmbedder(t *testing.T, inner domain.Embedder) (*CachedEmbedder, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	ce := New(inner, ms, "oriole:", 0, nil, zap.NewNop())
	return ce, ms
}
