package docstore

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

type mockStore struct {
	mgetFn   func(ctx context.Context, keys ...string) ([][]byte, error)
	lastKeys []string
	calls    int
}

func (m *mockStore) JSONMGet(ctx context.Context, keys ...string) ([][]byte, error) {
	m.calls++
	m.lastKeys = keys
	if m.mgetFn != nil {
		return m.mgetFn(ctx, keys...)
	}
	return make([][]byte, len(keys)), nil
}

func TestGetDocuments_Batch(t *testing.T) {
	ms := &mockStore{
		mgetFn: func(_ context.Context, keys ...string) ([][]byte, error) {
			return [][]byte{
				[]byte(`[{"id":"d1","text":"full text one","file_path":"a.md","file_type":"md"}]`),
				[]byte(`[{"id":"d2","text":"full text two","file_path":"b.md","file_type":"md"}]`),
			}, nil
		},
	}
	repo := New(ms, "oriole:", zap.NewNop())

	docs, err := repo.GetDocuments(context.Background(), []string{"d1", "d2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ms.calls != 1 {
		t.Fatalf("expected exactly one backend call, got %d", ms.calls)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if ms.lastKeys[0] != "oriole:doc:d1" {
		t.Errorf("unexpected key %q", ms.lastKeys[0])
	}
	if docs[0].Text != "full text one" || docs[1].FilePath != "b.md" {
		t.Errorf("unexpected documents: %+v", docs)
	}
}

// Scenario C: three candidate ids, one vanished parent → exactly 2
// documents, no error.
func TestGetDocuments_MissingIDsDropped(t *testing.T) {
	ms := &mockStore{
		mgetFn: func(_ context.Context, keys ...string) ([][]byte, error) {
			return [][]byte{
				[]byte(`[{"id":"d1","text":"one"}]`),
				nil,
				[]byte(`[{"id":"d3","text":"three"}]`),
			}, nil
		},
	}
	repo := New(ms, "oriole:", zap.NewNop())

	docs, err := repo.GetDocuments(context.Background(), []string{"d1", "d2", "d3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].ID != "d1" || docs[1].ID != "d3" {
		t.Errorf("unexpected ids: %s, %s", docs[0].ID, docs[1].ID)
	}
}

func TestGetDocuments_UndecodableSkipped(t *testing.T) {
	ms := &mockStore{
		mgetFn: func(_ context.Context, keys ...string) ([][]byte, error) {
			return [][]byte{[]byte(`not json`), []byte(`[{"id":"d2","text":"ok"}]`)}, nil
		},
	}
	repo := New(ms, "oriole:", zap.NewNop())

	docs, err := repo.GetDocuments(context.Background(), []string{"d1", "d2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "d2" {
		t.Fatalf("expected only d2, got %+v", docs)
	}
}

func TestGetDocuments_Empty(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms, "oriole:", zap.NewNop())

	docs, err := repo.GetDocuments(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if docs != nil {
		t.Errorf("expected nil, got %+v", docs)
	}
	if ms.calls != 0 {
		t.Errorf("expected no backend call for empty input")
	}
}

func TestGetDocuments_BackendError(t *testing.T) {
	ms := &mockStore{
		mgetFn: func(_ context.Context, _ ...string) ([][]byte, error) {
			return nil, errors.New("connection reset")
		},
	}
	repo := New(ms, "oriole:", zap.NewNop())

	if _, err := repo.GetDocuments(context.Background(), []string{"d1"}); err == nil {
		t.Fatal("expected error")
	}
}
