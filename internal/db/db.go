// Package db defines the storage contract consumed by the repositories.
// The agentic engine only reads: the index and the parent documents are
// populated by an external indexing service.
package db

import (
	"context"
	"time"
)

// Store is the full backend contract. Repositories depend on narrower
// consumer interfaces; Store exists for the composition root.
type Store interface {
	// HybridSearch issues one combined lexical+vector FT.SEARCH query.
	HybridSearch(ctx context.Context, q *HybridQuery) (*SearchResult, error)

	// JSONMGet batch-fetches JSON documents. The returned slice is aligned
	// with keys; a missing key yields a nil entry, not an error.
	JSONMGet(ctx context.Context, keys ...string) ([][]byte, error)

	// Get retrieves a value by key. Returns ErrKeyNotFound when absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores a value at the given key.
	Set(ctx context.Context, key string, value []byte) error
	// SetWithTTL stores a value with an expiration.
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Ping(ctx context.Context) error
	WaitForReady(ctx context.Context, timeout time.Duration) error
	Close()
}

// HybridQuery is one combined lexical+vector query against a search index.
type HybridQuery struct {
	IndexName string
	// Term is the raw search term for the lexical clause.
	Term string
	// Vector is the query embedding for the KNN clause.
	Vector []float32
	// K bounds the nearest-neighbor candidate count.
	K int
	// ReturnFields limits the fields fetched per hit.
	ReturnFields []string
}

// SearchEntry is a single raw hit from the backend.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}

// SearchResult is the raw outcome of one index query.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}
