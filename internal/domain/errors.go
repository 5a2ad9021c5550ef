package domain

import "errors"

var (
	// ErrVectorDimMismatch signals an embedding whose dimensionality does
	// not match the configured index dimension. Per-step fatal: the step
	// is skipped, never silently truncated or padded.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrLLMProviderError signals a language model provider failure.
	ErrLLMProviderError = errors.New("llm provider error")
	// ErrRerankProviderError signals a rerank backend failure. Always
	// recovered by falling back to pre-rerank order.
	ErrRerankProviderError = errors.New("rerank provider error")
	// ErrSearchBackendError signals a hybrid index query failure.
	ErrSearchBackendError = errors.New("search backend error")
	// ErrEmptyQuery signals a blank query at the entry point.
	ErrEmptyQuery = errors.New("query must not be empty")
)
