package oriole

import "github.com/oriole-ai/oriole/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrEmptyQuery             = domain.ErrEmptyQuery
	ErrSearchBackendError     = domain.ErrSearchBackendError
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrLLMProviderError       = domain.ErrLLMProviderError
	ErrVectorDimMismatch      = domain.ErrVectorDimMismatch
)
