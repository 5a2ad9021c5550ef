package domain

// ParentDocument is a full document resolved from the docstore, enriched
// with the fused score for the current query only. Nothing here persists
// between requests.
type ParentDocument struct {
	ID       string
	Text     string
	FilePath string
	FileType string
	Score    float64
	Metadata map[string]string
}

// RankedDocument is the externally visible result unit: a resolved parent
// plus the cross-encoder score when reranking succeeded.
type RankedDocument struct {
	ParentDocument
	RerankScore float64
	Reranked    bool
}
