package oriole

import (
	"time"

	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs    []string
	password string

	openAIKey     string
	openAIBaseURL string

	embeddingModel   string
	embeddingDims    int
	queryInstruction string
	cacheTTL         time.Duration

	llmModel       string
	llmMaxTokens   int
	llmTemperature float32

	rerankBaseURL string
	rerankAPIKey  string
	rerankModel   string

	indexName string
	keyPrefix string

	maxIterations   int
	defaultKNNK     int
	defaultTopK     int
	maxPlanSteps    int
	minScore        float64
	stepConcurrency int
	weightedFusion  bool
	fusionBoost     float64
	fusionEpsilon   float64
	hyde            bool

	logger *zap.Logger
}

func defaultConfig() *clientConfig {
	return &clientConfig{
		embeddingModel:  "text-embedding-3-small",
		embeddingDims:   1536,
		llmModel:        "gpt-4o-mini",
		llmMaxTokens:    800,
		indexName:       "chunks:idx",
		keyPrefix:       "oriole:",
		maxIterations:   6,
		defaultKNNK:     10,
		defaultTopK:     5,
		maxPlanSteps:    5,
		stepConcurrency: 4,
		fusionBoost:     0.15,
		fusionEpsilon:   0.001,
		logger:          zap.NewNop(),
	}
}

// WithRedis points the client at a Redis instance with search modules.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithOpenAI sets the API key used for both embeddings and completions.
func WithOpenAI(apiKey string) Option {
	return optionFunc(func(c *clientConfig) { c.openAIKey = apiKey })
}

// WithOpenAIBaseURL points the client at an OpenAI-compatible endpoint.
func WithOpenAIBaseURL(baseURL string) Option {
	return optionFunc(func(c *clientConfig) { c.openAIBaseURL = baseURL })
}

// WithEmbedding sets the embedding model and its vector dimensionality.
// dims must match the index the chunks were written with.
func WithEmbedding(model string, dims int) Option {
	return optionFunc(func(c *clientConfig) {
		c.embeddingModel = model
		c.embeddingDims = dims
	})
}

// WithQueryInstruction prepends the instruction to every embedded term,
// for retrieval-tuned models expecting a query prefix.
func WithQueryInstruction(instruction string) Option {
	return optionFunc(func(c *clientConfig) { c.queryInstruction = instruction })
}

// WithEmbeddingCacheTTL bounds the store-backed embedding cache. Zero
// caches forever.
func WithEmbeddingCacheTTL(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) { c.cacheTTL = ttl })
}

// WithLLM sets the planning model.
func WithLLM(model string) Option {
	return optionFunc(func(c *clientConfig) { c.llmModel = model })
}

// WithRerank enables cross-encoder reranking against a Cohere-compatible
// scoring endpoint.
func WithRerank(baseURL, apiKey, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.rerankBaseURL = baseURL
		c.rerankAPIKey = apiKey
		c.rerankModel = model
	})
}

// WithIndex overrides the search index name.
func WithIndex(name string) Option {
	return optionFunc(func(c *clientConfig) { c.indexName = name })
}

// WithKeyPrefix overrides the key layout shared with the indexing service.
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) { c.keyPrefix = prefix })
}

// WithMaxIterations bounds the planning rounds per query.
func WithMaxIterations(n int) Option {
	return optionFunc(func(c *clientConfig) { c.maxIterations = n })
}

// WithMinScore drops hits scoring below the floor.
func WithMinScore(score float64) Option {
	return optionFunc(func(c *clientConfig) { c.minScore = score })
}

// WithWeightedFusion enables corroboration-weighted fusion instead of the
// round-robin baseline.
func WithWeightedFusion() Option {
	return optionFunc(func(c *clientConfig) { c.weightedFusion = true })
}

// WithHyDE embeds a hypothetical answer passage instead of the raw term.
func WithHyDE() Option {
	return optionFunc(func(c *clientConfig) { c.hyde = true })
}

// WithLogger sets the client logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) { c.logger = logger })
}
