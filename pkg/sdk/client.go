package oriole

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oriole-ai/oriole/internal/db"
	dbRedis "github.com/oriole-ai/oriole/internal/db/redis"
	"github.com/oriole-ai/oriole/internal/domain"
	"github.com/oriole-ai/oriole/internal/repository/docstore"
	"github.com/oriole-ai/oriole/internal/repository/embcache"
	indexrepo "github.com/oriole-ai/oriole/internal/repository/index"
	openaiTransport "github.com/oriole-ai/oriole/internal/transport/openai"
	"github.com/oriole-ai/oriole/internal/transport/rerank"
	askuc "github.com/oriole-ai/oriole/internal/usecase/ask"
	healthuc "github.com/oriole-ai/oriole/internal/usecase/health"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces so tests can substitute the pipeline.
type askUseCase interface {
	Ask(ctx context.Context, query string, topK int) ([]domain.RankedDocument, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the oriole SDK entry point.
type Client struct {
	store     db.Store
	askSvc    askUseCase
	healthSvc healthUseCase
}

// New creates a Client and connects to the search backend. The provided
// context bounds the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("oriole: database address required (use WithRedis)")
	}
	if cfg.openAIKey == "" {
		return nil, errors.New("oriole: API key required (use WithOpenAI)")
	}
	if cfg.embeddingDims <= 0 {
		return nil, errors.New("oriole: embedding dimensionality must be positive")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("oriole: create redis store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("oriole: database not ready: %w", err)
	}

	return wireClient(store, cfg), nil
}

func wireClient(store db.Store, cfg *clientConfig) *Client {
	logger := cfg.logger

	baseEmbedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.openAIKey,
		BaseURL:    cfg.openAIBaseURL,
		Model:      cfg.embeddingModel,
		Dimensions: cfg.embeddingDims,
		Provider:   "openai",
		Logger:     logger,
	})
	var embedder domain.Embedder = embcache.New(
		baseEmbedder, store, cfg.keyPrefix, cfg.cacheTTL, nil, logger,
	)
	if cfg.queryInstruction != "" {
		embedder = domain.NewInstructionEmbedder(embedder, cfg.queryInstruction)
	}

	generator := openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
		APIKey:      cfg.openAIKey,
		BaseURL:     cfg.openAIBaseURL,
		Model:       cfg.llmModel,
		MaxTokens:   cfg.llmMaxTokens,
		Temperature: cfg.llmTemperature,
		Logger:      logger,
	})

	index := indexrepo.New(store, cfg.indexName, cfg.keyPrefix)
	docs := docstore.New(store, cfg.keyPrefix, logger)

	planner := askuc.NewLLMPlanner(generator, cfg.defaultKNNK, cfg.maxPlanSteps, logger)

	var expander *askuc.Expander
	if cfg.hyde {
		expander = askuc.NewExpander(generator, logger)
	}
	executor := askuc.NewHybridExecutor(
		index, embedder, expander, cfg.minScore, cfg.stepConcurrency, logger,
	)

	var scorer askuc.Scorer
	if cfg.rerankBaseURL != "" {
		scorer = rerank.NewClient(&rerank.Config{
			BaseURL: cfg.rerankBaseURL,
			APIKey:  cfg.rerankAPIKey,
			Model:   cfg.rerankModel,
			Logger:  logger,
		})
	}

	askSvc := askuc.NewService(
		planner, executor,
		askuc.NewFuser(cfg.weightedFusion, cfg.fusionBoost, cfg.fusionEpsilon),
		askuc.NewResolver(docs, logger),
		askuc.NewReranker(scorer, logger),
		cfg.maxIterations, cfg.defaultTopK, logger,
	)

	return &Client{
		store:     store,
		askSvc:    askSvc,
		healthSvc: healthuc.New(store, baseEmbedder, generator),
	}
}

// Close releases the database connection.
func (c *Client) Close() {
	c.store.Close()
}
