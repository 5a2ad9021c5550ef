package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/oriole-ai/oriole/internal/config"
	dbRedis "github.com/oriole-ai/oriole/internal/db/redis"
	"github.com/oriole-ai/oriole/internal/domain"
	logpkg "github.com/oriole-ai/oriole/internal/logger"
	"github.com/oriole-ai/oriole/internal/metrics"
	"github.com/oriole-ai/oriole/internal/repository/docstore"
	"github.com/oriole-ai/oriole/internal/repository/embcache"
	indexrepo "github.com/oriole-ai/oriole/internal/repository/index"
	chiTransport "github.com/oriole-ai/oriole/internal/transport/chi"
	openaiTransport "github.com/oriole-ai/oriole/internal/transport/openai"
	"github.com/oriole-ai/oriole/internal/transport/rerank"
	askuc "github.com/oriole-ai/oriole/internal/usecase/ask"
	healthuc "github.com/oriole-ai/oriole/internal/usecase/health"
	"github.com/oriole-ai/oriole/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting oriole API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("index", cfg.Retrieval.IndexName),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterRetrievalMetrics()

	// Embedder chain: OpenAI -> Cached -> Instruction
	baseEmbedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   "openai",
		Logger:     logger,
	})
	var embedder domain.Embedder = embcache.New(
		baseEmbedder, store, cfg.Storage.KeyPrefix,
		time.Duration(cfg.Embedding.CacheTTLHours)*time.Hour,
		metrics.EmbeddingCacheTotal, logger,
	)
	if cfg.Embedding.QueryInstruction != "" {
		embedder = domain.NewInstructionEmbedder(embedder, cfg.Embedding.QueryInstruction)
	}
	logger.Info("Embedder created",
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	generator := openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Logger:      logger,
	})

	// Repositories
	index := indexrepo.New(store, cfg.Retrieval.IndexName, cfg.Storage.KeyPrefix)
	docs := docstore.New(store, cfg.Storage.KeyPrefix, logger)

	// Retrieval pipeline
	planner := askuc.NewLLMPlanner(generator, cfg.Retrieval.DefaultKNNK, cfg.Retrieval.MaxPlanSteps, logger)

	var expander *askuc.Expander
	if cfg.Retrieval.HyDEEnabled {
		expander = askuc.NewExpander(generator, logger)
		logger.Info("Hypothetical document expansion enabled")
	}
	executor := askuc.NewHybridExecutor(
		index, embedder, expander,
		cfg.Retrieval.MinScore, cfg.Retrieval.StepConcurrency, logger,
	)

	fuser := askuc.NewFuser(cfg.Retrieval.WeightedFusion, cfg.Retrieval.FusionBoost, cfg.Retrieval.FusionEpsilon)
	resolver := askuc.NewResolver(docs, logger)

	var scorer askuc.Scorer
	if cfg.Rerank.Enabled {
		scorer = rerank.NewClient(&rerank.Config{
			BaseURL: cfg.Rerank.BaseURL,
			APIKey:  cfg.Rerank.APIKey,
			Model:   cfg.Rerank.Model,
			Timeout: time.Duration(cfg.Rerank.TimeoutSec) * time.Second,
			Logger:  logger,
		})
		logger.Info("Reranking enabled", zap.String("model", cfg.Rerank.Model))
	}
	reranker := askuc.NewReranker(scorer, logger)

	askSvc := askuc.NewService(
		planner, executor, fuser, resolver, reranker,
		cfg.Retrieval.MaxIterations, cfg.Retrieval.DefaultTopK, logger,
	)
	healthSvc := healthuc.New(store, baseEmbedder, generator)

	server := chiTransport.NewServer(askSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Mount(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
