package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/config"
	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/db"
	dbRedis "github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/db/redis"
	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/domain"
	logpkg "github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/logger"
	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/metrics"
	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/repository/embcache"
	movierepo "github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/repository/movie"
	openaiTransport "github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/transport/openai"
	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/transport/resilience"
	embeddinguc "github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/usecase/embedding"
)

// app holds the dependencies shared by serve and seed.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	store    *dbRedis.Store
	movies   *movierepo.Repo
	embedder *embeddinguc.InstrumentedEmbedder
}

func loadConfig() (config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.Load(envName)
}

// newApp loads config, connects to Redis and ensures the movie index exists.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(envName, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to database", zap.Strings("db_addrs", cfg.Database.Addrs))

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterPipelineMetrics()

	movies := movierepo.New(store, cfg.Database.KeyPrefix, cfg.Embedding.Dimensions).
		WithHNSW(movierepo.HNSWConfig{
			M:           cfg.Retrieval.HNSWM,
			EFConstruct: cfg.Retrieval.HNSWEFConstruct,
		})

	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		movies:   movies,
		embedder: buildEmbedder(&cfg, store, logger),
	}, nil
}

func (a *app) close() {
	a.store.Close()
	_ = a.logger.Sync()
}

func newGuard(rc config.ResilienceConfig, name string, transient func(error) bool, logger *zap.Logger) *resilience.Guard {
	return resilience.New(resilience.Config{
		Name:            name,
		MaxAttempts:     rc.MaxAttempts,
		InitialBackoff:  time.Duration(rc.InitialBackoffMS) * time.Millisecond,
		BreakerFailures: rc.BreakerFailures,
		OpenTimeout:     time.Duration(rc.BreakerOpenSec) * time.Second,
		Transient:       transient,
		Logger:          logger,
	})
}

// buildEmbedder assembles the decorator chain: OpenAI-compatible -> Cached -> Instrumented.
func buildEmbedder(cfg *config.Config, store db.Store, logger *zap.Logger) *embeddinguc.InstrumentedEmbedder {
	ec := cfg.Embedding

	base := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     ec.APIKey,
		BaseURL:    ec.BaseURL,
		Model:      ec.Model,
		Dimensions: ec.Dimensions,
		Provider:   ec.Provider,
		Guard:      newGuard(cfg.Resilience, "embedding", openaiTransport.IsTransient, logger),
		Logger:     logger,
	})

	var embedder domain.Embedder = base
	if ec.Cache {
		embedder = embcache.New(base, store, cfg.Database.KeyPrefix, metrics.EmbeddingCacheTotal, logger)
	}

	return embeddinguc.NewInstrumentedEmbedder(embedder, ec.Provider, ec.Model, cfg.EmbeddingTimeout(), logger)
}
