package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/domain/intent"
	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/repository/history"
	chiTransport "github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/transport/chi"
	openaiTransport "github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/transport/openai"
	proseTransport "github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/transport/prose"
	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/usecase/health"
	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/usecase/query"
	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/usecase/recommend"
	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/usecase/retrieval"
	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	cfg := a.cfg
	logger := a.logger

	logger.Info("Starting moviereco API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", envName),
		zap.Int("http_port", cfg.HTTP.Port),
	)

	created, err := a.movies.EnsureIndex(ctx)
	if err != nil {
		return fmt.Errorf("ensure index: %w", err)
	}
	if created {
		logger.Warn("movie index created; run `moviereco seed` to populate it",
			zap.String("index", a.movies.IndexName()))
	}

	generator := openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
		APIKey:       cfg.Generation.APIKey,
		BaseURL:      cfg.Generation.BaseURL,
		Model:        cfg.Generation.Model,
		SystemPrompt: cfg.Generation.SystemPrompt,
		Temperature:  cfg.Generation.Temperature,
		TopP:         cfg.Generation.TopP,
		MaxTokens:    cfg.Generation.MaxTokens,
		Guard:        newGuard(cfg.Resilience, "generation", openaiTransport.IsTransient, logger),
		Logger:       logger,
	})

	retriever := retrieval.New(a.movies, a.embedder, retrieval.Config{
		GenreLimit: cfg.Retrieval.GenreLimit,
		SimilarN:   cfg.Retrieval.SimilarN,
		SimilarCap: cfg.Retrieval.SimilarCap,
		Candidates: cfg.Retrieval.VectorCandidate,
	})
	composer := recommend.New(generator).WithTimeout(cfg.GenerationTimeout())
	cache := history.New(a.store, cfg.Database.KeyPrefix, cfg.Cache.NormalizeKeys)
	keywords := intent.NewKeywordExtractor(proseTransport.New())

	querySvc := query.New(cache, keywords, retriever, composer, logger).
		WithTimeout(time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second)
	healthSvc := health.New(a.store, a.embedder, generator)

	server := chiTransport.NewServer(querySvc, healthSvc, logger)
	router := chiTransport.NewRouter(server, chiTransport.RouterConfig{
		CORSOrigins:  cfg.HTTP.CORSOrigins,
		RateLimitRPM: cfg.HTTP.RateLimitRPM,
	}, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("Server stopped gracefully")
	return nil
}
