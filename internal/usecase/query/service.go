package query

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/domain"
	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/domain/answer"
	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/domain/intent"
	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/logger"
	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/metrics"
)

// MaxQueryLength bounds the query text in characters.
const MaxQueryLength = 1000

// DefaultResolveTimeout bounds a shared resolution once it no longer follows any caller.
const DefaultResolveTimeout = time.Minute

// Outcome is a resolved query with delivery metadata.
type Outcome struct {
	Answer   *answer.Answer
	Cached   bool
	Degraded bool
}

// Service resolves free-text queries into recommendations.
type Service struct {
	cache     Cache
	keywords  KeywordExtractor
	retriever Retriever
	composer  Composer
	logger    *zap.Logger
	timeout   time.Duration

	group singleflight.Group
}

// New creates the query pipeline.
func New(cache Cache, keywords KeywordExtractor, retriever Retriever, composer Composer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cache:     cache,
		keywords:  keywords,
		retriever: retriever,
		composer:  composer,
		logger:    logger,
		timeout:   DefaultResolveTimeout,
	}
}

// WithTimeout sets the bound on a shared resolution. Non-positive values keep the default.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Resolve answers query from cache or by running retrieval and generation.
// Concurrent calls with the same text share one resolution.
func (s *Service) Resolve(ctx context.Context, query string) (Outcome, error) {
	if strings.TrimSpace(query) == "" {
		return Outcome{}, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(query) > MaxQueryLength {
		return Outcome{}, fmt.Errorf("%w: query exceeds %d characters", domain.ErrInvalidInput, MaxQueryLength)
	}

	// shared by every caller with this text: outlives the first caller, bounded by s.timeout
	ch := s.group.DoChan(query, func() (any, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return s.resolve(shared, query)
	})

	select {
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Outcome{}, res.Err
		}
		if res.Shared {
			logger.FromContext(ctx, s.logger).Debug("query resolution shared", zap.String("query", query))
		}
		out, _ := res.Val.(Outcome)
		return out, nil
	}
}

func (s *Service) resolve(ctx context.Context, query string) (Outcome, error) {
	log := logger.FromContext(ctx, s.logger)

	cached, ok, err := s.cache.Lookup(ctx, query)
	switch {
	case err != nil:
		metrics.QueryCacheTotal.WithLabelValues("error").Inc()
		log.Warn("query cache lookup failed", zap.Error(err))
	case ok:
		metrics.QueryCacheTotal.WithLabelValues("hit").Inc()
		return Outcome{Answer: cached, Cached: true}, nil
	default:
		metrics.QueryCacheTotal.WithLabelValues("miss").Inc()
	}

	keywords, err := s.keywords.Extract(ctx, query)
	if err != nil {
		return Outcome{}, fmt.Errorf("extract keywords: %w", err)
	}

	res := &answer.Answer{}
	if genre, ok := intent.MatchGenre(keywords); ok {
		res.SimilarMovies, err = s.retriever.ByGenre(ctx, genre, query, 0)
		log.Debug("genre path", zap.String("genre", string(genre)), zap.Int("candidates", len(res.SimilarMovies)))
	} else {
		text := strings.Join(keywords, " ")
		if text == "" {
			text = query
		}
		res.SimilarMovies, err = s.retriever.Similar(ctx, text, query, 0)
		log.Debug("similarity path", zap.Strings("keywords", keywords), zap.Int("candidates", len(res.SimilarMovies)))
	}
	if err != nil {
		return Outcome{}, err
	}

	out := Outcome{Answer: res}
	text, err := s.composer.Compose(ctx, res.SimilarMovies, query)
	if err != nil {
		log.Warn("recommendation degraded", zap.Error(err))
		out.Degraded = true
	} else {
		res.Recommendation = &text
	}

	if res.IsEmpty() || out.Degraded {
		return out, nil
	}
	if err := s.cache.Store(ctx, query, res); err != nil {
		log.Warn("query cache store failed", zap.Error(err))
	}
	return out, nil
}

// History returns previously resolved queries in insertion order.
func (s *Service) History(ctx context.Context) ([]string, error) {
	queries, err := s.cache.Queries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return queries, nil
}
