package retrieval

import (
	"context"
	"fmt"
	"sort"

	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/domain"
	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/domain/intent"
	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/domain/movie"
	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/domain/search/filter"
	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/metrics"
)

// Config holds retrieval limits.
type Config struct {
	GenreLimit int // max movies on the genre path
	SimilarN   int // minimum neighbours requested on the vector path
	SimilarCap int // hard cap on vector path results
	Candidates int // HNSW EF_RUNTIME
}

// DefaultConfig returns the stock limits.
func DefaultConfig() Config {
	return Config{GenreLimit: 150, SimilarN: 5, SimilarCap: 20, Candidates: 1000}
}

// Service fetches candidate movies by genre or by vector similarity.
type Service struct {
	catalog Catalog
	embed   Embedder
	cfg     Config
}

// New creates a retrieval service. Zero config fields take DefaultConfig values.
func New(catalog Catalog, embed Embedder, cfg Config) *Service {
	def := DefaultConfig()
	if cfg.GenreLimit <= 0 {
		cfg.GenreLimit = def.GenreLimit
	}
	if cfg.SimilarN <= 0 {
		cfg.SimilarN = def.SimilarN
	}
	if cfg.SimilarCap <= 0 {
		cfg.SimilarCap = def.SimilarCap
	}
	if cfg.Candidates <= 0 {
		cfg.Candidates = def.Candidates
	}
	return &Service{catalog: catalog, embed: embed, cfg: cfg}
}

// ByGenre returns up to limit movies whose genre names start with genre and that pass
// the query's filters, most popular first with ties broken by catalog id.
// A non-positive limit uses the configured default.
func (s *Service) ByGenre(ctx context.Context, genre intent.Genre, query string, limit int) ([]movie.Summary, error) {
	if limit <= 0 {
		limit = s.cfg.GenreLimit
	}

	genreCond, err := filter.NewPrefix(movie.FieldGenreNames, string(genre))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	filters := intent.ExtractFilters(query).And(genreCond)

	if filters.Unsatisfiable() {
		s.observe("genre", genre, 0)
		return []movie.Summary{}, nil
	}

	found, err := s.catalog.ListByFilter(ctx, filters, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrievalUnavailable, err)
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].Popularity != found[j].Popularity {
			return found[i].Popularity > found[j].Popularity
		}
		return found[i].ID < found[j].ID
	})

	out := make([]movie.Summary, 0, len(found))
	for i := range found {
		out = append(out, found[i].GenreView())
	}
	s.observe("genre", genre, len(out))
	return out, nil
}

// Similar embeds text and returns the nearest movies that pass the query's filters,
// in ANN order. At most SimilarCap results are returned.
// A non-positive n uses the configured default.
func (s *Service) Similar(ctx context.Context, text, query string, n int) ([]movie.Summary, error) {
	if n <= 0 {
		n = s.cfg.SimilarN
	}

	filters := intent.ExtractFilters(query)
	if filters.Unsatisfiable() {
		s.observe("similar", "", 0)
		return []movie.Summary{}, nil
	}

	emb, err := s.embed.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", domain.ErrRetrievalUnavailable, err)
	}
	if len(emb.Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty query embedding", domain.ErrRetrievalUnavailable)
	}

	k := max(n, s.cfg.SimilarCap)
	ef := max(s.cfg.Candidates, k)

	found, err := s.catalog.Nearest(ctx, emb.Embedding, k, ef)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrievalUnavailable, err)
	}

	out := make([]movie.Summary, 0, min(len(found), s.cfg.SimilarCap))
	for i := range found {
		if len(out) == s.cfg.SimilarCap {
			break
		}
		if filters.Evaluate(&found[i]) {
			out = append(out, found[i].SimilarView())
		}
	}
	s.observe("similar", "", len(out))
	return out, nil
}

func (s *Service) observe(path string, genre intent.Genre, n int) {
	metrics.RetrievalPathTotal.WithLabelValues(path, string(genre)).Inc()
	metrics.RetrievalCandidates.WithLabelValues(path).Observe(float64(n))
}
