package catalog

import (
	"context"

	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/domain"
	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/domain/movie"
	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/transport/tmdb"
)

// Source lists catalog genres and popular movies page by page.
type Source interface {
	Genres(ctx context.Context) (map[int]string, error)
	PopularMovies(ctx context.Context, page int) (*tmdb.Page, error)
}

// Embedder vectorizes many texts in one call.
type Embedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}

// Store is the write side of the movie store.
type Store interface {
	EnsureIndex(ctx context.Context) (bool, error)
	DropIndex(ctx context.Context) error
	Upsert(ctx context.Context, movies []movie.Movie) error
}
