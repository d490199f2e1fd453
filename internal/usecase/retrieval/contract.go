package retrieval

import (
	"context"

	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/domain"
	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/domain/movie"
	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/domain/search/filter"
)

// Catalog is the read side of the movie store.
type Catalog interface {
	ListByFilter(ctx context.Context, filters filter.Expression, limit int) ([]movie.Summary, error)
	Nearest(ctx context.Context, vector []float32, k, efRuntime int) ([]movie.Summary, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
