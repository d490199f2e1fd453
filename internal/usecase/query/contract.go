package query

import (
	"context"

	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/domain/answer"
	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/domain/intent"
	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/domain/movie"
)

// Cache stores resolved answers keyed by query text.
type Cache interface {
	Lookup(ctx context.Context, query string) (*answer.Answer, bool, error)
	Store(ctx context.Context, query string, a *answer.Answer) error
	Queries(ctx context.Context) ([]string, error)
}

// KeywordExtractor pulls ordered keywords from free text.
type KeywordExtractor interface {
	Extract(ctx context.Context, query string) ([]string, error)
}

// Retriever fetches candidate movies.
type Retriever interface {
	ByGenre(ctx context.Context, genre intent.Genre, query string, limit int) ([]movie.Summary, error)
	Similar(ctx context.Context, text, query string, n int) ([]movie.Summary, error)
}

// Composer writes the recommendation text.
type Composer interface {
	Compose(ctx context.Context, candidates []movie.Summary, query string) (string, error)
}
