package query

import (
	"context"

	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/domain/answer"
	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/domain/intent"
	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/domain/movie"
)

type mockCache struct {
	lookupFn  func(ctx context.Context, query string) (*answer.Answer, bool, error)
	storeFn   func(ctx context.Context, query string, a *answer.Answer) error
	queriesFn func(ctx context.Context) ([]string, error)

	stored map[string]*answer.Answer
}

func (m *mockCache) Lookup(ctx context.Context, query string) (*answer.Answer, bool, error) {
	if m.lookupFn != nil {
		return m.lookupFn(ctx, query)
	}
	return nil, false, nil
}

func (m *mockCache) Store(ctx context.Context, query string, a *answer.Answer) error {
	if m.storeFn != nil {
		return m.storeFn(ctx, query, a)
	}
	if m.stored == nil {
		m.stored = map[string]*answer.Answer{}
	}
	m.stored[query] = a
	return nil
}

func (m *mockCache) Queries(ctx context.Context) ([]string, error) {
	if m.queriesFn != nil {
		return m.queriesFn(ctx)
	}
	return []string{}, nil
}

type mockKeywords struct {
	keywords []string
	err      error
}

func (m *mockKeywords) Extract(context.Context, string) ([]string, error) {
	return m.keywords, m.err
}

type mockRetriever struct {
	byGenreFn func(ctx context.Context, genre intent.Genre, query string, limit int) ([]movie.Summary, error)
	similarFn func(ctx context.Context, text, query string, n int) ([]movie.Summary, error)
}

func (m *mockRetriever) ByGenre(ctx context.Context, genre intent.Genre, query string, limit int) ([]movie.Summary, error) {
	if m.byGenreFn != nil {
		return m.byGenreFn(ctx, genre, query, limit)
	}
	return nil, nil
}

func (m *mockRetriever) Similar(ctx context.Context, text, query string, n int) ([]movie.Summary, error) {
	if m.similarFn != nil {
		return m.similarFn(ctx, text, query, n)
	}
	return nil, nil
}

type mockComposer struct {
	text  string
	err   error
	calls int
}

func (m *mockComposer) Compose(context.Context, []movie.Summary, string) (string, error) {
	m.calls++
	return m.text, m.err
}
