package history

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/db"
	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/domain/answer"
	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/domain/movie"
)

// memStore is an in-memory store with the same SET NX / RPUSH semantics as Redis.
type memStore struct {
	kv    map[string][]byte
	lists map[string][]string

	getErr error
}

func newMemStore() *memStore {
	return &memStore{kv: map[string][]byte{}, lists: map[string][]string{}}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.kv[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte) error {
	m.kv[key] = value
	return nil
}

func (m *memStore) SetNX(_ context.Context, key string, value []byte) (bool, error) {
	if _, ok := m.kv[key]; ok {
		return false, nil
	}
	m.kv[key] = value
	return true, nil
}

func (m *memStore) RPush(_ context.Context, key string, values ...string) error {
	m.lists[key] = append(m.lists[key], values...)
	return nil
}

func (m *memStore) LRange(_ context.Context, key string, _, _ int64) ([]string, error) {
	return m.lists[key], nil
}

func answerWith(titles ...string) *answer.Answer {
	a := &answer.Answer{}
	for _, t := range titles {
		a.SimilarMovies = append(a.SimilarMovies, movie.Summary{Title: t, GenreNames: []string{"Comedy"}})
	}
	text := "Watch " + strings.Join(titles, ", ")
	a.Recommendation = &text
	return a
}

func TestCache_RoundTrip(t *testing.T) {
	ms := newMemStore()
	c := New(ms, "movies:", false)
	ctx := context.Background()

	_, hit, err := c.Lookup(ctx, "funny movies")
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Store(ctx, "funny movies", answerWith("Airplane!", "Step Brothers")))

	got, hit, err := c.Lookup(ctx, "funny movies")
	require.NoError(t, err)
	require.True(t, hit)
	require.Len(t, got.SimilarMovies, 2)
	assert.Equal(t, "Airplane!", got.SimilarMovies[0].Title)
	assert.Equal(t, []string{"Comedy"}, got.SimilarMovies[0].GenreNames)
	require.NotNil(t, got.Recommendation)
	assert.Equal(t, "Watch Airplane!, Step Brothers", *got.Recommendation)

	for k := range ms.kv {
		assert.True(t, strings.HasPrefix(k, "movies:history:q:"), k)
	}
}

func TestCache_RepeatedStoreOverwritesWithoutNewHistory(t *testing.T) {
	ms := newMemStore()
	c := New(ms, "movies:", false)
	ctx := context.Background()

	require.NoError(t, c.Store(ctx, "space", answerWith("Alien")))
	require.NoError(t, c.Store(ctx, "space", answerWith("Gravity")))

	got, hit, err := c.Lookup(ctx, "space")
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, "Gravity", got.SimilarMovies[0].Title)

	queries, err := c.Queries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"space"}, queries)
}

func TestCache_HistoryCountsDistinctNonEmpty(t *testing.T) {
	ms := newMemStore()
	c := New(ms, "movies:", false)
	ctx := context.Background()

	require.NoError(t, c.Store(ctx, "a", answerWith("A")))
	require.NoError(t, c.Store(ctx, "b", answerWith("B")))
	require.NoError(t, c.Store(ctx, "a", answerWith("A2")))
	require.NoError(t, c.Store(ctx, "empty", &answer.Answer{}))
	require.NoError(t, c.Store(ctx, "nil", nil))

	queries, err := c.Queries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, queries)

	_, hit, err := c.Lookup(ctx, "empty")
	require.NoError(t, err)
	assert.False(t, hit, "empty answers are never cached")
}

func TestCache_ExactKeysByDefault(t *testing.T) {
	c := New(newMemStore(), "movies:", false)
	ctx := context.Background()

	require.NoError(t, c.Store(ctx, "Funny", answerWith("A")))

	_, hit, err := c.Lookup(ctx, "funny")
	require.NoError(t, err)
	assert.False(t, hit)

	_, hit, err = c.Lookup(ctx, " Funny")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCache_NormalizedKeys(t *testing.T) {
	ms := newMemStore()
	c := New(ms, "movies:", true)
	ctx := context.Background()

	require.NoError(t, c.Store(ctx, "  Funny Movies ", answerWith("A")))
	require.NoError(t, c.Store(ctx, "funny movies", answerWith("B")))

	got, hit, err := c.Lookup(ctx, "FUNNY MOVIES")
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, "B", got.SimilarMovies[0].Title)

	queries, err := c.Queries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"  Funny Movies "}, queries, "history keeps the text as received")
}

func TestCache_LookupErrors(t *testing.T) {
	ms := newMemStore()
	c := New(ms, "movies:", false)
	ctx := context.Background()

	ms.getErr = errors.New("connection refused")
	_, hit, err := c.Lookup(ctx, "x")
	require.Error(t, err)
	assert.False(t, hit)

	ms.getErr = nil
	ms.kv[c.payloadKey("x")] = []byte("{not json")
	_, hit, err = c.Lookup(ctx, "x")
	require.Error(t, err)
	assert.False(t, hit)
}

func TestCache_QueriesNeverNil(t *testing.T) {
	queries, err := New(newMemStore(), "movies:", false).Queries(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, queries)
	assert.Empty(t, queries)
}
