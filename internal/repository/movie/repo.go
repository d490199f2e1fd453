// Package movie stores catalog records as Redis hashes and queries them through one FT index.
package movie

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/db"
	dommovie "github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/domain/movie"
	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/domain/search/filter"
)

// store is the consumer interface for the movie catalog (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchSorted(ctx context.Context, q *db.SortedQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Repo implements the catalog reads of usecase/retrieval and the writes of usecase/catalog.
type Repo struct {
	store     store
	indexName string
	keyPrefix string
	dim       int
	hnsw      HNSWConfig
}

// New creates a movie repository. prefix namespaces every key (e.g. "movies:").
func New(s store, prefix string, dim int) *Repo {
	return &Repo{
		store:     s,
		indexName: prefix + "idx",
		keyPrefix: prefix + "movie:",
		dim:       dim,
		hnsw:      HNSWConfig{M: 16, EFConstruct: 200},
	}
}

// WithHNSW configures HNSW index parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	if cfg.M > 0 {
		r.hnsw.M = cfg.M
	}
	if cfg.EFConstruct > 0 {
		r.hnsw.EFConstruct = cfg.EFConstruct
	}
	return r
}

// IndexName returns the FT index name.
func (r *Repo) IndexName() string { return r.indexName }

// EnsureIndex creates the index when it is missing and reports whether it did.
func (r *Repo) EnsureIndex(ctx context.Context) (bool, error) {
	exists, err := r.store.IndexExists(ctx, r.indexName)
	if err != nil {
		return false, fmt.Errorf("check index %s: %w", r.indexName, err)
	}
	if exists {
		return false, nil
	}

	def, err := buildIndex(r.indexName, r.keyPrefix, r.dim, r.hnsw)
	if err != nil {
		return false, fmt.Errorf("build index: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		// lost a race with another process
		if errors.Is(err, db.ErrIndexExists) {
			return false, nil
		}
		return false, fmt.Errorf("create index %s: %w", r.indexName, err)
	}
	return true, nil
}

// DropIndex removes the index, keeping the hashes. A missing index is not an error.
func (r *Repo) DropIndex(ctx context.Context) error {
	if err := r.store.DropIndex(ctx, r.indexName); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index %s: %w", r.indexName, err)
	}
	return nil
}

// Upsert writes movies keyed by catalog id in one pipeline; existing records are overwritten field by field.
func (r *Repo) Upsert(ctx context.Context, movies []dommovie.Movie) error {
	if len(movies) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, len(movies))
	for i := range movies {
		m := &movies[i]
		if len(m.Embedding) > 0 && len(m.Embedding) != r.dim {
			return fmt.Errorf("movie %d: embedding has %d dimensions, index expects %d", m.ID, len(m.Embedding), r.dim)
		}
		items[i] = db.HashSetItem{Key: r.key(m.ID), Fields: buildHashFields(m)}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("upsert %d movies: %w", len(movies), err)
	}
	return nil
}

// ListByFilter returns up to limit movies matching filters, most popular first.
// Movies tied on popularity at the cut-off are taken in ascending id order, so the
// selected set does not depend on how the engine orders equal sort keys.
func (r *Repo) ListByFilter(ctx context.Context, filters filter.Expression, limit int) ([]dommovie.Summary, error) {
	// one extra row tells whether the cut-off falls inside a popularity tie
	out, err := r.listSorted(ctx, filters, dommovie.FieldPopularity, true, limit+1)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	if len(out) <= limit {
		return out, nil
	}
	edge := out[limit-1].Popularity
	if out[limit].Popularity != edge {
		return out[:limit], nil
	}

	head := make([]dommovie.Summary, 0, limit)
	for i := range out[:limit] {
		if out[i].Popularity != edge {
			head = append(head, out[i])
		}
	}

	rng, err := filter.NewRangeFilter(nil, &edge, nil, &edge)
	if err != nil {
		return nil, fmt.Errorf("tie range: %w", err)
	}
	tie, err := filter.NewRange(dommovie.FieldPopularity, rng)
	if err != nil {
		return nil, fmt.Errorf("tie range: %w", err)
	}
	ties, err := r.listSorted(ctx, filters.And(tie), dommovie.FieldID, false, limit-len(head))
	if err != nil {
		return nil, fmt.Errorf("list tied movies: %w", err)
	}
	return append(head, ties...), nil
}

func (r *Repo) listSorted(ctx context.Context, filters filter.Expression, sortBy string, desc bool, limit int) ([]dommovie.Summary, error) {
	sr, err := r.store.SearchSorted(ctx, &db.SortedQuery{
		IndexName:    r.indexName,
		Filters:      filters,
		SortBy:       sortBy,
		Descending:   desc,
		Limit:        limit,
		ReturnFields: summaryFields,
	})
	if err != nil {
		return nil, err
	}
	return r.toSummaries(sr, false), nil
}

// Nearest returns the k movies closest to vector, nearest first, each carrying its similarity score.
func (r *Repo) Nearest(ctx context.Context, vector []float32, k, efRuntime int) ([]dommovie.Summary, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.indexName,
		VectorField:  dommovie.FieldEmbedding,
		Vector:       vector,
		K:            k,
		EFRuntime:    efRuntime,
		ReturnFields: summaryFields,
	})
	if err != nil {
		return nil, fmt.Errorf("nearest movies: %w", err)
	}
	return r.toSummaries(sr, true), nil
}

// Count returns the number of indexed movies.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, r.indexName, "*")
	if err != nil {
		return 0, fmt.Errorf("count movies: %w", err)
	}
	return n, nil
}

func (r *Repo) toSummaries(sr *db.SearchResult, withScore bool) []dommovie.Summary {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}
	out := make([]dommovie.Summary, len(sr.Entries))
	for i := range sr.Entries {
		out[i] = parseSummary(r.keyPrefix, &sr.Entries[i])
		if withScore {
			score := sr.Entries[i].Score
			out[i].Score = &score
		}
	}
	return out
}

func (r *Repo) key(id int64) string {
	return r.keyPrefix + strconv.FormatInt(id, 10)
}
