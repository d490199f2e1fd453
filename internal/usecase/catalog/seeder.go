// Package catalog fills the movie store from an external movie catalog.
package catalog

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/domain/movie"
	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/transport/tmdb"
)

// DefaultWorkers bounds concurrent embed+upsert batches.
const DefaultWorkers = 4

// Options controls a seeding run.
type Options struct {
	Pages      int  // max pages to fetch
	ResetIndex bool // drop and recreate the index first
}

// Report summarizes a seeding run.
type Report struct {
	RunID   string
	Pages   int
	Movies  int
	Created bool // index was created by this run
}

// Seeder pulls popular movies, embeds them and upserts them into the store.
// Pages are fetched in order; embedding and storage run on a bounded worker pool.
type Seeder struct {
	source  Source
	embed   Embedder
	store   Store
	workers int
	logger  *zap.Logger
}

// New creates a seeder. Non-positive workers uses DefaultWorkers.
func New(source Source, embed Embedder, store Store, workers int, logger *zap.Logger) *Seeder {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{source: source, embed: embed, store: store, workers: workers, logger: logger}
}

// Run seeds up to opts.Pages pages. It stops at the first empty page or past the last page.
// Any fetch, embedding or storage error aborts the run.
func (s *Seeder) Run(ctx context.Context, opts Options) (Report, error) {
	report := Report{RunID: uuid.NewString()}
	log := s.logger.With(zap.String("run_id", report.RunID))

	if opts.Pages <= 0 {
		return report, fmt.Errorf("pages must be positive, got %d", opts.Pages)
	}

	if opts.ResetIndex {
		if err := s.store.DropIndex(ctx); err != nil {
			return report, fmt.Errorf("drop index: %w", err)
		}
		log.Info("index dropped")
	}
	created, err := s.store.EnsureIndex(ctx)
	if err != nil {
		return report, fmt.Errorf("ensure index: %w", err)
	}
	report.Created = created

	genres, err := s.source.Genres(ctx)
	if err != nil {
		return report, fmt.Errorf("fetch genres: %w", err)
	}
	log.Info("seeding started", zap.Int("genres", len(genres)), zap.Int("max_pages", opts.Pages))

	var (
		stored   atomic.Int64
		fetchErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for page := 1; page <= opts.Pages; page++ {
		if gctx.Err() != nil {
			break
		}

		p, err := s.source.PopularMovies(gctx, page)
		if err != nil {
			fetchErr = fmt.Errorf("fetch page %d: %w", page, err)
			break
		}

		movies := toMovies(p.Results, genres)
		if len(movies) == 0 {
			log.Info("no movies left on page, stopping", zap.Int("page", page), zap.Int("fetched", len(p.Results)))
			break
		}
		report.Pages++

		g.Go(func() error {
			n, err := s.storePage(gctx, movies)
			if err != nil {
				return fmt.Errorf("page %d: %w", page, err)
			}
			stored.Add(int64(n))
			log.Debug("page stored", zap.Int("page", page), zap.Int("movies", n))
			return nil
		})

		if p.TotalPages > 0 && page >= p.TotalPages {
			break
		}
	}

	err = g.Wait()
	if err == nil {
		err = fetchErr
	}
	report.Movies = int(stored.Load())
	if err != nil {
		log.Error("seeding failed", zap.Int("movies", report.Movies), zap.Error(err))
		return report, err
	}

	log.Info("seeding finished", zap.Int("pages", report.Pages), zap.Int("movies", report.Movies))
	return report, nil
}

func (s *Seeder) storePage(ctx context.Context, movies []movie.Movie) (int, error) {
	if len(movies) == 0 {
		return 0, nil
	}

	texts := make([]string, len(movies))
	for i := range movies {
		texts[i] = movies[i].EmbeddingText()
	}

	res, err := s.embed.BatchEmbed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed: %w", err)
	}
	if len(res.Embeddings) != len(movies) {
		return 0, fmt.Errorf("embed: got %d vectors for %d movies", len(res.Embeddings), len(movies))
	}
	for i := range movies {
		movies[i].Embedding = res.Embeddings[i]
	}

	if err := s.store.Upsert(ctx, movies); err != nil {
		return 0, fmt.Errorf("upsert: %w", err)
	}
	return len(movies), nil
}

// toMovies maps list entries to catalog records. Unknown genre ids keep their id but get no name.
func toMovies(results []tmdb.Movie, genres map[int]string) []movie.Movie {
	out := make([]movie.Movie, 0, len(results))
	for i := range results {
		r := &results[i]
		if r.Adult {
			continue
		}
		names := make([]string, 0, len(r.GenreIDs))
		for _, id := range r.GenreIDs {
			if name, ok := genres[id]; ok {
				names = append(names, name)
			}
		}
		out = append(out, movie.Movie{
			ID:          r.ID,
			Title:       r.Title,
			Overview:    r.Overview,
			ReleaseDate: r.ReleaseDate,
			Popularity:  r.Popularity,
			VoteAverage: r.VoteAverage,
			VoteCount:   r.VoteCount,
			PosterPath:  r.PosterPath,
			GenreIDs:    r.GenreIDs,
			GenreNames:  names,
		})
	}
	return out
}
