package movie

import (
	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/db"
	dommovie "github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/domain/movie"
)

// genreSeparator joins genre names inside the genre_names TAG field.
const genreSeparator = "|"

// HNSWConfig holds HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// buildIndex describes the movie index: sortable popularity and id, numeric filter
// attributes, genre tags and the HNSW cosine vector field.
func buildIndex(name, keyPrefix string, dim int, hnsw HNSWConfig) (*db.IndexDefinition, error) {
	return db.NewIndex(name).
		Prefix(keyPrefix).
		SortableNumeric(dommovie.FieldPopularity).
		Numeric(dommovie.FieldVoteAverage).
		Numeric(dommovie.FieldVoteCount).
		Numeric(dommovie.FieldReleaseDay).
		SortableNumeric(dommovie.FieldID).
		Tag(dommovie.FieldGenreNames, genreSeparator).
		VectorHNSW(dommovie.FieldEmbedding, dim, db.DistanceCosine, hnsw.M, hnsw.EFConstruct).
		Build()
}
