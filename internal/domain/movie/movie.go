// Package movie holds the catalog record and the summary views returned to clients.
package movie

import (
	"strings"
	"time"
)

// Stored attribute names shared by the filter extractor, the repository and the index.
const (
	FieldID          = "id"
	FieldTitle       = "title"
	FieldOverview    = "overview"
	FieldReleaseDate = "release_date"
	FieldReleaseDay  = "release_day"
	FieldPopularity  = "popularity"
	FieldVoteAverage = "vote_average"
	FieldVoteCount   = "vote_count"
	FieldPosterPath  = "poster_path"
	FieldGenreIDs    = "genre_ids"
	FieldGenreNames  = "genre_names"
	FieldEmbedding   = "embedding"
)

const releaseDateLayout = "2006-01-02"

// Movie is a catalog record. Written by the seeder, read-only to the query pipeline.
type Movie struct {
	ID          int64
	Title       string
	Overview    string
	ReleaseDate string // YYYY-MM-DD, may be empty
	Popularity  float64
	VoteAverage float64
	VoteCount   int
	PosterPath  string
	GenreIDs    []int
	GenreNames  []string
	Embedding   []float32
}

// EmbeddingText is the text the catalog vector is computed from.
func (m *Movie) EmbeddingText() string {
	return strings.TrimSpace(m.Title + " " + m.Overview)
}

// ReleaseDay converts a YYYY-MM-DD date into the numeric YYYYMMDD form used by range filters.
// Empty or malformed dates report false.
func ReleaseDay(date string) (int, bool) {
	if date == "" {
		return 0, false
	}
	t, err := time.Parse(releaseDateLayout, date)
	if err != nil {
		return 0, false
	}
	return t.Year()*10000 + int(t.Month())*100 + t.Day(), true
}
