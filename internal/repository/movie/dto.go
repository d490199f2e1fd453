package movie

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/db"
	dommovie "github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/domain/movie"
)

// summaryFields are the hash fields fetched for every candidate.
var summaryFields = []string{
	dommovie.FieldID,
	dommovie.FieldTitle,
	dommovie.FieldOverview,
	dommovie.FieldPosterPath,
	dommovie.FieldVoteAverage,
	dommovie.FieldVoteCount,
	dommovie.FieldReleaseDate,
	dommovie.FieldPopularity,
	dommovie.FieldGenreNames,
}

// buildHashFields flattens a movie into HSET fields.
// release_day is written only for parseable dates so the numeric index never sees an empty value.
func buildHashFields(m *dommovie.Movie) map[string]string {
	fields := map[string]string{
		dommovie.FieldID:          strconv.FormatInt(m.ID, 10),
		dommovie.FieldTitle:       m.Title,
		dommovie.FieldOverview:    m.Overview,
		dommovie.FieldReleaseDate: m.ReleaseDate,
		dommovie.FieldPopularity:  formatFloat(m.Popularity),
		dommovie.FieldVoteAverage: formatFloat(m.VoteAverage),
		dommovie.FieldVoteCount:   strconv.Itoa(m.VoteCount),
		dommovie.FieldPosterPath:  m.PosterPath,
		dommovie.FieldGenreIDs:    joinInts(m.GenreIDs),
		dommovie.FieldGenreNames:  strings.Join(m.GenreNames, genreSeparator),
	}
	if day, ok := dommovie.ReleaseDay(m.ReleaseDate); ok {
		fields[dommovie.FieldReleaseDay] = strconv.Itoa(day)
	}
	if len(m.Embedding) > 0 {
		fields[dommovie.FieldEmbedding] = vectorToBytes(m.Embedding)
	}
	return fields
}

// parseSummary converts a search entry into a summary. Unparseable numbers read as zero.
func parseSummary(keyPrefix string, e *db.SearchEntry) dommovie.Summary {
	f := e.Fields

	id, err := strconv.ParseInt(f[dommovie.FieldID], 10, 64)
	if err != nil {
		id, _ = strconv.ParseInt(strings.TrimPrefix(e.Key, keyPrefix), 10, 64)
	}

	s := dommovie.Summary{
		ID:          id,
		Title:       f[dommovie.FieldTitle],
		Overview:    f[dommovie.FieldOverview],
		PosterPath:  f[dommovie.FieldPosterPath],
		ReleaseDate: f[dommovie.FieldReleaseDate],
		Popularity:  parseFloat(f[dommovie.FieldPopularity]),
		VoteAverage: parseFloat(f[dommovie.FieldVoteAverage]),
	}
	s.VoteCount, _ = strconv.Atoi(f[dommovie.FieldVoteCount])
	if g := f[dommovie.FieldGenreNames]; g != "" {
		s.GenreNames = strings.Split(g, genreSeparator)
	}
	return s
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
