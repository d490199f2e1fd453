package movie

// Summary is the client-facing view of a candidate movie.
// Genre-path summaries carry GenreNames; similarity-path summaries carry Score.
type Summary struct {
	ID          int64    `json:"-"`
	Popularity  float64  `json:"-"`
	Title       string   `json:"title"`
	Overview    string   `json:"overview"`
	PosterPath  string   `json:"poster_path"`
	VoteAverage float64  `json:"vote_average"`
	VoteCount   int      `json:"vote_count"`
	ReleaseDate string   `json:"release_date"`
	GenreNames  []string `json:"genre_names,omitempty"`
	Score       *float64 `json:"score,omitempty"`
}

// Number implements filter.Record.
func (s *Summary) Number(key string) (float64, bool) {
	switch key {
	case FieldVoteAverage:
		return s.VoteAverage, true
	case FieldVoteCount:
		return float64(s.VoteCount), true
	case FieldPopularity:
		return s.Popularity, true
	case FieldReleaseDay:
		day, ok := ReleaseDay(s.ReleaseDate)
		return float64(day), ok
	default:
		return 0, false
	}
}

// Tags implements filter.Record.
func (s *Summary) Tags(key string) []string {
	if key == FieldGenreNames {
		return s.GenreNames
	}
	return nil
}

// GenreView trims s to the attributes the genre path exposes.
func (s Summary) GenreView() Summary {
	s.Score = nil
	return s
}

// SimilarView trims s to the attributes the similarity path exposes.
func (s Summary) SimilarView() Summary {
	s.GenreNames = nil
	return s
}
