// Package answer holds the resolved form of a user query as returned to clients and cached.
package answer

import "github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/domain/movie"

// Answer is a resolved query: the candidate movies plus the generated recommendation.
// Recommendation is nil when generation was skipped or failed.
type Answer struct {
	SimilarMovies  []movie.Summary `json:"similar_movies"`
	Recommendation *string         `json:"recommendation"`
}

// Entry is the cached record: the original query text and its answer.
type Entry struct {
	Query  string `json:"query"`
	Result Answer `json:"result"`
}

// IsEmpty reports whether no candidate was found.
func (a *Answer) IsEmpty() bool {
	return a == nil || len(a.SimilarMovies) == 0
}
