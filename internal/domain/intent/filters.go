// Package intent turns free-text queries into structured search intent:
// metadata filters, keywords and a matched genre.
package intent

import (
	"strings"

	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/domain/movie"
	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/domain/search/filter"
)

// Filter thresholds.
const (
	TopRatedMinVote = 8.5
	PopularMinCount = 500
	RecentFromDay   = 20200101
	OldUntilDay     = 20000101
)

type trigger struct {
	words []string
	cond  func() filter.Condition
}

// triggers are checked in order; each matched trigger contributes one condition.
var triggers = []trigger{
	{[]string{"top", "high-rated"}, func() filter.Condition {
		return mustRange(movie.FieldVoteAverage, filter.AtLeast(TopRatedMinVote))
	}},
	{[]string{"popular"}, func() filter.Condition {
		return mustRange(movie.FieldVoteCount, filter.AtLeast(PopularMinCount))
	}},
	{[]string{"recent"}, func() filter.Condition {
		return mustRange(movie.FieldReleaseDay, filter.AtLeast(RecentFromDay))
	}},
	{[]string{"old"}, func() filter.Condition {
		return mustRange(movie.FieldReleaseDay, filter.AtMost(OldUntilDay))
	}},
}

// ExtractFilters derives metadata filters from case-insensitive substring triggers:
//
//	"top" or "high-rated" → vote_average ≥ 8.5
//	"popular"             → vote_count ≥ 500
//	"recent"              → release date ≥ 2020-01-01
//	"old"                 → release date ≤ 2000-01-01
//
// Matching is by substring, so "stop" also triggers "top". "recent" and "old"
// together intersect into a range no release date satisfies.
func ExtractFilters(query string) filter.Expression {
	q := strings.ToLower(query)

	var expr filter.Expression
	for _, t := range triggers {
		for _, w := range t.words {
			if strings.Contains(q, w) {
				expr = expr.And(t.cond())
				break
			}
		}
	}
	return expr
}

func mustRange(key string, r filter.Range) filter.Condition {
	c, err := filter.NewRange(key, r)
	if err != nil {
		panic(err) // keys are package constants
	}
	return c
}
