package recommend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/domain"
	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/domain/movie"
)

// Composer turns candidate movies and the user's query into a recommendation.
type Composer struct {
	gen     Generator
	timeout time.Duration
}

// New creates a composer over gen.
func New(gen Generator) *Composer {
	return &Composer{gen: gen}
}

// WithTimeout bounds each generation call. Zero keeps the caller's deadline.
func (c *Composer) WithTimeout(d time.Duration) *Composer {
	c.timeout = d
	return c
}

// Compose asks the generator for a recommendation grounded on the candidate titles.
// The generated text is returned verbatim.
func (c *Composer) Compose(ctx context.Context, candidates []movie.Summary, query string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	text, err := c.gen.Generate(ctx, Prompt(candidates, query))
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrRecommendationUnavailable, err)
	}
	return text, nil
}

// Prompt renders the generation prompt. Titles keep candidate order, one per line.
func Prompt(candidates []movie.Summary, query string) string {
	titles := make([]string, 0, len(candidates))
	for i := range candidates {
		titles = append(titles, candidates[i].Title)
	}
	return "Recommend a movie similar to: " + strings.Join(titles, "\n") +
		"\nbased on user's query: " + query +
		"\nand explain why"
}
