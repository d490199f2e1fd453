// Package tmdb is a minimal client for the TMDB v3 REST API, limited to what catalog seeding needs.
package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/transport/resilience"
)

// DefaultTimeout bounds a single HTTP exchange.
const DefaultTimeout = 15 * time.Second

// StatusError is a non-2xx TMDB response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tmdb: status %d: %s", e.Code, e.Body)
}

// IsTransient reports whether a failed call may succeed on retry: network failures, 429 and 5xx.
func IsTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return resilience.TransientStatus(se.Code)
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// Genre is a TMDB genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Movie is a TMDB list entry.
type Movie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	Popularity  float64 `json:"popularity"`
	PosterPath  string  `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`
	GenreIDs    []int   `json:"genre_ids"`
	Adult       bool    `json:"adult"`
}

// Page is one page of a paginated movie list.
type Page struct {
	Page       int     `json:"page"`
	TotalPages int     `json:"total_pages"`
	Results    []Movie `json:"results"`
}

// Config holds TMDB client settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Language   string
	RatePerSec float64
	HTTPClient *http.Client
	Guard      *resilience.Guard
	Logger     *zap.Logger
}

// Client calls the TMDB API with client-side pacing.
type Client struct {
	http     *http.Client
	baseURL  string
	apiKey   string
	language string
	limiter  *rate.Limiter
	guard    *resilience.Guard
	logger   *zap.Logger
}

// NewClient creates a TMDB client. A non-positive RatePerSec disables pacing.
func NewClient(cfg *Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	limit := rate.Inf
	if cfg.RatePerSec > 0 {
		limit = rate.Limit(cfg.RatePerSec)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		http:     httpClient,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		language: cfg.Language,
		limiter:  rate.NewLimiter(limit, 1),
		guard:    cfg.Guard,
		logger:   logger,
	}
}

// Genres returns the movie genre list as an id to name map.
func (c *Client) Genres(ctx context.Context) (map[int]string, error) {
	var resp struct {
		Genres []Genre `json:"genres"`
	}
	if err := c.get(ctx, "/genre/movie/list", nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch genres: %w", err)
	}

	out := make(map[int]string, len(resp.Genres))
	for _, g := range resp.Genres {
		out[g.ID] = g.Name
	}
	return out, nil
}

// PopularMovies returns one page of popular movies with adult titles removed.
func (c *Client) PopularMovies(ctx context.Context, page int) (*Page, error) {
	if page < 1 {
		return nil, fmt.Errorf("page must be >= 1, got %d", page)
	}

	var resp Page
	params := url.Values{"page": {strconv.Itoa(page)}}
	if err := c.get(ctx, "/movie/popular", params, &resp); err != nil {
		return nil, fmt.Errorf("fetch popular page %d: %w", page, err)
	}

	kept := resp.Results[:0]
	for _, m := range resp.Results {
		if !m.Adult {
			kept = append(kept, m)
		}
	}
	resp.Results = kept
	return &resp, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	endpoint := c.baseURL + path + "?" + params.Encode()

	return c.guard.Do(ctx, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			// *url.Error repeats the URL, which carries the api key.
			var uerr *url.Error
			if errors.As(err, &uerr) {
				err = uerr.Err
			}
			return fmt.Errorf("GET %s: %w", path, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			c.logger.Debug("tmdb non-200 response", zap.String("path", path), zap.Int("status", resp.StatusCode))
			return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		return nil
	})
}
