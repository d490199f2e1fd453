package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput signals a malformed or empty query.
	ErrInvalidInput = errors.New("invalid input")
	// ErrRetrievalUnavailable signals that candidate retrieval could not run (storage or embedding failure).
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")
	// ErrRecommendationUnavailable signals that the text generator failed or returned nothing.
	ErrRecommendationUnavailable = errors.New("recommendation unavailable")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrRateLimited signals a rate limit hit on an upstream provider.
	ErrRateLimited = errors.New("rate limited")
)
