package db

import "github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/domain/search/filter"

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	VectorField  string
	Vector       []float32
	K            int
	EFRuntime    int // HNSW EF_RUNTIME; 0 keeps the index default
	ReturnFields []string
}

// SortedQuery is the input for a filtered, sorted listing.
type SortedQuery struct {
	IndexName    string
	Filters      filter.Expression // empty matches every document
	SortBy       string
	Descending   bool
	Offset       int
	Limit        int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
