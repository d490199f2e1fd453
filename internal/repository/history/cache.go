// Package history is the query cache: one JSON payload per query key plus an
// append-only list of the queries in first-store order.
package history

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/db"
	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/domain/answer"
)

// store is the consumer interface for the query cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetNX(ctx context.Context, key string, value []byte) (bool, error)
	RPush(ctx context.Context, key string, values ...string) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
}

// Cache implements the pipeline's query cache over a Redis-like store.
type Cache struct {
	store         store
	payloadPrefix string
	listKey       string
	normalize     bool
}

// New creates a query cache under prefix (e.g. "movies:").
// With normalize, keys are trimmed and lower-cased; history keeps the text as received.
func New(s store, prefix string, normalize bool) *Cache {
	return &Cache{
		store:         s,
		payloadPrefix: prefix + "history:q:",
		listKey:       prefix + "history:queries",
		normalize:     normalize,
	}
}

// Lookup returns the cached answer for query. A miss is (nil, false, nil).
func (c *Cache) Lookup(ctx context.Context, query string) (*answer.Answer, bool, error) {
	data, err := c.store.Get(ctx, c.payloadKey(query))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("lookup cached query: %w", err)
	}

	var entry answer.Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false, fmt.Errorf("decode cached query: %w", err)
	}
	return &entry.Result, true, nil
}

// Store writes the answer for query. The first store of a key appends query to the
// history list; later stores overwrite the payload only.
func (c *Cache) Store(ctx context.Context, query string, a *answer.Answer) error {
	if a.IsEmpty() {
		return nil
	}

	data, err := json.Marshal(answer.Entry{Query: query, Result: *a})
	if err != nil {
		return fmt.Errorf("encode cached query: %w", err)
	}

	key := c.payloadKey(query)
	created, err := c.store.SetNX(ctx, key, data)
	if err != nil {
		return fmt.Errorf("store cached query: %w", err)
	}
	if !created {
		if err := c.store.Set(ctx, key, data); err != nil {
			return fmt.Errorf("overwrite cached query: %w", err)
		}
		return nil
	}

	if err := c.store.RPush(ctx, c.listKey, query); err != nil {
		return fmt.Errorf("append query history: %w", err)
	}
	return nil
}

// Queries returns every cached query in first-store order. Never nil.
func (c *Cache) Queries(ctx context.Context) ([]string, error) {
	queries, err := c.store.LRange(ctx, c.listKey, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("list query history: %w", err)
	}
	if queries == nil {
		queries = []string{}
	}
	return queries, nil
}

func (c *Cache) payloadKey(query string) string {
	if c.normalize {
		query = strings.ToLower(strings.TrimSpace(query))
	}
	h := sha256.Sum256([]byte(query))
	return c.payloadPrefix + hex.EncodeToString(h[:])
}
