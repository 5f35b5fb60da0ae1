package oracle

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// VectorStore is a persistent tier for cached embeddings
type VectorStore interface {
	Fetch(ctx context.Context, ids []string) (map[string][]float32, error)
	Upsert(ctx context.Context, id string, vector []float32, metadata map[string]any) error
}

// CacheStats reports cache effectiveness
type CacheStats struct {
	Hits        int
	StoreHits   int
	Misses      int
	Unembedable int
}

// HitRate returns the percentage of lookups served without calling the provider
func (s CacheStats) HitRate() float32 {
	total := s.Hits + s.StoreHits + s.Misses
	if total == 0 {
		return 0
	}
	return float32(s.Hits+s.StoreHits) / float32(total) * 100
}

// CachedEmbedder memoizes an EmbeddingClient in memory and, when a store is
// configured, in a persistent vector store shared across runs.
type CachedEmbedder struct {
	client  EmbeddingClient
	store   VectorStore
	modelID string
	logger  *slog.Logger

	mu      sync.RWMutex
	vectors map[string][]float32
	missing map[string]struct{}
	stats   CacheStats
}

// NewCachedEmbedder wraps client. store may be nil. modelID scopes cache keys
// so vectors from different models never mix.
func NewCachedEmbedder(client EmbeddingClient, store VectorStore, modelID string, logger *slog.Logger) *CachedEmbedder {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedEmbedder{
		client:  client,
		store:   store,
		modelID: modelID,
		logger:  logger,
		vectors: make(map[string][]float32),
		missing: make(map[string]struct{}),
	}
}

// GenerateEmbedding implements EmbeddingClient
func (c *CachedEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	key := c.cacheKey(text)

	c.mu.RLock()
	vec, ok := c.vectors[key]
	_, gone := c.missing[key]
	c.mu.RUnlock()
	if ok {
		c.record(func(s *CacheStats) { s.Hits++ })
		return cloneVector(vec), nil
	}
	if gone {
		c.record(func(s *CacheStats) { s.Hits++ })
		return nil, ErrNoEmbedding
	}

	if c.store != nil {
		found, err := c.store.Fetch(ctx, []string{key})
		if err != nil {
			// A broken persistent tier only costs a provider call.
			c.logger.Warn("embedding_store_fetch_failed", "text", text, "err", err)
		} else if stored, ok := found[key]; ok && len(stored) > 0 {
			c.remember(key, stored)
			c.record(func(s *CacheStats) { s.StoreHits++ })
			return cloneVector(stored), nil
		}
	}

	vec, err := c.client.GenerateEmbedding(ctx, text)
	if errors.Is(err, ErrNoEmbedding) {
		c.mu.Lock()
		c.missing[key] = struct{}{}
		c.stats.Unembedable++
		c.stats.Misses++
		c.mu.Unlock()
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}
	c.remember(key, vec)
	c.record(func(s *CacheStats) { s.Misses++ })

	if c.store != nil {
		metadata := map[string]any{
			"vector_text": text,
			"model":       c.modelID,
		}
		if err := c.store.Upsert(ctx, key, vec, metadata); err != nil {
			c.logger.Warn("embedding_store_upsert_failed", "text", text, "err", err)
		}
	}
	return cloneVector(vec), nil
}

// Stats returns a snapshot of the cache counters
func (c *CachedEmbedder) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

func (c *CachedEmbedder) remember(key string, vec []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vectors[key] = cloneVector(vec)
}

func (c *CachedEmbedder) record(update func(*CacheStats)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	update(&c.stats)
}

func (c *CachedEmbedder) cacheKey(text string) string {
	h := sha1.New()
	_, _ = io.WriteString(h, c.modelID)
	_, _ = io.WriteString(h, "|")
	_, _ = io.WriteString(h, text)
	return hex.EncodeToString(h.Sum(nil))
}

func cloneVector(vec []float32) []float32 {
	out := make([]float32, len(vec))
	copy(out, vec)
	return out
}
