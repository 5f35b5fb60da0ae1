package oracle

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// ErrNoEmbedding is returned by an EmbeddingClient when it has no vector for a
// word. The embedding oracle skips such words instead of failing.
var ErrNoEmbedding = errors.New("no embedding for text")

// EmbeddingClient generates vector embeddings for text
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// Embedding scores texts by the cosine similarity of the mean vectors of
// their significant words.
type Embedding struct {
	client EmbeddingClient
}

// NewEmbedding creates an embedding oracle backed by client. Wrap the client
// in a CachedEmbedder when the same words are scored repeatedly.
func NewEmbedding(client EmbeddingClient) (*Embedding, error) {
	if client == nil {
		return nil, errors.New("embedding client is required")
	}
	return &Embedding{client: client}, nil
}

// Score implements the similarity oracle contract. Words the client cannot
// embed are ignored and a side left with no vectors scores 0.0. Negative
// cosines are clamped to 0.0.
func (e *Embedding) Score(ctx context.Context, a, b string) (float64, error) {
	na, nb := Normalize(a), Normalize(b)
	if na == nb {
		return 1.0, nil
	}
	ta, tb := Tokens(na), Tokens(nb)
	if !sharesToken(ta, tb) {
		return 0.0, nil
	}

	va, err := e.meanVector(ctx, ta)
	if err != nil {
		return 0, err
	}
	vb, err := e.meanVector(ctx, tb)
	if err != nil {
		return 0, err
	}
	if va == nil || vb == nil {
		return 0.0, nil
	}

	sim := cosineSimilarity(va, vb)
	if math.IsNaN(sim) || sim < 0 {
		return 0.0, nil
	}
	if sim > 1 {
		return 1.0, nil
	}
	return sim, nil
}

func (e *Embedding) meanVector(ctx context.Context, words []string) ([]float64, error) {
	var sum []float64
	count := 0
	for _, w := range words {
		vec, err := e.client.GenerateEmbedding(ctx, w)
		if errors.Is(err, ErrNoEmbedding) || (err == nil && len(vec) == 0) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to embed %q: %w", w, err)
		}
		if sum == nil {
			sum = make([]float64, len(vec))
		}
		if len(vec) != len(sum) {
			return nil, fmt.Errorf("embedding dimension mismatch for %q: %d != %d", w, len(vec), len(sum))
		}
		for i, v := range vec {
			sum[i] += float64(v)
		}
		count++
	}
	if count == 0 {
		return nil, nil
	}
	for i := range sum {
		sum[i] /= float64(count)
	}
	return sum, nil
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
