package testutil

import (
	"context"
	"sync"

	categorizer "github.com/FrenchMajesty/complaint-clusterer"
	"github.com/FrenchMajesty/complaint-clusterer/oracle"
)

// MockOracle is a stub similarity oracle driven by a symmetric pair table
type MockOracle struct {
	// Scores maps a text pair to its similarity. Lookups try both orders.
	Scores    map[[2]string]float64
	ScoreFunc func(ctx context.Context, a, b string) (float64, error)

	mu        sync.Mutex
	CallCount int
	Calls     [][2]string
}

// NewMockOracle creates a MockOracle with an empty pair table
func NewMockOracle() *MockOracle {
	return &MockOracle{Scores: make(map[[2]string]float64)}
}

// Set records the similarity of the pair (a, b)
func (m *MockOracle) Set(a, b string, score float64) *MockOracle {
	m.Scores[[2]string{a, b}] = score
	return m
}

func (m *MockOracle) Score(ctx context.Context, a, b string) (float64, error) {
	m.mu.Lock()
	m.CallCount++
	m.Calls = append(m.Calls, [2]string{a, b})
	m.mu.Unlock()

	if m.ScoreFunc != nil {
		return m.ScoreFunc(ctx, a, b)
	}

	// Identical inputs always score 1.0, unknown pairs score 0.0
	if a == b {
		return 1.0, nil
	}
	if score, ok := m.Scores[[2]string{a, b}]; ok {
		return score, nil
	}
	if score, ok := m.Scores[[2]string{b, a}]; ok {
		return score, nil
	}
	return 0.0, nil
}

// MockEmbeddingClient is a mock implementation of EmbeddingClient for testing
type MockEmbeddingClient struct {
	// Vectors maps a word to its embedding; words not present are unembeddable
	Vectors               map[string][]float32
	GenerateEmbeddingFunc func(ctx context.Context, text string) ([]float32, error)

	mu        sync.Mutex
	CallCount int
	LastText  string
}

func (m *MockEmbeddingClient) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.CallCount++
	m.LastText = text
	m.mu.Unlock()

	if m.GenerateEmbeddingFunc != nil {
		return m.GenerateEmbeddingFunc(ctx, text)
	}
	if vec, ok := m.Vectors[text]; ok {
		return vec, nil
	}
	return nil, oracle.ErrNoEmbedding
}

// MockVectorStore is a mock implementation of a persistent vector store for testing
type MockVectorStore struct {
	FetchFunc  func(ctx context.Context, ids []string) (map[string][]float32, error)
	UpsertFunc func(ctx context.Context, id string, vector []float32, metadata map[string]any) error

	mu          sync.Mutex
	FetchCount  int
	UpsertCount int
	Storage     map[string]struct {
		Vector   []float32
		Metadata map[string]any
	}
}

func NewMockVectorStore() *MockVectorStore {
	return &MockVectorStore{
		Storage: make(map[string]struct {
			Vector   []float32
			Metadata map[string]any
		}),
	}
}

func (m *MockVectorStore) Fetch(ctx context.Context, ids []string) (map[string][]float32, error) {
	m.mu.Lock()
	m.FetchCount++
	m.mu.Unlock()

	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, ids)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string][]float32)
	for _, id := range ids {
		if entry, ok := m.Storage[id]; ok {
			out[id] = entry.Vector
		}
	}
	return out, nil
}

func (m *MockVectorStore) Upsert(ctx context.Context, id string, vector []float32, metadata map[string]any) error {
	m.mu.Lock()
	m.UpsertCount++
	m.Storage[id] = struct {
		Vector   []float32
		Metadata map[string]any
	}{Vector: vector, Metadata: metadata}
	m.mu.Unlock()

	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, id, vector, metadata)
	}

	return nil
}

// MockCorpus is a mock implementation of the Domain Corpus for testing
type MockCorpus struct {
	DomainList  []categorizer.Domain
	DomainsFunc func(ctx context.Context) ([]categorizer.Domain, error)

	mu        sync.Mutex
	CallCount int
}

func (m *MockCorpus) Domains(ctx context.Context) ([]categorizer.Domain, error) {
	m.mu.Lock()
	m.CallCount++
	m.mu.Unlock()

	if m.DomainsFunc != nil {
		return m.DomainsFunc(ctx)
	}
	return m.DomainList, nil
}
