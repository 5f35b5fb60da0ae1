package voyage

import (
	"context"
	"fmt"

	"github.com/austinfhunter/voyageai"

	"github.com/FrenchMajesty/complaint-clusterer/internal/retry"
)

const (
	// DefaultDimensions is the output dimension requested from the model
	DefaultDimensions = 1024

	// DefaultModel is the embedding model used when none is configured
	DefaultModel = "voyage-3.5-lite"
)

type EmbeddingType string

const (
	EmbeddingTypeDocument EmbeddingType = "document"
	EmbeddingTypeQuery    EmbeddingType = "query"
	EmbeddingTypeDefault  EmbeddingType = ""
)

// embedder is the subset of the Voyage SDK client used by the service
type embedder interface {
	Embed(texts []string, model string, opts *voyageai.EmbeddingRequestOpts) (*voyageai.EmbeddingResponse, error)
}

// voyageService generates word and phrase embeddings with VoyageAI
type voyageService struct {
	client     embedder
	dimensions int
	model      string
	retry      retry.Config
	logger     retry.Logger
}

// NewEmbeddingService creates a new embedding service
func NewEmbeddingService(apiKey string) *voyageService {
	return newService(voyageai.NewClient(&voyageai.VoyageClientOpts{
		Key: apiKey,
	}))
}

func newService(client embedder) *voyageService {
	return &voyageService{
		client:     client,
		dimensions: DefaultDimensions,
		model:      DefaultModel,
		retry:      retry.DefaultConfig(),
	}
}

// SetDimensions sets the dimensions for the embedding model
func (es *voyageService) SetDimensions(dimensions int) {
	es.dimensions = dimensions
}

// SetModel sets the model for the embedding model
func (es *voyageService) SetModel(model string) {
	if model != "" {
		es.model = model
	}
}

// SetRetryConfig overrides the retry policy for API calls
func (es *voyageService) SetRetryConfig(cfg retry.Config) {
	es.retry = cfg
}

// SetLogger sets the function that reports retry attempts
func (es *voyageService) SetLogger(logger retry.Logger) {
	es.logger = logger
}

// Model returns the configured embedding model
func (es *voyageService) Model() string {
	return es.model
}

// GetEmbeddingDimensions returns the dimension count for the embedding model
func (es *voyageService) GetEmbeddingDimensions() int {
	return es.dimensions
}

// GenerateEmbedding generates an embedding for a single text using VoyageAI
func (es *voyageService) GenerateEmbedding(ctx context.Context, text string, embeddingType EmbeddingType) ([]float32, error) {
	embeddings, err := es.GenerateEmbeddings(ctx, []string{text}, embeddingType)
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// GenerateEmbeddings generates embeddings for multiple texts using VoyageAI.
// The result is parallel to texts.
func (es *voyageService) GenerateEmbeddings(ctx context.Context, texts []string, embeddingType EmbeddingType) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	dimensions := es.GetEmbeddingDimensions()
	opts := &voyageai.EmbeddingRequestOpts{
		InputType:       parseEmbeddingType(embeddingType),
		OutputDimension: &dimensions,
	}

	response, err := retry.Execute(ctx, retry.Options{
		Config:  es.retry,
		Logger:  es.logger,
		APIName: "voyage",
	}, func(attempt int) (*voyageai.EmbeddingResponse, error) {
		return es.client.Embed(texts, es.model, opts)
	})
	if err != nil {
		return nil, fmt.Errorf("could not get embeddings: %w", err)
	}

	if len(response.Data) != len(texts) {
		return nil, fmt.Errorf("voyage returned %d embeddings for %d texts", len(response.Data), len(texts))
	}

	out := make([][]float32, len(texts))
	for i, obj := range response.Data {
		out[i] = obj.Embedding
	}
	return out, nil
}

func parseEmbeddingType(embeddingType EmbeddingType) *string {
	if embeddingType != EmbeddingTypeDefault {
		value := string(embeddingType)
		return &value
	}
	return nil
}
