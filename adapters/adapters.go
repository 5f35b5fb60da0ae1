package adapters

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/FrenchMajesty/complaint-clusterer/adapters/openai"
	"github.com/FrenchMajesty/complaint-clusterer/adapters/pinecone"
	"github.com/FrenchMajesty/complaint-clusterer/adapters/voyage"
	"github.com/FrenchMajesty/complaint-clusterer/internal/retry"
	"github.com/FrenchMajesty/complaint-clusterer/oracle"
)

var (
	_ oracle.EmbeddingClient = (*VoyageEmbeddingAdapter)(nil)
	_ oracle.EmbeddingClient = (*openai.EmbeddingClient)(nil)
	_ oracle.VectorStore     = (*PineconeVectorAdapter)(nil)
)

// VoyageEmbeddingAdapter adapts the Voyage client to the EmbeddingClient interface
type VoyageEmbeddingAdapter struct {
	client interface {
		GenerateEmbedding(ctx context.Context, text string, embeddingType voyage.EmbeddingType) ([]float32, error)
		Model() string
	}
}

// NewVoyageEmbeddingAdapter creates a new adapter for Voyage AI. An empty model
// uses the service default.
func NewVoyageEmbeddingAdapter(apiKey *string, model string, logger *slog.Logger) (*VoyageEmbeddingAdapter, error) {
	key, err := loadEnvVar(apiKey, "VOYAGEAI_API_KEY")
	if err != nil {
		return nil, err
	}

	service := voyage.NewEmbeddingService(*key)
	service.SetModel(model)
	service.SetLogger(retryLogger(logger))

	return &VoyageEmbeddingAdapter{client: service}, nil
}

// GenerateEmbedding implements EmbeddingClient interface
func (a *VoyageEmbeddingAdapter) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return a.client.GenerateEmbedding(ctx, text, voyage.EmbeddingTypeDocument)
}

// Model returns the embedding model in use
func (a *VoyageEmbeddingAdapter) Model() string {
	return a.client.Model()
}

// NewOpenAIEmbeddingAdapter creates an OpenAI embedding client. An empty model
// uses the client default.
func NewOpenAIEmbeddingAdapter(apiKey *string, model string, logger *slog.Logger) (*openai.EmbeddingClient, error) {
	key, err := loadEnvVar(apiKey, "OPENAI_API_KEY")
	if err != nil {
		return nil, err
	}

	client := openai.NewClient(*key)
	client.SetModel(model)
	client.Logger = retryLogger(logger)
	return client, nil
}

// vectorIndex is the subset of the Pinecone index operations used by the adapter
type vectorIndex interface {
	Fetch(ctx context.Context, ids []string) (map[string]*pinecone.Vector, error)
	Upsert(ctx context.Context, vectors []*pinecone.Vector) error
}

// PineconeVectorAdapter adapts the Pinecone client to the VectorStore interface
type PineconeVectorAdapter struct {
	index vectorIndex
}

// NewPineconeVectorAdapter creates a new adapter for Pinecone
func NewPineconeVectorAdapter(apiKey *string, host *string, namespace string) (*PineconeVectorAdapter, error) {
	key, err := loadEnvVar(apiKey, "PINECONE_API_KEY")
	if err != nil {
		return nil, err
	}

	h, err := loadEnvVar(host, "PINECONE_HOST")
	if err != nil {
		return nil, err
	}

	client, err := pinecone.NewPineconeService(*key)
	if err != nil {
		return nil, fmt.Errorf("failed to create pinecone service: %w", err)
	}

	index, err := client.ForIndex(*h, namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to pinecone index: %w", err)
	}

	return &PineconeVectorAdapter{index: index}, nil
}

// Fetch implements VectorStore interface
func (a *PineconeVectorAdapter) Fetch(ctx context.Context, ids []string) (map[string][]float32, error) {
	vectors, err := a.index.Fetch(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]float32, len(vectors))
	for id, vector := range vectors {
		if len(vector.Values) > 0 {
			out[id] = vector.Values
		}
	}
	return out, nil
}

// Upsert implements VectorStore interface
func (a *PineconeVectorAdapter) Upsert(ctx context.Context, id string, vector []float32, metadata map[string]any) error {
	metadataStruct, err := structpb.NewStruct(metadata)
	if err != nil {
		return fmt.Errorf("failed to convert metadata for vector %s: %w", id, err)
	}

	return a.index.Upsert(ctx, []*pinecone.Vector{
		{
			Id:     id,
			Values: vector,
			Metadata: &pinecone.Metadata{
				Fields: metadataStruct.Fields,
			},
		},
	})
}

// loadEnvVar loads an environment variable into a pointer if no value is provided
func loadEnvVar(target *string, envKey string) (*string, error) {
	if target == nil || *target == "" {
		envVar := os.Getenv(envKey)
		if envVar == "" {
			return nil, fmt.Errorf("%s environment variable not set and no value provided", envKey)
		}
		return &envVar, nil
	}
	return target, nil
}

// retryLogger reports retry attempts as warnings on logger
func retryLogger(logger *slog.Logger) retry.Logger {
	if logger == nil {
		return nil
	}
	return func(message string, args ...any) {
		logger.Warn(fmt.Sprintf(message, args...))
	}
}
