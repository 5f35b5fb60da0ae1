package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openaisdk "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/FrenchMajesty/complaint-clusterer/internal/retry"
)

// DefaultModel is the embedding model used when none is configured
const DefaultModel = openaisdk.EmbeddingModelTextEmbedding3Small

// embeddingsAPI is the subset of the OpenAI SDK used by the service
type embeddingsAPI interface {
	New(ctx context.Context, body openaisdk.EmbeddingNewParams, opts ...option.RequestOption) (*openaisdk.CreateEmbeddingResponse, error)
}

// EmbeddingClient generates embeddings with the OpenAI embeddings endpoint
type EmbeddingClient struct {
	api         embeddingsAPI
	model       openaisdk.EmbeddingModel
	RetryConfig retry.Config
	Logger      retry.Logger
}

// NewClient creates a new OpenAI embedding client. The SDK's own retries are
// disabled in favor of the shared retry policy.
func NewClient(apiKey string, opts ...option.RequestOption) *EmbeddingClient {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, opts...)
	client := openaisdk.NewClient(opts...)
	return newClient(&client.Embeddings)
}

func newClient(api embeddingsAPI) *EmbeddingClient {
	return &EmbeddingClient{
		api:         api,
		model:       DefaultModel,
		RetryConfig: retry.DefaultConfig(),
	}
}

// SetModel sets the embedding model
func (c *EmbeddingClient) SetModel(model string) {
	if model != "" {
		c.model = openaisdk.EmbeddingModel(model)
	}
}

// Model returns the configured embedding model
func (c *EmbeddingClient) Model() string {
	return string(c.model)
}

// GenerateEmbedding returns the embedding of a single text
func (c *EmbeddingClient) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := c.GenerateEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// GenerateEmbeddings returns embeddings parallel to texts
func (c *EmbeddingClient) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	params := openaisdk.EmbeddingNewParams{
		Input: openaisdk.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model: c.model,
	}

	response, err := retry.Execute(ctx, retry.Options{
		Config:       c.RetryConfig,
		ErrorChecker: isRetryable,
		Logger:       c.Logger,
		APIName:      "openai",
	}, func(attempt int) (*openaisdk.CreateEmbeddingResponse, error) {
		return c.api.New(ctx, params)
	})
	if err != nil {
		return nil, fmt.Errorf("could not get embeddings: %w", err)
	}

	if len(response.Data) != len(texts) {
		return nil, fmt.Errorf("openai returned %d embeddings for %d texts", len(response.Data), len(texts))
	}

	out := make([][]float32, len(texts))
	for _, item := range response.Data {
		if item.Index < 0 || int(item.Index) >= len(texts) {
			return nil, fmt.Errorf("openai returned embedding with invalid index %d", item.Index)
		}
		vec := make([]float32, len(item.Embedding))
		for i, v := range item.Embedding {
			vec[i] = float32(v)
		}
		out[item.Index] = vec
	}
	return out, nil
}

// isRetryable retries rate limits, server errors and transport failures
func isRetryable(err error) bool {
	var apiErr *openaisdk.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= http.StatusInternalServerError
	}
	return true
}
