package openai

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	openaisdk "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/FrenchMajesty/complaint-clusterer/internal/retry"
)

type mockEmbeddingsAPI struct {
	newFunc    func(ctx context.Context, body openaisdk.EmbeddingNewParams) (*openaisdk.CreateEmbeddingResponse, error)
	calls      int
	lastParams openaisdk.EmbeddingNewParams
}

func (m *mockEmbeddingsAPI) New(ctx context.Context, body openaisdk.EmbeddingNewParams, opts ...option.RequestOption) (*openaisdk.CreateEmbeddingResponse, error) {
	m.calls++
	m.lastParams = body
	if m.newFunc != nil {
		return m.newFunc(ctx, body)
	}
	texts := body.Input.OfArrayOfStrings
	data := make([]openaisdk.Embedding, len(texts))
	// Return items in reverse to exercise index placement
	for i := range texts {
		pos := len(texts) - 1 - i
		data[i] = openaisdk.Embedding{Index: int64(pos), Embedding: []float64{float64(pos), 0.5}}
	}
	return &openaisdk.CreateEmbeddingResponse{Data: data}, nil
}

// apiError builds an SDK error with the request and response its message needs
func apiError(status int) *openaisdk.Error {
	req, _ := http.NewRequest(http.MethodPost, "https://api.openai.com/v1/embeddings", nil)
	return &openaisdk.Error{
		StatusCode: status,
		Request:    req,
		Response:   &http.Response{StatusCode: status, Request: req},
	}
}

func fastClient(api embeddingsAPI) *EmbeddingClient {
	c := newClient(api)
	c.RetryConfig = retry.Config{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffMultiple: 1}
	return c
}

func TestNewClient(t *testing.T) {
	c := NewClient("sk-test")
	if c.Model() != string(DefaultModel) {
		t.Errorf("Expected default model %s, got %s", DefaultModel, c.Model())
	}

	c.SetModel("text-embedding-3-large")
	if c.Model() != "text-embedding-3-large" {
		t.Errorf("Expected model override, got %s", c.Model())
	}
}

func TestGenerateEmbeddings_PlacesByIndex(t *testing.T) {
	mock := &mockEmbeddingsAPI{}
	c := fastClient(mock)

	out, err := c.GenerateEmbeddings(context.Background(), []string{"water", "garbage", "light"})
	if err != nil {
		t.Fatalf("GenerateEmbeddings failed: %v", err)
	}
	for i, vec := range out {
		if vec[0] != float32(i) {
			t.Errorf("Embedding %d placed at wrong position: %v", i, vec)
		}
	}
	if mock.lastParams.Model != DefaultModel {
		t.Errorf("Expected model %s, got %s", DefaultModel, mock.lastParams.Model)
	}
}

func TestGenerateEmbedding_Single(t *testing.T) {
	vec, err := fastClient(&mockEmbeddingsAPI{}).GenerateEmbedding(context.Background(), "water")
	if err != nil {
		t.Fatalf("GenerateEmbedding failed: %v", err)
	}
	if len(vec) != 2 || vec[1] != 0.5 {
		t.Errorf("Unexpected vector %v", vec)
	}
}

func TestGenerateEmbeddings_RetriesServerErrors(t *testing.T) {
	mock := &mockEmbeddingsAPI{}
	mock.newFunc = func(ctx context.Context, body openaisdk.EmbeddingNewParams) (*openaisdk.CreateEmbeddingResponse, error) {
		if mock.calls == 1 {
			return nil, apiError(http.StatusServiceUnavailable)
		}
		return &openaisdk.CreateEmbeddingResponse{Data: []openaisdk.Embedding{{Index: 0, Embedding: []float64{1}}}}, nil
	}

	_, err := fastClient(mock).GenerateEmbedding(context.Background(), "water")
	if err != nil {
		t.Fatalf("Expected success after retry, got %v", err)
	}
	if mock.calls != 2 {
		t.Errorf("Expected 2 calls, got %d", mock.calls)
	}
}

func TestGenerateEmbeddings_DoesNotRetryClientErrors(t *testing.T) {
	mock := &mockEmbeddingsAPI{
		newFunc: func(ctx context.Context, body openaisdk.EmbeddingNewParams) (*openaisdk.CreateEmbeddingResponse, error) {
			return nil, apiError(http.StatusUnauthorized)
		},
	}

	_, err := fastClient(mock).GenerateEmbedding(context.Background(), "water")
	var apiErr *openaisdk.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected API error, got %v", err)
	}
	if mock.calls != 1 {
		t.Errorf("Expected a single call for a 401, got %d", mock.calls)
	}
}

func TestGenerateEmbeddings_Empty(t *testing.T) {
	mock := &mockEmbeddingsAPI{}
	out, err := fastClient(mock).GenerateEmbeddings(context.Background(), nil)
	if err != nil || len(out) != 0 || mock.calls != 0 {
		t.Errorf("Expected no call for empty input, got %v, %v, %d calls", out, err, mock.calls)
	}
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{apiError(http.StatusTooManyRequests), true},
		{apiError(http.StatusInternalServerError), true},
		{apiError(http.StatusBadRequest), false},
		{errors.New("connection reset"), true},
	}
	for _, tc := range cases {
		if got := isRetryable(tc.err); got != tc.want {
			t.Errorf("isRetryable(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
