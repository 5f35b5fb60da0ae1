package oracle_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FrenchMajesty/complaint-clusterer/oracle"
	"github.com/FrenchMajesty/complaint-clusterer/pkg/testutil"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "lowercase and trim", in: "  No WATER Supply ", want: "no water supply"},
		{name: "collapse whitespace", in: "garbage\t\tnot\ncollected", want: "garbage not collected"},
		{name: "compatibility forms", in: "ｗａｔｅｒ", want: "water"},
		{name: "control characters", in: "street\u0007 light", want: "street light"},
		{name: "empty", in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, oracle.Normalize(tt.in))
		})
	}
}

func TestTokens_DropsStopwordsAndDuplicates(t *testing.T) {
	got := oracle.Tokens("There is NO water, no water at all in the tank!")
	assert.Equal(t, []string{"water", "tank"}, got)
}

func TestTokens_AllStopwords(t *testing.T) {
	assert.Empty(t, oracle.Tokens("it is what it is"))
}

func TestLexical_Identity(t *testing.T) {
	o := oracle.NewLexical()
	for _, s := range []string{"no water supply", "street light broken", "the"} {
		score, err := o.Score(context.Background(), s, s)
		require.NoError(t, err)
		assert.Equal(t, 1.0, score, s)
	}
}

func TestLexical_IdentityAfterNormalization(t *testing.T) {
	score, err := oracle.NewLexical().Score(context.Background(), "No Water  Supply", "no water supply")
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)
}

func TestLexical_DisjointVocabulary(t *testing.T) {
	score, err := oracle.NewLexical().Score(context.Background(), "no water supply", "garbage not collected")
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
}

func TestLexical_SharedOnlyStopwords(t *testing.T) {
	score, err := oracle.NewLexical().Score(context.Background(), "the road is bad", "the bin is full")
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
}

func TestLexical_PartialOverlap(t *testing.T) {
	// {water, supply, irregular} vs {water, supply, stopped} -> 2 / 4
	score, err := oracle.NewLexical().Score(context.Background(), "water supply irregular", "water supply stopped")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, score, 1e-9)
}

func TestLexical_Symmetric(t *testing.T) {
	o := oracle.NewLexical()
	ab, err := o.Score(context.Background(), "broken street light", "street light flickering")
	require.NoError(t, err)
	ba, err := o.Score(context.Background(), "street light flickering", "broken street light")
	require.NoError(t, err)
	assert.Equal(t, ab, ba)
	assert.True(t, ab > 0 && ab < 1)
}

func wordVectors() map[string][]float32 {
	return map[string][]float32{
		"water":   {1, 0, 0},
		"supply":  {0.8, 0.2, 0},
		"leak":    {0.9, 0, 0.1},
		"garbage": {0, 1, 0},
		"bin":     {0, 0.9, 0.1},
		"light":   {0, 0, 1},
		"dark":    {-1, 0, 0},
	}
}

func TestNewEmbedding_RequiresClient(t *testing.T) {
	_, err := oracle.NewEmbedding(nil)
	assert.Error(t, err)
}

func TestEmbedding_IdentityAndDisjoint(t *testing.T) {
	client := &testutil.MockEmbeddingClient{Vectors: wordVectors()}
	o, err := oracle.NewEmbedding(client)
	require.NoError(t, err)

	score, err := o.Score(context.Background(), "water leak", "Water Leak")
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)

	score, err = o.Score(context.Background(), "water leak", "garbage bin")
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)

	assert.Equal(t, 0, client.CallCount, "identity and disjoint checks must not call the provider")
}

func TestEmbedding_MeanVectorCosine(t *testing.T) {
	client := &testutil.MockEmbeddingClient{Vectors: wordVectors()}
	o, err := oracle.NewEmbedding(client)
	require.NoError(t, err)

	score, err := o.Score(context.Background(), "water leak", "water supply")
	require.NoError(t, err)
	assert.True(t, score > 0.9 && score <= 1.0, "got %f", score)
}

func TestEmbedding_SkipsUnknownWords(t *testing.T) {
	client := &testutil.MockEmbeddingClient{Vectors: wordVectors()}
	o, err := oracle.NewEmbedding(client)
	require.NoError(t, err)

	// "zzzz" has no vector; the score is computed from "water" alone on each side
	score, err := o.Score(context.Background(), "water zzzz", "water")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestEmbedding_NoEmbeddableWords(t *testing.T) {
	client := &testutil.MockEmbeddingClient{Vectors: map[string][]float32{}}
	o, err := oracle.NewEmbedding(client)
	require.NoError(t, err)

	score, err := o.Score(context.Background(), "pothole road", "pothole lane")
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
}

func TestEmbedding_NegativeCosineClamped(t *testing.T) {
	client := &testutil.MockEmbeddingClient{Vectors: map[string][]float32{
		"water": {0, 0, 0.01},
		"leak":  {1, 0, 0},
		"dark":  {-1, 0, 0},
	}}
	o, err := oracle.NewEmbedding(client)
	require.NoError(t, err)

	score, err := o.Score(context.Background(), "water leak", "water dark")
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
}

func TestEmbedding_ProviderErrorPropagates(t *testing.T) {
	boom := errors.New("provider unavailable")
	client := &testutil.MockEmbeddingClient{
		GenerateEmbeddingFunc: func(ctx context.Context, text string) ([]float32, error) {
			return nil, boom
		},
	}
	o, err := oracle.NewEmbedding(client)
	require.NoError(t, err)

	_, err = o.Score(context.Background(), "water leak", "water supply")
	assert.ErrorIs(t, err, boom)
}
