package main

import (
	"fmt"
	"log/slog"

	categorizer "github.com/FrenchMajesty/complaint-clusterer"
	"github.com/FrenchMajesty/complaint-clusterer/adapters"
	"github.com/FrenchMajesty/complaint-clusterer/internal/config"
	"github.com/FrenchMajesty/complaint-clusterer/oracle"
)

// modelClient is an embedding provider that reports its model
type modelClient interface {
	oracle.EmbeddingClient
	Model() string
}

// buildOracle returns the configured similarity oracle. Embedding oracles are
// backed by a CachedEmbedder, which is returned so its statistics can be
// reported; it is nil for the lexical oracle.
func buildOracle(cfg *config.Config, logger *slog.Logger) (categorizer.SimilarityOracle, *oracle.CachedEmbedder, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var client modelClient
	var err error

	switch cfg.Oracle.Provider {
	case config.ProviderLexical:
		return oracle.NewLexical(), nil, nil
	case config.ProviderVoyage:
		client, err = adapters.NewVoyageEmbeddingAdapter(&cfg.Oracle.VoyageAPIKey, cfg.Oracle.EmbeddingModel, logger)
	case config.ProviderOpenAI:
		client, err = adapters.NewOpenAIEmbeddingAdapter(&cfg.Oracle.OpenAIAPIKey, cfg.Oracle.EmbeddingModel, logger)
	default:
		return nil, nil, fmt.Errorf("unknown oracle provider %q", cfg.Oracle.Provider)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s embedding client: %w", cfg.Oracle.Provider, err)
	}

	var store oracle.VectorStore
	if cfg.Pinecone.Enabled() {
		pc, err := adapters.NewPineconeVectorAdapter(&cfg.Pinecone.APIKey, &cfg.Pinecone.Host, cfg.Pinecone.Namespace)
		if err != nil {
			return nil, nil, err
		}
		store = pc
	}

	modelID := cfg.Oracle.Provider + "/" + client.Model()
	cache := oracle.NewCachedEmbedder(client, store, modelID, logger)
	embedding, err := oracle.NewEmbedding(cache)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("oracle_selected", "provider", cfg.Oracle.Provider, "model", client.Model(), "persistent_cache", store != nil)
	return embedding, cache, nil
}
