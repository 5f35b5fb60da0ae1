package pinecone

import (
	"context"
	"errors"
	"fmt"

	"github.com/pinecone-io/go-pinecone/pinecone"
)

// Vector and Metadata re-export the SDK types so callers need not import it
type (
	Vector   = pinecone.Vector
	Metadata = pinecone.Metadata
)

// batchSize bounds the number of ids or vectors sent per request
const batchSize = 100

// indexConnection is the subset of the SDK index connection used here
type indexConnection interface {
	FetchVectors(ctx context.Context, ids []string) (*pinecone.FetchVectorsResponse, error)
	UpsertVectors(ctx context.Context, in []*pinecone.Vector) (uint32, error)
	DeleteVectorsById(ctx context.Context, ids []string) error
}

type pineconeService struct {
	client *pinecone.Client
}

type indexOperations struct {
	index     indexConnection
	namespace string
}

// NewPineconeService creates a new Pinecone service instance using the official SDK
func NewPineconeService(apiKey string) (*pineconeService, error) {
	if apiKey == "" {
		return nil, errors.New("pinecone API key is required")
	}

	client, err := pinecone.NewClient(pinecone.NewClientParams{
		ApiKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize pinecone client: %w", err)
	}

	return &pineconeService{client: client}, nil
}

// ForIndex returns the operations of the index at host, scoped to namespace
func (ps *pineconeService) ForIndex(host, namespace string) (*indexOperations, error) {
	if host == "" {
		return nil, errors.New("pinecone index host is required")
	}

	conn, err := ps.client.Index(pinecone.NewIndexConnParams{
		Host:      host,
		Namespace: namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to pinecone index %s: %w", host, err)
	}

	return newIndexOperations(conn, namespace), nil
}

func newIndexOperations(index indexConnection, namespace string) *indexOperations {
	return &indexOperations{index: index, namespace: namespace}
}

// Namespace returns the namespace the operations are scoped to
func (idx *indexOperations) Namespace() string {
	return idx.namespace
}

// Fetch returns the stored vectors among ids, keyed by id. Missing ids are
// absent from the result.
func (idx *indexOperations) Fetch(ctx context.Context, ids []string) (map[string]*Vector, error) {
	out := make(map[string]*Vector, len(ids))
	for start := 0; start < len(ids); start += batchSize {
		end := min(start+batchSize, len(ids))

		resp, err := idx.index.FetchVectors(ctx, ids[start:end])
		if err != nil {
			return nil, fmt.Errorf("failed to fetch vectors: %w", err)
		}
		for id, vector := range resp.Vectors {
			if vector != nil {
				out[id] = vector
			}
		}
	}
	return out, nil
}

// Upsert stores vectors in the index
func (idx *indexOperations) Upsert(ctx context.Context, vectors []*Vector) error {
	for start := 0; start < len(vectors); start += batchSize {
		end := min(start+batchSize, len(vectors))
		if _, err := idx.index.UpsertVectors(ctx, vectors[start:end]); err != nil {
			return fmt.Errorf("failed to upsert vectors: %w", err)
		}
	}
	return nil
}

// Delete removes vectors from the index
func (idx *indexOperations) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return idx.index.DeleteVectorsById(ctx, ids)
}
