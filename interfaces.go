package categorizer

import (
	"context"
)

// SimilarityOracle scores how alike two texts are on a [0,1] scale. Identical
// inputs score 1.0 and inputs with no shared significant word score 0.0. The
// score for a fixed pair must be deterministic.
type SimilarityOracle interface {
	Score(ctx context.Context, a, b string) (float64, error)
}

// Corpus supplies the domains to categorize
type Corpus interface {
	Domains(ctx context.Context) ([]Domain, error)
}

// ResultStore persists the output of a run
type ResultStore interface {
	Save(results *Results) (string, error)
}
