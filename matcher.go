package categorizer

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"
)

// Categorize scores every response against every category and assigns each
// response to its best category, or to Novel when no category scores above
// zero. Ties go to the first category in column order.
func (c *Categorizer) Categorize(ctx context.Context, responses []Response, categories []Category) (*Assignment, error) {
	if err := validateCategories(categories); err != nil {
		return nil, err
	}

	start := time.Now()
	matrix := NewSimilarityMatrix(len(responses), len(categories))
	for row, response := range responses {
		for col, category := range categories {
			score, err := c.oracle.Score(ctx, response.Normalized, category.Label)
			if err != nil {
				return nil, fmt.Errorf("failed to score response %d against %q: %w", response.Index, category.Label, err)
			}
			if err := matrix.Set(row, col, score); err != nil {
				return nil, err
			}
		}
	}
	if err := matrix.CheckPopulated(false); err != nil {
		return nil, err
	}
	c.logger.Debug("category_matrix_populated",
		"rows", matrix.Rows(),
		"cols", matrix.Cols(),
		"elapsed", time.Since(start),
	)

	assignment := &Assignment{
		Categories: categories,
		Buckets:    make([][]ScoredResponse, len(categories)),
		Novel:      make([]Response, 0),
	}
	for col := range assignment.Buckets {
		assignment.Buckets[col] = make([]ScoredResponse, 0)
	}

	for row, response := range responses {
		col, best := matrix.RowMax(row, -1)
		if col < 0 || best <= 0 {
			assignment.Novel = append(assignment.Novel, response)
			continue
		}
		assignment.Buckets[col] = append(assignment.Buckets[col], ScoredResponse{
			Response:   response,
			Similarity: best,
			Score:      percent(best),
		})
	}

	for _, bucket := range assignment.Buckets {
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].Score > bucket[j].Score
		})
	}

	return assignment, nil
}

// validateCategories rejects labels that would collide as keys of the output
// mapping: a label seen twice, or the reserved Novel label.
func validateCategories(categories []Category) error {
	seen := make(map[string]struct{}, len(categories))
	for _, category := range categories {
		if category.Label == NovelLabel {
			return fmt.Errorf("%w: %q is reserved", ErrInvalidCategory, category.Label)
		}
		if _, dup := seen[category.Label]; dup {
			return fmt.Errorf("%w: duplicate label %q", ErrInvalidCategory, category.Label)
		}
		seen[category.Label] = struct{}{}
	}
	return nil
}

// percent converts a similarity to a truncated integer percentage. The small
// epsilon absorbs float noise such as 0.29*100 = 28.999999999999996.
func percent(score float64) int {
	return int(math.Floor(score*100 + 1e-9))
}
