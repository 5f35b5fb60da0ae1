package categorizer

import (
	"context"
	"fmt"
	"time"

	"github.com/FrenchMajesty/complaint-clusterer/utils/disjoint_set"
)

// NovelLink is an unordered pair of positions in the novel bucket, stored
// with A <= B. A == B is a response with no positively scored peer.
type NovelLink struct {
	A int
	B int
}

func newNovelLink(i, j int) NovelLink {
	if j < i {
		i, j = j, i
	}
	return NovelLink{A: i, B: j}
}

// Cluster partitions the novel responses into groups of mutually similar
// responses. Each response is linked to its most similar peer and links that
// share a response are merged transitively.
func (c *Categorizer) Cluster(ctx context.Context, novel []Response) ([]NovelCluster, error) {
	start := time.Now()
	matrix, err := c.peerMatrix(ctx, novel)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("novel_matrix_populated",
		"size", len(novel),
		"elapsed", time.Since(start),
	)

	links := BestPeerLinks(matrix)

	dsu := disjoint_set.NewDSU(len(novel))
	for _, link := range links {
		dsu.Union(link.A, link.B)
	}
	c.logger.Debug("novel_links_merged",
		"links", len(links),
		"clusters", dsu.CountSets(),
	)

	sets := dsu.Sets()
	clusters := make([]NovelCluster, len(sets))
	for id, set := range sets {
		members := make([]Response, len(set))
		for i, pos := range set {
			members[i] = novel[pos]
		}
		clusters[id] = NovelCluster{ID: id, Members: members}
	}

	if err := verifyPartition(novel, clusters); err != nil {
		return nil, err
	}
	return clusters, nil
}

// peerMatrix scores every unordered pair of novel responses once and mirrors
// the score. The diagonal is left at Sentinel.
func (c *Categorizer) peerMatrix(ctx context.Context, novel []Response) (*SimilarityMatrix, error) {
	n := len(novel)
	matrix := NewSimilarityMatrix(n, n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			score, err := c.oracle.Score(ctx, novel[i].Normalized, novel[j].Normalized)
			if err != nil {
				return nil, fmt.Errorf("failed to score novel responses %d and %d: %w", novel[i].Index, novel[j].Index, err)
			}
			if err := matrix.Set(i, j, score); err != nil {
				return nil, err
			}
			if err := matrix.Set(j, i, score); err != nil {
				return nil, err
			}
		}
	}
	if err := matrix.CheckPopulated(true); err != nil {
		return nil, err
	}
	return matrix, nil
}

// BestPeerLinks links every row of a square peer matrix to the column holding
// its highest score above zero, or to itself when there is none. Duplicate
// pairs are dropped; links keep the order in which they were first found.
func BestPeerLinks(matrix *SimilarityMatrix) []NovelLink {
	seen := make(map[NovelLink]struct{}, matrix.Rows())
	links := make([]NovelLink, 0, matrix.Rows())
	for i := 0; i < matrix.Rows(); i++ {
		peer := i
		if col, best := matrix.RowMax(i, i); col >= 0 && best > 0 {
			peer = col
		}
		link := newNovelLink(i, peer)
		if _, ok := seen[link]; ok {
			continue
		}
		seen[link] = struct{}{}
		links = append(links, link)
	}
	return links
}

// verifyPartition checks that every novel response appears in exactly one cluster
func verifyPartition(novel []Response, clusters []NovelCluster) error {
	want := make(map[int]int, len(novel))
	for _, r := range novel {
		want[r.Index]++
	}

	seen := make(map[int]int, len(novel))
	for _, cluster := range clusters {
		if len(cluster.Members) == 0 {
			return fmt.Errorf("%w: cluster %d is empty", ErrPartitionViolation, cluster.ID)
		}
		for _, r := range cluster.Members {
			seen[r.Index]++
			if seen[r.Index] > want[r.Index] {
				return fmt.Errorf("%w: response %d appears in more than one cluster", ErrPartitionViolation, r.Index)
			}
		}
	}

	for index, count := range want {
		if seen[index] != count {
			return fmt.Errorf("%w: response %d is missing from the clusters", ErrPartitionViolation, index)
		}
	}
	return nil
}
