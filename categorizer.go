package categorizer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/FrenchMajesty/complaint-clusterer/oracle"
)

// Categorizer assigns responses to known categories and clusters the rest
type Categorizer struct {
	oracle      SimilarityOracle
	logger      *slog.Logger
	parallelism int
}

// NewCategorizer creates a new Categorizer with the given configuration
func NewCategorizer(cfg Config) (*Categorizer, error) {
	cfg.applyDefaults()

	var similarity SimilarityOracle
	if cfg.Oracle != nil {
		similarity = cfg.Oracle
	} else {
		similarity = oracle.NewLexical()
	}

	return &Categorizer{
		oracle:      similarity,
		logger:      cfg.Logger,
		parallelism: cfg.Parallelism,
	}, nil
}

// ProcessDomain categorizes one domain and clusters its novel responses
func (c *Categorizer) ProcessDomain(ctx context.Context, domain Domain) (*DomainResult, error) {
	start := time.Now()

	assignment, err := c.Categorize(ctx, domain.Responses, domain.Categories)
	if err != nil {
		return nil, fmt.Errorf("failed to categorize domain %s: %w", domain.Name, err)
	}

	clusters, err := c.Cluster(ctx, assignment.Novel)
	if err != nil {
		return nil, fmt.Errorf("failed to cluster novel responses of domain %s: %w", domain.Name, err)
	}

	result := Aggregate(domain.Name, assignment, clusters)
	c.logger.Info("domain_categorized",
		"domain", domain.Name,
		"responses", len(domain.Responses),
		"categories", len(domain.Categories),
		"novel", len(assignment.Novel),
		"novel_clusters", len(clusters),
		"elapsed", time.Since(start),
	)
	return result, nil
}

// Run categorizes every domain of the corpus. Domains are independent; with
// Parallelism above one they are processed concurrently, otherwise in order.
func (c *Categorizer) Run(ctx context.Context, corpus Corpus) (*Results, error) {
	start := time.Now()
	runID := uuid.New().String()

	domains, err := corpus.Domains(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load domains: %w", err)
	}
	c.logger.Info("run_started", "run_id", runID, "domains", len(domains), "parallelism", c.parallelism)

	results := &Results{
		RunID:   runID,
		Domains: make(map[string]*DomainResult, len(domains)),
	}
	inputs := make(map[string]int, len(domains))
	var mu sync.Mutex

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(c.parallelism)
	for _, domain := range domains {
		group.Go(func() error {
			result, err := c.ProcessDomain(groupCtx, domain)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			if _, dup := results.Domains[domain.Name]; dup {
				return fmt.Errorf("duplicate domain %s", domain.Name)
			}
			results.Domains[domain.Name] = result
			inputs[domain.Name] = len(domain.Responses)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	results.Metrics = summarize(results.Domains, inputs)
	results.Metrics.Duration = time.Since(start)
	c.logger.Info("run_completed",
		"run_id", runID,
		"domains", results.Metrics.Domains,
		"responses", results.Metrics.Responses,
		"categorized", results.Metrics.Categorized,
		"novel", results.Metrics.Novel,
		"novel_clusters", results.Metrics.NovelClusters,
		"elapsed", results.Metrics.Duration,
	)
	return results, nil
}

// summarize totals the run. Responses counts the inputs of each domain, not
// the outputs, so a response missing from the buckets shows up as a shortfall
// of Categorized+Novel against Responses.
func summarize(domains map[string]*DomainResult, inputs map[string]int) Metrics {
	m := Metrics{Domains: len(domains)}
	for name, d := range domains {
		m.Responses += inputs[name]
		for _, bucket := range d.Categories {
			m.Categorized += len(bucket.Responses)
		}
		for _, cluster := range d.Novel {
			m.Novel += len(cluster.Members)
		}
		m.NovelClusters += len(d.Novel)
	}
	return m
}
