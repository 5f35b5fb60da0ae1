// Command categorize assigns free-text responses to the known categories of
// their domain and clusters the responses that match none of them.
//
// Usage:
//
//	categorize --responses data/responses --categories data/categories --out results/
//	categorize --manifest corpus.yaml --oracle voyage --stdout
//	categorize --responses data/responses --categories data/categories --watch
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	categorizer "github.com/FrenchMajesty/complaint-clusterer"
	"github.com/FrenchMajesty/complaint-clusterer/corpus"
	"github.com/FrenchMajesty/complaint-clusterer/internal/config"
	"github.com/FrenchMajesty/complaint-clusterer/internal/logging"
	"github.com/FrenchMajesty/complaint-clusterer/oracle"
)

type options struct {
	responses  string
	categories string
	manifest   string
	oracle     string
	out        string
	workers    int
	stdout     bool
	watch      bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "categorize",
		Short: "Categorize responses and cluster the novel ones",
		Long: `Scores every response of each domain against the domain's categories,
assigns it to the best match, and groups responses that match no category into
clusters of similar responses. Domains are read either from a responses
directory and a categories directory paired by file name, or from a YAML
manifest.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.responses, "responses", "", "directory of per-domain response files")
	flags.StringVar(&opts.categories, "categories", "", "directory of per-domain category files")
	flags.StringVar(&opts.manifest, "manifest", "", "YAML manifest listing the domains")
	flags.StringVar(&opts.oracle, "oracle", "", "similarity oracle: lexical, voyage or openai (default from ORACLE_PROVIDER)")
	flags.StringVar(&opts.out, "out", "results", "output directory, or a .json file path")
	flags.IntVar(&opts.workers, "workers", 0, "domains processed concurrently (default from CATEGORIZE_WORKERS)")
	flags.BoolVar(&opts.stdout, "stdout", false, "write the results to stdout instead of a file")
	flags.BoolVar(&opts.watch, "watch", false, "rerun whenever the corpus files change")
	cmd.MarkFlagsMutuallyExclusive("manifest", "responses")
	cmd.MarkFlagsMutuallyExclusive("manifest", "categories")
	cmd.MarkFlagsRequiredTogether("responses", "categories")

	return cmd
}

func run(cmd *cobra.Command, opts *options) error {
	if opts.manifest == "" && opts.responses == "" {
		return errors.New("either --manifest or --responses with --categories is required")
	}

	cfg := config.Load()
	if opts.oracle != "" {
		cfg.Oracle.Provider = strings.ToLower(opts.oracle)
	}
	if opts.workers != 0 {
		cfg.Workers = opts.workers
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		return err
	}
	config.LogEnvStatus(cfg, logger)

	similarity, cache, err := buildOracle(cfg, logger)
	if err != nil {
		return err
	}

	c, err := categorizer.NewCategorizer(categorizer.Config{
		Oracle:      similarity,
		Logger:      logger,
		Parallelism: cfg.Workers,
	})
	if err != nil {
		return fmt.Errorf("failed to create categorizer: %w", err)
	}

	source := selectCorpus(opts, logger)
	if err := runOnce(cmd, opts, c, source, cache, logger); err != nil {
		return err
	}
	if !opts.watch {
		return nil
	}
	return watch(cmd, opts, logger, func() error {
		return runOnce(cmd, opts, c, source, cache, logger)
	})
}

// runOnce categorizes the corpus and writes the results
func runOnce(cmd *cobra.Command, opts *options, c *categorizer.Categorizer, source categorizer.Corpus, cache *oracle.CachedEmbedder, logger *slog.Logger) error {
	results, err := c.Run(cmd.Context(), source)
	if err != nil {
		return err
	}

	if cache != nil {
		stats := cache.Stats()
		logger.Info("embedding_cache_stats",
			"hits", stats.Hits,
			"store_hits", stats.StoreHits,
			"misses", stats.Misses,
			"unembeddable", stats.Unembedable,
			"hit_rate", stats.HitRate(),
		)
	}

	if opts.stdout {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(results.Domains); err != nil {
			return fmt.Errorf("failed to write results: %w", err)
		}
		return nil
	}

	path, err := resultStore(opts.out).Save(results)
	if err != nil {
		return err
	}
	logger.Info("results_written", "run_id", results.RunID, "path", path)
	return nil
}

// watch reruns fn after every settled change to the corpus files until the
// command's context ends. A failed rerun is logged and watching continues.
func watch(cmd *cobra.Command, opts *options, logger *slog.Logger, fn func() error) error {
	watcher, err := corpus.NewWatcher(corpus.DefaultDebounce, logger)
	if err != nil {
		return err
	}
	defer watcher.Close()

	paths := []string{opts.manifest}
	if opts.manifest == "" {
		paths = []string{opts.responses, opts.categories}
	}
	changes, err := watcher.Watch(cmd.Context(), paths...)
	if err != nil {
		return err
	}

	logger.Info("watching_corpus", "paths", paths)
	for range changes {
		if err := fn(); err != nil {
			logger.Error("rerun_failed", "err", err)
		}
	}
	return nil
}

func selectCorpus(opts *options, logger *slog.Logger) categorizer.Corpus {
	if opts.manifest != "" {
		return corpus.NewManifestCorpus(opts.manifest, logger)
	}
	return corpus.NewDirCorpus(opts.responses, opts.categories, logger)
}

func resultStore(out string) categorizer.ResultStore {
	if strings.EqualFold(filepath.Ext(out), ".json") {
		return categorizer.NewFileResultStoreAt(out)
	}
	return categorizer.NewFileResultStore(out)
}
