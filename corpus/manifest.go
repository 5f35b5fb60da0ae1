package corpus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	categorizer "github.com/FrenchMajesty/complaint-clusterer"
)

// Manifest describes a corpus in a single YAML document. Each domain lists its
// responses and categories inline or points at a file holding them; relative
// paths resolve against the manifest's directory.
//
//	domains:
//	  - name: ward-12
//	    responses_file: responses/ward-12.txt
//	    categories: [water supply, garbage collection]
type Manifest struct {
	Domains []ManifestDomain `yaml:"domains"`
}

// ManifestDomain is one domain entry of a Manifest
type ManifestDomain struct {
	Name           string   `yaml:"name"`
	Responses      []string `yaml:"responses,omitempty"`
	ResponsesFile  string   `yaml:"responses_file,omitempty"`
	Categories     []string `yaml:"categories,omitempty"`
	CategoriesFile string   `yaml:"categories_file,omitempty"`
}

// ManifestCorpus reads domains from a YAML manifest file
type ManifestCorpus struct {
	Path   string
	Logger *slog.Logger
}

// NewManifestCorpus creates a corpus backed by the manifest at path
func NewManifestCorpus(path string, logger *slog.Logger) *ManifestCorpus {
	return &ManifestCorpus{Path: path, Logger: logger}
}

// Domains implements categorizer.Corpus
func (m *ManifestCorpus) Domains(ctx context.Context) ([]categorizer.Domain, error) {
	return LoadManifest(m.Path, m.Logger)
}

// LoadManifest parses the manifest at path and loads every domain it lists,
// in manifest order.
func LoadManifest(path string, logger *slog.Logger) ([]categorizer.Domain, error) {
	if logger == nil {
		logger = slog.Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}

	base := filepath.Dir(path)
	seen := make(map[string]struct{}, len(manifest.Domains))
	domains := make([]categorizer.Domain, 0, len(manifest.Domains))
	for i, entry := range manifest.Domains {
		if err := entry.validate(); err != nil {
			return nil, fmt.Errorf("manifest %s domain %d: %w", path, i, err)
		}
		if _, dup := seen[entry.Name]; dup {
			return nil, fmt.Errorf("manifest %s: duplicate domain %s", path, entry.Name)
		}
		seen[entry.Name] = struct{}{}

		responses := stripAll(entry.Responses)
		if entry.ResponsesFile != "" {
			if responses, err = readResponses(resolve(base, entry.ResponsesFile)); err != nil {
				return nil, err
			}
		}

		labels := entry.Categories
		if entry.CategoriesFile != "" {
			if labels, err = readFile(resolve(base, entry.CategoriesFile)); err != nil {
				return nil, err
			}
		}

		domains = append(domains, categorizer.NewDomain(entry.Name, responses, CleanCategories(entry.Name, labels, logger)))
	}

	logger.Info("corpus_loaded", "source", path, "domains", len(domains))
	return domains, nil
}

func (d ManifestDomain) validate() error {
	if d.Name == "" {
		return errors.New("name is required")
	}
	if len(d.Responses) > 0 && d.ResponsesFile != "" {
		return fmt.Errorf("domain %s sets both responses and responses_file", d.Name)
	}
	if len(d.Categories) > 0 && d.CategoriesFile != "" {
		return fmt.Errorf("domain %s sets both categories and categories_file", d.Name)
	}
	return nil
}

func resolve(base, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
