package categorizer

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
)

// FileResultStore implements ResultStore using JSON files
type FileResultStore struct {
	dir  string
	path string
}

// NewFileResultStore creates a store that writes results_<timestamp>_<run>.json files into dir
func NewFileResultStore(dir string) *FileResultStore {
	return &FileResultStore{dir: dir}
}

// NewFileResultStoreAt creates a store that always writes to path
func NewFileResultStoreAt(path string) *FileResultStore {
	return &FileResultStore{path: path}
}

// Save writes the domain mapping of results and returns the file path
func (f *FileResultStore) Save(results *Results) (string, error) {
	path := f.path
	if path == "" {
		path = filepath.Join(f.dir, resultFileName(results.RunID, time.Now()))
	}

	data, err := json.MarshalIndent(results.Domains, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal results: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create result directory for %s: %w", path, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write results to file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("failed to rename results file %s: %w", path, err)
	}

	return path, nil
}

// LoadResults reads a domain mapping written by FileResultStore
func LoadResults(path string) (map[string]*DomainResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read results from file %s: %w", path, err)
	}

	domains := make(map[string]*DomainResult)
	if err := json.Unmarshal(data, &domains); err != nil {
		return nil, fmt.Errorf("failed to unmarshal results from file %s: %w", path, err)
	}
	for name, d := range domains {
		d.Domain = name
	}
	return domains, nil
}

func resultFileName(runID string, now time.Time) string {
	short := runID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("results_%s_%s.json", now.Format("20060102_150405"), short)
}
