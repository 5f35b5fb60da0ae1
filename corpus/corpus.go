// Package corpus loads domains of responses and category labels from disk.
//
// Responses and categories live in separate files, one item per line, and are
// paired by domain name: the file stem. Response lines may carry a leading
// ordinal marker such as "12- " which is removed on load.
package corpus

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	categorizer "github.com/FrenchMajesty/complaint-clusterer"
)

var ordinalMarker = regexp.MustCompile(`^\s*\d+\s*-(\s+|$)`)

// StripOrdinal removes a leading "N- " marker from a response line. The hyphen
// must be followed by whitespace or end the line, so hyphenated text such as
// "24-hour" is not a marker. Lines without a marker are returned trimmed but
// otherwise unchanged.
func StripOrdinal(line string) string {
	return strings.TrimSpace(ordinalMarker.ReplaceAllString(line, ""))
}

// ReadLines returns the non-blank lines of r with surrounding whitespace and
// a leading byte order mark removed.
func ReadLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lines := make([]string, 0)
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
			first = false
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// Static is a Corpus over domains already in memory
type Static []categorizer.Domain

// Domains implements categorizer.Corpus
func (s Static) Domains(context.Context) ([]categorizer.Domain, error) {
	return s, nil
}

// DirCorpus reads domains from a responses directory and a categories directory
type DirCorpus struct {
	ResponsesDir  string
	CategoriesDir string
	Logger        *slog.Logger
}

// NewDirCorpus creates a corpus backed by two directories of per-domain files
func NewDirCorpus(responsesDir, categoriesDir string, logger *slog.Logger) *DirCorpus {
	return &DirCorpus{ResponsesDir: responsesDir, CategoriesDir: categoriesDir, Logger: logger}
}

// Domains implements categorizer.Corpus
func (d *DirCorpus) Domains(ctx context.Context) ([]categorizer.Domain, error) {
	return LoadDir(d.ResponsesDir, d.CategoriesDir, d.Logger)
}

// LoadDir pairs the files of responsesDir and categoriesDir by stem. A domain
// present on only one side is still returned: without categories all of its
// responses are novel, without responses its buckets are empty. Domains are
// sorted by name.
func LoadDir(responsesDir, categoriesDir string, logger *slog.Logger) ([]categorizer.Domain, error) {
	if logger == nil {
		logger = slog.Default()
	}

	responseFiles, err := listDomainFiles(responsesDir)
	if err != nil {
		return nil, err
	}
	categoryFiles, err := listDomainFiles(categoriesDir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(responseFiles))
	for name := range responseFiles {
		names = append(names, name)
	}
	for name := range categoryFiles {
		if _, ok := responseFiles[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	domains := make([]categorizer.Domain, 0, len(names))
	for _, name := range names {
		var responses, labels []string

		if path, ok := responseFiles[name]; ok {
			if responses, err = readResponses(path); err != nil {
				return nil, err
			}
		} else {
			logger.Warn("domain_without_responses", "domain", name)
		}

		if path, ok := categoryFiles[name]; ok {
			if labels, err = readFile(path); err != nil {
				return nil, err
			}
		} else {
			logger.Warn("domain_without_categories", "domain", name)
		}

		domains = append(domains, categorizer.NewDomain(name, responses, CleanCategories(name, labels, logger)))
	}

	logger.Info("corpus_loaded", "source", responsesDir, "domains", len(domains))
	return domains, nil
}

// CleanCategories trims labels and drops blanks, duplicates and the reserved
// Novel label, keeping first occurrences in order.
func CleanCategories(domain string, labels []string, logger *slog.Logger) []string {
	if logger == nil {
		logger = slog.Default()
	}

	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		if label == categorizer.NovelLabel {
			logger.Warn("reserved_category_dropped", "domain", domain, "label", label)
			continue
		}
		if _, ok := seen[label]; ok {
			logger.Debug("duplicate_category_dropped", "domain", domain, "label", label)
			continue
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}
	return out
}

// listDomainFiles maps the stem of every visible regular file in dir to its path
func listDomainFiles(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	files := make(map[string]string, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if prev, dup := files[stem]; dup {
			return nil, fmt.Errorf("domain %s is defined by both %s and %s", stem, filepath.Base(prev), entry.Name())
		}
		files[stem] = filepath.Join(dir, entry.Name())
	}
	return files, nil
}

func readFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	lines, err := ReadLines(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return lines, nil
}

func readResponses(path string) ([]string, error) {
	lines, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return stripAll(lines), nil
}

// stripAll removes ordinal markers and drops lines left empty
func stripAll(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if text := StripOrdinal(line); text != "" {
			out = append(out, text)
		}
	}
	return out
}
