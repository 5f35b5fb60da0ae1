package categorizer

import (
	"time"

	"github.com/FrenchMajesty/complaint-clusterer/oracle"
)

// NovelLabel is the synthetic category for responses that matched no known category
const NovelLabel = "Novel"

// Response is one free-text response within a domain
type Response struct {
	// Index is the response's position within its domain
	Index int `json:"index"`

	// Text is the response as displayed, with any ordinal marker removed
	Text string `json:"text"`

	// Normalized is Text after normalization; it is what gets scored
	Normalized string `json:"-"`
}

// Category is a known category label of a domain
type Category struct {
	Index int
	Label string
}

// Domain is one organizational partition of responses and categories
type Domain struct {
	Name       string
	Responses  []Response
	Categories []Category
}

// NewResponse builds a Response, normalizing its text for scoring
func NewResponse(index int, text string) Response {
	return Response{
		Index:      index,
		Text:       text,
		Normalized: oracle.Normalize(text),
	}
}

// NewDomain builds a Domain from ordered response texts and category labels
func NewDomain(name string, responses []string, categories []string) Domain {
	d := Domain{
		Name:       name,
		Responses:  make([]Response, len(responses)),
		Categories: make([]Category, len(categories)),
	}
	for i, text := range responses {
		d.Responses[i] = NewResponse(i, text)
	}
	for i, label := range categories {
		d.Categories[i] = Category{Index: i, Label: label}
	}
	return d
}

// ScoredResponse is a response assigned to a known category
type ScoredResponse struct {
	Response

	// Similarity is the raw oracle score in (0,1]
	Similarity float64 `json:"similarity"`

	// Score is Similarity as a truncated integer percentage, used for display and ranking
	Score int `json:"score"`
}

// Assignment is the Category Matcher's output for one domain
type Assignment struct {
	// Categories are the domain's known categories, in column order
	Categories []Category

	// Buckets holds the responses assigned to each category, parallel to
	// Categories and sorted by Score descending
	Buckets [][]ScoredResponse

	// Novel holds the unmatched responses in encounter order
	Novel []Response
}

// Total returns the number of responses covered by the assignment
func (a *Assignment) Total() int {
	total := len(a.Novel)
	for _, bucket := range a.Buckets {
		total += len(bucket)
	}
	return total
}

// NovelCluster is one group of mutually linked novel responses
type NovelCluster struct {
	ID      int
	Members []Response
}

// CategoryBucket is a known category and its ranked responses
type CategoryBucket struct {
	Label     string
	Responses []ScoredResponse
}

// DomainResult is the categorization output of a single domain
type DomainResult struct {
	Domain     string
	Categories []CategoryBucket
	Novel      []NovelCluster
}

// Metrics summarizes a categorization run
type Metrics struct {
	Domains       int
	Responses     int
	Categorized   int
	Novel         int
	NovelClusters int
	Duration      time.Duration
}

// Results is the output of a categorization run, keyed by domain name
type Results struct {
	RunID   string
	Domains map[string]*DomainResult
	Metrics Metrics
}
