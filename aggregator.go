package categorizer

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"

	json "github.com/goccy/go-json"
)

// Aggregate assembles the output mapping of one domain from the matcher's
// assignment and the clustering of its Novel bucket.
func Aggregate(domain string, assignment *Assignment, clusters []NovelCluster) *DomainResult {
	result := &DomainResult{
		Domain:     domain,
		Categories: make([]CategoryBucket, len(assignment.Categories)),
		Novel:      clusters,
	}
	for i, category := range assignment.Categories {
		result.Categories[i] = CategoryBucket{
			Label:     category.Label,
			Responses: assignment.Buckets[i],
		}
	}
	if result.Novel == nil {
		result.Novel = make([]NovelCluster, 0)
	}
	return result
}

// Bucket returns the ranked responses of the named category
func (d *DomainResult) Bucket(label string) ([]ScoredResponse, bool) {
	for _, bucket := range d.Categories {
		if bucket.Label == label {
			return bucket.Responses, true
		}
	}
	return nil, false
}

// NovelResponses returns every response across the novel clusters
func (d *DomainResult) NovelResponses() []Response {
	out := make([]Response, 0)
	for _, cluster := range d.Novel {
		out = append(out, cluster.Members...)
	}
	return out
}

// MarshalJSON encodes the result as
// {"<category>": [{response, score}, ...], "Novel": {"<cluster id>": [response, ...]}}.
// Categories keep their column order.
func (d *DomainResult) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for _, bucket := range d.Categories {
		if err := writeMember(&buf, bucket.Label, bucket.Responses); err != nil {
			return nil, err
		}
		buf.WriteByte(',')
	}

	novel := make(map[string][]Response, len(d.Novel))
	for _, cluster := range d.Novel {
		novel[strconv.Itoa(cluster.ID)] = cluster.Members
	}
	if err := writeMember(&buf, NovelLabel, novel); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeMember(buf *bytes.Buffer, key string, value any) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}

// UnmarshalJSON decodes the mapping produced by MarshalJSON. Object key order
// is not preserved by decoding, so categories come back sorted by label and
// clusters by id.
func (d *DomainResult) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	labels := make([]string, 0, len(raw))
	for label := range raw {
		if label != NovelLabel {
			labels = append(labels, label)
		}
	}
	sort.Strings(labels)

	d.Categories = make([]CategoryBucket, 0, len(labels))
	for _, label := range labels {
		var responses []ScoredResponse
		if err := json.Unmarshal(raw[label], &responses); err != nil {
			return fmt.Errorf("failed to decode category %q: %w", label, err)
		}
		d.Categories = append(d.Categories, CategoryBucket{Label: label, Responses: responses})
	}

	d.Novel = make([]NovelCluster, 0)
	if rawNovel, ok := raw[NovelLabel]; ok {
		var clusters map[string][]Response
		if err := json.Unmarshal(rawNovel, &clusters); err != nil {
			return fmt.Errorf("failed to decode novel clusters: %w", err)
		}
		for key, members := range clusters {
			id, err := strconv.Atoi(key)
			if err != nil {
				return fmt.Errorf("invalid novel cluster id %q: %w", key, err)
			}
			d.Novel = append(d.Novel, NovelCluster{ID: id, Members: members})
		}
		sort.Slice(d.Novel, func(i, j int) bool { return d.Novel[i].ID < d.Novel[j].ID })
	}
	return nil
}
