package categorizer_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	categorizer "github.com/FrenchMajesty/complaint-clusterer"
	"github.com/FrenchMajesty/complaint-clusterer/pkg/testutil"
)

func scenarioResults(t *testing.T) *categorizer.Results {
	t.Helper()
	stub := testutil.NewMockOracle().
		Set("no water supply", "water", 0.9).
		Set("garbage not collected", "garbage", 0.85)
	corpus := &testutil.MockCorpus{DomainList: []categorizer.Domain{
		categorizer.NewDomain("ward-a",
			[]string{"no water supply", "garbage not collected", "street light broken"},
			[]string{"water", "garbage"},
		),
	}}

	results, err := newCategorizer(t, stub).Run(context.Background(), corpus)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return results
}

func TestDomainResult_MarshalJSON(t *testing.T) {
	results := scenarioResults(t)

	data, err := json.Marshal(results.Domains["ward-a"])
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	// Category order follows the category list, Novel comes last
	text := string(data)
	water := strings.Index(text, `"water"`)
	garbage := strings.Index(text, `"garbage"`)
	novel := strings.Index(text, `"Novel"`)
	if water < 0 || garbage < water || novel < garbage {
		t.Errorf("Unexpected key order in %s", text)
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Output is not a JSON object: %v", err)
	}

	var waterBucket []struct {
		Index      int     `json:"index"`
		Text       string  `json:"text"`
		Similarity float64 `json:"similarity"`
		Score      int     `json:"score"`
	}
	if err := json.Unmarshal(decoded["water"], &waterBucket); err != nil {
		t.Fatalf("Failed to decode water bucket: %v", err)
	}
	if len(waterBucket) != 1 || waterBucket[0].Text != "no water supply" || waterBucket[0].Score != 90 {
		t.Errorf("Unexpected water bucket: %+v", waterBucket)
	}

	var novelClusters map[string][]struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(decoded["Novel"], &novelClusters); err != nil {
		t.Fatalf("Failed to decode novel clusters: %v", err)
	}
	if len(novelClusters["0"]) != 1 || novelClusters["0"][0].Text != "street light broken" {
		t.Errorf("Unexpected novel clusters: %+v", novelClusters)
	}
}

func TestDomainResult_EmptyNovelIsObject(t *testing.T) {
	result := categorizer.Aggregate("d", &categorizer.Assignment{}, nil)

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"Novel":{}}` {
		t.Errorf("Expected {\"Novel\":{}}, got %s", data)
	}
}

func TestFileResultStore_SaveAndLoad(t *testing.T) {
	results := scenarioResults(t)
	dir := t.TempDir()

	path, err := categorizer.NewFileResultStore(dir).Save(results)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("Expected file in %s, got %s", dir, path)
	}
	base := filepath.Base(path)
	if !strings.HasPrefix(base, "results_") || !strings.HasSuffix(base, results.RunID[:8]+".json") {
		t.Errorf("Unexpected result file name %s", base)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("Expected temporary file to be renamed away")
	}

	loaded, err := categorizer.LoadResults(path)
	if err != nil {
		t.Fatalf("LoadResults failed: %v", err)
	}

	got := loaded["ward-a"]
	if got == nil {
		t.Fatalf("Missing domain ward-a in %v", loaded)
	}
	if got.Domain != "ward-a" {
		t.Errorf("Expected domain name to be restored, got %q", got.Domain)
	}

	// Decoding sorts categories by label
	labels := []string{got.Categories[0].Label, got.Categories[1].Label}
	if !reflect.DeepEqual(labels, []string{"garbage", "water"}) {
		t.Errorf("Unexpected category labels %v", labels)
	}
	garbage, _ := got.Bucket("garbage")
	if len(garbage) != 1 || garbage[0].Score != 85 || garbage[0].Index != 1 {
		t.Errorf("Unexpected garbage bucket %+v", garbage)
	}
	if len(got.Novel) != 1 || got.Novel[0].Members[0].Text != "street light broken" {
		t.Errorf("Unexpected novel clusters %+v", got.Novel)
	}
}

func TestFileResultStore_FixedPath(t *testing.T) {
	results := scenarioResults(t)
	path := filepath.Join(t.TempDir(), "nested", "out.json")

	saved, err := categorizer.NewFileResultStoreAt(path).Save(results)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if saved != path {
		t.Errorf("Expected %s, got %s", path, saved)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected results file to exist: %v", err)
	}
}

func TestLoadResults_MissingFile(t *testing.T) {
	_, err := categorizer.LoadResults(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Error("Expected an error for a missing file")
	}
}
