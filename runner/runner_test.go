package runner_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/patrikhermansson/metricspace/runner"
	"github.com/patrikhermansson/metricspace/selector"
)

func writeDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.umad")
	content := "2 6\n0 0\n1 0\n0 1\n1 1\n5 5\n6 6\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	return path
}

func baseConfig(datasetPath string) runner.Config {
	return runner.Config{
		Dataset: runner.DatasetConfig{
			Name:   "test",
			Format: "umad_vector",
			Path:   datasetPath,
		},
		DistanceFunction: runner.DistanceFunctionConfig{Vector: "Euclidean Distance"},
		PivotSelector: runner.PivotSelectorConfig{
			Name:   "Random",
			Params: selector.Params{Seed: 42},
		},
		IndexStructure: runner.IndexStructureConfig{
			Name:        "Pivot Table",
			MaxLeafSize: 10,
			PivotK:      2,
		},
	}
}

func TestBuildAndInteractiveRun(t *testing.T) {
	cfg := baseConfig(writeDataset(t))
	cfg.RunMode = "interactive"
	cfg.Queries = []runner.QueryConfig{
		{Radius: 1.5, QueryPoint: "auto", Description: "near origin"},
	}

	idx, d, data, err := runner.Build(cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(data) != 6 {
		t.Fatalf("expected 6 loaded objects, got %d", len(data))
	}
	if d == nil {
		t.Fatal("expected non-nil distance function")
	}

	var out bytes.Buffer
	if err := runner.Run(cfg, idx, d, data, strings.NewReader(""), &out); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), "near origin") {
		t.Errorf("expected output to mention query description, got: %s", out.String())
	}
}

func TestBuildAndBatchRun(t *testing.T) {
	cfg := baseConfig(writeDataset(t))
	cfg.RunMode = "batch_query_statistics"
	cfg.BatchRadius = 2
	cfg.BatchQueryNum = 4

	idx, d, data, err := runner.Build(cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var out bytes.Buffer
	if err := runner.Run(cfg, idx, d, data, strings.NewReader(""), &out); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), "distance_count") || !strings.Contains(out.String(), "hit_count") {
		t.Errorf("expected batch statistics in output, got: %s", out.String())
	}
}

func TestBuildUnknownIndexStructure(t *testing.T) {
	cfg := baseConfig(writeDataset(t))
	cfg.IndexStructure.Name = "Nonexistent Tree"

	if _, _, _, err := runner.Build(cfg); err == nil {
		t.Fatal("expected error for unknown index structure")
	}
}

func TestBuildUnknownDistanceFunction(t *testing.T) {
	cfg := baseConfig(writeDataset(t))
	cfg.DistanceFunction.Vector = "Made Up Distance"

	if _, _, _, err := runner.Build(cfg); err == nil {
		t.Fatal("expected error for unknown distance function")
	}
}

func TestInteractiveQueryLine(t *testing.T) {
	cfg := baseConfig(writeDataset(t))
	cfg.RunMode = "interactive"

	idx, d, data, err := runner.Build(cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var out bytes.Buffer
	in := strings.NewReader("3 0 0\n")
	if err := runner.Run(cfg, idx, d, data, in, &out); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), "hits=") {
		t.Errorf("expected a hit count in interactive output, got: %s", out.String())
	}
}
