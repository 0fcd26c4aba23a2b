// Package runner is the configuration driver (spec.md §4.5/§6): it
// loads a dataset, resolves a distance function and pivot selector by
// name, bulk-loads the configured index structure, and runs either
// interactive or batch queries against it.
package runner

import (
	"encoding/json"
	"os"

	"github.com/patrikhermansson/metricspace/core"
	"github.com/patrikhermansson/metricspace/lpt"
	"github.com/patrikhermansson/metricspace/selector"
)

// DatasetConfig names the dataset file and its format, plus an
// optional row/dimension cap (spec.md §6: "dataset path and row
// limit").
type DatasetConfig struct {
	Name      string `json:"name"`
	Format    string `json:"format"`
	Path      string `json:"path"`
	LoadCount int    `json:"load_count"`
	Dim       int    `json:"dim"`
}

// DistanceFunctionConfig picks the vector or string distance function
// by the names of spec.md §6. WeightedEditScores/WeightedEditGap are
// only consulted when String == "Weighted Edit Distance" (the score
// matrix has no other natural home in the configuration key list).
type DistanceFunctionConfig struct {
	Vector             string            `json:"vector"`
	String             string            `json:"string"`
	WeightedEditScores map[string]float64 `json:"weighted_edit_scores"`
	WeightedEditGap    string            `json:"weighted_edit_gap"`
}

// PivotSelectorConfig names a selector and carries its parameters.
type PivotSelectorConfig struct {
	Name   string          `json:"name"`
	Params selector.Params `json:"params"`
}

// IndexStructureConfig names the tree to build and carries every
// structure-specific parameter spec.md §6 lists.
type IndexStructureConfig struct {
	Name               string     `json:"name"`
	MaxLeafSize        int        `json:"max_leaf_size"`
	PivotK             int        `json:"pivot_k"`
	MVPTRegions        int        `json:"mvpt_regions"`
	MVPTInternalPivots int        `json:"mvpt_internal_pivots"`
	LPTMatrixA         lpt.Matrix `json:"lpt_matrix_a"`
	LPTNumRegions      int        `json:"lpt_num_regions"`
}

// QueryConfig is one entry of the queries[] list. QueryPoint is either
// the literal "auto" (resolves to the first loaded object) or a
// space-separated vector / raw string, depending on the dataset kind.
type QueryConfig struct {
	Radius      float64 `json:"radius"`
	QueryPoint  string  `json:"query_point"`
	Description string  `json:"description"`
}

// Config mirrors spec.md §6's configuration file key list.
type Config struct {
	Dataset          DatasetConfig          `json:"dataset"`
	DistanceFunction DistanceFunctionConfig `json:"distance_function"`
	PivotSelector    PivotSelectorConfig    `json:"pivot_selector"`
	IndexStructure   IndexStructureConfig   `json:"index_structure"`
	Queries          []QueryConfig          `json:"queries"`
	RunMode          string                 `json:"run_mode"`
	BatchRadius      float64                `json:"batch_radius"`
	BatchQueryNum    int                    `json:"batch_query_num"`
}

// LoadConfig reads and parses a JSON configuration file.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, core.Wrap(core.IOError, "read config file", err)
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return cfg, core.Wrap(core.ConfigError, "parse config JSON", err)
	}
	return cfg, nil
}

// DefaultConfig is used when the CLI is given no config path (spec.md
// §6: "absent, it reads a default config and falls back to
// interactive prompts").
func DefaultConfig() Config {
	return Config{
		Dataset: DatasetConfig{
			Name:   "default",
			Format: "umad_vector",
			Path:   "data.umad",
		},
		DistanceFunction: DistanceFunctionConfig{Vector: "Euclidean Distance"},
		PivotSelector: PivotSelectorConfig{
			Name:   "Random",
			Params: selector.Params{Seed: core.GetSeed()},
		},
		IndexStructure: IndexStructureConfig{
			Name:        "Pivot Table",
			MaxLeafSize: 50,
			PivotK:      3,
		},
		RunMode: "interactive",
	}
}
