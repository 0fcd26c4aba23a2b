package runner

import (
	"github.com/rs/zerolog/log"

	"github.com/patrikhermansson/metricspace/core"
	"github.com/patrikhermansson/metricspace/ght"
	"github.com/patrikhermansson/metricspace/loader"
	"github.com/patrikhermansson/metricspace/lpt"
	"github.com/patrikhermansson/metricspace/mvpt"
	"github.com/patrikhermansson/metricspace/pivot"
	"github.com/patrikhermansson/metricspace/selector"
	"github.com/patrikhermansson/metricspace/vpt"
)

// builtIndex adapts a built tree's package-level Search function (and
// the distance function it was built with) to the read-only core.Index
// interface exposed to the rest of the driver.
type builtIndex struct {
	search func(q core.Object, r float64) ([]core.Neighbor, int, error)
	stats  core.IndexStats
}

func (b *builtIndex) RangeSearch(q core.Object, r float64) ([]core.Neighbor, int, error) {
	return b.search(q, r)
}

func (b *builtIndex) Stats() core.IndexStats { return b.stats }

// Build loads the configured dataset, resolves the distance function
// and pivot selector, bulk-loads the requested index structure, and
// returns a read-only Index alongside the distance function and the
// loaded dataset (Run uses the dataset to resolve "auto" query points
// and as the query source in batch mode).
func Build(cfg Config) (core.Index, core.DistanceFunc, []core.Object, error) {
	data, err := loadDataset(cfg.Dataset)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(data) == 0 {
		return nil, nil, nil, core.NewError(core.DomainError, "dataset is empty")
	}

	d, distName, err := resolveDistanceFunc(cfg.DistanceFunction, data[0].Kind)
	if err != nil {
		return nil, nil, nil, err
	}

	sel, err := selector.New(cfg.PivotSelector.Name, cfg.PivotSelector.Params)
	if err != nil {
		return nil, nil, nil, err
	}

	dim := 0
	if data[0].Kind == core.KindVector {
		dim = len(data[0].Vector)
	}

	search, err := buildIndexStructure(cfg.IndexStructure, data, d, sel)
	if err != nil {
		return nil, nil, nil, err
	}

	idx := &builtIndex{
		search: search,
		stats:  core.IndexStats{Count: len(data), Dimension: dim, Distance: distName},
	}
	log.Info().Str("index", cfg.IndexStructure.Name).Int("count", len(data)).Msg("runner: built index")
	return idx, d, data, nil
}

func loadDataset(cfg DatasetConfig) ([]core.Object, error) {
	switch cfg.Format {
	case "umad_vector":
		return loader.UMADVectors(cfg.Path, cfg.LoadCount, cfg.Dim)
	case "umad_string":
		return loader.UMADStrings(cfg.Path, cfg.LoadCount)
	case "fasta":
		return loader.FASTA(cfg.Path, cfg.LoadCount)
	case "fvecs":
		return loader.FVECS(cfg.Path, cfg.LoadCount)
	default:
		return nil, core.NewError(core.ConfigError, "unknown dataset format: "+cfg.Format)
	}
}

func resolveDistanceFunc(cfg DistanceFunctionConfig, kind core.Kind) (core.DistanceFunc, string, error) {
	if kind == core.KindVector {
		name := cfg.Vector
		ctor, ok := core.Distances[name]
		if !ok {
			return nil, "", core.NewError(core.ConfigError, "unknown vector distance function: "+name)
		}
		return ctor(), name, nil
	}

	name := cfg.String
	if name == "Weighted Edit Distance" {
		if len(cfg.WeightedEditGap) != 1 {
			return nil, "", core.NewError(core.ConfigError, "weighted_edit_gap must be a single character")
		}
		scores := make(map[[2]byte]float64, len(cfg.WeightedEditScores))
		for k, v := range cfg.WeightedEditScores {
			if len(k) != 2 {
				return nil, "", core.NewError(core.ConfigError, "weighted_edit_scores key must be two characters: "+k)
			}
			scores[[2]byte{k[0], k[1]}] = v
		}
		matrix := core.ScoreMatrix{Scores: scores, Gap: cfg.WeightedEditGap[0]}
		return core.WeightedEdit(matrix), name, nil
	}

	ctor, ok := core.Distances[name]
	if !ok {
		return nil, "", core.NewError(core.ConfigError, "unknown string distance function: "+name)
	}
	return ctor(), name, nil
}

func buildIndexStructure(cfg IndexStructureConfig, data []core.Object, d core.DistanceFunc, sel selector.Selector) (func(q core.Object, r float64) ([]core.Neighbor, int, error), error) {
	switch cfg.Name {
	case "Pivot Table":
		table, err := pivot.Build(data, d, sel, cfg.MaxLeafSize, cfg.PivotK)
		if err != nil {
			return nil, err
		}
		return func(q core.Object, r float64) ([]core.Neighbor, int, error) {
			return pivot.Search(table, q, r, d)
		}, nil

	case "Vantage Point Tree":
		root, err := vpt.Build(data, d, sel, cfg.MaxLeafSize, cfg.PivotK)
		if err != nil {
			return nil, err
		}
		return func(q core.Object, r float64) ([]core.Neighbor, int, error) {
			return vpt.Search(root, q, r, d)
		}, nil

	case "General Hyper-plane Tree":
		root, err := ght.Build(data, d, sel, cfg.MaxLeafSize, cfg.PivotK)
		if err != nil {
			return nil, err
		}
		return func(q core.Object, r float64) ([]core.Neighbor, int, error) {
			return ght.Search(root, q, r, d)
		}, nil

	case "Multiple Vantage Point Tree":
		root, err := mvpt.Build(data, d, sel, cfg.MaxLeafSize, cfg.PivotK, cfg.MVPTRegions, cfg.MVPTInternalPivots)
		if err != nil {
			return nil, err
		}
		return func(q core.Object, r float64) ([]core.Neighbor, int, error) {
			return mvpt.Search(root, q, r, d)
		}, nil

	case "Linear Partition Tree":
		root, err := lpt.Build(data, d, sel, cfg.MaxLeafSize, cfg.PivotK, cfg.LPTMatrixA, cfg.LPTNumRegions)
		if err != nil {
			return nil, err
		}
		return func(q core.Object, r float64) ([]core.Neighbor, int, error) {
			return lpt.Search(root, q, r, d)
		}, nil

	default:
		return nil, core.NewError(core.ConfigError, "unknown index structure: "+cfg.Name)
	}
}
