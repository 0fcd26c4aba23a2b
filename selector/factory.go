package selector

import "github.com/patrikhermansson/metricspace/core"

// Params mirrors spec.md §6's pivot_selector.params object. Only the
// fields relevant to the selector named by Name need be set.
type Params struct {
	Seed               int64   `json:"seed"`
	CandidateSize      int     `json:"candidate_size"`
	EvaluationSize     int     `json:"evaluation_size"`
	ObjectiveFunction  string  `json:"objective_function"`
	RadiusThreshold    float64 `json:"radius_threshold"`
	VarianceWeight     float64 `json:"variance_weight"`
	CandidateSelector  string  `json:"candidate_selector"`
	EvaluationSelector string  `json:"evaluation_selector"`
	Indices            []int   `json:"indices"`
}

// New builds the selector named in configuration (spec §6's
// pivot_selector.name: "Manual", "Random", "Max Variance", "Farthest
// First Traversal", "Incremental Sampling"). Manual takes its pivot
// positions from Params.Indices rather than prompting interactively.
func New(name string, p Params) (Selector, error) {
	switch name {
	case "Manual":
		return NewManual(p.Indices), nil
	case "Random":
		return NewRandom(p.Seed), nil
	case "Max Variance":
		return NewMaxVariance(p.Seed), nil
	case "Farthest First Traversal":
		return NewFFT(p.Seed), nil
	case "Incremental Sampling":
		objective, err := NewObjectiveFunction(p.ObjectiveFunction, p.RadiusThreshold, p.VarianceWeight)
		if err != nil {
			return nil, err
		}
		candidateSel, err := newIndexSelector(p.CandidateSelector, p.Seed)
		if err != nil {
			return nil, err
		}
		evalSel, err := New(orDefault(p.EvaluationSelector, "Random"), p)
		if err != nil {
			return nil, err
		}
		return &IncrementalSampling{
			CandidateSize:      p.CandidateSize,
			EvaluationSize:     p.EvaluationSize,
			CandidateSelector:  candidateSel,
			EvaluationSelector: evalSel,
			Objective:          objective,
		}, nil
	default:
		return nil, core.NewError(core.ConfigError, "unknown pivot selector: "+name)
	}
}

func newIndexSelector(name string, seed int64) (IndexSelector, error) {
	switch orDefault(name, "Random") {
	case "Manual":
		return nil, core.NewError(core.ConfigError, "Manual selector cannot serve as an Incremental Sampling candidate selector")
	case "Random":
		return NewRandom(seed), nil
	case "Max Variance":
		return NewMaxVariance(seed), nil
	case "Farthest First Traversal":
		return NewFFT(seed), nil
	default:
		return nil, core.NewError(core.ConfigError, "unknown candidate selector: "+name)
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
