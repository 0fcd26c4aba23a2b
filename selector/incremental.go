package selector

import "github.com/patrikhermansson/metricspace/core"

// IncrementalSampling builds a pivot set greedily: it samples a
// candidate pool and an evaluation set via inner selectors, then for
// k rounds appends the candidate that maximizes the objective
// function's score against the evaluation set.
type IncrementalSampling struct {
	CandidateSize      int
	EvaluationSize     int
	CandidateSelector  IndexSelector
	EvaluationSelector Selector
	Objective          ObjectiveFunction
}

func (s *IncrementalSampling) Select(data []core.Object, d core.DistanceFunc, k int) ([]core.Object, []core.Object, error) {
	indices, err := s.SelectIndices(data, d, k)
	if err != nil {
		return nil, nil, err
	}
	chosen, remainder := splitByIndices(data, indices)
	return chosen, remainder, nil
}

func (s *IncrementalSampling) SelectIndices(data []core.Object, d core.DistanceFunc, k int) ([]int, error) {
	n := len(data)
	k = clampK(k, n)
	if k == 0 {
		return nil, nil
	}

	candidateIdx, err := s.CandidateSelector.SelectIndices(data, d, s.CandidateSize)
	if err != nil {
		return nil, err
	}
	evalSet, _, err := s.EvaluationSelector.Select(data, d, s.EvaluationSize)
	if err != nil {
		return nil, err
	}

	// candidates tracks the still-available pool, as positions into data.
	candidates := append([]int(nil), candidateIdx...)
	chosen := make([]int, 0, k)
	var pivotObjs []core.Object

	for round := 0; round < k; round++ {
		if len(candidates) == 0 {
			return nil, core.NewError(core.InsufficientCandidates,
				"incremental sampling exhausted candidate pool before selecting k pivots")
		}
		bestPos := -1
		var bestScore float64
		bestInit := false
		for pos, c := range candidates {
			trial := append(append([]core.Object(nil), pivotObjs...), data[c])
			score, err := s.Objective.Evaluate(evalSet, d, trial)
			if err != nil {
				return nil, err
			}
			if !bestInit || score > bestScore {
				bestScore = score
				bestPos = pos
				bestInit = true
			}
		}
		chosenIdx := candidates[bestPos]
		chosen = append(chosen, chosenIdx)
		pivotObjs = append(pivotObjs, data[chosenIdx])
		candidates = append(candidates[:bestPos], candidates[bestPos+1:]...)
	}

	if len(chosen) < k {
		return nil, core.NewError(core.InsufficientCandidates,
			"incremental sampling selected fewer than k pivots")
	}

	return chosen, nil
}

var _ Selector = (*IncrementalSampling)(nil)
var _ IndexSelector = (*IncrementalSampling)(nil)
