package selector

import "github.com/patrikhermansson/metricspace/core"

// FFT selects pivots by Farthest-First Traversal: seed with one
// uniformly random point, then repeatedly add the remaining point
// whose minimum distance to the chosen set is largest. Ties are
// broken by first occurrence.
type FFT struct {
	Rng *core.Rng
}

// NewFFT builds an FFT selector seeded with seed.
func NewFFT(seed int64) *FFT {
	return &FFT{Rng: core.NewRng(seed)}
}

func (s *FFT) Select(data []core.Object, d core.DistanceFunc, k int) ([]core.Object, []core.Object, error) {
	indices, err := s.SelectIndices(data, d, k)
	if err != nil {
		return nil, nil, err
	}
	chosen, remainder := splitByIndices(data, indices)
	return chosen, remainder, nil
}

func (s *FFT) SelectIndices(data []core.Object, d core.DistanceFunc, k int) ([]int, error) {
	n := len(data)
	k = clampK(k, n)
	if k == 0 {
		return nil, nil
	}

	chosen := make([]int, 0, k)
	chosenSet := make(map[int]bool, k)

	first := s.Rng.Intn(n)
	chosen = append(chosen, first)
	chosenSet[first] = true

	// minDist[i] tracks the distance from point i to its nearest
	// already-chosen pivot; updated incrementally as pivots are added.
	minDist := make([]float64, n)
	for i := range minDist {
		minDist[i] = -1
	}

	updateMinDist := func(newPivot int) error {
		for i := 0; i < n; i++ {
			if chosenSet[i] {
				continue
			}
			dist, err := d(data[i], data[newPivot])
			if err != nil {
				return err
			}
			if minDist[i] < 0 || dist < minDist[i] {
				minDist[i] = dist
			}
		}
		return nil
	}
	if err := updateMinDist(first); err != nil {
		return nil, err
	}

	for len(chosen) < k {
		best := -1
		var bestDist float64 = -1
		for i := 0; i < n; i++ {
			if chosenSet[i] {
				continue
			}
			if minDist[i] > bestDist {
				bestDist = minDist[i]
				best = i
			}
		}
		if best < 0 {
			break
		}
		chosen = append(chosen, best)
		chosenSet[best] = true
		if err := updateMinDist(best); err != nil {
			return nil, err
		}
	}

	return chosen, nil
}

var _ Selector = (*FFT)(nil)
var _ IndexSelector = (*FFT)(nil)
