package selector

import "github.com/patrikhermansson/metricspace/core"

// MaxVariance selects pivots by seeding with one random point, then
// repeatedly adding the remaining point whose distances to the
// already-chosen pivots have the largest sample variance. Undefined
// for a single chosen pivot (variance is treated as zero, so any
// point may be selected); ties are broken by first occurrence.
type MaxVariance struct {
	Rng *core.Rng
}

// NewMaxVariance builds a MaxVariance selector seeded with seed.
func NewMaxVariance(seed int64) *MaxVariance {
	return &MaxVariance{Rng: core.NewRng(seed)}
}

func (s *MaxVariance) Select(data []core.Object, d core.DistanceFunc, k int) ([]core.Object, []core.Object, error) {
	indices, err := s.SelectIndices(data, d, k)
	if err != nil {
		return nil, nil, err
	}
	chosen, remainder := splitByIndices(data, indices)
	return chosen, remainder, nil
}

func (s *MaxVariance) SelectIndices(data []core.Object, d core.DistanceFunc, k int) ([]int, error) {
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

	// dists[i] accumulates distances from point i to each chosen pivot
	// in selection order.
	dists := make([][]float64, n)
	for i := range dists {
		dists[i] = make([]float64, 0, k)
	}

	addPivot := func(p int) error {
		for i := 0; i < n; i++ {
			if chosenSet[i] {
				continue
			}
			dist, err := d(data[i], data[p])
			if err != nil {
				return err
			}
			dists[i] = append(dists[i], dist)
		}
		return nil
	}
	if err := addPivot(first); err != nil {
		return nil, err
	}

	for len(chosen) < k {
		best := -1
		var bestVar float64 = -1
		for i := 0; i < n; i++ {
			if chosenSet[i] {
				continue
			}
			v := sampleVariance(dists[i])
			if v > bestVar {
				bestVar = v
				best = i
			}
		}
		if best < 0 {
			break
		}
		chosen = append(chosen, best)
		chosenSet[best] = true
		if err := addPivot(best); err != nil {
			return nil, err
		}
	}

	return chosen, nil
}

func sampleVariance(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	var sum float64
	for _, x := range xs {
		diff := x - mean
		sum += diff * diff
	}
	return sum / float64(len(xs)-1)
}

var _ Selector = (*MaxVariance)(nil)
var _ IndexSelector = (*MaxVariance)(nil)
