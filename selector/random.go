package selector

import "github.com/patrikhermansson/metricspace/core"

// Random selects k pivots via a seeded uniform sample without
// replacement. Deterministic given the same seed and input order.
type Random struct {
	Rng *core.Rng
}

// NewRandom builds a Random selector seeded with seed.
func NewRandom(seed int64) *Random {
	return &Random{Rng: core.NewRng(seed)}
}

func (s *Random) Select(data []core.Object, _ core.DistanceFunc, k int) ([]core.Object, []core.Object, error) {
	indices, err := s.SelectIndices(data, nil, k)
	if err != nil {
		return nil, nil, err
	}
	chosen, remainder := splitByIndices(data, indices)
	return chosen, remainder, nil
}

func (s *Random) SelectIndices(data []core.Object, _ core.DistanceFunc, k int) ([]int, error) {
	n := len(data)
	k = clampK(k, n)
	perm := s.Rng.Perm(n)
	indices := append([]int(nil), perm[:k]...)
	return indices, nil
}

var _ Selector = (*Random)(nil)
var _ IndexSelector = (*Random)(nil)
