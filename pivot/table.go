// Package pivot implements the Pivot Table leaf structure shared by
// every tree in this module: a cache of pivot-to-object distances
// plus the range-search routine that exploits it to prune per-point
// distance work.
package pivot

import (
	"github.com/rs/zerolog/log"

	"github.com/patrikhermansson/metricspace/core"
)

// Table is the leaf structure: a fixed set of pivots, the remaining
// points it stores, and the distance matrix D[i][j] = d(pivots[i],
// data[j]).
type Table struct {
	Pivots []core.Object
	Data   []core.Object
	D      [][]float64

	maxLeafSize int
}

// Build constructs a Table from data using the given selector to pick
// kLeaf pivots. Fails with OversizedLeaf if the remaining points
// exceed maxLeafSize.
func Build(data []core.Object, d core.DistanceFunc, sel Selector, maxLeafSize, kLeaf int) (*Table, error) {
	pivots, remainder, err := sel.Select(data, d, kLeaf)
	if err != nil {
		return nil, err
	}
	if len(remainder) > maxLeafSize {
		return nil, core.NewError(core.OversizedLeaf,
			"pivot table leaf holds more points than max_leaf_size allows")
	}

	matrix := make([][]float64, len(pivots))
	for i, p := range pivots {
		row := make([]float64, len(remainder))
		for j, x := range remainder {
			dist, err := d(p, x)
			if err != nil {
				return nil, err
			}
			row[j] = dist
		}
		matrix[i] = row
	}

	log.Debug().Int("pivots", len(pivots)).Int("data", len(remainder)).Msg("pivot: built leaf")

	return &Table{
		Pivots:      pivots,
		Data:        remainder,
		D:           matrix,
		maxLeafSize: maxLeafSize,
	}, nil
}

// Selector is the narrow interface Build needs from a pivot selector,
// avoiding an import cycle with package selector (which itself never
// needs to know about Table).
type Selector interface {
	Select(data []core.Object, d core.DistanceFunc, k int) (pivots, remainder []core.Object, err error)
}

// RangeSearch adapts Search to the knn.RangeSearcher interface.
func (t *Table) RangeSearch(q core.Object, r float64, d core.DistanceFunc) ([]core.Neighbor, int, error) {
	return Search(t, q, r, d)
}

// Search evaluates a range query against the leaf. It returns every
// object within r of q and the number of actual distance evaluations
// performed (cache hits on D do not count).
func Search(t *Table, q core.Object, r float64, d core.DistanceFunc) ([]core.Neighbor, int, error) {
	var hits []core.Neighbor
	count := 0

	dqp := make([]float64, len(t.Pivots))
	for i, p := range t.Pivots {
		dist, err := d(q, p)
		if err != nil {
			return nil, count, err
		}
		count++
		dqp[i] = dist
		if dist <= r {
			hits = append(hits, core.Neighbor{Object: p, Distance: dist})
		}
	}

	for j, x := range t.Data {
		resolved := false
		for i := range t.Pivots {
			dij := t.D[i][j]
			// Inclusion: triangle upper bound. The object is guaranteed
			// within r without a direct distance call; the reported
			// Distance is the triangle bound, not necessarily exact.
			if dqp[i]+dij <= r {
				hits = append(hits, core.Neighbor{Object: x, Distance: dqp[i] + dij})
				resolved = true
				break
			}
			// Exclusion: triangle lower bound.
			if absF(dqp[i]-dij) > r {
				resolved = true
				break
			}
		}
		if resolved {
			continue
		}
		dist, err := d(q, x)
		if err != nil {
			return nil, count, err
		}
		count++
		if dist <= r {
			hits = append(hits, core.Neighbor{Object: x, Distance: dist})
		}
	}

	return hits, count, nil
}

func absF(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
