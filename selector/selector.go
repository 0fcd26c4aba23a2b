// Package selector implements the pivot-selection strategies pluggable
// into pivot tables and trees: Random, Farthest-First Traversal,
// Max-Variance, and Incremental Sampling with its objective functions.
package selector

import (
	"github.com/rs/zerolog/log"

	"github.com/patrikhermansson/metricspace/core"
)

// Selector chooses k pivots from a data set, returning the selected
// pivots and the remaining points in their original relative order.
// len(pivots) == min(k, len(data)); pivots are distinct elements of
// data (by position, not just value).
type Selector interface {
	Select(data []core.Object, d core.DistanceFunc, k int) (pivots, remainder []core.Object, err error)
}

// IndexSelector is the variant Incremental Sampling needs: it must
// identify candidate pivots by position across repeated scans rather
// than by value, so it returns indices into data instead of values.
type IndexSelector interface {
	SelectIndices(data []core.Object, d core.DistanceFunc, k int) (indices []int, err error)
}

// splitByIndices partitions data into the elements at the given
// indices, in the order indices names them (spec §3: a pivot set is an
// ordered subsequence), and the complement, preserving data's relative
// order.
func splitByIndices(data []core.Object, indices []int) (chosen, remainder []core.Object) {
	chosenSet := make(map[int]bool, len(indices))
	for _, i := range indices {
		chosenSet[i] = true
	}
	chosen = make([]core.Object, len(indices))
	for j, i := range indices {
		chosen[j] = data[i]
	}
	remainder = make([]core.Object, 0, len(data)-len(indices))
	for i, o := range data {
		if !chosenSet[i] {
			remainder = append(remainder, o)
		}
	}
	return chosen, remainder
}

func clampK(k, n int) int {
	if k > n {
		log.Debug().Msgf("selector: requested k=%d exceeds data size %d, clamping", k, n)
		return n
	}
	return k
}
