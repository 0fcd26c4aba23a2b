// Package knn provides exact k-nearest-neighbor search and a
// linear-scan baseline, layered on top of any tree's RangeSearch: k-NN
// here is exact, not approximate, built by doubling a probe radius
// until at least k hits are found.
package knn

import (
	"container/heap"

	"github.com/rs/zerolog/log"

	"github.com/patrikhermansson/metricspace/core"
)

// candidate pairs a hit with its exact distance from the query, used
// by the bounded max-heap below to keep only the k closest.
type candidate struct {
	object core.Object
	dist   float64
}

// boundedMaxHeap is a max-heap on distance: popping removes the
// currently-worst (farthest) candidate, the same shape used by graph
// index implementations to bound a candidate result set to size ef.
type boundedMaxHeap []candidate

func (h boundedMaxHeap) Len() int { return len(h) }
func (h boundedMaxHeap) Less(i, j int) bool {
	if h[i].dist == h[j].dist {
		return h[i].object.ID < h[j].object.ID
	}
	return h[i].dist > h[j].dist
}
func (h boundedMaxHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *boundedMaxHeap) Push(x interface{}) { *h = append(*h, x.(candidate)) }
func (h *boundedMaxHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// RangeSearcher is the narrow interface Search needs from a built
// index: every tree in this module (pivot.Table via a thin wrapper,
// vpt.Node, ght.Node, mvpt.Node, lpt.Node) can serve as one.
type RangeSearcher interface {
	RangeSearch(q core.Object, r float64, d core.DistanceFunc) ([]core.Neighbor, int, error)
}

// Search returns the k nearest neighbors of q by doubling a probe
// radius against idx.RangeSearch until at least k candidates are
// found, then keeps the k closest by exact recomputed distance. If
// maxDoublings probes (the last at initialRadius*2^(maxDoublings-1))
// never reach k hits, it returns a DomainError. It returns the
// neighbors sorted nearest-first, and the total number of distance
// evaluations performed across every probe plus the exact
// recomputation of the final candidates.
func Search(idx RangeSearcher, q core.Object, d core.DistanceFunc, k int, initialRadius float64) ([]core.Neighbor, int, error) {
	if k <= 0 {
		return nil, 0, nil
	}
	if initialRadius <= 0 {
		initialRadius = 1
	}

	radius := initialRadius
	totalCount := 0
	const maxDoublings = 40

	for attempt := 0; attempt < maxDoublings; attempt++ {
		hits, count, err := idx.RangeSearch(q, radius, d)
		totalCount += count
		if err != nil {
			return nil, totalCount, err
		}

		if len(hits) >= k {
			result, exactCount, err := exactTopK(hits, q, d, k)
			totalCount += exactCount
			if err != nil {
				return nil, totalCount, err
			}
			// The range search returned every object within radius,
			// so the k closest hits are the exact k nearest
			// neighbors; result always holds k entries here and no
			// further doubling is made.
			if len(result) >= k || attempt == maxDoublings-1 {
				log.Debug().Int("k", k).Float64("radius", radius).Msg("knn: search converged")
				return result, totalCount, nil
			}
		}
		radius *= 2
	}

	return nil, totalCount, core.NewError(core.DomainError, "knn search did not converge")
}

// exactTopK recomputes exact distances for candidate hits and returns
// the k closest, sorted nearest-first.
func exactTopK(hits []core.Neighbor, q core.Object, d core.DistanceFunc, k int) ([]core.Neighbor, int, error) {
	h := &boundedMaxHeap{}
	heap.Init(h)
	count := 0

	for _, hit := range hits {
		dist, err := d(q, hit.Object)
		if err != nil {
			return nil, count, err
		}
		count++
		heap.Push(h, candidate{object: hit.Object, dist: dist})
		if h.Len() > k {
			heap.Pop(h)
		}
	}

	result := make([]core.Neighbor, h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		c := heap.Pop(h).(candidate)
		result[i] = core.Neighbor{Object: c.object, Distance: c.dist}
	}
	return result, count, nil
}

// LinearScan computes exact distances from q to every object in data
// and returns the k closest, sorted nearest-first. Used to
// cross-check tree-based k-NN results.
func LinearScan(data []core.Object, q core.Object, d core.DistanceFunc, k int) ([]core.Neighbor, int, error) {
	if k <= 0 {
		return nil, 0, nil
	}
	h := &boundedMaxHeap{}
	heap.Init(h)
	count := 0

	for _, o := range data {
		dist, err := d(q, o)
		if err != nil {
			return nil, count, err
		}
		count++
		heap.Push(h, candidate{object: o, dist: dist})
		if h.Len() > k {
			heap.Pop(h)
		}
	}

	result := make([]core.Neighbor, h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		c := heap.Pop(h).(candidate)
		result[i] = core.Neighbor{Object: c.object, Distance: c.dist}
	}
	return result, count, nil
}
