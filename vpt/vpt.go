// Package vpt implements the Vantage Point Tree: a single-pivot
// median-split tree whose range search prunes subtrees via the
// triangle inequality, falling back to a pivot.Table at the leaves.
package vpt

import (
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/patrikhermansson/metricspace/core"
	"github.com/patrikhermansson/metricspace/pivot"
)

// parallelBuildThreshold is the combined left+right size above which
// Build constructs the two subtrees concurrently instead of
// sequentially. Building is otherwise single-threaded (spec's
// scheduling model covers queries, not this optional build-time
// optimization).
const parallelBuildThreshold = 2000

// Selector is the narrow pivot-selection interface tree builders need.
type Selector interface {
	Select(data []core.Object, d core.DistanceFunc, k int) (pivots, remainder []core.Object, err error)
}

// Node is either an internal VPT node (pivot + splitRadius + two
// children) or, when Leaf is non-nil, a Pivot Table.
type Node struct {
	Pivot       core.Object
	SplitRadius float64
	Left        *Node
	Right       *Node
	Leaf        *pivot.Table
}

// Build bulk-loads a VPT from data. maxLeafSize and kLeaf are passed
// through to the Pivot Table leaves.
func Build(data []core.Object, d core.DistanceFunc, sel Selector, maxLeafSize, kLeaf int) (*Node, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if len(data) <= maxLeafSize {
		table, err := pivot.Build(data, d, sel, maxLeafSize, kLeaf)
		if err != nil {
			return nil, err
		}
		return &Node{Leaf: table}, nil
	}

	pivots, remainder, err := sel.Select(data, d, 1)
	if err != nil {
		return nil, err
	}
	p := pivots[0]

	type distIdx struct {
		obj  core.Object
		dist float64
	}
	items := make([]distIdx, len(remainder))
	for i, x := range remainder {
		dist, err := d(p, x)
		if err != nil {
			return nil, err
		}
		items[i] = distIdx{obj: x, dist: dist}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].dist < items[j].dist })

	medianIdx := len(items) / 2
	splitRadius := items[medianIdx].dist

	// Open Question 3: points exactly at splitRadius go right; indices
	// < medianIdx go left.
	left := make([]core.Object, medianIdx)
	for i := 0; i < medianIdx; i++ {
		left[i] = items[i].obj
	}
	right := make([]core.Object, len(items)-medianIdx)
	for i := medianIdx; i < len(items); i++ {
		right[i-medianIdx] = items[i].obj
	}

	leftChild, rightChild, err := buildChildren(left, right, d, sel, maxLeafSize, kLeaf)
	if err != nil {
		return nil, err
	}

	log.Debug().Float64("split_radius", splitRadius).Int("left", len(left)).Int("right", len(right)).
		Msg("vpt: built internal node")

	return &Node{
		Pivot:       p,
		SplitRadius: splitRadius,
		Left:        leftChild,
		Right:       rightChild,
	}, nil
}

// buildChildren builds the left and right subtrees, in parallel
// goroutines once their combined size passes parallelBuildThreshold
// (adapted from rpt.buildTreeRecursive's left/right fan-out).
func buildChildren(left, right []core.Object, d core.DistanceFunc, sel Selector, maxLeafSize, kLeaf int) (*Node, *Node, error) {
	if len(left)+len(right) <= parallelBuildThreshold {
		leftChild, err := Build(left, d, sel, maxLeafSize, kLeaf)
		if err != nil {
			return nil, nil, err
		}
		rightChild, err := Build(right, d, sel, maxLeafSize, kLeaf)
		if err != nil {
			return nil, nil, err
		}
		return leftChild, rightChild, nil
	}

	var wg sync.WaitGroup
	var leftChild, rightChild *Node
	var leftErr, rightErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		leftChild, leftErr = Build(left, d, sel, maxLeafSize, kLeaf)
	}()
	go func() {
		defer wg.Done()
		rightChild, rightErr = Build(right, d, sel, maxLeafSize, kLeaf)
	}()
	wg.Wait()

	if leftErr != nil {
		return nil, nil, leftErr
	}
	if rightErr != nil {
		return nil, nil, rightErr
	}
	return leftChild, rightChild, nil
}

// RangeSearch adapts Search to the knn.RangeSearcher interface.
func (n *Node) RangeSearch(q core.Object, r float64, d core.DistanceFunc) ([]core.Neighbor, int, error) {
	return Search(n, q, r, d)
}

// Search performs a range query against a VPT, returning hits and the
// number of distance evaluations performed.
func Search(n *Node, q core.Object, r float64, d core.DistanceFunc) ([]core.Neighbor, int, error) {
	if n == nil {
		return nil, 0, nil
	}
	if n.Leaf != nil {
		return pivot.Search(n.Leaf, q, r, d)
	}

	count := 0
	var hits []core.Neighbor

	dqv, err := d(q, n.Pivot)
	if err != nil {
		return nil, count, err
	}
	count++
	if dqv <= r {
		hits = append(hits, core.Neighbor{Object: n.Pivot, Distance: dqv})
	}

	// Containment: the entire left (inner-ball) subtree is in-result.
	if dqv+n.SplitRadius <= r {
		all, c := collectAll(n.Left)
		hits = append(hits, all...)
		count += c
	} else if dqv <= n.SplitRadius+r {
		// Inner recurse.
		leftHits, c, err := Search(n.Left, q, r, d)
		if err != nil {
			return nil, count, err
		}
		hits = append(hits, leftHits...)
		count += c
	}

	if dqv+r >= n.SplitRadius {
		rightHits, c, err := Search(n.Right, q, r, d)
		if err != nil {
			return nil, count, err
		}
		hits = append(hits, rightHits...)
		count += c
	}

	return hits, count, nil
}

// collectAll returns every object reachable from n without evaluating
// any distances, used by the containment rule.
func collectAll(n *Node) ([]core.Neighbor, int) {
	if n == nil {
		return nil, 0
	}
	if n.Leaf != nil {
		hits := make([]core.Neighbor, 0, len(n.Leaf.Pivots)+len(n.Leaf.Data))
		for _, p := range n.Leaf.Pivots {
			hits = append(hits, core.Neighbor{Object: p})
		}
		for _, x := range n.Leaf.Data {
			hits = append(hits, core.Neighbor{Object: x})
		}
		return hits, 0
	}
	hits := []core.Neighbor{{Object: n.Pivot}}
	left, lc := collectAll(n.Left)
	right, rc := collectAll(n.Right)
	hits = append(hits, left...)
	hits = append(hits, right...)
	return hits, lc + rc
}
