// Package ght implements the General Hyper-plane Tree: a two-pivot
// tree that partitions points by which of two pivots they are closer
// to, pruning at search time via the half-plane separating them.
package ght

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/patrikhermansson/metricspace/core"
	"github.com/patrikhermansson/metricspace/pivot"
)

// parallelBuildThreshold is the combined left+right size above which
// Build constructs the two subtrees concurrently instead of
// sequentially (adapted from rpt.buildTreeRecursive's left/right
// fan-out; an optional build-time optimization, see vpt.buildChildren).
const parallelBuildThreshold = 2000

// Selector is the narrow pivot-selection interface tree builders need.
type Selector interface {
	Select(data []core.Object, d core.DistanceFunc, k int) (pivots, remainder []core.Object, err error)
}

// Node is either an internal GHT node (two pivots + two children) or,
// when Leaf is non-nil, a Pivot Table.
type Node struct {
	C1, C2 core.Object
	Left   *Node
	Right  *Node
	Leaf   *pivot.Table
}

// Build bulk-loads a GHT from data.
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

	pivots, remainder, err := sel.Select(data, d, 2)
	if err != nil {
		return nil, err
	}
	c1, c2 := pivots[0], pivots[1]

	var left, right []core.Object
	for _, x := range remainder {
		d1, err := d(x, c1)
		if err != nil {
			return nil, err
		}
		d2, err := d(x, c2)
		if err != nil {
			return nil, err
		}
		// Ties go left.
		if d1 <= d2 {
			left = append(left, x)
		} else {
			right = append(right, x)
		}
	}

	leftChild, rightChild, err := buildChildren(left, right, d, sel, maxLeafSize, kLeaf)
	if err != nil {
		return nil, err
	}

	log.Debug().Int("left", len(left)).Int("right", len(right)).Msg("ght: built internal node")

	return &Node{C1: c1, C2: c2, Left: leftChild, Right: rightChild}, nil
}

// buildChildren builds the left and right subtrees, in parallel
// goroutines once their combined size passes parallelBuildThreshold.
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

// Search performs a range query against a GHT.
func Search(n *Node, q core.Object, r float64, d core.DistanceFunc) ([]core.Neighbor, int, error) {
	if n == nil {
		return nil, 0, nil
	}
	if n.Leaf != nil {
		return pivot.Search(n.Leaf, q, r, d)
	}

	count := 0
	var hits []core.Neighbor

	dqc1, err := d(q, n.C1)
	if err != nil {
		return nil, count, err
	}
	count++
	dqc2, err := d(q, n.C2)
	if err != nil {
		return nil, count, err
	}
	count++

	if dqc1 <= r {
		hits = append(hits, core.Neighbor{Object: n.C1, Distance: dqc1})
	}
	if dqc2 <= r {
		hits = append(hits, core.Neighbor{Object: n.C2, Distance: dqc2})
	}

	if dqc1-dqc2 <= 2*r {
		leftHits, c, err := Search(n.Left, q, r, d)
		if err != nil {
			return nil, count, err
		}
		hits = append(hits, leftHits...)
		count += c
	}
	if dqc2-dqc1 <= 2*r {
		rightHits, c, err := Search(n.Right, q, r, d)
		if err != nil {
			return nil, count, err
		}
		hits = append(hits, rightHits...)
		count += c
	}

	return hits, count, nil
}
