// Package lpt implements the Linear Partition Tree, a generalization
// of MVPT: instead of splitting on raw distance to a single pivot per
// level, it splits on an integer-weighted linear combination of
// distances to several pivots (a "projection"), bounding each
// projection with a Lipschitz safety margin at search time.
package lpt

import (
	"math"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/patrikhermansson/metricspace/core"
	"github.com/patrikhermansson/metricspace/pivot"
)

// parallelBuildThreshold is the partition size above which children
// are built concurrently instead of sequentially (adapted from
// rpt.buildTreeRecursive's left/right fan-out, generalized here to an
// arbitrary number of children).
const parallelBuildThreshold = 2000

// Selector is the narrow pivot-selection interface tree builders need.
type Selector interface {
	Select(data []core.Object, d core.DistanceFunc, k int) (pivots, remainder []core.Object, err error)
}

// Matrix is the integer projection matrix A (k rows, n columns): row
// i defines φ_i(x) = Σ_j A[i][j]·d(x, pivots[j]).
type Matrix [][]int

// Node is either an internal LPT node or, when Leaf is non-nil, a
// Pivot Table. Lower[i][j] and Upper[i][j] bound projection row i
// over the points under Children[j].
type Node struct {
	Pivots   []core.Object
	Children []*Node
	Lower    [][]float64
	Upper    [][]float64
	A        Matrix
	Leaf     *pivot.Table
}

// Build bulk-loads an LPT from data using projection matrix A (k x n)
// and `regions` equi-depth splits per projection row.
func Build(data []core.Object, d core.DistanceFunc, sel Selector, maxLeafSize, kLeaf int, a Matrix, regions int) (*Node, error) {
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

	k := len(a)
	n := 0
	if k > 0 {
		n = len(a[0])
	}

	pivots, remainder, err := sel.Select(data, d, n)
	if err != nil {
		return nil, err
	}

	// pivotDist[x] caches distance from x to each pivot, reused across
	// every projection row (the reference algorithm recomputes; caching
	// here only avoids recomputation within one call, not across the
	// recursion).
	pivotDist := make(map[int][]float64, len(remainder))
	for _, x := range remainder {
		row := make([]float64, len(pivots))
		for j, p := range pivots {
			dist, err := d(x, p)
			if err != nil {
				return nil, err
			}
			row[j] = dist
		}
		pivotDist[x.ID] = row
	}

	partitions := [][]core.Object{remainder}
	for i := 0; i < k; i++ {
		next := make([][]core.Object, 0, len(partitions)*regions)
		for _, part := range partitions {
			blocks := equiDepthSplitByProjection(part, a[i], pivotDist, regions)
			next = append(next, blocks...)
		}
		partitions = next
	}

	m := len(partitions)
	lower := make([][]float64, k)
	upper := make([][]float64, k)
	for i := range lower {
		lower[i] = make([]float64, m)
		upper[i] = make([]float64, m)
	}
	for j, part := range partitions {
		for i := 0; i < k; i++ {
			lo, hi := projectionBounds(part, a[i], pivotDist)
			lower[i][j], upper[i][j] = lo, hi
		}
	}

	children, err := buildChildren(partitions, d, sel, maxLeafSize, kLeaf, a, regions)
	if err != nil {
		return nil, err
	}

	log.Debug().Int("pivots", n).Int("rows", k).Int("children", m).Msg("lpt: built internal node")

	return &Node{Pivots: pivots, Children: children, Lower: lower, Upper: upper, A: a}, nil
}

func projection(row []int, dist []float64) float64 {
	var sum float64
	for j, a := range row {
		sum += float64(a) * dist[j]
	}
	return sum
}

func equiDepthSplitByProjection(part []core.Object, row []int, pivotDist map[int][]float64, regions int) [][]core.Object {
	type projIdx struct {
		obj  core.Object
		proj float64
	}
	items := make([]projIdx, len(part))
	for i, x := range part {
		items[i] = projIdx{obj: x, proj: projection(row, pivotDist[x.ID])}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].proj < items[j].proj })

	blocks := make([][]core.Object, regions)
	base := len(items) / regions
	pos := 0
	for i := 0; i < regions; i++ {
		size := base
		if i == regions-1 {
			size = len(items) - pos
		}
		block := make([]core.Object, size)
		for j := 0; j < size; j++ {
			block[j] = items[pos+j].obj
		}
		blocks[i] = block
		pos += size
	}
	return blocks
}

func projectionBounds(part []core.Object, row []int, pivotDist map[int][]float64) (float64, float64) {
	if len(part) == 0 {
		return 0, 0
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, x := range part {
		p := projection(row, pivotDist[x.ID])
		if p < lo {
			lo = p
		}
		if p > hi {
			hi = p
		}
	}
	return lo, hi
}

// buildChildren builds each partition's subtree. Partitions whose
// combined size passes parallelBuildThreshold are built concurrently,
// one goroutine per partition.
func buildChildren(partitions [][]core.Object, d core.DistanceFunc, sel Selector, maxLeafSize, kLeaf int, a Matrix, regions int) ([]*Node, error) {
	total := 0
	for _, part := range partitions {
		total += len(part)
	}

	children := make([]*Node, len(partitions))
	if total <= parallelBuildThreshold {
		for j, part := range partitions {
			child, err := Build(part, d, sel, maxLeafSize, kLeaf, a, regions)
			if err != nil {
				return nil, err
			}
			children[j] = child
		}
		return children, nil
	}

	errs := make([]error, len(partitions))
	var wg sync.WaitGroup
	wg.Add(len(partitions))
	for j, part := range partitions {
		go func(j int, part []core.Object) {
			defer wg.Done()
			children[j], errs[j] = Build(part, d, sel, maxLeafSize, kLeaf, a, regions)
		}(j, part)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return children, nil
}

// RangeSearch adapts Search to the knn.RangeSearcher interface.
func (n *Node) RangeSearch(q core.Object, r float64, d core.DistanceFunc) ([]core.Neighbor, int, error) {
	return Search(n, q, r, d)
}

// Search performs a range query against an LPT. It implements the
// single-pass algorithm of §4.4: no nested duplicated recomputation
// of q_projections/safety_margins (the reference implementation's bug
// described in Open Question 2).
func Search(n *Node, q core.Object, r float64, d core.DistanceFunc) ([]core.Neighbor, int, error) {
	if n == nil {
		return nil, 0, nil
	}
	if n.Leaf != nil {
		return pivot.Search(n.Leaf, q, r, d)
	}

	count := 0
	var hits []core.Neighbor

	dq := make([]float64, len(n.Pivots))
	for i, p := range n.Pivots {
		dist, err := d(q, p)
		if err != nil {
			return nil, count, err
		}
		count++
		dq[i] = dist
		if dist <= r {
			hits = append(hits, core.Neighbor{Object: p, Distance: dist})
		}
	}

	k := len(n.Lower)
	phiQ := make([]float64, k)
	margin := make([]float64, k)
	for i := 0; i < k; i++ {
		row := n.A[i]
		phiQ[i] = projection(row, dq)
		var absSum float64
		for _, a := range row {
			absSum += math.Abs(float64(a))
		}
		margin[i] = r * absSum
	}

	for j, child := range n.Children {
		pruned := false
		for i := 0; i < k; i++ {
			if phiQ[i]+margin[i] < n.Lower[i][j] || phiQ[i]-margin[i] > n.Upper[i][j] {
				pruned = true
				break
			}
		}
		if pruned {
			continue
		}
		childHits, c, err := Search(child, q, r, d)
		if err != nil {
			return nil, count, err
		}
		hits = append(hits, childHits...)
		count += c
	}

	return hits, count, nil
}
