// Package mvpt implements the Multiple Vantage Point Tree: an
// internal node holds several pivots and partitions its data into
// regions^n equi-depth children, with per-pivot distance bounds
// enabling containment and exclusion pruning at search time.
package mvpt

import (
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

// Node is either an internal MVPT node or, when Leaf is non-nil, a
// Pivot Table. Lower[i][j] and Upper[i][j] bound the distance from
// pivot i to any point under Children[j].
type Node struct {
	Pivots   []core.Object
	Children []*Node
	Lower    [][]float64
	Upper    [][]float64
	Leaf     *pivot.Table
}

// Build bulk-loads an MVPT from data, partitioning each internal node
// into regions^nInternal children using nInternal pivots.
func Build(data []core.Object, d core.DistanceFunc, sel Selector, maxLeafSize, kLeaf, regions, nInternal int) (*Node, error) {
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

	pivots, remainder, err := sel.Select(data, d, nInternal)
	if err != nil {
		return nil, err
	}
	n := len(pivots)

	partitions := [][]core.Object{remainder}
	for i := 0; i < n; i++ {
		next := make([][]core.Object, 0, len(partitions)*regions)
		for _, part := range partitions {
			blocks, err := equiDepthSplit(part, pivots[i], d, regions)
			if err != nil {
				return nil, err
			}
			next = append(next, blocks...)
		}
		partitions = next
	}

	m := len(partitions)
	lower := make([][]float64, n)
	upper := make([][]float64, n)
	for i := range lower {
		lower[i] = make([]float64, m)
		upper[i] = make([]float64, m)
	}
	for j, part := range partitions {
		for i, p := range pivots {
			lo, hi, err := pivotBounds(part, p, d)
			if err != nil {
				return nil, err
			}
			lower[i][j], upper[i][j] = lo, hi
		}
	}

	children, err := buildChildren(partitions, d, sel, maxLeafSize, kLeaf, regions, nInternal)
	if err != nil {
		return nil, err
	}

	log.Debug().Int("pivots", n).Int("children", m).Msg("mvpt: built internal node")

	return &Node{Pivots: pivots, Children: children, Lower: lower, Upper: upper}, nil
}

// equiDepthSplit sorts part by distance to pivot and cuts it into
// exactly `regions` nearly-equal blocks; the last block absorbs any
// remainder. Always returns `regions` blocks (possibly empty).
func equiDepthSplit(part []core.Object, p core.Object, d core.DistanceFunc, regions int) ([][]core.Object, error) {
	type distIdx struct {
		obj  core.Object
		dist float64
	}
	items := make([]distIdx, len(part))
	for i, x := range part {
		dist, err := d(x, p)
		if err != nil {
			return nil, err
		}
		items[i] = distIdx{obj: x, dist: dist}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].dist < items[j].dist })

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
	return blocks, nil
}

func pivotBounds(part []core.Object, p core.Object, d core.DistanceFunc) (float64, float64, error) {
	if len(part) == 0 {
		return 0, 0, nil
	}
	lo, hi := -1.0, -1.0
	for _, x := range part {
		dist, err := d(x, p)
		if err != nil {
			return 0, 0, err
		}
		if lo < 0 || dist < lo {
			lo = dist
		}
		if hi < 0 || dist > hi {
			hi = dist
		}
	}
	return lo, hi, nil
}

// buildChildren builds each partition's subtree. Partitions whose
// combined size passes parallelBuildThreshold are built concurrently,
// one goroutine per partition.
func buildChildren(partitions [][]core.Object, d core.DistanceFunc, sel Selector, maxLeafSize, kLeaf, regions, nInternal int) ([]*Node, error) {
	total := 0
	for _, part := range partitions {
		total += len(part)
	}

	children := make([]*Node, len(partitions))
	if total <= parallelBuildThreshold {
		for j, part := range partitions {
			child, err := Build(part, d, sel, maxLeafSize, kLeaf, regions, nInternal)
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
			children[j], errs[j] = Build(part, d, sel, maxLeafSize, kLeaf, regions, nInternal)
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

// Search performs a range query against an MVPT.
func Search(n *Node, q core.Object, r float64, d core.DistanceFunc) ([]core.Neighbor, int, error) {
	if n == nil {
		return nil, 0, nil
	}
	if n.Leaf != nil {
		return pivot.Search(n.Leaf, q, r, d)
	}

	count := 0
	var hits []core.Neighbor

	dqp := make([]float64, len(n.Pivots))
	for i, p := range n.Pivots {
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

	for j, child := range n.Children {
		contained := false
		pruned := false
		for i := range n.Pivots {
			if dqp[i]+n.Upper[i][j] <= r {
				contained = true
				break
			}
			if dqp[i]+r < n.Lower[i][j] || dqp[i]-r > n.Upper[i][j] {
				pruned = true
				break
			}
		}
		if contained {
			all, c := collectAll(child)
			hits = append(hits, all...)
			count += c
			continue
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
	hits := make([]core.Neighbor, 0, len(n.Pivots))
	for _, p := range n.Pivots {
		hits = append(hits, core.Neighbor{Object: p})
	}
	total := 0
	for _, c := range n.Children {
		childHits, cnt := collectAll(c)
		hits = append(hits, childHits...)
		total += cnt
	}
	return hits, total
}
