package ght_test

import (
	"testing"

	"github.com/patrikhermansson/metricspace/core"
	"github.com/patrikhermansson/metricspace/ght"
	"github.com/patrikhermansson/metricspace/selector"
)

func vecObjects(points [][]float64) []core.Object {
	objs := make([]core.Object, len(points))
	for i, p := range points {
		objs[i] = core.NewVectorObject(i, p)
	}
	return objs
}

func TestGHTScenarioS1(t *testing.T) {
	data := vecObjects([][]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {5, 5}})
	d := core.Euclidean()
	sel := selector.NewRandom(1)

	root, err := ght.Build(data, d, sel, 2, 2)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	q := core.NewVectorObject(-1, []float64{0, 0})
	hits, count, err := ght.Search(root, q, 1.0, d)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if count > len(data) {
		t.Errorf("distance_count %d exceeds dataset size %d", count, len(data))
	}
	if len(hits) != 3 {
		t.Errorf("expected 3 hits, got %d: %v", len(hits), hits)
	}
}

func TestGHTStringsEditDistance(t *testing.T) {
	data := []core.Object{
		core.NewStringObject(0, "cat"),
		core.NewStringObject(1, "bat"),
		core.NewStringObject(2, "cut"),
		core.NewStringObject(3, "dog"),
	}
	d := core.Edit
	sel := selector.NewRandom(2)

	root, err := ght.Build(data, d, sel, 2, 2)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	q := core.NewStringObject(-1, "cat")
	hits, _, err := ght.Search(root, q, 1, d)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(hits) != 3 {
		t.Errorf("expected 3 hits (cat, bat, cut), got %d: %v", len(hits), hits)
	}
	for _, h := range hits {
		dist, _ := d(q, h.Object)
		if dist > 1 {
			t.Errorf("unsound hit %q at distance %v", h.Object.Str, dist)
		}
	}
}

func TestGHTSoundness(t *testing.T) {
	data := vecObjects([][]float64{
		{0, 0}, {2, 1}, {4, 4}, {1, 5}, {3, 3}, {9, 9}, {0, 9}, {7, 2},
	})
	d := core.Euclidean()
	sel := selector.NewRandom(9)

	root, err := ght.Build(data, d, sel, 2, 2)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	q := core.NewVectorObject(-1, []float64{3, 3})
	r := 3.0
	hits, count, err := ght.Search(root, q, r, d)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if count > len(data) {
		t.Errorf("linear bound violated: count=%d > |dataset|=%d", count, len(data))
	}
	for _, h := range hits {
		dist, _ := d(q, h.Object)
		if dist > r+1e-9 {
			t.Errorf("unsound hit %v at distance %v > r=%v", h.Object, dist, r)
		}
	}
}
