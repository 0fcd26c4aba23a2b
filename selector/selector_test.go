package selector_test

import (
	"testing"

	"github.com/patrikhermansson/metricspace/core"
	"github.com/patrikhermansson/metricspace/selector"
)

func uniformData(n int) []core.Object {
	objs := make([]core.Object, n)
	for i := 0; i < n; i++ {
		objs[i] = core.NewVectorObject(i, []float64{float64(i), float64(i % 7)})
	}
	return objs
}

func assertDistinctSubset(t *testing.T, data, pivots []core.Object) {
	t.Helper()
	seen := make(map[int]bool)
	for _, p := range pivots {
		found := false
		for _, o := range data {
			if o.Equal(p) {
				found = true
			}
		}
		if !found {
			t.Errorf("pivot %v not found in source data", p)
		}
		if seen[p.ID] {
			t.Errorf("duplicate pivot ID %d", p.ID)
		}
		seen[p.ID] = true
	}
}

func TestRandomDeterministic(t *testing.T) {
	data := uniformData(50)
	d := core.Euclidean()

	a := selector.NewRandom(7)
	b := selector.NewRandom(7)

	pa, _, err := a.Select(data, d, 10)
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	pb, _, err := b.Select(data, d, 10)
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}

	if len(pa) != len(pb) {
		t.Fatalf("selector with same seed produced different counts: %d vs %d", len(pa), len(pb))
	}
	for i := range pa {
		if pa[i].ID != pb[i].ID {
			t.Errorf("selector with same seed diverged at index %d: %d != %d", i, pa[i].ID, pb[i].ID)
		}
	}
}

func TestRandomOutputLength(t *testing.T) {
	data := uniformData(20)
	d := core.Euclidean()
	sel := selector.NewRandom(1)

	pivots, remainder, err := sel.Select(data, d, 5)
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if len(pivots) != 5 {
		t.Errorf("expected 5 pivots, got %d", len(pivots))
	}
	if len(pivots)+len(remainder) != len(data) {
		t.Errorf("pivots+remainder = %d, want %d", len(pivots)+len(remainder), len(data))
	}
	assertDistinctSubset(t, data, pivots)
}

func TestRandomKExceedsData(t *testing.T) {
	data := uniformData(3)
	d := core.Euclidean()
	sel := selector.NewRandom(1)

	pivots, remainder, err := sel.Select(data, d, 10)
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if len(pivots) != 3 {
		t.Errorf("expected min(k, |data|) = 3 pivots, got %d", len(pivots))
	}
	if len(remainder) != 0 {
		t.Errorf("expected empty remainder, got %d", len(remainder))
	}
}

func TestFFTDiversity(t *testing.T) {
	data := uniformData(100)
	d := core.Euclidean()

	fft := selector.NewFFT(1)
	fftPivots, _, err := fft.Select(data, d, 5)
	if err != nil {
		t.Fatalf("FFT Select returned error: %v", err)
	}
	assertDistinctSubset(t, data, fftPivots)

	rnd := selector.NewRandom(1)
	rndPivots, _, err := rnd.Select(data, d, 5)
	if err != nil {
		t.Fatalf("Random Select returned error: %v", err)
	}

	if minPairwise(fftPivots, d) < minPairwise(rndPivots, d)-1e-9 {
		t.Errorf("FFT pivots (min pairwise %v) less diverse than random pivots (min pairwise %v)",
			minPairwise(fftPivots, d), minPairwise(rndPivots, d))
	}
}

func minPairwise(objs []core.Object, d core.DistanceFunc) float64 {
	min := -1.0
	for i := 0; i < len(objs); i++ {
		for j := i + 1; j < len(objs); j++ {
			dist, _ := d(objs[i], objs[j])
			if min < 0 || dist < min {
				min = dist
			}
		}
	}
	return min
}

func TestMaxVarianceOutputLength(t *testing.T) {
	data := uniformData(30)
	d := core.Euclidean()
	sel := selector.NewMaxVariance(2)

	pivots, remainder, err := sel.Select(data, d, 4)
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if len(pivots) != 4 {
		t.Errorf("expected 4 pivots, got %d", len(pivots))
	}
	if len(pivots)+len(remainder) != len(data) {
		t.Errorf("pivots+remainder mismatch")
	}
}

func TestIncrementalSamplingSelectsK(t *testing.T) {
	data := uniformData(40)
	d := core.Euclidean()

	objective := selector.RadiusSensitive{Radius: 2}
	is := &selector.IncrementalSampling{
		CandidateSize:      15,
		EvaluationSize:      10,
		CandidateSelector:  selector.NewRandom(5),
		EvaluationSelector: selector.NewRandom(6),
		Objective:          objective,
	}

	pivots, remainder, err := is.Select(data, d, 3)
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if len(pivots) != 3 {
		t.Errorf("expected 3 pivots, got %d", len(pivots))
	}
	if len(pivots)+len(remainder) != len(data) {
		t.Errorf("pivots+remainder mismatch")
	}
	assertDistinctSubset(t, data, pivots)
}

func TestIncrementalSamplingInsufficientCandidates(t *testing.T) {
	data := uniformData(10)
	d := core.Euclidean()

	is := &selector.IncrementalSampling{
		CandidateSize:      2,
		EvaluationSize:      5,
		CandidateSelector:  selector.NewRandom(1),
		EvaluationSelector: selector.NewRandom(2),
		Objective:          selector.MaximumMean{},
	}

	_, _, err := is.Select(data, d, 5)
	if err == nil {
		t.Fatal("expected InsufficientCandidates error, got nil")
	}
	e, ok := err.(*core.Error)
	if !ok || e.Kind != core.InsufficientCandidates {
		t.Fatalf("expected InsufficientCandidates, got %v", err)
	}
}

func TestManualSelectsSpecifiedIndices(t *testing.T) {
	data := uniformData(5)
	d := core.Euclidean()
	m := selector.NewManual([]int{1, 3})

	pivots, remainder, err := m.Select(data, d, 2)
	if err != nil {
		t.Fatalf("Manual.Select: %v", err)
	}
	if len(pivots) != 2 || len(remainder) != 3 {
		t.Fatalf("expected 2 pivots and 3 remainder, got %d and %d", len(pivots), len(remainder))
	}
	if pivots[0].ID != 1 || pivots[1].ID != 3 {
		t.Errorf("expected pivots [1 3], got %v", []int{pivots[0].ID, pivots[1].ID})
	}
}

func TestManualPreservesIndexOrder(t *testing.T) {
	data := uniformData(5)
	d := core.Euclidean()
	m := selector.NewManual([]int{3, 1})

	pivots, _, err := m.Select(data, d, 2)
	if err != nil {
		t.Fatalf("Manual.Select: %v", err)
	}
	if len(pivots) != 2 || pivots[0].ID != 3 || pivots[1].ID != 1 {
		t.Fatalf("expected pivots in caller order [3 1], got %v", []int{pivots[0].ID, pivots[1].ID})
	}
}

func TestManualOutOfRangeIndex(t *testing.T) {
	data := uniformData(3)
	d := core.Euclidean()
	m := selector.NewManual([]int{5})

	if _, _, err := m.Select(data, d, 1); err == nil {
		t.Fatal("expected error for out-of-range manual index")
	}
}

func TestFactoryBuildsManual(t *testing.T) {
	sel, err := selector.New("Manual", selector.Params{Indices: []int{0, 2}})
	if err != nil {
		t.Fatalf("selector.New: %v", err)
	}
	data := uniformData(5)
	pivots, _, err := sel.Select(data, core.Euclidean(), 2)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(pivots) != 2 {
		t.Fatalf("expected 2 pivots, got %d", len(pivots))
	}
}
