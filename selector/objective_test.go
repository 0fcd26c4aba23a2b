package selector_test

import (
	"testing"

	"github.com/patrikhermansson/metricspace/core"
	"github.com/patrikhermansson/metricspace/selector"
)

func TestObjectiveFunctionFactory(t *testing.T) {
	tests := []struct {
		name    string
		want    interface{}
		wantErr bool
	}{
		{"Radius-Sensitive", selector.RadiusSensitive{}, false},
		{"Variance", selector.Variance{}, false},
		{"Maximum Mean", selector.MaximumMean{}, false},
		{"Unknown", nil, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := selector.NewObjectiveFunction(tt.name, 1.0, 1.0)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			switch tt.want.(type) {
			case selector.RadiusSensitive:
				if _, ok := got.(selector.RadiusSensitive); !ok {
					t.Errorf("expected RadiusSensitive, got %T", got)
				}
			case selector.Variance:
				if _, ok := got.(selector.Variance); !ok {
					t.Errorf("expected Variance, got %T", got)
				}
			case selector.MaximumMean:
				if _, ok := got.(selector.MaximumMean); !ok {
					t.Errorf("expected MaximumMean, got %T", got)
				}
			}
		})
	}
}

func TestRadiusSensitiveEvaluate(t *testing.T) {
	pivot := core.NewVectorObject(0, []float64{0, 0})
	eval := []core.Object{
		core.NewVectorObject(1, []float64{0, 0}),
		core.NewVectorObject(2, []float64{5, 0}),
		core.NewVectorObject(3, []float64{10, 0}),
	}
	d := core.Euclidean()

	obj := selector.RadiusSensitive{Radius: 4}
	score, err := obj.Evaluate(eval, d, []core.Object{pivot})
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	// pairs: (0,5)=5>=4 yes, (0,10)=10>=4 yes, (5,10)=5>=4 yes -> 3
	if score != 3 {
		t.Errorf("RadiusSensitive score = %v, want 3", score)
	}
}

func TestVarianceEvaluateZeroForIdentical(t *testing.T) {
	pivot := core.NewVectorObject(0, []float64{0, 0})
	eval := []core.Object{
		core.NewVectorObject(1, []float64{3, 0}),
		core.NewVectorObject(2, []float64{3, 0}),
	}
	d := core.Euclidean()

	obj := selector.Variance{Weight: 1}
	score, err := obj.Evaluate(eval, d, []core.Object{pivot})
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if score != 0 {
		t.Errorf("expected zero variance for identical projected distances, got %v", score)
	}
}

func TestMaximumMeanEvaluate(t *testing.T) {
	pivot := core.NewVectorObject(0, []float64{0, 0})
	eval := []core.Object{
		core.NewVectorObject(1, []float64{0, 0}),
		core.NewVectorObject(2, []float64{4, 0}),
	}
	d := core.Euclidean()

	obj := selector.MaximumMean{}
	score, err := obj.Evaluate(eval, d, []core.Object{pivot})
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	// single pair chebyshev distance in projected space = |0-4| = 4; mean = 4/2 = 2
	if score != 2 {
		t.Errorf("MaximumMean score = %v, want 2", score)
	}
}
