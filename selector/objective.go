package selector

import (
	"math"

	"github.com/patrikhermansson/metricspace/core"
)

// ObjectiveFunction scores a candidate pivot set against an
// evaluation set: larger is better. Used by IncrementalSampling to
// greedily grow a pivot set one point at a time.
type ObjectiveFunction interface {
	Evaluate(evalSet []core.Object, d core.DistanceFunc, pivots []core.Object) (float64, error)
}

// project maps every point in evalSet to its vector of distances to
// the given pivots — the "projected pivot space" the objective
// functions score in.
func project(evalSet []core.Object, d core.DistanceFunc, pivots []core.Object) ([][]float64, error) {
	proj := make([][]float64, len(evalSet))
	for i, x := range evalSet {
		row := make([]float64, len(pivots))
		for j, p := range pivots {
			dist, err := d(x, p)
			if err != nil {
				return nil, err
			}
			row[j] = dist
		}
		proj[i] = row
	}
	return proj, nil
}

func chebyshev(a, b []float64) float64 {
	var max float64
	for i := range a {
		diff := math.Abs(a[i] - b[i])
		if diff > max {
			max = diff
		}
	}
	return max
}

func euclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

// RadiusSensitive counts pairs of evaluation points whose Chebyshev
// distance in projected pivot space is at least Radius. A higher
// count means the pivot set spreads the evaluation set further apart.
type RadiusSensitive struct {
	Radius float64
}

func (o RadiusSensitive) Evaluate(evalSet []core.Object, d core.DistanceFunc, pivots []core.Object) (float64, error) {
	proj, err := project(evalSet, d, pivots)
	if err != nil {
		return 0, err
	}
	var count float64
	for i := 0; i < len(proj); i++ {
		for j := i + 1; j < len(proj); j++ {
			if chebyshev(proj[i], proj[j]) >= o.Radius {
				count++
			}
		}
	}
	return count, nil
}

// Variance computes the sample variance of pairwise Euclidean
// distances in projected pivot space, scaled by Weight (a zero Weight
// is treated as 1).
type Variance struct {
	Weight float64
}

func (o Variance) Evaluate(evalSet []core.Object, d core.DistanceFunc, pivots []core.Object) (float64, error) {
	proj, err := project(evalSet, d, pivots)
	if err != nil {
		return 0, err
	}
	var pairwise []float64
	for i := 0; i < len(proj); i++ {
		for j := i + 1; j < len(proj); j++ {
			pairwise = append(pairwise, euclidean(proj[i], proj[j]))
		}
	}
	weight := o.Weight
	if weight == 0 {
		weight = 1
	}
	return sampleVariance(pairwise) * weight, nil
}

// MaximumMean is the sum of pairwise Chebyshev distances in projected
// pivot space divided by the number of evaluation points (not by the
// number of pairs).
type MaximumMean struct{}

func (o MaximumMean) Evaluate(evalSet []core.Object, d core.DistanceFunc, pivots []core.Object) (float64, error) {
	proj, err := project(evalSet, d, pivots)
	if err != nil {
		return 0, err
	}
	if len(evalSet) == 0 {
		return 0, nil
	}
	var sum float64
	for i := 0; i < len(proj); i++ {
		for j := i + 1; j < len(proj); j++ {
			sum += chebyshev(proj[i], proj[j])
		}
	}
	return sum / float64(len(evalSet)), nil
}

// NewObjectiveFunction builds the objective function named in
// configuration (spec §6's pivot_selector.params.objective_function).
func NewObjectiveFunction(name string, radiusThreshold, varianceWeight float64) (ObjectiveFunction, error) {
	switch name {
	case "Radius-Sensitive", "Radius Sensitive":
		return RadiusSensitive{Radius: radiusThreshold}, nil
	case "Variance":
		return Variance{Weight: varianceWeight}, nil
	case "Maximum Mean":
		return MaximumMean{}, nil
	default:
		return nil, core.NewError(core.ConfigError, "unknown objective function: "+name)
	}
}
