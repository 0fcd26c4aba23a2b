package selector

import "github.com/patrikhermansson/metricspace/core"

// Manual selects pivots at caller-specified positions, grounded in the
// original source's interactive ManualSelection: here the indices are
// supplied programmatically (by the configuration driver or a test)
// rather than prompted for, since a Selector has no terminal to
// prompt on — prompting, if wanted, is the CLI's job.
type Manual struct {
	Indices []int
}

// NewManual builds a Manual selector over the given pivot indices.
func NewManual(indices []int) *Manual {
	return &Manual{Indices: indices}
}

// Select returns the objects at m.Indices as pivots and everything
// else as remainder, ignoring k (spec's "Manual" selector chooses
// pivots by identity, not by count).
func (m *Manual) Select(data []core.Object, d core.DistanceFunc, k int) ([]core.Object, []core.Object, error) {
	for _, i := range m.Indices {
		if i < 0 || i >= len(data) {
			return nil, nil, core.NewError(core.ConfigError, "manual pivot index out of range")
		}
	}
	chosen, remainder := splitByIndices(data, m.Indices)
	return chosen, remainder, nil
}

// SelectIndices returns m.Indices directly, satisfying IndexSelector.
// The factory still refuses to wire Manual into Incremental Sampling's
// candidate selector slot: that role repeatedly resamples candidates,
// which a fixed index list cannot meaningfully do.
func (m *Manual) SelectIndices(data []core.Object, d core.DistanceFunc, k int) ([]int, error) {
	for _, i := range m.Indices {
		if i < 0 || i >= len(data) {
			return nil, core.NewError(core.ConfigError, "manual pivot index out of range")
		}
	}
	return m.Indices, nil
}
