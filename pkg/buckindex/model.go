package buckindex

import "math"

// Model is a linear predictor over a sorted key population: position of
// key k is predicted as max(0, floor(Slope*k + Offset)). Per spec §3, a
// valid inner-layer model has Slope > 0.
type Model struct {
	Slope  float64
	Offset float64
}

// Predict returns the predicted position of k, clamped to >= 0.
func (m Model) Predict(k uint64) uint64 {
	p := m.Slope*float64(k) + m.Offset
	if p <= 0 {
		return 0
	}

	return uint64(math.Floor(p))
}

// Expand scales the model by f, used when a segment's bucket array is
// resized and every existing position prediction must scale along with it.
func (m Model) Expand(f float64) Model {
	return Model{Slope: m.Slope * f, Offset: m.Offset * f}
}

// Fitter fits a [Model] to a sorted, non-empty key population. Both
// concrete fitters below correspond to spec §4.1's two inner-model modes.
type Fitter interface {
	Fit(keys []uint64) Model
}

// EndpointsFitter fits a line through the first and last point of the
// population: spec §4.1 "endpoints(keys)".
type EndpointsFitter struct{}

// Fit implements [Fitter].
func (EndpointsFitter) Fit(keys []uint64) Model {
	return EndpointsModel(keys)
}

// RegressionFitter fits an ordinary-least-squares line over (key, index)
// pairs, falling back to the endpoints fit if the derived slope is <= 0:
// spec §4.1 "regression(keys)".
type RegressionFitter struct{}

// Fit implements [Fitter].
func (RegressionFitter) Fit(keys []uint64) Model {
	return RegressionModel(keys)
}

// EndpointsModel fits slope = (n-1)/(keys[n-1]-keys[0]), offset =
// -slope*keys[0]. Returns the zero model if keys is empty, and a
// degenerate flat model (slope 0) if the span is zero, per spec §4.1.
func EndpointsModel(keys []uint64) Model {
	n := len(keys)
	if n == 0 {
		return Model{}
	}

	if n == 1 {
		return Model{Slope: 1, Offset: -float64(keys[0])}
	}

	span := float64(keys[n-1]) - float64(keys[0])
	if span == 0 {
		return Model{Slope: 0, Offset: 0}
	}

	slope := float64(n-1) / span
	offset := -slope * float64(keys[0])

	return Model{Slope: slope, Offset: offset}
}

// RegressionModel fits ordinary least squares over (k, i) pairs for i in
// [0, len(keys)), falling back to [EndpointsModel] when the derived slope
// collapses to <= 0 (floating-point degeneracy on near-constant input).
func RegressionModel(keys []uint64) Model {
	n := len(keys)
	if n < 2 {
		return EndpointsModel(keys)
	}

	var sumX, sumY, sumXY, sumXX float64

	for i, k := range keys {
		x := float64(k)
		y := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	fn := float64(n)
	denom := fn*sumXX - sumX*sumX

	if denom == 0 {
		return EndpointsModel(keys)
	}

	slope := (fn*sumXY - sumX*sumY) / denom
	if slope <= 0 {
		return EndpointsModel(keys)
	}

	offset := (sumY - slope*sumX) / fn

	return Model{Slope: slope, Offset: offset}
}
