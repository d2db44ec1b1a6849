package buckindex_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdymind/buckindex/pkg/buckindex"
)

func Test_EndpointsModel_Returns_Zero_Model_For_Empty_Keys(t *testing.T) {
	t.Parallel()

	m := buckindex.EndpointsModel(nil)
	assert.Equal(t, buckindex.Model{}, m)
}

func Test_EndpointsModel_Fits_Exact_Line_Through_First_And_Last(t *testing.T) {
	t.Parallel()

	keys := []uint64{10, 20, 30, 40}
	m := buckindex.EndpointsModel(keys)

	assert.Equal(t, uint64(0), m.Predict(keys[0]))
	assert.Equal(t, uint64(len(keys)-1), m.Predict(keys[len(keys)-1]))
}

func Test_EndpointsModel_Handles_Degenerate_Zero_Span(t *testing.T) {
	t.Parallel()

	m := buckindex.EndpointsModel([]uint64{5, 5, 5})
	assert.Equal(t, float64(0), m.Slope)
	assert.Equal(t, uint64(0), m.Predict(5))
}

func Test_EndpointsModel_Single_Key(t *testing.T) {
	t.Parallel()

	m := buckindex.EndpointsModel([]uint64{42})
	assert.Equal(t, uint64(0), m.Predict(42))
}

func Test_RegressionModel_Falls_Back_To_Endpoints_When_Slope_Nonpositive(t *testing.T) {
	t.Parallel()

	keys := []uint64{7, 7, 7, 7}
	got := buckindex.RegressionModel(keys)
	want := buckindex.EndpointsModel(keys)

	require.Equal(t, want, got)
}

func Test_RegressionModel_Fits_Monotonic_Population(t *testing.T) {
	t.Parallel()

	keys := make([]uint64, 100)
	for i := range keys {
		keys[i] = uint64(i * 3)
	}

	m := buckindex.RegressionModel(keys)
	require.Greater(t, m.Slope, 0.0)

	// predicted positions should stay within a small band of the true index
	for i, k := range keys {
		p := int(m.Predict(k))
		assert.LessOrEqual(t, abs(p-i), 5, "key %d predicted %d, want near %d", k, p, i)
	}
}

func Test_Model_Predict_Never_Negative(t *testing.T) {
	t.Parallel()

	m := buckindex.Model{Slope: -1, Offset: 0}
	assert.Equal(t, uint64(0), m.Predict(100))
}

func Test_Model_Expand_Scales_Slope_And_Offset(t *testing.T) {
	t.Parallel()

	m := buckindex.Model{Slope: 2, Offset: 4}
	expanded := m.Expand(2)

	assert.Equal(t, buckindex.Model{Slope: 4, Offset: 8}, expanded)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}

	return x
}
