package buckindex_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gdymind/buckindex/pkg/buckindex"
)

// gec itself is unexported; exercise its convex-cone behavior indirectly
// through Dynamic, which is the only public entry point that drives it.

func Test_Dynamic_Covers_Every_Key_In_A_Single_Piece_When_Exactly_Linear(t *testing.T) {
	t.Parallel()

	keys := make([]uint64, 50)
	for i := range keys {
		keys[i] = uint64(i * 2)
	}

	pieces := buckindex.Dynamic(keys, 4, buckindex.EndpointsFitter{})

	require := assert.New(t)
	require.Len(pieces, 1)
	require.Equal(0, pieces[0].Start)
	require.Equal(len(keys), pieces[0].End)
}

func Test_Dynamic_Splits_When_A_Gap_Exceeds_Tolerance(t *testing.T) {
	t.Parallel()

	// A sharp jump partway through should force a new piece: the corridor
	// anchored on the first half cannot also bound the second half within
	// a small epsilon.
	keys := []uint64{0, 1, 2, 3, 4, 10_000, 10_001, 10_002, 10_003, 10_004}

	pieces := buckindex.Dynamic(keys, 1, buckindex.EndpointsFitter{})

	assert.Greater(t, len(pieces), 1, "expected the large gap to force a piece boundary")

	// Pieces must partition [0, len(keys)) contiguously with no gaps/overlaps.
	prevEnd := 0
	for _, p := range pieces {
		assert.Equal(t, prevEnd, p.Start)
		assert.Less(t, p.Start, p.End)
		prevEnd = p.End
	}
	assert.Equal(t, len(keys), prevEnd)
}

func Test_Dynamic_Every_Key_Predicted_Within_Epsilon_Of_Its_Index(t *testing.T) {
	t.Parallel()

	const epsilon = 8

	keys := make([]uint64, 500)
	acc := uint64(0)
	for i := range keys {
		acc += uint64(1 + i%7)
		keys[i] = acc
	}

	pieces := buckindex.Dynamic(keys, epsilon, buckindex.EndpointsFitter{})

	for _, p := range pieces {
		for i := p.Start; i < p.End; i++ {
			predicted := int(p.Model.Predict(keys[i]))
			localIdx := i - p.Start
			diff := predicted - localIdx
			if diff < 0 {
				diff = -diff
			}

			assert.LessOrEqual(t, diff, int(epsilon),
				"key %d at local index %d predicted %d", keys[i], localIdx, predicted)
		}
	}
}

func Test_Dynamic_Empty_Input_Returns_No_Pieces(t *testing.T) {
	t.Parallel()

	assert.Nil(t, buckindex.Dynamic(nil, 4, buckindex.EndpointsFitter{}))
}

func Test_Dynamic_Single_Key_Returns_One_Piece(t *testing.T) {
	t.Parallel()

	pieces := buckindex.Dynamic([]uint64{7}, 4, buckindex.EndpointsFitter{})
	require := assert.New(t)
	require.Len(pieces, 1)
	require.Equal(0, pieces[0].Start)
	require.Equal(1, pieces[0].End)
}
