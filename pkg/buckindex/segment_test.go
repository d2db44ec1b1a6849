package buckindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// leafFor builds a trivial D-bucket standing in as a segment child, so
// segment-level tests don't need a full tree.
func leafFor(pivot uint64) *Bucket[uint64] {
	b := NewBucket[uint64](4)
	b.Insert(pivot, pivot*10, true, 0)

	return b
}

func buildTestSegment(pivots []uint64) *Segment {
	b := NewBucket[node](len(pivots))
	for i, p := range pivots {
		b.Insert(p, node(leafFor(p)), true, i)
	}

	model := EndpointsModel(pivots)

	return NewSegment(true, model, []*Bucket[node]{b}, pivots[0], 0.7, len(pivots))
}

func Test_Segment_LBLookup_Finds_Floor_And_Next_Child(t *testing.T) {
	t.Parallel()

	seg := buildTestSegment([]uint64{10, 20, 30})

	floor, next, ok := seg.LBLookup(25)
	require.True(t, ok)
	assert.Equal(t, uint64(20), floor.K)
	assert.Equal(t, uint64(30), next.K)
}

func Test_Segment_LBLookup_Empty_Segment_Has_No_Floor(t *testing.T) {
	t.Parallel()

	seg := NewSegment(true, Model{}, nil, kMax, 0.7, 8)

	_, next, ok := seg.LBLookup(5)
	assert.False(t, ok)
	assert.Equal(t, kMax, next.K)
}

func Test_Segment_Update_Renames_Pivot_In_Place(t *testing.T) {
	t.Parallel()

	seg := buildTestSegment([]uint64{10, 20, 30})

	require.True(t, seg.Update(20, 21))

	floor, _, ok := seg.LBLookup(21)
	require.True(t, ok)
	assert.Equal(t, uint64(21), floor.K)
}

func Test_Segment_Update_Missing_Pivot_Fails(t *testing.T) {
	t.Parallel()

	seg := buildTestSegment([]uint64{10, 20, 30})
	assert.False(t, seg.Update(999, 1000))
}

func Test_Segment_Entries_Returns_All_Separators_Sorted(t *testing.T) {
	t.Parallel()

	seg := buildTestSegment([]uint64{30, 10, 20})

	entries := seg.Entries()
	require.Len(t, entries, 3)

	for i := 1; i < len(entries); i++ {
		assert.Less(t, entries[i-1].K, entries[i].K)
	}
}

func Test_Segment_BatchUpdate_Replaces_Slot_With_New_Entries(t *testing.T) {
	t.Parallel()

	// A 4-slot S-bucket holding three separators leaves the one spare slot
	// that replacing 20 with two entries needs.
	pivots := []uint64{10, 20, 30}
	b := NewBucket[node](4)

	for i, p := range pivots {
		b.Insert(p, node(leafFor(p)), true, i)
	}

	seg := NewSegment(true, EndpointsModel(pivots), []*Bucket[node]{b}, pivots[0], 0.7, 4)

	newEntries := []kv[node]{
		{K: 20, V: node(leafFor(20))},
		{K: 21, V: node(leafFor(21))},
	}

	require.True(t, seg.BatchUpdate(20, newEntries))

	entries := seg.Entries()
	got := map[uint64]bool{}

	for _, e := range entries {
		got[e.K] = true
	}

	assert.True(t, got[10])
	assert.True(t, got[20])
	assert.True(t, got[21])
	assert.True(t, got[30])
}

func Test_Segment_BatchUpdate_Missing_Pivot_Fails(t *testing.T) {
	t.Parallel()

	seg := buildTestSegment([]uint64{10, 20, 30})
	assert.False(t, seg.BatchUpdate(999, []kv[node]{{K: 1000, V: node(leafFor(1000))}}))
}

func Test_Segment_SegmentAndBatchUpdate_Covers_Every_Merged_Key(t *testing.T) {
	t.Parallel()

	seg := buildTestSegment([]uint64{10, 20, 30})

	replacement := []kv[node]{
		{K: 15, V: node(leafFor(15))},
		{K: 16, V: node(leafFor(16))},
	}

	out := seg.SegmentAndBatchUpdate(20, replacement, EndpointsFitter{}, 4)
	require.NotEmpty(t, out)

	// out is a list of (separator, new-segment) pairs covering the merged
	// key set (10, 15, 16, 30) split into pieces; every original separator
	// except 20 plus every replacement separator must appear somewhere in
	// the rebuilt subtree.
	want := map[uint64]bool{10: true, 15: true, 16: true, 30: true}
	got := map[uint64]bool{}

	for _, e := range out {
		child, ok := e.V.(*Segment)
		require.True(t, ok)

		for _, inner := range child.Entries() {
			got[inner.K] = true
		}
	}

	assert.Equal(t, want, got)
}

func Test_BuildSegmentFromEntries_Packs_SBuckets_To_Capacity(t *testing.T) {
	t.Parallel()

	entries := make([]kv[node], 10)
	for i := range entries {
		entries[i] = kv[node]{K: uint64(i * 10), V: node(leafFor(uint64(i * 10)))}
	}

	seg := buildSegmentFromEntries(true, entries, EndpointsModel(keysOf(entries)), 0.7, 4)

	assert.Equal(t, 3, seg.numBuckets()) // ceil(10/4)
	assert.Len(t, seg.Entries(), 10)
}
