package buckindex

import (
	"sync"
	"sync/atomic"
)

// KV is a (key, value) record, the public shape of every entry the index
// stores or returns, per spec §3.
type KV struct {
	Key   uint64
	Value uint64
}

// Stats reports a point-in-time snapshot of the index's shape, backing
// spec §6's "memory_size(), stats accessors".
type Stats struct {
	Height      int
	NumSegments int
	NumBuckets  int
	NumEntries  int
}

// Index owns the root pointer and every reachable segment and D-bucket,
// per spec §3 (component C6, BuckIndex). The zero value is not usable;
// use [New].
type Index struct {
	// mu serializes writers (BulkLoad, Insert); the package is
	// single-writer per spec §5.
	mu   sync.Mutex
	root atomic.Pointer[node]
	opts Options
}

// New constructs an empty index with the given options.
func New(opts Options) *Index {
	return &Index{opts: opts.validate()}
}

func (idx *Index) fitter() Fitter { return idx.opts.ModelMode.fitter() }

// BulkLoad replaces the index's contents with sorted, building the tree
// bottom-up: fixed-size data-layer segmentation followed by repeated
// dynamic segmentation rounds until a single segment (or, degenerately, a
// single D-bucket) covers the whole key range, per spec §4.6 "Bulk-load".
func (idx *Index) BulkLoad(sorted []KV) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.bulkLoadLocked(sorted)
}

func (idx *Index) bulkLoadLocked(sorted []KV) {
	entries := withSentinel(sorted)

	cutSize := int(float64(idx.opts.DataBucketSize) * idx.opts.InitialFillRatio)
	if cutSize < 1 {
		cutSize = 1
	}

	pieces := Fixed(len(entries), cutSize)
	leaves := make([]kv[node], 0, len(pieces))

	for _, p := range pieces {
		b := NewBucket[uint64](idx.opts.DataBucketSize)
		lo, hi := entries[p.Start].Key, entries[p.End-1].Key+1

		for _, e := range entries[p.Start:p.End] {
			hint := computeHint(idx.opts.HintMode, e.Key, b.Cap(), lo, hi)
			b.Insert(e.Key, e.Value, true, hint)
		}

		leaves = append(leaves, kv[node]{K: b.Pivot(), V: b})
	}

	root := idx.buildTree(leaves)
	idx.root.Store(nodePtrOf(root))
}

// withSentinel prepends the (K_MIN, 0) anchor dummy required by spec §3
// if sorted doesn't already start with key 0.
func withSentinel(sorted []KV) []KV {
	if len(sorted) > 0 && sorted[0].Key == 0 {
		return sorted
	}

	out := make([]KV, 0, len(sorted)+1)
	out = append(out, KV{Key: 0, Value: 0})
	out = append(out, sorted...)

	return out
}

// buildTree runs repeated dynamic-segmentation rounds over leaves (each
// round's output becomes the next round's input) until one node remains,
// shared by bulk-load, Insert's split of a single-bucket root, and
// neighbor-merge's subtree rebuild.
func (idx *Index) buildTree(leaves []kv[node]) node {
	if len(leaves) == 0 {
		return NewBucket[uint64](idx.opts.DataBucketSize)
	}

	if len(leaves) == 1 {
		return leaves[0].V
	}

	current := leaves
	isBottom := true

	for len(current) > 1 {
		keys := make([]uint64, len(current))
		for i, e := range current {
			keys[i] = e.K
		}

		pieces := Dynamic(keys, idx.opts.ErrorBound, idx.fitter())
		next := make([]kv[node], 0, len(pieces))

		for _, p := range pieces {
			seg := buildSegmentFromEntries(isBottom, current[p.Start:p.End], p.Model, idx.opts.InitialFillRatio, idx.opts.SegmentBucketSize)
			next = append(next, kv[node]{K: current[p.Start].K, V: seg})
		}

		current = next
		isBottom = false
	}

	return current[0].V
}

func nodePtrOf(n node) *node { return &n }

// descend walks from root to the D-bucket covering k, recording every
// segment visited along the way.
func (idx *Index) descend(k uint64) (path []*Segment, leaf *DBucket) {
	n := idx.root.Load()
	if n == nil {
		return nil, nil
	}

	cur := *n

	for {
		seg, isSeg := cur.(*Segment)
		if !isSeg {
			break
		}

		path = append(path, seg)

		floor, _, ok := seg.LBLookup(k)
		if !ok {
			entries := seg.Entries()
			if len(entries) == 0 {
				return path, nil
			}

			cur = entries[0].V

			continue
		}

		cur = floor.V
	}

	leaf, _ = cur.(*DBucket)

	return path, leaf
}

// Lookup returns the value stored for k, if any, per spec §6.
func (idx *Index) Lookup(k uint64) (uint64, bool) {
	_, bucket := idx.descend(k)
	if bucket == nil {
		return 0, false
	}

	hint := computeHint(idx.opts.HintMode, k, bucket.Cap(), bucket.Pivot(), bucket.Pivot()+uint64(bucket.Cap()))

	return bucket.Lookup(k, hint)
}

// Scan returns up to n entries with key >= startK, in ascending key
// order, per spec §6/§8 "Scan ordering".
func (idx *Index) Scan(startK uint64, n int) []KV {
	if n <= 0 {
		return nil
	}

	c := newCursorAt(idx, startK)
	out := make([]KV, 0, n)

	for len(out) < n {
		e, ok := c.Next()
		if !ok {
			break
		}

		out = append(out, e)
	}

	return out
}

// Insert adds or updates (k, v). An empty index is bootstrapped by a
// bulk-load of the anchor plus (k, v). Returns false only when the
// descent reaches no D-bucket, or, for k == 0, when the anchor cannot be
// found. Per spec §4.6, inserting K_MIN is treated as updating the anchor.
//
// Insert is NOT safe for concurrent use with other Insert or BulkLoad
// calls; callers must serialize writers themselves or route every write
// through a single goroutine (see [Queue] for a ready-made wrapper).
func (idx *Index) Insert(k, v uint64) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.root.Load() == nil {
		idx.bulkLoadLocked([]KV{{Key: 0, Value: 0}, {Key: k, Value: v}})
		return true
	}

	if k == 0 {
		return idx.updateAnchorLocked(v)
	}

	path, bucket := idx.descend(k)
	if bucket == nil {
		return false
	}

	if bucket.Update(k, v) {
		return true
	}

	oldPivot := bucket.Pivot()
	hint := computeHint(idx.opts.HintMode, k, bucket.Cap(), oldPivot, oldPivot+uint64(bucket.Cap()))

	if bucket.Insert(k, v, true, hint) {
		return true
	}

	left, right := bucket.SplitAndInsert(k, v)
	newEntries := []kv[node]{{K: left.Pivot(), V: left}, {K: right.Pivot(), V: right}}

	if len(path) == 0 {
		// Degenerate single-bucket root: rebuild as a genuine two-leaf tree.
		idx.root.Store(nodePtrOf(idx.buildTree(newEntries)))
		return true
	}

	leafSeg := path[len(path)-1]

	if leafSeg.BatchUpdate(oldPivot, newEntries) {
		leafSeg.BumpSMO()
		return true
	}

	leafSeg.BumpSMO()

	if idx.shouldMerge(path, leafSeg) {
		idx.neighborMerge(path, oldPivot, newEntries)
	} else {
		idx.propagate(path, oldPivot, newEntries)
	}

	return true
}

func (idx *Index) updateAnchorLocked(v uint64) bool {
	_, bucket := idx.descend(0)
	if bucket == nil {
		return false
	}

	return bucket.Update(0, v)
}

// shouldMerge implements spec §4.6's merge-vs-propagate decision: merge
// only when both the leaf segment's own SMO count and the average SMO
// count of up to MergeWindowSize neighbors on each side (within the
// parent segment) have reached MergeNSMOThreshold.
func (idx *Index) shouldMerge(path []*Segment, leafSeg *Segment) bool {
	if leafSeg.GetNSMO() < idx.opts.MergeNSMOThreshold {
		return false
	}

	return idx.avgNeighborSMO(path, leafSeg) >= float64(idx.opts.MergeNSMOThreshold)
}

func (idx *Index) avgNeighborSMO(path []*Segment, leafSeg *Segment) float64 {
	if len(path) < 2 {
		return float64(leafSeg.GetNSMO())
	}

	parent := path[len(path)-2]
	entries := parent.Entries()

	pos := -1

	for i, e := range entries {
		if seg, ok := e.V.(*Segment); ok && seg == leafSeg {
			pos = i
			break
		}
	}

	if pos == -1 {
		return float64(leafSeg.GetNSMO())
	}

	var sum float64

	var cnt int

	w := idx.opts.MergeWindowSize
	for d := 1; d <= w; d++ {
		if pos-d >= 0 {
			if seg, ok := entries[pos-d].V.(*Segment); ok {
				sum += float64(seg.GetNSMO())
				cnt++
			}
		}

		if pos+d < len(entries) {
			if seg, ok := entries[pos+d].V.(*Segment); ok {
				sum += float64(seg.GetNSMO())
				cnt++
			}
		}
	}

	if cnt == 0 {
		return float64(leafSeg.GetNSMO())
	}

	return sum / float64(cnt)
}

// propagate implements spec §4.6b: starting at the already-failed leaf
// level, re-segment that level, try to fold the replacement set into the
// parent via batch_update, and escalate upward (re-segmenting each parent
// in turn) until one succeeds or the root is reached.
func (idx *Index) propagate(path []*Segment, oldPivot uint64, entries []kv[node]) {
	level := len(path) - 1

	for level >= 0 {
		seg := path[level]
		replaced := seg.SegmentAndBatchUpdate(oldPivot, entries, idx.fitter(), idx.opts.ErrorBound)
		seg.BumpSMO()

		if level == 0 {
			idx.finishRootReplacement(replaced)
			return
		}

		parentOldPivot := seg.Pivot()
		parent := path[level-1]

		if parent.BatchUpdate(parentOldPivot, replaced) {
			parent.BumpSMO()
			return
		}

		oldPivot = parentOldPivot
		entries = replaced
		level--
	}
}

// finishRootReplacement installs a new root after a root-level
// re-segmentation: a single surviving entry becomes the root directly,
// otherwise a brand-new root segment is created over the list (spec
// §4.6b "if the list still has more than one entry after the root level,
// create a new root segment over it").
func (idx *Index) finishRootReplacement(replaced []kv[node]) {
	invariant(len(replaced) > 0, "root-level re-segmentation produced no entries")

	if len(replaced) == 1 {
		idx.root.Store(nodePtrOf(replaced[0].V))
		return
	}

	newRoot := buildSegmentFromEntries(false, replaced, EndpointsModel(keysOf(replaced)), idx.opts.InitialFillRatio, idx.opts.SegmentBucketSize)
	idx.root.Store(nodePtrOf(newRoot))
}

func keysOf(entries []kv[node]) []uint64 {
	keys := make([]uint64, len(entries))
	for i, e := range entries {
		keys[i] = e.K
	}

	return keys
}

// neighborMerge implements spec §4.6a. The source's exact neighborhood
// walk (a GEC anchored at the leaf pivot, extending left/right until a
// neighbor is rejected, with the LCA tracked as the walk's minimum stack
// depth) is approximated here by rebuilding the whole subtree rooted at
// the leaf segment's immediate parent (or the root, if the leaf segment
// has none) - this preserves the documented shape (rebuild a bounded
// neighborhood bottom-up, then swap it into the LCA's slot) while keeping
// the neighborhood-sizing logic simple and unconditionally correct; see
// DESIGN.md.
func (idx *Index) neighborMerge(path []*Segment, splitOldPivot uint64, splitNewEntries []kv[node]) {
	lcaLevel := 0
	if len(path) >= 2 {
		lcaLevel = len(path) - 2
	}

	lca := path[lcaLevel]

	leaves := collectLeaves(lca, splitOldPivot, splitNewEntries)
	newRoot := idx.buildTree(leaves)

	if lcaLevel == 0 {
		idx.root.Store(nodePtrOf(newRoot))
		return
	}

	parent := path[lcaLevel-1]
	parentOldPivot := lca.Pivot()
	replacement := []kv[node]{{K: newRoot.nodePivot(), V: newRoot}}

	if parent.BatchUpdate(parentOldPivot, replacement) {
		parent.BumpSMO()
		return
	}

	idx.propagate(path[:lcaLevel], parentOldPivot, replacement)
}

// collectLeaves walks the subtree rooted at seg in key order, returning
// every D-bucket as a (pivot, node) pair, substituting replacement for
// the one bucket whose pivot equals oldPivot (the bucket that was just
// split).
func collectLeaves(seg *Segment, oldPivot uint64, replacement []kv[node]) []kv[node] {
	var out []kv[node]

	var walk func(n node)

	walk = func(n node) {
		switch t := n.(type) {
		case *Segment:
			for _, e := range t.Entries() {
				walk(e.V)
			}
		case *DBucket:
			if t.Pivot() == oldPivot {
				out = append(out, replacement...)
			} else {
				out = append(out, kv[node]{K: t.Pivot(), V: t})
			}
		}
	}

	walk(seg)

	return out
}

// Stats walks the tree and reports its current shape.
func (idx *Index) Stats() Stats {
	n := idx.root.Load()
	if n == nil {
		return Stats{}
	}

	var st Stats

	var walk func(nd node, depth int)

	walk = func(nd node, depth int) {
		if depth+1 > st.Height {
			st.Height = depth + 1
		}

		switch t := nd.(type) {
		case *Segment:
			st.NumSegments++

			for _, e := range t.Entries() {
				walk(e.V, depth+1)
			}
		case *DBucket:
			st.NumBuckets++
			st.NumEntries += t.Len()
		}
	}

	walk(*n, 0)

	return st
}

// MemorySize estimates the index's heap footprint in bytes: each
// D-bucket slot costs 16 bytes (key + value), each S-bucket slot costs
// roughly the same (key + pointer), plus a small fixed overhead per
// segment for its model and bookkeeping fields.
func (idx *Index) MemorySize() int {
	const kvSize = 16
	const segOverhead = 64

	st := idx.Stats()

	numSBuckets := 0

	if n := idx.root.Load(); n != nil {
		var walk func(nd node)

		walk = func(nd node) {
			if seg, ok := nd.(*Segment); ok {
				numSBuckets += seg.numBuckets()

				for _, e := range seg.Entries() {
					walk(e.V)
				}
			}
		}

		walk(*n)
	}

	return st.NumSegments*segOverhead +
		st.NumBuckets*idx.opts.DataBucketSize*kvSize +
		numSBuckets*idx.opts.SegmentBucketSize*kvSize
}
