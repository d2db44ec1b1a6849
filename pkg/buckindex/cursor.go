package buckindex

// segIter is one level of the cross-bucket cursor's stack: a segment's
// sorted entries plus the position of the child the cursor currently
// sits under.
type segIter struct {
	seg     *Segment
	entries []kv[node]
	pos     int
}

// cursor is the ordered D-bucket cursor from spec §4.7 (component C7): a
// stack of segment iterators, one per level on the current root-to-leaf
// path. ++ advances the top iterator, popping and re-descending via
// cbegin of the next segment when the top is exhausted. It backs
// [Index.Scan]; neighbor-merge does not use it and gathers its leaves
// with collectLeaves instead.
type cursor struct {
	stack      []segIter
	leaf       *DBucket
	leafSorted []kv[uint64]
	leafPos    int

	// minDepth is the minimum stack depth observed while advancing,
	// i.e. the lowest common ancestor level touched by the walk so far.
	// Nothing in the package reads it; neighbor-merge picks its rebuild
	// root from the insert path.
	minDepth int

	exhausted bool
}

// newCursorAt descends from root to the leaf D-bucket covering startK,
// recording the path, and positions the leaf at the first entry with
// key >= startK.
func newCursorAt(idx *Index, startK uint64) *cursor {
	c := &cursor{}

	n := idx.root.Load()
	if n == nil {
		c.exhausted = true
		return c
	}

	cur := *n

	for {
		seg, isSeg := cur.(*Segment)
		if !isSeg {
			break
		}

		entries := seg.Entries()
		pos := lowerBoundEntries(entries, startK)
		if pos >= len(entries) {
			pos = len(entries) - 1
		}

		if pos < 0 {
			c.exhausted = true
			return c
		}

		c.stack = append(c.stack, segIter{seg: seg, entries: entries, pos: pos})
		cur = entries[pos].V
	}

	bucket, ok := cur.(*DBucket)
	if !ok {
		c.exhausted = true
		return c
	}

	c.leaf = bucket
	c.leafSorted = bucket.SortedSnapshot()
	c.leafPos = lowerBoundKV(c.leafSorted, startK)
	c.minDepth = len(c.stack)

	if c.leafPos >= len(c.leafSorted) {
		c.advanceToNextLeaf()
	}

	return c
}

// Next returns the current entry and advances, or ok=false when the
// cursor is exhausted.
func (c *cursor) Next() (KV, bool) {
	if c.exhausted || c.leaf == nil || c.leafPos >= len(c.leafSorted) {
		return KV{}, false
	}

	e := c.leafSorted[c.leafPos]
	c.leafPos++

	if c.leafPos >= len(c.leafSorted) {
		c.advanceToNextLeaf()
	}

	return KV{Key: e.K, Value: e.V}, true
}

// advanceToNextLeaf pops exhausted stack frames, advances the first
// non-exhausted one, and re-descends via cbegin (the leftmost child) of
// each level below it until a new leaf D-bucket is reached.
func (c *cursor) advanceToNextLeaf() {
	for len(c.stack) > 0 {
		top := &c.stack[len(c.stack)-1]
		top.pos++

		if top.pos < len(top.entries) {
			break
		}

		c.stack = c.stack[:len(c.stack)-1]
		if len(c.stack) < c.minDepth {
			c.minDepth = len(c.stack)
		}
	}

	if len(c.stack) == 0 {
		c.exhausted = true
		c.leaf = nil
		c.leafSorted = nil

		return
	}

	cur := c.stack[len(c.stack)-1].entries[c.stack[len(c.stack)-1].pos].V

	for {
		seg, isSeg := cur.(*Segment)
		if !isSeg {
			break
		}

		entries := seg.Entries()
		if len(entries) == 0 {
			c.exhausted = true
			c.leaf = nil
			c.leafSorted = nil

			return
		}

		c.stack = append(c.stack, segIter{seg: seg, entries: entries, pos: 0})
		cur = entries[0].V
	}

	bucket, ok := cur.(*DBucket)
	if !ok {
		c.exhausted = true
		return
	}

	c.leaf = bucket
	c.leafSorted = bucket.SortedSnapshot()
	c.leafPos = 0

	if len(c.leafSorted) == 0 {
		c.advanceToNextLeaf()
	}
}

func lowerBoundEntries(entries []kv[node], k uint64) int {
	lo, hi := 0, len(entries)
	for lo < hi {
		mid := (lo + hi) / 2
		if entries[mid].K <= k {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	// lo is the first index with key > k; the floor entry (largest <= k)
	// is lo-1, but a segment's chosen child for k is whichever separator
	// is <= k, so back off by one unless every key exceeds k.
	if lo == 0 {
		return 0
	}

	return lo - 1
}

func lowerBoundKV(entries []kv[uint64], k uint64) int {
	lo, hi := 0, len(entries)
	for lo < hi {
		mid := (lo + hi) / 2
		if entries[mid].K < k {
			lo = mid + 1
		} else {
			hi = mid
		}
	}

	return lo
}
