package buckindex

// Piece is one output of [Dynamic]: a maximal run of keys[Start:End]
// covered by Model to within the segmentation's error bound.
type Piece struct {
	Start int
	End   int
	Model Model
}

// Dynamic runs the greedy error corridor (gec) over a sorted, non-empty
// key stream and emits a minimal set of (range, model) pieces such that
// every key in a piece is predicted by that piece's model to within
// epsilon positions, per spec §4.3/§8 "Segmentation tolerance".
//
// fitter selects how each closed piece's model is fit (endpoints or
// regression, spec §4.1); the piece boundary itself never depends on the
// fit mode, only on the gec's admissibility test.
func Dynamic(keys []uint64, epsilon float64, fitter Fitter) []Piece {
	if len(keys) == 0 {
		return nil
	}

	var pieces []Piece

	start := 0
	corridor := newGEC(keys[0], epsilon)

	for i := 1; i < len(keys); i++ {
		// isBounded's internal counter tracks position within the
		// *current* piece; since it counts every call, the position fed
		// in is i-start (1-based from the piece's own anchor), achieved
		// naturally because we re-anchor (and recreate the gec) at each
		// new start.
		if corridor.isBounded(keys[i]) {
			continue
		}

		pieces = append(pieces, Piece{Start: start, End: i, Model: fitter.Fit(keys[start:i])})
		start = i
		corridor = newGEC(keys[i], epsilon)
	}

	pieces = append(pieces, Piece{Start: start, End: len(keys), Model: fitter.Fit(keys[start:])})

	return pieces
}

// Fixed chops n items into runs of size (the last run may be short),
// returning the boundary offsets as consecutive [start,end) pairs. Used
// for the data layer per spec §4.3, where bucket capacity rather than a
// model tolerance sets the boundary.
func Fixed(n, size int) []Piece {
	if n <= 0 {
		return nil
	}

	if size <= 0 {
		size = n
	}

	var pieces []Piece

	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}

		pieces = append(pieces, Piece{Start: start, End: end})
	}

	return pieces
}
