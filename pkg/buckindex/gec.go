package buckindex

import "math"

// gec implements the greedy error corridor streaming test from "Smooth
// Interpolating Histograms with Error Guarantees" (spec §4.2): given a
// base point (x0, 0) and tolerance epsilon, it accepts points one at a
// time and maintains the convex cone of admissible lines through the base
// that keep every accepted point within +/-epsilon of the line's
// predicted position.
//
// Coordinates are carried as float64 relative to the base so the cross
// product orientation tests below are simple 2-D arithmetic regardless of
// how large the keys are.
type gec struct {
	epsilon float64
	baseX   float64

	upperX, upperY float64
	lowerX, lowerY float64

	y       float64
	started bool
}

// newGEC anchors a fresh corridor at baseX with the given tolerance.
func newGEC(baseX uint64, epsilon float64) *gec {
	return &gec{epsilon: epsilon, baseX: float64(baseX)}
}

// cross computes the z-component of the cross product (ax,ay) x (bx,by).
func cross(ax, ay, bx, by float64) float64 {
	return ax*by - ay*bx
}

// isBounded admits k as the next point in the stream. It increments the
// internal counter y, then checks whether (k-x0, y) lies within the
// current cone; on acceptance it tightens whichever bound edge the new
// point falls inside of. The very first point after construction is
// always accepted (there is no cone yet to violate).
func (g *gec) isBounded(k uint64) bool {
	g.y++

	x := float64(k) - g.baseX
	y := g.y

	if !g.started {
		g.started = true
		g.upperX, g.upperY = x, y+g.epsilon
		g.lowerX, g.lowerY = x, math.Max(0, y-g.epsilon)

		return true
	}

	// Reject if (x,y) is counter-clockwise of (above) the upper edge or
	// clockwise of (below) the lower edge relative to the base (origin in
	// local coords).
	if cross(g.upperX, g.upperY, x, y) > 0 {
		return false
	}

	if cross(g.lowerX, g.lowerY, x, y) < 0 {
		return false
	}

	// Tighten the upper edge if the candidate upper point (x, y+eps) now
	// falls inside (clockwise of) the current upper edge.
	candUpperX, candUpperY := x, y+g.epsilon
	if cross(g.upperX, g.upperY, candUpperX, candUpperY) < 0 {
		g.upperX, g.upperY = candUpperX, candUpperY
	}

	// Tighten the lower edge symmetrically.
	candLowerY := y - g.epsilon
	if candLowerY < 0 {
		candLowerY = 0
	}

	candLowerX := x
	if cross(g.lowerX, g.lowerY, candLowerX, candLowerY) > 0 {
		g.lowerX, g.lowerY = candLowerX, candLowerY
	}

	return true
}
