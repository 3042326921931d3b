package systems

import "github.com/pthm-cable/meadow/geom"

// Nearest scans n candidates and returns the index of the one closest to
// origin within radius (inclusive). pos yields the position of candidate i;
// accept, if non-nil, filters candidates. Ties keep the earlier index, so the
// result follows population order. This is a linear scan.
func Nearest(origin geom.Vec2, radius float64, n int, pos func(i int) geom.Vec2, accept func(i int) bool) (idx int, distSq float64, ok bool) {
	r2 := radius * radius
	best := -1
	bestD := 0.0
	for i := 0; i < n; i++ {
		if accept != nil && !accept(i) {
			continue
		}
		d := pos(i).Sub(origin).LenSq()
		if d > r2 {
			continue
		}
		if best < 0 || d < bestD {
			best = i
			bestD = d
		}
	}
	if best < 0 {
		return -1, 0, false
	}
	return best, bestD, true
}

// Within returns the positions of all accepted candidates within radius of
// origin, in candidate order.
func Within(origin geom.Vec2, radius float64, n int, pos func(i int) geom.Vec2, accept func(i int) bool) []geom.Vec2 {
	r2 := radius * radius
	var out []geom.Vec2
	for i := 0; i < n; i++ {
		if accept != nil && !accept(i) {
			continue
		}
		p := pos(i)
		if p.Sub(origin).LenSq() <= r2 {
			out = append(out, p)
		}
	}
	return out
}
