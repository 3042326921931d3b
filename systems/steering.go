package systems

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/meadow/geom"
)

// Wander samples a new wander destination within radius of pos. The angle is
// a Gaussian perturbation of the previous heading so motion stays smooth.
// If the sample falls outside the arena, heading continuity is dropped and a
// fully random direction is used instead. The result is always inside the
// arena.
func Wander(rng *rand.Rand, arena Arena, pos geom.Vec2, heading, radius, sigma float64) (geom.Vec2, float64) {
	dist := radius * (1 - rng.Float64()) // (0, radius]
	angle := heading + rng.NormFloat64()*sigma

	target, clamped := arena.Clamp(pos.Add(geom.Vec2{X: dist}.Rotate(angle)))
	if clamped {
		angle = rng.Float64() * 2 * math.Pi
		target, _ = arena.Clamp(pos.Add(geom.Vec2{X: dist}.Rotate(angle)))
	}
	return target, normalizeHeading(angle)
}

// Escape returns a flee destination radius away from pos, along the sum of
// unit vectors pointing away from each threat. ok is false when the
// repulsions cancel out exactly; callers fall back to wandering.
func Escape(pos geom.Vec2, threats []geom.Vec2, radius float64) (target geom.Vec2, ok bool) {
	var sum geom.Vec2
	for _, t := range threats {
		away, err := pos.Sub(t).Normalize()
		if err != nil {
			// Coincident threat has no direction.
			continue
		}
		sum = sum.Add(away)
	}
	dir, err := sum.Normalize()
	if err != nil {
		return geom.Vec2{}, false
	}
	return pos.Add(dir.Scale(radius)), true
}

// MoveToward steps from pos toward target by at most step and reports whether
// the target was reached. It never overshoots.
func MoveToward(pos, target geom.Vec2, step float64) (geom.Vec2, bool) {
	d := target.Sub(pos)
	dist := d.Len()
	if dist <= step {
		return target, true
	}
	if step <= 0 {
		return pos, false
	}
	// dist > step >= 0, so d is non-zero
	dir, _ := d.Normalize()
	return pos.Add(dir.Scale(step)), false
}
