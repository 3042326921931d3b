package systems

import (
	"math/rand"

	"github.com/pthm-cable/meadow/geom"
)

// Arena is the axis-aligned rectangle agents live in. Positions outside it
// are clamped to the boundary.
type Arena struct {
	Min, Max geom.Vec2
}

// NewArena creates an arena spanning [0, width] x [0, height].
func NewArena(width, height float64) Arena {
	return Arena{Max: geom.V(width, height)}
}

// Width returns the arena width.
func (a Arena) Width() float64 { return a.Max.X - a.Min.X }

// Height returns the arena height.
func (a Arena) Height() float64 { return a.Max.Y - a.Min.Y }

// Contains reports whether p lies inside the arena, boundary included.
func (a Arena) Contains(p geom.Vec2) bool {
	return p.X >= a.Min.X && p.X <= a.Max.X && p.Y >= a.Min.Y && p.Y <= a.Max.Y
}

// Clamp moves p onto the nearest point of the arena and reports whether it
// had to.
func (a Arena) Clamp(p geom.Vec2) (geom.Vec2, bool) {
	c := p.Clamp(a.Min, a.Max)
	return c, c != p
}

// RandomPoint returns a uniformly distributed point inside the arena.
func (a Arena) RandomPoint(rng *rand.Rand) geom.Vec2 {
	return geom.V(
		a.Min.X+rng.Float64()*a.Width(),
		a.Min.Y+rng.Float64()*a.Height(),
	)
}
