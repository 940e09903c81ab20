package field

import "math"

// Particle is a single point of the field. It has no identity beyond its
// slot in the field's slice.
type Particle struct {
	X, Y   float64 // Position, surface pixels
	VX, VY float64 // Velocity, pixels per tick
	Radius float64
	Color  Color
}

// move advances the particle by one tick: velocity, pointer repulsion,
// optional drift, damping, then bounce and clamp.
func (p *Particle) move(f *Field) {
	p.X += p.VX
	p.Y += p.VY

	// Push away from the pointer
	dx := f.pointerX - p.X
	dy := f.pointerY - p.Y
	dist := math.Sqrt(dx*dx + dy*dy)
	if dist > 0 && dist < f.params.PointerRadius {
		force := (f.params.PointerRadius - dist) / f.params.PointerRadius
		p.VX -= dx / dist * force * f.params.PointerStrength
		p.VY -= dy / dist * force * f.params.PointerStrength
	}

	if f.flow != nil {
		fx, fy := f.flow.force(p.X, p.Y, f.ticks)
		p.VX += fx
		p.VY += fy
	}

	p.VX *= f.params.Damping
	p.VY *= f.params.Damping

	// Flip before clamping so the next tick heads back inside
	if p.X < 0 || p.X > f.width {
		p.VX = -p.VX
	}
	if p.Y < 0 || p.Y > f.height {
		p.VY = -p.VY
	}
	p.X = math.Max(0, math.Min(f.width, p.X))
	p.Y = math.Max(0, math.Min(f.height, p.Y))
}
