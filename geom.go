package main

import "math"

// RayIntersectsBox reports whether the segment from origin along the unit
// direction (dx,dy,dz), up to maxDist, hits the box. Standard slab method:
// intersect the per-axis entry/exit intervals and fail as soon as the
// running interval becomes empty.
func RayIntersectsBox(ox, oy, oz, dx, dy, dz float64, b Box, maxDist float64) bool {
	tmin := 0.0
	tmax := maxDist

	orig := [3]float64{ox, oy, oz}
	dir := [3]float64{dx, dy, dz}
	min := [3]float64{b.X - b.W, b.Y - b.H, b.Z - b.D}
	max := [3]float64{b.X + b.W, b.Y + b.H, b.Z + b.D}

	for i := 0; i < 3; i++ {
		if math.Abs(dir[i]) < 1e-9 {
			// Ray parallel to this slab: must already lie within it
			if orig[i] < min[i] || orig[i] > max[i] {
				return false
			}
			continue
		}
		inv := 1.0 / dir[i]
		t1 := (min[i] - orig[i]) * inv
		t2 := (max[i] - orig[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return false
		}
	}
	return true
}

// PointInBox reports whether the point lies inside the box
func PointInBox(x, y, z float64, b Box) bool {
	return math.Abs(x-b.X) <= b.W &&
		math.Abs(y-b.Y) <= b.H &&
		math.Abs(z-b.Z) <= b.D
}

// CylinderOverlapsBox tests a player's collision cylinder (feet at y,
// given height and radius) against a box: the vertical extents must
// overlap and the closest point on the box footprint to (x,z) must be
// within the radius.
func CylinderOverlapsBox(x, y, z, radius, height float64, b Box) bool {
	if y >= b.Y+b.H || y+height <= b.Y-b.H {
		return false
	}
	cx := Clamp(x, b.X-b.W, b.X+b.W)
	cz := Clamp(z, b.Z-b.D, b.Z+b.D)
	ddx := x - cx
	ddz := z - cz
	return ddx*ddx+ddz*ddz < radius*radius
}

// resolvePlayerBox pushes an overlapping player out of a box. The step-up
// case comes first: a descending player whose feet are below the box top is
// snapped onto the top surface, making every box a walkable platform.
// Otherwise the player is pushed out horizontally along the axis with the
// smaller overlap. Callers apply this against every box each tick — no
// early exit, since corners put a player in contact with several boxes.
func resolvePlayerBox(p *Player, b Box) {
	if !CylinderOverlapsBox(p.X, p.Y, p.Z, PlayerRadius, PlayerHeight, b) {
		return
	}

	top := b.Y + b.H
	if p.Y < top && p.VY <= 0 {
		p.Y = top
		p.VY = 0
		p.Grounded = true
		return
	}

	overlapX := (b.W + PlayerRadius) - math.Abs(p.X-b.X)
	overlapZ := (b.D + PlayerRadius) - math.Abs(p.Z-b.Z)
	if overlapX < overlapZ {
		if p.X > b.X {
			p.X += overlapX
		} else {
			p.X -= overlapX
		}
		p.VX = 0
	} else {
		if p.Z > b.Z {
			p.Z += overlapZ
		} else {
			p.Z -= overlapZ
		}
		p.VZ = 0
	}
}
