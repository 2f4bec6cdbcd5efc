package main

const (
	ProjectileSpeed    = 60.0  // units/s
	ProjectileMaxRange = 120.0 // units
	ProjectileHitDist  = 0.9   // hit radius against a player's torso point
	MuzzleOffset       = 1.0   // spawn distance ahead of the eye
	// Projectiles past these limits are discarded as having left the level
	projBoundsMargin = 5.0
	projMinY         = -5.0
	projMaxY         = 60.0
)

// Projectile is one in-flight bullet or pellet. IDs are allocated from a
// monotonic counter by the game and never reused within a server run.
type Projectile struct {
	ID         uint64
	OwnerID    string
	X, Y, Z    float64
	DX, DY, DZ float64 // unit direction
	Damage     int
	Traveled   float64
	Color      string // inherited from the owner, cosmetic only
	Alive      bool
}

// advance moves the projectile one timestep and marks it dead on any
// terminal geometry condition: range exhausted, out of the level envelope,
// or absorbed by a level box
func (pr *Projectile) advance(dt float64) {
	step := ProjectileSpeed * dt
	pr.X += pr.DX * step
	pr.Y += pr.DY * step
	pr.Z += pr.DZ * step
	pr.Traveled += step

	if pr.Traveled > ProjectileMaxRange {
		pr.Alive = false
		return
	}
	if pr.X < -LevelHalfX-projBoundsMargin || pr.X > LevelHalfX+projBoundsMargin ||
		pr.Z < -LevelHalfZ-projBoundsMargin || pr.Z > LevelHalfZ+projBoundsMargin ||
		pr.Y < projMinY || pr.Y > projMaxY {
		pr.Alive = false
		return
	}
	for _, b := range LevelBoxes {
		if PointInBox(pr.X, pr.Y, pr.Z, b) {
			pr.Alive = false
			return
		}
	}
}

// hits reports whether the projectile's current position is within the hit
// radius of the player's torso point (position plus half the player height)
func (pr *Projectile) hits(p *Player) bool {
	dx := pr.X - p.X
	dy := pr.Y - (p.Y + PlayerHeight/2)
	dz := pr.Z - p.Z
	return dx*dx+dy*dy+dz*dz < ProjectileHitDist*ProjectileHitDist
}

// ToState converts to the snapshot representation
func (pr *Projectile) ToState() ProjectileState {
	return ProjectileState{
		ID:    pr.ID,
		X:     round2(pr.X),
		Y:     round2(pr.Y),
		Z:     round2(pr.Z),
		Color: pr.Color,
	}
}
