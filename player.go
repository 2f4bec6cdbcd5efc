package main

import "time"

const (
	PlayerHeight = 1.8
	PlayerRadius = 0.5
	EyeHeight    = 1.6
	Gravity      = 25.0 // units/s², downward
	JumpImpulse  = 9.0
	maxNameLen   = 16
)

// RespawnDelay is how long a dead player stays down. Variable so tests can
// shorten it.
var RespawnDelay = 3 * time.Second

// Player is the authoritative record for one connected player.
// All mutation happens under the game lock.
type Player struct {
	ID    string
	Name  string
	Class *ArchetypeDef
	Gen   uint64 // bumped by the game per join; deferred timers check it

	X, Y, Z    float64
	VX, VY, VZ float64
	Yaw, Pitch float64

	Health    int
	Ammo      int
	Kills     int
	Deaths    int
	Alive     bool
	Reloading bool
	Grounded  bool

	LastShot  time.Time
	ReloadSeq uint32 // invalidates in-flight reload timers

	AuthPlayerID int64 // 0 = guest
}

// NewPlayer creates a player at a random spawn point with full health and ammo
func NewPlayer(id, name string, class *ArchetypeDef) *Player {
	sp := RandomSpawn()
	return &Player{
		ID:       id,
		Name:     name,
		Class:    class,
		X:        sp.X,
		Y:        GroundY,
		Z:        sp.Z,
		Health:   class.MaxHealth,
		Ammo:     class.MagSize,
		Alive:    true,
		Grounded: true,
	}
}

// TakeDamage reduces health and returns true if the player died.
// Health is pinned at 0 exactly when Alive flips false.
func (p *Player) TakeDamage(dmg int) bool {
	if !p.Alive {
		return false
	}
	p.Health -= dmg
	if p.Health <= 0 {
		p.Health = 0
		p.Alive = false
		return true
	}
	return false
}

// Respawn relocates the player to a fresh spawn point with full health
// and ammo
func (p *Player) Respawn() {
	sp := RandomSpawn()
	p.X = sp.X
	p.Y = GroundY
	p.Z = sp.Z
	p.VX = 0
	p.VY = 0
	p.VZ = 0
	p.Health = p.Class.MaxHealth
	p.Ammo = p.Class.MagSize
	p.Alive = true
	p.Grounded = true
	p.Reloading = false
	p.ReloadSeq++
}

// CanFire gates a fire request: alive, not reloading, ammo left, and the
// archetype's fire-rate interval elapsed since the last shot
func (p *Player) CanFire(now time.Time) bool {
	if !p.Alive || p.Reloading || p.Ammo <= 0 {
		return false
	}
	return now.Sub(p.LastShot).Seconds() >= p.Class.FireRate
}

// step advances the player by one fixed timestep: horizontal movement from
// the stored input velocity, gravity, ground clamp, bounds clamp, then
// push-out against every level box.
func (p *Player) step(dt float64) {
	p.X += p.VX * dt
	p.Z += p.VZ * dt

	p.VY -= Gravity * dt
	p.Y += p.VY * dt
	if p.Y <= GroundY {
		p.Y = GroundY
		p.VY = 0
		p.Grounded = true
	}

	p.X = Clamp(p.X, -LevelHalfX+PlayerRadius, LevelHalfX-PlayerRadius)
	p.Z = Clamp(p.Z, -LevelHalfZ+PlayerRadius, LevelHalfZ-PlayerRadius)

	for _, b := range LevelBoxes {
		resolvePlayerBox(p, b)
	}
}

// ToState converts to the snapshot representation
func (p *Player) ToState() PlayerState {
	return PlayerState{
		ID:        p.ID,
		Name:      p.Name,
		Class:     p.Class.Name,
		Color:     p.Class.Color,
		X:         round2(p.X),
		Y:         round2(p.Y),
		Z:         round2(p.Z),
		Yaw:       round2(p.Yaw),
		Pitch:     round2(p.Pitch),
		Health:    p.Health,
		MaxHealth: p.Class.MaxHealth,
		Ammo:      p.Ammo,
		MaxAmmo:   p.Class.MagSize,
		Kills:     p.Kills,
		Alive:     p.Alive,
		Reloading: p.Reloading,
		Grounded:  p.Grounded,
	}
}
