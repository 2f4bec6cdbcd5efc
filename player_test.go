package main

import (
	"testing"
	"time"
)

func TestNewPlayer(t *testing.T) {
	p := NewPlayer("p1", "Recruit", GetArchetype("soldier"))
	if p.ID != "p1" {
		t.Errorf("expected ID p1, got %s", p.ID)
	}
	if p.Health != p.Class.MaxHealth {
		t.Errorf("expected full health %d, got %d", p.Class.MaxHealth, p.Health)
	}
	if p.Ammo != p.Class.MagSize {
		t.Errorf("expected full mag %d, got %d", p.Class.MagSize, p.Ammo)
	}
	if !p.Alive || !p.Grounded {
		t.Error("expected new player alive and grounded")
	}
	found := false
	for _, sp := range SpawnPoints {
		if p.X == sp.X && p.Z == sp.Z {
			found = true
		}
	}
	if !found {
		t.Errorf("player spawned at (%f, %f), not a spawn point", p.X, p.Z)
	}
}

func TestPlayerTakeDamage(t *testing.T) {
	p := NewPlayer("p1", "Recruit", GetArchetype("soldier"))

	died := p.TakeDamage(30)
	if died {
		t.Error("should not have died from 30 damage")
	}
	if p.Health != 70 {
		t.Errorf("expected health 70, got %d", p.Health)
	}

	died = p.TakeDamage(80)
	if !died {
		t.Error("should have died from 80 more damage")
	}
	if p.Alive {
		t.Error("expected player to be dead")
	}
	if p.Health != 0 {
		t.Errorf("expected health pinned at 0, got %d", p.Health)
	}

	// Dead players take no further damage
	if p.TakeDamage(50) {
		t.Error("dead player should not die again")
	}
}

func TestPlayerRespawn(t *testing.T) {
	p := NewPlayer("p1", "Recruit", GetArchetype("heavy"))
	p.TakeDamage(1000)
	p.VX, p.VZ = 5, 5
	p.Reloading = true
	p.Ammo = 0

	p.Respawn()
	if !p.Alive {
		t.Error("expected player alive after respawn")
	}
	if p.Health != p.Class.MaxHealth || p.Ammo != p.Class.MagSize {
		t.Error("respawn should restore full health and ammo")
	}
	if p.VX != 0 || p.VY != 0 || p.VZ != 0 {
		t.Error("velocity should be zero after respawn")
	}
	if p.Reloading {
		t.Error("respawn should clear the reloading flag")
	}
}

func TestPlayerCanFire(t *testing.T) {
	p := NewPlayer("p1", "Recruit", GetArchetype("soldier"))
	now := time.Now()

	if !p.CanFire(now) {
		t.Error("fresh player should be able to fire")
	}

	p.LastShot = now
	if p.CanFire(now.Add(50 * time.Millisecond)) {
		t.Error("should not fire before the fire-rate interval elapses")
	}
	if !p.CanFire(now.Add(200 * time.Millisecond)) {
		t.Error("should fire after the interval")
	}

	p.Reloading = true
	if p.CanFire(now.Add(time.Second)) {
		t.Error("should not fire while reloading")
	}
	p.Reloading = false

	p.Ammo = 0
	if p.CanFire(now.Add(time.Second)) {
		t.Error("should not fire with an empty mag")
	}
	p.Ammo = 1

	p.Alive = false
	if p.CanFire(now.Add(time.Second)) {
		t.Error("dead player should not fire")
	}
}

func TestPlayerStepGravityAndGround(t *testing.T) {
	p := NewPlayer("p1", "Recruit", GetArchetype("soldier"))
	p.X, p.Z = 10, 10 // clear of geometry
	p.Y = 2
	p.VY = 0
	p.Grounded = false

	for i := 0; i < 120; i++ {
		p.step(1.0 / TickRate)
	}
	if p.Y != GroundY {
		t.Errorf("expected player on the ground, got y=%f", p.Y)
	}
	if !p.Grounded {
		t.Error("expected grounded after falling")
	}
}

func TestPlayerStepJumpArc(t *testing.T) {
	p := NewPlayer("p1", "Recruit", GetArchetype("soldier"))
	p.X, p.Z = 10, 10
	p.VY = JumpImpulse
	p.Grounded = false

	rose := false
	for i := 0; i < 2*TickRate; i++ {
		p.step(1.0 / TickRate)
		if p.Y > 0.5 {
			rose = true
		}
	}
	if !rose {
		t.Error("jump should lift the player off the ground")
	}
	if p.Y != GroundY || !p.Grounded {
		t.Error("player should land and be grounded within two seconds")
	}
}

func TestPlayerStepBoundsClamp(t *testing.T) {
	p := NewPlayer("p1", "Recruit", GetArchetype("rusher"))
	p.X, p.Z = LevelHalfX-1, 10
	p.VX = p.Class.Speed

	for i := 0; i < 5*TickRate; i++ {
		p.step(1.0 / TickRate)
	}
	if p.X > LevelHalfX-PlayerRadius {
		t.Errorf("player escaped the level bounds: x=%f", p.X)
	}
}

func TestPlayerStepWalksOntoBox(t *testing.T) {
	// Crate at (15, 1, 15) with half-height 1: walking into it steps up
	// onto its top surface.
	p := NewPlayer("p1", "Recruit", GetArchetype("soldier"))
	p.X, p.Z = 12, 15
	p.VX = p.Class.Speed

	// Half a second at soldier speed lands the player mid-crate
	for i := 0; i < TickRate/2; i++ {
		p.step(1.0 / TickRate)
	}
	if p.Y != 2 {
		t.Errorf("expected player on the crate top at y=2, got %f", p.Y)
	}
	if !p.Grounded {
		t.Error("expected grounded on the crate")
	}
}
