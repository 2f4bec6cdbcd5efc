package main

// Level bounds: the playable area spans [-LevelHalfX, LevelHalfX] on x and
// [-LevelHalfZ, LevelHalfZ] on z, with the floor at y=0.
const (
	LevelHalfX = 50.0
	LevelHalfZ = 50.0
	GroundY    = 0.0
)

// Box is a static axis-aligned collider: world-space center and half-extents.
// Boxes are identified by their index in LevelBoxes.
type Box struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
	Z float64 `json:"z" msgpack:"z"`
	W float64 `json:"w" msgpack:"w"` // half-extent along x
	H float64 `json:"h" msgpack:"h"` // half-extent along y
	D float64 `json:"d" msgpack:"d"` // half-extent along z
}

// SpawnPoint is a ground-level spawn location
type SpawnPoint struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

// LevelBoxes is the static level geometry: walls, cover and towers.
// Read-only after startup, shared by every subsystem without locking.
var LevelBoxes = []Box{
	// Central wall with a gap on each side
	{X: 0, Y: 2, Z: 0, W: 7, H: 2, D: 0.6},
	// Flanking walls
	{X: -26, Y: 1.75, Z: 0, W: 0.6, H: 1.75, D: 9},
	{X: 26, Y: 1.75, Z: 0, W: 0.6, H: 1.75, D: 9},
	// Crates scattered across the quadrants
	{X: -15, Y: 1, Z: -15, W: 1.5, H: 1, D: 1.5},
	{X: 15, Y: 1, Z: -15, W: 1.5, H: 1, D: 1.5},
	{X: -15, Y: 1, Z: 15, W: 1.5, H: 1, D: 1.5},
	{X: 15, Y: 1, Z: 15, W: 1.5, H: 1, D: 1.5},
	// Low cover near mid
	{X: -8, Y: 0.75, Z: -22, W: 3, H: 0.75, D: 1},
	{X: 8, Y: 0.75, Z: 22, W: 3, H: 0.75, D: 1},
	// Towers at the far ends
	{X: 0, Y: 3, Z: -34, W: 3, H: 3, D: 3},
	{X: 0, Y: 3, Z: 34, W: 3, H: 3, D: 3},
}

// SpawnPoints are the candidate spawn locations, picked uniformly at random
// on join, respawn and match reset. All are at ground level.
var SpawnPoints = []SpawnPoint{
	{X: -40, Z: -40},
	{X: 40, Z: -40},
	{X: -40, Z: 40},
	{X: 40, Z: 40},
	{X: 0, Z: -44},
	{X: 0, Z: 44},
	{X: -44, Z: 0},
	{X: 44, Z: 0},
}

// RandomSpawn picks a spawn point uniformly at random
func RandomSpawn() SpawnPoint {
	return SpawnPoints[int(randFloat()*float64(len(SpawnPoints)))%len(SpawnPoints)]
}
