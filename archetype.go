package main

// ArchetypeDef holds the immutable stats for a character archetype.
// Weapon behavior is fully data-driven: multi-pellet spread weapons are
// just PelletCount > 1 with a non-zero SpreadAngle, so new archetypes
// never need a new branch in the tick.
type ArchetypeDef struct {
	Name       string  `json:"name" msgpack:"name"`
	Color      string  `json:"color" msgpack:"color"`
	Weapon     string  `json:"weapon" msgpack:"weapon"`
	MaxHealth  int     `json:"maxHp" msgpack:"maxHp"`
	Speed      float64 `json:"speed" msgpack:"speed"` // units/s
	Damage     int     `json:"damage" msgpack:"damage"`
	FireRate   float64 `json:"fireRate" msgpack:"fireRate"` // min seconds between shots
	ReloadTime float64 `json:"reload" msgpack:"reload"`     // seconds
	MagSize    int     `json:"mag" msgpack:"mag"`
	Pellets    int     `json:"pellets" msgpack:"pellets"`
	Spread     float64 `json:"spread" msgpack:"spread"` // radians
}

const DefaultArchetype = "soldier"

// Archetypes is the full archetype table, keyed by name.
var Archetypes = map[string]*ArchetypeDef{
	"soldier": {
		Name: "soldier", Color: "#4a90d9", Weapon: "Assault Rifle",
		MaxHealth: 100, Speed: 6, Damage: 20,
		FireRate: 0.15, ReloadTime: 1.5, MagSize: 30,
		Pellets: 1, Spread: 0,
	},
	"rusher": {
		Name: "rusher", Color: "#4ad97a", Weapon: "SMG",
		MaxHealth: 70, Speed: 8, Damage: 12,
		FireRate: 0.08, ReloadTime: 1.2, MagSize: 40,
		Pellets: 1, Spread: 0,
	},
	"heavy": {
		Name: "heavy", Color: "#d94a4a", Weapon: "Scattergun",
		MaxHealth: 150, Speed: 4.5, Damage: 80,
		FireRate: 0.9, ReloadTime: 2.5, MagSize: 6,
		Pellets: 8, Spread: 0.06,
	},
	"sniper": {
		Name: "sniper", Color: "#d9c84a", Weapon: "Marksman Rifle",
		MaxHealth: 80, Speed: 5.5, Damage: 100,
		FireRate: 1.2, ReloadTime: 2.0, MagSize: 5,
		Pellets: 1, Spread: 0,
	},
}

// GetArchetype returns the definition for a name, falling back to the
// default for unknown names
func GetArchetype(name string) *ArchetypeDef {
	if a, ok := Archetypes[name]; ok {
		return a
	}
	return Archetypes[DefaultArchetype]
}

// PelletDamage returns per-projectile damage: base damage split evenly
// across pellets
func (a *ArchetypeDef) PelletDamage() int {
	if a.Pellets <= 1 {
		return a.Damage
	}
	return a.Damage / a.Pellets
}
