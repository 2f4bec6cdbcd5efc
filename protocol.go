package main

import "encoding/json"

// Client -> Server message types
const (
	MsgJoin    = "join"
	MsgMove    = "move"
	MsgFire    = "fire"
	MsgReload  = "reload"
	MsgNewGame = "new_game"
	MsgLeave   = "leave"
	// Account messages
	MsgRegister    = "register"
	MsgLogin       = "login"
	MsgAuth        = "auth"
	MsgProfile     = "profile"
	MsgLeaderboard = "leaderboard"
)

// Server -> Client message types
const (
	MsgMapData      = "map_data"
	MsgJoined       = "joined"
	MsgPlayerJoined = "player_joined"
	MsgPlayerLeft   = "player_left"
	MsgHit          = "hit"
	MsgKillFeed     = "kill_feed"
	MsgRespawn      = "respawn"
	MsgReloadDone   = "reload_done"
	MsgGameOver     = "game_over"
	MsgGameReset    = "game_reset"
	MsgSnapshot     = "snapshot" // binary, msgpack-encoded
	MsgError        = "error"
	MsgAuthOK       = "auth_ok"
	MsgProfileData  = "profile_data"
	MsgLeaders      = "leaders"
)

// Envelope wraps all outgoing JSON messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages — json.RawMessage avoids double-unmarshal
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// JoinMsg requests joining the match
type JoinMsg struct {
	Name  string `json:"name"`
	Class string `json:"class"`
}

// MoveMsg carries normalized movement intent and look angles
type MoveMsg struct {
	MX    float64 `json:"mx"` // movement intent x, pre-normalization
	MZ    float64 `json:"mz"` // movement intent z
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
	Jump  bool    `json:"jump"`
}

// FireMsg carries the requested aim vector
type FireMsg struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
	DZ float64 `json:"dz"`
}

// MapDataMsg is sent once per connection: static geometry, bounds and the
// archetype table
type MapDataMsg struct {
	Boxes      []Box                    `json:"boxes"`
	Spawns     []SpawnPoint             `json:"spawns"`
	HalfX      float64                  `json:"halfX"`
	HalfZ      float64                  `json:"halfZ"`
	Archetypes map[string]*ArchetypeDef `json:"classes"`
}

// JoinedMsg confirms a join and carries the assigned identity
type JoinedMsg struct {
	ID    string `json:"id"`
	Class string `json:"class"`
}

// PlayerJoinedMsg is broadcast when a player joins
type PlayerJoinedMsg struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Class string `json:"class"`
}

// PlayerLeftMsg is broadcast when a player disconnects
type PlayerLeftMsg struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// HitMsg is sent only to the player that was hit
type HitMsg struct {
	Health int `json:"hp"`
}

// KillFeedMsg is broadcast on every kill
type KillFeedMsg struct {
	KillerID    string `json:"kid"`
	KillerName  string `json:"kn"`
	KillerClass string `json:"kc"`
	VictimID    string `json:"vid"`
	VictimName  string `json:"vn"`
}

// RespawnMsg is broadcast when a dead player comes back
type RespawnMsg struct {
	ID string `json:"id"`
}

// ReloadDoneMsg is sent only to the reloading player
type ReloadDoneMsg struct {
	Ammo int `json:"ammo"`
}

// GameOverMsg is broadcast when a player reaches the kill threshold
type GameOverMsg struct {
	Winner string `json:"winner"`
	Class  string `json:"class"`
}

// PlayerState is one player's entry in the periodic snapshot
type PlayerState struct {
	ID        string  `json:"id" msgpack:"id"`
	Name      string  `json:"n" msgpack:"n"`
	Class     string  `json:"c" msgpack:"c"`
	Color     string  `json:"col" msgpack:"col"`
	X         float64 `json:"x" msgpack:"x"`
	Y         float64 `json:"y" msgpack:"y"`
	Z         float64 `json:"z" msgpack:"z"`
	Yaw       float64 `json:"yw" msgpack:"yw"`
	Pitch     float64 `json:"pt" msgpack:"pt"`
	Health    int     `json:"hp" msgpack:"hp"`
	MaxHealth int     `json:"mhp" msgpack:"mhp"`
	Ammo      int     `json:"am" msgpack:"am"`
	MaxAmmo   int     `json:"mam" msgpack:"mam"`
	Kills     int     `json:"k" msgpack:"k"`
	Alive     bool    `json:"a" msgpack:"a"`
	Reloading bool    `json:"r" msgpack:"r"`
	Grounded  bool    `json:"g" msgpack:"g"`
}

// ProjectileState is one projectile's entry in the periodic snapshot
type ProjectileState struct {
	ID    uint64  `json:"id" msgpack:"id"`
	X     float64 `json:"x" msgpack:"x"`
	Y     float64 `json:"y" msgpack:"y"`
	Z     float64 `json:"z" msgpack:"z"`
	Color string  `json:"col" msgpack:"col"`
}

// GameState is the full snapshot, broadcast identically to every client as
// a binary msgpack frame
type GameState struct {
	Players     []PlayerState     `json:"p" msgpack:"p"`
	Projectiles []ProjectileState `json:"pr" msgpack:"pr"`
	Tick        uint64            `json:"tick" msgpack:"tick"`
}

// ErrorMsg sends an error to the client
type ErrorMsg struct {
	Msg string `json:"msg"`
}

// RegisterMsg creates an account
type RegisterMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginMsg authenticates with credentials
type LoginMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthMsg authenticates with a previously issued token
type AuthMsg struct {
	Token string `json:"token"`
}

// AuthOKMsg confirms authentication
type AuthOKMsg struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	PlayerID int64  `json:"pid"`
}

// ProfileDataMsg carries lifetime stats for the authenticated player
type ProfileDataMsg struct {
	Username string  `json:"username"`
	Kills    int     `json:"kills"`
	Deaths   int     `json:"deaths"`
	Wins     int     `json:"wins"`
	Losses   int     `json:"losses"`
	Playtime float64 `json:"playtime"`
}

// LeaderboardMsg requests the leaderboard sorted by a stat
type LeaderboardMsg struct {
	OrderBy string `json:"by"`
}
