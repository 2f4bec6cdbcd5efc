package main

import (
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	TickRate       = 60 // physics ticks per second
	BroadcastRate  = 20 // state broadcasts per second
	TickDuration   = time.Second / TickRate
	BroadcastEvery = TickRate / BroadcastRate
	WinKills       = 15
)

const (
	maxPlayersPerMatch = 16
	maxProjectiles     = 1024
)

// Broadcaster is the outbound side of a connection as seen by the game
type Broadcaster interface {
	SendJSON(msg interface{})
	SendBinary(data []byte)
}

// Game owns the authoritative match state: all players and projectiles,
// the tick loop, and the game-over flag. Every mutation — tick, input
// handler or deferred timer — serializes through mu, so the multi-step
// read-modify-write sequences in update never observe partial state.
type Game struct {
	mu          sync.RWMutex
	players     map[string]*Player
	projectiles map[uint64]*Projectile
	clients     map[string]Broadcaster
	tick        uint64
	nextProjID  uint64 // monotonic, never reused within a run
	playerGen   uint64

	gameOver    bool
	winner      string
	winnerClass string
	matchStart  time.Time

	running bool
	stop    chan struct{}

	db        *DB
	analytics *Analytics
	Metrics   TickMetrics
}

// NewGame creates a Game. db and analytics may be nil (tests).
func NewGame(db *DB, analytics *Analytics) *Game {
	return &Game{
		players:     make(map[string]*Player),
		projectiles: make(map[uint64]*Projectile),
		clients:     make(map[string]Broadcaster),
		matchStart:  time.Now(),
		stop:        make(chan struct{}),
		db:          db,
		analytics:   analytics,
	}
}

// Run starts the fixed-rate tick loop
func (g *Game) Run() {
	g.mu.Lock()
	g.running = true
	g.mu.Unlock()

	ticker := time.NewTicker(TickDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.update()
		case <-g.stop:
			return
		}
	}
}

// Stop terminates the tick loop
func (g *Game) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running {
		g.running = false
		close(g.stop)
	}
}

// update runs one physics tick. Players advance first; each projectile then
// tests its pre-advance position against the already-advanced players, and
// only advances if it hit nobody. The asymmetry matches the reference
// behavior and is pinned by tests — do not reorder.
func (g *Game) update() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.gameOver {
		return
	}

	start := time.Now()
	dt := 1.0 / float64(TickRate)
	g.tick++

	for _, p := range g.players {
		if p.Alive {
			p.step(dt)
		}
	}

	for id, pr := range g.projectiles {
		hit := false
		for _, p := range g.players {
			if !p.Alive || p.ID == pr.OwnerID {
				continue
			}
			if pr.hits(p) {
				g.applyHit(pr, p)
				hit = true
				break
			}
		}
		if hit {
			delete(g.projectiles, id)
			continue
		}
		pr.advance(dt)
		if !pr.Alive {
			delete(g.projectiles, id)
		}
	}

	if g.tick%BroadcastEvery == 0 {
		g.broadcastState()
	}
	g.Metrics.AddTick(time.Since(start).Nanoseconds())
}

// applyHit damages the victim and drives the death / kill-credit / win
// transitions. Caller removes the projectile and holds the lock.
func (g *Game) applyHit(pr *Projectile, victim *Player) {
	died := victim.TakeDamage(pr.Damage)
	g.unicast(victim.ID, Envelope{T: MsgHit, Data: HitMsg{Health: victim.Health}})
	if !died {
		return
	}

	victim.Deaths++
	if killer, ok := g.players[pr.OwnerID]; ok {
		killer.Kills++
		g.broadcastMsg(Envelope{T: MsgKillFeed, Data: KillFeedMsg{
			KillerID:    killer.ID,
			KillerName:  killer.Name,
			KillerClass: killer.Class.Name,
			VictimID:    victim.ID,
			VictimName:  victim.Name,
		}})
		if g.analytics != nil {
			g.analytics.Track(EvtKill, killer.AuthPlayerID, killer.ID, victim.Name)
		}
		if killer.Kills >= WinKills {
			g.finishMatch(killer)
		}
	}
	g.scheduleRespawn(victim)
}

// scheduleRespawn arms the one-shot respawn timer. The callback re-checks
// that the player still exists and carries the generation captured here —
// a disconnect, or a re-join reusing the id, makes it a silent no-op.
func (g *Game) scheduleRespawn(p *Player) {
	id, gen := p.ID, p.Gen
	time.AfterFunc(RespawnDelay, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		q, ok := g.players[id]
		if !ok || q.Gen != gen || q.Alive || g.gameOver {
			return
		}
		q.Respawn()
		g.broadcastMsg(Envelope{T: MsgRespawn, Data: RespawnMsg{ID: id}})
	})
}

// finishMatch flips the match into game-over. The tick loop freezes until a
// new_game request. Stats are persisted off the game goroutine.
func (g *Game) finishMatch(winner *Player) {
	g.gameOver = true
	g.winner = winner.Name
	g.winnerClass = winner.Class.Name
	g.broadcastMsg(Envelope{T: MsgGameOver, Data: GameOverMsg{
		Winner: winner.Name,
		Class:  winner.Class.Name,
	}})

	duration := time.Since(g.matchStart).Seconds()
	if g.analytics != nil {
		g.analytics.Track(EvtMatchEnd, winner.AuthPlayerID, winner.ID, winner.Name)
	}
	if g.db != nil {
		type result struct {
			authID        int64
			kills, deaths int
			won           bool
		}
		results := make([]result, 0, len(g.players))
		for _, p := range g.players {
			if p.AuthPlayerID != 0 {
				results = append(results, result{p.AuthPlayerID, p.Kills, p.Deaths, p == winner})
			}
		}
		db, winnerName := g.db, winner.Name
		go func() {
			matchID, err := db.RecordMatch(winnerName, duration)
			if err != nil {
				Log.Warnf("record match: %v", err)
				return
			}
			for _, r := range results {
				if err := db.UpdateStatsAfterMatch(r.authID, r.kills, r.deaths, r.won, duration); err != nil {
					Log.Warnf("update stats for %d: %v", r.authID, err)
				}
				_ = db.RecordMatchPlayer(matchID, r.authID, r.kills, r.deaths, r.won)
			}
		}()
	}
}

// HandleJoin creates a player. Returns nil if the match is full.
func (g *Game) HandleJoin(name, class string) *Player {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.players) >= maxPlayersPerMatch {
		return nil
	}
	id := GenerateID(4)
	g.playerGen++
	p := NewPlayer(id, name, GetArchetype(class))
	p.Gen = g.playerGen
	g.players[id] = p

	g.broadcastMsg(Envelope{T: MsgPlayerJoined, Data: PlayerJoinedMsg{
		ID:    id,
		Name:  name,
		Class: p.Class.Name,
	}})
	if g.analytics != nil {
		g.analytics.Track(EvtSessionStart, p.AuthPlayerID, id, name)
	}
	return p
}

// RemovePlayer removes a player and announces the departure
func (g *Game) RemovePlayer(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.players[id]
	delete(g.players, id)
	delete(g.clients, id)
	if !ok {
		return
	}
	g.broadcastMsg(Envelope{T: MsgPlayerLeft, Data: PlayerLeftMsg{ID: id, Name: p.Name}})
	if g.analytics != nil {
		g.analytics.Track(EvtSessionEnd, p.AuthPlayerID, id, p.Name)
	}
}

// SetClient associates a broadcaster with a player
func (g *Game) SetClient(playerID string, client Broadcaster) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clients[playerID] = client
}

// HandleMove stores movement intent and look angles. The intent vector is
// normalized to the archetype's speed; look angles are stored verbatim.
// Unknown or dead players are ignored.
func (g *Game) HandleMove(playerID string, in MoveMsg) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.players[playerID]
	if !ok || !p.Alive {
		g.Metrics.IncDropped()
		return
	}
	dx, _, dz, nonzero := normalize3(in.MX, 0, in.MZ)
	if nonzero {
		p.VX = dx * p.Class.Speed
		p.VZ = dz * p.Class.Speed
	} else {
		p.VX = 0
		p.VZ = 0
	}
	p.Yaw = in.Yaw
	p.Pitch = in.Pitch
	if in.Jump && p.Grounded {
		p.VY = JumpImpulse
		p.Grounded = false
	}
	g.Metrics.IncAccepted()
}

// HandleFire validates a fire request and spawns the archetype's pellet
// count. Gated requests (reloading, empty mag, fire-rate interval not yet
// elapsed) are silently dropped per the combat state machine.
func (g *Game) HandleFire(playerID string, in FireMsg) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.gameOver {
		return
	}
	p, ok := g.players[playerID]
	if !ok {
		g.Metrics.IncDropped()
		return
	}
	now := time.Now()
	if !p.CanFire(now) {
		g.Metrics.IncDropped()
		return
	}
	dx, dy, dz, nonzero := normalize3(in.DX, in.DY, in.DZ)
	if !nonzero {
		g.Metrics.IncDropped()
		return
	}

	p.LastShot = now
	p.Ammo--

	pellets := p.Class.Pellets
	if pellets < 1 {
		pellets = 1
	}
	dmg := p.Class.PelletDamage()
	spread := p.Class.Spread
	fired := 0
	for i := 0; i < pellets && len(g.projectiles) < maxProjectiles; i++ {
		pdx, pdy, pdz := dx, dy, dz
		if spread > 0 {
			jx := dx + (randFloat()*2-1)*spread
			jy := dy + (randFloat()*2-1)*spread
			jz := dz + (randFloat()*2-1)*spread
			if nx, ny, nz, ok := normalize3(jx, jy, jz); ok {
				pdx, pdy, pdz = nx, ny, nz
			}
		}
		g.nextProjID++
		g.projectiles[g.nextProjID] = &Projectile{
			ID:      g.nextProjID,
			OwnerID: p.ID,
			X:       p.X + pdx*MuzzleOffset,
			Y:       p.Y + EyeHeight + pdy*MuzzleOffset,
			Z:       p.Z + pdz*MuzzleOffset,
			DX:      pdx,
			DY:      pdy,
			DZ:      pdz,
			Damage:  dmg,
			Color:   p.Class.Color,
			Alive:   true,
		}
		fired++
	}
	g.Metrics.AddFired(fired)

	if p.Ammo == 0 {
		g.startReload(p)
	}
}

// HandleReload starts a manual reload. A no-op while already reloading or
// with a full magazine.
func (g *Game) HandleReload(playerID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.players[playerID]
	if !ok || !p.Alive {
		g.Metrics.IncDropped()
		return
	}
	if p.Reloading || p.Ammo == p.Class.MagSize {
		return
	}
	g.startReload(p)
}

// startReload flips the reloading flag and arms the completion timer.
// Caller holds the lock. ReloadSeq invalidates the timer if the player
// respawns or resets before it fires.
func (g *Game) startReload(p *Player) {
	p.Reloading = true
	p.ReloadSeq++
	id, gen, seq := p.ID, p.Gen, p.ReloadSeq
	dur := time.Duration(p.Class.ReloadTime * float64(time.Second))
	time.AfterFunc(dur, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		q, ok := g.players[id]
		if !ok || q.Gen != gen || q.ReloadSeq != seq || !q.Reloading {
			return
		}
		q.Ammo = q.Class.MagSize
		q.Reloading = false
		g.unicast(id, Envelope{T: MsgReloadDone, Data: ReloadDoneMsg{Ammo: q.Ammo}})
	})
}

// HandleNewGame resets the match. Only effective while game-over.
func (g *Game) HandleNewGame() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.gameOver {
		return
	}
	for _, p := range g.players {
		p.Kills = 0
		p.Deaths = 0
		p.Respawn()
	}
	g.projectiles = make(map[uint64]*Projectile)
	g.gameOver = false
	g.winner = ""
	g.winnerClass = ""
	g.matchStart = time.Now()
	g.broadcastMsg(Envelope{T: MsgGameReset})
	if g.analytics != nil {
		g.analytics.Track(EvtMatchStart, 0, "", "")
	}
}

// PlayerCount returns the number of players
func (g *Game) PlayerCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.players)
}

// HasPlayer reports whether a player id is known
func (g *Game) HasPlayer(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.players[id]
	return ok
}

// GameOver returns the game-over flag and winner name
func (g *Game) GameOver() (bool, string) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.gameOver, g.winner
}

// MapData builds the static payload sent once per connection
func MapData() MapDataMsg {
	return MapDataMsg{
		Boxes:      LevelBoxes,
		Spawns:     SpawnPoints,
		HalfX:      LevelHalfX,
		HalfZ:      LevelHalfZ,
		Archetypes: Archetypes,
	}
}

// broadcastState serializes the snapshot and pushes the identical binary
// frame to every connection. Caller holds the lock; broadcast only ever
// runs at the end of a completed tick.
func (g *Game) broadcastState() {
	state := GameState{
		Players:     make([]PlayerState, 0, len(g.players)),
		Projectiles: make([]ProjectileState, 0, len(g.projectiles)),
		Tick:        g.tick,
	}
	for _, p := range g.players {
		state.Players = append(state.Players, p.ToState())
	}
	for _, pr := range g.projectiles {
		state.Projectiles = append(state.Projectiles, pr.ToState())
	}

	data, err := msgpack.Marshal(&state)
	if err != nil {
		return
	}
	for _, client := range g.clients {
		client.SendBinary(data)
	}
	g.Metrics.IncSnapshots()
}

// broadcastMsg sends a JSON message to every connection
func (g *Game) broadcastMsg(msg Envelope) {
	for _, client := range g.clients {
		client.SendJSON(msg)
	}
}

// unicast sends a JSON message to one player's connection, if attached
func (g *Game) unicast(playerID string, msg Envelope) {
	if client, ok := g.clients[playerID]; ok {
		client.SendJSON(msg)
	}
}
