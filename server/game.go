package main

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	TickRate       = 60 // physics ticks per second
	BroadcastRate  = 30 // state broadcasts per second
	ViewRate       = 20 // first-person view frames per second
	TickDuration   = time.Second / TickRate
	BroadcastEvery = TickRate / BroadcastRate
	ViewEvery      = TickRate / ViewRate
	TelemetryEvery = TickRate * 10 // raycast snapshot period in ticks
)

const (
	maxRunnersPerSession = 8
	maxFlaresPerSession  = 200
	maxWardsPerSession   = 16
)

// Broadcaster interface for sending messages to clients
type Broadcaster interface {
	SendJSON(msg interface{})
	SendBinary(data []byte)
}

// Game holds the state for one maze race session
type Game struct {
	mu        sync.RWMutex
	cfg       *Config
	race      *RaceState
	algorithm string
	seed      uint64

	grid  *TileGrid
	spawn int
	goal  int
	gate  int // corridor tile sealed until the plate is pressed, -1 if none
	plate *Plate

	runners  map[string]*Runner
	sentries map[string]*Sentry
	flares   map[string]*Flare
	coins    map[string]*Coin
	mists    map[string]*Mist
	wards    map[string]*Ward

	tree    *Quadtree
	cache   *RaycastCache
	reshape bool // tree must be rebuilt from scratch next tick

	clients map[string]Broadcaster // runnerID -> client
	tick    uint64
	running bool
	stop    chan struct{}
	nextKit int

	sessionID string
	db        *DB
	telemetry *Telemetry
}

// NewGame creates a session world from a maze seed
func NewGame(cfg *Config, db *DB, tel *Telemetry, sessionID, algorithm string, seed uint64) *Game {
	if algorithm != MazeAlgorithmDFS && algorithm != MazeAlgorithmPrim {
		algorithm = cfg.Maze.Algorithm
	}
	g := &Game{
		cfg:       cfg,
		race:      NewRaceState(tunedRace(cfg)),
		algorithm: algorithm,
		seed:      seed,
		runners:   make(map[string]*Runner),
		clients:   make(map[string]Broadcaster),
		stop:      make(chan struct{}),
		sessionID: sessionID,
		db:        db,
		telemetry: tel,
	}
	g.buildWorld(seed)
	return g
}

// tunedRace merges config overrides over the race defaults
func tunedRace(cfg *Config) RaceConfig {
	rc := DefaultRaceConfig()
	if cfg.Race.TimeLimit > 0 {
		rc.TimeLimit = cfg.Race.TimeLimit
	}
	if cfg.Race.MinRunners > 0 {
		rc.MinRunners = cfg.Race.MinRunners
	}
	if cfg.Race.Sentries > 0 {
		rc.Sentries = cfg.Race.Sentries
	}
	if cfg.Race.Mists > 0 {
		rc.Mists = cfg.Race.Mists
	}
	if cfg.Race.Coins > 0 {
		rc.Coins = cfg.Race.Coins
	}
	return rc
}

// buildWorld carves the maze and populates sentries, mists, coins and the
// gate plate. Runner entities survive a rebuild; everything else is fresh.
func (g *Game) buildWorld(seed uint64) {
	w := g.cfg.World
	origin := Vec2{X: w.OriginX, Y: w.OriginY}
	grid, spawn, goal := GenerateMaze(w.Cols, w.Rows, w.TileW, w.TileH, origin, g.algorithm, seed)
	g.grid, g.spawn, g.goal = grid, spawn, goal

	// Seal the goal behind a gate: the corridor tile right before the goal
	// on the solved route. The pressure plate reopens it.
	g.gate = -1
	if route := GeneratePathInstructions(grid, spawn, goal); len(route) >= 2 {
		g.gate = route[1]
		grid.SetWalkable(g.gate, false)
	}

	// Deterministic placement from the session seed
	rng := newMazeRand(seed ^ 0x9e3779b97f4a7c15)
	dist := floodDistances(grid, spawn)

	open := make([]int, 0, len(dist))
	for ti := range dist {
		if ti != spawn && ti != goal {
			open = append(open, ti)
		}
	}
	sort.Slice(open, func(i, j int) bool {
		if dist[open[i]] != dist[open[j]] {
			return dist[open[i]] < dist[open[j]]
		}
		return open[i] < open[j]
	})

	taken := map[int]bool{spawn: true, goal: true}
	pick := func(from int) int {
		// Random untaken reachable tile, no closer to spawn than open[from]
		if from < 0 || from >= len(open) {
			from = 0
		}
		for tries := 0; tries < 32; tries++ {
			ti := open[from+rng.intn(len(open)-from)]
			if !taken[ti] {
				taken[ti] = true
				return ti
			}
		}
		return -1
	}

	rc := g.race.Config

	g.sentries = make(map[string]*Sentry)
	for i := 0; i < rc.Sentries && len(open) > 0; i++ {
		home := pick(len(open) / 3)
		if home < 0 {
			break
		}
		patrol := []int{home}
		for p := 0; p < 2; p++ {
			if wp := pick(len(open) / 4); wp >= 0 {
				patrol = append(patrol, wp)
			}
		}
		s := NewSentry(grid, home, patrol)
		g.sentries[s.Ent.ID] = s
	}

	g.mists = make(map[string]*Mist)
	for i := 0; i < rc.Mists && len(open) > 0; i++ {
		ti := pick(len(open) / 4)
		if ti < 0 {
			break
		}
		m := NewMist(grid, ti)
		g.mists[m.Ent.ID] = m
	}

	g.coins = make(map[string]*Coin)
	for i := 0; i < rc.Coins && len(open) > 0; i++ {
		ti := pick(0)
		if ti < 0 {
			break
		}
		c := NewCoin(grid, ti)
		g.coins[c.Ent.ID] = c
	}

	// Plate goes in the far half so the gate is earned
	g.plate = nil
	if g.gate >= 0 && len(open) > 0 {
		if ti := pick(len(open) / 2); ti >= 0 {
			g.plate = NewPlate(grid, ti, g.gate)
		}
	}

	g.flares = make(map[string]*Flare)
	g.wards = make(map[string]*Ward)

	g.cache = &RaycastCache{}
	g.tree = NewQuadtree(origin.X, origin.Y, grid.Width(), grid.Height())
	for _, r := range g.runners {
		g.tree.Insert(r.Ent)
	}
	for _, s := range g.sentries {
		g.tree.Insert(s.Ent)
	}
	for _, m := range g.mists {
		g.tree.Insert(m.Ent)
	}
	for _, c := range g.coins {
		g.tree.Insert(c.Ent)
	}
	if g.plate != nil {
		g.tree.Insert(g.plate.Ent)
	}
	g.reshape = false
}

// floodDistances walks the corridor graph breadth-first and returns
// tile index -> step distance from the start tile. Tiles sealed behind
// the gate are absent, so placement never strands anything there.
func floodDistances(grid *TileGrid, from int) map[int]int {
	dist := map[int]int{from: 0}
	queue := []int{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		cx, cy := grid.CoordsOf(cur)
		for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			nx, ny := cx+d[0], cy+d[1]
			if !grid.InBounds(nx, ny) {
				continue
			}
			ni := grid.Index(nx, ny)
			if _, seen := dist[ni]; seen || !grid.Walkable(ni) {
				continue
			}
			dist[ni] = dist[cur] + 1
			queue = append(queue, ni)
		}
	}
	return dist
}

// Run starts the game loop
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

// Stop terminates the game loop
func (g *Game) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running {
		g.running = false
		close(g.stop)
	}
}

// AddRunner adds a new runner to the session. kit < 0 auto-assigns.
func (g *Game) AddRunner(name string, kit int) *Runner {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.runners) >= maxRunnersPerSession {
		return nil
	}
	if kit < 0 || kit >= len(RunnerKits) {
		kit = g.nextKit % len(RunnerKits)
		g.nextKit++
	}
	id := GenerateID(4)
	r := NewRunner(id, name, RunnerKit(kit), g.grid, g.spawn)
	g.runners[id] = r
	g.race.StatsFor(id)
	g.tree.Insert(r.Ent)
	return r
}

// RemoveRunner removes a runner from the session
func (g *Game) RemoveRunner(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.runners, id)
	delete(g.clients, id)
	g.race.DropRunner(id)
	g.reshape = true

	// A departure can satisfy the remaining runners' ready/finish checks
	if len(g.runners) == 0 {
		return
	}
	switch g.race.Phase {
	case PhaseLobby:
		if g.race.AllReady(len(g.runners)) {
			g.startCountdown()
		}
	case PhaseRunning:
		all := true
		for _, r := range g.runners {
			if !r.Finished {
				all = false
				break
			}
		}
		if all {
			g.finishRace()
		}
	}
}

// SetClient associates a broadcaster with a runner
func (g *Game) SetClient(runnerID string, client Broadcaster) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clients[runnerID] = client
}

// HandleInput processes one intent frame from a runner
func (g *Game) HandleInput(runnerID string, input ClientInput) {
	g.mu.Lock()
	defer g.mu.Unlock()

	r, ok := g.runners[runnerID]
	if !ok {
		return
	}
	r.MoveX = clampAxis(input.DX)
	r.MoveY = clampAxis(input.DY)
	if input.Vault {
		r.WantVault = true
	}
	if input.Flare {
		r.WantFlare = true
	}
	if input.Power {
		r.WantPower = true
	}
	if input.Auto {
		r.WantAuto = true
	}
	// Manual steering cancels the autopilot
	if r.Autopilot && (r.MoveX != 0 || r.MoveY != 0) {
		r.Autopilot = false
		r.Route = nil
	}
}

func clampAxis(v int) int {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// HandleReady marks a runner ready; all ready starts the countdown
func (g *Game) HandleReady(runnerID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.race.Ready(runnerID)
	if g.race.AllReady(len(g.runners)) {
		g.startCountdown()
	}
}

// HandleRematch registers a rematch vote; unanimity rebuilds the world
func (g *Game) HandleRematch(runnerID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.race.VoteRematch(runnerID)
	if g.race.AllVoted(len(g.runners)) {
		g.resetRace()
	}
}

// RunnerCount returns the number of runners
func (g *Game) RunnerCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.runners)
}

// Phase returns the current race phase
func (g *Game) Phase() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return int(g.race.Phase)
}

// MazeSnapshot builds the layout message sent on join and rematch
func (g *Game) MazeSnapshot() MazeMsg {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.mazeSnapshotLocked()
}

func (g *Game) mazeSnapshotLocked() MazeMsg {
	tiles := make([]byte, len(g.grid.Tiles))
	for i := range g.grid.Tiles {
		if g.grid.Tiles[i].Walkable {
			tiles[i] = 1
		}
	}
	plateTile := -1
	if g.plate != nil {
		plateTile = g.grid.TileIndex(g.plate.Ent.Center())
	}
	return MazeMsg{
		Cols:    g.grid.Cols,
		Rows:    g.grid.Rows,
		TileW:   g.grid.TileW,
		TileH:   g.grid.TileH,
		OriginX: g.grid.Origin.X,
		OriginY: g.grid.Origin.Y,
		Tiles:   tiles,
		Spawn:   g.spawn,
		Goal:    g.goal,
		Gate:    g.gate,
		Plate:   plateTile,
	}
}

func (g *Game) startCountdown() {
	g.race.StartCountdown()
	g.broadcastMsg(Envelope{T: MsgPhase, Data: PhaseMsg{
		Phase:     int(PhaseCountdown),
		Countdown: g.race.Config.CountdownTime,
	}})
}

// update runs one game tick
func (g *Game) update() {
	g.mu.Lock()
	defer g.mu.Unlock()

	dt := 1.0 / float64(TickRate)
	g.tick++

	g.updateRace(dt)

	if g.race.Phase == PhaseRunning {
		g.updateRunners(dt)
		g.updateSentries(dt)
		g.updateFlares(dt)
		g.updateCoins(dt)
		g.updateMists(dt)
		g.updateWards(dt)

		g.refreshTree()

		g.checkFlareHits()
		g.checkCaptures()
		g.checkPickups()
		g.checkWards(dt)
		g.checkFinish()
	}

	if g.telemetry != nil && g.tick%TelemetryEvery == 0 && g.cache.Evaluations > 0 {
		g.telemetry.TrackRaycast(g.sessionID, g.cache)
		*g.cache = RaycastCache{}
	}

	if g.tick%BroadcastEvery == 0 {
		g.broadcastState()
	}
	if g.race.Phase == PhaseRunning && g.tick%ViewEvery == 0 {
		g.broadcastViews()
	}
}

// updateRace drives the lobby/countdown/running/finished phase machine
func (g *Game) updateRace(dt float64) {
	switch g.race.Phase {
	case PhaseCountdown:
		g.race.CountdownT -= dt
		if g.race.CountdownT <= 0 {
			g.race.StartRunning()
			g.broadcastMsg(Envelope{T: MsgPhase, Data: PhaseMsg{Phase: int(PhaseRunning)}})
			if g.telemetry != nil {
				g.telemetry.Track(EvtRunStart, 0, g.sessionID, "")
			}
		}
	case PhaseRunning:
		g.race.Clock += dt
		g.race.TimeLeft -= dt
		if g.race.TimeLeft <= 0 {
			g.finishRace()
		}
	case PhaseFinished:
		g.race.ResultTimer -= dt
		if g.race.ResultTimer <= 0 {
			g.resetRace()
		}
	}
}

func (g *Game) updateRunners(dt float64) {
	for _, r := range g.runners {
		if r.WantPower {
			r.WantPower = false
			g.tryPower(r)
		}
		if r.WantVault {
			r.WantVault = false
			r.StartVault()
		}
		if r.WantFlare {
			r.WantFlare = false
			if r.CanFlare() && len(g.flares) < maxFlaresPerSession {
				fl := NewFlare(r)
				g.flares[fl.Ent.ID] = fl
				r.FlareCD = GetKitDef(r.Kit).FlareCD
				g.reshape = true
			}
		}
		if r.WantAuto {
			r.WantAuto = false
			g.toggleAutopilot(r)
		}

		r.Update(dt, g.grid, g.cfg.Gravity)

		if r.Falling && r.FallT <= 0 {
			r.RespawnAt(g.grid, g.spawn)
		}
	}
}

// tryPower spends coins to fire the runner's kit power
func (g *Game) tryPower(r *Runner) {
	kd := GetKitDef(r.Kit)
	if !r.Power.CanActivate() || r.Coins < kd.PowerCost {
		return
	}
	r.Coins -= kd.PowerCost
	r.Power.Activate()
	if r.Power.Type == PowerWard && len(g.wards) < maxWardsPerSession {
		c := r.Ent.Center()
		w := NewWard(c.X, c.Y, r.Ent.ID)
		g.wards[w.ID] = w
	}
}

func (g *Game) toggleAutopilot(r *Runner) {
	if r.Autopilot {
		r.Autopilot = false
		r.Route = nil
		return
	}
	route := GeneratePathInstructions(g.grid, g.grid.TileIndex(r.Ent.Center()), g.goal)
	if len(route) == 0 {
		// Goal still sealed behind the gate
		return
	}
	r.Route = route
	r.Autopilot = true
}

func (g *Game) updateSentries(dt float64) {
	occluders := make([]Rect, 0, len(g.mists))
	for _, m := range g.mists {
		occluders = append(occluders, m.Occluder())
	}
	for _, s := range g.sentries {
		s.Update(dt, g.grid, g.runners, occluders)
		if s.PendingPhrase != "" {
			g.broadcastMsg(Envelope{T: MsgPhrase, Data: PhraseMsg{
				SentryID: s.Ent.ID,
				Text:     s.PendingPhrase,
			}})
		}
	}
}

func (g *Game) updateFlares(dt float64) {
	for id, f := range g.flares {
		f.Update(dt, g.grid)
		if !f.Ent.Alive {
			delete(g.flares, id)
			g.reshape = true
		}
	}
}

func (g *Game) updateCoins(dt float64) {
	for _, c := range g.coins {
		c.Update(dt, g.cfg.Gravity)
	}
}

func (g *Game) updateMists(dt float64) {
	for _, m := range g.mists {
		m.Update(dt, g.grid)
	}
}

func (g *Game) updateWards(dt float64) {
	for id, w := range g.wards {
		if !w.Update(dt) {
			delete(g.wards, id)
		}
	}
}

// refreshTree keeps the quadtree in step with the world. Additions and
// removals force a rebuild; otherwise mobile entities are re-sorted.
func (g *Game) refreshTree() {
	if !g.reshape {
		g.tree.Update()
		return
	}
	g.reshape = false
	g.tree.Clear()
	for _, r := range g.runners {
		g.tree.Insert(r.Ent)
	}
	for _, s := range g.sentries {
		g.tree.Insert(s.Ent)
	}
	for _, f := range g.flares {
		g.tree.Insert(f.Ent)
	}
	for _, c := range g.coins {
		g.tree.Insert(c.Ent)
	}
	for _, m := range g.mists {
		g.tree.Insert(m.Ent)
	}
	if g.plate != nil {
		g.tree.Insert(g.plate.Ent)
	}
}

// checkFlareHits resolves flares against sentries. An incoming flare on a
// collision course warns the sentry before impact; contact stuns it.
func (g *Game) checkFlareHits() {
	for id, f := range g.flares {
		if !f.Ent.Alive {
			continue
		}
		box := f.Ent.Box()
		region := Rect{
			X: box.X - SentrySize,
			Y: box.Y - SentrySize,
			W: box.W + 2*SentrySize,
			H: box.H + 2*SentrySize,
		}
		for _, e := range g.tree.Query(region) {
			if e.Kind != KindSentry {
				continue
			}
			s, ok := g.sentries[e.ID]
			if !ok {
				continue
			}
			fm := f.Ent.Motion
			sm := s.Ent.Motion
			if CheckPredictiveCollision(g.cache,
				f.Ent.Pos(), fm.Dir, fm.Speed, fm.Accel,
				s.Ent.Pos(), headingVec(sm.Heading), sm.Speed, sm.Accel) {
				s.Warn()
			}
			if CheckCircleCollision(f.Ent.Center(), f.Ent.Radius, s.Ent.Center(), s.Ent.Radius) {
				s.TakeHit(fm.Dir)
				delete(g.flares, id)
				g.reshape = true
				break
			}
		}
	}
}

// checkCaptures resolves sentry-runner contact. Vaulting runners pass
// overhead untouched.
func (g *Game) checkCaptures() {
	for _, s := range g.sentries {
		if s.Stunned > 0 {
			continue
		}
		for _, e := range g.tree.Query(s.Ent.Box()) {
			if e.Kind != KindRunner {
				continue
			}
			r, ok := g.runners[e.ID]
			if !ok || r.Falling || r.Vaulting || r.Finished {
				continue
			}
			if !CheckCircleCollision(s.Ent.Center(), s.Ent.Radius, r.Ent.Center(), r.Ent.Radius) {
				continue
			}
			if !CheckPixelCollision(s.Ent.CurrentMask(), s.Ent.Pos(), s.Ent.Size(),
				r.Ent.CurrentMask(), r.Ent.Pos(), r.Ent.Size()) {
				continue
			}

			dropped := ApplyCapture(r)
			g.scatterCoins(r, dropped)
			g.race.StatsFor(e.ID).Captures++

			g.broadcastMsg(Envelope{T: MsgCapture, Data: CaptureMsg{
				SentryID:   s.Ent.ID,
				RunnerID:   e.ID,
				RunnerName: r.Name,
			}})
			if client, ok := g.clients[e.ID]; ok {
				client.SendJSON(Envelope{T: MsgCaptured, Data: CapturedMsg{SentryID: s.Ent.ID}})
			}
			if g.telemetry != nil {
				g.telemetry.Track(EvtCapture, r.AuthPlayerID, g.sessionID, "")
			}
		}
	}
}

// scatterCoins drops a captured runner's lost coins on adjacent corridor
// tiles, at most one per tile; any overflow evaporates
func (g *Game) scatterCoins(r *Runner, dropped int) {
	if dropped <= 0 {
		return
	}
	tx, ty := g.grid.TileCoords(r.Ent.Center())
	placed := 0
	for _, d := range [5][2]int{{0, 0}, {1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		if placed >= dropped {
			break
		}
		nx, ny := tx+d[0], ty+d[1]
		if !g.grid.InBounds(nx, ny) {
			continue
		}
		ti := g.grid.Index(nx, ny)
		if !g.grid.Walkable(ti) {
			continue
		}
		c := NewCoin(g.grid, ti)
		g.coins[c.Ent.ID] = c
		g.reshape = true
		placed++
	}
}

// checkPickups resolves runner contact with coins and the gate plate
func (g *Game) checkPickups() {
	for _, r := range g.runners {
		if r.Falling || r.Vaulting || r.Finished {
			continue
		}
		for _, e := range g.tree.Query(r.Ent.Box()) {
			switch e.Kind {
			case KindCoin:
				c, ok := g.coins[e.ID]
				if !ok {
					continue
				}
				if !CheckBoxCollision(r.Ent.Pos(), r.Ent.Size(), c.Ent.Pos(), c.Ent.Size()) {
					continue
				}
				if !CheckPixelCollision(r.Ent.CurrentMask(), r.Ent.Pos(), r.Ent.Size(),
					c.Ent.CurrentMask(), c.Ent.Pos(), c.Ent.Size()) {
					continue
				}
				delete(g.coins, e.ID)
				g.reshape = true
				r.Coins += CoinValue
				r.Score += CoinValue
				g.race.StatsFor(r.Ent.ID).Coins += CoinValue
				g.broadcastMsg(Envelope{T: MsgCoin, Data: CoinMsg{
					RunnerID: r.Ent.ID,
					CoinID:   e.ID,
					Total:    r.Coins,
				}})
				if g.telemetry != nil {
					g.telemetry.Track(EvtCoinPickup, r.AuthPlayerID, g.sessionID, "")
				}
			case KindPlate:
				if g.plate == nil || g.plate.Ent.ID != e.ID {
					continue
				}
				if !CheckPixelCollision(r.Ent.CurrentMask(), r.Ent.Pos(), r.Ent.Size(),
					g.plate.Ent.CurrentMask(), g.plate.Ent.Pos(), g.plate.Ent.Size()) {
					continue
				}
				if g.plate.Press(g.grid) {
					g.broadcastMsg(Envelope{T: MsgPlate, Data: PlateMsg{
						RunnerID: r.Ent.ID,
						Gate:     g.gate,
					}})
					if g.telemetry != nil {
						g.telemetry.Track(EvtPlatePressed, r.AuthPlayerID, g.sessionID, "")
					}
				}
			}
		}
	}
}

// checkWards pushes sentries out of active ward circles
func (g *Game) checkWards(dt float64) {
	for _, w := range g.wards {
		for _, s := range g.sentries {
			c := s.Ent.Center()
			if Distance(c.X, c.Y, w.X, w.Y) > w.Radius {
				continue
			}
			s.Repel(Vec2{X: w.X, Y: w.Y}, dt, g.grid)
		}
	}
}

// checkFinish marks runners standing on the goal tile and ends the race
// once everyone is through
func (g *Game) checkFinish() {
	for _, r := range g.runners {
		if r.Finished || r.Falling {
			continue
		}
		if g.grid.TileIndex(r.Ent.Center()) != g.goal {
			continue
		}
		r.Finished = true
		r.FinishT = g.race.Clock
		st := g.race.StatsFor(r.Ent.ID)
		st.Finished = true
		st.FinishT = r.FinishT

		first := g.race.WinnerID == ""
		if first {
			g.race.WinnerID = r.Ent.ID
		}
		g.broadcastMsg(Envelope{T: MsgFinish, Data: FinishMsg{
			RunnerID: r.Ent.ID,
			Name:     r.Name,
			Time:     round1(r.FinishT),
			Winner:   first,
		}})
	}

	if len(g.runners) == 0 {
		return
	}
	for _, r := range g.runners {
		if !r.Finished {
			return
		}
	}
	g.finishRace()
}

// finishRace closes the running phase and persists results. On a timeout
// with no finisher the coin leader takes the win.
func (g *Game) finishRace() {
	if g.race.Phase != PhaseRunning {
		return
	}
	if g.race.WinnerID == "" {
		best := -1
		for id, r := range g.runners {
			if r.Coins > best {
				best = r.Coins
				g.race.WinnerID = id
			}
		}
	}
	g.race.Finish()
	g.broadcastMsg(Envelope{T: MsgPhase, Data: PhaseMsg{Phase: int(PhaseFinished)}})
	g.persistResults()
}

// xpForRun converts a race result into experience
func xpForRun(st *RunnerRaceStats, won bool) int {
	xp := 20 + st.Coins*10 - st.Captures*5
	if st.Finished {
		xp += 50
	}
	if won {
		xp += 100
	}
	if xp < 10 {
		xp = 10
	}
	return xp
}

// persistResults writes the race to the database and notifies runners of
// credits, level-ups and fresh achievements
func (g *Game) persistResults() {
	duration := g.race.Clock
	if g.telemetry != nil {
		data, _ := json.Marshal(map[string]interface{}{
			"algorithm": g.algorithm,
			"duration":  round1(duration),
		})
		g.telemetry.Track(EvtRunEnd, 0, g.sessionID, string(data))
	}
	if g.db == nil {
		return
	}

	var winnerAuth int64
	if w, ok := g.runners[g.race.WinnerID]; ok {
		winnerAuth = w.AuthPlayerID
	}
	runID, err := g.db.RecordRun(g.algorithm, duration, winnerAuth)
	if err != nil {
		log.Printf("record run: %v", err)
		return
	}

	for id, r := range g.runners {
		if r.AuthPlayerID == 0 {
			continue // guests without an account carry nothing over
		}
		st := g.race.StatsFor(id)
		won := id == g.race.WinnerID
		xp := xpForRun(st, won)

		if err := g.db.RecordRunPlayer(runID, r.AuthPlayerID, st.Coins, st.Captures, st.Finished, st.FinishT, r.Score, xp); err != nil {
			log.Printf("record run player: %v", err)
		}
		totalXP, newLevel, err := g.db.UpdateStatsAfterRun(r.AuthPlayerID, st.Coins, st.Captures, st.Finished, won, duration, xp)
		if err != nil {
			log.Printf("update stats: %v", err)
			continue
		}
		if err := g.db.AddCredits(r.AuthPlayerID, CreditsPerRun(st.Coins, st.Captures, won)); err != nil {
			log.Printf("add credits: %v", err)
		}

		client := g.clients[id]
		if client != nil && newLevel > CalculateLevel(totalXP-xp) {
			client.SendJSON(Envelope{T: MsgLevelUp, Data: LevelUpMsg{Level: newLevel, XP: totalXP}})
			if g.telemetry != nil {
				g.telemetry.Track(EvtLevelUp, r.AuthPlayerID, g.sessionID, "")
			}
		}
		for _, a := range CheckAchievements(g.db, r.AuthPlayerID, st.Coins, st.Captures, st.Finished, st.FinishT, won) {
			if client != nil {
				client.SendJSON(Envelope{T: MsgAchievement, Data: AchievementMsg{
					ID:          a.ID,
					Name:        a.Name,
					Description: a.Description,
				}})
			}
			if g.telemetry != nil {
				g.telemetry.Track(EvtAchievement, r.AuthPlayerID, g.sessionID, fmt.Sprintf(`{"id":%q}`, a.ID))
			}
		}
	}
}

// resetRace returns the session to the lobby with a fresh maze
func (g *Game) resetRace() {
	g.seed++
	g.buildWorld(g.seed)
	g.race = NewRaceState(g.race.Config)
	for _, r := range g.runners {
		r.ResetForRace(g.grid, g.spawn)
	}
	g.broadcastMsg(Envelope{T: MsgMaze, Data: g.mazeSnapshotLocked()})
	g.broadcastMsg(Envelope{T: MsgPhase, Data: PhaseMsg{Phase: int(PhaseLobby)}})
}

// broadcastState sends the full state frame to all clients
func (g *Game) broadcastState() {
	state := StateFrame{
		Tick:     g.tick,
		Runners:  make([]RunnerState, 0, len(g.runners)),
		Sentries: make([]SentryState, 0, len(g.sentries)),
		Flares:   make([]FlareState, 0, len(g.flares)),
		Coins:    make([]CoinState, 0, len(g.coins)),
		Mists:    make([]MistState, 0, len(g.mists)),
		Wards:    make([]WardState, 0, len(g.wards)),
		Race:     g.race.ToState(),
	}
	for _, r := range g.runners {
		state.Runners = append(state.Runners, r.ToState())
	}
	for _, s := range g.sentries {
		state.Sentries = append(state.Sentries, s.ToState())
	}
	for _, f := range g.flares {
		state.Flares = append(state.Flares, f.ToState())
	}
	for _, c := range g.coins {
		state.Coins = append(state.Coins, c.ToState())
	}
	for _, m := range g.mists {
		state.Mists = append(state.Mists, m.ToState())
	}
	for _, w := range g.wards {
		state.Wards = append(state.Wards, w.ToState())
	}
	if g.plate != nil {
		ps := g.plate.ToState()
		state.Plate = &ps
	}

	payload, err := msgpack.Marshal(state)
	if err != nil {
		return
	}
	data := append([]byte{frameState}, payload...)
	for _, client := range g.clients {
		client.SendBinary(data)
	}
}

// broadcastViews casts and sends each runner their first-person frame
func (g *Game) broadcastViews() {
	view := g.cfg.View
	for id, r := range g.runners {
		client, ok := g.clients[id]
		if !ok || r.Falling {
			continue
		}
		kd := GetKitDef(r.Kit)
		fov, rays := kd.FOV, kd.RayCount
		if fov <= 0 {
			fov = view.FOV
		}
		if rays <= 0 {
			rays = view.RayCount
		}
		segs, strips := CastView(r.Ent, g.grid, fov, rays, view.Width, view.Height)

		frame := ViewFrame{
			Tick:   g.tick,
			Segs:   make([]SegWire, 0, len(segs)),
			Strips: make([]StripWire, 0, len(strips)),
		}
		for _, s := range segs {
			frame.Segs = append(frame.Segs, SegWire{
				X1: round1(s.X1), Y1: round1(s.Y1),
				X2: round1(s.X2), Y2: round1(s.Y2),
			})
		}
		for _, s := range strips {
			frame.Strips = append(frame.Strips, StripWire{
				X: round1(s.X), Y: round1(s.Y),
				W: round1(s.W), H: round1(s.H),
				S: s.Shade,
			})
		}
		if r.Power.Type == PowerReveal && r.Power.Active {
			for _, s := range g.sentries {
				c := s.Ent.Center()
				frame.Pings = append(frame.Pings, PingWire{X: round1(c.X), Y: round1(c.Y)})
			}
		}

		payload, err := msgpack.Marshal(frame)
		if err != nil {
			continue
		}
		client.SendBinary(append([]byte{frameView}, payload...))
	}
}

// broadcastMsg sends a JSON message to all clients in the session
func (g *Game) broadcastMsg(msg Envelope) {
	for _, client := range g.clients {
		client.SendJSON(msg)
	}
}
