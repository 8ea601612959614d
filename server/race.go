package main

// RacePhase is the lifecycle state of a race
type RacePhase int

const (
	PhaseLobby     RacePhase = 0 // waiting for runners to ready up
	PhaseCountdown RacePhase = 1 // countdown before the gates open
	PhaseRunning   RacePhase = 2 // race in progress
	PhaseFinished  RacePhase = 3 // showing results
)

// RaceConfig holds the tuning for a race
type RaceConfig struct {
	TimeLimit     float64 // seconds before the race times out
	CountdownTime float64
	ResultTime    float64 // seconds results stay up before reset
	MinRunners    int     // runners required to start
	Sentries      int
	Mists         int
	Coins         int
}

// DefaultRaceConfig returns the standard race tuning
func DefaultRaceConfig() RaceConfig {
	return RaceConfig{
		TimeLimit:     180,
		CountdownTime: 3,
		ResultTime:    10,
		MinRunners:    1,
		Sentries:      3,
		Mists:         2,
		Coins:         12,
	}
}

// RunnerRaceStats tracks per-runner results for one race
type RunnerRaceStats struct {
	Coins    int
	Captures int
	Finished bool
	FinishT  float64
}

// RaceState holds the race lifecycle for one session
type RaceState struct {
	Phase        RacePhase
	Config       RaceConfig
	Clock        float64 // seconds since the race started
	TimeLeft     float64
	CountdownT   float64
	ResultTimer  float64
	ReadyRunners map[string]bool
	RematchVotes map[string]bool
	WinnerID     string
	Stats        map[string]*RunnerRaceStats
}

// NewRaceState creates a race in the lobby phase
func NewRaceState(cfg RaceConfig) *RaceState {
	return &RaceState{
		Phase:        PhaseLobby,
		Config:       cfg,
		ReadyRunners: make(map[string]bool),
		RematchVotes: make(map[string]bool),
		Stats:        make(map[string]*RunnerRaceStats),
	}
}

// Ready marks a runner as ready in the lobby
func (rs *RaceState) Ready(id string) {
	if rs.Phase == PhaseLobby {
		rs.ReadyRunners[id] = true
	}
}

// AllReady returns true once every present runner has readied up
func (rs *RaceState) AllReady(total int) bool {
	if total < rs.Config.MinRunners {
		return false
	}
	return len(rs.ReadyRunners) >= total
}

// VoteRematch records a rematch vote during results
func (rs *RaceState) VoteRematch(id string) {
	if rs.Phase == PhaseFinished {
		rs.RematchVotes[id] = true
	}
}

// AllVoted returns true once every present runner has voted rematch
func (rs *RaceState) AllVoted(total int) bool {
	return total > 0 && len(rs.RematchVotes) >= total
}

// StartCountdown moves the lobby into the countdown
func (rs *RaceState) StartCountdown() {
	rs.Phase = PhaseCountdown
	rs.CountdownT = rs.Config.CountdownTime
}

// StartRunning opens the gates
func (rs *RaceState) StartRunning() {
	rs.Phase = PhaseRunning
	rs.Clock = 0
	rs.TimeLeft = rs.Config.TimeLimit
}

// Finish moves the race into the results phase
func (rs *RaceState) Finish() {
	rs.Phase = PhaseFinished
	rs.ResultTimer = rs.Config.ResultTime
}

// StatsFor returns (creating if needed) the stats slot for a runner
func (rs *RaceState) StatsFor(id string) *RunnerRaceStats {
	st, ok := rs.Stats[id]
	if !ok {
		st = &RunnerRaceStats{}
		rs.Stats[id] = st
	}
	return st
}

// DropRunner forgets a runner that left mid-race
func (rs *RaceState) DropRunner(id string) {
	delete(rs.ReadyRunners, id)
	delete(rs.RematchVotes, id)
	delete(rs.Stats, id)
}

// ToState converts to protocol state
func (rs *RaceState) ToState() RaceStateMsg {
	return RaceStateMsg{
		Phase:     int(rs.Phase),
		Clock:     round1(rs.Clock),
		TimeLeft:  round1(rs.TimeLeft),
		Countdown: round1(rs.CountdownT),
		Ready:     len(rs.ReadyRunners),
		WinnerID:  rs.WinnerID,
	}
}
