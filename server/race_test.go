package main

import "testing"

func TestRacePhaseMachine(t *testing.T) {
	rs := NewRaceState(DefaultRaceConfig())
	if rs.Phase != PhaseLobby {
		t.Fatalf("expected lobby phase, got %d", rs.Phase)
	}

	rs.StartCountdown()
	if rs.Phase != PhaseCountdown || rs.CountdownT != 3 {
		t.Errorf("countdown wrong: phase %d timer %v", rs.Phase, rs.CountdownT)
	}

	rs.StartRunning()
	if rs.Phase != PhaseRunning || rs.Clock != 0 || rs.TimeLeft != 180 {
		t.Errorf("running wrong: phase %d clock %v left %v", rs.Phase, rs.Clock, rs.TimeLeft)
	}

	rs.Finish()
	if rs.Phase != PhaseFinished || rs.ResultTimer != 10 {
		t.Errorf("finish wrong: phase %d timer %v", rs.Phase, rs.ResultTimer)
	}
}

func TestRaceReadyGating(t *testing.T) {
	rs := NewRaceState(DefaultRaceConfig())
	rs.Ready("a")
	rs.Ready("b")
	if !rs.AllReady(2) {
		t.Error("both runners ready, race should start")
	}
	if rs.AllReady(3) {
		t.Error("a third unready runner should hold the race")
	}
	if rs.AllReady(0) {
		t.Error("an empty lobby can never start")
	}

	// Ready only counts in the lobby
	rs.StartRunning()
	rs.Ready("c")
	if rs.ReadyRunners["c"] {
		t.Error("ready during the race should be ignored")
	}
}

func TestRaceRematchVoting(t *testing.T) {
	rs := NewRaceState(DefaultRaceConfig())

	rs.VoteRematch("a")
	if len(rs.RematchVotes) != 0 {
		t.Error("votes before results should be ignored")
	}

	rs.Finish()
	rs.VoteRematch("a")
	if rs.AllVoted(2) {
		t.Error("one of two votes should not trigger a rematch")
	}
	rs.VoteRematch("b")
	if !rs.AllVoted(2) {
		t.Error("all votes in, rematch should trigger")
	}
	if rs.AllVoted(0) {
		t.Error("an empty session cannot vote a rematch")
	}
}

func TestRaceStatsLifecycle(t *testing.T) {
	rs := NewRaceState(DefaultRaceConfig())
	st := rs.StatsFor("a")
	st.Coins = 4
	if rs.StatsFor("a").Coins != 4 {
		t.Error("stats slot should persist")
	}

	rs.Ready("a")
	rs.DropRunner("a")
	if len(rs.Stats) != 0 || len(rs.ReadyRunners) != 0 {
		t.Error("dropped runner should be forgotten everywhere")
	}
}

func TestRaceToState(t *testing.T) {
	rs := NewRaceState(DefaultRaceConfig())
	rs.Ready("a")
	rs.StartCountdown()
	rs.WinnerID = "a"

	st := rs.ToState()
	if st.Phase != int(PhaseCountdown) || st.Countdown != 3 {
		t.Errorf("phase fields wrong: %+v", st)
	}
	if st.Ready != 1 || st.WinnerID != "a" {
		t.Errorf("roster fields wrong: %+v", st)
	}
}
