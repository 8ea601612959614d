package main

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const maxSessions = 100

// Session represents a maze race session that runners can join
type Session struct {
	ID         string
	Name       string
	Game       *Game
	LastActive time.Time
}

// SessionManager handles creation and lookup of sessions
type SessionManager struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	cfg       *Config
	db        *DB
	telemetry *Telemetry
}

// NewSessionManager creates a new SessionManager
func NewSessionManager(cfg *Config, db *DB, tel *Telemetry) *SessionManager {
	return &SessionManager{
		sessions:  make(map[string]*Session),
		cfg:       cfg,
		db:        db,
		telemetry: tel,
	}
}

// CreateSession creates a new race session. Returns nil if limit reached.
// An empty algorithm falls back to the configured default.
func (sm *SessionManager) CreateSession(name, algorithm string) *Session {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if len(sm.sessions) >= maxSessions {
		return nil
	}

	id := uuid.NewString()
	seed := sm.cfg.Maze.Seed
	if seed == 0 {
		seed = randSeed()
	}
	game := NewGame(sm.cfg, sm.db, sm.telemetry, id, algorithm, seed)
	sess := &Session{
		ID:         id,
		Name:       name,
		Game:       game,
		LastActive: time.Now(),
	}
	sm.sessions[id] = sess
	go game.Run()

	if sm.telemetry != nil {
		sm.telemetry.Track(EvtSessionStart, 0, id, "")
		sm.telemetry.SetActiveSessions(len(sm.sessions))
	}
	return sess
}

// MarkActive refreshes a session's activity timestamp
func (sm *SessionManager) MarkActive(id string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sess, ok := sm.sessions[id]; ok {
		sess.LastActive = time.Now()
	}
}

// GetSession returns a session by ID
func (sm *SessionManager) GetSession(id string) *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[id]
}

// RemoveRunner removes a runner from a session
func (sm *SessionManager) RemoveRunner(sessionID, runnerID string) {
	sm.mu.RLock()
	sess, ok := sm.sessions[sessionID]
	sm.mu.RUnlock()
	if !ok {
		return
	}
	sess.Game.RemoveRunner(runnerID)

	// Clean up empty sessions
	if sess.Game.RunnerCount() == 0 {
		sess.Game.Stop()
		sm.mu.Lock()
		delete(sm.sessions, sessionID)
		n := len(sm.sessions)
		sm.mu.Unlock()
		if sm.telemetry != nil {
			sm.telemetry.Track(EvtSessionEnd, 0, sessionID, "")
			sm.telemetry.SetActiveSessions(n)
		}
	}
}

// ListSessions returns info about all active sessions
func (sm *SessionManager) ListSessions() []SessionInfo {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	list := make([]SessionInfo, 0, len(sm.sessions))
	for _, sess := range sm.sessions {
		list = append(list, SessionInfo{
			ID:      sess.ID,
			Name:    sess.Name,
			Runners: sess.Game.RunnerCount(),
			Phase:   sess.Game.Phase(),
		})
	}
	return list
}
