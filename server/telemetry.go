package main

import (
	"database/sql"
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Event types for telemetry tracking
const (
	EvtRunStart     = "run_start"
	EvtRunEnd       = "run_end"
	EvtCapture      = "capture"
	EvtCoinPickup   = "coin_pickup"
	EvtPlatePressed = "plate_pressed"
	EvtPurchase     = "purchase"
	EvtAchievement  = "achievement"
	EvtSessionStart = "session_start"
	EvtSessionEnd   = "session_end"
	EvtLevelUp      = "level_up"
	EvtRaySnapshot  = "ray_snapshot"
)

// TelemetryEvent represents a single trackable event
type TelemetryEvent struct {
	Type      string
	PlayerID  int64
	SessionID string
	Data      string // JSON metadata (optional)
	Timestamp time.Time
}

// Telemetry handles event tracking with batched background writes
type Telemetry struct {
	db     *DB
	events chan TelemetryEvent
	stop   chan struct{}
	wg     sync.WaitGroup

	// Live metrics (mutex-protected)
	mu             sync.RWMutex
	liveRunners    int
	activeSessions int
}

// NewTelemetry creates and starts the telemetry background writer
func NewTelemetry(db *DB) *Telemetry {
	t := &Telemetry{
		db:     db,
		events: make(chan TelemetryEvent, 1024),
		stop:   make(chan struct{}),
	}
	t.wg.Add(1)
	go t.writer()
	return t
}

// Track enqueues an event for async persistence (non-blocking)
func (t *Telemetry) Track(evtType string, playerID int64, sessionID string, data string) {
	select {
	case t.events <- TelemetryEvent{
		Type:      evtType,
		PlayerID:  playerID,
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}:
	default:
		// Channel full — drop event rather than blocking the game loop
	}
}

// TrackRaycast snapshots a session's raycast accumulator: how many
// predictive evaluations ran and the distribution of recorded
// closest-approach times
func (t *Telemetry) TrackRaycast(sessionID string, cache *RaycastCache) {
	if cache == nil {
		return
	}
	snap := struct {
		Evals   int     `json:"evals"`
		Samples int     `json:"samples"`
		Mean    float64 `json:"mean"`
		Max     float64 `json:"max"`
	}{Evals: cache.Evaluations, Samples: len(cache.Times)}
	if len(cache.Times) > 0 {
		sum := 0.0
		for _, v := range cache.Times {
			sum += v
			if v > snap.Max {
				snap.Max = v
			}
		}
		snap.Mean = sum / float64(len(cache.Times))
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	t.Track(EvtRaySnapshot, 0, sessionID, string(data))
}

// SetLiveRunners updates the live runner count metric
func (t *Telemetry) SetLiveRunners(n int) {
	t.mu.Lock()
	t.liveRunners = n
	t.mu.Unlock()
}

// SetActiveSessions updates the live session count metric
func (t *Telemetry) SetActiveSessions(n int) {
	t.mu.Lock()
	t.activeSessions = n
	t.mu.Unlock()
}

// GetLiveMetrics returns current live metrics
func (t *Telemetry) GetLiveMetrics() (int, int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.liveRunners, t.activeSessions
}

// Stop gracefully shuts down the telemetry writer
func (t *Telemetry) Stop() {
	close(t.stop)
	t.wg.Wait()
}

// writer is the background goroutine that batches and writes events to DB
func (t *Telemetry) writer() {
	defer t.wg.Done()

	batch := make([]TelemetryEvent, 0, 64)
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case evt := <-t.events:
			batch = append(batch, evt)
			// Flush immediately if batch is large
			if len(batch) >= 50 {
				t.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				t.flush(batch)
				batch = batch[:0]
			}
		case <-t.stop:
			// Drain remaining events
			close(t.events)
			for evt := range t.events {
				batch = append(batch, evt)
			}
			if len(batch) > 0 {
				t.flush(batch)
			}
			return
		}
	}
}

// flush writes a batch of events to the database
func (t *Telemetry) flush(events []TelemetryEvent) {
	if t.db == nil || len(events) == 0 {
		return
	}
	tx, err := t.db.conn.Begin()
	if err != nil {
		log.Printf("telemetry: begin tx error: %v", err)
		return
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO telemetry_events (event_type, player_id, session_id, data, created_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		log.Printf("telemetry: prepare error: %v", err)
		return
	}
	defer stmt.Close()

	for _, evt := range events {
		pid := sql.NullInt64{Int64: evt.PlayerID, Valid: evt.PlayerID > 0}
		sid := sql.NullString{String: evt.SessionID, Valid: evt.SessionID != ""}
		data := sql.NullString{String: evt.Data, Valid: evt.Data != ""}
		_, err := stmt.Exec(evt.Type, pid, sid, data, evt.Timestamp.Format(time.RFC3339))
		if err != nil {
			log.Printf("telemetry: insert error: %v", err)
		}
	}
	tx.Commit()
}

// --- Query methods for the API ---

// DAUCount returns number of distinct players active today
func (t *Telemetry) DAUCount() (int, error) {
	if t.db == nil {
		return 0, nil
	}
	var count int
	err := t.db.conn.QueryRow(`
		SELECT COUNT(DISTINCT player_id) FROM telemetry_events
		WHERE player_id IS NOT NULL AND created_at >= date('now')
	`).Scan(&count)
	return count, err
}

// WAUCount returns number of distinct players active in the last 7 days
func (t *Telemetry) WAUCount() (int, error) {
	if t.db == nil {
		return 0, nil
	}
	var count int
	err := t.db.conn.QueryRow(`
		SELECT COUNT(DISTINCT player_id) FROM telemetry_events
		WHERE player_id IS NOT NULL AND created_at >= date('now', '-7 days')
	`).Scan(&count)
	return count, err
}

// MAUCount returns number of distinct players active in the last 30 days
func (t *Telemetry) MAUCount() (int, error) {
	if t.db == nil {
		return 0, nil
	}
	var count int
	err := t.db.conn.QueryRow(`
		SELECT COUNT(DISTINCT player_id) FROM telemetry_events
		WHERE player_id IS NOT NULL AND created_at >= date('now', '-30 days')
	`).Scan(&count)
	return count, err
}

// RunStats returns race counts by maze algorithm for the last N days
func (t *Telemetry) RunStats(days int) ([]RunTelemetry, error) {
	if t.db == nil {
		return nil, nil
	}
	rows, err := t.db.conn.Query(`
		SELECT COALESCE(json_extract(data, '$.algorithm'), 'unknown') as alg, COUNT(*) as cnt,
			AVG(CAST(
				CASE WHEN json_valid(data) THEN json_extract(data, '$.duration') ELSE NULL END
			AS REAL)) as avg_dur
		FROM telemetry_events
		WHERE event_type = ? AND created_at >= date('now', '-' || ? || ' days')
		GROUP BY alg
		ORDER BY cnt DESC
	`, EvtRunEnd, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []RunTelemetry
	for rows.Next() {
		var rt RunTelemetry
		var avgDur sql.NullFloat64
		if err := rows.Scan(&rt.Algorithm, &rt.Count, &avgDur); err != nil {
			continue
		}
		rt.AvgDuration = avgDur.Float64
		result = append(result, rt)
	}
	return result, rows.Err()
}

// EventCounts returns counts of each event type for the last N days
func (t *Telemetry) EventCounts(days int) (map[string]int, error) {
	if t.db == nil {
		return nil, nil
	}
	rows, err := t.db.conn.Query(`
		SELECT event_type, COUNT(*) FROM telemetry_events
		WHERE created_at >= date('now', '-' || ? || ' days')
		GROUP BY event_type ORDER BY COUNT(*) DESC
	`, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var evtType string
		var count int
		if err := rows.Scan(&evtType, &count); err != nil {
			continue
		}
		result[evtType] = count
	}
	return result, rows.Err()
}

// PopularPurchases returns the most purchased charms
func (t *Telemetry) PopularPurchases(limit int) ([]CharmTelemetry, error) {
	if t.db == nil {
		return nil, nil
	}
	rows, err := t.db.conn.Query(`
		SELECT COALESCE(json_extract(data, '$.item_id'), 'unknown') as item, COUNT(*) as cnt
		FROM telemetry_events
		WHERE event_type = ? AND json_valid(data)
		GROUP BY item ORDER BY cnt DESC LIMIT ?
	`, EvtPurchase, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []CharmTelemetry
	for rows.Next() {
		var ct CharmTelemetry
		if err := rows.Scan(&ct.ItemID, &ct.Count); err != nil {
			continue
		}
		result = append(result, ct)
	}
	return result, rows.Err()
}

// DailyActiveHistory returns DAU for the last N days
func (t *Telemetry) DailyActiveHistory(days int) ([]DayCount, error) {
	if t.db == nil {
		return nil, nil
	}
	rows, err := t.db.conn.Query(`
		SELECT date(created_at) as day, COUNT(DISTINCT player_id)
		FROM telemetry_events
		WHERE player_id IS NOT NULL AND created_at >= date('now', '-' || ? || ' days')
		GROUP BY day ORDER BY day
	`, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []DayCount
	for rows.Next() {
		var dc DayCount
		if err := rows.Scan(&dc.Day, &dc.Count); err != nil {
			continue
		}
		result = append(result, dc)
	}
	return result, rows.Err()
}

// RunTelemetry holds aggregated race statistics
type RunTelemetry struct {
	Algorithm   string  `json:"algorithm"`
	Count       int     `json:"count"`
	AvgDuration float64 `json:"avg_duration"`
}

// CharmTelemetry holds purchase count per charm
type CharmTelemetry struct {
	ItemID string `json:"item_id"`
	Count  int    `json:"count"`
}

// DayCount holds a count for a specific day
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}
