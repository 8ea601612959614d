package main

import (
	"database/sql"
	"fmt"
	"math"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// PlayerRow represents a player record in the database
type PlayerRow struct {
	ID           int64
	Username     string
	PasswordHash string
	IsGuest      bool
	CreatedAt    string
}

// StatsRow represents a player's lifetime stats
type StatsRow struct {
	PlayerID int64
	Coins    int
	Captures int
	Finishes int
	Wins     int
	Losses   int
	Playtime int // seconds
	Credits  int
	XP       int
	Level    int
}

// RunRow represents a completed race
type RunRow struct {
	ID        int64
	Algorithm string
	Duration  float64
	WinnerID  sql.NullInt64
	CreatedAt string
}

// RunPlayerRow represents a player's participation in a race
type RunPlayerRow struct {
	RunID      int64
	PlayerID   int64
	Coins      int
	Captures   int
	Finished   bool
	FinishTime float64
	Score      int
	XPEarned   int
}

// OpenDB opens (or creates) the SQLite database and runs migrations
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL for concurrent reads, enforce foreign keys
	if _, err := conn.Exec(`PRAGMA journal_mode=WAL; PRAGMA foreign_keys=ON;`); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS players (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL DEFAULT '',
		is_guest INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	);

	CREATE TABLE IF NOT EXISTS stats (
		player_id INTEGER PRIMARY KEY REFERENCES players(id) ON DELETE CASCADE,
		coins INTEGER NOT NULL DEFAULT 0,
		captures INTEGER NOT NULL DEFAULT 0,
		finishes INTEGER NOT NULL DEFAULT 0,
		wins INTEGER NOT NULL DEFAULT 0,
		losses INTEGER NOT NULL DEFAULT 0,
		playtime INTEGER NOT NULL DEFAULT 0,
		credits INTEGER NOT NULL DEFAULT 0,
		xp INTEGER NOT NULL DEFAULT 0,
		level INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		algorithm TEXT NOT NULL DEFAULT 'dfs',
		duration REAL NOT NULL DEFAULT 0,
		winner_id INTEGER REFERENCES players(id) ON DELETE SET NULL,
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	);

	CREATE TABLE IF NOT EXISTS run_players (
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		player_id INTEGER NOT NULL REFERENCES players(id) ON DELETE CASCADE,
		coins INTEGER NOT NULL DEFAULT 0,
		captures INTEGER NOT NULL DEFAULT 0,
		finished INTEGER NOT NULL DEFAULT 0,
		finish_time REAL NOT NULL DEFAULT 0,
		score INTEGER NOT NULL DEFAULT 0,
		xp_earned INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (run_id, player_id)
	);

	CREATE TABLE IF NOT EXISTS achievements (
		player_id INTEGER NOT NULL REFERENCES players(id) ON DELETE CASCADE,
		achievement_id TEXT NOT NULL,
		unlocked_at TEXT NOT NULL DEFAULT (datetime('now')),
		PRIMARY KEY (player_id, achievement_id)
	);

	CREATE TABLE IF NOT EXISTS charms (
		player_id INTEGER NOT NULL REFERENCES players(id) ON DELETE CASCADE,
		charm_id TEXT NOT NULL,
		acquired_at TEXT NOT NULL DEFAULT (datetime('now')),
		PRIMARY KEY (player_id, charm_id)
	);

	CREATE TABLE IF NOT EXISTS telemetry_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event_type TEXT NOT NULL,
		player_id INTEGER,
		session_id TEXT,
		data TEXT,
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	);

	CREATE INDEX IF NOT EXISTS idx_telemetry_type_time ON telemetry_events(event_type, created_at);
	CREATE INDEX IF NOT EXISTS idx_telemetry_player ON telemetry_events(player_id);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// CreatePlayer inserts a new registered player with an empty stats row
func (db *DB) CreatePlayer(username, passwordHash string) (int64, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO players (username, password_hash, is_guest) VALUES (?, ?, 0)`, username, passwordHash)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if _, err := tx.Exec(`INSERT INTO stats (player_id) VALUES (?)`, id); err != nil {
		return 0, err
	}
	return id, tx.Commit()
}

// CreateGuest inserts a guest player (no password)
func (db *DB) CreateGuest(username string) (int64, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO players (username, is_guest) VALUES (?, 1)`, username)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if _, err := tx.Exec(`INSERT INTO stats (player_id) VALUES (?)`, id); err != nil {
		return 0, err
	}
	return id, tx.Commit()
}

// GetPlayerByUsername returns a player row, or nil if not found
func (db *DB) GetPlayerByUsername(username string) (*PlayerRow, error) {
	var p PlayerRow
	err := db.conn.QueryRow(`SELECT id, username, password_hash, is_guest, created_at FROM players WHERE username = ?`, username).
		Scan(&p.ID, &p.Username, &p.PasswordHash, &p.IsGuest, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPlayerByID returns a player row, or nil if not found
func (db *DB) GetPlayerByID(id int64) (*PlayerRow, error) {
	var p PlayerRow
	err := db.conn.QueryRow(`SELECT id, username, password_hash, is_guest, created_at FROM players WHERE id = ?`, id).
		Scan(&p.ID, &p.Username, &p.PasswordHash, &p.IsGuest, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UsernameExists checks if a username is taken
func (db *DB) UsernameExists(username string) (bool, error) {
	var count int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM players WHERE username = ?`, username).Scan(&count)
	return count > 0, err
}

// GetStats returns a player's stats row, creating it if missing
func (db *DB) GetStats(playerID int64) (*StatsRow, error) {
	var s StatsRow
	err := db.conn.QueryRow(`SELECT player_id, coins, captures, finishes, wins, losses, playtime, credits, xp, level FROM stats WHERE player_id = ?`, playerID).
		Scan(&s.PlayerID, &s.Coins, &s.Captures, &s.Finishes, &s.Wins, &s.Losses, &s.Playtime, &s.Credits, &s.XP, &s.Level)
	if err == sql.ErrNoRows {
		if _, err := db.conn.Exec(`INSERT OR IGNORE INTO stats (player_id) VALUES (?)`, playerID); err != nil {
			return nil, err
		}
		return &StatsRow{PlayerID: playerID, Level: 1}, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// XPForLevel returns the total XP required to reach a level
func XPForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	total := 0
	for i := 1; i < level; i++ {
		total += int(100 * math.Pow(float64(i), 1.5))
	}
	return total
}

// XPToNextLevel returns the XP needed to go from a level to the next
func XPToNextLevel(level int) int {
	return XPForLevel(level+1) - XPForLevel(level)
}

// CalculateLevel returns the level reached with the given total XP
func CalculateLevel(xp int) int {
	level := 1
	for XPForLevel(level+1) <= xp && level < 100 {
		level++
	}
	return level
}

// UpdateStatsAfterRun applies a race result to a player's lifetime stats.
// Returns the new total XP and level.
func (db *DB) UpdateStatsAfterRun(playerID int64, coins, captures int, finished, won bool, duration float64, xpEarned int) (int, int, error) {
	finishInc := 0
	if finished {
		finishInc = 1
	}
	winInc, lossInc := 0, 0
	if won {
		winInc = 1
	} else {
		lossInc = 1
	}

	_, err := db.conn.Exec(`
		UPDATE stats SET
			coins = coins + ?,
			captures = captures + ?,
			finishes = finishes + ?,
			wins = wins + ?,
			losses = losses + ?,
			playtime = playtime + ?,
			xp = xp + ?
		WHERE player_id = ?
	`, coins, captures, finishInc, winInc, lossInc, int(duration), xpEarned, playerID)
	if err != nil {
		return 0, 0, err
	}

	var totalXP int
	if err := db.conn.QueryRow(`SELECT xp FROM stats WHERE player_id = ?`, playerID).Scan(&totalXP); err != nil {
		return 0, 0, err
	}
	newLevel := CalculateLevel(totalXP)
	if _, err := db.conn.Exec(`UPDATE stats SET level = ? WHERE player_id = ?`, newLevel, playerID); err != nil {
		return 0, 0, err
	}
	return totalXP, newLevel, nil
}

// LeaderboardEntry is one row in a leaderboard response
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	Level    int    `json:"level"`
	XP       int    `json:"xp"`
	Coins    int    `json:"coins"`
	Captures int    `json:"captures"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
}

// GetLeaderboard returns top players ordered by the given stat column
func (db *DB) GetLeaderboard(orderBy string, limit int) ([]LeaderboardEntry, error) {
	// Whitelist sortable columns to avoid injection
	validCols := map[string]bool{"coins": true, "wins": true, "level": true, "xp": true, "finishes": true}
	if !validCols[orderBy] {
		orderBy = "xp"
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	query := fmt.Sprintf(`
		SELECT p.username, s.level, s.xp, s.coins, s.captures, s.wins, s.losses
		FROM stats s JOIN players p ON p.id = s.player_id
		WHERE p.is_guest = 0
		ORDER BY s.%s DESC LIMIT ?
	`, orderBy)

	rows, err := db.conn.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []LeaderboardEntry
	rank := 1
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.Username, &e.Level, &e.XP, &e.Coins, &e.Captures, &e.Wins, &e.Losses); err != nil {
			continue
		}
		e.Rank = rank
		rank++
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// RecordRun inserts a completed race and returns its ID
func (db *DB) RecordRun(algorithm string, duration float64, winnerID int64) (int64, error) {
	winner := sql.NullInt64{Int64: winnerID, Valid: winnerID > 0}
	res, err := db.conn.Exec(`INSERT INTO runs (algorithm, duration, winner_id) VALUES (?, ?, ?)`, algorithm, duration, winner)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// RecordRunPlayer inserts a per-player race result
func (db *DB) RecordRunPlayer(runID, playerID int64, coins, captures int, finished bool, finishTime float64, score, xpEarned int) error {
	fin := 0
	if finished {
		fin = 1
	}
	_, err := db.conn.Exec(`
		INSERT INTO run_players (run_id, player_id, coins, captures, finished, finish_time, score, xp_earned)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, playerID, coins, captures, fin, finishTime, score, xpEarned)
	return err
}

// RunHistoryEntry is one past race in a player's history
type RunHistoryEntry struct {
	RunID      int64   `json:"run_id"`
	Algorithm  string  `json:"algorithm"`
	Duration   float64 `json:"duration"`
	Coins      int     `json:"coins"`
	Captures   int     `json:"captures"`
	Finished   bool    `json:"finished"`
	FinishTime float64 `json:"finish_time"`
	Score      int     `json:"score"`
	XPEarned   int     `json:"xp_earned"`
	Won        bool    `json:"won"`
	PlayedAt   string  `json:"played_at"`
}

// GetRunHistory returns a player's recent races, newest first
func (db *DB) GetRunHistory(playerID int64, limit int) ([]RunHistoryEntry, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	rows, err := db.conn.Query(`
		SELECT r.id, r.algorithm, r.duration, rp.coins, rp.captures, rp.finished, rp.finish_time,
			rp.score, rp.xp_earned, (r.winner_id = rp.player_id), r.created_at
		FROM run_players rp JOIN runs r ON r.id = rp.run_id
		WHERE rp.player_id = ?
		ORDER BY r.id DESC LIMIT ?
	`, playerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []RunHistoryEntry
	for rows.Next() {
		var e RunHistoryEntry
		var won sql.NullBool
		if err := rows.Scan(&e.RunID, &e.Algorithm, &e.Duration, &e.Coins, &e.Captures, &e.Finished,
			&e.FinishTime, &e.Score, &e.XPEarned, &won, &e.PlayedAt); err != nil {
			continue
		}
		e.Won = won.Valid && won.Bool
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetAchievements returns the IDs of a player's unlocked achievements
func (db *DB) GetAchievements(playerID int64) ([]string, error) {
	rows, err := db.conn.Query(`SELECT achievement_id FROM achievements WHERE player_id = ?`, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UnlockAchievement records an achievement unlock. Returns true if it was new.
func (db *DB) UnlockAchievement(playerID int64, achievementID string) (bool, error) {
	res, err := db.conn.Exec(`INSERT OR IGNORE INTO achievements (player_id, achievement_id) VALUES (?, ?)`, playerID, achievementID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// GetCharms returns the IDs of charms a player owns
func (db *DB) GetCharms(playerID int64) ([]string, error) {
	rows, err := db.conn.Query(`SELECT charm_id FROM charms WHERE player_id = ? ORDER BY acquired_at`, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// HasCharm checks if a player owns a charm
func (db *DB) HasCharm(playerID int64, charmID string) (bool, error) {
	var count int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM charms WHERE player_id = ? AND charm_id = ?`, playerID, charmID).Scan(&count)
	return count > 0, err
}

// AddCharm grants a charm to a player
func (db *DB) AddCharm(playerID int64, charmID string) error {
	_, err := db.conn.Exec(`INSERT OR IGNORE INTO charms (player_id, charm_id) VALUES (?, ?)`, playerID, charmID)
	return err
}

// GetCredits returns a player's credit balance
func (db *DB) GetCredits(playerID int64) (int, error) {
	var credits int
	err := db.conn.QueryRow(`SELECT credits FROM stats WHERE player_id = ?`, playerID).Scan(&credits)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return credits, err
}

// AddCredits grants credits to a player
func (db *DB) AddCredits(playerID int64, amount int) error {
	_, err := db.conn.Exec(`UPDATE stats SET credits = credits + ? WHERE player_id = ?`, amount, playerID)
	return err
}

// SpendCredits deducts credits if the balance covers the amount.
// Returns false when the player cannot afford it.
func (db *DB) SpendCredits(playerID int64, amount int) (bool, error) {
	res, err := db.conn.Exec(`UPDATE stats SET credits = credits - ? WHERE player_id = ? AND credits >= ?`, amount, playerID, amount)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// GetSetting reads a settings value, or "" if absent
func (db *DB) GetSetting(key string) (string, error) {
	var value string
	err := db.conn.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetSetting upserts a settings value
func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec(`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

// AddPlaytime accumulates session playtime in seconds
func (db *DB) AddPlaytime(playerID int64, seconds int) error {
	_, err := db.conn.Exec(`UPDATE stats SET playtime = playtime + ? WHERE player_id = ?`, seconds, playerID)
	return err
}
