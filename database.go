package main

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// PlayerRow represents an account record
type PlayerRow struct {
	ID        int64
	Username  string
	PassHash  string
	CreatedAt time.Time
}

// StatsRow represents lifetime stats for an account
type StatsRow struct {
	PlayerID int64
	Kills    int
	Deaths   int
	Wins     int
	Losses   int
	Playtime float64 // seconds
}

// OpenDB opens (or creates) the SQLite database
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// WAL for better concurrency between the game and analytics writers
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates tables if they don't exist
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS players (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		pass_hash TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS stats (
		player_id INTEGER PRIMARY KEY REFERENCES players(id),
		kills INTEGER NOT NULL DEFAULT 0,
		deaths INTEGER NOT NULL DEFAULT 0,
		wins INTEGER NOT NULL DEFAULT 0,
		losses INTEGER NOT NULL DEFAULT 0,
		playtime REAL NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS matches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		winner TEXT NOT NULL DEFAULT '',
		duration REAL NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS match_players (
		match_id INTEGER NOT NULL REFERENCES matches(id),
		player_id INTEGER NOT NULL REFERENCES players(id),
		kills INTEGER NOT NULL DEFAULT 0,
		deaths INTEGER NOT NULL DEFAULT 0,
		won INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (match_id, player_id)
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT NOT NULL,
		player_id INTEGER NOT NULL DEFAULT 0,
		session_id TEXT NOT NULL DEFAULT '',
		data TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_match_players_player ON match_players(player_id);
	CREATE INDEX IF NOT EXISTS idx_players_username ON players(username);
	CREATE INDEX IF NOT EXISTS idx_events_type ON events(type);
	`
	_, err := db.conn.Exec(schema)
	if err != nil {
		Log.Errorf("DB migration error: %v", err)
	}
	return err
}

// GetSetting returns a settings value, or "" if absent
func (db *DB) GetSetting(key string) string {
	var v string
	err := db.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&v)
	if err != nil {
		return ""
	}
	return v
}

// SetSetting stores a settings value
func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}

// CreatePlayer creates a new account and its stats row, returning the id
func (db *DB) CreatePlayer(username, passHash string) (int64, error) {
	res, err := db.conn.Exec(
		"INSERT INTO players (username, pass_hash) VALUES (?, ?)",
		username, passHash,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	_, err = db.conn.Exec("INSERT INTO stats (player_id) VALUES (?)", id)
	return id, err
}

// GetPlayerByUsername returns an account by username, nil if not found
func (db *DB) GetPlayerByUsername(username string) (*PlayerRow, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, pass_hash, created_at FROM players WHERE username = ?",
		username,
	)
	p := &PlayerRow{}
	err := row.Scan(&p.ID, &p.Username, &p.PassHash, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// GetStats returns lifetime stats, nil if not found
func (db *DB) GetStats(playerID int64) (*StatsRow, error) {
	row := db.conn.QueryRow(
		"SELECT player_id, kills, deaths, wins, losses, playtime FROM stats WHERE player_id = ?",
		playerID,
	)
	s := &StatsRow{}
	err := row.Scan(&s.PlayerID, &s.Kills, &s.Deaths, &s.Wins, &s.Losses, &s.Playtime)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

// UpdateStatsAfterMatch folds one match's results into lifetime stats
func (db *DB) UpdateStatsAfterMatch(playerID int64, kills, deaths int, won bool, duration float64) error {
	winInc, lossInc := 0, 1
	if won {
		winInc, lossInc = 1, 0
	}
	_, err := db.conn.Exec(`
		UPDATE stats SET
			kills = kills + ?,
			deaths = deaths + ?,
			wins = wins + ?,
			losses = losses + ?,
			playtime = playtime + ?
		WHERE player_id = ?`,
		kills, deaths, winInc, lossInc, duration, playerID,
	)
	return err
}

// RecordMatch records a completed match and returns its ID
func (db *DB) RecordMatch(winner string, duration float64) (int64, error) {
	res, err := db.conn.Exec(
		"INSERT INTO matches (winner, duration) VALUES (?, ?)",
		winner, duration,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// RecordMatchPlayer records a player's results for a match
func (db *DB) RecordMatchPlayer(matchID, playerID int64, kills, deaths int, won bool) error {
	w := 0
	if won {
		w = 1
	}
	_, err := db.conn.Exec(
		"INSERT INTO match_players (match_id, player_id, kills, deaths, won) VALUES (?, ?, ?, ?, ?)",
		matchID, playerID, kills, deaths, w,
	)
	return err
}

// LeaderboardEntry represents one row in the leaderboard
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	Kills    int    `json:"kills"`
	Deaths   int    `json:"deaths"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
}

// GetLeaderboard returns top players sorted by the given stat
func (db *DB) GetLeaderboard(orderBy string, limit int) ([]LeaderboardEntry, error) {
	// Whitelist valid order columns
	validCols := map[string]string{
		"kills": "s.kills", "wins": "s.wins",
		"kd": "CASE WHEN s.deaths > 0 THEN CAST(s.kills AS REAL)/s.deaths ELSE s.kills END",
	}
	col, ok := validCols[orderBy]
	if !ok {
		col = "s.kills"
	}

	query := `SELECT p.username, s.kills, s.deaths, s.wins, s.losses
		FROM stats s JOIN players p ON p.id = s.player_id
		ORDER BY ` + col + ` DESC LIMIT ?`

	rows, err := db.conn.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []LeaderboardEntry
	rank := 1
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.Username, &e.Kills, &e.Deaths, &e.Wins, &e.Losses); err != nil {
			return nil, err
		}
		e.Rank = rank
		rank++
		result = append(result, e)
	}
	return result, rows.Err()
}

// UsernameExists checks if a username is taken
func (db *DB) UsernameExists(username string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM players WHERE username = ?", username).Scan(&count)
	return count > 0, err
}

// InsertEvents writes a batch of analytics events in one transaction
func (db *DB) InsertEvents(events []AnalyticsEvent) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(
		"INSERT INTO events (type, player_id, session_id, data, created_at) VALUES (?, ?, ?, ?, ?)",
	)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, e := range events {
		if _, err := stmt.Exec(e.Type, e.PlayerID, e.SessionID, e.Data, e.Timestamp); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
