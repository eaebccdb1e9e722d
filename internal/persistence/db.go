// Package persistence provides SQLite-based storage for game records and
// batch reports. The engine itself never touches storage; callers persist
// the records the engine produces.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/kuitang/brink-sub001/internal/game"
	"github.com/kuitang/brink-sub001/internal/sim"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// schemaVersion is stamped into the meta table on every migrate, so a
// future schema change can detect what an existing file was written with.
const schemaVersion = "1"

// DB wraps a SQLite connection for game record storage.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS games (
		id TEXT PRIMARY KEY,
		scenario TEXT NOT NULL,
		seed INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		ended_at TEXT,
		ending_kind TEXT,
		vp_a REAL,
		vp_b REAL,
		state_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS turns (
		game_id TEXT NOT NULL,
		turn INTEGER NOT NULL,
		matrix TEXT NOT NULL,
		action_a TEXT NOT NULL,
		action_b TEXT NOT NULL,
		outcome TEXT NOT NULL,
		record_json TEXT NOT NULL,
		PRIMARY KEY (game_id, turn)
	);

	CREATE TABLE IF NOT EXISTS reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at TEXT NOT NULL,
		scenario TEXT NOT NULL,
		games INTEGER NOT NULL,
		report_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_turns_game ON turns(game_id);
	CREATE INDEX IF NOT EXISTS idx_games_scenario ON games(scenario);
	`
	if _, err := db.conn.Exec(schema); err != nil {
		return err
	}
	return db.SaveMeta("schema_version", schemaVersion)
}

// GameRow is the stored header of one game.
type GameRow struct {
	ID         string          `db:"id" json:"id"`
	Scenario   string          `db:"scenario" json:"scenario"`
	Seed       int64           `db:"seed" json:"seed"`
	CreatedAt  string          `db:"created_at" json:"created_at"`
	EndedAt    sql.NullString  `db:"ended_at" json:"-"`
	EndingKind sql.NullString  `db:"ending_kind" json:"-"`
	VPA        sql.NullFloat64 `db:"vp_a" json:"-"`
	VPB        sql.NullFloat64 `db:"vp_b" json:"-"`
	StateJSON  string          `db:"state_json" json:"-"`
}

// CreateGame records a freshly created game.
func (db *DB) CreateGame(id, scenarioName string, seed int64, st game.State) error {
	stateJSON, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	_, err = db.conn.Exec(
		`INSERT INTO games (id, scenario, seed, created_at, state_json) VALUES (?, ?, ?, ?, ?)`,
		id, scenarioName, seed, time.Now().UTC().Format(time.RFC3339), string(stateJSON),
	)
	if err != nil {
		return fmt.Errorf("insert game %s: %w", id, err)
	}
	return nil
}

// AppendTurn stores one resolved turn and refreshes the game's state.
func (db *DB) AppendTurn(gameID string, rec game.TurnRecord) error {
	recJSON, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal turn: %w", err)
	}
	stateJSON, err := json.Marshal(rec.After)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO turns (game_id, turn, matrix, action_a, action_b, outcome, record_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		gameID, rec.Turn, string(rec.Matrix), rec.ActionA, rec.ActionB, string(rec.Outcome), string(recJSON),
	); err != nil {
		return fmt.Errorf("insert turn %d for %s: %w", rec.Turn, gameID, err)
	}
	if _, err := tx.Exec(
		`UPDATE games SET state_json = ? WHERE id = ?`, string(stateJSON), gameID,
	); err != nil {
		return fmt.Errorf("update game %s: %w", gameID, err)
	}

	return tx.Commit()
}

// FinishGame records the ending of a game.
func (db *DB) FinishGame(gameID string, ending game.Ending) error {
	res, err := db.conn.Exec(
		`UPDATE games SET ended_at = ?, ending_kind = ?, vp_a = ?, vp_b = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), string(ending.Kind), ending.VPA, ending.VPB, gameID,
	)
	if err != nil {
		return fmt.Errorf("finish game %s: %w", gameID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish game %s: %w", gameID, ErrNotFound)
	}
	return nil
}

// Game loads a single game header.
func (db *DB) Game(id string) (GameRow, error) {
	var row GameRow
	err := db.conn.Get(&row, `SELECT * FROM games WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return GameRow{}, ErrNotFound
	}
	return row, err
}

// RecentGames lists game headers, newest first.
func (db *DB) RecentGames(limit int) ([]GameRow, error) {
	var rows []GameRow
	err := db.conn.Select(&rows,
		`SELECT * FROM games ORDER BY created_at DESC LIMIT ?`, limit)
	return rows, err
}

// GameTurns loads the full turn history of a game in order.
func (db *DB) GameTurns(gameID string) ([]game.TurnRecord, error) {
	var blobs []string
	err := db.conn.Select(&blobs,
		`SELECT record_json FROM turns WHERE game_id = ? ORDER BY turn`, gameID)
	if err != nil {
		return nil, err
	}

	records := make([]game.TurnRecord, 0, len(blobs))
	for _, blob := range blobs {
		var rec game.TurnRecord
		if err := json.Unmarshal([]byte(blob), &rec); err != nil {
			return nil, fmt.Errorf("decode turn for %s: %w", gameID, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// SaveReport stores a batch balance report.
func (db *DB) SaveReport(rep sim.Report) error {
	repJSON, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	_, err = db.conn.Exec(
		`INSERT INTO reports (created_at, scenario, games, report_json) VALUES (?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339), rep.Scenario, rep.Games, string(repJSON),
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	slog.Info("report saved", "scenario", rep.Scenario, "games", rep.Games)
	return nil
}

// RecentReports returns stored reports, newest first.
func (db *DB) RecentReports(limit int) ([]sim.Report, error) {
	var blobs []string
	err := db.conn.Select(&blobs,
		`SELECT report_json FROM reports ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}

	reports := make([]sim.Report, 0, len(blobs))
	for _, blob := range blobs {
		var rep sim.Report
		if err := json.Unmarshal([]byte(blob), &rep); err != nil {
			return nil, fmt.Errorf("decode report: %w", err)
		}
		reports = append(reports, rep)
	}
	return reports, nil
}

// SaveMeta stores a key-value pair.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		`INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`, key, value)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, `SELECT value FROM meta WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return value, err
}
