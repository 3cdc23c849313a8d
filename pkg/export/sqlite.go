package export

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/shieldloop/sentryloop/pkg/domain"
)

// WriteSQLite writes a point-in-time snapshot to a SQLite file at path,
// creating the file and its tables if absent. Unlike WriteJSON/WriteCSV it
// does not truncate: an existing database at path keeps its rows and gains
// this snapshot's rows, and writing a uuid already present fails on the
// experiments table's primary key.
func WriteSQLite(path string, snap Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("export: mkdir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL")
	if err != nil {
		return fmt.Errorf("export: open db: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if err := migrateSnapshotSchema(db); err != nil {
		return fmt.Errorf("export: migrate: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("export: begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO experiments (
			uuid, name, exported_at, scenario, total_episodes,
			weight_short, weight_long, weight_violation, epsilon,
			success_count, violation_count, blocked_count, total_reward
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.UUID, snap.Name, snap.ExportedAt.Format(sqliteTimeFormat),
		snap.Config.Scenario, snap.Config.TotalEpisodes,
		snap.Config.Weights.Short, snap.Config.Weights.Long, snap.Config.Weights.Violation,
		snap.Config.Epsilon,
		snap.Statistics.SuccessCount, snap.Statistics.ViolationCount, snap.Statistics.BlockedCount,
		snap.Statistics.TotalReward,
	)
	if err != nil {
		return fmt.Errorf("export: insert experiment: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO experiences (
			experiment_uuid, episode, issue_id, issue_type, strategy,
			total_reward, is_violation, blocked, gateway_fallback
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("export: prepare: %w", err)
	}
	defer stmt.Close()

	for _, e := range snap.Experiences {
		if _, err := stmt.Exec(
			snap.UUID, e.Episode, e.Issue.ID, string(e.Issue.Type), string(e.Strategy),
			e.TotalReward, e.IsViolation, e.Blocked, e.GatewayFallback,
		); err != nil {
			return fmt.Errorf("export: insert experience (episode %d): %w", e.Episode, err)
		}
	}

	return tx.Commit()
}

const sqliteTimeFormat = "2006-01-02 15:04:05"

func migrateSnapshotSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS experiments (
			uuid             TEXT PRIMARY KEY,
			name             TEXT NOT NULL,
			exported_at      TEXT NOT NULL,
			scenario         TEXT NOT NULL DEFAULT '',
			total_episodes   INTEGER NOT NULL DEFAULT 0,
			weight_short     REAL NOT NULL DEFAULT 0,
			weight_long      REAL NOT NULL DEFAULT 0,
			weight_violation REAL NOT NULL DEFAULT 0,
			epsilon          REAL NOT NULL DEFAULT 0,
			success_count    INTEGER NOT NULL DEFAULT 0,
			violation_count  INTEGER NOT NULL DEFAULT 0,
			blocked_count    INTEGER NOT NULL DEFAULT 0,
			total_reward     REAL NOT NULL DEFAULT 0
		);
		CREATE TABLE IF NOT EXISTS experiences (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			experiment_uuid  TEXT NOT NULL REFERENCES experiments(uuid) ON DELETE CASCADE,
			episode          INTEGER NOT NULL,
			issue_id         TEXT NOT NULL,
			issue_type       TEXT NOT NULL,
			strategy         TEXT NOT NULL,
			total_reward     REAL NOT NULL DEFAULT 0,
			is_violation     INTEGER NOT NULL DEFAULT 0,
			blocked          INTEGER NOT NULL DEFAULT 0,
			gateway_fallback INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_experiences_experiment ON experiences(experiment_uuid);
	`)
	return err
}

// ReadSQLiteStatistics recomputes a domain.Statistics from a previously
// written snapshot database, for round-trip verification.
func ReadSQLiteStatistics(path, uuid string) (domain.Statistics, error) {
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return domain.Statistics{}, fmt.Errorf("export: open db: %w", err)
	}
	defer db.Close()

	var stats domain.Statistics
	err = db.QueryRow(`
		SELECT success_count, violation_count, blocked_count, total_reward
		FROM experiments WHERE uuid = ?`, uuid,
	).Scan(&stats.SuccessCount, &stats.ViolationCount, &stats.BlockedCount, &stats.TotalReward)
	if err != nil {
		return domain.Statistics{}, fmt.Errorf("export: query experiment %s: %w", uuid, err)
	}
	return stats, nil
}
