package recorder

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/model"
)

// SQLiteRecorder persists cycle reports to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for concurrent dashboard reads while the engine writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log.With().Str("component", "recorder").Logger()}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cycles (
			id          TEXT PRIMARY KEY,
			trigger_type TEXT NOT NULL,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			succeeded   INTEGER NOT NULL,
			failed      INTEGER NOT NULL,
			warnings    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycles_started ON cycles(started_at)`,

		`CREATE TABLE IF NOT EXISTS cycle_actions (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			cycle_id  TEXT NOT NULL,
			symbol    TEXT NOT NULL,
			direction TEXT NOT NULL,
			amount    TEXT NOT NULL,
			status    TEXT NOT NULL,
			tx_id     TEXT,
			error     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_actions_cycle ON cycle_actions(cycle_id)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordCycle(report *model.CycleReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	warnings := strings.Join(report.Warnings, "\n")

	if _, err := tx.Exec(`INSERT INTO cycles
		(id, trigger_type, started_at, finished_at, succeeded, failed, warnings)
		VALUES (?,?,?,?,?,?,?)`,
		report.ID, string(report.Trigger),
		report.StartedAt.Unix(), report.FinishedAt.Unix(),
		report.Succeeded, report.Failed, warnings,
	); err != nil {
		return err
	}

	for _, act := range report.Actions {
		if _, err := tx.Exec(`INSERT INTO cycle_actions
			(cycle_id, symbol, direction, amount, status, tx_id, error)
			VALUES (?,?,?,?,?,?,?)`,
			report.ID, act.Symbol, string(act.Direction), act.Amount.String(),
			string(act.Status), act.TxID, act.Error,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *SQLiteRecorder) LatestCycle() (*model.CycleReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	report := &model.CycleReport{}
	var (
		trigger           string
		started, finished int64
		warnings          string
	)
	err := r.db.QueryRow(`SELECT id, trigger_type, started_at, finished_at, succeeded, failed, warnings
		FROM cycles ORDER BY started_at DESC, id DESC LIMIT 1`).
		Scan(&report.ID, &trigger, &started, &finished, &report.Succeeded, &report.Failed, &warnings)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	report.Trigger = model.TriggerType(trigger)
	report.StartedAt = time.Unix(started, 0)
	report.FinishedAt = time.Unix(finished, 0)
	if warnings != "" {
		report.Warnings = strings.Split(warnings, "\n")
	}

	rows, err := r.db.Query(`SELECT symbol, direction, amount, status, tx_id, error
		FROM cycle_actions WHERE cycle_id = ? ORDER BY id`, report.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			act                       model.CorrectiveAction
			direction, status, amount string
		)
		if err := rows.Scan(&act.Symbol, &direction, &amount, &status, &act.TxID, &act.Error); err != nil {
			return nil, err
		}
		act.Direction = model.Direction(direction)
		act.Status = model.ActionStatus(status)
		act.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse amount %q: %w", amount, err)
		}
		report.Actions = append(report.Actions, act)
	}
	return report, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
