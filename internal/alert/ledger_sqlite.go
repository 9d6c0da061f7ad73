package alert

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteLedger persists fingerprints across restarts for stronger
// exactly-once behavior than the in-memory ledger.
type SQLiteLedger struct {
	db        *sql.DB
	mu        sync.Mutex
	retention time.Duration
}

// NewSQLiteLedger opens (or creates) the fingerprint database.
func NewSQLiteLedger(dbPath string, retention time.Duration) (*SQLiteLedger, error) {
	if retention <= 0 {
		retention = 2 * DefaultMaxAge
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS alert_fingerprints (
		fingerprint TEXT PRIMARY KEY,
		seen_at     INTEGER NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteLedger{db: db, retention: retention}, nil
}

func (l *SQLiteLedger) Seen(fingerprint string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var one int
	err := l.db.QueryRow(`SELECT 1 FROM alert_fingerprints WHERE fingerprint = ?`, fingerprint).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (l *SQLiteLedger) Record(fingerprint string, at time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.db.Exec(`INSERT OR IGNORE INTO alert_fingerprints (fingerprint, seen_at) VALUES (?, ?)`,
		fingerprint, at.Unix()); err != nil {
		return err
	}
	cutoff := time.Now().Add(-l.retention).Unix()
	_, err := l.db.Exec(`DELETE FROM alert_fingerprints WHERE seen_at < ?`, cutoff)
	return err
}

func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}
