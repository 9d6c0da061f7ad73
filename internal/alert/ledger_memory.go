package alert

import (
	"sync"
	"time"
)

// MemoryLedger keeps fingerprints in memory with bounded retention. Losing it
// on restart is acceptable: the gate's age filter bounds the replay window.
type MemoryLedger struct {
	mu        sync.Mutex
	seen      map[string]time.Time
	retention time.Duration
	now       func() time.Time
}

// NewMemoryLedger creates a ledger that forgets fingerprints older than
// retention. retention <= 0 defaults to twice the gate's default max age.
func NewMemoryLedger(retention time.Duration) *MemoryLedger {
	if retention <= 0 {
		retention = 2 * DefaultMaxAge
	}
	return &MemoryLedger{
		seen:      make(map[string]time.Time),
		retention: retention,
		now:       time.Now,
	}
}

func (l *MemoryLedger) Seen(fingerprint string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.seen[fingerprint]
	return ok, nil
}

func (l *MemoryLedger) Record(fingerprint string, at time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen[fingerprint] = at
	cutoff := l.now().Add(-l.retention)
	for fp, ts := range l.seen {
		if ts.Before(cutoff) {
			delete(l.seen, fp)
		}
	}
	return nil
}

func (l *MemoryLedger) Close() error { return nil }
