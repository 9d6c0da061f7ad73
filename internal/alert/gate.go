// Package alert validates, deduplicates, and age-filters inbound change
// notifications before they may trigger a rebalance.
package alert

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/model"
)

// DefaultMaxAge is how old an alert's effective timestamp may be before it is
// dropped as stale.
const DefaultMaxAge = 5 * time.Minute

// Ledger is the append-only set of fingerprints already acted upon.
type Ledger interface {
	Seen(fingerprint string) (bool, error)
	Record(fingerprint string, at time.Time) error
	Close() error
}

// Gate decides RECEIVED → ADMITTED | DROPPED for each inbound alert.
type Gate struct {
	ledger Ledger
	maxAge time.Duration
	log    zerolog.Logger
	now    func() time.Time
}

// NewGate creates a Gate. maxAge <= 0 uses the default.
func NewGate(ledger Ledger, maxAge time.Duration, log zerolog.Logger) *Gate {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Gate{
		ledger: ledger,
		maxAge: maxAge,
		log:    log.With().Str("component", "alert_gate").Logger(),
		now:    time.Now,
	}
}

// Admit applies the transition rules in order and reports the decision with
// a drop reason. An admitted alert's fingerprint is recorded before the
// corrective cycle starts, so a crash mid-cycle cannot replay the same alert
// indefinitely once the feed redelivers it.
func (g *Gate) Admit(a *model.AlertRecord) (bool, string) {
	if !a.Kind.Known() {
		return g.drop(a, "unknown kind")
	}

	fp := a.Fingerprint()
	seen, err := g.ledger.Seen(fp)
	if err != nil {
		g.log.Warn().Err(err).Str("fingerprint", fp).Msg("ledger lookup failed, treating as unseen")
	}
	if seen {
		return g.drop(a, "duplicate delivery")
	}

	if g.now().Sub(a.EffectiveTimestamp) > g.maxAge {
		return g.drop(a, "stale")
	}

	if a.Kind.RequiresUrgencyFlag() && !a.RequiresImmediateRebalance {
		return g.drop(a, "urgency flag not set")
	}

	if err := g.ledger.Record(fp, g.now()); err != nil {
		// Degrades to at-least-once for this alert; the age filter still
		// bounds the replay window.
		g.log.Error().Err(err).Str("fingerprint", fp).Msg("record fingerprint failed")
	}
	g.log.Info().
		Str("kind", string(a.Kind)).
		Str("fingerprint", fp).
		Msg("alert admitted")
	return true, ""
}

func (g *Gate) drop(a *model.AlertRecord, reason string) (bool, string) {
	g.log.Debug().
		Str("kind", string(a.Kind)).
		Str("reason", reason).
		Msg("alert dropped")
	return false, reason
}
