package alert

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/model"
)

func newTestGate() *Gate {
	return NewGate(NewMemoryLedger(0), 5*time.Minute, zerolog.Nop())
}

func freshAlert(kind model.AlertKind) *model.AlertRecord {
	return &model.AlertRecord{
		Kind:               kind,
		EffectiveTimestamp: time.Now(),
		Payload:            "ratio update",
	}
}

func TestAdmit_KnownKind(t *testing.T) {
	g := newTestGate()
	admitted, reason := g.Admit(freshAlert(model.AlertRatioChange))
	assert.True(t, admitted)
	assert.Empty(t, reason)
}

func TestAdmit_UnknownKindDropped(t *testing.T) {
	g := newTestGate()
	admitted, reason := g.Admit(freshAlert("GOSSIP"))
	assert.False(t, admitted)
	assert.Equal(t, "unknown kind", reason)
}

func TestAdmit_DuplicateFingerprintDropped(t *testing.T) {
	g := newTestGate()
	a := freshAlert(model.AlertSupplyChange)

	admitted, _ := g.Admit(a)
	require.True(t, admitted)

	// The feed is at-least-once; the redelivery carries identical content.
	dup := *a
	admitted, reason := g.Admit(&dup)
	assert.False(t, admitted)
	assert.Equal(t, "duplicate delivery", reason)
}

func TestAdmit_StaleAlertDropped(t *testing.T) {
	g := newTestGate()
	a := freshAlert(model.AlertRatioChange)
	a.EffectiveTimestamp = time.Now().Add(-10 * time.Minute)

	admitted, reason := g.Admit(a)
	assert.False(t, admitted)
	assert.Equal(t, "stale", reason)
}

func TestAdmit_UrgencyFlagRequired(t *testing.T) {
	g := newTestGate()

	a := freshAlert(model.AlertRebalanceRequest)
	admitted, reason := g.Admit(a)
	assert.False(t, admitted)
	assert.Equal(t, "urgency flag not set", reason)

	b := freshAlert(model.AlertRebalanceRequest)
	b.Payload = "urgent request"
	b.RequiresImmediateRebalance = true
	admitted, _ = g.Admit(b)
	assert.True(t, admitted)
}

// Dropping must not record the fingerprint: a previously stale kind of alert
// with fresh content has a different fingerprint anyway, but a dropped
// urgency-less request resent with the flag set must be admissible.
func TestAdmit_DropDoesNotRecordFingerprint(t *testing.T) {
	g := newTestGate()

	a := freshAlert(model.AlertRatioChange)
	a.EffectiveTimestamp = time.Now().Add(-10 * time.Minute)
	admitted, _ := g.Admit(a)
	require.False(t, admitted)

	seen, err := g.ledger.Seen(a.Fingerprint())
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestFingerprint_ContentDerived(t *testing.T) {
	ts := time.Now()
	a := &model.AlertRecord{Kind: model.AlertRatioChange, EffectiveTimestamp: ts, Payload: "x"}
	b := &model.AlertRecord{Kind: model.AlertRatioChange, EffectiveTimestamp: ts, Payload: "x"}
	c := &model.AlertRecord{Kind: model.AlertRatioChange, EffectiveTimestamp: ts, Payload: "y"}

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestMemoryLedger_RetentionSweep(t *testing.T) {
	l := NewMemoryLedger(time.Minute)
	require.NoError(t, l.Record("old", time.Now().Add(-2*time.Minute)))
	require.NoError(t, l.Record("fresh", time.Now()))

	seen, err := l.Seen("old")
	require.NoError(t, err)
	assert.False(t, seen, "entry past retention should be forgotten")

	seen, err = l.Seen("fresh")
	require.NoError(t, err)
	assert.True(t, seen)
}
