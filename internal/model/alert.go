package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// AlertKind classifies an inbound change notification.
type AlertKind string

const (
	AlertRatioChange      AlertKind = "RATIO_CHANGE"
	AlertSupplyChange     AlertKind = "SUPPLY_CHANGE"
	AlertRebalanceRequest AlertKind = "REBALANCE_REQUEST"
)

// Known reports whether the kind is one this engine acts on.
func (k AlertKind) Known() bool {
	switch k {
	case AlertRatioChange, AlertSupplyChange, AlertRebalanceRequest:
		return true
	}
	return false
}

// RequiresUrgencyFlag reports whether the kind only triggers a rebalance when
// the sender explicitly marked it urgent. Ratio and supply changes are always
// actionable; a bare rebalance request must carry the flag.
func (k AlertKind) RequiresUrgencyFlag() bool {
	return k == AlertRebalanceRequest
}

// AlertRecord is a structured change notification from the alert feed.
// Delivery is at-least-once and unordered; duplicates are filtered by
// content fingerprint, not by any feed sequence number.
type AlertRecord struct {
	Kind                       AlertKind `json:"kind"`
	EffectiveTimestamp         time.Time `json:"effective_timestamp"`
	RequiresImmediateRebalance bool      `json:"requires_immediate_rebalance"`
	Payload                    string    `json:"payload,omitempty"`
}

// Fingerprint derives a stable content identifier for deduplication.
func (a *AlertRecord) Fingerprint() string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%s", a.Kind, a.EffectiveTimestamp.UnixNano(), a.Payload)))
	return hex.EncodeToString(h[:])
}
