package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction of a corrective action relative to the treasury.
type Direction string

const (
	DirectionNone Direction = "NONE"
	DirectionBuy  Direction = "BUY"  // transfer funds into the treasury
	DirectionSell Direction = "SELL" // withdraw funds out of the treasury
)

// ActionStatus is the lifecycle state of a corrective action.
type ActionStatus string

const (
	StatusPending   ActionStatus = "PENDING"
	StatusExecuting ActionStatus = "EXECUTING"
	StatusSucceeded ActionStatus = "SUCCEEDED"
	StatusFailed    ActionStatus = "FAILED"
)

// TriggerType indicates what admitted a rebalance cycle.
type TriggerType string

const (
	TriggerStartup   TriggerType = "STARTUP"
	TriggerScheduled TriggerType = "SCHEDULED"
	TriggerAlert     TriggerType = "ALERT"
	TriggerManual    TriggerType = "MANUAL"
)

// CorrectiveAction is one planned transfer for one asset in one cycle.
// Amount is always the absolute deviation, never negative. The value is not
// mutated after reaching a terminal status.
type CorrectiveAction struct {
	Symbol    string          `json:"symbol"`
	Direction Direction       `json:"direction"`
	Amount    decimal.Decimal `json:"amount"`
	Status    ActionStatus    `json:"status"`
	TxID      string          `json:"tx_id,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// CycleReport is the full, operator-visible outcome of one rebalance cycle.
// Every planned action appears with a terminal status; none are dropped.
type CycleReport struct {
	ID         string             `json:"id"`
	Trigger    TriggerType        `json:"trigger"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
	Actions    []CorrectiveAction `json:"actions"`
	Warnings   []string           `json:"warnings,omitempty"`
	Succeeded  int                `json:"succeeded"`
	Failed     int                `json:"failed"`
}
