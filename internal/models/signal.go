package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SignalType represents the direction of a trading recommendation
type SignalType string

const (
	SignalTypeBuy  SignalType = "BUY"
	SignalTypeSell SignalType = "SELL"
	SignalTypeHold SignalType = "HOLD"
)

// Valid reports whether the signal type is one of the known directions.
func (s SignalType) Valid() bool {
	switch s {
	case SignalTypeBuy, SignalTypeSell, SignalTypeHold:
		return true
	}
	return false
}

// SignalRecord represents one evaluated trading recommendation.
// A record is open until both ExitPrice and EvaluatedAt are set; once
// closed it is immutable.
type SignalRecord struct {
	ID           string           `json:"id" db:"id"`
	SignalType   SignalType       `json:"signal_type" db:"signal_type"`
	Coin         string           `json:"coin" db:"coin"`
	Confidence   float64          `json:"confidence" db:"confidence"`
	StrategyName string           `json:"strategy_name" db:"strategy_name"`
	EntryPrice   decimal.Decimal  `json:"entry_price" db:"entry_price"`
	EmittedAt    time.Time        `json:"emitted_at" db:"emitted_at"`
	ExitPrice    *decimal.Decimal `json:"exit_price,omitempty" db:"exit_price"`
	EvaluatedAt  *time.Time       `json:"evaluated_at,omitempty" db:"evaluated_at"`
	Reasoning    string           `json:"reasoning,omitempty" db:"reasoning"`
}

// Closed reports whether the outcome of the signal is known.
func (r *SignalRecord) Closed() bool {
	return r.ExitPrice != nil && r.EvaluatedAt != nil
}

// ROI returns the realized percentage return of a closed record.
// For SELL signals the price movement is inverted: a SELL is profitable
// when the price fell. The boolean is false for open records.
func (r *SignalRecord) ROI() (float64, bool) {
	if !r.Closed() || r.EntryPrice.IsZero() {
		return 0, false
	}
	move := r.ExitPrice.Sub(r.EntryPrice).Div(r.EntryPrice)
	roi := move.InexactFloat64() * 100
	if r.SignalType == SignalTypeSell {
		roi = -roi
	}
	return roi, true
}

// Successful reports whether a closed record counts as a win.
// BUY/SELL succeed on positive directional ROI. HOLD succeeds when the
// price stayed within holdTolerance percent of the entry, since the
// recommendation was to do nothing.
func (r *SignalRecord) Successful(holdTolerance float64) bool {
	roi, ok := r.ROI()
	if !ok {
		return false
	}
	if r.SignalType == SignalTypeHold {
		if roi < 0 {
			roi = -roi
		}
		return roi <= holdTolerance
	}
	return roi > 0
}

// HoldingDuration returns the time between emission and evaluation.
// Zero for open records.
func (r *SignalRecord) HoldingDuration() time.Duration {
	if !r.Closed() {
		return 0
	}
	return r.EvaluatedAt.Sub(r.EmittedAt)
}

// Validate checks the record invariants that the upstream pipeline is
// supposed to guarantee.
func (r *SignalRecord) Validate() error {
	if !r.SignalType.Valid() {
		return fmt.Errorf("invalid signal type %q", r.SignalType)
	}
	if r.Coin == "" {
		return fmt.Errorf("coin must not be empty")
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return fmt.Errorf("confidence %.4f out of range [0,1]", r.Confidence)
	}
	if !r.EntryPrice.IsPositive() {
		return fmt.Errorf("entry price must be positive, got %s", r.EntryPrice)
	}
	if r.EmittedAt.IsZero() {
		return fmt.Errorf("emitted_at must be set")
	}
	if (r.ExitPrice == nil) != (r.EvaluatedAt == nil) {
		return fmt.Errorf("exit_price and evaluated_at must be set together")
	}
	if r.EvaluatedAt != nil && r.EvaluatedAt.Before(r.EmittedAt) {
		return fmt.Errorf("evaluated_at %s precedes emitted_at %s", r.EvaluatedAt, r.EmittedAt)
	}
	return nil
}
