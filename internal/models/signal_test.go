package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func closedRecord(signalType SignalType, entry, exit string) SignalRecord {
	entryPrice := decimal.RequireFromString(entry)
	exitPrice := decimal.RequireFromString(exit)
	emittedAt := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	evaluatedAt := emittedAt.Add(6 * time.Hour)
	return SignalRecord{
		ID:           "rec-1",
		SignalType:   signalType,
		Coin:         "BTC",
		Confidence:   0.8,
		StrategyName: "momentum",
		EntryPrice:   entryPrice,
		EmittedAt:    emittedAt,
		ExitPrice:    &exitPrice,
		EvaluatedAt:  &evaluatedAt,
	}
}

func TestSignalRecord_ROI(t *testing.T) {
	tests := []struct {
		name       string
		signalType SignalType
		entry      string
		exit       string
		want       float64
	}{
		{"buy gain", SignalTypeBuy, "100", "110", 10},
		{"buy loss", SignalTypeBuy, "100", "95", -5},
		{"sell profits when price falls", SignalTypeSell, "100", "90", 10},
		{"sell loses when price rises", SignalTypeSell, "100", "105", -5},
		{"hold tracks raw move", SignalTypeHold, "200", "201", 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := closedRecord(tt.signalType, tt.entry, tt.exit)
			roi, ok := r.ROI()
			require.True(t, ok)
			assert.InDelta(t, tt.want, roi, 1e-9)
		})
	}
}

func TestSignalRecord_ROI_OpenRecord(t *testing.T) {
	r := closedRecord(SignalTypeBuy, "100", "110")
	r.ExitPrice = nil
	r.EvaluatedAt = nil

	roi, ok := r.ROI()
	assert.False(t, ok)
	assert.Zero(t, roi)
	assert.False(t, r.Closed())
	assert.Zero(t, r.HoldingDuration())
}

func TestSignalRecord_Successful(t *testing.T) {
	tests := []struct {
		name          string
		signalType    SignalType
		entry         string
		exit          string
		holdTolerance float64
		want          bool
	}{
		{"buy gain wins", SignalTypeBuy, "100", "101", 1.0, true},
		{"buy flat is not a win", SignalTypeBuy, "100", "100", 1.0, false},
		{"sell on falling price wins", SignalTypeSell, "100", "98", 1.0, true},
		{"hold within tolerance wins", SignalTypeHold, "100", "100.5", 1.0, true},
		{"hold near tolerance wins", SignalTypeHold, "100", "101", 1.5, true},
		{"hold beyond tolerance loses", SignalTypeHold, "100", "103", 1.0, false},
		{"hold falling beyond tolerance loses", SignalTypeHold, "100", "97", 1.0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := closedRecord(tt.signalType, tt.entry, tt.exit)
			assert.Equal(t, tt.want, r.Successful(tt.holdTolerance))
		})
	}
}

func TestSignalRecord_HoldingDuration(t *testing.T) {
	r := closedRecord(SignalTypeBuy, "100", "110")
	assert.Equal(t, 6*time.Hour, r.HoldingDuration())
}

func TestSignalRecord_Validate(t *testing.T) {
	valid := closedRecord(SignalTypeBuy, "100", "110")
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*SignalRecord)
	}{
		{"unknown signal type", func(r *SignalRecord) { r.SignalType = "LONG" }},
		{"empty coin", func(r *SignalRecord) { r.Coin = "" }},
		{"confidence above one", func(r *SignalRecord) { r.Confidence = 1.2 }},
		{"negative confidence", func(r *SignalRecord) { r.Confidence = -0.1 }},
		{"zero entry price", func(r *SignalRecord) { r.EntryPrice = decimal.Zero }},
		{"missing emitted_at", func(r *SignalRecord) { r.EmittedAt = time.Time{} }},
		{"exit price without evaluated_at", func(r *SignalRecord) { r.EvaluatedAt = nil }},
		{"evaluated before emitted", func(r *SignalRecord) {
			at := r.EmittedAt.Add(-time.Hour)
			r.EvaluatedAt = &at
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := closedRecord(SignalTypeBuy, "100", "110")
			tt.mutate(&r)
			assert.Error(t, r.Validate())
		})
	}
}
