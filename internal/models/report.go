package models

import "time"

// PerformanceStats is one aggregate block of outcome statistics over a
// set of closed signal records.
type PerformanceStats struct {
	TotalSignals       int           `json:"total_signals"`
	SuccessfulSignals  int           `json:"successful_signals"`
	SuccessRate        float64       `json:"success_rate"`
	AvgROI             float64       `json:"avg_roi"`
	MedianROI          float64       `json:"median_roi"`
	TotalROI           float64       `json:"total_roi"`
	AvgHoldingDuration time.Duration `json:"avg_holding_duration"`
	MaxGain            *float64      `json:"max_gain,omitempty"`
	MaxLoss            *float64      `json:"max_loss,omitempty"`
	Volatility         float64       `json:"volatility"`
	SharpeRatio        float64       `json:"sharpe_ratio"`
	SharpeDefined      bool          `json:"sharpe_defined"`
	WinLossRatio       float64       `json:"win_loss_ratio"`
	// Reliable is false when the slice holds fewer closed records than
	// min_signals_for_analysis; unreliable slices are reported but never
	// trigger alerts.
	Reliable bool `json:"reliable"`
}

// PerformanceReport is the output of one metrics computation pass.
// Reports are value objects: the history store retains copies, so later
// changes to live records never alter a stored report.
type PerformanceReport struct {
	GeneratedAt    time.Time                   `json:"generated_at"`
	PendingSignals int                         `json:"pending_signals"`
	Aggregate      PerformanceStats            `json:"aggregate"`
	BySignalType   map[string]PerformanceStats `json:"by_signal_type"`
	ByCoin         map[string]PerformanceStats `json:"by_coin"`
	ByStrategy     map[string]PerformanceStats `json:"by_strategy"`
	ByConfidence   map[string]PerformanceStats `json:"by_confidence"`
}

// Empty reports whether the report was computed over zero closed records.
func (r *PerformanceReport) Empty() bool {
	return r.Aggregate.TotalSignals == 0
}
