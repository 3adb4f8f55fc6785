package analytics

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tradewatch/signal-monitor-go/internal/config"
	"github.com/tradewatch/signal-monitor-go/internal/models"
)

// Evaluator compares performance reports against configured thresholds
// and produces alert events. Each Evaluator owns its own hysteresis
// state, so independent monitor instances never interfere.
type Evaluator struct {
	thresholds config.ThresholdConfig
	buckets    []config.ConfidenceBucket

	// active tracks rule instances that have fired and not yet
	// recovered. An alert re-fires only after its metric crossed back
	// above threshold and dropped below it again, which keeps noisy
	// data oscillating near a boundary from causing alert storms.
	active map[string]bool

	now func() time.Time
}

// NewEvaluator creates a threshold evaluator.
func NewEvaluator(thresholds config.ThresholdConfig, buckets []config.ConfidenceBucket) *Evaluator {
	return &Evaluator{
		thresholds: thresholds,
		buckets:    buckets,
		active:     make(map[string]bool),
		now:        time.Now,
	}
}

// SetNowFunc overrides the clock, for deterministic tests.
func (ev *Evaluator) SetNowFunc(now func() time.Time) {
	ev.now = now
}

// Evaluate checks the current report against the thresholds and
// returns the alerts that newly fired this cycle. previous may be nil
// on the first cycle. Too little data is the normal case and produces
// zero alerts, not an error.
//
// The high loss rule is evaluated against the current report's total
// ROI, not the delta from the previous report; previous is accepted to
// keep the contract open for trend rules.
func (ev *Evaluator) Evaluate(current models.PerformanceReport, previous *models.PerformanceReport) []models.Alert {
	_ = previous

	var alerts []models.Alert

	agg := current.Aggregate
	reliable := agg.TotalSignals >= ev.thresholds.MinSignalsForAnalysis

	// Rule 1: aggregate success rate below minimum.
	alerts = ev.applyRule(alerts, ruleCheck{
		rule:      models.AlertRuleLowSuccessRate,
		severity:  models.AlertSeverityWarning,
		metric:    "success_rate",
		observed:  agg.SuccessRate,
		threshold: ev.thresholds.MinSuccessRate,
		breached:  reliable && agg.SuccessRate < ev.thresholds.MinSuccessRate,
		message: fmt.Sprintf("Success rate %.1f%% is below the %.1f%% minimum",
			agg.SuccessRate, ev.thresholds.MinSuccessRate),
	})

	// Rule 2: total ROI below the loss threshold.
	alerts = ev.applyRule(alerts, ruleCheck{
		rule:      models.AlertRuleHighLoss,
		severity:  models.AlertSeverityCritical,
		metric:    "total_roi",
		observed:  agg.TotalROI,
		threshold: ev.thresholds.MaxLossThreshold,
		breached:  reliable && agg.TotalROI < ev.thresholds.MaxLossThreshold,
		message: fmt.Sprintf("Total ROI %.2f%% is below the %.2f%% loss threshold",
			agg.TotalROI, ev.thresholds.MaxLossThreshold),
	})

	// Rule 3: high-confidence buckets materially underperforming the
	// aggregate success rate.
	for _, bucket := range ev.buckets {
		if bucket.Min < ev.thresholds.HighConfidenceMin {
			continue
		}
		label := bucket.Label()
		stats, ok := current.ByConfidence[label]
		if !ok {
			// A bucket with no closed records cannot recover or breach;
			// leave its hysteresis state untouched.
			continue
		}
		enough := stats.TotalSignals >= ev.thresholds.MinSignalsForAnalysis
		breached := enough && stats.SuccessRate < agg.SuccessRate-ev.thresholds.ConfidenceMargin
		alerts = ev.applyRule(alerts, ruleCheck{
			rule:      models.AlertRuleConfidenceMismatch,
			sliceKey:  label,
			severity:  models.AlertSeverityWarning,
			metric:    "bucket_success_rate",
			observed:  stats.SuccessRate,
			threshold: agg.SuccessRate - ev.thresholds.ConfidenceMargin,
			breached:  breached,
			message: fmt.Sprintf("%s confidence signals succeed only %.1f%% of the time vs %.1f%% overall",
				label, stats.SuccessRate, agg.SuccessRate),
		})
	}

	return alerts
}

// Reset clears all hysteresis state.
func (ev *Evaluator) Reset() {
	ev.active = make(map[string]bool)
}

type ruleCheck struct {
	rule      string
	sliceKey  string
	severity  models.AlertSeverity
	metric    string
	observed  float64
	threshold float64
	breached  bool
	message   string
}

// applyRule updates hysteresis state for one rule instance and appends
// an alert when the rule newly transitions into breach.
func (ev *Evaluator) applyRule(alerts []models.Alert, check ruleCheck) []models.Alert {
	key := check.rule
	if check.sliceKey != "" {
		key += ":" + check.sliceKey
	}

	if !check.breached {
		// Metric recovered: arm the rule again.
		delete(ev.active, key)
		return alerts
	}
	if ev.active[key] {
		// Already alerted and not yet recovered.
		return alerts
	}
	ev.active[key] = true

	return append(alerts, models.Alert{
		ID:             uuid.New().String(),
		Severity:       check.severity,
		Rule:           check.rule,
		SliceKey:       check.sliceKey,
		Message:        check.message,
		MetricName:     check.metric,
		ObservedValue:  check.observed,
		ThresholdValue: check.threshold,
		Timestamp:      ev.now(),
	})
}
