package models

import "time"

// AlertSeverity classifies how urgent an alert is for the operator.
type AlertSeverity string

const (
	AlertSeverityWarning  AlertSeverity = "warning"
	AlertSeverityCritical AlertSeverity = "critical"
)

// Alert rule identifiers. Rule + slice key form the deduplication key
// used for hysteresis in the threshold evaluator.
const (
	AlertRuleLowSuccessRate     = "low_success_rate"
	AlertRuleHighLoss           = "high_loss"
	AlertRuleConfidenceMismatch = "confidence_mismatch"
)

// Alert is a single threshold breach detected during a monitoring
// cycle. Alerts are transient: delivery and persistence belong to the
// notification collaborator.
type Alert struct {
	ID             string        `json:"id"`
	Severity       AlertSeverity `json:"severity"`
	Rule           string        `json:"rule"`
	SliceKey       string        `json:"slice_key,omitempty"`
	Message        string        `json:"message"`
	MetricName     string        `json:"metric_name"`
	ObservedValue  float64       `json:"observed_value"`
	ThresholdValue float64       `json:"threshold_value"`
	Timestamp      time.Time     `json:"timestamp"`
}

// DedupKey identifies the rule instance for hysteresis tracking.
func (a *Alert) DedupKey() string {
	if a.SliceKey == "" {
		return a.Rule
	}
	return a.Rule + ":" + a.SliceKey
}
