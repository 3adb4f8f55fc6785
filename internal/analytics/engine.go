package analytics

import (
	"sort"
	"time"

	"github.com/tradewatch/signal-monitor-go/internal/config"
	"github.com/tradewatch/signal-monitor-go/internal/models"
)

// Engine turns a collection of signal records into a performance
// report. Computation is pure: the output depends only on the input
// set's contents, never on its order or on hidden state.
type Engine struct {
	thresholds config.ThresholdConfig
	buckets    []config.ConfidenceBucket
	now        func() time.Time
}

// NewEngine creates a metrics engine with the given thresholds and
// confidence bucket boundaries.
func NewEngine(thresholds config.ThresholdConfig, buckets []config.ConfidenceBucket) *Engine {
	return &Engine{
		thresholds: thresholds,
		buckets:    buckets,
		now:        time.Now,
	}
}

// SetNowFunc overrides the clock, for deterministic tests.
func (e *Engine) SetNowFunc(now func() time.Time) {
	e.now = now
}

// Compute builds a performance report over the given records,
// timestamped with the current time.
func (e *Engine) Compute(records []models.SignalRecord) models.PerformanceReport {
	return e.ComputeAt(records, e.now())
}

// ComputeAt builds a performance report over the given records. Only
// closed records contribute to statistics; open ones are counted as
// pending. Identical input sets yield identical reports.
func (e *Engine) ComputeAt(records []models.SignalRecord, generatedAt time.Time) models.PerformanceReport {
	closed := make([]models.SignalRecord, 0, len(records))
	pending := 0
	for _, r := range records {
		if r.Closed() {
			closed = append(closed, r)
		} else {
			pending++
		}
	}

	report := models.PerformanceReport{
		GeneratedAt:    generatedAt,
		PendingSignals: pending,
		Aggregate:      e.computeStats(closed),
		BySignalType:   make(map[string]models.PerformanceStats),
		ByCoin:         make(map[string]models.PerformanceStats),
		ByStrategy:     make(map[string]models.PerformanceStats),
		ByConfidence:   make(map[string]models.PerformanceStats),
	}

	byType := make(map[string][]models.SignalRecord)
	byCoin := make(map[string][]models.SignalRecord)
	byStrategy := make(map[string][]models.SignalRecord)
	byBucket := make(map[string][]models.SignalRecord)
	for _, r := range closed {
		byType[string(r.SignalType)] = append(byType[string(r.SignalType)], r)
		byCoin[r.Coin] = append(byCoin[r.Coin], r)
		byStrategy[r.StrategyName] = append(byStrategy[r.StrategyName], r)
		if label, ok := e.bucketLabel(r.Confidence); ok {
			byBucket[label] = append(byBucket[label], r)
		}
	}
	for key, subset := range byType {
		report.BySignalType[key] = e.computeStats(subset)
	}
	for key, subset := range byCoin {
		report.ByCoin[key] = e.computeStats(subset)
	}
	for key, subset := range byStrategy {
		report.ByStrategy[key] = e.computeStats(subset)
	}
	for key, subset := range byBucket {
		report.ByConfidence[key] = e.computeStats(subset)
	}

	return report
}

// bucketLabel maps a confidence score onto its configured band.
func (e *Engine) bucketLabel(confidence float64) (string, bool) {
	for i, b := range e.buckets {
		if b.Contains(confidence, i == len(e.buckets)-1) {
			return b.Label(), true
		}
	}
	return "", false
}

// computeStats aggregates one subset of closed records.
func (e *Engine) computeStats(closed []models.SignalRecord) models.PerformanceStats {
	stats := models.PerformanceStats{}
	if len(closed) == 0 {
		return stats
	}

	rois := make([]float64, 0, len(closed))
	var successes, wins, losses int
	var durationSum time.Duration
	for _, r := range closed {
		roi, ok := r.ROI()
		if !ok {
			continue
		}
		rois = append(rois, roi)
		if r.Successful(e.thresholds.HoldTolerance) {
			successes++
		}
		if roi > 0 {
			wins++
		} else if roi < 0 {
			losses++
		}
		durationSum += r.HoldingDuration()
	}
	if len(rois) == 0 {
		return stats
	}
	// Summation over the sorted slice keeps the result bit-identical
	// for the same input set in any order.
	sort.Float64s(rois)

	stats.TotalSignals = len(rois)
	stats.SuccessfulSignals = successes
	stats.SuccessRate = float64(successes) / float64(len(rois)) * 100
	for _, roi := range rois {
		stats.TotalROI += roi
	}
	stats.AvgROI = stats.TotalROI / float64(len(rois))
	stats.MedianROI = calculateMedian(rois)
	stats.AvgHoldingDuration = durationSum / time.Duration(len(rois))

	maxGain := rois[len(rois)-1]
	maxLoss := rois[0]
	stats.MaxGain = &maxGain
	stats.MaxLoss = &maxLoss

	stats.Volatility = calculateStdDev(rois)
	if stats.Volatility > 0 {
		stats.SharpeRatio = stats.AvgROI / stats.Volatility
		stats.SharpeDefined = true
	}

	denom := losses
	if denom < 1 {
		denom = 1
	}
	stats.WinLossRatio = float64(wins) / float64(denom)
	stats.Reliable = stats.TotalSignals >= e.thresholds.MinSignalsForAnalysis

	return stats
}

// CoinPerformance pairs a coin with its aggregate stats for ranking.
type CoinPerformance struct {
	Coin  string
	Stats models.PerformanceStats
}

// TopCoins returns up to n coins ranked by total ROI, best first.
func TopCoins(report models.PerformanceReport, n int) []CoinPerformance {
	ranked := rankCoins(report)
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// WorstCoins returns up to n coins ranked by total ROI, worst first.
func WorstCoins(report models.PerformanceReport, n int) []CoinPerformance {
	ranked := rankCoins(report)
	for i, j := 0, len(ranked)-1; i < j; i, j = i+1, j-1 {
		ranked[i], ranked[j] = ranked[j], ranked[i]
	}
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func rankCoins(report models.PerformanceReport) []CoinPerformance {
	ranked := make([]CoinPerformance, 0, len(report.ByCoin))
	for coin, stats := range report.ByCoin {
		ranked = append(ranked, CoinPerformance{Coin: coin, Stats: stats})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Stats.TotalROI != ranked[j].Stats.TotalROI {
			return ranked[i].Stats.TotalROI > ranked[j].Stats.TotalROI
		}
		return ranked[i].Coin < ranked[j].Coin
	})
	return ranked
}
